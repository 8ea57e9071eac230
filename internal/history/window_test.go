package history

import (
	"context"
	"math"
	"testing"

	"github.com/heys-app/metabolic-engine/internal/domain"
)

type fakeStore struct {
	records map[domain.DateKey]*domain.DayRecord
	profile *domain.Profile
}

func (s *fakeStore) DayRecord(ctx context.Context, clientID string, date domain.DateKey) (*domain.DayRecord, error) {
	return s.records[date], nil
}

func (s *fakeStore) Profile(ctx context.Context, clientID string) (*domain.Profile, error) {
	return s.profile, nil
}

type fakeIndex map[string]domain.FoodFacts

func (i fakeIndex) Lookup(ctx context.Context, ref string) (*domain.FoodFacts, error) {
	f, ok := i[ref]
	if !ok {
		return nil, nil
	}
	return &f, nil
}

func mealOf(ref string, grams float64) domain.Meal {
	return domain.Meal{Time: "12:00", Items: []domain.MealItem{{FoodRef: ref, Grams: grams}}}
}

func TestMealTotals(t *testing.T) {
	index := fakeIndex{
		"oats": {Kcal100: 389, Protein100: 16.9, Carbs100: 66.3, Fat100: 6.9, Fiber100: 10.6},
	}
	meals := []domain.Meal{mealOf("oats", 200)}

	totals, err := MealTotals(context.Background(), index, meals)
	if err != nil {
		t.Fatalf("MealTotals: %v", err)
	}
	if math.Abs(totals.Kcal-778) > 0.01 {
		t.Errorf("Kcal = %v, want 778", totals.Kcal)
	}
	if math.Abs(totals.Fiber-21.2) > 0.01 {
		t.Errorf("Fiber = %v, want 21.2", totals.Fiber)
	}
}

func TestMealTotals_UnknownRefIgnored(t *testing.T) {
	totals, err := MealTotals(context.Background(), fakeIndex{}, []domain.Meal{mealOf("ghost", 100)})
	if err != nil {
		t.Fatalf("MealTotals: %v", err)
	}
	if totals.Kcal != 0 {
		t.Errorf("Kcal = %v, want 0 for unknown ref", totals.Kcal)
	}
}

func TestWindow_Load_OrderAndMealInvariant(t *testing.T) {
	index := fakeIndex{"meal": {Kcal100: 500, Protein100: 25, Carbs100: 50, Fat100: 20}}
	store := &fakeStore{
		profile: &domain.Profile{Goal: &domain.Goal{TargetKcalMin: 2000, TargetKcalMax: 2000}},
		records: map[domain.DateKey]*domain.DayRecord{
			"2026-08-28": {Date: "2026-08-28", Meals: []domain.Meal{mealOf("meal", 400)}},
			"2026-08-27": {Date: "2026-08-27"}, // logged but no meals
			"2026-08-26": {Date: "2026-08-26", Meals: []domain.Meal{mealOf("meal", 300)}},
		},
	}

	w := NewWindow(store, index, 7)
	entries, err := w.Load(context.Background(), "client-1", "2026-08-28")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2 (meal-less day must be skipped)", len(entries))
	}
	if entries[0].Date != "2026-08-28" || entries[1].Date != "2026-08-26" {
		t.Errorf("order = [%s, %s], want most-recent-first", entries[0].Date, entries[1].Date)
	}
	if math.Abs(entries[0].AdherenceRatio-1.0) > 0.001 {
		t.Errorf("AdherenceRatio = %v, want 1.0", entries[0].AdherenceRatio)
	}
}

func TestWindow_Load_ClampsToMax(t *testing.T) {
	w := NewWindow(&fakeStore{}, fakeIndex{}, 500)
	if w.Days != MaxWindowDays {
		t.Errorf("Days = %d, want %d", w.Days, MaxWindowDays)
	}
}

func TestEnrich_MacroPercentages(t *testing.T) {
	index := fakeIndex{"mix": {Kcal100: 400, Protein100: 25, Carbs100: 50, Fat100: 11.11}}
	rec := &domain.DayRecord{Date: "2026-08-24", Meals: []domain.Meal{mealOf("mix", 100)}}

	entry, err := Enrich(context.Background(), index, rec, 2000)
	if err != nil {
		t.Fatalf("Enrich: %v", err)
	}

	// 25g protein = 100 kcal of 400 = 25%.
	if math.Abs(entry.ProteinPct-25) > 0.01 {
		t.Errorf("ProteinPct = %v, want 25", entry.ProteinPct)
	}
	// 50g carbs = 200 kcal of 400 = 50%.
	if math.Abs(entry.CarbsPct-50) > 0.01 {
		t.Errorf("CarbsPct = %v, want 50", entry.CarbsPct)
	}
	if entry.Weekday.String() != "Monday" {
		t.Errorf("Weekday = %v, want Monday", entry.Weekday)
	}
}
