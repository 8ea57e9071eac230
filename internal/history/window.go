// Package history loads and enriches the recent day records of one client
// into a uniform time series, most-recent-first.
package history

import (
	"context"

	"github.com/heys-app/metabolic-engine/internal/domain"
)

// MaxWindowDays bounds every history load.
const MaxWindowDays = 90

// Calories per gram of each macro.
const (
	kcalPerGramProtein = 4
	kcalPerGramCarbs   = 4
	kcalPerGramFat     = 9
)

// MealTotals sums the day's intake by resolving each item through the food
// index. Unknown refs contribute nothing.
func MealTotals(ctx context.Context, index domain.FoodIndex, meals []domain.Meal) (domain.DayTotals, error) {
	var totals domain.DayTotals
	for _, meal := range meals {
		for _, item := range meal.Items {
			facts, err := index.Lookup(ctx, item.FoodRef)
			if err != nil {
				return domain.DayTotals{}, err
			}
			if facts == nil {
				continue
			}
			factor := item.Grams / 100
			totals.Kcal += facts.Kcal100 * factor
			totals.Protein += facts.Protein100 * factor
			totals.Carbs += facts.Carbs100 * factor
			totals.Fat += facts.Fat100 * factor
			totals.Fiber += facts.Fiber100 * factor
		}
	}
	return totals, nil
}

// Window loads enriched history entries from the record store.
type Window struct {
	Store domain.RecordStore
	Index domain.FoodIndex
	Days  int
}

// NewWindow creates a Window clamped to MaxWindowDays.
func NewWindow(store domain.RecordStore, index domain.FoodIndex, days int) *Window {
	if days <= 0 || days > MaxWindowDays {
		days = MaxWindowDays
	}
	return &Window{Store: store, Index: index, Days: days}
}

// Load returns enriched entries for the window ending at end (inclusive),
// most-recent-first. Days without meals produce no entry.
func (w *Window) Load(ctx context.Context, clientID string, end domain.DateKey) ([]domain.HistoryEntry, error) {
	prof, err := w.Store.Profile(ctx, clientID)
	if err != nil {
		return nil, err
	}
	target := prof.TargetKcal()

	entries := make([]domain.HistoryEntry, 0, w.Days)
	for i := 0; i < w.Days; i++ {
		date := end.AddDays(-i)
		rec, err := w.Store.DayRecord(ctx, clientID, date)
		if err != nil {
			return nil, err
		}
		if rec == nil || len(rec.Meals) == 0 {
			continue
		}

		entry, err := Enrich(ctx, w.Index, rec, target)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Enrich derives one HistoryEntry from a raw record. targetKcal must be the
// profile's daily calorie target.
func Enrich(ctx context.Context, index domain.FoodIndex, rec *domain.DayRecord, targetKcal float64) (domain.HistoryEntry, error) {
	totals, err := MealTotals(ctx, index, rec.Meals)
	if err != nil {
		return domain.HistoryEntry{}, err
	}

	entry := domain.HistoryEntry{
		Date:       rec.Date,
		Totals:     totals,
		Weekday:    rec.Date.Weekday(),
		SleepHours: rec.SleepHours,
		StressAvg:  rec.StressAvg(),
	}

	if totals.Kcal > 0 {
		entry.ProteinPct = totals.Protein * kcalPerGramProtein / totals.Kcal * 100
		entry.CarbsPct = totals.Carbs * kcalPerGramCarbs / totals.Kcal * 100
		entry.FatPct = totals.Fat * kcalPerGramFat / totals.Kcal * 100
	}
	if targetKcal > 0 {
		entry.AdherenceRatio = totals.Kcal / targetKcal
	}
	return entry, nil
}
