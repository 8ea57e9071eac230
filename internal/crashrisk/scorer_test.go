package crashrisk

import (
	"testing"
	"time"

	"github.com/heys-app/metabolic-engine/internal/domain"
)

func prof() *domain.Profile {
	return &domain.Profile{WeightKg: 80, TargetSleepHours: 8}
}

// deficitDays builds n consecutive prior days with ratio 0.7, most recent
// first, ending the day before the given date.
func deficitDays(n int, before domain.DateKey) []domain.HistoryEntry {
	entries := make([]domain.HistoryEntry, 0, n)
	for i := 1; i <= n; i++ {
		d := before.AddDays(-i)
		entries = append(entries, domain.HistoryEntry{
			Date:           d,
			AdherenceRatio: 0.7,
			Weekday:        d.Weekday(),
		})
	}
	return entries
}

func factorImpact(factors []domain.RiskFactor, id string) int {
	for _, f := range factors {
		if f.ID == id {
			return f.Impact
		}
	}
	return 0
}

func TestScoreDay_AllFactorsCapAt100(t *testing.T) {
	// Saturday 2026-08-29: sleep 4h (debt 4 => +40), stress 8 (+30),
	// 5 deficit days (+35), weekend (+15) = 120, capped at 100.
	rec := &domain.DayRecord{
		Date:          "2026-08-29",
		SleepHours:    4,
		StressSamples: []float64{8},
	}
	s := &Scorer{}

	res := s.ScoreDay(rec, prof(), deficitDays(5, "2026-08-29"), "2026-08-29")

	if res.Risk != 100 {
		t.Errorf("risk = %d, want 100 (capped)", res.Risk)
	}
	if got := factorImpact(res.Factors, "sleep_debt"); got != 40 {
		t.Errorf("sleep_debt impact = %d, want 40", got)
	}
	if got := factorImpact(res.Factors, "stress"); got != 30 {
		t.Errorf("stress impact = %d, want 30", got)
	}
	if got := factorImpact(res.Factors, "chronic_deficit"); got != 35 {
		t.Errorf("chronic_deficit impact = %d, want 35", got)
	}
	if got := factorImpact(res.Factors, "weekend"); got != 15 {
		t.Errorf("weekend impact = %d, want 15", got)
	}
}

func TestScoreDay_SleepDebtTiers(t *testing.T) {
	tests := []struct {
		sleep float64
		want  int
	}{
		{8, 0},
		{7.5, 0},
		{7, 15},
		{6, 25},
		{5, 40},
		{3, 40},
	}
	s := &Scorer{}

	for _, tt := range tests {
		rec := &domain.DayRecord{Date: "2026-08-26", SleepHours: tt.sleep}
		res := s.ScoreDay(rec, prof(), nil, "2026-08-26") // Wednesday
		if got := factorImpact(res.Factors, "sleep_debt"); got != tt.want {
			t.Errorf("sleep %.1fh: impact = %d, want %d", tt.sleep, got, tt.want)
		}
	}
}

func TestScoreDay_StressTiers(t *testing.T) {
	tests := []struct {
		stress float64
		want   int
	}{
		{3, 0},
		{5, 15},
		{6.9, 15},
		{7, 30},
	}
	s := &Scorer{}

	for _, tt := range tests {
		rec := &domain.DayRecord{Date: "2026-08-26", SleepHours: 8, StressSamples: []float64{tt.stress}}
		res := s.ScoreDay(rec, prof(), nil, "2026-08-26")
		if got := factorImpact(res.Factors, "stress"); got != tt.want {
			t.Errorf("stress %.1f: impact = %d, want %d", tt.stress, got, tt.want)
		}
	}
}

func TestScoreDay_DeficitStreakTiers(t *testing.T) {
	tests := []struct {
		days int
		want int
	}{
		{0, 0},
		{2, 0},
		{3, 20},
		{4, 20},
		{5, 35},
		{8, 35},
	}
	s := &Scorer{}

	for _, tt := range tests {
		rec := &domain.DayRecord{Date: "2026-08-26", SleepHours: 8}
		res := s.ScoreDay(rec, prof(), deficitDays(tt.days, "2026-08-26"), "2026-08-26")
		if got := factorImpact(res.Factors, "chronic_deficit"); got != tt.want {
			t.Errorf("%d deficit days: impact = %d, want %d", tt.days, got, tt.want)
		}
	}
}

func TestScoreDay_StreakBrokenByNormalDay(t *testing.T) {
	hist := deficitDays(6, "2026-08-26")
	hist[2].AdherenceRatio = 1.0 // a normal day three days back breaks the streak

	s := &Scorer{}
	rec := &domain.DayRecord{Date: "2026-08-26", SleepHours: 8}
	res := s.ScoreDay(rec, prof(), hist, "2026-08-26")

	if got := factorImpact(res.Factors, "chronic_deficit"); got != 0 {
		t.Errorf("impact = %d, want 0 for a 2-day streak", got)
	}
}

func TestScoreDay_WeekendTrigger(t *testing.T) {
	s := &Scorer{}
	rec := &domain.DayRecord{SleepHours: 8}

	for _, tt := range []struct {
		date domain.DateKey
		want int
	}{
		{"2026-08-27", 0},  // Thursday
		{"2026-08-28", 15}, // Friday
		{"2026-08-29", 15}, // Saturday
		{"2026-08-30", 15}, // Sunday
		{"2026-08-31", 0},  // Monday
	} {
		res := s.ScoreDay(rec, prof(), nil, tt.date)
		if got := factorImpact(res.Factors, "weekend"); got != tt.want {
			t.Errorf("%s (%s): impact = %d, want %d", tt.date, tt.date.Weekday(), got, tt.want)
		}
	}
}

func TestForecast_CarriesSixtyPercent(t *testing.T) {
	// Same-day risk: sleep debt 4h (+40) on a Wednesday = 40.
	// Forecast: 0.6*40 = 24, plus short sleep today (+25) = 49.
	rec := &domain.DayRecord{Date: "2026-08-26", SleepHours: 4}
	s := &Scorer{}

	f := s.Forecast(rec, prof(), nil, "2026-08-26")

	if f.Risk != 49 {
		t.Errorf("forecast risk = %d, want 49", f.Risk)
	}
	if got := factorImpact(f.Factors, "short_sleep_today"); got != 25 {
		t.Errorf("short_sleep_today impact = %d, want 25", got)
	}
}

func TestForecast_WeekendAhead(t *testing.T) {
	// Thursday: tomorrow is Friday.
	rec := &domain.DayRecord{Date: "2026-08-27", SleepHours: 8}
	s := &Scorer{}

	f := s.Forecast(rec, prof(), nil, "2026-08-27")
	if got := factorImpact(f.Factors, "weekend_ahead"); got != 20 {
		t.Errorf("weekend_ahead impact = %d, want 20", got)
	}

	// Sunday: tomorrow is Monday.
	f = s.Forecast(&domain.DayRecord{Date: "2026-08-30", SleepHours: 8}, prof(), nil, "2026-08-30")
	if got := factorImpact(f.Factors, "weekend_ahead"); got != 0 {
		t.Errorf("Monday-ahead impact = %d, want 0", got)
	}
}

func TestForecast_WeekdayPattern(t *testing.T) {
	// Build 21 days of history where every Saturday overeats (ratio 1.5).
	var hist []domain.HistoryEntry
	for i := 1; i <= 21; i++ {
		d := domain.DateKey("2026-08-28").AddDays(-i)
		ratio := 1.0
		if d.Weekday() == time.Saturday {
			ratio = 1.5
		}
		hist = append(hist, domain.HistoryEntry{Date: d, AdherenceRatio: ratio, Weekday: d.Weekday()})
	}

	// Friday 2026-08-28: tomorrow is Saturday, the pattern day.
	rec := &domain.DayRecord{Date: "2026-08-28", SleepHours: 8}
	s := &Scorer{}

	f := s.Forecast(rec, prof(), hist, "2026-08-28")
	if got := factorImpact(f.Factors, "weekday_pattern"); got != 15 {
		t.Errorf("weekday_pattern impact = %d, want 15", got)
	}
}

func TestForecast_WeekdayPatternNeedsFourteenDays(t *testing.T) {
	var hist []domain.HistoryEntry
	for i := 1; i <= 10; i++ {
		d := domain.DateKey("2026-08-28").AddDays(-i)
		hist = append(hist, domain.HistoryEntry{Date: d, AdherenceRatio: 1.5, Weekday: d.Weekday()})
	}

	s := &Scorer{}
	f := s.Forecast(&domain.DayRecord{Date: "2026-08-28", SleepHours: 8}, prof(), hist, "2026-08-28")
	if got := factorImpact(f.Factors, "weekday_pattern"); got != 0 {
		t.Errorf("pattern fired on %d days of history, want none under 14", len(hist))
	}
}

func TestForecast_UrgentStrategyAtHighRisk(t *testing.T) {
	// Saturday, sleep 4h, stress 8, 5 deficit days: same-day 100 -> carry 60,
	// plus short sleep (+25) and extended deficit (+30) = cap 100.
	rec := &domain.DayRecord{Date: "2026-08-29", SleepHours: 4, StressSamples: []float64{8}}
	s := &Scorer{}

	f := s.Forecast(rec, prof(), deficitDays(5, "2026-08-29"), "2026-08-29")

	if f.Risk < 60 {
		t.Fatalf("risk = %d, want >= 60", f.Risk)
	}
	if len(f.Strategies) == 0 || f.Strategies[0].Priority != 0 {
		t.Fatalf("want urgent strategy at priority 0, got %+v", f.Strategies)
	}
	if f.PrimaryTrigger == nil {
		t.Fatal("want a primary trigger")
	}
	if f.PrimaryTrigger.ID != "sleep_debt" {
		t.Errorf("primary trigger = %s, want sleep_debt (highest impact)", f.PrimaryTrigger.ID)
	}
}
