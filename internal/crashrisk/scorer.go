// Package crashrisk estimates the risk of an impending overeating episode,
// both for the current day and as a 24-48h forecast.
package crashrisk

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/heys-app/metabolic-engine/internal/domain"
)

// Same-day factor impacts.
const (
	impactSleepDebt3h = 40
	impactSleepDebt2h = 25
	impactSleepDebt1h = 15
	impactStressHigh  = 30
	impactStressMid   = 15
	impactDeficit5d   = 35
	impactDeficit3d   = 20
	impactWeekend     = 15
)

// Forecast factor impacts, applied on top of 60% of the same-day risk.
const (
	forecastCarry        = 0.6
	impactShortSleep     = 25
	impactWeekendAhead   = 20
	impactDeficit4d      = 30
	impactWeekdayPattern = 15
)

// deficitRatio is the adherence ratio under which a day counts toward a
// chronic deficit streak.
const deficitRatio = 0.85

// overeatRatio marks a historical overeating day for the weekday pattern.
const overeatRatio = 1.3

// patternMinDays is the minimum history length for the weekday pattern check.
const patternMinDays = 14

// Scorer computes crash risk from the day, profile, and prior history.
type Scorer struct{}

// ScoreDay computes the same-day additive risk, capped at 100. The risk
// level is left unset; the caller assigns it through the hysteresis filter.
// history must be prior days only, most-recent-first.
func (s *Scorer) ScoreDay(rec *domain.DayRecord, prof *domain.Profile, hist []domain.HistoryEntry, date domain.DateKey) *domain.CrashRiskResult {
	var factors []domain.RiskFactor

	if f := sleepDebtFactor(rec, prof); f != nil {
		factors = append(factors, *f)
	}
	if f := stressFactor(rec); f != nil {
		factors = append(factors, *f)
	}
	if f := deficitStreakFactor(hist, impactDeficit5d, 5, impactDeficit3d, 3); f != nil {
		factors = append(factors, *f)
	}
	if isWeekend(date.Weekday()) {
		factors = append(factors, domain.RiskFactor{
			ID:     "weekend",
			Label:  "End-of-week trigger window",
			Impact: impactWeekend,
		})
	}

	return &domain.CrashRiskResult{
		Risk:    capRisk(sumImpacts(factors)),
		Factors: factors,
	}
}

// Forecast computes the 24-48h predictive variant: 60% of the same-day risk
// plus forward-looking factors, with a primary trigger and ranked prevention
// strategies.
func (s *Scorer) Forecast(rec *domain.DayRecord, prof *domain.Profile, hist []domain.HistoryEntry, date domain.DateKey) *domain.RiskForecast {
	sameDay := s.ScoreDay(rec, prof, hist, date)
	risk := int(math.Round(float64(sameDay.Risk) * forecastCarry))

	var factors []domain.RiskFactor

	if rec != nil && rec.SleepHours > 0 && rec.SleepHours < 6 {
		factors = append(factors, domain.RiskFactor{
			ID:     "short_sleep_today",
			Label:  "Under six hours of sleep tonight's appetite will run high",
			Impact: impactShortSleep,
		})
	}

	tomorrow := date.AddDays(1)
	if isWeekend(tomorrow.Weekday()) {
		factors = append(factors, domain.RiskFactor{
			ID:     "weekend_ahead",
			Label:  "Weekend trigger window starts tomorrow",
			Impact: impactWeekendAhead,
		})
	}

	if streak := deficitStreak(hist); streak >= 4 {
		factors = append(factors, domain.RiskFactor{
			ID:     "extended_deficit",
			Label:  fmt.Sprintf("%d consecutive deficit days", streak),
			Impact: impactDeficit4d,
		})
	}

	if weekdayPattern(hist, tomorrow.Weekday()) {
		factors = append(factors, domain.RiskFactor{
			ID:     "weekday_pattern",
			Label:  fmt.Sprintf("History shows overeating on %ss", tomorrow.Weekday()),
			Impact: impactWeekdayPattern,
		})
	}

	risk = capRisk(risk + sumImpacts(factors))

	// Fold the carried same-day factors in for trigger selection.
	all := append(append([]domain.RiskFactor{}, sameDay.Factors...), factors...)

	return &domain.RiskForecast{
		Risk:           risk,
		Factors:        factors,
		PrimaryTrigger: primaryTrigger(all),
		Strategies:     strategies(risk, all),
	}
}

func sleepDebtFactor(rec *domain.DayRecord, prof *domain.Profile) *domain.RiskFactor {
	if rec == nil || rec.SleepHours <= 0 {
		return nil
	}
	debt := prof.SleepTarget() - rec.SleepHours

	var impact int
	switch {
	case debt >= 3:
		impact = impactSleepDebt3h
	case debt >= 2:
		impact = impactSleepDebt2h
	case debt >= 1:
		impact = impactSleepDebt1h
	default:
		return nil
	}
	return &domain.RiskFactor{
		ID:     "sleep_debt",
		Label:  fmt.Sprintf("%.1fh of sleep debt", debt),
		Impact: impact,
	}
}

func stressFactor(rec *domain.DayRecord) *domain.RiskFactor {
	if rec == nil || len(rec.StressSamples) == 0 {
		return nil
	}
	stress := rec.StressAvg()

	var impact int
	switch {
	case stress >= 7:
		impact = impactStressHigh
	case stress >= 5:
		impact = impactStressMid
	default:
		return nil
	}
	return &domain.RiskFactor{
		ID:     "stress",
		Label:  fmt.Sprintf("Stress at %.1f/10", stress),
		Impact: impact,
	}
}

// deficitStreak counts consecutive prior days with an adherence ratio below
// deficitRatio, starting from the most recent entry.
func deficitStreak(hist []domain.HistoryEntry) int {
	streak := 0
	for _, e := range hist {
		if e.AdherenceRatio >= deficitRatio {
			break
		}
		streak++
	}
	return streak
}

func deficitStreakFactor(hist []domain.HistoryEntry, highImpact, highDays, midImpact, midDays int) *domain.RiskFactor {
	streak := deficitStreak(hist)

	var impact int
	switch {
	case streak >= highDays:
		impact = highImpact
	case streak >= midDays:
		impact = midImpact
	default:
		return nil
	}
	return &domain.RiskFactor{
		ID:     "chronic_deficit",
		Label:  fmt.Sprintf("%d consecutive deficit days", streak),
		Impact: impact,
	}
}

// weekdayPattern reports whether history shows a recurring overeating habit
// on the given weekday: at least two overeating days and a frequency of 50%
// or more among same-weekday entries. Needs at least patternMinDays of
// history to fire at all.
func weekdayPattern(hist []domain.HistoryEntry, day time.Weekday) bool {
	if len(hist) < patternMinDays {
		return false
	}
	var sameDay, over int
	for _, e := range hist {
		if e.Weekday != day {
			continue
		}
		sameDay++
		if e.AdherenceRatio > overeatRatio {
			over++
		}
	}
	return over >= 2 && sameDay > 0 && float64(over)/float64(sameDay) >= 0.5
}

func isWeekend(d time.Weekday) bool {
	return d == time.Friday || d == time.Saturday || d == time.Sunday
}

func sumImpacts(factors []domain.RiskFactor) int {
	sum := 0
	for _, f := range factors {
		sum += f.Impact
	}
	return sum
}

func capRisk(risk int) int {
	if risk > 100 {
		return 100
	}
	if risk < 0 {
		return 0
	}
	return risk
}

func primaryTrigger(factors []domain.RiskFactor) *domain.RiskFactor {
	if len(factors) == 0 {
		return nil
	}
	top := factors[0]
	for _, f := range factors[1:] {
		if f.Impact > top.Impact {
			top = f
		}
	}
	return &top
}

// strategies builds the ordered prevention list: an urgent awareness message
// first when risk is high, then one mitigation per triggered factor in
// impact order.
func strategies(risk int, factors []domain.RiskFactor) []domain.PreventionStrategy {
	var out []domain.PreventionStrategy
	priority := 0

	if risk >= 60 {
		out = append(out, domain.PreventionStrategy{
			Priority: priority,
			Action:   "High crash risk in the next 24-48h. Plan tomorrow's meals tonight and remove trigger foods from reach.",
		})
		priority++
	}

	sorted := append([]domain.RiskFactor{}, factors...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Impact > sorted[j].Impact })

	for _, f := range sorted {
		action, ok := mitigations[f.ID]
		if !ok {
			continue
		}
		out = append(out, domain.PreventionStrategy{Priority: priority, Action: action})
		priority++
	}
	return out
}

var mitigations = map[string]string{
	"sleep_debt":        "Protect tonight's sleep: screens off an hour early, target a full night.",
	"short_sleep_today": "Schedule an earlier bedtime tonight; short sleep doubles tomorrow's snacking drive.",
	"stress":            "Plan a non-food stress outlet for this evening: a walk, shower, or ten minutes of breathing.",
	"chronic_deficit":   "Consider a planned refeed day to break the deficit streak before it breaks you.",
	"extended_deficit":  "Schedule a refeed within the next two days; extended deficits end in unplanned overeating.",
	"weekend":           "Pre-plan today's meals and one deliberate treat instead of improvising.",
	"weekend_ahead":     "Write tomorrow's meal plan now, including one planned indulgence.",
	"weekday_pattern":   "Tomorrow is historically your hardest day. Pre-commit meals and keep trigger foods out of the house.",
}
