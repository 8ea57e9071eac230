package phenotype

import (
	"math"

	"github.com/heys-app/metabolic-engine/internal/domain"
)

// Streak zone hard bounds and fallbacks.
const (
	streakFloor          = 0.75
	streakCeil           = 1.25
	crashFallbackRatio   = 1.3
	deficitFallbackRatio = 0.85
	deficitRangeLow      = 0.5
	deficitRangeHigh     = 0.85
)

// Thresholds derives personal bands from at least 14 days of adherence
// history: a streak zone of mean +- 0.5 sigma, the smallest observed crash
// ratio, and the largest comfortable deficit ratio.
func Thresholds(hist []domain.HistoryEntry) *domain.PersonalThresholds {
	if len(hist) < MinDaysThresholds {
		return &domain.PersonalThresholds{
			Available:     false,
			DaysRequired:  MinDaysThresholds,
			DaysAvailable: len(hist),
		}
	}

	mean, sigma := meanStddev(hist)

	crash := crashFallbackRatio
	for _, e := range hist {
		if e.AdherenceRatio > crashFallbackRatio && (crash == crashFallbackRatio || e.AdherenceRatio < crash) {
			crash = e.AdherenceRatio
		}
	}

	deficit := deficitFallbackRatio
	found := false
	for _, e := range hist {
		if e.AdherenceRatio > deficitRangeLow && e.AdherenceRatio < deficitRangeHigh {
			if !found || e.AdherenceRatio > deficit {
				deficit = e.AdherenceRatio
				found = true
			}
		}
	}
	if !found {
		deficit = deficitFallbackRatio
	}

	return &domain.PersonalThresholds{
		Available:      true,
		DaysRequired:   MinDaysThresholds,
		DaysAvailable:  len(hist),
		StreakLow:      math.Max(streakFloor, mean-0.5*sigma),
		StreakHigh:     math.Min(streakCeil, mean+0.5*sigma),
		CrashThreshold: crash,
		DeficitComfort: deficit,
	}
}

func meanStddev(hist []domain.HistoryEntry) (mean, sigma float64) {
	n := float64(len(hist))
	for _, e := range hist {
		mean += e.AdherenceRatio
	}
	mean /= n

	var sq float64
	for _, e := range hist {
		d := e.AdherenceRatio - mean
		sq += d * d
	}
	return mean, math.Sqrt(sq / n)
}
