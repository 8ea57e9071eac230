package phenotype

import (
	"math"
	"testing"

	"github.com/heys-app/metabolic-engine/internal/domain"
)

func ratios(rs ...float64) []domain.HistoryEntry {
	out := make([]domain.HistoryEntry, len(rs))
	for i, r := range rs {
		out[i] = domain.HistoryEntry{
			Date:           domain.DateKey("2026-08-28").AddDays(-i),
			AdherenceRatio: r,
		}
	}
	return out
}

func TestThresholds_InsufficientData(t *testing.T) {
	res := Thresholds(ratios(1.0, 1.1, 0.9))

	if res.Available {
		t.Fatal("3 days must not produce thresholds")
	}
	if res.DaysRequired != 14 {
		t.Errorf("DaysRequired = %d, want 14", res.DaysRequired)
	}
	if res.DaysAvailable != 3 {
		t.Errorf("DaysAvailable = %d, want 3", res.DaysAvailable)
	}
}

func TestThresholds_UniformHistory(t *testing.T) {
	rs := make([]float64, 14)
	for i := range rs {
		rs[i] = 1.0
	}
	res := Thresholds(ratios(rs...))

	if !res.Available {
		t.Fatal("14 days must produce thresholds")
	}
	// Sigma 0: the zone collapses to the mean.
	if res.StreakLow != 1.0 || res.StreakHigh != 1.0 {
		t.Errorf("streak zone = [%v, %v], want [1, 1]", res.StreakLow, res.StreakHigh)
	}
	// No crash or deficit days observed: fallbacks apply.
	if res.CrashThreshold != 1.3 {
		t.Errorf("CrashThreshold = %v, want fallback 1.3", res.CrashThreshold)
	}
	if res.DeficitComfort != 0.85 {
		t.Errorf("DeficitComfort = %v, want fallback 0.85", res.DeficitComfort)
	}
}

func TestThresholds_StreakZoneBounds(t *testing.T) {
	// Wildly varying ratios: the zone must clamp to [0.75, 1.25].
	rs := make([]float64, 20)
	for i := range rs {
		if i%2 == 0 {
			rs[i] = 0.2
		} else {
			rs[i] = 1.8
		}
	}
	res := Thresholds(ratios(rs...))

	if res.StreakLow != 0.75 {
		t.Errorf("StreakLow = %v, want floor 0.75", res.StreakLow)
	}
	if res.StreakHigh != 1.25 {
		t.Errorf("StreakHigh = %v, want ceiling 1.25", res.StreakHigh)
	}
}

func TestThresholds_PersonalCrashAndDeficit(t *testing.T) {
	rs := []float64{1.0, 1.45, 0.8, 1.0, 1.6, 0.7, 1.0, 1.0, 0.82, 1.0, 1.0, 1.0, 1.0, 1.0}
	res := Thresholds(ratios(rs...))

	// Smallest observed ratio above 1.3.
	if math.Abs(res.CrashThreshold-1.45) > 1e-9 {
		t.Errorf("CrashThreshold = %v, want 1.45", res.CrashThreshold)
	}
	// Largest observed ratio inside (0.5, 0.85).
	if math.Abs(res.DeficitComfort-0.82) > 1e-9 {
		t.Errorf("DeficitComfort = %v, want 0.82", res.DeficitComfort)
	}
}

func TestThresholds_MeanCentredZone(t *testing.T) {
	// 16 days alternating 0.9 / 1.1: mean 1.0, sigma 0.1.
	rs := make([]float64, 16)
	for i := range rs {
		if i%2 == 0 {
			rs[i] = 0.9
		} else {
			rs[i] = 1.1
		}
	}
	res := Thresholds(ratios(rs...))

	if math.Abs(res.StreakLow-0.95) > 1e-9 {
		t.Errorf("StreakLow = %v, want 0.95", res.StreakLow)
	}
	if math.Abs(res.StreakHigh-1.05) > 1e-9 {
		t.Errorf("StreakHigh = %v, want 1.05", res.StreakHigh)
	}
}
