// Package metaphase classifies the current moment into anabolic,
// transitional, or catabolic phases relative to the last meal.
package metaphase

import (
	"context"
	"fmt"
	"time"

	"github.com/heys-app/metabolic-engine/internal/domain"
)

// Elapsed-time thresholds for the built-in heuristic, in hours since the
// last meal. At and beyond catabolicAfter lipolysis is considered active.
const (
	anabolicUntil  = 3.0
	catabolicAfter = 5.0
)

// waveRemainingAnabolic is the wave-remaining cutoff above which the wave
// calculator's result maps to the anabolic phase.
const waveRemainingAnabolic = 2.0

// Detector classifies the metabolic phase, delegating to the insulin-wave
// collaborator when it is available.
type Detector struct {
	Wave          domain.InsulinWave
	BaseWaveHours float64
	Telemetry     domain.Telemetry
}

// NewDetector wires a detector with null-object defaults.
func NewDetector(wave domain.InsulinWave, baseWaveHours float64) *Detector {
	if wave == nil {
		wave = domain.NoopWave{}
	}
	if baseWaveHours <= 0 {
		baseWaveHours = anabolicUntil
	}
	return &Detector{Wave: wave, BaseWaveHours: baseWaveHours, Telemetry: domain.NoopTelemetry{}}
}

// Detect classifies the phase at the given moment. With no meal data the
// phase is unknown. Wave calculator failures fall back to the elapsed-time
// heuristic and are reported to telemetry, never to the caller.
func (d *Detector) Detect(ctx context.Context, rec *domain.DayRecord, prof *domain.Profile, now time.Time) domain.PhaseResult {
	if rec == nil || len(rec.Meals) == 0 {
		return domain.PhaseResult{Phase: domain.PhaseUnknown}
	}

	elapsed, ok := hoursSinceLastMeal(rec, now)
	if !ok {
		return domain.PhaseResult{Phase: domain.PhaseUnknown}
	}

	base := d.BaseWaveHours
	if prof != nil && prof.InsulinWaveHours > 0 {
		base = prof.InsulinWaveHours
	}

	wave, err := d.Wave.Calculate(ctx, domain.WaveRequest{
		Meals:         rec.Meals,
		Date:          rec.Date,
		ClockHour:     float64(now.Hour()) + float64(now.Minute())/60,
		BaseWaveHours: base,
	})
	if err == nil && wave != nil {
		return fromWave(wave, elapsed)
	}
	if err != nil && err != domain.ErrWaveUnavailable {
		d.Telemetry.Notify("wave_fallback", map[string]any{"error": err.Error()})
	}

	return fromElapsed(elapsed)
}

func fromWave(wave *domain.WaveResult, elapsed float64) domain.PhaseResult {
	switch {
	case wave.Status == "lipolysis":
		return domain.PhaseResult{
			Phase:        domain.PhaseCatabolic,
			HoursInPhase: maxf(elapsed-catabolicAfter, 0),
		}
	case wave.RemainingHours > waveRemainingAnabolic:
		return domain.PhaseResult{
			Phase:        domain.PhaseAnabolic,
			HoursInPhase: elapsed,
			HoursToNext:  wave.RemainingHours - waveRemainingAnabolic,
		}
	default:
		return domain.PhaseResult{
			Phase:        domain.PhaseTransitional,
			HoursInPhase: maxf(elapsed-anabolicUntil, 0),
			HoursToNext:  wave.RemainingHours,
		}
	}
}

func fromElapsed(elapsed float64) domain.PhaseResult {
	switch {
	case elapsed < anabolicUntil:
		return domain.PhaseResult{
			Phase:        domain.PhaseAnabolic,
			HoursInPhase: elapsed,
			HoursToNext:  anabolicUntil - elapsed,
		}
	case elapsed < catabolicAfter:
		return domain.PhaseResult{
			Phase:        domain.PhaseTransitional,
			HoursInPhase: elapsed - anabolicUntil,
			HoursToNext:  catabolicAfter - elapsed,
		}
	default:
		return domain.PhaseResult{
			Phase:        domain.PhaseCatabolic,
			HoursInPhase: elapsed - catabolicAfter,
		}
	}
}

// hoursSinceLastMeal finds the latest meal clock time on the record's date
// and measures to now. Reports false when no meal time parses.
func hoursSinceLastMeal(rec *domain.DayRecord, now time.Time) (float64, bool) {
	day, err := rec.Date.Time()
	if err != nil {
		return 0, false
	}

	var last time.Time
	found := false
	for _, m := range rec.Meals {
		var h, min int
		if _, err := fmt.Sscanf(m.Time, "%d:%d", &h, &min); err != nil {
			continue
		}
		at := day.Add(time.Duration(h)*time.Hour + time.Duration(min)*time.Minute)
		if !found || at.After(last) {
			last = at
			found = true
		}
	}
	if !found {
		return 0, false
	}

	elapsed := now.Sub(last).Hours()
	if elapsed < 0 {
		elapsed = 0
	}
	return elapsed, true
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
