// Package smoothing stabilizes the engine's outputs: an exponential moving
// average with a rate limiter for the score, and a hysteresis state machine
// for the risk level.
package smoothing

import (
	"math"

	"github.com/heys-app/metabolic-engine/internal/domain"
)

// Alpha is the EMA smoothing factor.
const Alpha = 0.3

// MaxStep bounds the per-update change of the smoothed score.
const MaxStep = 15.0

// Smooth applies the EMA and then the rate limiter. With no previous value
// the raw score passes through unchanged. Returns the final value, the
// unlimited EMA value, and whether the limiter bound.
//
// The limiter is a monotone rate limiter, not an EMA clamp: when the raw
// reading moves more than MaxStep from the previous smoothed value, the
// result is exactly prev +- MaxStep in the EMA's direction of change. With
// prev=50 and raw=90 this yields 65, not the EMA value 62.
func Smooth(raw float64, prev *float64) (value, ema float64, limited bool) {
	if prev == nil {
		return raw, raw, false
	}

	ema = Alpha*raw + (1-Alpha)*(*prev)

	if math.Abs(raw-*prev) > MaxStep {
		if ema >= *prev {
			return *prev + MaxStep, ema, true
		}
		return *prev - MaxStep, ema, true
	}
	return ema, ema, false
}

// Enter/exit thresholds for the risk-level hysteresis. A level changes only
// when its own condition is met; otherwise it holds.
const (
	enterMedium = 30 // low -> medium at risk >= 30
	enterHigh   = 60 // medium -> high at risk >= 60
	exitMedium  = 25 // medium -> low at risk < 25
	exitHigh    = 55 // high -> medium at risk < 55
)

// NextLevel advances the risk level given the previous level and the new
// risk reading. An empty previous level starts at low.
func NextLevel(prev domain.RiskLevel, risk int) domain.RiskLevel {
	if prev == "" {
		prev = domain.RiskLow
	}

	switch prev {
	case domain.RiskLow:
		if risk >= enterMedium {
			return domain.RiskMedium
		}
	case domain.RiskMedium:
		if risk >= enterHigh {
			return domain.RiskHigh
		}
		if risk < exitMedium {
			return domain.RiskLow
		}
	case domain.RiskHigh:
		if risk < exitHigh {
			return domain.RiskMedium
		}
	}
	return prev
}
