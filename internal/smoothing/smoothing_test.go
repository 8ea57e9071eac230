package smoothing

import (
	"math"
	"testing"

	"github.com/heys-app/metabolic-engine/internal/domain"
)

func TestSmooth_NoPrevious(t *testing.T) {
	value, ema, limited := Smooth(72, nil)
	if value != 72 || ema != 72 || limited {
		t.Errorf("Smooth(72, nil) = (%v, %v, %v), want (72, 72, false)", value, ema, limited)
	}
}

func TestSmooth_PlainEMA(t *testing.T) {
	prev := 80.0
	value, ema, limited := Smooth(70, &prev)

	// Raw moves 10 points, under the limiter; result is the EMA:
	// 0.3*70 + 0.7*80 = 77.
	if math.Abs(value-77) > 1e-9 {
		t.Errorf("value = %v, want 77", value)
	}
	if math.Abs(ema-77) > 1e-9 {
		t.Errorf("ema = %v, want 77", ema)
	}
	if limited {
		t.Error("limiter should not bind on a 10-point raw move")
	}
}

func TestSmooth_RateLimiterBinds(t *testing.T) {
	// prev=50, raw=90: the raw reading jumps 40 points, so the limiter
	// binds and the result is prev+15 = 65, not the EMA value 62.
	prev := 50.0
	value, ema, limited := Smooth(90, &prev)

	if math.Abs(ema-62) > 1e-9 {
		t.Errorf("ema = %v, want 62", ema)
	}
	if math.Abs(value-65) > 1e-9 {
		t.Errorf("value = %v, want 65 (50 + 15)", value)
	}
	if !limited {
		t.Error("limiter must report binding")
	}
}

func TestSmooth_RateLimiterDownward(t *testing.T) {
	prev := 80.0
	value, _, limited := Smooth(10, &prev)

	// Raw drops 70 points; the result clips to 80-15 = 65.
	if math.Abs(value-65) > 1e-9 {
		t.Errorf("value = %v, want 65", value)
	}
	if !limited {
		t.Error("limiter must bind on a 70-point raw drop")
	}
}

func TestNextLevel_TransitionTable(t *testing.T) {
	tests := []struct {
		name string
		prev domain.RiskLevel
		risk int
		want domain.RiskLevel
	}{
		{"low holds below 30", domain.RiskLow, 29, domain.RiskLow},
		{"low enters medium at 30", domain.RiskLow, 30, domain.RiskMedium},
		{"low cannot jump to high", domain.RiskLow, 95, domain.RiskMedium},
		{"medium holds in dead zone", domain.RiskMedium, 26, domain.RiskMedium},
		{"medium holds below enter-high", domain.RiskMedium, 59, domain.RiskMedium},
		{"medium enters high at 60", domain.RiskMedium, 60, domain.RiskHigh},
		{"medium exits to low below 25", domain.RiskMedium, 24, domain.RiskLow},
		{"high holds above exit", domain.RiskHigh, 55, domain.RiskHigh},
		{"high exits to medium below 55", domain.RiskHigh, 54, domain.RiskMedium},
		{"high never drops straight to low", domain.RiskHigh, 0, domain.RiskMedium},
		{"empty level starts at low", "", 10, domain.RiskLow},
		{"empty level can enter medium", "", 40, domain.RiskMedium},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NextLevel(tt.prev, tt.risk); got != tt.want {
				t.Errorf("NextLevel(%q, %d) = %q, want %q", tt.prev, tt.risk, got, tt.want)
			}
		})
	}
}

func TestNextLevel_NoFlapNearBoundary(t *testing.T) {
	// Spec scenario: from low, risk 40 moves to medium; a following reading
	// of 26 (not below 25) must hold medium.
	level := NextLevel(domain.RiskLow, 40)
	if level != domain.RiskMedium {
		t.Fatalf("after 40: level = %q, want medium", level)
	}
	level = NextLevel(level, 26)
	if level != domain.RiskMedium {
		t.Errorf("after 26: level = %q, want medium (dead zone)", level)
	}
}
