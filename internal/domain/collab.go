package domain

import "context"

// RecordStore is the persistence collaborator. Implementations return
// (nil, nil) when a record does not exist; errors are reserved for I/O
// failures.
type RecordStore interface {
	DayRecord(ctx context.Context, clientID string, date DateKey) (*DayRecord, error)
	Profile(ctx context.Context, clientID string) (*Profile, error)
}

// FoodIndex resolves a meal item reference to per-100g macro values.
// Unknown refs return (nil, nil).
type FoodIndex interface {
	Lookup(ctx context.Context, ref string) (*FoodFacts, error)
}

// WaveRequest is the input to the optional insulin-wave calculator.
type WaveRequest struct {
	Meals         []Meal
	Date          DateKey
	ClockHour     float64
	BaseWaveHours float64
}

// WaveResult is the calculator's output. Status is "lipolysis" once the wave
// has fully decayed; RemainingHours is time left in the current wave.
type WaveResult struct {
	Status         string
	RemainingHours float64
	AvgGI          float64
}

// InsulinWave is the optional wave calculator capability. The null object
// returns ErrWaveUnavailable so callers fall back to the built-in heuristic
// with a plain error check instead of a presence probe.
type InsulinWave interface {
	Calculate(ctx context.Context, req WaveRequest) (*WaveResult, error)
}

// Circadian is the optional circadian-strength analyzer used to enrich
// phenotype results.
type Circadian interface {
	Strength(ctx context.Context, clientID string, history []HistoryEntry) (int, error)
}

// FeatureFlags gates the whole engine with a single boolean.
type FeatureFlags interface {
	EngineEnabled(ctx context.Context) bool
}

// Telemetry receives event notifications on successful computations.
// Implementations must never fail in a way that affects engine results.
type Telemetry interface {
	Notify(event string, payload map[string]any)
}

// NoopWave is the null-object insulin-wave calculator.
type NoopWave struct{}

// Calculate always reports the calculator as unavailable.
func (NoopWave) Calculate(ctx context.Context, req WaveRequest) (*WaveResult, error) {
	return nil, ErrWaveUnavailable
}

// NeutralCircadian is the null-object analyzer returning a neutral score.
type NeutralCircadian struct{}

// Strength returns the neutral midpoint score.
func (NeutralCircadian) Strength(ctx context.Context, clientID string, history []HistoryEntry) (int, error) {
	return 50, nil
}

// StaticFlags is a FeatureFlags implementation backed by a fixed value.
type StaticFlags struct {
	Enabled bool
}

// EngineEnabled reports the configured value.
func (f StaticFlags) EngineEnabled(ctx context.Context) bool {
	return f.Enabled
}

// NoopTelemetry discards all notifications.
type NoopTelemetry struct{}

// Notify does nothing.
func (NoopTelemetry) Notify(event string, payload map[string]any) {}
