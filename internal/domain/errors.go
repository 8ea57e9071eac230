package domain

import "fmt"

// EngineError is the unified error type for the engine.
// Each error has a numeric code and human-readable message.
type EngineError struct {
	Code    int
	Message string
}

// Error implements the error interface.
func (e *EngineError) Error() string {
	return fmt.Sprintf("engine error %d: %s", e.Code, e.Message)
}

// NewEngineError creates a new EngineError.
func NewEngineError(code int, msg string) *EngineError {
	return &EngineError{Code: code, Message: msg}
}

// WrapEngineError creates an EngineError that includes a cause.
func WrapEngineError(code int, msg string, cause error) *EngineError {
	return &EngineError{Code: code, Message: fmt.Sprintf("%s: %v", msg, cause)}
}

// ---- Engine / orchestrator errors (-42010 to -42039) ----

var (
	ErrInvalidDate      = &EngineError{Code: -42010, Message: "invalid date key"}
	ErrProfileMissing   = &EngineError{Code: -42011, Message: "profile not found"}
	ErrClientIDRequired = &EngineError{Code: -42012, Message: "client identity is required"}
	ErrWindowTooLarge   = &EngineError{Code: -42013, Message: "history window exceeds 90 days"}
)

// ---- Collaborator errors (-42040 to -42069) ----

var (
	ErrWaveUnavailable      = &EngineError{Code: -42040, Message: "insulin wave calculator unavailable"}
	ErrWaveMalformed        = &EngineError{Code: -42041, Message: "insulin wave calculator returned malformed data"}
	ErrCircadianUnavailable = &EngineError{Code: -42042, Message: "circadian analyzer unavailable"}
	ErrFoodNotFound         = &EngineError{Code: -42043, Message: "food reference not found in index"}
)

// ---- Store / Config errors (-42130 to -42159) ----

var (
	ErrStoreInit     = &EngineError{Code: -42130, Message: "failed to initialize store"}
	ErrStoreQuery    = &EngineError{Code: -42131, Message: "store query failed"}
	ErrStoreWrite    = &EngineError{Code: -42132, Message: "store write failed"}
	ErrConfigInvalid = &EngineError{Code: -42136, Message: "invalid configuration"}
)

// ---- API errors (-42160 to -42189) ----

var (
	ErrRateLimitExceeded = &EngineError{Code: -42160, Message: "rate limit exceeded"}
)
