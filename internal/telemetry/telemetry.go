// Package telemetry emits engine events to the process log. Events are
// observational only; a sink failure never affects the computation that
// produced it.
package telemetry

import (
	"encoding/json"
	"log"

	"github.com/google/uuid"
)

// LogSink writes one structured line per event, tagged with a unique event
// id so downstream log collectors can deduplicate.
type LogSink struct {
	// Prefix distinguishes deployments sharing one log stream.
	Prefix string
}

// Notify implements the telemetry contract. Payloads that fail to marshal
// are logged without their body rather than dropped.
func (s *LogSink) Notify(event string, payload map[string]any) {
	prefix := s.Prefix
	if prefix == "" {
		prefix = "engine"
	}
	id := uuid.NewString()

	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("[%s] event=%s id=%s (payload unserializable: %v)", prefix, event, id, err)
		return
	}
	log.Printf("[%s] event=%s id=%s %s", prefix, event, id, body)
}
