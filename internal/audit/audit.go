// Package audit emits fire-and-forget pipeline outcome events for the
// external audit collaborator. Publishing never blocks or fails a
// request: errors are logged and counted, nothing more.
package audit

import (
	"context"
	"time"
)

// Event describes the outcome of one pipeline run. The content hash is
// included here for correlation; it is not part of the API response.
type Event struct {
	ID               string    `json:"id"`
	OccurredAt       time.Time `json:"occurred_at"`
	MessageType      string    `json:"message_type"`
	MessageControlID string    `json:"message_control_id"`
	Valid            bool      `json:"valid"`
	ContainsPHI      bool      `json:"contains_phi"`
	ContentHash      string    `json:"content_hash"`
	AgentsRun        int       `json:"agents_run"`
	AgentsFailed     int       `json:"agents_failed"`
	DurationMs       float64   `json:"duration_ms"`
	Outcome          string    `json:"outcome"`
}

type Recorder interface {
	Record(ctx context.Context, event Event)
}

// NopRecorder drops events; used when audit publishing is disabled.
type NopRecorder struct{}

func (NopRecorder) Record(ctx context.Context, event Event) {}
