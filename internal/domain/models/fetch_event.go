package models

import "time"

// Fetch outcomes recorded in the audit trail.
const (
	OutcomeReady  = "ready"
	OutcomeFailed = "failed"
	OutcomeStale  = "stale"
)

// FetchEvent records how one triggered view request resolved.
// Note: no transport concerns beyond the json tags used by the audit sinks.
type FetchEvent struct {
	View       string    `json:"view"`
	URL        string    `json:"url"`
	Seq        uint64    `json:"seq"`
	Outcome    string    `json:"outcome"`
	Kind       string    `json:"kind,omitempty"` // network | http | decode, failures only
	Message    string    `json:"message,omitempty"`
	DurationMs int64     `json:"duration_ms"`
	At         time.Time `json:"at"`
}
