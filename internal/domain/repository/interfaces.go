package repository

import (
	"context"

	"TraderExplorer/internal/domain/models"
)

// AuditSink persists resolved fetch events.
type AuditSink interface {
	Init(ctx context.Context) error // ensure tables, health checks
	WriteBatch(ctx context.Context, events []*models.FetchEvent) error
	Health(ctx context.Context) error
	Close() error
}

// Metrics records dashboard activity.
type Metrics interface {
	RecordTransition(view, phase string)
	RecordFetchError(view, kind string)
	RecordFetchLatency(view string, seconds float64)
	RecordStale(view string)
	RecordAuditWritten(backend string, n int)
	RecordError(kind string)
}
