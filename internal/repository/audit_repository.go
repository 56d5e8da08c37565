package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"TraderExplorer/internal/domain/models"
	"TraderExplorer/internal/domain/repository"
	pkgkafka "TraderExplorer/pkg/kafka"
)

// auditColumns is the column order shared by the DDL and the insert.
const auditColumns = "at, view, url, seq, outcome, kind, message, duration_ms"

// ClickHouseAuditStore implements AuditSink for ClickHouse.
type ClickHouseAuditStore struct {
	db    *sql.DB
	table string
}

// NewClickHouseAuditStore creates ClickHouse audit storage.
func NewClickHouseAuditStore(db *sql.DB, table string) repository.AuditSink {
	return &ClickHouseAuditStore{db: db, table: table}
}

// SchemaStatements returns the DDL for the fetch event table.
func SchemaStatements(table string) []string {
	return []string{fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	at DateTime64(3),
	view LowCardinality(String),
	url String,
	seq UInt64,
	outcome LowCardinality(String),
	kind LowCardinality(String),
	message String,
	duration_ms Int64
) ENGINE = MergeTree
ORDER BY (view, at)`, table)}
}

func (s *ClickHouseAuditStore) Init(ctx context.Context) error {
	for _, stmt := range SchemaStatements(s.table) {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init audit table: %w", err)
		}
	}
	return nil
}

// WriteBatch inserts events using multi-row VALUES to reduce round-trips.
func (s *ClickHouseAuditStore) WriteBatch(ctx context.Context, events []*models.FetchEvent) error {
	if len(events) == 0 {
		return nil
	}
	const chunkSize = 1000
	for start := 0; start < len(events); start += chunkSize {
		end := start + chunkSize
		if end > len(events) {
			end = len(events)
		}

		q, args := buildAuditInsert(s.table, events[start:end])
		if len(args) == 0 {
			continue
		}
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return fmt.Errorf("insert audit events: %w", err)
		}
	}
	return nil
}

func buildAuditInsert(table string, events []*models.FetchEvent) (string, []interface{}) {
	values := make([]string, 0, len(events))
	args := make([]interface{}, 0, len(events)*8)
	for _, e := range events {
		if e == nil || e.View == "" {
			continue
		}
		values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?)")
		args = append(args,
			e.At.UTC(),
			e.View,
			e.URL,
			e.Seq,
			e.Outcome,
			e.Kind,
			e.Message,
			e.DurationMs,
		)
	}
	q := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s", table, auditColumns, strings.Join(values, ","))
	return q, args
}

func (s *ClickHouseAuditStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseAuditStore) Close() error {
	return nil // Managed by pkg
}

// eventPublisher is the subset of *pkgkafka.Producer used by the audit publisher.
type eventPublisher interface {
	PublishBatch(ctx context.Context, topic string, messages []pkgkafka.Message) error
}

// KafkaAuditPublisher implements AuditSink for Kafka. Messages are keyed by view.
type KafkaAuditPublisher struct {
	producer eventPublisher
	topic    string
}

// NewKafkaAuditPublisher creates Kafka audit publisher.
func NewKafkaAuditPublisher(producer *pkgkafka.Producer, topic string) repository.AuditSink {
	return &KafkaAuditPublisher{producer: producer, topic: topic}
}

func (p *KafkaAuditPublisher) Init(ctx context.Context) error { return nil }

func (p *KafkaAuditPublisher) WriteBatch(ctx context.Context, events []*models.FetchEvent) error {
	if len(events) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, 0, len(events))
	for _, e := range events {
		if e == nil {
			continue
		}
		msgs = append(msgs, pkgkafka.Message{Key: []byte(e.View), Value: e})
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

func (p *KafkaAuditPublisher) Health(ctx context.Context) error { return nil }

func (p *KafkaAuditPublisher) Close() error {
	return nil // producer is shared with the log collector and closed by its owner
}

// NoopAuditSink discards events. Used when audit.backend is none.
type NoopAuditSink struct{}

func NewNoopAuditSink() repository.AuditSink { return NoopAuditSink{} }

func (NoopAuditSink) Init(context.Context) error { return nil }
func (NoopAuditSink) WriteBatch(context.Context, []*models.FetchEvent) error { return nil }
func (NoopAuditSink) Health(context.Context) error { return nil }
func (NoopAuditSink) Close() error { return nil }
