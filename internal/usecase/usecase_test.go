package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"TraderExplorer/internal/domain/models"
	"TraderExplorer/internal/viewmodel"
	applogger "TraderExplorer/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMetrics struct {
	mu          sync.Mutex
	transitions []string
	fetchErrors []string
	stale       int
	written     int
	errors      []string
}

func (m *fakeMetrics) RecordTransition(view, phase string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transitions = append(m.transitions, view+":"+phase)
}

func (m *fakeMetrics) RecordFetchError(view, kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetchErrors = append(m.fetchErrors, view+":"+kind)
}

func (m *fakeMetrics) RecordFetchLatency(string, float64) {}

func (m *fakeMetrics) RecordStale(string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stale++
}

func (m *fakeMetrics) RecordAuditWritten(_ string, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.written += n
}

func (m *fakeMetrics) RecordError(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors = append(m.errors, kind)
}

type fakeSink struct {
	mu      sync.Mutex
	batches [][]*models.FetchEvent
	err     error
	closed  bool
}

func (s *fakeSink) Init(context.Context) error { return nil }
func (s *fakeSink) Health(context.Context) error { return nil }

func (s *fakeSink) WriteBatch(_ context.Context, events []*models.FetchEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.batches = append(s.batches, append([]*models.FetchEvent(nil), events...))
	return nil
}

func (s *fakeSink) Close() error {
	s.closed = true
	return nil
}

func (s *fakeSink) total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, b := range s.batches {
		n += len(b)
	}
	return n
}

func TestAuditWriter_FlushesBySize(t *testing.T) {
	sink := &fakeSink{}
	m := &fakeMetrics{}
	w := NewAuditWriter(sink, m, applogger.NewNop(), "kafka", 16, 2, time.Hour)
	w.Start()

	for i := 0; i < 4; i++ {
		require.True(t, w.Enqueue(&models.FetchEvent{View: "overview", Seq: uint64(i + 1)}))
	}
	require.Eventually(t, func() bool { return sink.total() == 4 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, w.Close(context.Background()))
	assert.True(t, sink.closed)
	assert.Equal(t, 4, m.written)
	assert.False(t, w.Enqueue(&models.FetchEvent{View: "overview"}))
}

func TestAuditWriter_StopDrainsBuffer(t *testing.T) {
	sink := &fakeSink{}
	w := NewAuditWriter(sink, &fakeMetrics{}, applogger.NewNop(), "clickhouse", 16, 100, time.Hour)
	w.Start()

	w.Enqueue(&models.FetchEvent{View: "labels"})
	w.Enqueue(&models.FetchEvent{View: "labels"})
	w.Enqueue(&models.FetchEvent{View: "labels"})

	require.NoError(t, w.Stop(context.Background()))
	assert.Equal(t, 3, sink.total())
}

func TestAuditWriter_WriteErrorCounted(t *testing.T) {
	sink := &fakeSink{err: errors.New("broker down")}
	m := &fakeMetrics{}
	w := NewAuditWriter(sink, m, applogger.NewNop(), "kafka", 4, 1, time.Hour)
	w.Start()

	w.Enqueue(&models.FetchEvent{View: "footprint"})
	require.NoError(t, w.Stop(context.Background()))

	assert.Contains(t, m.errors, "audit_write")
	assert.Zero(t, m.written)
}

func TestAuditWriter_DropsWhenFull(t *testing.T) {
	m := &fakeMetrics{}
	w := NewAuditWriter(&fakeSink{}, m, applogger.NewNop(), "kafka", 1, 10, time.Hour)

	assert.True(t, w.Enqueue(&models.FetchEvent{View: "a"}))
	assert.False(t, w.Enqueue(&models.FetchEvent{View: "b"}))
	assert.Equal(t, []string{"audit_buffer_full"}, m.errors)
	require.NoError(t, w.Stop(context.Background()))
}

func TestFetchRecorder_Observe(t *testing.T) {
	sink := &fakeSink{}
	m := &fakeMetrics{}
	w := NewAuditWriter(sink, m, applogger.NewNop(), "kafka", 16, 100, time.Hour)
	w.Start()

	r := NewFetchRecorder("http://localhost:8000/", m, applogger.NewNop(), w)
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	r.now = func() time.Time { return at }

	req := viewmodel.Endpoint{Path: "/topics/trader/{id}"}.Resolve(viewmodel.Params{"id": "0xA"})
	r.Observe(viewmodel.Event{View: "topics", Seq: 1, Request: req, Phase: viewmodel.PhaseLoading})
	r.Observe(viewmodel.Event{View: "topics", Seq: 1, Request: req, Phase: viewmodel.PhaseFailed, Stale: true,
		Err: &viewmodel.FetchError{Kind: viewmodel.KindHTTP, Status: 500}})
	r.Observe(viewmodel.Event{View: "topics", Seq: 2, Request: req, Phase: viewmodel.PhaseFailed,
		Err: &viewmodel.FetchError{Kind: viewmodel.KindHTTP, Status: 404}, Duration: 30 * time.Millisecond})
	r.Observe(viewmodel.Event{View: "overview", Seq: 1, Request: viewmodel.Request{Path: "/overview"}, Phase: viewmodel.PhaseReady})

	require.NoError(t, w.Stop(context.Background()))

	require.Len(t, sink.batches, 1)
	events := sink.batches[0]
	require.Len(t, events, 3)

	assert.Equal(t, models.OutcomeStale, events[0].Outcome)
	assert.Equal(t, "http://localhost:8000/topics/trader/0xA", events[0].URL)

	assert.Equal(t, models.OutcomeFailed, events[1].Outcome)
	assert.Equal(t, "http", events[1].Kind)
	assert.Equal(t, "HTTP 404", events[1].Message)
	assert.Equal(t, int64(30), events[1].DurationMs)
	assert.Equal(t, at, events[1].At)

	assert.Equal(t, models.OutcomeReady, events[2].Outcome)
	assert.Empty(t, events[2].Kind)

	assert.Equal(t, []string{"topics:loading", "topics:failed", "overview:ready"}, m.transitions)
	assert.Equal(t, []string{"topics:http"}, m.fetchErrors)
	assert.Equal(t, 1, m.stale)
}
