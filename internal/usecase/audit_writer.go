package usecase

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"TraderExplorer/internal/domain/models"
	drepo "TraderExplorer/internal/domain/repository"
	applogger "TraderExplorer/pkg/logger"
)

// AuditWriter buffers fetch events and writes them to the audit sink in batches.
// Enqueue never blocks; events are dropped when the buffer is full.
type AuditWriter struct {
	sink       drepo.AuditSink
	metrics    drepo.Metrics
	log        *applogger.Logger
	backend    string
	batchSz    int
	flushEvery time.Duration

	ch      chan *models.FetchEvent
	stopCh  chan struct{}
	done    chan struct{}
	started atomic.Bool
	stopped atomic.Bool
	once    sync.Once
}

// NewAuditWriter creates a new AuditWriter instance.
func NewAuditWriter(
	sink drepo.AuditSink,
	metrics drepo.Metrics,
	log *applogger.Logger,
	backend string,
	buffer int,
	batchSz int,
	flushEvery time.Duration,
) *AuditWriter {
	if buffer <= 0 {
		buffer = 1024
	}
	if batchSz <= 0 {
		batchSz = 100
	}
	if flushEvery <= 0 {
		flushEvery = 2 * time.Second
	}
	return &AuditWriter{
		sink:       sink,
		metrics:    metrics,
		log:        log,
		backend:    backend,
		batchSz:    batchSz,
		flushEvery: flushEvery,
		ch:         make(chan *models.FetchEvent, buffer),
		stopCh:     make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Start launches the background batching loop. Subsequent calls are no-ops.
func (w *AuditWriter) Start() {
	if !w.started.CompareAndSwap(false, true) {
		return
	}
	go w.run()
}

// Enqueue schedules ev for writing and reports whether it was accepted.
func (w *AuditWriter) Enqueue(ev *models.FetchEvent) bool {
	if ev == nil || w.stopped.Load() {
		return false
	}
	select {
	case w.ch <- ev:
		return true
	default:
		w.metrics.RecordError("audit_buffer_full")
		return false
	}
}

// Stop flushes buffered events and waits for the loop to exit or ctx to end.
func (w *AuditWriter) Stop(ctx context.Context) error {
	w.once.Do(func() {
		w.stopped.Store(true)
		close(w.stopCh)
	})
	if !w.started.Load() {
		return nil
	}
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *AuditWriter) run() {
	defer close(w.done)

	ticker := time.NewTicker(w.flushEvery)
	defer ticker.Stop()

	batch := make([]*models.FetchEvent, 0, w.batchSz)
	for {
		select {
		case ev := <-w.ch:
			batch = append(batch, ev)
			if len(batch) >= w.batchSz {
				w.flush(batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				w.flush(batch)
				batch = batch[:0]
			}
		case <-w.stopCh:
			for {
				select {
				case ev := <-w.ch:
					batch = append(batch, ev)
				default:
					if len(batch) > 0 {
						w.flush(batch)
					}
					return
				}
			}
		}
	}
}

func (w *AuditWriter) flush(batch []*models.FetchEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	start := time.Now()
	if err := w.sink.WriteBatch(ctx, batch); err != nil {
		w.metrics.RecordError("audit_write")
		w.log.Error("audit write failed",
			applogger.String("backend", w.backend),
			applogger.Int("events", len(batch)),
			applogger.Error(err),
		)
		return
	}
	w.metrics.RecordAuditWritten(w.backend, len(batch))
	w.log.Debug("audit batch written",
		applogger.String("backend", w.backend),
		applogger.Int("events", len(batch)),
		applogger.Duration("took_ms", time.Since(start)),
	)
}

// Close stops the writer and closes the sink.
func (w *AuditWriter) Close(ctx context.Context) error {
	err := w.Stop(ctx)
	if cerr := w.sink.Close(); err == nil {
		err = cerr
	}
	return err
}
