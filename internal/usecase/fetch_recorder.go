package usecase

import (
	"strings"
	"time"

	"TraderExplorer/internal/domain/models"
	drepo "TraderExplorer/internal/domain/repository"
	"TraderExplorer/internal/viewmodel"
	applogger "TraderExplorer/pkg/logger"
)

// FetchRecorder observes view models: it records metrics, logs failures and
// hands resolved fetches to the audit writer.
type FetchRecorder struct {
	baseURL string
	metrics drepo.Metrics
	log     *applogger.Logger
	audit   *AuditWriter
	now     func() time.Time
}

// NewFetchRecorder creates a recorder. audit may be nil.
func NewFetchRecorder(baseURL string, metrics drepo.Metrics, log *applogger.Logger, audit *AuditWriter) *FetchRecorder {
	return &FetchRecorder{
		baseURL: strings.TrimRight(baseURL, "/"),
		metrics: metrics,
		log:     log,
		audit:   audit,
		now:     time.Now,
	}
}

// Observe implements viewmodel.Observer.
func (r *FetchRecorder) Observe(ev viewmodel.Event) {
	url := r.baseURL + ev.Request.String()

	if ev.Phase == viewmodel.PhaseLoading {
		r.metrics.RecordTransition(ev.View, ev.Phase.String())
		r.log.Debug("view loading",
			applogger.String("view", ev.View),
			applogger.Uint64("seq", ev.Seq),
			applogger.String("url", url),
		)
		return
	}

	r.metrics.RecordFetchLatency(ev.View, ev.Duration.Seconds())

	fe := &models.FetchEvent{
		View:       ev.View,
		URL:        url,
		Seq:        ev.Seq,
		Outcome:    models.OutcomeReady,
		DurationMs: ev.Duration.Milliseconds(),
		At:         r.now().UTC(),
	}
	if ev.Err != nil {
		fe.Outcome = models.OutcomeFailed
		fe.Kind = string(viewmodel.KindOf(ev.Err))
		fe.Message = viewmodel.Message(ev.Err)
	}

	switch {
	case ev.Stale:
		fe.Outcome = models.OutcomeStale
		r.metrics.RecordStale(ev.View)
		r.log.Debug("stale result dropped",
			applogger.String("view", ev.View),
			applogger.Uint64("seq", ev.Seq),
		)
	case ev.Err != nil:
		r.metrics.RecordTransition(ev.View, ev.Phase.String())
		r.metrics.RecordFetchError(ev.View, fe.Kind)
		r.log.Error("view fetch failed",
			applogger.String("view", ev.View),
			applogger.String("url", url),
			applogger.String("kind", fe.Kind),
			applogger.String("message", fe.Message),
		)
	default:
		r.metrics.RecordTransition(ev.View, ev.Phase.String())
		r.log.Info("view ready",
			applogger.String("view", ev.View),
			applogger.Uint64("seq", ev.Seq),
			applogger.Duration("duration_ms", ev.Duration),
		)
	}

	if r.audit != nil {
		r.audit.Enqueue(fe)
	}
}
