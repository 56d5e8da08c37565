package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"TraderExplorer/internal/service/ratelimit"
	"TraderExplorer/internal/usecase"
	"TraderExplorer/pkg/config"
	xhttp "TraderExplorer/pkg/http"
	applogger "TraderExplorer/pkg/logger"
)

const (
	limiterPruneEvery = time.Minute
	limiterMaxIdle    = 10 * time.Minute
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	httpServer *xhttp.Server
	audit      *usecase.AuditWriter
	limiter    *ratelimit.Limiter
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	httpServer *xhttp.Server,
	audit *usecase.AuditWriter,
	limiter *ratelimit.Limiter,
) *App {
	return &App{
		cfg:        cfg,
		log:        log,
		httpServer: httpServer,
		audit:      audit,
		limiter:    limiter,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.audit.Start()
	a.log.Info("audit writer started", applogger.String("backend", a.cfg.Audit.Backend))

	go a.pruneLimiter(ctx)

	// Start HTTP server
	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}

	// Wait for interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	cancel()
	return a.shutdown()
}

// shutdown gracefully stops all services. Infrastructure clients are closed by the caller.
func (a *App) shutdown() error {
	a.log.Info("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	// Stop accepting page requests first so no new fetch events are produced
	if err := a.httpServer.Stop(ctx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	// Flush buffered audit events
	if err := a.audit.Close(ctx); err != nil {
		a.log.Warn("audit writer stop error", applogger.Error(err))
	}

	// Flush aggregated error logs while the producer is still open
	a.log.RemoveCollector()

	a.log.Info("shutdown complete")
	return nil
}

func (a *App) pruneLimiter(ctx context.Context) {
	ticker := time.NewTicker(limiterPruneEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := a.limiter.Prune(limiterMaxIdle); n > 0 {
				a.log.Debug("rate limiter pruned", applogger.Int("keys", n))
			}
		}
	}
}
