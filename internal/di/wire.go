//go:build wireinject
// +build wireinject

package di

import (
	"TraderExplorer/internal/handler/web"
	"TraderExplorer/internal/presenter"
	"TraderExplorer/internal/services/analytics"
	"TraderExplorer/internal/usecase"
	"TraderExplorer/internal/viewmodel"
	"TraderExplorer/pkg/config"
	xhttp "TraderExplorer/pkg/http"
	"TraderExplorer/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// The returned cleanup closes infrastructure clients and must run after App.Run.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		// Infrastructure clients
		ProvideKafkaProducer,
		ProvideClickHouseClient,

		// Ambient
		ProvideLogger,
		ProvideMetrics,

		// Audit trail
		ProvideAuditSink,
		ProvideAuditWriter,
		ProvideFetchRecorder,
		wire.Bind(new(viewmodel.Observer), new(*usecase.FetchRecorder)),

		// Views
		ProvideAnalyticsClient,
		wire.Bind(new(viewmodel.Fetcher), new(*analytics.Client)),
		ProvideFormatter,
		presenter.NewCatalog,

		// HTTP
		ProvideLimiter,
		web.NewHandler,
		wire.Bind(new(xhttp.Handler), new(*web.Handler)),
		ProvideHTTPServer,

		// Application server
		ProvideApp,
	)
	return nil, nil, nil
}
