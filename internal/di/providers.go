package di

import (
	"context"
	"fmt"
	"time"

	"TraderExplorer/internal/domain/repository"
	"TraderExplorer/internal/presenter"
	internalrepo "TraderExplorer/internal/repository"
	"TraderExplorer/internal/service/ratelimit"
	"TraderExplorer/internal/services/analytics"
	"TraderExplorer/internal/usecase"
	pkgch "TraderExplorer/pkg/clickhouse"
	"TraderExplorer/pkg/config"
	xhttp "TraderExplorer/pkg/http"
	pkgkafka "TraderExplorer/pkg/kafka"
	applogger "TraderExplorer/pkg/logger"
	"TraderExplorer/pkg/metrics"
	"TraderExplorer/pkg/server"

	"github.com/prometheus/client_golang/prometheus"
)

const serviceName = "trader-explorer"

// ProvideKafkaProducer creates a Kafka producer when the audit backend is kafka.
// Otherwise it returns nil.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, func(), error) {
	if cfg.Audit.Backend != config.AuditKafka {
		return nil, func() {}, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
		pkgkafka.WithAutoCreateTopic(true),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, func() { _ = producer.Close() }, nil
}

// ProvideClickHouseClient creates a ClickHouse client when the audit backend is clickhouse.
// Otherwise it returns nil.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, func(), error) {
	if cfg.Audit.Backend != config.AuditClickHouse {
		return nil, func() {}, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.InitSchema(ctx, []string{
		"CREATE DATABASE IF NOT EXISTS " + cfg.ClickHouse.Database,
	}); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, func() { _ = client.Close() }, nil
}

// ProvideLogger creates the application logger. Aggregated error logs are published
// through the Kafka producer when one is configured.
func ProvideLogger(cfg *config.Config, producer *pkgkafka.Producer) (*applogger.Logger, error) {
	log, err := applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	if producer != nil && cfg.Log.CollectTopic != "" {
		log.AddCollector(&applogger.CollectionConfig{
			TimeInterval: cfg.Log.CollectInterval,
			Topic:        cfg.Log.CollectTopic,
			Service:      serviceName,
			Publisher:    producer,
		})
	}
	return log.With(applogger.String("env", cfg.Environment)), nil
}

// ProvideMetrics creates a Prometheus metrics recorder on the default registry.
func ProvideMetrics() repository.Metrics {
	return metrics.New(prometheus.DefaultRegisterer)
}

// ProvideAuditSink selects the fetch event sink for the configured backend.
func ProvideAuditSink(cfg *config.Config, producer *pkgkafka.Producer, ch *pkgch.Client) (repository.AuditSink, error) {
	var sink repository.AuditSink
	switch cfg.Audit.Backend {
	case config.AuditKafka:
		sink = internalrepo.NewKafkaAuditPublisher(producer, cfg.Kafka.Topic)
	case config.AuditClickHouse:
		sink = internalrepo.NewClickHouseAuditStore(ch.DB(), cfg.ClickHouse.Database+"."+cfg.ClickHouse.Table)
	default:
		sink = internalrepo.NewNoopAuditSink()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := sink.Init(ctx); err != nil {
		return nil, fmt.Errorf("audit sink: %w", err)
	}
	return sink, nil
}

// ProvideAuditWriter creates the batching audit writer.
func ProvideAuditWriter(
	sink repository.AuditSink,
	metrics repository.Metrics,
	log *applogger.Logger,
	cfg *config.Config,
) *usecase.AuditWriter {
	return usecase.NewAuditWriter(
		sink,
		metrics,
		log,
		cfg.Audit.Backend,
		cfg.Audit.Buffer,
		cfg.Audit.BatchSize,
		cfg.Audit.FlushInterval,
	)
}

// ProvideFetchRecorder creates the view model observer.
func ProvideFetchRecorder(
	cfg *config.Config,
	metrics repository.Metrics,
	log *applogger.Logger,
	audit *usecase.AuditWriter,
) *usecase.FetchRecorder {
	return usecase.NewFetchRecorder(cfg.Upstream.BaseURL, metrics, log, audit)
}

// ProvideFormatter creates the display formatter for the configured locale.
func ProvideFormatter(cfg *config.Config) (*presenter.Formatter, error) {
	return presenter.NewFormatter(cfg.Display.Locale)
}

// ProvideLimiter creates the per-address limiter for topic submissions.
func ProvideLimiter(cfg *config.Config) *ratelimit.Limiter {
	return ratelimit.New(cfg.RateLimit.Capacity, cfg.RateLimit.RefillPerSec)
}

// ProvideHTTPServer creates the echo server with the dashboard routes.
func ProvideHTTPServer(cfg *config.Config, handler xhttp.Handler, log *applogger.Logger) *xhttp.Server {
	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}
	return xhttp.NewServer(handler, log,
		xhttp.WithHost(cfg.Server.Host),
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithCORS(cfg.Server.CORS, cfg.Server.CORSOrigins...),
		xhttp.WithMetricsPath(metricsPath),
		xhttp.WithSlowThreshold(cfg.Server.SlowThreshold),
	)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	log *applogger.Logger,
	httpServer *xhttp.Server,
	audit *usecase.AuditWriter,
	limiter *ratelimit.Limiter,
) *server.App {
	return server.New(cfg, log, httpServer, audit, limiter)
}

// ProvideAnalyticsClient creates the upstream analytics client.
func ProvideAnalyticsClient(cfg *config.Config) *analytics.Client {
	return analytics.NewClient(cfg)
}
