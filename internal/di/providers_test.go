package di

import (
	"testing"

	internalrepo "TraderExplorer/internal/repository"
	"TraderExplorer/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Parse([]byte("environment: test\n"))
	require.NoError(t, err)
	return cfg
}

func TestProviders_AuditBackendNone(t *testing.T) {
	cfg := testConfig(t)

	producer, cleanup, err := ProvideKafkaProducer(cfg)
	require.NoError(t, err)
	assert.Nil(t, producer)
	cleanup()

	ch, cleanup, err := ProvideClickHouseClient(cfg)
	require.NoError(t, err)
	assert.Nil(t, ch)
	cleanup()

	sink, err := ProvideAuditSink(cfg, nil, nil)
	require.NoError(t, err)
	assert.IsType(t, internalrepo.NoopAuditSink{}, sink)
}

func TestProvideFormatter_RejectsBadLocale(t *testing.T) {
	cfg := testConfig(t)
	cfg.Display.Locale = "??"

	_, err := ProvideFormatter(cfg)
	assert.Error(t, err)
}

func TestProvideHTTPServer_MetricsDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.Metrics.Enabled = false

	log, err := ProvideLogger(cfg, nil)
	require.NoError(t, err)

	srv := ProvideHTTPServer(cfg, nil, log)
	for _, r := range srv.Echo().Routes() {
		assert.NotEqual(t, "/metrics", r.Path)
	}
}
