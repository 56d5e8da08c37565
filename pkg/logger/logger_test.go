package logger

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturePublisher struct {
	mu      sync.Mutex
	topic   string
	batches [][]AggregatedLogEntry
}

func (p *capturePublisher) PublishMessage(_ context.Context, topic string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topic = topic
	p.batches = append(p.batches, payload.([]AggregatedLogEntry))
	return nil
}

func TestLogger_WritesStructuredFields(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&Config{Level: "debug", Format: "json", Writer: &buf})
	require.NoError(t, err)

	l.With(String("view", "overview")).Info("view ready", Int("seq", 3), Duration("took", 1500*time.Millisecond))

	out := buf.String()
	assert.Contains(t, out, `"view":"overview"`)
	assert.Contains(t, out, `"seq":3`)
	assert.Contains(t, out, `"took":1500`)
	assert.Contains(t, out, `"message":"view ready"`)
}

func TestLogger_InvalidLevel(t *testing.T) {
	_, err := New(&Config{Level: "loud", Writer: &bytes.Buffer{}})
	assert.Error(t, err)
}

func TestCollector_AggregatesRepeatedErrors(t *testing.T) {
	pub := &capturePublisher{}
	l, err := New(&Config{Level: "info", Writer: &bytes.Buffer{}})
	require.NoError(t, err)

	l.AddCollector(&CollectionConfig{
		TimeInterval:   time.Hour,
		CountThreshold: 100,
		Topic:          "dashboard-logs",
		Service:        "trader-explorer",
		Publisher:      pub,
	})

	for i := 0; i < 3; i++ {
		l.Error("fetch failed", String("view", "labels"), Error(errors.New("HTTP 502")))
	}
	l.RemoveCollector()

	pub.mu.Lock()
	defer pub.mu.Unlock()
	require.Len(t, pub.batches, 1)
	require.Len(t, pub.batches[0], 1)
	entry := pub.batches[0][0]
	assert.Equal(t, "dashboard-logs", pub.topic)
	assert.Equal(t, "trader-explorer", entry.Service)
	assert.Equal(t, 3, entry.Count)
	assert.Equal(t, "HTTP 502", entry.Fields["error"])
}

func TestCollector_RemovedForDerivedLoggers(t *testing.T) {
	pub := &capturePublisher{}
	root, err := New(&Config{Level: "info", Writer: &bytes.Buffer{}})
	require.NoError(t, err)

	root.AddCollector(&CollectionConfig{
		TimeInterval:   time.Hour,
		CountThreshold: 1,
		Topic:          "dashboard-logs",
		Publisher:      pub,
	})
	child := root.With(String("env", "test"))

	// removing through the derived logger detaches the root as well
	child.RemoveCollector()
	assert.NotPanics(t, func() {
		child.Error("fetch failed", String("view", "labels"))
		root.Error("fetch failed", String("view", "overview"))
	})

	pub.mu.Lock()
	defer pub.mu.Unlock()
	assert.Empty(t, pub.batches)
}

func TestLogCollector_IgnoresLogsAfterClose(t *testing.T) {
	pub := &capturePublisher{}
	c := NewLogCollector(&CollectionConfig{TimeInterval: time.Hour, CountThreshold: 1, Publisher: pub})
	c.Close()
	c.Close()

	c.AddLog("error", "late", nil, "app.go:1")

	pub.mu.Lock()
	defer pub.mu.Unlock()
	assert.Empty(t, pub.batches)
}
