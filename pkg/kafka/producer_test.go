package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error { return nil }

func TestProducer_PublishBatchEncodesValues(t *testing.T) {
	w := &recordingWriter{}
	p := newProducer(w, "snappy")

	err := p.PublishBatch(context.Background(), "fetches", []Message{
		{Key: []byte("overview"), Value: map[string]int{"seq": 1}},
		{Key: []byte("labels"), Value: "raw"},
		{Value: []byte("bytes")},
	})
	require.NoError(t, err)

	require.Len(t, w.msgs, 3)
	assert.Equal(t, "fetches", w.msgs[0].Topic)
	assert.Equal(t, "overview", string(w.msgs[0].Key))
	assert.JSONEq(t, `{"seq":1}`, string(w.msgs[0].Value))
	assert.Equal(t, "raw", string(w.msgs[1].Value))
	assert.Equal(t, "bytes", string(w.msgs[2].Value))
}

func TestProducer_PublishMessage(t *testing.T) {
	w := &recordingWriter{}
	p := newProducer(w, "gzip")

	require.NoError(t, p.PublishMessage(context.Background(), "logs", []string{"a"}))
	require.Len(t, w.msgs, 1)
	assert.Nil(t, w.msgs[0].Key)
	assert.JSONEq(t, `["a"]`, string(w.msgs[0].Value))
}

func TestProducer_WrapsWriteError(t *testing.T) {
	p := newProducer(&recordingWriter{err: errors.New("broker down")}, "snappy")

	err := p.Publish(context.Background(), "fetches", nil, "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
	assert.NoError(t, p.PublishBatch(context.Background(), "fetches", nil))
}

func TestNewProducer_RequiresBrokers(t *testing.T) {
	_, err := NewProducer()
	assert.Error(t, err)
}
