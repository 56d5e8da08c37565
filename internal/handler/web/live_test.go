package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	xlogger "TraderExplorer/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameQueue_OverflowInsteadOfDrop(t *testing.T) {
	q := newFrameQueue(1)

	assert.True(t, q.push("first"))
	assert.False(t, q.push("second"))
	select {
	case <-q.overflow:
	default:
		t.Fatal("full queue did not overflow")
	}

	// the queued frame survives, later frames are refused
	assert.False(t, q.push("third"))
	assert.Equal(t, "first", <-q.frames)
	assert.False(t, q.push("fourth"))
}

func TestWritePump_ClosesSlowClient(t *testing.T) {
	q := newFrameQueue(1)
	require.True(t, q.push("frame"))
	require.False(t, q.push("terminal"))

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if !assert.NoError(t, err) {
			return
		}
		writePump(context.Background(), conn, q, xlogger.NewNop())
	}))
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = conn.ReadMessage()
	var ce *websocket.CloseError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, websocket.CloseTryAgainLater, ce.Code)
	assert.Equal(t, "client too slow", ce.Text)
}
