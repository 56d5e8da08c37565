package web

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"TraderExplorer/internal/presenter"
	xlogger "TraderExplorer/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	sendBuffer = 64
	writeWait  = 10 * time.Second
)

// liveMessage is a client frame. A trader_id key (even empty) submits the topic form.
type liveMessage struct {
	TraderID *string `json:"trader_id"`
}

type liveError struct {
	Error string `json:"error"`
}

// frameQueue buffers frames for the write pump. Frames are never dropped: when the
// buffer is full the queue overflows and the connection is closed instead.
type frameQueue struct {
	frames   chan any
	overflow chan struct{}
	once     sync.Once
}

func newFrameQueue(size int) *frameQueue {
	return &frameQueue{
		frames:   make(chan any, size),
		overflow: make(chan struct{}),
	}
}

// push reports whether frame was queued. After an overflow every push fails.
func (q *frameQueue) push(frame any) bool {
	select {
	case <-q.overflow:
		return false
	default:
	}
	select {
	case q.frames <- frame:
		return true
	default:
		q.once.Do(func() { close(q.overflow) })
		return false
	}
}

// Live upgrades to a websocket and pushes every transition of a fresh view as a JSON Page.
func (h *Handler) Live(c echo.Context) error {
	name := c.Param("name")
	v, err := h.catalog.New(name)
	if err != nil {
		return h.loadError(c, name, err)
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Warn("websocket upgrade error", xlogger.String("view", name), xlogger.Error(err))
		return nil
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	log := h.logger.With(xlogger.String("view", name), xlogger.String("remote", c.RealIP()))
	queue := newFrameQueue(sendBuffer)
	push := func(frame any) {
		if !queue.push(frame) {
			log.Warn("live client too slow, closing connection")
		}
	}

	unsubscribe := v.Subscribe(func(p presenter.Page) { push(p) })
	defer func() {
		unsubscribe()
		v.Unmount()
	}()

	push(v.Render())

	done := make(chan struct{})
	go func() {
		defer close(done)
		writePump(ctx, conn, queue, log)
	}()

	v.Mount(ctx)
	h.readPump(ctx, conn, v, c.RealIP(), push, log)

	cancel()
	<-done
	return nil
}

// writePump owns all writes to conn. On overflow it closes the connection with
// 1013 (try again later) so the client never keeps a stale page.
func writePump(ctx context.Context, conn *websocket.Conn, q *frameQueue, log *xlogger.Logger) {
	for {
		select {
		case <-q.overflow:
			writeClose(conn, websocket.CloseTryAgainLater, "client too slow")
			_ = conn.Close() // unblocks the read pump
			return
		default:
		}

		select {
		case <-ctx.Done():
			writeClose(conn, websocket.CloseNormalClosure, "")
			return
		case <-q.overflow:
			continue
		case frame := <-q.frames:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(frame); err != nil {
				log.Debug("live write error", xlogger.Error(err))
				return
			}
		}
	}
}

func writeClose(conn *websocket.Conn, code int, text string) {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(code, text))
}

func (h *Handler) readPump(ctx context.Context, conn *websocket.Conn, v presenter.View, addr string, push func(any), log *xlogger.Logger) {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug("live read error", xlogger.Error(err))
			}
			return
		}

		var msg liveMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			push(liveError{Error: "invalid message: " + err.Error()})
			continue
		}
		if !v.Manual() || msg.TraderID == nil {
			continue
		}
		if !h.allow(addr) {
			push(liveError{Error: rateLimitedMessage})
			continue
		}
		v.Trigger(ctx, presenter.TopicParams(*msg.TraderID))
	}
}
