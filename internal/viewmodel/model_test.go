package viewmodel

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Value string
}

type pendingCall struct {
	req     Request
	release chan func(dest any) error
}

// gateFetcher blocks every Fetch until the test releases it.
type gateFetcher struct {
	calls chan *pendingCall
}

func newGateFetcher() *gateFetcher {
	return &gateFetcher{calls: make(chan *pendingCall, 16)}
}

func (g *gateFetcher) Fetch(ctx context.Context, req Request, dest any) error {
	c := &pendingCall{req: req, release: make(chan func(dest any) error, 1)}
	g.calls <- c
	select {
	case fn := <-c.release:
		return fn(dest)
	case <-ctx.Done():
		return &FetchError{Kind: KindNetwork, Err: ctx.Err()}
	}
}

func (g *gateFetcher) next(t *testing.T) *pendingCall {
	t.Helper()
	select {
	case c := <-g.calls:
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("expected a fetch")
		return nil
	}
}

func (g *gateFetcher) assertNoCall(t *testing.T) {
	t.Helper()
	select {
	case c := <-g.calls:
		t.Fatalf("unexpected fetch %s", c.req.String())
	case <-time.After(50 * time.Millisecond):
	}
}

func succeed(v string) func(any) error {
	return func(dest any) error {
		dest.(*payload).Value = v
		return nil
	}
}

func fail(err error) func(any) error {
	return func(any) error { return err }
}

// eventLog collects observer events.
type eventLog struct {
	mu     sync.Mutex
	events []Event
	stale  chan Event
}

func newEventLog() *eventLog {
	return &eventLog{stale: make(chan Event, 16)}
}

func (l *eventLog) Observe(ev Event) {
	l.mu.Lock()
	l.events = append(l.events, ev)
	l.mu.Unlock()
	if ev.Stale {
		l.stale <- ev
	}
}

func (l *eventLog) waitStale(t *testing.T) Event {
	t.Helper()
	select {
	case ev := <-l.stale:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("expected a stale event")
		return Event{}
	}
}

var topicsEndpoint = Endpoint{Path: "/topics/trader/{id}"}

func TestModel_MountTriggersOnce(t *testing.T) {
	f := newGateFetcher()
	m := New[payload]("overview", f, Endpoint{Path: "/overview"})
	ctx := context.Background()

	assert.Equal(t, PhaseIdle, m.State().Phase)

	m.Mount(ctx)
	m.Mount(ctx)
	assert.Equal(t, PhaseLoading, m.State().Phase)

	c := f.next(t)
	assert.Equal(t, "/overview", c.req.Path)
	f.assertNoCall(t)

	c.release <- succeed("snapshot")
	st, err := m.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, PhaseReady, st.Phase)
	require.NotNil(t, st.Data)
	assert.Equal(t, "snapshot", st.Data.Value)
	assert.Empty(t, st.Err)
}

func TestModel_ManualViewStaysIdle(t *testing.T) {
	f := newGateFetcher()
	m := New[payload]("topics", f, topicsEndpoint, WithManualTrigger())

	m.Mount(context.Background())
	f.assertNoCall(t)

	st := m.State()
	assert.Equal(t, PhaseIdle, st.Phase)
	assert.Nil(t, st.Data)
	assert.Empty(t, st.Err)
}

func TestModel_TriggerClearsPreviousResult(t *testing.T) {
	f := newGateFetcher()
	m := New[payload]("topics", f, topicsEndpoint, WithManualTrigger())
	ctx := context.Background()

	m.Trigger(ctx, Params{"id": "0xabc"})
	f.next(t).release <- fail(&FetchError{Kind: KindHTTP, Status: 404})
	st, err := m.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, PhaseFailed, st.Phase)
	assert.Equal(t, "HTTP 404", st.Err)

	m.Trigger(ctx, Params{"id": "0xdef"})
	st = m.State()
	assert.Equal(t, PhaseLoading, st.Phase)
	assert.Empty(t, st.Err)
	assert.Nil(t, st.Data)

	f.next(t).release <- succeed("profile")
	st, err = m.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, PhaseReady, st.Phase)
	assert.Empty(t, st.Err)
	assert.Equal(t, "profile", st.Data.Value)
}

func TestModel_FailureMessages(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"http status", &FetchError{Kind: KindHTTP, Status: 500, Err: errors.New("boom")}, "HTTP 500"},
		{"network", &FetchError{Kind: KindNetwork, Err: errors.New("Failed to fetch")}, "Failed to fetch"},
		{"decode", &FetchError{Kind: KindDecode, Err: errors.New("unexpected end of JSON input")}, "unexpected end of JSON input"},
		{"unclassified", errors.New("dial tcp: refused"), "dial tcp: refused"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newGateFetcher()
			m := New[payload]("overview", f, Endpoint{Path: "/overview"})
			ctx := context.Background()

			m.Mount(ctx)
			f.next(t).release <- fail(tt.err)

			st, err := m.Wait(ctx)
			require.NoError(t, err)
			assert.Equal(t, PhaseFailed, st.Phase)
			assert.Equal(t, tt.want, st.Err)
			assert.Nil(t, st.Data)
		})
	}
}

func TestModel_LatestTriggerWins(t *testing.T) {
	f := newGateFetcher()
	log := newEventLog()
	m := New[payload]("topics", f, topicsEndpoint, WithManualTrigger(), WithObserver(log))
	ctx := context.Background()

	seqA := m.Trigger(ctx, Params{"id": "A"})
	seqB := m.Trigger(ctx, Params{"id": "B"})
	require.Greater(t, seqB, seqA)

	calls := map[string]*pendingCall{}
	for i := 0; i < 2; i++ {
		c := f.next(t)
		calls[c.req.Path] = c
	}
	require.Contains(t, calls, "/topics/trader/A")
	require.Contains(t, calls, "/topics/trader/B")

	// B resolves first, A afterwards.
	calls["/topics/trader/B"].release <- succeed("B")
	st, err := m.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, "B", st.Data.Value)

	calls["/topics/trader/A"].release <- succeed("A")
	ev := log.waitStale(t)
	assert.Equal(t, seqA, ev.Seq)

	st = m.State()
	assert.Equal(t, PhaseReady, st.Phase)
	assert.Equal(t, "B", st.Data.Value)
	assert.Equal(t, seqB, st.Seq)
}

func TestModel_EarlierResultIgnoredWhileLatestPending(t *testing.T) {
	f := newGateFetcher()
	log := newEventLog()
	m := New[payload]("topics", f, topicsEndpoint, WithManualTrigger(), WithObserver(log))
	ctx := context.Background()

	m.Trigger(ctx, Params{"id": "A"})
	m.Trigger(ctx, Params{"id": "B"})

	calls := map[string]*pendingCall{}
	for i := 0; i < 2; i++ {
		c := f.next(t)
		calls[c.req.Path] = c
	}

	calls["/topics/trader/A"].release <- fail(&FetchError{Kind: KindHTTP, Status: 502})
	log.waitStale(t)
	assert.Equal(t, PhaseLoading, m.State().Phase)

	calls["/topics/trader/B"].release <- succeed("B")
	st, err := m.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, PhaseReady, st.Phase)
	assert.Equal(t, "B", st.Data.Value)
}

func TestModel_UnmountDropsLateResult(t *testing.T) {
	f := newGateFetcher()
	log := newEventLog()
	m := New[payload]("overview", f, Endpoint{Path: "/overview"}, WithObserver(log))
	ctx := context.Background()

	m.Mount(ctx)
	f.next(t)
	m.Unmount()

	ev := log.waitStale(t)
	assert.Equal(t, PhaseFailed, ev.Phase)
	assert.ErrorIs(t, ev.Err, context.Canceled)
	assert.Equal(t, PhaseLoading, m.State().Phase)

	st, err := m.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, PhaseLoading, st.Phase)

	assert.Zero(t, m.Trigger(ctx, nil))
	f.assertNoCall(t)
}

func TestModel_SubscribeSeesTransitionsInOrder(t *testing.T) {
	f := newGateFetcher()
	m := New[payload]("overview", f, Endpoint{Path: "/overview"})
	ctx := context.Background()

	var mu sync.Mutex
	var phases []Phase
	unsubscribe := m.Subscribe(func(st State[payload]) {
		mu.Lock()
		phases = append(phases, st.Phase)
		mu.Unlock()
	})

	m.Mount(ctx)
	f.next(t).release <- succeed("x")
	_, err := m.Wait(ctx)
	require.NoError(t, err)

	unsubscribe()
	m.Trigger(ctx, nil)
	f.next(t).release <- succeed("y")
	_, err = m.Wait(ctx)
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []Phase{PhaseLoading, PhaseReady}, phases)
}

func TestModel_WaitReturnsAfterSubscribersSeeResult(t *testing.T) {
	f := newGateFetcher()
	slow := ObserverFunc(func(ev Event) {
		if ev.Phase != PhaseLoading {
			time.Sleep(100 * time.Millisecond)
		}
	})
	m := New[payload]("overview", f, Endpoint{Path: "/overview"}, WithObserver(slow))
	ctx := context.Background()

	var mu sync.Mutex
	var last Phase
	m.Subscribe(func(st State[payload]) {
		mu.Lock()
		last = st.Phase
		mu.Unlock()
	})

	m.Mount(ctx)
	f.next(t).release <- succeed("x")
	st, err := m.Wait(ctx)
	require.NoError(t, err)
	require.Equal(t, PhaseReady, st.Phase)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, PhaseReady, last)
}

func TestModel_WaitHonorsContext(t *testing.T) {
	f := newGateFetcher()
	m := New[payload]("overview", f, Endpoint{Path: "/overview"})

	m.Mount(context.Background())
	f.next(t)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	st, err := m.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, PhaseLoading, st.Phase)
	m.Unmount()
}

func TestEndpoint_Resolve(t *testing.T) {
	e := Endpoint{Path: "/footprint/scatter", Query: map[string][]string{"limit": {"500"}}}
	req := e.Resolve(nil)
	assert.Equal(t, "/footprint/scatter?limit=500", req.String())

	req.Query.Set("limit", "1")
	assert.Equal(t, "500", e.Query.Get("limit"))

	assert.Equal(t, "/topics/trader/", topicsEndpoint.Resolve(Params{"id": ""}).String())
	assert.Equal(t, "/topics/trader/", topicsEndpoint.Resolve(nil).String())
	assert.Equal(t, "/topics/trader/a%2Fb%20c", topicsEndpoint.Resolve(Params{"id": "a/b c"}).Path)
	assert.Equal(t, "/topics/trader/0xABC", topicsEndpoint.Resolve(Params{"id": "0xABC"}).Path)
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindHTTP, KindOf(&FetchError{Kind: KindHTTP, Status: 404}))
	assert.Equal(t, KindDecode, KindOf(&FetchError{Kind: KindDecode}))
	assert.Equal(t, KindNetwork, KindOf(errors.New("x")))
	assert.Equal(t, "decode", (&FetchError{Kind: KindDecode}).Error())
}
