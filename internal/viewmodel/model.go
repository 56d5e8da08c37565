package viewmodel

import (
	"context"
	"sync"
	"time"
)

// Fetcher performs one GET against the analytics service and decodes the body into dest.
// Failures must be reported as *FetchError.
type Fetcher interface {
	Fetch(ctx context.Context, req Request, dest any) error
}

// Event describes a model transition, reported to the Observer.
type Event struct {
	View     string
	Seq      uint64
	Request  Request
	Phase    Phase // PhaseLoading on trigger, terminal phase on resolve
	Stale    bool  // result arrived after a newer trigger or after unmount and was dropped
	Err      error
	Duration time.Duration
}

// Observer receives model events. Calls for one model never overlap.
type Observer interface {
	Observe(ev Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

func (f ObserverFunc) Observe(ev Event) { f(ev) }

type options struct {
	manual   bool
	observer Observer
}

// Option configures a Model.
type Option func(*options)

// WithManualTrigger keeps the model idle on Mount until Trigger or Load is called.
func WithManualTrigger() Option {
	return func(o *options) { o.manual = true }
}

// WithObserver attaches an observer for loading, resolved and stale events.
func WithObserver(obs Observer) Option {
	return func(o *options) { o.observer = obs }
}

type listener[T any] struct {
	id int
	fn func(State[T])
}

// Model binds one view to one upstream endpoint and tracks the request lifecycle.
//
// Every Trigger gets a new sequence number. Only the result of the latest trigger
// is applied; earlier results are dropped, so the final state always reflects the
// most recent request regardless of completion order.
type Model[T any] struct {
	name     string
	fetcher  Fetcher
	endpoint Endpoint
	manual   bool
	observer Observer

	// notifyMu orders state changes with listener delivery. Listeners must not call Trigger.
	notifyMu sync.Mutex
	mu       sync.Mutex

	state     State[T]
	seq       uint64
	done      chan struct{} // open until the latest trigger is delivered
	cancels   map[uint64]context.CancelFunc
	listeners []listener[T]
	nextID    int
	mounted   bool
	closed    bool
}

// New creates an idle model for the named view.
func New[T any](name string, fetcher Fetcher, endpoint Endpoint, opts ...Option) *Model[T] {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return &Model[T]{
		name:     name,
		fetcher:  fetcher,
		endpoint: endpoint,
		manual:   o.manual,
		observer: o.observer,
		cancels:  make(map[uint64]context.CancelFunc),
	}
}

// Name returns the view name.
func (m *Model[T]) Name() string { return m.name }

// Manual reports whether the model waits for an explicit trigger.
func (m *Model[T]) Manual() bool { return m.manual }

// State returns the current snapshot.
func (m *Model[T]) State() State[T] {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Subscribe registers fn for every state change and returns a function removing it.
func (m *Model[T]) Subscribe(fn func(State[T])) (unsubscribe func()) {
	m.mu.Lock()
	m.nextID++
	id := m.nextID
	m.listeners = append(m.listeners, listener[T]{id: id, fn: fn})
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		for i, l := range m.listeners {
			if l.id == id {
				m.listeners = append(m.listeners[:i:i], m.listeners[i+1:]...)
				return
			}
		}
	}
}

// Mount starts the view. Automatic views trigger exactly once; manual views stay idle.
// Subsequent calls are no-ops.
func (m *Model[T]) Mount(ctx context.Context) {
	m.mu.Lock()
	if m.mounted || m.closed {
		m.mu.Unlock()
		return
	}
	m.mounted = true
	manual := m.manual
	m.mu.Unlock()

	if !manual {
		m.Trigger(ctx, nil)
	}
}

// Trigger clears previous data and error, enters PhaseLoading and issues the request
// in the background. It returns the sequence number of the new request, or 0 after Unmount.
func (m *Model[T]) Trigger(ctx context.Context, params Params) uint64 {
	req := m.endpoint.Resolve(params)

	m.notifyMu.Lock()
	defer m.notifyMu.Unlock()

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return 0
	}
	m.seq++
	seq := m.seq
	m.state = State[T]{Phase: PhaseLoading, Seq: seq}
	if m.done == nil {
		m.done = make(chan struct{})
	}
	reqCtx, cancel := context.WithCancel(ctx)
	m.cancels[seq] = cancel
	st, ls := m.state, m.snapshotListeners()
	m.mu.Unlock()

	m.observe(Event{View: m.name, Seq: seq, Request: req, Phase: PhaseLoading})
	deliver(ls, st)

	go m.run(reqCtx, cancel, seq, req)
	return seq
}

// Load triggers with params and waits for the model to settle.
func (m *Model[T]) Load(ctx context.Context, params Params) (State[T], error) {
	m.Trigger(ctx, params)
	return m.Wait(ctx)
}

// Wait blocks until the model has settled, is unmounted, or ctx is done.
// A settled state has already been delivered to every subscriber.
func (m *Model[T]) Wait(ctx context.Context) (State[T], error) {
	for {
		m.mu.Lock()
		st, done := m.state, m.done
		m.mu.Unlock()
		if done == nil {
			return st, nil
		}
		select {
		case <-done:
		case <-ctx.Done():
			return m.State(), ctx.Err()
		}
	}
}

// Unmount cancels in-flight requests. Results arriving later are discarded.
func (m *Model[T]) Unmount() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	for seq, cancel := range m.cancels {
		cancel()
		delete(m.cancels, seq)
	}
	if m.done != nil {
		close(m.done)
		m.done = nil
	}
	m.listeners = nil
}

func (m *Model[T]) run(ctx context.Context, cancel context.CancelFunc, seq uint64, req Request) {
	defer cancel()

	start := time.Now()
	data := new(T)
	err := m.fetcher.Fetch(ctx, req, data)
	m.resolve(seq, req, data, err, time.Since(start))
}

func (m *Model[T]) resolve(seq uint64, req Request, data *T, err error, took time.Duration) {
	m.notifyMu.Lock()
	defer m.notifyMu.Unlock()

	ev := Event{View: m.name, Seq: seq, Request: req, Err: err, Duration: took}

	m.mu.Lock()
	delete(m.cancels, seq)
	if m.closed || seq != m.seq {
		m.mu.Unlock()
		ev.Stale = true
		ev.Phase = terminalPhase(err)
		m.observe(ev)
		return
	}

	if err != nil {
		m.state = State[T]{Phase: PhaseFailed, Err: Message(err), Seq: seq}
	} else {
		m.state = State[T]{Phase: PhaseReady, Data: data, Seq: seq}
	}
	st, ls := m.state, m.snapshotListeners()
	m.mu.Unlock()

	ev.Phase = st.Phase
	m.observe(ev)
	deliver(ls, st)

	// done stays open until listeners have the terminal state; notifyMu keeps
	// a newer Trigger from reusing it in between.
	m.mu.Lock()
	if m.done != nil {
		close(m.done)
		m.done = nil
	}
	m.mu.Unlock()
}

func (m *Model[T]) observe(ev Event) {
	if m.observer != nil {
		m.observer.Observe(ev)
	}
}

func (m *Model[T]) snapshotListeners() []listener[T] {
	if len(m.listeners) == 0 {
		return nil
	}
	return append([]listener[T](nil), m.listeners...)
}

func deliver[T any](ls []listener[T], st State[T]) {
	for _, l := range ls {
		l.fn(st)
	}
}

func terminalPhase(err error) Phase {
	if err != nil {
		return PhaseFailed
	}
	return PhaseReady
}
