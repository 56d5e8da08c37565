package presenter

import (
	"context"
	"sync"

	"TraderExplorer/internal/viewmodel"
)

// View is one mounted dashboard view.
type View interface {
	Name() string
	Title() string
	Manual() bool
	Mount(ctx context.Context)
	Trigger(ctx context.Context, params viewmodel.Params) uint64
	Wait(ctx context.Context) (Page, error)
	Render() Page
	Subscribe(fn func(Page)) (unsubscribe func())
	Unmount()
}

// adapter binds a view model to its rendering rules.
type adapter[T any] struct {
	title  string
	model  *viewmodel.Model[T]
	format *Formatter
	fill   func(f *Formatter, data *T, p *Page)
	form   *Form // manual views only

	mu    sync.Mutex
	input string // last submitted form value
}

func newAdapter[T any](
	name, title string,
	fetcher viewmodel.Fetcher,
	endpoint viewmodel.Endpoint,
	fm *Formatter,
	fill func(*Formatter, *T, *Page),
	opts ...viewmodel.Option,
) *adapter[T] {
	return &adapter[T]{
		title:  title,
		model:  viewmodel.New[T](name, fetcher, endpoint, opts...),
		format: fm,
		fill:   fill,
	}
}

func (a *adapter[T]) Name() string  { return a.model.Name() }
func (a *adapter[T]) Title() string { return a.title }
func (a *adapter[T]) Manual() bool  { return a.model.Manual() }

func (a *adapter[T]) Mount(ctx context.Context) { a.model.Mount(ctx) }

func (a *adapter[T]) Trigger(ctx context.Context, params viewmodel.Params) uint64 {
	if a.form != nil {
		a.mu.Lock()
		a.input = params[a.form.Param]
		a.mu.Unlock()
	}
	return a.model.Trigger(ctx, params)
}

func (a *adapter[T]) Wait(ctx context.Context) (Page, error) {
	st, err := a.model.Wait(ctx)
	return a.page(st), err
}

func (a *adapter[T]) Render() Page { return a.page(a.model.State()) }

func (a *adapter[T]) Subscribe(fn func(Page)) func() {
	return a.model.Subscribe(func(st viewmodel.State[T]) {
		fn(a.page(st))
	})
}

func (a *adapter[T]) Unmount() { a.model.Unmount() }

func (a *adapter[T]) page(st viewmodel.State[T]) Page {
	p := Page{
		View:   a.model.Name(),
		Title:  a.title,
		Status: st.Phase.String(),
		Seq:    st.Seq,
	}
	if a.form != nil {
		form := *a.form
		a.mu.Lock()
		form.Value = a.input
		a.mu.Unlock()
		p.Form = &form
	}

	switch st.Phase {
	case viewmodel.PhaseLoading:
		p.Placeholder = LoadingText
	case viewmodel.PhaseFailed:
		p.Error = st.Err
	case viewmodel.PhaseReady:
		a.fill(a.format, st.Data, &p)
	}
	return p
}
