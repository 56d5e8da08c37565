package viewmodel

// Phase is the lifecycle position of a view model. Exactly one phase holds at a time.
type Phase int

const (
	// PhaseIdle is the initial phase of manually triggered views.
	PhaseIdle Phase = iota
	// PhaseLoading is entered on every trigger, after previous data and error are cleared.
	PhaseLoading
	// PhaseReady holds decoded data.
	PhaseReady
	// PhaseFailed holds a short diagnostic message.
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// State is an immutable snapshot of a model.
// Data is non-nil only in PhaseReady; Err is non-empty only in PhaseFailed.
type State[T any] struct {
	Phase Phase
	Data  *T
	Err   string
	Seq   uint64 // trigger that produced this state, 0 while idle
}

// Terminal reports whether the state is the result of a finished request.
func (s State[T]) Terminal() bool {
	return s.Phase == PhaseReady || s.Phase == PhaseFailed
}
