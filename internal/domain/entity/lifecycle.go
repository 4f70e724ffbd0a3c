package entity

// Lifecycle is a declared state machine over a string-like status type.
type Lifecycle[S ~string] struct {
	states      []S
	transitions map[S][]S
}

func NewLifecycle[S ~string](states []S, transitions map[S][]S) Lifecycle[S] {
	return Lifecycle[S]{states: states, transitions: transitions}
}

// States returns the statuses in declaration order.
func (l Lifecycle[S]) States() []S {
	out := make([]S, len(l.states))
	copy(out, l.states)
	return out
}

func (l Lifecycle[S]) Valid(s S) bool {
	for _, st := range l.states {
		if st == s {
			return true
		}
	}
	return false
}

// Parse converts raw input to a status, reporting whether it is known.
func (l Lifecycle[S]) Parse(raw string) (S, bool) {
	s := S(raw)
	return s, l.Valid(s)
}

// CanTransition reports whether from -> to is a declared edge.
func (l Lifecycle[S]) CanTransition(from, to S) bool {
	for _, next := range l.transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Permits decides whether a status update may proceed. Re-applying the
// current status is always permitted; in strict mode only declared edges are.
func (l Lifecycle[S]) Permits(from, to S, strict bool) bool {
	if !l.Valid(to) {
		return false
	}
	if !strict || from == to {
		return true
	}
	return l.CanTransition(from, to)
}

// IsTerminal reports whether s has no outgoing edges.
func (l Lifecycle[S]) IsTerminal(s S) bool {
	return l.Valid(s) && len(l.transitions[s]) == 0
}
