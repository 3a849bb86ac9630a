package gate

// MaxAttempts is the hard ceiling on negation rewrites per unit, counting the
// first attempt.
const MaxAttempts = 3

// State is a residual-retry state.
type State int

const (
	// Attempt means a rewrite is being requested.
	Attempt State = iota
	// NeedsRetry means the accepted text still carries a negation marker.
	NeedsRetry
	// Accepted means no marker remains.
	Accepted
	// GivenUp means the ceiling was reached or a retry produced nothing
	// usable; the latest accepted text stands.
	GivenUp
)

func (s State) String() string {
	switch s {
	case Attempt:
		return "attempt"
	case NeedsRetry:
		return "needs_retry"
	case Accepted:
		return "accepted"
	case GivenUp:
		return "given_up"
	}
	return "unknown"
}

// Retry tracks the residual negation check for one unit. It starts in
// Attempt with one attempt consumed.
type Retry struct {
	state    State
	attempts int
}

// NewRetry returns a machine for the first rewrite attempt.
func NewRetry() *Retry {
	return &Retry{state: Attempt, attempts: 1}
}

// State returns the current state.
func (r *Retry) State() State { return r.state }

// Attempts returns how many rewrites have been requested.
func (r *Retry) Attempts() int { return r.attempts }

// Done reports whether the machine reached a terminal state.
func (r *Retry) Done() bool {
	return r.state == Accepted || r.state == GivenUp
}

// Observe records the result of the current attempt: usable is false when
// the rewrite was empty or rejected, residual is true when the resulting
// text still carries a marker.
func (r *Retry) Observe(usable, residual bool) State {
	if r.Done() {
		return r.state
	}
	switch {
	case !usable:
		r.state = GivenUp
	case !residual:
		r.state = Accepted
	case r.attempts >= MaxAttempts:
		r.state = GivenUp
	default:
		r.state = NeedsRetry
	}
	return r.state
}

// Next moves from NeedsRetry to a new Attempt and reports whether one was
// started.
func (r *Retry) Next() bool {
	if r.state != NeedsRetry || r.attempts >= MaxAttempts {
		return false
	}
	r.attempts++
	r.state = Attempt
	return true
}
