package ordering

type State string

const (
	StateIdle       State = "idle"
	StateValidating State = "validating"
	StateSubmitting State = "submitting"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
)

// Attempt records one trip through the placement state machine. Succeeded and
// failed are terminal; a retry is a new attempt.
type Attempt struct {
	State   State
	History []State
	Receipt *Receipt
	Err     error
}

func newAttempt() *Attempt {
	return &Attempt{State: StateIdle, History: []State{StateIdle}}
}

func (a *Attempt) to(s State) {
	a.State = s
	a.History = append(a.History, s)
}

func (a *Attempt) fail(err error) *Attempt {
	a.Err = err
	a.to(StateFailed)
	return a
}

func (a *Attempt) succeed(r *Receipt) *Attempt {
	a.Receipt = r
	a.to(StateSucceeded)
	return a
}
