package recovery

import "fmt"

// State tracks a protected operation through its lifecycle
type State string

const (
	StatePending     State = "pending"
	StateBackedUp    State = "backed-up"
	StateExecuting   State = "executing"
	StateSucceeded   State = "succeeded"
	StateFailed      State = "failed"
	StateRecovering  State = "recovering"
	StateRecovered   State = "recovered"
	StateUnrecovered State = "unrecovered"
)

// transitions lists the legal state moves
var transitions = map[State][]State{
	StatePending:    {StateBackedUp, StateFailed},
	StateBackedUp:   {StateExecuting, StateFailed},
	StateExecuting:  {StateSucceeded, StateFailed},
	StateFailed:     {StateRecovering},
	StateRecovering: {StateRecovered, StateUnrecovered},
}

// Result is the uniform outcome of a protected operation
type Result struct {
	Success     bool           `json:"success"`
	Message     string         `json:"message"`
	State       State          `json:"state"`
	BackupID    string         `json:"backupId,omitempty"`
	Errors      []string       `json:"errors,omitempty"`
	Suggestions []string       `json:"suggestions,omitempty"`
	Details     map[string]any `json:"details,omitempty"`
}

// NewResult starts a result in the pending state
func NewResult() *Result {
	return &Result{State: StatePending, Details: map[string]any{}}
}

// Transition moves the result to the next state, panicking on a move
// the lifecycle does not allow: that is a programming error, not an
// operational failure.
func (r *Result) Transition(next State) *Result {
	for _, allowed := range transitions[r.State] {
		if allowed == next {
			r.State = next
			return r
		}
	}
	panic(fmt.Sprintf("illegal state transition %s -> %s", r.State, next))
}

// Fail records an error and moves to the failed state when the
// lifecycle allows it
func (r *Result) Fail(err error) *Result {
	r.Success = false
	if err != nil {
		r.Errors = append(r.Errors, err.Error())
		if r.Message == "" {
			r.Message = err.Error()
		}
	}
	if r.State != StateFailed && r.State != StateUnrecovered {
		r.Transition(StateFailed)
	}
	return r
}

// Succeed marks the operation successful
func (r *Result) Succeed(message string) *Result {
	r.Success = true
	r.Message = message
	return r.Transition(StateSucceeded)
}

// Suggest appends a remediation hint
func (r *Result) Suggest(format string, args ...any) *Result {
	r.Suggestions = append(r.Suggestions, fmt.Sprintf(format, args...))
	return r
}

// Detail attaches a named detail value
func (r *Result) Detail(key string, value any) *Result {
	if r.Details == nil {
		r.Details = map[string]any{}
	}
	r.Details[key] = value
	return r
}
