package diagnostics

// Policy is the caller's tolerance for partial failure within a batch.
type Policy string

const (
	// PolicyBestEffort returns every record that could be built alongside the diagnostics.
	PolicyBestEffort Policy = "best_effort"
	// PolicyAllOrNothing rejects the batch when any error-severity diagnostic exists.
	PolicyAllOrNothing Policy = "all_or_nothing"
)

// ParsePolicy maps a config string onto a Policy, defaulting to best effort.
func ParsePolicy(s string) Policy {
	if Policy(s) == PolicyAllOrNothing {
		return PolicyAllOrNothing
	}
	return PolicyBestEffort
}

// Outcome carries the successfully built values of one unit of work together with the
// diagnostics collected while building them.
type Outcome[T any] struct {
	Successes   []T         `json:"successes"`
	Diagnostics Diagnostics `json:"diagnostics"`
}

// Succeed appends v to the successes.
func (o *Outcome[T]) Succeed(v ...T) {
	o.Successes = append(o.Successes, v...)
}

// Fail records err against the outcome.
func (o *Outcome[T]) Fail(err error) *Diagnostic {
	return o.Diagnostics.AddError(err)
}

// Absorb merges another outcome's successes and diagnostics into o.
func (o *Outcome[T]) Absorb(other Outcome[T]) {
	o.Successes = append(o.Successes, other.Successes...)
	o.Diagnostics.Merge(other.Diagnostics)
}

// Partial reports whether both successes and error diagnostics are present.
func (o Outcome[T]) Partial() bool {
	return len(o.Successes) > 0 && o.Diagnostics.HasErrors()
}

// Enforce applies policy. Under all-or-nothing, any error diagnostic turns the outcome
// into a RejectedError.
func (o Outcome[T]) Enforce(policy Policy) error {
	if policy != PolicyAllOrNothing || !o.Diagnostics.HasErrors() {
		return nil
	}
	return &RejectedError{Diagnostics: o.Diagnostics}
}

// RejectedError is returned when the all-or-nothing policy rejects a batch.
type RejectedError struct {
	Diagnostics Diagnostics
}

func (e *RejectedError) Error() string {
	return ErrBatchRejected.Error() + ": " + e.Diagnostics.Errors()[0].String()
}

func (e *RejectedError) Unwrap() error { return ErrBatchRejected }
