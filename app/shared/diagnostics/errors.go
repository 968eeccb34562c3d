package diagnostics

import (
	"errors"
	"fmt"
)

// Sentinel errors matched through errors.Is on the typed errors below.
var (
	// ErrStructural marks a block that is too short or produced no units.
	ErrStructural = errors.New("structural error")

	// ErrUnitLineParse marks a line that carried a points token but could not be decomposed.
	ErrUnitLineParse = errors.New("unit line parse error")

	// ErrPointsMismatch marks an army whose calculated and reported totals differ.
	ErrPointsMismatch = errors.New("points mismatch")

	// ErrUnknownEnumValue marks a token outside its closed vocabulary.
	ErrUnknownEnumValue = errors.New("unknown enum value")

	// ErrOpponentUnresolved marks a round whose peer could not be found.
	ErrOpponentUnresolved = errors.New("opponent unresolved")

	// ErrBatchFailure is the only fatal outcome: nothing usable came out of the input.
	ErrBatchFailure = errors.New("batch failure")

	// ErrBatchRejected is returned under the all-or-nothing policy when any record failed.
	ErrBatchRejected = errors.New("batch rejected")
)

// StructuralError is scoped to one block.
type StructuralError struct {
	Block  int
	Player string
	Reason string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("block %d (%s): %s", e.Block, displayPlayer(e.Player), e.Reason)
}

func (e *StructuralError) Unwrap() error { return ErrStructural }

// UnitLineParseError is scoped to one body line.
type UnitLineParseError struct {
	Line   int
	Text   string
	Reason string
	Err    error
}

func (e *UnitLineParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d %q: %s", e.Line, e.Text, e.Reason)
	}
	return fmt.Sprintf("line %q: %s", e.Text, e.Reason)
}

func (e *UnitLineParseError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrUnitLineParse, e.Err}
	}
	return []error{ErrUnitLineParse}
}

// PointsMismatchError is scoped to one army.
type PointsMismatchError struct {
	Player     string
	Reported   int
	Calculated int
}

func (e *PointsMismatchError) Error() string {
	return fmt.Sprintf("calculated total %d does not match reported total %d (difference %d)",
		e.Calculated, e.Reported, e.Calculated-e.Reported)
}

func (e *PointsMismatchError) Unwrap() error { return ErrPointsMismatch }

// UnknownEnumValueError is scoped to one field.
type UnknownEnumValueError struct {
	Field string
	Value string
}

func (e *UnknownEnumValueError) Error() string {
	return fmt.Sprintf("%s: unrecognized value %q", e.Field, e.Value)
}

func (e *UnknownEnumValueError) Unwrap() error { return ErrUnknownEnumValue }

// OpponentUnresolvedError is scoped to one round.
type OpponentUnresolvedError struct {
	ArmyID string
	Round  int
	Key    string
	Reason string
}

func (e *OpponentUnresolvedError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("round %d: opponent %q unresolved: %s", e.Round, e.Key, e.Reason)
	}
	return fmt.Sprintf("round %d: opponent unresolved: %s", e.Round, e.Reason)
}

func (e *OpponentUnresolvedError) Unwrap() error { return ErrOpponentUnresolved }

// BatchFailureError aborts a whole operation. It still carries every diagnostic collected
// before the failure so callers never see a silent drop.
type BatchFailureError struct {
	Reason      string
	Diagnostics Diagnostics
}

func (e *BatchFailureError) Error() string {
	if n := len(e.Diagnostics); n > 0 {
		return fmt.Sprintf("batch failure: %s (%d diagnostics)", e.Reason, n)
	}
	return "batch failure: " + e.Reason
}

func (e *BatchFailureError) Unwrap() error { return ErrBatchFailure }

func displayPlayer(name string) string {
	if name == "" {
		return "unknown player"
	}
	return name
}
