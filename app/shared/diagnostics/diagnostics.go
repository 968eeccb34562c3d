package diagnostics

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a diagnostic.
type Kind string

const (
	KindStructural         Kind = "structural"
	KindUnitLineParse      Kind = "unit_line_parse"
	KindPointsMismatch     Kind = "points_mismatch"
	KindUnknownEnumValue   Kind = "unknown_enum_value"
	KindOpponentUnresolved Kind = "opponent_unresolved"
	KindMissingPlayerName  Kind = "missing_player_name"
	KindDuplicateTotal     Kind = "duplicate_total"
	KindDuplicateRound     Kind = "duplicate_round"
	KindUnknownParticipant Kind = "unknown_participant"
	KindDuplicateTeam      Kind = "duplicate_team"
	KindBatchFailure       Kind = "batch_failure"
)

// Severity says whether a diagnostic cost the caller data.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Scope is the unit of work a diagnostic is keyed to.
type Scope string

const (
	ScopeLine  Scope = "line"
	ScopeBlock Scope = "block"
	ScopeArmy  Scope = "army"
	ScopeField Scope = "field"
	ScopeRound Scope = "round"
	ScopeTeam  Scope = "team"
	ScopeBatch Scope = "batch"
)

// Diagnostic is one collected failure or warning.
type Diagnostic struct {
	Kind     Kind     `json:"kind"`
	Severity Severity `json:"severity"`
	Scope    Scope    `json:"scope"`
	Player   string   `json:"player,omitempty"`
	Block    int      `json:"block,omitempty"`
	Line     int      `json:"line,omitempty"`
	Field    string   `json:"field,omitempty"`
	Round    int      `json:"round,omitempty"`
	Message  string   `json:"message"`
	Err      error    `json:"-"`
}

// String renders the diagnostic keyed to its player and position.
func (d Diagnostic) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", d.Severity, d.Kind)
	if d.Player != "" {
		fmt.Fprintf(&b, " player=%q", d.Player)
	}
	if d.Block > 0 {
		fmt.Fprintf(&b, " block=%d", d.Block)
	}
	if d.Line > 0 {
		fmt.Fprintf(&b, " line=%d", d.Line)
	}
	if d.Round > 0 {
		fmt.Fprintf(&b, " round=%d", d.Round)
	}
	if d.Field != "" {
		fmt.Fprintf(&b, " field=%s", d.Field)
	}
	b.WriteString(": ")
	b.WriteString(d.Message)
	return b.String()
}

// FromError classifies err into a diagnostic. Typed errors determine kind and scope;
// anything else is recorded as an error-severity batch diagnostic.
func FromError(err error) Diagnostic {
	d := Diagnostic{Message: err.Error(), Err: err, Severity: SeverityError, Scope: ScopeBatch}

	var (
		structural *StructuralError
		lineErr    *UnitLineParseError
		mismatch   *PointsMismatchError
		enumErr    *UnknownEnumValueError
		opponent   *OpponentUnresolvedError
		batch      *BatchFailureError
	)
	switch {
	case errors.As(err, &structural):
		d.Kind, d.Scope = KindStructural, ScopeBlock
		d.Block, d.Player = structural.Block, structural.Player
	case errors.As(err, &lineErr):
		d.Kind, d.Scope = KindUnitLineParse, ScopeLine
		d.Line = lineErr.Line
	case errors.As(err, &mismatch):
		d.Kind, d.Scope = KindPointsMismatch, ScopeArmy
		d.Player = mismatch.Player
	case errors.As(err, &enumErr):
		d.Kind, d.Scope, d.Severity = KindUnknownEnumValue, ScopeField, SeverityWarning
		d.Field = enumErr.Field
	case errors.As(err, &opponent):
		d.Kind, d.Scope, d.Severity = KindOpponentUnresolved, ScopeRound, SeverityWarning
		d.Round = opponent.Round
	case errors.As(err, &batch):
		d.Kind = KindBatchFailure
	default:
		d.Kind = KindBatchFailure
	}
	return d
}

// Warning builds a warning diagnostic that has no typed error behind it.
func Warning(kind Kind, scope Scope, message string) Diagnostic {
	return Diagnostic{Kind: kind, Severity: SeverityWarning, Scope: scope, Message: message}
}

// Diagnostics is an ordered collection of diagnostics.
type Diagnostics []Diagnostic

// Add appends d.
func (ds *Diagnostics) Add(d Diagnostic) {
	*ds = append(*ds, d)
}

// AddError classifies err and appends it. The returned pointer lets callers attach the
// player or position the error itself did not know about.
func (ds *Diagnostics) AddError(err error) *Diagnostic {
	*ds = append(*ds, FromError(err))
	return &(*ds)[len(*ds)-1]
}

// Merge appends all of other.
func (ds *Diagnostics) Merge(other Diagnostics) {
	*ds = append(*ds, other...)
}

// Errors returns the error-severity entries.
func (ds Diagnostics) Errors() Diagnostics {
	return ds.filter(func(d Diagnostic) bool { return d.Severity == SeverityError })
}

// Warnings returns the warning-severity entries.
func (ds Diagnostics) Warnings() Diagnostics {
	return ds.filter(func(d Diagnostic) bool { return d.Severity == SeverityWarning })
}

// OfKind returns the entries of kind k.
func (ds Diagnostics) OfKind(k Kind) Diagnostics {
	return ds.filter(func(d Diagnostic) bool { return d.Kind == k })
}

// HasErrors reports whether any error-severity entry exists.
func (ds Diagnostics) HasErrors() bool {
	for _, d := range ds {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Err joins the underlying errors of the error-severity entries, or returns nil.
func (ds Diagnostics) Err() error {
	var errs []error
	for _, d := range ds.Errors() {
		if d.Err != nil {
			errs = append(errs, d.Err)
			continue
		}
		errs = append(errs, errors.New(d.Message))
	}
	return errors.Join(errs...)
}

// Messages renders every entry.
func (ds Diagnostics) Messages() []string {
	out := make([]string, 0, len(ds))
	for _, d := range ds {
		out = append(out, d.String())
	}
	return out
}

func (ds Diagnostics) filter(keep func(Diagnostic) bool) Diagnostics {
	var out Diagnostics
	for _, d := range ds {
		if keep(d) {
			out = append(out, d)
		}
	}
	return out
}
