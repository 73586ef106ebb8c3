// Package errs holds the error taxonomy shared by every stage of the bias pipeline.
package errs

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a failure. Kinds are errors themselves so callers can
// write errors.Is(err, errs.DivisionByZero).
type Kind string

const (
	Configuration    Kind = "configuration error"
	MissingData      Kind = "missing data"
	DivisionByZero   Kind = "division by zero"
	InvalidParameter Kind = "invalid parameter"
	IO               Kind = "i/o error"
)

func (k Kind) Error() string { return string(k) }

// Error is the concrete error returned by pipeline components. Model, Group
// and Style are set whenever the failure can be pinned to a grid cell.
type Error struct {
	Kind  Kind
	Op    string
	Model string
	Group string
	Style string
	Msg   string
	Err   error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(string(e.Kind))
	if e.Msg != "" {
		b.WriteString(": ")
		b.WriteString(e.Msg)
	}
	var where []string
	if e.Model != "" {
		where = append(where, "model="+e.Model)
	}
	if e.Group != "" {
		where = append(where, "group="+e.Group)
	}
	if e.Style != "" {
		where = append(where, "style="+e.Style)
	}
	if len(where) > 0 {
		b.WriteString(" (")
		b.WriteString(strings.Join(where, " "))
		b.WriteString(")")
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the Kind of e.
func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}

// KindOf returns the Kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// At fills in the grid cell of err if it is an *Error without one. Other
// errors are returned unchanged.
func At(err error, model, group, style string) error {
	var e *Error
	if !errors.As(err, &e) {
		return err
	}
	if e.Model == "" && e.Group == "" && e.Style == "" {
		e.Model, e.Group, e.Style = model, group, style
	}
	return err
}

func Configf(op, format string, args ...any) *Error {
	return &Error{Kind: Configuration, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// Missing wraps a failed lookup of a required input.
func Missing(op, path string, cause error) *Error {
	return &Error{Kind: MissingData, Op: op, Msg: path, Err: cause}
}

// DivideByZero reports a zero denominator for the given grid cell.
func DivideByZero(op, what, model, group, style string) *Error {
	return &Error{Kind: DivisionByZero, Op: op, Msg: what, Model: model, Group: group, Style: style}
}

func InvalidParam(op, format string, args ...any) *Error {
	return &Error{Kind: InvalidParameter, Op: op, Msg: fmt.Sprintf(format, args...)}
}
