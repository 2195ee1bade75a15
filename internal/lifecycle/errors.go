package lifecycle

import (
	"errors"
	"fmt"
)

// Kind classifies a transition failure so the API layer can map it to a
// response without matching on message text. Conflict is deliberately
// distinct from validation: it tells the caller "someone else already acted
// on this, re-fetch and retry", not "your input is wrong".
type Kind string

const (
	KindValidation   Kind = "validation"
	KindUnauthorized Kind = "unauthorized"
	KindConflict     Kind = "conflict"
	KindNotFound     Kind = "not_found"
)

// Error is a classified transition failure. The complaint is unchanged
// whenever a transition returns one.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func validationErr(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func unauthorizedErr(format string, args ...interface{}) *Error {
	return &Error{Kind: KindUnauthorized, Message: fmt.Sprintf(format, args...)}
}

func conflictErr(format string, args ...interface{}) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func notFoundErr(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// ErrKind extracts the failure kind from err, or "" when err is not a
// lifecycle error.
func ErrKind(err error) Kind {
	var le *Error
	if errors.As(err, &le) {
		return le.Kind
	}
	return ""
}

// IsConflict reports whether err is a lost-race failure.
func IsConflict(err error) bool {
	return ErrKind(err) == KindConflict
}
