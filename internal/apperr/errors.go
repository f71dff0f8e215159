// internal/apperr/errors.go
//
// Error taxonomy shared by the selector, the game engine, the stores and the
// HTTP layer. Every failure that crosses a package boundary is an *Error with
// a Kind, so callers classify with IsKind or errors.Is against the sentinels
// instead of matching strings.

package apperr

import (
	"errors"
	"fmt"
)

// Kind is a coarse category used for propagation policy and HTTP mapping.
type Kind string

const (
	KindConfiguration  Kind = "configuration_error"
	KindNoCandidates   Kind = "no_candidates"
	KindTargetNotFound Kind = "target_not_found"
	KindInvalidInput   Kind = "invalid_input"
	KindNotFound       Kind = "not_found"
	KindStorage        Kind = "storage_error"
)

// Sentinels, one per kind. (*Error).Is matches them by kind.
var (
	ErrConfiguration  = errors.New(string(KindConfiguration))
	ErrNoCandidates   = errors.New(string(KindNoCandidates))
	ErrTargetNotFound = errors.New(string(KindTargetNotFound))
	ErrInvalidInput   = errors.New(string(KindInvalidInput))
	ErrNotFound       = errors.New(string(KindNotFound))
	ErrStorage        = errors.New(string(KindStorage))
)

var sentinels = map[Kind]error{
	KindConfiguration:  ErrConfiguration,
	KindNoCandidates:   ErrNoCandidates,
	KindTargetNotFound: ErrTargetNotFound,
	KindInvalidInput:   ErrInvalidInput,
	KindNotFound:       ErrNotFound,
	KindStorage:        ErrStorage,
}

// Error wraps an underlying cause with the operation that failed and its kind.
type Error struct {
	Op   string
	Kind Kind
	Msg  string
	Err  error
}

// New builds an *Error without an underlying cause.
func New(op string, kind Kind, msg string) *Error {
	return &Error{Op: op, Kind: kind, Msg: msg}
}

// Wrap builds an *Error around err. A nil err yields nil.
func Wrap(op string, kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Kind: kind, Err: err}
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	base := fmt.Sprintf("%s: %s", e.Op, e.Kind)
	if e.Msg != "" {
		base += ": " + e.Msg
	}
	if e.Err != nil {
		base += fmt.Sprintf(": %v", e.Err)
	}
	return base
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is lets errors.Is(err, apperr.ErrNoCandidates) work for any *Error of that kind.
func (e *Error) Is(target error) bool {
	if e == nil {
		return false
	}
	s, ok := sentinels[e.Kind]
	return ok && s == target
}

// IsKind reports whether err (or anything it wraps) is an *Error of kind.
func IsKind(err error, kind Kind) bool {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind == kind
	}
	return false
}

// KindOf returns the kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return ""
}
