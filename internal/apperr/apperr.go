// Package apperr defines the error taxonomy shared by the service layer and
// the HTTP handlers. Every denial carries a machine-checkable Reason.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindAuthentication Kind = "authentication"
	KindAuthorization  Kind = "authorization"
	KindNotFound       Kind = "not_found"
	KindInvariant      Kind = "invariant_violation"
	KindInvalidInput   Kind = "invalid_input"
	KindConflict       Kind = "conflict"
	KindStore          Kind = "store"
	KindNotifier       Kind = "notifier"
)

type Error struct {
	Kind   Kind
	Reason string
	Module string
	Action string
	// Details lists individual problems, e.g. each failed password rule.
	Details []string
	Err     error
}

func (e *Error) Error() string {
	msg := string(e.Kind) + ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches on Kind so callers can write errors.Is(err, apperr.ErrNotFound).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Reason == "" && t.Kind == e.Kind
}

// Kind sentinels for errors.Is.
var (
	ErrAuthentication = &Error{Kind: KindAuthentication}
	ErrAuthorization  = &Error{Kind: KindAuthorization}
	ErrNotFound       = &Error{Kind: KindNotFound}
	ErrInvariant      = &Error{Kind: KindInvariant}
	ErrInvalidInput   = &Error{Kind: KindInvalidInput}
	ErrConflict       = &Error{Kind: KindConflict}
	ErrStore          = &Error{Kind: KindStore}
	ErrNotifier       = &Error{Kind: KindNotifier}
)

func Authentication(reason string) *Error {
	return &Error{Kind: KindAuthentication, Reason: reason}
}

func Authorization(reason, module, action string) *Error {
	return &Error{Kind: KindAuthorization, Reason: reason, Module: module, Action: action}
}

func NotFound(entity string) *Error {
	return &Error{Kind: KindNotFound, Reason: entity + " not found"}
}

func Invariant(reason string) *Error {
	return &Error{Kind: KindInvariant, Reason: reason}
}

func InvalidInput(reason string) *Error {
	return &Error{Kind: KindInvalidInput, Reason: reason}
}

func InvalidInputDetails(reason string, details []string) *Error {
	return &Error{Kind: KindInvalidInput, Reason: reason, Details: details}
}

func Conflict(reason string) *Error {
	return &Error{Kind: KindConflict, Reason: reason}
}

func Store(op string, err error) *Error {
	return &Error{Kind: KindStore, Reason: op, Err: err}
}

func Notifier(err error) *Error {
	return &Error{Kind: KindNotifier, Reason: "notification failed", Err: err}
}

// Storef wraps err as a store failure unless it already carries a kind.
func Storef(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return err
	}
	return Store(fmt.Sprintf(format, args...), err)
}

// KindOf returns the kind of err, or KindStore for unclassified errors.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindStore
}

// HTTPStatus maps an error to the status code the handlers respond with.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindInvariant, KindInvalidInput:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
