package utils

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorKind classifies every failure surfaced to callers.
type ErrorKind string

const (
	KindUnauthorized     ErrorKind = "unauthorized"
	KindPermissionDenied ErrorKind = "permission_denied"
	KindNotFound         ErrorKind = "not_found"
	KindValidation       ErrorKind = "validation_error"
	KindInternal         ErrorKind = "internal"
)

const (
	// Returned by the auth middleware when the token can't be resolved.
	ErrorTokenAuthFail = "token_auth_fail"
)

// Error carries a kind so that the gateway can tell the taxonomy apart.
type Error struct {
	Kind ErrorKind
	Msg  string
}

func (e *Error) Error() string {
	return e.Msg
}

func newError(kind ErrorKind, format string, args ...interface{}) error {
	return errors.WithStack(&Error{Kind: kind, Msg: fmt.Sprintf(format, args...)})
}

func Unauthorized(format string, args ...interface{}) error {
	return newError(KindUnauthorized, format, args...)
}

func PermissionDenied(format string, args ...interface{}) error {
	return newError(KindPermissionDenied, format, args...)
}

func NotFound(format string, args ...interface{}) error {
	return newError(KindNotFound, format, args...)
}

func Validation(format string, args ...interface{}) error {
	return newError(KindValidation, format, args...)
}

// KindOf returns the kind of err, KindInternal for anything not created by
// the constructors above. A nil error has no kind.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsKind reports whether err is of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}
