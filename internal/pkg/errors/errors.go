package errors

import "errors"

// Kind sentinels. Every error produced by the service layer wraps exactly one
// of them so the HTTP boundary can pick a status with errors.Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalid      = errors.New("invalid")
	ErrConflict     = errors.New("conflict")
	ErrTooMany      = errors.New("too many requests")
	ErrInternal     = errors.New("internal")
)

type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string {
	return e.msg
}

func (e *kindError) Unwrap() error {
	return e.kind
}

func newKind(kind error, msg string) error {
	if msg == "" {
		return kind
	}
	return &kindError{kind: kind, msg: msg}
}

func NotFound(msg string) error {
	return newKind(ErrNotFound, msg)
}

func Unauthorized(msg string) error {
	return newKind(ErrUnauthorized, msg)
}

func Forbidden(msg string) error {
	return newKind(ErrForbidden, msg)
}

func Invalid(msg string) error {
	return newKind(ErrInvalid, msg)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// Kind returns the sentinel wrapped by err, or ErrInternal for anything that
// was not produced through this package.
func Kind(err error) error {
	for _, kind := range []error{ErrNotFound, ErrUnauthorized, ErrForbidden, ErrInvalid, ErrConflict, ErrTooMany} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return ErrInternal
}
