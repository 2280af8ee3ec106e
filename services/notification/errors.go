package notification

import (
	"github.com/heraldhq/herald/services/lock"
	"github.com/pkg/errors"
)

var (
	// ErrValidation is returned when an entity or request is malformed.
	ErrValidation = errors.New("validation failed")
	// ErrConflict is returned for duplicate names and stale digests.
	ErrConflict = errors.New("conflict")
	// ErrNotFound is returned when a named entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrParse is returned when the persisted configuration is structurally invalid.
	ErrParse = errors.New("malformed configuration")
	// ErrIO is returned when the backend fails.
	ErrIO = errors.New("configuration i/o failed")
)

// ErrorCode is a stable classification of store errors.
type ErrorCode string

const (
	CodeOK          ErrorCode = ""
	CodeValidation  ErrorCode = "validation"
	CodeConflict    ErrorCode = "conflict"
	CodeNotFound    ErrorCode = "not-found"
	CodeParse       ErrorCode = "parse"
	CodeIO          ErrorCode = "io"
	CodeLockTimeout ErrorCode = "lock-timeout"
	CodeInternal    ErrorCode = "internal"
)

// Code classifies err.
func Code(err error) ErrorCode {
	switch {
	case err == nil:
		return CodeOK
	case errors.Is(err, ErrValidation):
		return CodeValidation
	case errors.Is(err, ErrConflict):
		return CodeConflict
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrParse):
		return CodeParse
	case errors.Is(err, ErrIO):
		return CodeIO
	case errors.Is(err, lock.ErrTimeout):
		return CodeLockTimeout
	default:
		return CodeInternal
	}
}

func validationErrorf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrValidation, format, args...)
}

func notFoundErrorf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrNotFound, format, args...)
}

func conflictErrorf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrConflict, format, args...)
}
