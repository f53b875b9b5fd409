// Package apperr define error kinds shared by every layer of the service
// and their mapping to HTTP status codes.
package apperr

import (
	"net/http"

	"github.com/juju/errors"
)

// Error kinds. Use errors.Is(err, Kind) to test for them.
const (
	Unauthenticated   = errors.ConstError("unauthenticated")
	InvalidCredential = errors.ConstError("invalid credential")
	WrongRole         = errors.ConstError("wrong role")
	NotEligible       = errors.ConstError("not eligible")
	ValidationError   = errors.ConstError("validation error")
	NotFound          = errors.ConstError("not found")
	Conflict          = errors.ConstError("conflict")
	Forbidden         = errors.ConstError("forbidden")
	StorageError      = errors.ConstError("storage error")
)

var kinds = []errors.ConstError{
	Unauthenticated,
	InvalidCredential,
	WrongRole,
	NotEligible,
	ValidationError,
	NotFound,
	Conflict,
	Forbidden,
	StorageError,
}

var statusByKind = map[errors.ConstError]int{
	Unauthenticated:   http.StatusUnauthorized,
	InvalidCredential: http.StatusUnauthorized,
	WrongRole:         http.StatusForbidden,
	NotEligible:       http.StatusBadRequest,
	ValidationError:   http.StatusBadRequest,
	NotFound:          http.StatusNotFound,
	Conflict:          http.StatusConflict,
	Forbidden:         http.StatusForbidden,
	StorageError:      http.StatusInternalServerError,
}

// New return error of the given kind carrying a human readable message
func New(kind errors.ConstError, format string, args ...interface{}) error {
	return errors.WithType(errors.Errorf(format, args...), kind)
}

// Wrap tag err with kind, keeping err's message. Return nil when err is nil.
func Wrap(err error, kind errors.ConstError) error {
	if err == nil {
		return nil
	}
	return errors.WithType(err, kind)
}

// Storage wrap a persistence failure as StorageError
func Storage(err error, action string) error {
	if err == nil {
		return nil
	}
	return errors.WithType(errors.Annotatef(err, "failed to %s", action), StorageError)
}

// KindOf return the kind of err, StorageError for unknown errors
func KindOf(err error) errors.ConstError {
	for _, k := range kinds {
		if errors.Is(err, k) {
			return k
		}
	}
	return StorageError
}

// StatusCode return HTTP status code suitable for err
func StatusCode(err error) int {
	return statusByKind[KindOf(err)]
}
