// Package bundleerr holds the error kind shared by every layer that can
// reject a manifest: the version grammar and the manifest parser itself. Keeping it in its own leaf package lets
// version.Parse and manifest.Parse both return the same InvalidBundle kind
// without the two packages importing each other.
package bundleerr

import "github.com/pkg/errors"

// InvalidBundle is the single failure kind raised by the manifest parser and
// by the Version/VersionRange string constructors. It is never recoverable
// by the resolver; the caller must fix the input.
type InvalidBundle struct {
	Message string
	cause   error
}

func (e *InvalidBundle) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *InvalidBundle) Unwrap() error {
	return e.cause
}

// NewInvalidBundle builds an InvalidBundle with no underlying cause.
func NewInvalidBundle(format string, args ...interface{}) *InvalidBundle {
	return &InvalidBundle{Message: errors.Errorf(format, args...).Error()}
}

// WrapInvalidBundle builds an InvalidBundle that chains a lower-level cause,
// e.g. a malformed Bundle-Version string failing inside the version package.
func WrapInvalidBundle(cause error, format string, args ...interface{}) *InvalidBundle {
	return &InvalidBundle{
		Message: errors.Errorf(format, args...).Error(),
		cause:   cause,
	}
}

// AsInvalidBundle reports whether err is (or wraps) an *InvalidBundle.
func AsInvalidBundle(err error) (*InvalidBundle, bool) {
	var ib *InvalidBundle
	if errors.As(err, &ib) {
		return ib, true
	}
	return nil, false
}
