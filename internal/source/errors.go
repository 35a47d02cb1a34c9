package source

import (
	"context"
	"errors"
)

var (
	// ErrProfileNotFound is returned when a handle has no profile in the source.
	ErrProfileNotFound = errors.New("profile not found")

	// ErrUnsupportedFormat is returned for profile files of unknown type.
	ErrUnsupportedFormat = errors.New("unsupported profile format")

	// ErrEmptyHandle is returned for profiles without a handle.
	ErrEmptyHandle = errors.New("profile has no handle")
)

// ErrorKind names an acquisition failure for the placeholder record,
// e.g. "NotFound" or "Timeout".
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrProfileNotFound):
		return "NotFound"
	case errors.Is(err, context.Canceled):
		return "Canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "Timeout"
	default:
		return "SourceError"
	}
}
