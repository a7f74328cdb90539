// Package scanerr defines the typed error kinds a scan can abort with.
// Only the two abort conditions named in spec §7 (InputMissing, EmptyInput)
// and the catch-all Internal kind ever surface as a Go error from the
// engine; every other condition in §7 (ShortSample, UnknownSeparator,
// MalformedLine) is recoverable and becomes a diagnostic instead.
package scanerr

import "fmt"

// Kind enumerates the abort-worthy error kinds from spec §7.
type Kind string

const (
	InputMissing Kind = "InputMissing"
	EmptyInput   Kind = "EmptyInput"
	Internal     Kind = "Internal"
)

// Error wraps an underlying cause with a Kind so callers can distinguish
// abort conditions with errors.As without string-matching messages.
type Error struct {
	Kind Kind
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("scan %s: %s", e.Kind, e.Path)
	}
	return fmt.Sprintf("scan %s: %s: %v", e.Kind, e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// New constructs a scanerr.Error for the given kind.
func New(kind Kind, path string, err error) *Error {
	return &Error{Kind: kind, Path: path, Err: err}
}
