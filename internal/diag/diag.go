// Package diag implements the structured diagnostics sink shared by every
// stage of a scan. Diagnostics replace ad-hoc logging inside the engine:
// recoverable conditions are appended here and the scan continues, exactly
// as the propagation policy requires.
package diag

import (
	"fmt"
	"io"
)

// Level classifies a Diagnostic's severity.
type Level string

const (
	INFO    Level = "INFO"
	WARNING Level = "WARNING"
	ERROR   Level = "ERROR"
	DEBUG   Level = "DEBUG"
)

// Diagnostic is one structured entry in a scan's diagnostics list.
type Diagnostic struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

// Sink accumulates diagnostics in production order. It is not safe for
// concurrent use — a scan owns exactly one Sink, matching the engine's
// single-threaded execution model.
type Sink struct {
	items []Diagnostic
}

// Add appends a diagnostic with the given level and formatted message.
func (s *Sink) Add(level Level, format string, args ...any) {
	s.items = append(s.items, Diagnostic{Level: level, Message: fmt.Sprintf(format, args...)})
}

// Info is shorthand for Add(INFO, ...).
func (s *Sink) Info(format string, args ...any) { s.Add(INFO, format, args...) }

// Warning is shorthand for Add(WARNING, ...).
func (s *Sink) Warning(format string, args ...any) { s.Add(WARNING, format, args...) }

// Error is shorthand for Add(ERROR, ...).
func (s *Sink) Error(format string, args ...any) { s.Add(ERROR, format, args...) }

// Debug is shorthand for Add(DEBUG, ...).
func (s *Sink) Debug(format string, args ...any) { s.Add(DEBUG, format, args...) }

// Items returns the accumulated diagnostics in production order. The
// returned slice is owned by the caller; the Sink keeps its own.
func (s *Sink) Items() []Diagnostic {
	out := make([]Diagnostic, len(s.items))
	copy(out, s.items)
	return out
}

// Mirror writes each diagnostic to w, one per line, prefixed with its
// level. The engine itself never logs; callers that want visibility into
// a scan opt in by mirroring its diagnostics somewhere, typically stderr
// under a verbose flag.
func Mirror(w io.Writer, items []Diagnostic) {
	for _, d := range items {
		fmt.Fprintln(w, string(d.Level)+": "+d.Message)
	}
}

// HasLevel reports whether any diagnostic of exactly the given level was
// recorded; diagnostics at other levels, higher or lower, do not count.
func (s *Sink) HasLevel(level Level) bool {
	for _, d := range s.items {
		if d.Level == level {
			return true
		}
	}
	return false
}
