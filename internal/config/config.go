// Package config models a single scan's inputs: the typed ScanConfig the
// engine consumes, and the dynamic "qualifier object" boundary described in
// spec §6 — nested, loosely-typed JSON accepted from a caller and flattened
// into a small, known key set via case-insensitive dot-path lowering.
//
// The flattening/parsing helpers here are grounded on the teacher's
// internal/config.Options accessor family (Bool/Int/Rune/StringMap/Any),
// which the CSV and JSON stream parsers use throughout
// internal/parser/csv/stream_rows.go: a small typed map with permissive,
// best-effort accessors instead of a rigid struct tag decoder.
package config

import (
	"fmt"
	"strconv"
	"strings"

	"schemasift/internal/diag"
)

// HeaderMode is the tri-state described in spec §3.
type HeaderMode int

const (
	HeaderAuto HeaderMode = iota
	HeaderPresent
	HeaderAbsent
)

func (h HeaderMode) String() string {
	switch h {
	case HeaderPresent:
		return "present"
	case HeaderAbsent:
		return "absent"
	default:
		return "auto"
	}
}

// ScanConfig carries the inputs to one scan (spec §3).
type ScanConfig struct {
	// Separator is the explicit single-character delimiter override. Zero
	// value means "run delimiter detection".
	Separator rune

	// Header selects the tri-state header decision. Default HeaderAuto.
	Header HeaderMode

	// Quote is fixed to '"' by spec, kept as a field for completeness/tests.
	Quote rune

	// ReadLines bounds the sample; 0 means "read the whole file".
	ReadLines int

	// Strict controls whether the emitter appends NOT NULL for zero-null columns.
	Strict bool

	// Verbose controls whether diagnostics are also mirrored to a
	// caller-supplied stream (handled by the driver, not the engine).
	Verbose bool
}

// Default returns the spec's documented defaults: quote '"', 200 sample
// lines, auto header, non-strict.
func Default() ScanConfig {
	return ScanConfig{
		Quote:     '"',
		ReadLines: 200,
		Header:    HeaderAuto,
	}
}

// knownQualifierKeys is the exhaustive key set from spec §6, already
// lowercased, dot-joined.
var knownQualifierKeys = map[string]bool{
	"from.file.columnseparator": true,
	"from.file.header":          true,
	"verbose":                   true,
	"readlines":                 true,
	"strict":                    true,
}

// Flatten lowercases every path segment of a nested map[string]any and joins
// them with '.', producing the dot-path keys spec §6 describes ("Keys are
// matched case-insensitively via a flattening step that lowercases every
// path segment"). Leaf values are copied as-is (bool, float64, string, or
// nested types the caller didn't intend, which then simply won't match any
// known key and get flagged).
func Flatten(v map[string]any) map[string]any {
	out := make(map[string]any)
	flattenInto("", v, out)
	return out
}

func flattenInto(prefix string, v map[string]any, out map[string]any) {
	for k, val := range v {
		key := strings.ToLower(k)
		if prefix != "" {
			key = prefix + "." + key
		}
		if nested, ok := val.(map[string]any); ok {
			flattenInto(key, nested, out)
			continue
		}
		out[key] = val
	}
}

// FromQualifiers parses a flattened qualifier map into a ScanConfig,
// starting from Default() and overriding only the keys present. Unknown
// keys are reported as WARNING diagnostics and otherwise ignored — they
// never fail the parse, matching spec §9 ("reject unknown keys with a
// WARNING").
func FromQualifiers(flat map[string]any, sink *diag.Sink) ScanConfig {
	cfg := Default()

	for k, v := range flat {
		if !knownQualifierKeys[k] {
			if sink != nil {
				sink.Warning("unknown qualifier key %q ignored", k)
			}
			continue
		}
		switch k {
		case "from.file.columnseparator":
			if s, ok := asString(v); ok && len(s) > 0 {
				r := []rune(s)
				cfg.Separator = r[0]
			}
		case "from.file.header":
			cfg.Header = parseHeaderMode(v)
		case "verbose":
			if b, ok := asBool(v); ok {
				cfg.Verbose = b
			}
		case "readlines":
			if n, ok := asInt(v); ok && n >= 0 {
				cfg.ReadLines = n
			}
		case "strict":
			if b, ok := asBool(v); ok {
				cfg.Strict = b
			}
		}
	}

	return cfg
}

func parseHeaderMode(v any) HeaderMode {
	switch t := v.(type) {
	case bool:
		if t {
			return HeaderPresent
		}
		return HeaderAbsent
	case float64:
		switch {
		case t == 1:
			return HeaderPresent
		case t == 0:
			return HeaderAbsent
		default:
			return HeaderAuto
		}
	case int:
		switch t {
		case 1:
			return HeaderPresent
		case 0:
			return HeaderAbsent
		default:
			return HeaderAuto
		}
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "present", "true", "1":
			return HeaderPresent
		case "absent", "false", "0":
			return HeaderAbsent
		default:
			return HeaderAuto
		}
	default:
		return HeaderAuto
	}
}

func asString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case fmt.Stringer:
		return t.String(), true
	default:
		return "", false
	}
}

func asBool(v any) (bool, bool) {
	switch t := v.(type) {
	case bool:
		return t, true
	case string:
		b, err := strconv.ParseBool(t)
		if err != nil {
			return false, false
		}
		return b, true
	default:
		return false, false
	}
}

func asInt(v any) (int, bool) {
	switch t := v.(type) {
	case float64:
		return int(t), true
	case int:
		return t, true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// Qualifiers is the JSON-serializable "echoed and completed" ScanConfig
// (spec §3): the caller's qualifier object, filled in with the values the
// engine actually used (detected separator, resolved header decision).
type Qualifiers struct {
	ColumnSeparator string `json:"from.file.columnseparator"`
	Header          string `json:"from.file.header"`
	Verbose         bool   `json:"verbose"`
	ReadLines       int    `json:"readlines"`
	Strict          bool   `json:"strict"`
}

// Echo builds the completed Qualifiers view of cfg, given the separator and
// header decision the engine resolved during the scan.
func Echo(cfg ScanConfig, resolvedSeparator rune, resolvedHeader bool) Qualifiers {
	headerStr := "absent"
	if resolvedHeader {
		headerStr = "present"
	}
	return Qualifiers{
		ColumnSeparator: string(resolvedSeparator),
		Header:          headerStr,
		Verbose:         cfg.Verbose,
		ReadLines:       cfg.ReadLines,
		Strict:          cfg.Strict,
	}
}
