// Package header implements the Header Heuristic from spec §4.3: deciding
// whether the sample's first line is a header row, honoring an explicit
// override from ScanConfig.
package header

import (
	"strconv"
	"strings"

	"schemasift/internal/config"
	"schemasift/internal/diag"
	"schemasift/internal/tokenizer"
)

// Decide splits candidate on sep and applies the tri-state rule. It reports
// whether a header is present and always returns the split fields: the
// caller uses them as column names when a header is present, and re-feeds
// them as an ordinary data row when it is not (spec §4.3: "H is re-fed as
// a data line").
func Decide(candidate string, sep rune, mode config.HeaderMode, sink *diag.Sink) (present bool, fields []string) {
	fields = tokenizer.Split(candidate, sep, 1, sink)

	switch mode {
	case config.HeaderPresent:
		return true, fields
	case config.HeaderAbsent:
		return false, fields
	default:
		return !anyNumeric(fields), fields
	}
}

// anyNumeric reports whether at least one field parses as numeric, the
// auto-mode trigger for "assume no header" (spec §4.3: "count fields in H
// that parse as numeric. If >= 1, assume no header").
func anyNumeric(fields []string) bool {
	for _, f := range fields {
		if isNumeric(f) {
			return true
		}
	}
	return false
}

// isNumeric mirrors the Column Statistician's numeric predicate (spec
// §4.5): a signed decimal number, integer or fixed-point, with an optional
// exponent.
func isNumeric(v string) bool {
	v = strings.TrimSpace(v)
	if v == "" {
		return false
	}
	// strconv.ParseFloat also accepts "NaN", "Inf"/"Infinity" and hex
	// floats, none of which is a signed decimal number.
	if strings.IndexFunc(v, func(r rune) bool {
		return !strings.ContainsRune("0123456789+-.eE", r)
	}) >= 0 {
		return false
	}
	_, err := strconv.ParseFloat(v, 64)
	return err == nil
}
