// Package schema holds the ScanResult/ColumnInfo data model from spec §3
// and implements the Schema Emitter from spec §4.7: rendering a column
// list into DDL-ready text.
package schema

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"schemasift/internal/config"
	"schemasift/internal/diag"
	"schemasift/internal/stats"
	"schemasift/internal/typesynth"
)

// Stat is the {avg, min, max, stdDev} block spec §3 repeats for length and
// scale.
type Stat struct {
	Avg    float64 `json:"avg"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	StdDev float64 `json:"stdDev"`
}

// ColumnInfo is one synthesized column, per spec §3.
type ColumnInfo struct {
	Name    string  `json:"name"`
	Count   int     `json:"count"`
	NullPct float64 `json:"nullPct"`
	Length  Stat    `json:"length"`

	// Min/Max are numeric bounds, present only when the column is
	// entirely numeric (nil otherwise, per §3: "present only if all
	// non-null values parse as numeric").
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
	// Scale mirrors Min/Max's presence rule.
	Scale *Stat `json:"scale,omitempty"`

	Type    typesynth.Type `json:"type"`
	SQLType string         `json:"sqlType"`
}

// ScanResult is the top-level output of a scan, per spec §3 and the JSON
// shape spec §6 fixes (qualifiers, estimatedLines, columns[], errors[]).
type ScanResult struct {
	RunID             string             `json:"runId"`
	EstimatedLines    int                `json:"estimatedLines"`
	DetectedSeparator string             `json:"detectedSeparator"`
	HeaderPresent     bool               `json:"headerPresent"`
	Columns           []ColumnInfo       `json:"columns"`
	Diagnostics       []diag.Diagnostic  `json:"errors"`
	Qualifiers        config.Qualifiers  `json:"qualifiers"`
}

// NewRunID mints the correlation id every ScanResult carries, letting
// diagnostics and metrics for one scan be joined after the fact.
func NewRunID() string {
	return uuid.NewString()
}

// FromColumn converts an accumulated stats.Column plus its synthesized
// type into the ColumnInfo shape spec §3 defines.
func FromColumn(col *stats.Column, result typesynth.Result) ColumnInfo {
	ci := ColumnInfo{
		Name:    col.Name,
		Count:   col.Count,
		NullPct: col.NullPct(),
		Length: Stat{
			Avg:    col.Length.Avg(),
			Min:    float64(col.Length.Min()),
			Max:    float64(col.Length.Max()),
			StdDev: col.Length.StdDev(),
		},
		Type:    result.Type,
		SQLType: result.SQLType,
	}

	if col.NumCount == col.NonNull() && col.NonNull() > 0 {
		min, max := col.NumMin, col.NumMax
		ci.Min, ci.Max = &min, &max
		ci.Scale = &Stat{
			Avg:    col.Scale.Avg(),
			Min:    float64(col.Scale.Min()),
			Max:    float64(col.Scale.Max()),
			StdDev: col.Scale.StdDev(),
		}
	}

	return ci
}

// Emit renders the comma-separated "name sqlType[, name sqlType]*" column
// list from spec §4.7. Missing names become Column<i> (1-based). With
// strict, any column whose NullPct is 0 gets " NOT NULL" appended.
func Emit(columns []ColumnInfo, strict bool) string {
	parts := make([]string, len(columns))
	for i, c := range columns {
		name := c.Name
		if name == "" {
			name = fmt.Sprintf("Column%d", i+1)
		}
		def := name + " " + c.SQLType
		if strict && c.NullPct == 0 {
			def += " NOT NULL"
		}
		parts[i] = def
	}
	return strings.Join(parts, ", ")
}

// EmitNames renders the names-only variant spec §4.7 requires for
// target-column lists in load statements.
func EmitNames(columns []ColumnInfo) string {
	parts := make([]string, len(columns))
	for i, c := range columns {
		name := c.Name
		if name == "" {
			name = fmt.Sprintf("Column%d", i+1)
		}
		parts[i] = name
	}
	return strings.Join(parts, ", ")
}
