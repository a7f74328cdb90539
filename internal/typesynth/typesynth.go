// Package typesynth implements the type synthesizer: a first-match-wins
// decision table mapping a column's accumulated statistics to a logical
// type and a SQL type string.
package typesynth

import (
	"fmt"
	"strings"

	"schemasift/internal/stats"
)

// Type is the logical type assigned alongside the SQL type.
type Type string

const (
	Integer   Type = "integer"
	Number    Type = "number"
	DateType  Type = "date"
	Timestamp Type = "timestamp"
	Stream    Type = "stream"
	String    Type = "string"
)

// Result is one column's synthesized type.
type Result struct {
	Type    Type
	SQLType string
}

// Synthesize evaluates the decision table against col, in the documented
// order — the first matching row wins.
//
// The numeric/date/timestamp rows below require nonNull > 0 in addition
// to the literal "count == nonNull" match: a column with zero observed
// non-null values satisfies that equality vacuously (0 == 0) regardless
// of the column's actual content, which would synthesize a fully-null,
// ID-named column as BIGINT and a fully-null column as DATE/TIMESTAMP.
// There is nothing to type-check in an empty column, so these guards
// route it to the VARCHAR default instead (see DESIGN.md Open Question
// #4).
func Synthesize(col *stats.Column) Result {
	nonNull := col.NonNull()
	name := col.Name

	allNumeric := col.NumCount == nonNull && nonNull > 0
	scaleMax := col.Scale.Max()

	switch {
	case allNumeric && scaleMax == 0 && containsID(name):
		return Result{Integer, "BIGINT"}

	case allNumeric && scaleMax == 0 && nonNull >= 50 && col.NumMin == 0 && col.NumMax == 1:
		return Result{Integer, "BOOLEAN"}

	case allNumeric && scaleMax == 0 && nonNull >= 100 && col.NumMin > -100 && col.NumMax < 100:
		return Result{Integer, "TINYINT"}

	case allNumeric && scaleMax == 0:
		return Result{Integer, fmt.Sprintf("INT(%d)", stats.Margin(&col.Length))}

	case allNumeric:
		return Result{Number, fmt.Sprintf("NUMERIC(%d,%d)", stats.Margin(&col.Length), stats.Margin(&col.Scale))}

	case col.DtCount == nonNull && nonNull > 0:
		return Result{DateType, "DATE"}

	case col.TsCount == nonNull && nonNull > 0:
		return Result{Timestamp, "TIMESTAMP"}

	case col.Length.Max() > 10000:
		return Result{Stream, "LONGVARCHAR"}

	default:
		return Result{String, fmt.Sprintf("VARCHAR(%d)", stats.Margin(&col.Length))}
	}
}

// containsID reports whether name contains "ID" as a case-insensitive
// substring — deliberately unbounded (matches "WIDTH" too; see DESIGN.md
// Open Question #3).
func containsID(name string) bool {
	return strings.Contains(strings.ToUpper(name), "ID")
}
