// Package executor is the concrete stand-in for spec.md §1's "an executor
// submits them": taking a synthesized column list and running the DDL and
// bulk-load statement it implies against a real backend. The engine never
// imports this package — schema inference is complete before an executor
// is ever involved.
package executor

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/golang-sql/civil"
)

// ColumnDef is the minimal column shape an executor needs: a name (already
// resolved through the Column<i> fallback) and the SQL type spec §4.6
// synthesized for it.
type ColumnDef struct {
	Name    string
	SQLType string
}

// TableSpec names the target table and its columns.
type TableSpec struct {
	Table   string
	Columns []ColumnDef
}

// Executor runs the DDL/load side of a scan result against one backend.
type Executor interface {
	// CreateTable issues CREATE TABLE IF NOT EXISTS for spec.
	CreateTable(ctx context.Context, spec TableSpec) error

	// LoadStatement returns the bulk-load statement text for spec, without
	// executing it — callers decide how to feed rows through it.
	LoadStatement(spec TableSpec) string

	// Close releases any backend resources (pool, connection).
	Close() error
}

// Factory constructs an Executor for a DSN.
type Factory func(ctx context.Context, dsn string) (Executor, error)

var (
	mu       sync.RWMutex
	registry = map[string]Factory{}
)

// Register registers a backend factory under kind (e.g. "postgres"),
// mirroring the teacher's storage.RegisterMulti registry pattern. Calling
// Register twice for the same kind, or with a nil factory, panics — the
// same fail-fast justification the teacher gives: ambiguous backend
// selection is a programming error, not a runtime condition to recover
// from.
func Register(kind string, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if kind == "" {
		panic("executor: Register called with empty kind")
	}
	if f == nil {
		panic("executor: Register called with nil factory")
	}
	if _, exists := registry[kind]; exists {
		panic(fmt.Sprintf("executor: factory already registered for kind=%q", kind))
	}
	registry[kind] = f
}

// New constructs an Executor for the registered kind.
func New(ctx context.Context, kind, dsn string) (Executor, error) {
	mu.RLock()
	f := registry[kind]
	mu.RUnlock()

	if f == nil {
		return nil, fmt.Errorf("executor: unsupported backend kind %q", kind)
	}
	return f(ctx, dsn)
}

// BuildTableSpec converts a schema column list into a TableSpec, applying
// the same Column<i> fallback the emitter uses so an executor never sees
// an empty column name.
func BuildTableSpec(table string, names []string, sqlTypes []string) TableSpec {
	cols := make([]ColumnDef, len(names))
	for i := range names {
		name := names[i]
		if name == "" {
			name = fmt.Sprintf("Column%d", i+1)
		}
		cols[i] = ColumnDef{Name: name, SQLType: sqlTypes[i]}
	}
	return TableSpec{Table: table, Columns: cols}
}

// BindValue converts a raw field string into the value an executor should
// hand its driver for sqlType, given the driver treats every column as a
// string until bind time. DATE columns bind through civil.Date rather than
// time.Time, so a driver never receives a spurious time-of-day component
// for a value spec.md's type synthesis already decided has none.
func BindValue(sqlType, raw string) (any, error) {
	if raw == "" {
		return nil, nil
	}
	if strings.EqualFold(sqlType, "DATE") {
		d, err := civil.ParseDate(raw)
		if err != nil {
			return nil, fmt.Errorf("executor: parse DATE value %q: %w", raw, err)
		}
		return d, nil
	}
	return raw, nil
}
