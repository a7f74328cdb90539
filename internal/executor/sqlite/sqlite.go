// Package sqlite adapts the executor registry to SQLite via
// modernc.org/sqlite, matching the teacher's choice of a cgo-free driver.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"schemasift/internal/executor"
)

func init() {
	executor.Register("sqlite", New)
}

// Exec implements executor.Executor for SQLite.
type Exec struct {
	db *sql.DB
}

// New constructs a SQLite-backed Exec.
func New(ctx context.Context, dsn string) (executor.Executor, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}
	return &Exec{db: db}, nil
}

// Close releases database resources.
func (e *Exec) Close() error { return e.db.Close() }

// CreateTable issues CREATE TABLE IF NOT EXISTS for spec.
func (e *Exec) CreateTable(ctx context.Context, spec executor.TableSpec) error {
	stmt := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n  %s\n)",
		quoteIdent(spec.Table), columnList(spec))
	if _, err := e.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("sqlite: create table %s: %w", spec.Table, err)
	}
	return nil
}

// LoadStatement returns a parameterized multi-row INSERT template; SQLite
// has no native bulk-file loader comparable to Postgres COPY or MSSQL
// BULK INSERT, so inserts are the idiomatic path here.
func (e *Exec) LoadStatement(spec executor.TableSpec) string {
	names := make([]string, len(spec.Columns))
	placeholders := make([]string, len(spec.Columns))
	for i, c := range spec.Columns {
		names[i] = quoteIdent(c.Name)
		placeholders[i] = "?"
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(spec.Table), strings.Join(names, ", "), strings.Join(placeholders, ", "))
}

func columnList(spec executor.TableSpec) string {
	cols := make([]string, len(spec.Columns))
	for i, c := range spec.Columns {
		cols[i] = fmt.Sprintf("%s %s", quoteIdent(c.Name), mapType(c.SQLType))
	}
	return strings.Join(cols, ",\n  ")
}

// mapType folds the synthesizer's VARCHAR, LONGVARCHAR, DATE, TIMESTAMP
// and BOOLEAN types onto SQLite's TEXT and INTEGER affinities. SQLite
// accepts nearly any type name, so every other type (NUMERIC(p,s), BIGINT,
// TINYINT, INT(n)) is passed through verbatim.
func mapType(sqlType string) string {
	switch {
	case strings.HasPrefix(strings.ToUpper(sqlType), "NUMERIC"):
		return sqlType
	case strings.HasPrefix(strings.ToUpper(sqlType), "VARCHAR"):
		return "TEXT"
	case strings.EqualFold(sqlType, "LONGVARCHAR"):
		return "TEXT"
	case strings.EqualFold(sqlType, "TIMESTAMP"):
		return "TEXT"
	case strings.EqualFold(sqlType, "DATE"):
		return "TEXT"
	case strings.EqualFold(sqlType, "BOOLEAN"):
		return "INTEGER"
	default:
		return sqlType
	}
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

var _ executor.Executor = (*Exec)(nil)
