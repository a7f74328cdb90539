// Package mssql adapts the executor registry to SQL Server via
// database/sql and the go-mssqldb driver. Unlike the teacher's MSSQL
// backend, this package blank-imports its driver directly: there is no
// dimension/fact/SCD2 wiring left for an application to own, so there is
// nothing gained by making driver registration the caller's problem.
package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/microsoft/go-mssqldb"

	"schemasift/internal/executor"
)

func init() {
	executor.Register("mssql", New)
}

// Exec implements executor.Executor for SQL Server.
type Exec struct {
	db *sql.DB
}

// New constructs a SQL Server-backed Exec, validating connectivity via Ping.
func New(ctx context.Context, dsn string) (executor.Executor, error) {
	db, err := sql.Open("sqlserver", dsn)
	if err != nil {
		return nil, fmt.Errorf("mssql: open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("mssql: ping: %w", err)
	}
	return &Exec{db: db}, nil
}

// Close releases database resources.
func (e *Exec) Close() error { return e.db.Close() }

// CreateTable issues CREATE TABLE for spec, guarded by an existence check
// since SQL Server has no CREATE TABLE IF NOT EXISTS shorthand.
func (e *Exec) CreateTable(ctx context.Context, spec executor.TableSpec) error {
	stmt := fmt.Sprintf(
		"IF OBJECT_ID(N'%s', N'U') IS NULL CREATE TABLE %s (\n  %s\n)",
		spec.Table, quoteIdent(spec.Table), columnList(spec),
	)
	if _, err := e.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("mssql: create table %s: %w", spec.Table, err)
	}
	return nil
}

// LoadStatement returns a BULK INSERT template naming spec's table; the
// caller fills in FROM/FORMAT options appropriate to where the source
// file lives relative to the server.
func (e *Exec) LoadStatement(spec executor.TableSpec) string {
	return fmt.Sprintf("BULK INSERT %s FROM '<source-file>' WITH (FORMAT = 'CSV', FIRSTROW = 1)",
		quoteIdent(spec.Table))
}

func columnList(spec executor.TableSpec) string {
	cols := make([]string, len(spec.Columns))
	for i, c := range spec.Columns {
		cols[i] = fmt.Sprintf("%s %s", quoteIdent(c.Name), mapType(c.SQLType))
	}
	return strings.Join(cols, ",\n  ")
}

// mapType rewrites the synthesizer's Postgres-flavored SQL types to their
// SQL Server equivalents; the two dialects diverge on exactly the handful
// of types spec.md's type synthesis ever emits.
func mapType(sqlType string) string {
	switch strings.ToUpper(sqlType) {
	case "LONGVARCHAR":
		return "NVARCHAR(MAX)"
	case "BOOLEAN":
		return "BIT"
	case "TIMESTAMP":
		// SQL Server's TIMESTAMP is a rowversion type, not a datetime; the
		// synthesizer means a calendar timestamp, so DATETIME2 is correct here.
		return "DATETIME2"
	default:
		return sqlType
	}
}

func quoteIdent(name string) string {
	return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
}

var _ executor.Executor = (*Exec)(nil)
