// Package postgres adapts the executor registry to Postgres via pgx,
// trimmed to the create-table-plus-bulk-load scope: there is no
// dimension/fact/SCD2 model here, just the DDL and COPY statement a
// synthesized schema implies.
package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"schemasift/internal/executor"
)

func init() {
	executor.Register("postgres", New)
}

// Exec implements executor.Executor for Postgres.
type Exec struct {
	pool *pgxpool.Pool
}

// New constructs a Postgres-backed Exec.
func New(ctx context.Context, dsn string) (executor.Executor, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}
	return &Exec{pool: pool}, nil
}

// Close releases the connection pool.
func (e *Exec) Close() error {
	e.pool.Close()
	return nil
}

// CreateTable issues CREATE TABLE IF NOT EXISTS for spec.
func (e *Exec) CreateTable(ctx context.Context, spec executor.TableSpec) error {
	stmt := createTableSQL(spec)
	if _, err := e.pool.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("postgres: create table %s: %w", spec.Table, err)
	}
	return nil
}

// LoadStatement returns a COPY ... FROM STDIN statement sized to spec's
// column list, the idiomatic Postgres bulk-load path.
func (e *Exec) LoadStatement(spec executor.TableSpec) string {
	names := make([]string, len(spec.Columns))
	for i, c := range spec.Columns {
		names[i] = quoteIdent(c.Name)
	}
	return fmt.Sprintf("COPY %s (%s) FROM STDIN WITH (FORMAT csv, HEADER false)",
		quoteIdent(spec.Table), strings.Join(names, ", "))
}

func createTableSQL(spec executor.TableSpec) string {
	cols := make([]string, len(spec.Columns))
	for i, c := range spec.Columns {
		cols[i] = fmt.Sprintf("%s %s", quoteIdent(c.Name), c.SQLType)
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n  %s\n)",
		quoteIdent(spec.Table), strings.Join(cols, ",\n  "))
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

var _ executor.Executor = (*Exec)(nil)
