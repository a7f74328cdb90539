package mssql

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"schemasift/internal/executor"
)

func TestMapTypeRewritesDialectSpecificTypes(t *testing.T) {
	cases := map[string]string{
		"LONGVARCHAR":   "NVARCHAR(MAX)",
		"BOOLEAN":       "BIT",
		"TIMESTAMP":     "DATETIME2",
		"VARCHAR(20)":   "VARCHAR(20)",
		"NUMERIC(10,2)": "NUMERIC(10,2)",
		"BIGINT":        "BIGINT",
	}
	for in, want := range cases {
		require.Equal(t, want, mapType(in), "mapType(%q)", in)
	}
}

func TestColumnListUsesBracketQuoting(t *testing.T) {
	spec := executor.TableSpec{
		Columns: []executor.ColumnDef{{Name: "id", SQLType: "BIGINT"}},
	}
	got := columnList(spec)
	require.Contains(t, got, "[id] BIGINT")
}

func TestLoadStatementIsBulkInsert(t *testing.T) {
	e := &Exec{}
	spec := executor.TableSpec{Table: "orders"}
	stmt := e.LoadStatement(spec)
	require.True(t, strings.HasPrefix(stmt, "BULK INSERT [orders]"), "got %q", stmt)
}

func TestQuoteIdentEscapesClosingBracket(t *testing.T) {
	require.Equal(t, "[a]]b]", quoteIdent("a]b"))
}
