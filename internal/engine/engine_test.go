package engine

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"schemasift/internal/config"
	"schemasift/internal/schema"
	"schemasift/internal/typesynth"
)

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestScenarioHeaderPresentStringAndInteger(t *testing.T) {
	t.Parallel()
	path := writeTemp(t, "name,age\nAlice,30\nBob,25\n")
	result, err := ScanFile(path, config.Default())
	require.NoError(t, err)
	require.True(t, result.HeaderPresent)
	require.Equal(t, ",", result.DetectedSeparator)
	require.Len(t, result.Columns, 2)
	require.Equal(t, "name", result.Columns[0].Name)
	require.Equal(t, typesynth.String, result.Columns[0].Type)
	require.Equal(t, "age", result.Columns[1].Name)
	require.Equal(t, typesynth.Integer, result.Columns[1].Type)
}

func TestScenarioNoHeaderNumericFirstLine(t *testing.T) {
	t.Parallel()
	path := writeTemp(t, "1;2;3\n4;5;6\n7;8;9\n")
	result, err := ScanFile(path, config.Default())
	require.NoError(t, err)
	require.False(t, result.HeaderPresent)
	require.Equal(t, ";", result.DetectedSeparator)
	require.Len(t, result.Columns, 3)
	for i, c := range result.Columns {
		require.Equal(t, "", c.Name, "column %d name should be empty (Column<i> is an emitter-time fallback)", i)
		require.Equal(t, typesynth.Integer, c.Type, "column %d type", i)
	}
	list := schema.Emit(result.Columns, false)
	require.True(t, strings.HasPrefix(list, "Column1 INT"), "emitted list = %q", list)
}

func TestScenarioIDColumnAndBooleanFlag(t *testing.T) {
	t.Parallel()
	var b strings.Builder
	b.WriteString("id,flag\n")
	for i := 0; i < 60; i++ {
		flag := "0"
		if i%2 == 0 {
			flag = "1"
		}
		b.WriteString(strings.Join([]string{strconv.Itoa(i + 1), flag}, ","))
		b.WriteString("\n")
	}
	path := writeTemp(t, b.String())
	cfg := config.Default()
	cfg.ReadLines = 0
	result, err := ScanFile(path, cfg)
	require.NoError(t, err)
	require.Equal(t, "BIGINT", result.Columns[0].SQLType)
	require.Equal(t, "BOOLEAN", result.Columns[1].SQLType)
}

func TestScenarioQuotedFieldWithEmbeddedCommaAndQuote(t *testing.T) {
	t.Parallel()
	path := writeTemp(t, "\"a,b\",2\n\"c\"\"d\",3\n")
	result, err := ScanFile(path, config.Default())
	require.NoError(t, err)
	require.Len(t, result.Columns, 2)
	require.Equal(t, typesynth.String, result.Columns[0].Type)
	require.Equal(t, typesynth.Integer, result.Columns[1].Type)
}

func TestScenarioSingleColumnDateFile(t *testing.T) {
	t.Parallel()
	path := writeTemp(t, "d\n2024-02-15\n2023-11-01\n")
	result, err := ScanFile(path, config.Default())
	require.NoError(t, err)
	require.Equal(t, ",", result.DetectedSeparator, "expected default ',' for a one-column file")
	hasWarning := false
	for _, d := range result.Diagnostics {
		if d.Level == "WARNING" {
			hasWarning = true
		}
	}
	require.True(t, hasWarning, "expected a WARNING diagnostic for the one-column default")
	require.Len(t, result.Columns, 1)
	require.Equal(t, "d", result.Columns[0].Name)
	require.Equal(t, "DATE", result.Columns[0].SQLType)
}

func TestScenarioMostlyNumericColumnStillYieldsString(t *testing.T) {
	t.Parallel()
	path := writeTemp(t, "1\n2\n3\nabc\n")
	cfg := config.Default()
	cfg.Header = config.HeaderAbsent
	result, err := ScanFile(path, cfg)
	require.NoError(t, err)
	require.Equal(t, typesynth.String, result.Columns[0].Type)
	require.True(t, strings.HasPrefix(result.Columns[0].SQLType, "VARCHAR("), "sqlType = %q, want VARCHAR(...)", result.Columns[0].SQLType)
}

func TestScanFileInputMissing(t *testing.T) {
	t.Parallel()
	_, err := ScanFile(filepath.Join(t.TempDir(), "does-not-exist.csv"), config.Default())
	require.Error(t, err)
}

func TestScanFileEmptyInput(t *testing.T) {
	t.Parallel()
	path := writeTemp(t, "\n\n\n")
	_, err := ScanFile(path, config.Default())
	require.Error(t, err)
}

func TestScanFileIdempotentModuloEstimatedLines(t *testing.T) {
	t.Parallel()
	path := writeTemp(t, "name,age\nAlice,30\nBob,25\n")
	r1, err := ScanFile(path, config.Default())
	require.NoError(t, err)
	r2, err := ScanFile(path, config.Default())
	require.NoError(t, err)
	require.Equal(t, len(r1.Columns), len(r2.Columns))
	for i := range r1.Columns {
		require.Equal(t, r1.Columns[i].SQLType, r2.Columns[i].SQLType, "column %d sqlType differs", i)
	}
}

func TestTrailingDelimiterDropsUnnamedNullColumn(t *testing.T) {
	t.Parallel()
	path := writeTemp(t, "a,b,\n1,2,\n3,4,\n")
	result, err := ScanFile(path, config.Default())
	require.NoError(t, err)
	require.Len(t, result.Columns, 2, "trailing all-null unnamed column should be dropped")
}
