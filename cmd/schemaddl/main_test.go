package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"schemasift/internal/schema"
)

func TestBuildTableSpecUsesColumnNamesAndTypes(t *testing.T) {
	result := &schema.ScanResult{
		Columns: []schema.ColumnInfo{
			{Name: "id", SQLType: "BIGINT"},
			{Name: "", SQLType: "VARCHAR(10)"},
		},
	}
	spec := buildTableSpec("orders", result)
	require.Equal(t, "orders", spec.Table)
	require.Equal(t, "id", spec.Columns[0].Name)
	require.Equal(t, "BIGINT", spec.Columns[0].SQLType)
	require.Equal(t, "Column2", spec.Columns[1].Name, "expected Column2 fallback")
}

func TestReadScanResultFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "result.json")
	body := `{"runId":"x","estimatedLines":1,"detectedSeparator":",","headerPresent":true,"columns":[{"name":"id","count":1,"nullPct":0,"length":{"avg":1,"min":1,"max":1,"stdDev":0},"type":"integer","sqlType":"BIGINT"}],"errors":[],"qualifiers":{"from.file.columnseparator":",","from.file.header":"present","verbose":false,"readlines":200,"strict":false}}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	result, err := readScanResult(path)
	require.NoError(t, err)
	require.Len(t, result.Columns, 1)
	require.Equal(t, "id", result.Columns[0].Name)
}
