// Command schemaddl takes a previously produced ScanResult (from
// cmd/schemasift or cmd/schemabatch) and runs its DDL against a real
// backend: CREATE TABLE for the synthesized columns, then prints the
// bulk-load statement a caller should use to load rows into it.
//
// The ScanResult is read from -in, or from stdin when -in is omitted —
// the natural pairing with "schemasift file.csv | schemaddl -backend
// postgres -dsn ... -table orders".
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"schemasift/internal/diag"
	"schemasift/internal/executor"
	_ "schemasift/internal/executor/mssql"
	_ "schemasift/internal/executor/postgres"
	_ "schemasift/internal/executor/sqlite"
	"schemasift/internal/schema"
)

func main() {
	var (
		flagIn      = flag.String("in", "", "Path to a ScanResult JSON file (default: read from stdin)")
		flagBackend = flag.String("backend", "postgres", "Target backend: postgres|mssql|sqlite")
		flagDSN     = flag.String("dsn", "", "Backend DSN (required)")
		flagTable   = flag.String("table", "", "Target table name (required)")
		flagVerbose = flag.Bool("verbose", false, "Mirror the scan result's diagnostics to stderr")
	)
	flag.Parse()

	if strings.TrimSpace(*flagDSN) == "" {
		fmt.Fprintln(os.Stderr, "missing -dsn")
		flag.Usage()
		os.Exit(2)
	}
	if strings.TrimSpace(*flagTable) == "" {
		fmt.Fprintln(os.Stderr, "missing -table")
		flag.Usage()
		os.Exit(2)
	}

	result, err := readScanResult(*flagIn)
	if err != nil {
		log.Fatalf("schemaddl: %v", err)
	}

	if *flagVerbose {
		diag.Mirror(os.Stderr, result.Diagnostics)
	}

	spec := buildTableSpec(*flagTable, result)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	exec, err := executor.New(ctx, strings.ToLower(strings.TrimSpace(*flagBackend)), *flagDSN)
	if err != nil {
		log.Fatalf("schemaddl: %v", err)
	}
	defer exec.Close()

	if err := exec.CreateTable(ctx, spec); err != nil {
		log.Fatalf("schemaddl: %v", err)
	}

	fmt.Fprintln(os.Stdout, exec.LoadStatement(spec))
}

func readScanResult(path string) (*schema.ScanResult, error) {
	var r io.Reader
	if strings.TrimSpace(path) == "" {
		r = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		defer f.Close()
		r = f
	}

	var result schema.ScanResult
	if err := json.NewDecoder(r).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode scan result: %w", err)
	}
	return &result, nil
}

func buildTableSpec(table string, result *schema.ScanResult) executor.TableSpec {
	names := make([]string, len(result.Columns))
	sqlTypes := make([]string, len(result.Columns))
	for i, c := range result.Columns {
		names[i] = c.Name
		sqlTypes[i] = c.SQLType
	}
	return executor.BuildTableSpec(table, names, sqlTypes)
}
