// Command schemabatch runs schema inference concurrently over every file
// matching a glob pattern, printing one ScanResult as a line of NDJSON
// per file as soon as its scan completes.
//
// Because the engine is single-threaded by design — concurrency, if any,
// lives at the driver layer, never inside the pipeline stages —
// concurrency here means one goroutine per matched file, each running its
// own independent engine.ScanFile call — never shared mutable state
// across files.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"

	"schemasift/internal/config"
	"schemasift/internal/diag"
	"schemasift/internal/engine"
	"schemasift/internal/metrics"
	"schemasift/internal/metrics/datadog"
)

func main() {
	var (
		flagGlob      = flag.String("glob", "", "Glob pattern matching files to scan (required)")
		flagReadLines = flag.Int("read-lines", 200, "Number of sample lines to read per file (0 = whole file)")
		flagConc      = flag.Int("concurrency", 8, "Maximum number of files scanned concurrently")
		flagStrict    = flag.Bool("strict", false, "Append NOT NULL for zero-null columns in emitted DDL")
		flagVerbose   = flag.Bool("verbose", false, "Mirror each file's scan diagnostics to stderr")
		flagDatadog   = flag.Bool("datadog", false, "Report scan counts, durations, and column types to Datadog")
		flagDDJobName = flag.String("datadog-job", "schemabatch", "Datadog job: tag for reported metrics")
		flagDDTags    = flag.String("datadog-tags", "", "Extra comma-separated Datadog tags, e.g. env:prod,team:data")
	)
	flag.Parse()

	if strings.TrimSpace(*flagGlob) == "" {
		fmt.Fprintln(os.Stderr, "missing -glob")
		flag.Usage()
		os.Exit(2)
	}

	paths, err := filepath.Glob(*flagGlob)
	if err != nil {
		log.Fatalf("schemabatch: glob %q: %v", *flagGlob, err)
	}
	if len(paths) == 0 {
		log.Fatalf("schemabatch: glob %q matched no files", *flagGlob)
	}

	cfg := config.Default()
	cfg.ReadLines = *flagReadLines
	cfg.Strict = *flagStrict
	cfg.Verbose = *flagVerbose

	var backend metrics.Backend = metrics.Noop{}
	if *flagDatadog {
		dd, err := datadog.NewBackend(context.Background(), datadog.Options{
			JobName: *flagDDJobName,
			Tags:    datadog.ParseTagsCSV(*flagDDTags),
		})
		if err != nil {
			log.Fatalf("schemabatch: datadog backend: %v", err)
		}
		defer dd.Close()
		backend = dd
	}

	if err := runBatch(paths, cfg, *flagConc, os.Stdout, backend); err != nil {
		log.Fatalf("schemabatch: %v", err)
	}
}

// runBatch scans every path concurrently (bounded by concurrency) and
// writes one NDJSON line per completed scan to out. A mutex serializes
// writes to out since concurrent scans finish in arbitrary order;
// individual scan failures are logged to stderr and do not abort the
// remaining scans.
func runBatch(paths []string, cfg config.ScanConfig, concurrency int, out *os.File, backend metrics.Backend) error {
	g, _ := errgroup.WithContext(context.Background())
	g.SetLimit(concurrency)

	var writeMu sync.Mutex
	enc := json.NewEncoder(out)

	for _, path := range paths {
		path := path
		g.Go(func() error {
			start := time.Now()
			result, err := engine.ScanFile(path, cfg)
			elapsed := time.Since(start).Seconds()
			if err != nil {
				fmt.Fprintf(os.Stderr, "schemabatch: %s: %v\n", path, err)
				backend.IncCounter("schemasift_scans_total", 1, metrics.Labels{"status": "error"})
				backend.ObserveHistogram("schemasift_scan_duration_seconds", elapsed, metrics.Labels{"status": "error"})
				return nil
			}

			backend.IncCounter("schemasift_scans_total", 1, metrics.Labels{"status": "ok"})
			backend.ObserveHistogram("schemasift_scan_duration_seconds", elapsed, metrics.Labels{"status": "ok"})
			for _, d := range result.Diagnostics {
				backend.IncCounter("schemasift_diagnostics_total", 1, metrics.Labels{"level": string(d.Level)})
			}
			for _, c := range result.Columns {
				backend.IncCounter("schemasift_columns_total", 1, metrics.Labels{"type": string(c.Type)})
			}

			if cfg.Verbose {
				fmt.Fprintf(os.Stderr, "schemabatch: %s:\n", path)
				diag.Mirror(os.Stderr, result.Diagnostics)
			}

			writeMu.Lock()
			defer writeMu.Unlock()
			return enc.Encode(result)
		})
	}

	return g.Wait()
}
