// Command schemasift infers a delimited file's schema by sampling it and
// running the detection/tokenization/type-synthesis pipeline in
// internal/engine.
//
// Output modes
//
//   - Default mode: prints the ScanResult as JSON to stdout.
//   - -list: prints the DDL-ready "name type[, name type]*" column list
//     instead of full JSON.
//
// # Header confirmation
//
// When header detection runs in auto mode and both stdin and stdout are
// attached to a terminal, schemasift prints its guess and asks for
// confirmation before proceeding, rather than silently committing to a
// guess an interactive operator could correct on the spot. Non-interactive
// runs (piped, redirected, or CI) always skip the prompt and use the
// detected value, so scripting behavior never depends on a TTY that isn't
// there.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/goccy/go-json"
	"github.com/mattn/go-isatty"

	"schemasift/internal/config"
	"schemasift/internal/diag"
	"schemasift/internal/engine"
	"schemasift/internal/schema"
)

func main() {
	var (
		flagSeparator = flag.String("separator", "", "Explicit single-character column separator (default: auto-detect)")
		flagHeader    = flag.String("header", "auto", "Header mode: auto|present|absent")
		flagReadLines = flag.Int("read-lines", 200, "Number of sample lines to read (0 = whole file)")
		flagStrict    = flag.Bool("strict", false, "Append NOT NULL for zero-null columns in emitted DDL")
		flagList      = flag.Bool("list", false, "Print the DDL-ready column list instead of full JSON")
		flagPretty    = flag.Bool("pretty", true, "Pretty-print JSON output (ignored with -list)")
		flagYes       = flag.Bool("yes", false, "Skip the interactive header confirmation prompt")
		flagVerbose   = flag.Bool("verbose", false, "Mirror scan diagnostics to stderr")
	)
	flag.Parse()

	path := flag.Arg(0)
	if strings.TrimSpace(path) == "" {
		fmt.Fprintln(os.Stderr, "usage: schemasift [flags] <path>")
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.Default()
	cfg.ReadLines = *flagReadLines
	cfg.Strict = *flagStrict
	cfg.Verbose = *flagVerbose

	headerMode, err := parseHeaderFlag(*flagHeader)
	if err != nil {
		log.Fatalf("schemasift: %v", err)
	}
	cfg.Header = headerMode

	if s := strings.TrimSpace(*flagSeparator); s != "" {
		r := []rune(s)
		cfg.Separator = r[0]
	}

	if !*flagYes && cfg.Header == config.HeaderAuto && interactive() {
		confirmed, err := confirmHeaderGuess(path, cfg, os.Stdin, os.Stdout)
		if err != nil {
			log.Fatalf("schemasift: %v", err)
		}
		cfg.Header = confirmed
	}

	result, err := engine.ScanFile(path, cfg)
	if err != nil {
		log.Fatalf("schemasift: %v", err)
	}

	if cfg.Verbose {
		diag.Mirror(os.Stderr, result.Diagnostics)
	}

	if *flagList {
		fmt.Fprintln(os.Stdout, schema.Emit(result.Columns, cfg.Strict))
		return
	}

	enc := json.NewEncoder(os.Stdout)
	if *flagPretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(result); err != nil {
		log.Fatalf("schemasift: encode result: %v", err)
	}
}

// interactive reports whether both stdin and stdout are attached to a
// terminal — the only condition under which a header-guess prompt is
// worth showing rather than silently trusting auto-detection.
func interactive() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stdout.Fd())
}

// confirmHeaderGuess runs a quick scan to preview the auto-detected header
// decision, asks the operator to confirm or override it, and returns the
// header mode the real scan should use.
func confirmHeaderGuess(path string, cfg config.ScanConfig, in *os.File, out *os.File) (config.HeaderMode, error) {
	preview, err := engine.ScanFile(path, cfg)
	if err != nil {
		return cfg.Header, err
	}

	guess := "no header row"
	if preview.HeaderPresent {
		guess = "a header row"
	}
	fmt.Fprintf(out, "schemasift: detected %s. Use this? [Y/n] ", guess)

	reader := bufio.NewReader(in)
	line, _ := reader.ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "", "y", "yes":
		if preview.HeaderPresent {
			return config.HeaderPresent, nil
		}
		return config.HeaderAbsent, nil
	default:
		if preview.HeaderPresent {
			return config.HeaderAbsent, nil
		}
		return config.HeaderPresent, nil
	}
}

func parseHeaderFlag(s string) (config.HeaderMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "auto", "":
		return config.HeaderAuto, nil
	case "present":
		return config.HeaderPresent, nil
	case "absent":
		return config.HeaderAbsent, nil
	default:
		return config.HeaderAuto, fmt.Errorf("invalid -header value %q (want auto|present|absent)", s)
	}
}
