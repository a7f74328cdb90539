// Package engine orchestrates the pipeline stages (spec §4.1–§4.7) into
// the two operations spec §6 exposes: ScanFile and InferColumnList.
package engine

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"

	"schemasift/internal/config"
	"schemasift/internal/delimiter"
	"schemasift/internal/diag"
	"schemasift/internal/header"
	"schemasift/internal/linesource"
	"schemasift/internal/scanerr"
	"schemasift/internal/schema"
	"schemasift/internal/stats"
	"schemasift/internal/tokenizer"
	"schemasift/internal/typesynth"
)

// distinctCap bounds the distinct-value set tracked per column for the
// uniqueRatio hint (grounded on the teacher's distinctCapPerColumn); it is
// a memory bound, not a statistical one.
const distinctCap = 10000

// ScanFile runs the full pipeline against path and returns the resulting
// ScanResult, per spec §6. Only InputMissing, EmptyInput, and Internal
// ever surface as a returned error; every other condition from spec §7
// becomes a diagnostic and the scan continues.
func ScanFile(path string, cfg config.ScanConfig) (result *schema.ScanResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = scanerr.New(scanerr.Internal, path, fmt.Errorf("panic during scan: %v", r))
		}
	}()

	f, statErr := os.Open(path)
	if statErr != nil {
		return nil, scanerr.New(scanerr.InputMissing, path, statErr)
	}
	defer f.Close()

	info, statErr := f.Stat()
	var fileSize int64
	if statErr == nil {
		fileSize = info.Size()
	}

	sink := &diag.Sink{}

	reader, decErr := linesource.Decompress(f, path)
	if decErr != nil {
		return nil, scanerr.New(scanerr.Internal, path, decErr)
	}

	sample, readErr := linesource.Read(reader, cfg.ReadLines, fileSize, sink)
	if readErr != nil {
		return nil, scanerr.New(scanerr.Internal, path, readErr)
	}

	if sample.HeaderCandidate == "" {
		return nil, scanerr.New(scanerr.EmptyInput, path, nil)
	}

	if sample.EOF && cfg.ReadLines != 0 && len(sample.Lines) < cfg.ReadLines {
		sink.Warning("fewer than %s sample lines available (got %s); scan continues",
			humanize.Comma(int64(cfg.ReadLines)), humanize.Comma(int64(len(sample.Lines))))
	}

	sep := cfg.Separator
	if sep == 0 {
		all := make([]string, 0, len(sample.Lines)+1)
		all = append(all, sample.HeaderCandidate)
		all = append(all, sample.Lines...)
		sep = delimiter.Detect(all, sink)
	}

	present, headerFields := header.Decide(sample.HeaderCandidate, sep, cfg.Header, sink)

	rows := make([][]string, 0, len(sample.Lines)+1)
	if !present {
		rows = append(rows, headerFields)
	}
	for i, line := range sample.Lines {
		rows = append(rows, tokenizer.Split(line, sep, i+2, sink))
	}

	columns := make([]*stats.Column, 0)
	distinct := make([]map[string]struct{}, 0)

	ensureColumn := func(idx int) {
		for len(columns) <= idx {
			columns = append(columns, &stats.Column{})
			distinct = append(distinct, make(map[string]struct{}))
		}
	}

	if present {
		for i, name := range headerFields {
			ensureColumn(i)
			columns[i].Name = name
		}
	}

	for _, row := range rows {
		for i, v := range row {
			ensureColumn(i)
			columns[i].Observe(v)
			if len(distinct[i]) < distinctCap {
				distinct[i][v] = struct{}{}
			}
		}
	}

	colInfos := make([]schema.ColumnInfo, len(columns))
	for i, col := range columns {
		res := typesynth.Synthesize(col)
		colInfos[i] = schema.FromColumn(col, res)
		emitUniqueHint(sink, colInfos[i], len(distinct[i]))
	}

	colInfos = dropTrailingUnnamedNullColumn(colInfos)

	headerBool := present
	return &schema.ScanResult{
		RunID:             schema.NewRunID(),
		EstimatedLines:    sample.EstimatedLines,
		DetectedSeparator: string(sep),
		HeaderPresent:     headerBool,
		Columns:           colInfos,
		Diagnostics:       sink.Items(),
		Qualifiers:        config.Echo(cfg, sep, headerBool),
	}, nil
}

// InferColumnList is the convenience wrapper from spec §6: scan path and
// render the DDL-ready column list.
func InferColumnList(path string, cfg config.ScanConfig) (string, error) {
	result, err := ScanFile(path, cfg)
	if err != nil {
		return "", err
	}
	return schema.Emit(result.Columns, cfg.Strict), nil
}

// dropTrailingUnnamedNullColumn implements spec §4.6/§3's trailing-column
// drop rule: a nameless, 100%-null column at the end of the list is an
// artifact of a trailing delimiter, not a real column.
func dropTrailingUnnamedNullColumn(cols []schema.ColumnInfo) []schema.ColumnInfo {
	if len(cols) == 0 {
		return cols
	}
	last := cols[len(cols)-1]
	if last.Name == "" && last.Count > 0 && last.NullPct == 1 {
		return cols[:len(cols)-1]
	}
	return cols
}

// emitUniqueHint records the optional uniqueRatio INFO diagnostic
// (SPEC_FULL §3 supplement): a column whose sampled distinct-value count
// is a high fraction of its observation count is worth flagging as a
// candidate key or breakout column.
func emitUniqueHint(sink *diag.Sink, col schema.ColumnInfo, distinctCount int) {
	if col.Count < 20 {
		return
	}
	ratio := float64(distinctCount) / float64(col.Count)
	if ratio < 0.95 {
		return
	}
	name := col.Name
	if name == "" {
		name = "(unnamed)"
	}
	sink.Info("column %q looks highly unique (%.1f%%); consider it for a key or breakout column", name, ratio*100)
}
