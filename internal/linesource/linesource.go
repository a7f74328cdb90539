// Package linesource implements the first pipeline stage from spec §4.1:
// turning a raw byte stream into nonempty, trimmed lines, bounded by a
// sample cap, with the estimated total row count spec §4.1 defines.
//
// Decompression and BOM handling live here too (ambient, not core): a
// scan's input may be gzip- or zstd-compressed, and may open with a BOM.
// Neither changes the declared encoding of the stream, so both stay within
// the Non-goal that forbids charset transcoding.
package linesource

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/DataDog/zstd"
	"github.com/dustin/go-humanize"
	xunicode "golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"schemasift/internal/diag"
)

// lineByteCap is the line length cap from spec §4.1: longer lines are
// truncated and a WARNING is recorded.
const lineByteCap = 999_999

// Sample holds the result of reading a bounded sample of nonempty lines.
type Sample struct {
	// HeaderCandidate is the first nonempty line, held out separately: it
	// is never counted against ReadLines (spec §4.1).
	HeaderCandidate string

	// Lines is the data-line sample, honoring ScanConfig.ReadLines.
	Lines []string

	// EOF reports whether the underlying stream was fully consumed.
	EOF bool

	// EstimatedLines is the spec §4.1 row-count estimate. Valid is false
	// when the estimate could not be computed (file size unknown or zero
	// sampled bytes), in which case a WARNING has already been recorded.
	EstimatedLines int
	Valid          bool
}

// Decompress wraps r with a decompressor selected by the file extension of
// name, or uses r as-is for unrecognized extensions. In every case the
// stream then passes through stripBOM.
func Decompress(r io.Reader, name string) (io.Reader, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".gz":
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, err
		}
		return stripBOM(gz), nil
	case ".zst":
		return stripBOM(zstd.NewReader(r)), nil
	default:
		return stripBOM(r), nil
	}
}

// stripBOM discards a UTF-8/UTF-16 byte-order mark from the start of the
// stream. A UTF-16 BOM makes the body be decoded from UTF-16 to UTF-8, as
// the BOM declares; without one the body is read as UTF-8, and ill-formed
// UTF-8 bytes are replaced with U+FFFD.
func stripBOM(r io.Reader) io.Reader {
	e := xunicode.BOMOverride(xunicode.UTF8.NewDecoder())
	return transform.NewReader(r, e)
}

// Read consumes r, producing a Sample per spec §4.1. fileSize is the total
// byte size of the underlying input if known, or a value <= 0 if unknown
// (e.g. streaming input); it feeds the row-count estimate only.
func Read(r io.Reader, readLines int, fileSize int64, sink *diag.Sink) (Sample, error) {
	br := bufio.NewReaderSize(r, 64*1024)

	var (
		sample       Sample
		lineNum      int
		sampledBytes int64
		haveHeader   bool
	)

	for {
		raw, err := br.ReadBytes('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return sample, err
		}
		eofNow := errors.Is(err, io.EOF)

		if len(raw) == 0 && eofNow {
			sample.EOF = true
			break
		}

		lineNum++
		sampledBytes += int64(len(raw))

		body := raw
		body = bytes.TrimSuffix(body, []byte("\n"))
		body = bytes.TrimSuffix(body, []byte("\r"))

		truncated := false
		if len(body) > lineByteCap {
			body = body[:lineByteCap]
			// Keep the truncated slice valid UTF-8 by backing off to the
			// last full rune boundary.
			for len(body) > 0 && !utf8.Valid(body) {
				body = body[:len(body)-1]
			}
			truncated = true
		}

		trimmed := trimLine(string(body))
		if truncated {
			sink.Warning("line %d exceeded %s and was truncated", lineNum, humanize.Bytes(uint64(lineByteCap)))
		}

		if trimmed != "" {
			if !haveHeader {
				sample.HeaderCandidate = trimmed
				haveHeader = true
			} else if readLines == 0 || len(sample.Lines) < readLines {
				sample.Lines = append(sample.Lines, trimmed)
			}
		}

		if eofNow {
			sample.EOF = true
			break
		}

		// Cooperative stop: once we've filled the sample and are not
		// reading the whole file, there is no need to keep scanning.
		if readLines != 0 && haveHeader && len(sample.Lines) >= readLines {
			break
		}
	}

	sampleLines := len(sample.Lines)
	if haveHeader {
		sampleLines++
	}

	if sample.EOF {
		sample.EstimatedLines = sampleLines
		sample.Valid = true
		return sample, nil
	}

	if fileSize <= 0 || sampledBytes <= 0 {
		sink.Warning("cannot estimate total line count: file size or sampled bytes unknown")
		return sample, nil
	}

	sample.EstimatedLines = int(int64(sampleLines) * fileSize / sampledBytes)
	sample.Valid = true
	sink.Info("sampled %s of an estimated %s lines", humanize.Comma(int64(sampleLines)), humanize.Comma(int64(sample.EstimatedLines)))
	return sample, nil
}

// trimLine strips leading/trailing whitespace and control characters, the
// "whitespace-trimmed" requirement from spec §2.1.
func trimLine(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsControl(r)
	})
}
