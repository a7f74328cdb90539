package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"schemasift/internal/config"
	"schemasift/internal/metrics"
)

func writeTemp(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRunBatchWritesOneLinePerFile(t *testing.T) {
	dir := t.TempDir()
	a := writeTemp(t, dir, "a.csv", "name,age\nAlice,30\n")
	b := writeTemp(t, dir, "b.csv", "name,age\nBob,25\n")

	var buf bytes.Buffer
	r, w, err := os.Pipe()
	require.NoError(t, err)
	done := make(chan struct{})
	go func() {
		buf.ReadFrom(r)
		close(done)
	}()

	require.NoError(t, runBatch([]string{a, b}, config.Default(), 4, w, metrics.Noop{}))
	w.Close()
	<-done

	lines := 0
	dec := json.NewDecoder(bytes.NewReader(buf.Bytes()))
	for dec.More() {
		var v map[string]any
		require.NoError(t, dec.Decode(&v), "decode NDJSON line")
		lines++
	}
	require.Equal(t, 2, lines)
}

func TestRunBatchContinuesPastOneFailingFile(t *testing.T) {
	dir := t.TempDir()
	a := writeTemp(t, dir, "a.csv", "name,age\nAlice,30\n")
	missing := filepath.Join(dir, "does-not-exist.csv")

	r, w, err := os.Pipe()
	require.NoError(t, err)
	var buf bytes.Buffer
	done := make(chan struct{})
	go func() {
		buf.ReadFrom(r)
		close(done)
	}()

	require.NoError(t, runBatch([]string{a, missing}, config.Default(), 4, w, metrics.Noop{}))
	w.Close()
	<-done

	lines := 0
	dec := json.NewDecoder(bytes.NewReader(buf.Bytes()))
	for dec.More() {
		var v map[string]any
		require.NoError(t, dec.Decode(&v), "decode NDJSON line")
		lines++
	}
	require.Equal(t, 1, lines, "missing file should be logged, not encoded")
}

type fakeBackend struct {
	mu     sync.Mutex
	counts map[string]float64
}

func (f *fakeBackend) IncCounter(name string, delta float64, labels metrics.Labels) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.counts == nil {
		f.counts = map[string]float64{}
	}
	f.counts[name] += delta
}

func (f *fakeBackend) ObserveHistogram(name string, value float64, labels metrics.Labels) {}

func TestRunBatchReportsScanAndColumnCountsToBackend(t *testing.T) {
	dir := t.TempDir()
	a := writeTemp(t, dir, "a.csv", "name,age\nAlice,30\n")

	r, w, err := os.Pipe()
	require.NoError(t, err)
	done := make(chan struct{})
	go func() {
		io.Copy(io.Discard, r)
		close(done)
	}()

	backend := &fakeBackend{}
	require.NoError(t, runBatch([]string{a}, config.Default(), 4, w, backend))
	w.Close()
	<-done

	require.Equal(t, float64(1), backend.counts["schemasift_scans_total"])
	require.Equal(t, float64(2), backend.counts["schemasift_columns_total"])
}
