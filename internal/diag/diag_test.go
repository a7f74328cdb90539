package diag

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSinkAddAccumulatesInOrder(t *testing.T) {
	t.Parallel()
	var s Sink
	s.Info("sampled %d lines", 10)
	s.Warning("line %d truncated", 3)
	items := s.Items()
	require.Len(t, items, 2)
	require.Equal(t, INFO, items[0].Level)
	require.Equal(t, "sampled 10 lines", items[0].Message)
	require.Equal(t, WARNING, items[1].Level)
	require.Equal(t, "line 3 truncated", items[1].Message)
}

func TestSinkHasLevel(t *testing.T) {
	t.Parallel()
	var s Sink
	require.False(t, s.HasLevel(ERROR))
	s.Error("boom")
	require.True(t, s.HasLevel(ERROR))
	require.False(t, s.HasLevel(WARNING))
}

func TestMirrorWritesOneLevelPrefixedLinePerDiagnostic(t *testing.T) {
	t.Parallel()
	var s Sink
	s.Info("sampled 10 lines")
	s.Warning("line 3 truncated")

	var buf strings.Builder
	Mirror(&buf, s.Items())

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Equal(t, []string{
		"INFO: sampled 10 lines",
		"WARNING: line 3 truncated",
	}, lines)
}

func TestMirrorOnEmptyItemsWritesNothing(t *testing.T) {
	t.Parallel()
	var buf strings.Builder
	Mirror(&buf, nil)
	require.Equal(t, "", buf.String())
}
