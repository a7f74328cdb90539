package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"schemasift/internal/diag"
)

func TestSplitSimple(t *testing.T) {
	t.Parallel()
	var sink diag.Sink
	got := Split("a,b,c", ',', 1, &sink)
	require.Equal(t, []string{"a", "b", "c"}, got)
}

func TestSplitEmptyFieldsAreNullable(t *testing.T) {
	t.Parallel()
	var sink diag.Sink
	got := Split("a,,c", ',', 1, &sink)
	require.Equal(t, []string{"a", "", "c"}, got)
}

func TestSplitQuotedFieldKeepsEmbeddedDelimiter(t *testing.T) {
	t.Parallel()
	var sink diag.Sink
	got := Split(`a,"b,c",d`, ',', 1, &sink)
	require.Equal(t, []string{"a", `"b,c"`, "d"}, got)
	require.False(t, sink.HasLevel(diag.DEBUG), "did not expect a DEBUG diagnostic for a well-formed quoted field")
}

func TestSplitDoubledQuoteIsLiteral(t *testing.T) {
	t.Parallel()
	var sink diag.Sink
	got := Split(`"a""b",c`, ',', 1, &sink)
	require.Equal(t, []string{`"a""b"`, "c"}, got)
}

func TestSplitBackslashEscapedQuoteTreatedAsDoubled(t *testing.T) {
	t.Parallel()
	var sink diag.Sink
	got := Split(`"a\"b",c`, ',', 1, &sink)
	require.Equal(t, []string{`"a""b"`, "c"}, got)
}

func TestSplitUnterminatedQuoteRecordsDebugAndEndsAtEOL(t *testing.T) {
	t.Parallel()
	var sink diag.Sink
	got := Split(`a,"b,c`, ',', 7, &sink)
	require.Equal(t, []string{"a", `"b,c`}, got)
	require.True(t, sink.HasLevel(diag.DEBUG), "expected a DEBUG diagnostic for the unterminated quote")
}

func TestSplitVerbatimFieldsRetainQuotes(t *testing.T) {
	t.Parallel()
	var sink diag.Sink
	got := Split(`"42"`, ',', 1, &sink)
	require.Equal(t, []string{`"42"`}, got, "quotes must be retained verbatim")
}
