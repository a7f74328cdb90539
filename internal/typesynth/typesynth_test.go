package typesynth

import (
	"testing"

	"github.com/stretchr/testify/require"

	"schemasift/internal/stats"
)

func observeAll(name string, values []string) *stats.Column {
	c := &stats.Column{Name: name}
	for _, v := range values {
		c.Observe(v)
	}
	return c
}

func TestIDColumnAllIntegerYieldsBigint(t *testing.T) {
	t.Parallel()
	c := observeAll("customer_id", []string{"1", "2", "3"})
	got := Synthesize(c)
	require.Equal(t, "BIGINT", got.SQLType)
	require.Equal(t, Integer, got.Type)
}

func TestBooleanRequiresFiftyRowsAndZeroOneRange(t *testing.T) {
	t.Parallel()
	values := make([]string, 0, 60)
	for i := 0; i < 30; i++ {
		values = append(values, "0", "1")
	}
	c := observeAll("flag", values)
	got := Synthesize(c)
	require.Equal(t, "BOOLEAN", got.SQLType)
}

func TestBelowFiftyRowsFallsBackToInt(t *testing.T) {
	t.Parallel()
	c := observeAll("flag", []string{"0", "1", "0"})
	got := Synthesize(c)
	require.Equal(t, "INT(2)", got.SQLType)
}

func TestTinyintRequiresHundredRowsAndNarrowRange(t *testing.T) {
	t.Parallel()
	values := make([]string, 0, 120)
	for i := 0; i < 120; i++ {
		values = append(values, "5")
	}
	c := observeAll("delta", values)
	got := Synthesize(c)
	require.Equal(t, "TINYINT", got.SQLType)
}

func TestFractionalNumericYieldsNumeric(t *testing.T) {
	t.Parallel()
	c := observeAll("amount", []string{"10.50", "20.125", "5.00"})
	got := Synthesize(c)
	require.Equal(t, Number, got.Type)
}

func TestDateColumn(t *testing.T) {
	t.Parallel()
	c := observeAll("created", []string{"2024-01-01", "2024-02-15"})
	got := Synthesize(c)
	require.Equal(t, "DATE", got.SQLType)
}

func TestTimestampColumn(t *testing.T) {
	t.Parallel()
	c := observeAll("created_at", []string{"2024-01-01 10:00:00", "2024-02-15 12:30:45"})
	got := Synthesize(c)
	require.Equal(t, "TIMESTAMP", got.SQLType)
}

func TestLongStringYieldsLongvarchar(t *testing.T) {
	t.Parallel()
	c := observeAll("blob", []string{string(make([]byte, 10001))})
	got := Synthesize(c)
	require.Equal(t, "LONGVARCHAR", got.SQLType)
}

func TestPlainStringColumn(t *testing.T) {
	t.Parallel()
	c := observeAll("name", []string{"alice", "bob", "carol"})
	got := Synthesize(c)
	require.Equal(t, String, got.Type)
}

func TestIDSubstringRuleIsCaseInsensitiveAndUnbounded(t *testing.T) {
	t.Parallel()
	// "WIDTH" contains "id" as an unbounded substring match (spec's
	// documented, intentionally-preserved behavior).
	c := observeAll("width", []string{"1", "2", "3"})
	got := Synthesize(c)
	require.Equal(t, "BIGINT", got.SQLType, "expected BIGINT via the unbounded ID substring rule")
}
