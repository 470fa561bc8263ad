package analysis

import (
	"math"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable() *Table {
	return &Table{
		Keys: []string{"region", "rating_range"},
		Rows: []GroupRow{
			{Key: []string{"US", "3.0–3.5"}, Stats: Stats{Mean: 200, Median: 200, Count: 2}},
			{Key: []string{"US", "3.5–4.0"}, Stats: Stats{Mean: math.NaN(), Median: math.NaN(), Count: 0}},
		},
	}
}

func TestTableMarkdown(t *testing.T) {
	md, err := sampleTable().Markdown()
	require.NoError(t, err)
	for _, want := range []string{"region", "rating_range", "mean", "median", "count", "US", "3.0–3.5", "200.00", "n/a"} {
		assert.Contains(t, md, want)
	}
	lines := strings.Split(strings.TrimSpace(md), "\n")
	// header, separator, two rows
	require.Len(t, lines, 4)
	for _, l := range lines {
		l = strings.TrimSpace(l)
		assert.True(t, strings.HasPrefix(l, "|") && strings.HasSuffix(l, "|"), "line %q", l)
	}
}

func TestTableMarkdownRejectsRaggedRows(t *testing.T) {
	tb := sampleTable()
	tb.Rows[1].Key = []string{"US"}
	_, err := tb.Markdown()
	require.Error(t, err)

	// the fallback still renders
	out := RenderTable(tb)
	assert.True(t, strings.HasPrefix(out, "| region | rating_range | mean | median | count |\n| --- | --- | --- | --- | --- |\n"))
	assert.Contains(t, out, "| US | n/a | n/a | 0 |  |")
}

func TestPlainMarkdown(t *testing.T) {
	got := sampleTable().PlainMarkdown()
	want := "| region | rating_range | mean | median | count |\n" +
		"| --- | --- | --- | --- | --- |\n" +
		"| US | 3.0–3.5 | 200.00 | 200.00 | 2 |\n" +
		"| US | 3.5–4.0 | n/a | n/a | 0 |\n"
	assert.Equal(t, want, got)
}

func TestMarkdownRowsEscapesCells(t *testing.T) {
	got := MarkdownRows([]string{"a", " "}, [][]string{{"x|y"}, {"multi\nline", "z"}})
	assert.Equal(t, "| a | (unnamed) |\n| --- | --- |\n| x/y |  |\n| multi line | z |\n", got)
}

func TestScalarAndMappingStrings(t *testing.T) {
	assert.Equal(t, "12.35%", Percentage(12.346).String())
	assert.Equal(t, "-0.420", Correlation(-0.42).String())
	m := Mapping{{Key: "Bank Transfer", Value: 200}, {Key: "PayPal", Value: 100}}
	assert.Equal(t, "- Bank Transfer: 200.00\n- PayPal: 100.00", m.String())
	assert.Equal(t, "mapping with 2 categories", Describe(m))
	assert.Equal(t, "table with 2 rows", Describe(sampleTable()))
}

func TestMarkdownRowsKeepsLongCellsWhole(t *testing.T) {
	long := strings.Repeat("я", 50)
	got := MarkdownRows([]string{"client_region"}, [][]string{{long}})
	assert.True(t, utf8.ValidString(got))
	assert.Contains(t, got, "| "+long+" |")
	assert.NotContains(t, got, "...")
}

func TestTableMarkdownEscapesKeys(t *testing.T) {
	tb := &Table{
		Keys: []string{"client_region"},
		Rows: []GroupRow{{Key: []string{"North|South\nAmerica"}, Stats: Stats{Mean: 1, Median: 1, Count: 1}}},
	}
	md, err := tb.Markdown()
	require.NoError(t, err)
	assert.Contains(t, md, "North/South America")
	assert.NotContains(t, md, "North|South")
	assert.Len(t, strings.Split(strings.TrimSpace(md), "\n"), 3)
	assert.Contains(t, tb.PlainMarkdown(), "| North/South America |")
}
