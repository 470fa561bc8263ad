package analysis

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/KaramelBytes/earnings-cli/internal/dataset"
)

// Analyzer computes one aggregation over the full dataset.
type Analyzer func(*dataset.Table) (Result, error)

// Result is the closed set of analyzer outputs: Mapping, Percentage,
// Correlation and *Table.
type Result interface {
	fmt.Stringer
	isResult()
}

// Entry is one category of a Mapping.
type Entry struct {
	Key   string
	Value float64
}

// Mapping is an ordered category → value result.
type Mapping []Entry

func (Mapping) isResult() {}

// Map returns the mapping as a plain map.
func (m Mapping) Map() map[string]float64 {
	out := make(map[string]float64, len(m))
	for _, e := range m {
		out[e.Key] = e.Value
	}
	return out
}

func (m Mapping) String() string {
	var b strings.Builder
	for i, e := range m {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(fmt.Sprintf("- %s: %s", safeVal(e.Key), formatFloat(e.Value)))
	}
	return b.String()
}

// Percentage is a share expressed in percent (0..100). NaN means undefined.
type Percentage float64

func (Percentage) isResult() {}

func (p Percentage) String() string {
	if math.IsNaN(float64(p)) {
		return undefined
	}
	return fmt.Sprintf("%.2f%%", float64(p))
}

// Correlation is a Pearson coefficient in [-1, 1]. NaN means undefined.
type Correlation float64

func (Correlation) isResult() {}

func (c Correlation) String() string {
	if math.IsNaN(float64(c)) {
		return undefined
	}
	return fmt.Sprintf("%.3f", float64(c))
}

// Stats summarizes earnings for one group.
type Stats struct {
	Mean   float64
	Median float64
	Count  int
}

// GroupRow is one row of a grouped Table.
type GroupRow struct {
	Key []string
	Stats
}

// Table is a derived table: grouping key columns followed by mean, median
// and count of earnings.
type Table struct {
	Keys []string
	Rows []GroupRow
}

func (*Table) isResult() {}

// Columns returns the key columns followed by the aggregate columns.
func (t *Table) Columns() []string {
	cols := make([]string, 0, len(t.Keys)+3)
	cols = append(cols, t.Keys...)
	return append(cols, "mean", "median", "count")
}

// Records renders every row as display strings. Key cells are made safe
// for a Markdown table row.
func (t *Table) Records() [][]string {
	out := make([][]string, 0, len(t.Rows))
	for _, r := range t.Rows {
		rec := make([]string, 0, len(r.Key)+3)
		for _, k := range r.Key {
			rec = append(rec, safeVal(k))
		}
		rec = append(rec, formatFloat(r.Mean), formatFloat(r.Median), strconv.Itoa(r.Count))
		out = append(out, rec)
	}
	return out
}

// Lookup returns the row whose key matches exactly.
func (t *Table) Lookup(key ...string) (GroupRow, bool) {
	for _, r := range t.Rows {
		if len(r.Key) != len(key) {
			continue
		}
		match := true
		for i := range key {
			if r.Key[i] != key[i] {
				match = false
				break
			}
		}
		if match {
			return r, true
		}
	}
	return GroupRow{}, false
}

func (t *Table) String() string { return t.PlainMarkdown() }

const undefined = "undefined"

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
