package analysis

import (
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
)

// Markdown renders the table as a pipe-delimited Markdown table with
// aligned columns. It fails when a row does not match the header width.
func (t *Table) Markdown() (string, error) {
	cols := t.Columns()
	records := t.Records()
	for i, rec := range records {
		if len(rec) != len(cols) {
			return "", fmt.Errorf("render table: row %d has %d cells, header has %d", i, len(rec), len(cols))
		}
	}
	var b strings.Builder
	w := tablewriter.NewWriter(&b)
	w.SetHeader(cols)
	w.SetAutoFormatHeaders(false)
	w.SetAutoWrapText(false)
	w.SetBorders(tablewriter.Border{Left: true, Top: false, Right: true, Bottom: false})
	w.SetCenterSeparator("|")
	w.AppendBulk(records)
	w.Render()
	return b.String(), nil
}

// PlainMarkdown renders the table without alignment. It never fails and
// backs up Markdown.
func (t *Table) PlainMarkdown() string {
	return MarkdownRows(t.Columns(), t.Records())
}

// MarkdownRows is the minimal Markdown table renderer: header, separator
// and one line per row. Short rows are padded; cell text is kept whole.
func MarkdownRows(cols []string, rows [][]string) string {
	var b strings.Builder
	b.WriteString("| ")
	for i, c := range cols {
		if i > 0 {
			b.WriteString(" | ")
		}
		b.WriteString(safeName(c))
	}
	b.WriteString(" |\n")
	b.WriteString("| ")
	for i := range cols {
		if i > 0 {
			b.WriteString(" | ")
		}
		b.WriteString("---")
	}
	b.WriteString(" |\n")
	for _, row := range rows {
		b.WriteString("| ")
		for i := range cols {
			if i > 0 {
				b.WriteString(" | ")
			}
			val := ""
			if i < len(row) {
				val = row[i]
			}
			b.WriteString(safeVal(val))
		}
		b.WriteString(" |\n")
	}
	return b.String()
}

// RenderTable prefers the aligned renderer and falls back to the plain one.
func RenderTable(t *Table) string {
	md, err := t.Markdown()
	if err != nil {
		return t.PlainMarkdown()
	}
	return md
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}
