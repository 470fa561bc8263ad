package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrColumnNotFound is returned when a lookup names a column the table lacks.
var ErrColumnNotFound = errors.New("column not found")

// NumericColumns lists the columns coerced to numbers at load time.
// Unparseable or empty cells in these columns become NaN.
var NumericColumns = []string{
	"earnings_usd",
	"job_duration_days",
	"project_type_fixed",
	"job_completed",
	"job_success_rate",
	"client_rating",
	"hourly_rate",
	"rehire_rate",
	"marketing_spend",
}

// Options controls how a dataset file is read.
type Options struct {
	// Delimiter for the file. If 0, chosen by extension (.tsv → tab, else comma).
	Delimiter rune
	// Sheet selects the worksheet of an .xlsx workbook by name; empty means the first.
	Sheet string
}

// Table is an in-memory, read-only view of the freelancer records.
// Callers must not modify slices returned by its accessors.
type Table struct {
	Name    string
	columns []string
	index   map[string]int
	rows    [][]string
	numeric map[string][]float64
}

// Load reads a delimited file, normalizes column names and coerces the
// declared numeric columns. A missing file yields an error that satisfies
// errors.Is(err, fs.ErrNotExist).
func Load(path string, opt Options) (*Table, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return loadXLSX(path, opt.Sheet)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()
	delim := opt.Delimiter
	if delim == 0 {
		delim = sniffDelimiter(path)
	}
	t, err := Read(f, delim)
	if err != nil {
		return nil, err
	}
	t.Name = filepath.Base(path)
	return t, nil
}

// Read parses delimited records from r. The first record is the header.
func Read(r io.Reader, delim rune) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comma = delim

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return New(nil, nil), nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	var rows [][]string
	for {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", len(rows)+1, err)
		}
		rows = append(rows, rec)
	}
	return New(header, rows), nil
}

// New builds a Table from a raw header and rows. Column names are
// normalized, rows are padded or cut to the header width, and numeric
// columns are coerced.
func New(header []string, rows [][]string) *Table {
	t := &Table{
		columns: make([]string, len(header)),
		index:   make(map[string]int, len(header)),
		numeric: map[string][]float64{},
	}
	for i, h := range header {
		name := NormalizeColumn(h)
		t.columns[i] = name
		if _, dup := t.index[name]; !dup {
			t.index[name] = i
		}
	}
	t.rows = make([][]string, len(rows))
	for i, rec := range rows {
		row := make([]string, len(header))
		copy(row, rec)
		t.rows[i] = row
	}
	for _, name := range NumericColumns {
		if idx, ok := t.index[name]; ok {
			t.numeric[name] = t.parseColumn(idx)
		}
	}
	return t
}

// NormalizeColumn trims, lowercases and replaces spaces with underscores.
func NormalizeColumn(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "_")
}

// ParseNumber converts a cell to float64; anything unparseable is NaN.
func ParseNumber(s string) float64 {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

func (t *Table) parseColumn(idx int) []float64 {
	out := make([]float64, len(t.rows))
	for i, row := range t.rows {
		out[i] = ParseNumber(row[idx])
	}
	return out
}

// Columns returns the normalized column names in file order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// Len returns the number of data rows.
func (t *Table) Len() int { return len(t.rows) }

// HasColumn reports whether the table has the named column.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Text returns the raw cell values of a column.
func (t *Table) Text(name string) ([]string, error) {
	idx, ok := t.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrColumnNotFound, name)
	}
	out := make([]string, len(t.rows))
	for i, row := range t.rows {
		out[i] = row[idx]
	}
	return out, nil
}

// Numbers returns a column as float64 values with NaN for missing cells.
// Columns outside NumericColumns are coerced on each call.
func (t *Table) Numbers(name string) ([]float64, error) {
	if vals, ok := t.numeric[name]; ok {
		return vals, nil
	}
	idx, ok := t.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrColumnNotFound, name)
	}
	return t.parseColumn(idx), nil
}

// Row returns the raw values of row i.
func (t *Table) Row(i int) []string {
	out := make([]string, len(t.columns))
	copy(out, t.rows[i])
	return out
}

// Records returns a copy of all rows as raw strings.
func (t *Table) Records() [][]string {
	out := make([][]string, len(t.rows))
	for i := range t.rows {
		out[i] = t.Row(i)
	}
	return out
}

// Head returns a new Table holding at most the first n rows.
func (t *Table) Head(n int) *Table {
	if n < 0 {
		n = 0
	}
	if n > len(t.rows) {
		n = len(t.rows)
	}
	h := &Table{
		Name:    t.Name,
		columns: t.columns,
		index:   t.index,
		rows:    t.rows[:n],
		numeric: make(map[string][]float64, len(t.numeric)),
	}
	for k, v := range t.numeric {
		h.numeric[k] = v[:n]
	}
	return h
}

func sniffDelimiter(path string) rune {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}
	return ','
}
