package output

import (
	"io"
	"strings"
	"text/tabwriter"
)

// Tabular is implemented by results with a table rendering.
type Tabular interface {
	Table() *Table
}

// TableFormatter formats Tabular values as aligned columns.
type TableFormatter struct {
	NoHeaders bool
}

// Format renders data. Non-tabular values are written as JSON.
func (f *TableFormatter) Format(w io.Writer, data any) error {
	if data == nil {
		return nil
	}
	switch v := data.(type) {
	case *Table:
		return v.render(w, f.NoHeaders)
	case Tabular:
		return v.Table().render(w, f.NoHeaders)
	}
	return (&JSONFormatter{}).Format(w, data)
}

// Table represents tabular data.
type Table struct {
	Headers []string
	Rows    [][]string
}

// NewKV returns a two-column FIELD/VALUE table.
func NewKV() *Table {
	return &Table{Headers: []string{"FIELD", "VALUE"}}
}

// AddRow adds a row to the table. Empty cells render as "-".
func (t *Table) AddRow(cells ...string) *Table {
	row := make([]string, len(cells))
	for i, c := range cells {
		if c == "" {
			c = "-"
		}
		row[i] = c
	}
	t.Rows = append(t.Rows, row)
	return t
}

// Render writes the table with headers.
func (t *Table) Render(w io.Writer) error {
	return t.render(w, false)
}

func (t *Table) render(w io.Writer, noHeaders bool) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if !noHeaders && len(t.Headers) > 0 {
		if _, err := io.WriteString(tw, strings.Join(t.Headers, "\t")+"\n"); err != nil {
			return err
		}
	}
	for _, row := range t.Rows {
		if _, err := io.WriteString(tw, strings.Join(row, "\t")+"\n"); err != nil {
			return err
		}
	}
	return tw.Flush()
}
