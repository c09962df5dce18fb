package output

import (
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/hcms-console/hcms-console/internal/listview"
)

// Table renders rows without borders, headers left aligned.
type Table struct {
	table  *tablewriter.Table
	header []string
	rows   [][]string
}

// NewTable creates a table writing to w.
func NewTable(w io.Writer, headers []string) *Table {
	table := tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoWrap: tw.WrapNone},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
			Header: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoFormat: tw.On},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Separators: tw.Separators{ShowHeader: tw.Off},
			},
		}),
	)
	return &Table{table: table, header: headers}
}

// FromList copies a rendered list grid. Action-only columns are dropped; the
// terminal has separate commands for row actions.
func FromList(w io.Writer, lt listview.Table) *Table {
	keep := make([]int, 0, len(lt.Headers))
	headers := make([]string, 0, len(lt.Headers))
	for i, h := range lt.Headers {
		if h.Key == "actions" {
			continue
		}
		keep = append(keep, i)
		headers = append(headers, h.Label)
	}
	t := NewTable(w, headers)
	for _, row := range lt.PlainRows() {
		line := make([]string, 0, len(keep))
		for _, i := range keep {
			if i < len(row) {
				line = append(line, row[i])
			}
		}
		t.AddRow(line)
	}
	return t
}

// AddRow appends one row.
func (t *Table) AddRow(row []string) {
	t.rows = append(t.rows, row)
}

// Len is the number of rows added.
func (t *Table) Len() int { return len(t.rows) }

// Render writes the table.
func (t *Table) Render() error {
	t.table.Header(t.header)
	if err := t.table.Bulk(t.rows); err != nil {
		return err
	}
	return t.table.Render()
}
