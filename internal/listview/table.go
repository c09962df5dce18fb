package listview

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Action is a per-row control such as View, Edit or Delete. Method "POST"
// actions render as forms.
type Action struct {
	Label   string
	Href    string
	Method  string
	Confirm string
	Style   string
}

// Cell is one rendered table cell.
type Cell struct {
	Text    string
	Actions []Action
}

// Column describes one table column. Render is optional; without it the cell
// shows the row's JSON field named Key.
type Column[T any] struct {
	Key      string
	Label    string
	Sortable bool
	Render   func(row T) Cell
}

// Header is a rendered column header.
type Header struct {
	Key      string
	Label    string
	Sortable bool
	Marker   string
	Href     string
}

// Table is a fully rendered grid.
type Table struct {
	Headers []Header
	Rows    [][]Cell
}

// Empty reports whether the table has no rows.
func (t Table) Empty() bool { return len(t.Rows) == 0 }

// BuildTable renders rows through cols. Sortable headers link to the toggled
// sort state of q under path.
func BuildTable[T any](cols []Column[T], rows []T, q Query, path string) Table {
	t := Table{Headers: make([]Header, 0, len(cols)), Rows: make([][]Cell, 0, len(rows))}
	for _, c := range cols {
		h := Header{Key: c.Key, Label: c.Label, Sortable: c.Sortable}
		if c.Sortable {
			h.Marker = q.Sort.Marker(c.Key)
			h.Href = q.SortLink(path, c.Key)
		}
		t.Headers = append(t.Headers, h)
	}
	for _, row := range rows {
		cells := make([]Cell, 0, len(cols))
		for _, c := range cols {
			if c.Render != nil {
				cells = append(cells, c.Render(row))
				continue
			}
			cells = append(cells, Cell{Text: Field(row, c.Key)})
		}
		t.Rows = append(t.Rows, cells)
	}
	return t
}

// Field returns the JSON field key of row formatted as text.
func Field(row any, key string) string {
	data, err := json.Marshal(row)
	if err != nil {
		return ""
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return ""
	}
	return Text(fields[key])
}

// Text formats a decoded JSON value for display.
func Text(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", val), "0"), ".")
	case bool:
		if val {
			return "Yes"
		}
		return "No"
	default:
		data, _ := json.Marshal(val)
		return string(data)
	}
}

// PlainRows flattens the table to text, joining action labels, for terminal
// rendering.
func (t Table) PlainRows() [][]string {
	out := make([][]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		line := make([]string, 0, len(row))
		for _, c := range row {
			if len(c.Actions) > 0 && c.Text == "" {
				labels := make([]string, 0, len(c.Actions))
				for _, a := range c.Actions {
					labels = append(labels, a.Label)
				}
				line = append(line, strings.Join(labels, " | "))
				continue
			}
			line = append(line, c.Text)
		}
		out = append(out, line)
	}
	return out
}

// HeaderLabels returns the header labels in order.
func (t Table) HeaderLabels() []string {
	out := make([]string, 0, len(t.Headers))
	for _, h := range t.Headers {
		out = append(out, h.Label)
	}
	return out
}
