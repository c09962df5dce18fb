package output

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hcms-console/hcms-console/internal/listview"
	"github.com/hcms-console/hcms-console/internal/shared"
)

func TestToastWithoutColors(t *testing.T) {
	var out, errOut bytes.Buffer
	p := NewPrinter(&out, &errOut, false)

	p.Toast(&shared.Toast{Kind: shared.ToastSuccess, Text: "Saved"})
	p.Toast(&shared.Toast{Kind: shared.ToastError, Text: "Boom"})
	p.Toast(&shared.Toast{Kind: shared.ToastInfo, Text: "FYI"})
	p.Toast(nil)

	assert.Equal(t, "[OK] Saved\n[INFO] FYI\n", out.String())
	assert.Equal(t, "[ERROR] Boom\n", errOut.String())
}

func TestHeaderAndField(t *testing.T) {
	var out bytes.Buffer
	p := NewPrinter(&out, nil, false)
	p.Header("Payroll #5")
	p.Field("Status", p.Status("PAID"))
	assert.Equal(t, "Payroll #5\n----------\nStatus: PAID\n", out.String())
}

func TestUseColorsRespectsNoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	assert.False(t, UseColors(true))

	require.NoError(t, os.Unsetenv("NO_COLOR"))
	t.Setenv("TERM", "dumb")
	assert.False(t, UseColors(true))
}

func TestFromListDropsActions(t *testing.T) {
	type row struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	}
	cols := []listview.Column[row]{
		{Key: "id", Label: "ID"},
		{Key: "name", Label: "Name"},
		{Key: "actions", Label: "Actions", Render: func(r row) listview.Cell {
			return listview.Cell{Actions: []listview.Action{{Label: "View", Href: "/x"}}}
		}},
	}
	lt := listview.BuildTable(cols, []row{{ID: 1, Name: "Engineering"}}, listview.Query{}, "/departments")

	var out bytes.Buffer
	table := FromList(&out, lt)
	assert.Equal(t, 1, table.Len())
	require.NoError(t, table.Render())
	assert.Contains(t, out.String(), "Engineering")
	assert.NotContains(t, out.String(), "View")
	assert.NotContains(t, out.String(), "ACTIONS")
}
