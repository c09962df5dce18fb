package toast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hcms-console/hcms-console/internal/shared"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func TestBoardReplacesAndExpires(t *testing.T) {
	c := &clock{t: time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)}
	b := NewBoard(c.now)
	assert.Nil(t, b.Current())

	b.Success("Saved")
	c.t = c.t.Add(time.Second)
	b.Error("Failed to save")

	cur := b.Current()
	require.NotNil(t, cur)
	assert.Equal(t, shared.ToastError, cur.Kind)

	c.t = c.t.Add(shared.ToastWindow)
	assert.Nil(t, b.Current())
}

func TestBoardTakeEmpties(t *testing.T) {
	b := NewBoard(nil)
	b.Info("Checked in")
	got := b.Take()
	require.NotNil(t, got)
	assert.Equal(t, "Checked in", got.Text)
	assert.Nil(t, b.Take())
}
