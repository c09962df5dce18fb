// Package toast holds the terminal client's single transient notification.
package toast

import (
	"sync"
	"time"

	"github.com/hcms-console/hcms-console/internal/shared"
)

// Board keeps at most one toast. A newer toast replaces the older one.
type Board struct {
	mu    sync.Mutex
	now   func() time.Time
	toast *shared.Toast
}

// NewBoard constructs an empty board. A nil clock uses time.Now.
func NewBoard(now func() time.Time) *Board {
	if now == nil {
		now = time.Now
	}
	return &Board{now: now}
}

// Success sets a success toast.
func (b *Board) Success(text string) { b.set(shared.ToastSuccess, text) }

// Error sets an error toast.
func (b *Board) Error(text string) { b.set(shared.ToastError, text) }

// Info sets an informational toast.
func (b *Board) Info(text string) { b.set(shared.ToastInfo, text) }

func (b *Board) set(kind, text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.toast = &shared.Toast{Kind: kind, Text: text, At: b.now()}
}

// Current returns the visible toast, or nil once the window has passed.
func (b *Board) Current() *shared.Toast {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.toast.Visible(b.now()) {
		b.toast = nil
		return nil
	}
	t := *b.toast
	return &t
}

// Take returns the visible toast and empties the board.
func (b *Board) Take() *shared.Toast {
	b.mu.Lock()
	defer b.mu.Unlock()
	t := b.toast
	b.toast = nil
	if !t.Visible(b.now()) {
		return nil
	}
	return t
}
