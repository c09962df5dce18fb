package shared

import "time"

// ToastWindow is how long a toast stays visible after it was set.
const ToastWindow = 3 * time.Second

// Toast kinds.
const (
	ToastSuccess = "success"
	ToastError   = "error"
	ToastInfo    = "info"
)

// Toast is the single transient notification of a session. Setting a new
// toast replaces the previous one.
type Toast struct {
	Kind string    `json:"kind"`
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// Visible reports whether the toast is still inside its display window.
func (t *Toast) Visible(now time.Time) bool {
	if t == nil || t.Text == "" {
		return false
	}
	return now.Sub(t.At) < ToastWindow
}

// SetToast replaces the session toast.
func (s *Session) SetToast(kind, text string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.toast = &Toast{Kind: kind, Text: text, At: at}
	s.dirty = true
}

// PopToast consumes the toast and returns it if it is still visible at now.
// A toast past its window is dropped unseen.
func (s *Session) PopToast(now time.Time) *Toast {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.toast
	if t == nil {
		return nil
	}
	s.toast = nil
	s.dirty = true
	if !t.Visible(now) {
		return nil
	}
	return t
}

// PeekToast returns the pending toast without consuming it.
func (s *Session) PeekToast() *Toast {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.toast
}
