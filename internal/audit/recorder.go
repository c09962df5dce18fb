// Package audit keeps a trail of console sign-ins and sign-outs in Postgres.
package audit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Event names a session transition.
type Event string

// Recorded events.
const (
	EventLogin   Event = "login"
	EventLogout  Event = "logout"
	EventExpired Event = "expired"
)

// Entry is one row of the trail.
type Entry struct {
	ID        string
	Email     string
	Role      string
	Event     Event
	IP        string
	UserAgent string
	CreatedAt time.Time
}

// Recorder stores and reads session events.
type Recorder interface {
	Record(ctx context.Context, e Entry) error
	Recent(ctx context.Context, email string, limit int) ([]Entry, error)
}

// DB is the subset of pgxpool.Pool the recorder uses.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PGRecorder writes to console_sessions.
type PGRecorder struct {
	db  DB
	now func() time.Time
}

// NewPGRecorder constructs a Postgres-backed recorder.
func NewPGRecorder(db DB) *PGRecorder {
	return &PGRecorder{db: db, now: time.Now}
}

const insertEntry = `INSERT INTO console_sessions (id, email, role, event, ip, user_agent, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`

const selectRecent = `SELECT id, email, role, event, ip, user_agent, created_at FROM console_sessions WHERE email = $1 ORDER BY created_at DESC LIMIT $2`

// Record inserts e, assigning an id and timestamp when missing.
func (r *PGRecorder) Record(ctx context.Context, e Entry) error {
	if r == nil || r.db == nil {
		return errors.New("audit: database not configured")
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = r.now().UTC()
	}
	if _, err := r.db.Exec(ctx, insertEntry, e.ID, e.Email, e.Role, string(e.Event), e.IP, e.UserAgent, e.CreatedAt); err != nil {
		return fmt.Errorf("audit: insert %s: %w", e.Event, err)
	}
	return nil
}

// Recent returns the newest entries for email.
func (r *PGRecorder) Recent(ctx context.Context, email string, limit int) ([]Entry, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("audit: database not configured")
	}
	if limit <= 0 {
		limit = 5
	}
	rows, err := r.db.Query(ctx, selectRecent, email, limit)
	if err != nil {
		return nil, fmt.Errorf("audit: recent: %w", err)
	}
	defer rows.Close()

	out := make([]Entry, 0, limit)
	for rows.Next() {
		var (
			e     Entry
			event string
		)
		if err := rows.Scan(&e.ID, &e.Email, &e.Role, &event, &e.IP, &e.UserAgent, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("audit: scan: %w", err)
		}
		e.Event = Event(event)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("audit: rows: %w", err)
	}
	return out, nil
}

// Nop discards everything. Used when no database is configured.
type Nop struct{}

// Record does nothing.
func (Nop) Record(context.Context, Entry) error { return nil }

// Recent returns no entries.
func (Nop) Recent(context.Context, string, int) ([]Entry, error) { return nil, nil }

var (
	_ Recorder = (*PGRecorder)(nil)
	_ Recorder = Nop{}
)
