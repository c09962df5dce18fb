// Package session holds the current bearer credential and the identity decoded
// from it. A Store is an explicit container: the gateway and the route guards
// receive it by reference, and tests build their own.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hcms-console/hcms-console/internal/identity"
)

// Clear reasons reported to OnClear hooks.
const (
	ReasonLogout       = "logout"
	ReasonUnauthorized = "unauthorized"
)

// Snapshot is a consistent view of the store.
type Snapshot struct {
	Credential string
	Identity   *identity.Identity
}

// Authenticated reports whether a credential is present.
func (s Snapshot) Authenticated() bool {
	return s.Credential != ""
}

// Store is the session state cell. Credential and identity always change
// together under one lock.
type Store struct {
	mu         sync.RWMutex
	credential string
	identity   *identity.Identity
	loading    bool
	lastErr    string

	persister Persister
	logger    *slog.Logger
	now       func() time.Time
	onClear   []func(ctx context.Context, prev Snapshot, reason string)
	clears    int
}

// Option customises a Store.
type Option func(*Store)

// WithLogger sets the store logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the time source used for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// OnClear registers a hook invoked after a non-empty session is cleared.
func OnClear(fn func(ctx context.Context, prev Snapshot, reason string)) Option {
	return func(s *Store) {
		if fn != nil {
			s.onClear = append(s.onClear, fn)
		}
	}
}

// NewStore builds an empty store over p. Call Restore to load persisted state.
func NewStore(p Persister, opts ...Option) *Store {
	if p == nil {
		p = &MemoryPersister{}
	}
	s := &Store{persister: p, logger: slog.Default(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Restore rehydrates the store from its persister. An undecodable or expired
// credential leaves the store logged out without reporting an error; only
// storage failures are returned.
func (s *Store) Restore(ctx context.Context) error {
	token, err := s.persister.Load(ctx)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.reset()
			return nil
		}
		return err
	}
	id, err := identity.DecodeAt(token, s.now())
	if err != nil {
		s.logger.Debug("discarding persisted credential", slog.Any("error", err))
		s.reset()
		if delErr := s.persister.Delete(ctx); delErr != nil {
			s.logger.Warn("delete stale credential", slog.Any("error", delErr))
		}
		return nil
	}
	s.mu.Lock()
	s.credential = token
	s.identity = id
	s.mu.Unlock()
	return nil
}

// SetCredential decodes token and, when valid, installs and persists it.
// A malformed token leaves the previous session untouched.
func (s *Store) SetCredential(ctx context.Context, token string) error {
	id, err := identity.Decode(token)
	if err != nil {
		return err
	}

	s.mu.Lock()
	prevCred, prevID := s.credential, s.identity
	s.credential = token
	s.identity = id
	s.lastErr = ""
	s.mu.Unlock()

	if err := s.persister.Save(ctx, token); err != nil {
		s.mu.Lock()
		if s.credential == token {
			s.credential = prevCred
			s.identity = prevID
		}
		s.mu.Unlock()
		return fmt.Errorf("session: persist credential: %w", err)
	}
	return nil
}

// Clear drops the credential, its identity and the persisted entry. Clearing
// an empty store is a no-op.
func (s *Store) Clear(ctx context.Context, reason string) error {
	s.mu.Lock()
	prev := Snapshot{Credential: s.credential, Identity: s.identity}
	s.credential = ""
	s.identity = nil
	if prev.Authenticated() {
		s.clears++
	}
	hooks := s.onClear
	s.mu.Unlock()

	if !prev.Authenticated() {
		return nil
	}
	err := s.persister.Delete(ctx)
	for _, fn := range hooks {
		fn(ctx, prev, reason)
	}
	if err != nil {
		return fmt.Errorf("session: delete credential: %w", err)
	}
	return nil
}

// Credential returns the current bearer token or "".
func (s *Store) Credential() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.credential
}

// Identity returns the decoded identity or nil.
func (s *Store) Identity() *identity.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity
}

// Snapshot returns credential and identity read under one lock.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{Credential: s.credential, Identity: s.identity}
}

// Clears returns how many times a non-empty session was cleared.
func (s *Store) Clears() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.clears
}

// SetLoading toggles the transient loading flag.
func (s *Store) SetLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

// Loading reports the transient loading flag.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// SetLastError records the last user-facing error message.
func (s *Store) SetLastError(msg string) {
	s.mu.Lock()
	s.lastErr = msg
	s.mu.Unlock()
}

// LastError returns the last user-facing error message.
func (s *Store) LastError() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

func (s *Store) reset() {
	s.mu.Lock()
	s.credential = ""
	s.identity = nil
	s.mu.Unlock()
}
