package shared

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SessionOptions configures the session cookie and its Redis entry.
type SessionOptions struct {
	Cookie string
	// TTL is an idle timeout: every request that reaches Commit pushes the
	// expiry forward.
	TTL    time.Duration
	Secure bool
	// Prefix namespaces Redis keys; it defaults to "hcms:session:".
	Prefix string
}

// SessionManager stores cookie sessions in Redis. The cookie carries only
// an opaque ID.
type SessionManager struct {
	client redis.UniversalClient
	opts   SessionOptions
}

// Session is one browser's server-side state for the current request. Its
// accessors are safe for concurrent use within the request.
type Session struct {
	mu        sync.Mutex
	ID        string
	values    map[string]string
	toast     *Toast
	previous  string
	isNew     bool
	dirty     bool
	destroyed bool
}

type storedSession struct {
	Values map[string]string `json:"values"`
	Toast  *Toast            `json:"toast,omitempty"`
}

// NewSessionManager returns a manager over client.
func NewSessionManager(client redis.UniversalClient, opts SessionOptions) *SessionManager {
	if opts.Cookie == "" {
		opts.Cookie = "hcms_session"
	}
	if opts.TTL <= 0 {
		opts.TTL = 12 * time.Hour
	}
	if opts.Prefix == "" {
		opts.Prefix = "hcms:session:"
	}
	return &SessionManager{client: client, opts: opts}
}

// Load returns the request's session. A missing cookie or an entry that
// expired in Redis yields a fresh session with a new ID.
func (sm *SessionManager) Load(ctx context.Context, r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(sm.opts.Cookie)
	if errors.Is(err, http.ErrNoCookie) || (err == nil && cookie.Value == "") {
		return newSession(), nil
	}
	if err != nil {
		return nil, err
	}

	raw, err := sm.client.Get(ctx, sm.key(cookie.Value)).Bytes()
	if errors.Is(err, redis.Nil) {
		return newSession(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("session: load: %w", err)
	}

	var stored storedSession
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, fmt.Errorf("session: decode: %w", err)
	}
	if stored.Values == nil {
		stored.Values = make(map[string]string)
	}
	return &Session{ID: cookie.Value, values: stored.Values, toast: stored.Toast}, nil
}

// Commit writes the session back and refreshes the cookie. Unchanged
// sessions only have their expiry extended.
func (sm *SessionManager) Commit(ctx context.Context, w http.ResponseWriter, _ *http.Request, sess *Session) error {
	if sess == nil {
		return nil
	}
	if sess.destroyed {
		if err := sm.client.Del(ctx, sm.key(sess.ID)).Err(); err != nil {
			return fmt.Errorf("session: delete: %w", err)
		}
		http.SetCookie(w, sm.cookie("", -1))
		return nil
	}

	if sess.previous != "" {
		if err := sm.client.Del(ctx, sm.key(sess.previous)).Err(); err != nil {
			return fmt.Errorf("session: drop rotated id: %w", err)
		}
		sess.previous = ""
	}

	if sess.dirty || sess.isNew {
		sess.mu.Lock()
		raw, err := json.Marshal(storedSession{Values: sess.values, Toast: sess.toast})
		sess.mu.Unlock()
		if err != nil {
			return fmt.Errorf("session: encode: %w", err)
		}
		if err := sm.client.Set(ctx, sm.key(sess.ID), raw, sm.opts.TTL).Err(); err != nil {
			return fmt.Errorf("session: save: %w", err)
		}
		sess.dirty, sess.isNew = false, false
	} else if err := sm.client.Expire(ctx, sm.key(sess.ID), sm.opts.TTL).Err(); err != nil {
		return fmt.Errorf("session: touch: %w", err)
	}

	http.SetCookie(w, sm.cookie(sess.ID, int(sm.opts.TTL/time.Second)))
	return nil
}

// Destroy marks sess for deletion on the next Commit.
func (sm *SessionManager) Destroy(sess *Session) {
	if sess != nil {
		sess.destroyed = true
	}
}

// TTL is the idle timeout of a session.
func (sm *SessionManager) TTL() time.Duration { return sm.opts.TTL }

// CookieName is the name of the session cookie.
func (sm *SessionManager) CookieName() string { return sm.opts.Cookie }

func (sm *SessionManager) key(id string) string {
	return sm.opts.Prefix + id
}

func (sm *SessionManager) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     sm.opts.Cookie,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   sm.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func newSession() *Session {
	return &Session{ID: uuid.NewString(), values: make(map[string]string), isNew: true, dirty: true}
}

// Set stores a value.
func (s *Session) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	s.dirty = true
}

// Get returns a value, or "" when unset.
func (s *Session) Get(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values[key]
}

// Delete removes a value.
func (s *Session) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.values[key]; ok {
		delete(s.values, key)
		s.dirty = true
	}
}

// Destroyed reports whether the session is marked for deletion.
func (s *Session) Destroyed() bool {
	return s.destroyed
}

// Rotate gives the session a fresh ID after sign-in so a planted cookie
// cannot be reused. The old Redis entry goes away on Commit.
func (s *Session) Rotate() {
	if s.previous == "" && !s.isNew {
		s.previous = s.ID
	}
	s.ID = uuid.NewString()
	s.isNew = true
	s.dirty = true
}

type sessionKey struct{}

// ContextWithSession attaches the request's cookie session to ctx.
func ContextWithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, sess)
}

// SessionFromContext returns the cookie session placed by the session
// middleware, or nil outside a request.
func SessionFromContext(ctx context.Context) *Session {
	if sess, ok := ctx.Value(sessionKey{}).(*Session); ok {
		return sess
	}
	return nil
}
