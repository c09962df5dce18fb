package shared

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strings"
)

const (
	// CSRFSessionKey is the session value holding the issued token.
	CSRFSessionKey = "csrf_token"
	// CSRFFormField is the hidden form field every POST form carries.
	CSRFFormField = "csrf_token"
	// CSRFHeader carries the token on script-initiated requests.
	CSRFHeader = "X-CSRF-Token"
)

// CSRFManager issues per-session form tokens. A token is a random nonce
// sealed with an HMAC over the session ID, so a token copied into another
// session fails verification even if the nonce leaks.
type CSRFManager struct {
	secret []byte
}

// NewCSRFManager returns a CSRFManager keyed by secret.
func NewCSRFManager(secret string) *CSRFManager {
	return &CSRFManager{secret: []byte(secret)}
}

// EnsureToken returns the session's token, issuing one on first use.
func (m *CSRFManager) EnsureToken(_ context.Context, sess *Session) (string, error) {
	if sess == nil {
		return "", errors.New("csrf: session missing")
	}
	if token := sess.Get(CSRFSessionKey); token != "" && m.sealed(sess.ID, token) {
		return token, nil
	}
	nonce := make([]byte, 18)
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	encoded := base64.RawURLEncoding.EncodeToString(nonce)
	token := encoded + "." + m.mac(sess.ID, encoded)
	sess.Set(CSRFSessionKey, token)
	return token, nil
}

// VerifyToken checks a submitted token against the session.
func (m *CSRFManager) VerifyToken(_ context.Context, sess *Session, token string) error {
	if sess == nil || token == "" {
		return ErrCSRFTokenMissing
	}
	expected := sess.Get(CSRFSessionKey)
	if expected == "" {
		return ErrCSRFTokenMissing
	}
	if !hmac.Equal([]byte(expected), []byte(token)) || !m.sealed(sess.ID, token) {
		return ErrCSRFTokenMismatch
	}
	return nil
}

// Reissue binds an existing token to the session's current ID. Call it after
// the session ID rotates so open forms keep working.
func (m *CSRFManager) Reissue(sess *Session) {
	if m == nil || sess == nil {
		return
	}
	token := sess.Get(CSRFSessionKey)
	nonce, _, ok := strings.Cut(token, ".")
	if !ok {
		return
	}
	sess.Set(CSRFSessionKey, nonce+"."+m.mac(sess.ID, nonce))
}

func (m *CSRFManager) sealed(sessionID, token string) bool {
	nonce, sig, ok := strings.Cut(token, ".")
	if !ok {
		return false
	}
	return hmac.Equal([]byte(sig), []byte(m.mac(sessionID, nonce)))
}

func (m *CSRFManager) mac(sessionID, nonce string) string {
	h := hmac.New(sha256.New, m.secret)
	_, _ = h.Write([]byte(sessionID))
	_, _ = h.Write([]byte{'|'})
	_, _ = h.Write([]byte(nonce))
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}
