package session

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// CredentialKey is the fixed name under which the credential is persisted.
const CredentialKey = "token"

// ErrNotFound is returned by persisters when no credential is stored.
var ErrNotFound = errors.New("session: credential not persisted")

// Persister is durable storage for a single credential string.
type Persister interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Delete(ctx context.Context) error
}

// FilePersister keeps the credential in a file readable only by its owner.
type FilePersister struct {
	Path string
}

// DefaultTokenPath returns the token file under the user's config directory.
func DefaultTokenPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("session: config dir: %w", err)
	}
	return filepath.Join(dir, "hcmsctl", CredentialKey), nil
}

// Load reads the token file.
func (p FilePersister) Load(ctx context.Context) (string, error) {
	data, err := os.ReadFile(p.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("session: read %s: %w", p.Path, err)
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", ErrNotFound
	}
	return token, nil
}

// Save writes the token file atomically.
func (p FilePersister) Save(ctx context.Context, token string) error {
	if err := os.MkdirAll(filepath.Dir(p.Path), 0o700); err != nil {
		return fmt.Errorf("session: mkdir: %w", err)
	}
	tmp := p.Path + ".tmp"
	if err := os.WriteFile(tmp, []byte(token), 0o600); err != nil {
		return fmt.Errorf("session: write: %w", err)
	}
	if err := os.Rename(tmp, p.Path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("session: rename: %w", err)
	}
	return nil
}

// Delete removes the token file. A missing file is not an error.
func (p FilePersister) Delete(ctx context.Context) error {
	if err := os.Remove(p.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("session: remove: %w", err)
	}
	return nil
}

// Bag is a string key-value container such as a browser cookie session.
type Bag interface {
	Get(key string) string
	Set(key, value string)
	Delete(key string)
}

// ValuePersister stores the credential inside a Bag under CredentialKey.
type ValuePersister struct {
	Bag Bag
}

// Load returns the credential held in the bag.
func (p ValuePersister) Load(ctx context.Context) (string, error) {
	if p.Bag == nil {
		return "", ErrNotFound
	}
	if token := p.Bag.Get(CredentialKey); token != "" {
		return token, nil
	}
	return "", ErrNotFound
}

// Save puts the credential in the bag.
func (p ValuePersister) Save(ctx context.Context, token string) error {
	if p.Bag == nil {
		return errors.New("session: no bag to persist into")
	}
	p.Bag.Set(CredentialKey, token)
	return nil
}

// Delete drops the credential from the bag.
func (p ValuePersister) Delete(ctx context.Context) error {
	if p.Bag != nil {
		p.Bag.Delete(CredentialKey)
	}
	return nil
}

// MemoryPersister is an in-process Persister.
type MemoryPersister struct {
	mu    sync.Mutex
	token string
}

// Load returns the stored token.
func (p *MemoryPersister) Load(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.token == "" {
		return "", ErrNotFound
	}
	return p.token, nil
}

// Save stores the token.
func (p *MemoryPersister) Save(ctx context.Context, token string) error {
	p.mu.Lock()
	p.token = token
	p.mu.Unlock()
	return nil
}

// Delete forgets the token.
func (p *MemoryPersister) Delete(ctx context.Context) error {
	p.mu.Lock()
	p.token = ""
	p.mu.Unlock()
	return nil
}
