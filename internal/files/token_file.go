package files

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const tokenFileName = "token"

// TokenFile persists the bearer token in a single file readable only by the
// current user. It implements session.TokenStore for the terminal client.
type TokenFile struct {
	path string
	mu   sync.Mutex
}

// NewTokenFile stores the token at dir/token.
func NewTokenFile(dir string) *TokenFile {
	return &TokenFile{path: filepath.Join(dir, tokenFileName)}
}

// DefaultDir returns ~/.freshxpress.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".freshxpress"), nil
}

// Path returns the token file location.
func (t *TokenFile) Path() string { return t.path }

// Token returns the stored token, or "" when none was saved.
func (t *TokenFile) Token() (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	b, err := os.ReadFile(t.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read token: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}

// SetToken writes the token, creating the directory if needed.
func (t *TokenFile) SetToken(token string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(t.path), 0700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}
	if err := os.WriteFile(t.path, []byte(token+"\n"), 0600); err != nil {
		return fmt.Errorf("write token: %w", err)
	}
	return nil
}

// Clear removes the token file. Removing a missing file is not an error.
func (t *TokenFile) Clear() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := os.Remove(t.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove token: %w", err)
	}
	return nil
}
