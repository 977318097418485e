package session

import "sync"

// MemoryTokens keeps the token in process memory.
type MemoryTokens struct {
	mu    sync.Mutex
	token string
}

// NewMemoryTokens returns a store pre-loaded with token (may be empty).
func NewMemoryTokens(token string) *MemoryTokens {
	return &MemoryTokens{token: token}
}

func (m *MemoryTokens) Token() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, nil
}

func (m *MemoryTokens) SetToken(token string) error {
	m.mu.Lock()
	m.token = token
	m.mu.Unlock()
	return nil
}

func (m *MemoryTokens) Clear() error {
	return m.SetToken("")
}
