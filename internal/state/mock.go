// internal/state/mock.go
package state

import (
	"database/sql"
	"sync"
	"time"
)

// Mock is a test double for Manager.
type Mock struct {
	mu      sync.Mutex
	auth    *AuthSession
	authErr error
	lastfm  *LastfmSession
	pending []PendingScrobble
	nextID  int64
	closed  bool
}

// NewMock creates a new mock state manager for testing.
func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) DB() *sql.DB { return nil }

func (m *Mock) GetAuthSession() (*AuthSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.authErr != nil {
		return nil, m.authErr
	}
	return m.auth, nil
}

func (m *Mock) SaveAuthSession(userID, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.auth = &AuthSession{UserID: userID, Token: token, CreatedAt: time.Now()}
	return nil
}

func (m *Mock) DeleteAuthSession() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.auth = nil
	return nil
}

func (m *Mock) IsPreviewMode() (bool, error) {
	s, err := m.GetAuthSession()
	if err != nil {
		return true, err
	}
	return s == nil, nil
}

func (m *Mock) Token() (string, error) {
	s, err := m.GetAuthSession()
	if err != nil || s == nil {
		return "", err
	}
	return s.Token, nil
}

func (m *Mock) GetLastfmSession() (*LastfmSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastfm, nil
}

func (m *Mock) SaveLastfmSession(username, sessionKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastfm = &LastfmSession{Username: username, SessionKey: sessionKey, LinkedAt: time.Now()}
	return nil
}

func (m *Mock) DeleteLastfmSession() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastfm = nil
	return nil
}

func (m *Mock) AddPendingScrobble(s PendingScrobble) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	s.ID = m.nextID
	s.CreatedAt = time.Now()
	m.pending = append(m.pending, s)
	return nil
}

func (m *Mock) GetPendingScrobbles() ([]PendingScrobble, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]PendingScrobble(nil), m.pending...), nil
}

func (m *Mock) DeletePendingScrobble(id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, p := range m.pending {
		if p.ID == id {
			m.pending = append(m.pending[:i], m.pending[i+1:]...)
			break
		}
	}
	return nil
}

func (m *Mock) UpdatePendingScrobbleAttempt(id int64, errMsg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.pending {
		if m.pending[i].ID == id {
			m.pending[i].Attempts++
			m.pending[i].LastError = errMsg
		}
	}
	return nil
}

func (m *Mock) DeleteOldPendingScrobbles(maxAge time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cutoff := time.Now().Add(-maxAge)
	kept := m.pending[:0]
	for _, p := range m.pending {
		if !p.CreatedAt.Before(cutoff) {
			kept = append(kept, p)
		}
	}
	m.pending = kept
	return nil
}

func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Test helpers

func (m *Mock) SetAuthError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.authErr = err
}

func (m *Mock) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Verify Mock implements Interface at compile time.
var _ Interface = (*Mock)(nil)
