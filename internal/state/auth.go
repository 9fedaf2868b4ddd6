package state

import (
	"database/sql"
	"errors"
	"time"
)

// AuthSession is the stored login of the listener.
type AuthSession struct {
	UserID    string
	Token     string
	CreatedAt time.Time
}

// GetAuthSession returns the stored session, or nil if logged out.
func (m *Manager) GetAuthSession() (*AuthSession, error) {
	var userID, token string
	var createdAt int64

	err := m.db.QueryRow(`
		SELECT user_id, token, created_at FROM auth_session WHERE id = 1
	`).Scan(&userID, &token, &createdAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil //nolint:nilnil // nil session means logged out, not an error
	}
	if err != nil {
		return nil, err
	}

	return &AuthSession{
		UserID:    userID,
		Token:     token,
		CreatedAt: time.Unix(createdAt, 0),
	}, nil
}

// SaveAuthSession stores the session after a successful login, replacing
// any previous one.
func (m *Manager) SaveAuthSession(userID, token string) error {
	now := time.Now().Unix()
	_, err := m.db.Exec(`
		INSERT INTO auth_session (id, user_id, token, created_at)
		VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			user_id = excluded.user_id,
			token = excluded.token,
			created_at = excluded.created_at
	`, userID, token, now)
	return err
}

// DeleteAuthSession removes the stored session (logout).
func (m *Manager) DeleteAuthSession() error {
	_, err := m.db.Exec(`DELETE FROM auth_session WHERE id = 1`)
	return err
}

// IsPreviewMode reports whether the listener is logged out.
func (m *Manager) IsPreviewMode() (bool, error) {
	s, err := m.GetAuthSession()
	if err != nil {
		return true, err
	}
	return s == nil, nil
}

// Token returns the bearer token of the stored session, or "" if logged
// out.
func (m *Manager) Token() (string, error) {
	s, err := m.GetAuthSession()
	if err != nil || s == nil {
		return "", err
	}
	return s.Token, nil
}
