// internal/state/interface.go
package state

import (
	"database/sql"
	"time"
)

// Interface defines the state manager contract for dependency injection and testing.
type Interface interface {
	DB() *sql.DB

	GetAuthSession() (*AuthSession, error)
	SaveAuthSession(userID, token string) error
	DeleteAuthSession() error
	IsPreviewMode() (bool, error)
	Token() (string, error)

	GetLastfmSession() (*LastfmSession, error)
	SaveLastfmSession(username, sessionKey string) error
	DeleteLastfmSession() error
	AddPendingScrobble(s PendingScrobble) error
	GetPendingScrobbles() ([]PendingScrobble, error)
	DeletePendingScrobble(id int64) error
	UpdatePendingScrobbleAttempt(id int64, errMsg string) error
	DeleteOldPendingScrobbles(maxAge time.Duration) error

	Close() error
}

// Verify Manager implements Interface at compile time.
var _ Interface = (*Manager)(nil)
