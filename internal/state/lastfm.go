package state

import (
	"database/sql"
	"errors"
	"time"

	"github.com/llehouerou/wavesplay/internal/db"
)

// LastfmSession is the linked Last.fm account.
type LastfmSession struct {
	Username   string
	SessionKey string
	LinkedAt   time.Time
}

// PendingScrobble is a qualifying play Last.fm has not accepted yet.
type PendingScrobble struct {
	ID           int64
	Artist       string
	Track        string
	Album        string
	DurationSecs int
	Timestamp    time.Time // listen start
	Attempts     int
	LastError    string
	CreatedAt    time.Time
}

const (
	selectLastfmSession = `SELECT username, session_key, linked_at FROM lastfm_session WHERE id = 1`

	upsertLastfmSession = `
		INSERT INTO lastfm_session (id, username, session_key, linked_at) VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			username = excluded.username,
			session_key = excluded.session_key,
			linked_at = excluded.linked_at`

	insertPending = `
		INSERT INTO lastfm_pending_scrobbles
			(artist, track, album, duration_seconds, timestamp, attempts, last_error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	selectPending = `
		SELECT id, artist, track, album, duration_seconds, timestamp, attempts, last_error, created_at
		FROM lastfm_pending_scrobbles
		ORDER BY created_at, id`
)

// GetLastfmSession returns the linked account, or nil when none is linked.
func (m *Manager) GetLastfmSession() (*LastfmSession, error) {
	var (
		s        LastfmSession
		linkedAt int64
	)
	err := m.db.QueryRow(selectLastfmSession).Scan(&s.Username, &s.SessionKey, &linkedAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil //nolint:nilnil // not linked
	case err != nil:
		return nil, err
	}
	s.LinkedAt = time.Unix(linkedAt, 0)
	return &s, nil
}

// SaveLastfmSession links an account, replacing any previous one.
func (m *Manager) SaveLastfmSession(username, sessionKey string) error {
	_, err := m.db.Exec(upsertLastfmSession, username, sessionKey, time.Now().Unix())
	return err
}

// DeleteLastfmSession unlinks the account. Queued scrobbles are kept.
func (m *Manager) DeleteLastfmSession() error {
	_, err := m.db.Exec(`DELETE FROM lastfm_session WHERE id = 1`)
	return err
}

// AddPendingScrobble queues s, keeping the error that caused it to be queued.
func (m *Manager) AddPendingScrobble(s PendingScrobble) error {
	_, err := m.db.Exec(insertPending,
		s.Artist, s.Track, db.NullString(s.Album), s.DurationSecs,
		s.Timestamp.Unix(), s.Attempts, db.NullString(s.LastError), time.Now().Unix(),
	)
	return err
}

// GetPendingScrobbles returns the queue, oldest first.
func (m *Manager) GetPendingScrobbles() ([]PendingScrobble, error) {
	rows, err := m.db.Query(selectPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PendingScrobble
	for rows.Next() {
		s, err := scanPending(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func scanPending(rows *sql.Rows) (PendingScrobble, error) {
	var (
		s                  PendingScrobble
		album, lastError   sql.NullString
		timestamp, created int64
	)
	if err := rows.Scan(
		&s.ID, &s.Artist, &s.Track, &album, &s.DurationSecs,
		&timestamp, &s.Attempts, &lastError, &created,
	); err != nil {
		return s, err
	}
	s.Album = db.NullStringValue(album)
	s.LastError = db.NullStringValue(lastError)
	s.Timestamp = time.Unix(timestamp, 0)
	s.CreatedAt = time.Unix(created, 0)
	return s, nil
}

// DeletePendingScrobble drops an entry once Last.fm accepted it.
func (m *Manager) DeletePendingScrobble(id int64) error {
	_, err := m.db.Exec(`DELETE FROM lastfm_pending_scrobbles WHERE id = ?`, id)
	return err
}

// UpdatePendingScrobbleAttempt records another failed submission.
func (m *Manager) UpdatePendingScrobbleAttempt(id int64, errMsg string) error {
	_, err := m.db.Exec(
		`UPDATE lastfm_pending_scrobbles SET attempts = attempts + 1, last_error = ? WHERE id = ?`,
		errMsg, id,
	)
	return err
}

// DeleteOldPendingScrobbles expires entries queued more than maxAge ago.
// Last.fm rejects listens older than two weeks.
func (m *Manager) DeleteOldPendingScrobbles(maxAge time.Duration) error {
	cutoff := time.Now().Add(-maxAge).Unix()
	_, err := m.db.Exec(`DELETE FROM lastfm_pending_scrobbles WHERE created_at < ?`, cutoff)
	return err
}
