package state

import (
	"context"
	"database/sql"

	"github.com/llehouerou/wavesplay/internal/db"
)

const currentSchemaVersion = 1

func initSchema(conn *sql.DB) error {
	return db.WithTx(context.Background(), conn, func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			CREATE TABLE IF NOT EXISTS schema_version (
				version INTEGER PRIMARY KEY
			);

			CREATE TABLE IF NOT EXISTS auth_session (
				id INTEGER PRIMARY KEY CHECK (id = 1),
				user_id TEXT NOT NULL,
				token TEXT NOT NULL,
				created_at INTEGER NOT NULL
			);

			CREATE TABLE IF NOT EXISTS lastfm_session (
				id INTEGER PRIMARY KEY CHECK (id = 1),
				username TEXT NOT NULL,
				session_key TEXT NOT NULL,
				linked_at INTEGER NOT NULL
			);

			CREATE TABLE IF NOT EXISTS lastfm_pending_scrobbles (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				artist TEXT NOT NULL,
				track TEXT NOT NULL,
				album TEXT,
				duration_seconds INTEGER NOT NULL,
				timestamp INTEGER NOT NULL,
				attempts INTEGER NOT NULL DEFAULT 0,
				last_error TEXT,
				created_at INTEGER NOT NULL
			);

			CREATE INDEX IF NOT EXISTS idx_pending_scrobbles_created ON lastfm_pending_scrobbles(created_at);
		`)
		if err != nil {
			return err
		}

		_, err = tx.Exec(`
			INSERT OR IGNORE INTO schema_version (version) VALUES (?)
		`, currentSchemaVersion)
		return err
	})
}
