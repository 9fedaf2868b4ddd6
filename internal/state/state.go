// Package state persists the account session and the Last.fm scrobble
// queue in a local sqlite database.
package state

import (
	"database/sql"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	_ "modernc.org/sqlite" // SQLite driver
)

const (
	appName    = "wavesplay"
	dbFileName = "wavesplay.db"

	// busyPragma makes a second wavesplay process wait for the lock
	// instead of failing with SQLITE_BUSY.
	busyPragma = "_pragma=busy_timeout(5000)"
)

// Manager is the sqlite-backed Interface.
type Manager struct {
	db *sql.DB
}

// Open opens the database under the XDG data directory.
func Open() (*Manager, error) {
	path, err := xdg.DataFile(filepath.Join(appName, dbFileName))
	if err != nil {
		return nil, err
	}
	return OpenPath(path)
}

// OpenPath opens the database at path, creating the file, its directory
// and the schema as needed. ":memory:" opens a private in-memory database.
func OpenPath(path string) (*Manager, error) {
	dsn := ":memory:"
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
		dsn = "file:" + path + "?" + busyPragma
	}

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// One connection so :memory: is shared and writers serialize.
	conn.SetMaxOpenConns(1)

	if err := initSchema(conn); err != nil {
		conn.Close()
		return nil, err
	}
	return &Manager{db: conn}, nil
}

func (m *Manager) Close() error {
	return m.db.Close()
}

func (m *Manager) DB() *sql.DB {
	return m.db
}
