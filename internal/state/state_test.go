package state

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func setupTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := OpenPath(":memory:")
	if err != nil {
		t.Fatalf("OpenPath failed: %v", err)
	}
	t.Cleanup(func() { m.Close() })
	return m
}

func TestOpenPath_CreatesDirectoryAndIsReopenable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "wavesplay.db")

	m, err := OpenPath(path)
	if err != nil {
		t.Fatalf("OpenPath failed: %v", err)
	}
	if err := m.SaveAuthSession("u1", "tok"); err != nil {
		t.Fatalf("SaveAuthSession failed: %v", err)
	}
	m.Close()

	m, err = OpenPath(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer m.Close()

	s, err := m.GetAuthSession()
	if err != nil {
		t.Fatalf("GetAuthSession failed: %v", err)
	}
	if s == nil || s.UserID != "u1" {
		t.Errorf("session after reopen = %+v, want user u1", s)
	}
}

func TestAuthSession_LoggedOut(t *testing.T) {
	m := setupTestManager(t)

	s, err := m.GetAuthSession()
	if err != nil {
		t.Fatalf("GetAuthSession failed: %v", err)
	}
	if s != nil {
		t.Errorf("expected nil session, got %+v", s)
	}

	preview, err := m.IsPreviewMode()
	if err != nil || !preview {
		t.Errorf("IsPreviewMode() = %v, %v; want true, nil", preview, err)
	}

	tok, err := m.Token()
	if err != nil || tok != "" {
		t.Errorf("Token() = %q, %v; want empty", tok, err)
	}
}

func TestAuthSession_LoginReplaceLogout(t *testing.T) {
	m := setupTestManager(t)
	before := time.Now().Add(-time.Second)

	if err := m.SaveAuthSession("u1", "tok1"); err != nil {
		t.Fatalf("SaveAuthSession failed: %v", err)
	}
	if err := m.SaveAuthSession("u2", "tok2"); err != nil {
		t.Fatalf("SaveAuthSession (replace) failed: %v", err)
	}

	s, err := m.GetAuthSession()
	if err != nil {
		t.Fatalf("GetAuthSession failed: %v", err)
	}
	if s.UserID != "u2" || s.Token != "tok2" {
		t.Errorf("session = %+v, want u2/tok2", s)
	}
	if s.CreatedAt.Before(before) {
		t.Errorf("CreatedAt = %v, want after %v", s.CreatedAt, before)
	}

	preview, _ := m.IsPreviewMode()
	if preview {
		t.Error("IsPreviewMode() = true while logged in")
	}
	if tok, _ := m.Token(); tok != "tok2" {
		t.Errorf("Token() = %q, want tok2", tok)
	}

	if err := m.DeleteAuthSession(); err != nil {
		t.Fatalf("DeleteAuthSession failed: %v", err)
	}
	if preview, _ := m.IsPreviewMode(); !preview {
		t.Error("IsPreviewMode() = false after logout")
	}
}

func TestAuthSession_ClosedDBFailsClosed(t *testing.T) {
	m, err := OpenPath(":memory:")
	if err != nil {
		t.Fatalf("OpenPath failed: %v", err)
	}
	m.Close()

	preview, err := m.IsPreviewMode()
	if err == nil {
		t.Fatal("expected error from closed db")
	}
	if !preview {
		t.Error("IsPreviewMode() = false on error, want true")
	}
}

func TestLastfmSession(t *testing.T) {
	m := setupTestManager(t)

	s, err := m.GetLastfmSession()
	if err != nil || s != nil {
		t.Fatalf("GetLastfmSession() = %+v, %v; want nil, nil", s, err)
	}

	if err := m.SaveLastfmSession("listener", "sk"); err != nil {
		t.Fatalf("SaveLastfmSession failed: %v", err)
	}
	s, err = m.GetLastfmSession()
	if err != nil {
		t.Fatalf("GetLastfmSession failed: %v", err)
	}
	if s.Username != "listener" || s.SessionKey != "sk" {
		t.Errorf("session = %+v", s)
	}

	if err := m.DeleteLastfmSession(); err != nil {
		t.Fatalf("DeleteLastfmSession failed: %v", err)
	}
	if s, _ := m.GetLastfmSession(); s != nil {
		t.Errorf("session after delete = %+v", s)
	}
}

func TestPendingScrobbles(t *testing.T) {
	m := setupTestManager(t)
	ts := time.Unix(1_750_000_000, 0)

	for _, title := range []string{"One", "Two"} {
		err := m.AddPendingScrobble(PendingScrobble{
			Artist:       "Artist",
			Track:        title,
			DurationSecs: 200,
			Timestamp:    ts,
		})
		if err != nil {
			t.Fatalf("AddPendingScrobble failed: %v", err)
		}
	}

	pending, err := m.GetPendingScrobbles()
	if err != nil {
		t.Fatalf("GetPendingScrobbles failed: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("len = %d, want 2", len(pending))
	}
	first := pending[0]
	if first.Track != "One" || first.Album != "" || !first.Timestamp.Equal(ts) {
		t.Errorf("first = %+v", first)
	}

	if err := m.UpdatePendingScrobbleAttempt(first.ID, "timeout"); err != nil {
		t.Fatalf("UpdatePendingScrobbleAttempt failed: %v", err)
	}
	if err := m.DeletePendingScrobble(pending[1].ID); err != nil {
		t.Fatalf("DeletePendingScrobble failed: %v", err)
	}

	pending, _ = m.GetPendingScrobbles()
	if len(pending) != 1 {
		t.Fatalf("len = %d, want 1", len(pending))
	}
	if pending[0].Attempts != 1 || pending[0].LastError != "timeout" {
		t.Errorf("after attempt = %+v", pending[0])
	}

	if err := m.DeleteOldPendingScrobbles(time.Hour); err != nil {
		t.Fatalf("DeleteOldPendingScrobbles failed: %v", err)
	}
	if pending, _ := m.GetPendingScrobbles(); len(pending) != 1 {
		t.Errorf("recent scrobble removed")
	}
	if err := m.DeleteOldPendingScrobbles(-time.Hour); err != nil {
		t.Fatalf("DeleteOldPendingScrobbles failed: %v", err)
	}
	if pending, _ := m.GetPendingScrobbles(); len(pending) != 0 {
		t.Errorf("old scrobbles kept: %+v", pending)
	}
}

func TestPendingScrobbles_KeepsQueueError(t *testing.T) {
	m := setupTestManager(t)

	err := m.AddPendingScrobble(PendingScrobble{
		Artist:    "Artist",
		Track:     "Song",
		Album:     "LP",
		Timestamp: time.Unix(1_750_000_000, 0),
		LastError: "connection refused",
	})
	if err != nil {
		t.Fatalf("AddPendingScrobble failed: %v", err)
	}

	pending, err := m.GetPendingScrobbles()
	if err != nil || len(pending) != 1 {
		t.Fatalf("GetPendingScrobbles() = %+v, %v", pending, err)
	}
	if pending[0].LastError != "connection refused" || pending[0].Attempts != 0 || pending[0].Album != "LP" {
		t.Errorf("pending = %+v", pending[0])
	}
}

func TestMock_AuthError(t *testing.T) {
	m := NewMock()
	m.SetAuthError(errTest)

	preview, err := m.IsPreviewMode()
	if err == nil || !preview {
		t.Errorf("IsPreviewMode() = %v, %v; want true, error", preview, err)
	}
}

var errTest = errors.New("locked")
