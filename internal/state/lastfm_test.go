package state

import (
	"testing"
	"time"
)

func TestLastfmSession(t *testing.T) {
	m := setupTestManager(t)
	defer m.Close()

	sess, err := m.GetLastfmSession()
	if err != nil {
		t.Fatalf("GetLastfmSession failed: %v", err)
	}
	if sess != nil {
		t.Fatalf("expected no session, got %+v", sess)
	}

	if err := m.SaveLastfmSession("alice", "key-1"); err != nil {
		t.Fatalf("SaveLastfmSession failed: %v", err)
	}
	if err := m.SaveLastfmSession("alice", "key-2"); err != nil {
		t.Fatalf("SaveLastfmSession failed: %v", err)
	}

	sess, err = m.GetLastfmSession()
	if err != nil {
		t.Fatalf("GetLastfmSession failed: %v", err)
	}
	if sess == nil || sess.SessionKey != "key-2" || sess.Username != "alice" {
		t.Errorf("session = %+v, want alice/key-2", sess)
	}

	if err := m.DeleteLastfmSession(); err != nil {
		t.Fatalf("DeleteLastfmSession failed: %v", err)
	}
	sess, _ = m.GetLastfmSession()
	if sess != nil {
		t.Errorf("expected session to be deleted, got %+v", sess)
	}
}

func TestPendingScrobbles(t *testing.T) {
	m := setupTestManager(t)
	defer m.Close()

	started := time.Unix(1_700_000_000, 0)
	for _, title := range []string{"One", "Two"} {
		err := m.AddPendingScrobble(PendingScrobble{
			Artist: "Artist", Track: title, DurationSecs: 200, Timestamp: started,
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
		t.Fatalf("got %d pending, want 2", len(pending))
	}
	if pending[0].Track != "One" || !pending[0].Timestamp.Equal(started) {
		t.Errorf("first pending = %+v", pending[0])
	}

	if err := m.UpdatePendingScrobbleAttempt(pending[0].ID, "timeout"); err != nil {
		t.Fatalf("UpdatePendingScrobbleAttempt failed: %v", err)
	}
	if err := m.DeletePendingScrobble(pending[1].ID); err != nil {
		t.Fatalf("DeletePendingScrobble failed: %v", err)
	}

	pending, _ = m.GetPendingScrobbles()
	if len(pending) != 1 {
		t.Fatalf("got %d pending, want 1", len(pending))
	}
	if pending[0].Attempts != 1 || pending[0].LastError != "timeout" {
		t.Errorf("attempt not recorded: %+v", pending[0])
	}
}

func TestDeleteOldPendingScrobbles(t *testing.T) {
	m := setupTestManager(t)
	defer m.Close()

	if err := m.AddPendingScrobble(PendingScrobble{Artist: "A", Track: "T", Timestamp: time.Now()}); err != nil {
		t.Fatalf("AddPendingScrobble failed: %v", err)
	}
	old := time.Now().Add(-30 * 24 * time.Hour).Unix()
	if _, err := m.db.Exec(`UPDATE lastfm_pending_scrobbles SET created_at = ?`, old); err != nil {
		t.Fatalf("backdate failed: %v", err)
	}

	if err := m.DeleteOldPendingScrobbles(14 * 24 * time.Hour); err != nil {
		t.Fatalf("DeleteOldPendingScrobbles failed: %v", err)
	}
	pending, _ := m.GetPendingScrobbles()
	if len(pending) != 0 {
		t.Errorf("expected old scrobbles removed, got %d", len(pending))
	}
}
