package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func setupTestDB(t *testing.T) *Storage {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "data", "journal.db")
	store, err := NewStorage(dbPath)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return store
}

func TestMigrate_Idempotent(t *testing.T) {
	store := setupTestDB(t)

	if err := store.Migrate(); err != nil {
		t.Fatalf("second Migrate failed: %v", err)
	}
}

func TestRecordAction(t *testing.T) {
	store := setupTestDB(t)

	err := store.RecordAction(&Action{
		EventID:   "evt-1",
		ChatID:    "-100",
		MessageID: "55",
		UserID:    "7",
		Action:    ActionWelcomeSent,
	})
	if err != nil {
		t.Fatalf("RecordAction failed: %v", err)
	}

	actions, err := store.GetRecentActions("-100", 10)
	if err != nil {
		t.Fatalf("GetRecentActions failed: %v", err)
	}
	if len(actions) != 1 {
		t.Fatalf("Expected 1 action, got %d", len(actions))
	}

	a := actions[0]
	if a.EventID != "evt-1" || a.MessageID != "55" || a.UserID != "7" || a.Action != ActionWelcomeSent {
		t.Errorf("unexpected action: %+v", a)
	}
	if a.CreatedAt.IsZero() {
		t.Error("CreatedAt should default to now")
	}
}

func TestGetRecentActions_OrderAndLimit(t *testing.T) {
	store := setupTestDB(t)
	base := time.Now().Add(-time.Hour)

	for i, action := range []string{ActionJoinNoticeDeleted, ActionWelcomeRetired, ActionWelcomeSent} {
		if err := store.RecordAction(&Action{
			EventID:   "evt",
			ChatID:    "c1",
			Action:    action,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}); err != nil {
			t.Fatalf("RecordAction failed: %v", err)
		}
	}
	_ = store.RecordAction(&Action{EventID: "other", ChatID: "c2", Action: ActionClaimDenied})

	actions, err := store.GetRecentActions("c1", 2)
	if err != nil {
		t.Fatalf("GetRecentActions failed: %v", err)
	}
	if len(actions) != 2 {
		t.Fatalf("Expected 2 actions, got %d", len(actions))
	}
	if actions[0].Action != ActionWelcomeSent || actions[1].Action != ActionWelcomeRetired {
		t.Errorf("wrong order: %s, %s", actions[0].Action, actions[1].Action)
	}
}

func TestCountActions(t *testing.T) {
	store := setupTestDB(t)

	for i := 0; i < 3; i++ {
		_ = store.RecordAction(&Action{EventID: "e", ChatID: "c1", Action: ActionClaimDenied})
	}
	_ = store.RecordAction(&Action{EventID: "e", ChatID: "c1", Action: ActionWelcomeSent})

	count, err := store.CountActions("c1", ActionClaimDenied)
	if err != nil {
		t.Fatalf("CountActions failed: %v", err)
	}
	if count != 3 {
		t.Errorf("CountActions = %d, want 3", count)
	}

	count, _ = store.CountActions("c2", ActionClaimDenied)
	if count != 0 {
		t.Errorf("CountActions for unknown chat = %d, want 0", count)
	}
}

func TestRetentionWorker_Prune(t *testing.T) {
	store := setupTestDB(t)
	now := time.Now()

	_ = store.RecordAction(&Action{EventID: "old", ChatID: "c1", Action: ActionWelcomeSent, CreatedAt: now.Add(-48 * time.Hour)})
	_ = store.RecordAction(&Action{EventID: "new", ChatID: "c1", Action: ActionWelcomeSent, CreatedAt: now.Add(-time.Hour)})

	worker := NewRetentionWorker(store, 24*time.Hour, time.Hour)
	worker.now = func() time.Time { return now }

	n, err := worker.Prune()
	if err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Prune deleted %d rows, want 1", n)
	}

	actions, _ := store.GetRecentActions("c1", 10)
	if len(actions) != 1 || actions[0].EventID != "new" {
		t.Errorf("unexpected remaining actions: %+v", actions)
	}
}

func TestRetentionWorker_StopsOnCancel(t *testing.T) {
	store := setupTestDB(t)
	worker := NewRetentionWorker(store, time.Hour, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		worker.Start(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after cancel")
	}
}
