package sqlite

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/outsourceapp/outsource-server/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	s, err := Open(dbPath, logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// makeTestUser creates a domain.User with sensible defaults for testing.
func makeTestUser(id, username string) *domain.User {
	now := time.Now()
	return &domain.User{
		Timestamps: domain.Timestamps{
			ID:        id,
			CreatedAt: now,
			UpdatedAt: now,
		},
		Username:     username,
		PasswordHash: "$argon2id$v=19$m=65536,t=3,p=4$fakesaltfortest$fakehashfortest",
		DisplayName:  "Test User",
		Preferences:  []string{"hiking"},
	}
}

// mustCreateUser inserts a user or fails the test.
func mustCreateUser(t *testing.T, s *Store, id, username string) *domain.User {
	t.Helper()
	user := makeTestUser(id, username)
	if err := s.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser(%s): %v", id, err)
	}
	return user
}

func TestOpen(t *testing.T) {
	s := newTestStore(t)

	// Verify WAL mode is set.
	var journalMode string
	err := s.db.QueryRow("PRAGMA journal_mode").Scan(&journalMode)
	if err != nil {
		t.Fatalf("query journal_mode: %v", err)
	}
	if journalMode != "wal" {
		t.Errorf("expected wal, got %s", journalMode)
	}

	// Verify foreign keys are enabled.
	var fk int
	err = s.db.QueryRow("PRAGMA foreign_keys").Scan(&fk)
	if err != nil {
		t.Fatalf("query foreign_keys: %v", err)
	}
	if fk != 1 {
		t.Errorf("expected foreign_keys=1, got %d", fk)
	}

	// Verify tables exist.
	tables := []string{
		"users", "friend_requests", "friendships",
		"circles", "circle_memberships", "events", "event_ownerships",
	}
	for _, table := range tables {
		var name string
		err := s.db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %s missing: %v", table, err)
		}
	}
}
