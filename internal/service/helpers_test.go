package service

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/outsourceapp/outsource-server/internal/domain"
	"github.com/outsourceapp/outsource-server/internal/id"
	"github.com/outsourceapp/outsource-server/internal/store"
	"github.com/outsourceapp/outsource-server/internal/store/sqlite"
)

// newServiceStore opens a temporary SQLite store for a service test.
func newServiceStore(t *testing.T) store.Store {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := sqlite.Open(dbPath, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = s.Close()
	})

	return s
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// seedUser creates a user directly in the store.
func seedUser(t *testing.T, s store.Store, username string, preferences ...string) *domain.User {
	t.Helper()

	userID, err := id.Generate(id.PrefixUser)
	require.NoError(t, err)

	user := &domain.User{
		Timestamps: domain.Timestamps{
			ID: userID,
		},
		Username:     username,
		PasswordHash: "$argon2id$unused",
		DisplayName:  username,
		Preferences:  preferences,
	}
	user.InitTimestamps()

	require.NoError(t, s.CreateUser(context.Background(), user))
	return user
}

// befriend runs the full request/accept flow between two users.
func befriend(t *testing.T, svc *FriendService, a, b *domain.User) {
	t.Helper()

	ctx := context.Background()
	req, err := svc.SendRequest(ctx, a.ID, b.ID)
	require.NoError(t, err)
	_, err = svc.RespondToRequest(ctx, req.ID, b.ID, domain.DecisionAccept)
	require.NoError(t, err)
}
