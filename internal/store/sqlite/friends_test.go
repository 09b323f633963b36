package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/outsourceapp/outsource-server/internal/domain"
	"github.com/outsourceapp/outsource-server/internal/store"
)

// makeRequest builds a pending friend request between two users.
func makeRequest(id, from, to string) *domain.FriendRequest {
	now := time.Now()
	return &domain.FriendRequest{
		Timestamps: domain.Timestamps{
			ID:        id,
			CreatedAt: now,
			UpdatedAt: now,
		},
		FromUserID: from,
		ToUserID:   to,
		Status:     domain.RequestPending,
	}
}

// makeFriendship builds a canonical friendship row for two users.
func makeFriendship(id, first, second string) *domain.Friendship {
	a, b := domain.CanonicalPair(first, second)
	now := time.Now()
	return &domain.Friendship{
		Timestamps: domain.Timestamps{
			ID:        id,
			CreatedAt: now,
			UpdatedAt: now,
		},
		UserAID: a,
		UserBID: b,
	}
}

func TestCreateFriendRequestDuplicate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustCreateUser(t, s, "user-1", "alice")
	mustCreateUser(t, s, "user-2", "bob")

	if err := s.CreateFriendRequest(ctx, makeRequest("freq-1", "user-1", "user-2")); err != nil {
		t.Fatalf("CreateFriendRequest: %v", err)
	}

	err := s.CreateFriendRequest(ctx, makeRequest("freq-2", "user-1", "user-2"))
	if !errors.Is(err, store.ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists for duplicate ordered pair, got %v", err)
	}

	// The canonical-pair index also rejects the reverse direction, closing
	// the race where both sides send at the same moment.
	err = s.CreateFriendRequest(ctx, makeRequest("freq-3", "user-2", "user-1"))
	if !errors.Is(err, store.ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists for reversed pair, got %v", err)
	}
}

func TestGetFriendRequestBetween(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustCreateUser(t, s, "user-1", "alice")
	mustCreateUser(t, s, "user-2", "bob")

	if err := s.CreateFriendRequest(ctx, makeRequest("freq-1", "user-1", "user-2")); err != nil {
		t.Fatalf("CreateFriendRequest: %v", err)
	}

	req, err := s.GetFriendRequestBetween(ctx, "user-1", "user-2")
	if err != nil {
		t.Fatalf("GetFriendRequestBetween: %v", err)
	}
	if req.ID != "freq-1" {
		t.Errorf("ID: got %q, want freq-1", req.ID)
	}

	if _, err := s.GetFriendRequestBetween(ctx, "user-2", "user-1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("reverse pair should not be found, got %v", err)
	}
}

func TestAcceptFriendRequest(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustCreateUser(t, s, "user-1", "alice")
	mustCreateUser(t, s, "user-2", "bob")

	if err := s.CreateFriendRequest(ctx, makeRequest("freq-1", "user-2", "user-1")); err != nil {
		t.Fatalf("CreateFriendRequest: %v", err)
	}

	friendship := makeFriendship("frnd-1", "user-2", "user-1")
	if err := s.AcceptFriendRequest(ctx, "freq-1", friendship); err != nil {
		t.Fatalf("AcceptFriendRequest: %v", err)
	}

	// Request is now accepted.
	req, err := s.GetFriendRequest(ctx, "freq-1")
	if err != nil {
		t.Fatalf("GetFriendRequest: %v", err)
	}
	if req.Status != domain.RequestAccepted {
		t.Errorf("Status: got %q, want accepted", req.Status)
	}

	// Friendship exists in both directions.
	for _, pair := range [][2]string{{"user-1", "user-2"}, {"user-2", "user-1"}} {
		exists, err := s.FriendshipExists(ctx, pair[0], pair[1])
		if err != nil {
			t.Fatalf("FriendshipExists: %v", err)
		}
		if !exists {
			t.Errorf("FriendshipExists(%s, %s) = false", pair[0], pair[1])
		}
	}

	// Accepting again loses the conditional update.
	err = s.AcceptFriendRequest(ctx, "freq-1", makeFriendship("frnd-2", "user-1", "user-2"))
	if !errors.Is(err, store.ErrConflict) {
		t.Errorf("expected ErrConflict on second accept, got %v", err)
	}

	// Exactly one friendship row exists.
	friendships, err := s.ListFriendships(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListFriendships: %v", err)
	}
	if len(friendships) != 1 {
		t.Errorf("expected exactly 1 friendship, got %d", len(friendships))
	}
}

func TestAcceptFriendRequestNotFound(t *testing.T) {
	s := newTestStore(t)

	err := s.AcceptFriendRequest(context.Background(), "freq-missing",
		makeFriendship("frnd-1", "user-1", "user-2"))
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestAcceptFriendRequestRollsBackOnFriendshipConflict(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustCreateUser(t, s, "user-1", "alice")
	mustCreateUser(t, s, "user-2", "bob")

	if err := s.CreateFriendRequest(ctx, makeRequest("freq-1", "user-1", "user-2")); err != nil {
		t.Fatalf("CreateFriendRequest: %v", err)
	}
	if err := s.AcceptFriendRequest(ctx, "freq-1", makeFriendship("frnd-1", "user-1", "user-2")); err != nil {
		t.Fatalf("AcceptFriendRequest: %v", err)
	}

	// Clear the accepted row, then raise a fresh request for the same pair
	// while the friendship still stands.
	if err := s.DeleteFriendRequest(ctx, "freq-1"); err != nil {
		t.Fatalf("DeleteFriendRequest: %v", err)
	}
	if err := s.CreateFriendRequest(ctx, makeRequest("freq-2", "user-2", "user-1")); err != nil {
		t.Fatalf("CreateFriendRequest: %v", err)
	}

	// Accepting it cannot create a second friendship row; the transaction
	// must roll back and leave freq-2 pending.
	err := s.AcceptFriendRequest(ctx, "freq-2", makeFriendship("frnd-2", "user-2", "user-1"))
	if !errors.Is(err, store.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}

	req, err := s.GetFriendRequest(ctx, "freq-2")
	if err != nil {
		t.Fatalf("GetFriendRequest: %v", err)
	}
	if req.Status != domain.RequestPending {
		t.Errorf("request must stay pending after rollback, got %q", req.Status)
	}

	friendships, err := s.ListFriendships(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListFriendships: %v", err)
	}
	if len(friendships) != 1 {
		t.Errorf("expected exactly 1 friendship, got %d", len(friendships))
	}
}

func TestRejectFriendRequest(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustCreateUser(t, s, "user-1", "alice")
	mustCreateUser(t, s, "user-2", "bob")

	if err := s.CreateFriendRequest(ctx, makeRequest("freq-1", "user-1", "user-2")); err != nil {
		t.Fatalf("CreateFriendRequest: %v", err)
	}

	if err := s.RejectFriendRequest(ctx, "freq-1"); err != nil {
		t.Fatalf("RejectFriendRequest: %v", err)
	}

	req, err := s.GetFriendRequest(ctx, "freq-1")
	if err != nil {
		t.Fatalf("GetFriendRequest: %v", err)
	}
	if req.Status != domain.RequestRejected {
		t.Errorf("Status: got %q, want rejected", req.Status)
	}

	// No friendship was created.
	exists, err := s.FriendshipExists(ctx, "user-1", "user-2")
	if err != nil {
		t.Fatalf("FriendshipExists: %v", err)
	}
	if exists {
		t.Error("no friendship should exist after reject")
	}

	// Rejecting twice loses the conditional update.
	if err := s.RejectFriendRequest(ctx, "freq-1"); !errors.Is(err, store.ErrConflict) {
		t.Errorf("expected ErrConflict on second reject, got %v", err)
	}

	if err := s.RejectFriendRequest(ctx, "freq-missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListFriendRequests(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustCreateUser(t, s, "user-1", "alice")
	mustCreateUser(t, s, "user-2", "bob")
	mustCreateUser(t, s, "user-3", "carol")

	if err := s.CreateFriendRequest(ctx, makeRequest("freq-1", "user-2", "user-1")); err != nil {
		t.Fatalf("CreateFriendRequest: %v", err)
	}
	if err := s.CreateFriendRequest(ctx, makeRequest("freq-2", "user-3", "user-1")); err != nil {
		t.Fatalf("CreateFriendRequest: %v", err)
	}
	if err := s.CreateFriendRequest(ctx, makeRequest("freq-3", "user-1", "user-3")); err != nil {
		t.Fatalf("CreateFriendRequest: %v", err)
	}
	if err := s.RejectFriendRequest(ctx, "freq-2"); err != nil {
		t.Fatalf("RejectFriendRequest: %v", err)
	}

	incoming, err := s.ListFriendRequests(ctx, "user-1", store.DirectionIncoming, "")
	if err != nil {
		t.Fatalf("ListFriendRequests incoming: %v", err)
	}
	if len(incoming) != 2 {
		t.Errorf("incoming: got %d, want 2", len(incoming))
	}

	pending, err := s.ListFriendRequests(ctx, "user-1", store.DirectionIncoming, domain.RequestPending)
	if err != nil {
		t.Fatalf("ListFriendRequests pending: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != "freq-1" {
		t.Errorf("pending: got %v", pending)
	}

	outgoing, err := s.ListFriendRequests(ctx, "user-1", store.DirectionOutgoing, "")
	if err != nil {
		t.Fatalf("ListFriendRequests outgoing: %v", err)
	}
	if len(outgoing) != 1 || outgoing[0].ID != "freq-3" {
		t.Errorf("outgoing: got %v", outgoing)
	}
}

func TestDeleteFriendRequest(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustCreateUser(t, s, "user-1", "alice")
	mustCreateUser(t, s, "user-2", "bob")

	if err := s.CreateFriendRequest(ctx, makeRequest("freq-1", "user-1", "user-2")); err != nil {
		t.Fatalf("CreateFriendRequest: %v", err)
	}

	if err := s.DeleteFriendRequest(ctx, "freq-1"); err != nil {
		t.Fatalf("DeleteFriendRequest: %v", err)
	}

	if _, err := s.GetFriendRequest(ctx, "freq-1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}

	if err := s.DeleteFriendRequest(ctx, "freq-1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound on double delete, got %v", err)
	}
}

func TestDeleteFriendship(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustCreateUser(t, s, "user-1", "alice")
	mustCreateUser(t, s, "user-2", "bob")

	if err := s.CreateFriendRequest(ctx, makeRequest("freq-1", "user-1", "user-2")); err != nil {
		t.Fatalf("CreateFriendRequest: %v", err)
	}
	if err := s.AcceptFriendRequest(ctx, "freq-1", makeFriendship("frnd-1", "user-1", "user-2")); err != nil {
		t.Fatalf("AcceptFriendRequest: %v", err)
	}

	// Deletion works regardless of argument order.
	if err := s.DeleteFriendship(ctx, "user-2", "user-1"); err != nil {
		t.Fatalf("DeleteFriendship: %v", err)
	}

	exists, err := s.FriendshipExists(ctx, "user-1", "user-2")
	if err != nil {
		t.Fatalf("FriendshipExists: %v", err)
	}
	if exists {
		t.Error("friendship should be gone")
	}

	if err := s.DeleteFriendship(ctx, "user-1", "user-2"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
