package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/outsourceapp/outsource-server/internal/domain"
	domainerrors "github.com/outsourceapp/outsource-server/internal/errors"
	"github.com/outsourceapp/outsource-server/internal/store"
)

func TestSendRequest(t *testing.T) {
	s := newServiceStore(t)
	svc := NewFriendService(s, testLogger())
	ctx := context.Background()

	alice := seedUser(t, s, "alice")
	bob := seedUser(t, s, "bob")

	req, err := svc.SendRequest(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestPending, req.Status)
	assert.Equal(t, alice.ID, req.FromUserID)
	assert.Equal(t, bob.ID, req.ToUserID)
}

func TestSendRequestToSelf(t *testing.T) {
	s := newServiceStore(t)
	svc := NewFriendService(s, testLogger())

	alice := seedUser(t, s, "alice")

	_, err := svc.SendRequest(context.Background(), alice.ID, alice.ID)
	assert.True(t, errors.Is(err, domainerrors.ErrValidation), "got %v", err)
}

func TestSendRequestRecipientMissing(t *testing.T) {
	s := newServiceStore(t)
	svc := NewFriendService(s, testLogger())

	alice := seedUser(t, s, "alice")

	_, err := svc.SendRequest(context.Background(), alice.ID, "user-ghost")
	assert.True(t, errors.Is(err, domainerrors.ErrNotFound), "got %v", err)
}

func TestSendRequestDuplicateBothDirections(t *testing.T) {
	s := newServiceStore(t)
	svc := NewFriendService(s, testLogger())
	ctx := context.Background()

	alice := seedUser(t, s, "alice")
	bob := seedUser(t, s, "bob")

	_, err := svc.SendRequest(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	// Same direction.
	_, err = svc.SendRequest(ctx, alice.ID, bob.ID)
	assert.True(t, errors.Is(err, domainerrors.ErrConflict), "got %v", err)

	// Reverse direction is also a duplicate while a request exists.
	_, err = svc.SendRequest(ctx, bob.ID, alice.ID)
	assert.True(t, errors.Is(err, domainerrors.ErrConflict), "got %v", err)
}

func TestSendRequestAlreadyFriends(t *testing.T) {
	s := newServiceStore(t)
	svc := NewFriendService(s, testLogger())
	ctx := context.Background()

	alice := seedUser(t, s, "alice")
	bob := seedUser(t, s, "bob")
	befriend(t, svc, alice, bob)

	// The resolved request is gone after unfriending would be different;
	// here the accepted request still exists, but "already friends" wins.
	_, err := svc.SendRequest(ctx, bob.ID, alice.ID)
	assert.True(t, errors.Is(err, domainerrors.ErrConflict), "got %v", err)
}

func TestRespondToRequestAccept(t *testing.T) {
	s := newServiceStore(t)
	svc := NewFriendService(s, testLogger())
	ctx := context.Background()

	alice := seedUser(t, s, "alice")
	bob := seedUser(t, s, "bob")

	req, err := svc.SendRequest(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	resolved, err := svc.RespondToRequest(ctx, req.ID, bob.ID, domain.DecisionAccept)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestAccepted, resolved.Status)

	// Friendship is visible from both sides.
	for _, u := range []*domain.User{alice, bob} {
		friends, err := svc.ListFriends(ctx, u.ID)
		require.NoError(t, err)
		require.Len(t, friends, 1)
	}
}

func TestRespondToRequestReject(t *testing.T) {
	s := newServiceStore(t)
	svc := NewFriendService(s, testLogger())
	ctx := context.Background()

	alice := seedUser(t, s, "alice")
	bob := seedUser(t, s, "bob")

	req, err := svc.SendRequest(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	resolved, err := svc.RespondToRequest(ctx, req.ID, bob.ID, domain.DecisionReject)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestRejected, resolved.Status)

	friends, err := svc.ListFriends(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, friends)
}

func TestRespondToRequestOnlyRecipient(t *testing.T) {
	s := newServiceStore(t)
	svc := NewFriendService(s, testLogger())
	ctx := context.Background()

	alice := seedUser(t, s, "alice")
	bob := seedUser(t, s, "bob")
	carol := seedUser(t, s, "carol")

	req, err := svc.SendRequest(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	// The sender can't accept their own request.
	_, err = svc.RespondToRequest(ctx, req.ID, alice.ID, domain.DecisionAccept)
	assert.True(t, errors.Is(err, domainerrors.ErrForbidden), "got %v", err)

	// Neither can a bystander.
	_, err = svc.RespondToRequest(ctx, req.ID, carol.ID, domain.DecisionAccept)
	assert.True(t, errors.Is(err, domainerrors.ErrForbidden), "got %v", err)
}

func TestRespondToRequestTwice(t *testing.T) {
	s := newServiceStore(t)
	svc := NewFriendService(s, testLogger())
	ctx := context.Background()

	alice := seedUser(t, s, "alice")
	bob := seedUser(t, s, "bob")

	req, err := svc.SendRequest(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	_, err = svc.RespondToRequest(ctx, req.ID, bob.ID, domain.DecisionAccept)
	require.NoError(t, err)

	_, err = svc.RespondToRequest(ctx, req.ID, bob.ID, domain.DecisionReject)
	assert.True(t, errors.Is(err, domainerrors.ErrAlreadyResolved), "got %v", err)

	// Exactly one friendship regardless.
	friends, err := svc.ListFriends(ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, friends, 1)
}

func TestRespondToRequestBadDecision(t *testing.T) {
	s := newServiceStore(t)
	svc := NewFriendService(s, testLogger())

	_, err := svc.RespondToRequest(context.Background(), "freq-x", "user-x", "maybe")
	assert.True(t, errors.Is(err, domainerrors.ErrValidation), "got %v", err)
}

func TestCancelRequest(t *testing.T) {
	s := newServiceStore(t)
	svc := NewFriendService(s, testLogger())
	ctx := context.Background()

	alice := seedUser(t, s, "alice")
	bob := seedUser(t, s, "bob")

	req, err := svc.SendRequest(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	// Only the sender can cancel.
	err = svc.CancelRequest(ctx, req.ID, bob.ID)
	assert.True(t, errors.Is(err, domainerrors.ErrForbidden), "got %v", err)

	require.NoError(t, svc.CancelRequest(ctx, req.ID, alice.ID))

	// After cancelling, a fresh request can be sent again.
	_, err = svc.SendRequest(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
}

func TestCancelResolvedRequest(t *testing.T) {
	s := newServiceStore(t)
	svc := NewFriendService(s, testLogger())
	ctx := context.Background()

	alice := seedUser(t, s, "alice")
	bob := seedUser(t, s, "bob")

	req, err := svc.SendRequest(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	_, err = svc.RespondToRequest(ctx, req.ID, bob.ID, domain.DecisionReject)
	require.NoError(t, err)

	err = svc.CancelRequest(ctx, req.ID, alice.ID)
	assert.True(t, errors.Is(err, domainerrors.ErrAlreadyResolved), "got %v", err)
}

func TestListRequests(t *testing.T) {
	s := newServiceStore(t)
	svc := NewFriendService(s, testLogger())
	ctx := context.Background()

	alice := seedUser(t, s, "alice")
	bob := seedUser(t, s, "bob")
	carol := seedUser(t, s, "carol")

	_, err := svc.SendRequest(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	_, err = svc.SendRequest(ctx, alice.ID, carol.ID)
	require.NoError(t, err)

	incoming, err := svc.ListRequests(ctx, alice.ID, store.DirectionIncoming, domain.RequestPending)
	require.NoError(t, err)
	require.Len(t, incoming, 1)
	assert.Equal(t, bob.ID, incoming[0].FromUserID)

	outgoing, err := svc.ListRequests(ctx, alice.ID, store.DirectionOutgoing, "")
	require.NoError(t, err)
	require.Len(t, outgoing, 1)
	assert.Equal(t, carol.ID, outgoing[0].ToUserID)

	_, err = svc.ListRequests(ctx, alice.ID, "sideways", "")
	assert.True(t, errors.Is(err, domainerrors.ErrValidation), "got %v", err)
}

func TestUnfriend(t *testing.T) {
	s := newServiceStore(t)
	svc := NewFriendService(s, testLogger())
	ctx := context.Background()

	alice := seedUser(t, s, "alice")
	bob := seedUser(t, s, "bob")
	befriend(t, svc, alice, bob)

	require.NoError(t, svc.Unfriend(ctx, bob.ID, alice.ID))

	friends, err := svc.ListFriends(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, friends)

	err = svc.Unfriend(ctx, alice.ID, bob.ID)
	assert.True(t, errors.Is(err, domainerrors.ErrNotFound), "got %v", err)
}
