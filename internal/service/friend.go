package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/outsourceapp/outsource-server/internal/domain"
	domainerrors "github.com/outsourceapp/outsource-server/internal/errors"
	"github.com/outsourceapp/outsource-server/internal/id"
	"github.com/outsourceapp/outsource-server/internal/store"
)

// FriendService manages friend requests and friendships.
type FriendService struct {
	store  store.Store
	logger *slog.Logger
}

// NewFriendService creates a new friend service.
func NewFriendService(s store.Store, logger *slog.Logger) *FriendService {
	return &FriendService{
		store:  s,
		logger: logger,
	}
}

// SendRequest creates a pending friend request from one user to another.
// Duplicate detection covers both directions: if the recipient already has a
// request out to the sender, a new one is rejected rather than silently
// creating a crossed pair.
func (s *FriendService) SendRequest(ctx context.Context, fromID, toID string) (*domain.FriendRequest, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if fromID == toID {
		return nil, domainerrors.Validation("cannot send a friend request to yourself")
	}

	if _, err := s.store.GetUser(ctx, toID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("recipient not found")
		}
		return nil, fmt.Errorf("get recipient: %w", err)
	}

	alreadyFriends, err := s.store.FriendshipExists(ctx, fromID, toID)
	if err != nil {
		return nil, fmt.Errorf("check friendship: %w", err)
	}
	if alreadyFriends {
		return nil, domainerrors.Conflict("already friends")
	}

	for _, pair := range [][2]string{{fromID, toID}, {toID, fromID}} {
		if _, err := s.store.GetFriendRequestBetween(ctx, pair[0], pair[1]); err == nil {
			return nil, domainerrors.Conflict("friend request already exists")
		} else if !errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("check existing request: %w", err)
		}
	}

	requestID, err := id.Generate(id.PrefixRequest)
	if err != nil {
		return nil, fmt.Errorf("generate request ID: %w", err)
	}

	req := &domain.FriendRequest{
		Timestamps: domain.Timestamps{
			ID: requestID,
		},
		FromUserID: fromID,
		ToUserID:   toID,
		Status:     domain.RequestPending,
	}
	req.InitTimestamps()

	if err := s.store.CreateFriendRequest(ctx, req); err != nil {
		// A concurrent send for the same pair lost the uniqueness race.
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.Conflict("friend request already exists")
		}
		return nil, fmt.Errorf("create friend request: %w", err)
	}

	s.logger.Info("friend request sent",
		"request_id", requestID,
		"from", fromID,
		"to", toID,
	)

	return req, nil
}

// RespondToRequest accepts or rejects a pending friend request.
// Only the recipient may respond. Accepting creates the friendship in the
// same storage transaction as the status change, so crashing between the two
// can't leave an accepted request without a friendship.
func (s *FriendService) RespondToRequest(ctx context.Context, requestID, responderID string, decision domain.RequestDecision) (*domain.FriendRequest, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if !decision.Valid() {
		return nil, domainerrors.Validation("decision must be accept or reject")
	}

	req, err := s.store.GetFriendRequest(ctx, requestID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("friend request not found")
		}
		return nil, fmt.Errorf("get friend request: %w", err)
	}

	if req.ToUserID != responderID {
		return nil, domainerrors.Forbidden("only the recipient can respond to a friend request")
	}

	if req.Status != domain.RequestPending {
		return nil, domainerrors.AlreadyResolved("friend request already resolved")
	}

	switch decision {
	case domain.DecisionAccept:
		friendshipID, err := id.Generate(id.PrefixFriendship)
		if err != nil {
			return nil, fmt.Errorf("generate friendship ID: %w", err)
		}

		a, b := domain.CanonicalPair(req.FromUserID, req.ToUserID)
		friendship := &domain.Friendship{
			Timestamps: domain.Timestamps{
				ID: friendshipID,
			},
			UserAID: a,
			UserBID: b,
		}
		friendship.InitTimestamps()

		if err := s.store.AcceptFriendRequest(ctx, requestID, friendship); err != nil {
			switch {
			case errors.Is(err, store.ErrConflict):
				return nil, domainerrors.AlreadyResolved("friend request already resolved")
			case errors.Is(err, store.ErrAlreadyExists):
				return nil, domainerrors.Conflict("already friends")
			}
			return nil, fmt.Errorf("accept friend request: %w", err)
		}
		req.Status = domain.RequestAccepted

	case domain.DecisionReject:
		if err := s.store.RejectFriendRequest(ctx, requestID); err != nil {
			if errors.Is(err, store.ErrConflict) {
				return nil, domainerrors.AlreadyResolved("friend request already resolved")
			}
			return nil, fmt.Errorf("reject friend request: %w", err)
		}
		req.Status = domain.RequestRejected
	}

	req.Touch()

	s.logger.Info("friend request resolved",
		"request_id", requestID,
		"decision", string(decision),
	)

	return req, nil
}

// CancelRequest deletes a pending request. Only the sender may cancel.
func (s *FriendService) CancelRequest(ctx context.Context, requestID, requesterID string) error {
	req, err := s.store.GetFriendRequest(ctx, requestID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("friend request not found")
		}
		return fmt.Errorf("get friend request: %w", err)
	}

	if req.FromUserID != requesterID {
		return domainerrors.Forbidden("only the sender can cancel a friend request")
	}
	if req.Status != domain.RequestPending {
		return domainerrors.AlreadyResolved("friend request already resolved")
	}

	if err := s.store.DeleteFriendRequest(ctx, requestID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("friend request not found")
		}
		return fmt.Errorf("delete friend request: %w", err)
	}

	s.logger.Info("friend request cancelled", "request_id", requestID)

	return nil
}

// ListRequests returns the user's friend requests for a direction, optionally
// filtered by status.
func (s *FriendService) ListRequests(ctx context.Context, userID string, direction store.RequestDirection, status domain.RequestStatus) ([]*domain.FriendRequest, error) {
	if !direction.Valid() {
		return nil, domainerrors.Validation("direction must be incoming or outgoing")
	}
	if status != "" && !status.Valid() {
		return nil, domainerrors.Validation("invalid request status")
	}

	requests, err := s.store.ListFriendRequests(ctx, userID, direction, status)
	if err != nil {
		return nil, fmt.Errorf("list friend requests: %w", err)
	}
	return requests, nil
}

// ListFriends returns the public profiles of the user's friends.
func (s *FriendService) ListFriends(ctx context.Context, userID string) ([]domain.PublicUser, error) {
	friendships, err := s.store.ListFriendships(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list friendships: %w", err)
	}

	friendIDs := make([]string, 0, len(friendships))
	for _, f := range friendships {
		friendIDs = append(friendIDs, f.Other(userID))
	}

	users, err := s.store.GetUsersByIDs(ctx, friendIDs)
	if err != nil {
		return nil, fmt.Errorf("get friends: %w", err)
	}

	results := make([]domain.PublicUser, 0, len(users))
	for _, u := range users {
		results = append(results, u.Public())
	}
	return results, nil
}

// Unfriend removes an existing friendship between two users.
func (s *FriendService) Unfriend(ctx context.Context, userID, otherID string) error {
	if userID == otherID {
		return domainerrors.Validation("cannot unfriend yourself")
	}

	if err := s.store.DeleteFriendship(ctx, userID, otherID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("friendship not found")
		}
		return fmt.Errorf("delete friendship: %w", err)
	}

	s.logger.Info("friendship removed",
		"user_id", userID,
		"other_id", otherID,
	)

	return nil
}
