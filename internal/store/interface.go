// Package store defines the persistence interface for the Outsource server.
package store

import (
	"context"

	"github.com/outsourceapp/outsource-server/internal/domain"
)

// RequestDirection selects which side of a friend request a listing filters on.
type RequestDirection string

const (
	// DirectionIncoming lists requests addressed to the user.
	DirectionIncoming RequestDirection = "incoming"
	// DirectionOutgoing lists requests sent by the user.
	DirectionOutgoing RequestDirection = "outgoing"
)

// Valid reports whether d is a known direction.
func (d RequestDirection) Valid() bool {
	return d == DirectionIncoming || d == DirectionOutgoing
}

// Store defines the interface for all persistence operations.
//
// Uniqueness constraints on composite keys (friend request pairs, friendship
// pairs, memberships, ownerships) are enforced by the backing database, so
// concurrent writers racing on the same key are serialized there; the loser
// receives ErrAlreadyExists. Conditional state transitions (accepting or
// rejecting a request) are compare-and-swap updates; losing that race yields
// ErrConflict.
type Store interface {
	// Lifecycle
	Close() error

	// Users
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	GetUsersByIDs(ctx context.Context, ids []string) ([]*domain.User, error)
	UpdateUser(ctx context.Context, user *domain.User) error
	SearchUsers(ctx context.Context, usernamePrefix string, limit int) ([]*domain.User, error)

	// Friend requests
	CreateFriendRequest(ctx context.Context, req *domain.FriendRequest) error
	GetFriendRequest(ctx context.Context, id string) (*domain.FriendRequest, error)
	GetFriendRequestBetween(ctx context.Context, fromUserID, toUserID string) (*domain.FriendRequest, error)
	ListFriendRequests(ctx context.Context, userID string, direction RequestDirection, status domain.RequestStatus) ([]*domain.FriendRequest, error)
	// AcceptFriendRequest transitions a pending request to accepted and
	// creates the canonical friendship row as one atomic unit.
	AcceptFriendRequest(ctx context.Context, requestID string, friendship *domain.Friendship) error
	// RejectFriendRequest transitions a pending request to rejected.
	RejectFriendRequest(ctx context.Context, requestID string) error
	DeleteFriendRequest(ctx context.Context, id string) error

	// Friendships
	FriendshipExists(ctx context.Context, userID, otherID string) (bool, error)
	ListFriendships(ctx context.Context, userID string) ([]*domain.Friendship, error)
	DeleteFriendship(ctx context.Context, userID, otherID string) error

	// Circles
	CreateCircle(ctx context.Context, circle *domain.Circle, ownerMembership *domain.CircleMembership) error
	GetCircle(ctx context.Context, id string) (*domain.Circle, error)
	UpdateCircle(ctx context.Context, circle *domain.Circle) error
	DeleteCircle(ctx context.Context, id string) error
	AddCircleMember(ctx context.Context, membership *domain.CircleMembership) error
	RemoveCircleMember(ctx context.Context, userID, circleID string) error
	IsCircleMember(ctx context.Context, userID, circleID string) (bool, error)
	ListCircleMembers(ctx context.Context, circleID string) ([]*domain.User, error)
	ListCirclesForUser(ctx context.Context, userID string) ([]*domain.Circle, error)

	// Events
	CreateEvent(ctx context.Context, event *domain.Event, creatorOwnership *domain.EventOwnership) error
	GetEvent(ctx context.Context, id string) (*domain.Event, error)
	UpdateEvent(ctx context.Context, event *domain.Event) error
	DeleteEvent(ctx context.Context, id string) error
	AddEventOwner(ctx context.Context, ownership *domain.EventOwnership) error
	IsEventOwner(ctx context.Context, userID, eventID string) (bool, error)
	ListEventOwners(ctx context.Context, eventID string) ([]*domain.User, error)
	ListEventsForUser(ctx context.Context, userID string) ([]*domain.Event, error)
}
