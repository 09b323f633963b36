package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/outsourceapp/outsource-server/internal/domain"
	domainerrors "github.com/outsourceapp/outsource-server/internal/errors"
	"github.com/outsourceapp/outsource-server/internal/id"
	"github.com/outsourceapp/outsource-server/internal/store"
)

// CircleService manages circles and their memberships.
type CircleService struct {
	store  store.Store
	logger *slog.Logger
}

// NewCircleService creates a new circle service.
func NewCircleService(s store.Store, logger *slog.Logger) *CircleService {
	return &CircleService{
		store:  s,
		logger: logger,
	}
}

// CreateCircle creates a circle owned by the creator. The owner's membership
// row is written in the same storage transaction as the circle itself.
func (s *CircleService) CreateCircle(ctx context.Context, ownerID, name string, isPublic bool) (*domain.Circle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domainerrors.Validation("circle name is required")
	}

	circleID, err := id.Generate(id.PrefixCircle)
	if err != nil {
		return nil, fmt.Errorf("generate circle ID: %w", err)
	}

	circle := &domain.Circle{
		Timestamps: domain.Timestamps{
			ID: circleID,
		},
		Name:     name,
		IsPublic: isPublic,
		OwnerID:  ownerID,
	}
	circle.InitTimestamps()

	membership, err := newMembership(ownerID, circleID)
	if err != nil {
		return nil, err
	}

	if err := s.store.CreateCircle(ctx, circle, membership); err != nil {
		return nil, fmt.Errorf("create circle: %w", err)
	}

	s.logger.Info("circle created",
		"circle_id", circleID,
		"owner_id", ownerID,
		"public", isPublic,
	)

	return circle, nil
}

// GetCircle returns a circle. Private circles are visible to members only.
func (s *CircleService) GetCircle(ctx context.Context, circleID, requesterID string) (*domain.Circle, error) {
	circle, err := s.getCircle(ctx, circleID)
	if err != nil {
		return nil, err
	}

	if !circle.IsPublic {
		isMember, err := s.store.IsCircleMember(ctx, requesterID, circleID)
		if err != nil {
			return nil, fmt.Errorf("check membership: %w", err)
		}
		if !isMember {
			return nil, domainerrors.Forbidden("not a member of this circle")
		}
	}

	return circle, nil
}

// UpdateCircle renames a circle or changes its visibility. Owner only.
func (s *CircleService) UpdateCircle(ctx context.Context, circleID, requesterID, name string, isPublic bool) (*domain.Circle, error) {
	circle, err := s.getCircle(ctx, circleID)
	if err != nil {
		return nil, err
	}

	if !circle.IsOwnedBy(requesterID) {
		return nil, domainerrors.Forbidden("only the owner can update a circle")
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domainerrors.Validation("circle name is required")
	}

	circle.Name = name
	circle.IsPublic = isPublic
	circle.Touch()

	if err := s.store.UpdateCircle(ctx, circle); err != nil {
		return nil, fmt.Errorf("update circle: %w", err)
	}

	s.logger.Info("circle updated", "circle_id", circleID)

	return circle, nil
}

// DeleteCircle deletes a circle and all its memberships. Owner only.
func (s *CircleService) DeleteCircle(ctx context.Context, circleID, requesterID string) error {
	circle, err := s.getCircle(ctx, circleID)
	if err != nil {
		return err
	}

	if !circle.IsOwnedBy(requesterID) {
		return domainerrors.Forbidden("only the owner can delete a circle")
	}

	if err := s.store.DeleteCircle(ctx, circleID); err != nil {
		return fmt.Errorf("delete circle: %w", err)
	}

	s.logger.Info("circle deleted", "circle_id", circleID)

	return nil
}

// AddMember adds a user to a circle. The owner can add anyone; any user can
// add themselves to a public circle.
func (s *CircleService) AddMember(ctx context.Context, circleID, requesterID, targetID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	circle, err := s.getCircle(ctx, circleID)
	if err != nil {
		return err
	}

	selfJoin := requesterID == targetID
	switch {
	case circle.IsOwnedBy(requesterID):
		// Owner can add any user.
	case selfJoin && circle.IsPublic:
		// Anyone can join a public circle.
	default:
		return domainerrors.Forbidden("not allowed to add members to this circle")
	}

	if _, err := s.store.GetUser(ctx, targetID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("user not found")
		}
		return fmt.Errorf("get user: %w", err)
	}

	membership, err := newMembership(targetID, circleID)
	if err != nil {
		return err
	}

	if err := s.store.AddCircleMember(ctx, membership); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domainerrors.Conflict("already a member")
		}
		return fmt.Errorf("add circle member: %w", err)
	}

	s.logger.Info("circle member added",
		"circle_id", circleID,
		"user_id", targetID,
		"added_by", requesterID,
	)

	return nil
}

// RemoveMember removes a user from a circle. Members may leave on their own;
// the owner may kick anyone else. The owner can never be removed.
func (s *CircleService) RemoveMember(ctx context.Context, circleID, requesterID, targetID string) error {
	circle, err := s.getCircle(ctx, circleID)
	if err != nil {
		return err
	}

	if circle.IsOwnedBy(targetID) {
		return domainerrors.Validation("the owner cannot be removed from their circle")
	}

	selfLeave := requesterID == targetID
	if !selfLeave && !circle.IsOwnedBy(requesterID) {
		return domainerrors.Forbidden("only the owner can remove other members")
	}

	if err := s.store.RemoveCircleMember(ctx, targetID, circleID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("not a member of this circle")
		}
		return fmt.Errorf("remove circle member: %w", err)
	}

	s.logger.Info("circle member removed",
		"circle_id", circleID,
		"user_id", targetID,
		"removed_by", requesterID,
	)

	return nil
}

// ListMembers returns the public profiles of a circle's members, oldest first.
// Private circles expose their roster to members only.
func (s *CircleService) ListMembers(ctx context.Context, circleID, requesterID string) ([]domain.PublicUser, error) {
	circle, err := s.getCircle(ctx, circleID)
	if err != nil {
		return nil, err
	}

	if !circle.IsPublic {
		isMember, err := s.store.IsCircleMember(ctx, requesterID, circleID)
		if err != nil {
			return nil, fmt.Errorf("check membership: %w", err)
		}
		if !isMember {
			return nil, domainerrors.Forbidden("not a member of this circle")
		}
	}

	members, err := s.store.ListCircleMembers(ctx, circleID)
	if err != nil {
		return nil, fmt.Errorf("list circle members: %w", err)
	}

	results := make([]domain.PublicUser, 0, len(members))
	for _, m := range members {
		results = append(results, m.Public())
	}
	return results, nil
}

// ListCirclesForUser returns every circle the user belongs to.
func (s *CircleService) ListCirclesForUser(ctx context.Context, userID string) ([]*domain.Circle, error) {
	circles, err := s.store.ListCirclesForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list circles: %w", err)
	}
	return circles, nil
}

func (s *CircleService) getCircle(ctx context.Context, circleID string) (*domain.Circle, error) {
	circle, err := s.store.GetCircle(ctx, circleID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("circle not found")
		}
		return nil, fmt.Errorf("get circle: %w", err)
	}
	return circle, nil
}

func newMembership(userID, circleID string) (*domain.CircleMembership, error) {
	membershipID, err := id.Generate(id.PrefixMembership)
	if err != nil {
		return nil, fmt.Errorf("generate membership ID: %w", err)
	}

	m := &domain.CircleMembership{
		Timestamps: domain.Timestamps{
			ID: membershipID,
		},
		UserID:   userID,
		CircleID: circleID,
	}
	m.InitTimestamps()
	return m, nil
}
