package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/outsourceapp/outsource-server/internal/domain"
	domainerrors "github.com/outsourceapp/outsource-server/internal/errors"
	"github.com/outsourceapp/outsource-server/internal/store"
)

const searchLimit = 20

// ProfileService handles user profile reads and preference updates.
type ProfileService struct {
	store  store.Store
	logger *slog.Logger
}

// NewProfileService creates a new profile service.
func NewProfileService(s store.Store, logger *slog.Logger) *ProfileService {
	return &ProfileService{
		store:  s,
		logger: logger,
	}
}

// GetUser returns a user by ID.
func (s *ProfileService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("user not found")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// UpdatePreferences replaces the user's activity preference tags.
// Tags are trimmed; empty tags are dropped. Order is preserved.
func (s *ProfileService) UpdatePreferences(ctx context.Context, userID string, preferences []string) (*domain.User, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	cleaned := make([]string, 0, len(preferences))
	for _, p := range preferences {
		p = strings.TrimSpace(p)
		if p != "" {
			cleaned = append(cleaned, p)
		}
	}

	user.Preferences = cleaned
	user.Touch()

	if err := s.store.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	s.logger.Info("preferences updated",
		"user_id", userID,
		"count", len(cleaned),
	)

	return user, nil
}

// SearchUsers finds users whose username starts with the given prefix.
func (s *ProfileService) SearchUsers(ctx context.Context, usernamePrefix string) ([]domain.PublicUser, error) {
	usernamePrefix = strings.TrimSpace(usernamePrefix)
	if usernamePrefix == "" {
		return nil, domainerrors.Validation("search query is required")
	}

	users, err := s.store.SearchUsers(ctx, usernamePrefix, searchLimit)
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}

	results := make([]domain.PublicUser, 0, len(users))
	for _, u := range users {
		results = append(results, u.Public())
	}
	return results, nil
}
