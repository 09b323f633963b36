// Package service provides the business logic layer for accounts, the social
// graph, events, and recommendations.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/outsourceapp/outsource-server/internal/auth"
	"github.com/outsourceapp/outsource-server/internal/domain"
	domainerrors "github.com/outsourceapp/outsource-server/internal/errors"
	"github.com/outsourceapp/outsource-server/internal/id"
	"github.com/outsourceapp/outsource-server/internal/store"
	"github.com/outsourceapp/outsource-server/internal/validation"
)

// AuthService handles registration, login, and token verification.
type AuthService struct {
	store        store.Store
	tokenService *auth.TokenService
	validator    *validation.Validator
	logger       *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(s store.Store, tokenService *auth.TokenService, validator *validation.Validator, logger *slog.Logger) *AuthService {
	return &AuthService{
		store:        s,
		tokenService: tokenService,
		validator:    validator,
		logger:       logger,
	}
}

// RegisterRequest contains user registration data.
type RegisterRequest struct {
	Username    string `json:"username" validate:"required,min=3,max=32,alphanum"`
	Password    string `json:"password" validate:"required,min=8,max=1024"`
	DisplayName string `json:"display_name" validate:"required,max=64"`
}

// LoginRequest contains user credentials.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse contains the authenticated user and their access token.
type AuthResponse struct {
	User        *domain.User `json:"user"`
	AccessToken string       `json:"access_token"`
	ExpiresIn   int64        `json:"expires_in"` // seconds
}

// Register creates a new user account.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	userID, err := id.Generate(id.PrefixUser)
	if err != nil {
		return nil, fmt.Errorf("generate user ID: %w", err)
	}

	user := &domain.User{
		Timestamps: domain.Timestamps{
			ID: userID,
		},
		Username:     strings.TrimSpace(req.Username),
		PasswordHash: passwordHash,
		DisplayName:  strings.TrimSpace(req.DisplayName),
		Preferences:  []string{},
	}
	user.InitTimestamps()

	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.Conflict("username already taken")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("user registered",
		"user_id", userID,
		"username", user.Username,
	)

	return s.issueToken(user)
}

// Login authenticates a user by username and password.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.store.GetUserByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Same error as a bad password so usernames can't be probed.
			return nil, domainerrors.InvalidCredentials("invalid username or password")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	ok, err := auth.VerifyPassword(user.PasswordHash, req.Password)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return nil, domainerrors.InvalidCredentials("invalid username or password")
	}

	s.logger.Info("user logged in", "user_id", user.ID)

	return s.issueToken(user)
}

// VerifyAccessToken validates a bearer token and returns its claims.
func (s *AuthService) VerifyAccessToken(tokenString string) (*auth.AccessClaims, error) {
	claims, err := s.tokenService.VerifyAccessToken(tokenString)
	if err != nil {
		if strings.Contains(err.Error(), "expired") {
			return nil, domainerrors.TokenExpired("access token expired")
		}
		return nil, domainerrors.Unauthorized("invalid access token")
	}
	return claims, nil
}

func (s *AuthService) issueToken(user *domain.User) (*AuthResponse, error) {
	token, err := s.tokenService.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	return &AuthResponse{
		User:        user,
		AccessToken: token,
		ExpiresIn:   int64(s.tokenService.AccessTokenDuration() / time.Second),
	}, nil
}
