package api

import (
	"encoding/json/v2"
	"net/http"

	"github.com/outsourceapp/outsource-server/internal/http/response"
)

// UpdatePreferencesRequest represents the request body for replacing preferences.
type UpdatePreferencesRequest struct {
	Preferences []string `json:"preferences"`
}

// handleGetCurrentUser returns the authenticated user's full profile.
func (s *Server) handleGetCurrentUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)

	if userID == "" {
		response.Unauthorized(w, "Authentication required", s.logger)
		return
	}

	user, err := s.profileService.GetUser(ctx, userID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, user, s.logger)
}

// handleUpdatePreferences replaces the authenticated user's activity preferences.
func (s *Server) handleUpdatePreferences(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)

	if userID == "" {
		response.Unauthorized(w, "Authentication required", s.logger)
		return
	}

	var req UpdatePreferencesRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	user, err := s.profileService.UpdatePreferences(ctx, userID, req.Preferences)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, user, s.logger)
}

// handleSearchUsers searches users by username prefix.
func (s *Server) handleSearchUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)

	if userID == "" {
		response.Unauthorized(w, "Authentication required", s.logger)
		return
	}

	query := r.URL.Query().Get("q")

	users, err := s.profileService.SearchUsers(ctx, query)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, users, s.logger)
}
