package api

import (
	"encoding/json/v2"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/outsourceapp/outsource-server/internal/http/response"
)

// CreateCircleRequest represents the request body for creating a circle.
type CreateCircleRequest struct {
	Name     string `json:"name"`
	IsPublic bool   `json:"is_public"`
}

// UpdateCircleRequest represents the request body for updating a circle.
// Omitted fields keep their current value.
type UpdateCircleRequest struct {
	Name     *string `json:"name"`
	IsPublic *bool   `json:"is_public"`
}

// AddCircleMemberRequest represents the request body for adding a member.
// An empty user ID means the requester joins the circle themselves.
type AddCircleMemberRequest struct {
	UserID string `json:"user_id"`
}

// handleCreateCircle creates a new circle owned by the authenticated user.
func (s *Server) handleCreateCircle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)

	if userID == "" {
		response.Unauthorized(w, "Authentication required", s.logger)
		return
	}

	var req CreateCircleRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	circle, err := s.circleService.CreateCircle(ctx, userID, req.Name, req.IsPublic)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, circle, s.logger)
}

// handleListCircles returns circles the authenticated user belongs to.
func (s *Server) handleListCircles(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)

	if userID == "" {
		response.Unauthorized(w, "Authentication required", s.logger)
		return
	}

	circles, err := s.circleService.ListCirclesForUser(ctx, userID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, circles, s.logger)
}

// handleGetCircle returns a single circle by ID.
func (s *Server) handleGetCircle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)
	id := chi.URLParam(r, "id")

	if userID == "" {
		response.Unauthorized(w, "Authentication required", s.logger)
		return
	}

	if id == "" {
		response.BadRequest(w, "Circle ID is required", s.logger)
		return
	}

	circle, err := s.circleService.GetCircle(ctx, id, userID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, circle, s.logger)
}

// handleUpdateCircle updates a circle's name or visibility.
func (s *Server) handleUpdateCircle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)
	id := chi.URLParam(r, "id")

	if userID == "" {
		response.Unauthorized(w, "Authentication required", s.logger)
		return
	}

	if id == "" {
		response.BadRequest(w, "Circle ID is required", s.logger)
		return
	}

	var req UpdateCircleRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	// Merge omitted fields from the current state.
	current, err := s.circleService.GetCircle(ctx, id, userID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	name := current.Name
	if req.Name != nil {
		name = *req.Name
	}
	isPublic := current.IsPublic
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}

	circle, err := s.circleService.UpdateCircle(ctx, id, userID, name, isPublic)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, circle, s.logger)
}

// handleDeleteCircle deletes a circle and its memberships.
func (s *Server) handleDeleteCircle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)
	id := chi.URLParam(r, "id")

	if userID == "" {
		response.Unauthorized(w, "Authentication required", s.logger)
		return
	}

	if id == "" {
		response.BadRequest(w, "Circle ID is required", s.logger)
		return
	}

	if err := s.circleService.DeleteCircle(ctx, id, userID); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.NoContent(w)
}

// handleAddCircleMember adds a user to a circle.
func (s *Server) handleAddCircleMember(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)
	id := chi.URLParam(r, "id")

	if userID == "" {
		response.Unauthorized(w, "Authentication required", s.logger)
		return
	}

	if id == "" {
		response.BadRequest(w, "Circle ID is required", s.logger)
		return
	}

	var req AddCircleMemberRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	targetID := req.UserID
	if targetID == "" {
		targetID = userID
	}

	if err := s.circleService.AddMember(ctx, id, userID, targetID); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, map[string]string{
		"message": "Member added successfully",
	}, s.logger)
}

// handleListCircleMembers returns the members of a circle.
func (s *Server) handleListCircleMembers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)
	id := chi.URLParam(r, "id")

	if userID == "" {
		response.Unauthorized(w, "Authentication required", s.logger)
		return
	}

	if id == "" {
		response.BadRequest(w, "Circle ID is required", s.logger)
		return
	}

	members, err := s.circleService.ListMembers(ctx, id, userID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, members, s.logger)
}

// handleRemoveCircleMember removes a user from a circle.
func (s *Server) handleRemoveCircleMember(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)
	id := chi.URLParam(r, "id")
	targetID := chi.URLParam(r, "userID")

	if userID == "" {
		response.Unauthorized(w, "Authentication required", s.logger)
		return
	}

	if id == "" || targetID == "" {
		response.BadRequest(w, "Circle ID and user ID are required", s.logger)
		return
	}

	if err := s.circleService.RemoveMember(ctx, id, userID, targetID); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.NoContent(w)
}
