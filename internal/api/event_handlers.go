package api

import (
	"encoding/json/v2"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/outsourceapp/outsource-server/internal/http/response"
)

// CreateEventRequest represents the request body for creating an event.
type CreateEventRequest struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	StartAt     time.Time `json:"start_at"`
	EndAt       time.Time `json:"end_at"`
}

// UpdateEventRequest represents the request body for updating an event.
// Omitted fields keep their current value.
type UpdateEventRequest struct {
	Name        *string    `json:"name"`
	Description *string    `json:"description"`
	StartAt     *time.Time `json:"start_at"`
	EndAt       *time.Time `json:"end_at"`
}

// AddEventOwnerRequest represents the request body for adding a co-owner.
type AddEventOwnerRequest struct {
	UserID string `json:"user_id"`
}

// handleCreateEvent creates a new event owned by the authenticated user.
func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)

	if userID == "" {
		response.Unauthorized(w, "Authentication required", s.logger)
		return
	}

	var req CreateEventRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	event, err := s.eventService.CreateEvent(ctx, userID, req.Name, req.Description, req.StartAt, req.EndAt)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, event, s.logger)
}

// handleListEvents returns events the authenticated user owns or co-owns.
func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)

	if userID == "" {
		response.Unauthorized(w, "Authentication required", s.logger)
		return
	}

	events, err := s.eventService.ListEventsForUser(ctx, userID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, events, s.logger)
}

// handleGetEvent returns a single event by ID.
func (s *Server) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)
	id := chi.URLParam(r, "id")

	if userID == "" {
		response.Unauthorized(w, "Authentication required", s.logger)
		return
	}

	if id == "" {
		response.BadRequest(w, "Event ID is required", s.logger)
		return
	}

	event, err := s.eventService.GetEvent(ctx, id, userID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, event, s.logger)
}

// handleUpdateEvent updates an event's details or schedule.
func (s *Server) handleUpdateEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)
	id := chi.URLParam(r, "id")

	if userID == "" {
		response.Unauthorized(w, "Authentication required", s.logger)
		return
	}

	if id == "" {
		response.BadRequest(w, "Event ID is required", s.logger)
		return
	}

	var req UpdateEventRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	// Merge omitted fields from the current state.
	current, err := s.eventService.GetEvent(ctx, id, userID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	name := current.Name
	if req.Name != nil {
		name = *req.Name
	}
	description := current.Description
	if req.Description != nil {
		description = *req.Description
	}
	startAt := current.StartAt
	if req.StartAt != nil {
		startAt = *req.StartAt
	}
	endAt := current.EndAt
	if req.EndAt != nil {
		endAt = *req.EndAt
	}

	event, err := s.eventService.UpdateEvent(ctx, id, userID, name, description, startAt, endAt)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, event, s.logger)
}

// handleDeleteEvent deletes an event and its ownerships.
func (s *Server) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)
	id := chi.URLParam(r, "id")

	if userID == "" {
		response.Unauthorized(w, "Authentication required", s.logger)
		return
	}

	if id == "" {
		response.BadRequest(w, "Event ID is required", s.logger)
		return
	}

	if err := s.eventService.DeleteEvent(ctx, id, userID); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.NoContent(w)
}

// handleAddEventOwner adds a co-owner to an event.
func (s *Server) handleAddEventOwner(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)
	id := chi.URLParam(r, "id")

	if userID == "" {
		response.Unauthorized(w, "Authentication required", s.logger)
		return
	}

	if id == "" {
		response.BadRequest(w, "Event ID is required", s.logger)
		return
	}

	var req AddEventOwnerRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	if req.UserID == "" {
		response.BadRequest(w, "User ID is required", s.logger)
		return
	}

	if err := s.eventService.AddCoOwner(ctx, id, userID, req.UserID); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, map[string]string{
		"message": "Owner added successfully",
	}, s.logger)
}

// handleListEventOwners returns the owners of an event.
func (s *Server) handleListEventOwners(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)
	id := chi.URLParam(r, "id")

	if userID == "" {
		response.Unauthorized(w, "Authentication required", s.logger)
		return
	}

	if id == "" {
		response.BadRequest(w, "Event ID is required", s.logger)
		return
	}

	owners, err := s.eventService.ListOwners(ctx, id, userID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, owners, s.logger)
}
