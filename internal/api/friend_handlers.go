package api

import (
	"encoding/json/v2"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/outsourceapp/outsource-server/internal/domain"
	"github.com/outsourceapp/outsource-server/internal/http/response"
	"github.com/outsourceapp/outsource-server/internal/store"
)

// SendFriendRequestRequest represents the request body for sending a friend request.
type SendFriendRequestRequest struct {
	ToUserID string `json:"to_user_id"`
}

// RespondFriendRequestRequest represents the request body for answering a friend request.
type RespondFriendRequestRequest struct {
	Decision string `json:"decision"` // "accept" or "reject"
}

// handleSendFriendRequest sends a friend request to another user.
func (s *Server) handleSendFriendRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)

	if userID == "" {
		response.Unauthorized(w, "Authentication required", s.logger)
		return
	}

	var req SendFriendRequestRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	if req.ToUserID == "" {
		response.BadRequest(w, "Recipient user ID is required", s.logger)
		return
	}

	request, err := s.friendService.SendRequest(ctx, userID, req.ToUserID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, request, s.logger)
}

// handleListFriendRequests lists the user's friend requests.
// Query param "direction" can be "incoming" (default) or "outgoing";
// "status" optionally filters by pending, accepted, or rejected.
func (s *Server) handleListFriendRequests(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)

	if userID == "" {
		response.Unauthorized(w, "Authentication required", s.logger)
		return
	}

	direction := store.RequestDirection(r.URL.Query().Get("direction"))
	if direction == "" {
		direction = store.DirectionIncoming
	}
	status := domain.RequestStatus(r.URL.Query().Get("status"))

	requests, err := s.friendService.ListRequests(ctx, userID, direction, status)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, requests, s.logger)
}

// handleRespondFriendRequest accepts or rejects a pending friend request.
func (s *Server) handleRespondFriendRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)
	id := chi.URLParam(r, "id")

	if userID == "" {
		response.Unauthorized(w, "Authentication required", s.logger)
		return
	}

	if id == "" {
		response.BadRequest(w, "Friend request ID is required", s.logger)
		return
	}

	var req RespondFriendRequestRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	request, err := s.friendService.RespondToRequest(ctx, id, userID, domain.RequestDecision(req.Decision))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, request, s.logger)
}

// handleCancelFriendRequest cancels a pending outgoing friend request.
func (s *Server) handleCancelFriendRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)
	id := chi.URLParam(r, "id")

	if userID == "" {
		response.Unauthorized(w, "Authentication required", s.logger)
		return
	}

	if id == "" {
		response.BadRequest(w, "Friend request ID is required", s.logger)
		return
	}

	if err := s.friendService.CancelRequest(ctx, id, userID); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.NoContent(w)
}

// handleListFriends returns the authenticated user's friends.
func (s *Server) handleListFriends(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)

	if userID == "" {
		response.Unauthorized(w, "Authentication required", s.logger)
		return
	}

	friends, err := s.friendService.ListFriends(ctx, userID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, friends, s.logger)
}

// handleUnfriend removes an existing friendship.
func (s *Server) handleUnfriend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)
	otherID := chi.URLParam(r, "userID")

	if userID == "" {
		response.Unauthorized(w, "Authentication required", s.logger)
		return
	}

	if otherID == "" {
		response.BadRequest(w, "User ID is required", s.logger)
		return
	}

	if err := s.friendService.Unfriend(ctx, userID, otherID); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.NoContent(w)
}
