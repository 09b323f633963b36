package api

import (
	"encoding/json/v2"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/outsourceapp/outsource-server/internal/http/response"
)

// RecommendationRequest represents the request body for requesting activity
// recommendations at a location.
type RecommendationRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// handleRecommendForUser generates activity recommendations from the
// authenticated user's preferences.
func (s *Server) handleRecommendForUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)

	if userID == "" {
		response.Unauthorized(w, "Authentication required", s.logger)
		return
	}

	var req RecommendationRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	if !validCoordinates(req.Latitude, req.Longitude) {
		response.BadRequest(w, "Latitude and longitude are out of range", s.logger)
		return
	}

	activities, err := s.recommendationService.RecommendForUser(ctx, userID, req.Latitude, req.Longitude)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, map[string]any{
		"activities": activities,
	}, s.logger)
}

// handleRecommendForCircle generates activity recommendations from the union
// of a circle's member preferences.
func (s *Server) handleRecommendForCircle(w http.ResponseWriter, r *http.Request) {
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

	var req RecommendationRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	if !validCoordinates(req.Latitude, req.Longitude) {
		response.BadRequest(w, "Latitude and longitude are out of range", s.logger)
		return
	}

	activities, err := s.recommendationService.RecommendForCircle(ctx, id, userID, req.Latitude, req.Longitude)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, map[string]any{
		"activities": activities,
	}, s.logger)
}

// validCoordinates reports whether the pair is a plausible WGS84 position.
func validCoordinates(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}
