package api

import (
	"encoding/json/v2"
	"net/http"

	"github.com/outsourceapp/outsource-server/internal/http/response"
	"github.com/outsourceapp/outsource-server/internal/service"
)

// handleRegister creates a new user account and returns an access token.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req service.RegisterRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	resp, err := s.authService.Register(ctx, req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, resp, s.logger)
}

// handleLogin authenticates a user and returns an access token.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req service.LoginRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	resp, err := s.authService.Login(ctx, req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, resp, s.logger)
}
