package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/outsourceapp/outsource-server/internal/http/response"
	"github.com/outsourceapp/outsource-server/internal/weather"
)

// handleGetWeather returns the raw forecast for a location.
// Query params "lat" and "lon" are required decimal degrees.
func (s *Server) handleGetWeather(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)

	if userID == "" {
		response.Unauthorized(w, "Authentication required", s.logger)
		return
	}

	lat, err := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	if err != nil {
		response.BadRequest(w, "Query parameter 'lat' must be a number", s.logger)
		return
	}

	lon, err := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
	if err != nil {
		response.BadRequest(w, "Query parameter 'lon' must be a number", s.logger)
		return
	}

	if !validCoordinates(lat, lon) {
		response.BadRequest(w, "Latitude and longitude are out of range", s.logger)
		return
	}

	forecasts, err := s.weatherClient.GetForecast(ctx, lat, lon)
	if err != nil {
		if errors.Is(err, weather.ErrOutsideCoverage) {
			response.NotFound(w, "No forecast available for this location", s.logger)
			return
		}
		if errors.Is(err, weather.ErrUnavailable) {
			response.Error(w, http.StatusServiceUnavailable, "Weather service unavailable", s.logger)
			return
		}
		s.logger.Error("Failed to get forecast", "error", err, "lat", lat, "lon", lon)
		response.InternalError(w, "Failed to retrieve forecast", s.logger)
		return
	}

	response.Success(w, forecasts, s.logger)
}
