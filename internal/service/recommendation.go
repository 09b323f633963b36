package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	domainerrors "github.com/outsourceapp/outsource-server/internal/errors"
	"github.com/outsourceapp/outsource-server/internal/recommend"
	"github.com/outsourceapp/outsource-server/internal/store"
	"github.com/outsourceapp/outsource-server/internal/weather"
)

// fallbackWeather is used when the forecast service can't serve the request.
// A mild reading keeps recommendations useful rather than failing the call.
const fallbackWeather = "temp 75 F low wind no precipitation"

// ForecastProvider fetches a weather forecast for coordinates.
type ForecastProvider interface {
	GetForecast(ctx context.Context, lat, lon float64) ([]weather.Forecast, error)
}

// RecommendationService produces activity suggestions for users and circles.
type RecommendationService struct {
	store     store.Store
	forecasts ForecastProvider
	generator recommend.Generator
	logger    *slog.Logger
}

// NewRecommendationService creates a new recommendation service.
func NewRecommendationService(s store.Store, forecasts ForecastProvider, generator recommend.Generator, logger *slog.Logger) *RecommendationService {
	return &RecommendationService{
		store:     s,
		forecasts: forecasts,
		generator: generator,
		logger:    logger,
	}
}

// RecommendForUser suggests two activities based on the user's preferences
// and the forecast at the given coordinates.
func (s *RecommendationService) RecommendForUser(ctx context.Context, userID string, lat, lon float64) ([2]recommend.Activity, error) {
	var none [2]recommend.Activity

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return none, domainerrors.NotFound("user not found")
		}
		return none, fmt.Errorf("get user: %w", err)
	}

	if !user.HasPreferences() {
		return none, domainerrors.Validation("no preferences set")
	}

	return s.generate(ctx, user.Preferences, lat, lon)
}

// RecommendForCircle suggests two activities for a circle, combining every
// member's preferences. Duplicates are dropped while preserving the order in
// which tags were first seen.
func (s *RecommendationService) RecommendForCircle(ctx context.Context, circleID, requesterID string, lat, lon float64) ([2]recommend.Activity, error) {
	var none [2]recommend.Activity

	if _, err := s.store.GetCircle(ctx, circleID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return none, domainerrors.NotFound("circle not found")
		}
		return none, fmt.Errorf("get circle: %w", err)
	}

	isMember, err := s.store.IsCircleMember(ctx, requesterID, circleID)
	if err != nil {
		return none, fmt.Errorf("check membership: %w", err)
	}
	if !isMember {
		return none, domainerrors.Forbidden("not a member of this circle")
	}

	members, err := s.store.ListCircleMembers(ctx, circleID)
	if err != nil {
		return none, fmt.Errorf("list circle members: %w", err)
	}

	seen := make(map[string]bool)
	var combined []string
	for _, m := range members {
		for _, p := range m.Preferences {
			if !seen[p] {
				seen[p] = true
				combined = append(combined, p)
			}
		}
	}

	if len(combined) == 0 {
		return none, domainerrors.Validation("no preferences set")
	}

	return s.generate(ctx, combined, lat, lon)
}

// generate runs the external calls. All invariant checks and local reads are
// done by the time this is called.
func (s *RecommendationService) generate(ctx context.Context, preferences []string, lat, lon float64) ([2]recommend.Activity, error) {
	var none [2]recommend.Activity

	snap := recommend.Snapshot{
		Preferences: preferences,
		Weather:     s.weatherSummary(ctx, lat, lon),
	}

	activities, err := recommend.Generate(ctx, s.generator, snap)
	if err != nil {
		s.logger.Warn("recommendation generation failed", "error", err)
		return none, domainerrors.Unavailable("recommendation service unavailable").WithCause(err)
	}

	return activities, nil
}

// weatherSummary fetches the current forecast and reduces it to one line for
// the prompt. Forecast failures fall back to a fixed mild reading; weather
// flavors the suggestions but isn't worth failing the request over.
func (s *RecommendationService) weatherSummary(ctx context.Context, lat, lon float64) string {
	forecasts, err := s.forecasts.GetForecast(ctx, lat, lon)
	if err != nil || len(forecasts) == 0 {
		if err != nil {
			s.logger.Warn("weather lookup failed, using fallback",
				"lat", lat,
				"lon", lon,
				"error", err,
			)
		}
		return fallbackWeather
	}

	f := forecasts[0]
	return fmt.Sprintf("temp %.0f F, precipitation chance %.0f%%, wind %.0f mph, %s",
		f.Temperature, f.Precipitation, f.WindSpeed, f.Description)
}
