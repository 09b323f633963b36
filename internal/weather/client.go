// Package weather fetches forecasts from the National Weather Service API.
package weather

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the public NWS API endpoint.
	DefaultBaseURL = "https://api.weather.gov"

	userAgent    = "(outsource.com, contact@outsource.com)"
	acceptHeader = "application/geo+json"
)

// ErrUnavailable indicates the upstream weather service could not serve the
// request. Callers may substitute a fallback reading.
var ErrUnavailable = errors.New("weather service unavailable")

// ErrOutsideCoverage indicates the coordinates fall outside NWS coverage
// (the API only serves US locations).
var ErrOutsideCoverage = errors.New("coordinates outside NWS coverage area")

// Client provides access to the NWS forecast API.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	logger      *slog.Logger
}

// NewClient creates a new NWS client. An empty baseURL selects the public
// endpoint. The NWS asks unauthenticated consumers to stay well under one
// request per second, so we limit to 1 rps with a small burst.
func NewClient(baseURL string, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			// NWS latency spikes are common; don't hang the request path.
			Timeout: 10 * time.Second,
		},
		rateLimiter: rate.NewLimiter(rate.Every(time.Second), 3),
		logger:      logger,
	}
}

// wait blocks until the rate limiter allows a request.
func (c *Client) wait(ctx context.Context) error {
	return c.rateLimiter.Wait(ctx)
}
