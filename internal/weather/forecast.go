package weather

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"math"
	"net/http"
	"regexp"
	"strconv"
)

// Forecast is one NWS forecast period reduced to the fields we use.
type Forecast struct {
	Temperature   float64 `json:"temperature"`   // degrees Fahrenheit
	Precipitation float64 `json:"precipitation"` // probability percent
	WindSpeed     float64 `json:"wind_speed"`    // mph
	Description   string  `json:"description"`
}

// pointsResponse carries the forecast URL for a coordinate. The NWS returns
// GeoJSON (URL under properties) or JSON-LD (URL at the root) depending on
// the Accept header it decides to honor, so we check both.
type pointsResponse struct {
	Properties struct {
		Forecast string `json:"forecast"`
	} `json:"properties"`
	Forecast string `json:"forecast"`
}

func (p *pointsResponse) forecastURL() string {
	if p.Properties.Forecast != "" {
		return p.Properties.Forecast
	}
	return p.Forecast
}

type forecastPeriod struct {
	Temperature                *float64 `json:"temperature"`
	ProbabilityOfPrecipitation any      `json:"probabilityOfPrecipitation"`
	WindSpeed                  string   `json:"windSpeed"`
	DetailedForecast           string   `json:"detailedForecast"`
}

type forecastResponse struct {
	Properties struct {
		Periods []forecastPeriod `json:"periods"`
	} `json:"properties"`
	Periods []forecastPeriod `json:"periods"`
}

func (f *forecastResponse) periods() []forecastPeriod {
	if len(f.Properties.Periods) > 0 {
		return f.Properties.Periods
	}
	return f.Periods
}

// GetForecast fetches the multi-day forecast for the given coordinates.
// The NWS protocol is two-step: resolve the point to a gridpoint forecast
// URL, then fetch the forecast periods from it.
func (c *Client) GetForecast(ctx context.Context, lat, lon float64) ([]Forecast, error) {
	if err := c.wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	// Round to 4 decimals; the NWS rejects higher precision with a redirect.
	pointsURL := fmt.Sprintf("%s/points/%.4f,%.4f", c.baseURL, roundCoord(lat), roundCoord(lon))

	c.logger.Debug("resolving NWS point", "url", pointsURL)

	var points pointsResponse
	if err := c.getJSON(ctx, pointsURL, &points); err != nil {
		return nil, err
	}

	forecastURL := points.forecastURL()
	if forecastURL == "" {
		return nil, fmt.Errorf("no forecast URL for point: %w", ErrUnavailable)
	}

	var forecast forecastResponse
	if err := c.getJSON(ctx, forecastURL, &forecast); err != nil {
		return nil, err
	}

	periods := forecast.periods()
	if len(periods) == 0 {
		return nil, fmt.Errorf("no forecast periods: %w", ErrUnavailable)
	}

	results := make([]Forecast, 0, len(periods))
	for i := range periods {
		results = append(results, periods[i].toForecast())
	}

	c.logger.Debug("fetched NWS forecast", "periods", len(results))

	return results, nil
}

// getJSON performs a GET with the NWS-required headers and decodes the body.
func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", acceptHeader)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("weather request: %w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w", ErrOutsideCoverage)
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("weather request: status %d: %w", resp.StatusCode, ErrUnavailable)
	}

	if err := json.UnmarshalRead(resp.Body, out); err != nil {
		return fmt.Errorf("parse response: %w: %w", ErrUnavailable, err)
	}

	return nil
}

func (p *forecastPeriod) toForecast() Forecast {
	// Missing temperature defaults to a mild reading rather than zero.
	temp := 70.0
	if p.Temperature != nil {
		temp = *p.Temperature
	}

	return Forecast{
		Temperature:   temp,
		Precipitation: parsePrecipitation(p.ProbabilityOfPrecipitation),
		WindSpeed:     parseWindSpeed(p.WindSpeed),
		Description:   p.DetailedForecast,
	}
}

// parsePrecipitation handles both shapes the NWS emits: a bare number, or a
// quantitative value object {"unitCode": ..., "value": 30}. A null value
// means no measurable probability.
func parsePrecipitation(raw any) float64 {
	switch v := raw.(type) {
	case float64:
		return v
	case map[string]any:
		if val, ok := v["value"].(float64); ok {
			return val
		}
	}
	return 0
}

var windNumbers = regexp.MustCompile(`\d+`)

// parseWindSpeed parses NWS wind strings like "5 mph", "5 to 8 mph", or
// "Calm". For a range it returns the higher value.
func parseWindSpeed(s string) float64 {
	if s == "" || s == "Calm" {
		return 0
	}

	highest := 0.0
	for _, m := range windNumbers.FindAllString(s, -1) {
		if n, err := strconv.ParseFloat(m, 64); err == nil {
			highest = math.Max(highest, n)
		}
	}
	return highest
}

func roundCoord(v float64) float64 {
	return math.Round(v*10000) / 10000
}
