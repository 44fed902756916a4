package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"sentinlk/internal/domain"
	"sentinlk/internal/ports"
)

const (
	defaultBaseURL = "http://api.weatherapi.com/v1/current.json"

	StatusClear        = "CLEAR"
	StatusModerateRain = "MODERATE_RAIN"
	StatusSevereFlood  = "SEVERE_FLOOD"
	StatusError        = "ERROR"
)

// Client looks up current precipitation as a ground-truth flood indicator.
type Client struct {
	baseURL string
	apiKey  string
	lat     float64
	lon     float64
	http    *http.Client
}

var _ ports.WeatherProvider = (*Client)(nil)

// NewClient wires the weatherapi.com lookup for a fixed observation point.
func NewClient(apiKey string, lat, lon float64) *Client {
	return &Client{
		baseURL: defaultBaseURL,
		apiKey:  apiKey,
		lat:     lat,
		lon:     lon,
		http:    &http.Client{Timeout: 2 * time.Second},
	}
}

// CurrentRisk fetches current conditions and buckets rainfall into a status.
// Failures degrade to an ERROR status instead of surfacing: weather is
// advisory context, never a reason to stall a cycle.
func (c *Client) CurrentRisk(ctx context.Context) (domain.WeatherReport, error) {
	if c.apiKey == "" {
		return domain.WeatherReport{Status: StatusClear}, nil
	}

	url := fmt.Sprintf("%s?key=%s&q=%f,%f", c.baseURL, c.apiKey, c.lat, c.lon)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return domain.WeatherReport{Status: StatusError}, fmt.Errorf("new request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.WeatherReport{Status: StatusError}, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.WeatherReport{Status: StatusError}, fmt.Errorf("unexpected status %s", resp.Status)
	}

	var parsed struct {
		Current struct {
			PrecipMM float64 `json:"precip_mm"`
		} `json:"current"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return domain.WeatherReport{Status: StatusError}, fmt.Errorf("decode response: %w", err)
	}

	return domain.WeatherReport{
		PrecipMM: parsed.Current.PrecipMM,
		Status:   bucketStatus(parsed.Current.PrecipMM),
	}, nil
}

func bucketStatus(precipMM float64) string {
	switch {
	case precipMM > 50:
		return StatusSevereFlood
	case precipMM > 20:
		return StatusModerateRain
	default:
		return StatusClear
	}
}
