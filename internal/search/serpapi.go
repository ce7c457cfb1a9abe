package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/wrenchbase/wrenchbase/internal/config"
	"github.com/wrenchbase/wrenchbase/internal/models"
)

// ErrNotConfigured means no provider credential is present. This is a
// deployment fault, not an upstream failure, and is never retried.
var ErrNotConfigured = errors.New("search provider API key not configured")

// GPSCoordinates is a candidate's geocoordinates as the provider reports
// them.
type GPSCoordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Place is one candidate match from the provider. Zero candidates is a
// successful lookup, not an error.
type Place struct {
	Title          string          `json:"title"`
	Address        string          `json:"address"`
	Rating         float64         `json:"rating,omitempty"`
	Reviews        int             `json:"reviews,omitempty"`
	Type           string          `json:"type,omitempty"`
	Phone          string          `json:"phone,omitempty"`
	Website        string          `json:"website,omitempty"`
	Thumbnail      string          `json:"thumbnail,omitempty"`
	GPSCoordinates *GPSCoordinates `json:"gps_coordinates,omitempty"`
	PlaceID        string          `json:"place_id,omitempty"`
	DataID         string          `json:"data_id,omitempty"`
}

// searchResponse is the slice of the provider payload we consume. A query
// resolves either to a list of local results or to a single direct place
// match, never both.
type searchResponse struct {
	LocalResults []Place `json:"local_results"`
	PlaceResults *Place  `json:"place_results"`
	Error        string  `json:"error"`
}

// Client queries the SerpAPI Google Maps engine. One attempt per call,
// bounded by the configured timeout; retry decisions belong to the caller.
type Client struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	logger     *slog.Logger
}

func NewClient(cfg *config.SearchConfig, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		apiKey:     cfg.APIKey,
		baseURL:    cfg.BaseURL,
		logger:     logger,
	}
}

// Search looks up candidate places for a free-text query. Transport
// failures and non-200 responses surface as models.ErrUpstream; an empty
// candidate list is returned as a zero-length slice with a nil error.
func (c *Client) Search(ctx context.Context, query string) ([]Place, error) {
	if c.apiKey == "" {
		return nil, ErrNotConfigured
	}

	params := url.Values{}
	params.Set("engine", "google_maps")
	params.Set("type", "search")
	params.Set("q", query)
	params.Set("api_key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build search request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("search provider unreachable", slog.Any("error", err))
		return nil, fmt.Errorf("%w: %v", models.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("search provider returned error status",
			slog.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("%w: provider returned status %d", models.ErrUpstream, resp.StatusCode)
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: failed to decode provider response: %v", models.ErrUpstream, err)
	}

	if body.Error != "" {
		return nil, fmt.Errorf("%w: %s", models.ErrUpstream, body.Error)
	}

	results := body.LocalResults
	if len(results) == 0 && body.PlaceResults != nil {
		results = []Place{*body.PlaceResults}
	}
	if results == nil {
		results = []Place{}
	}

	c.logger.Info("search provider lookup completed",
		slog.String("query", query),
		slog.Int("results", len(results)),
	)

	return results, nil
}
