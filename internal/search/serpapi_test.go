package search

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wrenchbase/wrenchbase/internal/config"
	"github.com/wrenchbase/wrenchbase/internal/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient(&config.SearchConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Timeout: 2 * time.Second,
	}, slog.Default())

	return client, server
}

func TestSearch_LocalResults(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "google_maps", r.URL.Query().Get("engine"))
		assert.Equal(t, "Joe's Garage", r.URL.Query().Get("q"))
		assert.Equal(t, "test-key", r.URL.Query().Get("api_key"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"local_results": [
				{"title": "Joe's Garage", "address": "123 Main St", "rating": 4.5, "reviews": 120, "place_id": "p1"},
				{"title": "Joe's Garage II", "address": "456 Oak Ave", "place_id": "p2"}
			]
		}`))
	})

	results, err := client.Search(context.Background(), "Joe's Garage")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "Joe's Garage", results[0].Title)
	assert.Equal(t, "123 Main St", results[0].Address)
	assert.Equal(t, 4.5, results[0].Rating)
	assert.Equal(t, "p2", results[1].PlaceID)
}

func TestSearch_SingleDirectMatch(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"place_results": {"title": "Unique Motors", "address": "1 Only Rd", "gps_coordinates": {"latitude": 40.7, "longitude": -74.0}}
		}`))
	})

	results, err := client.Search(context.Background(), "Unique Motors")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Unique Motors", results[0].Title)
	require.NotNil(t, results[0].GPSCoordinates)
	assert.Equal(t, 40.7, results[0].GPSCoordinates.Latitude)
}

func TestSearch_NoMatchesIsNotAnError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})

	results, err := client.Search(context.Background(), "nowhere")
	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Len(t, results, 0)
}

func TestSearch_ProviderErrorStatus(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.Search(context.Background(), "anything")
	assert.ErrorIs(t, err, models.ErrUpstream)
}

func TestSearch_ProviderErrorBody(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error": "Invalid API key"}`))
	})

	_, err := client.Search(context.Background(), "anything")
	assert.ErrorIs(t, err, models.ErrUpstream)
}

func TestSearch_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // deliberately dead endpoint

	client := NewClient(&config.SearchConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Timeout: time.Second,
	}, slog.Default())

	_, err := client.Search(context.Background(), "anything")
	assert.ErrorIs(t, err, models.ErrUpstream)
}

func TestSearch_MissingCredential(t *testing.T) {
	client := NewClient(&config.SearchConfig{
		APIKey:  "",
		BaseURL: "https://serpapi.com/search",
		Timeout: time.Second,
	}, slog.Default())

	_, err := client.Search(context.Background(), "anything")
	assert.ErrorIs(t, err, ErrNotConfigured)
}
