package places_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onedish-backend/internal/places"
)

func newPlacesServer(t *testing.T, handler http.HandlerFunc) *places.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return places.NewClientWithBaseURL(server.URL, "test-key")
}

func TestAutocomplete(t *testing.T) {
	client := newPlacesServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/autocomplete/json", r.URL.Path)
		assert.Equal(t, "taqueria", r.URL.Query().Get("input"))
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		w.Write([]byte(`{
			"status": "OK",
			"predictions": [
				{
					"place_id": "place-1",
					"description": "Taqueria El Sol, Mission St, San Francisco",
					"structured_formatting": {
						"main_text": "Taqueria El Sol",
						"secondary_text": "Mission St, San Francisco"
					}
				},
				{
					"place_id": "place-2",
					"description": "Taqueria La Luna, Valencia St, San Francisco"
				}
			]
		}`))
	})

	predictions, err := client.Autocomplete(context.Background(), "taqueria")
	require.NoError(t, err)
	require.Len(t, predictions, 2)
	assert.Equal(t, "place-1", predictions[0].PlaceID)
	assert.Equal(t, "Taqueria El Sol", predictions[0].MainText)
	assert.Equal(t, "Mission St, San Francisco", predictions[0].SecondaryText)
	assert.Equal(t, "place-2", predictions[1].PlaceID)
}

func TestAutocomplete_ZeroResults(t *testing.T) {
	client := newPlacesServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "ZERO_RESULTS"}`))
	})

	predictions, err := client.Autocomplete(context.Background(), "zzzz")
	require.NoError(t, err)
	assert.NotNil(t, predictions)
	assert.Empty(t, predictions)
}

func TestAutocomplete_ProviderError(t *testing.T) {
	client := newPlacesServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "REQUEST_DENIED", "error_message": "The provided API key is invalid."}`))
	})

	_, err := client.Autocomplete(context.Background(), "taqueria")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REQUEST_DENIED")
}

func TestDetails(t *testing.T) {
	client := newPlacesServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/details/json", r.URL.Path)
		assert.Equal(t, "place-1", r.URL.Query().Get("place_id"))
		assert.NotEmpty(t, r.URL.Query().Get("fields"))
		w.Write([]byte(`{
			"status": "OK",
			"result": {
				"place_id": "place-1",
				"name": "Taqueria El Sol",
				"formatted_address": "12 Mission St, San Francisco, CA",
				"rating": 4.5,
				"geometry": {
					"location": {"lat": 37.76, "lng": -122.42},
					"viewport": {
						"northeast": {"lat": 37.77, "lng": -122.41},
						"southwest": {"lat": 37.75, "lng": -122.43}
					}
				},
				"photos": [
					{"photo_reference": "ref-1", "width": 800, "height": 600}
				]
			}
		}`))
	})

	place, err := client.Details(context.Background(), "place-1", nil)
	require.NoError(t, err)

	assert.Equal(t, "place-1", place.PlaceID)
	assert.Equal(t, "Taqueria El Sol", place.Name)
	assert.Equal(t, 37.76, place.Geometry.Location.Lat)
	assert.Equal(t, 37.75, place.Geometry.Viewport.South)
	assert.Equal(t, -122.43, place.Geometry.Viewport.West)
	assert.Equal(t, 37.77, place.Geometry.Viewport.North)
	assert.Equal(t, -122.41, place.Geometry.Viewport.East)

	// Present optionals come through, absent ones stay nil.
	require.NotNil(t, place.Rating)
	assert.Equal(t, 4.5, *place.Rating)
	assert.Nil(t, place.PriceLevel)
	assert.Nil(t, place.Website)

	require.Len(t, place.Photos, 1)
	assert.Equal(t, "ref-1", place.Photos[0].Reference)
}

func TestDetails_NotFound(t *testing.T) {
	client := newPlacesServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "NOT_FOUND"}`))
	})

	_, err := client.Details(context.Background(), "missing", nil)
	assert.ErrorIs(t, err, places.ErrPlaceNotFound)
}

func TestDetails_HTTPError(t *testing.T) {
	client := newPlacesServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.Details(context.Background(), "place-1", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}
