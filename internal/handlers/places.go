package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"onedish-backend/internal/models"
	"onedish-backend/internal/places"
)

// PlaceSearcher is the place gateway surface the handlers depend on.
type PlaceSearcher interface {
	Autocomplete(ctx context.Context, input string) ([]places.Prediction, error)
	Details(ctx context.Context, placeID string, fields []string) (*models.VendorPlace, error)
}

type PlacesHandler struct {
	places PlaceSearcher
	logger *slog.Logger
}

func NewPlacesHandler(client PlaceSearcher, logger *slog.Logger) *PlacesHandler {
	return &PlacesHandler{
		places: client,
		logger: logger,
	}
}

// Autocomplete godoc
// @Summary     Place autocomplete proxy
// @Description Keeps the places API key server-side; debouncing is the
// @Description caller's job.
// @Produce     json
// @Security    Bearer
// @Param       query query string true "Search text"
// @Success     200 {object} models.APIResponse
// @Failure     400 {object} models.APIResponse
// @Router      /admin/places/autocomplete [get]
func (h *PlacesHandler) Autocomplete(c *gin.Context) {
	query := c.Query("query")
	if query == "" {
		respondError(c, http.StatusBadRequest, "You need to provide a search query")
		return
	}

	predictions, err := h.places.Autocomplete(c.Request.Context(), query)
	if err != nil {
		h.logger.Error("could not autocomplete places", "query", query, "err", err)
		respondError(c, http.StatusBadRequest, "Could not search places")
		return
	}

	respondData(c, predictions)
}

// Details godoc
// @Summary     Place details as a vendor place snapshot
// @Produce     json
// @Security    Bearer
// @Param       placeId path string true "Place id"
// @Success     200 {object} models.APIResponse
// @Failure     404 {object} models.APIResponse
// @Router      /admin/places/{placeId} [get]
func (h *PlacesHandler) Details(c *gin.Context) {
	placeID := c.Param("placeId")

	place, err := h.places.Details(c.Request.Context(), placeID, nil)
	if errors.Is(err, places.ErrPlaceNotFound) {
		respondError(c, http.StatusNotFound, "Could not find place")
		return
	}
	if err != nil {
		h.logger.Error("could not get place details", "place_id", placeID, "err", err)
		respondError(c, http.StatusBadRequest, "Could not get place details")
		return
	}

	respondData(c, place)
}
