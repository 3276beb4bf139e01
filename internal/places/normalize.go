package places

import "onedish-backend/internal/models"

// normalizeDetail maps the provider's native result shape onto the internal
// place snapshot. Pure and stateless; missing optional fields stay nil.
func normalizeDetail(detail placeDetail) *models.VendorPlace {
	place := &models.VendorPlace{
		PlaceID:          detail.PlaceID,
		Name:             detail.Name,
		FormattedAddress: detail.FormattedAddress,
		Icon:             detail.Icon,
		PriceLevel:       detail.PriceLevel,
		Rating:           detail.Rating,
		Website:          detail.Website,
		URL:              detail.URL,
		Geometry: models.PlaceGeometry{
			Location: models.PlaceLocation{
				Lat: detail.Geometry.Location.Lat,
				Lng: detail.Geometry.Location.Lng,
			},
			Viewport: models.PlaceViewport{
				South: detail.Geometry.Viewport.Southwest.Lat,
				West:  detail.Geometry.Viewport.Southwest.Lng,
				North: detail.Geometry.Viewport.Northeast.Lat,
				East:  detail.Geometry.Viewport.Northeast.Lng,
			},
		},
	}

	for _, photo := range detail.Photos {
		place.Photos = append(place.Photos, models.PlacePhoto{
			Reference:        photo.PhotoReference,
			Width:            photo.Width,
			Height:           photo.Height,
			HTMLAttributions: photo.HTMLAttributions,
		})
	}

	return place
}
