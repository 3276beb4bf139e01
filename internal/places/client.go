package places

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"onedish-backend/internal/models"
)

// ErrPlaceNotFound is returned when the provider has no result for a place id.
var ErrPlaceNotFound = errors.New("place not found")

// DefaultFields is the field list requested for place details. It matches the
// subset of place data kept in a vendor's place snapshot.
var DefaultFields = []string{
	"place_id", "name", "formatted_address", "geometry", "icon",
	"price_level", "rating", "url", "website", "photo",
}

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(apiKey string) *Client {
	return &Client{
		baseURL: "https://maps.googleapis.com/maps/api/place",
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// NewClientWithBaseURL is used by tests to point the client at a fake server.
func NewClientWithBaseURL(baseURL, apiKey string) *Client {
	c := NewClient(apiKey)
	c.baseURL = strings.TrimSuffix(baseURL, "/")
	return c
}

// Prediction is one autocomplete candidate.
type Prediction struct {
	PlaceID       string `json:"place_id"`
	Description   string `json:"description"`
	MainText      string `json:"main_text,omitempty"`
	SecondaryText string `json:"secondary_text,omitempty"`
}

type autocompleteResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message,omitempty"`
	Predictions  []struct {
		PlaceID              string `json:"place_id"`
		Description          string `json:"description"`
		StructuredFormatting struct {
			MainText      string `json:"main_text"`
			SecondaryText string `json:"secondary_text"`
		} `json:"structured_formatting"`
	} `json:"predictions"`
}

// Autocomplete resolves a free-form query into candidate place summaries.
// Debouncing is the caller's responsibility.
func (c *Client) Autocomplete(ctx context.Context, input string) ([]Prediction, error) {
	params := url.Values{}
	params.Set("input", input)
	params.Set("key", c.apiKey)

	body, err := c.get(ctx, "/autocomplete/json", params)
	if err != nil {
		return nil, err
	}

	var result autocompleteResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode autocomplete response: %w", err)
	}

	switch result.Status {
	case "OK":
	case "ZERO_RESULTS":
		return []Prediction{}, nil
	default:
		return nil, fmt.Errorf("autocomplete failed: %s %s", result.Status, result.ErrorMessage)
	}

	predictions := make([]Prediction, len(result.Predictions))
	for i, p := range result.Predictions {
		predictions[i] = Prediction{
			PlaceID:       p.PlaceID,
			Description:   p.Description,
			MainText:      p.StructuredFormatting.MainText,
			SecondaryText: p.StructuredFormatting.SecondaryText,
		}
	}

	return predictions, nil
}

type detailsResponse struct {
	Status           string      `json:"status"`
	ErrorMessage     string      `json:"error_message,omitempty"`
	HTMLAttributions []string    `json:"html_attributions,omitempty"`
	Result           placeDetail `json:"result"`
}

type placeDetail struct {
	PlaceID          string   `json:"place_id"`
	Name             string   `json:"name"`
	FormattedAddress string   `json:"formatted_address"`
	Icon             string   `json:"icon"`
	PriceLevel       *int     `json:"price_level"`
	Rating           *float64 `json:"rating"`
	URL              string   `json:"url"`
	Website          *string  `json:"website"`
	Geometry         struct {
		Location struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
		Viewport struct {
			Northeast struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"northeast"`
			Southwest struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"southwest"`
		} `json:"viewport"`
	} `json:"geometry"`
	Photos []struct {
		PhotoReference   string   `json:"photo_reference"`
		Width            int      `json:"width"`
		Height           int      `json:"height"`
		HTMLAttributions []string `json:"html_attributions"`
	} `json:"photos"`
}

// Details fetches place details and normalizes them into the internal place
// snapshot shape. Optional fields missing from the provider response come back
// nil rather than zeroed.
func (c *Client) Details(ctx context.Context, placeID string, fields []string) (*models.VendorPlace, error) {
	if len(fields) == 0 {
		fields = DefaultFields
	}

	params := url.Values{}
	params.Set("place_id", placeID)
	params.Set("fields", strings.Join(fields, ","))
	params.Set("key", c.apiKey)

	body, err := c.get(ctx, "/details/json", params)
	if err != nil {
		return nil, err
	}

	var result detailsResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode details response: %w", err)
	}

	switch result.Status {
	case "OK":
	case "NOT_FOUND", "ZERO_RESULTS":
		return nil, ErrPlaceNotFound
	default:
		return nil, fmt.Errorf("place details failed: %s %s", result.Status, result.ErrorMessage)
	}

	return normalizeDetail(result.Result), nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	requestURL := c.baseURL + path + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("places request failed: status %d, body: %s", resp.StatusCode, string(body))
	}

	return body, nil
}
