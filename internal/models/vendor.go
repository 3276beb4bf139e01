package models

import "time"

// Tier is a vendor's subscription level. It bounds how many OneDish
// entries the vendor may showcase.
type Tier string

const (
	TierFirst  Tier = "first"
	TierSecond Tier = "second"
	TierThird  Tier = "third"
)

func (t Tier) Valid() bool {
	switch t {
	case TierFirst, TierSecond, TierThird:
		return true
	}
	return false
}

// AllowedOneDishes returns the maximum number of OneDish entries for the tier.
func (t Tier) AllowedOneDishes() int {
	switch t {
	case TierSecond:
		return 6
	case TierThird:
		return 12
	case TierFirst:
		return 1
	}
	return 0
}

// OneDish is a single showcased menu entry belonging to exactly one vendor.
// URL points at the persisted image in object storage.
type OneDish struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url"`
}

// VendorPhoto is a single image reference for a vendor.
type VendorPhoto struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type PlaceLocation struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type PlaceViewport struct {
	South float64 `json:"south"`
	West  float64 `json:"west"`
	North float64 `json:"north"`
	East  float64 `json:"east"`
}

type PlaceGeometry struct {
	Location PlaceLocation `json:"location"`
	Viewport PlaceViewport `json:"viewport"`
}

// PlacePhoto references a photo of the place held by the places provider.
// The reference is resolved to a fetchable URL by the caller.
type PlacePhoto struct {
	Reference        string   `json:"reference,omitempty"`
	Width            int      `json:"width,omitempty"`
	Height           int      `json:"height,omitempty"`
	HTMLAttributions []string `json:"html_attributions,omitempty"`
}

// VendorPlace is a point-in-time snapshot of place data attached to a vendor.
// It is copied once at selection time and never re-synced. Optional fields are
// nil when the provider did not report them.
type VendorPlace struct {
	PlaceID          string        `json:"place_id"`
	Name             string        `json:"name"`
	FormattedAddress string        `json:"formatted_address"`
	Geometry         PlaceGeometry `json:"geometry"`
	Icon             string        `json:"icon,omitempty"`
	PriceLevel       *int          `json:"price_level,omitempty"`
	Rating           *float64      `json:"rating,omitempty"`
	Website          *string       `json:"website,omitempty"`
	URL              string        `json:"url,omitempty"`
	HTMLAttributions []string      `json:"html_attributions,omitempty"`
	Photos           []PlacePhoto  `json:"photos,omitempty"`
}

// Vendor is a restaurant managed through the admin console.
type Vendor struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Address     string       `json:"address"`
	Tier        Tier         `json:"tier"`
	Place       *VendorPlace `json:"place,omitempty"`
	VendorImage *VendorPhoto `json:"vendorImage,omitempty"`
	OneDishes   []OneDish    `json:"oneDishes"`
	Created     time.Time    `json:"created"`
	Updated     time.Time    `json:"updated"`
}

// VendorWithoutID carries the editable fields of a vendor for create and
// update calls. The store assigns the id on creation.
type VendorWithoutID struct {
	Name        string       `json:"name"`
	Address     string       `json:"address"`
	Tier        Tier         `json:"tier"`
	Place       *VendorPlace `json:"place,omitempty"`
	VendorImage *VendorPhoto `json:"vendorImage,omitempty"`
	OneDishes   []OneDish    `json:"oneDishes"`
}

// Validate reports one message per violated rule so the caller can surface
// them all at once. An empty slice means the payload is acceptable.
func (v VendorWithoutID) Validate() []string {
	var msgs []string
	if v.Name == "" {
		msgs = append(msgs, "You need to provide a name")
	}
	if v.Address == "" {
		msgs = append(msgs, "You need to provide an address")
	}
	if !v.Tier.Valid() {
		msgs = append(msgs, "You need to select a tier")
	}
	if limit := v.Tier.AllowedOneDishes(); v.Tier.Valid() && len(v.OneDishes) > limit {
		msgs = append(msgs, "Too many OneDishes for the selected tier")
	}
	return msgs
}
