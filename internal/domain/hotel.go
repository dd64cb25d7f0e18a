package domain

import "unicode/utf8"

// Hotel is catalog reference data keyed by (HotelID, City). Read-only to the API.
type Hotel struct {
	HotelID              string   `json:"hotel_id" yaml:"hotel_id"`
	City                 string   `json:"city" yaml:"city"`
	Name                 string   `json:"name" yaml:"name"`
	Address              string   `json:"address" yaml:"address"`
	Rating               float64  `json:"rating" yaml:"rating"` // 0..5
	PricePerNight        float64  `json:"price_per_night" yaml:"price_per_night"`
	Amenities            []string `json:"amenities" yaml:"amenities"`
	DistanceFromCenterKm float64  `json:"distance_from_center_km" yaml:"distance_from_center_km"`
	AvailableRooms       int      `json:"available_rooms" yaml:"available_rooms"`
	Images               []string `json:"images" yaml:"images"`
	Description          string   `json:"description" yaml:"description"`
}

// Sort keys accepted by SearchQuery.SortBy. Anything else selects weighted ranking.
const (
	SortByRating   = "rating"
	SortByPrice    = "price"
	SortByDistance = "distance"

	SortAsc  = "asc"
	SortDesc = "desc"
)

// SearchQuery holds the optional search filters. A nil pointer means "not supplied".
type SearchQuery struct {
	City      *string
	MaxPrice  *float64
	MinRating *float64
	Amenities []string
	SortBy    string
	SortOrder string // asc|desc, desc when empty
}

const maxHotelKeyLen = 255

// Validate checks the catalog invariants of a hotel record.
func (h Hotel) Validate() error {
	switch {
	case h.HotelID == "":
		return Invalid("hotel_id is required")
	case h.City == "":
		return Invalid("city is required")
	case utf8.RuneCountInString(h.HotelID) > maxHotelKeyLen || utf8.RuneCountInString(h.City) > maxHotelKeyLen:
		return Invalid("hotel_id and city must be at most 255 characters")
	case h.Rating < 0 || h.Rating > 5:
		return Invalid("rating must be between 0 and 5")
	case h.PricePerNight < 0:
		return Invalid("price_per_night must be >= 0")
	case h.DistanceFromCenterKm < 0:
		return Invalid("distance_from_center_km must be >= 0")
	case h.AvailableRooms < 0:
		return Invalid("available_rooms must be >= 0")
	}
	return nil
}
