package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"stayfinder/internal/domain"
)

type SearchService struct {
	store    domain.HotelStore
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewSearchService(s domain.HotelStore, c domain.Cache, ttl time.Duration) *SearchService {
	return &SearchService{store: s, cache: c, cacheTTL: ttl}
}

// HotelsCacheKey names the cached candidate set for a city, or the whole catalog when city is empty.
func HotelsCacheKey(city string) string {
	if city == "" {
		return "hotels:all"
	}
	return "hotels:city:" + city
}

// Search retrieves candidates (by city when given, otherwise the full catalog),
// filters them and orders them. The full ranked set is returned.
func (s *SearchService) Search(ctx context.Context, q domain.SearchQuery) ([]domain.Hotel, error) {
	city := ""
	if q.City != nil {
		city = strings.TrimSpace(*q.City)
	}
	hotels, err := s.candidates(ctx, city)
	if err != nil {
		return nil, fmt.Errorf("fetch hotels: %w", err)
	}
	out := FilterHotels(hotels, q)
	RankHotels(out, q.SortBy, q.SortOrder)
	return out, nil
}

func (s *SearchService) candidates(ctx context.Context, city string) ([]domain.Hotel, error) {
	key := HotelsCacheKey(city)
	if s.cache != nil {
		var cached []domain.Hotel
		if ok, _ := s.cache.Get(ctx, key, &cached); ok {
			return cached, nil
		}
	}

	var (
		hotels []domain.Hotel
		err    error
	)
	if city != "" {
		hotels, err = s.store.HotelsByCity(ctx, city)
	} else {
		hotels, err = s.store.AllHotels(ctx)
	}
	if err != nil {
		return nil, err
	}
	if s.cache != nil && s.cacheTTL > 0 {
		_ = s.cache.Set(ctx, key, hotels, int(s.cacheTTL.Seconds()))
	}
	return hotels, nil
}

// FilterHotels keeps hotels that satisfy every supplied filter. The input slice is not modified.
func FilterHotels(hotels []domain.Hotel, q domain.SearchQuery) []domain.Hotel {
	want := make([]string, 0, len(q.Amenities))
	for _, a := range q.Amenities {
		if a = strings.ToLower(strings.TrimSpace(a)); a != "" {
			want = append(want, a)
		}
	}

	out := make([]domain.Hotel, 0, len(hotels))
	for _, h := range hotels {
		if q.MaxPrice != nil && h.PricePerNight > *q.MaxPrice {
			continue
		}
		if q.MinRating != nil && h.Rating < *q.MinRating {
			continue
		}
		if !hasAmenities(h.Amenities, want) {
			continue
		}
		out = append(out, h)
	}
	return out
}

func hasAmenities(have []string, want []string) bool {
	if len(want) == 0 {
		return true
	}
	set := make(map[string]struct{}, len(have))
	for _, a := range have {
		set[strings.ToLower(a)] = struct{}{}
	}
	for _, a := range want {
		if _, ok := set[a]; !ok {
			return false
		}
	}
	return true
}
