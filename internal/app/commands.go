package app

import (
	"context"
	"fmt"

	"stayfinder/internal/domain"
)

// CatalogService writes hotel reference data. The API never calls it; the seeder does.
type CatalogService struct {
	store domain.HotelStore
	cache domain.Cache
}

func NewCatalogService(s domain.HotelStore, cache domain.Cache) *CatalogService {
	return &CatalogService{store: s, cache: cache}
}

// LoadHotel validates and upserts one hotel, then evicts the cached candidate
// sets that could contain it (its city and the full catalog).
func (s *CatalogService) LoadHotel(ctx context.Context, h domain.Hotel) error {
	if err := h.Validate(); err != nil {
		return fmt.Errorf("hotel %s/%s: %w", h.HotelID, h.City, err)
	}
	if h.Amenities == nil {
		h.Amenities = []string{}
	}
	if h.Images == nil {
		h.Images = []string{}
	}
	if err := s.store.PutHotel(ctx, h); err != nil {
		return fmt.Errorf("put hotel %s/%s: %w", h.HotelID, h.City, err)
	}
	if s.cache != nil {
		s.invalidate(ctx, h.City)
	}
	return nil
}

func (s *CatalogService) invalidate(ctx context.Context, city string) {
	_ = s.cache.Del(ctx, HotelsCacheKey(city))
	_ = s.cache.Del(ctx, HotelsCacheKey(""))
}
