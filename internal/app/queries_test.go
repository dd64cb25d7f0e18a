package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stayfinder/internal/app"
	"stayfinder/internal/domain"
)

func catalog() []domain.Hotel {
	return []domain.Hotel{
		{HotelID: "h1", City: "Lisbon", Name: "Alfama Loft", Rating: 4.5, PricePerNight: 140, DistanceFromCenterKm: 0.8, Amenities: []string{"WiFi", "Breakfast"}},
		{HotelID: "h2", City: "Lisbon", Name: "Belem Suites", Rating: 3.9, PricePerNight: 95, DistanceFromCenterKm: 6.2, Amenities: []string{"wifi", "Pool"}},
		{HotelID: "h3", City: "Lisbon", Name: "Chiado Grand", Rating: 4.8, PricePerNight: 310, DistanceFromCenterKm: 0.3, Amenities: []string{"WiFi", "Pool", "Spa"}},
		{HotelID: "h4", City: "Porto", Name: "Ribeira View", Rating: 4.2, PricePerNight: 120, DistanceFromCenterKm: 1.1},
	}
}

func ids(hs []domain.Hotel) []string {
	out := make([]string, len(hs))
	for i, h := range hs {
		out[i] = h.HotelID
	}
	return out
}

func TestSearch_CityLookupThenCacheHit(t *testing.T) {
	store := &fakeHotelStore{hotels: catalog()}
	cache := &fakeCache{}
	svc := app.NewSearchService(store, cache, 10*time.Minute)
	ctx := context.Background()

	first, err := svc.Search(ctx, domain.SearchQuery{City: ptr("Lisbon"), SortBy: "rating"})
	require.NoError(t, err)
	assert.Equal(t, []string{"h3", "h1", "h2"}, ids(first))
	assert.Equal(t, 1, store.byCity)
	assert.Equal(t, 0, store.scans)
	assert.Contains(t, cache.store, app.HotelsCacheKey("Lisbon"))

	second, err := svc.Search(ctx, domain.SearchQuery{City: ptr("Lisbon"), SortBy: "rating"})
	require.NoError(t, err)
	assert.Equal(t, ids(first), ids(second))
	assert.Equal(t, 1, store.byCity, "second search must be served from cache")
}

func TestSearch_NoCityScansCatalog(t *testing.T) {
	store := &fakeHotelStore{hotels: catalog()}
	svc := app.NewSearchService(store, nil, 0)

	out, err := svc.Search(context.Background(), domain.SearchQuery{})
	require.NoError(t, err)
	assert.Len(t, out, 4)
	assert.Equal(t, 1, store.scans)
	assert.Equal(t, 0, store.byCity)
}

func TestSearch_StoreFault(t *testing.T) {
	store := &fakeHotelStore{err: errors.New("connection reset")}
	svc := app.NewSearchService(store, &fakeCache{}, time.Minute)

	_, err := svc.Search(context.Background(), domain.SearchQuery{City: ptr("Lisbon")})
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrValidation)
}

func TestFilterHotels(t *testing.T) {
	hs := catalog()
	tests := []struct {
		name string
		q    domain.SearchQuery
		want []string
	}{
		{"no filters", domain.SearchQuery{}, []string{"h1", "h2", "h3", "h4"}},
		{"max price inclusive", domain.SearchQuery{MaxPrice: ptr(140.0)}, []string{"h1", "h2", "h4"}},
		{"min rating inclusive", domain.SearchQuery{MinRating: ptr(4.5)}, []string{"h1", "h3"}},
		{"explicit zero max price", domain.SearchQuery{MaxPrice: ptr(0.0)}, []string{}},
		{"amenity case-insensitive", domain.SearchQuery{Amenities: []string{"WIFI"}}, []string{"h1", "h2", "h3"}},
		{"amenities are a conjunction", domain.SearchQuery{Amenities: []string{"wifi", "pool"}}, []string{"h2", "h3"}},
		{"missing amenity", domain.SearchQuery{Amenities: []string{"Gym"}}, []string{}},
		{"combined", domain.SearchQuery{MaxPrice: ptr(200.0), MinRating: ptr(4.0), Amenities: []string{"wifi"}}, []string{"h1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(app.FilterHotels(hs, tt.q)))
		})
	}
}

func TestRankHotels_SingleKey(t *testing.T) {
	hs := catalog()
	app.RankHotels(hs, "price", "asc")
	for i := 1; i < len(hs); i++ {
		assert.LessOrEqual(t, hs[i-1].PricePerNight, hs[i].PricePerNight)
	}

	app.RankHotels(hs, "distance", "")
	for i := 1; i < len(hs); i++ {
		assert.GreaterOrEqual(t, hs[i-1].DistanceFromCenterKm, hs[i].DistanceFromCenterKm)
	}
}

func TestRankHotels_StableOnTies(t *testing.T) {
	hs := []domain.Hotel{
		{HotelID: "a", Rating: 4}, {HotelID: "b", Rating: 5}, {HotelID: "c", Rating: 4},
	}
	app.RankHotels(hs, "rating", "desc")
	assert.Equal(t, []string{"b", "a", "c"}, ids(hs))
}

func TestRankHotels_Weighted(t *testing.T) {
	hs := []domain.Hotel{
		{HotelID: "far-expensive", Rating: 3, PricePerNight: 200, DistanceFromCenterKm: 5},
		{HotelID: "close-cheap", Rating: 5, PricePerNight: 100, DistanceFromCenterKm: 1},
	}
	app.RankHotels(hs, "", "")
	assert.Equal(t, []string{"close-cheap", "far-expensive"}, ids(hs))
}

func TestCompositeScores_Degenerate(t *testing.T) {
	single := []domain.Hotel{{HotelID: "only", Rating: 4.2, PricePerNight: 80, DistanceFromCenterKm: 2}}
	parts := app.CompositeParts(single)
	require.Len(t, parts, 1)
	assert.Equal(t, app.ScoreParts{Price: 0.5, Rating: 0.5, Distance: 0.5}, parts[0])
	assert.InDelta(t, 0.5, app.CompositeScores(single)[0], 1e-9)

	// identical ratings collapse only that dimension
	same := []domain.Hotel{
		{HotelID: "a", Rating: 4, PricePerNight: 100, DistanceFromCenterKm: 1},
		{HotelID: "b", Rating: 4, PricePerNight: 200, DistanceFromCenterKm: 2},
	}
	for _, p := range app.CompositeParts(same) {
		assert.Equal(t, 0.5, p.Rating)
	}
}

func TestCompositeParts_RawAttributeSpan(t *testing.T) {
	hs := []domain.Hotel{
		{HotelID: "a", Rating: 3, PricePerNight: 100, DistanceFromCenterKm: 1},
		{HotelID: "b", Rating: 4, PricePerNight: 150, DistanceFromCenterKm: 2},
		{HotelID: "c", Rating: 5, PricePerNight: 200, DistanceFromCenterKm: 5},
	}
	want := []app.ScoreParts{
		{Price: -1.95, Rating: 0, Distance: -0.5},
		{Price: -2.45, Rating: 0.5, Distance: -0.75},
		{Price: -2.95, Rating: 1, Distance: -1.5},
	}
	parts := app.CompositeParts(hs)
	require.Len(t, parts, len(want))
	for i, w := range want {
		assert.InDelta(t, w.Price, parts[i].Price, 1e-9, "price %s", hs[i].HotelID)
		assert.InDelta(t, w.Rating, parts[i].Rating, 1e-9, "rating %s", hs[i].HotelID)
		assert.InDelta(t, w.Distance, parts[i].Distance, 1e-9, "distance %s", hs[i].HotelID)
	}

	scores := app.CompositeScores(hs)
	assert.InDelta(t, 0.4*-1.95+0.4*0+0.2*-0.5, scores[0], 1e-9)
	assert.InDelta(t, 0.4*-2.95+0.4*1+0.2*-1.5, scores[2], 1e-9)
}
