package app

import (
	"sort"
	"strings"

	"stayfinder/internal/domain"
)

// Composite score weights.
const (
	weightPrice    = 0.4
	weightRating   = 0.4
	weightDistance = 0.2
)

// RankHotels sorts hotels in place. sortBy rating|price|distance sorts on that
// attribute (desc unless order is "asc"); anything else ranks by composite score,
// highest first. Sorting is stable, so equal keys keep retrieval order.
func RankHotels(hotels []domain.Hotel, sortBy, order string) {
	asc := strings.EqualFold(order, domain.SortAsc)

	var key func(domain.Hotel) float64
	switch strings.ToLower(sortBy) {
	case domain.SortByRating:
		key = func(h domain.Hotel) float64 { return h.Rating }
	case domain.SortByPrice:
		key = func(h domain.Hotel) float64 { return h.PricePerNight }
	case domain.SortByDistance:
		key = func(h domain.Hotel) float64 { return h.DistanceFromCenterKm }
	default:
		rankByScore(hotels)
		return
	}

	sort.SliceStable(hotels, func(i, j int) bool {
		if asc {
			return key(hotels[i]) < key(hotels[j])
		}
		return key(hotels[i]) > key(hotels[j])
	})
}

func rankByScore(hotels []domain.Hotel) {
	scores := CompositeScores(hotels)
	type scored struct {
		h     domain.Hotel
		score float64
	}
	tmp := make([]scored, len(hotels))
	for i := range hotels {
		tmp[i] = scored{hotels[i], scores[i]}
	}
	sort.SliceStable(tmp, func(i, j int) bool { return tmp[i].score > tmp[j].score })
	for i := range tmp {
		hotels[i] = tmp[i].h
	}
}

// span is the [min,max] of one attribute over a candidate set.
type span struct{ min, max float64 }

func spanOf(hotels []domain.Hotel, attr func(domain.Hotel) float64) span {
	if len(hotels) == 0 {
		return span{}
	}
	s := span{min: attr(hotels[0]), max: attr(hotels[0])}
	for _, h := range hotels[1:] {
		v := attr(h)
		if v < s.min {
			s.min = v
		}
		if v > s.max {
			s.max = v
		}
	}
	return s
}

// normalize rescales v against the attribute's span; 0.5 when the span is degenerate.
func (s span) normalize(v float64) float64 {
	if s.min == s.max {
		return 0.5
	}
	return (v - s.min) / (s.max - s.min)
}

// ScoreParts holds the normalized dimensions of a composite score.
type ScoreParts struct {
	Price, Rating, Distance float64
}

func (p ScoreParts) Total() float64 {
	return weightPrice*p.Price + weightRating*p.Rating + weightDistance*p.Distance
}

// CompositeParts computes the normalized dimensions for each hotel. The spans are taken
// over the raw attributes while price and distance enter as (5 - price) and (-distance).
func CompositeParts(hotels []domain.Hotel) []ScoreParts {
	price := spanOf(hotels, func(h domain.Hotel) float64 { return h.PricePerNight })
	rating := spanOf(hotels, func(h domain.Hotel) float64 { return h.Rating })
	dist := spanOf(hotels, func(h domain.Hotel) float64 { return h.DistanceFromCenterKm })

	out := make([]ScoreParts, len(hotels))
	for i, h := range hotels {
		out[i] = ScoreParts{
			Price:    price.normalize(5 - h.PricePerNight),
			Rating:   rating.normalize(h.Rating),
			Distance: dist.normalize(-h.DistanceFromCenterKm),
		}
	}
	return out
}

func CompositeScores(hotels []domain.Hotel) []float64 {
	parts := CompositeParts(hotels)
	out := make([]float64, len(parts))
	for i, p := range parts {
		out[i] = p.Total()
	}
	return out
}
