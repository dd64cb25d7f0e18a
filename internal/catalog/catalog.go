// Package catalog reads hotel reference data files for the seeder.
package catalog

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"stayfinder/internal/domain"
)

// File is the on-disk catalog layout:
//
//	hotels:
//	  - hotel_id: h-1
//	    city: Lisbon
//	    ...
type File struct {
	Hotels []domain.Hotel `yaml:"hotels"`
}

func Load(path string) ([]domain.Hotel, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}

// Decode parses a catalog and rejects unknown keys and duplicate (hotel_id, city) pairs.
// Field validation is left to the catalog service.
func Decode(r io.Reader) ([]domain.Hotel, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var cf File
	if err := dec.Decode(&cf); err != nil {
		if errors.Is(err, io.EOF) {
			return []domain.Hotel{}, nil
		}
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	seen := make(map[string]int, len(cf.Hotels))
	for i, h := range cf.Hotels {
		h.City = strings.TrimSpace(h.City)
		h.HotelID = strings.TrimSpace(h.HotelID)
		cf.Hotels[i] = h

		k := h.HotelID + "\x00" + h.City
		if j, dup := seen[k]; dup {
			return nil, fmt.Errorf("decode catalog: hotel %s/%s listed twice (entries %d and %d)", h.HotelID, h.City, j+1, i+1)
		}
		seen[k] = i
	}
	if cf.Hotels == nil {
		cf.Hotels = []domain.Hotel{}
	}
	return cf.Hotels, nil
}
