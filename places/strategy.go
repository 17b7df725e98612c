// Copyright 2025 The placesbot Authors
// SPDX-License-Identifier: Apache-2.0

package places

import (
	"context"
	"fmt"
	"strings"

	"github.com/jcodagnone/placesbot/geocode"
	"github.com/jcodagnone/placesbot/spatial"
)

// DefaultHints bias the upstream geocoder toward landmark results.
var DefaultHints = []string{
	"tourist attraction",
	"famous place",
	"verified Google Maps location",
}

// BuildQuery concatenates name, address and hints into a search query.
func BuildQuery(c Candidate, hints []string) string {
	parts := make([]string, 0, 2+len(hints))

	for _, s := range append([]string{c.Name, c.Address}, hints...) {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}

	return strings.Join(parts, ", ")
}

// Fix is the answer of a strategy: a point and how much it can be trusted.
type Fix struct {
	Point     spatial.Point
	Precise   bool
	Precision string
	Method    string
}

// Strategy is one tier of the resolution chain.
type Strategy interface {
	Name() string
	Locate(ctx context.Context, query string) (*Fix, error)
}

// Geocoder is the subset of geocode.Client used by GeocodeStrategy.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (*geocode.GeocodingResult, error)
}

// PlaceFinder is the subset of geocode.Client used by PlaceDetailsStrategy.
type PlaceFinder interface {
	FindPlace(ctx context.Context, query string) (string, error)
	PlaceDetails(ctx context.Context, placeID string) (*spatial.Point, error)
}

// GeocodeStrategy queries the Geocoding API. Geometric centers and
// approximate matches are reported as imprecise fixes.
type GeocodeStrategy struct {
	Geocoder Geocoder
}

// Name implements Strategy.
func (s *GeocodeStrategy) Name() string { return "geocode" }

// Locate implements Strategy.
func (s *GeocodeStrategy) Locate(ctx context.Context, query string) (*Fix, error) {
	res, err := s.Geocoder.Geocode(ctx, query)
	if err != nil {
		return nil, err
	}

	return &Fix{
		Point:     res.Point,
		Precise:   res.Precise(),
		Precision: res.LocationType,
		Method:    s.Name(),
	}, nil
}

// PlaceDetailsStrategy finds a place identifier by free text and reads the
// geometry from its detail record.
type PlaceDetailsStrategy struct {
	Finder PlaceFinder
}

// Name implements Strategy.
func (s *PlaceDetailsStrategy) Name() string { return "place_details" }

// Locate implements Strategy.
func (s *PlaceDetailsStrategy) Locate(ctx context.Context, query string) (*Fix, error) {
	placeID, err := s.Finder.FindPlace(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("finding place: %w", err)
	}

	p, err := s.Finder.PlaceDetails(ctx, placeID)
	if err != nil {
		return nil, fmt.Errorf("place details %s: %w", placeID, err)
	}

	return &Fix{
		Point:     *p,
		Precise:   true,
		Precision: "PLACE_DETAILS",
		Method:    s.Name(),
	}, nil
}

// GoogleStrategies returns the default two tier chain backed by client.
func GoogleStrategies(client *geocode.Client) []Strategy {
	return []Strategy{
		&GeocodeStrategy{Geocoder: client},
		&PlaceDetailsStrategy{Finder: client},
	}
}
