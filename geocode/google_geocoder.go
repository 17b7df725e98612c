// Copyright 2025 The placesbot Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"context"
	"net/url"

	"github.com/jcodagnone/placesbot/spatial"
)

// Location types reported by the Geocoding API, from most to least precise.
const (
	LocationTypeRooftop           = "ROOFTOP"
	LocationTypeRangeInterpolated = "RANGE_INTERPOLATED"
	LocationTypeGeometricCenter   = "GEOMETRIC_CENTER"
	LocationTypeApproximate       = "APPROXIMATE"
)

// GeocodingResult represents the best match of a Geocoding API lookup.
type GeocodingResult struct {
	Point            spatial.Point
	LocationType     string
	FormattedAddress string
	PlaceID          string
}

// Precise reports whether the match is fine-grained enough to be used as is.
// Geometric centers and approximations are considered coarse.
func (r *GeocodingResult) Precise() bool {
	switch r.LocationType {
	case LocationTypeGeometricCenter, LocationTypeApproximate:
		return false
	default:
		return true
	}
}

type googleMapsResponse struct {
	Results []struct {
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
			LocationType string `json:"location_type"` // ROOFTOP, RANGE_INTERPOLATED, GEOMETRIC_CENTER, APPROXIMATE
		} `json:"geometry"`
		FormattedAddress string `json:"formatted_address"`
		PlaceID          string `json:"place_id"`
	} `json:"results"`
	Status       string `json:"status"` // OK, ZERO_RESULTS, etc.
	ErrorMessage string `json:"error_message"`
}

// Geocode resolves a free-text address with the Geocoding API and returns
// the first result.
func (c *Client) Geocode(ctx context.Context, address string) (*GeocodingResult, error) {
	params := url.Values{}
	params.Set("address", address)

	var gmResp googleMapsResponse
	if err := c.getJSON(ctx, "/geocode/json", params, &gmResp); err != nil {
		return nil, err
	}

	if err := ClassifyStatus(gmResp.Status, gmResp.ErrorMessage); err != nil {
		return nil, err
	}

	if len(gmResp.Results) == 0 {
		return nil, &Error{Type: ErrorTypeNotFound, Message: "no results found for " + address}
	}

	result := gmResp.Results[0]

	return &GeocodingResult{
		Point: spatial.Point{
			Lat: result.Geometry.Location.Lat,
			Lng: result.Geometry.Location.Lng,
		},
		LocationType:     result.Geometry.LocationType,
		FormattedAddress: result.FormattedAddress,
		PlaceID:          result.PlaceID,
	}, nil
}
