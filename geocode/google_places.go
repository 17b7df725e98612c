// Copyright 2025 The placesbot Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"context"
	"net/url"

	"github.com/jcodagnone/placesbot/spatial"
)

type findPlaceResponse struct {
	Candidates []struct {
		PlaceID string `json:"place_id"`
		Name    string `json:"name"`
	} `json:"candidates"`
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
}

type placeDetailsResponse struct {
	Result struct {
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"result"`
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
}

// FindPlace searches a place by free text and returns the identifier of the
// first candidate.
func (c *Client) FindPlace(ctx context.Context, query string) (string, error) {
	params := url.Values{}
	params.Set("input", query)
	params.Set("inputtype", "textquery")
	params.Set("fields", "place_id,name")

	var resp findPlaceResponse
	if err := c.getJSON(ctx, "/place/findplacefromtext/json", params, &resp); err != nil {
		return "", err
	}

	if err := ClassifyStatus(resp.Status, resp.ErrorMessage); err != nil {
		return "", err
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].PlaceID == "" {
		return "", &Error{Type: ErrorTypeNotFound, Message: "no place candidates for " + query}
	}

	return resp.Candidates[0].PlaceID, nil
}

// PlaceDetails fetches the geometry of a place identifier.
func (c *Client) PlaceDetails(ctx context.Context, placeID string) (*spatial.Point, error) {
	params := url.Values{}
	params.Set("place_id", placeID)
	params.Set("fields", "geometry/location")

	var resp placeDetailsResponse
	if err := c.getJSON(ctx, "/place/details/json", params, &resp); err != nil {
		return nil, err
	}

	if err := ClassifyStatus(resp.Status, resp.ErrorMessage); err != nil {
		return nil, err
	}

	return &spatial.Point{
		Lat: resp.Result.Geometry.Location.Lat,
		Lng: resp.Result.Geometry.Location.Lng,
	}, nil
}
