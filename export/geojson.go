// Copyright 2025 The placesbot Authors
// SPDX-License-Identifier: Apache-2.0

package export

import (
	"fmt"
	"io"

	"github.com/jcodagnone/placesbot/places"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// DefaultGeoJSONFile is the file name used by the geojson command.
const DefaultGeoJSONFile = "places.geojson"

// FeatureCollection converts places into Point features.
func FeatureCollection(ps []places.Place) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	for _, p := range ps {
		f := geojson.NewFeature(orb.Point{p.Point.Lng, p.Point.Lat})
		f.Properties["name"] = p.Name

		if p.Address != "" {
			f.Properties["address"] = p.Address
		}

		if p.Method != "" {
			f.Properties["method"] = p.Method
		}

		if p.Cell != 0 {
			f.Properties["h3"] = p.Cell.String()
		}

		fc.Append(f)
	}

	return fc
}

// WriteGeoJSON writes places as a GeoJSON FeatureCollection.
func WriteGeoJSON(w io.Writer, ps []places.Place) error {
	if len(ps) == 0 {
		return ErrNoPlaces
	}

	b, err := FeatureCollection(ps).MarshalJSON()
	if err != nil {
		return fmt.Errorf("encoding GeoJSON: %w", err)
	}

	_, err = w.Write(b)

	return err
}
