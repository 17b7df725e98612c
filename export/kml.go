// Copyright 2025 The placesbot Authors
// SPDX-License-Identifier: Apache-2.0

// Package export renders a set of located places as KML, GeoJSON or an
// interactive HTML map. Exporters only read the places they are given.
package export

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jcodagnone/placesbot/places"
	"github.com/twpayne/go-kml/v3"
)

// ErrNoPlaces is returned when there is nothing to export.
var ErrNoPlaces = errors.New("no places to export")

// DefaultKMLFile is the file name used by the export command.
const DefaultKMLFile = "pigeon_places.kml"

// WriteKML writes a KML 2.2 document with one Placemark per place.
func WriteKML(w io.Writer, ps []places.Place) error {
	if len(ps) == 0 {
		return ErrNoPlaces
	}

	children := []kml.Element{kml.Name("placesbot")}

	for _, p := range ps {
		children = append(children, kml.Placemark(
			kml.Name(p.Name),
			kml.Description(description(p)),
			kml.Point(
				kml.Coordinates(kml.Coordinate{Lon: p.Point.Lng, Lat: p.Point.Lat}),
			),
		))
	}

	if err := kml.KML(kml.Document(children...)).WriteIndent(w, "", "  "); err != nil {
		return fmt.Errorf("writing KML: %w", err)
	}

	return nil
}

func description(p places.Place) string {
	var parts []string

	if p.Address != "" {
		parts = append(parts, p.Address)
	}

	if p.Cell != 0 {
		parts = append(parts, "H3 "+p.Cell.String())
	}

	return strings.Join(parts, " | ")
}
