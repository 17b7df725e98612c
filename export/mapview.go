// Copyright 2025 The placesbot Authors
// SPDX-License-Identifier: Apache-2.0

package export

import (
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"

	"github.com/jcodagnone/placesbot/places"
	"github.com/pkg/browser"
)

// DefaultMapFile is the file name used by the map command.
const DefaultMapFile = "ai_places_map.html"

type marker struct {
	Name    string  `json:"name"`
	Address string  `json:"address,omitempty"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
}

var mapTemplate = template.Must(template.New("map").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css">
<script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
<style>html, body, #map { height: 100%; margin: 0; }</style>
</head>
<body>
<div id="map"></div>
<script>
var markers = {{.Markers}};
var map = L.map('map').setView([{{.Center.Lat}}, {{.Center.Lng}}], {{.Zoom}});
L.tileLayer('https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png', {
  maxZoom: 19,
  attribution: '&copy; OpenStreetMap contributors'
}).addTo(map);
markers.forEach(function (m) {
  var popup = document.createElement('div');
  var title = document.createElement('b');
  title.textContent = m.name;
  popup.appendChild(title);
  if (m.address) {
    popup.appendChild(document.createElement('br'));
    popup.appendChild(document.createTextNode(m.address));
  }
  L.marker([m.lat, m.lng]).addTo(map).bindPopup(popup);
});
</script>
</body>
</html>
`))

// WriteMap writes a self contained Leaflet page with one marker per place,
// centered on the first place.
func WriteMap(w io.Writer, ps []places.Place) error {
	if len(ps) == 0 {
		return ErrNoPlaces
	}

	markers := make([]marker, 0, len(ps))
	for _, p := range ps {
		markers = append(markers, marker{Name: p.Name, Address: p.Address, Lat: p.Point.Lat, Lng: p.Point.Lng})
	}

	return mapTemplate.Execute(w, struct {
		Title   string
		Markers []marker
		Center  marker
		Zoom    int
	}{
		Title:   fmt.Sprintf("%d places", len(ps)),
		Markers: markers,
		Center:  markers[0],
		Zoom:    Zoom(ps),
	})
}

// Zoom picks a Leaflet zoom level from the farthest distance between the
// first place and the rest.
func Zoom(ps []places.Place) int {
	if len(ps) < 2 {
		return 15
	}

	var spread float64

	for _, p := range ps[1:] {
		spread = max(spread, ps[0].Point.HaversineDistance(&p.Point))
	}

	switch {
	case spread < 1_000:
		return 15
	case spread < 5_000:
		return 13
	case spread < 20_000:
		return 12
	case spread < 100_000:
		return 10
	case spread < 500_000:
		return 7
	default:
		return 4
	}
}

// OpenMap writes the map page to path and opens it in the default browser.
func OpenMap(path string, ps []places.Place) (string, error) {
	if len(ps) == 0 {
		return "", ErrNoPlaces
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	f, err := os.Create(abs)
	if err != nil {
		return "", fmt.Errorf("creating map file: %w", err)
	}

	if err := WriteMap(f, ps); err != nil {
		_ = f.Close()

		return "", err
	}

	if err := f.Close(); err != nil {
		return "", err
	}

	if err := browser.OpenFile(abs); err != nil {
		return abs, fmt.Errorf("opening browser: %w", err)
	}

	return abs, nil
}

// WriteFile creates path and fills it with write.
func WriteFile(path string, ps []places.Place, write func(io.Writer, []places.Place) error) error {
	if len(ps) == 0 {
		return ErrNoPlaces
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := write(f, ps); err != nil {
		_ = f.Close()

		return err
	}

	return f.Close()
}
