// Copyright 2025 The placesbot Authors
// SPDX-License-Identifier: Apache-2.0

// Package places turns model answers into located places: it extracts
// candidate (name, address) records from free text and resolves them to
// coordinates through an ordered chain of geocoding strategies.
package places

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jcodagnone/placesbot/spatial"
	"github.com/uber/h3-go/v4"
)

// ErrDuplicate is returned by Set.Add when the name is already present.
var ErrDuplicate = errors.New("place already present")

// Candidate is an unresolved (name, address) pair extracted from model text.
type Candidate struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

// Place is a candidate successfully mapped to coordinates.
type Place struct {
	Name      string        `json:"name"`
	Address   string        `json:"address,omitempty"`
	Point     spatial.Point `json:"point"`
	Method    string        `json:"method,omitempty"`    // geocode, place_details
	Precision string        `json:"precision,omitempty"` // upstream location_type
	Cell      h3.Cell       `json:"-"`
}

// NewPlace builds a validated Place and indexes it in its H3 cell.
func NewPlace(name, address string, p spatial.Point) (Place, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Place{}, errors.New("place name can't be empty")
	}

	if err := p.Validate(); err != nil {
		return Place{}, fmt.Errorf("invalid coordinates for %q: %w", name, err)
	}

	cell, err := p.Cell(spatial.CellResolution)
	if err != nil {
		return Place{}, err
	}

	return Place{
		Name:    name,
		Address: strings.TrimSpace(address),
		Point:   p,
		Cell:    cell,
	}, nil
}

// Set is the insertion-ordered collection of located places of a session,
// deduplicated by exact (trimmed) name.
type Set struct {
	places []Place
	index  map[string]int
}

// NewSet returns an empty Set.
func NewSet() *Set {
	return &Set{index: make(map[string]int)}
}

// Has reports whether a place with the given name is already present.
func (s *Set) Has(name string) bool {
	_, ok := s.index[strings.TrimSpace(name)]

	return ok
}

// Add appends a place, rejecting duplicates and out of range coordinates.
func (s *Set) Add(p Place) error {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return errors.New("place name can't be empty")
	}

	if err := p.Point.Validate(); err != nil {
		return err
	}

	if _, ok := s.index[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicate, name)
	}

	p.Name = name
	s.index[name] = len(s.places)
	s.places = append(s.places, p)

	return nil
}

// Len returns the number of places.
func (s *Set) Len() int {
	return len(s.places)
}

// Places returns a copy of the places in insertion order.
func (s *Set) Places() []Place {
	ret := make([]Place, len(s.places))
	copy(ret, s.places)

	return ret
}
