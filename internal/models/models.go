package models

import (
	"math"
	"strings"
)

// Source identifies which adapter produced a search result.
type Source string

const (
	SourceBusiness  Source = "business"
	SourceOSM       Source = "osm"
	SourceNominatim Source = "nominatim"
)

// Coordinates is a WGS84 point.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// LocationResult is the unit returned by the location search engine.
// IDs are unique within a single response but not stable across queries.
type LocationResult struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Address    string   `json:"address,omitempty"`
	Lat        float64  `json:"lat"`
	Lng        float64  `json:"lng"`
	Source     Source   `json:"source"`
	Icon       string   `json:"icon,omitempty"`
	DistanceKm *float64 `json:"distance_km,omitempty"`

	// RawScore orders results inside the engine and is never serialized.
	RawScore float64 `json:"-"`
}

// Business is one entry of the internal directory.
type Business struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Address  string  `json:"address"`
	City     string  `json:"city"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
}

// HasCoordinates reports whether the business carries a usable position.
// A (0,0) pair is treated as unset, matching the CSV import convention.
func (b Business) HasCoordinates() bool {
	return !(b.Lat == 0 && b.Lng == 0)
}

// CoordEpsilon is the coordinate slack (~11 m per axis) under which two
// results are considered the same place.
const CoordEpsilon = 1e-4

// SamePlace reports whether two results describe the same place: identical
// display names (case-insensitive) or coordinates within CoordEpsilon on
// both axes.
func SamePlace(a, b LocationResult) bool {
	if a.Name != "" && strings.EqualFold(a.Name, b.Name) {
		return true
	}
	return math.Abs(a.Lat-b.Lat) <= CoordEpsilon && math.Abs(a.Lng-b.Lng) <= CoordEpsilon
}
