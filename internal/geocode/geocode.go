package geocode

import (
	"context"
	"errors"
	"strings"
)

var ErrNotFound = errors.New("geocode not found")

// Geocoder resolves free text to a single best coordinate. Used by the
// business regeocode flow.
type Geocoder interface {
	Geocode(ctx context.Context, query string) (lat float64, lng float64, displayName string, confidence float64, err error)
}

// BuildQuery joins non-empty address parts into a geocodable string.
func BuildQuery(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ", ")
}

// ShouldGeocode reports whether a business needs a geocoding pass.
func ShouldGeocode(hasCoordinates bool, force bool) bool {
	if force {
		return true
	}
	return !hasCoordinates
}
