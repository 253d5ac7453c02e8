package directory

import (
	"sort"
	"strings"
	"sync"

	"github.com/localspot/backend/internal/geo"
	"github.com/localspot/backend/internal/models"
)

const (
	matchCap    = 5
	minQueryLen = 2

	scorePrefix    = 100.0
	scoreSubstring = 60.0
	scoreSecondary = 30.0

	// proximityCap keeps the distance bonus below the gap between any two
	// text-score tiers, so a closer weak match never outranks a stronger one.
	proximityCap = 25.0
)

// Directory is the in-memory business listing. It backs the highest-trust
// search source and the nearby-businesses map lookup.
type Directory struct {
	mu         sync.RWMutex
	businesses []models.Business
	byID       map[string]int
	index      *geo.Index
}

func New(businesses []models.Business) *Directory {
	d := &Directory{}
	d.Replace(businesses)
	return d
}

// Replace swaps the full business list and rebuilds the spatial index.
// Businesses without coordinates are kept (they can be regeocoded later)
// but stay out of the index and of match results.
func (d *Directory) Replace(businesses []models.Business) {
	byID := make(map[string]int, len(businesses))
	index := geo.NewIndex()
	points := make([]*geo.Point, 0, len(businesses))
	for i, b := range businesses {
		byID[b.ID] = i
		if b.HasCoordinates() && geo.ValidCoordinates(b.Lat, b.Lng) {
			points = append(points, &geo.Point{ID: b.ID, Lat: b.Lat, Lng: b.Lng})
		}
	}
	index.Insert(points)

	d.mu.Lock()
	d.businesses = businesses
	d.byID = byID
	d.index = index
	d.mu.Unlock()
}

// Businesses returns a copy of the current listing.
func (d *Directory) Businesses() []models.Business {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]models.Business, len(d.businesses))
	copy(out, d.businesses)
	return out
}

func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.businesses)
}

// UpdateCoordinates sets the position of one business and reindexes.
func (d *Directory) UpdateCoordinates(id string, lat, lng float64) bool {
	if !geo.ValidCoordinates(lat, lng) {
		return false
	}
	d.mu.Lock()
	i, ok := d.byID[id]
	if !ok {
		d.mu.Unlock()
		return false
	}
	d.businesses[i].Lat = lat
	d.businesses[i].Lng = lng
	updated := make([]models.Business, len(d.businesses))
	copy(updated, d.businesses)
	d.mu.Unlock()

	d.Replace(updated)
	return true
}

// Match scores the listing against the query. Synchronous, no I/O: prefix
// matches on the name beat substring matches, which beat category/address
// hits; proximity to ref is a bounded secondary factor. At most matchCap
// results, best first.
func (d *Directory) Match(query string, ref *models.Coordinates) []models.LocationResult {
	q := strings.ToLower(strings.TrimSpace(query))
	if len([]rune(q)) < minQueryLen {
		return []models.LocationResult{}
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	var out []models.LocationResult
	for _, b := range d.businesses {
		if !b.HasCoordinates() || !geo.ValidCoordinates(b.Lat, b.Lng) {
			continue
		}
		score := matchScore(b, q)
		if score == 0 {
			continue
		}
		r := models.LocationResult{
			ID:       "biz-" + b.ID,
			Name:     b.Name,
			Address:  joinAddress(b),
			Lat:      b.Lat,
			Lng:      b.Lng,
			Source:   models.SourceBusiness,
			RawScore: score,
		}
		if ref != nil {
			dist := geo.DistanceKm(ref.Lat, ref.Lng, b.Lat, b.Lng)
			r.DistanceKm = &dist
			r.RawScore += proximityBonus(dist)
		}
		out = append(out, r)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].RawScore > out[j].RawScore
	})
	if len(out) > matchCap {
		out = out[:matchCap]
	}
	return out
}

// Nearby returns businesses within radiusKm of ref, nearest first.
func (d *Directory) Nearby(ref models.Coordinates, radiusKm float64, limit int) []models.LocationResult {
	d.mu.RLock()
	index := d.index
	d.mu.RUnlock()
	if index == nil {
		return []models.LocationResult{}
	}

	points := index.WithinRadius(ref.Lat, ref.Lng, radiusKm)
	out := make([]models.LocationResult, 0, len(points))
	for _, p := range points {
		b, ok := d.byIDCopy(p.ID)
		if !ok {
			continue
		}
		dist := geo.DistanceKm(ref.Lat, ref.Lng, b.Lat, b.Lng)
		out = append(out, models.LocationResult{
			ID:         "biz-" + b.ID,
			Name:       b.Name,
			Address:    joinAddress(b),
			Lat:        b.Lat,
			Lng:        b.Lng,
			Source:     models.SourceBusiness,
			DistanceKm: &dist,
		})
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

func (d *Directory) byIDCopy(id string) (models.Business, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	i, ok := d.byID[id]
	if !ok {
		return models.Business{}, false
	}
	return d.businesses[i], true
}

func matchScore(b models.Business, q string) float64 {
	name := strings.ToLower(b.Name)
	switch {
	case strings.HasPrefix(name, q):
		return scorePrefix
	case strings.Contains(name, q):
		return scoreSubstring
	case strings.Contains(strings.ToLower(b.Category), q),
		strings.Contains(strings.ToLower(b.Address), q),
		strings.Contains(strings.ToLower(b.City), q):
		return scoreSecondary
	}
	return 0
}

func proximityBonus(km float64) float64 {
	bonus := proximityCap - km
	if bonus < 0 {
		return 0
	}
	return bonus
}

func joinAddress(b models.Business) string {
	parts := []string{}
	if strings.TrimSpace(b.Address) != "" {
		parts = append(parts, strings.TrimSpace(b.Address))
	}
	if strings.TrimSpace(b.City) != "" {
		parts = append(parts, strings.TrimSpace(b.City))
	}
	return strings.Join(parts, ", ")
}
