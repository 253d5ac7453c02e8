package geo

import (
	"math"
	"sort"
	"sync"

	"github.com/dhconnelly/rtreego"
)

const (
	rectTolerance = 0.0001
	minChildren   = 25
	maxChildren   = 50
	dimensions    = 2
	kmPerDegree   = 111.32
)

// Point is an indexed geographical point.
type Point struct {
	ID  string
	Lat float64
	Lng float64
}

type spatialItem struct {
	*Point
	rect *rtreego.Rect
}

func (si *spatialItem) Bounds() *rtreego.Rect {
	return si.rect
}

// Index is a thread-safe R-tree over points, backing the nearby-businesses
// lookup.
type Index struct {
	mu   sync.RWMutex
	tree *rtreego.Rtree
}

func NewIndex() *Index {
	return &Index{tree: rtreego.NewTree(dimensions, minChildren, maxChildren)}
}

// Insert adds points to the index. Points with out-of-range coordinates are
// skipped.
func (ix *Index) Insert(points []*Point) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	for _, p := range points {
		if p == nil || !ValidCoordinates(p.Lat, p.Lng) {
			continue
		}
		rect := rtreego.Point{p.Lat, p.Lng}.ToRect(rectTolerance)
		ix.tree.Insert(&spatialItem{p, rect})
	}
}

// WithinRadius returns all indexed points within radiusKm of the given
// coordinate, nearest first.
func (ix *Index) WithinRadius(lat, lng, radiusKm float64) []*Point {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	latDelta := radiusKm / kmPerDegree
	lngDelta := latDelta
	if cosLat := math.Cos(degreesToRadians(lat)); cosLat > 0.01 {
		lngDelta = latDelta / cosLat
	}
	rect, err := rtreego.NewRect(
		rtreego.Point{lat - latDelta, lng - lngDelta},
		[]float64{2 * latDelta, 2 * lngDelta},
	)
	if err != nil {
		return nil
	}

	var out []*Point
	for _, item := range ix.tree.SearchIntersect(rect) {
		p := item.(*spatialItem).Point
		if DistanceKm(lat, lng, p.Lat, p.Lng) <= radiusKm {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return DistanceKm(lat, lng, out[i].Lat, out[i].Lng) < DistanceKm(lat, lng, out[j].Lat, out[j].Lng)
	})
	return out
}
