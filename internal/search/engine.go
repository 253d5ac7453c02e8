package search

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/localspot/backend/internal/geo"
	"github.com/localspot/backend/internal/models"
	"github.com/localspot/backend/internal/observability"
)

// MinQueryLen is the trimmed query length below which no adapter is invoked.
const MinQueryLen = 2

const (
	defaultMaxResults     = 8
	defaultAdapterTimeout = 6 * time.Second
)

// DefaultTrustOrder resolves cross-source duplicates: the internal directory
// is authoritative over external data, and a live POI listing beats a
// generic geocoder hit.
var DefaultTrustOrder = []models.Source{
	models.SourceBusiness,
	models.SourceOSM,
	models.SourceNominatim,
}

// DirectoryMatcher scores the internal directory. Synchronous, no I/O.
type DirectoryMatcher func(query string, ref *models.Coordinates) []models.LocationResult

// POIFetcher queries a nearby-POI service. Requires a reference location.
type POIFetcher func(ctx context.Context, query string, ref models.Coordinates) ([]models.LocationResult, error)

// GeocodeSearcher performs a free-text geocoding lookup.
type GeocodeSearcher func(ctx context.Context, query string) ([]models.LocationResult, error)

// Engine fans a query out to the three sources, merges and ranks the
// combined set, and returns a bounded list. The only mutable state is the
// reference location; every Search call owns its own buffers, so concurrent
// calls do not interfere.
type Engine struct {
	matchDirectory DirectoryMatcher
	fetchPOIs      POIFetcher
	geocode        GeocodeSearcher

	trustOrder     []models.Source
	maxResults     int
	adapterTimeout time.Duration
	logger         zerolog.Logger
	metrics        *observability.Metrics

	mu  sync.RWMutex
	ref *models.Coordinates
}

// Options tune the engine; zero values fall back to defaults.
type Options struct {
	TrustOrder     []models.Source
	MaxResults     int
	AdapterTimeout time.Duration
	Logger         zerolog.Logger
	Metrics        *observability.Metrics
}

func New(dir DirectoryMatcher, pois POIFetcher, geocoder GeocodeSearcher, opts Options) *Engine {
	e := &Engine{
		matchDirectory: dir,
		fetchPOIs:      pois,
		geocode:        geocoder,
		trustOrder:     opts.TrustOrder,
		maxResults:     opts.MaxResults,
		adapterTimeout: opts.AdapterTimeout,
		logger:         opts.Logger,
		metrics:        opts.Metrics,
	}
	if len(e.trustOrder) == 0 {
		e.trustOrder = DefaultTrustOrder
	}
	if e.maxResults <= 0 {
		e.maxResults = defaultMaxResults
	}
	if e.adapterTimeout <= 0 {
		e.adapterTimeout = defaultAdapterTimeout
	}
	if e.metrics == nil {
		e.metrics = observability.NewMetricsForTesting()
	}
	return e
}

// UpdateLocation sets the reference location used by subsequent searches.
// Last write wins; out-of-range coordinates are ignored.
func (e *Engine) UpdateLocation(lat, lng float64) {
	if !geo.ValidCoordinates(lat, lng) {
		return
	}
	e.mu.Lock()
	e.ref = &models.Coordinates{Lat: lat, Lng: lng}
	e.mu.Unlock()
}

// Location returns a copy of the current reference location, or nil.
func (e *Engine) Location() *models.Coordinates {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.ref == nil {
		return nil
	}
	ref := *e.ref
	return &ref
}

// Search is the sole query entry point. Queries under MinQueryLen resolve
// to an empty list without touching any adapter; a cancelled context
// resolves to an empty list rather than an error; a single failed adapter
// degrades to an empty contribution rather than failing the call.
func (e *Engine) Search(ctx context.Context, query string) ([]models.LocationResult, error) {
	q := strings.TrimSpace(query)
	if len([]rune(q)) < MinQueryLen {
		return []models.LocationResult{}, nil
	}

	start := time.Now()
	ref := e.Location()

	local := e.matchDirectory(q, ref)

	var poiResults, geoResults []models.LocationResult
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if ref == nil {
			return nil
		}
		poiResults = e.callAdapter(gctx, models.SourceOSM, func(cctx context.Context) ([]models.LocationResult, error) {
			return e.fetchPOIs(cctx, q, *ref)
		})
		return nil
	})
	g.Go(func() error {
		geoResults = e.callAdapter(gctx, models.SourceNominatim, func(cctx context.Context) ([]models.LocationResult, error) {
			return e.geocode(cctx, q)
		})
		return nil
	})
	_ = g.Wait()

	if ctx.Err() != nil {
		// The caller abandoned this search; nothing gathered is surfaced.
		return []models.LocationResult{}, nil
	}

	merged := e.merge(q, ref, local, poiResults, geoResults)
	if len(merged) > e.maxResults {
		merged = merged[:e.maxResults]
	}

	e.metrics.Searches.Inc()
	e.metrics.SearchDuration.Observe(time.Since(start).Seconds())
	e.metrics.AdapterResults.WithLabelValues(string(models.SourceBusiness)).Add(float64(len(local)))
	e.metrics.AdapterResults.WithLabelValues(string(models.SourceOSM)).Add(float64(len(poiResults)))
	e.metrics.AdapterResults.WithLabelValues(string(models.SourceNominatim)).Add(float64(len(geoResults)))
	return merged, nil
}

// callAdapter runs one network adapter under its own timeout and degrades
// every failure to an empty contribution.
func (e *Engine) callAdapter(ctx context.Context, source models.Source, call func(context.Context) ([]models.LocationResult, error)) []models.LocationResult {
	cctx, cancel := context.WithTimeout(ctx, e.adapterTimeout)
	defer cancel()

	results, err := call(cctx)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			e.logger.Warn().Err(err).Str("source", string(source)).Msg("search adapter degraded")
			e.metrics.AdapterFailures.WithLabelValues(string(source)).Inc()
		}
		return nil
	}
	return results
}

// merge validates, scores, deduplicates, and orders the combined candidate
// set. Groups are visited in trust order, so discovery order favors the
// authoritative source on full ties.
func (e *Engine) merge(query string, ref *models.Coordinates, groups ...[]models.LocationResult) []models.LocationResult {
	var all []models.LocationResult
	for _, group := range groups {
		for _, r := range group {
			if !geo.ValidCoordinates(r.Lat, r.Lng) {
				continue
			}
			r.RawScore = textScore(query, r.Name)
			if ref != nil && r.DistanceKm == nil {
				d := geo.DistanceKm(ref.Lat, ref.Lng, r.Lat, r.Lng)
				r.DistanceKm = &d
			}
			all = append(all, r)
		}
	}

	deduped := dedupe(all, e.trustOrder)
	sortResults(deduped, e.trustOrder)
	if deduped == nil {
		deduped = []models.LocationResult{}
	}
	return deduped
}
