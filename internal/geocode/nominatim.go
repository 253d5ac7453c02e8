package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/localspot/backend/internal/geo"
	"github.com/localspot/backend/internal/models"
)

// Client talks to a Nominatim-compatible search endpoint. One HTTP request
// per invocation; consecutive requests are paced MinInterval apart because
// the public instance enforces a strict per-second quota.
type Client struct {
	BaseURL     string
	UserAgent   string
	MinInterval time.Duration
	Limit       int
	HTTPClient  *http.Client
	Clock       clockwork.Clock

	mu        sync.Mutex
	lastReqAt time.Time
	cache     map[string]geocodeHit
}

type geocodeHit struct {
	Lat         float64
	Lng         float64
	DisplayName string
	Confidence  float64
}

type nominatimItem struct {
	PlaceID     int64            `json:"place_id"`
	Lat         string           `json:"lat"`
	Lon         string           `json:"lon"`
	Name        string           `json:"name"`
	DisplayName string           `json:"display_name"`
	Class       string           `json:"class"`
	Type        string           `json:"type"`
	Importance  float64          `json:"importance"`
	Address     nominatimAddress `json:"address"`
}

type nominatimAddress struct {
	HouseNumber string `json:"house_number"`
	Road        string `json:"road"`
	Suburb      string `json:"suburb"`
	City        string `json:"city"`
	Town        string `json:"town"`
	Village     string `json:"village"`
	State       string `json:"state"`
	Country     string `json:"country"`
}

// Search performs a free-text lookup and maps candidates to location
// results tagged SourceNominatim. Near-identical upstream entries (same
// place under different administrative names) are collapsed before
// returning.
func (c *Client) Search(ctx context.Context, query string) ([]models.LocationResult, error) {
	if err := c.pace(ctx); err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/search?q=%s&format=json&addressdetails=1&limit=%d",
		c.BaseURL, url.QueryEscape(query), c.Limit)
	items, err := c.fetch(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	results := make([]models.LocationResult, 0, len(items))
	for i, it := range items {
		r, ok := mapItem(it, i)
		if !ok {
			continue
		}
		results = append(results, r)
	}
	return dedupeNear(results), nil
}

// Geocode returns the single best hit for a query, with a per-query cache.
func (c *Client) Geocode(ctx context.Context, query string) (float64, float64, string, float64, error) {
	c.mu.Lock()
	if c.cache == nil {
		c.cache = map[string]geocodeHit{}
	}
	if cached, ok := c.cache[query]; ok {
		c.mu.Unlock()
		return cached.Lat, cached.Lng, cached.DisplayName, cached.Confidence, nil
	}
	c.mu.Unlock()

	if err := c.pace(ctx); err != nil {
		return 0, 0, "", 0, err
	}

	endpoint := fmt.Sprintf("%s/search?q=%s&format=json&addressdetails=1&limit=1",
		c.BaseURL, url.QueryEscape(query))
	items, err := c.fetch(ctx, endpoint)
	if err != nil {
		return 0, 0, "", 0, err
	}
	if len(items) == 0 {
		return 0, 0, "", 0, ErrNotFound
	}

	lat, lng, ok := parseCoordinates(items[0])
	if !ok {
		return 0, 0, "", 0, ErrNotFound
	}
	hit := geocodeHit{
		Lat:         lat,
		Lng:         lng,
		DisplayName: items[0].DisplayName,
		Confidence:  items[0].Importance,
	}

	c.mu.Lock()
	c.cache[query] = hit
	c.mu.Unlock()

	return hit.Lat, hit.Lng, hit.DisplayName, hit.Confidence, nil
}

func (c *Client) fetch(ctx context.Context, endpoint string) ([]nominatimItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.UserAgent)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("nominatim http error: %s", resp.Status)
	}

	var items []nominatimItem
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, err
	}
	return items, nil
}

// pace applies defaults and blocks until MinInterval has elapsed since the
// previous request, or the context is cancelled.
func (c *Client) pace(ctx context.Context) error {
	c.mu.Lock()
	c.setupLocked()
	sleepFor := c.MinInterval - c.Clock.Since(c.lastReqAt)
	if sleepFor > 0 {
		clk := c.Clock
		c.mu.Unlock()
		select {
		case <-clk.After(sleepFor):
		case <-ctx.Done():
			return ctx.Err()
		}
		c.mu.Lock()
	}
	c.lastReqAt = c.Clock.Now()
	c.mu.Unlock()
	return nil
}

func (c *Client) setupLocked() {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}
	if c.BaseURL == "" {
		c.BaseURL = "https://nominatim.openstreetmap.org"
	}
	if c.UserAgent == "" {
		c.UserAgent = "localspot-backend"
	}
	if c.MinInterval <= 0 {
		c.MinInterval = time.Second
	}
	if c.Limit <= 0 {
		c.Limit = 5
	}
	if c.Clock == nil {
		c.Clock = clockwork.NewRealClock()
	}
}

func mapItem(it nominatimItem, i int) (models.LocationResult, bool) {
	lat, lng, ok := parseCoordinates(it)
	if !ok {
		return models.LocationResult{}, false
	}
	id := fmt.Sprintf("nom-%d", it.PlaceID)
	if it.PlaceID == 0 {
		id = fmt.Sprintf("nom-i%d", i)
	}
	return models.LocationResult{
		ID:      id,
		Name:    specificLabel(it),
		Address: generalLabel(it.Address),
		Lat:     lat,
		Lng:     lng,
		Source:  models.SourceNominatim,
	}, true
}

func parseCoordinates(it nominatimItem) (float64, float64, bool) {
	lat, err := strconv.ParseFloat(it.Lat, 64)
	if err != nil {
		return 0, 0, false
	}
	lng, err := strconv.ParseFloat(it.Lon, 64)
	if err != nil {
		return 0, 0, false
	}
	if !geo.ValidCoordinates(lat, lng) {
		return 0, 0, false
	}
	return lat, lng, true
}

// specificLabel picks the most specific name available: the feature name,
// then street address, then locality, then the first display_name segment.
func specificLabel(it nominatimItem) string {
	if it.Name != "" {
		return it.Name
	}
	if it.Address.Road != "" {
		if it.Address.HouseNumber != "" {
			return it.Address.Road + " " + it.Address.HouseNumber
		}
		return it.Address.Road
	}
	if loc := locality(it.Address); loc != "" {
		return loc
	}
	if i := strings.Index(it.DisplayName, ","); i > 0 {
		return strings.TrimSpace(it.DisplayName[:i])
	}
	return it.DisplayName
}

// generalLabel renders the administrative hierarchy (city, state, country).
func generalLabel(addr nominatimAddress) string {
	parts := []string{}
	if loc := locality(addr); loc != "" {
		parts = append(parts, loc)
	}
	if addr.State != "" {
		parts = append(parts, addr.State)
	}
	if addr.Country != "" {
		parts = append(parts, addr.Country)
	}
	return strings.Join(parts, ", ")
}

func locality(addr nominatimAddress) string {
	switch {
	case addr.City != "":
		return addr.City
	case addr.Town != "":
		return addr.Town
	case addr.Village != "":
		return addr.Village
	}
	return ""
}

// dedupeNear drops entries whose name or coordinates duplicate an earlier
// one; the upstream geocoder regularly returns the same place twice under
// different administrative names.
func dedupeNear(results []models.LocationResult) []models.LocationResult {
	out := make([]models.LocationResult, 0, len(results))
	for _, r := range results {
		dup := false
		for _, kept := range out {
			if models.SamePlace(kept, r) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, r)
		}
	}
	return out
}
