package osm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/localspot/backend/internal/geo"
	"github.com/localspot/backend/internal/models"
)

// Client queries an Overpass-compatible interpreter for named points of
// interest around a reference location.
type Client struct {
	BaseURL    string
	UserAgent  string
	RadiusM    int
	Limit      int
	HTTPClient *http.Client
}

type overpassResponse struct {
	Elements []overpassElement `json:"elements"`
}

type overpassElement struct {
	Type   string            `json:"type"`
	ID     int64             `json:"id"`
	Lat    float64           `json:"lat"`
	Lon    float64           `json:"lon"`
	Center *overpassCenter   `json:"center"`
	Tags   map[string]string `json:"tags"`
}

type overpassCenter struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// FetchPOIs returns POIs whose name matches query within the configured
// radius of ref. A reference location is structurally required here; the
// engine skips this adapter when none is known.
func (c *Client) FetchPOIs(ctx context.Context, query string, ref models.Coordinates) ([]models.LocationResult, error) {
	baseURL := c.BaseURL
	if baseURL == "" {
		baseURL = "https://overpass-api.de/api/interpreter"
	}
	client := c.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	radius := c.RadiusM
	if radius <= 0 {
		radius = 4000
	}
	limit := c.Limit
	if limit <= 0 {
		limit = 20
	}

	body := url.Values{"data": {buildQuery(query, ref, radius, limit)}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL, strings.NewReader(body.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("overpass http error: %s", resp.Status)
	}

	var parsed overpassResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]models.LocationResult, 0, len(parsed.Elements))
	for _, el := range parsed.Elements {
		r, ok := mapElement(el)
		if !ok {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// buildQuery assembles an Overpass QL statement matching named nodes and
// ways case-insensitively around the reference point.
func buildQuery(text string, ref models.Coordinates, radiusM, limit int) string {
	pattern := regexp.QuoteMeta(strings.TrimSpace(text))
	around := fmt.Sprintf("around:%d,%.6f,%.6f", radiusM, ref.Lat, ref.Lng)
	return fmt.Sprintf(
		`[out:json][timeout:8];(node["name"~"%s",i](%s);way["name"~"%s",i](%s););out center %d;`,
		pattern, around, pattern, around, limit,
	)
}

func mapElement(el overpassElement) (models.LocationResult, bool) {
	name := el.Tags["name"]
	if name == "" {
		return models.LocationResult{}, false
	}
	lat, lng := el.Lat, el.Lon
	if el.Center != nil {
		// Ways carry their centroid instead of node coordinates.
		lat, lng = el.Center.Lat, el.Center.Lon
	}
	if (lat == 0 && lng == 0) || !geo.ValidCoordinates(lat, lng) {
		return models.LocationResult{}, false
	}
	return models.LocationResult{
		ID:      fmt.Sprintf("osm-%s-%d", el.Type, el.ID),
		Name:    name,
		Address: elementAddress(el.Tags),
		Lat:     lat,
		Lng:     lng,
		Source:  models.SourceOSM,
		Icon:    iconFor(el.Tags),
	}, true
}

func elementAddress(tags map[string]string) string {
	street := tags["addr:street"]
	if street != "" {
		if num := tags["addr:housenumber"]; num != "" {
			street += " " + num
		}
	}
	parts := []string{}
	if street != "" {
		parts = append(parts, street)
	}
	if city := tags["addr:city"]; city != "" {
		parts = append(parts, city)
	}
	return strings.Join(parts, ", ")
}
