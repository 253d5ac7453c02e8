package geocode

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/localspot/backend/internal/models"
)

func testClient(baseURL string) *Client {
	return &Client{
		BaseURL:     baseURL,
		UserAgent:   "localspot-test",
		MinInterval: time.Nanosecond,
	}
}

func TestSearchMapsItems(t *testing.T) {
	items := []map[string]any{
		{
			"place_id":     101,
			"lat":          "43.6532",
			"lon":          "-79.3832",
			"name":         "CN Tower",
			"display_name": "CN Tower, 290 Bremner Boulevard, Toronto, Ontario, Canada",
			"importance":   0.8,
			"address": map[string]any{
				"city": "Toronto", "state": "Ontario", "country": "Canada",
			},
		},
		{
			"place_id":     102,
			"lat":          "43.7000",
			"lon":          "-79.4000",
			"display_name": "Yonge Street, Toronto, Ontario, Canada",
			"address": map[string]any{
				"road": "Yonge Street", "house_number": "250",
				"city": "Toronto", "state": "Ontario", "country": "Canada",
			},
		},
		{
			"place_id": 103,
			"lat":      "not-a-number",
			"lon":      "0",
		},
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("addressdetails") != "1" {
			t.Errorf("expected addressdetails=1, got %s", r.URL.RawQuery)
		}
		if r.Header.Get("User-Agent") != "localspot-test" {
			t.Errorf("missing user agent")
		}
		_ = json.NewEncoder(w).Encode(items)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	results, err := c.Search(context.Background(), "cn tower")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results (malformed dropped), got %d", len(results))
	}
	if results[0].Name != "CN Tower" {
		t.Fatalf("expected feature name, got %s", results[0].Name)
	}
	if results[0].Address != "Toronto, Ontario, Canada" {
		t.Fatalf("unexpected general label: %s", results[0].Address)
	}
	if results[0].Source != models.SourceNominatim {
		t.Fatalf("unexpected source: %s", results[0].Source)
	}
	if results[1].Name != "Yonge Street 250" {
		t.Fatalf("expected street label, got %s", results[1].Name)
	}
}

func TestSearchCollapsesNearDuplicates(t *testing.T) {
	items := []map[string]any{
		{"place_id": 1, "lat": "43.65320", "lon": "-79.38320", "name": "Union Station", "display_name": "Union Station, Toronto"},
		{"place_id": 2, "lat": "43.65325", "lon": "-79.38322", "name": "Union Station GO", "display_name": "Union Station, Toronto, Ontario"},
		{"place_id": 3, "lat": "40.0", "lon": "-75.0", "name": "union station", "display_name": "Union Station, elsewhere"},
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(items)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	results, err := c.Search(context.Background(), "union station")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Item 2 duplicates item 1 by coordinates; item 3 duplicates item 1 by
	// case-insensitive name.
	if len(results) != 1 {
		t.Fatalf("expected 1 result after dedup, got %d", len(results))
	}
	if results[0].ID != "nom-1" {
		t.Fatalf("expected first-seen entry kept, got %s", results[0].ID)
	}
}

func TestSearchHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	if _, err := c.Search(context.Background(), "anything"); err == nil {
		t.Fatalf("expected error on 502")
	}
}

func TestGeocodeCachesResult(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		_ = json.NewEncoder(w).Encode([]map[string]any{
			{"place_id": 9, "lat": "51.1605", "lon": "71.4704", "display_name": "Astana, Kazakhstan", "importance": 0.72},
		})
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	for i := 0; i < 2; i++ {
		lat, lng, display, conf, err := c.Geocode(context.Background(), "astana")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if lat != 51.1605 || lng != 71.4704 {
			t.Fatalf("unexpected coordinates: %f %f", lat, lng)
		}
		if display != "Astana, Kazakhstan" || conf != 0.72 {
			t.Fatalf("unexpected fields: %s %f", display, conf)
		}
	}
	if calls != 1 {
		t.Fatalf("expected 1 upstream call, got %d", calls)
	}
}

func TestGeocodeNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]map[string]any{})
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	if _, _, _, _, err := c.Geocode(context.Background(), "nowhere at all"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPaceBlocksUntilInterval(t *testing.T) {
	clk := clockwork.NewFakeClock()
	c := &Client{
		BaseURL:     "http://example.invalid",
		MinInterval: time.Second,
		Clock:       clk,
	}

	if err := c.pace(context.Background()); err != nil {
		t.Fatalf("first pace should not block: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- c.pace(context.Background())
	}()

	clk.BlockUntil(1)
	select {
	case <-done:
		t.Fatalf("second pace returned before the interval elapsed")
	default:
	}

	clk.Advance(time.Second)
	if err := <-done; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPaceCancelled(t *testing.T) {
	clk := clockwork.NewFakeClock()
	c := &Client{MinInterval: time.Second, Clock: clk}
	if err := c.pace(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- c.pace(ctx)
	}()
	clk.BlockUntil(1)
	cancel()
	if err := <-done; err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestBuildQuery(t *testing.T) {
	if q := BuildQuery(" Starbucks ", "", "100 King St W", "Toronto"); q != "Starbucks, 100 King St W, Toronto" {
		t.Fatalf("unexpected query: %s", q)
	}
}

func TestShouldGeocode(t *testing.T) {
	if ShouldGeocode(true, false) {
		t.Fatalf("expected skip when coordinates exist")
	}
	if !ShouldGeocode(true, true) {
		t.Fatalf("expected geocode when forced")
	}
	if !ShouldGeocode(false, false) {
		t.Fatalf("expected geocode when coordinates missing")
	}
}
