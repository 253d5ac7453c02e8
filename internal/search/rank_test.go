package search

import (
	"testing"

	"github.com/localspot/backend/internal/models"
)

func TestTextScore(t *testing.T) {
	tests := []struct {
		query string
		name  string
		want  float64
	}{
		{"star", "Starbucks", scorePrefix},
		{"STAR", "starbucks", scorePrefix},
		{"bucks", "Starbucks", scoreSubstring},
		{"cof", "The Coffee Mill", scorePartial},
		{"xyz", "Starbucks", scoreWeak},
		{"", "Starbucks", scoreWeak},
		{"  star  ", "Starbucks", scorePrefix},
	}
	for _, tt := range tests {
		if got := textScore(tt.query, tt.name); got != tt.want {
			t.Errorf("textScore(%q, %q) = %v, want %v", tt.query, tt.name, got, tt.want)
		}
	}
}

func TestTrustRank(t *testing.T) {
	if trustRank(DefaultTrustOrder, models.SourceBusiness) != 0 {
		t.Fatalf("business must rank first")
	}
	if trustRank(DefaultTrustOrder, models.SourceOSM) != 1 {
		t.Fatalf("osm must rank second")
	}
	if trustRank(DefaultTrustOrder, models.SourceNominatim) != 2 {
		t.Fatalf("nominatim must rank third")
	}
	if got := trustRank(DefaultTrustOrder, models.Source("other")); got != len(DefaultTrustOrder) {
		t.Fatalf("unknown source must rank last, got %d", got)
	}
}

func TestDedupeKeepsPosition(t *testing.T) {
	// The lower-trust entry is discovered first; the duplicate from the
	// higher-trust source replaces it in place.
	results := []models.LocationResult{
		{ID: "nom-1", Name: "Corner Cafe", Lat: 43.65, Lng: -79.38, Source: models.SourceNominatim},
		{ID: "osm-1", Name: "Unrelated Pub", Lat: 43.70, Lng: -79.40, Source: models.SourceOSM},
		{ID: "biz-1", Name: "corner cafe", Lat: 43.65, Lng: -79.38, Source: models.SourceBusiness},
	}
	out := dedupe(results, DefaultTrustOrder)
	if len(out) != 2 {
		t.Fatalf("expected 2 results, got %d", len(out))
	}
	if out[0].ID != "biz-1" {
		t.Fatalf("expected business replacement in first position, got %s", out[0].ID)
	}
	if out[1].ID != "osm-1" {
		t.Fatalf("expected pub untouched, got %s", out[1].ID)
	}
}

func TestDedupeLowerTrustDiscarded(t *testing.T) {
	results := []models.LocationResult{
		{ID: "biz-1", Name: "Corner Cafe", Lat: 43.65, Lng: -79.38, Source: models.SourceBusiness},
		{ID: "nom-1", Name: "Corner Cafe", Lat: 44.00, Lng: -78.00, Source: models.SourceNominatim},
	}
	out := dedupe(results, DefaultTrustOrder)
	if len(out) != 1 || out[0].ID != "biz-1" {
		t.Fatalf("expected only the business entry, got %+v", out)
	}
}

func TestSortResultsStable(t *testing.T) {
	d1 := 1.0
	results := []models.LocationResult{
		{ID: "a", RawScore: scoreSubstring, Source: models.SourceOSM},
		{ID: "b", RawScore: scorePrefix, Source: models.SourceNominatim, DistanceKm: &d1},
		{ID: "c", RawScore: scorePrefix, Source: models.SourceNominatim, DistanceKm: &d1},
		{ID: "d", RawScore: scorePrefix, Source: models.SourceBusiness},
	}
	sortResults(results, DefaultTrustOrder)

	got := []string{results[0].ID, results[1].ID, results[2].ID, results[3].ID}
	want := []string{"d", "b", "c", "a"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order mismatch at %d: got %v, want %v", i, got, want)
		}
	}
}
