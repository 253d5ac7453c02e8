package search

import (
	"sort"
	"strings"

	"github.com/localspot/backend/internal/models"
)

const (
	scorePrefix    = 100.0
	scoreSubstring = 60.0
	scorePartial   = 30.0
	scoreWeak      = 10.0
)

// textScore grades how well a result name matches the query: whole-name
// prefix, then substring, then a word-level prefix, then a floor for
// results the upstream matched on fields other than the name.
func textScore(query, name string) float64 {
	q := strings.ToLower(strings.TrimSpace(query))
	n := strings.ToLower(name)
	switch {
	case q == "":
		return scoreWeak
	case strings.HasPrefix(n, q):
		return scorePrefix
	case strings.Contains(n, q):
		return scoreSubstring
	}
	for _, word := range strings.Fields(n) {
		if strings.HasPrefix(word, q) {
			return scorePartial
		}
	}
	return scoreWeak
}

// trustRank is the index of a source in the configured trust order; unknown
// sources sort last.
func trustRank(order []models.Source, s models.Source) int {
	for i, o := range order {
		if o == s {
			return i
		}
	}
	return len(order)
}

// dedupe collapses results that describe the same place (models.SamePlace),
// keeping the entry from the higher-trust source in its original position.
func dedupe(results []models.LocationResult, order []models.Source) []models.LocationResult {
	var out []models.LocationResult
	for _, r := range results {
		dup := false
		for i, kept := range out {
			if !models.SamePlace(kept, r) {
				continue
			}
			dup = true
			if trustRank(order, r.Source) < trustRank(order, kept.Source) {
				out[i] = r
			}
			break
		}
		if !dup {
			out = append(out, r)
		}
	}
	return out
}

// sortResults orders by text-match quality, then source trust, then
// distance ascending. The sort is stable: full ties keep discovery order.
func sortResults(results []models.LocationResult, order []models.Source) {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.RawScore != b.RawScore {
			return a.RawScore > b.RawScore
		}
		ra, rb := trustRank(order, a.Source), trustRank(order, b.Source)
		if ra != rb {
			return ra < rb
		}
		if a.DistanceKm != nil && b.DistanceKm != nil && *a.DistanceKm != *b.DistanceKm {
			return *a.DistanceKm < *b.DistanceKm
		}
		return false
	})
}
