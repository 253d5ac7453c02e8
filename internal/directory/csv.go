package directory

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/localspot/backend/internal/geo"
	"github.com/localspot/backend/internal/models"
)

// ParseCSV reads a businesses CSV export. Header names are matched
// case-insensitively with a few known aliases; rows that cannot be used are
// reported rather than aborting the whole file.
func ParseCSV(r io.Reader) ([]models.Business, []string) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	headers, err := reader.Read()
	if err != nil {
		return nil, []string{"failed to read header"}
	}
	index := headerIndex(headers)

	var errs []string
	var out []models.Business

	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			errs = append(errs, err.Error())
			continue
		}

		id := getFieldAny(rec, index, "id", "business_id")
		name := getFieldAny(rec, index, "name", "business_name", "title")
		category := getFieldAny(rec, index, "category", "type", "tags")
		address := getFieldAny(rec, index, "address", "street", "street_address")
		city := getFieldAny(rec, index, "city", "town", "locality")
		latStr := getFieldAny(rec, index, "lat", "latitude")
		lngStr := getFieldAny(rec, index, "lng", "lon", "longitude")

		lat, _ := strconv.ParseFloat(latStr, 64)
		lng, _ := strconv.ParseFloat(lngStr, 64)
		if !geo.ValidCoordinates(lat, lng) {
			// Out-of-range coordinates are dropped, not propagated.
			lat, lng = 0, 0
		}

		if name == "" {
			errs = append(errs, fmt.Sprintf("row %d: business name required", len(out)+len(errs)+2))
			continue
		}
		if id == "" {
			id = fmt.Sprintf("b-%04d", len(out)+1)
		}

		out = append(out, models.Business{
			ID:       id,
			Name:     name,
			Category: category,
			Address:  address,
			City:     city,
			Lat:      lat,
			Lng:      lng,
		})
	}
	return out, errs
}

// LoadCSVFile reads a seed file from disk.
func LoadCSVFile(path string) ([]models.Business, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	businesses, errs := ParseCSV(f)
	return businesses, errs, nil
}

func headerIndex(headers []string) map[string]int {
	idx := map[string]int{}
	for i, h := range headers {
		idx[normalizeHeader(h)] = i
	}
	return idx
}

func getField(rec []string, idx map[string]int, name string) string {
	pos, ok := idx[name]
	if !ok || pos >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[pos])
}

func getFieldAny(rec []string, idx map[string]int, names ...string) string {
	for _, name := range names {
		if v := getField(rec, idx, normalizeHeader(name)); v != "" {
			return v
		}
	}
	return ""
}

func normalizeHeader(h string) string {
	h = strings.ReplaceAll(h, "\uFEFF", "")
	return strings.ToLower(strings.TrimSpace(h))
}
