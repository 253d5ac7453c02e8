package geo

import (
	"math"
	"testing"
)

func TestDistanceKmTorontoDowntown(t *testing.T) {
	// North York to downtown Toronto, roughly 7.25 km apart.
	d := DistanceKm(43.7182, -79.3762, 43.6532, -79.3832)
	if math.Abs(d-7.25) > 0.1 {
		t.Fatalf("unexpected distance: %f", d)
	}
}

func TestDistanceKmZero(t *testing.T) {
	if d := DistanceKm(51.5, -0.12, 51.5, -0.12); d != 0 {
		t.Fatalf("expected zero distance, got %f", d)
	}
}

func TestFormatDistance(t *testing.T) {
	cases := []struct {
		km   float64
		want string
	}{
		{0.85, "850 m"},
		{0.0, "0 m"},
		{0.999, "999 m"},
		{1.0, "1.0 km"},
		{3.2, "3.2 km"},
		{12.345, "12.3 km"},
		{-1, "0 m"},
	}
	for _, tc := range cases {
		if got := FormatDistance(tc.km); got != tc.want {
			t.Fatalf("FormatDistance(%f) = %q, want %q", tc.km, got, tc.want)
		}
	}
}

func TestFormatDistanceRoundTrip(t *testing.T) {
	d := DistanceKm(43.7182, -79.3762, 43.6532, -79.3832)
	got := FormatDistance(d)
	if got != "7.2 km" && got != "7.3 km" {
		t.Fatalf("unexpected formatted distance: %q (raw %f)", got, d)
	}
}

func TestValidCoordinates(t *testing.T) {
	valid := [][2]float64{{0, 0}, {90, 180}, {-90, -180}, {43.65, -79.38}}
	for _, c := range valid {
		if !ValidCoordinates(c[0], c[1]) {
			t.Fatalf("expected valid: %v", c)
		}
	}
	invalid := [][2]float64{{91, 0}, {-91, 0}, {0, 181}, {0, -181}, {math.NaN(), 0}, {0, math.Inf(1)}}
	for _, c := range invalid {
		if ValidCoordinates(c[0], c[1]) {
			t.Fatalf("expected invalid: %v", c)
		}
	}
}
