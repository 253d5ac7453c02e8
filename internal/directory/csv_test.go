package directory

import (
	"strings"
	"testing"
)

func TestParseCSV(t *testing.T) {
	content := "id,name,category,address,city,lat,lng\n" +
		"b1,Starbucks,cafe,100 King St W,Toronto,43.6489,-79.3817\n" +
		"b2,Book Nook,books,12 Coffee Lane,Toronto,,\n"
	businesses, errs := ParseCSV(strings.NewReader(content))
	if len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
	if len(businesses) != 2 {
		t.Fatalf("expected 2 businesses, got %d", len(businesses))
	}
	if businesses[0].Lat != 43.6489 || businesses[0].Lng != -79.3817 {
		t.Fatalf("unexpected coordinates: %+v", businesses[0])
	}
	if businesses[1].HasCoordinates() {
		t.Fatalf("expected missing coordinates to stay unset")
	}
}

func TestParseCSVHeaderAliases(t *testing.T) {
	content := "business_id,title,type,street,town,latitude,longitude\n" +
		"x1,Cafe One,cafe,1 Main St,Springfield,40.1,-88.2\n"
	businesses, errs := ParseCSV(strings.NewReader(content))
	if len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
	if len(businesses) != 1 {
		t.Fatalf("expected 1 business, got %d", len(businesses))
	}
	b := businesses[0]
	if b.ID != "x1" || b.Name != "Cafe One" || b.City != "Springfield" {
		t.Fatalf("alias columns not mapped: %+v", b)
	}
}

func TestParseCSVRowWithoutName(t *testing.T) {
	content := "id,name,lat,lng\nb1,,1,1\nb2,Named,2,2\n"
	businesses, errs := ParseCSV(strings.NewReader(content))
	if len(errs) != 1 {
		t.Fatalf("expected 1 row error, got %v", errs)
	}
	if len(businesses) != 1 || businesses[0].Name != "Named" {
		t.Fatalf("expected only the named row, got %+v", businesses)
	}
}

func TestParseCSVGeneratesIDs(t *testing.T) {
	content := "name,lat,lng\nAlpha,1,1\nBeta,2,2\n"
	businesses, _ := ParseCSV(strings.NewReader(content))
	if len(businesses) != 2 {
		t.Fatalf("expected 2 businesses, got %d", len(businesses))
	}
	if businesses[0].ID != "b-0001" || businesses[1].ID != "b-0002" {
		t.Fatalf("unexpected generated ids: %s %s", businesses[0].ID, businesses[1].ID)
	}
}

func TestParseCSVOutOfRangeCoordinates(t *testing.T) {
	content := "name,lat,lng\nBroken,95.0,200.0\n"
	businesses, errs := ParseCSV(strings.NewReader(content))
	if len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
	if len(businesses) != 1 || businesses[0].HasCoordinates() {
		t.Fatalf("expected out-of-range coordinates to be dropped: %+v", businesses)
	}
}
