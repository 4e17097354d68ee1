package geo

import (
	"math"
	"testing"
)

// About 1 degree of latitude in meters on the 6371 km sphere.
const metersPerLatDegree = 111194.9

func coordsAt(lat, lon float64) Coordinates {
	return Coordinates{Latitude: lat, Longitude: lon, Accuracy: 5}
}

// locationAt places a location roughly `meters` north of base.
func locationAt(id int, base Coordinates, meters float64, category string) Location {
	return Location{
		ID:       id,
		Coords:   coordsAt(base.Latitude+meters/metersPerLatDegree, base.Longitude),
		Category: category,
	}
}

func TestDistanceInMeters(t *testing.T) {
	base := coordsAt(52.52, 13.405)

	if d := DistanceInMeters(base, base); d != 0 {
		t.Errorf("distance to self = %v, want 0", d)
	}

	north := coordsAt(52.53, 13.405)
	d := DistanceInMeters(base, north)
	want := 0.01 * metersPerLatDegree
	if math.Abs(d-want) > 1 {
		t.Errorf("distance = %v, want about %v", d, want)
	}
	if d2 := DistanceInMeters(north, base); d2 != d {
		t.Errorf("distance not symmetric: %v vs %v", d, d2)
	}
}

func TestFindNearest(t *testing.T) {
	base := coordsAt(52.52, 13.405)
	known := []Location{
		locationAt(1, base, 200, "essen"),
		locationAt(2, base, 10, "sport"),
		locationAt(3, base, 50, "essen"),
	}

	if got := FindNearest(nil, base, nil); got != nil {
		t.Errorf("FindNearest(empty) = %+v, want nil", got)
	}

	got := FindNearest(known, base, nil)
	if got == nil || got.ID != 2 {
		t.Fatalf("FindNearest = %+v, want id 2", got)
	}

	essen := "essen"
	got = FindNearest(known, base, &essen)
	if got == nil || got.ID != 3 {
		t.Fatalf("FindNearest(category=essen) = %+v, want id 3", got)
	}

	missing := "auto"
	if got := FindNearest(known, base, &missing); got != nil {
		t.Errorf("FindNearest(category=auto) = %+v, want nil", got)
	}
}

func TestFindNearestSingleCandidateSkipsDistance(t *testing.T) {
	base := coordsAt(52.52, 13.405)
	only := []Location{locationAt(9, base, 5000, "essen")}
	got := FindNearest(only, base, nil)
	if got == nil || got.ID != 9 {
		t.Fatalf("FindNearest(single) = %+v, want id 9", got)
	}
}

func TestFindNearestTieKeepsFirst(t *testing.T) {
	base := coordsAt(52.52, 13.405)
	known := []Location{
		locationAt(1, base, 30, "a"),
		locationAt(2, base, 30, "b"),
	}
	got := FindNearest(known, base, nil)
	if got == nil || got.ID != 1 {
		t.Fatalf("tie should keep the first candidate, got %+v", got)
	}
}

func TestFindNearestWithin(t *testing.T) {
	base := coordsAt(52.52, 13.405)
	known := []Location{
		locationAt(1, base, 10, "essen"),
		locationAt(2, base, 50, "sport"),
		locationAt(3, base, 200, "auto"),
	}

	got := FindNearestWithin(known, base, 150, nil)
	if got == nil || got.ID != 1 {
		t.Fatalf("FindNearestWithin(150) = %+v, want id 1", got)
	}

	if got := FindNearestWithin(known, base, 5, nil); got != nil {
		t.Errorf("FindNearestWithin(5) = %+v, want nil", got)
	}

	if got := FindNearestWithin(nil, base, 150, nil); got != nil {
		t.Errorf("FindNearestWithin(no candidates) = %+v, want nil", got)
	}
}
