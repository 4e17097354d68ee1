// Package geo matches a coordinate fix against the user's known merchant
// locations, which drives category auto-suggestion for new transactions.
package geo

import "github.com/umahmood/haversine"

// Coordinates mirrors a browser geolocation fix. The nullable members stay
// pointers because the wire format carries explicit nulls for them.
type Coordinates struct {
	Latitude         float64  `json:"latitude"`
	Longitude        float64  `json:"longitude"`
	Altitude         *float64 `json:"altitude"`
	AltitudeAccuracy *float64 `json:"altitudeAccuracy"`
	Heading          *float64 `json:"heading"`
	Speed            *float64 `json:"speed"`
	Accuracy         float64  `json:"accuracy"`
}

// LocationData is the identity-free persisted shape of a known location.
type LocationData struct {
	Coords   Coordinates `json:"coords"`
	Category string      `json:"category"`
	Info     string      `json:"info"`
}

// Location is a LocationData with an in-memory id.
type Location struct {
	ID       int
	Coords   Coordinates
	Category string
	Info     string
}

// Data strips the identity off a location.
func (l Location) Data() LocationData {
	return LocationData{Coords: l.Coords, Category: l.Category, Info: l.Info}
}

// LocationsFromData assigns sequential ids starting at 0 in input order.
func LocationsFromData(data []LocationData) []Location {
	result := make([]Location, 0, len(data))
	for i, d := range data {
		result = append(result, Location{ID: i, Coords: d.Coords, Category: d.Category, Info: d.Info})
	}
	return result
}

// LocationsToData strips ids from a location list.
func LocationsToData(locations []Location) []LocationData {
	result := make([]LocationData, 0, len(locations))
	for _, l := range locations {
		result = append(result, l.Data())
	}
	return result
}

// DistanceInMeters returns the great-circle surface distance between two
// coordinate pairs over the mean Earth radius sphere.
func DistanceInMeters(a, b Coordinates) float64 {
	_, km := haversine.Distance(
		haversine.Coord{Lat: a.Latitude, Lon: a.Longitude},
		haversine.Coord{Lat: b.Latitude, Lon: b.Longitude},
	)
	return km * 1000
}

// FindNearest returns the known location closest to point, or nil when none
// qualify. A non-nil category restricts the candidates to that category.
// Exact distance ties resolve to the earliest candidate in input order; that
// is an accident of the left-fold comparison, not a guarantee.
func FindNearest(known []Location, point Coordinates, category *string) *Location {
	var best *Location
	var bestDist float64
	for i := range known {
		if category != nil && known[i].Category != *category {
			continue
		}
		d := DistanceInMeters(point, known[i].Coords)
		if best == nil || d < bestDist {
			best = &known[i]
			bestDist = d
		}
	}
	return best
}

// FindNearestWithin is FindNearest bounded by a maximum distance in meters:
// a nearest match farther away than maxDistance is discarded. This is the
// category auto-suggestion entry point, fed by Parameters.MaxDistance.
func FindNearestWithin(known []Location, point Coordinates, maxDistance float64, category *string) *Location {
	result := FindNearest(known, point, category)
	if result == nil {
		return nil
	}
	if DistanceInMeters(point, result.Coords) <= maxDistance {
		return result
	}
	return nil
}
