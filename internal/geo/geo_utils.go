package geo

import (
	"errors"

	"github.com/golang/geo/s2"
)

// BoundingBox defines the corners of a lat/lon box
type BoundingBox struct {
	MinLat float64 `json:"min_lat"`
	MaxLat float64 `json:"max_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLon float64 `json:"max_lon"`
}

// Contains checks whether the given latitude and longitude are within the bounding box
func (b *BoundingBox) Contains(lat, lon float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lon >= b.MinLon && lon <= b.MaxLon
}

// Validate fails when the box is inverted or its corners are not valid coordinates.
func (b *BoundingBox) Validate() error {
	if b.MinLat > b.MaxLat {
		return errors.New("min_lat is greater than max_lat")
	}
	if b.MinLon > b.MaxLon {
		return errors.New("min_lon is greater than max_lon")
	}
	if !IsValidLatLon(b.MinLat, b.MinLon) || !IsValidLatLon(b.MaxLat, b.MaxLon) {
		return errors.New("corners are not valid coordinates")
	}
	return nil
}

// IsValidLatLon returns true if the given latitude and longitude values
// fall within the valid geographic coordinate bounds.
//
// Latitude must be between -90 and 90 degrees, and longitude must be
// between -180 and 180 degrees.
//
// Note: This function treats the coordinate (0,0) as invalid, even though it
// is a valid location in the Gulf of Guinea. (0,0) is what an unset form
// field decodes to, so it is never a real pickup or dropoff.
func IsValidLatLon(lat, lon float64) bool {
	if lat == 0 && lon == 0 {
		return false
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return false
	}
	return true
}

// earthRadiusInMeters represents the mean radius of the Earth in meters.
//
// This value (6,371,000 meters) is defined as the Earth's volumetric mean radius,
// which is commonly used for general geospatial calculations and spherical approximations.
//
// Reference: NASA Planetary Fact Sheet – Earth
// https://nssdc.gsfc.nasa.gov/planetary/factsheet/earthfact.html
const earthRadiusInMeters = 6371000

// HaversineDistance returns the great-circle distance in meters.
func HaversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	p1 := s2.LatLngFromDegrees(lat1, lon1)
	p2 := s2.LatLngFromDegrees(lat2, lon2)
	return p1.Distance(p2).Radians() * earthRadiusInMeters
}

// Midpoint is the plain average of both ends. The trip map is centred
// on it; over a few kilometres it is indistinguishable from the geodesic midpoint.
func Midpoint(lat1, lon1, lat2, lon2 float64) (lat, lon float64) {
	return (lat1 + lat2) / 2, (lon1 + lon2) / 2
}

// DefaultCellLevel gives cells roughly 1.2 km across.
const DefaultCellLevel = 13

// CellToken returns the token of the s2 cell containing the point at the given level.
func CellToken(lat, lon float64, level int) string {
	cell := s2.CellIDFromLatLng(s2.LatLngFromDegrees(lat, lon)).Parent(level)
	return cell.ToToken()
}
