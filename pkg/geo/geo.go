// Package geo provides great-circle distance and bounding-box helpers in kilometres.
package geo

import "math"

const (
	// EarthRadiusKm is the mean Earth radius used by Haversine.
	EarthRadiusKm = 6371.0

	// KmPerDegree approximates the length of one degree of latitude.
	KmPerDegree = 111.0
)

// Haversine returns the great-circle distance in kilometres between two coordinates given in degrees.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := degreesToRadians(lat2 - lat1)
	dLon := degreesToRadians(lon2 - lon1)

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)
	a := sinLat*sinLat +
		math.Cos(degreesToRadians(lat1))*math.Cos(degreesToRadians(lat2))*sinLon*sinLon

	// rounding can push a a hair above 1 for antipodal points
	return 2 * EarthRadiusKm * math.Asin(math.Sqrt(math.Min(1, a)))
}

// Box is an axis-aligned latitude/longitude rectangle.
type Box struct {
	MinLat float64
	MaxLat float64
	MinLng float64
	MaxLng float64
}

// BoundingBox returns the square pre-filter around a center: radiusKm/111 degrees in every direction.
// It does not account for longitude convergence, so it is a superset filter near the equator only.
func BoundingBox(lat, lng, radiusKm float64) Box {
	degreeRadius := radiusKm / KmPerDegree
	return Box{
		MinLat: lat - degreeRadius,
		MaxLat: lat + degreeRadius,
		MinLng: lng - degreeRadius,
		MaxLng: lng + degreeRadius,
	}
}

// Contains reports whether the coordinate lies inside the box, edges included.
func (b Box) Contains(lat, lng float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lng >= b.MinLng && lng <= b.MaxLng
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}
