package geo

import (
	"math"

	"github.com/paulmach/orb"
	orbgeo "github.com/paulmach/orb/geo"
)

// EarthRadiusMeters is the sphere radius used for haversine distance.
const EarthRadiusMeters = orb.EarthRadius

// Point is a WGS84 coordinate in degrees.
type Point struct {
	Lat float64
	Lng float64
}

// NewPoint creates a Point from latitude and longitude degrees.
func NewPoint(lat, lng float64) Point { return Point{Lat: lat, Lng: lng} }

// Orb returns the point in orb's (lng, lat) order.
func (p Point) Orb() orb.Point { return orb.Point{p.Lng, p.Lat} }

// Distance returns the great-circle distance in meters between two points.
func Distance(a, b Point) float64 {
	return orbgeo.DistanceHaversine(a.Orb(), b.Orb())
}

// Haversine returns the great-circle distance in meters between two points
// specified by latitude and longitude in degrees.
func Haversine(lat1, lng1, lat2, lng2 float64) float64 {
	return Distance(Point{Lat: lat1, Lng: lng1}, Point{Lat: lat2, Lng: lng2})
}

// Box is an axis-aligned lat/lng rectangle. MinLng <= MaxLng always holds.
type Box struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64
}

// Contains reports whether p lies inside the box (edges inclusive).
func (b Box) Contains(p Point) bool {
	return p.Lat >= b.MinLat && p.Lat <= b.MaxLat && p.Lng >= b.MinLng && p.Lng <= b.MaxLng
}

// BoundingBoxes returns rectangles that together cover every point within
// radius meters of center. A circle crossing the antimeridian yields two boxes.
func BoundingBoxes(center Point, radius float64) []Box {
	b := orbgeo.NewBoundAroundPoint(center.Orb(), radius)

	minLat := clamp(b.Min.Lat(), -90, 90)
	maxLat := clamp(b.Max.Lat(), -90, 90)
	minLng, maxLng := b.Min.Lon(), b.Max.Lon()

	if math.IsNaN(minLng) || math.IsNaN(maxLng) || math.IsNaN(minLat) || math.IsNaN(maxLat) {
		return []Box{{MinLat: -90, MaxLat: 90, MinLng: -180, MaxLng: 180}}
	}

	if minLng <= maxLng {
		return []Box{{MinLat: minLat, MaxLat: maxLat, MinLng: minLng, MaxLng: maxLng}}
	}
	return []Box{
		{MinLat: minLat, MaxLat: maxLat, MinLng: minLng, MaxLng: 180},
		{MinLat: minLat, MaxLat: maxLat, MinLng: -180, MaxLng: maxLng},
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
