package geo

import (
	"math"
	"strconv"
)

// EarthRadiusMeters matches the sphere radius MongoDB uses for 2dsphere queries.
const EarthRadiusMeters = 6378100.0

// Distance returns the great-circle distance between a and b in meters.
func Distance(a, b Coordinate) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * EarthRadiusMeters * math.Asin(math.Min(1, math.Sqrt(h)))
}

// Offset moves c north by dNorth meters and east by dEast meters. Only
// accurate for small offsets; used to place fixtures at known distances.
func Offset(c Coordinate, dNorth, dEast float64) Coordinate {
	lat := c.Lat + (dNorth/EarthRadiusMeters)*180/math.Pi
	lon := c.Lon + (dEast/(EarthRadiusMeters*math.Cos(c.Lat*math.Pi/180)))*180/math.Pi
	return Coordinate{Lon: lon, Lat: lat}
}

// Round3 formats v with three decimals (~111m of latitude).
func Round3(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}
