package models

import "hoarding-server/geo"

// GeoPoint is a GeoJSON point. Coordinates are always [longitude, latitude].
type GeoPoint struct {
	Type        string    `json:"type" bson:"type"`
	Coordinates []float64 `json:"coordinates" bson:"coordinates"`
}

func NewPoint(lon, lat float64) GeoPoint {
	return GeoPoint{Type: "Point", Coordinates: []float64{lon, lat}}
}

func PointFrom(c geo.Coordinate) GeoPoint {
	return NewPoint(c.Lon, c.Lat)
}

func (p GeoPoint) Lon() float64 {
	if len(p.Coordinates) < 1 {
		return 0
	}
	return p.Coordinates[0]
}

func (p GeoPoint) Lat() float64 {
	if len(p.Coordinates) < 2 {
		return 0
	}
	return p.Coordinates[1]
}

// Coordinate validates the point and returns it as a geo.Coordinate.
func (p GeoPoint) Coordinate() (geo.Coordinate, error) {
	if len(p.Coordinates) != 2 {
		return geo.ValidateCoordinate(nil, nil)
	}
	return geo.ValidateCoordinate(p.Coordinates[0], p.Coordinates[1])
}
