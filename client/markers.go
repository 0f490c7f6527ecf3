package client

import "hoarding-server/models"

// Marker is what the map draws for one listing.
type Marker struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Price     float64 `json:"price"`
	Available bool    `json:"available"`
}

// BuildMarkers converts listings to markers, silently dropping any whose
// location is malformed.
func BuildMarkers(listings []models.Hoarding) []Marker {
	markers := make([]Marker, 0, len(listings))
	for _, h := range listings {
		c, err := h.Location.Coordinate()
		if err != nil {
			continue
		}
		markers = append(markers, Marker{
			ID:        h.ID,
			Title:     h.Title,
			Latitude:  c.Lat,
			Longitude: c.Lon,
			Price:     h.Price,
			Available: h.Availability,
		})
	}
	return markers
}

