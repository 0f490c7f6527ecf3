package geo

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	apperrors "hoarding-server/utils/errors"
)

const (
	MinLongitude = -180.0
	MaxLongitude = 180.0
	MinLatitude  = -90.0
	MaxLatitude  = 90.0
)

// Rule names reported in validation failures.
const (
	RuleNotNumeric        = "coordinates_not_numeric"
	RuleLongitudeOutRange = "longitude_out_of_range"
	RuleLatitudeOutRange  = "latitude_out_of_range"
)

// Coordinate is a validated point in GeoJSON order.
type Coordinate struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// CoordinateError is returned by ValidateCoordinate. It names the failed rule
// and echoes the raw inputs.
type CoordinateError struct {
	Rule      string
	Longitude any
	Latitude  any
}

func (e *CoordinateError) Error() string {
	return fmt.Sprintf("%s: %s", e.Rule, e.values())
}

func (e *CoordinateError) values() string {
	return fmt.Sprintf("longitude=%v, latitude=%v", e.Longitude, e.Latitude)
}

// APIError converts the failure into a VALIDATION_ERROR for the HTTP layer.
func (e *CoordinateError) APIError() *apperrors.APIError {
	var msg string
	switch e.Rule {
	case RuleNotNumeric:
		msg = "Invalid coordinates. Both values must be valid numbers."
	case RuleLongitudeOutRange:
		msg = "Coordinates out of range. Longitude must be between -180 and 180."
	default:
		msg = "Coordinates out of range. Latitude must be between -90 and 90."
	}
	return apperrors.Validation(msg, e.Rule, e.values())
}

// Unwrap lets errors.Is(err, apperrors.ErrValidation) succeed.
func (e *CoordinateError) Unwrap() error {
	return e.APIError()
}

// ValidateCoordinate checks a longitude/latitude pair in that order. Both
// values must be finite numbers (numeric strings are accepted), then the
// longitude range is checked, then the latitude range.
func ValidateCoordinate(lon, lat any) (Coordinate, error) {
	lonF, lonOK := ParseNumber(lon)
	latF, latOK := ParseNumber(lat)
	if !lonOK || !latOK {
		return Coordinate{}, &CoordinateError{Rule: RuleNotNumeric, Longitude: lon, Latitude: lat}
	}
	if lonF < MinLongitude || lonF > MaxLongitude {
		return Coordinate{}, &CoordinateError{Rule: RuleLongitudeOutRange, Longitude: lon, Latitude: lat}
	}
	if latF < MinLatitude || latF > MaxLatitude {
		return Coordinate{}, &CoordinateError{Rule: RuleLatitudeOutRange, Longitude: lon, Latitude: lat}
	}
	return Coordinate{Lon: lonF, Lat: latF}, nil
}

// IsValidCoordinate reports whether ValidateCoordinate accepts the pair.
func IsValidCoordinate(lon, lat any) bool {
	_, err := ValidateCoordinate(lon, lat)
	return err == nil
}

// ValidateRadius requires a finite, strictly positive distance in meters.
func ValidateRadius(radius float64) error {
	if math.IsNaN(radius) || math.IsInf(radius, 0) || radius <= 0 {
		return apperrors.Validation("Radius must be a positive number of meters", fmt.Sprintf("radius=%v", radius))
	}
	return nil
}

// ParseNumber accepts Go numbers, json.Number and numeric strings. NaN and
// infinities are rejected.
func ParseNumber(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case nil:
		return 0, false
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int8:
		f = float64(n)
	case int16:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint8:
		f = float64(n)
	case uint16:
		f = float64(n)
	case uint32:
		f = float64(n)
	case uint64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
