package util

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

var ErrInvalidCoordinates = errors.New("valid lat and lng are required")

// ParseCoordinates validates a latitude/longitude pair given as strings.
func ParseCoordinates(latStr, lngStr string) (float64, float64, error) {
	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil {
		return 0, 0, ErrInvalidCoordinates
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(lngStr), 64)
	if err != nil {
		return 0, 0, ErrInvalidCoordinates
	}
	if !ValidCoordinates(lat, lng) {
		return 0, 0, ErrInvalidCoordinates
	}
	return lat, lng, nil
}

func ValidCoordinates(lat, lng float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lng) {
		return false
	}
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}
