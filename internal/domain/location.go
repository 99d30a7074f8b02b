package domain

import "time"

// Location is a point of interest reported by an external locator, consumed
// read-only. Timestamp is Unix milliseconds, matching the upstream producer.
type Location struct {
	Latitude  float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"longitude" validate:"gte=-180,lte=180"`
	Accuracy  float64 `json:"accuracy,omitempty" validate:"omitempty,gt=0"`
	Timestamp int64   `json:"timestamp" validate:"gt=0"`
}

// Stale reports whether the location was captured more than StaleLocationAfter
// before now.
func (l Location) Stale(now time.Time) bool {
	captured := time.UnixMilli(l.Timestamp)
	return now.Sub(captured) > StaleLocationAfter
}

// ClampLatitude bounds a latitude to the valid [-90, 90] range.
func ClampLatitude(lat float64) float64 {
	if lat < -90 {
		return -90
	}
	if lat > 90 {
		return 90
	}
	return lat
}

// ClampLongitude bounds a longitude to the valid [-180, 180] range.
func ClampLongitude(lon float64) float64 {
	if lon < -180 {
		return -180
	}
	if lon > 180 {
		return 180
	}
	return lon
}
