package domain

import "time"

// Conditions is the latest surface observation near a location, converted to
// US customary units. Supplementary data: adapters may fail to produce it
// without failing the alert pipeline.
type Conditions struct {
	Temperature   float64   `json:"temperature"`   // °F
	Humidity      float64   `json:"humidity"`      // percent
	WindSpeed     float64   `json:"windSpeed"`     // mph
	WindDirection float64   `json:"windDirection"` // degrees
	Pressure      float64   `json:"pressure"`      // hPa
	Visibility    float64   `json:"visibility"`    // miles
	Summary       string    `json:"conditions"`
	Timestamp     time.Time `json:"timestamp"`
}

// Unit conversions for NWS observations, which report SI values.

// CelsiusToFahrenheit converts a temperature in °C to °F.
func CelsiusToFahrenheit(c float64) float64 {
	return c*9/5 + 32
}

// MpsToMph converts a speed in meters per second to miles per hour.
func MpsToMph(mps float64) float64 {
	return mps * 2.237
}

// MetersToMiles converts a distance in meters to miles.
func MetersToMiles(m float64) float64 {
	return m * 0.000621371
}

// PascalsToHPa converts a pressure in pascals to hectopascals.
func PascalsToHPa(pa float64) float64 {
	return pa / 100
}
