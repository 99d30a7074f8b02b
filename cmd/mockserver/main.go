// Command mockserver runs a fake NWS API for local development: point the
// service at it with NWS_BASE_URL to exercise the full pipeline without
// hitting api.weather.gov.
//
// Usage:
//
//	go run ./cmd/mockserver -addr :9090
//	NWS_BASE_URL=http://localhost:9090 go run ./cmd/alertd
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"
)

func main() {
	addr := flag.String("addr", ":9090", "listen address")
	flag.Parse()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /alerts/active", handleAlerts)
	mux.HandleFunc("GET /points/{point}", handlePoint(*addr))
	mux.HandleFunc("GET /stations", handleStations)
	mux.HandleFunc("GET /stations/{id}/observations/latest", handleObservation)

	log.Printf("mock NWS API listening on %s", *addr)
	log.Fatal(http.ListenAndServe(*addr, mux))
}

func handleAlerts(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC()
	writeJSON(w, map[string]any{
		"features": []map[string]any{
			{
				"id": "urn:oid:2.49.0.1.840.0.mock-tornado-1",
				"properties": map[string]any{
					"event":       "Tornado Warning",
					"headline":    "Tornado Warning issued for the test area",
					"description": "A confirmed tornado was observed near the test area, moving northeast at 30 mph.",
					"instruction": "Take cover now in a basement or interior room.",
					"severity":    "Extreme",
					"urgency":     "Immediate",
					"certainty":   "Observed",
					"areaDesc":    "Travis, TX; Hays, TX",
					"effective":   now.Format(time.RFC3339),
					"expires":     now.Add(45 * time.Minute).Format(time.RFC3339),
				},
			},
			{
				"id": "urn:oid:2.49.0.1.840.0.mock-flood-1",
				"properties": map[string]any{
					"event":       "Flash Flood Watch",
					"description": "Heavy rainfall may produce flash flooding across low-lying areas.",
					"severity":    "Moderate",
					"urgency":     "Expected",
					"certainty":   "Likely",
					"areaDesc":    "Travis, TX",
					"effective":   now.Format(time.RFC3339),
				},
			},
		},
	})
}

func handlePoint(addr string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"properties": map[string]any{
				"observationStations": fmt.Sprintf("http://localhost%s/stations", addr),
			},
		})
	}
}

func handleStations(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]any{
		"features": []map[string]any{
			{"properties": map[string]any{"stationIdentifier": "KATT"}},
		},
	})
}

func handleObservation(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]any{
		"properties": map[string]any{
			"temperature":        map[string]any{"value": 28.5},
			"relativeHumidity":   map[string]any{"value": 65.0},
			"windSpeed":          map[string]any{"value": 8.0},
			"windDirection":      map[string]any{"value": 180.0},
			"barometricPressure": map[string]any{"value": 101325.0},
			"visibility":         map[string]any{"value": 16000.0},
			"textDescription":    "Partly Cloudy",
		},
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/geo+json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}
