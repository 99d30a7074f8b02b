package nws

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/storm-alert-service/internal/domain"
	"github.com/couchcryptid/storm-alert-service/internal/observability"
	"github.com/couchcryptid/storm-alert-service/internal/ratelimit"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	limiter := ratelimit.New(ratelimit.DefaultMaxRequests, ratelimit.DefaultWindow, nil)
	return NewClient(baseURL, "test-agent", 5*time.Second, limiter,
		observability.NewMetricsForTesting(), nil, discardLogger())
}

func testLocation() domain.Location {
	return domain.Location{Latitude: 30.2672, Longitude: -97.7431, Timestamp: time.Now().UnixMilli()}
}

const tornadoAlertBody = `{
	"features": [
		{
			"id": "urn:oid:2.49.0.1.840.0.tornado-1",
			"properties": {
				"event": "Tornado Warning",
				"headline": "Tornado Warning issued for Travis County",
				"description": "A confirmed tornado was observed.",
				"instruction": "Take cover now.",
				"severity": "Extreme",
				"urgency": "Immediate",
				"certainty": "Observed",
				"areaDesc": "Travis, TX; Hays, TX",
				"effective": "2025-06-01T12:00:00Z",
				"expires": "2025-06-01T13:00:00Z"
			}
		}
	]
}`

func TestActiveAlerts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/alerts/active", r.URL.Path)
		assert.Equal(t, "point=30.2672,-97.7431", r.URL.RawQuery)
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		assert.Equal(t, "application/geo+json", r.Header.Get("Accept"))
		fmt.Fprint(w, tornadoAlertBody)
	}))
	defer srv.Close()

	alerts, err := testClient(t, srv.URL).ActiveAlerts(context.Background(), testLocation())
	require.NoError(t, err)
	require.Len(t, alerts, 1)

	a := alerts[0]
	assert.Equal(t, "urn:oid:2.49.0.1.840.0.tornado-1", a.ID)
	assert.Equal(t, "Tornado Warning issued for Travis County", a.Title)
	assert.Equal(t, domain.SeverityExtreme, a.Severity)
	assert.Equal(t, domain.UrgencyImmediate, a.Urgency)
	assert.Equal(t, domain.CertaintyObserved, a.Certainty)
	assert.Equal(t, domain.CategoryTornado, a.Category)
	assert.Equal(t, []string{"Travis, TX", "Hays, TX"}, a.Areas)
	assert.Equal(t, domain.SourceNWS, a.Source)
	require.NotNil(t, a.Coordinates)
	assert.Equal(t, 30.2672, a.Coordinates.Latitude)
}

func TestActiveAlerts_TitleFallsBackToEvent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{
			"features": [{
				"id": "alert-1",
				"properties": {
					"event": "Flash Flood Warning",
					"description": "Flooding expected.",
					"effective": "2025-06-01T12:00:00Z"
				}
			}]
		}`)
	}))
	defer srv.Close()

	alerts, err := testClient(t, srv.URL).ActiveAlerts(context.Background(), testLocation())
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "Flash Flood Warning", alerts[0].Title)
	assert.Equal(t, domain.CategoryFlashFlood, alerts[0].Category)
	// Absent enums take their documented defaults.
	assert.Equal(t, domain.SeverityModerate, alerts[0].Severity)
	assert.Equal(t, domain.UrgencyFuture, alerts[0].Urgency)
	assert.Equal(t, domain.CertaintyUnknown, alerts[0].Certainty)
}

func TestActiveAlerts_AbsentFeaturesIsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{}`)
	}))
	defer srv.Close()

	alerts, err := testClient(t, srv.URL).ActiveAlerts(context.Background(), testLocation())
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestActiveAlerts_InvalidFeatureFailsWholeFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		// Second feature is missing its required event and description.
		fmt.Fprint(w, `{
			"features": [
				{
					"id": "alert-1",
					"properties": {
						"event": "Tornado Warning",
						"description": "ok",
						"effective": "2025-06-01T12:00:00Z"
					}
				},
				{"id": "alert-2", "properties": {}}
			]
		}`)
	}))
	defer srv.Close()

	alerts, err := testClient(t, srv.URL).ActiveAlerts(context.Background(), testLocation())
	require.Error(t, err)
	assert.Nil(t, alerts)

	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestActiveAlerts_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := testClient(t, srv.URL).ActiveAlerts(context.Background(), testLocation())
	require.Error(t, err)

	var terr *domain.TransportError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, http.StatusServiceUnavailable, terr.Status)
}

func TestActiveAlerts_SanitizesText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{
			"features": [{
				"id": "alert-1",
				"properties": {
					"event": "Tornado Warning",
					"headline": "Take cover <script>alert(1)</script>now",
					"description": "ok",
					"effective": "2025-06-01T12:00:00Z"
				}
			}]
		}`)
	}))
	defer srv.Close()

	alerts, err := testClient(t, srv.URL).ActiveAlerts(context.Background(), testLocation())
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "Take cover now", alerts[0].Title)
}

func TestActiveAlerts_RateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{}`)
	}))
	defer srv.Close()

	limiter := ratelimit.New(1, time.Minute, nil)
	c := NewClient(srv.URL, "test-agent", 5*time.Second, limiter,
		observability.NewMetricsForTesting(), nil, discardLogger())

	_, err := c.ActiveAlerts(context.Background(), testLocation())
	require.NoError(t, err)

	_, err = c.ActiveAlerts(context.Background(), testLocation())
	require.Error(t, err)

	var rle *domain.RateLimitError
	assert.ErrorAs(t, err, &rle)
}

func TestCurrentConditions(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("GET /points/30.2672,-97.7431", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintf(w, `{"properties": {"observationStations": "%s/stations"}}`, srv.URL)
	})
	mux.HandleFunc("GET /stations", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"features": [{"properties": {"stationIdentifier": "KATT"}}]}`)
	})
	mux.HandleFunc("GET /stations/KATT/observations/latest", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{
			"properties": {
				"temperature": {"value": 25.0},
				"relativeHumidity": {"value": 65.0},
				"windSpeed": {"value": 10.0},
				"windDirection": {"value": 180.0},
				"barometricPressure": {"value": 101325.0},
				"visibility": {"value": 16093.4},
				"textDescription": "Partly Cloudy"
			}
		}`)
	})

	cond, err := testClient(t, srv.URL).CurrentConditions(context.Background(), testLocation())
	require.NoError(t, err)
	require.NotNil(t, cond)

	assert.InDelta(t, 77.0, cond.Temperature, 0.001)
	assert.Equal(t, 65.0, cond.Humidity)
	assert.InDelta(t, 22.37, cond.WindSpeed, 0.001)
	assert.Equal(t, 180.0, cond.WindDirection)
	assert.InDelta(t, 1013.25, cond.Pressure, 0.001)
	assert.InDelta(t, 10.0, cond.Visibility, 0.01)
	assert.Equal(t, "Partly Cloudy", cond.Summary)
}

func TestCurrentConditions_NullMeasurementsClampToZero(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("GET /points/30.2672,-97.7431", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintf(w, `{"properties": {"observationStations": "%s/stations"}}`, srv.URL)
	})
	mux.HandleFunc("GET /stations", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"features": [{"properties": {"stationIdentifier": "KATT"}}]}`)
	})
	mux.HandleFunc("GET /stations/KATT/observations/latest", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"properties": {"temperature": {"value": null}}}`)
	})

	cond, err := testClient(t, srv.URL).CurrentConditions(context.Background(), testLocation())
	require.NoError(t, err)

	// Zero pressure in SI converts to 0 hPa, outside [800, 1200], so it
	// falls back; a null temperature converts to 32°F, which is in range.
	assert.InDelta(t, 32.0, cond.Temperature, 0.001)
	assert.Equal(t, 0.0, cond.Pressure)
	assert.Equal(t, "Unknown", cond.Summary)
}

func TestCurrentConditions_NoStations(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("GET /points/30.2672,-97.7431", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintf(w, `{"properties": {"observationStations": "%s/stations"}}`, srv.URL)
	})
	mux.HandleFunc("GET /stations", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"features": []}`)
	})

	_, err := testClient(t, srv.URL).CurrentConditions(context.Background(), testLocation())
	assert.Error(t, err)
}
