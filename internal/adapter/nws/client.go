// Package nws adapts the National Weather Service public API into the
// domain alert and conditions models.
package nws

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/storm-alert-service/internal/domain"
	"github.com/couchcryptid/storm-alert-service/internal/observability"
	"github.com/couchcryptid/storm-alert-service/internal/ratelimit"
	"github.com/couchcryptid/storm-alert-service/internal/validate"
)

// Client queries the NWS API for active alerts and current conditions.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	limiter    *ratelimit.Limiter
	metrics    *observability.Metrics
	clock      clockwork.Clock
	logger     *slog.Logger
}

// NewClient creates an NWS API client. The NWS API requires a User-Agent
// identifying the calling application. A nil clock uses real time.
func NewClient(baseURL, userAgent string, timeout time.Duration, limiter *ratelimit.Limiter, metrics *observability.Metrics, clock clockwork.Clock, logger *slog.Logger) *Client {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Client{
		baseURL:    baseURL,
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    limiter,
		metrics:    metrics,
		clock:      clock,
		logger:     logger,
	}
}

// ActiveAlerts fetches, validates, and maps the active alerts for a
// location. The upstream response is atomic: one invalid feature fails the
// whole fetch. An absent features field is a valid empty result, distinct
// from a failed fetch.
func (c *Client) ActiveAlerts(ctx context.Context, loc domain.Location) ([]domain.Alert, error) {
	key := ratelimit.Key("alerts", loc.Latitude, loc.Longitude)
	if !c.limiter.Allow(key) {
		c.metrics.RateLimitDenials.Inc()
		return nil, &domain.RateLimitError{Key: key}
	}

	u := fmt.Sprintf("%s/alerts/active?point=%.4f,%.4f", c.baseURL, loc.Latitude, loc.Longitude)

	var resp alertsResponse
	if err := c.getJSON(ctx, u, &resp); err != nil {
		return nil, err
	}
	if err := validate.Struct("nws alerts response", &resp); err != nil {
		return nil, err
	}

	alerts := make([]domain.Alert, 0, len(resp.Features))
	for _, f := range resp.Features {
		alerts = append(alerts, mapFeature(f, loc))
	}

	c.logger.Debug("fetched active alerts",
		"count", len(alerts), "lat", loc.Latitude, "lon", loc.Longitude)
	return alerts, nil
}

// CurrentConditions fetches the latest surface observation near a location
// via the three-step point → stations → observation chain. Conditions are
// supplementary; callers degrade to nil on error rather than failing.
func (c *Client) CurrentConditions(ctx context.Context, loc domain.Location) (*domain.Conditions, error) {
	cond, err := c.fetchConditions(ctx, loc)
	if err != nil {
		c.metrics.ConditionsFetches.WithLabelValues("error").Inc()
		return nil, err
	}
	c.metrics.ConditionsFetches.WithLabelValues("success").Inc()
	return cond, nil
}

func (c *Client) fetchConditions(ctx context.Context, loc domain.Location) (*domain.Conditions, error) {
	key := ratelimit.Key("conditions", loc.Latitude, loc.Longitude)
	if !c.limiter.Allow(key) {
		c.metrics.RateLimitDenials.Inc()
		return nil, &domain.RateLimitError{Key: key}
	}

	var point pointResponse
	pointURL := fmt.Sprintf("%s/points/%.4f,%.4f", c.baseURL, loc.Latitude, loc.Longitude)
	if err := c.getJSON(ctx, pointURL, &point); err != nil {
		return nil, err
	}
	if err := validate.Struct("nws point response", &point); err != nil {
		return nil, err
	}

	var stations stationsResponse
	if err := c.getJSON(ctx, point.Properties.ObservationStations, &stations); err != nil {
		return nil, err
	}
	if len(stations.Features) == 0 {
		return nil, fmt.Errorf("no observation stations near %.4f,%.4f", loc.Latitude, loc.Longitude)
	}

	stationID := stations.Features[0].Properties.StationIdentifier
	if stationID == "" {
		return nil, fmt.Errorf("nearest station has no identifier")
	}

	var obs observationResponse
	obsURL := fmt.Sprintf("%s/stations/%s/observations/latest", c.baseURL, stationID)
	if err := c.getJSON(ctx, obsURL, &obs); err != nil {
		return nil, err
	}

	return mapObservation(obs.Properties, c.clock.Now()), nil
}

// getJSON performs a GET request and decodes the JSON body. Network errors
// and non-2xx statuses are reported as TransportErrors.
func (c *Client) getJSON(ctx context.Context, url string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/geo+json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &domain.TransportError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &domain.TransportError{Status: resp.StatusCode, URL: url}
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response from %s: %w", url, err)
	}
	return nil
}

// mapFeature normalizes a validated alert feature into a domain Alert:
// enum parsing with documented defaults, keyword categorization, area
// splitting, sanitized length-capped text, and clamped query coordinates.
func mapFeature(f alertFeature, loc domain.Location) domain.Alert {
	props := f.Properties

	title := props.Headline
	if title == "" {
		title = props.Event
	}

	return domain.Alert{
		ID:          validate.String(f.ID, domain.MaxIDLength),
		Title:       validate.String(title, domain.MaxTitleLength),
		Description: validate.String(props.Description, domain.MaxDescriptionLength),
		Instruction: validate.String(props.Instruction, domain.MaxInstructionLength),
		Severity:    domain.ParseSeverity(props.Severity),
		Urgency:     domain.ParseUrgency(props.Urgency),
		Certainty:   domain.ParseCertainty(props.Certainty),
		Category:    domain.ClassifyEvent(props.Event),
		Areas:       domain.SplitAreas(props.AreaDesc),
		Effective:   props.Effective,
		Expires:     props.Expires,
		Onset:       props.Onset,
		Source:      domain.SourceNWS,
		Coordinates: &domain.Geo{
			Latitude:  domain.ClampLatitude(loc.Latitude),
			Longitude: domain.ClampLongitude(loc.Longitude),
		},
	}
}

// mapObservation converts SI observation values to US customary units and
// clamps each to its physical range, falling back to zero when the upstream
// value is null or out of bounds.
func mapObservation(props observationProperties, now time.Time) *domain.Conditions {
	return &domain.Conditions{
		Temperature:   validate.Number(domain.CelsiusToFahrenheit(props.Temperature.orZero()), 0, -100, 150),
		Humidity:      validate.Number(props.RelativeHumidity.orZero(), 0, 0, 100),
		WindSpeed:     validate.Number(domain.MpsToMph(props.WindSpeed.orZero()), 0, 0, 300),
		WindDirection: validate.Number(props.WindDirection.orZero(), 0, 0, 360),
		Pressure:      validate.Number(domain.PascalsToHPa(props.BarometricPressure.orZero()), 0, 800, 1200),
		Visibility:    validate.Number(domain.MetersToMiles(props.Visibility.orZero()), 0, 0, 100),
		Summary:       summaryOrUnknown(props.TextDescription),
		Timestamp:     now,
	}
}

func summaryOrUnknown(text string) string {
	if s := validate.String(text, domain.MaxTitleLength); s != "" {
		return s
	}
	return "Unknown"
}
