// Package pipeline orchestrates the alert poll-validate-filter-notify loop.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/storm-alert-service/internal/domain"
	"github.com/couchcryptid/storm-alert-service/internal/notify"
	"github.com/couchcryptid/storm-alert-service/internal/observability"
	"github.com/couchcryptid/storm-alert-service/internal/settings"
	"github.com/couchcryptid/storm-alert-service/internal/storage"
	"github.com/couchcryptid/storm-alert-service/internal/tracker"
	"github.com/couchcryptid/storm-alert-service/internal/validate"
)

const locationKey = "last_location"

// ErrNoLocation is returned when a fetch is requested before any location
// has been reported.
var ErrNoLocation = errors.New("no location available")

// AlertFetcher fetches active alerts for a location.
type AlertFetcher interface {
	ActiveAlerts(ctx context.Context, loc domain.Location) ([]domain.Alert, error)
}

// ConditionsFetcher fetches the latest surface observation for a location.
type ConditionsFetcher interface {
	CurrentConditions(ctx context.Context, loc domain.Location) (*domain.Conditions, error)
}

// Snapshot is the consumer-facing view of the pipeline state.
type Snapshot struct {
	Alerts         []domain.Alert // filtered by settings, dismissals excluded
	CriticalAlerts []domain.Alert // filtered alerts with severe or extreme severity
	AllAlerts      []domain.Alert // last successful unfiltered fetch
	IsLoading      bool
	Err            error
}

// Pipeline polls the alert source, applies settings-driven filtering, and
// triggers the notification side effect exactly once per newly observed
// critical alert. All mutable state is mutex-guarded; the original
// cooperative single-writer model does not survive concurrent HTTP access.
type Pipeline struct {
	fetcher    AlertFetcher
	conditions ConditionsFetcher
	settings   *settings.Store
	tracker    *tracker.Tracker
	notifier   notify.Notifier
	store      storage.Store
	metrics    *observability.Metrics
	logger     *slog.Logger
	clock      clockwork.Clock

	interval   time.Duration
	staleAfter time.Duration

	mu          sync.Mutex
	location    *domain.Location
	all         []domain.Alert
	lastErr     error
	inFlight    int
	fetchSeq    uint64
	appliedSeq  uint64
	lastSettled time.Time
	attempted   bool
}

// New creates a Pipeline. The last-known location is restored from storage,
// discarded if it was captured more than an hour ago. A nil clock uses real
// time.
func New(
	fetcher AlertFetcher,
	conditions ConditionsFetcher,
	settingsStore *settings.Store,
	track *tracker.Tracker,
	notifier notify.Notifier,
	store storage.Store,
	metrics *observability.Metrics,
	logger *slog.Logger,
	clock clockwork.Clock,
	interval, staleAfter time.Duration,
) *Pipeline {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	p := &Pipeline{
		fetcher:    fetcher,
		conditions: conditions,
		settings:   settingsStore,
		tracker:    track,
		notifier:   notifier,
		store:      store,
		metrics:    metrics,
		logger:     logger,
		clock:      clock,
		interval:   interval,
		staleAfter: staleAfter,
	}
	p.restoreLocation()
	return p
}

// Run drives the poll loop until the context is cancelled. Ticks while no
// location is available are no-ops.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("alert pipeline started", "interval", p.interval)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	ticker := p.clock.NewTicker(p.interval)
	defer ticker.Stop()

	// Fetch immediately when a location was restored at startup.
	if p.HasLocation() {
		p.fetch(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("alert pipeline stopping", "reason", ctx.Err())
			return nil
		case <-ticker.Chan():
			if !p.HasLocation() {
				continue
			}
			p.fetch(ctx)
		}
	}
}

// SetLocation validates and records a reported location, persisting it as
// the last-known location. Stale reports (older than an hour) are rejected.
func (p *Pipeline) SetLocation(loc domain.Location) error {
	if err := validate.Struct("location", &loc); err != nil {
		return err
	}
	if loc.Stale(p.clock.Now()) {
		return &domain.ValidationError{Subject: "location", Err: errors.New("location is stale")}
	}

	p.mu.Lock()
	p.location = &loc
	p.mu.Unlock()

	if err := storage.SaveJSON(p.store, locationKey, loc); err != nil {
		p.logger.Error("failed to persist location", "error", err)
	}
	return nil
}

// Location returns the current location, if any.
func (p *Pipeline) Location() (domain.Location, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.location == nil {
		return domain.Location{}, false
	}
	return *p.location, true
}

// HasLocation reports whether a location has been set.
func (p *Pipeline) HasLocation() bool {
	_, ok := p.Location()
	return ok
}

// Refetch forces an immediate fetch regardless of data freshness.
func (p *Pipeline) Refetch(ctx context.Context) error {
	return p.fetch(ctx)
}

// EnsureFresh fetches only when the last settled data is older than the
// freshness window, so re-subscribing consumers do not force refetches.
func (p *Pipeline) EnsureFresh(ctx context.Context) error {
	p.mu.Lock()
	fresh := !p.lastSettled.IsZero() && p.clock.Now().Sub(p.lastSettled) < p.staleAfter
	p.mu.Unlock()

	if fresh {
		return nil
	}
	return p.fetch(ctx)
}

// Snapshot returns the consumer view. Filtering runs against the current
// settings and dismissals, so settings updates and dismissals are visible
// without waiting for the next poll.
func (p *Pipeline) Snapshot() Snapshot {
	p.mu.Lock()
	all := append([]domain.Alert(nil), p.all...)
	err := p.lastErr
	loading := p.inFlight > 0
	p.mu.Unlock()

	filtered, critical := p.filter(all, p.settings.Get())
	return Snapshot{
		Alerts:         filtered,
		CriticalAlerts: critical,
		AllAlerts:      all,
		IsLoading:      loading,
		Err:            err,
	}
}

// Conditions fetches the latest observation for the current location.
func (p *Pipeline) Conditions(ctx context.Context) (*domain.Conditions, error) {
	loc, ok := p.Location()
	if !ok {
		return nil, ErrNoLocation
	}
	return p.conditions.CurrentConditions(ctx, loc)
}

// CheckReadiness returns nil once at least one fetch attempt has completed.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.attempted {
		return errors.New("no alert fetch has completed yet")
	}
	return nil
}

// fetch runs one fetch-validate-filter-notify cycle. Each fetch carries a
// monotonic sequence number; a resolution is applied only if no
// higher-sequence fetch has resolved before it, so overlapping fetches
// settle last-initiated-wins rather than last-resolved-wins.
func (p *Pipeline) fetch(ctx context.Context) error {
	p.mu.Lock()
	if p.location == nil {
		p.mu.Unlock()
		return ErrNoLocation
	}
	loc := *p.location
	p.fetchSeq++
	seq := p.fetchSeq
	p.inFlight++
	p.mu.Unlock()

	start := p.clock.Now()
	alerts, err := p.fetcher.ActiveAlerts(ctx, loc)

	p.mu.Lock()
	p.inFlight--
	if seq <= p.appliedSeq {
		p.mu.Unlock()
		p.metrics.FetchesTotal.WithLabelValues("stale_discard").Inc()
		p.logger.Debug("discarding superseded fetch result", "seq", seq)
		return nil
	}
	p.appliedSeq = seq
	p.attempted = true

	if err != nil {
		// Failed: surface the error, keep the previous alert list.
		p.lastErr = err
		p.mu.Unlock()
		p.observeFailure(err)
		return err
	}

	p.lastErr = nil
	p.all = alerts
	p.lastSettled = p.clock.Now()
	p.mu.Unlock()

	p.metrics.FetchesTotal.WithLabelValues("success").Inc()
	p.metrics.FetchDuration.Observe(p.clock.Now().Sub(start).Seconds())
	p.metrics.AlertsActive.Set(float64(len(alerts)))

	s := p.settings.Get()
	filtered, critical := p.filter(alerts, s)
	p.metrics.AlertsFiltered.Set(float64(len(filtered)))
	p.metrics.AlertsCritical.Set(float64(len(critical)))

	if s.EnableSound {
		p.notifyNewCritical(ctx, critical)
	}
	return nil
}

func (p *Pipeline) observeFailure(err error) {
	var rle *domain.RateLimitError
	if errors.As(err, &rle) {
		p.metrics.FetchesTotal.WithLabelValues("rate_limited").Inc()
	} else {
		p.metrics.FetchesTotal.WithLabelValues("error").Inc()
	}
	p.logger.Error("alert fetch failed", "error", err)
}

// filter applies the settings filter chain in fixed order, short-circuiting
// per alert: enabled category, severity threshold, then dismissal.
func (p *Pipeline) filter(alerts []domain.Alert, s settings.AlertSettings) (filtered, critical []domain.Alert) {
	threshold := s.SeverityThreshold.Rank()
	for _, a := range alerts {
		if !s.EnabledCategories[a.Category] {
			continue
		}
		if a.Severity.Rank() < threshold {
			continue
		}
		if p.tracker.IsDismissed(a.ID) {
			continue
		}
		filtered = append(filtered, a)
		if a.Critical() {
			critical = append(critical, a)
		}
	}
	return filtered, critical
}

// notifyNewCritical fires the one-time side effect for critical alerts not
// yet notified. Every alert is marked notified before any delivery is
// attempted, so a delivery failure cannot cause re-notification on the
// next tick.
func (p *Pipeline) notifyNewCritical(ctx context.Context, critical []domain.Alert) {
	var fresh []domain.Alert
	for _, a := range critical {
		if !p.tracker.WasNotified(a.ID) {
			fresh = append(fresh, a)
		}
	}
	if len(fresh) == 0 {
		return
	}

	for _, a := range fresh {
		p.tracker.MarkNotified(a.ID)
	}

	if err := p.notifier.PlayAlertSound(ctx); err != nil {
		p.metrics.NotificationErrors.Inc()
		p.logger.Warn("failed to play alert sound", "error", err)
	}

	for _, a := range fresh {
		if err := p.notifier.ShowToast(ctx, notify.NewToast(a)); err != nil {
			p.metrics.NotificationErrors.Inc()
			p.logger.Warn("failed to deliver alert toast", "alert_id", a.ID, "error", err)
			continue
		}
		p.metrics.NotificationsSent.Inc()
	}
}

// restoreLocation loads the persisted last-known location, dropping it when
// stale.
func (p *Pipeline) restoreLocation() {
	var loc domain.Location
	if !storage.LoadJSON(p.store, locationKey, &loc, p.logger) {
		return
	}
	if loc.Stale(p.clock.Now()) {
		p.logger.Info("discarding stale persisted location")
		if err := p.store.Delete(locationKey); err != nil {
			p.logger.Warn("failed to remove stale persisted location", "error", err)
		}
		return
	}
	p.location = &loc
	p.logger.Info("restored last known location",
		"lat", loc.Latitude, "lon", loc.Longitude)
}
