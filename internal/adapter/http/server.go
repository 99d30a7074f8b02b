// Package http exposes the consumer-facing alert API plus health,
// readiness, and metrics endpoints.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/storm-alert-service/internal/domain"
	"github.com/couchcryptid/storm-alert-service/internal/pipeline"
	"github.com/couchcryptid/storm-alert-service/internal/settings"
	"github.com/couchcryptid/storm-alert-service/internal/tracker"
)

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// Server exposes the alert pipeline over HTTP.
type Server struct {
	httpServer *http.Server
	pipeline   *pipeline.Pipeline
	settings   *settings.Store
	tracker    *tracker.Tracker
	logger     *slog.Logger
}

// NewServer creates the API server and registers all routes.
func NewServer(addr string, p *pipeline.Pipeline, s *settings.Store, t *tracker.Tracker, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	srv := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		pipeline: p,
		settings: s,
		tracker:  t,
		logger:   logger,
	}

	mux.HandleFunc("GET /healthz", srv.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(p))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /v1/alerts", srv.handleAlerts)
	mux.HandleFunc("GET /v1/alerts/critical", srv.handleCriticalAlerts)
	mux.HandleFunc("GET /v1/alerts/all", srv.handleAllAlerts)
	mux.HandleFunc("POST /v1/alerts/{id}/dismiss", srv.handleDismiss)
	mux.HandleFunc("DELETE /v1/dismissed", srv.handleClearDismissed)
	mux.HandleFunc("GET /v1/settings", srv.handleGetSettings)
	mux.HandleFunc("PATCH /v1/settings", srv.handleUpdateSettings)
	mux.HandleFunc("PUT /v1/location", srv.handlePutLocation)
	mux.HandleFunc("GET /v1/location", srv.handleGetLocation)
	mux.HandleFunc("GET /v1/conditions", srv.handleConditions)
	mux.HandleFunc("POST /v1/refresh", srv.handleRefresh)

	return srv
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

// alertsPayload mirrors the pipeline snapshot for JSON responses.
type alertsPayload struct {
	Alerts    []domain.Alert `json:"alerts"`
	IsLoading bool           `json:"isLoading"`
	Error     string         `json:"error,omitempty"`
}

// settingsPayload is the wire form of the user preferences, categories as an
// ordered list.
type settingsPayload struct {
	Radius            float64           `json:"radius"`
	EnabledCategories []domain.Category `json:"enabledCategories"`
	EnableSound       bool              `json:"enableSound"`
	EnablePush        bool              `json:"enablePush"`
	SeverityThreshold domain.Severity   `json:"severityThreshold"`
}

func settingsToPayload(s settings.AlertSettings) settingsPayload {
	return settingsPayload{
		Radius:            s.Radius,
		EnabledCategories: s.Categories(),
		EnableSound:       s.EnableSound,
		EnablePush:        s.EnablePush,
		SeverityThreshold: s.SeverityThreshold,
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	snap := s.freshSnapshot(r.Context())
	writeJSON(w, http.StatusOK, payloadFrom(snap, snap.Alerts))
}

func (s *Server) handleCriticalAlerts(w http.ResponseWriter, r *http.Request) {
	snap := s.freshSnapshot(r.Context())
	writeJSON(w, http.StatusOK, payloadFrom(snap, snap.CriticalAlerts))
}

func (s *Server) handleAllAlerts(w http.ResponseWriter, r *http.Request) {
	snap := s.freshSnapshot(r.Context())
	writeJSON(w, http.StatusOK, payloadFrom(snap, snap.AllAlerts))
}

// freshSnapshot triggers a fetch when the data is past its freshness window
// and a location is known. Fetch failures are reflected in the snapshot
// error rather than failing the read: stale-but-available beats empty.
func (s *Server) freshSnapshot(ctx context.Context) pipeline.Snapshot {
	if s.pipeline.HasLocation() {
		if err := s.pipeline.EnsureFresh(ctx); err != nil {
			s.logger.Warn("refresh on read failed", "error", err)
		}
	}
	return s.pipeline.Snapshot()
}

func payloadFrom(snap pipeline.Snapshot, alerts []domain.Alert) alertsPayload {
	p := alertsPayload{Alerts: alerts, IsLoading: snap.IsLoading}
	if p.Alerts == nil {
		p.Alerts = []domain.Alert{}
	}
	if snap.Err != nil {
		p.Error = snap.Err.Error()
	}
	return p
}

func (s *Server) handleDismiss(w http.ResponseWriter, r *http.Request) {
	s.tracker.Dismiss(r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearDismissed(w http.ResponseWriter, _ *http.Request) {
	s.tracker.ClearDismissed()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetSettings(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, settingsToPayload(s.settings.Get()))
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var update settings.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid settings payload"})
		return
	}

	updated, err := s.settings.Apply(update)
	if err != nil {
		// The in-memory update succeeded; the persistence failure is
		// surfaced without rolling it back.
		writeJSON(w, http.StatusOK, map[string]any{
			"settings": settingsToPayload(updated),
			"warning":  "settings applied but could not be saved",
		})
		return
	}
	writeJSON(w, http.StatusOK, settingsToPayload(updated))
}

func (s *Server) handlePutLocation(w http.ResponseWriter, r *http.Request) {
	var loc domain.Location
	if err := json.NewDecoder(r.Body).Decode(&loc); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid location payload"})
		return
	}
	if err := s.pipeline.SetLocation(loc); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetLocation(w http.ResponseWriter, _ *http.Request) {
	loc, ok := s.pipeline.Location()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no location reported"})
		return
	}
	writeJSON(w, http.StatusOK, loc)
}

// handleConditions returns the latest observation, or null when conditions
// are unavailable: they are supplementary and never an error to consumers.
func (s *Server) handleConditions(w http.ResponseWriter, r *http.Request) {
	cond, err := s.pipeline.Conditions(r.Context())
	if err != nil {
		s.logger.Warn("conditions fetch failed", "error", err)
		writeJSON(w, http.StatusOK, nil)
		return
	}
	writeJSON(w, http.StatusOK, cond)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	err := s.pipeline.Refetch(r.Context())
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{"status": "refreshed"})
	case errors.Is(err, pipeline.ErrNoLocation):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	default:
		var rle *domain.RateLimitError
		if errors.As(err, &rle) {
			writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
