package notify

import (
	"context"
	"log/slog"
)

// Log is a Notifier that writes notifications to the service log. Used when
// the Kafka sink is disabled.
type Log struct {
	logger *slog.Logger
}

// NewLog creates a log-backed notifier.
func NewLog(logger *slog.Logger) *Log {
	return &Log{logger: logger}
}

func (l *Log) PlayAlertSound(_ context.Context) error {
	l.logger.Info("alert sound requested")
	return nil
}

func (l *Log) ShowToast(_ context.Context, t Toast) error {
	l.logger.Info("critical alert notification",
		"alert_id", t.AlertID,
		"title", t.Title,
		"severity", t.Severity,
		"category", t.Category,
		"description", t.Description,
	)
	return nil
}
