// Package notify delivers the one-time notification side effects for newly
// observed critical alerts: an alert sound event and a toast per alert.
// Delivery is best-effort; failures are logged by callers and never undo
// the already-notified marking.
package notify

import (
	"context"

	"github.com/couchcryptid/storm-alert-service/internal/domain"
)

// ToastDescriptionLimit is the maximum toast body length before truncation.
const ToastDescriptionLimit = 100

// Toast is a user-facing notification for a single critical alert.
type Toast struct {
	AlertID     string          `json:"alertId"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Severity    domain.Severity `json:"severity"`
	Category    domain.Category `json:"category"`
}

// Notifier delivers notification side effects to a downstream renderer.
type Notifier interface {
	// PlayAlertSound requests the audible alert cue, once per batch of new
	// critical alerts.
	PlayAlertSound(ctx context.Context) error

	// ShowToast displays a toast for one critical alert.
	ShowToast(ctx context.Context, t Toast) error
}

// NewToast builds a toast from an alert, truncating the description to
// ToastDescriptionLimit characters with an ellipsis marker.
func NewToast(a domain.Alert) Toast {
	desc := a.Description
	if len(desc) > ToastDescriptionLimit {
		desc = desc[:ToastDescriptionLimit] + "..."
	}
	return Toast{
		AlertID:     a.ID,
		Title:       a.Title,
		Description: desc,
		Severity:    a.Severity,
		Category:    a.Category,
	}
}
