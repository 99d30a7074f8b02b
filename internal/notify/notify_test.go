package notify

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/couchcryptid/storm-alert-service/internal/domain"
)

func TestNewToast(t *testing.T) {
	a := domain.Alert{
		ID:          "alert-1",
		Title:       "Tornado Warning",
		Description: "A confirmed tornado was observed.",
		Severity:    domain.SeverityExtreme,
		Category:    domain.CategoryTornado,
	}

	toast := NewToast(a)
	assert.Equal(t, "alert-1", toast.AlertID)
	assert.Equal(t, "Tornado Warning", toast.Title)
	assert.Equal(t, "A confirmed tornado was observed.", toast.Description)
	assert.Equal(t, domain.SeverityExtreme, toast.Severity)
	assert.Equal(t, domain.CategoryTornado, toast.Category)
}

func TestNewToast_TruncatesDescription(t *testing.T) {
	a := domain.Alert{
		ID:          "alert-1",
		Description: strings.Repeat("a", ToastDescriptionLimit+50),
	}

	toast := NewToast(a)
	assert.Len(t, toast.Description, ToastDescriptionLimit+3)
	assert.True(t, strings.HasSuffix(toast.Description, "..."))
}

func TestLogNotifier(t *testing.T) {
	n := NewLog(slog.New(slog.NewTextHandler(io.Discard, nil)))

	assert.NoError(t, n.PlayAlertSound(context.Background()))
	assert.NoError(t, n.ShowToast(context.Background(), Toast{AlertID: "alert-1"}))
}
