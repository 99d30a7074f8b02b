// Package settings holds user alert preferences: radius, enabled categories,
// severity threshold, and notification toggles.
package settings

import (
	"log/slog"
	"sync"

	"github.com/couchcryptid/storm-alert-service/internal/domain"
	"github.com/couchcryptid/storm-alert-service/internal/storage"
	"github.com/couchcryptid/storm-alert-service/internal/validate"
)

const storageKey = "alert_settings"

// Radius bounds in miles.
const (
	MinRadius     = 1
	MaxRadius     = 1000
	DefaultRadius = 25
)

// AlertSettings are the user preferences driving alert filtering and
// notification. EnabledCategories is an unordered set.
type AlertSettings struct {
	Radius            float64                  `json:"radius"`
	EnabledCategories map[domain.Category]bool `json:"enabledCategories"`
	EnableSound       bool                     `json:"enableSound"`
	EnablePush        bool                     `json:"enablePush"`
	SeverityThreshold domain.Severity          `json:"severityThreshold"`
}

// Update is a partial settings change: nil fields keep their current value.
type Update struct {
	Radius            *float64          `json:"radius"`
	EnabledCategories []domain.Category `json:"enabledCategories"`
	EnableSound       *bool             `json:"enableSound"`
	EnablePush        *bool             `json:"enablePush"`
	SeverityThreshold *domain.Severity  `json:"severityThreshold"`
}

// Defaults returns the out-of-the-box settings.
func Defaults() AlertSettings {
	return AlertSettings{
		Radius: DefaultRadius,
		EnabledCategories: map[domain.Category]bool{
			domain.CategoryTornado:            true,
			domain.CategorySevereThunderstorm: true,
			domain.CategoryFlashFlood:         true,
		},
		EnableSound:       true,
		EnablePush:        true,
		SeverityThreshold: domain.SeverityModerate,
	}
}

// storedSettings is the persisted form: the category set round-trips as an
// ordered sequence and is deduplicated on load.
type storedSettings struct {
	Radius            float64  `json:"radius" validate:"gt=0,lte=1000"`
	EnabledCategories []string `json:"enabledCategories"`
	EnableSound       bool     `json:"enableSound"`
	EnablePush        bool     `json:"enablePush"`
	SeverityThreshold string   `json:"severityThreshold" validate:"oneof=minor moderate severe extreme"`
}

// Store owns the current settings value. It is constructed once from
// persisted storage and mutated only through partial-update merges. The
// in-memory value is optimistic relative to storage: a persistence failure
// is surfaced but never rolls the value back.
type Store struct {
	store  storage.Store
	logger *slog.Logger

	mu      sync.RWMutex
	current AlertSettings
}

// NewStore loads settings from storage, falling back to defaults when the
// entry is absent or fails validation (the corrupt entry is purged).
func NewStore(store storage.Store, logger *slog.Logger) *Store {
	s := &Store{store: store, logger: logger, current: Defaults()}

	var stored storedSettings
	if storage.LoadJSON(store, storageKey, &stored, logger) {
		s.current = fromStored(stored)
	}
	return s
}

// Get returns a snapshot of the current settings. The category set is copied
// so callers cannot mutate shared state.
func (s *Store) Get() AlertSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.clone()
}

// Apply merges a partial update into the current settings, persists the
// result, and returns the new value. Radius values outside [1, 1000] fall
// back to the default before the merge. A persistence failure is returned
// alongside the (already applied) new value.
func (s *Store) Apply(u Update) (AlertSettings, error) {
	s.mu.Lock()
	next := s.current.clone()

	if u.Radius != nil {
		next.Radius = validate.Number(*u.Radius, DefaultRadius, MinRadius, MaxRadius)
	}
	if u.EnabledCategories != nil {
		cats := make(map[domain.Category]bool, len(u.EnabledCategories))
		for _, c := range u.EnabledCategories {
			if c.Valid() {
				cats[c] = true
			}
		}
		next.EnabledCategories = cats
	}
	if u.EnableSound != nil {
		next.EnableSound = *u.EnableSound
	}
	if u.EnablePush != nil {
		next.EnablePush = *u.EnablePush
	}
	if u.SeverityThreshold != nil && u.SeverityThreshold.Valid() {
		next.SeverityThreshold = *u.SeverityThreshold
	}

	s.current = next
	s.mu.Unlock()

	if err := storage.SaveJSON(s.store, storageKey, toStored(next)); err != nil {
		s.logger.Error("failed to persist settings", "error", err)
		return next, err
	}
	return next, nil
}

// Categories returns the enabled categories in stable taxonomy order.
func (s AlertSettings) Categories() []domain.Category {
	cats := make([]domain.Category, 0, len(s.EnabledCategories))
	for _, c := range []domain.Category{
		domain.CategoryTornado, domain.CategorySevereThunderstorm,
		domain.CategoryFlashFlood, domain.CategoryWinterStorm, domain.CategoryOther,
	} {
		if s.EnabledCategories[c] {
			cats = append(cats, c)
		}
	}
	return cats
}

func (s AlertSettings) clone() AlertSettings {
	cats := make(map[domain.Category]bool, len(s.EnabledCategories))
	for c, on := range s.EnabledCategories {
		if on {
			cats[c] = true
		}
	}
	s.EnabledCategories = cats
	return s
}

func toStored(s AlertSettings) storedSettings {
	ordered := s.Categories()
	cats := make([]string, 0, len(ordered))
	for _, c := range ordered {
		cats = append(cats, string(c))
	}
	return storedSettings{
		Radius:            s.Radius,
		EnabledCategories: cats,
		EnableSound:       s.EnableSound,
		EnablePush:        s.EnablePush,
		SeverityThreshold: string(s.SeverityThreshold),
	}
}

func fromStored(stored storedSettings) AlertSettings {
	s := AlertSettings{
		Radius:            validate.Number(stored.Radius, DefaultRadius, MinRadius, MaxRadius),
		EnableSound:       stored.EnableSound,
		EnablePush:        stored.EnablePush,
		SeverityThreshold: domain.Severity(stored.SeverityThreshold),
	}

	cats := make(map[domain.Category]bool, len(stored.EnabledCategories))
	for _, raw := range stored.EnabledCategories {
		if c := domain.Category(raw); c.Valid() {
			cats[c] = true
		}
	}
	if len(cats) == 0 {
		cats = Defaults().EnabledCategories
	}
	s.EnabledCategories = cats
	return s
}
