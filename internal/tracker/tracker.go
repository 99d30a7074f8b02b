// Package tracker keeps the bounded, persisted sets of alert IDs the user
// has dismissed and the pipeline has already notified about.
package tracker

import (
	"log/slog"
	"sync"

	"github.com/couchcryptid/storm-alert-service/internal/domain"
	"github.com/couchcryptid/storm-alert-service/internal/storage"
)

const (
	dismissedKey   = "dismissed_alerts"
	notifiedKey    = "notified_alerts"
	notifiedPrefix = "alert_notified:"

	// MaxTracked caps each set; on overflow only the newest KeepOnEvict
	// members survive. Eviction is FIFO by insertion order.
	MaxTracked  = 1000
	KeepOnEvict = 900
)

// storedIDs is the persisted form of a bounded ID set: an ordered sequence,
// oldest first, deduplicated on load.
type storedIDs struct {
	IDs []string `json:"ids" validate:"dive,required,max=100"`
}

// Tracker owns the dismissed and notified alert-ID sets. In-memory state is
// optimistic relative to storage: persistence failures are logged and never
// block an operation.
type Tracker struct {
	store  storage.Store
	logger *slog.Logger

	mu        sync.RWMutex
	dismissed *boundedSet
	notified  *boundedSet
}

// New loads both sets from storage, starting empty when an entry is absent
// or corrupt (the corrupt entry is purged by the validated load).
func New(store storage.Store, logger *slog.Logger) *Tracker {
	t := &Tracker{store: store, logger: logger}
	t.dismissed = loadSet(store, dismissedKey, logger)
	t.notified = loadSet(store, notifiedKey, logger)
	return t
}

// Dismiss adds an alert ID to the dismissed set and persists it. Invalid
// IDs (empty or longer than 100 characters) are rejected as a logged no-op.
// Dismissing an already-dismissed ID changes nothing.
func (t *Tracker) Dismiss(id string) {
	if !validID(id) {
		t.logger.Warn("ignoring dismiss for invalid alert id", "length", len(id))
		return
	}

	t.mu.Lock()
	changed := t.dismissed.add(id)
	evicted := t.dismissed.enforceCap()
	snapshot := t.dismissed.ordered()
	t.mu.Unlock()

	if !changed && len(evicted) == 0 {
		return
	}
	t.persist(dismissedKey, snapshot)
}

// IsDismissed reports whether the user has dismissed the alert ID.
func (t *Tracker) IsDismissed(id string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.dismissed.has(id)
}

// ClearDismissed empties the dismissed set and removes its persisted
// representation entirely.
func (t *Tracker) ClearDismissed() {
	t.mu.Lock()
	t.dismissed = newBoundedSet(nil)
	t.mu.Unlock()

	if err := t.store.Delete(dismissedKey); err != nil {
		t.logger.Error("failed to remove persisted dismissed set", "error", err)
	}
}

// WasNotified reports whether the notification side effect already fired
// for the alert ID.
func (t *Tracker) WasNotified(id string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.notified.has(id)
}

// MarkNotified records that the alert ID has been notified, persisting a
// per-ID flag plus the bounded index before any side effect is attempted.
// Flags evicted by the cap are deleted from storage.
func (t *Tracker) MarkNotified(id string) {
	if !validID(id) {
		t.logger.Warn("ignoring notify mark for invalid alert id", "length", len(id))
		return
	}

	t.mu.Lock()
	changed := t.notified.add(id)
	evicted := t.notified.enforceCap()
	snapshot := t.notified.ordered()
	t.mu.Unlock()

	if !changed {
		return
	}

	if err := t.store.Set(notifiedPrefix+id, []byte("true")); err != nil {
		t.logger.Error("failed to persist notified flag", "alert_id", id, "error", err)
	}
	for _, old := range evicted {
		if err := t.store.Delete(notifiedPrefix + old); err != nil {
			t.logger.Warn("failed to remove evicted notified flag", "alert_id", old, "error", err)
		}
	}
	t.persist(notifiedKey, snapshot)
}

func (t *Tracker) persist(key string, ids []string) {
	if err := storage.SaveJSON(t.store, key, storedIDs{IDs: ids}); err != nil {
		t.logger.Error("failed to persist tracked alert ids", "key", key, "error", err)
	}
}

func validID(id string) bool {
	return id != "" && len(id) <= domain.MaxIDLength
}

func loadSet(store storage.Store, key string, logger *slog.Logger) *boundedSet {
	var stored storedIDs
	if !storage.LoadJSON(store, key, &stored, logger) {
		return newBoundedSet(nil)
	}
	s := newBoundedSet(stored.IDs)
	if len(stored.IDs) > MaxTracked {
		s.enforceCap()
	}
	return s
}

// boundedSet is an insertion-ordered string set with FIFO eviction. Callers
// synchronize access.
type boundedSet struct {
	order   []string
	members map[string]bool
}

func newBoundedSet(ids []string) *boundedSet {
	s := &boundedSet{members: make(map[string]bool, len(ids))}
	for _, id := range ids {
		s.add(id)
	}
	return s
}

func (s *boundedSet) has(id string) bool {
	return s.members[id]
}

// add appends id in insertion order, reporting whether the set changed.
func (s *boundedSet) add(id string) bool {
	if s.members[id] {
		return false
	}
	s.members[id] = true
	s.order = append(s.order, id)
	return true
}

// enforceCap drops the oldest members once the set exceeds MaxTracked,
// keeping the most recently inserted KeepOnEvict. Returns the evicted IDs.
func (s *boundedSet) enforceCap() []string {
	if len(s.order) <= MaxTracked {
		return nil
	}
	cut := len(s.order) - KeepOnEvict
	evicted := s.order[:cut]
	for _, id := range evicted {
		delete(s.members, id)
	}
	s.order = append([]string(nil), s.order[cut:]...)
	return evicted
}

// ordered returns the members oldest-first.
func (s *boundedSet) ordered() []string {
	return append([]string(nil), s.order...)
}
