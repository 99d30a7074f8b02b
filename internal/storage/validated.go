package storage

import (
	"encoding/json"
	"log/slog"

	"github.com/couchcryptid/storm-alert-service/internal/validate"
)

// LoadJSON reads key from the store, unmarshals it into dest, and validates
// the result. Storage is self-healing: on any failure (unreadable, malformed
// JSON, schema violation) the corrupt entry is deleted, a warning is logged,
// and false is returned so the caller applies its fallback. Returns false
// without logging when the key is simply absent.
func LoadJSON(s Store, key string, dest any, logger *slog.Logger) bool {
	data, err := s.Get(key)
	if err != nil {
		logger.Warn("failed to read stored entry, using fallback", "key", key, "error", err)
		return false
	}
	if data == nil {
		return false
	}

	if err := json.Unmarshal(data, dest); err != nil {
		purge(s, key, logger, err)
		return false
	}
	if err := validate.Struct(key, dest); err != nil {
		purge(s, key, logger, err)
		return false
	}
	return true
}

// SaveJSON marshals v and writes it under key.
func SaveJSON(s Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.Set(key, data)
}

func purge(s Store, key string, logger *slog.Logger, cause error) {
	logger.Warn("invalid stored entry, purging and using fallback", "key", key, "error", cause)
	if err := s.Delete(key); err != nil {
		logger.Warn("failed to purge invalid stored entry", "key", key, "error", err)
	}
}
