package domain

import "fmt"

// ValidationError indicates data that failed schema validation: an upstream
// payload (the fetch aborts) or a persisted blob (the entry is purged and a
// fallback applied).
type ValidationError struct {
	Subject string // what was being validated, e.g. "nws alert feature"
	Err     error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %v", e.Subject, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// RateLimitError indicates a local throttling denial. No retry is scheduled
// automatically.
type RateLimitError struct {
	Key string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded for %s", e.Key)
}

// TransportError indicates a non-2xx upstream response or network failure.
// The pipeline surfaces it as a failed state while retaining previous data.
type TransportError struct {
	Status int
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("request %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("request %s: status %d", e.URL, e.Status)
}

func (e *TransportError) Unwrap() error { return e.Err }

// StorageError indicates a persistence read/write failure. It is logged and
// never blocks in-memory operation.
type StorageError struct {
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Key, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
