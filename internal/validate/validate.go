// Package validate holds the schema-validation and sanitization primitives
// applied at every trust boundary: upstream API payloads, persisted blobs,
// and consumer-supplied input.
package validate

import (
	"math"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/couchcryptid/storm-alert-service/internal/domain"
)

var (
	// scriptTagRe matches complete <script>...</script> blocks, shortest
	// match so sibling blocks are removed independently.
	scriptTagRe = regexp.MustCompile(`(?is)<script\b.*?</script>`)

	// jsURIRe matches javascript: URI schemes.
	jsURIRe = regexp.MustCompile(`(?i)javascript:`)

	// eventAttrRe matches inline event-handler attribute patterns like onclick=.
	eventAttrRe = regexp.MustCompile(`(?i)on\w+=`)
)

// v is the shared validator instance. validator caches struct metadata, so a
// single instance serves all callers.
var v = validator.New(validator.WithRequiredStructEnabled())

// Struct validates the tagged fields of s, returning a domain.ValidationError
// naming the subject on failure.
func Struct(subject string, s any) error {
	if err := v.Struct(s); err != nil {
		return &domain.ValidationError{Subject: subject, Err: err}
	}
	return nil
}

// String strips script tags, javascript: URIs, and inline event-handler
// attribute patterns from input, truncates to maxLength, and trims
// surrounding whitespace. Empty input stays empty.
func String(input string, maxLength int) string {
	s := scriptTagRe.ReplaceAllString(input, "")
	s = jsURIRe.ReplaceAllString(s, "")
	s = eventAttrRe.ReplaceAllString(s, "")
	if len(s) > maxLength {
		s = s[:maxLength]
	}
	return strings.TrimSpace(s)
}

// Number returns input if it is finite and within [min, max], else fallback.
func Number(input, fallback, min, max float64) float64 {
	if math.IsNaN(input) || math.IsInf(input, 0) {
		return fallback
	}
	if input < min || input > max {
		return fallback
	}
	return input
}
