package domain

import (
	"strings"
	"time"
)

// Field length caps applied when mapping upstream free text into an Alert.
const (
	MaxIDLength          = 100
	MaxTitleLength       = 200
	MaxDescriptionLength = 1000
	MaxInstructionLength = 1000
	MaxAreaLength        = 100
	MaxAreas             = 20
)

// Severity is the four-level alert severity scale.
type Severity string

const (
	SeverityMinor    Severity = "minor"
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
	SeverityExtreme  Severity = "extreme"
)

// Rank returns the position of the severity in the total order
// minor(1) < moderate(2) < severe(3) < extreme(4). Unknown values rank 0.
func (s Severity) Rank() int {
	switch s {
	case SeverityMinor:
		return 1
	case SeverityModerate:
		return 2
	case SeveritySevere:
		return 3
	case SeverityExtreme:
		return 4
	default:
		return 0
	}
}

// Valid reports whether s is one of the four known severity levels.
func (s Severity) Valid() bool {
	return s.Rank() > 0
}

// ParseSeverity maps an upstream severity string to the four-level scale.
// Matching is case-insensitive; unrecognized or empty values fall back to moderate.
func ParseSeverity(raw string) Severity {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "extreme":
		return SeverityExtreme
	case "severe":
		return SeveritySevere
	case "moderate":
		return SeverityModerate
	case "minor":
		return SeverityMinor
	default:
		return SeverityModerate
	}
}

// Urgency describes how soon an alert requires action.
type Urgency string

const (
	UrgencyImmediate Urgency = "immediate"
	UrgencyExpected  Urgency = "expected"
	UrgencyFuture    Urgency = "future"
	UrgencyPast      Urgency = "past"
)

// ParseUrgency maps an upstream urgency string, case-insensitively.
// Unrecognized values fall back to future.
func ParseUrgency(raw string) Urgency {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "immediate":
		return UrgencyImmediate
	case "expected":
		return UrgencyExpected
	case "future":
		return UrgencyFuture
	case "past":
		return UrgencyPast
	default:
		return UrgencyFuture
	}
}

// Certainty describes the upstream confidence in the alerted event.
type Certainty string

const (
	CertaintyObserved Certainty = "observed"
	CertaintyLikely   Certainty = "likely"
	CertaintyPossible Certainty = "possible"
	CertaintyUnlikely Certainty = "unlikely"
	CertaintyUnknown  Certainty = "unknown"
)

// ParseCertainty maps an upstream certainty string, case-insensitively.
// Unrecognized values fall back to unknown.
func ParseCertainty(raw string) Certainty {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "observed":
		return CertaintyObserved
	case "likely":
		return CertaintyLikely
	case "possible":
		return CertaintyPossible
	case "unlikely":
		return CertaintyUnlikely
	default:
		return CertaintyUnknown
	}
}

// Category is the user-facing alert classification derived from the upstream
// free-text event name.
type Category string

const (
	CategoryTornado            Category = "tornado"
	CategorySevereThunderstorm Category = "severe_thunderstorm"
	CategoryFlashFlood         Category = "flash_flood"
	CategoryWinterStorm        Category = "winter_storm"
	CategoryOther              Category = "other"
)

// Valid reports whether c is one of the five known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryTornado, CategorySevereThunderstorm, CategoryFlashFlood,
		CategoryWinterStorm, CategoryOther:
		return true
	default:
		return false
	}
}

// ClassifyEvent derives a category from the upstream event name by keyword,
// first match wins: tornado, then thunderstorm/severe, then flood/flash,
// then winter/snow/ice, else other.
func ClassifyEvent(event string) Category {
	e := strings.ToLower(event)
	switch {
	case strings.Contains(e, "tornado"):
		return CategoryTornado
	case strings.Contains(e, "thunderstorm") || strings.Contains(e, "severe"):
		return CategorySevereThunderstorm
	case strings.Contains(e, "flood") || strings.Contains(e, "flash"):
		return CategoryFlashFlood
	case strings.Contains(e, "winter") || strings.Contains(e, "snow") || strings.Contains(e, "ice"):
		return CategoryWinterStorm
	default:
		return CategoryOther
	}
}

// Source identifies the upstream authority an alert came from.
type Source string

const (
	SourceNWS         Source = "nws"
	SourceOpenWeather Source = "openweather"
	SourceAccuWeather Source = "accuweather"
)

// Geo is a WGS-84 latitude/longitude coordinate pair.
type Geo struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Alert is a normalized severe-weather warning. Instances are immutable once
// produced by an adapter: every field has passed container validation and
// free-text fields are sanitized and length-capped.
type Alert struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Instruction string    `json:"instruction,omitempty"`
	Severity    Severity  `json:"severity"`
	Urgency     Urgency   `json:"urgency"`
	Certainty   Certainty `json:"certainty"`
	Category    Category  `json:"category"`
	Areas       []string  `json:"areas"`
	Effective   string    `json:"effective"`
	Expires     string    `json:"expires,omitempty"`
	Onset       string    `json:"onset,omitempty"`
	Source      Source    `json:"source"`
	Coordinates *Geo      `json:"coordinates,omitempty"`
}

// Critical reports whether the alert is severe or extreme.
func (a Alert) Critical() bool {
	return a.Severity.Rank() >= SeveritySevere.Rank()
}

// SplitAreas splits a delimited area description (e.g. "Travis, TX; Hays, TX")
// into trimmed entries, dropping empties and capping the list at MaxAreas.
func SplitAreas(areaDesc string) []string {
	if strings.TrimSpace(areaDesc) == "" {
		return nil
	}
	parts := strings.Split(areaDesc, ";")
	areas := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if len(p) > MaxAreaLength {
			p = p[:MaxAreaLength]
		}
		areas = append(areas, p)
		if len(areas) == MaxAreas {
			break
		}
	}
	return areas
}

// StaleLocationAfter is how old a reported location may be before it is discarded.
const StaleLocationAfter = time.Hour
