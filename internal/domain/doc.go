// Package domain models National Weather Service (NWS) severe-weather alerts
// and surface observations.
//
// # Data Source
//
// Alerts come from the NWS public API (https://api.weather.gov) point query
// GET /alerts/active?point={lat},{lon}. Each feature carries CAP-style
// properties: event, headline, description, severity, urgency, certainty,
// areaDesc, effective/expires/onset timestamps, and an optional instruction.
//
// # NWS Conventions
//
// Severity, urgency, and certainty arrive as capitalized free text
// ("Extreme", "Immediate", "Observed"). Parsing is case-insensitive, and
// unrecognized values fall back to documented defaults: severity → moderate,
// urgency → future, certainty → unknown. The four-level severity scale
// (minor, moderate, severe, extreme) is totally ordered; threshold filtering
// and the critical partition (severe or above) both use [Severity.Rank].
//
// The category taxonomy (tornado, severe_thunderstorm, flash_flood,
// winter_storm, other) is a project-specific classification over the
// free-text event name, keyword-matched first-match-wins:
//
//	tornado → thunderstorm/severe → flood/flash → winter/snow/ice → other
//
// so "Tornado Warning" classifies as tornado even though a warning for
// "Severe Thunderstorm" matches the second rule, and "Flash Flood Warning"
// the third.
//
// Area descriptions are a single semicolon-delimited string
// ("Travis, TX; Hays, TX"); [SplitAreas] trims entries, drops empties, and
// caps the list at 20.
//
// Observations (GET /stations/{id}/observations/latest) report SI values in
// nullable wrappers ({"value": number|null}); the conversion helpers in this
// package produce the US customary units the consumer surface uses.
package domain
