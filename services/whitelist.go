package services

import (
	"log"
	"os"
	"strings"
)

// defaultAllowedProperties is the built-in allow-list used when
// ALLOWED_PROPERTIES is not set.
var defaultAllowedProperties = []string{"orbi city"}

// AllowedProperties returns the configured property allow-list. Entries are
// comma separated names, aliases or locations.
func AllowedProperties() []string {
	raw := os.Getenv("ALLOWED_PROPERTIES")
	if raw == "" {
		return defaultAllowedProperties
	}

	var allowed []string
	for _, entry := range strings.Split(raw, ",") {
		trimmed := strings.TrimSpace(entry)
		if trimmed != "" {
			allowed = append(allowed, trimmed)
		}
	}
	if len(allowed) == 0 {
		return defaultAllowedProperties
	}
	return allowed
}

// IsPropertyAllowed checks a place name or location string against the
// allow-list. Matching is case insensitive and accepts containment in either
// direction, so "ORBI CITY Batumi Apartments" matches the entry "orbi city".
// This is a hard content filter: batches for foreign properties are dropped.
func IsPropertyAllowed(place string, allowed []string) bool {
	normalized := strings.ToLower(strings.TrimSpace(place))
	if normalized == "" {
		log.Printf("whitelist check: empty place name")
		return false
	}

	for _, entry := range allowed {
		entryNorm := strings.ToLower(strings.TrimSpace(entry))
		if entryNorm == "" {
			continue
		}
		if strings.Contains(normalized, entryNorm) || strings.Contains(entryNorm, normalized) {
			return true
		}
	}

	log.Printf("whitelist check: %q matches none of %v", place, allowed)
	return false
}

// DetectSource infers the originating platform from a task name or source
// string by keyword. Keywords are checked in a fixed order so a name that
// mentions several platforms always resolves the same way. Unknown names
// default to google, the baseline platform.
func DetectSource(taskName string) string {
	name := strings.ToLower(taskName)
	for _, entry := range sourceKeywords {
		if strings.Contains(name, entry.keyword) {
			return entry.source
		}
	}
	return "google"
}

var sourceKeywords = []struct {
	keyword string
	source  string
}{
	{"booking", "booking"},
	{"airbnb", "airbnb"},
	{"tripadvisor", "tripadvisor"},
	{"expedia", "expedia"},
	{"agoda", "agoda"},
	{"hostelworld", "hostelworld"},
	{"facebook", "facebook"},
}
