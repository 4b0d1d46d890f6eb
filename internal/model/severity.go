package model

import (
	"fmt"
	"strings"
)

// Severity is the ordinal risk level attached to a RiskCategory.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Severities lists every level from least to most severe.
var Severities = []Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}

// Weight maps the severity onto the ordinal scale used by the score
// aggregator. Unknown severities weigh zero.
func (s Severity) Weight() int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	case SeverityCritical:
		return 5
	default:
		return 0
	}
}

// Valid reports whether s is one of the known levels.
func (s Severity) Valid() bool { return s.Weight() > 0 }

func (s Severity) String() string { return string(s) }

// Title returns the severity with its first letter capitalized ("High").
func (s Severity) Title() string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(string(s[:1])) + string(s[1:])
}

// ParseSeverity normalizes a user supplied severity name.
func ParseSeverity(raw string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "low":
		return SeverityLow, nil
	case "medium", "moderate":
		return SeverityMedium, nil
	case "high":
		return SeverityHigh, nil
	case "critical":
		return SeverityCritical, nil
	}
	return "", fmt.Errorf("unknown severity %q: %w", raw, ErrInvalidInput)
}
