package models

import "strings"

// SeverityLevel represents the severity of a security finding.
type SeverityLevel string

const (
	SeverityCritical SeverityLevel = "CRITICAL"
	SeverityHigh     SeverityLevel = "HIGH"
	SeverityMedium   SeverityLevel = "MEDIUM"
	SeverityLow      SeverityLevel = "LOW"
	SeverityUnknown  SeverityLevel = "UNKNOWN"
)

// Weight returns a numeric weight for sorting (higher = more severe).
func (s SeverityLevel) Weight() int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

func (s SeverityLevel) String() string {
	return string(s)
}

// NormalizeSeverity upper-cases a scanner-reported severity string.
// Empty values map to the UNKNOWN sentinel; anything else passes through
// upper-cased so tool-specific levels (UNSPECIFIED, MODERATE, ...) survive
// into the finding record unchanged.
func NormalizeSeverity(raw string) string {
	raw = strings.ToUpper(strings.TrimSpace(raw))
	if raw == "" {
		return string(SeverityUnknown)
	}
	return raw
}
