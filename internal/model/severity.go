package model

// Severity is the scanner-reported severity of a finding.
// Only the four constants below are recognized; anything else a scanner
// emits is carried through as-is and ignored by aggregation.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
)

// Severities lists the recognized severities from most to least severe.
var Severities = []Severity{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow}

// Rank returns an integer rank for comparison (Low=1, Critical=4, unknown=0).
func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	case SeverityCritical:
		return 4
	default:
		return 0
	}
}

// Known reports whether s is one of the four recognized severities.
// The comparison is exact and case-sensitive.
func (s Severity) Known() bool {
	return s.Rank() > 0
}

func (s Severity) String() string {
	return string(s)
}
