package model

// SeverityCounts holds the verdict breakdown for one severity.
type SeverityCounts struct {
	Active     int `json:"active"`
	Suppressed int `json:"suppressed"`
	Total      int `json:"total"`
}

// SeveritySummary folds a verdicted list into per-severity counts.
type SeveritySummary struct {
	Critical SeverityCounts `json:"critical"`
	High     SeverityCounts `json:"high"`
	Medium   SeverityCounts `json:"medium"`
	Low      SeverityCounts `json:"low"`
}

// For returns the counts bucket for sev, or nil when sev is not recognized.
func (s *SeveritySummary) For(sev Severity) *SeverityCounts {
	switch sev {
	case SeverityCritical:
		return &s.Critical
	case SeverityHigh:
		return &s.High
	case SeverityMedium:
		return &s.Medium
	case SeverityLow:
		return &s.Low
	default:
		return nil
	}
}

// Counts returns a copy of the bucket for sev; unknown severities yield zeros.
func (s SeveritySummary) Counts(sev Severity) SeverityCounts {
	if c := s.For(sev); c != nil {
		return *c
	}
	return SeverityCounts{}
}

// Totals sums the four buckets.
func (s SeveritySummary) Totals() SeverityCounts {
	var t SeverityCounts
	for _, sev := range Severities {
		c := s.Counts(sev)
		t.Active += c.Active
		t.Suppressed += c.Suppressed
		t.Total += c.Total
	}
	return t
}

// HasBlockingFindings reports whether any CRITICAL or HIGH finding is still active.
// The CLI uses this to pick its exit status.
func (s SeveritySummary) HasBlockingFindings() bool {
	return s.Critical.Active > 0 || s.High.Active > 0
}

// HighestActive returns the most severe severity with active findings and
// false when nothing is active.
func (s SeveritySummary) HighestActive() (Severity, bool) {
	for _, sev := range Severities {
		if s.Counts(sev).Active > 0 {
			return sev, true
		}
	}
	return "", false
}
