package suppress

import "vulnreport/internal/model"

// GenerateSummary counts verdicts per severity. Severities are matched
// exactly, so values outside CRITICAL, HIGH, MEDIUM and LOW (including a
// lower-case "critical") are left out of every count.
func GenerateSummary(verdicts []model.VerdictedVulnerability) model.SeveritySummary {
	var s model.SeveritySummary
	for _, v := range verdicts {
		c := s.For(v.Severity)
		if c == nil {
			continue
		}
		if v.Suppressed {
			c.Suppressed++
		} else {
			c.Active++
		}
		c.Total++
	}
	return s
}

// Unrecognized returns the verdicts GenerateSummary leaves out.
func Unrecognized(verdicts []model.VerdictedVulnerability) []model.VerdictedVulnerability {
	var out []model.VerdictedVulnerability
	for _, v := range verdicts {
		if !v.Severity.Known() {
			out = append(out, v)
		}
	}
	return out
}
