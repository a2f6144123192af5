package notify

import (
	"fmt"
	"time"

	"vulnreport/internal/model"
)

// Hex colours keyed by how bad the active findings are.
const (
	colorClean    = "28a745"
	colorCritical = "dc3545"
	colorHigh     = "fd7e14"
	colorNotice   = "ffc107"
)

// themeColor picks the card colour from the most severe active finding.
func themeColor(s model.SeveritySummary) string {
	switch {
	case s.Critical.Active > 0:
		return colorCritical
	case s.High.Active > 0:
		return colorHigh
	case s.Totals().Active > 0:
		return colorNotice
	default:
		return colorClean
	}
}

// headline is the one sentence summary shown at the top of every message.
func headline(s model.SeveritySummary) string {
	switch active := s.Totals().Active; {
	case active == 0:
		return "✅ No active vulnerabilities found"
	case s.Critical.Active > 0:
		return fmt.Sprintf("🚨 %d critical vulnerabilities need immediate attention", s.Critical.Active)
	case s.High.Active > 0:
		return fmt.Sprintf("⚠️ %d high severity vulnerabilities should be fixed soon", s.High.Active)
	default:
		return fmt.Sprintf("📊 %d medium or low severity vulnerabilities found", active)
	}
}

func severityLabel(sev model.Severity) string {
	switch sev {
	case model.SeverityCritical:
		return "Critical"
	case model.SeverityHigh:
		return "High"
	case model.SeverityMedium:
		return "Medium"
	case model.SeverityLow:
		return "Low"
	}
	return string(sev)
}

func countLine(c model.SeverityCounts) string {
	return fmt.Sprintf("%d active, %d suppressed (total %d)", c.Active, c.Suppressed, c.Total)
}

type fact struct {
	Title string `json:"title"`
	Value string `json:"value"`
}

// facts lists one line per severity followed by the scan time.
func facts(p model.NotificationPayload) []fact {
	out := make([]fact, 0, len(model.Severities)+1)
	for _, sev := range model.Severities {
		out = append(out, fact{Title: severityLabel(sev), Value: countLine(p.Summary.Counts(sev))})
	}
	return append(out, fact{Title: "Scan time", Value: scanTime(p).Format(time.RFC1123)})
}

func scanTime(p model.NotificationPayload) time.Time {
	if p.GeneratedAt.IsZero() {
		return time.Now()
	}
	return p.GeneratedAt
}
