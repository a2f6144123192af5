package suppress

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"vulnreport/internal/model"
)

func verdict(sev model.Severity, suppressed bool) model.VerdictedVulnerability {
	return model.VerdictedVulnerability{
		Vulnerability: model.Vulnerability{ID: "CVE-X", Severity: sev},
		Suppressed:    suppressed,
	}
}

func TestGenerateSummary_EmptyRuleSet(t *testing.T) {
	vulns := []model.Vulnerability{
		{ID: "CVE-1", Severity: model.SeverityCritical},
		{ID: "CVE-2", Severity: model.SeverityHigh},
		{ID: "CVE-3", Severity: model.SeverityLow},
	}

	got := GenerateSummary(NewEngine(nil).Evaluate(vulns))

	want := model.SeveritySummary{
		Critical: model.SeverityCounts{Active: 1, Total: 1},
		High:     model.SeverityCounts{Active: 1, Total: 1},
		Low:      model.SeverityCounts{Active: 1, Total: 1},
	}
	assert.Equal(t, want, got)
}

func TestGenerateSummary_Counts(t *testing.T) {
	verdicts := []model.VerdictedVulnerability{
		verdict(model.SeverityCritical, true),
		verdict(model.SeverityCritical, false),
		verdict(model.SeverityMedium, true),
		verdict(model.SeverityMedium, true),
		verdict(model.SeverityLow, false),
	}

	got := GenerateSummary(verdicts)
	assert.Equal(t, model.SeverityCounts{Active: 1, Suppressed: 1, Total: 2}, got.Critical)
	assert.Equal(t, model.SeverityCounts{}, got.High)
	assert.Equal(t, model.SeverityCounts{Suppressed: 2, Total: 2}, got.Medium)
	assert.Equal(t, model.SeverityCounts{Active: 1, Total: 1}, got.Low)

	for _, sev := range model.Severities {
		c := got.Counts(sev)
		assert.Equal(t, c.Active+c.Suppressed, c.Total, sev)
	}
	assert.Equal(t, len(verdicts), got.Totals().Total)
}

func TestGenerateSummary_DropsUnrecognizedSeverities(t *testing.T) {
	verdicts := []model.VerdictedVulnerability{
		verdict(model.SeverityHigh, false),
		verdict("critical", false),
		verdict("UNKNOWN", true),
		verdict("", false),
	}

	got := GenerateSummary(verdicts)
	assert.Equal(t, model.SeverityCounts{Active: 1, Total: 1}, got.High)
	assert.Equal(t, model.SeverityCounts{}, got.Critical)
	assert.Equal(t, 1, got.Totals().Total)
	assert.Len(t, Unrecognized(verdicts), 3)
}

func TestGenerateSummary_OrderIndependent(t *testing.T) {
	a := []model.VerdictedVulnerability{
		verdict(model.SeverityHigh, false),
		verdict(model.SeverityLow, true),
		verdict(model.SeverityHigh, true),
	}
	b := []model.VerdictedVulnerability{a[2], a[0], a[1]}

	assert.Equal(t, GenerateSummary(a), GenerateSummary(b))
}
