// Package trivy adapts Trivy JSON reports (`trivy ... --format json`).
package trivy

import (
	"vulnreport/internal/model"
	"vulnreport/internal/scanner/shape"
)

// Name is the format name the adapter is registered under.
const Name = "trivy"

// Report is the subset of the Trivy report we read.
type Report struct {
	SchemaVersion int      `json:"SchemaVersion"`
	CreatedAt     string   `json:"CreatedAt"`
	ArtifactName  string   `json:"ArtifactName"`
	Results       []Result `json:"Results"`
}

type Result struct {
	Target          string          `json:"Target"`
	Class           string          `json:"Class"`
	Type            string          `json:"Type"`
	Vulnerabilities []Vulnerability `json:"Vulnerabilities"`
}

type Vulnerability struct {
	VulnerabilityID  string `json:"VulnerabilityID"`
	PkgName          string `json:"PkgName"`
	InstalledVersion string `json:"InstalledVersion"`
	FixedVersion     string `json:"FixedVersion"`
	Severity         string `json:"Severity"`
	Title            string `json:"Title"`
	Description      string `json:"Description"`
	PrimaryURL       string `json:"PrimaryURL"`
}

// Adapter parses Trivy reports.
type Adapter struct{}

// New returns a Trivy adapter.
func New() *Adapter {
	return &Adapter{}
}

// Detect reports whether raw has the Trivy shape: a SchemaVersion field and
// a Results array, plus either a CreatedAt field, an empty Results array or
// at least one result carrying Target, Class and Type.
func (a *Adapter) Detect(raw any) bool {
	doc, ok := shape.Object(raw)
	if !ok || !shape.HasKeys(doc, "SchemaVersion") {
		return false
	}
	results, ok := shape.Array(doc, "Results")
	if !ok {
		return false
	}
	if shape.HasKeys(doc, "CreatedAt") || len(results) == 0 {
		return true
	}
	for _, r := range results {
		if m, ok := shape.Object(r); ok && shape.HasKeys(m, "Target", "Class", "Type") {
			return true
		}
	}
	return false
}

// ParseReport flattens every result's vulnerabilities, in report order.
// Results without a Vulnerabilities field contribute nothing.
func (a *Adapter) ParseReport(raw any) ([]model.Vulnerability, error) {
	var report Report
	if err := shape.Decode(raw, &report); err != nil {
		return nil, err
	}

	vulns := []model.Vulnerability{}
	for _, result := range report.Results {
		for _, v := range result.Vulnerabilities {
			vulns = append(vulns, normalize(v))
		}
	}
	return vulns, nil
}

func normalize(v Vulnerability) model.Vulnerability {
	out := model.Vulnerability{
		ID:               v.VulnerabilityID,
		PackageName:      v.PkgName,
		InstalledVersion: v.InstalledVersion,
		FixedVersion:     v.FixedVersion,
		Severity:         model.Severity(v.Severity),
		Title:            v.Title,
		Description:      v.Description,
	}
	if v.PrimaryURL != "" {
		out.References = []string{v.PrimaryURL}
	}
	return out
}
