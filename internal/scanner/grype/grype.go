// Package grype adapts Grype JSON reports (`grype -o json`).
package grype

import (
	"strings"

	"vulnreport/internal/model"
	"vulnreport/internal/scanner/shape"
)

// Name is the format name the adapter is registered under.
const Name = "grype"

const maxTitleLen = 120

type Document struct {
	Matches []Match `json:"matches"`
}

type Match struct {
	Vulnerability Vulnerability `json:"vulnerability"`
	Artifact      Artifact      `json:"artifact"`
}

type Vulnerability struct {
	ID          string   `json:"id"`
	DataSource  string   `json:"dataSource"`
	Severity    string   `json:"severity"`
	URLs        []string `json:"urls"`
	Description string   `json:"description"`
	Fix         Fix      `json:"fix"`
}

type Fix struct {
	Versions []string `json:"versions"`
	State    string   `json:"state"`
}

type Artifact struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Type    string `json:"type"`
}

type Adapter struct{}

func New() *Adapter {
	return &Adapter{}
}

// Detect matches documents with a `matches` array and a `descriptor` object.
func (a *Adapter) Detect(raw any) bool {
	doc, ok := shape.Object(raw)
	if !ok {
		return false
	}
	if _, ok := shape.Array(doc, "matches"); !ok {
		return false
	}
	_, ok = shape.Object(doc["descriptor"])
	return ok
}

func (a *Adapter) ParseReport(raw any) ([]model.Vulnerability, error) {
	var doc Document
	if err := shape.Decode(raw, &doc); err != nil {
		return nil, err
	}

	vulns := make([]model.Vulnerability, 0, len(doc.Matches))
	for _, m := range doc.Matches {
		vulns = append(vulns, normalize(m))
	}
	return vulns, nil
}

func normalize(m Match) model.Vulnerability {
	v := model.Vulnerability{
		ID:               m.Vulnerability.ID,
		PackageName:      m.Artifact.Name,
		InstalledVersion: m.Artifact.Version,
		Severity:         model.Severity(strings.ToUpper(m.Vulnerability.Severity)),
		Title:            title(m.Vulnerability),
		Description:      m.Vulnerability.Description,
	}
	if len(m.Vulnerability.Fix.Versions) > 0 {
		v.FixedVersion = m.Vulnerability.Fix.Versions[0]
	}
	refs := m.Vulnerability.URLs
	if len(refs) == 0 && m.Vulnerability.DataSource != "" {
		refs = []string{m.Vulnerability.DataSource}
	}
	if len(refs) > 0 {
		v.References = append([]string(nil), refs...)
	}
	return v
}

// title is the first line of the description, truncated, or the ID.
func title(v Vulnerability) string {
	line, _, _ := strings.Cut(strings.TrimSpace(v.Description), "\n")
	line = strings.TrimSpace(line)
	if line == "" {
		return v.ID
	}
	if r := []rune(line); len(r) > maxTitleLen {
		return string(r[:maxTitleLen-3]) + "..."
	}
	return line
}
