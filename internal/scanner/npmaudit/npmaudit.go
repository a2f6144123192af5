// Package npmaudit adapts `npm audit --json` reports (npm v7 and later).
package npmaudit

import (
	"fmt"
	"sort"
	"strings"

	"vulnreport/internal/model"
	"vulnreport/internal/scanner/shape"
)

// Name is the format name the adapter is registered under.
const Name = "npm-audit"

type Report struct {
	AuditReportVersion int                `json:"auditReportVersion"`
	Vulnerabilities    map[string]Package `json:"vulnerabilities"`
}

// Package is one entry of the vulnerabilities object. Via holds advisory
// objects or the names of the dependencies that pull the issue in, and
// FixAvailable is either a bool or an object with the fixing version.
type Package struct {
	Name         string `json:"name"`
	Severity     string `json:"severity"`
	IsDirect     bool   `json:"isDirect"`
	Via          []any  `json:"via"`
	Range        string `json:"range"`
	FixAvailable any    `json:"fixAvailable"`
}

// Advisory is an object entry of Package.Via.
type Advisory struct {
	Source   any    `json:"source"`
	Name     string `json:"name"`
	Title    string `json:"title"`
	URL      string `json:"url"`
	Severity string `json:"severity"`
	Range    string `json:"range"`
}

type Adapter struct{}

func New() *Adapter {
	return &Adapter{}
}

// Detect matches documents with an auditReportVersion field and a
// vulnerabilities object.
func (a *Adapter) Detect(raw any) bool {
	doc, ok := shape.Object(raw)
	if !ok || !shape.HasKeys(doc, "auditReportVersion") {
		return false
	}
	_, ok = doc["vulnerabilities"].(map[string]any)
	return ok
}

// ParseReport emits one vulnerability per advisory, ordered by package
// name. Entries that only point at other packages are skipped since the
// advisory is reported on the package that owns it.
func (a *Adapter) ParseReport(raw any) ([]model.Vulnerability, error) {
	var report Report
	if err := shape.Decode(raw, &report); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(report.Vulnerabilities))
	for name := range report.Vulnerabilities {
		names = append(names, name)
	}
	sort.Strings(names)

	vulns := []model.Vulnerability{}
	for _, name := range names {
		pkg := report.Vulnerabilities[name]
		fixed := fixedVersion(pkg.FixAvailable)
		for _, via := range pkg.Via {
			if _, ok := via.(map[string]any); !ok {
				continue
			}
			var adv Advisory
			if err := shape.Decode(via, &adv); err != nil {
				return nil, fmt.Errorf("package %s: %w", name, err)
			}
			vulns = append(vulns, normalize(name, fixed, adv))
		}
	}
	return vulns, nil
}

func normalize(pkg, fixed string, adv Advisory) model.Vulnerability {
	v := model.Vulnerability{
		ID:           advisoryID(adv),
		PackageName:  pkg,
		FixedVersion: fixed,
		Severity:     severity(adv.Severity),
		Title:        adv.Title,
	}
	if adv.Range != "" {
		v.Description = "Vulnerable versions: " + adv.Range
	}
	if adv.URL != "" {
		v.References = []string{adv.URL}
	}
	return v
}

// advisoryID prefers the GHSA identifier at the end of the advisory URL.
func advisoryID(adv Advisory) string {
	if i := strings.LastIndex(adv.URL, "/"); i >= 0 {
		if id := adv.URL[i+1:]; strings.HasPrefix(id, "GHSA-") {
			return id
		}
	}
	switch src := adv.Source.(type) {
	case float64:
		return fmt.Sprintf("NPM-%d", int64(src))
	case int, int64:
		return fmt.Sprintf("NPM-%d", src)
	case string:
		if src != "" {
			return "NPM-" + src
		}
	}
	return "NPM-UNKNOWN"
}

func severity(s string) model.Severity {
	s = strings.ToUpper(s)
	if s == "MODERATE" {
		return model.SeverityMedium
	}
	return model.Severity(s)
}

func fixedVersion(fix any) string {
	m, ok := fix.(map[string]any)
	if !ok {
		return ""
	}
	v, _ := m["version"].(string)
	return v
}
