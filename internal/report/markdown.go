package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"vulnreport/internal/model"
)

// MarkdownWriter writes a human readable report.
type MarkdownWriter struct{}

func (MarkdownWriter) Write(w io.Writer, d Data) error {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# %s\n\n", d.Title)
	if !d.GeneratedAt.IsZero() {
		fmt.Fprintf(&sb, "**Generated:** %s\n", d.GeneratedAt.UTC().Format(time.RFC3339))
	}
	if d.Scanner != "" {
		fmt.Fprintf(&sb, "**Scanner:** %s\n", d.Scanner)
	}
	if d.DetailsURL != "" {
		fmt.Fprintf(&sb, "**Details:** [%s](%s)\n", d.DetailsURL, d.DetailsURL)
	}
	sb.WriteString("\n## Summary\n\n")
	sb.WriteString(SummaryTable(d.Summary))

	sb.WriteString("\n## Findings\n\n")
	if len(d.Vulnerabilities) == 0 {
		sb.WriteString("No vulnerabilities found.\n")
	} else {
		sb.WriteString("| Severity | ID | Package | Installed | Fixed | Status | Title |\n")
		sb.WriteString("| :--- | :--- | :--- | :--- | :--- | :--- | :--- |\n")
		for _, v := range d.Vulnerabilities {
			status := v.Status()
			if v.Suppressed {
				status += " (" + v.Reason + ")"
			}
			fmt.Fprintf(&sb, "| %s | %s | %s | %s | %s | %s | %s |\n",
				v.Severity, link(v), cell(v.PackageName), cell(v.InstalledVersion),
				cell(orNA(v.FixedVersion)), cell(status), cell(v.Title))
		}
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// SummaryTable renders the per-severity counts as a Markdown table.
func SummaryTable(s model.SeveritySummary) string {
	var sb strings.Builder
	sb.WriteString("| Severity | Active | Suppressed | Total |\n")
	sb.WriteString("| :--- | ---: | ---: | ---: |\n")
	for _, sev := range model.Severities {
		c := s.Counts(sev)
		fmt.Fprintf(&sb, "| %s | %d | %d | %d |\n", sev, c.Active, c.Suppressed, c.Total)
	}
	t := s.Totals()
	fmt.Fprintf(&sb, "| **Total** | %d | %d | %d |\n", t.Active, t.Suppressed, t.Total)
	return sb.String()
}

func link(v model.VerdictedVulnerability) string {
	if ref := firstReference(v); ref != "" {
		return fmt.Sprintf("[%s](%s)", v.ID, ref)
	}
	return cell(v.ID)
}

// cell keeps a value from breaking the table row.
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.Join(strings.Fields(s), " ")
}
