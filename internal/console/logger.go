// Package console prints the result of a run for humans: a summary line,
// per-severity counts and, in verbose mode, every finding grouped by
// severity.
package console

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"vulnreport/internal/model"
	"vulnreport/internal/report"
)

const ruleWidth = 80

var severityIcons = map[model.Severity]string{
	model.SeverityCritical: "🔴",
	model.SeverityHigh:     "🟠",
	model.SeverityMedium:   "🟡",
	model.SeverityLow:      "🟢",
}

var severityColors = map[model.Severity]lipgloss.Color{
	model.SeverityCritical: lipgloss.Color("196"),
	model.SeverityHigh:     lipgloss.Color("208"),
	model.SeverityMedium:   lipgloss.Color("220"),
	model.SeverityLow:      lipgloss.Color("40"),
}

// Logger writes run results to out.
type Logger struct {
	out      io.Writer
	verbose  bool
	renderer *lipgloss.Renderer
	mdStyle  string
	mdSet    bool
	wordWrap int
	muted    lipgloss.Style
	bold     lipgloss.Style
	severity map[model.Severity]lipgloss.Style
}

type Option func(*Logger)

// WithVerbose enables the per-finding listing.
func WithVerbose(v bool) Option {
	return func(l *Logger) {
		l.verbose = v
	}
}

// WithColorProfile forces a colour profile, e.g. termenv.Ascii for plain output.
func WithColorProfile(p termenv.Profile) Option {
	return func(l *Logger) {
		l.renderer.SetColorProfile(p)
	}
}

// WithMarkdownStyle renders the summary as a table through glamour using
// the named style ("auto", "dark", "notty", ...). Empty disables it. By
// default the table is used only when out is a colour terminal.
func WithMarkdownStyle(style string) Option {
	return func(l *Logger) {
		l.mdStyle = style
		l.mdSet = true
	}
}

func New(out io.Writer, opts ...Option) *Logger {
	l := &Logger{
		out:      out,
		renderer: lipgloss.NewRenderer(out),
		wordWrap: 100,
	}
	for _, opt := range opts {
		opt(l)
	}
	if !l.mdSet && l.renderer.ColorProfile() != termenv.Ascii {
		l.mdStyle = "auto"
	}

	l.muted = l.renderer.NewStyle().Foreground(lipgloss.Color("244"))
	l.bold = l.renderer.NewStyle().Bold(true)
	l.severity = make(map[model.Severity]lipgloss.Style, len(severityColors))
	for sev, c := range severityColors {
		l.severity[sev] = l.renderer.NewStyle().Foreground(c).Bold(true)
	}
	return l
}

// Totals returns the active and suppressed counts over all severities.
func Totals(s model.SeveritySummary) (active, suppressed int) {
	t := s.Totals()
	return t.Active, t.Suppressed
}

// LogSummary prints the overall counts followed by one line per severity.
func (l *Logger) LogSummary(s model.SeveritySummary) {
	active, suppressed := Totals(s)
	l.printf("📊 Results: %s active, %d suppressed\n", l.bold.Render(fmt.Sprint(active)), suppressed)

	if table, ok := l.renderTable(s); ok {
		fmt.Fprint(l.out, table)
		return
	}
	for _, sev := range model.Severities {
		c := s.Counts(sev)
		l.printf("   - %s: %d active, %d suppressed\n", l.label(sev), c.Active, c.Suppressed)
	}
}

// LogDetails lists every finding grouped by severity, most severe first.
// It prints nothing unless the logger is verbose.
func (l *Logger) LogDetails(verdicts []model.VerdictedVulnerability) {
	if !l.verbose {
		return
	}

	groups := make(map[model.Severity][]model.VerdictedVulnerability)
	var other []model.VerdictedVulnerability
	for _, v := range verdicts {
		if v.Severity.Known() {
			groups[v.Severity] = append(groups[v.Severity], v)
		} else {
			other = append(other, v)
		}
	}

	l.printf("\n📋 Vulnerability details:\n")
	l.printf("%s\n", l.muted.Render(strings.Repeat("─", ruleWidth)))
	for _, sev := range model.Severities {
		if len(groups[sev]) > 0 {
			l.logGroup(sev, groups[sev])
		}
	}
	if len(other) > 0 {
		l.printf("\n⚪ %d findings with an unrecognized severity are not counted in the summary\n", len(other))
	}
	l.printf("%s\n", l.muted.Render(strings.Repeat("─", ruleWidth)))
}

// LogResults prints the summary and, when verbose, the details.
func (l *Logger) LogResults(s model.SeveritySummary, verdicts []model.VerdictedVulnerability) {
	l.LogSummary(s)
	l.LogDetails(verdicts)
}

func (l *Logger) logGroup(sev model.Severity, vulns []model.VerdictedVulnerability) {
	l.printf("\n%s %s (%d):\n", severityIcons[sev], l.label(sev), len(vulns))
	l.printf("%s\n", l.muted.Render(strings.Repeat("─", ruleWidth/2)))

	for i, v := range vulns {
		status := "🆕 active"
		if v.Suppressed {
			status = "🔇 suppressed"
		}
		l.printf("%d. [%s] %s\n", i+1, status, v.ID)
		l.printf("   Package: %s (%s)\n", v.PackageName, v.InstalledVersion)
		l.printf("   Title: %s\n", v.Title)
		if v.FixedVersion != "" {
			l.printf("   Fixed in: %s\n", v.FixedVersion)
		}
		if v.Suppressed && v.Reason != "" {
			l.printf("   Suppressed: %s\n", v.Reason)
		}
		if len(v.References) > 0 {
			l.printf("   Reference: %s\n", l.muted.Render(v.References[0]))
		}
		if i < len(vulns)-1 {
			l.printf("\n")
		}
	}
}

func (l *Logger) renderTable(s model.SeveritySummary) (string, bool) {
	if l.mdStyle == "" {
		return "", false
	}
	styleOpt := glamour.WithStandardStyle(l.mdStyle)
	if l.mdStyle == "auto" {
		styleOpt = glamour.WithAutoStyle()
	}
	r, err := glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(l.wordWrap))
	if err != nil {
		return "", false
	}
	out, err := r.Render(report.SummaryTable(s))
	if err != nil {
		return "", false
	}
	return out, true
}

func (l *Logger) label(sev model.Severity) string {
	if st, ok := l.severity[sev]; ok {
		return st.Render(string(sev))
	}
	return string(sev)
}

func (l *Logger) printf(format string, args ...any) {
	fmt.Fprintf(l.out, format, args...)
}
