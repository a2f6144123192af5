// Package pipeline runs one scan report through detection, suppression,
// aggregation, reporting and notification.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"vulnreport/internal/config"
	"vulnreport/internal/console"
	"vulnreport/internal/metrics"
	"vulnreport/internal/model"
	"vulnreport/internal/report"
	"vulnreport/internal/scanner"
	"vulnreport/internal/suppress"
)

// Notifier delivers the run summary to the configured channels.
type Notifier interface {
	Dispatch(ctx context.Context, payload model.NotificationPayload, configs []model.NotifierConfig) error
}

// Options describe one run.
type Options struct {
	RunID       string
	InputPath   string
	ReportTitle string
	// Scanner pins the report format; empty or "auto" detects it.
	Scanner    string
	DetailsURL string
	// ConfigPath is the config file; empty probes the default names in
	// the working directory.
	ConfigPath string
	// OutputFile is the report destination; empty skips the report.
	OutputFile string
}

// Result is what a run produced.
type Result struct {
	RunID      string
	Scanner    string
	Verdicts   []model.VerdictedVulnerability
	Summary    model.SeveritySummary
	ReportPath string
	// NotifyErr holds the dispatch failure, if any. Notification happens
	// last, so the rest of the result is valid either way.
	NotifyErr error
}

// Processor holds the collaborators of a run. Scanners is required; a nil
// Notifier, Console or Metrics skips that step.
type Processor struct {
	Scanners *scanner.Registry
	Notifier Notifier
	Console  *console.Logger
	Metrics  *metrics.Metrics
	Logger   *slog.Logger
	Now      func() time.Time
}

func (p *Processor) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

// Run processes one report. Configuration and input errors abort before
// anything is written or sent.
func (p *Processor) Run(ctx context.Context, opts Options) (*Result, error) {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.RunID != "" {
		logger = logger.With("run_id", opts.RunID)
	}

	cfg, err := p.loadConfig(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	logger.Debug("configuration loaded", "source", cfg.Source, "rules", len(cfg.Rules), "notifiers", len(cfg.Notifiers))

	vulns, format, err := p.parse(opts)
	if err != nil {
		return nil, err
	}
	logger.Info("scan report parsed", "scanner", format, "findings", len(vulns))

	engine := suppress.NewEngine(cfg.Rules, suppress.WithClock(p.now))
	for _, r := range engine.ExpiredRules() {
		logger.Warn("suppression rule has expired", "cve", r.CVE, "package", r.Package, "expires", r.Expires.Format("2006-01-02"))
	}
	verdicts := engine.Evaluate(vulns)
	summary := suppress.GenerateSummary(verdicts)
	if dropped := suppress.Unrecognized(verdicts); len(dropped) > 0 {
		logger.Warn("findings with unrecognized severity left out of the summary", "count", len(dropped))
	}

	res := &Result{
		RunID:    opts.RunID,
		Scanner:  format,
		Verdicts: verdicts,
		Summary:  summary,
	}

	if p.Console != nil {
		p.Console.LogResults(summary, verdicts)
	}
	if p.Metrics != nil {
		p.Metrics.RecordSummary(summary)
	}

	generated := p.now()
	if opts.OutputFile != "" {
		err := report.Generate(opts.OutputFile, report.Data{
			Title:           opts.ReportTitle,
			DetailsURL:      opts.DetailsURL,
			GeneratedAt:     generated,
			RunID:           opts.RunID,
			Scanner:         format,
			Summary:         summary,
			Vulnerabilities: verdicts,
		})
		if err != nil {
			return res, err
		}
		res.ReportPath = opts.OutputFile
		logger.Info("report written", "path", opts.OutputFile)
	}

	if p.Notifier != nil {
		payload := model.NotificationPayload{
			Summary:     summary,
			ReportTitle: opts.ReportTitle,
			DetailsURL:  opts.DetailsURL,
			GeneratedAt: generated,
		}
		if err := p.Notifier.Dispatch(ctx, payload, cfg.Notifiers); err != nil {
			logger.Error("notification dispatch failed", "error", err)
			res.NotifyErr = err
		}
	}

	return res, nil
}

func (p *Processor) loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.LoadDefault(".")
	}
	return config.Load(path)
}

func (p *Processor) parse(opts Options) ([]model.Vulnerability, string, error) {
	f, err := os.Open(opts.InputPath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open scan report: %w", err)
	}
	defer f.Close()

	raw, err := scanner.DecodeReport(f)
	if err != nil {
		return nil, "", err
	}
	return p.Scanners.Parse(opts.Scanner, raw)
}
