package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"vulnreport/internal/console"
	"vulnreport/internal/metrics"
	"vulnreport/internal/notify"
	"vulnreport/internal/pipeline"
	"vulnreport/internal/scanner"
	"vulnreport/internal/telemetry"
)

const (
	defaultOutputFile = "vulnerability-report.xlsx"
	metricsJob        = "vulnreport"
)

// ErrBlockingFindings is returned when active CRITICAL or HIGH findings
// remain and the run is configured to fail on them.
var ErrBlockingFindings = errors.New("active critical or high severity vulnerabilities found")

var scanFlags = []string{
	"input", "reporter-title", "scanner", "verbose", "details-url", "config",
	"output-file", "exit-on-high-severity", "fail-on-notify-error", "pushgateway",
}

func init() {
	f := rootCmd.Flags()
	f.StringP("input", "i", "", "Scanner JSON report to process (required)")
	f.StringP("reporter-title", "t", "", "Title used in the report and notifications (required)")
	f.StringP("scanner", "s", scanner.Auto, "Report format: auto or one of the names listed by 'vulnreport formats'")
	f.BoolP("verbose", "v", false, "List every vulnerability on the console")
	f.StringP("details-url", "d", "", "Link to the full results, e.g. the CI job")
	f.StringP("config", "c", "", "Config file (default: .vuln-config.yml or .vuln-config.yaml)")
	f.StringP("output-file", "o", defaultOutputFile, "Report file; the extension picks the format (.xlsx, .json, .md)")
	f.Bool("exit-on-high-severity", true, "Exit non-zero when active CRITICAL or HIGH findings remain")
	f.Bool("fail-on-notify-error", false, "Exit non-zero when a notification channel fails")
	f.String("pushgateway", "", "Prometheus Pushgateway URL to push run metrics to")

	for _, name := range scanFlags {
		_ = viper.BindPFlag(name, f.Lookup(name))
	}
}

func scanOptions(runID string) (pipeline.Options, error) {
	opts := pipeline.Options{
		RunID:       runID,
		InputPath:   viper.GetString("input"),
		ReportTitle: viper.GetString("reporter-title"),
		Scanner:     viper.GetString("scanner"),
		DetailsURL:  viper.GetString("details-url"),
		ConfigPath:  viper.GetString("config"),
		OutputFile:  viper.GetString("output-file"),
	}

	var missing []string
	if opts.InputPath == "" {
		missing = append(missing, `"input"`)
	}
	if opts.ReportTitle == "" {
		missing = append(missing, `"reporter-title"`)
	}
	if len(missing) > 0 {
		return opts, fmt.Errorf("required flag(s) %v not set", missing)
	}
	return opts, nil
}

func runScan(cmd *cobra.Command, args []string) error {
	runID := uuid.NewString()
	opts, err := scanOptions(runID)
	if err != nil {
		return err
	}

	logger, closeLog, err := telemetry.NewLogger(telemetry.Options{
		Level:  viper.GetString("log-level"),
		Format: viper.GetString("log-format"),
		File:   viper.GetString("log-file"),
		Out:    cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	defer closeLog()
	logger = logger.With("run_id", runID)

	start := time.Now()
	m := metrics.New()
	p := &pipeline.Processor{
		Scanners: scanner.NewDefaultRegistry(),
		Notifier: notify.NewDefaultDispatcher(
			notify.WithLogger(logger),
			notify.WithObserver(m.ObserveNotification),
		),
		Console: console.New(cmd.OutOrStdout(), console.WithVerbose(viper.GetBool("verbose"))),
		Metrics: m,
		Logger:  logger,
	}

	res, runErr := p.Run(cmd.Context(), opts)
	m.ObserveRun(start, time.Now())
	pushMetrics(cmd.Context(), logger, m, runID)
	if runErr != nil {
		return runErr
	}

	out := cmd.OutOrStdout()
	if res.ReportPath != "" {
		fmt.Fprintf(out, "📄 Report written to %s\n", res.ReportPath)
	}
	if res.NotifyErr != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "⚠️  Notification failed: %v\n", res.NotifyErr)
		if viper.GetBool("fail-on-notify-error") {
			return fmt.Errorf("notification failed: %w", res.NotifyErr)
		}
	}

	if res.Summary.HasBlockingFindings() && viper.GetBool("exit-on-high-severity") {
		return fmt.Errorf("%w (critical: %d, high: %d)", ErrBlockingFindings,
			res.Summary.Critical.Active, res.Summary.High.Active)
	}

	fmt.Fprintln(out, "✅ Done")
	return nil
}

func pushMetrics(ctx context.Context, logger *slog.Logger, m *metrics.Metrics, runID string) {
	url := viper.GetString("pushgateway")
	if url == "" {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := m.Push(ctx, url, metricsJob, runID); err != nil {
		logger.Warn("metrics push failed", "error", err)
		return
	}
	logger.Debug("metrics pushed", "url", url)
}
