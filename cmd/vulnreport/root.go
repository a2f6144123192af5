package main

import (
	"fmt"
	"os"
	"runtime/debug"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var exit = os.Exit

const envPrefix = "VULNREPORT"

var rootCmd = &cobra.Command{
	Use:   "vulnreport",
	Short: "Turn vulnerability scanner output into reports and notifications",
	Long: `vulnreport reads a scanner's JSON report (Trivy, Grype or npm audit),
applies the suppression rules from .vuln-config.yml, prints a summary,
writes a spreadsheet, JSON or Markdown report and notifies the configured
channels (Teams, Slack, Discord, generic webhooks).

It exits non-zero when active CRITICAL or HIGH findings remain.`,
	Example: `  vulnreport -i trivy.json -t "Nightly image scan"
  vulnreport -i grype.json -t "Release 1.4" -o report.md -d "$CI_JOB_URL"`,
	SilenceErrors: true,
	SilenceUsage:  true,
	Args:          cobra.NoArgs,
	RunE:          runScan,
}

// Execute runs the root command and exits non-zero on failure or panic.
func Execute() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "\n=== CRITICAL ERROR: Command Execution Panic ===\n")
			fmt.Fprintf(os.Stderr, "Error: %v\n\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
			exit(1)
		}
	}()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("log-level", "info", "Log level (debug, info, warn, error)")
	pf.String("log-format", "text", "Log format (text, json)")
	pf.String("log-file", "", "Also append JSON logs to this file")

	for _, name := range []string{"log-level", "log-format", "log-file"} {
		_ = viper.BindPFlag(name, pf.Lookup(name))
	}
}

// initConfig wires environment overrides. The vulnerability config file is
// read by the run itself, not through viper's global config.
func initConfig() {
	// .env is optional.
	_ = godotenv.Load()

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()
}
