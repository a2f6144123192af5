package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"vulnreport/internal/config"
	vrerrors "vulnreport/internal/errors"
	"vulnreport/internal/notify"
	"vulnreport/internal/suppress"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the vulnerability config file",
}

var configValidateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Check suppression rules and notification channels",
	Long: `Validates the config file given as argument, or the first of
.vuln-config.yml and .vuln-config.yaml found in the current directory.
Besides the checks done on every run, it also reports channel types that
no sender is registered for and rules that have already expired.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfigValidate,
}

func init() {
	configCmd.AddCommand(configValidateCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	var (
		cfg *config.Config
		err error
	)
	if len(args) == 1 {
		cfg, err = config.Load(args[0])
	} else {
		cfg, err = config.LoadDefault(".")
	}
	if err != nil {
		return err
	}
	if cfg.Source == "" {
		fmt.Fprintln(out, "No config file found; runs will use no suppression rules and no notification channels.")
		return nil
	}

	dispatcher := notify.NewDefaultDispatcher()
	for i, n := range cfg.Notifiers {
		if _, err := dispatcher.Lookup(n.Type); err != nil {
			return vrerrors.NewValidationError("notifier", i, "type", err.Error())
		}
		if n.IsEnabled() {
			if _, err := notify.ParseWebhookSettings(n.Type, n.Config); err != nil {
				return vrerrors.NewValidationError("notifier", i, "config", err.Error())
			}
		}
	}

	expired := suppress.NewEngine(cfg.Rules).ExpiredRules()
	for _, r := range expired {
		fmt.Fprintf(out, "⚠️  Rule for %s expired on %s\n", r.CVE, r.Expires.Format(time.DateOnly))
	}

	enabled := 0
	for _, n := range cfg.Notifiers {
		if n.IsEnabled() {
			enabled++
		}
	}
	fmt.Fprintf(out, "✅ %s is valid: %d suppression rules (%d expired), %d notification channels (%d enabled)\n",
		cfg.Source, len(cfg.Rules), len(expired), len(cfg.Notifiers), enabled)
	return nil
}
