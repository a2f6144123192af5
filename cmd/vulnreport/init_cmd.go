package main

import (
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"vulnreport/internal/config"
	"vulnreport/internal/notify"
)

var (
	initYes   bool
	initForce bool
	initPath  string
)

// prompter asks the questions of `vulnreport init`.
type prompter interface {
	Input(message, def string, required bool) (string, error)
	Confirm(message string, def bool) (bool, error)
	MultiSelect(message string, options []string) ([]string, error)
}

type surveyPrompter struct{}

func (surveyPrompter) Input(message, def string, required bool) (string, error) {
	var answer string
	var opts []survey.AskOpt
	if required {
		opts = append(opts, survey.WithValidator(survey.Required))
	}
	err := survey.AskOne(&survey.Input{Message: message, Default: def}, &answer, opts...)
	return strings.TrimSpace(answer), err
}

func (surveyPrompter) Confirm(message string, def bool) (bool, error) {
	answer := def
	err := survey.AskOne(&survey.Confirm{Message: message, Default: def}, &answer)
	return answer, err
}

func (surveyPrompter) MultiSelect(message string, options []string) ([]string, error) {
	var answer []string
	err := survey.AskOne(&survey.MultiSelect{Message: message, Options: options}, &answer)
	return answer, err
}

var newPrompter = func() prompter { return surveyPrompter{} }

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a vulnerability config file",
	Long: `Asks which notification channels to set up and which findings to
suppress, then writes the answers to .vuln-config.yml. With --yes an empty
config is written without asking anything.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVarP(&initYes, "yes", "y", false, "Write an empty config without prompting")
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing config file")
	initCmd.Flags().StringVar(&initPath, "path", config.DefaultPaths[0], "Where to write the config")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	file := config.File{
		Ignore: config.IgnoreSection{Rules: []config.RuleEntry{}},
		Notify: config.NotifySection{Notifiers: []config.NotifierEntry{}},
	}

	if !initYes {
		if err := askConfig(newPrompter(), &file); err != nil {
			return err
		}
	}

	if err := config.Write(initPath, file, initForce); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✅ Wrote %s (%d rules, %d channels)\n",
		initPath, len(file.Ignore.Rules), len(file.Notify.Notifiers))
	return nil
}

func askConfig(p prompter, file *config.File) error {
	channels, err := p.MultiSelect("Which channels should be notified?", notify.NewDefaultDispatcher().Channels())
	if err != nil {
		return err
	}
	for _, ch := range channels {
		url, err := p.Input(fmt.Sprintf("%s webhook URL:", ch), "", true)
		if err != nil {
			return err
		}
		file.Notify.Notifiers = append(file.Notify.Notifiers, config.NotifierEntry{
			Type:   ch,
			Config: map[string]any{"webhookUrl": url},
		})
	}

	for {
		more, err := p.Confirm("Add a suppression rule?", false)
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
		rule, err := askRule(p)
		if err != nil {
			return err
		}
		file.Ignore.Rules = append(file.Ignore.Rules, rule)
	}
}

func askRule(p prompter) (config.RuleEntry, error) {
	var r config.RuleEntry
	var err error
	if r.CVE, err = p.Input("Advisory ID (e.g. CVE-2023-12345):", "", true); err != nil {
		return r, err
	}
	if r.Package, err = p.Input("Only for package (empty for any):", "", false); err != nil {
		return r, err
	}
	if r.Reason, err = p.Input("Reason:", "", true); err != nil {
		return r, err
	}
	for {
		if r.Expires, err = p.Input("Expires on (YYYY-MM-DD, empty for never):", "", false); err != nil {
			return r, err
		}
		if r.Expires == "" {
			return r, nil
		}
		if _, perr := config.ParseExpiry(r.Expires); perr == nil {
			return r, nil
		}
	}
}
