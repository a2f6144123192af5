package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"vulnreport/internal/notify"
	"vulnreport/internal/scanner"
)

var formatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "List supported scanner formats and notification channels",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Scanner formats (detection order):")
		for _, name := range scanner.NewDefaultRegistry().List() {
			fmt.Fprintf(out, "  - %s\n", name)
		}
		fmt.Fprintf(out, "\nNotification channels: %s\n", strings.Join(notify.NewDefaultDispatcher().Channels(), ", "))
	},
}

func init() {
	rootCmd.AddCommand(formatsCmd)
}
