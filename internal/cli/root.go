// Package cli implements the FocusRPG command-line interface using
// Cobra. Each subcommand maps to one engine operation (status,
// complete, redeem, quests, etc.).
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "focusrpg",
	Short: "FocusRPG — Earn screen time by doing the work",
	Long: `FocusRPG is a local-first progression engine for focused work.
Schedule time blocks, complete them to earn XP and screen-time minutes,
and redeem minutes through the requirement gate.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Called from main.go.
func Execute(version string) {
	rootCmd.Version = version

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
