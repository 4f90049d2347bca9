package main

import (
	"github.com/spf13/cobra"

	"github.com/olusolaa/miq-converge/internal/app"
)

var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Remove every entry of the desired state from the appliance.",
	Long: `delete treats every entry of the desired-state document as absent,
whatever its declared state. Entries already missing are reported unchanged.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context(), app.BuildOptions{Mode: app.ModeDelete})
	},
}
