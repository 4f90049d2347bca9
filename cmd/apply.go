package main

import (
	"github.com/spf13/cobra"

	"github.com/olusolaa/miq-converge/internal/app"
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Create, update or delete entries so the appliance matches the desired state.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context(), app.BuildOptions{Mode: app.ModeApply})
	},
}
