package app

import (
	"context"

	"github.com/olusolaa/miq-converge/internal/config"
	"github.com/olusolaa/miq-converge/internal/core/domain"
	"github.com/olusolaa/miq-converge/internal/core/ports"
)

// Mode selects what the run does with the desired document.
type Mode string

const (
	ModeApply  Mode = "apply"
	ModeDelete Mode = "delete"
)

// BuildOptions carries command-line choices that are not settings.
type BuildOptions struct {
	Mode Mode
}

// applyCLIOverrides adjusts the loaded configuration for the selected
// command. Delete turns every entry absent regardless of its state.
func applyCLIOverrides(ctx context.Context, cfg *config.Config, opts BuildOptions, logger ports.Logger) {
	if opts.Mode == ModeDelete {
		logger.Infof(ctx, "Delete mode: every desired entry is treated as absent")
		cfg.Desired.ForceState(domain.StateAbsent)
	}
	if len(cfg.Settings.Kinds) > 0 {
		logger.Debugf(ctx, "Restricting run to kinds %v", cfg.Settings.Kinds)
	}
}
