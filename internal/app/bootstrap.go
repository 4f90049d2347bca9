package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/olusolaa/miq-converge/internal/adapters/miq"
	"github.com/olusolaa/miq-converge/internal/adapters/platform/aws"
	"github.com/olusolaa/miq-converge/internal/adapters/state/hclspec"
	"github.com/olusolaa/miq-converge/internal/config"
	"github.com/olusolaa/miq-converge/internal/core/domain"
	"github.com/olusolaa/miq-converge/internal/core/ports"
	"github.com/olusolaa/miq-converge/internal/core/service"
	"github.com/olusolaa/miq-converge/internal/errors"
	"github.com/olusolaa/miq-converge/internal/log"
	jsonreporter "github.com/olusolaa/miq-converge/internal/reporting/json"
	"github.com/olusolaa/miq-converge/internal/reporting/text"
)

// BuildApplicationFromViper wires the whole application from the settings
// held by v.
func BuildApplicationFromViper(ctx context.Context, v *viper.Viper, opts BuildOptions) (*Application, error) {
	cfg, err := config.FromViper(v)
	if err != nil {
		return nil, err
	}

	logger, err := log.NewLogger(log.Config{Level: cfg.Settings.LogLevel, Format: cfg.Settings.LogFormat})
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to initialize logger: %v\n", err)
		return nil, errors.Wrap(err, errors.CodeInternal, "logger initialization failed")
	}
	logger.Debugf(ctx, "Logger initialized (Level: %s, Format: %s)", cfg.Settings.LogLevel, cfg.Settings.LogFormat)

	desired, err := loadDesired(ctx, cfg.Settings.DesiredFile, v.ConfigFileUsed(), logger)
	if err != nil {
		return nil, err
	}
	cfg.Desired = *desired
	applyCLIOverrides(ctx, cfg, opts, logger)

	if err := config.Validate(ctx, cfg); err != nil {
		return nil, err
	}
	logger.Debugf(ctx, "Configuration validated")

	engine, err := buildEngine(ctx, cfg, opts, logger)
	if err != nil {
		return nil, err
	}

	logger.Debugf(ctx, "Application bootstrap complete")
	return NewApplication(engine, logger), nil
}

// loadDesired reads the desired document from desiredFile, or from the
// desired section of the config file when no separate file is given.
func loadDesired(ctx context.Context, desiredFile, configFile string, logger ports.Logger) (*config.DesiredState, error) {
	if desiredFile == "" {
		if configFile == "" {
			return nil, errors.NewUserFacing(errors.CodeDesiredReadError, "no desired state document given",
				"Pass --desired or add a 'desired' section to the configuration file.")
		}
		logger.Infof(ctx, "Loading desired state from the 'desired' section of %s", configFile)
		return config.LoadDesiredSection(configFile)
	}

	logger.Infof(ctx, "Loading desired state from %s", desiredFile)
	switch strings.ToLower(filepath.Ext(desiredFile)) {
	case ".hcl":
		return hclspec.NewLoader(logger.WithFields(map[string]any{"component": "hcl"})).LoadFile(ctx, desiredFile)
	default:
		return config.LoadDesiredYAML(desiredFile)
	}
}

func buildEngine(ctx context.Context, cfg *config.Config, opts BuildOptions, logger ports.Logger) (*service.ReconcileEngine, error) {
	client, err := miq.NewClient(miq.Options{
		URL:          cfg.Connection.URL,
		Username:     cfg.Connection.Username,
		Password:     cfg.Connection.Password,
		VerifySSL:    cfg.Connection.VerifySSL,
		CABundlePath: cfg.Connection.CABundlePath,
		Timeout:      cfg.Connection.Timeout,
		RateLimit:    cfg.Connection.RateLimit,
		Burst:        cfg.Connection.Burst,
	}, logger.WithFields(map[string]any{"component": "api"}))
	if err != nil {
		return nil, err
	}
	logger.Infof(ctx, "Using ManageIQ API at %s", client.BaseURL())

	svcLog := logger.WithFields(map[string]any{"component": "reconciler"})
	locator := service.NewLocator(client, svcLog)
	fetcher := service.NewFetcher(client, svcLog)
	poller := service.NewValidationPoller(fetcher, svcLog,
		service.WithPollBudget(cfg.Settings.Validation.Iterations, cfg.Settings.Validation.Interval))

	var providerOpts []service.ProviderOption
	if cfg.Settings.Amazon.Preflight && cfg.Desired.HasProviderType(domain.ProviderAmazon) {
		resolver, err := aws.NewCredentialResolver(logger.WithFields(map[string]any{"component": "aws"}),
			aws.WithProfile(cfg.Settings.Amazon.Profile))
		if err != nil {
			return nil, err
		}
		providerOpts = append(providerOpts, service.WithCloudCredentialResolver(resolver))
		logger.Debugf(ctx, "Amazon credential pre-flight enabled")
	}

	registry := service.NewComponentRegistry()
	reconcilers := []ports.Reconciler{
		service.NewProviderReconciler(client, locator, fetcher, poller, svcLog, providerOpts...),
		service.NewAlertReconciler(client, fetcher, svcLog),
		service.NewUserReconciler(client, locator, svcLog),
		service.NewCustomAttributesReconciler(client, locator, fetcher, svcLog),
		service.NewTagAssignmentReconciler(client, locator, fetcher, svcLog),
		service.NewPolicyAssignmentReconciler(client, locator, fetcher, svcLog),
	}
	for _, r := range reconcilers {
		if err := registry.RegisterReconciler(r); err != nil {
			return nil, err
		}
	}

	reporter, err := buildReporter(cfg, logger)
	if err != nil {
		return nil, err
	}

	var engineOpts []service.EngineOption
	if opts.Mode == ModeDelete {
		engineOpts = append(engineOpts, service.WithTeardownOrder())
	}
	engine, err := service.NewReconcileEngine(registry, reporter, logger.WithFields(map[string]any{"component": "engine"}), cfg, engineOpts...)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to initialize reconcile engine")
	}
	return engine, nil
}

func buildReporter(cfg *config.Config, logger ports.Logger) (ports.Reporter, error) {
	switch cfg.Settings.Reporter {
	case text.ReporterTypeText, "":
		reportLog := logger.WithFields(map[string]any{"component": "reporter", "type": text.ReporterTypeText})
		return text.NewReporter(text.Config{NoColor: cfg.Settings.NoColor}, reportLog)
	case jsonreporter.ReporterTypeJSON:
		reportLog := logger.WithFields(map[string]any{"component": "reporter", "type": jsonreporter.ReporterTypeJSON})
		return jsonreporter.NewReporter(jsonreporter.Config{}, reportLog)
	default:
		return nil, errors.NewUserFacing(errors.CodeConfigValidation,
			fmt.Sprintf("unsupported reporter type: %s", cfg.Settings.Reporter), "Supported: text, json")
	}
}
