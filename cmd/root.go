package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/olusolaa/miq-converge/internal/app"
	apperrors "github.com/olusolaa/miq-converge/internal/errors"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "miq-converge",
	Short: "Converges a ManageIQ appliance towards a declared desired state.",
	Long: `miq-converge reads a desired-state document (YAML or HCL) describing
providers, alert definitions, users, custom attributes, tag assignments and
policy assignments, and issues the REST calls needed to make a ManageIQ
appliance match it. Running it twice in a row changes nothing the second time.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initializeConfig(cmd)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context(), app.BuildOptions{Mode: app.ModeApply})
	},
}

func Execute(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&cfgFile, "config", "c", "", "Configuration file path (default is .miq-converge.yaml in . or $HOME)")
	flags.String("log-level", "", "Override log level (debug, info, warn, error)")
	flags.String("log-format", "", "Override log format (text, json)")
	flags.StringP("desired", "d", "", "Desired state document (.yaml, .yml or .hcl)")
	flags.StringSlice("kind", nil, "Restrict the run to these kinds (provider, alert, user, custom_attributes, tag_assignment, policy_assignment)")
	flags.String("reporter", "", "Report format (text, json)")
	flags.Bool("no-color", false, "Disable colored text output")
	flags.Bool("continue-on-error", false, "Keep going after an entry fails")
	flags.String("url", "", "ManageIQ base URL")
	flags.String("username", "", "ManageIQ username")
	flags.String("password", "", "ManageIQ password")

	bindings := map[string]string{
		"settings.log_level":         "log-level",
		"settings.log_format":        "log-format",
		"settings.desired_file":      "desired",
		"settings.kinds":             "kind",
		"settings.reporter":          "reporter",
		"settings.no_color":          "no-color",
		"settings.continue_on_error": "continue-on-error",
		"connection.url":             "url",
		"connection.username":        "username",
		"connection.password":        "password",
	}
	for key, flag := range bindings {
		cobra.CheckErr(viper.BindPFlag(key, flags.Lookup(flag)))
	}

	viper.SetEnvPrefix("MIQ")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	// Unmarshal only sees keys viper already knows about.
	for _, key := range []string{"connection.verify_ssl", "connection.ca_bundle_path", "connection.timeout", "settings.amazon.profile"} {
		cobra.CheckErr(viper.BindEnv(key))
	}

	rootCmd.AddCommand(applyCmd, deleteCmd)
}

func initializeConfig(cmd *cobra.Command) error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(".")
		viper.AddConfigPath(home)
		viper.SetConfigName(".miq-converge")
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using configuration file:", viper.ConfigFileUsed())
	} else {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			fmt.Fprintln(os.Stderr, "Config file not found, using flags and environment variables.")
		} else {
			return apperrors.Wrap(err, apperrors.CodeConfigReadError, "failed to read config file")
		}
	}

	return nil
}

func run(ctx context.Context, opts app.BuildOptions) error {
	application, bootstrapErr := app.BuildApplicationFromViper(ctx, viper.GetViper(), opts)
	if bootstrapErr != nil {
		fmt.Fprintf(os.Stderr, "ERROR: Application initialization failed: %v\n", bootstrapErr)
		if appErr := (*apperrors.AppError)(nil); errors.As(bootstrapErr, &appErr) {
			if appErr.IsUserFacing {
				fmt.Fprintf(os.Stderr, "Error Details: %s\n", appErr.Message)
				if appErr.SuggestedAction != "" {
					fmt.Fprintf(os.Stderr, "Suggestion: %s\n", appErr.SuggestedAction)
				}
			}
		}
		return bootstrapErr
	}

	if runErr := application.Run(ctx); runErr != nil {
		userMsg, suggestion, _ := apperrors.GetUserFacingMessage(runErr)
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", userMsg)
		if suggestion != "" {
			fmt.Fprintf(os.Stderr, "Suggestion: %s\n", suggestion)
		}
		return runErr
	}
	return nil
}
