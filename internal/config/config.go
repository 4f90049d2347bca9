package config

import (
	"time"

	"github.com/olusolaa/miq-converge/internal/core/domain"
	"github.com/olusolaa/miq-converge/internal/log"
)

const (
	ReporterText = "text"
	ReporterJSON = "json"
)

type Config struct {
	Settings   SettingsConfig   `mapstructure:"settings" yaml:"settings"`
	Connection ConnectionConfig `mapstructure:"connection" yaml:"connection"`
	// Desired is loaded separately so that free-form maps keep their key case.
	Desired DesiredState `mapstructure:"-" yaml:"desired"`
}

type SettingsConfig struct {
	LogLevel        log.Level        `mapstructure:"log_level" yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`
	LogFormat       log.Format       `mapstructure:"log_format" yaml:"log_format" validate:"omitempty,oneof=text json"`
	Reporter        string           `mapstructure:"reporter" yaml:"reporter" validate:"oneof=text json"`
	NoColor         bool             `mapstructure:"no_color" yaml:"no_color"`
	ContinueOnError bool             `mapstructure:"continue_on_error" yaml:"continue_on_error"`
	Kinds           []string         `mapstructure:"kinds" yaml:"kinds" validate:"dive,reconcile_kind"`
	DesiredFile     string           `mapstructure:"desired_file" yaml:"desired_file"`
	Validation      ValidationConfig `mapstructure:"validation" yaml:"validation"`
	Amazon          AmazonConfig     `mapstructure:"amazon" yaml:"amazon"`
}

// ValidationConfig bounds the authentication validation poll.
type ValidationConfig struct {
	Iterations int           `mapstructure:"iterations" yaml:"iterations" validate:"min=1"`
	Interval   time.Duration `mapstructure:"interval" yaml:"interval" validate:"min=0"`
}

// AmazonConfig controls the credential pre-flight run for amazon providers.
type AmazonConfig struct {
	Preflight bool   `mapstructure:"preflight" yaml:"preflight"`
	Profile   string `mapstructure:"profile" yaml:"profile"`
}

type ConnectionConfig struct {
	URL          string        `mapstructure:"url" yaml:"url" validate:"required,url"`
	Username     string        `mapstructure:"username" yaml:"username" validate:"required"`
	Password     string        `mapstructure:"password" yaml:"password" validate:"required"`
	VerifySSL    bool          `mapstructure:"verify_ssl" yaml:"verify_ssl"`
	CABundlePath string        `mapstructure:"ca_bundle_path" yaml:"ca_bundle_path"`
	Timeout      time.Duration `mapstructure:"timeout" yaml:"timeout" validate:"min=0"`
	RateLimit    float64       `mapstructure:"rate_limit" yaml:"rate_limit" validate:"gt=0"`
	Burst        int           `mapstructure:"burst" yaml:"burst" validate:"min=1"`
}

// SelectedKinds returns the kinds to process, in engine order.
func (s SettingsConfig) SelectedKinds() []domain.ReconcileKind {
	if len(s.Kinds) == 0 {
		return domain.AllKinds()
	}
	wanted := make(map[string]struct{}, len(s.Kinds))
	for _, k := range s.Kinds {
		wanted[k] = struct{}{}
	}
	var out []domain.ReconcileKind
	for _, k := range domain.AllKinds() {
		if _, ok := wanted[k.String()]; ok {
			out = append(out, k)
		}
	}
	return out
}

func DefaultConfig() *Config {
	return &Config{
		Settings: SettingsConfig{
			LogLevel:  log.LevelInfo,
			LogFormat: log.FormatText,
			Reporter:  ReporterText,
			Validation: ValidationConfig{
				Iterations: 10,
				Interval:   5 * time.Second,
			},
			Amazon: AmazonConfig{Preflight: true},
		},
		Connection: ConnectionConfig{
			VerifySSL: true,
			Timeout:   30 * time.Second,
			RateLimit: 10,
			Burst:     1,
		},
	}
}
