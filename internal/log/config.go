package log

import (
	"io"
	"os"
)

type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

type Config struct {
	Level  Level  `yaml:"level" mapstructure:"level"`
	Format Format `yaml:"format" mapstructure:"format"`
	// Output defaults to stderr so that reports on stdout stay machine readable.
	Output io.Writer `yaml:"-" mapstructure:"-"`
}

func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Format: FormatText,
		Output: os.Stderr,
	}
}
