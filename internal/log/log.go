package log

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"

	"github.com/olusolaa/miq-converge/internal/core/ports"
	apperrors "github.com/olusolaa/miq-converge/internal/errors"
)

// secretFields never reach the handler with their value.
var secretFields = map[string]struct{}{
	"password":      {},
	"auth_key":      {},
	"token":         {},
	"secret":        {},
	"access_key_id": {},
}

type slogAdapter struct {
	logger *slog.Logger
}

func NewLogger(cfg Config) (ports.Logger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: level}

	var out io.Writer = os.Stderr
	if cfg.Output != nil {
		out = cfg.Output
	}

	var handler slog.Handler
	switch cfg.Format {
	case FormatJSON:
		handler = slog.NewJSONHandler(out, opts)
	case FormatText, "":
		handler = slog.NewTextHandler(out, opts)
	default:
		return nil, apperrors.NewUserFacing(apperrors.CodeConfigValidation,
			fmt.Sprintf("unsupported log format %q", cfg.Format), "Use 'text' or 'json'.")
	}

	return &slogAdapter{logger: slog.New(handler)}, nil
}

// Discard returns a logger that drops every record. Handy for tests and for
// library callers that do not care about progress output.
func Discard() ports.Logger {
	return &slogAdapter{logger: slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))}
}

func parseLevel(l Level) (slog.Level, error) {
	switch l {
	case LevelDebug:
		return slog.LevelDebug, nil
	case LevelInfo, "":
		return slog.LevelInfo, nil
	case LevelWarn:
		return slog.LevelWarn, nil
	case LevelError:
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, apperrors.NewUserFacing(apperrors.CodeConfigValidation,
			fmt.Sprintf("unsupported log level %q", l), "Use one of: debug, info, warn, error.")
	}
}

func (s *slogAdapter) log(ctx context.Context, level slog.Level, err error, format string, args ...any) {
	if ctx == nil {
		ctx = context.Background()
	}
	if !s.logger.Enabled(ctx, level) {
		return
	}

	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}

	var attrs []slog.Attr
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			attrs = append(attrs, slog.String("error_code", appErr.Code.String()))
			if appErr.InternalDetails != "" {
				attrs = append(attrs, slog.String("error_details", appErr.InternalDetails))
			}
			if appErr.WrappedError != nil {
				attrs = append(attrs, slog.String("error_wrapped", appErr.WrappedError.Error()))
			}
			attrs = append(attrs, slog.String("error", appErr.Message))
		} else {
			attrs = append(attrs, slog.String("error", err.Error()))
		}
	}

	s.logger.LogAttrs(ctx, level, msg, attrs...)
}

func (s *slogAdapter) Debugf(ctx context.Context, format string, args ...any) {
	s.log(ctx, slog.LevelDebug, nil, format, args...)
}

func (s *slogAdapter) Infof(ctx context.Context, format string, args ...any) {
	s.log(ctx, slog.LevelInfo, nil, format, args...)
}

func (s *slogAdapter) Warnf(ctx context.Context, format string, args ...any) {
	s.log(ctx, slog.LevelWarn, nil, format, args...)
}

func (s *slogAdapter) Errorf(ctx context.Context, err error, format string, args ...any) {
	s.log(ctx, slog.LevelError, err, format, args...)
}

func (s *slogAdapter) WithFields(fields map[string]any) ports.Logger {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	args := make([]any, 0, len(keys))
	for _, k := range keys {
		v := fields[k]
		if _, secret := secretFields[k]; secret {
			v = "******"
		}
		args = append(args, slog.Any(k, v))
	}
	return &slogAdapter{logger: s.logger.With(args...)}
}
