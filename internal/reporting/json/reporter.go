package json

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/olusolaa/miq-converge/internal/core/domain"
	"github.com/olusolaa/miq-converge/internal/core/ports"
	apperrors "github.com/olusolaa/miq-converge/internal/errors"
)

const ReporterTypeJSON = "json"

var codec = jsoniter.ConfigCompatibleWithStandardLibrary

type Config struct{}

type Reporter struct {
	config Config
	writer io.Writer
	logger ports.Logger
}

func NewReporter(cfg Config, logger ports.Logger) (*Reporter, error) {
	return &Reporter{
		config: cfg,
		writer: os.Stdout,
		logger: logger,
	}, nil
}

// WithWriter redirects the report, mainly for tests.
func (r *Reporter) WithWriter(w io.Writer) *Reporter {
	r.writer = w
	return r
}

type jsonReport struct {
	RunID     string           `json:"run_id"`
	StartedAt time.Time        `json:"started_at"`
	Summary   jsonSummary      `json:"summary"`
	Results   []jsonResultItem `json:"results"`
}

type jsonSummary struct {
	Total     int `json:"total"`
	Changed   int `json:"changed"`
	Unchanged int `json:"unchanged"`
	Failed    int `json:"failed"`
}

// jsonResultItem keeps the changed / msg / updates / task_id / api_error
// field names of the module result contract.
type jsonResultItem struct {
	domain.Result
	Failed     bool   `json:"failed"`
	ErrorCode  string `json:"error_code,omitempty"`
	Error      string `json:"error,omitempty"`
	DurationMS int64  `json:"duration_ms"`
}

func (r *Reporter) Report(ctx context.Context, summary domain.Summary) error {
	changed, unchanged, failed := summary.Counts()
	report := jsonReport{
		RunID:     summary.RunID,
		StartedAt: summary.StartedAt,
		Summary: jsonSummary{
			Total:     len(summary.Results),
			Changed:   changed,
			Unchanged: unchanged,
			Failed:    failed,
		},
		Results: make([]jsonResultItem, 0, len(summary.Results)),
	}

	for _, res := range summary.Results {
		if ctx.Err() != nil {
			r.logger.Warnf(ctx, "JSON report generation cancelled.")
			return ctx.Err()
		}
		item := jsonResultItem{
			Result:     res,
			Failed:     res.Failed(),
			DurationMS: res.Duration.Milliseconds(),
		}
		if res.Err != nil {
			item.ErrorCode = apperrors.GetCode(res.Err).String()
			item.Error = res.Err.Error()
		}
		report.Results = append(report.Results, item)
	}

	encoder := codec.NewEncoder(r.writer)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(report); err != nil {
		r.logger.Errorf(ctx, err, "Failed to encode JSON report")
		fmt.Fprintf(r.writer, "{\"error\": \"failed to generate JSON report: %v\"}\n", err)
		return fmt.Errorf("failed to encode JSON report: %w", err)
	}

	r.logger.Debugf(ctx, "JSON report successfully generated.")
	return nil
}
