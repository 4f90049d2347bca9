package text

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/olusolaa/miq-converge/internal/core/domain"
	"github.com/olusolaa/miq-converge/internal/core/ports"
	apperrors "github.com/olusolaa/miq-converge/internal/errors"
)

const ReporterTypeText = "text"

type Config struct {
	NoColor bool `yaml:"no_color"`
}

type Reporter struct {
	config Config
	writer io.Writer
	logger ports.Logger
}

func NewReporter(cfg Config, logger ports.Logger) (*Reporter, error) {
	if cfg.NoColor || !isTerminal(os.Stdout) {
		color.NoColor = true
	}

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

func isTerminal(f *os.File) bool {
	stat, err := f.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) != 0
}

func (r *Reporter) Report(ctx context.Context, summary domain.Summary) error {
	if len(summary.Results) == 0 {
		fmt.Fprintln(r.writer, "No desired state entries processed.")
		return nil
	}

	tw := tabwriter.NewWriter(r.writer, 0, 8, 2, ' ', 0)
	defer tw.Flush()

	red := color.New(color.FgRed).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()

	fmt.Fprintf(tw, "Reconcile Report (run %s)\n", summary.RunID)
	fmt.Fprintln(tw, "==========================")
	fmt.Fprintln(tw, "Status\tKind\tName\tDetails")
	fmt.Fprintln(tw, "------\t----\t----\t-------")

	for _, res := range summary.Results {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		var statusStr string
		details := res.Message
		switch {
		case res.Failed():
			statusStr = red("[FAILED]")
			details = failureDetails(res)
		case res.Changed:
			statusStr = yellow("[CHANGED]")
			if res.Updates != nil && len(res.Updates.ChangedKeys()) > 0 {
				details += fmt.Sprintf(" (changed: %s)", strings.Join(res.Updates.ChangedKeys(), ", "))
			}
			if res.TaskID != "" {
				details += fmt.Sprintf(" (task %s)", res.TaskID)
			}
		default:
			statusStr = green("[OK]")
		}
		if res.APIError != nil {
			details += fmt.Sprintf(" (api error: %v)", res.APIError)
		}

		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", statusStr, res.Kind, res.Name, truncate(details))
	}

	changed, unchanged, failed := summary.Counts()
	fmt.Fprintln(tw, "\nSummary:")
	fmt.Fprintln(tw, "-------")
	fmt.Fprintf(tw, "Total Entries Processed:\t%d\n", len(summary.Results))
	fmt.Fprintf(tw, "Unchanged:\t%s\n", green(unchanged))
	fmt.Fprintf(tw, "Changed:\t%s\n", yellow(changed))
	fmt.Fprintf(tw, "Failed:\t%s\n", red(failed))

	return nil
}

func failureDetails(res domain.Result) string {
	msg, suggestion, userFacing := apperrors.GetUserFacingMessage(res.Err)
	if !userFacing {
		return fmt.Sprintf("%s [%s]", res.Err, apperrors.GetCode(res.Err))
	}
	if suggestion != "" {
		return fmt.Sprintf("%s (%s)", msg, suggestion)
	}
	return msg
}

func truncate(s string) string {
	const maxLen = 240
	if len(s) > maxLen {
		return s[:maxLen-3] + "..."
	}
	return s
}
