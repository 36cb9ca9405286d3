package tui

import (
	"time"

	"go.uber.org/zap"
)

// OutputFormat controls how collected values are serialized.
type OutputFormat string

const (
	// OutputFormatJSON emits the values store as a JSON object.
	OutputFormatJSON OutputFormat = "json"
	// OutputFormatSummary emits the plain-text summary.
	OutputFormatSummary OutputFormat = "summary"
)

// Theme captures the prefixes the survey driver puts in front of notices.
type Theme struct {
	PanelPrefix string
	InfoPrefix  string
	ErrorPrefix string
}

func (t Theme) prefix(kind NoticeKind) string {
	switch kind {
	case NoticePanel:
		return t.PanelPrefix
	case NoticeError:
		return t.ErrorPrefix
	default:
		return t.InfoPrefix
	}
}

// SubmitTransformer mutates collected values before JSON serialization.
type SubmitTransformer func(map[string]any) (map[string]any, error)

// Option configures the Runner.
type Option func(*Runner)

// WithPromptDriver overrides the prompt driver used by the runner.
func WithPromptDriver(driver PromptDriver) Option {
	return func(r *Runner) {
		if driver != nil {
			r.driver = driver
		}
	}
}

// WithOutputFormat selects the output serialization format.
func WithOutputFormat(format OutputFormat) Option {
	return func(r *Runner) {
		if format != "" {
			r.outputFormat = format
		}
	}
}

// WithSubmitTransformer allows callers to mutate collected values prior to
// serialization.
func WithSubmitTransformer(fn SubmitTransformer) Option {
	return func(r *Runner) {
		r.submitTransformer = fn
	}
}

// WithTheme styles the notices of the default survey driver. Drivers passed
// through WithPromptDriver format notices themselves.
func WithTheme(theme Theme) Option {
	return func(r *Runner) {
		r.theme = theme
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithOptionTimeout bounds how long a select prompt waits for its option list.
func WithOptionTimeout(d time.Duration) Option {
	return func(r *Runner) {
		if d > 0 {
			r.optionTimeout = d
		}
	}
}

// WithMaxAttempts bounds how many times an invalid panel is re-prompted. Zero
// means no bound.
func WithMaxAttempts(n int) Option {
	return func(r *Runner) {
		if n >= 0 {
			r.maxAttempts = n
		}
	}
}
