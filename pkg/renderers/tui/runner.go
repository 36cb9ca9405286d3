// Package tui drives a form session in the terminal, one panel at a time.
package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-formflow/pkg/orchestrator"
	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/summary"
	"github.com/goliatone/go-formflow/pkg/validation"
)

const defaultOptionTimeout = 5 * time.Second

// Runner prompts every visible field of the current panel, advances the
// orchestrator and repeats the panel while it is invalid.
type Runner struct {
	driver            PromptDriver
	outputFormat      OutputFormat
	submitTransformer SubmitTransformer
	theme             Theme
	logger            *zap.Logger
	optionTimeout     time.Duration
	maxAttempts       int
}

// New constructs a Runner with defaults (survey driver, JSON output).
func New(options ...Option) *Runner {
	r := &Runner{
		outputFormat:  OutputFormatJSON,
		logger:        zap.NewNop(),
		optionTimeout: defaultOptionTimeout,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	if r.driver == nil {
		r.driver = NewSurveyDriver(r.theme)
	}
	return r
}

// ContentType reports the serialization format used by Run.
func (r *Runner) ContentType() string {
	if r.outputFormat == OutputFormatSummary {
		return "text/plain"
	}
	return "application/json"
}

// Run walks o from its current panel to the last visible one and returns the
// serialized result.
func (r *Runner) Run(ctx context.Context, o *orchestrator.Orchestrator) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if o == nil {
		return nil, errors.New("tui: orchestrator is nil")
	}

	attempts := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := r.promptPanel(ctx, o); err != nil {
			return nil, err
		}
		last := o.IsLast()
		errs, err := o.Next()
		if errors.Is(err, orchestrator.ErrPanelInvalid) {
			attempts++
			r.logger.Debug("tui: panel invalid",
				zap.Int("step", o.Step()),
				zap.Int("attempt", attempts),
			)
			if err := r.reportErrors(ctx, errs); err != nil {
				return nil, err
			}
			if r.maxAttempts > 0 && attempts >= r.maxAttempts {
				return nil, fmt.Errorf("%w: step %d", ErrTooManyAttempts, o.Step())
			}
			continue
		}
		if err != nil {
			return nil, err
		}
		attempts = 0
		if last {
			break
		}
	}
	return r.serialize(o)
}

func (r *Runner) promptPanel(ctx context.Context, o *orchestrator.Orchestrator) error {
	pos := o.Step()
	if panel, ok := o.CurrentPanel(); ok && panel.Title != "" {
		if err := r.notify(ctx, NoticePanel, panel.Title); err != nil {
			return err
		}
	}
	// Visibility is re-checked per field so answers reveal later fields.
	for _, field := range o.Index().PanelFields(pos) {
		if !o.Visible(field.ID) {
			continue
		}
		if err := r.promptField(ctx, o, field); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) promptField(ctx context.Context, o *orchestrator.Orchestrator, field *schema.Field) error {
	switch {
	case field.Type == schema.FieldTypeParagraph:
		spec, _ := field.Specific.(schema.ParagraphSpec)
		if text := schema.PlainText(spec.TextContent); text != "" {
			return r.notify(ctx, NoticeInfo, text)
		}
		return nil
	case field.Type == schema.FieldTypeLabel:
		return r.notify(ctx, NoticeInfo, displayLabel(field))
	case field.Type.Static():
		return nil
	case field.ReadOnly():
		if v, ok := o.Value(field.ID); ok {
			return r.notify(ctx, NoticeInfo, displayLabel(field)+": "+summary.Display(field, v))
		}
		return nil
	case field.Type == schema.FieldTypeTable:
		return r.promptTable(ctx, o, field)
	}
	return r.promptSlot(ctx, o, topSlot(o, field))
}

func (r *Runner) notify(ctx context.Context, kind NoticeKind, text string) error {
	return r.driver.Notify(ctx, Notice{Kind: kind, Text: text})
}

func (r *Runner) reportErrors(ctx context.Context, errs validation.Errors) error {
	for _, fe := range errs.Sorted() {
		if err := r.notify(ctx, NoticeError, fe.Message); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) serialize(o *orchestrator.Orchestrator) ([]byte, error) {
	if r.outputFormat == OutputFormatSummary {
		out, err := summary.Render(o)
		if err != nil {
			return nil, fmt.Errorf("tui: summary: %w", err)
		}
		return []byte(out), nil
	}

	vals := o.Values()
	payload := make(map[string]any, len(vals))
	for id, v := range vals {
		payload[id.String()] = v
	}
	if r.submitTransformer != nil {
		var err error
		payload, err = r.submitTransformer(payload)
		if err != nil {
			return nil, fmt.Errorf("tui: submit transformer: %w", err)
		}
	}
	out, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("tui: encode values: %w", err)
	}
	return out, nil
}
