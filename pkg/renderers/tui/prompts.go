package tui

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-formflow/pkg/lookup"
	"github.com/goliatone/go-formflow/pkg/mandatory"
	"github.com/goliatone/go-formflow/pkg/options"
	"github.com/goliatone/go-formflow/pkg/orchestrator"
	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/values"
)

const (
	skipOption    = "(skip)"
	pollInterval  = 20 * time.Millisecond
	defaultDialCd = "+1"
)

// slot is one writable place: a top-level field or a table cell.
type slot struct {
	field    *schema.Field
	current  any
	required bool
	set      func(any) error
	commit   func(lookup.Payload) error
}

func topSlot(o *orchestrator.Orchestrator, field *schema.Field) slot {
	current, _ := o.Value(field.ID)
	return slot{
		field:    field,
		current:  current,
		required: o.IsRequired(field.ID),
		set:      func(v any) error { return o.SetValue(field.ID, v) },
		commit:   func(p lookup.Payload) error { return o.CommitLookup(field.ID, p) },
	}
}

func cellSlot(o *orchestrator.Orchestrator, table schema.FieldID, row int, col *schema.Field) slot {
	var current any
	if rows := o.Rows(table); row < len(rows) {
		current = rows[row][col.ID.String()]
	}
	return slot{
		field:    col,
		current:  current,
		required: mandatory.ColumnRequired(col),
		set:      func(v any) error { return o.SetCell(table, row, col.ID, v) },
		commit:   func(p lookup.Payload) error { return o.CommitCellLookup(table, row, col.ID, p) },
	}
}

func (r *Runner) promptSlot(ctx context.Context, o *orchestrator.Orchestrator, s slot) error {
	switch {
	case s.field.Type.Selectable():
		return r.promptChoice(ctx, o, s)
	case s.field.Type == schema.FieldTypePhone:
		return r.promptPhone(ctx, s)
	case s.field.Type == schema.FieldTypeCurrency:
		return r.promptCurrency(ctx, s)
	case s.field.Type == schema.FieldTypeLongText:
		resp, err := r.driver.TextArea(ctx, TextAreaConfig{
			Message: message(s),
			Default: values.Text(s.current),
			Help:    s.field.General.Tooltip,
		})
		if err != nil {
			return err
		}
		return setText(s, resp)
	case s.field.Lookup.Capable():
		return r.promptLookup(ctx, o, s)
	case s.field.Validation.ContentRule == schema.ContentRuleEmail:
		return r.promptEmail(ctx, s)
	}

	resp, err := r.driver.Input(ctx, InputConfig{
		Message: message(s),
		Default: values.Text(s.current),
		Help:    s.field.General.Tooltip,
	})
	if err != nil {
		return err
	}
	return setText(s, resp)
}

func setText(s slot, resp string) error {
	resp = strings.TrimSpace(resp)
	if resp == "" {
		return s.set(nil)
	}
	return s.set(resp)
}

func (r *Runner) promptChoice(ctx context.Context, o *orchestrator.Orchestrator, s slot) error {
	entry, err := r.awaitOptions(ctx, o, s.field.ID)
	if err != nil {
		return err
	}
	switch {
	case entry.Status == options.StatusError:
		return r.notify(ctx, NoticeError, displayLabel(s.field)+": "+options.LoadError)
	case !entry.Settled():
		return r.notify(ctx, NoticeInfo, displayLabel(s.field)+": options are not available yet")
	case len(entry.Options) == 0:
		return r.notify(ctx, NoticeInfo, displayLabel(s.field)+": no options available")
	}

	if s.field.Type.Multiple() {
		indices, err := r.driver.MultiSelect(ctx, SelectConfig{
			Message:  message(s),
			Options:  entry.Options,
			Defaults: indicesOf(entry.Options, values.Strings(s.current)),
			Help:     s.field.General.Tooltip,
		})
		if err != nil {
			return err
		}
		selected := defaultsFromIndices(entry.Options, indices)
		if len(selected) == 0 {
			return s.set(nil)
		}
		return s.set(selected)
	}

	opts := entry.Options
	if !s.required {
		opts = append([]string{skipOption}, opts...)
	}
	idx, err := r.driver.Select(ctx, SelectConfig{
		Message:      message(s),
		Options:      opts,
		DefaultIndex: indexOf(opts, values.Text(s.current)),
		Help:         s.field.General.Tooltip,
	})
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(opts) || opts[idx] == skipOption {
		return s.set(nil)
	}
	return s.set(opts[idx])
}

// awaitOptions starts loading the option list of id and waits for it to
// settle, up to the option timeout. Lists gated on an empty parent return at
// once.
func (r *Runner) awaitOptions(ctx context.Context, o *orchestrator.Orchestrator, id schema.FieldID) (options.Entry, error) {
	if _, err := o.EnsureOptions(ctx, id); err != nil {
		return options.Entry{}, err
	}
	entry := o.Options(id)
	if entry.Status != options.StatusLoading {
		return entry, nil
	}

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	deadline := time.NewTimer(r.optionTimeout)
	defer deadline.Stop()
	for {
		select {
		case <-ctx.Done():
			return entry, ctx.Err()
		case <-deadline.C:
			r.logger.Warn("tui: option list timed out", zap.String("field", id.String()))
			return entry, nil
		case <-ticker.C:
			entry = o.Options(id)
			if entry.Settled() {
				return entry, nil
			}
		}
	}
}

func (r *Runner) promptPhone(ctx context.Context, s slot) error {
	current, _ := values.DecodePhone(s.current)
	code := current.Code
	if code == "" {
		code = defaultDialCd
	}
	resp, err := r.driver.Input(ctx, InputConfig{
		Message: message(s),
		Default: values.FormatPhone(current.PhoneNo),
		Help:    s.field.General.Tooltip,
		Validator: func(in string) error {
			if n := len(values.CleanPhone(in)); n != 0 && n != 10 {
				return errors.New("enter a 10 digit phone number")
			}
			return nil
		},
	})
	if err != nil {
		return err
	}
	number := values.CleanPhone(resp)
	if number == "" {
		return s.set(nil)
	}
	return s.set(values.EncodePhone(values.Phone{Code: code, PhoneNo: number}))
}

func (r *Runner) promptCurrency(ctx context.Context, s slot) error {
	spec, _ := s.field.Specific.(schema.CurrencySpec)
	catalogue := values.Currencies(spec.AllowedCurrencies)
	if len(catalogue) == 0 {
		catalogue = values.Currencies(nil)
	}
	current, _ := values.DecodeCurrency(s.current)

	choice := catalogue[0]
	if len(catalogue) > 1 {
		labels := make([]string, len(catalogue))
		def := 0
		for i, option := range catalogue {
			labels[i] = option.Label
			if option.Code == current.Code || (current.Code == "" && option.Code == "CAD") {
				def = i
			}
		}
		idx, err := r.driver.Select(ctx, SelectConfig{
			Message:      displayLabel(s.field) + " currency",
			Options:      labels,
			DefaultIndex: def,
		})
		if err != nil {
			return err
		}
		if idx >= 0 && idx < len(catalogue) {
			choice = catalogue[idx]
		}
	}

	resp, err := r.driver.Input(ctx, InputConfig{
		Message: message(s),
		Default: values.FormatAmount(current.Value),
		Help:    s.field.General.Tooltip,
		Validator: func(in string) error {
			return values.ValidateAmount(values.CleanAmount(in))
		},
	})
	if err != nil {
		return err
	}
	if values.CleanAmount(resp) == "" {
		return s.set(nil)
	}
	return s.set(values.EncodeCurrency(values.NewCurrency(choice, resp)))
}

func (r *Runner) promptEmail(ctx context.Context, s slot) error {
	current := values.DecodeVerifiedEmail(s.current)
	resp, err := r.driver.Input(ctx, InputConfig{
		Message: message(s),
		Default: current.Value,
		Help:    s.field.General.Tooltip,
	})
	if err != nil {
		return err
	}
	addr := strings.TrimSpace(resp)
	if addr == "" {
		return s.set(nil)
	}
	if !s.field.Validation.VerificationRequired {
		return s.set(addr)
	}
	invite, err := r.driver.Confirm(ctx, ConfirmConfig{
		Message: fmt.Sprintf("Send invite to %s?", addr),
		Default: current.Verify && strings.EqualFold(current.Value, addr),
	})
	if err != nil {
		return err
	}
	return s.set(values.EncodeVerifiedEmail(values.VerifiedEmail{Value: addr, Verify: invite}))
}

func (r *Runner) promptLookup(ctx context.Context, o *orchestrator.Orchestrator, s slot) error {
	query, err := r.driver.Input(ctx, InputConfig{
		Message: message(s),
		Default: values.Text(s.current),
		Help:    fmt.Sprintf("Type at least %d characters to search", lookup.MinQueryLength),
	})
	if err != nil {
		return err
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return s.set(nil)
	}

	suggestions, err := o.Suggest(ctx, s.field.ID, query)
	if err != nil {
		r.logger.Warn("tui: lookup failed", zap.String("field", s.field.ID.String()), zap.Error(err))
	}
	if len(suggestions) == 0 {
		return s.set(query)
	}

	labels := make([]string, 0, len(suggestions)+1)
	for _, sug := range suggestions {
		labels = append(labels, sug.Label)
	}
	keep := fmt.Sprintf("Keep %q", query)
	labels = append(labels, keep)
	idx, err := r.driver.Select(ctx, SelectConfig{
		Message:      displayLabel(s.field),
		Options:      labels,
		DefaultIndex: 0,
		PageSize:     10,
	})
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(suggestions) {
		return s.set(query)
	}
	picked := suggestions[idx]
	if err := s.set(picked.Value); err != nil {
		return err
	}
	return s.commit(lookup.PayloadFromSuggestion(picked))
}

func (r *Runner) promptTable(ctx context.Context, o *orchestrator.Orchestrator, table *schema.Field) error {
	label := displayLabel(table)
	if n := len(o.Rows(table.ID)); n > 0 {
		if err := r.notify(ctx, NoticeInfo, fmt.Sprintf("%s: %d row(s)", label, n)); err != nil {
			return err
		}
	}
	for {
		add, err := r.driver.Confirm(ctx, ConfirmConfig{
			Message: fmt.Sprintf("Add a row to %s?", label),
			Default: len(o.Rows(table.ID)) == 0 && o.IsRequired(table.ID),
		})
		if err != nil {
			return err
		}
		if !add {
			return nil
		}
		row, err := o.AddRow(table.ID)
		if err != nil {
			return err
		}
		for _, col := range o.VisibleColumns(table.ID) {
			if col.Type.Static() || col.ReadOnly() {
				continue
			}
			if err := r.promptSlot(ctx, o, cellSlot(o, table.ID, row, col)); err != nil {
				return err
			}
		}
	}
}

func message(s slot) string {
	label := displayLabel(s.field)
	if s.required {
		return label + " *"
	}
	return label
}

func displayLabel(field *schema.Field) string {
	if text := schema.LabelText(field); text != "" {
		return text
	}
	return field.ID.String()
}

// indexOf returns the position of value in options, or -1.
func indexOf(options []string, value string) int {
	return slices.Index(options, value)
}

// indicesOf returns the positions in options of every entry in picked, in
// option order.
func indicesOf(options, picked []string) []int {
	var out []int
	for i, option := range options {
		if slices.Contains(picked, option) {
			out = append(out, i)
		}
	}
	return out
}

// defaultsFromIndices maps positions back to option labels, skipping any out
// of range.
func defaultsFromIndices(options []string, indices []int) []string {
	var out []string
	for _, i := range indices {
		if i >= 0 && i < len(options) {
			out = append(out, options[i])
		}
	}
	return out
}
