// Package summary renders the answered, visible part of a form session as
// plain text.
package summary

import (
	"fmt"
	"io/fs"
	"strings"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-formflow/pkg/orchestrator"
	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/validation"
	"github.com/goliatone/go-formflow/pkg/values"
)

// Option configures Render.
type Option func(*config)

type config struct {
	files    fs.FS
	template string
}

// WithTemplates renders name from files instead of the embedded template.
func WithTemplates(files fs.FS, name string) Option {
	return func(c *config) {
		c.files = files
		if strings.TrimSpace(name) != "" {
			c.template = name
		}
	}
}

// Panel is one visible panel with its answered fields.
type Panel struct {
	Title  string
	Fields []Field
}

// Field is one answered field. Rows is set for tables, one line per row.
type Field struct {
	ID    schema.FieldID
	Label string
	Value string
	Rows  []string
}

// Build collects the visible panels of o and the visible fields that hold a
// value. Panels without answers are omitted.
func Build(o *orchestrator.Orchestrator) []Panel {
	vals := o.Values()
	panels := o.Index().Panels()

	var out []Panel
	for _, pos := range o.VisiblePanels() {
		panel := Panel{Title: panelTitle(panels[pos], pos)}
		for _, field := range o.VisibleFields(pos) {
			if field.Type.Static() {
				continue
			}
			value, ok := vals[field.ID]
			if !ok || validation.Empty(field, value) {
				continue
			}
			entry := Field{ID: field.ID, Label: label(field)}
			if field.Type == schema.FieldTypeTable {
				entry.Rows = tableRows(o, field, value)
				entry.Value = fmt.Sprintf("%d row(s)", len(entry.Rows))
			} else {
				entry.Value = Display(field, value)
			}
			panel.Fields = append(panel.Fields, entry)
		}
		if len(panel.Fields) > 0 {
			out = append(out, panel)
		}
	}
	return out
}

// Render builds the summary of o and executes the summary template.
func Render(o *orchestrator.Orchestrator, opts ...Option) (string, error) {
	cfg := &config{template: DefaultTemplate}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(cfg)
	}
	engine, err := NewEngine(cfg.files)
	if err != nil {
		return "", err
	}
	return engine.RenderTemplate(cfg.template, contextOf(Build(o)))
}

func contextOf(panels []Panel) pongo2.Context {
	list := make([]map[string]any, 0, len(panels))
	for _, panel := range panels {
		fields := make([]map[string]any, 0, len(panel.Fields))
		for _, field := range panel.Fields {
			rows := field.Rows
			if rows == nil {
				rows = []string{}
			}
			fields = append(fields, map[string]any{
				"id":    field.ID.String(),
				"label": field.Label,
				"value": field.Value,
				"rows":  rows,
			})
		}
		list = append(list, map[string]any{
			"title":  panel.Title,
			"fields": fields,
		})
	}
	return pongo2.Context{"panels": list}
}

// Display renders a stored value for humans: phone numbers formatted,
// currency amounts with their symbol, lists joined.
func Display(field *schema.Field, value any) string {
	switch field.Type {
	case schema.FieldTypePhone:
		if p, ok := values.DecodePhone(value); ok {
			return strings.TrimSpace(p.Code + " " + values.FormatPhone(p.PhoneNo))
		}
	case schema.FieldTypeCurrency:
		if c, ok := values.DecodeCurrency(value); ok {
			return strings.TrimSpace(c.Symbol + values.FormatAmount(c.Value) + " " + c.Code)
		}
	}
	if field.Validation.ContentRule == schema.ContentRuleEmail {
		return strings.TrimSpace(values.DecodeVerifiedEmail(value).Value)
	}
	if field.Type.Multiple() {
		return strings.Join(values.Strings(value), ", ")
	}
	return values.Text(value)
}

func tableRows(o *orchestrator.Orchestrator, table *schema.Field, value any) []string {
	cols := o.VisibleColumns(table.ID)
	var out []string
	for _, row := range values.Rows(value) {
		var cells []string
		for _, col := range cols {
			cell, ok := row[col.ID.String()]
			if !ok || validation.Empty(col, cell) {
				continue
			}
			cells = append(cells, label(col)+": "+Display(col, cell))
		}
		out = append(out, strings.Join(cells, "; "))
	}
	return out
}

func panelTitle(p schema.Panel, pos int) string {
	if title := strings.TrimSpace(p.Title); title != "" {
		return title
	}
	return fmt.Sprintf("Step %d", pos+1)
}

func label(field *schema.Field) string {
	if text := schema.LabelText(field); text != "" {
		return text
	}
	return field.Name
}
