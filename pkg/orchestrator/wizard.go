package orchestrator

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/validation"
)

// VisiblePanels returns the positions of the panels that show at least one
// field.
func (o *Orchestrator) VisiblePanels() []int {
	var out []int
	for pos := range o.idx.Panels() {
		if o.panelVisible(pos) {
			out = append(out, pos)
		}
	}
	return out
}

func (o *Orchestrator) panelVisible(pos int) bool {
	for _, field := range o.idx.PanelFields(pos) {
		if o.vis.Visible(field.ID) {
			return true
		}
	}
	return false
}

// VisibleFields returns the visible top-level fields of the panel at pos in
// document order.
func (o *Orchestrator) VisibleFields(pos int) []*schema.Field {
	var out []*schema.Field
	for _, field := range o.idx.PanelFields(pos) {
		if o.vis.Visible(field.ID) {
			out = append(out, field)
		}
	}
	return out
}

// VisibleColumns returns the visible columns of tableID.
func (o *Orchestrator) VisibleColumns(tableID schema.FieldID) []*schema.Field {
	var out []*schema.Field
	for _, col := range o.idx.Columns(tableID) {
		if o.vis.Visible(col.ID) {
			out = append(out, col)
		}
	}
	return out
}

// Step returns the position of the current panel.
func (o *Orchestrator) Step() int {
	return o.step
}

// CurrentPanel returns the current panel.
func (o *Orchestrator) CurrentPanel() (schema.Panel, bool) {
	panels := o.idx.Panels()
	if o.step < 0 || o.step >= len(panels) {
		return schema.Panel{}, false
	}
	return panels[o.step], true
}

// snapStep moves the step off a panel that no longer shows any field, to the
// next visible panel or, failing that, the previous one.
func (o *Orchestrator) snapStep() {
	if o.step < 0 || o.step >= len(o.idx.Panels()) || o.panelVisible(o.step) {
		return
	}
	pos, ok := o.nextVisible(o.step)
	if !ok {
		pos, ok = o.prevVisible(o.step)
	}
	if ok {
		o.logger.Debug("orchestrator: step moved off hidden panel",
			zap.Int("from", o.step),
			zap.Int("to", pos),
		)
		o.step = pos
	}
}

// IsLast reports whether no visible panel follows the current one.
func (o *Orchestrator) IsLast() bool {
	_, ok := o.nextVisible(o.step)
	return !ok
}

func (o *Orchestrator) nextVisible(from int) (int, bool) {
	for pos := from + 1; pos < len(o.idx.Panels()); pos++ {
		if o.panelVisible(pos) {
			return pos, true
		}
	}
	return 0, false
}

func (o *Orchestrator) prevVisible(from int) (int, bool) {
	for pos := from - 1; pos >= 0; pos-- {
		if o.panelVisible(pos) {
			return pos, true
		}
	}
	return 0, false
}

// Validate checks the visible fields of the current panel without recording
// the result.
func (o *Orchestrator) Validate() validation.Errors {
	return validation.Panel(o.idx.PanelFields(o.step), o.idx, o.vals, o.vis)
}

// Errors returns a copy of the errors recorded by the last Next call, minus
// those cleared since.
func (o *Orchestrator) Errors() validation.Errors {
	out := make(validation.Errors, len(o.errors))
	for id, msg := range o.errors {
		out[id] = msg
	}
	return out
}

// Next validates the current panel and advances to the next visible one. While
// the panel has errors it stays put and returns them with ErrPanelInvalid. On
// the last panel a successful Next leaves the step unchanged.
func (o *Orchestrator) Next() (validation.Errors, error) {
	errs := o.Validate()
	o.errors = errs
	if !errs.Valid() {
		o.logger.Debug("orchestrator: panel invalid",
			zap.Int("step", o.step),
			zap.Int("errors", len(errs)),
		)
		return o.Errors(), ErrPanelInvalid
	}
	if pos, ok := o.nextVisible(o.step); ok {
		o.step = pos
	}
	return nil, nil
}

// Back moves to the previous visible panel and reports whether it moved.
func (o *Orchestrator) Back() bool {
	pos, ok := o.prevVisible(o.step)
	if ok {
		o.step = pos
	}
	return ok
}

// GoTo jumps to the panel at pos without validating.
func (o *Orchestrator) GoTo(pos int) error {
	if pos < 0 || pos >= len(o.idx.Panels()) {
		return fmt.Errorf("orchestrator: panel %d out of range", pos)
	}
	o.step = pos
	return nil
}
