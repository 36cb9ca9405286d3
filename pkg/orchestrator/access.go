package orchestrator

import (
	"context"
	"fmt"

	"github.com/goliatone/go-formflow/pkg/lookup"
	"github.com/goliatone/go-formflow/pkg/options"
	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/values"
)

// EnsureOptions starts loading the option list of id for the current values.
// Hidden fields and fields without options are ignored. It returns the cache
// key the list settles under.
func (o *Orchestrator) EnsureOptions(ctx context.Context, id schema.FieldID) (string, error) {
	field, ok := o.idx.Field(id)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownField, id)
	}
	if !o.vis.Visible(id) {
		return "", nil
	}
	if _, ok := field.Options(); !ok {
		return "", nil
	}
	return o.loader.EnsureLoaded(ctx, field, o.vals), nil
}

// RefreshOptions ensures the option list of every visible top-level field.
func (o *Orchestrator) RefreshOptions(ctx context.Context) {
	for _, field := range o.idx.TopLevel() {
		if _, ok := field.Options(); !ok || !o.vis.Visible(field.ID) {
			continue
		}
		o.loader.EnsureLoaded(ctx, field, o.vals)
	}
}

// Options returns the cached option list of id for the current values.
func (o *Orchestrator) Options(id schema.FieldID) options.Entry {
	field, ok := o.idx.Field(id)
	if !ok {
		return options.Entry{Status: options.StatusIdle}
	}
	return o.loader.Entry(field, o.vals)
}

// Suggest asks the address source for suggestions for the lookup field id.
func (o *Orchestrator) Suggest(ctx context.Context, id schema.FieldID, query string) ([]lookup.Suggestion, error) {
	field, ok := o.idx.Field(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownField, id)
	}
	return lookup.Suggest(ctx, o.sources, field, query)
}

// SelectSuggestion stores the suggestion text in id and fans the derived
// payload out to its siblings.
func (o *Orchestrator) SelectSuggestion(id schema.FieldID, s lookup.Suggestion) error {
	if err := o.SetValue(id, s.Value); err != nil {
		return err
	}
	return o.CommitLookup(id, lookup.PayloadFromSuggestion(s))
}

// CommitLookup writes the fills computed for payload into the empty
// top-level fields of the document, on any panel. Fills that land on hidden
// fields are pruned.
func (o *Orchestrator) CommitLookup(id schema.FieldID, payload lookup.Payload) error {
	field, err := o.writable(id)
	if err != nil {
		return err
	}
	fills := lookup.FanOut(field, o.idx.Siblings(id), payload, o.vals)
	targets := fills.Keys()
	// Resets run before the writes so a filled parent cannot clear a filled
	// child.
	for _, target := range targets {
		o.cascade(target)
	}
	for _, target := range targets {
		o.vals.Set(target, fills[target])
		delete(o.errors, target)
	}
	o.Prune()
	return nil
}

// CommitCellLookup writes the fills computed for payload into the empty
// cells of the same row.
func (o *Orchestrator) CommitCellLookup(tableID schema.FieldID, i int, colID schema.FieldID, payload lookup.Payload) error {
	if _, err := o.table(tableID); err != nil {
		return err
	}
	col, ok := o.idx.Field(colID)
	if !ok || col.ParentID != tableID {
		return fmt.Errorf("%w: %s.%s", ErrUnknownField, tableID, colID)
	}
	rows := o.Rows(tableID)
	if i < 0 || i >= len(rows) {
		return fmt.Errorf("%w: %s[%d]", ErrRowOutOfRange, tableID, i)
	}

	current := values.New()
	for k, v := range rows[i] {
		current.Set(schema.FieldID(k), v)
	}
	fills := lookup.FanOut(col, o.idx.Siblings(colID), payload, current)
	for _, target := range fills.Keys() {
		rows[i][target.String()] = fills[target]
	}
	o.vals.Set(tableID, rows)
	delete(o.errors, tableID)
	o.Prune()
	return nil
}
