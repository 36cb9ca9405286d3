package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/sources"
	"github.com/goliatone/go-formflow/pkg/values"
	"github.com/goliatone/go-formflow/pkg/visibility"
	"github.com/goliatone/go-formflow/pkg/workflow"
)

// SetValue writes v under id, resets every field that depends on id and
// prunes values that became hidden. A nil v clears the field.
func (o *Orchestrator) SetValue(id schema.FieldID, v any) error {
	field, err := o.writable(id)
	if err != nil {
		return err
	}
	if v == nil {
		o.vals.Delete(field.ID)
	} else {
		o.vals.Set(field.ID, v)
	}
	delete(o.errors, field.ID)
	o.cascade(field.ID)
	o.Prune()
	return nil
}

// ClearValue removes the value of id and runs the same cascade as SetValue.
func (o *Orchestrator) ClearValue(id schema.FieldID) error {
	return o.SetValue(id, nil)
}

func (o *Orchestrator) writable(id schema.FieldID) (*schema.Field, error) {
	field, ok := o.idx.Field(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownField, id)
	}
	if field.Type.Static() || field.Column() {
		return nil, fmt.Errorf("%w: %s", ErrNotWritable, id)
	}
	return field, nil
}

// cascade resets every transitive dependent of id.
func (o *Orchestrator) cascade(id schema.FieldID) {
	var reset []schema.FieldID
	o.deps.Walk(id, func(child, _ schema.FieldID) {
		o.vals.Delete(child)
		o.loader.Cache().InvalidateField(child)
		delete(o.errors, child)
		reset = append(reset, child)
	})
	if len(reset) > 0 {
		o.logger.Debug("orchestrator: cascade reset",
			zap.String("field", id.String()),
			zap.Strings("children", idStrings(reset)),
		)
	}
}

// Prune recomputes visibility and removes the values, cached option lists and
// errors of hidden fields. Removing a hidden trigger value can hide further
// fields, so the pass repeats until nothing changes.
func (o *Orchestrator) Prune() {
	var removed []schema.FieldID
	for {
		o.vis = o.evaluator.Evaluate(o.idx, o.vals, o.blocked)
		changed := false
		for _, id := range o.vals.Keys() {
			if o.vis.Visible(id) {
				continue
			}
			o.vals.Delete(id)
			removed = append(removed, id)
			changed = true
		}
		if !changed {
			break
		}
	}

	cache := o.loader.Cache()
	for _, id := range o.vis.Hidden() {
		cache.InvalidateField(id)
	}
	o.pruneCells()
	o.errors.Prune(o.vis)
	o.snapStep()

	if len(removed) > 0 {
		o.logger.Debug("orchestrator: pruned hidden values",
			zap.Strings("fields", idStrings(removed)),
		)
	}
}

// pruneCells drops the cells of hidden columns from every stored table row.
func (o *Orchestrator) pruneCells() {
	for _, id := range o.vals.Keys() {
		field, ok := o.idx.Field(id)
		if !ok || field.Type != schema.FieldTypeTable {
			continue
		}
		if values.Rows(o.vals[id]) == nil {
			continue
		}
		rows := copyRows(values.Rows(o.vals[id]))
		for _, col := range o.idx.Columns(id) {
			if o.vis.Visible(col.ID) {
				continue
			}
			for _, row := range rows {
				delete(row, col.ID.String())
			}
		}
		o.vals.Set(id, rows)
	}
}

// Hydrate overwrites the store with vals and prunes.
func (o *Orchestrator) Hydrate(vals values.Map) {
	written := o.vals.Merge(vals, values.Over)
	for _, id := range written {
		delete(o.errors, id)
	}
	o.Prune()
}

// SetBlocked replaces the blocked set and prunes.
func (o *Orchestrator) SetBlocked(ids ...schema.FieldID) {
	o.blocked = visibility.NewBlocked(ids...)
	o.Prune()
}

// ApplyDefaults fills absent or empty top-level values with their configured
// defaults and prunes.
func (o *Orchestrator) ApplyDefaults() {
	seed := o.resolver.Seed(o.idx)
	written := o.vals.Merge(seed, values.Under)
	o.Prune()
	if len(written) > 0 {
		o.logger.Debug("orchestrator: defaults applied",
			zap.Strings("fields", idStrings(written)),
		)
	}
}

// SetIdentity replaces the signed-in user and re-runs the defaults.
func (o *Orchestrator) SetIdentity(id workflow.Identity) {
	o.resolver = o.resolver.WithIdentity(id)
	o.identity = id
	o.ApplyDefaults()
}

// LoadSubmission hydrates the store from a saved submission. The configured
// transformer runs first; then the role field records whether the signed-in
// user raised the submission, the workflow session's secure controls for the
// submission's activity become the blocked set, and defaults fill the gaps.
func (o *Orchestrator) LoadSubmission(ctx context.Context, ref sources.SubmissionRef) error {
	sub, err := o.sources.SavedSubmission(ctx, ref)
	if err != nil {
		return fmt.Errorf("orchestrator: load submission: %w", err)
	}

	incoming := values.New()
	for key, v := range sub.Fields {
		incoming.Set(schema.FieldID(key), v)
	}
	if o.transformer != nil {
		if err := o.transformer.Transform(ctx, incoming); err != nil {
			return fmt.Errorf("orchestrator: transform submission: %w", err)
		}
	}

	if role, ok := o.role(sub.RaisedBy); ok {
		incoming.Set(o.roleField, role)
	}

	o.activityID = sub.ActivityID
	if o.session != nil {
		o.blocked = workflow.ParseSession(o.session, sub.ActivityID).Blocked()
	}

	o.Hydrate(incoming)
	o.ApplyDefaults()

	o.logger.Info("orchestrator: submission loaded",
		zap.String("process", ref.ProcessID),
		zap.String("activity", sub.ActivityID),
		zap.Int("fields", len(incoming)),
	)
	return nil
}

func (o *Orchestrator) role(raisedBy string) (string, bool) {
	email := strings.TrimSpace(o.identity.Email)
	raisedBy = strings.TrimSpace(raisedBy)
	if o.roleField.Empty() || email == "" || raisedBy == "" {
		return "", false
	}
	if strings.EqualFold(email, raisedBy) {
		return RolePrimary, true
	}
	return RoleCoapplicant, true
}
