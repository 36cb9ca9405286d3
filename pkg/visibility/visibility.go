// Package visibility derives which fields are shown from the schema rules, the
// entered values and the workflow's blocked fields.
package visibility

import (
	"sort"

	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/values"
)

// Blocked is the externally supplied set of fields that must always be
// hidden, regardless of rule outcomes.
type Blocked map[schema.FieldID]struct{}

// NewBlocked builds a Blocked set from ids. Blank ids are ignored.
func NewBlocked(ids ...schema.FieldID) Blocked {
	out := make(Blocked, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		out[id] = struct{}{}
	}
	return out
}

// Has reports whether id is blocked.
func (b Blocked) Has(id schema.FieldID) bool {
	_, ok := b[id]
	return ok
}

// IDs returns the blocked ids sorted.
func (b Blocked) IDs() []schema.FieldID {
	out := make([]schema.FieldID, 0, len(b))
	for id := range b {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Map is a full visibility derivation: field id → shown.
type Map struct {
	shown   map[schema.FieldID]bool
	blocked Blocked
}

// Visible reports the derived visibility of id. Ids unknown to the schema are
// visible unless blocked.
func (m Map) Visible(id schema.FieldID) bool {
	if m.blocked.Has(id) {
		return false
	}
	shown, ok := m.shown[id]
	if !ok {
		return true
	}
	return shown
}

// Hidden returns every schema id that is currently hidden, sorted.
func (m Map) Hidden() []schema.FieldID {
	out := make([]schema.FieldID, 0)
	for id, shown := range m.shown {
		if !shown {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Len returns the number of schema ids in the derivation.
func (m Map) Len() int {
	return len(m.shown)
}

// Snapshot returns a copy of the derivation as a plain map.
func (m Map) Snapshot() map[schema.FieldID]bool {
	out := make(map[schema.FieldID]bool, len(m.shown))
	for id, shown := range m.shown {
		out[id] = shown
	}
	return out
}

// Evaluator computes visibility. The default implementation is Evaluate;
// hosts may decorate it with additional policy.
type Evaluator interface {
	Evaluate(idx *schema.Index, vals values.Map, blocked Blocked) Map
}

// EvaluatorFunc adapts a function into an Evaluator.
type EvaluatorFunc func(idx *schema.Index, vals values.Map, blocked Blocked) Map

// Evaluate delegates to the underlying function.
func (fn EvaluatorFunc) Evaluate(idx *schema.Index, vals values.Map, blocked Blocked) Map {
	return fn(idx, vals, blocked)
}

// Default is the rule-based evaluator.
var Default Evaluator = EvaluatorFunc(Evaluate)

// Evaluate derives the visibility of every field. It is pure: the same inputs
// always produce the same Map.
//
// Steps, later ones overriding earlier ones:
//  1. every field is shown, except DISABLE fields and blocked ids;
//  2. every target of any enable rule starts hidden;
//  3. each enable rule whose trigger matches its owner's value, and whose
//     condition group holds, shows its targets unless they are blocked or
//     DISABLE.
func Evaluate(idx *schema.Index, vals values.Map, blocked Blocked) Map {
	shown := make(map[schema.FieldID]bool, idx.Len())
	locked := make(map[schema.FieldID]struct{})

	for _, field := range idx.Fields() {
		if field.ID == "" {
			continue
		}
		if _, seen := shown[field.ID]; seen {
			continue
		}
		if field.Disabled() {
			locked[field.ID] = struct{}{}
		}
		shown[field.ID] = !field.Disabled() && !blocked.Has(field.ID)
	}

	for _, field := range idx.Fields() {
		for _, rule := range field.Validation.EnableSettings {
			for _, target := range rule.Controls {
				shown[target] = false
			}
		}
	}

	for _, owner := range idx.Fields() {
		rules := owner.Validation.EnableSettings
		if len(rules) == 0 {
			continue
		}
		stored := vals[owner.ID]
		for _, rule := range rules {
			if !RuleHolds(rule, stored, vals) {
				continue
			}
			for _, target := range rule.Controls {
				if _, disabled := locked[target]; disabled || blocked.Has(target) {
					continue
				}
				shown[target] = true
			}
		}
	}

	return Map{shown: shown, blocked: blocked}
}

// RuleHolds reports whether rule fires for the owner value stored, including
// its condition group.
func RuleHolds(rule schema.Rule, stored any, vals values.Map) bool {
	if !values.Matches(stored, rule.Value) {
		return false
	}
	if len(rule.Conditions) == 0 {
		return true
	}
	anyOf := rule.Logic() == schema.GroupAny
	for _, cond := range rule.Conditions {
		ok := values.Check(cond.Logic, vals[cond.Name], cond.Value)
		if anyOf && ok {
			return true
		}
		if !anyOf && !ok {
			return false
		}
	}
	return !anyOf
}
