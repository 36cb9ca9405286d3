// Package mandatory decides whether a visible field currently requires a value.
package mandatory

import (
	"strings"

	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/values"
	"github.com/goliatone/go-formflow/pkg/visibility"
)

// IsRequired reports whether id must hold a value. Hidden fields are never
// required. Static REQUIRED fields are; otherwise any visible field whose
// mandatorySettings rule targets id and whose value matches the rule trigger
// upgrades the result to required. Rules only ever upgrade.
func IsRequired(id schema.FieldID, vals values.Map, idx *schema.Index, vis visibility.Map) bool {
	field, ok := idx.Field(id)
	if !ok || !vis.Visible(id) {
		return false
	}
	if field.Required() {
		return true
	}
	return upgraded(id, vals, idx, vis)
}

func upgraded(id schema.FieldID, vals values.Map, idx *schema.Index, vis visibility.Map) bool {
	for _, driver := range idx.Fields() {
		if driver.ID == id || len(driver.Validation.MandatorySettings) == 0 {
			continue
		}
		if !vis.Visible(driver.ID) {
			continue
		}
		stored, ok := vals[driver.ID]
		if !ok {
			continue
		}
		for _, rule := range driver.Validation.MandatorySettings {
			if rule.Targets(id) && values.Matches(stored, rule.Value) {
				return true
			}
		}
	}
	return false
}

// ColumnRequired reports whether a table column must be filled in every row:
// it is REQUIRED and renders with NORMAL visibility.
func ColumnRequired(col *schema.Field) bool {
	if col == nil || !col.Required() {
		return false
	}
	mode := strings.ToUpper(strings.TrimSpace(string(col.General.Visibility)))
	return mode == "" || mode == string(schema.VisibilityNormal)
}

// RequiredSet returns every currently required field id in schema order.
func RequiredSet(idx *schema.Index, vals values.Map, vis visibility.Map) []schema.FieldID {
	var out []schema.FieldID
	for _, field := range idx.Fields() {
		if field.Column() || field.Type.Static() {
			continue
		}
		if IsRequired(field.ID, vals, idx, vis) {
			out = append(out, field.ID)
		}
	}
	return out
}
