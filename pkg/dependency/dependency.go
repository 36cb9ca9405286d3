// Package dependency indexes which fields must be reset when another field's
// value changes.
package dependency

import (
	"sort"

	"github.com/goliatone/go-formflow/pkg/schema"
)

// Kind classifies a parent → child link.
type Kind string

const (
	KindMasterParent     Kind = "masterParent"
	KindRepositoryParent Kind = "repositoryParent"
	KindParentDate       Kind = "parentDate"
	KindParentOption     Kind = "parentOption"
	// KindLookup links a lookup-capable field to the siblings it fills. Lookup
	// edges never take part in reset cascades.
	KindLookup Kind = "lookup"
)

// Resets reports whether edges of this kind participate in cascades.
func (k Kind) Resets() bool {
	return k != KindLookup
}

// Edge is a single parent → child link.
type Edge struct {
	Child schema.FieldID
	Kind  Kind
}

// Map is the read-only dependency index built once per schema.
type Map struct {
	edges map[schema.FieldID][]Edge
}

// Build scans every field once. Each child contributes at most one reset edge,
// taken from the first configured of masterFormParentColumn,
// repositoryFieldParent, parentDateField and parentOptionField. Parents that
// do not exist in the schema are kept as keys and simply never fire.
func Build(idx *schema.Index) *Map {
	m := &Map{edges: make(map[schema.FieldID][]Edge)}
	if idx == nil {
		return m
	}

	for _, field := range idx.Fields() {
		if field.ID == "" {
			continue
		}
		if parent, kind, ok := resetParent(field); ok && parent != field.ID {
			m.add(parent, Edge{Child: field.ID, Kind: kind})
		}
	}

	for _, field := range idx.Fields() {
		if field.ID == "" || !field.Lookup.Capable() {
			continue
		}
		for _, sibling := range idx.Siblings(field.ID) {
			if sibling.Lookup.MappedKey() == "" {
				continue
			}
			m.add(field.ID, Edge{Child: sibling.ID, Kind: KindLookup})
		}
	}
	return m
}

func resetParent(field *schema.Field) (schema.FieldID, Kind, bool) {
	switch spec := field.Specific.(type) {
	case schema.OptionSpec:
		if !spec.MasterFormParentColumn.Empty() {
			return spec.MasterFormParentColumn, KindMasterParent, true
		}
		if !spec.RepositoryFieldParent.Empty() {
			return spec.RepositoryFieldParent, KindRepositoryParent, true
		}
		if !spec.ParentOptionField.Empty() {
			return spec.ParentOptionField, KindParentOption, true
		}
	case schema.DateTimeSpec:
		if !spec.ParentDateField.Empty() {
			return spec.ParentDateField, KindParentDate, true
		}
	}
	return "", "", false
}

func (m *Map) add(parent schema.FieldID, edge Edge) {
	for _, existing := range m.edges[parent] {
		if existing.Child == edge.Child && existing.Kind.Resets() == edge.Kind.Resets() {
			return
		}
	}
	m.edges[parent] = append(m.edges[parent], edge)
}

// Edges returns every edge leaving parent, lookup edges included.
func (m *Map) Edges(parent schema.FieldID) []Edge {
	if m == nil {
		return nil
	}
	return m.edges[parent]
}

// Children returns the direct reset dependents of parent in insertion order.
func (m *Map) Children(parent schema.FieldID) []schema.FieldID {
	return m.filter(parent, true)
}

// LookupTargets returns the siblings a lookup on parent may fill through an
// explicit column mapping.
func (m *Map) LookupTargets(parent schema.FieldID) []schema.FieldID {
	return m.filter(parent, false)
}

func (m *Map) filter(parent schema.FieldID, resets bool) []schema.FieldID {
	if m == nil {
		return nil
	}
	var out []schema.FieldID
	for _, edge := range m.edges[parent] {
		if edge.Kind.Resets() == resets {
			out = append(out, edge.Child)
		}
	}
	return out
}

// Parents returns the ids that own at least one edge, sorted.
func (m *Map) Parents() []schema.FieldID {
	if m == nil {
		return nil
	}
	out := make([]schema.FieldID, 0, len(m.edges))
	for parent := range m.edges {
		out = append(out, parent)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Walk visits every field reachable from start through reset edges,
// depth-first in insertion order. Each id is reported at most once per call,
// so cyclic configurations terminate; start itself is never reported.
func (m *Map) Walk(start schema.FieldID, fn func(child, parent schema.FieldID)) {
	if m == nil || fn == nil {
		return
	}
	visited := map[schema.FieldID]struct{}{start: {}}
	var visit func(parent schema.FieldID)
	visit = func(parent schema.FieldID) {
		for _, child := range m.Children(parent) {
			if _, seen := visited[child]; seen {
				continue
			}
			visited[child] = struct{}{}
			fn(child, parent)
			visit(child)
		}
	}
	visit(start)
}

// Descendants returns the ids Walk would report, in visit order.
func (m *Map) Descendants(start schema.FieldID) []schema.FieldID {
	var out []schema.FieldID
	m.Walk(start, func(child, _ schema.FieldID) {
		out = append(out, child)
	})
	return out
}
