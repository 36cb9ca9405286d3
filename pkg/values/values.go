// Package values holds the form values store and the comparison rules used
// when schema rules are matched against entered values.
package values

import (
	"sort"

	"github.com/goliatone/go-formflow/pkg/schema"
)

// Map stores entered values keyed by field id. A missing key means "no value
// yet", which is distinct from an empty string.
type Map map[schema.FieldID]any

// New returns an empty store.
func New() Map {
	return make(Map)
}

// Clone returns a shallow copy. Slice and row values are copied one level deep
// so callers cannot mutate the store through the clone.
func (m Map) Clone() Map {
	out := make(Map, len(m))
	for key, value := range m {
		out[key] = cloneValue(value)
	}
	return out
}

// Has reports whether id holds a value.
func (m Map) Has(id schema.FieldID) bool {
	_, ok := m[id]
	return ok
}

// Get returns the value stored at id.
func (m Map) Get(id schema.FieldID) (any, bool) {
	value, ok := m[id]
	return value, ok
}

// String returns the value at id in its canonical string form.
func (m Map) String(id schema.FieldID) string {
	value, ok := m[id]
	if !ok {
		return ""
	}
	return Text(value)
}

// Set writes value at id.
func (m Map) Set(id schema.FieldID, value any) {
	m[id] = value
}

// Delete removes id and reports whether it was present.
func (m Map) Delete(id schema.FieldID) bool {
	if _, ok := m[id]; !ok {
		return false
	}
	delete(m, id)
	return true
}

// MergeMode decides which side wins on key collisions.
type MergeMode int

const (
	// Over overwrites existing keys with incoming values.
	Over MergeMode = iota
	// Under only fills keys that are absent or empty.
	Under
)

// Merge copies other into m according to mode and returns the ids written.
func (m Map) Merge(other Map, mode MergeMode) []schema.FieldID {
	var written []schema.FieldID
	for _, key := range other.Keys() {
		if mode == Under {
			if current, ok := m[key]; ok && !IsEmpty(current) {
				continue
			}
		}
		m[key] = cloneValue(other[key])
		written = append(written, key)
	}
	return written
}

// Keys returns the ids holding a value, sorted for deterministic iteration.
func (m Map) Keys() []schema.FieldID {
	keys := make([]schema.FieldID, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func cloneValue(value any) any {
	switch typed := value.(type) {
	case []any:
		return append([]any(nil), typed...)
	case []string:
		return append([]string(nil), typed...)
	case []map[string]any:
		rows := make([]map[string]any, len(typed))
		for i, row := range typed {
			copied := make(map[string]any, len(row))
			for k, v := range row {
				copied[k] = v
			}
			rows[i] = copied
		}
		return rows
	case map[string]any:
		copied := make(map[string]any, len(typed))
		for k, v := range typed {
			copied[k] = v
		}
		return copied
	default:
		return value
	}
}

// Rows returns a TABLE value as rows keyed by column id. Decoded JSON arrays
// of objects are accepted; anything else yields no rows.
func Rows(value any) []map[string]any {
	switch typed := value.(type) {
	case []map[string]any:
		return typed
	case []any:
		rows := make([]map[string]any, 0, len(typed))
		for _, item := range typed {
			row, ok := item.(map[string]any)
			if !ok {
				return nil
			}
			rows = append(rows, row)
		}
		return rows
	default:
		return nil
	}
}
