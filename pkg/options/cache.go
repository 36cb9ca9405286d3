// Package options resolves and caches the option lists of selectable fields.
package options

import (
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/values"
)

// Status is the lifecycle state of one cache entry.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusError   Status = "error"
)

// LoadError is the user-facing message stored on failed entries.
const LoadError = "unable to load options"

// Entry is the cached state of one option list.
type Entry struct {
	Status  Status
	Options []string
	Err     string
}

// Settled reports whether the entry reached ready or error.
func (e Entry) Settled() bool {
	return e.Status == StatusReady || e.Status == StatusError
}

const keySep = "::"

// Key derives the cache key of field's option list for the given values.
// Lists filtered by a parent embed the parent id and its current value so a
// new parent value never reads a stale list.
func Key(field *schema.Field, vals values.Map) string {
	if field == nil {
		return ""
	}
	id := field.ID.String()
	spec, ok := field.Options()
	if !ok {
		return id + keySep + "static"
	}
	parent, hasParent := spec.Parent()
	if !hasParent {
		return id + keySep + "static"
	}
	kind := "masterParent"
	if spec.Source() == schema.OptionsRepository {
		kind = "repoParent"
	}
	return strings.Join([]string{id, kind, parent.String(), values.Text(vals[parent])}, keySep)
}

// Cache holds option-list entries by key. Fetch completions settle entries
// from other goroutines, so every access is guarded.
type Cache struct {
	mu      sync.Mutex
	entries map[string]Entry
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]Entry)}
}

// Get returns the entry for key. Absent keys are idle.
func (c *Cache) Get(key string) Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok {
		return Entry{Status: StatusIdle}
	}
	entry.Options = append([]string(nil), entry.Options...)
	return entry
}

// begin moves key to loading. It returns false when the key is already
// loading or ready.
func (c *Cache) begin(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.entries[key].Status {
	case StatusLoading, StatusReady:
		return false
	}
	c.entries[key] = Entry{Status: StatusLoading, Options: []string{}}
	return true
}

// settle records the outcome of a fetch started by begin. Completions for
// keys invalidated in the meantime are dropped.
func (c *Cache) settle(key string, opts []string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entries[key].Status != StatusLoading {
		return
	}
	if err != nil {
		c.entries[key] = Entry{Status: StatusError, Options: []string{}, Err: LoadError}
		return
	}
	if opts == nil {
		opts = []string{}
	}
	c.entries[key] = Entry{Status: StatusReady, Options: opts}
}

// InvalidateField drops the entry keyed by id and every entry under id's
// prefix. It returns the number of entries removed.
func (c *Cache) InvalidateField(id schema.FieldID) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	prefix := id.String() + keySep
	removed := 0
	for key := range c.entries {
		if key == id.String() || strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Keys returns the cached keys sorted.
func (c *Cache) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.entries))
	for key := range c.entries {
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}

// Snapshot returns a copy of every entry.
func (c *Cache) Snapshot() map[string]Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]Entry, len(c.entries))
	for key, entry := range c.entries {
		entry.Options = append([]string(nil), entry.Options...)
		out[key] = entry
	}
	return out
}
