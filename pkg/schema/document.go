package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrEmptyDocument is returned when a schema payload is blank.
var ErrEmptyDocument = errors.New("schema: document is empty")

// Parse decodes a schema document. JSON is tried first and YAML is accepted as
// a fallback so hand-written fixtures can use either.
func Parse(data []byte) (Document, error) {
	return parseFrom(data, SourceFromBytes(""))
}

// LoadFile reads and parses a schema document from disk.
func LoadFile(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("schema: read %s: %w", path, err)
	}
	return parseFrom(data, SourceFromFile(path))
}

// LoadFS reads and parses a schema document from fsys.
func LoadFS(fsys fs.FS, name string) (Document, error) {
	if fsys == nil {
		return Document{}, errors.New("schema: filesystem is required")
	}
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return Document{}, fmt.Errorf("schema: read %s: %w", name, err)
	}
	return parseFrom(data, SourceFromFS(name))
}

// MustParse panics if the document cannot be parsed. Useful for tests.
func MustParse(data []byte) Document {
	doc, err := Parse(data)
	if err != nil {
		panic(err)
	}
	return doc
}

func parseFrom(data []byte, src Source) (Document, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return Document{}, ErrEmptyDocument
	}

	var doc Document
	jsonErr := json.Unmarshal(trimmed, &doc)
	if jsonErr != nil {
		converted, err := yamlToJSON(trimmed)
		if err != nil {
			return Document{}, fmt.Errorf("schema: parse %s: invalid JSON or YAML: %w", sourceLocation(src), jsonErr)
		}
		doc = Document{}
		if err := json.Unmarshal(converted, &doc); err != nil {
			return Document{}, fmt.Errorf("schema: parse %s: %w", sourceLocation(src), err)
		}
	}
	doc.Source = src
	return doc, nil
}

// yamlToJSON re-encodes a YAML payload as JSON so the field decoders, which
// own the id and settings normalisation, only exist once.
func yamlToJSON(data []byte) ([]byte, error) {
	var tree any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, err
	}
	if _, ok := tree.(map[string]any); !ok {
		return nil, errors.New("yaml root must be a mapping")
	}
	return json.Marshal(tree)
}

// FromLegacyDefinition builds a single-panel document from the flat legacy
// definition list (id, name, type, isMandatory, parentId, validationJson).
// Items whose parentId names a TABLE in the list become its columns.
func FromLegacyDefinition(data []byte) (Document, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return Document{}, ErrEmptyDocument
	}
	var items []Field
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return Document{}, fmt.Errorf("schema: parse legacy definition: %w", err)
	}

	tables := make(map[FieldID]int)
	top := make([]Field, 0, len(items))
	for _, item := range items {
		if item.Type == FieldTypeTable && !item.Column() {
			tables[item.ID] = len(top)
		}
		if !item.Column() {
			top = append(top, item)
		}
	}
	for _, item := range items {
		if !item.Column() {
			continue
		}
		pos, ok := tables[item.ParentID]
		if !ok {
			// Orphaned columns are promoted to the top level.
			item.ParentID = ""
			top = append(top, item)
			continue
		}
		spec, _ := top[pos].Table()
		spec.Columns = append(spec.Columns, item)
		top[pos].Specific = spec
	}

	return Document{
		Panels: []Panel{{
			ID:          "panel-legacy-1",
			Title:       "Application",
			Description: "Fill out your details.",
			Fields:      top,
		}},
		Source: namedSource{kind: SourceKindLegacy, location: "legacy"},
	}, nil
}
