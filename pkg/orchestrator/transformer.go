package orchestrator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/values"
)

// Transformer rewrites saved-submission values before they are hydrated.
// Implementations can rename ids left behind by older schema revisions, drop
// retired fields or fill values the submission lacks.
type Transformer interface {
	Transform(ctx context.Context, vals values.Map) error
}

// TransformerFunc adapts plain functions to the Transformer interface.
type TransformerFunc func(ctx context.Context, vals values.Map) error

// Transform executes the wrapped function when non-nil.
func (fn TransformerFunc) Transform(ctx context.Context, vals values.Map) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, vals)
}

// JSONPresetTransformer applies declarative per-field patches loaded from a
// JSON document:
//
//	{
//	  "fields": {
//	    "143001": {"rename": "143091"},
//	    "143002": {"drop": true},
//	    "143190": {"default": "Primary"}
//	  }
//	}
//
// Renames run first, then drops, then defaults for ids still absent.
type JSONPresetTransformer struct {
	document jsonTransformDocument
}

type jsonTransformDocument struct {
	Fields map[schema.FieldID]jsonFieldPatch `json:"fields"`
}

type jsonFieldPatch struct {
	Rename  schema.FieldID `json:"rename"`
	Drop    bool           `json:"drop"`
	Default any            `json:"default"`
}

// NewJSONPresetTransformer constructs a transformer from raw JSON bytes.
func NewJSONPresetTransformer(data []byte) (*JSONPresetTransformer, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("json preset transformer: document is empty")
	}
	var document jsonTransformDocument
	if err := json.Unmarshal(data, &document); err != nil {
		return nil, fmt.Errorf("json preset transformer: parse document: %w", err)
	}
	return &JSONPresetTransformer{document: document}, nil
}

// NewJSONPresetTransformerFromFS loads a JSON transformer document from the
// provided filesystem path.
func NewJSONPresetTransformerFromFS(fsys fs.FS, path string) (*JSONPresetTransformer, error) {
	if fsys == nil {
		return nil, errors.New("json preset transformer: filesystem is nil")
	}
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("json preset transformer: path is required")
	}
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("json preset transformer: read %s: %w", path, err)
	}
	return NewJSONPresetTransformer(data)
}

// Transform applies the declarative patches onto vals.
func (t *JSONPresetTransformer) Transform(ctx context.Context, vals values.Map) error {
	if vals == nil {
		return errors.New("json preset transformer: values are nil")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	ids := make([]schema.FieldID, 0, len(t.document.Fields))
	for id := range t.document.Fields {
		ids = append(ids, id)
	}
	sortIDs(ids)

	for _, id := range ids {
		patch := t.document.Fields[id]
		if patch.Rename.Empty() || patch.Rename == id {
			continue
		}
		if v, ok := vals.Get(id); ok {
			if !vals.Has(patch.Rename) {
				vals.Set(patch.Rename, v)
			}
			vals.Delete(id)
		}
	}
	for _, id := range ids {
		if t.document.Fields[id].Drop {
			vals.Delete(id)
		}
	}
	for _, id := range ids {
		patch := t.document.Fields[id]
		if patch.Drop || patch.Default == nil {
			continue
		}
		target := id
		if !patch.Rename.Empty() {
			target = patch.Rename
		}
		if !vals.Has(target) {
			vals.Set(target, patch.Default)
		}
	}
	return nil
}
