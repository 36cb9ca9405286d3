package orchestrator

import (
	"fmt"

	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/values"
)

func (o *Orchestrator) table(id schema.FieldID) (*schema.Field, error) {
	field, ok := o.idx.Field(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownField, id)
	}
	if field.Type != schema.FieldTypeTable {
		return nil, fmt.Errorf("%w: %s", ErrNotTable, id)
	}
	return field, nil
}

// Rows returns a copy of the rows stored under tableID.
func (o *Orchestrator) Rows(tableID schema.FieldID) []map[string]any {
	return copyRows(values.Rows(o.vals[tableID]))
}

// AddRow appends a row seeded with the column defaults and returns its index.
func (o *Orchestrator) AddRow(tableID schema.FieldID) (int, error) {
	if _, err := o.table(tableID); err != nil {
		return 0, err
	}
	row := map[string]any{}
	for _, col := range o.idx.Columns(tableID) {
		if v, ok := o.resolver.Resolve(col); ok {
			row[col.ID.String()] = v
		}
	}
	rows := append(o.Rows(tableID), row)
	o.vals.Set(tableID, rows)
	delete(o.errors, tableID)
	o.Prune()
	return len(rows) - 1, nil
}

// RemoveRow deletes row i of tableID.
func (o *Orchestrator) RemoveRow(tableID schema.FieldID, i int) error {
	if _, err := o.table(tableID); err != nil {
		return err
	}
	rows := o.Rows(tableID)
	if i < 0 || i >= len(rows) {
		return fmt.Errorf("%w: %s[%d]", ErrRowOutOfRange, tableID, i)
	}
	rows = append(rows[:i], rows[i+1:]...)
	o.vals.Set(tableID, rows)
	delete(o.errors, tableID)
	o.Prune()
	return nil
}

// SetCell writes v into column colID of row i. Columns of the same row that
// depend on colID are reset; a nil v clears the cell.
func (o *Orchestrator) SetCell(tableID schema.FieldID, i int, colID schema.FieldID, v any) error {
	if _, err := o.table(tableID); err != nil {
		return err
	}
	col, ok := o.idx.Field(colID)
	if !ok || col.ParentID != tableID {
		return fmt.Errorf("%w: %s.%s", ErrUnknownField, tableID, colID)
	}
	if col.Type.Static() {
		return fmt.Errorf("%w: %s.%s", ErrNotWritable, tableID, colID)
	}
	rows := o.Rows(tableID)
	if i < 0 || i >= len(rows) {
		return fmt.Errorf("%w: %s[%d]", ErrRowOutOfRange, tableID, i)
	}

	row := rows[i]
	if v == nil {
		delete(row, colID.String())
	} else {
		row[colID.String()] = v
	}
	o.deps.Walk(colID, func(child, _ schema.FieldID) {
		if dep, ok := o.idx.Field(child); ok && dep.ParentID == tableID {
			delete(row, child.String())
			o.loader.Cache().InvalidateField(child)
		}
	})

	o.vals.Set(tableID, rows)
	delete(o.errors, tableID)
	o.Prune()
	return nil
}

func copyRows(rows []map[string]any) []map[string]any {
	if rows == nil {
		return []map[string]any{}
	}
	out := make([]map[string]any, len(rows))
	for i, row := range rows {
		cp := make(map[string]any, len(row))
		for k, v := range row {
			cp[k] = v
		}
		out[i] = cp
	}
	return out
}
