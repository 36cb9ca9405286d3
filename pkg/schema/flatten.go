package schema

// Index is the flattened, addressable view of a Document: every field in panel
// order, with each TABLE immediately followed by its columns. It is built once
// per schema and never mutated afterwards.
type Index struct {
	panels  []Panel
	fields  []*Field
	byID    map[FieldID]*Field
	columns map[FieldID][]*Field
	panelOf map[FieldID]int
	byPanel [][]*Field
}

// Flatten builds the Index for doc. When two fields share an id, the first one
// wins the lookup; the later one stays in the ordered list.
func Flatten(doc Document) *Index {
	idx := &Index{
		panels:  make([]Panel, 0, len(doc.Panels)),
		byID:    make(map[FieldID]*Field),
		columns: make(map[FieldID][]*Field),
		panelOf: make(map[FieldID]int),
		byPanel: make([][]*Field, len(doc.Panels)),
	}

	for panelPos, panel := range doc.Panels {
		copied := Panel{
			ID:          panel.ID,
			Title:       panel.Title,
			Description: panel.Description,
			Fields:      make([]Field, 0, len(panel.Fields)),
		}
		for _, field := range panel.Fields {
			top := field
			top.PanelID = panel.ID
			top.ParentID = ""
			copied.Fields = append(copied.Fields, top)
			idx.add(&top, panelPos)
			idx.byPanel[panelPos] = append(idx.byPanel[panelPos], &top)

			spec, ok := top.Table()
			if !ok {
				continue
			}
			for _, column := range spec.Columns {
				col := column
				col.PanelID = panel.ID
				col.ParentID = top.ID
				idx.add(&col, panelPos)
				idx.columns[top.ID] = append(idx.columns[top.ID], &col)
			}
		}
		idx.panels = append(idx.panels, copied)
	}
	return idx
}

func (idx *Index) add(field *Field, panelPos int) {
	idx.fields = append(idx.fields, field)
	if field.ID == "" {
		return
	}
	if _, exists := idx.byID[field.ID]; exists {
		return
	}
	idx.byID[field.ID] = field
	idx.panelOf[field.ID] = panelPos
}

// Fields returns every field, tables followed by their columns.
func (idx *Index) Fields() []*Field {
	if idx == nil {
		return nil
	}
	return idx.fields
}

// Field returns the field registered under id.
func (idx *Index) Field(id FieldID) (*Field, bool) {
	if idx == nil {
		return nil, false
	}
	field, ok := idx.byID[id]
	return field, ok
}

// Has reports whether id is declared by the schema.
func (idx *Index) Has(id FieldID) bool {
	_, ok := idx.Field(id)
	return ok
}

// TopLevel returns the fields that are not table columns.
func (idx *Index) TopLevel() []*Field {
	if idx == nil {
		return nil
	}
	out := make([]*Field, 0, len(idx.fields))
	for _, field := range idx.fields {
		if !field.Column() {
			out = append(out, field)
		}
	}
	return out
}

// Columns returns the column fields of the TABLE tableID.
func (idx *Index) Columns(tableID FieldID) []*Field {
	if idx == nil {
		return nil
	}
	return idx.columns[tableID]
}

// Siblings returns the fields sharing a scope with id: the other columns of
// the same table, or every other top-level field of the document. Panels do
// not bound the top-level scope.
func (idx *Index) Siblings(id FieldID) []*Field {
	field, ok := idx.Field(id)
	if !ok {
		return nil
	}
	var pool []*Field
	if field.Column() {
		pool = idx.columns[field.ParentID]
	} else {
		pool = idx.TopLevel()
	}
	out := make([]*Field, 0, len(pool))
	for _, candidate := range pool {
		if candidate.ID != id {
			out = append(out, candidate)
		}
	}
	return out
}

// Panels returns the panels in document order. Panel fields carry their
// PanelID; table columns stay nested in the TableSpec.
func (idx *Index) Panels() []Panel {
	if idx == nil {
		return nil
	}
	return idx.panels
}

// PanelFields returns the top-level fields of the panel at position pos.
func (idx *Index) PanelFields(pos int) []*Field {
	if idx == nil || pos < 0 || pos >= len(idx.byPanel) {
		return nil
	}
	return idx.byPanel[pos]
}

// PanelOf returns the position of the panel declaring id.
func (idx *Index) PanelOf(id FieldID) (int, bool) {
	if idx == nil {
		return 0, false
	}
	pos, ok := idx.panelOf[id]
	return pos, ok
}

// Len returns the number of flattened fields.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.fields)
}
