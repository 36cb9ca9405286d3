package options

import (
	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/sources"
	"github.com/goliatone/go-formflow/pkg/values"
)

// RequestKind names the collaborator call a Request maps to.
type RequestKind string

const (
	RequestStatic             RequestKind = "static"
	RequestColumn             RequestKind = "column"
	RequestRepository         RequestKind = "repository"
	RequestRepositoryFiltered RequestKind = "repository-filtered"
	RequestPredefined         RequestKind = "predefined"
)

// PredefinedUsers is the predefined table served by the PredefinedSource.
const PredefinedUsers = "User"

// Request is the collaborator call needed to resolve one option list.
type Request struct {
	Kind RequestKind
	// FormID is the form id for column requests and the repository id for
	// repository requests.
	FormID   string
	Field    string
	Query    sources.ColumnQuery
	Criteria sources.Criteria
	Static   []string
}

// BuildRequest maps field's option settings to a collaborator call. The
// boolean is false when the list depends on a parent that holds no value yet
// and unfiltered is off.
func BuildRequest(field *schema.Field, vals values.Map, unfiltered bool) (Request, bool) {
	spec, ok := field.Options()
	if !ok {
		return Request{Kind: RequestStatic, Static: []string{}}, true
	}
	id := field.ID.String()

	switch spec.Source() {
	case schema.OptionsExisting:
		formID := spec.WFormID
		if formID.Empty() {
			formID = spec.MasterFormID
		}
		return Request{
			Kind:   RequestColumn,
			FormID: sourceID(formID),
			Query:  sources.ColumnQuery{Column: id},
		}, true

	case schema.OptionsMaster:
		column := spec.MasterFormColumn
		if column == "" {
			column = id
		}
		req := Request{
			Kind:   RequestColumn,
			FormID: sourceID(spec.MasterFormID),
			Query:  sources.ColumnQuery{Column: column},
		}
		if parent, ok := spec.Parent(); ok {
			value, set := parentValue(vals, parent)
			if !set && !unfiltered {
				return req, false
			}
			if set {
				req.Query.Filters = []sources.Filter{{
					Criteria:  parent.String(),
					Condition: sources.ConditionEquals,
					Value:     value,
				}}
			}
		}
		return req, true

	case schema.OptionsRepository:
		repoField := spec.RepositoryField
		if repoField == "" {
			repoField = id
		}
		parent, ok := spec.Parent()
		if !ok {
			return Request{Kind: RequestRepository, FormID: sourceID(spec.RepositoryID), Field: repoField}, true
		}
		value, set := parentValue(vals, parent)
		if !set && !unfiltered {
			return Request{Kind: RequestRepositoryFiltered, FormID: sourceID(spec.RepositoryID), Field: repoField}, false
		}
		req := Request{
			Kind:   RequestRepositoryFiltered,
			FormID: sourceID(spec.RepositoryID),
			Field:  repoField,
			Query:  sources.ColumnQuery{Column: repoField, Filters: []sources.Filter{}},
		}
		if set {
			req.Query.Filters = append(req.Query.Filters, sources.Filter{
				Criteria:  parent.String(),
				Condition: sources.ConditionEquals,
				Value:     value,
				FieldID:   parent.String(),
			})
		}
		return req, true

	case schema.OptionsPredefined:
		if spec.PredefinedTable == PredefinedUsers {
			return Request{
				Kind:     RequestPredefined,
				Criteria: sources.Criteria{Criteria: "userType", Value: "Normal"},
			}, true
		}
	}

	return Request{Kind: RequestStatic, Static: append([]string{}, spec.CustomOptions...)}, true
}

func parentValue(vals values.Map, parent schema.FieldID) (string, bool) {
	v, ok := vals[parent]
	if !ok || values.IsEmpty(v) {
		return "", false
	}
	return values.Text(v), true
}

func sourceID(id schema.SourceID) string {
	if id.Empty() {
		return "0"
	}
	return id.String()
}
