// Package sources declares the external collaborators the form engine asks for
// option lists, address suggestions and saved submissions. Hosts supply the
// implementations; see sources/stub and sources/sqlsource for two of them.
package sources

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("sources: not found")
	// ErrUnavailable is returned when a Set has no collaborator for a call.
	ErrUnavailable = errors.New("sources: collaborator not configured")
)

// ConditionEquals is the only filter condition the engine issues.
const ConditionEquals = "IS_EQUALS_TO"

// Filter narrows a column query to rows whose Criteria column equals Value.
type Filter struct {
	Criteria  string `json:"criteria"`
	Condition string `json:"condition"`
	Value     string `json:"value"`
	DataType  string `json:"dataType"`
	FieldID   string `json:"fieldId,omitempty"`
}

// ColumnQuery asks for the distinct values of one column.
type ColumnQuery struct {
	Column   string   `json:"column"`
	Keyword  string   `json:"keyword"`
	RowFrom  int      `json:"rowFrom"`
	RowCount int      `json:"rowCount"`
	Filters  []Filter `json:"filters,omitempty"`
}

// FilterValue returns the value of the first filter, or "".
func (q ColumnQuery) FilterValue() string {
	if len(q.Filters) == 0 {
		return ""
	}
	return q.Filters[0].Value
}

// Criteria selects entries from a predefined list.
type Criteria struct {
	Criteria string `json:"criteria"`
	Value    string `json:"value"`
}

// AddressQuery is an address-suggestion request.
type AddressQuery struct {
	SourceID       string `json:"sourceId"`
	Query          string `json:"query"`
	Country        string `json:"country,omitempty"`
	MaxSuggestions int    `json:"maxSuggestions,omitempty"`
}

// AddressItem is one suggestion. Raw carries the provider record as returned.
type AddressItem struct {
	ID          string         `json:"id"`
	Text        string         `json:"text"`
	Description string         `json:"description"`
	Raw         map[string]any `json:"raw,omitempty"`
}

// AddressResult wraps the suggestions of one query.
type AddressResult struct {
	Items []AddressItem `json:"items"`
}

// SubmissionRef addresses a saved submission of a workflow process.
type SubmissionRef struct {
	WorkflowID    string `json:"workflowId"`
	ProcessID     string `json:"processId"`
	TransactionID string `json:"transactionId"`
}

// Submission is a previously saved form state.
type Submission struct {
	ActivityID string         `json:"activityId"`
	RaisedBy   string         `json:"raisedBy"`
	Fields     map[string]any `json:"fields"`
}

// ColumnSource serves EXISTING and MASTER option lists.
type ColumnSource interface {
	ColumnOptions(ctx context.Context, formID string, q ColumnQuery) ([]string, error)
}

// RepositorySource serves REPOSITORY option lists.
type RepositorySource interface {
	RepositoryOptions(ctx context.Context, field, repositoryID string) ([]string, error)
	RepositoryOptionsFiltered(ctx context.Context, repositoryID string, q ColumnQuery) ([]string, error)
}

// PredefinedSource serves PREDEFINED option lists.
type PredefinedSource interface {
	PredefinedList(ctx context.Context, c Criteria) ([]string, error)
}

// AddressSource serves lookup suggestions.
type AddressSource interface {
	AddressSuggestions(ctx context.Context, q AddressQuery) (AddressResult, error)
}

// SubmissionSource loads saved submissions.
type SubmissionSource interface {
	SavedSubmission(ctx context.Context, ref SubmissionRef) (Submission, error)
}

// Set bundles the collaborators. Nil members answer with ErrUnavailable.
type Set struct {
	Columns      ColumnSource
	Repositories RepositorySource
	Predefined   PredefinedSource
	Addresses    AddressSource
	Submissions  SubmissionSource
}

// ColumnOptions implements ColumnSource.
func (s Set) ColumnOptions(ctx context.Context, formID string, q ColumnQuery) ([]string, error) {
	if s.Columns == nil {
		return nil, unavailable("column options")
	}
	return s.Columns.ColumnOptions(ctx, formID, q)
}

// RepositoryOptions implements RepositorySource.
func (s Set) RepositoryOptions(ctx context.Context, field, repositoryID string) ([]string, error) {
	if s.Repositories == nil {
		return nil, unavailable("repository options")
	}
	return s.Repositories.RepositoryOptions(ctx, field, repositoryID)
}

// RepositoryOptionsFiltered implements RepositorySource.
func (s Set) RepositoryOptionsFiltered(ctx context.Context, repositoryID string, q ColumnQuery) ([]string, error) {
	if s.Repositories == nil {
		return nil, unavailable("repository options")
	}
	return s.Repositories.RepositoryOptionsFiltered(ctx, repositoryID, q)
}

// PredefinedList implements PredefinedSource.
func (s Set) PredefinedList(ctx context.Context, c Criteria) ([]string, error) {
	if s.Predefined == nil {
		return nil, unavailable("predefined list")
	}
	return s.Predefined.PredefinedList(ctx, c)
}

// AddressSuggestions implements AddressSource.
func (s Set) AddressSuggestions(ctx context.Context, q AddressQuery) (AddressResult, error) {
	if s.Addresses == nil {
		return AddressResult{}, unavailable("address suggestions")
	}
	return s.Addresses.AddressSuggestions(ctx, q)
}

// SavedSubmission implements SubmissionSource.
func (s Set) SavedSubmission(ctx context.Context, ref SubmissionRef) (Submission, error) {
	if s.Submissions == nil {
		return Submission{}, unavailable("saved submission")
	}
	return s.Submissions.SavedSubmission(ctx, ref)
}

func unavailable(what string) error {
	return fmt.Errorf("sources: %s: %w", what, ErrUnavailable)
}
