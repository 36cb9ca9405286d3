// Package stub provides deterministic demo collaborators. They answer every
// request from the request itself, which keeps the wizard usable without a
// backend.
package stub

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-formflow/pkg/sources"
)

// Source implements every collaborator in package sources.
type Source struct {
	// Users is the predefined user list; DefaultUsers when nil.
	Users []string
	// Submissions keyed by process id.
	Submissions map[string]sources.Submission
}

// DefaultUsers is returned for PREDEFINED user lists.
var DefaultUsers = []string{"Demo User", "Alex Johnson", "Taylor Smith"}

// New returns a Source with the demo user list.
func New() *Source {
	return &Source{}
}

// Set wires the stub into every slot of a sources.Set.
func (s *Source) Set() sources.Set {
	return sources.Set{
		Columns:      s,
		Repositories: s,
		Predefined:   s,
		Addresses:    s,
		Submissions:  s,
	}
}

// ColumnOptions returns three options derived from the column name.
func (s *Source) ColumnOptions(_ context.Context, _ string, q sources.ColumnQuery) ([]string, error) {
	col := columnName(q.Column)
	return []string{col + " Option A", col + " Option B", col + " Option C"}, nil
}

// RepositoryOptions returns two options derived from the field name.
func (s *Source) RepositoryOptions(_ context.Context, field, _ string) ([]string, error) {
	return []string{field + " Repo A", field + " Repo B"}, nil
}

// RepositoryOptionsFiltered returns two options derived from the column and
// the parent filter value, or none without a filter.
func (s *Source) RepositoryOptionsFiltered(_ context.Context, _ string, q sources.ColumnQuery) ([]string, error) {
	filter := q.FilterValue()
	if filter == "" {
		return []string{}, nil
	}
	col := columnName(q.Column)
	return []string{
		fmt.Sprintf("%s (%s) 1", col, filter),
		fmt.Sprintf("%s (%s) 2", col, filter),
	}, nil
}

// PredefinedList returns the configured users.
func (s *Source) PredefinedList(_ context.Context, _ sources.Criteria) ([]string, error) {
	if s.Users != nil {
		return append([]string(nil), s.Users...), nil
	}
	return append([]string(nil), DefaultUsers...), nil
}

// AddressSuggestions fabricates between three and ten Toronto addresses for
// any non-blank query.
func (s *Source) AddressSuggestions(_ context.Context, q sources.AddressQuery) (sources.AddressResult, error) {
	term := strings.TrimSpace(q.Query)
	if term == "" {
		return sources.AddressResult{Items: []sources.AddressItem{}}, nil
	}
	n := min(10, max(3, len([]rune(term))))
	items := make([]sources.AddressItem, 0, n)
	for i := 0; i < n; i++ {
		postal := fmt.Sprintf("M%dM %dM%d", i, i, i)
		items = append(items, sources.AddressItem{
			ID:          fmt.Sprintf("%s-%d", term, i+1),
			Text:        fmt.Sprintf("%s %d", strings.ToUpper(term), 100+i),
			Description: "Toronto, Ontario, " + postal,
			Raw: map[string]any{
				"City":       "Toronto",
				"Province":   "Ontario",
				"PostalCode": postal,
			},
		})
	}
	return sources.AddressResult{Items: items}, nil
}

// SavedSubmission returns the submission stored for ref.ProcessID.
func (s *Source) SavedSubmission(_ context.Context, ref sources.SubmissionRef) (sources.Submission, error) {
	sub, ok := s.Submissions[ref.ProcessID]
	if !ok {
		return sources.Submission{}, fmt.Errorf("stub: submission %q: %w", ref.ProcessID, sources.ErrNotFound)
	}
	return sub, nil
}

func columnName(col string) string {
	if col == "" {
		return "column"
	}
	return col
}
