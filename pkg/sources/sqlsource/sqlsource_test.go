package sqlsource_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-formflow/pkg/sources"
	"github.com/goliatone/go-formflow/pkg/sources/sqlsource"
)

const seedYAML = `
forms:
  "12":
    - {"143150": Ontario, "143151": Toronto}
    - {"143150": Ontario, "143151": Ottawa}
    - {"143150": Quebec, "143151": Montreal}
    - {"143150": Ontario, "143151": Toronto}
    - {"143150": Ontario, "143151": ""}
repositories:
  "7":
    - {"Branch": Downtown, "143151": Toronto}
    - {"Branch": Midtown, "143151": Toronto}
    - {"Branch": Old Port, "143151": Montreal}
users:
  - {name: Alex Johnson, email: alex@example.com}
  - {name: Taylor Smith, email: taylor@example.com}
  - {name: Robin Admin, userType: Admin}
addresses:
  - {id: a1, text: 1 King St W, description: "Toronto, ON", city: Toronto, province: Ontario, postalCode: M5H 1A1}
  - {id: a2, text: 100 King St E, city: Toronto, province: Ontario, postalCode: M5C 1G6}
  - {id: a3, text: 5 Queen St, city: Ottawa, province: Ontario, postalCode: K1P 1J9}
submissions:
  - workflowId: wf-1
    processId: proc-1
    activityId: act-2
    raisedBy: main@example.com
    fields:
      "143106": Ada Lovelace
      "143097": "Yes"
`

func newStore(t *testing.T) *sqlsource.Store {
	t.Helper()
	ctx := context.Background()
	store, err := sqlsource.Open(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	require.NoError(t, store.LoadSeed(ctx, strings.NewReader(seedYAML)))
	return store
}

func TestColumnOptions(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newStore(t)

	opts, err := store.ColumnOptions(ctx, "12", sources.ColumnQuery{Column: "143151"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Toronto", "Ottawa", "Montreal"}, opts, "distinct, first-seen order, blanks dropped")

	opts, err = store.ColumnOptions(ctx, "12", sources.ColumnQuery{
		Column:  "143151",
		Filters: []sources.Filter{{Criteria: "143150", Condition: sources.ConditionEquals, Value: "Ontario"}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Toronto", "Ottawa"}, opts)

	opts, err = store.ColumnOptions(ctx, "12", sources.ColumnQuery{Column: "143151", Keyword: "to", RowFrom: 0, RowCount: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"Toronto"}, opts)

	opts, err = store.ColumnOptions(ctx, "99", sources.ColumnQuery{Column: "143151"})
	require.NoError(t, err)
	assert.Empty(t, opts)
	assert.NotNil(t, opts)

	_, err = store.ColumnOptions(ctx, "12", sources.ColumnQuery{
		Column:  "143151",
		Filters: []sources.Filter{{Criteria: "143150", Condition: "IS_GREATER_THAN", Value: "A"}},
	})
	assert.Error(t, err)
}

func TestRepositoryOptions(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newStore(t)

	opts, err := store.RepositoryOptions(ctx, "Branch", "7")
	require.NoError(t, err)
	assert.Equal(t, []string{"Downtown", "Midtown", "Old Port"}, opts)

	opts, err = store.RepositoryOptionsFiltered(ctx, "7", sources.ColumnQuery{
		Column:  "Branch",
		Filters: []sources.Filter{{Criteria: "143151", Condition: sources.ConditionEquals, Value: "Montreal"}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Old Port"}, opts)
}

func TestPredefinedList(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newStore(t)

	users, err := store.PredefinedList(ctx, sources.Criteria{Criteria: "userType", Value: "Normal"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Alex Johnson", "Taylor Smith"}, users)

	users, err = store.PredefinedList(ctx, sources.Criteria{})
	require.NoError(t, err)
	assert.Len(t, users, 3)

	_, err = store.PredefinedList(ctx, sources.Criteria{Criteria: "1=1; DROP TABLE users"})
	assert.Error(t, err)
}

func TestAddressSuggestions(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newStore(t)

	res, err := store.AddressSuggestions(ctx, sources.AddressQuery{Query: "king st"})
	require.NoError(t, err)
	require.Len(t, res.Items, 2)
	assert.Equal(t, "1 King St W", res.Items[0].Text)
	assert.Equal(t, "Toronto", res.Items[0].Raw["City"])
	assert.Equal(t, "M5H 1A1", res.Items[0].Raw["PostalCode"])

	res, err = store.AddressSuggestions(ctx, sources.AddressQuery{Query: "K1P"})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "a3", res.Items[0].ID)

	res, err = store.AddressSuggestions(ctx, sources.AddressQuery{Query: "king", MaxSuggestions: 1})
	require.NoError(t, err)
	assert.Len(t, res.Items, 1)

	res, err = store.AddressSuggestions(ctx, sources.AddressQuery{Query: "100%"})
	require.NoError(t, err)
	assert.Empty(t, res.Items, "wildcards in the query are literal")

	res, err = store.AddressSuggestions(ctx, sources.AddressQuery{Query: "  "})
	require.NoError(t, err)
	assert.Empty(t, res.Items)
}

func TestSavedSubmission(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newStore(t)

	sub, err := store.SavedSubmission(ctx, sources.SubmissionRef{WorkflowID: "wf-1", ProcessID: "proc-1"})
	require.NoError(t, err)
	assert.Equal(t, "act-2", sub.ActivityID)
	assert.Equal(t, "main@example.com", sub.RaisedBy)
	assert.Equal(t, "Ada Lovelace", sub.Fields["143106"])

	sub, err = store.SavedSubmission(ctx, sources.SubmissionRef{ProcessID: "proc-1"})
	require.NoError(t, err)
	assert.Equal(t, "act-2", sub.ActivityID)

	_, err = store.SavedSubmission(ctx, sources.SubmissionRef{WorkflowID: "wf-2", ProcessID: "proc-1"})
	assert.True(t, errors.Is(err, sources.ErrNotFound), "got %v", err)

	ref := sources.SubmissionRef{WorkflowID: "wf-1", ProcessID: "proc-1"}
	require.NoError(t, store.PutSubmission(ctx, ref, sources.Submission{ActivityID: "act-3"}))
	sub, err = store.SavedSubmission(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, "act-3", sub.ActivityID)
	assert.Empty(t, sub.Fields)
}

func TestSet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	set := newStore(t).Set()

	opts, err := set.ColumnOptions(ctx, "12", sources.ColumnQuery{Column: "143150"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Ontario", "Quebec"}, opts)
}

func TestPutRow(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newStore(t)

	_, err := store.PutRow(ctx, "12", map[string]string{"143150": "Manitoba"})
	require.NoError(t, err)
	_, err = store.PutRepositoryRow(ctx, "12", map[string]string{"143150": "Yukon"})
	require.NoError(t, err)

	opts, err := store.ColumnOptions(ctx, "12", sources.ColumnQuery{Column: "143150"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Ontario", "Quebec", "Manitoba"}, opts, "repository rows stay separate")
}

func TestOpen_RequiresDSN(t *testing.T) {
	t.Parallel()

	_, err := sqlsource.Open(context.Background(), " ")
	assert.Error(t, err)
}
