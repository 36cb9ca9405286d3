package stub_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-formflow/pkg/sources"
	"github.com/goliatone/go-formflow/pkg/sources/stub"
)

func TestStubOptions(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	src := stub.New()

	opts, err := src.ColumnOptions(ctx, "12", sources.ColumnQuery{Column: "Branch"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Branch Option A", "Branch Option B", "Branch Option C"}, opts)

	opts, err = src.RepositoryOptions(ctx, "Province", "7")
	require.NoError(t, err)
	assert.Equal(t, []string{"Province Repo A", "Province Repo B"}, opts)

	opts, err = src.RepositoryOptionsFiltered(ctx, "7", sources.ColumnQuery{Column: "City"})
	require.NoError(t, err)
	assert.Empty(t, opts)

	opts, err = src.RepositoryOptionsFiltered(ctx, "7", sources.ColumnQuery{
		Column:  "City",
		Filters: []sources.Filter{{Criteria: "143150", Condition: sources.ConditionEquals, Value: "Ontario"}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"City (Ontario) 1", "City (Ontario) 2"}, opts)

	users, err := src.PredefinedList(ctx, sources.Criteria{Criteria: "userType", Value: "Normal"})
	require.NoError(t, err)
	assert.Equal(t, stub.DefaultUsers, users)
}

func TestStubAddressSuggestions(t *testing.T) {
	t.Parallel()

	src := stub.New()
	res, err := src.AddressSuggestions(context.Background(), sources.AddressQuery{Query: "  "})
	require.NoError(t, err)
	assert.Empty(t, res.Items)

	res, err = src.AddressSuggestions(context.Background(), sources.AddressQuery{Query: "main"})
	require.NoError(t, err)
	require.Len(t, res.Items, 4)
	assert.Equal(t, "main-1", res.Items[0].ID)
	assert.Equal(t, "MAIN 100", res.Items[0].Text)
	assert.Equal(t, "Toronto", res.Items[0].Raw["City"])

	res, err = src.AddressSuggestions(context.Background(), sources.AddressQuery{Query: "a very long street name"})
	require.NoError(t, err)
	assert.Len(t, res.Items, 10)
}

func TestStubSubmissions(t *testing.T) {
	t.Parallel()

	src := &stub.Source{Submissions: map[string]sources.Submission{
		"p1": {ActivityID: "a1", Fields: map[string]any{"143091": "PURCHASE"}},
	}}
	sub, err := src.SavedSubmission(context.Background(), sources.SubmissionRef{ProcessID: "p1"})
	require.NoError(t, err)
	assert.Equal(t, "a1", sub.ActivityID)

	_, err = src.SavedSubmission(context.Background(), sources.SubmissionRef{ProcessID: "missing"})
	assert.True(t, errors.Is(err, sources.ErrNotFound))
}

func TestSetUnavailable(t *testing.T) {
	t.Parallel()

	var set sources.Set
	_, err := set.ColumnOptions(context.Background(), "1", sources.ColumnQuery{})
	assert.ErrorIs(t, err, sources.ErrUnavailable)
	_, err = set.AddressSuggestions(context.Background(), sources.AddressQuery{})
	assert.ErrorIs(t, err, sources.ErrUnavailable)

	set = stub.New().Set()
	_, err = set.PredefinedList(context.Background(), sources.Criteria{})
	assert.NoError(t, err)
}
