package options_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formflow/pkg/options"
	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/sources"
	"github.com/goliatone/go-formflow/pkg/sources/stub"
	"github.com/goliatone/go-formflow/pkg/testsupport"
	"github.com/goliatone/go-formflow/pkg/values"
)

func runNow(fn func()) { fn() }

type recordingSource struct {
	mu       sync.Mutex
	calls    []string
	queries  []sources.ColumnQuery
	fail     bool
	delegate *stub.Source
}

func (r *recordingSource) record(name string, q sources.ColumnQuery) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, name)
	r.queries = append(r.queries, q)
}

func (r *recordingSource) ColumnOptions(ctx context.Context, formID string, q sources.ColumnQuery) ([]string, error) {
	r.record("column:"+formID, q)
	if r.fail {
		return nil, errors.New("boom")
	}
	return r.delegate.ColumnOptions(ctx, formID, q)
}

func (r *recordingSource) RepositoryOptions(ctx context.Context, field, repo string) ([]string, error) {
	r.record("repository:"+repo+":"+field, sources.ColumnQuery{})
	return r.delegate.RepositoryOptions(ctx, field, repo)
}

func (r *recordingSource) RepositoryOptionsFiltered(ctx context.Context, repo string, q sources.ColumnQuery) ([]string, error) {
	r.record("repository-filtered:"+repo, q)
	return r.delegate.RepositoryOptionsFiltered(ctx, repo, q)
}

func (r *recordingSource) PredefinedList(ctx context.Context, c sources.Criteria) ([]string, error) {
	r.record("predefined:"+c.Criteria+"="+c.Value, sources.ColumnQuery{})
	return r.delegate.PredefinedList(ctx, c)
}

func newRecording() *recordingSource {
	return &recordingSource{delegate: stub.New()}
}

func (r *recordingSource) set() sources.Set {
	return sources.Set{Columns: r, Repositories: r, Predefined: r}
}

func field(t *testing.T, idx *schema.Index, id schema.FieldID) *schema.Field {
	t.Helper()
	f, ok := idx.Field(id)
	if !ok {
		t.Fatalf("field %s missing", id)
	}
	return f
}

func TestKey(t *testing.T) {
	t.Parallel()

	idx := testsupport.ApplicationIndex(t)
	vals := values.Map{testsupport.FieldProvince: "Ontario", testsupport.FieldCity: "Toronto"}

	cases := map[schema.FieldID]string{
		testsupport.FieldProvince:        "143150::static",
		testsupport.FieldCity:            "143151::repoParent::143150::Ontario",
		testsupport.FieldBranch:          "143152::masterParent::143151::Toronto",
		testsupport.FieldAdvisor:         "143153::static",
		testsupport.FieldApplicationType: "143091::static",
	}
	for id, want := range cases {
		if got := options.Key(field(t, idx, id), vals); got != want {
			t.Fatalf("Key(%s) = %q, want %q", id, got, want)
		}
	}
	if got := options.Key(field(t, idx, testsupport.FieldCity), values.Map{}); got != "143151::repoParent::143150::" {
		t.Fatalf("empty parent key = %q", got)
	}
}

func TestEnsureLoaded_SourceKinds(t *testing.T) {
	t.Parallel()

	idx := testsupport.ApplicationIndex(t)
	rec := newRecording()
	loader := options.NewLoader(nil, rec.set(), options.WithDispatcher(runNow))
	ctx := context.Background()
	vals := values.Map{testsupport.FieldProvince: "Ontario", testsupport.FieldCity: "Toronto"}

	for _, id := range []schema.FieldID{
		testsupport.FieldProvince, testsupport.FieldCity, testsupport.FieldBranch,
		testsupport.FieldAdvisor, testsupport.FieldProduct, testsupport.FieldApplicationType,
	} {
		loader.EnsureLoaded(ctx, field(t, idx, id), vals)
	}

	wantCalls := []string{
		"repository:7:Province",
		"repository-filtered:7",
		"column:12",
		"predefined:userType=Normal",
		"column:5",
	}
	if diff := cmp.Diff(wantCalls, rec.calls); diff != "" {
		t.Fatalf("calls (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]sources.Filter{{
		Criteria: "143150", Condition: sources.ConditionEquals, Value: "Ontario", FieldID: "143150",
	}}, rec.queries[1].Filters); diff != "" {
		t.Fatalf("repository filter (-want +got):\n%s", diff)
	}
	if rec.queries[2].Column != "Branch" || rec.queries[2].FilterValue() != "Toronto" {
		t.Fatalf("master query %+v", rec.queries[2])
	}
	if rec.queries[4].Column != testsupport.FieldProduct.String() {
		t.Fatalf("existing query should use the field id as column, got %q", rec.queries[4].Column)
	}

	city := loader.Entry(field(t, idx, testsupport.FieldCity), vals)
	if city.Status != options.StatusReady {
		t.Fatalf("city status %s", city.Status)
	}
	if diff := cmp.Diff([]string{"City (Ontario) 1", "City (Ontario) 2"}, city.Options); diff != "" {
		t.Fatalf("city options (-want +got):\n%s", diff)
	}
	static := loader.Entry(field(t, idx, testsupport.FieldApplicationType), vals)
	if diff := cmp.Diff([]string{"PURCHASE", "REFINANCE", "RENEWAL"}, static.Options); diff != "" {
		t.Fatalf("static options (-want +got):\n%s", diff)
	}
}

func TestEnsureLoaded_NoRefetchWhenReady(t *testing.T) {
	t.Parallel()

	idx := testsupport.ApplicationIndex(t)
	rec := newRecording()
	loader := options.NewLoader(nil, rec.set(), options.WithDispatcher(runNow))
	f := field(t, idx, testsupport.FieldProduct)

	loader.EnsureLoaded(context.Background(), f, values.Map{})
	loader.EnsureLoaded(context.Background(), f, values.Map{})
	if len(rec.calls) != 1 {
		t.Fatalf("ready entry must not refetch, calls %v", rec.calls)
	}

	loader.Cache().InvalidateField(f.ID)
	loader.EnsureLoaded(context.Background(), f, values.Map{})
	if len(rec.calls) != 2 {
		t.Fatalf("invalidated entry should refetch, calls %v", rec.calls)
	}
}

func TestEnsureLoaded_ParentGate(t *testing.T) {
	t.Parallel()

	idx := testsupport.ApplicationIndex(t)
	city := field(t, idx, testsupport.FieldCity)

	rec := newRecording()
	loader := options.NewLoader(nil, rec.set(), options.WithDispatcher(runNow))
	key := loader.EnsureLoaded(context.Background(), city, values.Map{})
	if len(rec.calls) != 0 {
		t.Fatalf("no request expected while parent is empty, got %v", rec.calls)
	}
	if got := loader.Cache().Get(key).Status; got != options.StatusIdle {
		t.Fatalf("gated entry should stay idle, got %s", got)
	}

	rec = newRecording()
	loader = options.NewLoader(nil, rec.set(), options.WithDispatcher(runNow), options.WithUnfilteredParentFetch())
	key = loader.EnsureLoaded(context.Background(), city, values.Map{})
	if diff := cmp.Diff([]string{"repository-filtered:7"}, rec.calls); diff != "" {
		t.Fatalf("unfiltered fetch (-want +got):\n%s", diff)
	}
	if len(rec.queries[0].Filters) != 0 {
		t.Fatalf("filter must be omitted, got %+v", rec.queries[0].Filters)
	}
	entry := loader.Cache().Get(key)
	if entry.Status != options.StatusReady || len(entry.Options) != 0 {
		t.Fatalf("unexpected entry %+v", entry)
	}
}

func TestEnsureLoaded_FailureSettlesError(t *testing.T) {
	t.Parallel()

	idx := testsupport.ApplicationIndex(t)
	rec := newRecording()
	rec.fail = true
	loader := options.NewLoader(nil, rec.set(), options.WithDispatcher(runNow))

	key := loader.EnsureLoaded(context.Background(), field(t, idx, testsupport.FieldProduct), values.Map{})
	entry := loader.Cache().Get(key)
	if entry.Status != options.StatusError || entry.Err != options.LoadError || len(entry.Options) != 0 {
		t.Fatalf("unexpected entry %+v", entry)
	}

	missing := options.NewLoader(nil, sources.Set{}, options.WithDispatcher(runNow))
	key = missing.EnsureLoaded(context.Background(), field(t, idx, testsupport.FieldAdvisor), values.Map{})
	if got := missing.Cache().Get(key).Status; got != options.StatusError {
		t.Fatalf("missing collaborator should settle error, got %s", got)
	}
}

func TestEnsureLoaded_AsyncCompletion(t *testing.T) {
	t.Parallel()

	idx := testsupport.ApplicationIndex(t)
	var pending []func()
	loader := options.NewLoader(nil, newRecording().set(), options.WithDispatcher(func(fn func()) {
		pending = append(pending, fn)
	}))
	f := field(t, idx, testsupport.FieldProduct)

	key := loader.EnsureLoaded(context.Background(), f, values.Map{})
	if got := loader.Cache().Get(key).Status; got != options.StatusLoading {
		t.Fatalf("status before completion %s", got)
	}
	loader.EnsureLoaded(context.Background(), f, values.Map{})
	if len(pending) != 1 {
		t.Fatalf("loading entry must not dispatch again")
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		pending[0]()
	}()
	wg.Wait()
	if got := loader.Cache().Get(key).Status; got != options.StatusReady {
		t.Fatalf("status after completion %s", got)
	}
}

func TestEnsureLoaded_StaleCompletionDropped(t *testing.T) {
	t.Parallel()

	idx := testsupport.ApplicationIndex(t)
	var pending []func()
	loader := options.NewLoader(nil, newRecording().set(), options.WithDispatcher(func(fn func()) {
		pending = append(pending, fn)
	}))
	f := field(t, idx, testsupport.FieldProduct)

	key := loader.EnsureLoaded(context.Background(), f, values.Map{})
	loader.Cache().InvalidateField(f.ID)
	pending[0]()
	if loader.Cache().Len() != 0 {
		t.Fatalf("completion for invalidated key should be dropped, have %v", loader.Cache().Keys())
	}
	if got := loader.Cache().Get(key).Status; got != options.StatusIdle {
		t.Fatalf("status %s", got)
	}
}

func TestCache_InvalidateFieldPrefix(t *testing.T) {
	t.Parallel()

	idx := testsupport.ApplicationIndex(t)
	loader := options.NewLoader(nil, newRecording().set(), options.WithDispatcher(runNow))
	city := field(t, idx, testsupport.FieldCity)
	product := field(t, idx, testsupport.FieldProduct)

	loader.EnsureLoaded(context.Background(), city, values.Map{testsupport.FieldProvince: "A"})
	loader.EnsureLoaded(context.Background(), city, values.Map{testsupport.FieldProvince: "B"})
	loader.EnsureLoaded(context.Background(), product, values.Map{})

	if n := loader.Cache().InvalidateField(city.ID); n != 2 {
		t.Fatalf("removed %d entries, want 2", n)
	}
	if diff := cmp.Diff([]string{"143154::static"}, loader.Cache().Keys()); diff != "" {
		t.Fatalf("remaining keys (-want +got):\n%s", diff)
	}
	if n := loader.Cache().InvalidateField("1431"); n != 0 {
		t.Fatalf("prefix must match whole ids, removed %d", n)
	}
}
