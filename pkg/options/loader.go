package options

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/sources"
	"github.com/goliatone/go-formflow/pkg/values"
)

// Dispatcher runs a fetch. The default starts a goroutine per fetch.
type Dispatcher func(fn func())

// Option configures a Loader.
type Option func(*Loader)

// WithDispatcher replaces the goroutine dispatcher, typically with a
// synchronous one in tests.
func WithDispatcher(d Dispatcher) Option {
	return func(l *Loader) {
		if d != nil {
			l.dispatch = d
		}
	}
}

// WithUnfilteredParentFetch makes parent-filtered lists load while their
// parent is still empty, omitting the filter instead of waiting.
func WithUnfilteredParentFetch() Option {
	return func(l *Loader) {
		l.unfiltered = true
	}
}

// WithLogger sets the logger used for fetch outcomes.
func WithLogger(logger *zap.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// Loader fills a Cache from the configured collaborators.
type Loader struct {
	cache      *Cache
	sources    sources.Set
	dispatch   Dispatcher
	unfiltered bool
	logger     *zap.Logger
}

// NewLoader builds a Loader over cache. A nil cache gets a fresh one.
func NewLoader(cache *Cache, src sources.Set, opts ...Option) *Loader {
	if cache == nil {
		cache = NewCache()
	}
	l := &Loader{
		cache:    cache,
		sources:  src,
		dispatch: func(fn func()) { go fn() },
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	return l
}

// Cache exposes the underlying cache.
func (l *Loader) Cache() *Cache {
	return l.cache
}

// EnsureLoaded starts loading field's option list for vals unless the entry
// is already loading or ready. It never blocks on a collaborator and returns
// the key the outcome will be cached under. Lists waiting on an empty parent
// stay idle.
func (l *Loader) EnsureLoaded(ctx context.Context, field *schema.Field, vals values.Map) string {
	spec, ok := field.Options()
	if !ok {
		return ""
	}
	key := Key(field, vals)
	req, ready := BuildRequest(field, vals, l.unfiltered)
	if !ready {
		l.logger.Debug("options: waiting on parent",
			zap.String("field", field.ID.String()),
			zap.String("source", string(spec.Source())),
		)
		return key
	}
	if !l.cache.begin(key) {
		return key
	}
	if req.Kind == RequestStatic {
		l.cache.settle(key, req.Static, nil)
		return key
	}
	l.dispatch(func() {
		opts, err := l.fetch(ctx, req)
		if err != nil {
			l.logger.Warn("options: fetch failed",
				zap.String("field", field.ID.String()),
				zap.String("key", key),
				zap.Error(err),
			)
		}
		l.cache.settle(key, opts, err)
	})
	return key
}

// Entry returns the cached entry for field under vals.
func (l *Loader) Entry(field *schema.Field, vals values.Map) Entry {
	return l.cache.Get(Key(field, vals))
}

func (l *Loader) fetch(ctx context.Context, req Request) ([]string, error) {
	var (
		opts []string
		err  error
	)
	switch req.Kind {
	case RequestColumn:
		opts, err = l.sources.ColumnOptions(ctx, req.FormID, req.Query)
	case RequestRepository:
		opts, err = l.sources.RepositoryOptions(ctx, req.Field, req.FormID)
	case RequestRepositoryFiltered:
		opts, err = l.sources.RepositoryOptionsFiltered(ctx, req.FormID, req.Query)
	case RequestPredefined:
		opts, err = l.sources.PredefinedList(ctx, req.Criteria)
	default:
		return req.Static, nil
	}
	if err != nil {
		return nil, fmt.Errorf("options: fetch %s: %w", req.Kind, err)
	}
	return opts, nil
}
