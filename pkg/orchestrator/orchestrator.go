package orchestrator

import (
	"errors"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-formflow/pkg/defaults"
	"github.com/goliatone/go-formflow/pkg/dependency"
	"github.com/goliatone/go-formflow/pkg/mandatory"
	"github.com/goliatone/go-formflow/pkg/options"
	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/sources"
	"github.com/goliatone/go-formflow/pkg/validation"
	"github.com/goliatone/go-formflow/pkg/values"
	"github.com/goliatone/go-formflow/pkg/visibility"
	"github.com/goliatone/go-formflow/pkg/workflow"
)

var (
	// ErrUnknownField is returned for ids the schema does not declare.
	ErrUnknownField = errors.New("orchestrator: unknown field")
	// ErrNotWritable is returned when a value targets a static field, or a
	// table column outside of a row.
	ErrNotWritable = errors.New("orchestrator: field does not accept values")
	// ErrNotTable is returned by row operations on non-TABLE fields.
	ErrNotTable = errors.New("orchestrator: field is not a table")
	// ErrRowOutOfRange is returned for row indexes outside the table value.
	ErrRowOutOfRange = errors.New("orchestrator: row out of range")
	// ErrPanelInvalid is returned by Next while the current panel has errors.
	ErrPanelInvalid = errors.New("orchestrator: panel has validation errors")
)

// Role values written to the role field after loading a submission.
const (
	RolePrimary     = "Primary"
	RoleCoapplicant = "Coapplicant"
)

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithBlocked sets the ids that are hidden regardless of rules.
func WithBlocked(ids ...schema.FieldID) Option {
	return func(o *Orchestrator) {
		o.blocked = visibility.NewBlocked(ids...)
	}
}

// WithSources injects the collaborators used for options, lookups and saved
// submissions.
func WithSources(set sources.Set) Option {
	return func(o *Orchestrator) {
		o.sources = set
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithDefaultsResolver injects the default-value resolver.
func WithDefaultsResolver(r *defaults.Resolver) Option {
	return func(o *Orchestrator) {
		o.resolver = r
	}
}

// WithOptionLoader injects the option-list loader. When omitted one is built
// over the configured sources.
func WithOptionLoader(l *options.Loader) Option {
	return func(o *Orchestrator) {
		o.loader = l
	}
}

// WithRoleField names the field that records whether the signed-in user
// raised the loaded submission.
func WithRoleField(id schema.FieldID) Option {
	return func(o *Orchestrator) {
		o.roleField = id
	}
}

// WithClock overrides time.Now for the default resolver.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

// WithIdentity sets the signed-in user for the default resolver and the role
// field.
func WithIdentity(id workflow.Identity) Option {
	return func(o *Orchestrator) {
		o.identity = id
	}
}

// WithWorkflowSession stores the raw workflow session blob. Its secure
// controls for the current activity become the blocked set.
func WithWorkflowSession(data []byte) Option {
	return func(o *Orchestrator) {
		o.session = append([]byte(nil), data...)
	}
}

// WithEvaluator replaces the rule-based visibility evaluator, typically to
// decorate it with host policy.
func WithEvaluator(e visibility.Evaluator) Option {
	return func(o *Orchestrator) {
		if e != nil {
			o.evaluator = e
		}
	}
}

// WithSubmissionTransformer registers a Transformer applied to saved
// submissions before hydration.
func WithSubmissionTransformer(t Transformer) Option {
	return func(o *Orchestrator) {
		o.transformer = t
	}
}

// Orchestrator drives one form session.
type Orchestrator struct {
	doc  schema.Document
	idx  *schema.Index
	deps *dependency.Map

	vals    values.Map
	vis     visibility.Map
	blocked visibility.Blocked
	errors  validation.Errors
	step    int

	evaluator   visibility.Evaluator
	sources     sources.Set
	loader      *options.Loader
	resolver    *defaults.Resolver
	transformer Transformer
	logger      *zap.Logger
	now         func() time.Time

	identity   workflow.Identity
	roleField  schema.FieldID
	session    []byte
	activityID string
}

// New flattens and indexes doc once and returns an orchestrator with an empty
// values store.
func New(doc schema.Document, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		doc:       doc,
		vals:      values.New(),
		errors:    validation.Errors{},
		evaluator: visibility.Default,
		logger:    zap.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(o)
	}

	o.idx = schema.Flatten(doc)
	o.deps = dependency.Build(o.idx)
	if o.resolver == nil {
		o.resolver = defaults.NewResolver(
			defaults.WithIdentity(o.identity),
			defaults.WithClock(o.now),
		)
	} else if !o.identity.Empty() {
		o.resolver = o.resolver.WithIdentity(o.identity)
	}
	o.identity = o.resolver.Identity()
	if o.loader == nil {
		o.loader = options.NewLoader(options.NewCache(), o.sources, options.WithLogger(o.logger))
	}
	if o.blocked == nil && o.session != nil {
		o.blocked = workflow.ParseSession(o.session, "").Blocked()
	}
	if o.blocked == nil {
		o.blocked = visibility.NewBlocked()
	}
	o.vis = o.evaluator.Evaluate(o.idx, o.vals, o.blocked)
	if visible := o.VisiblePanels(); len(visible) > 0 {
		o.step = visible[0]
	}
	return o
}

// Document returns the schema the orchestrator was built from.
func (o *Orchestrator) Document() schema.Document { return o.doc }

// Index returns the flattened schema.
func (o *Orchestrator) Index() *schema.Index { return o.idx }

// Dependencies returns the parent/child index.
func (o *Orchestrator) Dependencies() *dependency.Map { return o.deps }

// Field returns the schema field for id.
func (o *Orchestrator) Field(id schema.FieldID) (*schema.Field, bool) {
	return o.idx.Field(id)
}

// Value returns the stored value of id.
func (o *Orchestrator) Value(id schema.FieldID) (any, bool) {
	return o.vals.Get(id)
}

// Values returns a copy of the values store.
func (o *Orchestrator) Values() values.Map {
	return o.vals.Clone()
}

// Visibility returns the current visibility derivation.
func (o *Orchestrator) Visibility() visibility.Map {
	return o.vis
}

// Visible reports whether id is currently shown.
func (o *Orchestrator) Visible(id schema.FieldID) bool {
	return o.vis.Visible(id)
}

// IsRequired reports whether id currently requires a value.
func (o *Orchestrator) IsRequired(id schema.FieldID) bool {
	return mandatory.IsRequired(id, o.vals, o.idx, o.vis)
}

// Blocked returns the ids hidden regardless of rules.
func (o *Orchestrator) Blocked() []schema.FieldID {
	return o.blocked.IDs()
}

// Identity returns the signed-in user.
func (o *Orchestrator) Identity() workflow.Identity {
	return o.identity
}

// ActivityID returns the workflow activity of the loaded submission.
func (o *Orchestrator) ActivityID() string {
	return o.activityID
}

// OptionCache exposes the option-list cache.
func (o *Orchestrator) OptionCache() *options.Cache {
	return o.loader.Cache()
}

func sortIDs(ids []schema.FieldID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}

func idStrings(ids []schema.FieldID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
