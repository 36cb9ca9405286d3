// Package defaults resolves the initial value of fields from their configured
// literal or named default.
package defaults

import (
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/values"
	"github.com/goliatone/go-formflow/pkg/workflow"
)

// Layouts for the date and time directives.
const (
	DateLayout     = "2006-01-02"
	TimeLayout     = "03:04 pm"
	DateTimeLayout = DateLayout + " " + TimeLayout
)

// AutoPrefix prefixes generated tokens.
const AutoPrefix = "AUTO_"

// Option configures a Resolver.
type Option func(*Resolver)

// WithIdentity sets the identity used by USER_NAME and USER_EMAIL.
func WithIdentity(id workflow.Identity) Option {
	return func(r *Resolver) {
		r.identity = id
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) {
		if now != nil {
			r.now = now
		}
	}
}

// WithGenerator overrides the token generator used by AUTO_GENERATE.
func WithGenerator(gen func() string) Option {
	return func(r *Resolver) {
		if gen != nil {
			r.generate = gen
		}
	}
}

// Resolver computes default values. It holds no mutable state after
// construction.
type Resolver struct {
	identity workflow.Identity
	now      func() time.Time
	generate func() string
}

// NewResolver returns a Resolver using the wall clock and random UUIDs.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		now:      time.Now,
		generate: uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Identity returns the identity the resolver reads.
func (r *Resolver) Identity() workflow.Identity {
	return r.identity
}

// WithIdentity returns a copy of r reading id.
func (r *Resolver) WithIdentity(id workflow.Identity) *Resolver {
	next := *r
	next.identity = id
	return &next
}

// Resolve returns the default for field. The boolean is false when no default
// applies and the field should stay unset.
//
// A configured literal wins, except on phone and currency fields which start
// as present but empty. Then come the identity, date/time and generator
// directives in that order.
func (r *Resolver) Resolve(field *schema.Field) (any, bool) {
	def, ok := field.Defaults()
	if !ok {
		return nil, false
	}
	if def.HasLiteral() {
		if field.Type.Compound() {
			return "", true
		}
		return def.Literal, true
	}

	switch def.Directive {
	case schema.DirectiveUserName:
		name := r.identity.FullName()
		return name, name != ""
	case schema.DirectiveUserEmail:
		return r.identity.Email, r.identity.Email != ""
	case schema.DirectiveCurrentDate:
		return r.now().Format(DateLayout), true
	case schema.DirectiveCurrentTime:
		return r.now().Format(TimeLayout), true
	case schema.DirectiveCurrentDateTime:
		return r.now().Format(DateTimeLayout), true
	case schema.DirectiveAutoGenerate:
		return AutoPrefix + r.generate(), true
	}
	return nil, false
}

// Seed resolves every top-level field of idx.
func (r *Resolver) Seed(idx *schema.Index) values.Map {
	out := values.New()
	for _, field := range idx.TopLevel() {
		if v, ok := r.Resolve(field); ok {
			out.Set(field.ID, v)
		}
	}
	return out
}
