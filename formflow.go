// Package formflow drives multi-step application forms described by a JSON or
// YAML schema: conditional visibility and mandatoriness, cascading option
// lists, defaults, hydration from saved submissions and lookup fan-out.
package formflow

import (
	"context"

	"github.com/goliatone/go-formflow/pkg/orchestrator"
	"github.com/goliatone/go-formflow/pkg/renderers/tui"
	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/summary"
)

// Document aliases schema.Document for callers that only need the facade.
type Document = schema.Document

// Orchestrator aliases the session type from the orchestrator package.
type Orchestrator = orchestrator.Orchestrator

// Option aliases orchestrator.Option.
type Option = orchestrator.Option

// LoadDocument reads a JSON or YAML schema from path.
func LoadDocument(path string) (Document, error) {
	return schema.LoadFile(path)
}

// ParseDocument decodes a JSON or YAML schema.
func ParseDocument(data []byte) (Document, error) {
	return schema.Parse(data)
}

// NewOrchestrator starts a form session over doc.
func NewOrchestrator(doc Document, options ...Option) *Orchestrator {
	return orchestrator.New(doc, options...)
}

// RunTerminal walks the session in the terminal and returns the serialized
// answers.
func RunTerminal(ctx context.Context, o *Orchestrator, options ...tui.Option) ([]byte, error) {
	return tui.New(options...).Run(ctx, o)
}

// Summary renders the visible, answered fields of o as plain text.
func Summary(o *Orchestrator) (string, error) {
	return summary.Render(o)
}
