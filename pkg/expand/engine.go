package expand

import (
	"context"
	"log/slog"
	"time"

	"github.com/getmockd/htmlgen/pkg/diag"
	"github.com/getmockd/htmlgen/pkg/directive"
	"github.com/getmockd/htmlgen/pkg/dom"
	"github.com/getmockd/htmlgen/pkg/formula"
	"github.com/getmockd/htmlgen/pkg/include"
	"github.com/getmockd/htmlgen/pkg/logging"
	"github.com/google/uuid"
)

// DefaultConcurrency bounds how many markers or iterations of one level are
// expanded at once.
const DefaultConcurrency = 8

// Config is the naming configuration of an engine: attribute prefix,
// template tag name and active scope.
type Config = directive.Config

// Engine expands template markers in a tree. An Engine is immutable after
// New and safe for concurrent use on different trees.
type Engine struct {
	schema      *directive.Schema
	include     include.Resolver
	sink        diag.Sink
	logger      *slog.Logger
	concurrency int
}

// Option configures an Engine.
type Option func(*Engine)

// WithIncludeResolver sets the resolver consulted for include directives.
func WithIncludeResolver(r include.Resolver) Option {
	return func(e *Engine) {
		e.include = r
	}
}

// WithSink sets the diagnostics sink. Defaults to diag.Default().
func WithSink(s diag.Sink) Option {
	return func(e *Engine) {
		e.sink = s
	}
}

// WithLogger sets the logger for run lifecycle messages.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithConcurrency bounds parallel expansion per level. Values below 1 are
// treated as 1.
func WithConcurrency(n int) Option {
	return func(e *Engine) {
		e.concurrency = max(n, 1)
	}
}

// New creates an engine for cfg. Unset Config fields take their defaults.
func New(cfg Config, opts ...Option) *Engine {
	e := &Engine{
		schema:      directive.Build(cfg),
		logger:      logging.Nop(),
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.sink == nil {
		e.sink = diag.Default()
	}
	return e
}

// Expand is a convenience wrapper around New(cfg, opts...).Expand.
func Expand(ctx context.Context, root dom.Node, data any, cfg Config, opts ...Option) error {
	return New(cfg, opts...).Expand(ctx, root, data)
}

// Config returns the normalized configuration.
func (e *Engine) Config() Config {
	return e.schema.Config
}

// Schema returns the attribute schema.
func (e *Engine) Schema() *directive.Schema {
	return e.schema
}

// Expand removes output previously generated for the active scope, then
// expands every top-level marker of the active scope in root against data.
// Generated nodes are inserted next to their markers; markers stay in place.
//
// Only fatal configuration errors and context cancellation are returned.
// Everything else is reported to the diagnostics sink.
func (e *Engine) Expand(ctx context.Context, root dom.Node, data any) error {
	if root == nil {
		return ErrNilRoot
	}

	r := &run{Engine: e, id: uuid.NewString()}
	r.formulas = formula.Resolver{Sink: e.sink, Run: r.id}

	start := time.Now()
	e.logger.Debug("expansion started", "run", r.id, "scope", e.schema.Config.Scope)

	stale := r.visible(root, e.schema.ClonedInScope)
	for _, n := range stale {
		n.Remove()
	}

	markers := r.visible(root, e.schema.Template)
	if err := r.expandAll(ctx, markers, formula.NewContext(data)); err != nil {
		e.logger.Debug("expansion aborted", "run", r.id, "error", err)
		return err
	}

	e.logger.Debug("expansion finished",
		"run", r.id,
		"markers", len(markers),
		"removed", len(stale),
		"duration", time.Since(start),
	)
	return nil
}
