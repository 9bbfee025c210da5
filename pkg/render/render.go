// Package render is the top-level driver: parse markup, expand it, and
// serialize the result.
package render

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/getmockd/htmlgen/pkg/diag"
	"github.com/getmockd/htmlgen/pkg/dom"
	"github.com/getmockd/htmlgen/pkg/dom/htmldom"
	"github.com/getmockd/htmlgen/pkg/dom/xmldom"
	"github.com/getmockd/htmlgen/pkg/expand"
	"github.com/getmockd/htmlgen/pkg/include"
	"github.com/getmockd/htmlgen/pkg/logging"
)

// ErrDiagnostics is returned in strict mode when the run reported at least
// one error diagnostic.
var ErrDiagnostics = errors.New("render: expansion reported errors")

// Options configures a render.
type Options struct {
	// Mode selects the parser. ModeHTML and ModeFragment use the HTML5
	// parser; ModeXML uses the XML parser.
	Mode dom.Mode

	// Config is the engine naming configuration.
	Config expand.Config

	Include include.Resolver
	Sink    diag.Sink
	Logger  *slog.Logger

	// Minify compacts the serialized output.
	Minify bool

	// Strict turns error diagnostics into a returned ErrDiagnostics.
	Strict bool

	// Concurrency bounds parallel expansion. Zero means expand.DefaultConcurrency.
	Concurrency int
}

// ParserFor returns the parser for mode.
func ParserFor(mode dom.Mode) (dom.Parser, error) {
	switch mode {
	case dom.ModeHTML, dom.ModeFragment:
		return htmldom.New(), nil
	case dom.ModeXML:
		return xmldom.New(), nil
	default:
		return nil, fmt.Errorf("%w: %d", dom.ErrUnknownMode, mode)
	}
}

// Render parses markup, expands it against data and returns the serialized
// tree. In strict mode the markup is still returned alongside ErrDiagnostics.
func Render(ctx context.Context, markup string, data any, opts Options) (string, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}

	parser, err := ParserFor(opts.Mode)
	if err != nil {
		return "", err
	}
	root, err := parser.Parse(markup, opts.Mode)
	if err != nil {
		return "", fmt.Errorf("failed to parse %s input: %w", opts.Mode, err)
	}

	sink := opts.Sink
	if sink == nil {
		sink = diag.Logger(logger)
	}
	var collector diag.Collector
	if opts.Strict {
		sink = diag.Tee(sink, collector.Sink())
	}

	engineOpts := []expand.Option{
		expand.WithSink(sink),
		expand.WithLogger(logger),
		expand.WithIncludeResolver(opts.Include),
	}
	if opts.Concurrency > 0 {
		engineOpts = append(engineOpts, expand.WithConcurrency(opts.Concurrency))
	}
	if err := expand.New(opts.Config, engineOpts...).Expand(ctx, root, data); err != nil {
		return "", err
	}

	out, err := root.Markup()
	if err != nil {
		return "", fmt.Errorf("failed to serialize output: %w", err)
	}
	if opts.Minify {
		out, err = Minify(out, opts.Mode)
		if err != nil {
			return "", err
		}
	}

	if n := collector.Count(diag.LevelError); n > 0 {
		return out, fmt.Errorf("%w: %d error(s)", ErrDiagnostics, n)
	}
	return out, nil
}
