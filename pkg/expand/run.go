package expand

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/getmockd/htmlgen/pkg/diag"
	"github.com/getmockd/htmlgen/pkg/directive"
	"github.com/getmockd/htmlgen/pkg/dom"
	"github.com/getmockd/htmlgen/pkg/formula"
	"github.com/getmockd/htmlgen/pkg/include"
	"golang.org/x/sync/errgroup"
)

// run holds the state of a single Expand call.
type run struct {
	*Engine
	id       string
	formulas formula.Resolver
}

// expandAll expands sibling markers concurrently, then splices their output
// serially in marker order. Markers are only read during the fan-out; the
// tree that holds them is mutated after every goroutine has returned.
func (r *run) expandAll(ctx context.Context, markers []dom.Node, data formula.Context) error {
	if len(markers) == 0 {
		return nil
	}

	outputs := make([][]dom.Node, len(markers))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, m := range markers {
		g.Go(func() error {
			out, err := r.expandMarker(gctx, m, data)
			outputs[i] = out
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	for i, m := range markers {
		if err := r.splice(m, outputs[i]); err != nil {
			return err
		}
	}
	return nil
}

// expandMarker produces the detached output nodes of one marker, in final
// document order.
func (r *run) expandMarker(ctx context.Context, m dom.Node, data formula.Context) ([]dom.Node, error) {
	if f, ok := m.Attr(r.schema.Name(directive.If)); ok && !formula.Truthy(r.value(f, data)) {
		return nil, nil
	}
	if _, ok := m.Attr(r.schema.Name(directive.Comment)); ok {
		return nil, nil
	}
	if key, ok := m.Attr(r.schema.Name(directive.Include)); ok && strings.TrimSpace(key) != "" {
		return r.includeMarker(ctx, m, strings.TrimSpace(key), data), nil
	}

	contexts, err := r.iterations(m, data)
	if err != nil {
		return nil, err
	}
	markup, err := m.InnerMarkup()
	if err != nil {
		return nil, fmt.Errorf("failed to read template content: %w", err)
	}

	results := make([][]dom.Node, len(contexts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, c := range contexts {
		g.Go(func() error {
			out, err := r.instantiate(gctx, m, markup, c)
			results[i] = out
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return slices.Concat(results...), nil
}

// iterations returns one data context per repeat item, or the inbound
// context alone when the marker does not repeat.
func (r *run) iterations(m dom.Node, data formula.Context) ([]formula.Context, error) {
	attr := r.schema.Name(directive.Repeat)
	f, ok := m.Attr(attr)
	if !ok {
		return []formula.Context{data}, nil
	}

	name, _ := m.Attr(r.schema.Name(directive.RepeatName))
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, r.fatal(&ConfigError{Tag: m.Tag(), Attribute: attr, Formula: f, Err: ErrMissingRepeatName})
	}

	items, ok := formula.List(r.value(f, data))
	if !ok {
		return nil, r.fatal(&ConfigError{Tag: m.Tag(), Attribute: attr, Formula: f, Err: ErrRepeatNotList})
	}

	out := make([]formula.Context, len(items))
	for i, item := range items {
		out[i] = data.Bind(name, item)
	}
	return out, nil
}

// instantiate builds one iteration of a marker in a private fragment.
func (r *run) instantiate(ctx context.Context, m dom.Node, markup string, data formula.Context) ([]dom.Node, error) {
	frag, err := m.Fragment(markup)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template content: %w", err)
	}

	for _, n := range r.visible(frag, r.schema.Comment) {
		n.Remove()
	}
	for _, n := range r.visible(frag, r.schema.ClonedInScope) {
		n.Remove()
	}

	nested := r.visible(frag, r.schema.Template)
	if err := r.expandAll(ctx, nested, data); err != nil {
		return nil, err
	}
	for _, n := range nested {
		n.Remove()
	}

	r.applyContent(frag, data)

	ifAttr := r.schema.Name(directive.If)
	for _, n := range r.visible(frag, r.schema.If) {
		f, _ := n.Attr(ifAttr)
		if !formula.Truthy(r.value(f, data)) {
			n.Remove()
		}
	}

	return r.promote(frag), nil
}

// applyContent evaluates text, html, json and attrs directives, in that order.
func (r *run) applyContent(frag dom.Node, data formula.Context) {
	textAttr := r.schema.Name(directive.Text)
	for _, n := range r.visible(frag, r.schema.Text) {
		f, _ := n.Attr(textAttr)
		n.SetText(r.formulas.String(f, data))
	}

	htmlAttr := r.schema.Name(directive.HTML)
	for _, n := range r.visible(frag, r.schema.HTML) {
		f, _ := n.Attr(htmlAttr)
		if err := n.SetInnerMarkup(r.formulas.String(f, data)); err != nil {
			r.sink.Emit(diag.LevelError, "failed to set inner markup", diag.Fields{
				Formula: f, Attribute: htmlAttr, Run: r.id, Error: err,
			})
		}
	}

	jsonAttr := r.schema.Name(directive.JSON)
	for _, n := range r.visible(frag, r.schema.JSON) {
		f, _ := n.Attr(jsonAttr)
		b, err := json.Marshal(r.value(f, data))
		if err == nil {
			err = n.SetInnerMarkup(string(b))
		}
		if err != nil {
			r.sink.Emit(diag.LevelError, "failed to serialize JSON", diag.Fields{
				Formula: f, Attribute: jsonAttr, Run: r.id, Error: err,
			})
		}
	}

	attrsAttr := r.schema.Name(directive.Attrs)
	for _, n := range r.visible(frag, r.schema.Attrs) {
		pairs, _ := n.Attr(attrsAttr)
		r.applyAttrs(n, pairs, data)
	}
}

// applyAttrs handles "name: formula, name: formula". Null and undefined
// values remove the attribute.
func (r *run) applyAttrs(n dom.Node, pairs string, data formula.Context) {
	for _, pair := range strings.Split(pairs, ",") {
		name, f, found := strings.Cut(pair, ":")
		name = strings.TrimSpace(name)
		if name == "" || !found {
			continue
		}
		v, ok := r.formulas.Value(strings.TrimSpace(f), data)
		if !ok || formula.IsNull(v) {
			n.RemoveAttr(name)
			continue
		}
		n.SetAttr(name, formula.Stringify(v))
	}
}

// includeMarker resolves an include directive. Every failure is reported and
// yields no output.
func (r *run) includeMarker(ctx context.Context, m dom.Node, key string, data formula.Context) []dom.Node {
	fields := diag.Fields{Key: key, Attribute: r.schema.Name(directive.Include), Run: r.id, Data: data.Value()}
	if r.include == nil {
		fields.Error = include.ErrNoResolver
		r.sink.Emit(diag.LevelError, "include resolver not configured", fields)
		return nil
	}

	markup, err := r.include.Resolve(ctx, key, data)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		fields.Error = err
		msg := "include resolver failed"
		if errors.Is(err, include.ErrNotFound) {
			msg = "include not found"
		}
		r.sink.Emit(diag.LevelError, msg, fields)
		return nil
	}

	frag, err := m.Fragment(markup)
	if err != nil {
		fields.Error = err
		r.sink.Emit(diag.LevelError, "include markup could not be parsed", fields)
		return nil
	}
	return r.promote(frag)
}

// promote turns the element children of a fragment into output nodes: the
// cloned marker is set first, author attributes are restored after it, and
// directive attributes are stripped from every element of the subtree,
// template markers included. The content of a template marker is inert and
// left as authored.
func (r *run) promote(frag dom.Node) []dom.Node {
	clonedAttr := r.schema.Name(directive.Cloned)
	var out []dom.Node
	for _, c := range frag.Children() {
		if c.Kind() != dom.KindElement {
			continue
		}
		attrs := c.Attrs()
		for _, a := range attrs {
			c.RemoveAttr(a.Name)
		}
		c.SetAttr(clonedAttr, r.schema.Config.Scope)
		for _, a := range attrs {
			if !r.schema.IsDirective(a.Name) {
				c.SetAttr(a.Name, a.Value)
			}
		}
		out = append(out, c)
		if r.schema.IsTemplate(c) {
			continue
		}
		for _, d := range r.visible(c, dom.Selector{}) {
			r.strip(d)
		}
	}
	return out
}

func (r *run) strip(n dom.Node) {
	for _, a := range n.Attrs() {
		if r.schema.IsDirective(a.Name) {
			n.RemoveAttr(a.Name)
		}
	}
}

// splice moves output next to its marker. Insert-after walks the output
// backwards so each insertion lands directly after the marker and pushes
// earlier insertions down; insert-before walks forwards. Both leave the
// output in iteration order.
func (r *run) splice(m dom.Node, nodes []dom.Node) error {
	if _, before := m.Attr(r.schema.Name(directive.InsertBefore)); before {
		for _, n := range nodes {
			if err := m.InsertBefore(n); err != nil {
				return fmt.Errorf("failed to insert output before marker: %w", err)
			}
		}
		return nil
	}
	for i := len(nodes) - 1; i >= 0; i-- {
		if err := m.InsertAfter(nodes[i]); err != nil {
			return fmt.Errorf("failed to insert output after marker: %w", err)
		}
	}
	return nil
}

// visible queries root and drops matches that sit inside a template-tag
// element below root. Template content is inert until its own marker is
// instantiated.
func (r *run) visible(root dom.Node, sel dom.Selector) []dom.Node {
	base := depth(root)
	var out []dom.Node
	for _, n := range root.QueryAll(sel) {
		between := depth(n) - base - 1
		inert := false
		dom.Ancestors(n, func(p dom.Node) bool {
			if between <= 0 {
				return false
			}
			between--
			if r.schema.IsTemplate(p) {
				inert = true
				return false
			}
			return true
		})
		if !inert {
			out = append(out, n)
		}
	}
	return out
}

func depth(n dom.Node) int {
	d := 0
	dom.Ancestors(n, func(dom.Node) bool {
		d++
		return true
	})
	return d
}

func (r *run) value(f string, data formula.Context) any {
	v, _ := r.formulas.Value(f, data)
	return v
}

func (r *run) fatal(err *ConfigError) error {
	r.sink.Emit(diag.LevelError, err.Err.Error(), diag.Fields{
		Formula:   err.Formula,
		Attribute: err.Attribute,
		Run:       r.id,
		Error:     err,
	})
	return err
}
