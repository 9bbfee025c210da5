// Package htmldom implements the dom host tree on golang.org/x/net/html.
package htmldom

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/getmockd/htmlgen/pkg/dom"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Parser parses HTML documents and fragments.
type Parser struct{}

// New creates an HTML parser.
func New() *Parser {
	return &Parser{}
}

// Parse implements dom.Parser. ModeXML is not supported.
func (p *Parser) Parse(text string, mode dom.Mode) (dom.Node, error) {
	switch mode {
	case dom.ModeHTML:
		doc, err := html.Parse(strings.NewReader(text))
		if err != nil {
			return nil, fmt.Errorf("failed to parse HTML: %w", err)
		}
		return Wrap(doc), nil
	case dom.ModeFragment:
		frag, err := parseFragment(text, nil)
		if err != nil {
			return nil, err
		}
		return frag, nil
	default:
		return nil, fmt.Errorf("htmldom: %w: %s", dom.ErrUnknownMode, mode)
	}
}

// Wrap returns a dom.Node handle for an existing x/net/html node.
func Wrap(n *html.Node) dom.Node {
	if n == nil {
		return nil
	}
	return &node{n: n}
}

// Unwrap returns the underlying x/net/html node.
func Unwrap(n dom.Node) (*html.Node, bool) {
	hn, ok := n.(*node)
	if !ok {
		return nil, false
	}
	return hn.n, true
}

// templateContext parses fragments the way a <template> element holds its
// content, so context-sensitive elements like <tr> and <option> survive.
func templateContext() *html.Node {
	return &html.Node{Type: html.ElementNode, Data: "template", DataAtom: atom.Template}
}

// parseFragment parses markup into a detached DocumentNode container.
// A nil context uses template context.
func parseFragment(markup string, context *html.Node) (*node, error) {
	if context == nil || context.Type != html.ElementNode {
		context = templateContext()
	}
	nodes, err := html.ParseFragment(strings.NewReader(markup), context)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML fragment: %w", err)
	}
	container := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		container.AppendChild(n)
	}
	return &node{n: container}, nil
}

type node struct {
	n *html.Node
}

func (x *node) Kind() dom.Kind {
	switch x.n.Type {
	case html.ElementNode:
		return dom.KindElement
	case html.TextNode:
		return dom.KindText
	default:
		return dom.KindOther
	}
}

func (x *node) Tag() string {
	if x.n.Type != html.ElementNode {
		return ""
	}
	return x.n.Data
}

func (x *node) Parent() dom.Node {
	return Wrap(x.n.Parent)
}

func (x *node) Children() []dom.Node {
	var out []dom.Node
	for c := x.n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, &node{n: c})
	}
	return out
}

func (x *node) Attr(name string) (string, bool) {
	for _, a := range x.n.Attr {
		if a.Namespace == "" && a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

func (x *node) Attrs() []dom.Attr {
	out := make([]dom.Attr, 0, len(x.n.Attr))
	for _, a := range x.n.Attr {
		key := a.Key
		if a.Namespace != "" {
			key = a.Namespace + ":" + a.Key
		}
		out = append(out, dom.Attr{Name: key, Value: a.Val})
	}
	return out
}

func (x *node) SetAttr(name, value string) {
	if x.n.Type != html.ElementNode {
		return
	}
	for i, a := range x.n.Attr {
		if a.Namespace == "" && a.Key == name {
			x.n.Attr[i].Val = value
			return
		}
	}
	x.n.Attr = append(x.n.Attr, html.Attribute{Key: name, Val: value})
}

func (x *node) RemoveAttr(name string) {
	kept := x.n.Attr[:0]
	for _, a := range x.n.Attr {
		if a.Namespace == "" && a.Key == name {
			continue
		}
		kept = append(kept, a)
	}
	x.n.Attr = kept
}

func (x *node) QueryAll(sel dom.Selector) []dom.Node {
	var out []dom.Node
	var walk func(*html.Node)
	walk = func(p *html.Node) {
		for c := p.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode {
				w := &node{n: c}
				if sel.Match(w) {
					out = append(out, w)
				}
			}
			walk(c)
		}
	}
	walk(x.n)
	return out
}

func (x *node) InnerMarkup() (string, error) {
	var buf bytes.Buffer
	for c := x.n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", fmt.Errorf("failed to render HTML: %w", err)
		}
	}
	return buf.String(), nil
}

func (x *node) SetInnerMarkup(markup string) error {
	var context *html.Node
	if x.n.Type == html.ElementNode {
		context = x.n
	}
	frag, err := parseFragment(markup, context)
	if err != nil {
		return err
	}
	x.clear()
	for c := frag.n.FirstChild; c != nil; c = frag.n.FirstChild {
		frag.n.RemoveChild(c)
		x.n.AppendChild(c)
	}
	return nil
}

func (x *node) SetText(text string) {
	x.clear()
	x.n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
}

func (x *node) clear() {
	for c := x.n.FirstChild; c != nil; c = x.n.FirstChild {
		x.n.RemoveChild(c)
	}
}

func (x *node) InsertBefore(n dom.Node) error {
	other, err := x.sibling(n)
	if err != nil {
		return err
	}
	x.n.Parent.InsertBefore(other, x.n)
	return nil
}

func (x *node) InsertAfter(n dom.Node) error {
	other, err := x.sibling(n)
	if err != nil {
		return err
	}
	x.n.Parent.InsertBefore(other, x.n.NextSibling)
	return nil
}

// sibling detaches n so it can be re-inserted next to x.
func (x *node) sibling(n dom.Node) (*html.Node, error) {
	other, ok := Unwrap(n)
	if !ok {
		return nil, dom.ErrForeignNode
	}
	if x.n.Parent == nil {
		return nil, dom.ErrDetached
	}
	if other.Parent != nil {
		other.Parent.RemoveChild(other)
	}
	return other, nil
}

func (x *node) Remove() {
	if x.n.Parent != nil {
		x.n.Parent.RemoveChild(x.n)
	}
}

func (x *node) Fragment(markup string) (dom.Node, error) {
	frag, err := parseFragment(markup, nil)
	if err != nil {
		return nil, err
	}
	return frag, nil
}

func (x *node) Markup() (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, x.n); err != nil {
		return "", fmt.Errorf("failed to render HTML: %w", err)
	}
	return buf.String(), nil
}
