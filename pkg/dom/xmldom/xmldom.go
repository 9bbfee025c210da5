// Package xmldom implements the dom host tree on github.com/beevik/etree.
//
// Documents and fragments are both represented by an element with an empty
// tag; such containers report dom.KindOther and serialize their children
// only.
package xmldom

import (
	"fmt"

	"github.com/beevik/etree"
	"github.com/getmockd/htmlgen/pkg/dom"
)

// fragmentRoot wraps fragment markup so it parses as a well-formed document.
const fragmentRoot = "htmlgen-fragment"

// Parser parses XML documents and fragments.
type Parser struct {
	// Permissive relaxes the XML decoder (unknown entities, unquoted
	// attributes) the way etree.ReadSettings.Permissive does.
	Permissive bool
}

// New creates an XML parser.
func New() *Parser {
	return &Parser{}
}

// Parse implements dom.Parser. ModeHTML is not supported.
func (p *Parser) Parse(text string, mode dom.Mode) (dom.Node, error) {
	switch mode {
	case dom.ModeXML:
		doc := p.newDocument()
		if err := doc.ReadFromString(text); err != nil {
			return nil, fmt.Errorf("failed to parse XML: %w", err)
		}
		return &node{tok: &doc.Element, permissive: p.Permissive}, nil
	case dom.ModeFragment:
		return parseFragment(text, p.Permissive)
	default:
		return nil, fmt.Errorf("xmldom: %w: %s", dom.ErrUnknownMode, mode)
	}
}

func (p *Parser) newDocument() *etree.Document {
	doc := etree.NewDocument()
	doc.ReadSettings.Permissive = p.Permissive
	return doc
}

// Wrap returns a dom.Node handle for an existing etree element.
func Wrap(el *etree.Element) dom.Node {
	if el == nil {
		return nil
	}
	return &node{tok: el}
}

// Unwrap returns the underlying etree token.
func Unwrap(n dom.Node) (etree.Token, bool) {
	xn, ok := n.(*node)
	if !ok {
		return nil, false
	}
	return xn.tok, true
}

func parseFragment(markup string, permissive bool) (dom.Node, error) {
	doc := etree.NewDocument()
	doc.ReadSettings.Permissive = permissive
	if err := doc.ReadFromString("<" + fragmentRoot + ">" + markup + "</" + fragmentRoot + ">"); err != nil {
		return nil, fmt.Errorf("failed to parse XML fragment: %w", err)
	}
	container := etree.NewElement("")
	if root := doc.Root(); root != nil {
		for len(root.Child) > 0 {
			container.AddChild(root.RemoveChildAt(0))
		}
	}
	return &node{tok: container, permissive: permissive}, nil
}

type node struct {
	tok        etree.Token
	permissive bool
}

func (x *node) wrap(t etree.Token) *node {
	return &node{tok: t, permissive: x.permissive}
}

func (x *node) element() (*etree.Element, bool) {
	el, ok := x.tok.(*etree.Element)
	return el, ok
}

func (x *node) Kind() dom.Kind {
	switch t := x.tok.(type) {
	case *etree.Element:
		if t.Tag == "" {
			return dom.KindOther
		}
		return dom.KindElement
	case *etree.CharData:
		return dom.KindText
	default:
		return dom.KindOther
	}
}

func (x *node) Tag() string {
	el, ok := x.element()
	if !ok {
		return ""
	}
	return el.FullTag()
}

func (x *node) Parent() dom.Node {
	p := x.tok.Parent()
	if p == nil {
		return nil
	}
	return x.wrap(p)
}

func (x *node) Children() []dom.Node {
	el, ok := x.element()
	if !ok {
		return nil
	}
	out := make([]dom.Node, 0, len(el.Child))
	for _, c := range el.Child {
		out = append(out, x.wrap(c))
	}
	return out
}

func (x *node) Attr(name string) (string, bool) {
	el, ok := x.element()
	if !ok {
		return "", false
	}
	a := el.SelectAttr(name)
	if a == nil {
		return "", false
	}
	return a.Value, true
}

func (x *node) Attrs() []dom.Attr {
	el, ok := x.element()
	if !ok {
		return nil
	}
	out := make([]dom.Attr, 0, len(el.Attr))
	for _, a := range el.Attr {
		out = append(out, dom.Attr{Name: a.FullKey(), Value: a.Value})
	}
	return out
}

func (x *node) SetAttr(name, value string) {
	if el, ok := x.element(); ok && el.Tag != "" {
		el.CreateAttr(name, value)
	}
}

func (x *node) RemoveAttr(name string) {
	if el, ok := x.element(); ok {
		el.RemoveAttr(name)
	}
}

func (x *node) QueryAll(sel dom.Selector) []dom.Node {
	el, ok := x.element()
	if !ok {
		return nil
	}
	var out []dom.Node
	var walk func(*etree.Element)
	walk = func(p *etree.Element) {
		for _, c := range p.ChildElements() {
			w := x.wrap(c)
			if sel.Match(w) {
				out = append(out, w)
			}
			walk(c)
		}
	}
	walk(el)
	return out
}

func (x *node) InnerMarkup() (string, error) {
	el, ok := x.element()
	if !ok {
		return "", nil
	}
	doc := etree.NewDocument()
	for _, c := range el.Child {
		doc.AddChild(copyToken(c))
	}
	s, err := doc.WriteToString()
	if err != nil {
		return "", fmt.Errorf("failed to write XML: %w", err)
	}
	return s, nil
}

func (x *node) SetInnerMarkup(markup string) error {
	el, ok := x.element()
	if !ok {
		return nil
	}
	frag, err := parseFragment(markup, x.permissive)
	if err != nil {
		return err
	}
	clearChildren(el)
	src := frag.(*node).tok.(*etree.Element)
	for len(src.Child) > 0 {
		el.AddChild(src.RemoveChildAt(0))
	}
	return nil
}

func (x *node) SetText(text string) {
	el, ok := x.element()
	if !ok {
		return
	}
	clearChildren(el)
	el.AddChild(etree.NewText(text))
}

func clearChildren(el *etree.Element) {
	for len(el.Child) > 0 {
		el.RemoveChildAt(len(el.Child) - 1)
	}
}

func (x *node) InsertBefore(n dom.Node) error {
	return x.insertAt(n, 0)
}

func (x *node) InsertAfter(n dom.Node) error {
	return x.insertAt(n, 1)
}

func (x *node) insertAt(n dom.Node, offset int) error {
	other, ok := Unwrap(n)
	if !ok {
		return dom.ErrForeignNode
	}
	parent := x.tok.Parent()
	if parent == nil {
		return dom.ErrDetached
	}
	if p := other.Parent(); p != nil {
		p.RemoveChild(other)
	}
	parent.InsertChildAt(x.tok.Index()+offset, other)
	return nil
}

func (x *node) Remove() {
	if p := x.tok.Parent(); p != nil {
		p.RemoveChild(x.tok)
	}
}

func (x *node) Fragment(markup string) (dom.Node, error) {
	return parseFragment(markup, x.permissive)
}

func (x *node) Markup() (string, error) {
	el, ok := x.element()
	if !ok || el.Tag == "" {
		if ok {
			return x.InnerMarkup()
		}
		doc := etree.NewDocument()
		doc.AddChild(copyToken(x.tok))
		return doc.WriteToString()
	}
	doc := etree.NewDocument()
	doc.SetRoot(el.Copy())
	s, err := doc.WriteToString()
	if err != nil {
		return "", fmt.Errorf("failed to write XML: %w", err)
	}
	return s, nil
}

// copyToken deep-copies a token so serialization never reparents the
// live tree.
func copyToken(t etree.Token) etree.Token {
	switch v := t.(type) {
	case *etree.Element:
		return v.Copy()
	case *etree.CharData:
		if v.IsCData() {
			return etree.NewCData(v.Data)
		}
		return etree.NewText(v.Data)
	case *etree.Comment:
		return etree.NewComment(v.Data)
	case *etree.Directive:
		return etree.NewDirective(v.Data)
	case *etree.ProcInst:
		return etree.NewProcInst(v.Target, v.Inst)
	default:
		return etree.NewText("")
	}
}
