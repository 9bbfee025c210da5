// Package directive derives the attribute vocabulary an expansion run
// recognizes.
package directive

import (
	"strings"

	"github.com/getmockd/htmlgen/pkg/dom"
)

// Defaults for Config fields.
const (
	DefaultAttributePrefix = "data-gen"
	DefaultTemplateTagName = "template"
)

// Directive suffixes. Attribute names are prefix + "-" + suffix.
const (
	Scope        = "scope"
	Text         = "text"
	HTML         = "html"
	JSON         = "json"
	Attrs        = "attrs"
	Repeat       = "repeat"
	RepeatName   = "repeat-name"
	If           = "if"
	Include      = "include"
	Comment      = "comment"
	Cloned       = "cloned"
	InsertBefore = "insert-before"
)

// Suffixes lists every directive suffix in a stable order.
var Suffixes = []string{
	Scope, Text, HTML, JSON, Attrs, Repeat, RepeatName,
	If, Include, Comment, Cloned, InsertBefore,
}

// Config holds the naming configuration of a run.
type Config struct {
	// AttributePrefix prefixes every directive attribute. Default "data-gen".
	AttributePrefix string
	// TemplateTagName is the element name of template markers. Default "template".
	TemplateTagName string
	// Scope is the active scope filter. Empty matches every scope.
	Scope string
}

// WithDefaults fills unset fields.
func (c Config) WithDefaults() Config {
	if c.AttributePrefix == "" {
		c.AttributePrefix = DefaultAttributePrefix
	}
	if c.TemplateTagName == "" {
		c.TemplateTagName = DefaultTemplateTagName
	}
	c.Scope = strings.TrimSpace(c.Scope)
	return c
}

// Schema is the read-only attribute vocabulary of a run.
type Schema struct {
	Config Config

	// Names maps each directive suffix to its attribute name.
	Names map[string]string
	// Set holds every directive attribute name.
	Set map[string]struct{}

	// Template finds markers that belong to the active scope.
	Template dom.Selector
	// ClonedInScope finds generated output of the active scope.
	ClonedInScope dom.Selector

	Text    dom.Selector
	HTML    dom.Selector
	JSON    dom.Selector
	Attrs   dom.Selector
	If      dom.Selector
	Comment dom.Selector
	Cloned  dom.Selector
}

// Build derives the schema for cfg. Unset fields take their defaults.
func Build(cfg Config) *Schema {
	cfg = cfg.WithDefaults()
	s := &Schema{
		Config: cfg,
		Names:  make(map[string]string, len(Suffixes)),
		Set:    make(map[string]struct{}, len(Suffixes)),
	}
	for _, suffix := range Suffixes {
		name := cfg.AttributePrefix + "-" + suffix
		s.Names[suffix] = name
		s.Set[name] = struct{}{}
	}

	present := func(suffix string) dom.Selector {
		return dom.Selector{Attr: s.Names[suffix], Op: dom.OpExists}
	}
	s.Template = dom.Selector{
		Tag:   cfg.TemplateTagName,
		Attr:  s.Names[Scope],
		Op:    dom.OpScope,
		Value: cfg.Scope,
	}
	s.ClonedInScope = present(Cloned)
	if cfg.Scope != "" {
		s.ClonedInScope = dom.Selector{Attr: s.Names[Cloned], Op: dom.OpEquals, Value: cfg.Scope}
	}
	s.Text = present(Text)
	s.HTML = present(HTML)
	s.JSON = present(JSON)
	s.Attrs = present(Attrs)
	s.If = present(If)
	s.Comment = present(Comment)
	s.Cloned = present(Cloned)
	return s
}

// Name returns the attribute name for a directive suffix.
func (s *Schema) Name(suffix string) string {
	return s.Names[suffix]
}

// IsDirective reports whether attr belongs to the directive vocabulary.
func (s *Schema) IsDirective(attr string) bool {
	_, ok := s.Set[attr]
	return ok
}

// IsTemplate reports whether n is a template-tag element, regardless of
// scope.
func (s *Schema) IsTemplate(n dom.Node) bool {
	return n.Kind() == dom.KindElement && strings.EqualFold(n.Tag(), s.Config.TemplateTagName)
}

// Selectors returns the CSS form of every selector, keyed by directive.
func (s *Schema) Selectors() map[string]string {
	return map[string]string{
		Scope:   s.Template.String(),
		Cloned:  s.ClonedInScope.String(),
		Text:    s.Text.String(),
		HTML:    s.HTML.String(),
		JSON:    s.JSON.String(),
		Attrs:   s.Attrs.String(),
		If:      s.If.String(),
		Comment: s.Comment.String(),
	}
}
