package dom

import (
	"strconv"
	"strings"
)

// Op is an attribute match operator.
type Op int

// Attribute operators.
const (
	// OpExists matches when the attribute is present.
	OpExists Op = iota
	// OpEquals matches when the attribute equals Value exactly.
	OpEquals
	// OpIncludes matches when the whitespace-separated attribute value
	// contains Value (CSS ~=).
	OpIncludes
	// OpScope matches when the attribute is present and either Value is
	// empty, the attribute is blank, or the attribute includes Value.
	OpScope
)

// Selector is the small attribute selector language the engine queries with.
// A zero Selector matches every element.
type Selector struct {
	// Tag restricts matches to elements with this name (case-insensitive).
	Tag string
	// Attr is the attribute to test. Empty means no attribute test.
	Attr  string
	Op    Op
	Value string
}

// Match reports whether n satisfies the selector.
func (s Selector) Match(n Node) bool {
	if n == nil || n.Kind() != KindElement {
		return false
	}
	if s.Tag != "" && !strings.EqualFold(n.Tag(), s.Tag) {
		return false
	}
	if s.Attr == "" {
		return true
	}
	v, ok := n.Attr(s.Attr)
	if !ok {
		return false
	}
	switch s.Op {
	case OpEquals:
		return v == s.Value
	case OpIncludes:
		return containsField(v, s.Value)
	case OpScope:
		if s.Value == "" || strings.TrimSpace(v) == "" {
			return true
		}
		return containsField(v, s.Value)
	default:
		return true
	}
}

// String renders the selector in CSS syntax.
func (s Selector) String() string {
	var b strings.Builder
	b.WriteString(s.Tag)
	if s.Attr == "" {
		if s.Tag == "" {
			return "*"
		}
		return b.String()
	}
	attr := func(op, value string) string {
		if op == "" {
			return "[" + s.Attr + "]"
		}
		return "[" + s.Attr + op + strconv.Quote(value) + "]"
	}
	switch s.Op {
	case OpEquals:
		b.WriteString(attr("=", s.Value))
	case OpIncludes:
		b.WriteString(attr("~=", s.Value))
	case OpScope:
		if s.Value == "" {
			b.WriteString(attr("", ""))
			break
		}
		b.WriteString(attr("~=", s.Value))
		b.WriteString(", ")
		b.WriteString(s.Tag)
		b.WriteString(attr("=", ""))
	default:
		b.WriteString(attr("", ""))
	}
	return b.String()
}

func containsField(list, value string) bool {
	for _, f := range strings.Fields(list) {
		if f == value {
			return true
		}
	}
	return false
}
