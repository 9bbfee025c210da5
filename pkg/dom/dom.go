package dom

import "errors"

// Kind classifies a node.
type Kind int

// Node kinds.
const (
	KindOther Kind = iota
	KindElement
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindElement:
		return "element"
	case KindText:
		return "text"
	default:
		return "other"
	}
}

// Mode selects how markup is parsed.
type Mode int

// Parse modes.
const (
	// ModeHTML parses a full HTML document (html/head/body are synthesized).
	ModeHTML Mode = iota
	// ModeXML parses a full XML document.
	ModeXML
	// ModeFragment parses markup as a detached list of nodes.
	ModeFragment
)

func (m Mode) String() string {
	switch m {
	case ModeHTML:
		return "html"
	case ModeXML:
		return "xml"
	case ModeFragment:
		return "fragment"
	default:
		return "unknown"
	}
}

// ParseMode parses a mode name. Valid values: "html", "xml", "fragment".
func ParseMode(s string) (Mode, error) {
	switch s {
	case "html", "HTML", "":
		return ModeHTML, nil
	case "xml", "XML":
		return ModeXML, nil
	case "fragment", "FRAGMENT":
		return ModeFragment, nil
	default:
		return ModeHTML, ErrUnknownMode
	}
}

// Errors returned by host tree implementations.
var (
	// ErrForeignNode is returned when a node from a different tree
	// implementation is inserted.
	ErrForeignNode = errors.New("dom: node belongs to a different tree implementation")

	// ErrDetached is returned when inserting next to a node that has no parent.
	ErrDetached = errors.New("dom: node has no parent")

	// ErrUnknownMode is returned for an unrecognized parse mode.
	ErrUnknownMode = errors.New("dom: unknown parse mode")
)

// Attr is a single name/value attribute pair.
type Attr struct {
	Name  string
	Value string
}

// Node is a handle into a mutable markup tree.
//
// Handles are only valid for the lifetime of the tree they were obtained
// from. Implementations are not safe for concurrent mutation; concurrent
// reads are allowed while nothing mutates the same tree.
type Node interface {
	Kind() Kind
	// Tag returns the element name, or "" for non-element nodes.
	Tag() string
	// Parent returns the parent node, or nil for roots and detached nodes.
	Parent() Node
	Children() []Node

	Attr(name string) (string, bool)
	Attrs() []Attr
	SetAttr(name, value string)
	RemoveAttr(name string)

	// QueryAll returns every element descendant matching sel, in document order.
	QueryAll(sel Selector) []Node

	InnerMarkup() (string, error)
	SetInnerMarkup(markup string) error
	// SetText replaces all children with a single text node.
	SetText(text string)

	// InsertBefore moves n so it becomes the previous sibling of the receiver.
	InsertBefore(n Node) error
	// InsertAfter moves n so it becomes the next sibling of the receiver.
	InsertAfter(n Node) error
	// Remove detaches the node (and its subtree) from its parent.
	Remove()

	// Fragment parses markup into a detached container node of the same
	// tree flavor. The container's children are the parsed nodes.
	Fragment(markup string) (Node, error)

	// Markup serializes the node. Document and fragment containers
	// serialize their children only.
	Markup() (string, error)
}

// Parser turns text into a tree root.
type Parser interface {
	Parse(text string, mode Mode) (Node, error)
}

// ParserFunc adapts a function to the Parser interface.
type ParserFunc func(text string, mode Mode) (Node, error)

// Parse implements Parser.
func (f ParserFunc) Parse(text string, mode Mode) (Node, error) {
	return f(text, mode)
}

// Ancestors walks from n's parent to the root, stopping early when fn
// returns false.
func Ancestors(n Node, fn func(Node) bool) {
	for p := n.Parent(); p != nil; p = p.Parent() {
		if !fn(p) {
			return
		}
	}
}
