package css

import (
	"fmt"
	"slices"
	"strings"
)

// NodeID addresses a node inside the Stylesheet that created it. Identifiers
// are stable for the lifetime of the stylesheet: detaching a node does not
// free its slot.
type NodeID int32

// NoNode is the parent of the root and of every detached node.
const NoNode NodeID = -1

// NodeType discriminates stylesheet nodes.
type NodeType int

const (
	NodeRoot        NodeType = iota // Document root, exactly one per stylesheet
	NodeAtRule                      // @name params { ... } or @name params;
	NodeRule                        // selector { ... }
	NodeDeclaration                 // property: value;
	NodeComment                     // /* ... */
)

// String returns a short human readable name of the node type.
func (t NodeType) String() string {
	switch t {
	case NodeRoot:
		return "root"
	case NodeAtRule:
		return "at-rule"
	case NodeRule:
		return "rule"
	case NodeDeclaration:
		return "declaration"
	case NodeComment:
		return "comment"
	default:
		return fmt.Sprintf("NodeType(%d)", int(t))
	}
}

type node struct {
	typ      NodeType
	name     string // at-rule name without '@' or declaration property
	params   string // at-rule prelude, rule selector, declaration value or comment text
	hasBlock bool   // at-rules only: block form vs statement form
	parent   NodeID
	children []NodeID
}

func (n *node) container() bool {
	switch n.typ {
	case NodeRoot, NodeRule:
		return true
	case NodeAtRule:
		return n.hasBlock
	}
	return false
}

// Stylesheet is an ordered tree of CSS nodes kept in an arena. Every node
// except the root has at most one parent, relocation always detaches a node
// from its previous parent before attaching it to the new one.
type Stylesheet struct {
	nodes    []node
	indent   string
	Warnings []string // Problems noticed while parsing
}

// NewStylesheet returns an empty stylesheet consisting of the root only.
func NewStylesheet() *Stylesheet {
	return &Stylesheet{
		nodes:  []node{{typ: NodeRoot, parent: NoNode}},
		indent: "  ",
	}
}

// Root returns the document root.
func (s *Stylesheet) Root() NodeID { return 0 }

// Valid reports whether id was allocated by this stylesheet.
func (s *Stylesheet) Valid(id NodeID) bool {
	return id >= 0 && int(id) < len(s.nodes)
}

func (s *Stylesheet) get(id NodeID) *node {
	if !s.Valid(id) {
		panic(fmt.Sprintf("css: node %d does not belong to the stylesheet", id))
	}
	return &s.nodes[id]
}

func (s *Stylesheet) Type(id NodeID) NodeType { return s.get(id).typ }

// Name returns at-rule name (without '@') or declaration property.
func (s *Stylesheet) Name(id NodeID) string { return s.get(id).name }

// Params returns at-rule prelude, rule selector, declaration value or comment text.
func (s *Stylesheet) Params(id NodeID) string { return s.get(id).params }

// HasBlock reports whether at-rule has a {} block.
func (s *Stylesheet) HasBlock(id NodeID) bool { return s.get(id).hasBlock }

func (s *Stylesheet) Parent(id NodeID) NodeID { return s.get(id).parent }

// Children returns a copy of the ordered child list.
func (s *Stylesheet) Children(id NodeID) []NodeID {
	return slices.Clone(s.get(id).children)
}

func (s *Stylesheet) ChildCount(id NodeID) int { return len(s.get(id).children) }

// Child returns i-th child of id.
func (s *Stylesheet) Child(id NodeID, i int) NodeID { return s.get(id).children[i] }

// Index returns position of id among direct children of parent or -1.
func (s *Stylesheet) Index(parent, id NodeID) int {
	if !s.Valid(id) || s.get(id).parent != parent {
		return -1
	}
	return slices.Index(s.get(parent).children, id)
}

// Attached reports whether id is reachable from the root.
func (s *Stylesheet) Attached(id NodeID) bool {
	for cur := id; s.Valid(cur); cur = s.nodes[cur].parent {
		if cur == s.Root() {
			return true
		}
	}
	return false
}

// Depth returns number of ancestors of id.
func (s *Stylesheet) Depth(id NodeID) int {
	depth := 0
	for cur := s.get(id).parent; cur != NoNode; cur = s.nodes[cur].parent {
		depth++
	}
	return depth
}

// SetParams replaces at-rule prelude, rule selector or declaration value.
func (s *Stylesheet) SetParams(id NodeID, params string) {
	s.get(id).params = params
}

func (s *Stylesheet) alloc(n node) NodeID {
	n.parent = NoNode
	s.nodes = append(s.nodes, n)
	return NodeID(len(s.nodes) - 1)
}

// NewAtRule creates detached at-rule. Name is expected without '@'.
func (s *Stylesheet) NewAtRule(name, params string, block bool) NodeID {
	return s.alloc(node{typ: NodeAtRule, name: strings.TrimPrefix(name, "@"), params: params, hasBlock: block})
}

// NewRule creates detached style rule.
func (s *Stylesheet) NewRule(selector string) NodeID {
	return s.alloc(node{typ: NodeRule, params: selector})
}

// NewDeclaration creates detached declaration.
func (s *Stylesheet) NewDeclaration(property, value string) NodeID {
	return s.alloc(node{typ: NodeDeclaration, name: property, params: value})
}

// NewComment creates detached comment, text includes comment delimiters.
func (s *Stylesheet) NewComment(text string) NodeID {
	return s.alloc(node{typ: NodeComment, params: text})
}

// Remove detaches id from its parent. Node stays addressable and may be
// attached again later.
func (s *Stylesheet) Remove(id NodeID) {
	n := s.get(id)
	if n.parent == NoNode {
		return
	}
	p := s.get(n.parent)
	if i := slices.Index(p.children, id); i >= 0 {
		p.children = slices.Delete(p.children, i, i+1)
	}
	n.parent = NoNode
}

// Append moves ids (in order) to the end of parent's children.
func (s *Stylesheet) Append(parent NodeID, ids ...NodeID) {
	if p := s.get(parent); !p.container() {
		panic(fmt.Sprintf("css: %s node %d cannot have children", p.typ, parent))
	}
	for _, id := range ids {
		if id == s.Root() {
			panic("css: root cannot be attached")
		}
		for cur := parent; cur != NoNode; cur = s.nodes[cur].parent {
			if cur == id {
				panic(fmt.Sprintf("css: cannot append node %d into its own subtree", id))
			}
		}
		s.Remove(id)
		s.nodes[id].parent = parent
		s.nodes[parent].children = append(s.nodes[parent].children, id)
	}
}

// ReplaceChildren detaches all current children of parent and appends ids.
func (s *Stylesheet) ReplaceChildren(parent NodeID, ids ...NodeID) {
	for _, old := range s.Children(parent) {
		s.Remove(old)
	}
	s.Append(parent, ids...)
}

// CloneOption overrides fields of a cloned node.
type CloneOption func(*cloneOptions)

type cloneOptions struct {
	params  *string
	shallow bool
}

// WithParams sets prelude/selector/value of the clone.
func WithParams(params string) CloneOption {
	return func(o *cloneOptions) { o.params = &params }
}

// WithoutChildren makes clone of the node itself, leaving its subtree behind.
func WithoutChildren() CloneOption {
	return func(o *cloneOptions) { o.shallow = true }
}

// Clone returns detached deep copy of id.
func (s *Stylesheet) Clone(id NodeID, opts ...CloneOption) NodeID {
	var o cloneOptions
	for _, opt := range opts {
		opt(&o)
	}

	src := *s.get(id)
	if src.typ == NodeRoot {
		panic("css: root cannot be cloned")
	}
	cp := s.alloc(node{typ: src.typ, name: src.name, params: src.params, hasBlock: src.hasBlock})
	if o.params != nil {
		s.nodes[cp].params = *o.params
	}
	if o.shallow {
		return cp
	}
	for _, child := range src.children {
		s.Append(cp, s.Clone(child))
	}
	return cp
}

// Walk visits attached nodes in document order starting with root. Returning
// false from fn skips node's subtree.
func (s *Stylesheet) Walk(fn func(id NodeID, depth int) bool) {
	var visit func(id NodeID, depth int)
	visit = func(id NodeID, depth int) {
		if !fn(id, depth) {
			return
		}
		for _, child := range s.nodes[id].children {
			visit(child, depth+1)
		}
	}
	visit(s.Root(), 0)
}

// Count returns number of attached nodes of the requested type.
func (s *Stylesheet) Count(typ NodeType) int {
	var n int
	s.Walk(func(id NodeID, _ int) bool {
		if s.nodes[id].typ == typ {
			n++
		}
		return true
	})
	return n
}
