package doctree

import (
	"iter"
	"slices"
	"strings"

	"github.com/dgallion1/riostats/internal/textnorm"
)

// Role is the structural role of a node, independent of the markup that
// produced it.
type Role string

const (
	RoleContainer Role = "container" // layout: div, section, li, tr, ...
	RoleTextRun   Role = "text"      // inline run: span, a, p, td, ...
	RoleEmphasis  Role = "emphasis"  // strong, b, em, headings
	RoleOther     Role = "other"
)

// ValueRoles are the roles a displayed number is expected to live in.
var ValueRoles = []Role{RoleEmphasis, RoleTextRun}

// Tree is a read-only view of a rendered page.
type Tree struct {
	Title string // Page title, if the source had one
	root  *Node
}

// Node is one visible element of the page.
type Node struct {
	Tag  string // Source element name, e.g. "span"
	Role Role

	parent   *Node
	children []*Node
	parts    []part // interleaved direct text and children, in source order

	own    string // direct text only, collapsed
	text   string // node plus descendants, collapsed
	folded string // matching key of text
}

type part struct {
	text  string
	child *Node
}

// Parent returns the enclosing node, or nil for the root.
func (n *Node) Parent() *Node { return n.parent }

// Children returns the node's child elements in document order.
func (n *Node) Children() []*Node { return slices.Clone(n.children) }

// OwnText is the node's direct text, excluding descendants.
func (n *Node) OwnText() string { return n.own }

// Text is the visible text of the node and all of its descendants.
func (n *Node) Text() string { return n.text }

// Folded is the case-folded, whitespace-collapsed form of Text used for
// label matching.
func (n *Node) Folded() string { return n.folded }

// Root returns the synthetic document node that holds the page content.
func (t *Tree) Root() *Node { return t.root }

// AllNodes yields every node in document (pre-)order, starting with the root.
// The sequence may be ranged over any number of times.
func (t *Tree) AllNodes() iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		if t == nil || t.root == nil {
			return
		}
		walk(t.root, yield)
	}
}

// TextOf returns the collapsed visible text of n and its descendants.
func (t *Tree) TextOf(n *Node) string {
	if n == nil {
		return ""
	}
	return n.text
}

// AncestorsOf yields up to limit ancestors of n, nearest first.
func (t *Tree) AncestorsOf(n *Node, limit int) iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		if n == nil {
			return
		}
		for p, i := n.parent, 0; p != nil && i < limit; p, i = p.parent, i+1 {
			if !yield(p) {
				return
			}
		}
	}
}

// DescendantsMatchingRole yields the descendants of n (not n itself) whose
// role is one of roles, in document order.
func (t *Tree) DescendantsMatchingRole(n *Node, roles ...Role) iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		if n == nil {
			return
		}
		for _, c := range n.children {
			if !walk(c, func(d *Node) bool {
				if !slices.Contains(roles, d.Role) {
					return true
				}
				return yield(d)
			}) {
				return
			}
		}
	}
}

// walk visits n and its subtree in pre-order; it reports false once yield stops.
func walk(n *Node, yield func(*Node) bool) bool {
	if !yield(n) {
		return false
	}
	for _, c := range n.children {
		if !walk(c, yield) {
			return false
		}
	}
	return true
}

// Builder assembles a Tree in document order. It is the only way to create
// nodes; the finished Tree exposes no mutation.
type Builder struct {
	root  *Node
	stack []*Node
	title string
}

// NewBuilder returns a builder positioned inside an empty document root.
func NewBuilder() *Builder {
	root := &Node{Tag: "#document", Role: RoleContainer}
	return &Builder{root: root, stack: []*Node{root}}
}

// Open starts a child element of the current element and descends into it.
func (b *Builder) Open(tag string, role Role) *Builder {
	cur := b.stack[len(b.stack)-1]
	n := &Node{Tag: tag, Role: role, parent: cur}
	cur.children = append(cur.children, n)
	cur.parts = append(cur.parts, part{child: n})
	b.stack = append(b.stack, n)
	return b
}

// Text appends direct text to the current element.
func (b *Builder) Text(s string) *Builder {
	if strings.TrimSpace(s) == "" {
		return b
	}
	cur := b.stack[len(b.stack)-1]
	cur.parts = append(cur.parts, part{text: s})
	return b
}

// Leaf is Open, Text, Close in one call.
func (b *Builder) Leaf(tag string, role Role, text string) *Builder {
	return b.Open(tag, role).Text(text).Close()
}

// Close ends the current element. Closing the root is a no-op.
func (b *Builder) Close() *Builder {
	if len(b.stack) > 1 {
		b.stack = b.stack[:len(b.stack)-1]
	}
	return b
}

// SetTitle records the page title.
func (b *Builder) SetTitle(title string) *Builder {
	b.title = textnorm.Collapse(title)
	return b
}

// Tree finalizes text for every node and returns the tree. The builder must
// not be used afterwards.
func (b *Builder) Tree() *Tree {
	finalize(b.root)
	t := &Tree{Title: b.title, root: b.root}
	b.root, b.stack = nil, nil
	return t
}

func finalize(n *Node) {
	var own, all []string
	for _, p := range n.parts {
		if p.child != nil {
			finalize(p.child)
			if p.child.text != "" {
				all = append(all, p.child.text)
			}
			continue
		}
		own = append(own, p.text)
		all = append(all, p.text)
	}
	// Parts are space-separated: rendered layout puts visible gaps between
	// sibling elements even when the markup has none.
	n.own = textnorm.Collapse(strings.Join(own, " "))
	n.text = textnorm.Collapse(strings.Join(all, " "))
	n.folded = textnorm.Fold(n.text)
	n.parts = nil
}
