// Package plan defines the immutable logical plan tree and its generic
// traversal primitives. Nodes are never mutated after construction; every
// rewrite builds replacement nodes and shares unchanged subtrees.
package plan

import (
	"github.com/calderdb/calder/sql"
)

// Node is a logical plan operator. Implementations are immutable: Children
// returns the nodes given at construction and WithChildren builds a copy with
// a replacement child list of the same arity.
type Node interface {
	// Schema derives the ordered output columns from the node kind and its
	// children; it is not stored redundantly except at leaves.
	Schema() sql.Schema

	// Children returns the input nodes, left to right
	Children() []Node

	// WithChildren rebuilds the node with new children. The arity must match
	// the node kind or an error is returned naming the node.
	WithChildren(children ...Node) (Node, error)

	// Equal reports structural equality: kind, payload, and children,
	// recursively
	Equal(other Node) bool

	// String is a one-line description of this node alone; use Format for
	// the whole tree
	String() string
}

// RewriteFunc is a partial rewrite: it may return a replacement node or the
// input node unchanged to signal "no match". Errors abort the traversal and
// propagate to the caller unmodified.
type RewriteFunc func(Node) (Node, error)

// TransformUp rewrites the tree bottom-up: children are transformed first,
// left to right, then f is applied to the (possibly rebuilt) node itself.
// Every node is visited exactly once.
func TransformUp(n Node, f RewriteFunc) (Node, error) {
	children := n.Children()
	if len(children) > 0 {
		newChildren := make([]Node, len(children))
		changed := false
		for i, child := range children {
			nc, err := TransformUp(child, f)
			if err != nil {
				return nil, err
			}
			newChildren[i] = nc
			if nc != child {
				changed = true
			}
		}
		if changed {
			rebuilt, err := n.WithChildren(newChildren...)
			if err != nil {
				return nil, err
			}
			n = rebuilt
		}
	}
	return f(n)
}

// TransformDown rewrites the tree top-down: f is applied to the node first,
// and the replacement's children (not the originals) are transformed next, so
// a rule can react to its own edits within one pass.
func TransformDown(n Node, f RewriteFunc) (Node, error) {
	replaced, err := f(n)
	if err != nil {
		return nil, err
	}
	n = replaced

	children := n.Children()
	if len(children) == 0 {
		return n, nil
	}
	newChildren := make([]Node, len(children))
	changed := false
	for i, child := range children {
		nc, err := TransformDown(child, f)
		if err != nil {
			return nil, err
		}
		newChildren[i] = nc
		if nc != child {
			changed = true
		}
	}
	if !changed {
		return n, nil
	}
	return n.WithChildren(newChildren...)
}

// Equal compares two trees for structural equality, tolerating nils
func Equal(a, b Node) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(b)
}
