package plan

import "strings"

// Format renders the tree as an indented multi-line listing, one node per
// line, children indented under their parent.
func Format(n Node) string {
	var b strings.Builder
	format(&b, n, 0)
	return b.String()
}

func format(b *strings.Builder, n Node, depth int) {
	for i := 0; i < depth; i++ {
		b.WriteString("  ")
	}
	b.WriteString(n.String())
	b.WriteByte('\n')
	for _, child := range n.Children() {
		format(b, child, depth+1)
	}
}

// Count returns the number of nodes in the tree
func Count(n Node) int {
	total := 1
	for _, child := range n.Children() {
		total += Count(child)
	}
	return total
}
