package docstring

// node is a docstring line together with the deeper lines that follow it.
type node struct {
	line
	children []*node
}

// buildTree arranges lines into a forest using an explicit indentation
// stack: a line becomes a child of the nearest preceding line with a
// smaller indent.
func buildTree(lines []line) []*node {
	var roots []*node
	var stack []*node

	for _, l := range lines {
		n := &node{line: l}
		for len(stack) > 0 && stack[len(stack)-1].indent >= l.indent {
			stack = stack[:len(stack)-1]
		}
		if len(stack) == 0 {
			roots = append(roots, n)
		} else {
			parent := stack[len(stack)-1]
			parent.children = append(parent.children, n)
		}
		stack = append(stack, n)
	}
	return roots
}

// descendants returns every line below n in document order.
func (n *node) descendants() []line {
	var out []line
	for _, c := range n.children {
		out = append(out, c.line)
		out = append(out, c.descendants()...)
	}
	return out
}
