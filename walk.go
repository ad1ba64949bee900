package marq

// Visit calls fn for every node of the tree in pre-order.
func Visit(root *Node, fn func(*Node)) {
	Walk(root, func(n *Node, _ int) { fn(n) })
}

// Walk calls fn for every node of the tree in pre-order, passing the depth
// below root. The walk uses an explicit stack so deep trees cannot exhaust
// the goroutine stack.
func Walk(root *Node, fn func(n *Node, depth int)) {
	if root == nil {
		return
	}
	type item struct {
		n     *Node
		depth int
	}
	stack := []item{{root, 0}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		fn(it.n, it.depth)
		for i := len(it.n.Children) - 1; i >= 0; i-- {
			stack = append(stack, item{it.n.Children[i], it.depth + 1})
		}
	}
}
