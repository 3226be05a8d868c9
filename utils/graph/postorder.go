package graph

// ReversePostorder returns the nodes reachable from root ordered by reverse
// DFS postorder. In an acyclic graph every node precedes its successors.
func (G Graph[T]) ReversePostorder(root T) []T {
	visited := G.mapFactory()
	order := []T{}

	var dfs func(T)
	dfs = func(node T) {
		if _, seen := visited.Get(node); seen {
			return
		}
		visited.Set(node, true)

		for _, e := range G.Edges(node) {
			dfs(e)
		}

		order = append(order, node)
	}

	dfs(root)

	for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
		order[i], order[j] = order[j], order[i]
	}
	return order
}

// Reachable returns the nodes reachable from the provided start nodes in
// breadth-first order.
func (G Graph[T]) Reachable(starts ...T) (res []T) {
	G.BFSV(func(node T) bool {
		res = append(res, node)
		return false
	}, starts...)
	return
}
