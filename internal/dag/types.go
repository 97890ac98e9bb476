package dag

// Graph is a collection of nodes and their dependencies. It is not safe for
// concurrent use.
type Graph struct {
	// nodes stores all nodes in the graph, keyed by their unique ID.
	nodes map[string]*node
	// order keeps node IDs in insertion order so every traversal is
	// deterministic.
	order []string
}

// node represents a single vertex in the graph.
type node struct {
	id    string
	index int
	// deps holds the set of nodes that this node depends on (predecessors).
	deps map[string]*node
	// dependents holds the set of nodes that depend on this node (successors).
	dependents map[string]*node
}
