package dag

import (
	"fmt"
	"slices"
	"strings"
)

// New creates and returns an initialized, empty Graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[string]*node),
	}
}

// AddNode adds a new node with the given ID to the graph. If a node with
// the same ID already exists, the function does nothing.
func (g *Graph) AddNode(id string) {
	if _, ok := g.nodes[id]; ok {
		return
	}
	g.nodes[id] = &node{
		id:         id,
		index:      len(g.order),
		deps:       make(map[string]*node),
		dependents: make(map[string]*node),
	}
	g.order = append(g.order, id)
}

// Has reports whether a node with the given ID exists.
func (g *Graph) Has(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.order)
}

// AddEdge creates a directed edge from the `fromID` node to the `toID` node.
// This signifies that `toID` has a dependency on `fromID`. An error is returned
// if either node does not exist or if the edge would create a self-reference.
func (g *Graph) AddEdge(fromID, toID string) error {
	if fromID == toID {
		return &CycleError{Path: []string{fromID, fromID}}
	}

	fromNode, ok := g.nodes[fromID]
	if !ok {
		return fmt.Errorf("source node not found: %s", fromID)
	}
	toNode, ok := g.nodes[toID]
	if !ok {
		return fmt.Errorf("destination node not found: %s", toID)
	}

	toNode.deps[fromID] = fromNode
	fromNode.dependents[toID] = toNode
	return nil
}

// Dependencies returns the IDs of the nodes the given node depends on, in
// insertion order.
func (g *Graph) Dependencies(id string) ([]string, error) {
	n, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node not found: %s", id)
	}
	return sorted(n.deps), nil
}

// Dependents returns the IDs of the nodes that depend on the given node, in
// insertion order.
func (g *Graph) Dependents(id string) ([]string, error) {
	n, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node not found: %s", id)
	}
	return sorted(n.dependents), nil
}

func sorted(set map[string]*node) []string {
	nodes := make([]*node, 0, len(set))
	for _, n := range set {
		nodes = append(nodes, n)
	}
	slices.SortFunc(nodes, func(a, b *node) int { return a.index - b.index })
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.id
	}
	return ids
}

// CycleError reports a dependency cycle. Path starts and ends with the same
// node.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return "cyclic dependency: " + strings.Join(e.Path, " -> ")
}

// DetectCycles checks the graph for any cycles and returns a *CycleError
// describing the first one found.
func (g *Graph) DetectCycles() error {
	// permanent: fully visited nodes that are not part of a cycle.
	// stack: nodes on the current traversal path.
	permanent := make(map[string]bool)
	onStack := make(map[string]bool)
	var stack []string

	var visit func(n *node) error
	visit = func(n *node) error {
		if permanent[n.id] {
			return nil
		}
		if onStack[n.id] {
			start := slices.Index(stack, n.id)
			path := append(slices.Clone(stack[start:]), n.id)
			return &CycleError{Path: path}
		}

		onStack[n.id] = true
		stack = append(stack, n.id)
		for _, id := range sorted(n.dependents) {
			if err := visit(g.nodes[id]); err != nil {
				return err
			}
		}
		stack = stack[:len(stack)-1]
		delete(onStack, n.id)
		permanent[n.id] = true
		return nil
	}

	for _, id := range g.order {
		if err := visit(g.nodes[id]); err != nil {
			return err
		}
	}
	return nil
}

// TopoOrder returns every node ID ordered so that each node follows all of
// its dependencies. Among nodes that are ready at the same time, the one
// added first comes first.
func (g *Graph) TopoOrder() ([]string, error) {
	pending := make(map[string]int, len(g.nodes))
	var ready []*node
	for _, id := range g.order {
		n := g.nodes[id]
		pending[id] = len(n.deps)
		if len(n.deps) == 0 {
			ready = append(ready, n)
		}
	}

	out := make([]string, 0, len(g.order))
	for len(ready) > 0 {
		slices.SortFunc(ready, func(a, b *node) int { return a.index - b.index })
		n := ready[0]
		ready = ready[1:]
		out = append(out, n.id)
		for _, id := range sorted(n.dependents) {
			pending[id]--
			if pending[id] == 0 {
				ready = append(ready, g.nodes[id])
			}
		}
	}

	if len(out) != len(g.order) {
		if err := g.DetectCycles(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("graph could not be ordered")
	}
	return out, nil
}
