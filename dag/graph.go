package dag

import (
	"sort"

	"github.com/kbukum/dft/errors"
)

// Graph declares nodes and edges (dependency relationships) over string ids.
type Graph struct {
	nodes map[string]bool
	// edges[from] lists nodes that depend on from.
	edges map[string][]string
	// reverse[to] lists nodes that to depends on.
	reverse map[string][]string
}

// New creates an empty Graph.
func New() *Graph {
	return &Graph{
		nodes:   make(map[string]bool),
		edges:   make(map[string][]string),
		reverse: make(map[string][]string),
	}
}

// AddNode declares a node. Adding an existing node is a no-op.
func (g *Graph) AddNode(id string) {
	g.nodes[id] = true
}

// AddEdge declares that to depends on from. Both endpoints must already be
// declared with AddNode.
func (g *Graph) AddEdge(from, to string) error {
	if !g.nodes[from] {
		return errors.Dependency("edge references unknown node " + from)
	}
	if !g.nodes[to] {
		return errors.Dependency("edge references unknown node " + to)
	}
	g.edges[from] = append(g.edges[from], to)
	g.reverse[to] = append(g.reverse[to], from)
	return nil
}

// HasNode reports whether id is declared.
func (g *Graph) HasNode(id string) bool { return g.nodes[id] }

// Nodes returns all node ids, sorted.
func (g *Graph) Nodes() []string {
	out := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Dependencies returns the direct upstream nodes of id, sorted.
func (g *Graph) Dependencies(id string) []string {
	out := make([]string, len(g.reverse[id]))
	copy(out, g.reverse[id])
	sort.Strings(out)
	return out
}

// Dependents returns the direct downstream nodes of id, sorted.
func (g *Graph) Dependents(id string) []string {
	out := make([]string, len(g.edges[id]))
	copy(out, g.edges[id])
	sort.Strings(out)
	return out
}

// Levels groups nodes by dependency level using Kahn's algorithm. Nodes
// within one level have no edges between them. Each level is sorted
// lexicographically; the tie-break is part of the ordering contract.
// A cycle yields a CYCLE_DETECTED error naming the participating nodes.
func (g *Graph) Levels() ([][]string, error) {
	inDegree := make(map[string]int, len(g.nodes))
	for id := range g.nodes {
		inDegree[id] = 0
	}
	for _, targets := range g.edges {
		for _, to := range targets {
			inDegree[to]++
		}
	}

	var queue []string
	for id, deg := range inDegree {
		if deg == 0 {
			queue = append(queue, id)
		}
	}
	sort.Strings(queue)

	var levels [][]string
	visited := 0

	for len(queue) > 0 {
		levels = append(levels, queue)
		visited += len(queue)

		var next []string
		for _, id := range queue {
			for _, dep := range g.edges[id] {
				inDegree[dep]--
				if inDegree[dep] == 0 {
					next = append(next, dep)
				}
			}
		}
		sort.Strings(next)
		queue = next
	}

	if visited != len(g.nodes) {
		var remaining []string
		for id, deg := range inDegree {
			if deg == 0 {
				continue
			}
			// A node lies on a cycle only if it can reach itself; nodes that
			// are merely downstream of a cycle are left out.
			for _, d := range g.Descendants(id) {
				if d == id {
					remaining = append(remaining, id)
					break
				}
			}
		}
		return nil, errors.Cycle(remaining)
	}

	return levels, nil
}

// TopologicalOrder returns all nodes in dependency order, levels flattened.
func (g *Graph) TopologicalOrder() ([]string, error) {
	levels, err := g.Levels()
	if err != nil {
		return nil, err
	}
	var order []string
	for _, level := range levels {
		order = append(order, level...)
	}
	return order, nil
}

// CycleCheck returns a CYCLE_DETECTED error if the graph has a cycle.
func (g *Graph) CycleCheck() error {
	_, err := g.Levels()
	return err
}

// Ancestors returns the transitive upstream closure of id, sorted.
// The node itself is not included.
func (g *Graph) Ancestors(id string) []string {
	return g.closure(id, g.reverse)
}

// Descendants returns the transitive downstream closure of id, sorted.
// The node itself is not included.
func (g *Graph) Descendants(id string) []string {
	return g.closure(id, g.edges)
}

func (g *Graph) closure(id string, adjacency map[string][]string) []string {
	seen := make(map[string]bool)
	stack := append([]string(nil), adjacency[id]...)
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[n] {
			continue
		}
		seen[n] = true
		stack = append(stack, adjacency[n]...)
	}

	out := make([]string, 0, len(seen))
	for n := range seen {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
