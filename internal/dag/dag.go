// Package dag provides a directed graph of register dependencies.
// It supports cycle detection, execution levels and upstream queries.
package dag

import (
	"fmt"
	"slices"
	"sort"
)

// Node represents a node in the graph.
type Node struct {
	// ID is the unique identifier (register name)
	ID string
	// Data holds arbitrary node data
	Data any
}

// Graph is a directed graph where an edge parent -> child means that child
// needs the value of parent. Unlike a strict DAG it accepts self-loops and
// cycles so that they can be reported instead of rejected on insert.
type Graph struct {
	nodes   map[string]*Node
	edges   map[string][]string // parent -> children (dependents)
	parents map[string][]string // child -> parents (dependencies)
}

// NewGraph creates a new empty graph.
func NewGraph() *Graph {
	return &Graph{
		nodes:   make(map[string]*Node),
		edges:   make(map[string][]string),
		parents: make(map[string][]string),
	}
}

// AddNode adds a node to the graph, updating its data if it already exists.
func (g *Graph) AddNode(id string, data any) {
	if n, exists := g.nodes[id]; exists {
		n.Data = data
		return
	}
	g.nodes[id] = &Node{ID: id, Data: data}
	g.edges[id] = []string{}
	g.parents[id] = []string{}
}

// AddEdge adds a directed edge from parent to child (child depends on parent).
func (g *Graph) AddEdge(parentID, childID string) error {
	if _, exists := g.nodes[parentID]; !exists {
		return fmt.Errorf("parent node %q does not exist", parentID)
	}
	if _, exists := g.nodes[childID]; !exists {
		return fmt.Errorf("child node %q does not exist", childID)
	}

	if !slices.Contains(g.edges[parentID], childID) {
		g.edges[parentID] = append(g.edges[parentID], childID)
	}
	if !slices.Contains(g.parents[childID], parentID) {
		g.parents[childID] = append(g.parents[childID], parentID)
	}
	return nil
}

// GetNode returns a node by ID.
func (g *Graph) GetNode(id string) (*Node, bool) {
	node, exists := g.nodes[id]
	return node, exists
}

// GetParents returns the parents (dependencies) of a node.
func (g *Graph) GetParents(id string) []string {
	return g.parents[id]
}

// GetChildren returns the children (dependents) of a node.
func (g *Graph) GetChildren(id string) []string {
	return g.edges[id]
}

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of edges in the graph.
func (g *Graph) EdgeCount() int {
	count := 0
	for _, children := range g.edges {
		count += len(children)
	}
	return count
}

func (g *Graph) sortedIDs() []string {
	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// HasCycle returns true if the graph contains a cycle, along with the cycle
// path. The path starts and ends with the same node.
func (g *Graph) HasCycle() (bool, []string) {
	visited := make(map[string]bool)
	recStack := make(map[string]bool)
	path := make(map[string]string)

	var cyclePath []string

	var dfs func(id string) bool
	dfs = func(id string) bool {
		visited[id] = true
		recStack[id] = true

		for _, childID := range g.edges[id] {
			if !visited[childID] {
				path[childID] = id
				if dfs(childID) {
					return true
				}
			} else if recStack[childID] {
				// Walk back from id to childID to reconstruct the loop
				cyclePath = []string{childID}
				for curr := id; curr != childID; curr = path[curr] {
					cyclePath = append([]string{curr}, cyclePath...)
				}
				cyclePath = append([]string{childID}, cyclePath...)
				return true
			}
		}

		recStack[id] = false
		return false
	}

	for _, id := range g.sortedIDs() {
		if !visited[id] && dfs(id) {
			return true, cyclePath
		}
	}
	return false, nil
}

// GetExecutionLevels returns nodes grouped by level. Level 0 holds nodes with
// no dependencies; a node at level N only depends on nodes below N.
// Returns an error if the graph contains a cycle.
func (g *Graph) GetExecutionLevels() ([][]string, error) {
	if hasCycle, cyclePath := g.HasCycle(); hasCycle {
		return nil, fmt.Errorf("cycle detected: %v", cyclePath)
	}

	assigned := make(map[string]int)

	var getLevel func(id string) int
	getLevel = func(id string) int {
		if level, ok := assigned[id]; ok {
			return level
		}
		level := 0
		for _, parentID := range g.parents[id] {
			if l := getLevel(parentID) + 1; l > level {
				level = l
			}
		}
		assigned[id] = level
		return level
	}

	maxLevel := -1
	for _, id := range g.sortedIDs() {
		if level := getLevel(id); level > maxLevel {
			maxLevel = level
		}
	}

	levels := make([][]string, maxLevel+1)
	for i := range levels {
		levels[i] = []string{}
	}
	for id, level := range assigned {
		levels[level] = append(levels[level], id)
	}
	for i := range levels {
		sort.Strings(levels[i])
	}
	return levels, nil
}

// GetUpstreamNodes returns all nodes upstream of the given node (its
// dependencies and their dependencies).
func (g *Graph) GetUpstreamNodes(id string) []string {
	upstream := make(map[string]bool)

	var markUpstream func(nodeID string)
	markUpstream = func(nodeID string) {
		for _, parentID := range g.parents[nodeID] {
			if !upstream[parentID] {
				upstream[parentID] = true
				markUpstream(parentID)
			}
		}
	}
	markUpstream(id)

	result := make([]string, 0, len(upstream))
	for nodeID := range upstream {
		result = append(result, nodeID)
	}
	sort.Strings(result)
	return result
}
