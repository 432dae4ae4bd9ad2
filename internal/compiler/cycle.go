package compiler

import (
	"fmt"
	"sort"
	"strings"
)

// JoinCycle is a set of finders that join each other. A finder cannot be
// embedded in itself, so every cycle is an error.
type JoinCycle struct {
	Path    []string `json:"path"`    // ["posts", "authors", "posts"]
	Message string   `json:"message"`
}

func (c JoinCycle) Error() string { return c.Message }

// AnalyzeJoins finds cycles in the join references between finders.
//
// The algorithm:
//  1. Build the finder → joined finder graph from the join references
//  2. Use Tarjan's algorithm to find strongly connected components
//  3. Report each SCC with size > 1 or self-loops as a cycle
//
// References to unknown finders are ignored here; Resolve reports them.
func AnalyzeJoins(specs []*FinderSpec) []JoinCycle {
	graph := buildJoinGraph(specs)
	sccs := tarjanSCC(graph)

	var cycles []JoinCycle
	for _, scc := range sccs {
		if len(scc) > 1 || (len(scc) == 1 && hasSelfLoop(scc[0], graph)) {
			cycles = append(cycles, sccToCycle(scc, graph))
		}
	}
	sort.Slice(cycles, func(i, j int) bool { return cycles[i].Path[0] < cycles[j].Path[0] })
	return cycles
}

// joinGraph maps a finder name to the finders it joins.
type joinGraph map[string][]string

func buildJoinGraph(specs []*FinderSpec) joinGraph {
	graph := make(joinGraph)
	known := make(map[string]bool, len(specs))
	for _, spec := range specs {
		known[spec.Name] = true
	}
	for _, spec := range specs {
		// Ensure the node exists even without edges.
		if graph[spec.Name] == nil {
			graph[spec.Name] = []string{}
		}
		for _, ref := range spec.Joins {
			if known[ref.Finder] {
				graph[spec.Name] = append(graph[spec.Name], ref.Finder)
			}
		}
	}
	return graph
}

func hasSelfLoop(node string, graph joinGraph) bool {
	for _, neighbor := range graph[node] {
		if neighbor == node {
			return true
		}
	}
	return false
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm.
// Nodes are visited in name order so results are deterministic.
func tarjanSCC(graph joinGraph) [][]string {
	var (
		index   = 0
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		sccs    [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range graph[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		// v is a root node: pop the stack and create an SCC
		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	nodes := make([]string, 0, len(graph))
	for node := range graph {
		nodes = append(nodes, node)
	}
	sort.Strings(nodes)
	for _, node := range nodes {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}
	return sccs
}

func sccToCycle(scc []string, graph joinGraph) JoinCycle {
	if len(scc) == 1 {
		name := scc[0]
		return JoinCycle{
			Path:    []string{name, name},
			Message: fmt.Sprintf("finder %s joins itself", name),
		}
	}

	path := reconstructCyclePath(scc, graph)
	return JoinCycle{
		Path:    path,
		Message: fmt.Sprintf("join cycle: %s", strings.Join(path, " → ")),
	}
}

// reconstructCyclePath walks the SCC from its smallest name back to itself.
func reconstructCyclePath(scc []string, graph joinGraph) []string {
	if len(scc) == 0 {
		return []string{}
	}

	sccSet := make(map[string]bool)
	for _, node := range scc {
		sccSet[node] = true
	}

	start := slicesMin(scc)
	current := start
	path := []string{current}
	visited := make(map[string]bool)

	for {
		visited[current] = true

		var next string
		for _, neighbor := range graph[current] {
			if sccSet[neighbor] && (!visited[neighbor] || neighbor == start) {
				next = neighbor
				break
			}
		}
		if next == "" {
			break
		}

		path = append(path, next)
		if next == start {
			break
		}
		current = next
	}
	return path
}

func slicesMin(s []string) string {
	m := s[0]
	for _, v := range s[1:] {
		if v < m {
			m = v
		}
	}
	return m
}
