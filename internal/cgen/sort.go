package cgen

import (
	"fmt"
	"strings"

	"github.com/roach88/cbind/internal/ir"
)

// dependency is an ordering edge from a type to one it references.
//
// Strong edges come from by-value use: a composite field, a pattern's wrapped
// fields, a function pointer parameter or return type. Weak edges come from
// use behind a pointer, where a forward-declared struct tag suffices.
type dependency struct {
	to     int
	strong bool
}

// SortTypes orders the declarable types of a library so that every type
// used by another type's definition precedes it.
//
// Primitives, pointers and AsciiPointer have no declaration and are dropped.
// Nodes sharing a name (see ir.Key) are emitted once, at their first
// position. Among types whose dependencies are satisfied the earliest in
// input order is emitted first, so the result is the input order whenever
// the input is already valid.
//
// Weak edges are honoured when possible and relaxed only for types caught
// in a pointer cycle, and only towards structs, which can be forward
// tagged. A cycle of strong edges, or one running through pointers to a
// function pointer typedef, cannot be expressed in C and fails with
// ErrDependencyCycle.
func SortTypes(types []ir.Type) ([]ir.Type, error) {
	nodes, index := declarableNodes(types)

	deps := make([][]dependency, len(nodes))
	for i, n := range nodes {
		deps[i] = dependenciesOf(i, n, index)
	}

	emitted := make([]bool, len(nodes))
	sorted := make([]ir.Type, 0, len(nodes))

	// A pending weak edge to a struct can be deferred: the struct tag stands
	// in for the typedef. Anything else must be declared first.
	blocking := func(d dependency) bool {
		return d.strong || !isStruct(nodes[d.to])
	}
	ready := func(i int, relaxed bool) bool {
		for _, d := range deps[i] {
			if !emitted[d.to] && (!relaxed || blocking(d)) {
				return false
			}
		}
		return true
	}

	for len(sorted) < len(nodes) {
		next := -1
		for _, relaxed := range []bool{false, true} {
			for i := range nodes {
				if !emitted[i] && ready(i, relaxed) {
					next = i
					break
				}
			}
			if next >= 0 {
				break
			}
		}

		if next < 0 {
			return nil, cycleError(nodes, deps, emitted, blocking)
		}

		emitted[next] = true
		sorted = append(sorted, nodes[next])
	}

	return sorted, nil
}

// declarableNodes filters types down to nodes that get a declaration,
// de-duplicated by identity key, and indexes them by key.
func declarableNodes(types []ir.Type) ([]ir.Type, map[string]int) {
	var nodes []ir.Type
	index := make(map[string]int)
	for _, t := range types {
		if t == nil || ir.Name(t) == "" {
			continue
		}
		key := ir.Key(t)
		if _, ok := index[key]; ok {
			continue
		}
		index[key] = len(nodes)
		nodes = append(nodes, t)
	}
	return nodes, index
}

// dependenciesOf collects the ordering edges of node self. Edges to types
// outside the input set are ignored. Weak self edges of structs are dropped;
// any other self edge is kept so the cycle is reported.
func dependenciesOf(self int, t ir.Type, index map[string]int) []dependency {
	var deps []dependency
	seen := make(map[dependency]bool)

	var walk func(c ir.Type, behindPointer bool)
	walk = func(c ir.Type, behindPointer bool) {
		switch c := c.(type) {
		case ir.ReadPointer:
			walk(c.Target, true)
			return
		case ir.ReadWritePointer:
			walk(c.Target, true)
			return
		}
		if ir.Name(c) == "" {
			return
		}
		to, ok := index[ir.Key(c)]
		if !ok {
			return
		}
		d := dependency{to: to, strong: !behindPointer}
		if to == self && !d.strong && isStruct(t) {
			return
		}
		if !seen[d] {
			seen[d] = true
			deps = append(deps, d)
		}
	}

	for _, child := range ir.Children(t) {
		walk(child, false)
	}
	return deps
}

// cycleError reports one cycle of blocking edges among the types not yet
// emitted.
func cycleError(nodes []ir.Type, deps [][]dependency, emitted []bool, blocking func(dependency) bool) error {
	graph := make(map[int][]int)
	strong := make(map[[2]int]bool)
	var order []int
	for i := range nodes {
		if emitted[i] {
			continue
		}
		order = append(order, i)
		for _, d := range deps[i] {
			if emitted[d.to] || !blocking(d) {
				continue
			}
			graph[i] = append(graph[i], d.to)
			if d.strong {
				strong[[2]int{i, d.to}] = true
			}
		}
	}

	var path []string
	byValue := true
	for _, scc := range tarjanSCC(order, graph) {
		if len(scc) > 1 || hasSelfLoop(scc[0], graph) {
			cycle := reconstructCyclePath(scc, graph)
			for k, i := range cycle {
				path = append(path, ir.Name(nodes[i]))
				if k > 0 && !strong[[2]int{cycle[k-1], i}] {
					byValue = false
				}
			}
			break
		}
	}

	subject := ""
	if len(path) > 0 {
		subject = path[0]
	}
	msg := "types contain each other by value"
	if !byValue {
		msg = "types refer to each other through pointers to function pointer typedefs"
	}
	return &GenerateError{
		Code:    ErrDependencyCycle,
		Subject: subject,
		Message: fmt.Sprintf("%s: %s", msg, strings.Join(path, " → ")),
	}
}

func hasSelfLoop(node int, graph map[int][]int) bool {
	for _, neighbor := range graph[node] {
		if neighbor == node {
			return true
		}
	}
	return false
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm.
// Nodes are visited in the given order so the result is deterministic.
func tarjanSCC(order []int, graph map[int][]int) [][]int {
	var (
		index   = 0
		stack   []int
		indices = make(map[int]int)
		lowlink = make(map[int]int)
		onStack = make(map[int]bool)
		sccs    [][]int
	)

	var strongConnect func(int)
	strongConnect = func(v int) {
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

		if lowlink[v] == indices[v] {
			var scc []int
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

	for _, node := range order {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}

	return sccs
}

// reconstructCyclePath walks edges inside an SCC from its first member
// until it returns to the start.
func reconstructCyclePath(scc []int, graph map[int][]int) []int {
	start := scc[len(scc)-1]
	if len(scc) == 1 {
		return []int{start, start}
	}

	members := make(map[int]bool, len(scc))
	for _, node := range scc {
		members[node] = true
	}

	current := start
	path := []int{current}
	visited := make(map[int]bool)
	for {
		visited[current] = true

		next := -1
		for _, neighbor := range graph[current] {
			if members[neighbor] && (!visited[neighbor] || neighbor == start) {
				next = neighbor
				break
			}
		}
		if next < 0 {
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
