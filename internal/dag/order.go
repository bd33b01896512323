package dag

import (
	"fmt"
	"sort"
)

// TopologicalOrder returns every node so that each one comes after all of
// its dependencies. Among nodes that are ready at the same time the
// lexically smallest ID goes first, which makes the order deterministic.
func (g *Graph) TopologicalOrder() ([]string, error) {
	if err := g.DetectCycles(); err != nil {
		return nil, err
	}

	g.mutex.RLock()
	defer g.mutex.RUnlock()

	remaining := make(map[string]int, len(g.nodes))
	var ready []string
	for id, n := range g.nodes {
		remaining[id] = len(n.deps)
		if len(n.deps) == 0 {
			ready = append(ready, id)
		}
	}
	sort.Strings(ready)

	order := make([]string, 0, len(g.nodes))
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		order = append(order, id)

		for _, depID := range sortedKeys(g.nodes[id].dependents) {
			remaining[depID]--
			if remaining[depID] == 0 {
				ready = insertSorted(ready, depID)
			}
		}
	}
	return order, nil
}

func insertSorted(s []string, v string) []string {
	i := sort.SearchStrings(s, v)
	s = append(s, "")
	copy(s[i+1:], s[i:])
	s[i] = v
	return s
}

// Levels groups nodes into waves. Wave 0 holds nodes without dependencies;
// every other node sits one wave after its deepest dependency. Nodes of one
// wave can be built in parallel.
func (g *Graph) Levels() ([][]string, error) {
	order, err := g.TopologicalOrder()
	if err != nil {
		return nil, err
	}

	g.mutex.RLock()
	defer g.mutex.RUnlock()

	level := make(map[string]int, len(order))
	var levels [][]string
	for _, id := range order {
		l := 0
		for depID := range g.nodes[id].deps {
			if level[depID]+1 > l {
				l = level[depID] + 1
			}
		}
		level[id] = l
		for len(levels) <= l {
			levels = append(levels, nil)
		}
		levels[l] = append(levels[l], id)
	}
	for _, wave := range levels {
		sort.Strings(wave)
	}
	return levels, nil
}

// Ancestors returns every node id transitively depends on, sorted.
func (g *Graph) Ancestors(id string) ([]string, error) {
	return g.reach(id, func(n *node) map[string]*node { return n.deps })
}

// Descendants returns every node that transitively depends on id, sorted.
func (g *Graph) Descendants(id string) ([]string, error) {
	return g.reach(id, func(n *node) map[string]*node { return n.dependents })
}

func (g *Graph) reach(id string, next func(*node) map[string]*node) ([]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	start, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownNode, id)
	}

	seen := make(map[string]bool)
	queue := []*node{start}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for nextID, m := range next(n) {
			if !seen[nextID] {
				seen[nextID] = true
				queue = append(queue, m)
			}
		}
	}

	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out, nil
}

// ShortestPath returns a shortest chain of dependencies leading from `from`
// to `to`, both included. Neighbours are explored in sorted order so the
// result is stable. A nil slice means `from` does not depend on `to`.
func (g *Graph) ShortestPath(from, to string) ([]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	if _, ok := g.nodes[from]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownNode, from)
	}
	if _, ok := g.nodes[to]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownNode, to)
	}
	if from == to {
		return []string{from}, nil
	}

	parent := map[string]string{from: ""}
	queue := []string{from}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, depID := range sortedKeys(g.nodes[id].deps) {
			if _, seen := parent[depID]; seen {
				continue
			}
			parent[depID] = id
			if depID == to {
				var path []string
				for cur := to; cur != ""; cur = parent[cur] {
					path = append([]string{cur}, path...)
				}
				return path, nil
			}
			queue = append(queue, depID)
		}
	}
	return nil, nil
}
