package dag

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGraph(t *testing.T, nodes []string, edges [][2]string) *Graph {
	t.Helper()
	g := New()
	for _, n := range nodes {
		g.AddNode(n)
	}
	for _, e := range edges {
		require.NoError(t, g.AddEdge(e[0], e[1]))
	}
	return g
}

func TestNew(t *testing.T) {
	g := New()
	require.NotNil(t, g)
	assert.NotNil(t, g.nodes)
	assert.Empty(t, g.nodes)
	assert.Zero(t, g.Len())
}

func TestAddNode(t *testing.T) {
	g := New()

	g.AddNode("a")
	assert.Len(t, g.nodes, 1)
	nodeA, ok := g.nodes["a"]
	require.True(t, ok)
	assert.Equal(t, "a", nodeA.id)
	assert.NotNil(t, nodeA.deps)
	assert.NotNil(t, nodeA.dependents)

	g.AddNode("a") // Test idempotency
	assert.Len(t, g.nodes, 1)

	g.AddNode("b")
	assert.Equal(t, []string{"a", "b"}, g.Nodes())
	assert.True(t, g.HasNode("b"))
	assert.False(t, g.HasNode("c"))
}

func TestAddEdge(t *testing.T) {
	t.Run("success case", func(t *testing.T) {
		g := newGraph(t, []string{"a", "b"}, [][2]string{{"a", "b"}}) // b depends on a

		nodeA := g.nodes["a"]
		nodeB := g.nodes["b"]

		assert.Contains(t, nodeA.dependents, "b")
		assert.Equal(t, nodeB, nodeA.dependents["b"])
		assert.Contains(t, nodeB.deps, "a")
		assert.Equal(t, nodeA, nodeB.deps["a"])
	})

	t.Run("error cases", func(t *testing.T) {
		g := newGraph(t, []string{"a", "b"}, nil)

		err := g.AddEdge("dne", "a")
		assert.ErrorContains(t, err, "source node not found")
		assert.ErrorIs(t, err, ErrUnknownNode)

		err = g.AddEdge("a", "dne")
		assert.ErrorContains(t, err, "destination node not found")

		err = g.AddEdge("a", "a")
		assert.ErrorContains(t, err, "self-referential edge")
		assert.ErrorIs(t, err, ErrSelfDependency)
	})
}

func TestDependenciesAndDependents(t *testing.T) {
	g := newGraph(t, []string{"a", "b", "c"}, [][2]string{{"b", "c"}, {"a", "c"}})

	deps, err := g.Dependencies("c")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, deps)

	dependents, err := g.Dependents("a")
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, dependents)

	_, err = g.Dependencies("zzz")
	assert.ErrorIs(t, err, ErrUnknownNode)
	_, err = g.Dependents("zzz")
	assert.ErrorIs(t, err, ErrUnknownNode)
}

func TestDetectCycles(t *testing.T) {
	t.Run("empty graph has no cycles", func(t *testing.T) {
		assert.NoError(t, New().DetectCycles())
	})

	t.Run("graph with nodes but no edges has no cycles", func(t *testing.T) {
		g := newGraph(t, []string{"a", "b", "c"}, nil)
		assert.NoError(t, g.DetectCycles())
	})

	t.Run("valid dag has no cycles", func(t *testing.T) {
		g := newGraph(t, []string{"a", "b", "c", "d"}, [][2]string{
			{"a", "b"}, {"b", "c"}, {"a", "c"}, {"c", "d"},
		})
		assert.NoError(t, g.DetectCycles())
	})

	testCases := []struct {
		name     string
		nodes    []string
		edges    [][2]string
		expected []string
	}{
		{
			name:     "simple direct cycle is detected",
			nodes:    []string{"a", "b"},
			edges:    [][2]string{{"a", "b"}, {"b", "a"}},
			expected: []string{"a", "b", "a"},
		},
		{
			name:     "longer cycle is detected",
			nodes:    []string{"a", "b", "c", "d"},
			edges:    [][2]string{{"a", "b"}, {"b", "c"}, {"c", "d"}, {"d", "a"}},
			expected: []string{"a", "d", "c", "b", "a"},
		},
		{
			name:     "cycle in a disjoint component is detected",
			nodes:    []string{"a", "b", "x", "y", "z"},
			edges:    [][2]string{{"a", "b"}, {"x", "y"}, {"y", "z"}, {"z", "y"}},
			expected: []string{"y", "z", "y"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			g := newGraph(t, tc.nodes, tc.edges)

			err := g.DetectCycles()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrCycle)
			assert.ErrorContains(t, err, "cycle detected")

			var cycleErr *CycleError
			require.True(t, errors.As(err, &cycleErr))
			assert.Equal(t, tc.expected, cycleErr.Path)

			_, err = g.TopologicalOrder()
			assert.ErrorIs(t, err, ErrCycle)
		})
	}
}

func TestTopologicalOrder(t *testing.T) {
	// d depends on b and c, both depend on a; e is independent.
	g := newGraph(t, []string{"e", "d", "c", "b", "a"}, [][2]string{
		{"a", "b"}, {"a", "c"}, {"b", "d"}, {"c", "d"},
	})

	order, err := g.TopologicalOrder()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, order)

	levels, err := g.Levels()
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a", "e"}, {"b", "c"}, {"d"}}, levels)
}

func TestTopologicalOrder_TieBreakIsLexical(t *testing.T) {
	g := newGraph(t, []string{"z", "m", "a"}, [][2]string{{"z", "a"}})

	order, err := g.TopologicalOrder()
	require.NoError(t, err)
	assert.Equal(t, []string{"m", "z", "a"}, order)
}

func TestAncestorsAndDescendants(t *testing.T) {
	g := newGraph(t, []string{"a", "b", "c", "d"}, [][2]string{
		{"a", "b"}, {"b", "c"}, {"a", "c"},
	})

	anc, err := g.Ancestors("c")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, anc)

	desc, err := g.Descendants("a")
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, desc)

	anc, err = g.Ancestors("d")
	require.NoError(t, err)
	assert.Empty(t, anc)

	_, err = g.Ancestors("nope")
	assert.ErrorIs(t, err, ErrUnknownNode)
}

func TestShortestPath(t *testing.T) {
	g := newGraph(t, []string{"a", "b", "c", "d"}, [][2]string{
		{"a", "b"}, {"b", "c"}, {"a", "c"}, {"c", "d"},
	})

	path, err := g.ShortestPath("d", "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"d", "c", "a"}, path)

	path, err = g.ShortestPath("a", "d")
	require.NoError(t, err)
	assert.Nil(t, path)

	path, err = g.ShortestPath("b", "b")
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, path)

	_, err = g.ShortestPath("a", "nope")
	assert.ErrorIs(t, err, ErrUnknownNode)
}

func TestGraph_ConcurrentAccess(t *testing.T) {
	g := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := string(rune('a' + i%26))
			g.AddNode(id)
			_ = g.Nodes()
			_, _ = g.Dependencies(id)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 26, g.Len())
}
