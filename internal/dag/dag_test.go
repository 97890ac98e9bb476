package dag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	g := New()
	require.NotNil(t, g)
	assert.NotNil(t, g.nodes)
	assert.Empty(t, g.nodes)
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
	assert.True(t, g.Has("a"))

	g.AddNode("a") // Test idempotency
	assert.Len(t, g.nodes, 1)

	g.AddNode("b")
	assert.Len(t, g.nodes, 2)
	assert.Equal(t, 1, g.nodes["b"].index)
	assert.Equal(t, 2, g.Len())
}

func TestAddEdge(t *testing.T) {
	t.Run("success case", func(t *testing.T) {
		g := New()
		g.AddNode("a")
		g.AddNode("b")

		err := g.AddEdge("a", "b") // b depends on a
		require.NoError(t, err)

		nodeA := g.nodes["a"]
		nodeB := g.nodes["b"]

		assert.Contains(t, nodeA.dependents, "b")
		assert.Equal(t, nodeB, nodeA.dependents["b"])
		assert.Contains(t, nodeB.deps, "a")
		assert.Equal(t, nodeA, nodeB.deps["a"])
	})

	t.Run("error cases", func(t *testing.T) {
		g := New()
		g.AddNode("a")
		g.AddNode("b")

		err := g.AddEdge("dne", "a")
		assert.ErrorContains(t, err, "source node not found")

		err = g.AddEdge("a", "dne")
		assert.ErrorContains(t, err, "destination node not found")

		err = g.AddEdge("a", "a")
		var cycle *CycleError
		require.ErrorAs(t, err, &cycle)
		assert.Equal(t, []string{"a", "a"}, cycle.Path)
	})
}

func TestDetectCycles(t *testing.T) {
	testCases := []struct {
		name    string
		nodes   []string
		edges   [][2]string
		wantErr string
	}{
		{name: "empty graph"},
		{name: "no edges", nodes: []string{"off:a", "val:a", "len:a"}},
		{
			name:  "field chain",
			nodes: []string{"off:a", "val:a", "len:a", "off:b"},
			edges: [][2]string{
				{"off:a", "val:a"},
				{"val:a", "len:a"},
				{"off:a", "off:b"},
				{"len:a", "off:b"},
			},
		},
		{
			name:    "direct cycle",
			nodes:   []string{"val:a", "val:b"},
			edges:   [][2]string{{"val:a", "val:b"}, {"val:b", "val:a"}},
			wantErr: "cyclic dependency: val:a -> val:b -> val:a",
		},
		{
			name:  "size and offset loop",
			nodes: []string{"off:b", "val:a", "val:b", "off:a"},
			edges: [][2]string{
				{"val:a", "off:b"},
				{"off:b", "val:b"},
				{"val:b", "off:a"},
				{"off:a", "val:a"},
			},
			wantErr: "cyclic dependency: off:b -> val:b -> off:a -> val:a -> off:b",
		},
		{
			name:  "cycle in a disjoint component",
			nodes: []string{"off:a", "val:a", "off:x", "val:y", "val:z"},
			edges: [][2]string{
				{"off:a", "val:a"},
				{"off:x", "val:y"},
				{"val:y", "val:z"},
				{"val:z", "val:y"},
			},
			wantErr: "cyclic dependency: val:y -> val:z -> val:y",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			g := New()
			for _, id := range tc.nodes {
				g.AddNode(id)
			}
			for _, e := range tc.edges {
				require.NoError(t, g.AddEdge(e[0], e[1]))
			}
			err := g.DetectCycles()
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tc.wantErr)
		})
	}
}

func TestDependencies_InsertionOrder(t *testing.T) {
	g := New()
	for _, id := range []string{"c", "a", "b", "d"} {
		g.AddNode(id)
	}
	require.NoError(t, g.AddEdge("b", "d"))
	require.NoError(t, g.AddEdge("c", "d"))
	require.NoError(t, g.AddEdge("a", "d"))

	deps, err := g.Dependencies("d")
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a", "b"}, deps)

	dependents, err := g.Dependents("a")
	require.NoError(t, err)
	assert.Equal(t, []string{"d"}, dependents)

	_, err = g.Dependencies("nope")
	assert.ErrorContains(t, err, "node not found")
}

func TestTopoOrder(t *testing.T) {
	testCases := []struct {
		name  string
		nodes []string
		edges [][2]string
		want  []string
	}{
		{"no edges keeps insertion order", []string{"b", "a", "c"}, nil, []string{"b", "a", "c"}},
		{
			name:  "field layout",
			nodes: []string{"off:a", "size:a", "off:b", "size:b", "off:c"},
			edges: [][2]string{{"off:a", "off:b"}, {"size:a", "off:b"}, {"off:c", "size:b"}, {"off:b", "size:b"}},
			want:  []string{"off:a", "size:a", "off:b", "off:c", "size:b"},
		},
		{
			name:  "dependency added later comes first",
			nodes: []string{"x", "y"},
			edges: [][2]string{{"y", "x"}},
			want:  []string{"y", "x"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			g := New()
			for _, id := range tc.nodes {
				g.AddNode(id)
			}
			for _, e := range tc.edges {
				require.NoError(t, g.AddEdge(e[0], e[1]))
			}
			got, err := g.TopoOrder()
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestTopoOrder_Cycle(t *testing.T) {
	g := New()
	g.AddNode("size:a")
	g.AddNode("off:b")
	g.AddNode("size:b")
	require.NoError(t, g.AddEdge("size:a", "off:b"))
	require.NoError(t, g.AddEdge("off:b", "size:b"))
	require.NoError(t, g.AddEdge("size:b", "size:a"))

	_, err := g.TopoOrder()
	var cycle *CycleError
	require.ErrorAs(t, err, &cycle)
	assert.Equal(t, []string{"size:a", "off:b", "size:b", "size:a"}, cycle.Path)
}
