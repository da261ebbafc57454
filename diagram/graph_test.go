package diagram

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sequentialIDs names nodes n1, n2, ... so tests can refer to them.
func sequentialIDs() IDGenerator {
	i := 0
	return IDGeneratorFunc(func() string {
		i++
		return fmt.Sprintf("n%d", i)
	})
}

func newTestGraph(t *testing.T, count int) (*Graph, []Handle) {
	t.Helper()
	g := NewGraph(sequentialIDs())
	handles := make([]Handle, count)
	for i := range handles {
		handles[i] = g.AddNode(i*200, 0)
	}
	g.MarkSaved()
	return g, handles
}

func TestAddNodeDefaults(t *testing.T) {
	g := NewGraph(sequentialIDs())
	h := g.AddNode(10, 20)

	n, ok := g.Node(h)
	require.True(t, ok)
	assert.Equal(t, "n1", n.ID)
	assert.Equal(t, 10, n.X)
	assert.Equal(t, 20, n.Y)
	assert.Equal(t, DefaultWidth, n.Width)
	assert.Equal(t, DefaultHeight, n.Height)
	assert.Equal(t, "Prompt", n.Prompt)
	assert.Equal(t, "Response", n.Response)
	assert.True(t, g.Modified())

	second := g.AddNode(0, 0)
	assert.Equal(t, 1, g.IndexOf(second), "new nodes go to the end")
}

func TestHitTest(t *testing.T) {
	g := NewGraph(sequentialIDs())
	first := g.AddNode(0, 0)
	second := g.AddNode(50, 50)

	tests := []struct {
		name   string
		point  Point
		offset Point
		want   Handle
		hit    bool
	}{
		{"inside first only", Point{10, 10}, Point{}, first, true},
		{"overlap resolves to lowest index", Point{60, 60}, Point{}, first, true},
		{"inside second only", Point{150, 150}, Point{}, second, true},
		{"left edge excluded", Point{0, 10}, Point{}, NoHandle, false},
		{"top edge excluded", Point{10, 0}, Point{}, NoHandle, false},
		{"right edge excluded", Point{170, 180}, Point{}, NoHandle, false},
		{"offset applied", Point{110, 110}, Point{100, 100}, first, true},
		{"offset moves node away", Point{10, 10}, Point{100, 100}, NoHandle, false},
		{"empty canvas", Point{500, 500}, Point{}, NoHandle, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, ok := g.HitTest(tt.point, tt.offset)
			assert.Equal(t, tt.hit, ok)
			assert.Equal(t, tt.want, h)
		})
	}
}

func TestSelect(t *testing.T) {
	g, hs := newTestGraph(t, 3)

	g.Select(hs[0], false)
	assert.Equal(t, []Handle{hs[0]}, g.Selection())

	g.Select(hs[1], true)
	g.Select(hs[1], true)
	assert.Equal(t, []Handle{hs[0], hs[1], hs[1]}, g.Selection(), "additive select keeps duplicates")

	g.Select(hs[2], false)
	assert.Equal(t, []Handle{hs[2]}, g.Selection())

	assert.False(t, g.SelectAt(Point{-50, -50}, Point{}, true))
	assert.Empty(t, g.Selection(), "clicking empty space clears the selection")

	assert.True(t, g.SelectAt(Point{210, 10}, Point{}, false))
	assert.Equal(t, []Handle{hs[1]}, g.Selection())

	g.SelectAll()
	assert.Equal(t, hs, g.Selection())
	assert.False(t, g.Modified(), "selection is not a mutation")
}

func TestConnect(t *testing.T) {
	t.Run("duplicate in own list preserved", func(t *testing.T) {
		g, hs := newTestGraph(t, 2)
		a, b := hs[0], hs[1]

		assert.True(t, g.Connect(a, b))
		assert.True(t, g.Connect(a, b))
		assert.Equal(t, []Handle{b, b}, g.Connections(a))
		assert.True(t, g.Modified())
	})

	t.Run("reverse connection blocked", func(t *testing.T) {
		g, hs := newTestGraph(t, 2)
		a, b := hs[0], hs[1]

		assert.True(t, g.Connect(a, b))
		// a's list already holds b, so b→a is refused.
		assert.False(t, g.Connect(b, a))
		assert.Equal(t, []Handle{b}, g.Connections(a))
		assert.Empty(t, g.Connections(b))
	})

	t.Run("self connection allowed", func(t *testing.T) {
		g, hs := newTestGraph(t, 1)
		assert.True(t, g.Connect(hs[0], hs[0]))
		assert.False(t, g.Connect(hs[0], hs[0]), "self loop now blocks itself through the guard")
	})

	t.Run("unknown handle ignored", func(t *testing.T) {
		g, hs := newTestGraph(t, 1)
		assert.False(t, g.Connect(hs[0], Handle(99)))
		assert.False(t, g.Modified())
	})
}

func TestDisconnect(t *testing.T) {
	t.Run("forward connection", func(t *testing.T) {
		g, hs := newTestGraph(t, 2)
		g.Connect(hs[0], hs[1])
		g.MarkSaved()

		assert.True(t, g.Disconnect(hs[0], hs[1]))
		assert.Empty(t, g.Connections(hs[0]))
		assert.True(t, g.Modified())
	})

	t.Run("falls back to the reverse direction", func(t *testing.T) {
		g, hs := newTestGraph(t, 2)
		g.Connect(hs[1], hs[0])

		assert.True(t, g.Disconnect(hs[0], hs[1]))
		assert.Empty(t, g.Connections(hs[1]))
	})

	t.Run("only one direction per call", func(t *testing.T) {
		g, hs := newTestGraph(t, 2)
		a, b := hs[0], hs[1]
		g.SetConnections(a, []Handle{b})
		g.SetConnections(b, []Handle{a})

		assert.True(t, g.Disconnect(a, b))
		assert.Empty(t, g.Connections(a))
		assert.Equal(t, []Handle{a}, g.Connections(b))
	})

	t.Run("nothing to remove", func(t *testing.T) {
		g, hs := newTestGraph(t, 2)
		assert.False(t, g.Disconnect(hs[0], hs[1]))
		assert.False(t, g.Modified())
	})
}

func TestSetConnections(t *testing.T) {
	g, hs := newTestGraph(t, 3)
	a, b, c := hs[0], hs[1], hs[2]
	g.Connect(a, b)

	require.True(t, g.SetConnections(b, []Handle{a, c, Handle(99), a}))
	assert.Equal(t, []Handle{a, c, a}, g.Connections(b), "unknown handles dropped, order and duplicates kept")
	assert.True(t, g.Modified())

	assert.False(t, g.SetConnections(Handle(99), []Handle{a}))
}

func TestDisconnectRemovesOneOccurrence(t *testing.T) {
	g, hs := newTestGraph(t, 2)
	g.Connect(hs[0], hs[1])
	g.Connect(hs[0], hs[1])

	g.Disconnect(hs[0], hs[1])
	assert.Equal(t, []Handle{hs[1]}, g.Connections(hs[0]))
}

func TestDeleteSelected(t *testing.T) {
	t.Run("empty selection is a no-op", func(t *testing.T) {
		g, _ := newTestGraph(t, 2)
		assert.Zero(t, g.DeleteSelected())
		assert.Equal(t, 2, g.Len())
		assert.False(t, g.Modified())
	})

	t.Run("all selected clears the graph", func(t *testing.T) {
		g, hs := newTestGraph(t, 3)
		g.Connect(hs[0], hs[1])
		g.Connect(hs[1], hs[2])
		g.SelectAll()

		assert.Equal(t, 3, g.DeleteSelected())
		assert.Zero(t, g.Len())
		assert.Empty(t, g.Edges())
		assert.Empty(t, g.Selection())
		assert.True(t, g.Modified())
	})

	t.Run("single node removes references", func(t *testing.T) {
		g, hs := newTestGraph(t, 3)
		g.Connect(hs[0], hs[1])
		g.Connect(hs[0], hs[1])
		g.Connect(hs[2], hs[1])
		g.Select(hs[1], false)

		assert.Equal(t, 1, g.DeleteSelected())
		assert.Equal(t, 2, g.Len())
		assert.Empty(t, g.Connections(hs[0]))
		assert.Empty(t, g.Connections(hs[2]))
		_, ok := g.Node(hs[1])
		assert.False(t, ok)
		assert.Empty(t, g.Selection())
	})

	t.Run("non contiguous selection removes the right nodes", func(t *testing.T) {
		g, hs := newTestGraph(t, 5)
		g.Select(hs[3], false)
		g.Select(hs[0], true)
		g.Select(hs[3], true)

		assert.Equal(t, 2, g.DeleteSelected())
		ids := []string{}
		for _, n := range g.Nodes() {
			ids = append(ids, n.ID)
		}
		assert.Equal(t, []string{"n2", "n3", "n5"}, ids)
	})

	t.Run("duplicates do not count as full coverage", func(t *testing.T) {
		g, hs := newTestGraph(t, 2)
		g.Select(hs[0], false)
		g.Select(hs[0], true)

		assert.Equal(t, 1, g.DeleteSelected())
		assert.Equal(t, 1, g.Len())
	})
}

func TestMoveAndEdit(t *testing.T) {
	g, hs := newTestGraph(t, 2)
	g.Connect(hs[0], hs[1])

	assert.True(t, g.MoveNode(hs[0], -40, 75))
	n, _ := g.Node(hs[0])
	assert.Equal(t, Point{-40, 75}, Point{n.X, n.Y})
	assert.True(t, g.Modified())

	g.MarkSaved()
	require.NoError(t, g.EditNode(hs[0], NodeEdit{ID: "start", Prompt: "Hello", Response: "Hi"}))
	n, _ = g.Node(hs[0])
	assert.Equal(t, "start", n.ID)
	assert.Equal(t, "Hello", n.Prompt)
	assert.Equal(t, "Hi", n.Response)
	assert.Equal(t, []Handle{hs[1]}, g.Connections(hs[0]), "connections survive an edit")
	assert.True(t, g.Modified())

	found, ok := g.NodeByID("start")
	require.True(t, ok)
	assert.Equal(t, hs[0], found.Handle())

	err := g.EditNode(Handle(42), NodeEdit{})
	assert.ErrorIs(t, err, ErrNodeNotFound)
	assert.False(t, g.MoveNode(Handle(42), 0, 0))
}

func TestBounds(t *testing.T) {
	g := NewGraph(sequentialIDs())
	_, ok := g.Bounds()
	assert.False(t, ok)

	g.AddNode(-10, 5)
	g.AddNode(100, 300)
	b, ok := g.Bounds()
	require.True(t, ok)
	assert.Equal(t, Bounds{Min: Point{-10, 5}, Max: Point{220, 460}}, b)
}

func TestWelcome(t *testing.T) {
	g := Welcome(sequentialIDs())
	require.Equal(t, 2, g.Len())
	nodes := g.Nodes()
	assert.Equal(t, []Handle{nodes[1].Handle()}, g.Connections(nodes[0].Handle()))
}
