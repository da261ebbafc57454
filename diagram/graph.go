package diagram

import (
	"fmt"
	"slices"
)

// Graph is an ordered collection of nodes together with their outgoing
// connections and the current selection. Insertion order is significant:
// it decides hit-test priority and serialization order.
//
// Graph owns every Node. Callers receive copies and mutate through the
// methods below.
type Graph struct {
	nodes     []*Node
	byHandle  map[Handle]*Node
	edges     map[Handle][]Handle // origin -> ordered destinations
	selection []Handle
	next      Handle
	ids       IDGenerator
	modified  bool
}

// NewGraph creates an empty graph that names new nodes with ids.
func NewGraph(ids IDGenerator) *Graph {
	if ids == nil {
		ids = NewTimeSeededIDs()
	}
	return &Graph{
		byHandle: make(map[Handle]*Node),
		edges:    make(map[Handle][]Handle),
		ids:      ids,
	}
}

// Welcome returns the two connected introductory nodes shown when the
// editor starts without a file.
func Welcome(ids IDGenerator) *Graph {
	g := NewGraph(ids)
	first := g.AddNodeText(30, 30,
		"Welcome to the branching story program.",
		"Press H to see what each key does.")
	second := g.AddNodeText(180, 30,
		"This is the PROMPT. This is what is shown as one of the choices when the story is played.",
		"This is the RESPONSE. It's shown when the option is clicked above the PROMPT")
	g.Connect(first, second)
	return g
}

// IDs returns the generator used for new nodes.
func (g *Graph) IDs() IDGenerator {
	return g.ids
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Nodes returns copies of all nodes in insertion order.
func (g *Graph) Nodes() []Node {
	out := make([]Node, len(g.nodes))
	for i, n := range g.nodes {
		out[i] = *n
	}
	return out
}

// Node returns a copy of the node with handle h.
func (g *Graph) Node(h Handle) (Node, bool) {
	n, ok := g.byHandle[h]
	if !ok {
		return Node{}, false
	}
	return *n, true
}

// NodeByID returns the first node, in insertion order, whose ID is id.
func (g *Graph) NodeByID(id string) (Node, bool) {
	for _, n := range g.nodes {
		if n.ID == id {
			return *n, true
		}
	}
	return Node{}, false
}

// IndexOf returns the position of h in the node sequence, or -1.
func (g *Graph) IndexOf(h Handle) int {
	return slices.IndexFunc(g.nodes, func(n *Node) bool { return n.handle == h })
}

// AddNode creates a node at (x, y) with a generated id and the default
// prompt and response. The node is appended to the end of the sequence.
func (g *Graph) AddNode(x, y int) Handle {
	return g.AddNodeText(x, y, DefaultPrompt, DefaultResponse)
}

// AddNodeText creates a node at (x, y) with a generated id and the given
// texts.
func (g *Graph) AddNodeText(x, y int, prompt, response string) Handle {
	return g.Insert(Node{
		ID:       g.ids.NextID(),
		X:        x,
		Y:        y,
		Width:    DefaultWidth,
		Height:   DefaultHeight,
		Prompt:   prompt,
		Response: response,
	})
}

// Insert appends n as given (id and size included) and returns its new
// handle. Any handle already set on n is ignored.
func (g *Graph) Insert(n Node) Handle {
	g.next++
	n.handle = g.next
	stored := n
	g.nodes = append(g.nodes, &stored)
	g.byHandle[stored.handle] = &stored
	g.modified = true
	return stored.handle
}

// Connections returns the destinations of h's outgoing connections in
// order. The slice is a copy.
func (g *Graph) Connections(h Handle) []Handle {
	return slices.Clone(g.edges[h])
}

// HasConnection reports whether from lists to among its connections.
func (g *Graph) HasConnection(from, to Handle) bool {
	return slices.Contains(g.edges[from], to)
}

// Edge is a directed connection between two nodes.
type Edge struct {
	From, To Handle
}

// Edges returns every connection, grouped by origin in node order.
func (g *Graph) Edges() []Edge {
	var out []Edge
	for _, n := range g.nodes {
		for _, to := range g.edges[n.handle] {
			out = append(out, Edge{From: n.handle, To: to})
		}
	}
	return out
}

// Connect adds b to a's connections unless b already connects back to a.
// Calling it twice for the same pair records the connection twice.
// It reports whether a connection was added.
func (g *Graph) Connect(a, b Handle) bool {
	if !g.has(a) || !g.has(b) {
		return false
	}
	if slices.Contains(g.edges[b], a) {
		return false
	}
	g.edges[a] = append(g.edges[a], b)
	g.modified = true
	return true
}

// SetConnections replaces h's outgoing list with to, in order. Unlike
// Connect it applies no reverse-direction guard, so loaders can restore a
// file exactly. Unknown destinations are dropped.
func (g *Graph) SetConnections(h Handle, to []Handle) bool {
	if !g.has(h) {
		return false
	}
	list := make([]Handle, 0, len(to))
	for _, dest := range to {
		if g.has(dest) {
			list = append(list, dest)
		}
	}
	g.edges[h] = list
	g.modified = true
	return true
}

// Disconnect removes one connection between a and b: a→b if present,
// otherwise b→a. It reports whether anything was removed.
func (g *Graph) Disconnect(a, b Handle) bool {
	if g.removeEdge(a, b) || g.removeEdge(b, a) {
		g.modified = true
		return true
	}
	return false
}

func (g *Graph) removeEdge(from, to Handle) bool {
	list := g.edges[from]
	i := slices.Index(list, to)
	if i < 0 {
		return false
	}
	g.edges[from] = slices.Delete(list, i, i+1)
	return true
}

// HitTest returns the first node, in insertion order, whose box translated
// by offset strictly contains p. Overlaps resolve to the earliest node.
func (g *Graph) HitTest(p Point, offset Point) (Handle, bool) {
	for _, n := range g.nodes {
		if n.Contains(p, offset) {
			return n.handle, true
		}
	}
	return NoHandle, false
}

// Select makes h the selection, or appends it when additive is set.
// Duplicates are kept.
func (g *Graph) Select(h Handle, additive bool) {
	if !g.has(h) {
		return
	}
	if !additive {
		g.selection = g.selection[:0]
	}
	g.selection = append(g.selection, h)
}

// SelectAt selects the node under p. Clicking empty canvas clears the
// selection. It reports whether a node was hit.
func (g *Graph) SelectAt(p Point, offset Point, additive bool) bool {
	h, ok := g.HitTest(p, offset)
	if !ok {
		g.ClearSelection()
		return false
	}
	g.Select(h, additive)
	return true
}

// SelectAll selects every node in insertion order.
func (g *Graph) SelectAll() {
	g.selection = g.selection[:0]
	for _, n := range g.nodes {
		g.selection = append(g.selection, n.handle)
	}
}

// ClearSelection empties the selection.
func (g *Graph) ClearSelection() {
	g.selection = g.selection[:0]
}

// Selection returns the selected handles in selection order.
func (g *Graph) Selection() []Handle {
	return slices.Clone(g.selection)
}

// IsSelected reports whether h is part of the selection.
func (g *Graph) IsSelected(h Handle) bool {
	return slices.Contains(g.selection, h)
}

// DeleteSelected removes every selected node and every connection that
// points at one of them. When the selection covers all nodes the graph is
// cleared outright. It returns the number of nodes removed.
func (g *Graph) DeleteSelected() int {
	if len(g.selection) == 0 {
		return 0
	}

	distinct := make(map[Handle]struct{}, len(g.selection))
	for _, h := range g.selection {
		distinct[h] = struct{}{}
	}
	if len(distinct) == len(g.nodes) {
		removed := len(g.nodes)
		g.Clear()
		return removed
	}

	removed := 0
	for _, h := range g.Selection() {
		if g.remove(h) {
			removed++
		}
	}
	g.selection = g.selection[:0]
	g.modified = true
	return removed
}

// Remove deletes a single node and every reference to it.
func (g *Graph) Remove(h Handle) bool {
	if !g.remove(h) {
		return false
	}
	g.selection = slices.DeleteFunc(g.selection, func(s Handle) bool { return s == h })
	g.modified = true
	return true
}

func (g *Graph) remove(h Handle) bool {
	i := g.IndexOf(h)
	if i < 0 {
		return false
	}
	for from, list := range g.edges {
		g.edges[from] = slices.DeleteFunc(list, func(to Handle) bool { return to == h })
	}
	delete(g.edges, h)
	delete(g.byHandle, h)
	g.nodes = slices.Delete(g.nodes, i, i+1)
	return true
}

// Clear removes every node, connection and selection.
func (g *Graph) Clear() {
	g.nodes = nil
	g.byHandle = make(map[Handle]*Node)
	g.edges = make(map[Handle][]Handle)
	g.selection = nil
	g.modified = true
}

// MoveNode overwrites the node's canvas position.
func (g *Graph) MoveNode(h Handle, x, y int) bool {
	n, ok := g.byHandle[h]
	if !ok {
		return false
	}
	n.X, n.Y = x, y
	g.modified = true
	return true
}

// ResizeNode overwrites the node's size.
func (g *Graph) ResizeNode(h Handle, width, height int) bool {
	n, ok := g.byHandle[h]
	if !ok {
		return false
	}
	n.Width, n.Height = width, height
	g.modified = true
	return true
}

// EditNode replaces the node's id, prompt and response. Position, size and
// connections are kept.
func (g *Graph) EditNode(h Handle, edit NodeEdit) error {
	n, ok := g.byHandle[h]
	if !ok {
		return fmt.Errorf("edit node %d: %w", h, ErrNodeNotFound)
	}
	n.ID = edit.ID
	n.Prompt = edit.Prompt
	n.Response = edit.Response
	g.modified = true
	return nil
}

// Bounds returns the rectangle covering every node. ok is false for an
// empty graph.
func (g *Graph) Bounds() (b Bounds, ok bool) {
	for i, n := range g.nodes {
		if i == 0 {
			b = n.Bounds()
			continue
		}
		b = b.Union(n.Bounds())
	}
	return b, len(g.nodes) > 0
}

// Modified reports whether the graph changed since it was last saved.
func (g *Graph) Modified() bool {
	return g.modified
}

// MarkSaved clears the modified flag.
func (g *Graph) MarkSaved() {
	g.modified = false
}

func (g *Graph) has(h Handle) bool {
	_, ok := g.byHandle[h]
	return ok
}
