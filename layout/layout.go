// Package layout provides algorithms for positioning nodes in 2D space.
// It is used for graphs that arrive without coordinates, such as Mermaid
// flowcharts.
package layout

import (
	"slices"
	"strings"

	"branch/diagram"
)

// Default spacing in canvas pixels.
const (
	DefaultMargin   = 30
	DefaultNodeGap  = 30
	DefaultLayerGap = 60
)

// Engine positions the nodes of a graph in place.
type Engine interface {
	Layout(g *diagram.Graph) error
	Name() string
}

// Spacing controls the distances an engine leaves between nodes.
type Spacing struct {
	Margin   int // distance from the origin to the first layer and row
	NodeGap  int // between nodes of the same layer
	LayerGap int // between consecutive layers
}

// DefaultSpacing returns the spacing used by the constructors.
func DefaultSpacing() Spacing {
	return Spacing{Margin: DefaultMargin, NodeGap: DefaultNodeGap, LayerGap: DefaultLayerGap}
}

// ForDirection picks an engine from a flowchart direction keyword.
// TB, TD and BT give a vertical layout; everything else is horizontal.
func ForDirection(dir string) Engine {
	switch strings.ToUpper(strings.TrimSpace(dir)) {
	case "TB", "TD", "BT":
		return NewVerticalLayout()
	default:
		return NewHorizontalLayout()
	}
}

// assignLayers groups nodes into layers with Kahn's algorithm: sources
// first, then every node whose predecessors are all placed. Nodes left
// over by cycles share one final layer. Within a layer nodes keep
// insertion order.
func assignLayers(g *diagram.Graph) [][]diagram.Handle {
	nodes := g.Nodes()
	inDegree := make(map[diagram.Handle]int, len(nodes))
	for _, e := range g.Edges() {
		if e.From != e.To {
			inDegree[e.To]++
		}
	}

	queue := make([]diagram.Handle, 0)
	for _, n := range nodes {
		if inDegree[n.Handle()] == 0 {
			queue = append(queue, n.Handle())
		}
	}

	var layers [][]diagram.Handle
	assigned := make(map[diagram.Handle]bool, len(nodes))
	for len(queue) > 0 {
		layer := slices.Clone(queue)
		layers = append(layers, layer)
		for _, h := range layer {
			assigned[h] = true
		}

		next := make([]diagram.Handle, 0)
		for _, h := range layer {
			for _, succ := range g.Connections(h) {
				if succ == h {
					continue
				}
				inDegree[succ]--
				if inDegree[succ] == 0 && !assigned[succ] {
					next = append(next, succ)
				}
			}
		}
		slices.SortFunc(next, func(a, b diagram.Handle) int {
			return g.IndexOf(a) - g.IndexOf(b)
		})
		queue = next
	}

	if len(assigned) < len(nodes) {
		remaining := make([]diagram.Handle, 0)
		for _, n := range nodes {
			if !assigned[n.Handle()] {
				remaining = append(remaining, n.Handle())
			}
		}
		layers = append(layers, remaining)
	}
	return layers
}
