package layout

import (
	"branch/diagram"
)

// HorizontalLayout implements a left-to-right layout algorithm.
// Each layer becomes a column; conversations read from left to right the
// way connections are drawn.
type HorizontalLayout struct {
	spacing Spacing
}

// NewHorizontalLayout creates a HorizontalLayout with default settings.
func NewHorizontalLayout() *HorizontalLayout {
	return &HorizontalLayout{spacing: DefaultSpacing()}
}

// WithSpacing returns a copy using s.
func (h *HorizontalLayout) WithSpacing(s Spacing) *HorizontalLayout {
	return &HorizontalLayout{spacing: s}
}

// Layout moves every node into its column. Node sizes are kept.
func (h *HorizontalLayout) Layout(g *diagram.Graph) error {
	if g.Len() == 0 {
		return nil
	}

	positions := make(map[diagram.Handle]diagram.Point, g.Len())
	x := h.spacing.Margin
	minY := 0
	for _, column := range assignLayers(g) {
		// Centre each column around y = 0, shift afterwards.
		totalHeight := 0
		maxWidth := 0
		for i, handle := range column {
			n, _ := g.Node(handle)
			totalHeight += n.Height
			if i > 0 {
				totalHeight += h.spacing.NodeGap
			}
			maxWidth = max(maxWidth, n.Width)
		}

		y := -totalHeight / 2
		minY = min(minY, y)
		for _, handle := range column {
			n, _ := g.Node(handle)
			positions[handle] = diagram.Point{X: x, Y: y}
			y += n.Height + h.spacing.NodeGap
		}
		x += maxWidth + h.spacing.LayerGap
	}

	shift := h.spacing.Margin - minY
	for handle, p := range positions {
		g.MoveNode(handle, p.X, p.Y+shift)
	}
	return nil
}

// Name returns the name of this layout algorithm.
func (h *HorizontalLayout) Name() string {
	return "HorizontalLayout"
}
