package layout

import (
	"branch/diagram"
)

// VerticalLayout implements a top-to-bottom layout algorithm where each
// layer becomes a row.
type VerticalLayout struct {
	spacing Spacing
}

// NewVerticalLayout creates a VerticalLayout with default settings.
func NewVerticalLayout() *VerticalLayout {
	return &VerticalLayout{spacing: DefaultSpacing()}
}

// WithSpacing returns a copy using s.
func (v *VerticalLayout) WithSpacing(s Spacing) *VerticalLayout {
	return &VerticalLayout{spacing: s}
}

// Layout moves every node into its row. Node sizes are kept.
func (v *VerticalLayout) Layout(g *diagram.Graph) error {
	if g.Len() == 0 {
		return nil
	}

	positions := make(map[diagram.Handle]diagram.Point, g.Len())
	y := v.spacing.Margin
	minX := 0
	for _, row := range assignLayers(g) {
		totalWidth := 0
		maxHeight := 0
		for i, handle := range row {
			n, _ := g.Node(handle)
			totalWidth += n.Width
			if i > 0 {
				totalWidth += v.spacing.NodeGap
			}
			maxHeight = max(maxHeight, n.Height)
		}

		x := -totalWidth / 2
		minX = min(minX, x)
		for _, handle := range row {
			n, _ := g.Node(handle)
			positions[handle] = diagram.Point{X: x, Y: y}
			x += n.Width + v.spacing.NodeGap
		}
		y += maxHeight + v.spacing.LayerGap
	}

	shift := v.spacing.Margin - minX
	for handle, p := range positions {
		g.MoveNode(handle, p.X+shift, p.Y)
	}
	return nil
}

// Name returns the name of this layout algorithm.
func (v *VerticalLayout) Name() string {
	return "VerticalLayout"
}
