// Package render draws a dialogue graph onto a character grid. The
// terminal editor and the text export share it.
package render

import (
	"strings"

	"branch/canvas"
	"branch/diagram"
)

// Default cell size in canvas pixels.
const (
	DefaultCellWidth  = 8
	DefaultCellHeight = 16
)

// Scene maps the pixel based graph onto character cells.
type Scene struct {
	CellWidth  int
	CellHeight int
	// Offset is the pan translation in pixels.
	Offset diagram.Point
	// ASCII swaps box-drawing runes for plain ASCII.
	ASCII bool
	// HighlightSelection draws selected nodes with a double border.
	HighlightSelection bool
}

// NewScene returns a scene with the default cell size.
func NewScene() Scene {
	return Scene{
		CellWidth:          DefaultCellWidth,
		CellHeight:         DefaultCellHeight,
		HighlightSelection: true,
	}
}

func (s Scene) cellSize() (int, int) {
	cw, ch := s.CellWidth, s.CellHeight
	if cw <= 0 {
		cw = DefaultCellWidth
	}
	if ch <= 0 {
		ch = DefaultCellHeight
	}
	return cw, ch
}

// CellOf returns the cell holding canvas pixel p once the scene offset is
// applied.
func (s Scene) CellOf(p diagram.Point) diagram.Point {
	cw, ch := s.cellSize()
	return diagram.Point{
		X: floorDiv(p.X+s.Offset.X, cw),
		Y: floorDiv(p.Y+s.Offset.Y, ch),
	}
}

// PixelOf returns the screen pixel at the centre of a cell. Pointer events
// are reported in these coordinates.
func (s Scene) PixelOf(cell diagram.Point) diagram.Point {
	cw, ch := s.cellSize()
	return diagram.Point{X: cell.X*cw + cw/2, Y: cell.Y*ch + ch/2}
}

// Measure returns the text measure used for node bodies.
func (s Scene) Measure() canvas.MeasureFunc {
	cw, _ := s.cellSize()
	return canvas.CellMeasure(cw)
}

// nodeBox is a node's rectangle in cells. Max is exclusive.
type nodeBox struct {
	min, max diagram.Point
	divider  int
}

func (s Scene) boxOf(n diagram.Node) nodeBox {
	b := n.Bounds()
	box := nodeBox{min: s.CellOf(b.Min), max: s.CellOf(b.Max)}
	if box.max.X-box.min.X < 2 {
		box.max.X = box.min.X + 2
	}
	if box.max.Y-box.min.Y < 2 {
		box.max.Y = box.min.Y + 2
	}
	box.divider = s.CellOf(diagram.Point{X: n.X, Y: n.Divider()}).Y
	box.divider = max(box.divider, box.min.Y+3)
	box.divider = min(box.divider, box.max.Y-2)
	return box
}

// Draw paints every connection, then every node, onto c.
func (s Scene) Draw(c *canvas.MatrixCanvas, g *diagram.Graph) {
	boxes := make(map[diagram.Handle]nodeBox, g.Len())
	nodes := g.Nodes()
	for _, n := range nodes {
		boxes[n.Handle()] = s.boxOf(n)
	}

	for _, e := range g.Edges() {
		s.drawConnection(c, boxes[e.From], boxes[e.To], e.From == e.To)
	}
	for _, n := range nodes {
		selected := s.HighlightSelection && g.IsSelected(n.Handle())
		s.drawNode(c, n, boxes[n.Handle()], selected)
	}
}

func (s Scene) drawConnection(c *canvas.MatrixCanvas, from, to nodeBox, self bool) {
	start := diagram.Point{X: from.max.X, Y: from.divider}
	end := diagram.Point{X: to.min.X - 1, Y: to.divider}

	var points []diagram.Point
	if self {
		above := from.min.Y - 1
		left := from.min.X - 2
		points = []diagram.Point{
			start,
			{X: start.X + 1, Y: start.Y},
			{X: start.X + 1, Y: above},
			{X: left, Y: above},
			{X: left, Y: end.Y},
			end,
		}
	} else {
		mid := (start.X + end.X) / 2
		points = []diagram.Point{start, {X: mid, Y: start.Y}, {X: mid, Y: end.Y}, end}
	}
	line := canvas.RoundedBoxStyle
	if s.ASCII {
		line = canvas.SimpleBoxStyle
	}
	c.DrawPath(points, line, canvas.StyleConnection)
	c.SetStyled(end, s.arrow(), canvas.StyleConnection)
}

func (s Scene) drawNode(c *canvas.MatrixCanvas, n diagram.Node, box nodeBox, selected bool) {
	width := box.max.X - box.min.X
	height := box.max.Y - box.min.Y
	style := canvas.StyleBorder
	border := canvas.RoundedBoxStyle
	if s.ASCII {
		border = canvas.SimpleBoxStyle
	}
	if selected {
		style = canvas.StyleSelected
		if !s.ASCII {
			border = canvas.DoubleBoxStyle
		}
	}

	c.Fill(box.min.X, box.min.Y, width, height, canvas.StyleDefault)
	c.DrawBox(box.min.X, box.min.Y, width, height, border, style)

	inner := width - 2
	if inner <= 0 || height < 5 {
		return
	}
	left := box.min.X + 1
	c.DrawText(left, box.min.Y+1, canvas.FitText(n.ID, inner, "~"), canvas.StyleHeader)
	s.drawRule(c, box.min.X, box.max.X-1, box.min.Y+2, border, style)
	s.drawRule(c, box.min.X, box.max.X-1, box.divider, border, style)

	s.drawBody(c, n.Prompt, left, box.min.Y+3, box.divider, inner)
	s.drawBody(c, n.Response, left, box.divider+1, box.max.Y-1, inner)

	c.SetStyled(diagram.Point{X: box.min.X, Y: box.divider}, s.anchor(), style)
	c.SetStyled(diagram.Point{X: box.max.X - 1, Y: box.divider}, s.anchor(), style)
}

// drawRule draws a horizontal separator across a node with T junctions at
// its ends.
func (s Scene) drawRule(c *canvas.MatrixCanvas, x1, x2, y int, border canvas.BoxStyle, style canvas.Style) {
	for x := x1 + 1; x < x2; x++ {
		c.SetStyled(diagram.Point{X: x, Y: y}, border.Horizontal, style)
	}
	left, right := '├', '┤'
	if s.ASCII {
		left, right = '+', '+'
	} else if border == canvas.DoubleBoxStyle {
		left, right = '╟', '╢'
	}
	c.SetStyled(diagram.Point{X: x1, Y: y}, left, style)
	c.SetStyled(diagram.Point{X: x2, Y: y}, right, style)
}

// drawBody wraps text into rows [top, bottom) of a node, width cells wide.
func (s Scene) drawBody(c *canvas.MatrixCanvas, text string, x, top, bottom, width int) {
	rows := bottom - top
	if rows <= 0 {
		return
	}
	cw, _ := s.cellSize()
	lines := canvas.Clamp(canvas.Wrap(text, width*cw, s.Measure()), min(rows, canvas.MaxDisplayLines))
	for i, line := range lines {
		c.DrawText(x, top+i, canvas.FitText(strings.TrimSpace(line), width, ""), canvas.StyleDefault)
	}
}

func (s Scene) anchor() rune {
	if s.ASCII {
		return 'o'
	}
	return '●'
}

func (s Scene) arrow() rune {
	if s.ASCII {
		return '>'
	}
	return '▶'
}

// floorDiv divides rounding toward negative infinity so cells stay
// uniform on both sides of the origin.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
