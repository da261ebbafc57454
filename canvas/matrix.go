package canvas

import (
	"errors"
	"strings"

	"branch/diagram"
)

// Common errors
var (
	ErrOutOfBounds = errors.New("position out of bounds")
	ErrInvalidSize = errors.New("invalid canvas size")
)

// Cell is one character of the grid together with its style.
type Cell struct {
	Rune  rune
	Style Style
}

// MatrixCanvas is a fixed-size character grid with box-drawing merges and a
// style per cell.
//
// Coordinates are character cells, origin top-left. Drawing primitives clip
// at the edges, so shapes partly outside the grid draw their visible part.
// MatrixCanvas is not safe for concurrent use.
type MatrixCanvas struct {
	cells  [][]Cell
	width  int
	height int
	merger *CharacterMerger
}

// NewMatrixCanvas creates a blank canvas. It returns nil for a
// non-positive size.
func NewMatrixCanvas(width, height int) *MatrixCanvas {
	if width <= 0 || height <= 0 {
		return nil
	}
	cells := make([][]Cell, height)
	for y := range cells {
		cells[y] = make([]Cell, width)
		for x := range cells[y] {
			cells[y][x] = Cell{Rune: ' '}
		}
	}
	return &MatrixCanvas{
		cells:  cells,
		width:  width,
		height: height,
		merger: NewCharacterMerger(),
	}
}

// Size returns the width and height of the canvas.
func (c *MatrixCanvas) Size() (width, height int) {
	return c.width, c.height
}

func (c *MatrixCanvas) inside(x, y int) bool {
	return x >= 0 && x < c.width && y >= 0 && y < c.height
}

// Get returns the character at p, or a space outside the canvas.
func (c *MatrixCanvas) Get(p diagram.Point) rune {
	if !c.inside(p.X, p.Y) {
		return ' '
	}
	return c.cells[p.Y][p.X].Rune
}

// Cell returns the cell at (x, y). Wide character continuations hold 0.
func (c *MatrixCanvas) Cell(x, y int) Cell {
	if !c.inside(x, y) {
		return Cell{Rune: ' '}
	}
	return c.cells[y][x]
}

// Set merges char into the cell at p keeping its style.
func (c *MatrixCanvas) Set(p diagram.Point, char rune) error {
	if !c.inside(p.X, p.Y) {
		return ErrOutOfBounds
	}
	cell := &c.cells[p.Y][p.X]
	cell.Rune = c.merger.Merge(cell.Rune, char)
	return nil
}

// SetStyled merges char into the cell at p and restyles it.
func (c *MatrixCanvas) SetStyled(p diagram.Point, char rune, style Style) error {
	if err := c.Set(p, char); err != nil {
		return err
	}
	c.cells[p.Y][p.X].Style = style
	return nil
}

func (c *MatrixCanvas) put(x, y int, char rune, style Style) {
	if c.inside(x, y) {
		c.cells[y][x] = Cell{Rune: char, Style: style}
	}
}

func (c *MatrixCanvas) merge(x, y int, char rune, style Style) {
	if c.inside(x, y) {
		cell := &c.cells[y][x]
		cell.Rune = c.merger.Merge(cell.Rune, char)
		cell.Style = style
	}
}

// Clear resets the canvas to unstyled spaces.
func (c *MatrixCanvas) Clear() {
	for y := range c.cells {
		for x := range c.cells[y] {
			c.cells[y][x] = Cell{Rune: ' '}
		}
	}
}

// Fill overwrites a rectangle with spaces of the given style.
func (c *MatrixCanvas) Fill(x, y, width, height int, style Style) {
	for row := y; row < y+height; row++ {
		for col := x; col < x+width; col++ {
			c.put(col, row, ' ', style)
		}
	}
}

// String returns the canvas as text, one line per row.
func (c *MatrixCanvas) String() string {
	var sb strings.Builder
	sb.Grow(c.height * (c.width + 1))
	for y := range c.cells {
		for _, cell := range c.cells[y] {
			if cell.Rune == 0 {
				continue
			}
			sb.WriteRune(cell.Rune)
		}
		if y < c.height-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// DrawBox draws a rectangle outline.
func (c *MatrixCanvas) DrawBox(x, y, width, height int, box BoxStyle, style Style) error {
	if width < 2 || height < 2 {
		return ErrInvalidSize
	}
	right, bottom := x+width-1, y+height-1

	c.merge(x, y, box.TopLeft, style)
	c.merge(right, y, box.TopRight, style)
	c.merge(x, bottom, box.BottomLeft, style)
	c.merge(right, bottom, box.BottomRight, style)
	for i := x + 1; i < right; i++ {
		c.merge(i, y, box.Horizontal, style)
		c.merge(i, bottom, box.Horizontal, style)
	}
	for i := y + 1; i < bottom; i++ {
		c.merge(x, i, box.Vertical, style)
		c.merge(right, i, box.Vertical, style)
	}
	return nil
}

// DrawHorizontalLine draws a horizontal line between x1 and x2 inclusive.
func (c *MatrixCanvas) DrawHorizontalLine(x1, y, x2 int, char rune, style Style) {
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	for x := x1; x <= x2; x++ {
		c.merge(x, y, char, style)
	}
}

// DrawVerticalLine draws a vertical line between y1 and y2 inclusive.
func (c *MatrixCanvas) DrawVerticalLine(x, y1, y2 int, char rune, style Style) {
	if y1 > y2 {
		y1, y2 = y2, y1
	}
	for y := y1; y <= y2; y++ {
		c.merge(x, y, char, style)
	}
}

// DrawText writes text starting at (x, y) without wrapping. Wide runes take
// two cells; the second holds 0.
func (c *MatrixCanvas) DrawText(x, y int, text string, style Style) {
	if y < 0 || y >= c.height {
		return
	}
	col := x
	for _, r := range text {
		w := StringWidth(string(r))
		if w == 0 {
			continue
		}
		if col >= c.width {
			return
		}
		if w == 2 && col+1 >= c.width {
			return
		}
		c.put(col, y, r, style)
		if w == 2 {
			c.put(col+1, y, 0, style)
		}
		col += w
	}
}

// DrawPath draws an orthogonal polyline through points using box's line
// and corner runes at each bend.
func (c *MatrixCanvas) DrawPath(points []diagram.Point, box BoxStyle, style Style) {
	for i := 0; i+1 < len(points); i++ {
		p1, p2 := points[i], points[i+1]
		switch {
		case p1.Y == p2.Y:
			c.DrawHorizontalLine(p1.X, p1.Y, p2.X, box.Horizontal, style)
		case p1.X == p2.X:
			c.DrawVerticalLine(p1.X, p1.Y, p2.Y, box.Vertical, style)
		default:
			c.drawLine(p1, p2, '*', style)
		}
	}
	for i := 1; i+1 < len(points); i++ {
		prev, curr, next := points[i-1], points[i], points[i+1]
		if curr == prev || curr == next {
			continue
		}
		c.put(curr.X, curr.Y, selectCorner(prev, curr, next, box), style)
	}
}

// drawLine uses Bresenham's algorithm.
func (c *MatrixCanvas) drawLine(p1, p2 diagram.Point, char rune, style Style) {
	dx, dy := abs(p2.X-p1.X), abs(p2.Y-p1.Y)
	xInc, yInc := 1, 1
	if p1.X > p2.X {
		xInc = -1
	}
	if p1.Y > p2.Y {
		yInc = -1
	}

	x, y := p1.X, p1.Y
	if dx > dy {
		err := dx / 2
		for x != p2.X {
			c.merge(x, y, char, style)
			err -= dy
			if err < 0 {
				y += yInc
				err += dx
			}
			x += xInc
		}
	} else {
		err := dy / 2
		for y != p2.Y {
			c.merge(x, y, char, style)
			err -= dx
			if err < 0 {
				x += xInc
				err += dy
			}
			y += yInc
		}
	}
	c.merge(p2.X, p2.Y, char, style)
}

func selectCorner(prev, curr, next diagram.Point, box BoxStyle) rune {
	from, to := direction(prev, curr), direction(curr, next)
	switch {
	case from == 'E' && to == 'S', from == 'N' && to == 'W':
		return box.TopRight
	case from == 'E' && to == 'N', from == 'S' && to == 'W':
		return box.BottomRight
	case from == 'W' && to == 'S', from == 'N' && to == 'E':
		return box.TopLeft
	case from == 'W' && to == 'N', from == 'S' && to == 'E':
		return box.BottomLeft
	case from == to && (from == 'E' || from == 'W'):
		return box.Horizontal
	default:
		return box.Vertical
	}
}

func direction(p1, p2 diagram.Point) rune {
	switch {
	case p2.X > p1.X:
		return 'E'
	case p2.X < p1.X:
		return 'W'
	case p2.Y > p1.Y:
		return 'S'
	default:
		return 'N'
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
