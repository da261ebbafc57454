package render

import (
	"fmt"
	"strings"
	"testing"

	"branch/canvas"
	"branch/diagram"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sequentialIDs() diagram.IDGenerator {
	i := 0
	return diagram.IDGeneratorFunc(func() string {
		i++
		return fmt.Sprintf("n%d", i)
	})
}

func at(c *canvas.MatrixCanvas, x, y int) rune {
	return c.Get(diagram.Point{X: x, Y: y})
}

func row(c *canvas.MatrixCanvas, y int) string {
	return strings.Split(c.String(), "\n")[y]
}

func TestSceneCellMapping(t *testing.T) {
	s := NewScene()

	assert.Equal(t, diagram.Point{X: -1, Y: -1}, s.CellOf(diagram.Point{X: -1, Y: -1}))
	assert.Equal(t, diagram.Point{X: 1, Y: 1}, s.CellOf(diagram.Point{X: 15, Y: 31}))
	assert.Equal(t, diagram.Point{X: 20, Y: 56}, s.PixelOf(diagram.Point{X: 2, Y: 3}))

	s.Offset = diagram.Point{X: 16, Y: -16}
	assert.Equal(t, diagram.Point{X: 2, Y: -1}, s.CellOf(diagram.Point{X: 0, Y: 0}))
}

func TestSceneDrawsNode(t *testing.T) {
	g := diagram.NewGraph(sequentialIDs())
	g.AddNode(0, 0)

	c := canvas.NewMatrixCanvas(20, 12)
	NewScene().Draw(c, g)

	assert.Equal(t, '╭', at(c, 0, 0))
	assert.Equal(t, '╮', at(c, 14, 0))
	assert.Equal(t, '╰', at(c, 0, 9))
	assert.Equal(t, '╯', at(c, 14, 9))
	assert.Equal(t, "│n1           │     ", row(c, 1))
	assert.Equal(t, '├', at(c, 0, 2))
	assert.Equal(t, "│Prompt       │     ", row(c, 3))
	assert.Equal(t, '●', at(c, 0, 5), "anchor on the divider")
	assert.Equal(t, '●', at(c, 14, 5))
	assert.Equal(t, "│Response     │     ", row(c, 6))
	assert.Equal(t, canvas.StyleHeader, c.Cell(1, 1).Style)
}

func TestSceneHighlightsSelection(t *testing.T) {
	g := diagram.NewGraph(sequentialIDs())
	h := g.AddNode(0, 0)
	g.Select(h, false)

	c := canvas.NewMatrixCanvas(16, 10)
	NewScene().Draw(c, g)
	assert.Equal(t, '╔', at(c, 0, 0))
	assert.Equal(t, canvas.StyleSelected, c.Cell(0, 0).Style)

	s := NewScene()
	s.HighlightSelection = false
	c.Clear()
	s.Draw(c, g)
	assert.Equal(t, '╭', at(c, 0, 0))
}

func TestSceneDrawsConnection(t *testing.T) {
	g := diagram.NewGraph(sequentialIDs())
	a := g.AddNode(0, 0)
	b := g.AddNode(200, 0)
	require.True(t, g.Connect(a, b))

	c := canvas.NewMatrixCanvas(42, 10)
	NewScene().Draw(c, g)

	for x := 15; x < 24; x++ {
		assert.Equal(t, '─', at(c, x, 5), "column %d", x)
	}
	assert.Equal(t, '▶', at(c, 24, 5))
	assert.Equal(t, '●', at(c, 25, 5))
	assert.Equal(t, canvas.StyleConnection, c.Cell(20, 5).Style)
}

func TestSceneDrawsSelfLoopAroundNode(t *testing.T) {
	g := diagram.NewGraph(sequentialIDs())
	h := g.AddNode(16, 32)
	require.True(t, g.Connect(h, h))

	c := canvas.NewMatrixCanvas(20, 14)
	NewScene().Draw(c, g)

	assert.Equal(t, '╯', at(c, 18, 7))
	assert.Equal(t, '╮', at(c, 18, 1))
	assert.Equal(t, '╭', at(c, 0, 1))
	assert.Equal(t, '╰', at(c, 0, 7))
	assert.Equal(t, '▶', at(c, 1, 7))
}

func TestSceneASCII(t *testing.T) {
	g := diagram.NewGraph(sequentialIDs())
	g.AddNode(0, 0)

	s := NewScene()
	s.ASCII = true
	c := canvas.NewMatrixCanvas(16, 10)
	s.Draw(c, g)

	assert.Equal(t, '+', at(c, 0, 0))
	assert.Equal(t, '-', at(c, 1, 0))
	assert.Equal(t, 'o', at(c, 0, 5))
	assert.NotContains(t, c.String(), "─")
}
