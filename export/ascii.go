package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/fatih/color"

	"branch/canvas"
	"branch/diagram"
	"branch/render"
)

// TextExporter draws the graph as box art the way the terminal editor
// shows it, without selection highlighting.
type TextExporter struct {
	scene  render.Scene
	colors map[canvas.Style]*color.Color
}

// NewTextExporter creates a text exporter. With colored set, cells are
// wrapped in ANSI escapes regardless of the output being a terminal.
func NewTextExporter(ascii, colored bool) *TextExporter {
	scene := render.NewScene()
	scene.ASCII = ascii
	scene.HighlightSelection = false

	e := &TextExporter{scene: scene}
	if colored {
		e.colors = map[canvas.Style]*color.Color{
			canvas.StyleBorder:     color.New(color.FgGreen),
			canvas.StyleHeader:     color.New(color.Bold),
			canvas.StyleConnection: color.New(color.FgCyan),
		}
		for _, c := range e.colors {
			c.EnableColor()
		}
	}
	return e
}

// Export converts the graph to text
func (e *TextExporter) Export(g *diagram.Graph) ([]byte, error) {
	if err := checkGraph(g); err != nil {
		return nil, err
	}

	bounds, _ := g.Bounds()
	scene := e.scene
	// Leave room for self loops, which route one row above and two
	// columns left of their node.
	scene.Offset = diagram.Point{
		X: -bounds.Min.X + 2*scene.CellWidth,
		Y: -bounds.Min.Y + scene.CellHeight,
	}
	corner := scene.CellOf(bounds.Max)
	c := canvas.NewMatrixCanvas(corner.X+3, corner.Y+2)
	if c == nil {
		return nil, fmt.Errorf("graph too small to draw")
	}
	scene.Draw(c, g)

	var out string
	if e.colors == nil {
		out = c.String()
	} else {
		out = e.colored(c)
	}
	return []byte(trimRight(out) + "\n"), nil
}

// colored emits the canvas grouping runs of equally styled cells.
func (e *TextExporter) colored(c *canvas.MatrixCanvas) string {
	var buf bytes.Buffer
	w, h := c.Size()
	for y := 0; y < h; y++ {
		var run strings.Builder
		style := canvas.StyleDefault
		flush := func() {
			if run.Len() == 0 {
				return
			}
			if col, ok := e.colors[style]; ok {
				buf.WriteString(col.Sprint(run.String()))
			} else {
				buf.WriteString(run.String())
			}
			run.Reset()
		}
		for x := 0; x < w; x++ {
			cell := c.Cell(x, y)
			if cell.Rune == 0 {
				continue
			}
			if cell.Style != style {
				flush()
				style = cell.Style
			}
			run.WriteRune(cell.Rune)
		}
		flush()
		if y < h-1 {
			buf.WriteByte('\n')
		}
	}
	return buf.String()
}

func trimRight(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " ")
	}
	return strings.TrimRight(strings.Join(lines, "\n"), "\n")
}

// GetFileExtension returns the recommended file extension
func (e *TextExporter) GetFileExtension() string {
	return ".txt"
}

// GetFormatName returns the format name
func (e *TextExporter) GetFormatName() string {
	return "Text"
}
