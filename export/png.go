package export

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"branch/canvas"
	"branch/diagram"
)

// DefaultFontSize is the node id size in points; bodies use 4pt less.
const DefaultFontSize = 12

const (
	gridStep    = 12
	textInset   = 3
	anchorSize  = 4
	bodyShrink  = 4
	minBodySize = 6
)

// Colors used in rendering
var (
	colorBackground = color.RGBA{128, 128, 128, 255}
	colorGridDark   = color.RGBA{44, 44, 44, 255}
	colorGridLight  = color.RGBA{91, 91, 91, 255}
	colorNode       = color.RGBA{255, 255, 255, 255}
	colorText       = color.RGBA{0, 0, 0, 255}
	colorOutline    = color.RGBA{0, 150, 0, 255}
	colorAnchor     = color.RGBA{0, 105, 0, 255}
	colorConnection = color.RGBA{0, 255, 255, 255}
)

// PNGExporter renders the canvas to an image sized to the nodes' bounding
// box, translated so the top-left node sits at the origin.
type PNGExporter struct {
	FontSize float64
}

// NewPNGExporter creates a PNG exporter. A non-positive size selects the
// default.
func NewPNGExporter(fontSize float64) *PNGExporter {
	if fontSize <= 0 {
		fontSize = DefaultFontSize
	}
	return &PNGExporter{FontSize: fontSize}
}

// FontMeasure measures strings in pixels with face.
func FontMeasure(face font.Face) canvas.MeasureFunc {
	return func(s string) int {
		return font.MeasureString(face, s).Ceil()
	}
}

// renderContext holds the target image and faces for one render.
type renderContext struct {
	img    *image.RGBA
	title  font.Face
	body   font.Face
	offset diagram.Point
}

func newFace(size float64) (font.Face, error) {
	fnt, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, err
	}
	return opentype.NewFace(fnt, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

// Export renders the graph and encodes it as PNG.
func (e *PNGExporter) Export(g *diagram.Graph) ([]byte, error) {
	img, err := e.Render(g)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// Render draws the graph onto a new image.
func (e *PNGExporter) Render(g *diagram.Graph) (*image.RGBA, error) {
	if err := checkGraph(g); err != nil {
		return nil, err
	}
	bounds, _ := g.Bounds()
	if bounds.Width() <= 0 || bounds.Height() <= 0 {
		return nil, fmt.Errorf("graph bounds are empty")
	}

	title, err := newFace(e.FontSize)
	if err != nil {
		return nil, fmt.Errorf("load font: %w", err)
	}
	defer title.Close()
	body, err := newFace(math.Max(e.FontSize-bodyShrink, minBodySize))
	if err != nil {
		return nil, fmt.Errorf("load font: %w", err)
	}
	defer body.Close()

	ctx := &renderContext{
		img:    image.NewRGBA(image.Rect(0, 0, bounds.Width(), bounds.Height())),
		title:  title,
		body:   body,
		offset: diagram.Point{X: -bounds.Min.X, Y: -bounds.Min.Y},
	}
	ctx.drawGrid()

	for _, n := range g.Nodes() {
		ctx.drawNode(n)
		for _, h := range g.Connections(n.Handle()) {
			if dest, ok := g.Node(h); ok {
				ctx.drawConnection(n, dest)
			}
		}
	}
	return ctx.img, nil
}

func (ctx *renderContext) drawGrid() {
	b := ctx.img.Bounds()
	draw.Draw(ctx.img, b, image.NewUniform(colorBackground), image.Point{}, draw.Src)
	dark := true
	for v := 0; v < max(b.Dx(), b.Dy()); v += gridStep {
		c := colorGridLight
		if dark {
			c = colorGridDark
		}
		ctx.hline(0, b.Dx(), v, c)
		ctx.vline(v, 0, b.Dy(), c)
		dark = !dark
	}
}

func (ctx *renderContext) drawNode(n diagram.Node) {
	x, y := n.X+ctx.offset.X, n.Y+ctx.offset.Y
	divider := n.Divider() + ctx.offset.Y
	rect := image.Rect(x, y, x+n.Width, y+n.Height)

	draw.Draw(ctx.img, rect, image.NewUniform(colorNode), image.Point{}, draw.Src)

	descent := ctx.title.Metrics().Descent.Ceil()
	ctx.text(ctx.title, x+textInset, y+diagram.HeaderHeight-descent, n.ID)

	lineHeight := ctx.body.Metrics().Height.Ceil()
	width := n.Width - 2*textInset
	ctx.paragraph(n.Prompt, x+textInset, y+diagram.HeaderHeight+lineHeight, width, lineHeight)
	ctx.paragraph(n.Response, x+textInset, divider+lineHeight, width, lineHeight)

	ctx.hline(x, x+n.Width, y+diagram.HeaderHeight, colorOutline)
	ctx.hline(x, x+n.Width, divider, colorOutline)
	ctx.hline(x, x+n.Width, y, colorOutline)
	ctx.hline(x, x+n.Width, y+n.Height, colorOutline)
	ctx.vline(x, y, y+n.Height, colorOutline)
	ctx.vline(x+n.Width, y, y+n.Height, colorOutline)

	ctx.dot(x, divider, colorAnchor)
	ctx.dot(x+n.Width, divider, colorAnchor)
}

func (ctx *renderContext) drawConnection(from, to diagram.Node) {
	x1 := from.X + from.Width + ctx.offset.X
	y1 := from.Divider() + ctx.offset.Y
	x2 := to.X + ctx.offset.X
	y2 := to.Divider() + ctx.offset.Y
	ctx.line(float64(x1), float64(y1), float64(x2), float64(y2), colorConnection)
}

// paragraph wraps text to width and draws at most MaxDisplayLines lines
// starting at baseline y.
func (ctx *renderContext) paragraph(text string, x, y, width, lineHeight int) {
	lines := canvas.Clamp(canvas.Wrap(text, width, FontMeasure(ctx.body)), canvas.MaxDisplayLines)
	for _, line := range lines {
		ctx.text(ctx.body, x, y, line)
		y += lineHeight
	}
}

func (ctx *renderContext) text(face font.Face, x, baseline int, s string) {
	d := &font.Drawer{
		Dst:  ctx.img,
		Src:  image.NewUniform(colorText),
		Face: face,
		Dot:  fixed.P(x, baseline),
	}
	d.DrawString(s)
}

func (ctx *renderContext) hline(x1, x2, y int, c color.Color) {
	for x := x1; x <= x2; x++ {
		ctx.img.Set(x, y, c)
	}
}

func (ctx *renderContext) vline(x, y1, y2 int, c color.Color) {
	for y := y1; y <= y2; y++ {
		ctx.img.Set(x, y, c)
	}
}

func (ctx *renderContext) dot(cx, cy int, c color.Color) {
	for dy := -anchorSize; dy <= anchorSize; dy++ {
		for dx := -anchorSize; dx <= anchorSize; dx++ {
			if dx*dx+dy*dy <= anchorSize*anchorSize {
				ctx.img.Set(cx+dx, cy+dy, c)
			}
		}
	}
}

// line steps along the longer axis one pixel at a time.
func (ctx *renderContext) line(x1, y1, x2, y2 float64, c color.Color) {
	dx, dy := x2-x1, y2-y1
	steps := math.Max(math.Abs(dx), math.Abs(dy))
	if steps < 1 {
		ctx.img.Set(int(x1), int(y1), c)
		return
	}
	for i := 0.0; i <= steps; i++ {
		t := i / steps
		ctx.img.Set(int(math.Round(x1+dx*t)), int(math.Round(y1+dy*t)), c)
	}
}

// GetFileExtension returns the recommended file extension
func (e *PNGExporter) GetFileExtension() string {
	return ".png"
}

// GetFormatName returns the format name
func (e *PNGExporter) GetFormatName() string {
	return "PNG"
}
