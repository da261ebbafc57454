// Package diagram contains the branching-dialogue graph model: nodes, their
// directed connections, the selection and hit-testing rules.
package diagram

// Default node dimensions in canvas pixels.
const (
	DefaultWidth  = 120
	DefaultHeight = 160

	DefaultPrompt   = "Prompt"
	DefaultResponse = "Response"
)

// Point represents a 2D coordinate on the canvas.
type Point struct {
	X, Y int
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns p translated by -q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Handle is a stable identity for a node within one Graph. It survives
// deletions of other nodes and edits of the user-visible ID.
type Handle uint64

// NoHandle is never assigned to a node.
const NoHandle Handle = 0

// Node is one dialogue step: a prompt shown as a choice and the response
// shown once it is picked.
type Node struct {
	handle Handle

	ID       string
	X        int
	Y        int
	Width    int
	Height   int
	Prompt   string
	Response string
}

// Handle returns the node's graph-local identity.
func (n Node) Handle() Handle {
	return n.handle
}

// Bounds returns the node's rectangle on the canvas.
func (n Node) Bounds() Bounds {
	return Bounds{
		Min: Point{X: n.X, Y: n.Y},
		Max: Point{X: n.X + n.Width, Y: n.Y + n.Height},
	}
}

// Contains reports whether p lies strictly inside the node once the node is
// translated by offset. Points on the border are outside.
func (n Node) Contains(p Point, offset Point) bool {
	return n.Bounds().Translate(offset).Interior(p)
}

// Divider returns the y coordinate separating the prompt and response
// sections, which is also where connection anchors sit.
func (n Node) Divider() int {
	return (n.Y + HeaderHeight + n.Y + n.Height) / 2
}

// HeaderHeight is the height of the id strip at the top of a node.
const HeaderHeight = 15

// NodeEdit carries the user-editable fields of a node.
type NodeEdit struct {
	ID       string
	Prompt   string
	Response string
}

// Bounds represents a rectangular area.
type Bounds struct {
	Min, Max Point
}

// Width returns the width of the bounds.
func (b Bounds) Width() int {
	return b.Max.X - b.Min.X
}

// Height returns the height of the bounds.
func (b Bounds) Height() int {
	return b.Max.Y - b.Min.Y
}

// Translate returns the bounds moved by offset.
func (b Bounds) Translate(offset Point) Bounds {
	return Bounds{Min: b.Min.Add(offset), Max: b.Max.Add(offset)}
}

// Contains checks if a point is within the bounds, min edges inclusive.
func (b Bounds) Contains(p Point) bool {
	return p.X >= b.Min.X && p.X < b.Max.X &&
		p.Y >= b.Min.Y && p.Y < b.Max.Y
}

// Interior checks if a point is strictly inside the bounds.
func (b Bounds) Interior(p Point) bool {
	return p.X > b.Min.X && p.X < b.Max.X &&
		p.Y > b.Min.Y && p.Y < b.Max.Y
}

// Union returns the smallest bounds covering b and o.
func (b Bounds) Union(o Bounds) Bounds {
	return Bounds{
		Min: Point{X: min(b.Min.X, o.Min.X), Y: min(b.Min.Y, o.Min.Y)},
		Max: Point{X: max(b.Max.X, o.Max.X), Y: max(b.Max.Y, o.Max.Y)},
	}
}
