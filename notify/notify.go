// Package notify keeps the stack of dismissible messages shown in the
// bottom-right corner of the editor.
package notify

import (
	"slices"

	"branch/canvas"
	"branch/diagram"
)

// Kind distinguishes informational notices from errors.
type Kind int

const (
	Notice Kind = iota
	Error
)

func (k Kind) String() string {
	switch k {
	case Notice:
		return "notice"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Notification is one message. Lines and Height are derived from the
// queue's layout when the message is pushed.
type Notification struct {
	Title   string
	Body    string
	Kind    Kind
	Lines   []string
	Height  int
	YOffset int
}

// Layout holds the metrics used to size and place notifications. All
// values are in viewport pixels.
type Layout struct {
	Width       int
	MarginX     int // gap between the box and the right edge
	MarginY     int // gap between the box and the bottom of its slot
	Padding     int // vertical space added to the text
	Inset       int // horizontal space taken from Width before wrapping
	TitleHeight int
	LineHeight  int
	Measure     canvas.MeasureFunc
}

// PixelLayout returns the metrics of the original desktop window: a 200
// pixel wide box, 10 pixels from the edges, bodies wrapped at 160 pixels.
func PixelLayout(measure canvas.MeasureFunc) Layout {
	return Layout{
		Width:       200,
		MarginX:     10,
		MarginY:     10,
		Padding:     10,
		Inset:       40,
		TitleHeight: 16,
		LineHeight:  16,
		Measure:     measure,
	}
}

// CellLayout returns metrics aligned to a character grid of cw×ch pixel
// cells: a bordered box one row above the bottom edge, with the title and
// each body line on their own row.
func CellLayout(cw, ch int) Layout {
	return Layout{
		Width:       28 * cw,
		MarginX:     cw,
		MarginY:     ch,
		Padding:     2 * ch,
		Inset:       4 * cw,
		TitleHeight: ch,
		LineHeight:  ch,
		Measure:     canvas.CellMeasure(cw),
	}
}

// Queue is the ordered set of visible notifications.
type Queue struct {
	layout   Layout
	items    []*Notification
	viewport diagram.Point
}

// NewQueue creates an empty queue.
func NewQueue(layout Layout) *Queue {
	if layout.Measure == nil {
		layout.Measure = canvas.FixedMeasure(7)
	}
	return &Queue{layout: layout}
}

// Layout returns the queue's metrics.
func (q *Queue) Layout() Layout {
	return q.layout
}

// SetViewport records the size of the area notifications are anchored to.
func (q *Queue) SetViewport(width, height int) {
	q.viewport = diagram.Point{X: width, Y: height}
}

// Push appends a message and restacks the queue.
func (q *Queue) Push(title, body string, kind Kind) {
	lines := canvas.Wrap(body, q.layout.Width-q.layout.Inset, q.layout.Measure)
	q.items = append(q.items, &Notification{
		Title:  title,
		Body:   body,
		Kind:   kind,
		Lines:  lines,
		Height: q.layout.Padding + q.layout.TitleHeight + q.layout.LineHeight*len(lines),
	})
	q.restack()
}

// Notice pushes an informational message.
func (q *Queue) Notice(title, body string) {
	q.Push(title, body, Notice)
}

// Error pushes an error message.
func (q *Queue) Error(title, body string) {
	q.Push(title, body, Error)
}

// DismissAt removes the first notification, in stored order, whose
// rectangle strictly contains p. Remaining notifications are restacked.
func (q *Queue) DismissAt(p diagram.Point) bool {
	for i := range q.items {
		if q.Rect(i).Interior(p) {
			q.items = slices.Delete(q.items, i, i+1)
			q.restack()
			return true
		}
	}
	return false
}

// Clear removes every notification.
func (q *Queue) Clear() {
	q.items = nil
}

// Len returns the number of notifications.
func (q *Queue) Len() int {
	return len(q.items)
}

// Items returns copies of the notifications in stored order.
func (q *Queue) Items() []Notification {
	out := make([]Notification, len(q.items))
	for i, n := range q.items {
		out[i] = *n
		out[i].Lines = slices.Clone(n.Lines)
	}
	return out
}

// Rect returns the clickable area of notification i: its box plus the
// bottom margin below it.
func (q *Queue) Rect(i int) diagram.Bounds {
	n := q.items[i]
	right := q.viewport.X - q.layout.MarginX
	bottom := q.viewport.Y - n.YOffset
	return diagram.Bounds{
		Min: diagram.Point{X: right - q.layout.Width, Y: bottom - n.Height - q.layout.MarginY},
		Max: diagram.Point{X: right, Y: bottom},
	}
}

// Box returns the drawn rectangle of notification i.
func (q *Queue) Box(i int) diagram.Bounds {
	r := q.Rect(i)
	r.Max.Y = r.Min.Y + q.items[i].Height
	return r
}

// restack reverses the stored order in place, then stacks the
// notifications upwards from the bottom edge in that order. The reversal
// persists, so repeated pushes and dismissals alternate the order.
func (q *Queue) restack() {
	slices.Reverse(q.items)
	offset := 0
	for _, n := range q.items {
		n.YOffset = offset
		offset += n.Height
	}
}
