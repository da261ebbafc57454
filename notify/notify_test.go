package notify

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"branch/canvas"
	"branch/diagram"
)

func newPixelQueue() *Queue {
	q := NewQueue(PixelLayout(canvas.FixedMeasure(8)))
	q.SetViewport(800, 600)
	return q
}

func titles(q *Queue) []string {
	var out []string
	for _, n := range q.Items() {
		out = append(out, n.Title)
	}
	return out
}

func TestPushSizesFromLayout(t *testing.T) {
	q := newPixelQueue()
	// 160px wrap width at 8px per rune: 20 runes per line.
	q.Push("Saved", strings.Repeat("word ", 8), Notice)

	items := q.Items()
	require.Len(t, items, 1)
	n := items[0]
	assert.Equal(t, Notice, n.Kind)
	assert.Len(t, n.Lines, 3)
	assert.Equal(t, 10+16+16*3, n.Height)
	assert.Zero(t, n.YOffset)
}

func TestRestackReversesOrder(t *testing.T) {
	q := newPixelQueue()
	q.Notice("A", "one")
	q.Notice("B", "two")
	assert.Equal(t, []string{"B", "A"}, titles(q))

	q.Error("C", "three")
	assert.Equal(t, []string{"C", "A", "B"}, titles(q))

	items := q.Items()
	h := items[0].Height
	assert.Equal(t, []int{0, h, 2 * h}, []int{items[0].YOffset, items[1].YOffset, items[2].YOffset})
	assert.Equal(t, Error, items[0].Kind)
}

func TestRect(t *testing.T) {
	q := newPixelQueue()
	q.Notice("A", "one")
	height := q.Items()[0].Height

	assert.Equal(t, diagram.Bounds{
		Min: diagram.Point{X: 590, Y: 600 - height - 10},
		Max: diagram.Point{X: 790, Y: 600},
	}, q.Rect(0))
	assert.Equal(t, 600-height-10+height, q.Box(0).Max.Y)
}

func TestDismissAt(t *testing.T) {
	q := newPixelQueue()
	q.Notice("A", "one")
	q.Notice("B", "two")
	q.Notice("C", "three")
	require.Equal(t, []string{"C", "A", "B"}, titles(q))

	t.Run("border is outside", func(t *testing.T) {
		r := q.Rect(1)
		assert.False(t, q.DismissAt(r.Min))
		assert.False(t, q.DismissAt(diagram.Point{X: r.Max.X, Y: r.Max.Y - 1}))
		assert.Equal(t, 3, q.Len())
	})

	t.Run("removes the hit and restacks", func(t *testing.T) {
		// The bottom margin of A's rectangle overlaps C's box, so aim high.
		r := q.Rect(1)
		assert.True(t, q.DismissAt(diagram.Point{X: r.Min.X + 5, Y: r.Min.Y + 14}))
		assert.Equal(t, []string{"B", "C"}, titles(q))
		items := q.Items()
		assert.Zero(t, items[0].YOffset)
		assert.Equal(t, items[0].Height, items[1].YOffset)
	})

	t.Run("miss", func(t *testing.T) {
		assert.False(t, q.DismissAt(diagram.Point{X: 10, Y: 10}))
		assert.Equal(t, 2, q.Len())
	})
}

func TestCellLayout(t *testing.T) {
	q := NewQueue(CellLayout(8, 16))
	q.SetViewport(80*8, 24*16)
	q.Error("Invalid JSON", "This is not a valid JSON file. It cannot be opened.")

	n := q.Items()[0]
	// 24 cells of text per line.
	assert.Equal(t, []string{"This is not a valid JSON", "file. It cannot be", " opened."}, n.Lines)
	assert.Equal(t, (2+1+3)*16, n.Height)

	box := q.Box(0)
	assert.Equal(t, 0, box.Min.X%8)
	assert.Equal(t, 0, box.Min.Y%16)
	assert.Equal(t, 23*16, box.Max.Y, "one row is left free at the bottom")
}

func TestItemsAreCopies(t *testing.T) {
	q := newPixelQueue()
	q.Notice("A", "one two")
	items := q.Items()
	items[0].Title = "changed"
	items[0].Lines[0] = "changed"
	assert.Equal(t, "A", q.Items()[0].Title)
	assert.Equal(t, "one two", q.Items()[0].Lines[0])
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "notice", Notice.String())
	assert.Equal(t, "error", Error.String())
	assert.Equal(t, "unknown", Kind(9).String())
}
