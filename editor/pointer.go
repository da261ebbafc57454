package editor

import "branch/diagram"

// PointerMove records the pointer position used by add-node.
func (e *Editor) PointerMove(x, y int) {
	e.pointer = diagram.Point{X: x, Y: y}
}

// PointerDown grabs the first node under the pointer. Over empty canvas the
// following drags pan the view instead.
func (e *Editor) PointerDown(x, y int) {
	p := diagram.Point{X: x, Y: y}
	e.pointer = p
	e.grabbed = diagram.NoHandle

	h, ok := e.graph.HitTest(p, e.offset)
	if !ok {
		return
	}
	n, _ := e.graph.Node(h)
	e.grabbed = h
	e.grabOffset = p.Sub(e.offset).Sub(diagram.Point{X: n.X, Y: n.Y})
}

// PointerDrag moves the grabbed node so the point it was grabbed at stays
// under the pointer, or pans the canvas by the pointer's movement.
func (e *Editor) PointerDrag(x, y int) {
	p := diagram.Point{X: x, Y: y}
	if e.grabbed != diagram.NoHandle {
		at := p.Sub(e.offset).Sub(e.grabOffset)
		if e.graph.MoveNode(e.grabbed, at.X, at.Y) {
			e.pointer = p
			return
		}
		e.grabbed = diagram.NoHandle
	}
	e.offset = e.offset.Add(p.Sub(e.pointer))
	e.pointer = p
}

// PointerUp releases the grabbed node.
func (e *Editor) PointerUp() {
	e.grabbed = diagram.NoHandle
}

// Dragging returns the node being moved, if any.
func (e *Editor) Dragging() (diagram.Handle, bool) {
	return e.grabbed, e.grabbed != diagram.NoHandle
}

// Click handles a completed click. A click on a notification only dismisses
// it. Otherwise one click selects the node under the pointer (appending
// when additive) and clears the selection over empty canvas; a double
// click asks for the node under the pointer to be edited.
func (e *Editor) Click(x, y, clicks int, additive bool) Result {
	p := diagram.Point{X: x, Y: y}
	if e.notes.DismissAt(p) {
		return Result{}
	}

	switch clicks {
	case 1:
		e.graph.SelectAt(p, e.offset, additive)
	case 2:
		if h, ok := e.graph.HitTest(p, e.offset); ok {
			return Result{Kind: ResultEditNode, Node: h}
		}
	}
	return Result{}
}
