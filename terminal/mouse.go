package terminal

import (
	"time"

	"github.com/gdamore/tcell/v2"

	"branch/diagram"
)

// handleMouse turns tcell's button masks into press, drag, release and
// click gestures. Releases report no buttons, so the press state is kept
// here.
func (a *App) handleMouse(ev *tcell.EventMouse) {
	if a.mode == modeHelp {
		if ev.Buttons()&tcell.Button1 != 0 {
			a.mode = modeCanvas
		}
		return
	}
	if a.mode != modeCanvas {
		return
	}

	a.syncViewport()
	x, y := ev.Position()
	cell := diagram.Point{X: x, Y: y}
	p := a.pixel(x, y)
	buttons := ev.Buttons()

	switch {
	case buttons&tcell.WheelUp != 0:
		a.pan(0, a.scene.CellHeight)
	case buttons&tcell.WheelDown != 0:
		a.pan(0, -a.scene.CellHeight)
	case buttons&tcell.WheelLeft != 0:
		a.pan(a.scene.CellWidth, 0)
	case buttons&tcell.WheelRight != 0:
		a.pan(-a.scene.CellWidth, 0)

	case buttons&tcell.Button1 != 0 && !a.buttonDown:
		a.buttonDown = true
		a.moved = false
		a.lastCell = cell
		if a.onNotification(p) {
			a.ed.PointerMove(p.X, p.Y)
			return
		}
		a.ed.PointerDown(p.X, p.Y)

	case buttons&tcell.Button1 != 0:
		if cell == a.lastCell {
			return
		}
		a.moved = true
		a.lastCell = cell
		a.ed.PointerDrag(p.X, p.Y)

	case a.buttonDown:
		a.buttonDown = false
		a.ed.PointerUp()
		if !a.moved {
			a.click(cell, p, ev.Modifiers()&tcell.ModShift != 0)
		}

	default:
		a.ed.PointerMove(p.X, p.Y)
	}
}

// click reports a press and release without movement. A second click on
// the same cell within DoubleClickInterval is a double click; a third
// starts over.
func (a *App) click(cell, p diagram.Point, additive bool) {
	now := a.now()
	clicks := 1
	if !a.lastClick.IsZero() && cell == a.clickCell && now.Sub(a.lastClick) <= DoubleClickInterval {
		clicks = 2
	}
	a.clickCell = cell
	a.lastClick = now
	if clicks == 2 {
		a.lastClick = time.Time{}
	}
	a.handleResult(a.ed.Click(p.X, p.Y, clicks, additive))
}

func (a *App) onNotification(p diagram.Point) bool {
	q := a.ed.Notifications()
	for i := range q.Len() {
		if q.Rect(i).Interior(p) {
			return true
		}
	}
	return false
}
