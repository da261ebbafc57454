package terminal

import (
	"strings"

	"github.com/gdamore/tcell/v2"

	"branch/canvas"
	"branch/editor"
	"branch/notify"
)

var styles = map[canvas.Style]tcell.Style{
	canvas.StyleDefault:    tcell.StyleDefault,
	canvas.StyleBorder:     tcell.StyleDefault.Foreground(tcell.ColorGreen),
	canvas.StyleSelected:   tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true),
	canvas.StyleHeader:     tcell.StyleDefault.Bold(true),
	canvas.StyleConnection: tcell.StyleDefault.Foreground(tcell.ColorTeal),
	canvas.StyleNotice:     tcell.StyleDefault.Foreground(tcell.ColorBlue),
	canvas.StyleError:      tcell.StyleDefault.Foreground(tcell.ColorRed),
	canvas.StyleMuted:      tcell.StyleDefault.Foreground(tcell.ColorGray),
}

var statusStyle = tcell.StyleDefault.Reverse(true)

const (
	canvasHints  = "A add  C connect  D disconnect  X delete  E edit  H help"
	formHints    = "Tab next field  Ctrl+S apply  Esc cancel"
	confirmHints = "Unsaved changes. Quit anyway? [y]es  [s]ave and quit  [n]o"
)

// syncViewport anchors notifications to the canvas area in pixels.
func (a *App) syncViewport() {
	w, h := a.viewport()
	a.ed.Notifications().SetViewport(w*a.scene.CellWidth, h*a.scene.CellHeight)
}

// Draw paints the graph, notifications, overlays and the status line.
func (a *App) Draw() {
	a.syncViewport()
	w, h := a.viewport()

	c := canvas.NewMatrixCanvas(w, h)
	if c == nil {
		return
	}
	scene := a.scene
	scene.Offset = a.ed.Offset()
	scene.Draw(c, a.ed.Graph())
	a.drawNotifications(c)

	switch a.mode {
	case modeHelp:
		a.drawHelp(c)
	case modeForm:
		a.drawForm(c)
	}

	a.blit(c)
	a.drawStatus(w, h)
}

func (a *App) boxStyle() canvas.BoxStyle {
	if a.scene.ASCII {
		return canvas.SimpleBoxStyle
	}
	return canvas.RoundedBoxStyle
}

func (a *App) drawNotifications(c *canvas.MatrixCanvas) {
	q := a.ed.Notifications()
	cw, ch := a.scene.CellWidth, a.scene.CellHeight

	for i, n := range q.Items() {
		b := q.Box(i)
		x, y := b.Min.X/cw, b.Min.Y/ch
		width, height := (b.Max.X-b.Min.X)/cw, (b.Max.Y-b.Min.Y)/ch

		style := canvas.StyleNotice
		if n.Kind == notify.Error {
			style = canvas.StyleError
		}
		c.Fill(x, y, width, height, canvas.StyleDefault)
		_ = c.DrawBox(x, y, width, height, a.boxStyle(), style)
		c.DrawText(x+2, y+1, canvas.FitText(n.Title, width-4, "…"), canvas.StyleHeader)
		for j, line := range n.Lines {
			c.DrawText(x+2, y+2+j, line, canvas.StyleDefault)
		}
	}
}

// overlay draws a centred, cleared box and returns its inner origin and
// width.
func (a *App) overlay(c *canvas.MatrixCanvas, title string, width, height int) (int, int, int) {
	cw, chh := c.Size()
	width = min(width, cw-2)
	height = min(height, chh-2)
	x, y := max((cw-width)/2, 0), max((chh-height)/2, 0)

	c.Fill(x, y, width, height, canvas.StyleDefault)
	_ = c.DrawBox(x, y, width, height, a.boxStyle(), canvas.StyleBorder)
	c.DrawText(x+2, y, " "+title+" ", canvas.StyleHeader)
	return x + 2, y + 1, width - 4
}

func (a *App) drawHelp(c *canvas.MatrixCanvas) {
	lines := strings.Split(strings.TrimRight(editor.HelpText(), "\n"), "\n")[1:]
	width := 0
	for _, l := range lines {
		width = max(width, canvas.StringWidth(l))
	}

	x, y, inner := a.overlay(c, "Help", width+4, len(lines)+2)
	for i, l := range lines {
		style := canvas.StyleDefault
		if !strings.HasPrefix(l, " ") {
			style = canvas.StyleHeader
		}
		c.DrawText(x, y+i, canvas.FitText(l, inner, "…"), style)
	}
}

// formRows returns the rows each field takes: a label and its text lines.
func (f *nodeForm) formRows() int {
	rows := 0
	for _, field := range f.fields {
		rows += 1 + len(field.Lines())
	}
	return rows
}

func (a *App) drawForm(c *canvas.MatrixCanvas) {
	f := a.form
	x, y, inner := a.overlay(c, "Edit node", 60, f.formRows()+2)
	_, limit := c.Size()

	row := y
	for i, field := range f.fields {
		style := canvas.StyleMuted
		if i == f.focus {
			style = canvas.StyleSelected
		}
		c.DrawText(x, row, fieldLabels[i]+":", style)
		row++
		for _, line := range field.Lines() {
			if row >= limit-1 {
				return
			}
			c.DrawText(x+1, row, canvas.FitText(line, inner-1, "…"), canvas.StyleDefault)
			row++
		}
	}
}

// formCursor returns the screen position of the focused field's cursor.
func (a *App) formCursor(c *canvas.MatrixCanvas) (int, int) {
	f := a.form
	cw, chh := c.Size()
	width := min(60, cw-2)
	height := min(f.formRows()+2, chh-2)
	x, y := max((cw-width)/2, 0)+2, max((chh-height)/2, 0)+1

	for i := 0; i < f.focus; i++ {
		y += 1 + len(f.fields[i].Lines())
	}
	line, col := f.fields[f.focus].Position()
	text := []rune(f.fields[f.focus].Lines()[line])
	return x + 1 + canvas.StringWidth(string(text[:col])), y + 1 + line
}

// blit copies the canvas onto the screen. Continuation cells of wide runes
// hold 0 and are left to the rune before them.
func (a *App) blit(c *canvas.MatrixCanvas) {
	w, h := c.Size()
	for y := range h {
		for x := range w {
			cell := c.Cell(x, y)
			if cell.Rune == 0 {
				continue
			}
			a.screen.SetContent(x, y, cell.Rune, nil, styles[cell.Style])
		}
	}

	a.screen.HideCursor()
	if a.mode == modeForm {
		cx, cy := a.formCursor(c)
		a.screen.ShowCursor(cx, cy)
	}
}

// canvasStatus puts the title ahead of the key hints. Narrow screens get
// the title without the application name, or the hints alone.
func canvasStatus(title string, w int) string {
	const sep = "  |  "
	hints := canvas.StringWidth(sep + canvasHints)
	if canvas.StringWidth(title)+hints <= w {
		return title + sep + canvasHints
	}
	short := strings.TrimPrefix(title, editor.AppTitle+" - ")
	if canvas.StringWidth(short)+hints <= w {
		return short + sep + canvasHints
	}
	return canvasHints
}

func (a *App) drawStatus(w, row int) {
	var text string
	switch a.mode {
	case modePrompt:
		text = a.prompt.label + a.prompt.input.String()
	case modeForm:
		text = formHints
	case modeConfirmQuit:
		text = confirmHints
	case modeHelp:
		text = "Press any key to close help"
	default:
		text = canvasStatus(a.ed.Title(), w)
	}

	x := 0
	for _, r := range text {
		if x >= w {
			break
		}
		a.screen.SetContent(x, row, r, nil, statusStyle)
		x += max(canvas.StringWidth(string(r)), 1)
	}
	for ; x < w; x++ {
		a.screen.SetContent(x, row, ' ', nil, statusStyle)
	}

	if a.mode == modePrompt {
		runes := []rune(a.prompt.input.String())
		cx := canvas.StringWidth(a.prompt.label) + canvas.StringWidth(string(runes[:a.prompt.input.Cursor()]))
		a.screen.ShowCursor(min(cx, w-1), row)
	}
}
