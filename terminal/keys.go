package terminal

import (
	"path/filepath"
	"strings"
	"unicode"

	"github.com/gdamore/tcell/v2"

	"branch/diagram"
	"branch/editor"
)

// prompt asks for a single line, usually a file path.
type prompt struct {
	kind  editor.ResultKind
	label string
	input *editor.TextInput
}

// Node form fields.
const (
	fieldID = iota
	fieldPrompt
	fieldResponse
	fieldCount
)

var fieldLabels = [fieldCount]string{"ID", "Prompt", "Response"}

// nodeForm edits the text of one node.
type nodeForm struct {
	node   diagram.Handle
	fields [fieldCount]*editor.TextInput
	focus  int
}

func (a *App) handleKey(ev *tcell.EventKey) {
	if ev.Key() == tcell.KeyCtrlC {
		a.quit = true
		return
	}

	switch a.mode {
	case modeCanvas:
		a.handleCanvasKey(ev)
	case modePrompt:
		a.handlePromptKey(ev)
	case modeForm:
		a.handleFormKey(ev)
	case modeHelp:
		a.mode = modeCanvas
	case modeConfirmQuit:
		a.handleConfirmKey(ev)
	}
}

func (a *App) handleCanvasKey(ev *tcell.EventKey) {
	cw, ch := a.scene.CellWidth, a.scene.CellHeight

	switch ev.Key() {
	case tcell.KeyEsc:
		a.ed.Graph().ClearSelection()
		return
	case tcell.KeyDelete, tcell.KeyBackspace, tcell.KeyBackspace2:
		a.handleResult(a.ed.Execute(editor.CommandDelete))
		return
	case tcell.KeyLeft:
		a.pan(cw, 0)
		return
	case tcell.KeyRight:
		a.pan(-cw, 0)
		return
	case tcell.KeyUp:
		a.pan(0, ch)
		return
	case tcell.KeyDown:
		a.pan(0, -ch)
		return
	}

	key, mod, ok := commandKey(ev)
	if !ok {
		return
	}
	a.handleResult(a.ed.HandleKey(key, mod))
}

func (a *App) pan(dx, dy int) {
	a.ed.SetOffset(a.ed.Offset().Add(diagram.Point{X: dx, Y: dy}))
}

// commandKey converts a key event to the rune and modifiers the editor
// maps to commands. Ctrl, Alt and Meta all count as the primary modifier
// since terminals report Cmd in different ways.
func commandKey(ev *tcell.EventKey) (rune, editor.Modifier, bool) {
	mods := ev.Modifiers()
	shift := editor.ModNone
	if mods&tcell.ModShift != 0 {
		shift = editor.ModShift
	}

	switch k := ev.Key(); {
	case k == tcell.KeyEnter:
		return '\r', editor.ModNone, true
	case k == tcell.KeyRune:
		r := ev.Rune()
		if mods&(tcell.ModCtrl|tcell.ModAlt|tcell.ModMeta) == 0 {
			return r, editor.ModNone, true
		}
		if unicode.IsUpper(r) {
			shift = editor.ModShift
		}
		return unicode.ToLower(r), editor.ModPrimary | shift, true
	case k >= tcell.KeyCtrlA && k <= tcell.KeyCtrlZ:
		return 'a' + rune(k-tcell.KeyCtrlA), editor.ModPrimary | shift, true
	}
	return 0, editor.ModNone, false
}

func (a *App) openPrompt(kind editor.ResultKind, label, value string) {
	a.prompt = &prompt{kind: kind, label: label, input: editor.NewTextInput(value, false)}
	a.mode = modePrompt
}

func (a *App) handlePromptKey(ev *tcell.EventKey) {
	p := a.prompt
	switch ev.Key() {
	case tcell.KeyEsc:
		a.closePrompt()
	case tcell.KeyEnter:
		a.closePrompt()
		a.finishPrompt(p.kind, strings.TrimSpace(p.input.String()))
	default:
		editText(p.input, ev)
	}
}

func (a *App) closePrompt() {
	a.prompt = nil
	a.mode = modeCanvas
}

func (a *App) openForm(h diagram.Handle) {
	n, ok := a.ed.Graph().Node(h)
	if !ok {
		return
	}
	a.form = &nodeForm{
		node: h,
		fields: [fieldCount]*editor.TextInput{
			editor.NewTextInput(n.ID, false),
			editor.NewTextInput(n.Prompt, true),
			editor.NewTextInput(n.Response, true),
		},
	}
	a.mode = modeForm
}

func (a *App) handleFormKey(ev *tcell.EventKey) {
	f := a.form
	switch ev.Key() {
	case tcell.KeyEsc:
		a.closeForm()
	case tcell.KeyCtrlS:
		edit := diagram.NodeEdit{
			ID:       f.fields[fieldID].String(),
			Prompt:   f.fields[fieldPrompt].String(),
			Response: f.fields[fieldResponse].String(),
		}
		a.closeForm()
		_ = a.ed.EditNode(f.node, edit)
	case tcell.KeyTab:
		f.focus = (f.focus + 1) % fieldCount
	case tcell.KeyBacktab:
		f.focus = (f.focus + fieldCount - 1) % fieldCount
	case tcell.KeyEnter:
		if f.focus == fieldID {
			f.focus = fieldPrompt
			return
		}
		f.fields[f.focus].Insert('\n')
	default:
		editText(f.fields[f.focus], ev)
	}
}

func (a *App) closeForm() {
	a.form = nil
	a.mode = modeCanvas
}

func (a *App) handleConfirmKey(ev *tcell.EventKey) {
	if ev.Key() == tcell.KeyEsc {
		a.mode = modeCanvas
		return
	}
	if ev.Key() != tcell.KeyRune {
		return
	}
	switch unicode.ToLower(ev.Rune()) {
	case 'y':
		a.quit = true
	case 's':
		if a.ed.SaveFile(a.ed.Path()) == nil {
			a.quit = true
			return
		}
		a.mode = modeCanvas
	case 'n':
		a.mode = modeCanvas
	}
}

// editText applies the common line-editing keys to t.
func editText(t *editor.TextInput, ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyRune:
		if ev.Modifiers()&tcell.ModAlt != 0 {
			switch ev.Rune() {
			case 'b':
				t.WordLeft()
			case 'f':
				t.WordRight()
			}
			return
		}
		t.Insert(ev.Rune())
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if ev.Modifiers()&tcell.ModAlt != 0 {
			t.DeleteWordBackward()
			return
		}
		t.Backspace()
	case tcell.KeyDelete:
		t.Delete()
	case tcell.KeyLeft:
		if ev.Modifiers()&tcell.ModCtrl != 0 {
			t.WordLeft()
			return
		}
		t.Left()
	case tcell.KeyRight:
		if ev.Modifiers()&tcell.ModCtrl != 0 {
			t.WordRight()
			return
		}
		t.Right()
	case tcell.KeyHome, tcell.KeyCtrlA:
		t.Home()
	case tcell.KeyEnd, tcell.KeyCtrlE:
		t.End()
	case tcell.KeyCtrlW:
		t.DeleteWordBackward()
	case tcell.KeyCtrlU:
		t.DeleteToLineStart()
	case tcell.KeyCtrlK:
		t.DeleteToLineEnd()
	}
}

// imagePath suggests a PNG path next to the open file.
func imagePath(path string) string {
	if path == "" {
		return "story.png"
	}
	return strings.TrimSuffix(path, filepath.Ext(path)) + ".png"
}

func absPath(path string) (string, error) {
	return filepath.Abs(path)
}
