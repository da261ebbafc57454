package terminal

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"branch/diagram"
	"branch/editor"
	"branch/notify"
	"branch/render"
)

func sequentialIDs() diagram.IDGenerator {
	n := 0
	return diagram.IDGeneratorFunc(func() string {
		n++
		return fmt.Sprintf("n%d", n)
	})
}

// newTestApp returns an app on an 80x25 simulation screen with node "a"
// covering cells (10,2) to (25,12).
func newTestApp(t *testing.T) (*App, tcell.SimulationScreen) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	t.Cleanup(screen.Fini)
	screen.SetSize(80, 25)

	g := diagram.NewGraph(sequentialIDs())
	g.Insert(diagram.Node{ID: "a", X: 80, Y: 32, Width: 120, Height: 160, Prompt: "Hello", Response: "Hi"})
	g.MarkSaved()

	ed := editor.New(g, editor.Options{
		Notifications: notify.NewQueue(notify.CellLayout(render.DefaultCellWidth, render.DefaultCellHeight)),
	})
	return New(screen, ed, Options{Scene: render.NewScene()}), screen
}

func key(r rune) *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)
}

func ctrl(k tcell.Key) *tcell.EventKey {
	return tcell.NewEventKey(k, 0, tcell.ModCtrl)
}

func typeText(a *App, text string) {
	for _, r := range text {
		a.HandleEvent(key(r))
	}
}

func press(a *App, x, y int) {
	a.HandleEvent(tcell.NewEventMouse(x, y, tcell.Button1, tcell.ModNone))
}

func release(a *App, x, y int) {
	a.HandleEvent(tcell.NewEventMouse(x, y, tcell.ButtonNone, tcell.ModNone))
}

func clickCell(a *App, x, y int) {
	press(a, x, y)
	release(a, x, y)
}

// screenText returns the screen contents, one string per row.
func screenText(s tcell.SimulationScreen) []string {
	cells, w, h := s.GetContents()
	rows := make([]string, h)
	for y := range h {
		var b strings.Builder
		for x := range w {
			runes := cells[y*w+x].Runes
			if len(runes) == 0 {
				b.WriteRune(' ')
				continue
			}
			b.WriteRune(runes[0])
		}
		rows[y] = b.String()
	}
	return rows
}

func show(a *App, s tcell.SimulationScreen) string {
	a.Draw()
	s.Show()
	return strings.Join(screenText(s), "\n")
}

func nodeA(t *testing.T, a *App) diagram.Node {
	t.Helper()
	n, ok := a.Editor().Graph().NodeByID("a")
	require.True(t, ok)
	return n
}

func TestCommandKey(t *testing.T) {
	tests := []struct {
		name    string
		ev      *tcell.EventKey
		wantKey rune
		wantMod editor.Modifier
		wantOK  bool
	}{
		{"plain rune", key('a'), 'a', editor.ModNone, true},
		{"enter", tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone), '\r', editor.ModNone, true},
		{"ctrl key", ctrl(tcell.KeyCtrlS), 's', editor.ModPrimary, true},
		{"ctrl shift key", tcell.NewEventKey(tcell.KeyCtrlS, 0, tcell.ModCtrl|tcell.ModShift), 's', editor.ModPrimary | editor.ModShift, true},
		{"meta rune", tcell.NewEventKey(tcell.KeyRune, 'o', tcell.ModMeta), 'o', editor.ModPrimary, true},
		{"alt upper rune", tcell.NewEventKey(tcell.KeyRune, 'S', tcell.ModAlt), 's', editor.ModPrimary | editor.ModShift, true},
		{"function key", tcell.NewEventKey(tcell.KeyF1, 0, tcell.ModNone), 0, editor.ModNone, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k, mod, ok := commandKey(tt.ev)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantKey, k)
			assert.Equal(t, tt.wantMod, mod)
		})
	}
}

func TestDrawShowsGraphAndStatus(t *testing.T) {
	a, s := newTestApp(t)
	out := show(a, s)

	assert.Contains(t, out, "Hello")
	rows := screenText(s)
	assert.True(t, strings.HasPrefix(rows[24], "*  |  "+canvasHints), rows[24])

	s.SetSize(120, 25)
	show(a, s)
	rows = screenText(s)
	assert.True(t, strings.HasPrefix(rows[24], editor.AppTitle+" - *  |  "+canvasHints), rows[24])
}

func TestCanvasStatusFitsWidth(t *testing.T) {
	title := editor.AppTitle + " - story.json *"
	tests := []struct {
		name  string
		width int
		want  string
	}{
		{"wide", 120, title + "  |  " + canvasHints},
		{"standard", 80, "story.json *  |  " + canvasHints},
		{"narrow", 60, canvasHints},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, canvasStatus(title, tt.width))
		})
	}
}

func TestAddNodeAtPointer(t *testing.T) {
	a, _ := newTestApp(t)
	a.HandleEvent(tcell.NewEventMouse(40, 4, tcell.ButtonNone, tcell.ModNone))
	a.HandleEvent(key('a'))

	g := a.Editor().Graph()
	require.Equal(t, 2, g.Len())
	sel := g.Selection()
	require.Len(t, sel, 1)
	n, _ := g.Node(sel[0])
	assert.Equal(t, 40*8+4, n.X)
	assert.Equal(t, 4*16+8, n.Y)
}

func TestClickSelectsAndClears(t *testing.T) {
	a, _ := newTestApp(t)
	g := a.Editor().Graph()

	clickCell(a, 15, 5)
	assert.True(t, g.IsSelected(nodeA(t, a).Handle()))

	a.now = func() time.Time { return time.Now().Add(time.Hour) }
	clickCell(a, 50, 20)
	assert.Empty(t, g.Selection())
}

func TestDoubleClickEditsNode(t *testing.T) {
	a, _ := newTestApp(t)
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	a.now = func() time.Time { return clock }

	clickCell(a, 15, 5)
	clock = clock.Add(100 * time.Millisecond)
	clickCell(a, 15, 5)
	require.Equal(t, modeForm, a.mode)
	require.NotNil(t, a.form)
	assert.Equal(t, fieldID, a.form.focus)

	a.HandleEvent(ctrl(tcell.KeyCtrlU))
	typeText(a, "start")
	a.HandleEvent(tcell.NewEventKey(tcell.KeyTab, 0, tcell.ModNone))
	typeText(a, "!")
	a.HandleEvent(ctrl(tcell.KeyCtrlS))

	assert.Equal(t, modeCanvas, a.mode)
	n, ok := a.Editor().Graph().NodeByID("start")
	require.True(t, ok)
	assert.Equal(t, "Hello!", n.Prompt)
	assert.Equal(t, "Hi", n.Response)
	assert.True(t, a.Editor().Graph().Modified())
}

func TestSlowSecondClickIsSingle(t *testing.T) {
	a, _ := newTestApp(t)
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	a.now = func() time.Time { return clock }

	clickCell(a, 15, 5)
	clock = clock.Add(DoubleClickInterval + time.Millisecond)
	clickCell(a, 15, 5)
	assert.Equal(t, modeCanvas, a.mode)
}

func TestFormEscapeKeepsNode(t *testing.T) {
	a, _ := newTestApp(t)
	a.openForm(nodeA(t, a).Handle())
	typeText(a, "zzz")
	a.HandleEvent(tcell.NewEventKey(tcell.KeyEsc, 0, tcell.ModNone))

	assert.Equal(t, modeCanvas, a.mode)
	assert.Equal(t, "a", nodeA(t, a).ID)
	assert.False(t, a.Editor().Graph().Modified())
}

func TestDragMovesNode(t *testing.T) {
	a, _ := newTestApp(t)
	press(a, 15, 5)
	a.HandleEvent(tcell.NewEventMouse(20, 5, tcell.Button1, tcell.ModNone))
	release(a, 20, 5)

	n := nodeA(t, a)
	assert.Equal(t, 120, n.X)
	assert.Equal(t, 32, n.Y)
	assert.Empty(t, a.Editor().Graph().Selection(), "a drag is not a click")
}

func TestDragEmptyCanvasPans(t *testing.T) {
	a, _ := newTestApp(t)
	press(a, 50, 20)
	a.HandleEvent(tcell.NewEventMouse(52, 21, tcell.Button1, tcell.ModNone))
	release(a, 52, 21)

	assert.Equal(t, diagram.Point{X: 16, Y: 16}, a.Editor().Offset())
	assert.Equal(t, 80, nodeA(t, a).X)
}

func TestArrowKeysPan(t *testing.T) {
	a, _ := newTestApp(t)
	a.HandleEvent(tcell.NewEventKey(tcell.KeyRight, 0, tcell.ModNone))
	a.HandleEvent(tcell.NewEventKey(tcell.KeyDown, 0, tcell.ModNone))
	assert.Equal(t, diagram.Point{X: -8, Y: -16}, a.Editor().Offset())
}

func TestSaveThroughPrompt(t *testing.T) {
	a, s := newTestApp(t)
	path := filepath.Join(t.TempDir(), "story.json")

	a.HandleEvent(ctrl(tcell.KeyCtrlS))
	require.Equal(t, modePrompt, a.mode)
	assert.Equal(t, "story.json", a.prompt.input.String())
	assert.Contains(t, show(a, s), "Save as: story.json")

	a.HandleEvent(ctrl(tcell.KeyCtrlU))
	typeText(a, path)
	a.HandleEvent(tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone))

	assert.Equal(t, modeCanvas, a.mode)
	assert.Equal(t, path, a.Editor().Path())
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"a"`)
	assert.False(t, a.Editor().Graph().Modified())
	assert.Contains(t, show(a, s), "Saved")
}

func TestPromptEscapeCancels(t *testing.T) {
	a, _ := newTestApp(t)
	a.HandleEvent(ctrl(tcell.KeyCtrlO))
	require.Equal(t, modePrompt, a.mode)
	a.HandleEvent(tcell.NewEventKey(tcell.KeyEsc, 0, tcell.ModNone))
	assert.Equal(t, modeCanvas, a.mode)
	assert.Nil(t, a.prompt)
}

func TestOpenThroughPrompt(t *testing.T) {
	a, s := newTestApp(t)
	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o644))

	a.HandleEvent(ctrl(tcell.KeyCtrlO))
	typeText(a, path)
	a.HandleEvent(tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone))

	assert.Equal(t, "", a.Editor().Path())
	assert.Contains(t, show(a, s), "Invalid JSON")
}

func TestNotificationClickDismisses(t *testing.T) {
	a, s := newTestApp(t)
	a.Editor().Graph().SelectAll()
	a.HandleEvent(key('x'))
	a.HandleEvent(ctrl(tcell.KeyCtrlE))
	require.Equal(t, 1, a.Editor().Notifications().Len())

	out := show(a, s)
	assert.Contains(t, out, "Nothing to export")

	clickCell(a, 60, 21)
	assert.Equal(t, 0, a.Editor().Notifications().Len())
}

func TestHelpOverlay(t *testing.T) {
	a, s := newTestApp(t)
	a.HandleEvent(key('h'))
	require.Equal(t, modeHelp, a.mode)
	assert.Contains(t, show(a, s), "Key Commands:")

	a.HandleEvent(key('z'))
	assert.Equal(t, modeCanvas, a.mode)
}

func TestQuit(t *testing.T) {
	t.Run("unmodified quits", func(t *testing.T) {
		a, _ := newTestApp(t)
		assert.True(t, a.HandleEvent(key('q')))
	})

	t.Run("ctrl c always quits", func(t *testing.T) {
		a, _ := newTestApp(t)
		a.HandleEvent(key('a'))
		assert.True(t, a.HandleEvent(ctrl(tcell.KeyCtrlC)))
	})

	t.Run("modified file asks first", func(t *testing.T) {
		a, _ := newTestApp(t)
		a.Editor().SetPath(filepath.Join(t.TempDir(), "story.json"))
		a.HandleEvent(key('a'))

		assert.False(t, a.HandleEvent(key('q')))
		assert.Equal(t, modeConfirmQuit, a.mode)
		assert.False(t, a.HandleEvent(key('n')))
		assert.Equal(t, modeCanvas, a.mode)

		a.HandleEvent(key('q'))
		assert.True(t, a.HandleEvent(key('s')))
		_, err := os.Stat(a.Editor().Path())
		assert.NoError(t, err)
	})
}

func TestFileChangedInterrupt(t *testing.T) {
	a, s := newTestApp(t)
	a.HandleEvent(tcell.NewEventInterrupt(fileChanged{}))
	assert.Equal(t, 0, a.Editor().Notifications().Len(), "no file open")

	a.Editor().SetPath(filepath.Join(t.TempDir(), "story.json"))
	a.HandleEvent(tcell.NewEventInterrupt(fileChanged{}))
	assert.Equal(t, 1, a.Editor().Notifications().Len())
	assert.Contains(t, show(a, s), "File changed")
}

func TestWatcherFollowsSavedFile(t *testing.T) {
	a, _ := newTestApp(t)
	a.watchEnabled = true
	a.debounce = 10 * time.Millisecond
	t.Cleanup(a.stopWatcher)

	path := filepath.Join(t.TempDir(), "story.json")
	require.NoError(t, a.Editor().SaveFile(path))
	a.syncWatcher()
	require.NotNil(t, a.watcher)

	abs, err := filepath.Abs(path)
	require.NoError(t, err)
	assert.Equal(t, abs, a.watcher.Path())

	first := a.watcher
	a.syncWatcher()
	assert.Same(t, first, a.watcher, "same file keeps its watcher")
}
