// Package terminal is the tcell front-end of the designer. It owns the
// screen and the event loop, converts cell positions to canvas pixels for
// the editor and answers the editor's requests for paths and node text.
package terminal

import (
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"branch/diagram"
	"branch/editor"
	"branch/render"
	"branch/watch"
)

// DoubleClickInterval is the longest gap between two clicks on the same
// cell that still counts as a double click.
const DoubleClickInterval = 400 * time.Millisecond

// mode selects what keys are routed to.
type mode int

const (
	modeCanvas mode = iota
	modePrompt
	modeForm
	modeHelp
	modeConfirmQuit
)

// fileChanged is posted as interrupt data by the watcher goroutine.
type fileChanged struct{}

// Options configures an App.
type Options struct {
	Scene  render.Scene
	Logger *zap.Logger
	// Watch reports outside changes to the open file.
	Watch    bool
	Debounce time.Duration
}

// App runs the editor on a tcell screen. All editor calls happen on the
// goroutine running Run.
type App struct {
	screen tcell.Screen
	ed     *editor.Editor
	scene  render.Scene
	logger *zap.Logger

	mode   mode
	prompt *prompt
	form   *nodeForm

	// Pointer state for turning raw button masks into gestures.
	buttonDown bool
	moved      bool
	lastCell   diagram.Point
	lastClick  time.Time
	clickCell  diagram.Point
	now        func() time.Time

	watchEnabled bool
	debounce     time.Duration
	watcher      *watch.Watcher

	quit bool
}

// New creates an App drawing ed on screen. The screen must already be
// initialised.
func New(screen tcell.Screen, ed *editor.Editor, opts Options) *App {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Scene.CellWidth <= 0 || opts.Scene.CellHeight <= 0 {
		opts.Scene = render.NewScene()
	}
	if opts.Debounce <= 0 {
		opts.Debounce = watch.DefaultDebounce
	}
	return &App{
		screen:       screen,
		ed:           ed,
		scene:        opts.Scene,
		logger:       opts.Logger,
		now:          time.Now,
		watchEnabled: opts.Watch,
		debounce:     opts.Debounce,
	}
}

// Run draws and handles events until the user quits.
func (a *App) Run() error {
	a.screen.EnableMouse(tcell.MouseMotionEvents)
	a.screen.Clear()
	a.syncWatcher()
	defer a.stopWatcher()

	for !a.quit {
		a.Draw()
		a.screen.Show()

		ev := a.screen.PollEvent()
		if ev == nil {
			return nil
		}
		a.HandleEvent(ev)
	}
	return nil
}

// HandleEvent routes one tcell event. It reports whether the app should
// exit.
func (a *App) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		a.screen.Sync()
	case *tcell.EventKey:
		a.handleKey(ev)
	case *tcell.EventMouse:
		a.handleMouse(ev)
	case *tcell.EventInterrupt:
		if _, ok := ev.Data().(fileChanged); ok {
			a.ed.FileChanged()
		}
	}
	return a.quit
}

// Editor returns the controller driven by the app.
func (a *App) Editor() *editor.Editor {
	return a.ed
}

// handleResult answers what a command or gesture asked for.
func (a *App) handleResult(res editor.Result) {
	switch res.Kind {
	case editor.ResultNeedSavePath:
		def := a.ed.Path()
		if def == "" {
			def = "story.json"
		}
		a.openPrompt(res.Kind, "Save as: ", def)
	case editor.ResultNeedImagePath:
		a.openPrompt(res.Kind, "Export image to: ", imagePath(a.ed.Path()))
	case editor.ResultNeedOpenPath:
		a.openPrompt(res.Kind, "Open: ", a.ed.Path())
	case editor.ResultShowHelp:
		a.mode = modeHelp
	case editor.ResultEditNode:
		a.openForm(res.Node)
	case editor.ResultQuit:
		if a.ed.Path() != "" && a.ed.Graph().Modified() {
			a.mode = modeConfirmQuit
			return
		}
		a.quit = true
	}
}

// finishPrompt runs the file operation a prompt was opened for.
func (a *App) finishPrompt(kind editor.ResultKind, path string) {
	if path == "" {
		return
	}
	switch kind {
	case editor.ResultNeedSavePath:
		if a.ed.SaveFile(path) == nil {
			a.syncWatcher()
		}
	case editor.ResultNeedImagePath:
		_ = a.ed.ExportImage(path)
	case editor.ResultNeedOpenPath:
		if a.ed.OpenFile(path) == nil {
			a.syncWatcher()
		}
	}
}

// syncWatcher follows the editor's file: it records the current content
// after the editor wrote or read it, or moves to a new file.
func (a *App) syncWatcher() {
	if !a.watchEnabled {
		return
	}
	path := a.ed.Path()
	if path == "" {
		return
	}
	if a.watcher != nil {
		if abs, err := absPath(path); err == nil && abs == a.watcher.Path() {
			a.watcher.Sync()
			return
		}
		a.stopWatcher()
	}

	w, err := watch.New(path, a.debounce, func() {
		if err := a.screen.PostEvent(tcell.NewEventInterrupt(fileChanged{})); err != nil {
			a.logger.Debug("dropped file change event", zap.Error(err))
		}
	}, a.logger)
	if err != nil {
		a.logger.Warn("cannot watch file", zap.String("path", path), zap.Error(err))
		return
	}
	a.watcher = w
}

func (a *App) stopWatcher() {
	if a.watcher == nil {
		return
	}
	if err := a.watcher.Close(); err != nil {
		a.logger.Debug("close watcher", zap.Error(err))
	}
	a.watcher = nil
}

// viewport returns the canvas area in cells; the last row is the status
// line.
func (a *App) viewport() (width, height int) {
	w, h := a.screen.Size()
	return w, max(h-1, 1)
}

// pixel converts a screen cell to the pointer coordinates the editor uses.
func (a *App) pixel(x, y int) diagram.Point {
	return a.scene.PixelOf(diagram.Point{X: x, Y: y})
}

func (a *App) String() string {
	return fmt.Sprintf("terminal app (%s)", a.ed.Title())
}
