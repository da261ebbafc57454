// Package editor is the front-end independent controller of the dialogue
// designer. It turns commands and pointer gestures into graph edits, file
// operations and notifications. Front-ends draw the graph it exposes and
// answer the Results it returns.
package editor

import (
	"path/filepath"

	"go.uber.org/zap"

	"branch/diagram"
	"branch/export"
	"branch/notify"
	"branch/storage"
)

// AppTitle prefixes every window title.
const AppTitle = "Branching Adventure Designer"

// Options configures a new Editor. Zero fields get working defaults.
type Options struct {
	Store         *storage.Store
	Image         export.Exporter
	Notifications *notify.Queue
	Logger        *zap.Logger
	// NodeSize is the width and height of added nodes.
	NodeSize diagram.Point
}

// Editor holds the graph being edited together with its view state: the
// canvas offset, the last pointer position, the node being dragged and the
// file the graph belongs to.
type Editor struct {
	graph *diagram.Graph
	store *storage.Store
	image export.Exporter
	notes *notify.Queue
	log   *zap.Logger
	size  diagram.Point

	path   string // sticky save target, empty until the first open or save
	offset diagram.Point
	// pointer is the last known pointer position in view coordinates.
	pointer diagram.Point

	grabbed    diagram.Handle
	grabOffset diagram.Point // pointer minus node origin, in canvas space
}

// New creates an editor for g. A nil g starts from the welcome graph.
func New(g *diagram.Graph, opts Options) *Editor {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Store == nil {
		opts.Store = storage.New(storageOptions(opts.Logger))
	}
	if opts.Image == nil {
		opts.Image = export.NewPNGExporter(export.DefaultFontSize)
	}
	if opts.Notifications == nil {
		opts.Notifications = notify.NewQueue(notify.PixelLayout(nil))
	}
	if opts.NodeSize.X <= 0 || opts.NodeSize.Y <= 0 {
		opts.NodeSize = diagram.Point{X: diagram.DefaultWidth, Y: diagram.DefaultHeight}
	}
	if g == nil {
		g = diagram.Welcome(nil)
	}
	return &Editor{
		graph: g,
		store: opts.Store,
		image: opts.Image,
		notes: opts.Notifications,
		log:   opts.Logger,
		size:  opts.NodeSize,
	}
}

// Graph returns the graph currently being edited. Opening a file replaces
// it, so callers should not hold on to the pointer across commands.
func (e *Editor) Graph() *diagram.Graph {
	return e.graph
}

// Notifications returns the queue errors and notices are pushed to.
func (e *Editor) Notifications() *notify.Queue {
	return e.notes
}

// Offset returns the canvas pan offset.
func (e *Editor) Offset() diagram.Point {
	return e.offset
}

// SetOffset overwrites the canvas pan offset.
func (e *Editor) SetOffset(p diagram.Point) {
	e.offset = p
}

// Pointer returns the last known pointer position.
func (e *Editor) Pointer() diagram.Point {
	return e.pointer
}

// Path returns the file the graph is saved to, or "" before the first
// open or save.
func (e *Editor) Path() string {
	return e.path
}

// SetPath makes path the sticky save target without touching the disk.
func (e *Editor) SetPath(path string) {
	e.path = path
}

// Title returns the window title: the file name, with " *" appended when
// there are unsaved changes. A graph that was never opened or saved is
// always shown as modified.
func (e *Editor) Title() string {
	if e.path == "" {
		return AppTitle + " - *"
	}
	name := filepath.Base(e.path)
	if e.graph.Modified() {
		return AppTitle + " - " + name + " *"
	}
	return AppTitle + " - " + name
}
