package editor

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"

	"go.uber.org/zap"

	"branch/diagram"
	"branch/importer"
	"branch/validation"
)

// Notification texts shown for file failures.
const (
	invalidJSONTitle = "Invalid JSON"
	invalidJSONBody  = "This is not a valid JSON file. It cannot be opened."
)

func storageOptions(log *zap.Logger) importer.Options {
	return importer.Options{Logger: log}
}

// OpenFile loads path and replaces the current graph with it. Paths not
// ending in ".json" are refused before the file is read. On failure the
// current graph is left untouched, an error notification is pushed and the
// error is returned.
func (e *Editor) OpenFile(path string) error {
	g, err := e.store.Load(path)
	if err != nil {
		e.log.Warn("open failed", zap.String("path", path), zap.Error(err))
		switch {
		case errors.Is(err, diagram.ErrIOFailure):
			e.notes.Error(invalidJSONTitle, "Could not load the JSON file. "+cause(err))
		default:
			e.notes.Error(invalidJSONTitle, invalidJSONBody)
		}
		return err
	}

	e.graph = g
	e.path = path
	e.grabbed = diagram.NoHandle
	e.log.Info("opened file", zap.String("path", path), zap.Int("nodes", g.Len()))
	return nil
}

// SaveFile writes the graph to path, makes path the save target and clears
// the modified flag.
func (e *Editor) SaveFile(path string) error {
	if err := e.store.Save(path, e.graph); err != nil {
		e.log.Warn("save failed", zap.String("path", path), zap.Error(err))
		e.notes.Error("Save failed", fmt.Sprintf("Could not write %s. %s", filepath.Base(path), cause(err)))
		return err
	}

	e.graph.MarkSaved()
	e.path = path
	e.notes.Notice("Saved", "Saved to "+filepath.Base(path)+".")
	e.log.Info("saved file", zap.String("path", path))
	return nil
}

// ExportImage renders the graph to path. The save target and the modified
// flag are not affected.
func (e *Editor) ExportImage(path string) error {
	if err := e.store.Export(path, e.graph, e.image); err != nil {
		e.log.Warn("image export failed", zap.String("path", path), zap.Error(err))
		e.notes.Error("Export failed", fmt.Sprintf("Could not export %s. %s", filepath.Base(path), cause(err)))
		return err
	}
	e.notes.Notice("Exported", "Image written to "+filepath.Base(path)+".")
	return nil
}

// EditNode applies the fields entered for h. An id that is empty or
// shared with another node is kept but reported, since saving would lose
// one of the nodes.
func (e *Editor) EditNode(h diagram.Handle, edit diagram.NodeEdit) error {
	if err := e.graph.EditNode(h, edit); err != nil {
		e.log.Warn("edit failed", zap.Error(err))
		return err
	}
	for _, p := range validation.Graph(e.graph).Problems {
		if p.Severity == validation.Error && p.NodeID == edit.ID {
			e.notes.Error("Check node "+strconv.Quote(edit.ID), p.Message+".")
		}
	}
	return nil
}

// FileChanged reports that the open file was changed by another program.
func (e *Editor) FileChanged() {
	if e.path == "" {
		return
	}
	e.log.Info("file changed on disk", zap.String("path", e.path))
	e.notes.Notice("File changed", filepath.Base(e.path)+" was changed on disk. Press Ctrl+O to reload it.")
}

// cause returns the innermost message of a file error for display.
func cause(err error) string {
	var fe *diagram.FileError
	if errors.As(err, &fe) && fe.Err != nil {
		return fe.Err.Error()
	}
	return err.Error()
}
