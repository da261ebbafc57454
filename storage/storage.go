// Package storage reads and writes graph files on disk and classifies
// failures as diagram.ErrInvalidFormat or diagram.ErrIOFailure.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"branch/diagram"
	"branch/export"
	"branch/importer"
)

// Extension is the suffix a file must carry to be opened.
const Extension = ".json"

// Store loads and saves graphs in the interchange format.
type Store struct {
	opts     importer.Options
	exporter *export.JSONExporter
}

// New creates a store. opts is passed to the JSON decoder.
func New(opts importer.Options) *Store {
	return &Store{opts: opts, exporter: export.NewJSONExporter()}
}

// CheckExtension rejects paths that do not end in ".json". The check is
// case sensitive.
func CheckExtension(path string) error {
	if !strings.HasSuffix(path, Extension) {
		return diagram.NewFileError(diagram.ErrInvalidFormat, "open", path,
			fmt.Errorf("not a %s file", Extension))
	}
	return nil
}

// Load reads and decodes the graph at path. The extension is checked
// before the file is touched.
func (s *Store) Load(path string) (*diagram.Graph, error) {
	if err := CheckExtension(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, diagram.NewFileError(diagram.ErrIOFailure, "open", path, err)
	}
	g, err := importer.DecodeJSON(data, s.opts)
	if err != nil {
		return nil, diagram.NewFileError(diagram.ErrInvalidFormat, "open", path, err)
	}
	return g, nil
}

// Save writes g to path as indented JSON. The graph's modified flag is
// left to the caller.
func (s *Store) Save(path string, g *diagram.Graph) error {
	data, err := s.exporter.Export(g)
	if err != nil {
		return diagram.NewFileError(diagram.ErrInvalidFormat, "save", path, err)
	}
	if err := WriteFile(path, data); err != nil {
		return diagram.NewFileError(diagram.ErrIOFailure, "save", path, err)
	}
	return nil
}

// Export renders g with exp and writes the result to path.
func (s *Store) Export(path string, g *diagram.Graph, exp export.Exporter) error {
	data, err := exp.Export(g)
	if err != nil {
		return fmt.Errorf("export %s: %w", exp.GetFormatName(), err)
	}
	if err := WriteFile(path, data); err != nil {
		return diagram.NewFileError(diagram.ErrIOFailure, "export", path, err)
	}
	return nil
}

// WriteFile replaces path with data through a temporary file in the same
// directory, so readers never observe a partial file.
func WriteFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(name)
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		os.Remove(name)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return err
	}
	if err := os.Rename(name, path); err != nil {
		os.Remove(name)
		return err
	}
	return nil
}
