// Package importer reads dialogue graphs back from the interchange JSON
// format and from diagram text formats.
package importer

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"go.uber.org/zap"

	"branch/diagram"
)

// Importer interface defines methods for importing graphs from various formats
type Importer interface {
	// CanImport checks if the given content can be imported by this importer
	CanImport(content string) bool

	// Import converts the input content into a new graph
	Import(content string) (*diagram.Graph, error)

	// GetFormatName returns the human-readable name of the format
	GetFormatName() string

	// GetFileExtensions returns common file extensions for this format
	GetFileExtensions() []string
}

// Options are shared by every importer.
type Options struct {
	// IDs names nodes added later to the imported graph.
	IDs diagram.IDGenerator
	// Logger receives warnings about skipped content. Nil disables logging.
	Logger *zap.Logger
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

// ImporterRegistry manages available importers
type ImporterRegistry struct {
	importers []Importer
}

// NewImporterRegistry creates a registry holding the JSON, Mermaid,
// Graphviz, PlantUML, Markdown and D2 importers. Detection tries them in
// that order; D2 comes last because its syntax is the loosest.
func NewImporterRegistry(opts Options) *ImporterRegistry {
	return &ImporterRegistry{
		importers: []Importer{
			NewJSONImporter(opts),
			NewMermaidImporter(opts),
			NewGraphvizImporter(opts),
			NewPlantUMLImporter(opts),
			NewMarkdownImporter(opts),
			NewD2Importer(opts),
		},
	}
}

// Register adds a new importer to the registry
func (r *ImporterRegistry) Register(importer Importer) {
	r.importers = append(r.importers, importer)
}

// DetectFormat attempts to detect the format of the given content
func (r *ImporterRegistry) DetectFormat(content string) (Importer, error) {
	for _, imp := range r.importers {
		if imp.CanImport(content) {
			return imp, nil
		}
	}
	return nil, fmt.Errorf("unable to detect format: %w", diagram.ErrInvalidFormat)
}

// ForFile picks the importer registered for path's extension.
func (r *ImporterRegistry) ForFile(path string) (Importer, error) {
	ext := strings.ToLower(filepath.Ext(path))
	for _, imp := range r.importers {
		if slices.Contains(imp.GetFileExtensions(), ext) {
			return imp, nil
		}
	}
	return nil, fmt.Errorf("no importer for %q: %w", ext, diagram.ErrInvalidFormat)
}

// Import attempts to import content using auto-detection
func (r *ImporterRegistry) Import(content string) (*diagram.Graph, error) {
	importer, err := r.DetectFormat(content)
	if err != nil {
		return nil, err
	}
	return importer.Import(content)
}

// ImportWithFormat imports content using a specific format
func (r *ImporterRegistry) ImportWithFormat(content, format string) (*diagram.Graph, error) {
	format = strings.ToLower(format)

	for _, imp := range r.importers {
		if strings.ToLower(imp.GetFormatName()) == format {
			return imp.Import(content)
		}
	}

	return nil, fmt.Errorf("unknown format: %s", format)
}

// GetAvailableFormats returns a list of available import formats
func (r *ImporterRegistry) GetAvailableFormats() []string {
	formats := make([]string, len(r.importers))
	for i, imp := range r.importers {
		formats[i] = imp.GetFormatName()
	}
	return formats
}
