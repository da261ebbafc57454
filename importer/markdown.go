package importer

import (
	"fmt"

	"go.uber.org/zap"

	"branch/diagram"
	"branch/markdown"
)

// MarkdownImporter reads a graph from a fenced Mermaid or Graphviz block
// in a Markdown document.
type MarkdownImporter struct {
	opts Options
	// Block selects the block, counting from 1. Zero picks the first.
	Block int
}

// NewMarkdownImporter creates a Markdown importer reading the first block.
func NewMarkdownImporter(opts Options) *MarkdownImporter {
	return &MarkdownImporter{opts: opts}
}

// CanImport checks if the content holds a diagram block. Documents that
// start with a diagram header are left to the other importers.
func (m *MarkdownImporter) CanImport(content string) bool {
	return len(markdown.NewScanner(content).Blocks()) > 0
}

// Import converts the selected block.
func (m *MarkdownImporter) Import(content string) (*diagram.Graph, error) {
	block, err := markdown.NewScanner(content).Find(m.Block)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", diagram.ErrInvalidFormat, err)
	}
	m.opts.logger().Debug("importing markdown block",
		zap.String("lang", block.Lang),
		zap.Int("line", block.Start+1),
	)

	var inner Importer
	switch block.Lang {
	case "mermaid":
		inner = NewMermaidImporter(m.opts)
	default:
		inner = NewGraphvizImporter(m.opts)
	}
	g, err := inner.Import(block.Content)
	if err != nil {
		return nil, fmt.Errorf("block at line %d: %w", block.Start+1, err)
	}
	return g, nil
}

// GetFormatName returns the format name
func (m *MarkdownImporter) GetFormatName() string {
	return "Markdown"
}

// GetFileExtensions returns common file extensions
func (m *MarkdownImporter) GetFileExtensions() []string {
	return []string{".md", ".markdown"}
}
