// Package export writes dialogue graphs to the JSON interchange format and
// to a handful of formats meant for other tools.
package export

import (
	"fmt"
	"regexp"
	"strings"

	"branch/diagram"
)

// Format represents an export format
type Format string

const (
	// FormatJSON is the interchange format the editor reads back.
	FormatJSON Format = "json"
	// FormatYAML mirrors the JSON shape in YAML.
	FormatYAML Format = "yaml"
	// FormatText draws the graph as Unicode box art.
	FormatText Format = "text"
	// FormatMermaid exports to Mermaid flowchart syntax
	FormatMermaid Format = "mermaid"
	// FormatGraphviz exports to Graphviz DOT syntax
	FormatGraphviz Format = "dot"
	// FormatPlantUML exports to a PlantUML state diagram
	FormatPlantUML Format = "plantuml"
	// FormatD2 exports to D2 syntax
	FormatD2 Format = "d2"
	// FormatPNG renders the canvas to an image.
	FormatPNG Format = "png"
)

// Exporter interface for different export formats
type Exporter interface {
	// Export converts a graph to the target format
	Export(g *diagram.Graph) ([]byte, error)
	// GetFileExtension returns the recommended file extension for this format
	GetFileExtension() string
	// GetFormatName returns a human-readable name for this format
	GetFormatName() string
}

// Options tune the exporters that draw the graph.
type Options struct {
	// FontSize is the base font size in points for PNG output.
	FontSize float64
	// ASCII restricts text output to plain ASCII.
	ASCII bool
	// Color adds ANSI colours to text output.
	Color bool
}

// NewExporter creates an exporter for the specified format
func NewExporter(format Format, opts Options) (Exporter, error) {
	switch format {
	case FormatJSON:
		return NewJSONExporter(), nil
	case FormatYAML:
		return NewYAMLExporter(), nil
	case FormatText:
		return NewTextExporter(opts.ASCII, opts.Color), nil
	case FormatMermaid:
		return NewMermaidExporter(), nil
	case FormatGraphviz:
		return NewGraphvizExporter(), nil
	case FormatPlantUML:
		return NewPlantUMLExporter(), nil
	case FormatD2:
		return NewD2Exporter(), nil
	case FormatPNG:
		return NewPNGExporter(opts.FontSize), nil
	default:
		return nil, fmt.Errorf("unsupported export format: %s", format)
	}
}

// ParseFormat converts a string to a Format
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "text", "txt", "ascii":
		return FormatText, nil
	case "mermaid", "mmd":
		return FormatMermaid, nil
	case "dot", "gv", "graphviz":
		return FormatGraphviz, nil
	case "plantuml", "puml":
		return FormatPlantUML, nil
	case "d2":
		return FormatD2, nil
	case "png", "image":
		return FormatPNG, nil
	default:
		return "", fmt.Errorf("unknown format: %s", s)
	}
}

// GetAvailableFormats returns a list of all available export formats
func GetAvailableFormats() []Format {
	return []Format{
		FormatJSON,
		FormatYAML,
		FormatText,
		FormatMermaid,
		FormatGraphviz,
		FormatPlantUML,
		FormatD2,
		FormatPNG,
	}
}

// GetFormatDescriptions returns human-readable descriptions of all formats
func GetFormatDescriptions() map[Format]string {
	return map[Format]string{
		FormatJSON:     "Interchange JSON (opened by the editor)",
		FormatYAML:     "Interchange shape as YAML",
		FormatText:     "Unicode box art of the canvas",
		FormatMermaid:  "Mermaid flowchart (for Markdown)",
		FormatGraphviz: "Graphviz DOT with pinned positions",
		FormatPlantUML: "PlantUML state diagram",
		FormatD2:       "D2 diagram syntax",
		FormatPNG:      "PNG image of the canvas",
	}
}

var unsafeIdentifier = regexp.MustCompile(`[^A-Za-z0-9_]`)

// identifiers returns a unique, syntax-safe name for every node. Node ids
// are free text and may repeat, so they are sanitized and suffixed.
func identifiers(g *diagram.Graph) map[diagram.Handle]string {
	names := make(map[diagram.Handle]string, g.Len())
	used := make(map[string]bool, g.Len())
	for _, n := range g.Nodes() {
		base := unsafeIdentifier.ReplaceAllString(n.ID, "_")
		if base == "" || (base[0] >= '0' && base[0] <= '9') {
			base = "n_" + base
		}
		name := base
		for i := 2; used[name]; i++ {
			name = fmt.Sprintf("%s_%d", base, i)
		}
		used[name] = true
		names[n.Handle()] = name
	}
	return names
}

func checkGraph(g *diagram.Graph) error {
	if g == nil {
		return fmt.Errorf("graph is nil")
	}
	if g.Len() == 0 {
		return fmt.Errorf("graph has no nodes")
	}
	return nil
}
