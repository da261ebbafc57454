package export

import (
	"fmt"
	"strings"

	"branch/diagram"
)

// D2Exporter exports graphs to D2 syntax
type D2Exporter struct{}

// NewD2Exporter creates a new D2 exporter
func NewD2Exporter() *D2Exporter {
	return &D2Exporter{}
}

// Export converts the graph to D2 syntax
func (e *D2Exporter) Export(g *diagram.Graph) ([]byte, error) {
	if err := checkGraph(g); err != nil {
		return nil, err
	}

	names := identifiers(g)
	var sb strings.Builder
	sb.WriteString("direction: right\n\n")

	for _, n := range g.Nodes() {
		name := names[n.Handle()]
		label := e.escapeLabel(n.Prompt) + `\n\n` + e.escapeLabel(n.Response)
		fmt.Fprintf(&sb, "%s: \"%s\" {\n", name, label)
		fmt.Fprintf(&sb, "  tooltip: \"%s\"\n", e.escapeLabel(n.ID))
		sb.WriteString("}\n")
	}

	edges := g.Edges()
	if len(edges) > 0 {
		sb.WriteString("\n")
	}
	for _, edge := range edges {
		fmt.Fprintf(&sb, "%s -> %s\n", names[edge.From], names[edge.To])
	}

	return []byte(sb.String()), nil
}

// escapeLabel escapes special characters for a double quoted D2 string
func (e *D2Exporter) escapeLabel(label string) string {
	label = strings.ReplaceAll(label, `\`, `\\`)
	label = strings.ReplaceAll(label, `"`, `\"`)
	label = strings.ReplaceAll(label, "\n", `\n`)
	return label
}

// GetFileExtension returns the recommended file extension
func (e *D2Exporter) GetFileExtension() string {
	return ".d2"
}

// GetFormatName returns the format name
func (e *D2Exporter) GetFormatName() string {
	return "D2"
}
