package export

import (
	"fmt"
	"strings"

	"branch/diagram"
)

// GraphvizExporter exports graphs to Graphviz DOT syntax
type GraphvizExporter struct{}

// NewGraphvizExporter creates a new Graphviz exporter
func NewGraphvizExporter() *GraphvizExporter {
	return &GraphvizExporter{}
}

// Export converts the graph to DOT. Node centres are pinned with pos so
// neato -n reproduces the canvas layout; dot ignores them.
func (e *GraphvizExporter) Export(g *diagram.Graph) ([]byte, error) {
	if err := checkGraph(g); err != nil {
		return nil, err
	}

	names := identifiers(g)
	var sb strings.Builder

	sb.WriteString("digraph branch {\n")
	sb.WriteString("  rankdir=LR;\n")
	sb.WriteString("  node [shape=box, style=rounded];\n")
	sb.WriteString("  edge [arrowhead=normal];\n\n")

	for _, n := range g.Nodes() {
		label := e.escapeLabel(n.ID) + `\n\n` + e.escapeLabel(n.Prompt) + `\n---\n` + e.escapeLabel(n.Response)
		// Graphviz y grows upwards.
		cx, cy := n.X+n.Width/2, -(n.Y + n.Height/2)
		fmt.Fprintf(&sb, "  %s [label=\"%s\", pos=\"%d,%d!\"];\n", names[n.Handle()], label, cx, cy)
	}

	edges := g.Edges()
	if len(edges) > 0 {
		sb.WriteString("\n")
	}
	for _, edge := range edges {
		fmt.Fprintf(&sb, "  %s -> %s;\n", names[edge.From], names[edge.To])
	}

	sb.WriteString("}\n")
	return []byte(sb.String()), nil
}

// escapeLabel escapes special characters in labels
func (e *GraphvizExporter) escapeLabel(label string) string {
	label = strings.ReplaceAll(label, `\`, `\\`)
	label = strings.ReplaceAll(label, `"`, `\"`)
	label = strings.ReplaceAll(label, "\n", `\n`)
	return label
}

// GetFileExtension returns the recommended file extension
func (e *GraphvizExporter) GetFileExtension() string {
	return ".dot"
}

// GetFormatName returns the format name
func (e *GraphvizExporter) GetFormatName() string {
	return "Graphviz"
}
