package export

import (
	"fmt"
	"strings"

	"branch/diagram"
)

// MermaidLineBreak separates the prompt from the response in node labels.
// Newlines inside either text are written as MermaidInnerBreak.
const (
	MermaidLineBreak  = "<br/>"
	MermaidInnerBreak = "<br>"
)

// MermaidExporter exports graphs to Mermaid flowchart syntax
type MermaidExporter struct {
	// Direction is the flowchart direction, LR by default.
	Direction string
}

// NewMermaidExporter creates a new Mermaid exporter
func NewMermaidExporter() *MermaidExporter {
	return &MermaidExporter{Direction: "LR"}
}

// Export converts the graph to Mermaid syntax. Each node becomes
// id["prompt<br/>response"]; the original id is kept in a comment when
// sanitizing changed it.
func (e *MermaidExporter) Export(g *diagram.Graph) ([]byte, error) {
	if err := checkGraph(g); err != nil {
		return nil, err
	}

	names := identifiers(g)
	var sb strings.Builder
	fmt.Fprintf(&sb, "flowchart %s\n", e.Direction)

	for _, n := range g.Nodes() {
		name := names[n.Handle()]
		if name != n.ID {
			fmt.Fprintf(&sb, "    %%%% id: %s\n", n.ID)
		}
		label := e.escapeLabel(n.Prompt) + MermaidLineBreak + e.escapeLabel(n.Response)
		fmt.Fprintf(&sb, "    %s[\"%s\"]\n", name, label)
	}

	edges := g.Edges()
	if len(edges) > 0 {
		sb.WriteString("\n")
	}
	for _, edge := range edges {
		fmt.Fprintf(&sb, "    %s --> %s\n", names[edge.From], names[edge.To])
	}

	return []byte(sb.String()), nil
}

// escapeLabel makes text safe inside a quoted Mermaid label.
func (e *MermaidExporter) escapeLabel(label string) string {
	label = strings.ReplaceAll(label, `"`, "#quot;")
	label = strings.ReplaceAll(label, "\n", MermaidInnerBreak)
	return label
}

// GetFileExtension returns the recommended file extension
func (e *MermaidExporter) GetFileExtension() string {
	return ".mmd"
}

// GetFormatName returns the format name
func (e *MermaidExporter) GetFormatName() string {
	return "Mermaid"
}
