package export

import (
	"fmt"
	"strings"

	"branch/diagram"
)

// PlantUMLExporter exports graphs to a PlantUML state diagram: one state
// per node, described by its prompt and response.
type PlantUMLExporter struct{}

// NewPlantUMLExporter creates a new PlantUML exporter
func NewPlantUMLExporter() *PlantUMLExporter {
	return &PlantUMLExporter{}
}

// Export converts the graph to PlantUML syntax
func (e *PlantUMLExporter) Export(g *diagram.Graph) ([]byte, error) {
	if err := checkGraph(g); err != nil {
		return nil, err
	}

	names := identifiers(g)
	var sb strings.Builder
	sb.WriteString("@startuml\n")
	sb.WriteString("hide empty description\n")
	sb.WriteString("skinparam shadowing false\n\n")

	for _, n := range g.Nodes() {
		name := names[n.Handle()]
		fmt.Fprintf(&sb, "state \"%s\" as %s\n", e.escape(n.ID), name)
		fmt.Fprintf(&sb, "%s : <b>Prompt:</b> %s\n", name, e.escape(n.Prompt))
		fmt.Fprintf(&sb, "%s : <b>Response:</b> %s\n", name, e.escape(n.Response))
	}

	edges := g.Edges()
	if len(edges) > 0 {
		sb.WriteString("\n")
	}
	for _, edge := range edges {
		fmt.Fprintf(&sb, "%s --> %s\n", names[edge.From], names[edge.To])
	}

	sb.WriteString("@enduml\n")
	return []byte(sb.String()), nil
}

func (e *PlantUMLExporter) escape(s string) string {
	s = strings.ReplaceAll(s, `"`, `'`)
	return strings.ReplaceAll(s, "\n", `\n`)
}

// GetFileExtension returns the recommended file extension
func (e *PlantUMLExporter) GetFileExtension() string {
	return ".puml"
}

// GetFormatName returns the format name
func (e *PlantUMLExporter) GetFormatName() string {
	return "PlantUML"
}
