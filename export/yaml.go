package export

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"

	"branch/diagram"
)

// YAMLExporter writes the interchange shape as a YAML mapping keyed by
// node id, in node order.
type YAMLExporter struct{}

// NewYAMLExporter creates a new YAML exporter
func NewYAMLExporter() *YAMLExporter {
	return &YAMLExporter{}
}

// Export converts a graph to YAML
func (e *YAMLExporter) Export(g *diagram.Graph) ([]byte, error) {
	if g == nil {
		return nil, fmt.Errorf("graph is nil")
	}

	root := &yaml.Node{Kind: yaml.MappingNode}
	for _, rec := range Records(g) {
		var value yaml.Node
		if err := value.Encode(rec); err != nil {
			return nil, fmt.Errorf("encode node %q: %w", rec.ID, err)
		}
		key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: rec.ID}
		root.Content = append(root.Content, key, &value)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GetFileExtension returns the file extension for YAML
func (e *YAMLExporter) GetFileExtension() string {
	return ".yaml"
}

// GetFormatName returns the format name
func (e *YAMLExporter) GetFormatName() string {
	return "YAML"
}
