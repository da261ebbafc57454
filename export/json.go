package export

import (
	"bytes"
	"encoding/json"
	"fmt"

	"branch/diagram"
)

// Record is one node as stored in the interchange format.
type Record struct {
	ID          string   `json:"id" yaml:"id"`
	Prompt      string   `json:"prompt" yaml:"prompt"`
	Response    string   `json:"response" yaml:"response"`
	Draw        Draw     `json:"draw" yaml:"draw"`
	Connections []string `json:"connections" yaml:"connections"`
}

// Draw holds a node's canvas rectangle.
type Draw struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
	W int `json:"w" yaml:"w"`
	H int `json:"h" yaml:"h"`
}

// Records converts the graph into interchange records in node order.
// Connections are written as destination ids.
func Records(g *diagram.Graph) []Record {
	nodes := g.Nodes()
	records := make([]Record, 0, len(nodes))
	for _, n := range nodes {
		conns := make([]string, 0)
		for _, h := range g.Connections(n.Handle()) {
			if dest, ok := g.Node(h); ok {
				conns = append(conns, dest.ID)
			}
		}
		records = append(records, Record{
			ID:          n.ID,
			Prompt:      n.Prompt,
			Response:    n.Response,
			Draw:        Draw{X: n.X, Y: n.Y, W: n.Width, H: n.Height},
			Connections: conns,
		})
	}
	return records
}

// EncodeJSON writes the graph as a JSON object keyed by node id. Members
// follow node order, which encoding/json cannot do for a map, so the object
// is assembled member by member.
func EncodeJSON(g *diagram.Graph) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, rec := range Records(g) {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(rec.ID)
		if err != nil {
			return nil, fmt.Errorf("encode id %q: %w", rec.ID, err)
		}
		value, err := json.Marshal(rec)
		if err != nil {
			return nil, fmt.Errorf("encode node %q: %w", rec.ID, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// JSONExporter exports graphs to indented interchange JSON
type JSONExporter struct {
	Indent string
}

// NewJSONExporter creates a new JSON exporter
func NewJSONExporter() *JSONExporter {
	return &JSONExporter{Indent: "  "}
}

// Export converts a graph to JSON
func (e *JSONExporter) Export(g *diagram.Graph) ([]byte, error) {
	if g == nil {
		return nil, fmt.Errorf("graph is nil")
	}
	compact, err := EncodeJSON(g)
	if err != nil {
		return nil, err
	}
	if e.Indent == "" {
		return compact, nil
	}
	var out bytes.Buffer
	if err := json.Indent(&out, compact, "", e.Indent); err != nil {
		return nil, err
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

// GetFileExtension returns the file extension for JSON
func (e *JSONExporter) GetFileExtension() string {
	return ".json"
}

// GetFormatName returns the format name
func (e *JSONExporter) GetFormatName() string {
	return "JSON"
}
