package importer

import (
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"branch/diagram"
	"branch/layout"
)

// Label separators written by the Mermaid exporter.
const (
	mermaidSectionBreak = "<br/>"
	mermaidInnerBreak   = "<br>"
)

// MermaidImporter imports Mermaid flowcharts. Node labels are split into
// prompt and response at the first <br/>; a "%% id: X" comment names the
// node declared on the next line. Nodes are placed with a layered layout
// following the flowchart direction.
type MermaidImporter struct {
	opts Options
}

// NewMermaidImporter creates a new Mermaid importer
func NewMermaidImporter(opts Options) *MermaidImporter {
	return &MermaidImporter{opts: opts}
}

var (
	mermaidHeader = regexp.MustCompile(`^(?:graph|flowchart)(?:\s+([A-Za-z]{2}))?\s*;?$`)
	// Arrows with an optional |label|, which is ignored.
	mermaidArrow = regexp.MustCompile(`\s*(?:-->|---|==>|-\.->|--o|--x)\s*(?:\|[^|]*\|\s*)?`)
	// Matches: ID, ID[text], ID(text), ID{text}, ID((text)), ID([text]), ID[[text]]
	mermaidNode   = regexp.MustCompile(`^([A-Za-z0-9_]+)\s*(?:\[\[(.*)\]\]|\(\[(.*)\]\)|\(\((.*)\)\)|\[(.*)\]|\((.*)\)|\{(.*)\})?;?$`)
	mermaidIDNote = regexp.MustCompile(`^%%\s*id:\s*(.*)$`)
)

// CanImport checks if the content is a Mermaid flowchart
func (m *MermaidImporter) CanImport(content string) bool {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "%%") {
			continue
		}
		return mermaidHeader.MatchString(line)
	}
	return false
}

type mermaidNodeState struct {
	handle diagram.Handle
	// labelled is set once a declaration with text has been seen.
	labelled bool
}

// Import converts Mermaid content to a graph
func (m *MermaidImporter) Import(content string) (*diagram.Graph, error) {
	log := m.opts.logger()
	g := diagram.NewGraph(m.opts.IDs)
	nodes := make(map[string]*mermaidNodeState)
	edges := make(map[diagram.Handle][]diagram.Handle)
	direction := ""
	headerSeen := false
	pendingID := ""

	declare := func(ref string) (diagram.Handle, error) {
		match := mermaidNode.FindStringSubmatch(ref)
		if match == nil {
			return diagram.NoHandle, fmt.Errorf("%w: cannot parse node %q", diagram.ErrInvalidFormat, ref)
		}
		name := match[1]
		label, hasLabel := "", false
		for _, group := range match[2:] {
			if group != "" {
				label, hasLabel = group, true
				break
			}
		}
		if !hasLabel && strings.ContainsAny(ref, "[({") {
			hasLabel = true
		}

		state, exists := nodes[name]
		if !exists {
			id := name
			if pendingID != "" {
				id = pendingID
			}
			prompt, response := name, ""
			if hasLabel {
				prompt, response = splitMermaidLabel(label)
			}
			h := g.Insert(diagram.Node{
				ID:       id,
				Width:    diagram.DefaultWidth,
				Height:   diagram.DefaultHeight,
				Prompt:   prompt,
				Response: response,
			})
			state = &mermaidNodeState{handle: h, labelled: hasLabel}
			nodes[name] = state
		} else if hasLabel && !state.labelled {
			n, _ := g.Node(state.handle)
			prompt, response := splitMermaidLabel(label)
			if err := g.EditNode(state.handle, diagram.NodeEdit{ID: n.ID, Prompt: prompt, Response: response}); err != nil {
				return diagram.NoHandle, err
			}
			state.labelled = true
		}
		pendingID = ""
		return state.handle, nil
	}

	for lineNo, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if match := mermaidIDNote.FindStringSubmatch(line); match != nil {
			pendingID = strings.TrimSpace(match[1])
			continue
		}
		if strings.HasPrefix(line, "%%") {
			continue
		}
		if !headerSeen {
			match := mermaidHeader.FindStringSubmatch(line)
			if match == nil {
				return nil, fmt.Errorf("%w: line %d: expected graph or flowchart header", diagram.ErrInvalidFormat, lineNo+1)
			}
			direction = match[1]
			headerSeen = true
			continue
		}
		if line == "end" || strings.HasPrefix(line, "subgraph ") ||
			strings.HasPrefix(line, "classDef ") || strings.HasPrefix(line, "class ") ||
			strings.HasPrefix(line, "style ") || strings.HasPrefix(line, "linkStyle ") ||
			strings.HasPrefix(line, "direction ") || strings.HasPrefix(line, "click ") {
			log.Debug("ignoring mermaid statement", zap.Int("line", lineNo+1), zap.String("text", line))
			continue
		}

		refs := mermaidArrow.Split(line, -1)
		var prev diagram.Handle
		for i, ref := range refs {
			h, err := declare(strings.TrimSpace(ref))
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo+1, err)
			}
			if i > 0 {
				edges[prev] = append(edges[prev], h)
			}
			prev = h
		}
	}
	if !headerSeen {
		return nil, fmt.Errorf("%w: no graph or flowchart header", diagram.ErrInvalidFormat)
	}

	for from, to := range edges {
		g.SetConnections(from, to)
	}
	if err := layout.ForDirection(direction).Layout(g); err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	return g, nil
}

// splitMermaidLabel turns "prompt<br/>response" back into its parts.
func splitMermaidLabel(label string) (prompt, response string) {
	label = strings.TrimSpace(label)
	if len(label) >= 2 && strings.HasPrefix(label, `"`) && strings.HasSuffix(label, `"`) {
		label = label[1 : len(label)-1]
	}
	label = strings.ReplaceAll(label, "#quot;", `"`)
	prompt, response, _ = strings.Cut(label, mermaidSectionBreak)
	unbreak := func(s string) string { return strings.ReplaceAll(s, mermaidInnerBreak, "\n") }
	return unbreak(prompt), unbreak(response)
}

// GetFormatName returns the format name
func (m *MermaidImporter) GetFormatName() string {
	return "Mermaid"
}

// GetFileExtensions returns common file extensions
func (m *MermaidImporter) GetFileExtensions() []string {
	return []string{".mmd", ".mermaid"}
}
