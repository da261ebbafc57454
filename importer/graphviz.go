package importer

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"branch/diagram"
	"branch/layout"
)

// GraphvizImporter imports Graphviz DOT format. Labels of the form
// "id\n\nprompt\n---\nresponse" are split back into node fields and a
// pinned pos attribute restores the node's centre; otherwise the label
// becomes the prompt and the graph is laid out left to right.
type GraphvizImporter struct {
	opts Options
}

// NewGraphvizImporter creates a new Graphviz importer
func NewGraphvizImporter(opts Options) *GraphvizImporter {
	return &GraphvizImporter{opts: opts}
}

var (
	dotEdge      = regexp.MustCompile(`^(.+?\s*->\s*[^\[;]+?)\s*(?:\[(.*)\])?\s*;?$`)
	dotNode      = regexp.MustCompile(`^("(?:[^"\\]|\\.)*"|[A-Za-z0-9_.]+)\s*\[(.*)\]\s*;?$`)
	dotAttribute = regexp.MustCompile(`(\w+)\s*=\s*(?:"((?:[^"\\]|\\.)*)"|([^,\s\]]+))`)
	dotPosition  = regexp.MustCompile(`^\s*(-?[0-9.]+)\s*,\s*(-?[0-9.]+)\s*!?\s*$`)
)

// CanImport checks if the content is a Graphviz digraph
func (g *GraphvizImporter) CanImport(content string) bool {
	content = strings.TrimSpace(content)
	return strings.HasPrefix(content, "digraph") || strings.HasPrefix(content, "strict digraph")
}

type dotNodeState struct {
	handle diagram.Handle
	pinned bool
}

// Import converts Graphviz DOT content to a graph
func (g *GraphvizImporter) Import(content string) (*diagram.Graph, error) {
	log := g.opts.logger()
	graph := diagram.NewGraph(g.opts.IDs)
	nodes := make(map[string]*dotNodeState)
	edges := make(map[diagram.Handle][]diagram.Handle)

	ensure := func(name string) *dotNodeState {
		name = dotName(name)
		if state, ok := nodes[name]; ok {
			return state
		}
		h := graph.Insert(diagram.Node{
			ID:     name,
			Width:  diagram.DefaultWidth,
			Height: diagram.DefaultHeight,
			Prompt: name,
		})
		state := &dotNodeState{handle: h}
		nodes[name] = state
		return state
	}

	for lineNo, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "//") || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "digraph") || strings.HasPrefix(line, "strict digraph") ||
			strings.HasPrefix(line, "subgraph") || line == "{" || line == "}" {
			continue
		}
		if strings.HasPrefix(line, "node ") || strings.HasPrefix(line, "node[") ||
			strings.HasPrefix(line, "edge ") || strings.HasPrefix(line, "edge[") ||
			strings.HasPrefix(line, "graph ") || strings.HasPrefix(line, "graph[") ||
			dotAttribute.MatchString(line) && !strings.Contains(line, "[") && !strings.Contains(line, "->") {
			continue
		}

		if match := dotNode.FindStringSubmatch(line); match != nil {
			state := ensure(match[1])
			attrs := g.parseAttributes(match[2])
			if err := g.applyAttributes(graph, state, attrs); err != nil {
				return nil, fmt.Errorf("%w: line %d: %w", diagram.ErrInvalidFormat, lineNo+1, err)
			}
			continue
		}

		if match := dotEdge.FindStringSubmatch(line); match != nil {
			refs := strings.Split(match[1], "->")
			var prev *dotNodeState
			for _, ref := range refs {
				state := ensure(strings.TrimSpace(ref))
				if prev != nil {
					edges[prev.handle] = append(edges[prev.handle], state.handle)
				}
				prev = state
			}
			continue
		}

		log.Debug("ignoring dot statement", zap.Int("line", lineNo+1), zap.String("text", line))
	}

	if graph.Len() == 0 {
		return nil, fmt.Errorf("%w: no nodes found in Graphviz diagram", diagram.ErrInvalidFormat)
	}

	for from, to := range edges {
		graph.SetConnections(from, to)
	}

	pinned := true
	for _, state := range nodes {
		pinned = pinned && state.pinned
	}
	if !pinned {
		if err := layout.NewHorizontalLayout().Layout(graph); err != nil {
			return nil, fmt.Errorf("layout: %w", err)
		}
	}
	return graph, nil
}

func (g *GraphvizImporter) applyAttributes(graph *diagram.Graph, state *dotNodeState, attrs map[string]string) error {
	n, _ := graph.Node(state.handle)
	if label, ok := attrs["label"]; ok {
		id, prompt, response := splitDotLabel(label)
		if id == "" {
			id = n.ID
		}
		if err := graph.EditNode(state.handle, diagram.NodeEdit{ID: id, Prompt: prompt, Response: response}); err != nil {
			return err
		}
	}
	if pos, ok := attrs["pos"]; ok {
		match := dotPosition.FindStringSubmatch(pos)
		if match == nil {
			return fmt.Errorf("bad pos %q", pos)
		}
		cx, err := strconv.ParseFloat(match[1], 64)
		if err != nil {
			return err
		}
		cy, err := strconv.ParseFloat(match[2], 64)
		if err != nil {
			return err
		}
		// Graphviz y grows upwards.
		graph.MoveNode(state.handle, int(cx)-n.Width/2, -int(cy)-n.Height/2)
		state.pinned = true
	}
	return nil
}

// parseAttributes parses DOT attribute string into a map. Quoted values
// are unescaped.
func (g *GraphvizImporter) parseAttributes(attrStr string) map[string]string {
	attrs := make(map[string]string)
	for _, match := range dotAttribute.FindAllStringSubmatch(attrStr, -1) {
		if match[3] != "" {
			attrs[match[1]] = match[3]
		} else {
			attrs[match[1]] = unescapeDot(match[2])
		}
	}
	return attrs
}

// splitDotLabel reverses the exporter's "id\n\nprompt\n---\nresponse".
func splitDotLabel(label string) (id, prompt, response string) {
	head, body, ok := strings.Cut(label, "\n\n")
	if !ok {
		return "", label, ""
	}
	prompt, response, ok = strings.Cut(body, "\n---\n")
	if !ok {
		return head, body, ""
	}
	return head, prompt, response
}

func dotName(name string) string {
	name = strings.TrimSpace(name)
	if len(name) >= 2 && strings.HasPrefix(name, `"`) && strings.HasSuffix(name, `"`) {
		return unescapeDot(name[1 : len(name)-1])
	}
	return name
}

// unescapeDot resolves escapes in a quoted DOT string. \n, \l and \r
// become newlines; any other escaped byte stands for itself.
func unescapeDot(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			sb.WriteByte(c)
			continue
		}
		i++
		switch s[i] {
		case 'n', 'l', 'r':
			sb.WriteByte('\n')
		default:
			sb.WriteByte(s[i])
		}
	}
	return sb.String()
}

// GetFormatName returns the format name
func (g *GraphvizImporter) GetFormatName() string {
	return "Graphviz"
}

// GetFileExtensions returns common file extensions
func (g *GraphvizImporter) GetFileExtensions() []string {
	return []string{".dot", ".gv"}
}
