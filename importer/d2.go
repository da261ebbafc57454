package importer

import (
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"branch/diagram"
	"branch/layout"
)

// D2Importer imports D2 diagrams. A shape's label is split into prompt and
// response at its first blank line and a tooltip names the node; shapes
// without a tooltip use their key as id. Containers are flattened.
type D2Importer struct {
	opts Options
}

// NewD2Importer creates a new D2 importer
func NewD2Importer(opts Options) *D2Importer {
	return &D2Importer{opts: opts}
}

const d2Key = `[A-Za-z0-9_.\-]+`

var (
	d2Bare      = regexp.MustCompile(`^(` + d2Key + `)$`)
	d2Direction = regexp.MustCompile(`^direction\s*:\s*(\w+)$`)
	d2Shape     = regexp.MustCompile(`^(` + d2Key + `)\s*:\s*(?:"((?:[^"\\]|\\.)*)"|([^{"]*?))\s*(\{)?\s*(?:\})?$`)
	d2Open      = regexp.MustCompile(`^(` + d2Key + `)\s*\{$`)
	d2Tooltip   = regexp.MustCompile(`^tooltip\s*:\s*(?:"((?:[^"\\]|\\.)*)"|(.*))$`)
	d2Arrow     = regexp.MustCompile(`\s*(?:<->|->|<-|--)\s*`)
	d2Edge      = regexp.MustCompile(`^` + d2Key + `(?:\s*(?:<->|->|<-|--)\s*` + d2Key + `)+\s*(?::[^{]*)?(\{)?$`)
)

// d2Attributes are the reserved keys that configure a shape instead of
// declaring a child.
var d2Attributes = map[string]bool{
	"shape": true, "style": true, "label": true, "icon": true, "near": true,
	"width": true, "height": true, "link": true, "class": true,
	"direction": true, "constraint": true, "tooltip": true,
}

func isD2Attribute(key string) bool {
	return d2Attributes[key] || strings.HasPrefix(key, "style.")
}

// CanImport checks if the content looks like D2: shapes or connections and
// none of the other formats' headers.
func (d *D2Importer) CanImport(content string) bool {
	content = strings.TrimSpace(content)
	for _, prefix := range []string{"{", "@startuml", "graph", "flowchart", "digraph", "strict digraph", "```"} {
		if strings.HasPrefix(content, prefix) {
			return false
		}
	}
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if d2Edge.MatchString(line) || d2Direction.MatchString(line) {
			return true
		}
	}
	return false
}

type d2Node struct {
	handle   diagram.Handle
	key      string
	label    string
	labelled bool
	tooltip  string
}

// Import converts D2 content to a graph
func (d *D2Importer) Import(content string) (*diagram.Graph, error) {
	log := d.opts.logger()
	g := diagram.NewGraph(d.opts.IDs)
	nodes := make(map[string]*d2Node)
	var order []string
	edges := make(map[diagram.Handle][]diagram.Handle)
	direction := ""
	// open holds the shapes whose blocks are still open. Entries with an
	// empty key are blocks that are not shapes, such as style maps.
	var open []*d2Node

	ensure := func(key string) *d2Node {
		if n, ok := nodes[key]; ok {
			return n
		}
		n := &d2Node{key: key, handle: g.Insert(diagram.Node{
			ID:     key,
			Width:  diagram.DefaultWidth,
			Height: diagram.DefaultHeight,
		})}
		nodes[key] = n
		order = append(order, key)
		return n
	}

	for lineNo, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if line == "}" {
			if len(open) == 0 {
				return nil, fmt.Errorf("%w: line %d: unexpected }", diagram.ErrInvalidFormat, lineNo+1)
			}
			open = open[:len(open)-1]
			continue
		}

		var parent *d2Node
		if len(open) > 0 {
			parent = open[len(open)-1]
		}

		if match := d2Tooltip.FindStringSubmatch(line); match != nil && parent != nil {
			parent.tooltip = unescapeD2(match[1] + strings.TrimSpace(match[2]))
			continue
		}

		if match := d2Direction.FindStringSubmatch(line); match != nil && len(open) == 0 {
			direction = match[1]
			continue
		}

		if match := d2Edge.FindStringSubmatch(line); match != nil {
			if match[1] != "" {
				open = append(open, &d2Node{})
			}
			refs, _, _ := strings.Cut(strings.TrimSuffix(line, "{"), ":")
			parts := d2Arrow.Split(strings.TrimSpace(refs), -1)
			arrows := d2Arrow.FindAllString(refs, -1)
			for i := 1; i < len(parts); i++ {
				from, to := ensure(parts[i-1]), ensure(parts[i])
				switch strings.TrimSpace(arrows[i-1]) {
				case "<-":
					edges[to.handle] = append(edges[to.handle], from.handle)
				case "<->":
					edges[from.handle] = append(edges[from.handle], to.handle)
					edges[to.handle] = append(edges[to.handle], from.handle)
				default:
					edges[from.handle] = append(edges[from.handle], to.handle)
				}
			}
			continue
		}

		if match := d2Open.FindStringSubmatch(line); match != nil {
			if (parent != nil && parent.key == "") || isD2Attribute(match[1]) {
				open = append(open, &d2Node{})
				continue
			}
			open = append(open, ensure(match[1]))
			continue
		}

		if match := d2Shape.FindStringSubmatch(line); match != nil {
			block := match[4] != "" && !strings.HasSuffix(line, "}")
			if (parent != nil && parent.key == "") || isD2Attribute(match[1]) {
				if match[1] == "label" && parent != nil && parent.key != "" {
					parent.label = unescapeD2(match[2] + strings.TrimSpace(match[3]))
					parent.labelled = true
				}
				if block {
					open = append(open, &d2Node{})
				}
				continue
			}
			n := ensure(match[1])
			n.label = unescapeD2(match[2] + strings.TrimSpace(match[3]))
			n.labelled = true
			if block {
				open = append(open, n)
			}
			continue
		}

		if match := d2Bare.FindStringSubmatch(line); match != nil && !isD2Attribute(match[1]) &&
			(parent == nil || parent.key != "") {
			ensure(match[1])
			continue
		}

		log.Debug("ignoring d2 statement", zap.Int("line", lineNo+1), zap.String("text", line))
	}

	if len(open) > 0 {
		return nil, fmt.Errorf("%w: unclosed block", diagram.ErrInvalidFormat)
	}
	if g.Len() == 0 {
		return nil, fmt.Errorf("%w: no shapes found in D2 diagram", diagram.ErrInvalidFormat)
	}

	for _, key := range order {
		n := nodes[key]
		edit := diagram.NodeEdit{ID: key, Prompt: key}
		if n.tooltip != "" {
			edit.ID = n.tooltip
		}
		if n.labelled {
			edit.Prompt, edit.Response, _ = strings.Cut(n.label, "\n\n")
		}
		if err := g.EditNode(n.handle, edit); err != nil {
			return nil, err
		}
		g.SetConnections(n.handle, edges[n.handle])
	}

	engine := layout.ForDirection("LR")
	if direction == "down" || direction == "up" {
		engine = layout.ForDirection("TD")
	}
	if err := engine.Layout(g); err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	return g, nil
}

// unescapeD2 resolves escapes in a double quoted D2 string.
func unescapeD2(s string) string {
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
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		default:
			sb.WriteByte(s[i])
		}
	}
	return sb.String()
}

// GetFormatName returns the format name
func (d *D2Importer) GetFormatName() string {
	return "D2"
}

// GetFileExtensions returns common file extensions
func (d *D2Importer) GetFileExtensions() []string {
	return []string{".d2"}
}
