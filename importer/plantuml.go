package importer

import (
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"branch/diagram"
	"branch/layout"
)

// PlantUMLImporter imports PlantUML state diagrams. A state's
// "<b>Prompt:</b>" and "<b>Response:</b>" description lines fill the
// node's fields; other description lines are appended to the prompt.
type PlantUMLImporter struct {
	opts Options
}

// NewPlantUMLImporter creates a new PlantUML importer
func NewPlantUMLImporter(opts Options) *PlantUMLImporter {
	return &PlantUMLImporter{opts: opts}
}

var (
	umlState       = regexp.MustCompile(`^state\s+(?:"((?:[^"\\]|\\.)*)"\s+as\s+)?([A-Za-z0-9_.]+)\s*(?:\{)?$`)
	umlDescription = regexp.MustCompile(`^([A-Za-z0-9_.]+)\s*:\s*(.*)$`)
	umlTransition  = regexp.MustCompile(`^(\[\*\]|[A-Za-z0-9_.]+)\s*-+(?:\[[^\]]*\])?(?:right|left|up|down)?-*>\s*(\[\*\]|[A-Za-z0-9_.]+)\s*(?::.*)?$`)
)

const (
	umlPromptTag   = "<b>Prompt:</b>"
	umlResponseTag = "<b>Response:</b>"
)

// CanImport checks if the content is a PlantUML diagram
func (p *PlantUMLImporter) CanImport(content string) bool {
	return strings.HasPrefix(strings.TrimSpace(content), "@startuml")
}

type umlNode struct {
	handle   diagram.Handle
	prompt   []string
	response string
}

// Import converts PlantUML content to a graph
func (p *PlantUMLImporter) Import(content string) (*diagram.Graph, error) {
	log := p.opts.logger()
	g := diagram.NewGraph(p.opts.IDs)
	nodes := make(map[string]*umlNode)
	var order []string
	edges := make(map[diagram.Handle][]diagram.Handle)

	ensure := func(name string) *umlNode {
		if n, ok := nodes[name]; ok {
			return n
		}
		n := &umlNode{handle: g.Insert(diagram.Node{
			ID:     name,
			Width:  diagram.DefaultWidth,
			Height: diagram.DefaultHeight,
		})}
		nodes[name] = n
		order = append(order, name)
		return n
	}

	for lineNo, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case line == "", line == "}", strings.HasPrefix(line, "'"),
			strings.HasPrefix(line, "@startuml"), strings.HasPrefix(line, "@enduml"),
			strings.HasPrefix(line, "skinparam"), strings.HasPrefix(line, "hide "):
			continue
		}

		if match := umlState.FindStringSubmatch(line); match != nil {
			n := ensure(match[2])
			if match[1] != "" {
				cur, _ := g.Node(n.handle)
				if err := g.EditNode(n.handle, diagram.NodeEdit{
					ID:       unescapeUML(match[1]),
					Prompt:   cur.Prompt,
					Response: cur.Response,
				}); err != nil {
					return nil, err
				}
			}
			continue
		}

		if match := umlTransition.FindStringSubmatch(line); match != nil {
			if match[1] == "[*]" || match[2] == "[*]" {
				continue
			}
			from, to := ensure(match[1]), ensure(match[2])
			edges[from.handle] = append(edges[from.handle], to.handle)
			continue
		}

		if match := umlDescription.FindStringSubmatch(line); match != nil {
			n := ensure(match[1])
			text := strings.TrimSpace(match[2])
			switch {
			case strings.HasPrefix(text, umlPromptTag):
				n.prompt = append(n.prompt, unescapeUML(strings.TrimSpace(strings.TrimPrefix(text, umlPromptTag))))
			case strings.HasPrefix(text, umlResponseTag):
				n.response = unescapeUML(strings.TrimSpace(strings.TrimPrefix(text, umlResponseTag)))
			default:
				n.prompt = append(n.prompt, unescapeUML(text))
			}
			continue
		}

		log.Debug("ignoring plantuml statement", zap.Int("line", lineNo+1), zap.String("text", line))
	}

	if g.Len() == 0 {
		return nil, fmt.Errorf("%w: no states found in PlantUML diagram", diagram.ErrInvalidFormat)
	}

	for _, name := range order {
		n := nodes[name]
		cur, _ := g.Node(n.handle)
		if err := g.EditNode(n.handle, diagram.NodeEdit{
			ID:       cur.ID,
			Prompt:   strings.Join(n.prompt, "\n"),
			Response: n.response,
		}); err != nil {
			return nil, err
		}
		g.SetConnections(n.handle, edges[n.handle])
	}

	if err := layout.NewHorizontalLayout().Layout(g); err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	return g, nil
}

// unescapeUML turns the literal \n PlantUML uses for line breaks back
// into newlines.
func unescapeUML(s string) string {
	return strings.ReplaceAll(s, `\n`, "\n")
}

// GetFormatName returns the format name
func (p *PlantUMLImporter) GetFormatName() string {
	return "PlantUML"
}

// GetFileExtensions returns common file extensions
func (p *PlantUMLImporter) GetFileExtensions() []string {
	return []string{".puml", ".plantuml", ".pu"}
}
