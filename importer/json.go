package importer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"branch/diagram"
)

// record mirrors one member of the interchange object. Pointers tell a
// missing field apart from an empty one.
type record struct {
	ID          *string     `json:"id" validate:"required"`
	Prompt      *string     `json:"prompt" validate:"required"`
	Response    *string     `json:"response" validate:"required"`
	Draw        *drawRecord `json:"draw" validate:"required"`
	Connections []string    `json:"connections" validate:"required"`
}

type drawRecord struct {
	X *json.Number `json:"x" validate:"required"`
	Y *json.Number `json:"y" validate:"required"`
	W *json.Number `json:"w" validate:"required"`
	H *json.Number `json:"h" validate:"required"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateRecord checks the record's shape and formats failures as
// "draw.x is required; connections is required".
func validateRecord(rec *record) error {
	err := validate.Struct(rec)
	if err == nil {
		return nil
	}
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return err
	}
	messages := make([]string, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		_, field, _ := strings.Cut(fe.Namespace(), ".")
		switch fe.Tag() {
		case "required":
			messages = append(messages, field+" is required")
		default:
			messages = append(messages, field+" is invalid")
		}
	}
	return errors.New(strings.Join(messages, "; "))
}

// toInt accepts integral and fractional numbers, truncating the latter.
func toInt(n json.Number) (int, error) {
	if i, err := n.Int64(); err == nil {
		return int(i), nil
	}
	f, err := n.Float64()
	if err != nil {
		return 0, err
	}
	if math.IsInf(f, 0) || math.IsNaN(f) || math.Abs(f) > math.MaxInt32 {
		return 0, fmt.Errorf("number %s out of range", n)
	}
	return int(f), nil
}

func (r *record) node() (diagram.Node, error) {
	n := diagram.Node{ID: *r.ID, Prompt: *r.Prompt, Response: *r.Response}
	fields := []struct {
		name string
		src  *json.Number
		dst  *int
	}{
		{"x", r.Draw.X, &n.X},
		{"y", r.Draw.Y, &n.Y},
		{"w", r.Draw.W, &n.Width},
		{"h", r.Draw.H, &n.Height},
	}
	for _, f := range fields {
		v, err := toInt(*f.src)
		if err != nil {
			return diagram.Node{}, fmt.Errorf("draw.%s: %w", f.name, err)
		}
		*f.dst = v
	}
	return n, nil
}

type loadedNode struct {
	node        diagram.Node
	connections []string
}

func invalid(err error) error {
	return fmt.Errorf("%w: %w", diagram.ErrInvalidFormat, err)
}

// DecodeJSON builds a new graph from interchange JSON. Every node is
// created before any connection is resolved, so a node may refer to one
// defined later in the file. Connections to unknown ids are skipped with a
// warning. Nodes sharing an id resolve to the last definition, placed
// where the id first appeared.
//
// Any syntax or shape problem fails the whole decode with an error
// wrapping diagram.ErrInvalidFormat. The returned graph is unmodified.
func DecodeJSON(data []byte, opts Options) (*diagram.Graph, error) {
	log := opts.logger()
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, invalid(err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, invalid(errors.New("top level value is not an object"))
	}

	var loaded []loadedNode
	index := make(map[string]int)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, invalid(err)
		}
		key, _ := keyTok.(string)

		var rec record
		if err := dec.Decode(&rec); err != nil {
			return nil, invalid(fmt.Errorf("node %q: %w", key, err))
		}
		if err := validateRecord(&rec); err != nil {
			return nil, invalid(fmt.Errorf("node %q: %w", key, err))
		}
		n, err := rec.node()
		if err != nil {
			return nil, invalid(fmt.Errorf("node %q: %w", key, err))
		}
		if key != n.ID {
			log.Debug("member key differs from node id", zap.String("key", key), zap.String("id", n.ID))
		}

		entry := loadedNode{node: n, connections: rec.Connections}
		if i, dup := index[n.ID]; dup {
			log.Warn("duplicate node id, keeping the last definition", zap.String("id", n.ID))
			loaded[i] = entry
			continue
		}
		index[n.ID] = len(loaded)
		loaded = append(loaded, entry)
	}
	if _, err := dec.Token(); err != nil {
		return nil, invalid(err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, invalid(errors.New("unexpected data after top level object"))
	}

	g := diagram.NewGraph(opts.IDs)
	handles := make(map[string]diagram.Handle, len(loaded))
	for _, l := range loaded {
		handles[l.node.ID] = g.Insert(l.node)
	}
	for _, l := range loaded {
		targets := make([]diagram.Handle, 0, len(l.connections))
		for _, id := range l.connections {
			h, ok := handles[id]
			if !ok {
				log.Warn("skipping connection to unknown node",
					zap.String("from", l.node.ID), zap.String("to", id))
				continue
			}
			targets = append(targets, h)
		}
		g.SetConnections(handles[l.node.ID], targets)
	}
	g.MarkSaved()
	return g, nil
}

// JSONImporter reads the interchange format.
type JSONImporter struct {
	opts Options
}

// NewJSONImporter creates a new JSON importer
func NewJSONImporter(opts Options) *JSONImporter {
	return &JSONImporter{opts: opts}
}

// CanImport reports whether content looks like a JSON object.
func (j *JSONImporter) CanImport(content string) bool {
	return strings.HasPrefix(strings.TrimSpace(content), "{")
}

// Import decodes content with DecodeJSON.
func (j *JSONImporter) Import(content string) (*diagram.Graph, error) {
	return DecodeJSON([]byte(content), j.opts)
}

// GetFormatName returns the format name
func (j *JSONImporter) GetFormatName() string {
	return "JSON"
}

// GetFileExtensions returns common file extensions
func (j *JSONImporter) GetFileExtensions() []string {
	return []string{".json"}
}
