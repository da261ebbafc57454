// Package validation reports problems in dialogue graphs and graph files
// that the editor tolerates but a story player would trip over.
package validation

import (
	"encoding/json"
	"fmt"
	"sort"

	"branch/diagram"
)

// Severity ranks a problem.
type Severity int

const (
	Warning Severity = iota
	Error
)

// String returns the severity label.
func (s Severity) String() string {
	if s == Error {
		return "error"
	}
	return "warning"
}

// ValidationError is one problem found in a graph or file.
type ValidationError struct {
	Severity Severity
	NodeID   string
	Message  string
}

// String formats the problem as "severity [id]: message".
func (e ValidationError) String() string {
	return fmt.Sprintf("%s [%s]: %s", e.Severity, e.NodeID, e.Message)
}

// Report collects the problems of one validation run.
type Report struct {
	Problems []ValidationError
}

// HasErrors reports whether any problem is an error.
func (r Report) HasErrors() bool {
	for _, p := range r.Problems {
		if p.Severity == Error {
			return true
		}
	}
	return false
}

// Count returns the number of problems with severity s.
func (r Report) Count(s Severity) int {
	n := 0
	for _, p := range r.Problems {
		if p.Severity == s {
			n++
		}
	}
	return n
}

func (r *Report) addError(id, format string, args ...interface{}) {
	r.Problems = append(r.Problems, ValidationError{Severity: Error, NodeID: id, Message: fmt.Sprintf(format, args...)})
}

func (r *Report) addWarning(id, format string, args ...interface{}) {
	r.Problems = append(r.Problems, ValidationError{Severity: Warning, NodeID: id, Message: fmt.Sprintf(format, args...)})
}

// Graph checks an in-memory graph, node by node in insertion order:
// empty and duplicate ids, non-positive sizes, self connections and
// repeated connections. Duplicate ids are errors because the file format
// keys nodes by id and would keep only one of them.
func Graph(g *diagram.Graph) Report {
	var r Report
	seen := make(map[string]int)
	for _, n := range g.Nodes() {
		seen[n.ID]++
	}
	reported := make(map[string]bool)

	for _, n := range g.Nodes() {
		if n.ID == "" {
			r.addError(n.ID, "node has an empty id")
		}
		if seen[n.ID] > 1 && !reported[n.ID] {
			r.addError(n.ID, "id is used by %d nodes", seen[n.ID])
			reported[n.ID] = true
		}
		if n.Width <= 0 || n.Height <= 0 {
			r.addError(n.ID, "size %dx%d is not positive", n.Width, n.Height)
		}

		targets := make(map[diagram.Handle]int)
		for _, to := range g.Connections(n.Handle()) {
			targets[to]++
			if targets[to] != 2 {
				continue
			}
			dest, _ := g.Node(to)
			r.addWarning(n.ID, "connects to %q more than once", dest.ID)
		}
		if targets[n.Handle()] > 0 {
			r.addWarning(n.ID, "connects to itself")
		}
	}
	return r
}

// fileRecord is the part of a file member the document checks read.
type fileRecord struct {
	ID          string   `json:"id"`
	Connections []string `json:"connections"`
}

// Document checks raw interchange JSON for problems the loader repairs
// silently: member keys that differ from the node id, ids defined by more
// than one member, and connections to ids no member defines. Members are
// visited in key order.
func Document(data []byte) (Report, error) {
	var members map[string]fileRecord
	if err := json.Unmarshal(data, &members); err != nil {
		return Report{}, fmt.Errorf("%w: %w", diagram.ErrInvalidFormat, err)
	}

	keys := make([]string, 0, len(members))
	for k := range members {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var r Report
	defined := make(map[string][]string)
	for _, k := range keys {
		rec := members[k]
		defined[rec.ID] = append(defined[rec.ID], k)
		if rec.ID != k {
			r.addWarning(rec.ID, "stored under key %q", k)
		}
	}
	for _, k := range keys {
		rec := members[k]
		if owners := defined[rec.ID]; len(owners) > 1 && owners[0] == k {
			r.addError(rec.ID, "defined by %d members, only the last is loaded", len(owners))
		}
		for _, to := range rec.Connections {
			if _, ok := defined[to]; !ok {
				r.addWarning(rec.ID, "connection to unknown node %q is dropped on load", to)
			}
		}
	}
	return r, nil
}
