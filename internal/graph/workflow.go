// Package graph holds the workflow model, the node processors and the engine
// that walks a workflow for a single query.
package graph

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Kind is the closed set of node behaviours the engine knows about.
type Kind int

const (
	KindUnknown Kind = iota
	KindUserQuery
	KindKnowledgeBase
	KindLLM
	KindOutput
)

var kindNames = map[Kind]string{
	KindUnknown:       "unknown",
	KindUserQuery:     "userQuery",
	KindKnowledgeBase: "knowledgeBase",
	KindLLM:           "llm",
	KindOutput:        "output",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	*k = ParseKind(string(b))
	return nil
}

var kindNormalizer = strings.NewReplacer("_", "", "-", "", " ", "")

// ParseKind maps a builder node type to a Kind. Matching ignores case,
// underscores, dashes and spaces; anything unrecognised is KindUnknown.
func ParseKind(s string) Kind {
	norm := strings.ToLower(kindNormalizer.Replace(s))
	switch {
	case norm == "userquery" || norm == "query" || norm == "input":
		return KindUserQuery
	case strings.HasPrefix(norm, "knowledge"):
		return KindKnowledgeBase
	case strings.HasPrefix(norm, "llm"):
		return KindLLM
	case norm == "output":
		return KindOutput
	}
	return KindUnknown
}

// Node is one processing step. Type keeps the raw builder type so unknown
// kinds can still be reported by name.
type Node struct {
	ID     string
	Kind   Kind
	Type   string
	Config map[string]any
}

type nodeJSON struct {
	ID     string         `json:"id"`
	Type   string         `json:"type"`
	Config map[string]any `json:"config,omitempty"`
	Data   *struct {
		Config map[string]any `json:"config"`
	} `json:"data,omitempty"`
}

func (n *Node) UnmarshalJSON(b []byte) error {
	var raw nodeJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	n.ID = raw.ID
	n.Type = raw.Type
	n.Kind = ParseKind(raw.Type)
	n.Config = raw.Config
	if raw.Data != nil && raw.Data.Config != nil {
		if n.Config == nil {
			n.Config = make(map[string]any, len(raw.Data.Config))
		}
		for k, v := range raw.Data.Config {
			if _, set := n.Config[k]; !set {
				n.Config[k] = v
			}
		}
	}
	return nil
}

func (n Node) MarshalJSON() ([]byte, error) {
	return json.Marshal(nodeJSON{ID: n.ID, Type: n.TypeName(), Config: n.Config})
}

// TypeName is the raw builder type, or the kind name when none was given.
func (n Node) TypeName() string {
	if n.Type != "" {
		return n.Type
	}
	return n.Kind.String()
}

// ConfigString returns the first non-empty string value stored under keys.
func (n Node) ConfigString(keys ...string) (string, bool) {
	for _, k := range keys {
		if v, ok := n.Config[k]; ok {
			if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s), true
			}
		}
	}
	return "", false
}

// ConfigFloat returns the first numeric value stored under keys. Numeric
// strings are accepted since the builder UI sends slider values as text.
func (n Node) ConfigFloat(keys ...string) (float64, bool) {
	for _, k := range keys {
		switch v := n.Config[k].(type) {
		case float64:
			return v, true
		case float32:
			return float64(v), true
		case int:
			return float64(v), true
		case int64:
			return float64(v), true
		case json.Number:
			if f, err := v.Float64(); err == nil {
				return f, true
			}
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}

// ConfigBool returns the first boolean value stored under keys.
func (n Node) ConfigBool(keys ...string) (bool, bool) {
	for _, k := range keys {
		switch v := n.Config[k].(type) {
		case bool:
			return v, true
		case string:
			if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
				return b, true
			}
		}
	}
	return false, false
}

// Edge is a directed connection from Source to Target.
type Edge struct {
	ID     string `json:"id,omitempty"`
	Source string `json:"source"`
	Target string `json:"target"`
}

// Workflow is a user-assembled pipeline. It is never mutated during a run
// and may be shared by concurrent executions.
type Workflow struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// NewWorkflow is the build step: it returns the workflow only if it passes
// structural validation.
func NewWorkflow(nodes []Node, edges []Edge) (*Workflow, error) {
	if err := Validate(nodes, edges); err != nil {
		return nil, err
	}
	return &Workflow{Nodes: nodes, Edges: edges}, nil
}

// Validate checks that the workflow has an entry and a terminal node and
// that node ids are usable as keys.
func Validate(nodes []Node, _ []Edge) error {
	seen := make(map[string]struct{}, len(nodes))
	var hasQuery, hasOutput bool
	for _, n := range nodes {
		if n.ID == "" {
			return fmt.Errorf("%w: node of type %q has no id", ErrInvalidWorkflow, n.TypeName())
		}
		if _, dup := seen[n.ID]; dup {
			return fmt.Errorf("%w: duplicate node id %q", ErrInvalidWorkflow, n.ID)
		}
		seen[n.ID] = struct{}{}
		switch n.Kind {
		case KindUserQuery:
			hasQuery = true
		case KindOutput:
			hasOutput = true
		}
	}
	if !hasQuery {
		return &MissingNodeError{Kind: KindUserQuery}
	}
	if !hasOutput {
		return &MissingNodeError{Kind: KindOutput}
	}
	return nil
}

// EntryNode returns the first UserQuery node in input order.
func EntryNode(nodes []Node) (Node, error) {
	for _, n := range nodes {
		if n.Kind == KindUserQuery {
			return n, nil
		}
	}
	return Node{}, ErrNoEntryNode
}

// NextNode follows the first edge leaving currentID. Later edges with the
// same source are ignored: there is no fan-out.
func NextNode(edges []Edge, currentID string) (string, bool) {
	for _, e := range edges {
		if e.Source == currentID {
			return e.Target, true
		}
	}
	return "", false
}

// NodeByID looks a node up by id.
func (w *Workflow) NodeByID(id string) (Node, bool) {
	for _, n := range w.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

func (w *Workflow) index() map[string]Node {
	idx := make(map[string]Node, len(w.Nodes))
	for _, n := range w.Nodes {
		idx[n.ID] = n
	}
	return idx
}
