package model

import "encoding/json"

// Node is a vertex in the supply-chain graph.
type Node struct {
	ID           string         `json:"id"`
	Type         string         `json:"type"`
	Name         string         `json:"name,omitempty"`
	Jurisdiction string         `json:"jurisdiction,omitempty"`
	Identifiers  []Identifier   `json:"identifiers,omitempty"`
	Labels       []Label        `json:"labels,omitempty"`
	DataQuality  *DataQuality   `json:"data_quality,omitempty"`
	Geo          *Geo           `json:"geo,omitempty"`
	Conflicts    []Conflict     `json:"_conflicts,omitempty"`
	Extra        map[string]any `json:"-"`
}

var nodeKnownFields = []string{
	"id", "type", "name", "jurisdiction", "identifiers", "labels",
	"data_quality", "geo", "_conflicts",
}

type nodeAlias Node

// IsExtensionType reports whether the node's type is a reverse-domain
// extension, exempt from type-specific rules.
func (n Node) IsExtensionType() bool {
	return !IsCoreNodeType(n.Type) && IsExtensionType(n.Type)
}

func (n Node) MarshalJSON() ([]byte, error) {
	known, err := json.Marshal(nodeAlias(n))
	if err != nil {
		return nil, err
	}
	return mergeExtra(known, n.Extra)
}

func (n *Node) UnmarshalJSON(data []byte) error {
	var alias nodeAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	*n = Node(alias)

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	extra, err := splitExtra(raw, nodeKnownFields...)
	if err != nil {
		return err
	}
	n.Extra = extra
	return nil
}
