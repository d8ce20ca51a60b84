package diff

import (
	"fmt"

	"github.com/rawblock/omtsf-engine/pkg/model"
)

// FieldChange is one field-level difference between the A-side and
// B-side of a matched pair. OldValue/NewValue are nil when the field was
// absent on that side, which is how presence/absence asymmetry is
// represented rather than as a distinct change kind.
type FieldChange struct {
	Field    string
	OldValue any
	NewValue any
}

// NodeChange is a matched node pair that differs on at least one field.
type NodeChange struct {
	AID     string
	BID     string
	Changes []FieldChange
}

// EdgeChange is a matched edge pair that differs on at least one field.
type EdgeChange struct {
	AID     string
	BID     string
	Changes []FieldChange
}

// Warning is a non-fatal finding surfaced alongside a diff, such as an
// ambiguous pairing the caller may want to review by hand.
type Warning struct {
	Kind     string
	NodeIDsA []string
	NodeIDsB []string
}

// AmbiguousNodeGroup builds the warning for a node-pairing group that
// contains more than one node from the same input file. Every member is
// still reported as matched (per the pairing policy), but the caller
// should not treat the pairing as certain.
func AmbiguousNodeGroup(idsA, idsB []string) Warning {
	return Warning{Kind: "AmbiguousNodeGroup", NodeIDsA: idsA, NodeIDsB: idsB}
}

func (w Warning) String() string {
	switch w.Kind {
	case "AmbiguousNodeGroup":
		return fmt.Sprintf("AmbiguousNodeGroup{a=%v, b=%v}", w.NodeIDsA, w.NodeIDsB)
	default:
		return w.Kind
	}
}

// Result is the outcome of diffing file A against file B.
type Result struct {
	NodesAdded    []model.Node
	NodesRemoved  []model.Node
	NodesModified []NodeChange

	EdgesAdded    []model.Edge
	EdgesRemoved  []model.Edge
	EdgesModified []EdgeChange

	Warnings []Warning
}

// IsEmpty reports whether the diff found no additions, removals, or
// modifications. Ambiguity warnings alone do not make a diff non-empty.
func (r Result) IsEmpty() bool {
	return len(r.NodesAdded) == 0 && len(r.NodesRemoved) == 0 && len(r.NodesModified) == 0 &&
		len(r.EdgesAdded) == 0 && len(r.EdgesRemoved) == 0 && len(r.EdgesModified) == 0
}
