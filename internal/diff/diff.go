// Package diff implements structural comparison between two OMTSF
// files: pairing nodes and edges across files by the same identity
// predicates the merge engine uses to pair them within one file, then
// reporting additions, removals, and field-level modifications for the
// matched pairs.
package diff

import "github.com/rawblock/omtsf-engine/pkg/model"

// Diff compares file a against file b and returns the changes needed to
// turn a into b. filter narrows the comparison to selected node/edge
// types and silences named fields; the zero value compares everything.
func Diff(a, b *model.File, filter DiffFilter) Result {
	nodeTypeA := make(map[string]string, len(a.Nodes))
	for _, n := range a.Nodes {
		nodeTypeA[n.ID] = n.Type
	}
	nodeTypeB := make(map[string]string, len(b.Nodes))
	for _, n := range b.Nodes {
		nodeTypeB[n.ID] = n.Type
	}

	np := pairNodes(a.Nodes, b.Nodes, filter)
	ep := pairEdges(a.Edges, b.Edges, np, filter, nodeTypeA, nodeTypeB)

	return Result{
		NodesAdded:    np.added,
		NodesRemoved:  np.removed,
		NodesModified: np.modified,
		EdgesAdded:    ep.added,
		EdgesRemoved:  ep.removed,
		EdgesModified: ep.modified,
		Warnings:      np.warnings,
	}
}
