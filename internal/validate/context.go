// Package validate implements the three-level rule engine over an
// OMTSF file: structural integrity errors, semantic-completeness
// warnings, and external-cross-reference info findings.
package validate

import "github.com/rawblock/omtsf-engine/pkg/model"

// ValidationContext is built once per Validate call and threaded through
// every rule: the file itself plus the lookup indices rules need to
// resolve references without re-scanning the node/edge slices.
type ValidationContext struct {
	File     *model.File
	NodeByID map[string]*model.Node
	EdgeByID map[string]*model.Edge
	NodeIDs  map[string]bool
	EdgeIDs  map[string]bool
}

// NewValidationContext indexes a file's nodes and edges by id.
func NewValidationContext(f *model.File) *ValidationContext {
	vc := &ValidationContext{
		File:     f,
		NodeByID: make(map[string]*model.Node, len(f.Nodes)),
		EdgeByID: make(map[string]*model.Edge, len(f.Edges)),
		NodeIDs:  make(map[string]bool, len(f.Nodes)),
		EdgeIDs:  make(map[string]bool, len(f.Edges)),
	}
	for i := range f.Nodes {
		vc.NodeByID[f.Nodes[i].ID] = &f.Nodes[i]
		vc.NodeIDs[f.Nodes[i].ID] = true
	}
	for i := range f.Edges {
		vc.EdgeByID[f.Edges[i].ID] = &f.Edges[i]
		vc.EdgeIDs[f.Edges[i].ID] = true
	}
	return vc
}
