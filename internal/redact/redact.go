// Package redact implements selective disclosure: replacing out-of-scope
// nodes with salted boundary references while preserving edge
// connectivity and L1 validity, and stripping properties the target
// scope doesn't permit.
package redact

import (
	"context"
	"fmt"

	"github.com/rawblock/omtsf-engine/internal/validate"
	"github.com/rawblock/omtsf-engine/pkg/model"
)

// Redact narrows file to targetScope, optionally restricting output to
// an explicit allowlist of node ids. retainIDs == nil means no allowlist
// was requested (only the scope-driven classification applies); a
// non-nil map, even empty, promotes every node absent from it to a
// boundary reference.
//
// Redact rejects any request that would relax disclosure relative to
// file's own disclosure_scope: a file with no declared scope is treated
// as maximally disclosed ("internal"), so redaction is always permitted
// against it.
func Redact(file *model.File, targetScope string, retainIDs map[string]bool) (*model.File, error) {
	if model.ScopeRank(targetScope) == -1 {
		return nil, fmt.Errorf("redact: unrecognized target scope %q", targetScope)
	}

	currentScope := file.DisclosureScope
	currentRank := model.ScopeRank(currentScope)
	if currentScope == "" {
		currentRank = model.ScopeRank(model.ScopeInternal)
	}
	if model.ScopeRank(targetScope) > currentRank {
		return nil, &ScopeRelaxationError{From: currentScope, To: targetScope}
	}

	classes := make(map[string]nodeClass, len(file.Nodes))
	for _, n := range file.Nodes {
		classes[n.ID] = classifyNode(n, targetScope, retainIDs)
	}

	outNodes := make([]model.Node, 0, len(file.Nodes))
	for _, n := range file.Nodes {
		switch classes[n.ID] {
		case classOmit:
			continue
		case classReplace:
			value, err := boundaryHashValue(n.Identifiers, n.Type, file.FileSalt)
			if err != nil {
				return nil, err
			}
			outNodes = append(outNodes, model.Node{
				ID:   n.ID,
				Type: model.NodeBoundaryRef,
				Identifiers: []model.Identifier{
					{Scheme: model.SchemeOpaque, Value: value},
				},
			})
		default:
			outNodes = append(outNodes, stripNodeIdentifiers(n, targetScope))
		}
	}

	outEdges := make([]model.Edge, 0, len(file.Edges))
	for _, e := range file.Edges {
		srcClass, srcOK := classes[e.Source]
		dstClass, dstOK := classes[e.Target]
		if !srcOK || !dstOK {
			continue
		}
		if targetScope == model.ScopePublic && e.Type == model.EdgeBeneficialOwnership {
			continue
		}
		if srcClass == classOmit || dstClass == classOmit {
			continue
		}
		if srcClass == classReplace && dstClass == classReplace {
			continue
		}
		outEdges = append(outEdges, stripEdgeProperties(e, targetScope))
	}

	out := &model.File{
		OmtsfVersion:    file.OmtsfVersion,
		SnapshotDate:    file.SnapshotDate,
		FileSalt:        file.FileSalt,
		DisclosureScope: targetScope,
		ReportingEntity: file.ReportingEntity,
		Nodes:           outNodes,
		Edges:           outEdges,
		MergeMetadata:   file.MergeMetadata,
	}

	result := validate.Validate(context.Background(), out, validate.Config{RunL2: false, RunL3: false})
	if !result.IsConformant() {
		return nil, &InvalidOutputError{Diagnostics: result.Diagnostics}
	}

	return out, nil
}
