package redact

import "github.com/rawblock/omtsf-engine/pkg/model"

// nodeClass is the outcome of classifying one node for a redaction pass.
type nodeClass int

const (
	classRetain nodeClass = iota
	classReplace
	classOmit
)

// classifyNode implements the redaction classification table. retainIDs
// nil means the caller supplied no allowlist at all, so only the base
// scope rule applies; retainIDs non-nil (even empty) means the caller
// asked for an explicit allowlist, promoting every node absent from it
// to Replace. A node already typed boundary_ref always passes through
// untouched, since it has already been through a redaction pass.
func classifyNode(n model.Node, targetScope string, retainIDs map[string]bool) nodeClass {
	if n.Type == model.NodeBoundaryRef {
		return classRetain
	}
	if targetScope == model.ScopePublic && n.Type == model.NodePerson {
		return classOmit
	}
	if retainIDs != nil && !retainIDs[n.ID] {
		return classReplace
	}
	return classRetain
}
