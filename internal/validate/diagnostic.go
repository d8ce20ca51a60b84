package validate

import (
	"fmt"

	"github.com/rawblock/omtsf-engine/pkg/model"
)

// RuleID identifies the rule that produced a Diagnostic. Values for
// out-of-core extension rules (none defined by this engine today, but
// reserved for callers layering their own checks on top) take the form
// "extension:<name>".
type RuleID string

const (
	RuleGDM01 RuleID = "L1-GDM-01"
	RuleGDM02 RuleID = "L1-GDM-02"
	RuleGDM03 RuleID = "L1-GDM-03"
	RuleGDM04 RuleID = "L1-GDM-04"
	RuleGDM05 RuleID = "L1-GDM-05"
	RuleGDM06 RuleID = "L1-GDM-06"
	RuleEDG01 RuleID = "L1-EDG-01"

	RuleEID01 RuleID = "L1-EID-01"
	RuleEID02 RuleID = "L1-EID-02"
	RuleEID03 RuleID = "L1-EID-03"
	RuleEID04 RuleID = "L1-EID-04"
	RuleEID05 RuleID = "L1-EID-05"
	RuleEID06 RuleID = "L1-EID-06"
	RuleEID07 RuleID = "L1-EID-07"
	RuleEID08 RuleID = "L1-EID-08"
	RuleEID09 RuleID = "L1-EID-09"
	RuleEID10 RuleID = "L1-EID-10"
	RuleEID11 RuleID = "L1-EID-11"

	RuleSDI01 RuleID = "L1-SDI-01"
	RuleSDI02 RuleID = "L1-SDI-02"

	RuleCOQ01 RuleID = "L2-COQ-01" // organization missing non-internal identifier
	RuleCOQ02 RuleID = "L2-COQ-02" // ownership missing valid_from
	RuleCOQ03 RuleID = "L2-COQ-03" // reassignable scheme missing temporal fields
	RuleCOQ04 RuleID = "L2-COQ-04" // LEI lapsed/retired/merged
	RuleCOQ05 RuleID = "L2-COQ-05" // LEI self-declared ANNULLED (error severity; see RuleXRF01 for the GLEIF-backed L3 check)

	RuleXRF01 RuleID = "L3-XRF-01" // GLEIF verification mismatch / annulled LEI still referenced
	RuleXRF02 RuleID = "L3-XRF-02" // ownership percentage sum exceeds 100 with temporal overlap
	RuleXRF03 RuleID = "L3-XRF-03" // legal_parentage cycle

	RuleInternal RuleID = "internal"
)

// ExtensionRule builds a RuleID for a caller-defined rule outside this
// engine's fixed catalog.
func ExtensionRule(name string) RuleID {
	return RuleID("extension:" + name)
}

// LocationKind discriminates which Location fields are meaningful.
type LocationKind string

const (
	LocationHeader     LocationKind = "header"
	LocationNode       LocationKind = "node"
	LocationEdge       LocationKind = "edge"
	LocationIdentifier LocationKind = "identifier"
	LocationGlobal     LocationKind = "global"
)

// Location pinpoints where a diagnostic applies.
type Location struct {
	Kind  LocationKind
	Field string
	// NodeID is set for LocationNode and LocationIdentifier.
	NodeID string
	// EdgeID is set for LocationEdge.
	EdgeID string
	// Index is the identifier's position within its owning node's
	// identifiers slice; -1 when not applicable.
	Index int
}

func HeaderLocation(field string) Location { return Location{Kind: LocationHeader, Field: field, Index: -1} }

func NodeLocation(nodeID, field string) Location {
	return Location{Kind: LocationNode, NodeID: nodeID, Field: field, Index: -1}
}

func EdgeLocation(edgeID, field string) Location {
	return Location{Kind: LocationEdge, EdgeID: edgeID, Field: field, Index: -1}
}

func IdentifierLocation(nodeID string, index int, field string) Location {
	return Location{Kind: LocationIdentifier, NodeID: nodeID, Index: index, Field: field}
}

func GlobalLocation() Location { return Location{Kind: LocationGlobal, Index: -1} }

// String renders a Location for human-readable diagnostic messages.
func (l Location) String() string {
	switch l.Kind {
	case LocationHeader:
		return fmt.Sprintf("header.%s", l.Field)
	case LocationNode:
		if l.Field == "" {
			return fmt.Sprintf("node[%s]", l.NodeID)
		}
		return fmt.Sprintf("node[%s].%s", l.NodeID, l.Field)
	case LocationEdge:
		if l.Field == "" {
			return fmt.Sprintf("edge[%s]", l.EdgeID)
		}
		return fmt.Sprintf("edge[%s].%s", l.EdgeID, l.Field)
	case LocationIdentifier:
		return fmt.Sprintf("node[%s].identifiers[%d].%s", l.NodeID, l.Index, l.Field)
	default:
		return "global"
	}
}

// Diagnostic is one rule finding.
type Diagnostic struct {
	RuleID   RuleID
	Severity model.Severity
	Location Location
	Message  string
}
