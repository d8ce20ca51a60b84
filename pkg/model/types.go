// Package model defines the OMTSF data model: File, Node,
// Edge, and Identifier records with forward-compatible "extra" catch-all
// maps. Every structured type here preserves unknown JSON fields verbatim
// round-trip — deny_unknown_fields discipline is never used anywhere in
// this package.
package model

import "regexp"

// Node types. Extension types are any string matching
// extensionTypePattern and bypass type-specific rules.
const (
	NodeOrganization = "organization"
	NodeFacility     = "facility"
	NodeGood         = "good"
	NodePerson       = "person"
	NodeConsignment  = "consignment"
	NodeAttestation  = "attestation"
	NodeBoundaryRef  = "boundary_ref"
)

// Edge types.
const (
	EdgeOwnership           = "ownership"
	EdgeOperationalControl  = "operational_control"
	EdgeLegalParentage      = "legal_parentage"
	EdgeFormerIdentity      = "former_identity"
	EdgeBeneficialOwnership = "beneficial_ownership"
	EdgeSupplies            = "supplies"
	EdgeSubcontracts        = "subcontracts"
	EdgeTolls               = "tolls"
	EdgeDistributes         = "distributes"
	EdgeBrokers             = "brokers"
	EdgeOperates            = "operates"
	EdgeProduces            = "produces"
	EdgeComposedOf          = "composed_of"
	EdgeSellsTo             = "sells_to"
	EdgeAttestedBy          = "attested_by"
	EdgeSameAs              = "same_as"
)

// Identifier schemes. nat-reg, vat and internal carry a required
// authority; the others do not.
const (
	SchemeNatReg   = "nat-reg"
	SchemeVAT      = "vat"
	SchemeInternal = "internal"
	SchemeLEI      = "lei"
	SchemeDUNS     = "duns"
	SchemeGLN      = "gln"
	SchemeOpaque   = "opaque"
)

// Identifier sensitivity classes.
const (
	SensitivityPublic       = "public"
	SensitivityRestricted   = "restricted"
	SensitivityConfidential = "confidential"
)

// Disclosure scopes, ordered public ⊂ partner ⊂ internal.
const (
	ScopePublic   = "public"
	ScopePartner  = "partner"
	ScopeInternal = "internal"
)

// scopeRank orders disclosure scopes from least to most permissive, used
// to detect scope-relaxation requests in redaction.
var scopeRank = map[string]int{
	ScopePublic:   0,
	ScopePartner:  1,
	ScopeInternal: 2,
}

// ScopeRank returns the relative permissiveness of a disclosure scope, or
// -1 if scope is not one of the three recognized values.
func ScopeRank(scope string) int {
	r, ok := scopeRank[scope]
	if !ok {
		return -1
	}
	return r
}

// extensionTypePattern matches reverse-domain extension node/edge types
// and identifier schemes: e.g. "com.acme.warehouse".
var extensionTypePattern = regexp.MustCompile(`^[a-z][a-z0-9]*(\.[a-z][a-z0-9]*)+$`)

// IsExtensionType reports whether s matches the reverse-domain extension
// pattern used for out-of-core node types, edge types, and identifier
// schemes.
func IsExtensionType(s string) bool {
	return extensionTypePattern.MatchString(s)
}

var coreNodeTypes = map[string]bool{
	NodeOrganization: true,
	NodeFacility:     true,
	NodeGood:         true,
	NodePerson:       true,
	NodeConsignment:  true,
	NodeAttestation:  true,
	NodeBoundaryRef:  true,
}

// IsCoreNodeType reports whether t is one of the enumerated core node
// types (not an extension).
func IsCoreNodeType(t string) bool {
	return coreNodeTypes[t]
}

var coreEdgeTypes = map[string]bool{
	EdgeOwnership:           true,
	EdgeOperationalControl:  true,
	EdgeLegalParentage:      true,
	EdgeFormerIdentity:      true,
	EdgeBeneficialOwnership: true,
	EdgeSupplies:            true,
	EdgeSubcontracts:        true,
	EdgeTolls:               true,
	EdgeDistributes:         true,
	EdgeBrokers:             true,
	EdgeOperates:            true,
	EdgeProduces:            true,
	EdgeComposedOf:          true,
	EdgeSellsTo:             true,
	EdgeAttestedBy:          true,
}

// IsCoreEdgeType reports whether t is one of the enumerated core edge
// types, excluding same_as (which is handled separately by callers since
// it is never subject to the permitted-types table or merge-identity
// properties).
func IsCoreEdgeType(t string) bool {
	return coreEdgeTypes[t]
}

// permittedEndpoints maps core edge types to the set of (source type,
// target type) pairs a structurally valid file is allowed to use. An
// edge type with no entry here is unconstrained beyond node existence.
var permittedEndpoints = map[string][][2]string{
	EdgeOwnership:           {{NodeOrganization, NodeOrganization}},
	EdgeOperationalControl:  {{NodeOrganization, NodeOrganization}, {NodeOrganization, NodeFacility}},
	EdgeLegalParentage:      {{NodeOrganization, NodeOrganization}},
	EdgeFormerIdentity:      {{NodeOrganization, NodeOrganization}},
	EdgeBeneficialOwnership: {{NodePerson, NodeOrganization}},
	EdgeSupplies:            {{NodeOrganization, NodeOrganization}, {NodeFacility, NodeOrganization}},
	EdgeSubcontracts:        {{NodeOrganization, NodeOrganization}},
	EdgeTolls:                {{NodeOrganization, NodeFacility}},
	EdgeDistributes:         {{NodeOrganization, NodeOrganization}},
	EdgeBrokers:             {{NodeOrganization, NodeOrganization}},
	EdgeOperates:            {{NodeOrganization, NodeFacility}},
	EdgeProduces:            {{NodeFacility, NodeGood}, {NodeFacility, NodeConsignment}},
	EdgeComposedOf:          {{NodeGood, NodeGood}, {NodeConsignment, NodeGood}},
	EdgeSellsTo:             {{NodeOrganization, NodeOrganization}},
	EdgeAttestedBy:          {{NodeOrganization, NodeAttestation}, {NodeFacility, NodeAttestation}, {NodeConsignment, NodeAttestation}},
}

// PermittedEndpoints returns the allowed (source type, target type) pairs
// for a core edge type. ok is false for extension types and same_as,
// which are exempt from this table.
func PermittedEndpoints(edgeType string) (pairs [][2]string, ok bool) {
	p, exists := permittedEndpoints[edgeType]
	return p, exists
}

// Severity levels for diagnostics.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)
