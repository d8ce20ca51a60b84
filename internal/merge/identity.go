package merge

import (
	"math"

	"github.com/rawblock/omtsf-engine/pkg/model"
)

// identifiersMatch implements the node identity predicate: two
// identifier records denote the same external registration iff neither
// is internal, their schemes and trimmed values are equal, their
// authorities are equal case-insensitively (including both absent), and
// their validity intervals overlap or are open-ended. The predicate is
// symmetric by construction — every clause compares a and b the same way
// regardless of argument order.
func identifiersMatch(a, b model.Identifier) bool {
	if a.Scheme == model.SchemeInternal || b.Scheme == model.SchemeInternal {
		return false
	}
	if a.Scheme != b.Scheme {
		return false
	}
	if a.TrimmedValue() != b.TrimmedValue() {
		return false
	}
	if !authoritiesMatch(a.Authority, b.Authority) {
		return false
	}
	return intervalsCompatible(a.ValidFrom, a.ValidTo, b.ValidFrom, b.ValidTo)
}

func authoritiesMatch(a, b string) bool {
	return foldCase(a) == foldCase(b)
}

func foldCase(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r >= 'A' && r <= 'Z' {
			r += 'a' - 'A'
		}
		out = append(out, r)
	}
	return string(out)
}

// intervalsCompatible implements the temporal compatibility test shared
// by the node and ownership-sum predicates: two intervals are compatible
// unless both sides carry a finite bound proving they can't overlap.
func intervalsCompatible(aFrom, aTo, bFrom, bTo *string) bool {
	if aTo != nil && bFrom != nil && *aTo < *bFrom {
		return false
	}
	if bTo != nil && aFrom != nil && *bTo < *aFrom {
		return false
	}
	return true
}

// isEligibleForIndex reports whether an identifier participates in the
// canonical identifier index at all: internal-scheme identifiers are
// excluded, as are LEIs whose self-declared entity_status is ANNULLED —
// an annulled registration is withdrawn and must not anchor a
// cross-file match.
func isEligibleForIndex(id model.Identifier) bool {
	if id.Scheme == model.SchemeInternal {
		return false
	}
	if id.Scheme == model.SchemeLEI && id.EntityStatus() == "ANNULLED" {
		return false
	}
	return true
}

// edgeMergeIdentityFields lists, per edge type, the properties that must
// be JSON-scalar-equal for two edges sharing the same endpoints and type
// to be considered the same edge when neither carries a shared external
// identifier. Edge types absent from this map are identified by
// endpoints and type alone.
var edgeMergeIdentityFields = map[string][]string{
	model.EdgeOwnership:           {"percentage", "direct"},
	model.EdgeOperationalControl:  {"control_type"},
	model.EdgeLegalParentage:      {"consolidation_basis"},
	model.EdgeFormerIdentity:      {"event_type", "effective_date"},
	model.EdgeBeneficialOwnership: {"control_type", "percentage"},
	model.EdgeSupplies:            {"commodity", "contract_ref"},
	model.EdgeSubcontracts:        {"commodity", "contract_ref"},
	model.EdgeSellsTo:             {"commodity", "contract_ref"},
	model.EdgeTolls:               {"commodity"},
	model.EdgeBrokers:             {"commodity"},
	model.EdgeDistributes:         {"service_type"},
	model.EdgeAttestedBy:          {"scope"},
}

// edgeIdentityField reads one named merge-identity property off an
// edge's properties, returning a comparable value: percentage compares
// by IEEE-754 bit pattern per the exact-reproducibility discipline
// merge requires (diff uses a tolerant comparison instead, see
// internal/diff), every other field compares as the stored value
// itself (nil-safe).
func edgeIdentityField(p model.EdgeProperties, field string) any {
	switch field {
	case "percentage":
		if p.Percentage == nil {
			return nil
		}
		return math.Float64bits(*p.Percentage)
	case "direct":
		if p.Direct == nil {
			return nil
		}
		return *p.Direct
	case "control_type":
		return p.ControlType
	case "consolidation_basis":
		return p.ConsolidationBasis
	case "event_type":
		return p.EventType
	case "effective_date":
		if p.EffectiveDate == nil {
			return ""
		}
		return *p.EffectiveDate
	case "commodity":
		return p.Commodity
	case "contract_ref":
		return p.ContractRef
	case "service_type":
		return p.ServiceType
	case "scope":
		return p.Scope
	default:
		return nil
	}
}

// edgeMergeIdentityEqual reports whether two edges of the same type
// agree on every merge-identity field the type defines. Types with no
// entry in edgeMergeIdentityFields always agree (endpoints + type
// suffice).
func edgeMergeIdentityEqual(edgeType string, a, b model.EdgeProperties) bool {
	fields, ok := edgeMergeIdentityFields[edgeType]
	if !ok {
		return true
	}
	for _, f := range fields {
		if edgeIdentityField(a, f) != edgeIdentityField(b, f) {
			return false
		}
	}
	return true
}

// sharedExternalIdentifier reports whether a and b carry at least one
// pair of matching external identifiers, per identifiersMatch.
func sharedExternalIdentifier(a, b []model.Identifier) bool {
	for _, ia := range a {
		if !isEligibleForIndex(ia) {
			continue
		}
		for _, ib := range b {
			if !isEligibleForIndex(ib) {
				continue
			}
			if identifiersMatch(ia, ib) {
				return true
			}
		}
	}
	return false
}

// edgesMatch implements the edge identity predicate used both by merge
// step 7 (dedup within a composite-key bucket) and by the diff engine's
// edge pairing: same type, and either a shared external identifier or,
// absent any external identifiers on either side, equal merge-identity
// properties. same_as edges are never matched here; callers exclude them
// before reaching this predicate.
func edgesMatch(edgeType string, aID, bID []model.Identifier, aProps, bProps model.EdgeProperties) bool {
	if sharedExternalIdentifier(aID, bID) {
		return true
	}
	if hasExternalIdentifier(aID) || hasExternalIdentifier(bID) {
		return false
	}
	return edgeMergeIdentityEqual(edgeType, aProps, bProps)
}

func hasExternalIdentifier(ids []model.Identifier) bool {
	for _, id := range ids {
		if isEligibleForIndex(id) {
			return true
		}
	}
	return false
}

// IsEligibleForIndex, IdentifiersMatch, and EdgesMatch re-export this
// file's node and edge identity predicates for internal/diff, which
// pairs entities across two files using the exact same rules merge uses
// to pair them across N files. Exporting these rather than duplicating
// the logic means a future change to either predicate can't silently
// diverge between the two engines.
func IsEligibleForIndex(id model.Identifier) bool { return isEligibleForIndex(id) }

func IdentifiersMatch(a, b model.Identifier) bool { return identifiersMatch(a, b) }

func EdgesMatch(edgeType string, aID, bID []model.Identifier, aProps, bProps model.EdgeProperties) bool {
	return edgesMatch(edgeType, aID, bID, aProps, bProps)
}
