package validate

import (
	"fmt"
	"sort"

	"github.com/rawblock/omtsf-engine/pkg/idcodec"
	"github.com/rawblock/omtsf-engine/pkg/model"
)

// l1Rules lists every structural-integrity rule, run unconditionally.
// Rule numbering follows the data model's own grouping: GDM for
// general graph structure, EDG for edge-domain invariants not covered by
// the enumerated identifier checks, EID for identifier records, SDI for
// selective-disclosure structural constraints.
var l1Rules = []func(*ValidationContext) []Diagnostic{
	ruleGDM01NodeIDsUnique,
	ruleGDM02EdgeIDsUnique,
	ruleGDM03EdgeEndpointsResolve,
	ruleGDM04EdgeTypeRecognized,
	ruleGDM05ReportingEntityResolves,
	ruleGDM06PermittedEndpoints,
	ruleEDG01OwnershipPercentageRange,
	ruleEID01SchemeNonEmpty,
	ruleEID02ValueNonEmpty,
	ruleEID03AuthorityRequired,
	ruleEID04LEIFormat,
	ruleEID05LEIChecksum,
	ruleEID06DUNSFormat,
	ruleEID07GLNFormat,
	ruleEID08GLNChecksum,
	ruleEID09TemporalOrder,
	ruleEID10SensitivityEnum,
	ruleEID11NoDuplicateIdentifier,
	ruleSDI01BoundaryRefSingleOpaque,
	ruleSDI02ScopeSensitivityConstraints,
}

func errDiag(id RuleID, loc Location, format string, args ...any) Diagnostic {
	return Diagnostic{RuleID: id, Severity: model.SeverityError, Location: loc, Message: fmt.Sprintf(format, args...)}
}

func ruleGDM01NodeIDsUnique(vc *ValidationContext) []Diagnostic {
	var diags []Diagnostic
	seen := make(map[string]bool, len(vc.File.Nodes))
	for _, n := range vc.File.Nodes {
		if n.ID == "" {
			diags = append(diags, errDiag(RuleGDM01, GlobalLocation(), "node has empty id"))
			continue
		}
		if seen[n.ID] {
			diags = append(diags, errDiag(RuleGDM01, NodeLocation(n.ID, "id"), "duplicate node id %q", n.ID))
		}
		seen[n.ID] = true
	}
	return diags
}

func ruleGDM02EdgeIDsUnique(vc *ValidationContext) []Diagnostic {
	var diags []Diagnostic
	seen := make(map[string]bool, len(vc.File.Edges))
	for _, e := range vc.File.Edges {
		if e.ID == "" {
			diags = append(diags, errDiag(RuleGDM02, GlobalLocation(), "edge has empty id"))
			continue
		}
		if seen[e.ID] {
			diags = append(diags, errDiag(RuleGDM02, EdgeLocation(e.ID, "id"), "duplicate edge id %q", e.ID))
		}
		seen[e.ID] = true
	}
	return diags
}

func ruleGDM03EdgeEndpointsResolve(vc *ValidationContext) []Diagnostic {
	var diags []Diagnostic
	for _, e := range vc.File.Edges {
		if !vc.NodeIDs[e.Source] {
			diags = append(diags, errDiag(RuleGDM03, EdgeLocation(e.ID, "source"), "edge %q source %q does not resolve to a node", e.ID, e.Source))
		}
		if !vc.NodeIDs[e.Target] {
			diags = append(diags, errDiag(RuleGDM03, EdgeLocation(e.ID, "target"), "edge %q target %q does not resolve to a node", e.ID, e.Target))
		}
	}
	return diags
}

func ruleGDM04EdgeTypeRecognized(vc *ValidationContext) []Diagnostic {
	var diags []Diagnostic
	for _, e := range vc.File.Edges {
		if e.Type == model.EdgeSameAs || model.IsCoreEdgeType(e.Type) || model.IsExtensionType(e.Type) {
			continue
		}
		diags = append(diags, errDiag(RuleGDM04, EdgeLocation(e.ID, "type"), "edge %q has unrecognized type %q", e.ID, e.Type))
	}
	return diags
}

func ruleGDM05ReportingEntityResolves(vc *ValidationContext) []Diagnostic {
	if vc.File.ReportingEntity == "" {
		return nil
	}
	if vc.NodeIDs[vc.File.ReportingEntity] {
		return nil
	}
	return []Diagnostic{errDiag(RuleGDM05, HeaderLocation("reporting_entity"), "reporting_entity %q does not resolve to a node", vc.File.ReportingEntity)}
}

func ruleGDM06PermittedEndpoints(vc *ValidationContext) []Diagnostic {
	var diags []Diagnostic
	for _, e := range vc.File.Edges {
		if e.Type == model.EdgeSameAs || !model.IsCoreEdgeType(e.Type) {
			continue
		}
		pairs, ok := model.PermittedEndpoints(e.Type)
		if !ok {
			continue
		}
		src, srcOK := vc.NodeByID[e.Source]
		tgt, tgtOK := vc.NodeByID[e.Target]
		if !srcOK || !tgtOK {
			continue // already reported by GDM-03
		}
		// boundary_ref stands in for whatever type it replaced, so it
		// matches either side of any permitted pair; that's the whole
		// point of a boundary reference preserving connectivity through
		// redaction without tripping this rule.
		allowed := false
		for _, p := range pairs {
			srcOK := src.Type == p[0] || src.Type == model.NodeBoundaryRef
			tgtOK := tgt.Type == p[1] || tgt.Type == model.NodeBoundaryRef
			if srcOK && tgtOK {
				allowed = true
				break
			}
		}
		if !allowed {
			diags = append(diags, errDiag(RuleGDM06, EdgeLocation(e.ID, ""),
				"edge %q of type %q connects %s->%s, which is not a permitted node-type pair", e.ID, e.Type, src.Type, tgt.Type))
		}
	}
	return diags
}

func ruleEDG01OwnershipPercentageRange(vc *ValidationContext) []Diagnostic {
	var diags []Diagnostic
	for _, e := range vc.File.Edges {
		if e.Type != model.EdgeOwnership && e.Type != model.EdgeBeneficialOwnership {
			continue
		}
		p := e.Properties.Percentage
		if p == nil {
			continue
		}
		if *p < 0 || *p > 100 {
			diags = append(diags, errDiag(RuleEDG01, EdgeLocation(e.ID, "properties.percentage"),
				"edge %q percentage %v is outside [0, 100]", e.ID, *p))
		}
	}
	return diags
}

// forEachIdentifier walks every node's identifiers, calling fn with the
// owning node, the identifier, and its index within that node's slice.
func forEachIdentifier(vc *ValidationContext, fn func(n *model.Node, id model.Identifier, idx int)) {
	for i := range vc.File.Nodes {
		n := &vc.File.Nodes[i]
		for idx, id := range n.Identifiers {
			fn(n, id, idx)
		}
	}
}

func ruleEID01SchemeNonEmpty(vc *ValidationContext) []Diagnostic {
	var diags []Diagnostic
	forEachIdentifier(vc, func(n *model.Node, id model.Identifier, idx int) {
		if id.Scheme == "" {
			diags = append(diags, errDiag(RuleEID01, IdentifierLocation(n.ID, idx, "scheme"), "identifier on node %q has empty scheme", n.ID))
		}
	})
	return diags
}

func ruleEID02ValueNonEmpty(vc *ValidationContext) []Diagnostic {
	var diags []Diagnostic
	forEachIdentifier(vc, func(n *model.Node, id model.Identifier, idx int) {
		if id.TrimmedValue() == "" {
			diags = append(diags, errDiag(RuleEID02, IdentifierLocation(n.ID, idx, "value"), "identifier on node %q has empty value", n.ID))
		}
	})
	return diags
}

func ruleEID03AuthorityRequired(vc *ValidationContext) []Diagnostic {
	var diags []Diagnostic
	forEachIdentifier(vc, func(n *model.Node, id model.Identifier, idx int) {
		if idcodec.RequiresAuthority(id.Scheme) && id.Authority == "" {
			diags = append(diags, errDiag(RuleEID03, IdentifierLocation(n.ID, idx, "authority"),
				"identifier with scheme %q on node %q requires an authority", id.Scheme, n.ID))
		}
	})
	return diags
}

func ruleEID04LEIFormat(vc *ValidationContext) []Diagnostic {
	var diags []Diagnostic
	forEachIdentifier(vc, func(n *model.Node, id model.Identifier, idx int) {
		if id.Scheme != model.SchemeLEI {
			return
		}
		if !idcodec.LEIFormatValid(id.TrimmedValue()) {
			diags = append(diags, errDiag(RuleEID04, IdentifierLocation(n.ID, idx, "value"),
				"LEI %q on node %q is not 18 alphanumeric characters followed by 2 digits", id.Value, n.ID))
		}
	})
	return diags
}

func ruleEID05LEIChecksum(vc *ValidationContext) []Diagnostic {
	var diags []Diagnostic
	forEachIdentifier(vc, func(n *model.Node, id model.Identifier, idx int) {
		if id.Scheme != model.SchemeLEI {
			return
		}
		v := id.TrimmedValue()
		if !idcodec.LEIFormatValid(v) {
			return // already reported by EID-04
		}
		if !idcodec.LEIChecksumValid(v) {
			diags = append(diags, errDiag(RuleEID05, IdentifierLocation(n.ID, idx, "value"),
				"LEI %q on node %q fails the ISO 7064 MOD 97-10 check digit", id.Value, n.ID))
		}
	})
	return diags
}

func ruleEID06DUNSFormat(vc *ValidationContext) []Diagnostic {
	var diags []Diagnostic
	forEachIdentifier(vc, func(n *model.Node, id model.Identifier, idx int) {
		if id.Scheme != model.SchemeDUNS {
			return
		}
		if !idcodec.ValidDUNSFormat(id.TrimmedValue()) {
			diags = append(diags, errDiag(RuleEID06, IdentifierLocation(n.ID, idx, "value"),
				"DUNS %q on node %q is not 9 ASCII digits", id.Value, n.ID))
		}
	})
	return diags
}

func ruleEID07GLNFormat(vc *ValidationContext) []Diagnostic {
	var diags []Diagnostic
	forEachIdentifier(vc, func(n *model.Node, id model.Identifier, idx int) {
		if id.Scheme != model.SchemeGLN {
			return
		}
		if !idcodec.GLNFormatValid(id.TrimmedValue()) {
			diags = append(diags, errDiag(RuleEID07, IdentifierLocation(n.ID, idx, "value"),
				"GLN %q on node %q is not 13 ASCII digits", id.Value, n.ID))
		}
	})
	return diags
}

func ruleEID08GLNChecksum(vc *ValidationContext) []Diagnostic {
	var diags []Diagnostic
	forEachIdentifier(vc, func(n *model.Node, id model.Identifier, idx int) {
		if id.Scheme != model.SchemeGLN {
			return
		}
		v := id.TrimmedValue()
		if !idcodec.GLNFormatValid(v) {
			return // already reported by EID-07
		}
		if !idcodec.GLNChecksumValid(v) {
			diags = append(diags, errDiag(RuleEID08, IdentifierLocation(n.ID, idx, "value"),
				"GLN %q on node %q fails the GS1 mod-10 check digit", id.Value, n.ID))
		}
	})
	return diags
}

func ruleEID09TemporalOrder(vc *ValidationContext) []Diagnostic {
	var diags []Diagnostic
	forEachIdentifier(vc, func(n *model.Node, id model.Identifier, idx int) {
		if id.ValidFrom == nil || id.ValidTo == nil {
			return
		}
		if *id.ValidFrom > *id.ValidTo {
			diags = append(diags, errDiag(RuleEID09, IdentifierLocation(n.ID, idx, "valid_from"),
				"identifier on node %q has valid_from %q after valid_to %q", n.ID, *id.ValidFrom, *id.ValidTo))
		}
	})
	return diags
}

var validSensitivities = map[string]bool{
	model.SensitivityPublic:       true,
	model.SensitivityRestricted:   true,
	model.SensitivityConfidential: true,
}

func ruleEID10SensitivityEnum(vc *ValidationContext) []Diagnostic {
	var diags []Diagnostic
	forEachIdentifier(vc, func(n *model.Node, id model.Identifier, idx int) {
		if id.Sensitivity == "" || validSensitivities[id.Sensitivity] {
			return
		}
		diags = append(diags, errDiag(RuleEID10, IdentifierLocation(n.ID, idx, "sensitivity"),
			"identifier on node %q has unrecognized sensitivity %q", n.ID, id.Sensitivity))
	})
	return diags
}

func ruleEID11NoDuplicateIdentifier(vc *ValidationContext) []Diagnostic {
	var diags []Diagnostic
	for i := range vc.File.Nodes {
		n := &vc.File.Nodes[i]
		seen := make(map[string]bool, len(n.Identifiers))
		for idx, id := range n.Identifiers {
			key := id.Scheme + "\x00" + id.TrimmedValue() + "\x00" + id.Authority
			if seen[key] {
				diags = append(diags, errDiag(RuleEID11, IdentifierLocation(n.ID, idx, ""),
					"node %q has a duplicate identifier {scheme=%q, value=%q, authority=%q}", n.ID, id.Scheme, id.TrimmedValue(), id.Authority))
			}
			seen[key] = true
		}
	}
	return diags
}

func ruleSDI01BoundaryRefSingleOpaque(vc *ValidationContext) []Diagnostic {
	var diags []Diagnostic
	for _, n := range vc.File.Nodes {
		if n.Type != model.NodeBoundaryRef {
			continue
		}
		if len(n.Identifiers) != 1 || n.Identifiers[0].Scheme != model.SchemeOpaque {
			diags = append(diags, errDiag(RuleSDI01, NodeLocation(n.ID, "identifiers"),
				"boundary_ref node %q must carry exactly one identifier with scheme \"opaque\"", n.ID))
		}
	}
	return diags
}

func ruleSDI02ScopeSensitivityConstraints(vc *ValidationContext) []Diagnostic {
	scope := vc.File.DisclosureScope
	if scope == "" {
		return nil
	}
	var diags []Diagnostic
	for i := range vc.File.Nodes {
		n := &vc.File.Nodes[i]
		if scope == model.ScopePublic && n.Type == model.NodePerson {
			diags = append(diags, errDiag(RuleSDI02, NodeLocation(n.ID, "type"),
				"disclosure_scope \"public\" forbids person nodes, found %q", n.ID))
		}
		for idx, id := range n.Identifiers {
			eff := id.EffectiveSensitivity(n.Type)
			switch scope {
			case model.ScopePublic:
				if eff == model.SensitivityRestricted || eff == model.SensitivityConfidential {
					diags = append(diags, errDiag(RuleSDI02, IdentifierLocation(n.ID, idx, "sensitivity"),
						"disclosure_scope \"public\" forbids %s identifiers, found one on node %q", eff, n.ID))
				}
			case model.ScopePartner:
				if eff == model.SensitivityConfidential {
					diags = append(diags, errDiag(RuleSDI02, IdentifierLocation(n.ID, idx, "sensitivity"),
						"disclosure_scope \"partner\" forbids confidential identifiers, found one on node %q", n.ID))
				}
			}
		}
	}
	sort.Slice(diags, func(i, j int) bool { return diags[i].Location.String() < diags[j].Location.String() })
	return diags
}
