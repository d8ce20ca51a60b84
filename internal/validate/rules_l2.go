package validate

import (
	"fmt"

	"github.com/rawblock/omtsf-engine/pkg/model"
)

var l2Rules = []func(*ValidationContext) []Diagnostic{
	ruleCOQ01OrganizationHasExternalIdentifier,
	ruleCOQ02OwnershipHasValidFrom,
	ruleCOQ03ReassignableSchemeTemporal,
	ruleCOQ04LEILifecycleWarning,
	ruleCOQ05LEIAnnulledWarning,
}

func warnDiag(id RuleID, loc Location, format string, args ...any) Diagnostic {
	return Diagnostic{RuleID: id, Severity: model.SeverityWarning, Location: loc, Message: fmt.Sprintf(format, args...)}
}

func ruleCOQ01OrganizationHasExternalIdentifier(vc *ValidationContext) []Diagnostic {
	var diags []Diagnostic
	for _, n := range vc.File.Nodes {
		if n.Type != model.NodeOrganization {
			continue
		}
		hasExternal := false
		for _, id := range n.Identifiers {
			if id.Scheme != model.SchemeInternal {
				hasExternal = true
				break
			}
		}
		if !hasExternal {
			diags = append(diags, warnDiag(RuleCOQ01, NodeLocation(n.ID, "identifiers"),
				"organization %q has no non-internal identifier", n.ID))
		}
	}
	return diags
}

func ruleCOQ02OwnershipHasValidFrom(vc *ValidationContext) []Diagnostic {
	var diags []Diagnostic
	for _, e := range vc.File.Edges {
		if e.Type != model.EdgeOwnership {
			continue
		}
		if e.Properties.ValidFrom == nil {
			diags = append(diags, warnDiag(RuleCOQ02, EdgeLocation(e.ID, "properties.valid_from"),
				"ownership edge %q is missing a valid_from date", e.ID))
		}
	}
	return diags
}

var reassignableSchemes = map[string]bool{
	model.SchemeDUNS: true,
	model.SchemeGLN:  true,
}

func ruleCOQ03ReassignableSchemeTemporal(vc *ValidationContext) []Diagnostic {
	var diags []Diagnostic
	forEachIdentifier(vc, func(n *model.Node, id model.Identifier, idx int) {
		if !reassignableSchemes[id.Scheme] {
			return
		}
		if id.ValidFrom == nil {
			diags = append(diags, warnDiag(RuleCOQ03, IdentifierLocation(n.ID, idx, "valid_from"),
				"reassignable identifier scheme %q on node %q is missing valid_from", id.Scheme, n.ID))
		}
	})
	return diags
}

// leiLapsedStatuses are LEI record statuses below ANNULLED severity that
// still warrant a warning since the registration is no longer active.
var leiLapsedStatuses = map[string]bool{
	"LAPSED":  true,
	"RETIRED": true,
	"MERGED":  true,
}

func ruleCOQ04LEILifecycleWarning(vc *ValidationContext) []Diagnostic {
	var diags []Diagnostic
	forEachIdentifier(vc, func(n *model.Node, id model.Identifier, idx int) {
		if id.Scheme != model.SchemeLEI {
			return
		}
		status := id.EntityStatus()
		if leiLapsedStatuses[status] {
			diags = append(diags, warnDiag(RuleCOQ04, IdentifierLocation(n.ID, idx, "value"),
				"LEI %q on node %q has registration status %s", id.Value, n.ID, status))
		}
	})
	return diags
}

// ruleCOQ05LEIAnnulledWarning is grouped with the rest of the
// semantic-completeness rules but, per its own definition, reports at
// error severity: an ANNULLED LEI is not merely incomplete data, it is
// actively wrong.
func ruleCOQ05LEIAnnulledWarning(vc *ValidationContext) []Diagnostic {
	var diags []Diagnostic
	forEachIdentifier(vc, func(n *model.Node, id model.Identifier, idx int) {
		if id.Scheme != model.SchemeLEI {
			return
		}
		if id.EntityStatus() == "ANNULLED" {
			diags = append(diags, Diagnostic{
				RuleID:   RuleCOQ05,
				Severity: model.SeverityError,
				Location: IdentifierLocation(n.ID, idx, "value"),
				Message:  fmt.Sprintf("LEI %q on node %q is ANNULLED and was excluded from merge identity matching", id.Value, n.ID),
			})
		}
	})
	return diags
}
