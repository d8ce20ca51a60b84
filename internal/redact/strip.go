package redact

import "github.com/rawblock/omtsf-engine/pkg/model"

// stripNodeIdentifiers drops identifiers whose effective sensitivity
// exceeds the target scope's threshold, implementing the same
// "sensitivity must not exceed scope" rule the component design states
// explicitly for edge properties. The component design's classification
// section never names this step for Retain nodes directly, but without
// it a retained node at "public" scope could still carry confidential
// identifiers, which L1-SDI-02 forbids once disclosure_scope is set on
// the output — so this engine applies the rule symmetrically.
// boundary_ref nodes pass through untouched; they carry only the opaque
// identifier already produced by a redaction pass.
func stripNodeIdentifiers(n model.Node, targetScope string) model.Node {
	if n.Type == model.NodeBoundaryRef {
		return n
	}
	threshold := model.ScopeRank(targetScope)
	var kept []model.Identifier
	for _, id := range n.Identifiers {
		if model.SensitivityRank(id.EffectiveSensitivity(n.Type)) <= threshold {
			kept = append(kept, id)
		}
	}
	out := n
	out.Identifiers = kept
	return out
}

// stripEdgeProperties clears every edge property whose effective
// sensitivity exceeds the target scope's threshold, and at "public"
// scope drops the _property_sensitivity override map entirely, per the
// edge-handling rule.
func stripEdgeProperties(e model.Edge, targetScope string) model.Edge {
	threshold := model.ScopeRank(targetScope)
	keep := func(field string) bool {
		return model.SensitivityRank(e.PropertyEffectiveSensitivity(field)) <= threshold
	}

	p := e.Properties
	if !keep("control_type") {
		p.ControlType = ""
	}
	if !keep("consolidation_basis") {
		p.ConsolidationBasis = ""
	}
	if !keep("event_type") {
		p.EventType = ""
	}
	if !keep("commodity") {
		p.Commodity = ""
	}
	if !keep("contract_ref") {
		p.ContractRef = ""
	}
	if !keep("service_type") {
		p.ServiceType = ""
	}
	if !keep("scope") {
		p.Scope = ""
	}
	if !keep("value_currency") {
		p.ValueCurrency = ""
	}
	if !keep("effective_date") {
		p.EffectiveDate = nil
	}
	if !keep("valid_from") {
		p.ValidFrom = nil
	}
	if !keep("valid_to") {
		p.ValidTo = nil
	}
	if !keep("percentage") {
		p.Percentage = nil
	}
	if !keep("annual_value") {
		p.AnnualValue = nil
	}
	if !keep("volume") {
		p.Volume = nil
	}
	if !keep("direct") {
		p.Direct = nil
	}
	if targetScope == model.ScopePublic {
		p.PropertySensitivity = nil
	}

	e.Properties = p
	return e
}
