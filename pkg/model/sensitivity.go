package model

// EffectiveSensitivity resolves the disclosure sensitivity of an
// identifier attached to a node of the given type: an explicit
// sensitivity field always wins, person-owned identifiers default to
// confidential, and otherwise the scheme supplies a default.
func (id Identifier) EffectiveSensitivity(containingNodeType string) string {
	if id.Sensitivity != "" {
		return id.Sensitivity
	}
	if containingNodeType == NodePerson {
		return SensitivityConfidential
	}
	switch id.Scheme {
	case SchemeLEI, SchemeDUNS, SchemeGLN:
		return SensitivityPublic
	case SchemeNatReg, SchemeVAT, SchemeInternal:
		return SensitivityRestricted
	default:
		return SensitivityPublic
	}
}

// edgePropertySensitivityDefault gives the fallback sensitivity for an
// edge property field with no explicit override.
func edgePropertySensitivityDefault(edgeType, field string) string {
	switch field {
	case "contract_ref", "annual_value", "value_currency", "volume":
		return SensitivityRestricted
	case "percentage":
		if edgeType == EdgeBeneficialOwnership {
			return SensitivityConfidential
		}
		return SensitivityPublic
	default:
		return SensitivityPublic
	}
}

// PropertyEffectiveSensitivity resolves the disclosure sensitivity of one
// of an edge's properties: an explicit entry in
// properties._property_sensitivity wins, otherwise the field falls back
// to its per-property default.
func (e Edge) PropertyEffectiveSensitivity(field string) string {
	if e.Properties.PropertySensitivity != nil {
		if v, ok := e.Properties.PropertySensitivity[field]; ok && v != "" {
			return v
		}
	}
	return edgePropertySensitivityDefault(e.Type, field)
}

// sensitivityRank orders sensitivity classes from least to most
// restrictive, mirroring ScopeRank for threshold comparisons during
// redaction.
var sensitivityRank = map[string]int{
	SensitivityPublic:       0,
	SensitivityRestricted:   1,
	SensitivityConfidential: 2,
}

// SensitivityRank returns the relative restrictiveness of a sensitivity
// class, or -1 if it is not one of the three recognized values.
func SensitivityRank(sensitivity string) int {
	r, ok := sensitivityRank[sensitivity]
	if !ok {
		return -1
	}
	return r
}
