package model

import "encoding/json"

// EdgeProperties is the wrapper object nesting an edge's type-specific
// domain fields. Only the fields the merge-identity comparison and
// redaction sensitivity defaults care about are typed explicitly;
// everything else — including same_as's "confidence" — lives in Extra
// and is read through accessors.
type EdgeProperties struct {
	Percentage          *float64          `json:"percentage,omitempty"`
	Direct              *bool             `json:"direct,omitempty"`
	ControlType         string            `json:"control_type,omitempty"`
	ConsolidationBasis  string            `json:"consolidation_basis,omitempty"`
	EventType           string            `json:"event_type,omitempty"`
	EffectiveDate       *string           `json:"effective_date,omitempty"`
	ValidFrom           *string           `json:"valid_from,omitempty"`
	ValidTo             *string           `json:"valid_to,omitempty"`
	Commodity           string            `json:"commodity,omitempty"`
	ContractRef         string            `json:"contract_ref,omitempty"`
	ServiceType         string            `json:"service_type,omitempty"`
	Scope               string            `json:"scope,omitempty"`
	AnnualValue         *float64          `json:"annual_value,omitempty"`
	ValueCurrency       string            `json:"value_currency,omitempty"`
	Volume              *float64          `json:"volume,omitempty"`
	Conflicts           []Conflict        `json:"_conflicts,omitempty"`
	PropertySensitivity map[string]string `json:"_property_sensitivity,omitempty"`
	Extra               map[string]any    `json:"-"`
}

var edgePropertiesKnownFields = []string{
	"percentage", "direct", "control_type", "consolidation_basis",
	"event_type", "effective_date", "valid_from", "valid_to", "commodity",
	"contract_ref", "service_type", "scope", "annual_value",
	"value_currency", "volume", "_conflicts", "_property_sensitivity",
}

type edgePropertiesAlias EdgeProperties

// Confidence reads the same_as edge confidence tier out of
// properties.extra.confidence. Empty string means absent/unknown, which
// callers treat the same as the weakest recognized tier.
func (p EdgeProperties) Confidence() string {
	if v, ok := p.Extra["confidence"].(string); ok {
		return v
	}
	return ""
}

func (p EdgeProperties) MarshalJSON() ([]byte, error) {
	known, err := json.Marshal(edgePropertiesAlias(p))
	if err != nil {
		return nil, err
	}
	return mergeExtra(known, p.Extra)
}

func (p *EdgeProperties) UnmarshalJSON(data []byte) error {
	var alias edgePropertiesAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	*p = EdgeProperties(alias)

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	extra, err := splitExtra(raw, edgePropertiesKnownFields...)
	if err != nil {
		return err
	}
	p.Extra = extra
	return nil
}

// Edge is a directed labeled relationship between two nodes.
type Edge struct {
	ID          string         `json:"id"`
	Type        string         `json:"type"`
	Source      string         `json:"source"`
	Target      string         `json:"target"`
	Properties  EdgeProperties `json:"properties"`
	Identifiers []Identifier   `json:"identifiers,omitempty"`
	Labels      []Label        `json:"labels,omitempty"`
	DataQuality *DataQuality   `json:"data_quality,omitempty"`
	Extra       map[string]any `json:"-"`
}

var edgeKnownFields = []string{
	"id", "type", "source", "target", "properties", "identifiers",
	"labels", "data_quality",
}

type edgeAlias Edge

// IsExtensionType reports whether the edge's type is a reverse-domain
// extension; same_as is excluded here too since callers check it
// separately before consulting the permitted-endpoints table.
func (e Edge) IsExtensionType() bool {
	return e.Type != EdgeSameAs && !IsCoreEdgeType(e.Type) && IsExtensionType(e.Type)
}

// Confidence returns the same_as confidence tier, falling back from
// properties.extra.confidence to edge.extra.confidence.
func (e Edge) Confidence() string {
	if c := e.Properties.Confidence(); c != "" {
		return c
	}
	if v, ok := e.Extra["confidence"].(string); ok {
		return v
	}
	return ""
}

func (e Edge) MarshalJSON() ([]byte, error) {
	known, err := json.Marshal(edgeAlias(e))
	if err != nil {
		return nil, err
	}
	return mergeExtra(known, e.Extra)
}

func (e *Edge) UnmarshalJSON(data []byte) error {
	var alias edgeAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	*e = Edge(alias)

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	extra, err := splitExtra(raw, edgeKnownFields...)
	if err != nil {
		return err
	}
	e.Extra = extra
	return nil
}
