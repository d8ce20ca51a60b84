package api

import (
	"github.com/rawblock/omtsf-engine/internal/diff"
	"github.com/rawblock/omtsf-engine/internal/merge"
	"github.com/rawblock/omtsf-engine/internal/validate"
)

// wireLocation renders a validate.Location as the discriminated-by-type
// object the diagnostics wire form specifies.
type wireLocation struct {
	Type   string `json:"type"`
	Field  string `json:"field,omitempty"`
	NodeID string `json:"node_id,omitempty"`
	EdgeID string `json:"edge_id,omitempty"`
	Index  *int   `json:"index,omitempty"`
}

func toWireLocation(l validate.Location) wireLocation {
	wl := wireLocation{
		Type:   string(l.Kind),
		Field:  l.Field,
		NodeID: l.NodeID,
		EdgeID: l.EdgeID,
	}
	if l.Index >= 0 {
		idx := l.Index
		wl.Index = &idx
	}
	return wl
}

// wireDiagnostic is one finding in the machine-readable diagnostics wire
// form: rule, severity, location, message.
type wireDiagnostic struct {
	Rule     string       `json:"rule"`
	Severity string       `json:"severity"`
	Location wireLocation `json:"location"`
	Message  string       `json:"message"`
}

func toWireDiagnostic(d validate.Diagnostic) wireDiagnostic {
	return wireDiagnostic{
		Rule:     string(d.RuleID),
		Severity: string(d.Severity),
		Location: toWireLocation(d.Location),
		Message:  d.Message,
	}
}

func toWireDiagnostics(ds []validate.Diagnostic) []wireDiagnostic {
	out := make([]wireDiagnostic, len(ds))
	for i, d := range ds {
		out[i] = toWireDiagnostic(d)
	}
	return out
}

// wireMergeWarning mirrors merge.Warning with snake_case keys.
type wireMergeWarning struct {
	Kind                  string `json:"kind"`
	RepresentativeOrdinal int    `json:"representative_ordinal,omitempty"`
	Size                  int    `json:"size,omitempty"`
	Limit                 int    `json:"limit,omitempty"`
}

func toWireMergeWarnings(ws []merge.Warning) []wireMergeWarning {
	out := make([]wireMergeWarning, len(ws))
	for i, w := range ws {
		out[i] = wireMergeWarning{
			Kind:                  w.Kind,
			RepresentativeOrdinal: w.RepresentativeOrdinal,
			Size:                  w.Size,
			Limit:                 w.Limit,
		}
	}
	return out
}

// wireFieldChange mirrors diff.FieldChange with snake_case keys.
type wireFieldChange struct {
	Field string `json:"field"`
	Old   any    `json:"old_value,omitempty"`
	New   any    `json:"new_value,omitempty"`
}

type wireChange struct {
	AID     string            `json:"a_id"`
	BID     string            `json:"b_id"`
	Changes []wireFieldChange `json:"changes"`
}

func toWireFieldChanges(fcs []diff.FieldChange) []wireFieldChange {
	out := make([]wireFieldChange, len(fcs))
	for i, fc := range fcs {
		out[i] = wireFieldChange{Field: fc.Field, Old: fc.OldValue, New: fc.NewValue}
	}
	return out
}

func toWireNodeChanges(ncs []diff.NodeChange) []wireChange {
	out := make([]wireChange, len(ncs))
	for i, nc := range ncs {
		out[i] = wireChange{AID: nc.AID, BID: nc.BID, Changes: toWireFieldChanges(nc.Changes)}
	}
	return out
}

func toWireEdgeChanges(ecs []diff.EdgeChange) []wireChange {
	out := make([]wireChange, len(ecs))
	for i, ec := range ecs {
		out[i] = wireChange{AID: ec.AID, BID: ec.BID, Changes: toWireFieldChanges(ec.Changes)}
	}
	return out
}

// wireDiffWarning mirrors diff.Warning with snake_case keys.
type wireDiffWarning struct {
	Kind     string   `json:"kind"`
	NodeIDsA []string `json:"node_ids_a,omitempty"`
	NodeIDsB []string `json:"node_ids_b,omitempty"`
}

func toWireDiffWarnings(ws []diff.Warning) []wireDiffWarning {
	out := make([]wireDiffWarning, len(ws))
	for i, w := range ws {
		out[i] = wireDiffWarning{Kind: w.Kind, NodeIDsA: w.NodeIDsA, NodeIDsB: w.NodeIDsB}
	}
	return out
}
