package diff

import (
	"math"
	"sort"
	"strings"

	"github.com/rawblock/omtsf-engine/pkg/model"
)

const floatTolerance = 1e-9

func compareNodes(a, b model.Node, filter DiffFilter) []FieldChange {
	var changes []FieldChange
	push := func(field string, oldV, newV any) {
		if filter.ignored(field) {
			return
		}
		changes = append(changes, FieldChange{Field: field, OldValue: oldV, NewValue: newV})
	}

	if c := stringChange(a.Type, b.Type); c != nil {
		push("type", c[0], c[1])
	}
	if c := stringChange(a.Name, b.Name); c != nil {
		push("name", c[0], c[1])
	}
	if c := stringChange(a.Jurisdiction, b.Jurisdiction); c != nil {
		push("jurisdiction", c[0], c[1])
	}
	changes = append(changes, geoChanges(a.Geo, b.Geo, filter)...)
	changes = append(changes, dataQualityChanges(a.DataQuality, b.DataQuality, filter)...)
	changes = append(changes, identifierSetChanges(a.Identifiers, b.Identifiers, filter)...)
	changes = append(changes, labelSetChanges(a.Labels, b.Labels, filter)...)

	return changes
}

func compareEdges(a, b model.Edge, filter DiffFilter) []FieldChange {
	var changes []FieldChange
	push := func(field string, oldV, newV any) {
		if filter.ignored(field) {
			return
		}
		changes = append(changes, FieldChange{Field: field, OldValue: oldV, NewValue: newV})
	}

	pa, pb := a.Properties, b.Properties

	if c := stringChange(pa.ControlType, pb.ControlType); c != nil {
		push("control_type", c[0], c[1])
	}
	if c := stringChange(pa.ConsolidationBasis, pb.ConsolidationBasis); c != nil {
		push("consolidation_basis", c[0], c[1])
	}
	if c := stringChange(pa.EventType, pb.EventType); c != nil {
		push("event_type", c[0], c[1])
	}
	if c := stringChange(pa.Commodity, pb.Commodity); c != nil {
		push("commodity", c[0], c[1])
	}
	if c := stringChange(pa.ContractRef, pb.ContractRef); c != nil {
		push("contract_ref", c[0], c[1])
	}
	if c := stringChange(pa.ServiceType, pb.ServiceType); c != nil {
		push("service_type", c[0], c[1])
	}
	if c := stringChange(pa.Scope, pb.Scope); c != nil {
		push("scope", c[0], c[1])
	}
	if c := stringChange(pa.ValueCurrency, pb.ValueCurrency); c != nil {
		push("value_currency", c[0], c[1])
	}

	if c := dateChange(pa.EffectiveDate, pb.EffectiveDate); c != nil {
		push("effective_date", c[0], c[1])
	}
	if c := dateChange(pa.ValidFrom, pb.ValidFrom); c != nil {
		push("valid_from", c[0], c[1])
	}
	if c := dateChange(pa.ValidTo, pb.ValidTo); c != nil {
		push("valid_to", c[0], c[1])
	}

	if c := floatPtrChange(pa.Percentage, pb.Percentage, true); c != nil {
		push("percentage", c[0], c[1])
	}
	// annual_value is a quantity field and gets the same float tolerance
	// as percentage and volume.
	if c := floatPtrChange(pa.AnnualValue, pb.AnnualValue, true); c != nil {
		push("annual_value", c[0], c[1])
	}
	if c := floatPtrChange(pa.Volume, pb.Volume, true); c != nil {
		push("volume", c[0], c[1])
	}

	if c := boolPtrChange(pa.Direct, pb.Direct); c != nil {
		push("direct", c[0], c[1])
	}

	changes = append(changes, dataQualityChanges(a.DataQuality, b.DataQuality, filter)...)
	changes = append(changes, identifierSetChanges(a.Identifiers, b.Identifiers, filter)...)
	changes = append(changes, labelSetChanges(a.Labels, b.Labels, filter)...)

	return changes
}

func stringChange(a, b string) *[2]any {
	if a == b {
		return nil
	}
	var av, bv any
	if a != "" {
		av = a
	}
	if b != "" {
		bv = b
	}
	return &[2]any{av, bv}
}

// dateChange compares two optional date strings after trimming
// whitespace, the only normalization YYYY-MM-DD values (already
// validated at parse time) ever need.
func dateChange(a, b *string) *[2]any {
	av, bv := normalizeDate(a), normalizeDate(b)
	if av == bv {
		return nil
	}
	var oa, ob any
	if av != "" {
		oa = av
	}
	if bv != "" {
		ob = bv
	}
	return &[2]any{oa, ob}
}

func normalizeDate(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

func floatPtrChange(a, b *float64, tolerant bool) *[2]any {
	if a == nil && b == nil {
		return nil
	}
	if a != nil && b != nil {
		if tolerant {
			if math.Abs(*a-*b) < floatTolerance {
				return nil
			}
		} else if *a == *b {
			return nil
		}
		return &[2]any{*a, *b}
	}
	var av, bv any
	if a != nil {
		av = *a
	}
	if b != nil {
		bv = *b
	}
	return &[2]any{av, bv}
}

func boolPtrChange(a, b *bool) *[2]any {
	if a == nil && b == nil {
		return nil
	}
	if a != nil && b != nil {
		if *a == *b {
			return nil
		}
		return &[2]any{*a, *b}
	}
	var av, bv any
	if a != nil {
		av = *a
	}
	if b != nil {
		bv = *b
	}
	return &[2]any{av, bv}
}

// geoChanges implements presence-asymmetry-as-whole-object-add/remove:
// if exactly one side carries a geo block, that's a single "geo" change
// rather than per-field lat/lon changes. When both sides are present,
// lat/lon are compared independently.
func geoChanges(a, b *model.Geo, filter DiffFilter) []FieldChange {
	if filter.ignored("geo") {
		return nil
	}
	if a == nil && b == nil {
		return nil
	}
	if a == nil || b == nil {
		var av, bv any
		if a != nil {
			av = *a
		}
		if b != nil {
			bv = *b
		}
		return []FieldChange{{Field: "geo", OldValue: av, NewValue: bv}}
	}
	var changes []FieldChange
	if c := floatPtrChange(a.Lat, b.Lat, false); c != nil && !filter.ignored("geo.lat") {
		changes = append(changes, FieldChange{Field: "geo.lat", OldValue: c[0], NewValue: c[1]})
	}
	if c := floatPtrChange(a.Lon, b.Lon, false); c != nil && !filter.ignored("geo.lon") {
		changes = append(changes, FieldChange{Field: "geo.lon", OldValue: c[0], NewValue: c[1]})
	}
	return changes
}

func dataQualityChanges(a, b *model.DataQuality, filter DiffFilter) []FieldChange {
	if filter.ignored("data_quality") {
		return nil
	}
	if a == nil && b == nil {
		return nil
	}
	if a == nil || b == nil {
		var av, bv any
		if a != nil {
			av = *a
		}
		if b != nil {
			bv = *b
		}
		return []FieldChange{{Field: "data_quality", OldValue: av, NewValue: bv}}
	}
	var changes []FieldChange
	if c := stringChange(a.Confidence, b.Confidence); c != nil && !filter.ignored("data_quality.confidence") {
		changes = append(changes, FieldChange{Field: "data_quality.confidence", OldValue: c[0], NewValue: c[1]})
	}
	if c := stringChange(a.Source, b.Source); c != nil && !filter.ignored("data_quality.source") {
		changes = append(changes, FieldChange{Field: "data_quality.source", OldValue: c[0], NewValue: c[1]})
	}
	if c := dateChange(a.LastVerified, b.LastVerified); c != nil && !filter.ignored("data_quality.last_verified") {
		changes = append(changes, FieldChange{Field: "data_quality.last_verified", OldValue: c[0], NewValue: c[1]})
	}
	return changes
}

// identifierSetChanges keys both sides by canonical form. Canonical keys
// present on only one side are a whole-identifier add/remove. Keys
// present on both sides are compared field-by-field for the attributes
// that can change without changing identity: sensitivity, temporal
// bounds, verification status/date.
func identifierSetChanges(a, b []model.Identifier, filter DiffFilter) []FieldChange {
	if filter.ignored("identifiers") {
		return nil
	}
	am := make(map[string]model.Identifier, len(a))
	for _, id := range a {
		am[id.Canonical()] = id
	}
	bm := make(map[string]model.Identifier, len(b))
	for _, id := range b {
		bm[id.Canonical()] = id
	}

	var keys []string
	seen := make(map[string]bool)
	for k := range am {
		keys = append(keys, k)
		seen[k] = true
	}
	for k := range bm {
		if !seen[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var changes []FieldChange
	for _, k := range keys {
		ida, okA := am[k]
		idb, okB := bm[k]
		switch {
		case okA && !okB:
			changes = append(changes, FieldChange{Field: "identifiers[" + k + "]", OldValue: ida, NewValue: nil})
		case !okA && okB:
			changes = append(changes, FieldChange{Field: "identifiers[" + k + "]", OldValue: nil, NewValue: idb})
		default:
			if c := stringChange(ida.Sensitivity, idb.Sensitivity); c != nil {
				changes = append(changes, FieldChange{Field: "identifiers[" + k + "].sensitivity", OldValue: c[0], NewValue: c[1]})
			}
			if c := stringChange(ida.VerificationStatus, idb.VerificationStatus); c != nil {
				changes = append(changes, FieldChange{Field: "identifiers[" + k + "].verification_status", OldValue: c[0], NewValue: c[1]})
			}
			if c := dateChange(ida.VerificationDate, idb.VerificationDate); c != nil {
				changes = append(changes, FieldChange{Field: "identifiers[" + k + "].verification_date", OldValue: c[0], NewValue: c[1]})
			}
			if c := dateChange(ida.ValidFrom, idb.ValidFrom); c != nil {
				changes = append(changes, FieldChange{Field: "identifiers[" + k + "].valid_from", OldValue: c[0], NewValue: c[1]})
			}
			if c := dateChange(ida.ValidTo, idb.ValidTo); c != nil {
				changes = append(changes, FieldChange{Field: "identifiers[" + k + "].valid_to", OldValue: c[0], NewValue: c[1]})
			}
		}
	}
	return changes
}

// labelSetChanges treats labels as a set of (key, value) tuples, so a
// value change on an existing key surfaces as one removal plus one
// addition rather than a single update.
func labelSetChanges(a, b []model.Label, filter DiffFilter) []FieldChange {
	if filter.ignored("labels") {
		return nil
	}
	tuple := func(l model.Label) string { return l.Key + "\x00" + l.Value }

	am := make(map[string]model.Label, len(a))
	for _, l := range a {
		am[tuple(l)] = l
	}
	bm := make(map[string]model.Label, len(b))
	for _, l := range b {
		bm[tuple(l)] = l
	}

	var keys []string
	seen := make(map[string]bool)
	for k := range am {
		keys = append(keys, k)
		seen[k] = true
	}
	for k := range bm {
		if !seen[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var changes []FieldChange
	for _, k := range keys {
		la, okA := am[k]
		lb, okB := bm[k]
		switch {
		case okA && !okB:
			changes = append(changes, FieldChange{Field: "labels[" + k + "]", OldValue: la, NewValue: nil})
		case !okA && okB:
			changes = append(changes, FieldChange{Field: "labels[" + k + "]", OldValue: nil, NewValue: lb})
		}
	}
	return changes
}
