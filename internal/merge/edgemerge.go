package merge

import (
	"math"
	"sort"

	"github.com/rawblock/omtsf-engine/pkg/dsu"
	"github.com/rawblock/omtsf-engine/pkg/model"
)

// edgeRecord is one input edge carried with its provenance and, once
// step 6 resolves endpoints, the merged node ids it now connects.
type edgeRecord struct {
	edge      model.Edge
	source    string
	sourceIdx int
	newSource string
	newTarget string
	dropped   bool
}

// rewriteEdgeEndpoints implements step 6: resolve each edge's
// source/target through the owning input's local-id map, then through
// the node union-find, then to the new merged node id. Edges whose
// endpoints don't resolve to a known node are dropped silently.
func rewriteEdgeEndpoints(records []edgeRecord, resolve func(sourceIdx int, localID string) (newNodeID string, ok bool)) {
	for i := range records {
		src, okSrc := resolve(records[i].sourceIdx, records[i].edge.Source)
		dst, okDst := resolve(records[i].sourceIdx, records[i].edge.Target)
		if !okSrc || !okDst {
			records[i].dropped = true
			continue
		}
		records[i].newSource = src
		records[i].newTarget = dst
	}
}

type edgeCompositeKey struct {
	source string
	target string
	etype  string
}

// mergedEdgeGroup is the result of collapsing one edge equivalence
// class within a composite-key bucket.
type mergedEdgeGroup struct {
	minOrdinal   int
	minCanonical string
	edge         model.Edge
}

// dedupEdges implements step 7: bucket non-same_as edges by
// (source, target, type), pair within a bucket via the edge identity
// predicate using a second union-find local to the bucket, and merge
// matched edges the same way node groups are merged. same_as edges
// bypass this entirely — every one survives to output untouched aside
// from endpoint rewriting.
func dedupEdges(records []edgeRecord) (sameAs []model.Edge, merged []mergedEdgeGroup) {
	buckets := make(map[edgeCompositeKey][]int)
	for i, r := range records {
		if r.dropped {
			continue
		}
		if r.edge.Type == model.EdgeSameAs {
			e := r.edge
			e.Source, e.Target = r.newSource, r.newTarget
			sameAs = append(sameAs, e)
			continue
		}
		key := edgeCompositeKey{source: r.newSource, target: r.newTarget, etype: r.edge.Type}
		buckets[key] = append(buckets[key], i)
	}

	keys := make([]edgeCompositeKey, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].source != keys[j].source {
			return keys[i].source < keys[j].source
		}
		if keys[i].target != keys[j].target {
			return keys[i].target < keys[j].target
		}
		return keys[i].etype < keys[j].etype
	})

	for _, key := range keys {
		bucket := buckets[key]
		sort.Ints(bucket)

		uf := dsu.New(len(bucket))
		for a := 0; a < len(bucket); a++ {
			for b := a + 1; b < len(bucket); b++ {
				ea, eb := records[bucket[a]].edge, records[bucket[b]].edge
				if edgesMatch(key.etype, ea.Identifiers, eb.Identifiers, ea.Properties, eb.Properties) {
					uf.Union(a, b)
				}
			}
		}

		roots, members := uf.Groups()
		for _, root := range roots {
			localOrdinals := members[root]
			globalOrdinals := make([]int, len(localOrdinals))
			for i, lo := range localOrdinals {
				globalOrdinals[i] = bucket[lo]
			}
			sort.Ints(globalOrdinals)
			merged = append(merged, mergeEdgeGroup(globalOrdinals, records))
		}
	}

	return sameAs, merged
}

func mergeEdgeGroup(ordinals []int, records []edgeRecord) mergedEdgeGroup {
	repOrdinal := ordinals[0]
	rep := records[repOrdinal].edge

	out := model.Edge{
		Type:   rep.Type,
		Source: records[repOrdinal].newSource,
		Target: records[repOrdinal].newTarget,
		Extra:  rep.Extra,
	}

	props := model.EdgeProperties{Extra: rep.Properties.Extra}
	var conflicts []model.Conflict

	props.ControlType = mergeEdgePropString(ordinals, records, "control_type",
		func(p model.EdgeProperties) string { return p.ControlType }, &conflicts)
	props.ConsolidationBasis = mergeEdgePropString(ordinals, records, "consolidation_basis",
		func(p model.EdgeProperties) string { return p.ConsolidationBasis }, &conflicts)
	props.EventType = mergeEdgePropString(ordinals, records, "event_type",
		func(p model.EdgeProperties) string { return p.EventType }, &conflicts)
	props.Commodity = mergeEdgePropString(ordinals, records, "commodity",
		func(p model.EdgeProperties) string { return p.Commodity }, &conflicts)
	props.ContractRef = mergeEdgePropString(ordinals, records, "contract_ref",
		func(p model.EdgeProperties) string { return p.ContractRef }, &conflicts)
	props.ServiceType = mergeEdgePropString(ordinals, records, "service_type",
		func(p model.EdgeProperties) string { return p.ServiceType }, &conflicts)
	props.Scope = mergeEdgePropString(ordinals, records, "scope",
		func(p model.EdgeProperties) string { return p.Scope }, &conflicts)
	props.ValueCurrency = mergeEdgePropString(ordinals, records, "value_currency",
		func(p model.EdgeProperties) string { return p.ValueCurrency }, &conflicts)

	props.EffectiveDate = mergeEdgePropStringPtr(ordinals, records, "effective_date",
		func(p model.EdgeProperties) *string { return p.EffectiveDate }, &conflicts)
	props.ValidFrom = mergeEdgePropStringPtr(ordinals, records, "valid_from",
		func(p model.EdgeProperties) *string { return p.ValidFrom }, &conflicts)
	props.ValidTo = mergeEdgePropStringPtr(ordinals, records, "valid_to",
		func(p model.EdgeProperties) *string { return p.ValidTo }, &conflicts)

	props.Percentage = mergeEdgePropFloatPtr(ordinals, records, "percentage",
		func(p model.EdgeProperties) *float64 { return p.Percentage }, &conflicts)
	props.AnnualValue = mergeEdgePropFloatPtr(ordinals, records, "annual_value",
		func(p model.EdgeProperties) *float64 { return p.AnnualValue }, &conflicts)
	props.Volume = mergeEdgePropFloatPtr(ordinals, records, "volume",
		func(p model.EdgeProperties) *float64 { return p.Volume }, &conflicts)

	props.Direct = mergeEdgePropBoolPtr(ordinals, records, "direct",
		func(p model.EdgeProperties) *bool { return p.Direct }, &conflicts)

	props.Conflicts = conflicts
	out.Properties = props
	out.Identifiers = mergeEdgeIdentifiers(ordinals, records)
	out.Labels = mergeEdgeLabels(ordinals, records)

	return mergedEdgeGroup{
		minOrdinal:   repOrdinal,
		minCanonical: minCanonicalIdentifier(out.Identifiers),
		edge:         out,
	}
}

func mergeEdgePropString(ordinals []int, records []edgeRecord, field string, get func(model.EdgeProperties) string, conflicts *[]model.Conflict) string {
	var present []scalarObservation
	for _, o := range ordinals {
		v := get(records[o].edge.Properties)
		if v == "" {
			continue
		}
		present = append(present, scalarObservation{value: v, source: records[o].source})
	}
	if len(present) == 0 {
		return ""
	}
	for _, p := range present[1:] {
		if p.value != present[0].value {
			*conflicts = append(*conflicts, buildConflict(field, present))
			return ""
		}
	}
	return present[0].value.(string)
}

func mergeEdgePropStringPtr(ordinals []int, records []edgeRecord, field string, get func(model.EdgeProperties) *string, conflicts *[]model.Conflict) *string {
	var present []scalarObservation
	for _, o := range ordinals {
		v := get(records[o].edge.Properties)
		if v == nil {
			continue
		}
		present = append(present, scalarObservation{value: *v, source: records[o].source})
	}
	if len(present) == 0 {
		return nil
	}
	for _, p := range present[1:] {
		if p.value != present[0].value {
			*conflicts = append(*conflicts, buildConflict(field, present))
			return nil
		}
	}
	v := present[0].value.(string)
	return &v
}

func mergeEdgePropFloatPtr(ordinals []int, records []edgeRecord, field string, get func(model.EdgeProperties) *float64, conflicts *[]model.Conflict) *float64 {
	var present []scalarObservation
	for _, o := range ordinals {
		v := get(records[o].edge.Properties)
		if v == nil {
			continue
		}
		present = append(present, scalarObservation{value: *v, source: records[o].source})
	}
	if len(present) == 0 {
		return nil
	}
	// bitwise comparison per the merge determinism discipline: percentage
	// and other quantity fields compare by exact float64 bit pattern, not
	// within a tolerance (tolerant comparison belongs to diff output only).
	for _, p := range present[1:] {
		if math.Float64bits(p.value.(float64)) != math.Float64bits(present[0].value.(float64)) {
			*conflicts = append(*conflicts, buildConflict(field, present))
			return nil
		}
	}
	v := present[0].value.(float64)
	return &v
}

func mergeEdgePropBoolPtr(ordinals []int, records []edgeRecord, field string, get func(model.EdgeProperties) *bool, conflicts *[]model.Conflict) *bool {
	var present []scalarObservation
	for _, o := range ordinals {
		v := get(records[o].edge.Properties)
		if v == nil {
			continue
		}
		present = append(present, scalarObservation{value: *v, source: records[o].source})
	}
	if len(present) == 0 {
		return nil
	}
	for _, p := range present[1:] {
		if p.value.(bool) != present[0].value.(bool) {
			*conflicts = append(*conflicts, buildConflict(field, present))
			return nil
		}
	}
	v := present[0].value.(bool)
	return &v
}

func mergeEdgeIdentifiers(ordinals []int, records []edgeRecord) []model.Identifier {
	seenCanonical := make(map[string]bool)
	var out []model.Identifier
	for _, o := range ordinals {
		for _, id := range records[o].edge.Identifiers {
			c := id.Canonical()
			if seenCanonical[c] {
				continue
			}
			seenCanonical[c] = true
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Canonical() < out[j].Canonical() })
	return out
}

func mergeEdgeLabels(ordinals []int, records []edgeRecord) []model.Label {
	seen := make(map[string]bool)
	var out []model.Label
	for _, o := range ordinals {
		for _, l := range records[o].edge.Labels {
			key := l.Key + "\x00" + l.Value
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return model.LabelLess(out[i], out[j]) })
	return out
}
