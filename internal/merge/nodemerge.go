package merge

import (
	"sort"

	"github.com/rawblock/omtsf-engine/pkg/model"
)

// nodeRecord is one input node carried with its source label, used to
// tag conflict values in step 5 and to trace provenance through the
// pipeline.
type nodeRecord struct {
	node   model.Node
	source string
}

// mergedGroup is the result of collapsing one node equivalence class.
type mergedGroup struct {
	minOrdinal   int // representative (lowest-ordinal) member
	minCanonical string
	node         model.Node
}

// mergeNodeGroup collapses the nodes at the given ordinals (already
// sorted ascending) into a single merged node. The returned node's ID is
// left empty; the caller assigns sequential ids after sorting all groups.
func mergeNodeGroup(ordinals []int, records []nodeRecord) mergedGroup {
	repOrdinal := ordinals[0]
	rep := records[repOrdinal].node

	out := model.Node{
		DataQuality: rep.DataQuality,
		Extra:       rep.Extra,
	}

	out.Type = mergeScalarString(ordinals, records, "type", func(n model.Node) string { return n.Type }, &out)
	out.Name = mergeScalarString(ordinals, records, "name", func(n model.Node) string { return n.Name }, &out)
	out.Jurisdiction = mergeScalarString(ordinals, records, "jurisdiction", func(n model.Node) string { return n.Jurisdiction }, &out)
	out.Geo = mergeScalarGeo(ordinals, records, &out)

	out.Identifiers = mergeIdentifiers(ordinals, records)
	out.Labels = mergeLabels(ordinals, records)

	return mergedGroup{
		minOrdinal:   repOrdinal,
		minCanonical: minCanonicalIdentifier(out.Identifiers),
		node:         out,
	}
}

// scalarObservation pairs one present value with the input it came
// from, the unit buildConflict works over.
type scalarObservation struct {
	value  any
	source string
}

// mergeScalarString implements the "all present values JSON-equal ->
// retain, else conflict" rule for a string-valued scalar field. Absent
// is the empty string.
func mergeScalarString(ordinals []int, records []nodeRecord, field string, get func(model.Node) string, out *model.Node) string {
	var present []scalarObservation
	for _, o := range ordinals {
		v := get(records[o].node)
		if v == "" {
			continue
		}
		present = append(present, scalarObservation{value: v, source: records[o].source})
	}
	if len(present) == 0 {
		return ""
	}
	allEqual := true
	for _, p := range present[1:] {
		if p.value != present[0].value {
			allEqual = false
			break
		}
	}
	if allEqual {
		return present[0].value.(string)
	}
	out.Conflicts = append(out.Conflicts, buildConflict(field, present))
	return ""
}

func buildConflict(field string, values []scalarObservation) model.Conflict {
	seenKeys := make(map[string]bool)
	var cvs []model.ConflictValue
	for _, v := range values {
		key := v.source + "\x00" + jsonText(v.value)
		if seenKeys[key] {
			continue
		}
		seenKeys[key] = true
		cvs = append(cvs, model.ConflictValue{Value: v.value, SourceFile: v.source})
	}
	sort.Slice(cvs, func(i, j int) bool {
		if cvs[i].SourceFile != cvs[j].SourceFile {
			return cvs[i].SourceFile < cvs[j].SourceFile
		}
		return jsonText(cvs[i].Value) < jsonText(cvs[j].Value)
	})
	return model.Conflict{Field: field, Values: cvs}
}

func mergeScalarGeo(ordinals []int, records []nodeRecord, out *model.Node) *model.Geo {
	var present []scalarObservation
	for _, o := range ordinals {
		g := records[o].node.Geo
		if g == nil {
			continue
		}
		present = append(present, scalarObservation{value: g, source: records[o].source})
	}
	if len(present) == 0 {
		return nil
	}
	allEqual := true
	for _, p := range present[1:] {
		if !jsonEqual(p.value, present[0].value) {
			allEqual = false
			break
		}
	}
	if allEqual {
		return present[0].value.(*model.Geo)
	}
	out.Conflicts = append(out.Conflicts, buildConflict("geo", present))
	return nil
}

// mergeIdentifiers implements the identifier set union: dedup by
// canonical form, first occurrence (in ordinal order) wins for
// attribute variations, sorted by canonical form ascending.
func mergeIdentifiers(ordinals []int, records []nodeRecord) []model.Identifier {
	seenCanonical := make(map[string]bool)
	var out []model.Identifier
	for _, o := range ordinals {
		for _, id := range records[o].node.Identifiers {
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

// mergeLabels implements the label set union: dedup by (key, value),
// sorted by (key, value) ascending with absent values sorting first.
func mergeLabels(ordinals []int, records []nodeRecord) []model.Label {
	seen := make(map[string]bool)
	var out []model.Label
	for _, o := range ordinals {
		for _, l := range records[o].node.Labels {
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

// minCanonicalIdentifier returns the lexicographically smallest
// canonical identifier form among a node's identifiers, or a sentinel
// that sorts after every real identifier if the node carries none. A
// node with no external identifiers is sorted to the end of its cohort
// rather than the front, keeping well-identified entities first in
// merged output (a documented resolution, not stated explicitly in the
// component design).
func minCanonicalIdentifier(ids []model.Identifier) string {
	if len(ids) == 0 {
		return "￿"
	}
	min := ids[0].Canonical()
	for _, id := range ids[1:] {
		if c := id.Canonical(); c < min {
			min = c
		}
	}
	return min
}
