package diff

import (
	"sort"

	"github.com/rawblock/omtsf-engine/internal/merge"
	"github.com/rawblock/omtsf-engine/pkg/model"
)

type edgePairing struct {
	added    []model.Edge
	removed  []model.Edge
	modified []EdgeChange
}

type edgeGroupKey struct {
	source int
	target int
	etype  string
}

// pairEdges implements the edge-pairing step: bucket each file's edges
// by (resolved endpoint group, type) using the node pairing's group ids
// as endpoint equivalence, then within each bucket shared by both files
// apply the merge engine's edge identity predicate, pairing matches in
// file order. Edges left over on either side after pairing are Removed
// or Added; buckets existing on only one side are entirely Removed or
// Added.
func pairEdges(aEdges, bEdges []model.Edge, pairing nodePairing, filter DiffFilter, nodeTypeA, nodeTypeB map[string]string) edgePairing {
	endpointsAllowed := func(nodeTypes map[string]string, srcID, tgtID string) bool {
		return filter.nodeAllowed(nodeTypes[srcID]) && filter.nodeAllowed(nodeTypes[tgtID])
	}

	bucketsA := make(map[edgeGroupKey][]int)
	for i, e := range aEdges {
		srcGroup, okSrc := pairing.groupOfA[e.Source]
		tgtGroup, okTgt := pairing.groupOfA[e.Target]
		if !okSrc || !okTgt {
			continue
		}
		key := edgeGroupKey{source: srcGroup, target: tgtGroup, etype: e.Type}
		bucketsA[key] = append(bucketsA[key], i)
	}

	bucketsB := make(map[edgeGroupKey][]int)
	for i, e := range bEdges {
		srcGroup, okSrc := pairing.groupOfB[e.Source]
		tgtGroup, okTgt := pairing.groupOfB[e.Target]
		if !okSrc || !okTgt {
			continue
		}
		key := edgeGroupKey{source: srcGroup, target: tgtGroup, etype: e.Type}
		bucketsB[key] = append(bucketsB[key], i)
	}

	keys := make(map[edgeGroupKey]bool)
	for k := range bucketsA {
		keys[k] = true
	}
	for k := range bucketsB {
		keys[k] = true
	}
	sortedKeys := make([]edgeGroupKey, 0, len(keys))
	for k := range keys {
		sortedKeys = append(sortedKeys, k)
	}
	sort.Slice(sortedKeys, func(i, j int) bool {
		if sortedKeys[i].source != sortedKeys[j].source {
			return sortedKeys[i].source < sortedKeys[j].source
		}
		if sortedKeys[i].target != sortedKeys[j].target {
			return sortedKeys[i].target < sortedKeys[j].target
		}
		return sortedKeys[i].etype < sortedKeys[j].etype
	})

	var result edgePairing

	for _, key := range sortedKeys {
		if !filter.edgeAllowed(key.etype) {
			continue
		}
		aIdxs := bucketsA[key]
		bIdxs := bucketsB[key]

		used := make([]bool, len(bIdxs))
		for _, ai := range aIdxs {
			a := aEdges[ai]
			if !endpointsAllowed(nodeTypeA, a.Source, a.Target) {
				continue
			}
			matched := -1
			for j, bi := range bIdxs {
				if used[j] {
					continue
				}
				b := bEdges[bi]
				if merge.EdgesMatch(key.etype, a.Identifiers, b.Identifiers, a.Properties, b.Properties) {
					matched = j
					break
				}
			}
			if matched == -1 {
				result.removed = append(result.removed, a)
				continue
			}
			used[matched] = true
			b := bEdges[bIdxs[matched]]
			changes := compareEdges(a, b, filter)
			if len(changes) > 0 {
				result.modified = append(result.modified, EdgeChange{AID: a.ID, BID: b.ID, Changes: changes})
			}
		}
		for j, bi := range bIdxs {
			if used[j] {
				continue
			}
			b := bEdges[bi]
			if !endpointsAllowed(nodeTypeB, b.Source, b.Target) {
				continue
			}
			result.added = append(result.added, b)
		}
	}

	sort.Slice(result.removed, func(i, j int) bool { return result.removed[i].ID < result.removed[j].ID })
	sort.Slice(result.added, func(i, j int) bool { return result.added[i].ID < result.added[j].ID })
	sort.Slice(result.modified, func(i, j int) bool { return result.modified[i].AID < result.modified[j].AID })

	return result
}
