package diff

import (
	"sort"

	"github.com/rawblock/omtsf-engine/internal/merge"
	"github.com/rawblock/omtsf-engine/pkg/dsu"
	"github.com/rawblock/omtsf-engine/pkg/model"
)

// nodePairing is the outcome of pairing file A's nodes against file B's
// nodes. groupOfA/groupOfB map a node id in its own file to the shared
// group id assigned across both files, which edge pairing then uses as
// its endpoint-equivalence relation.
type nodePairing struct {
	added    []model.Node
	removed  []model.Node
	modified []NodeChange
	warnings []Warning
	groupOfA map[string]int
	groupOfB map[string]int
}

// pairNodes implements the node-pairing step: build a combined canonical
// identifier index over both files' nodes (reusing merge's eligibility
// and identity predicates so the two engines can never disagree about
// what counts as "the same external registration"), compute the
// transitive closure via union-find, then classify each resulting group
// by which file(s) contributed to it.
func pairNodes(aNodes, bNodes []model.Node, filter DiffFilter) nodePairing {
	type ordinalInfo struct {
		file  int // 0 = A, 1 = B
		index int // position within that file's node slice
	}

	var ordinals []ordinalInfo
	for i := range aNodes {
		ordinals = append(ordinals, ordinalInfo{file: 0, index: i})
	}
	for i := range bNodes {
		ordinals = append(ordinals, ordinalInfo{file: 1, index: i})
	}

	nodeAt := func(o ordinalInfo) model.Node {
		if o.file == 0 {
			return aNodes[o.index]
		}
		return bNodes[o.index]
	}

	type idxEntry struct {
		ordinal int
		id      model.Identifier
	}
	index := make(map[string][]idxEntry)
	for ordinal, o := range ordinals {
		for _, id := range nodeAt(o).Identifiers {
			if !merge.IsEligibleForIndex(id) {
				continue
			}
			key := id.MatchKey()
			index[key] = append(index[key], idxEntry{ordinal: ordinal, id: id})
		}
	}

	uf := dsu.New(len(ordinals))
	for _, entries := range index {
		for a := 0; a < len(entries); a++ {
			for b := a + 1; b < len(entries); b++ {
				if entries[a].ordinal == entries[b].ordinal {
					continue
				}
				if merge.IdentifiersMatch(entries[a].id, entries[b].id) {
					uf.Union(entries[a].ordinal, entries[b].ordinal)
				}
			}
		}
	}

	roots, members := uf.Groups()

	result := nodePairing{
		groupOfA: make(map[string]int, len(aNodes)),
		groupOfB: make(map[string]int, len(bNodes)),
	}

	for _, root := range roots {
		group := append([]int(nil), members[root]...)
		sort.Ints(group)

		var aIdx, bIdx []int
		for _, ord := range group {
			o := ordinals[ord]
			if o.file == 0 {
				aIdx = append(aIdx, o.index)
				result.groupOfA[aNodes[o.index].ID] = root
			} else {
				bIdx = append(bIdx, o.index)
				result.groupOfB[bNodes[o.index].ID] = root
			}
		}

		switch {
		case len(aIdx) == 0:
			for _, i := range bIdx {
				if filter.nodeAllowed(bNodes[i].Type) {
					result.added = append(result.added, bNodes[i])
				}
			}
		case len(bIdx) == 0:
			for _, i := range aIdx {
				if filter.nodeAllowed(aNodes[i].Type) {
					result.removed = append(result.removed, aNodes[i])
				}
			}
		default:
			if len(aIdx) > 1 || len(bIdx) > 1 {
				idsA := make([]string, len(aIdx))
				for i, idx := range aIdx {
					idsA[i] = aNodes[idx].ID
				}
				idsB := make([]string, len(bIdx))
				for i, idx := range bIdx {
					idsB[i] = bNodes[idx].ID
				}
				result.warnings = append(result.warnings, AmbiguousNodeGroup(idsA, idsB))
			}
			// Pair by position within the group; members beyond the shorter
			// side's length have no counterpart to compare against but are
			// still part of a matched group, so they are neither Added nor
			// Removed.
			n := len(aIdx)
			if len(bIdx) < n {
				n = len(bIdx)
			}
			for i := 0; i < n; i++ {
				a, b := aNodes[aIdx[i]], bNodes[bIdx[i]]
				if !filter.nodeAllowed(a.Type) && !filter.nodeAllowed(b.Type) {
					continue
				}
				changes := compareNodes(a, b, filter)
				if len(changes) > 0 {
					result.modified = append(result.modified, NodeChange{AID: a.ID, BID: b.ID, Changes: changes})
				}
			}
		}
	}

	sort.Slice(result.removed, func(i, j int) bool { return result.removed[i].ID < result.removed[j].ID })
	sort.Slice(result.added, func(i, j int) bool { return result.added[i].ID < result.added[j].ID })
	sort.Slice(result.modified, func(i, j int) bool { return result.modified[i].AID < result.modified[j].AID })

	return result
}
