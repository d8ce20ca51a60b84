// Package merge implements the deterministic, eight-step merge pipeline:
// concatenate inputs, index canonical identifiers and union matching
// nodes, fold in same_as edges, flag oversized groups, collapse node
// groups, rewrite and dedup edges, and emit sorted output with fresh
// provenance metadata. The pipeline is a pure function of its inputs
// except for the CSPRNG salt and wall-clock timestamp it stamps onto the
// result.
package merge

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rawblock/omtsf-engine/internal/validate"
	"github.com/rawblock/omtsf-engine/pkg/csprng"
	"github.com/rawblock/omtsf-engine/pkg/dsu"
	"github.com/rawblock/omtsf-engine/pkg/model"
)

// Input is one file to merge, paired with a caller-supplied identifier
// used for merge_metadata.source_files and conflict provenance.
type Input struct {
	Source string
	File   *model.File
}

// Result is the outcome of a successful merge.
type Result struct {
	File     *model.File
	Warnings []Warning
}

// Now is the wall-clock source used to stamp merge_metadata.timestamp.
// Exposed as a variable so tests can pin a fixed value; production
// callers leave it at its default.
var Now = func() time.Time { return time.Now().UTC() }

// Merge runs the eight-step pipeline over inputs and returns the merged
// file plus any non-fatal warnings. It fails only if the platform CSPRNG
// is unavailable or if the engine's own output fails L1 validation,
// which indicates a pipeline bug rather than bad input.
func Merge(inputs []Input, cfg Config) (Result, error) {
	if cfg.SameAsThreshold == "" {
		cfg.SameAsThreshold = DefaultConfig().SameAsThreshold
	}

	nodeRecs, nodeLocalMaps := concatenateNodes(inputs)
	uf := dsu.New(len(nodeRecs))
	unionMatchingIdentifiers(uf, nodeRecs)
	applySameAsEdges(uf, inputs, nodeLocalMaps, cfg)

	roots, members := uf.Groups()
	warnings := oversizedGroupWarnings(roots, members, cfg.groupSizeLimit())

	newNodes, ordinalToNewID := buildMergedNodes(roots, members, nodeRecs)

	edgeRecs := concatenateEdges(inputs)
	rewriteEdgeEndpoints(edgeRecs, func(sourceIdx int, localID string) (string, bool) {
		if sourceIdx < 0 || sourceIdx >= len(nodeLocalMaps) {
			return "", false
		}
		ordinal, ok := nodeLocalMaps[sourceIdx][localID]
		if !ok {
			return "", false
		}
		id, ok := ordinalToNewID[ordinal]
		return id, ok
	})
	sameAsEdges, mergedEdgeGroups := dedupEdges(edgeRecs)
	newEdges := assembleEdges(sameAsEdges, mergedEdgeGroups, newNodes)

	salt, err := csprng.HexSalt(32)
	if err != nil {
		return Result{}, fmt.Errorf("merge: %w", err)
	}

	out := &model.File{
		OmtsfVersion:    omtsfVersion(inputs),
		SnapshotDate:    latestSnapshotDate(inputs),
		FileSalt:        salt,
		DisclosureScope: agreeingString(inputs, func(f *model.File) string { return f.DisclosureScope }),
		ReportingEntity: agreeingString(inputs, func(f *model.File) string { return f.ReportingEntity }),
		Nodes:           newNodes,
		Edges:           newEdges,
		MergeMetadata:   buildMergeMetadata(inputs, newNodes, newEdges),
	}

	result := validate.Validate(context.Background(), out, validate.Config{RunL2: false, RunL3: false})
	if !result.IsConformant() {
		return Result{}, &PostMergeValidationError{Diagnostics: result.Diagnostics}
	}

	return Result{File: out, Warnings: warnings}, nil
}

func concatenateNodes(inputs []Input) ([]nodeRecord, []map[string]int) {
	var records []nodeRecord
	localMaps := make([]map[string]int, len(inputs))
	for fi, in := range inputs {
		localMaps[fi] = make(map[string]int, len(in.File.Nodes))
		for _, n := range in.File.Nodes {
			ordinal := len(records)
			localMaps[fi][n.ID] = ordinal
			records = append(records, nodeRecord{node: n, source: in.Source})
		}
	}
	return records, localMaps
}

func unionMatchingIdentifiers(uf *dsu.DSU, records []nodeRecord) {
	type idxEntry struct {
		ordinal int
		id      model.Identifier
	}
	index := make(map[string][]idxEntry)
	for ordinal, rec := range records {
		for _, id := range rec.node.Identifiers {
			if !isEligibleForIndex(id) {
				continue
			}
			key := id.MatchKey()
			index[key] = append(index[key], idxEntry{ordinal: ordinal, id: id})
		}
	}
	for _, entries := range index {
		for a := 0; a < len(entries); a++ {
			for b := a + 1; b < len(entries); b++ {
				if entries[a].ordinal == entries[b].ordinal {
					continue
				}
				if identifiersMatch(entries[a].id, entries[b].id) {
					uf.Union(entries[a].ordinal, entries[b].ordinal)
				}
			}
		}
	}
}

func applySameAsEdges(uf *dsu.DSU, inputs []Input, localMaps []map[string]int, cfg Config) {
	for fi, in := range inputs {
		for _, e := range in.File.Edges {
			if e.Type != model.EdgeSameAs {
				continue
			}
			if !meetsThreshold(e.Confidence(), cfg.SameAsThreshold) {
				continue
			}
			srcOrd, okSrc := localMaps[fi][e.Source]
			dstOrd, okDst := localMaps[fi][e.Target]
			if okSrc && okDst {
				uf.Union(srcOrd, dstOrd)
			}
		}
	}
}

func oversizedGroupWarnings(roots []int, members map[int][]int, limit int) []Warning {
	var warnings []Warning
	for _, root := range roots {
		group := append([]int(nil), members[root]...)
		sort.Ints(group)
		if len(group) > limit {
			warnings = append(warnings, OversizedMergeGroup(group[0], len(group), limit))
		}
	}
	sort.Slice(warnings, func(i, j int) bool { return warnings[i].RepresentativeOrdinal < warnings[j].RepresentativeOrdinal })
	return warnings
}

// buildMergedNodes runs step 5 and returns the freshly numbered node
// list in final sorted order plus a map from every original ordinal to
// the merged node id it now belongs to.
func buildMergedNodes(roots []int, members map[int][]int, records []nodeRecord) ([]model.Node, map[int]string) {
	type built struct {
		group   mergedGroup
		members []int
	}
	all := make([]built, 0, len(roots))
	for _, root := range roots {
		ms := append([]int(nil), members[root]...)
		sort.Ints(ms)
		all = append(all, built{group: mergeNodeGroup(ms, records), members: ms})
	}
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].group.minCanonical != all[j].group.minCanonical {
			return all[i].group.minCanonical < all[j].group.minCanonical
		}
		return all[i].group.minOrdinal < all[j].group.minOrdinal
	})

	nodes := make([]model.Node, len(all))
	ordinalToNewID := make(map[int]string, len(records))
	for i, b := range all {
		id := newNodeID(i)
		n := b.group.node
		n.ID = id
		nodes[i] = n
		for _, ordinal := range b.members {
			ordinalToNewID[ordinal] = id
		}
	}
	return nodes, ordinalToNewID
}

func newNodeID(i int) string {
	return fmt.Sprintf("n-%d", i)
}

func concatenateEdges(inputs []Input) []edgeRecord {
	var records []edgeRecord
	for fi, in := range inputs {
		for _, e := range in.File.Edges {
			records = append(records, edgeRecord{edge: e, source: in.Source, sourceIdx: fi})
		}
	}
	return records
}

// assembleEdges runs step 8's edge half: assign sequential ids to
// deduplicated edges in the documented sort order, then append same_as
// edges (which keep their original identity and never compete for
// dedup ids) sorted the same way for a stable final ordering.
func assembleEdges(sameAs []model.Edge, groups []mergedEdgeGroup, nodes []model.Node) []model.Edge {
	canonicalMinByID := make(map[string]string, len(nodes))
	for _, n := range nodes {
		canonicalMinByID[n.ID] = minCanonicalIdentifier(n.Identifiers)
	}

	sort.SliceStable(groups, func(i, j int) bool {
		gi, gj := groups[i].edge, groups[j].edge
		si, sj := canonicalMinByID[gi.Source], canonicalMinByID[gj.Source]
		if si != sj {
			return si < sj
		}
		ti, tj := canonicalMinByID[gi.Target], canonicalMinByID[gj.Target]
		if ti != tj {
			return ti < tj
		}
		if gi.Type != gj.Type {
			return gi.Type < gj.Type
		}
		if groups[i].minCanonical != groups[j].minCanonical {
			return groups[i].minCanonical < groups[j].minCanonical
		}
		return groups[i].minOrdinal < groups[j].minOrdinal
	})

	out := make([]model.Edge, 0, len(groups)+len(sameAs))
	for i, g := range groups {
		e := g.edge
		e.ID = fmt.Sprintf("e-%d", i)
		out = append(out, e)
	}

	sort.SliceStable(sameAs, func(i, j int) bool {
		si, sj := canonicalMinByID[sameAs[i].Source], canonicalMinByID[sameAs[j].Source]
		if si != sj {
			return si < sj
		}
		return canonicalMinByID[sameAs[i].Target] < canonicalMinByID[sameAs[j].Target]
	})
	for i, e := range sameAs {
		e.ID = fmt.Sprintf("e-same-as-%d", i)
		out = append(out, e)
	}
	return out
}

// omtsfVersion takes the first input's declared version; merge does not
// perform schema migration, so callers are expected to merge files of
// the same declared version.
func omtsfVersion(inputs []Input) string {
	if len(inputs) == 0 {
		return ""
	}
	return inputs[0].File.OmtsfVersion
}

func latestSnapshotDate(inputs []Input) string {
	var latest string
	for _, in := range inputs {
		if in.File.SnapshotDate > latest {
			latest = in.File.SnapshotDate
		}
	}
	return latest
}

// agreeingString returns the header field value shared by every input,
// or "" if any two inputs disagree. Step 8 states this rule explicitly
// for reporting_entity; disclosure_scope gets the same treatment since
// it is the same kind of header-level fact about the merge's sources,
// not something the pipeline can reasonably vote on.
func agreeingString(inputs []Input, get func(*model.File) string) string {
	if len(inputs) == 0 {
		return ""
	}
	first := get(inputs[0].File)
	for _, in := range inputs[1:] {
		if get(in.File) != first {
			return ""
		}
	}
	return first
}

func buildMergeMetadata(inputs []Input, nodes []model.Node, edges []model.Edge) *model.MergeMetadata {
	sources := make([]string, 0, len(inputs))
	seenSource := make(map[string]bool)
	entities := make([]string, 0, len(inputs))
	seenEntity := make(map[string]bool)
	conflictCount := 0

	for _, in := range inputs {
		if !seenSource[in.Source] {
			seenSource[in.Source] = true
			sources = append(sources, in.Source)
		}
		if in.File.ReportingEntity != "" && !seenEntity[in.File.ReportingEntity] {
			seenEntity[in.File.ReportingEntity] = true
			entities = append(entities, in.File.ReportingEntity)
		}
	}
	sort.Strings(sources)
	sort.Strings(entities)

	for _, n := range nodes {
		conflictCount += len(n.Conflicts)
	}
	for _, e := range edges {
		conflictCount += len(e.Properties.Conflicts)
	}

	return &model.MergeMetadata{
		SourceFiles:       sources,
		ReportingEntities: entities,
		Timestamp:         Now().Format(time.RFC3339),
		MergedNodeCount:   len(nodes),
		MergedEdgeCount:   len(edges),
		ConflictCount:     conflictCount,
	}
}
