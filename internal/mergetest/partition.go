// Package mergetest provides partition- and connectivity-comparison
// helpers for exercising the merge engine's algebraic laws
// (commutativity, associativity, idempotency): two merge outputs that
// assign different sequential node/edge ids, or that differ only in
// `file_salt`/`merge_metadata.timestamp`, should still be recognized as
// "the same merge result" by these comparisons.
package mergetest

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/rawblock/omtsf-engine/pkg/model"
)

// NodeSignature is an order-independent identity for one merged node:
// its sorted canonical identifier forms. Nodes carrying no external
// identifier fall back to type/name/jurisdiction, the only other
// information a differently-ordered merge could use to recognize "the
// same" identifier-less node across two runs.
type NodeSignature string

func nodeSignature(n model.Node) NodeSignature {
	if len(n.Identifiers) == 0 {
		return NodeSignature("\x00:" + n.Type + ":" + n.Name + ":" + n.Jurisdiction)
	}
	ids := make([]string, 0, len(n.Identifiers))
	for _, id := range n.Identifiers {
		ids = append(ids, id.Canonical())
	}
	sort.Strings(ids)
	return NodeSignature(strings.Join(ids, "\n"))
}

// Partition returns the set of node signatures a merged file contains.
func Partition(f *model.File) map[NodeSignature]bool {
	out := make(map[NodeSignature]bool, len(f.Nodes))
	for _, n := range f.Nodes {
		out[nodeSignature(n)] = true
	}
	return out
}

// SamePartition reports whether two merged files group input
// identifiers into the same equivalence classes, regardless of assigned
// node ids or output ordering — the property the idempotency and
// commutativity laws require of node grouping.
func SamePartition(a, b *model.File) bool {
	pa, pb := Partition(a), Partition(b)
	if len(pa) != len(pb) {
		return false
	}
	for k := range pa {
		if !pb[k] {
			return false
		}
	}
	return true
}

// EdgeSignature is an order-independent identity for one merged edge:
// its endpoints' node signatures plus its type. Two edges between
// signature-equivalent endpoints of the same type are indistinguishable
// for connectivity purposes even if their assigned ids differ.
type EdgeSignature string

func edgeSignatures(f *model.File) map[EdgeSignature]int {
	sigByID := make(map[string]NodeSignature, len(f.Nodes))
	for _, n := range f.Nodes {
		sigByID[n.ID] = nodeSignature(n)
	}
	out := make(map[EdgeSignature]int)
	for _, e := range f.Edges {
		key := EdgeSignature(string(sigByID[e.Source]) + "->" + string(sigByID[e.Target]) + ":" + e.Type)
		out[key]++
	}
	return out
}

// SameConnectivity reports whether two merged files connect the same
// equivalence classes with the same edge types the same number of
// times, under canonical-identifier endpoint resolution — the property
// idempotency requires of edge dedup: `merge([A,A])` must not double an
// edge that appears once in A, nor drop one that should survive.
func SameConnectivity(a, b *model.File) bool {
	ea, eb := edgeSignatures(a), edgeSignatures(b)
	if len(ea) != len(eb) {
		return false
	}
	for k, v := range ea {
		if eb[k] != v {
			return false
		}
	}
	return true
}

// Normalize strips the two legitimate sources of nondeterminism a merge
// output carries — the fresh CSPRNG salt and the wall-clock merge
// timestamp — so that otherwise byte-identical outputs compare equal.
// Used for the commutativity law, which requires actual byte-identical
// output, not just equivalent partitions.
func Normalize(f *model.File) *model.File {
	clone := *f
	clone.FileSalt = ""
	if clone.MergeMetadata != nil {
		mm := *clone.MergeMetadata
		mm.Timestamp = ""
		clone.MergeMetadata = &mm
	}
	return &clone
}

// StableJSON renders a normalized file to JSON text for direct
// byte-identical comparison. Panics on marshal failure, which cannot
// happen for a file that was itself produced by a successful merge.
func StableJSON(f *model.File) string {
	b, err := json.Marshal(Normalize(f))
	if err != nil {
		panic("mergetest: unmarshalable merge output: " + err.Error())
	}
	return string(b)
}
