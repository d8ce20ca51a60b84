package merge

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/rawblock/omtsf-engine/pkg/model"
)

func fixedNow() time.Time { return time.Date(2026, 7, 31, 12, 0, 0, 0, time.UTC) }

func fileA() *model.File {
	return &model.File{
		OmtsfVersion: "1.0",
		SnapshotDate: "2026-01-10",
		FileSalt:     "a1b2c3d4e5f60718293a4b5c6d7e8f90a1b2c3d4e5f60718293a4b5c6d7e8f9",
		Nodes: []model.Node{
			{ID: "org-1", Type: model.NodeOrganization, Name: "Acme Corp",
				Identifiers: []model.Identifier{{Scheme: model.SchemeLEI, Value: "5493006MHB84DD0ZWV18"}}},
			{ID: "org-2", Type: model.NodeOrganization, Name: "Acme Subsidiary",
				Identifiers: []model.Identifier{{Scheme: model.SchemeDUNS, Value: "081466849"}}},
		},
		Edges: []model.Edge{
			{ID: "e-1", Type: model.EdgeOwnership, Source: "org-1", Target: "org-2"},
		},
	}
}

func fileB() *model.File {
	return &model.File{
		OmtsfVersion: "1.0",
		SnapshotDate: "2026-02-15",
		FileSalt:     "b1b2c3d4e5f60718293a4b5c6d7e8f90a1b2c3d4e5f60718293a4b5c6d7e8f9",
		Nodes: []model.Node{
			{ID: "n-a", Type: model.NodeOrganization, Name: "Acme Corp",
				Identifiers: []model.Identifier{{Scheme: model.SchemeLEI, Value: "5493006MHB84DD0ZWV18"}}},
			{ID: "n-b", Type: model.NodeOrganization, Name: "Acme Subsidiary",
				Identifiers: []model.Identifier{{Scheme: model.SchemeDUNS, Value: "081466849"}}},
		},
		Edges: []model.Edge{
			{ID: "e-x", Type: model.EdgeOwnership, Source: "n-a", Target: "n-b"},
		},
	}
}

// stableHash normalizes a merged file for the determinism comparisons
// the algebraic-law tests rely on: zero file_salt and the merge
// timestamp before comparing marshaled JSON.
func stableHash(t *testing.T, f *model.File) string {
	t.Helper()
	clone := *f
	clone.FileSalt = ""
	if clone.MergeMetadata != nil {
		mm := *clone.MergeMetadata
		mm.Timestamp = ""
		clone.MergeMetadata = &mm
	}
	b, err := json.Marshal(clone)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(b)
}

func TestMergeCommutative(t *testing.T) {
	orig := Now
	Now = fixedNow
	defer func() { Now = orig }()

	ab, err := Merge([]Input{{Source: "a.omts", File: fileA()}, {Source: "b.omts", File: fileB()}}, DefaultConfig())
	if err != nil {
		t.Fatalf("merge(A,B): %v", err)
	}
	ba, err := Merge([]Input{{Source: "b.omts", File: fileB()}, {Source: "a.omts", File: fileA()}}, DefaultConfig())
	if err != nil {
		t.Fatalf("merge(B,A): %v", err)
	}

	if stableHash(t, ab.File) != stableHash(t, ba.File) {
		t.Fatalf("merge(A,B) and merge(B,A) differ:\nA,B: %s\nB,A: %s", stableHash(t, ab.File), stableHash(t, ba.File))
	}
}

func TestMergeIdempotentPartition(t *testing.T) {
	result, err := Merge([]Input{{Source: "a.omts", File: fileA()}, {Source: "a2.omts", File: fileA()}}, DefaultConfig())
	if err != nil {
		t.Fatalf("merge(A,A): %v", err)
	}
	if len(result.File.Nodes) != 2 {
		t.Fatalf("expected merge(A,A) to collapse to 2 nodes (one per identity class), got %d", len(result.File.Nodes))
	}
	if len(result.File.Edges) != 1 {
		t.Fatalf("expected merge(A,A) to collapse to 1 edge, got %d", len(result.File.Edges))
	}
}

func TestMergeCollapsesMatchingLEI(t *testing.T) {
	result, err := Merge([]Input{{Source: "a.omts", File: fileA()}, {Source: "b.omts", File: fileB()}}, DefaultConfig())
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if len(result.File.Nodes) != 2 {
		t.Fatalf("expected 2 merged nodes (org-1/n-a share an LEI, org-2/n-b share a DUNS), got %d", len(result.File.Nodes))
	}
}

func TestMergeRecordsScalarConflict(t *testing.T) {
	a := fileA()
	b := fileB()
	b.Nodes[0].Name = "Acme Corporation" // disagreeing name on the LEI-matched node

	result, err := Merge([]Input{{Source: "a.omts", File: a}, {Source: "b.omts", File: b}}, DefaultConfig())
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	var matched *model.Node
	for i := range result.File.Nodes {
		if len(result.File.Nodes[i].Identifiers) > 0 {
			matched = &result.File.Nodes[i]
		}
	}
	if matched == nil {
		t.Fatalf("expected a merged node carrying the shared LEI")
	}
	if matched.Name != "" {
		t.Errorf("expected name to be omitted on conflict, got %q", matched.Name)
	}
	found := false
	for _, c := range matched.Conflicts {
		if c.Field == "name" {
			found = true
			if len(c.Values) != 2 {
				t.Errorf("expected 2 conflicting name values, got %d", len(c.Values))
			}
		}
	}
	if !found {
		t.Errorf("expected a name conflict to be recorded, got %+v", matched.Conflicts)
	}
}

func TestMergeOversizedGroupWarning(t *testing.T) {
	f := &model.File{OmtsfVersion: "1.0", SnapshotDate: "2026-01-01", FileSalt: fileA().FileSalt}
	for i := 0; i < 3; i++ {
		f.Nodes = append(f.Nodes, model.Node{
			ID:   idFor(i),
			Type: model.NodeOrganization,
			Identifiers: []model.Identifier{
				{Scheme: model.SchemeLEI, Value: "5493006MHB84DD0ZWV18"},
			},
		})
	}
	result, err := Merge([]Input{{Source: "a.omts", File: f}}, Config{SameAsThreshold: ConfidencePossible, GroupSizeLimit: 2})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if len(result.Warnings) != 1 {
		t.Fatalf("expected 1 oversized-group warning, got %d: %+v", len(result.Warnings), result.Warnings)
	}
	if result.Warnings[0].Size != 3 {
		t.Errorf("expected warning size 3, got %d", result.Warnings[0].Size)
	}
}

func idFor(i int) string {
	return []string{"n-0", "n-1", "n-2"}[i]
}

func TestMergeSameAsThresholdGatesUnion(t *testing.T) {
	f := &model.File{
		OmtsfVersion: "1.0",
		SnapshotDate: "2026-01-01",
		FileSalt:     fileA().FileSalt,
		Nodes: []model.Node{
			{ID: "p-1", Type: model.NodeOrganization, Name: "Org One"},
			{ID: "p-2", Type: model.NodeOrganization, Name: "Org Two"},
		},
		Edges: []model.Edge{
			{ID: "sa-1", Type: model.EdgeSameAs, Source: "p-1", Target: "p-2",
				Properties: model.EdgeProperties{Extra: map[string]any{"confidence": "possible"}}},
		},
	}

	lenientResult, err := Merge([]Input{{Source: "a.omts", File: f}}, Config{SameAsThreshold: ConfidencePossible})
	if err != nil {
		t.Fatalf("merge (lenient): %v", err)
	}
	if len(lenientResult.File.Nodes) != 1 {
		t.Fatalf("expected possible-confidence same_as to merge under a possible threshold, got %d nodes", len(lenientResult.File.Nodes))
	}

	strictResult, err := Merge([]Input{{Source: "a.omts", File: f}}, Config{SameAsThreshold: ConfidenceDefinite})
	if err != nil {
		t.Fatalf("merge (strict): %v", err)
	}
	if len(strictResult.File.Nodes) != 2 {
		t.Fatalf("expected possible-confidence same_as to NOT merge under a definite threshold, got %d nodes", len(strictResult.File.Nodes))
	}
}

func TestMergeDroppedEdgeOnDanglingEndpoint(t *testing.T) {
	f := &model.File{
		OmtsfVersion: "1.0",
		SnapshotDate: "2026-01-01",
		FileSalt:     fileA().FileSalt,
		Nodes: []model.Node{
			{ID: "org-1", Type: model.NodeOrganization},
		},
		Edges: []model.Edge{
			{ID: "e-1", Type: model.EdgeOwnership, Source: "org-1", Target: "missing"},
		},
	}
	result, err := Merge([]Input{{Source: "a.omts", File: f}}, DefaultConfig())
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if len(result.File.Edges) != 0 {
		t.Fatalf("expected dangling edge to be silently dropped, got %d edges", len(result.File.Edges))
	}
}
