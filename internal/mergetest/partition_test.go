package mergetest

import (
	"math"
	"testing"
	"time"

	"github.com/rawblock/omtsf-engine/internal/merge"
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
			{ID: "e-1", Type: model.EdgeOwnership, Source: "org-1", Target: "org-2",
				Properties: model.EdgeProperties{Percentage: floatPtr(60.0)}},
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
			{ID: "e-x", Type: model.EdgeOwnership, Source: "n-a", Target: "n-b",
				Properties: model.EdgeProperties{Percentage: floatPtr(60.0)}},
		},
	}
}

func floatPtr(v float64) *float64 { return &v }

func TestCommutativityStableJSON(t *testing.T) {
	orig := merge.Now
	merge.Now = fixedNow
	defer func() { merge.Now = orig }()

	ab, err := merge.Merge([]merge.Input{{Source: "a", File: fileA()}, {Source: "b", File: fileB()}}, merge.DefaultConfig())
	if err != nil {
		t.Fatalf("merge([A,B]) failed: %v", err)
	}
	ba, err := merge.Merge([]merge.Input{{Source: "b", File: fileB()}, {Source: "a", File: fileA()}}, merge.DefaultConfig())
	if err != nil {
		t.Fatalf("merge([B,A]) failed: %v", err)
	}

	if StableJSON(ab.File) != StableJSON(ba.File) {
		t.Fatalf("expected merge([A,B]) and merge([B,A]) to normalize to identical JSON\nAB: %s\nBA: %s",
			StableJSON(ab.File), StableJSON(ba.File))
	}
}

func TestIdempotencyPartitionAndConnectivity(t *testing.T) {
	orig := merge.Now
	merge.Now = fixedNow
	defer func() { merge.Now = orig }()

	a := fileA()
	aa, err := merge.Merge([]merge.Input{{Source: "a1", File: fileA()}, {Source: "a2", File: a}}, merge.DefaultConfig())
	if err != nil {
		t.Fatalf("merge([A,A]) failed: %v", err)
	}

	if !SamePartition(a, aa.File) {
		t.Fatalf("expected merge([A,A]) to partition nodes identically to A.\nA partition: %v\nmerged partition: %v",
			Partition(a), Partition(aa.File))
	}
	if !SameConnectivity(a, aa.File) {
		t.Fatalf("expected merge([A,A]) to preserve A's edge connectivity exactly, got %v vs %v",
			edgeSignatures(a), edgeSignatures(aa.File))
	}
}

func TestSamePartitionDetectsDifference(t *testing.T) {
	a := fileA()
	b := fileB()
	b.Nodes = append(b.Nodes, model.Node{
		ID: "n-c", Type: model.NodeOrganization, Name: "New Entity",
		Identifiers: []model.Identifier{{Scheme: model.SchemeLEI, Value: "529900T8BM49AURSDO55"}},
	})
	if SamePartition(a, b) {
		t.Fatal("expected different node sets to be detected as different partitions")
	}
}

func TestAdjustedRandIndexPerfectAgreement(t *testing.T) {
	a := fileA()
	b := fileA()
	if ari := AdjustedRandIndex(a, b); math.Abs(ari-1.0) > 1e-9 {
		t.Fatalf("expected ARI=1.0 for identical grouping, got %f", ari)
	}
	if vi := VariationOfInformation(a, b); vi > 1e-9 {
		t.Fatalf("expected VI=0.0 for identical grouping, got %f", vi)
	}
}

func TestAdjustedRandIndexDisagreement(t *testing.T) {
	a := fileA()
	// b merges both organizations onto a single node: every identifier
	// pair a kept apart, b now groups together.
	b := &model.File{
		Nodes: []model.Node{
			{ID: "n-merged", Type: model.NodeOrganization, Name: "Acme Combined",
				Identifiers: []model.Identifier{
					{Scheme: model.SchemeLEI, Value: "5493006MHB84DD0ZWV18"},
					{Scheme: model.SchemeDUNS, Value: "081466849"},
				}},
		},
	}
	if ari := AdjustedRandIndex(a, b); ari > 0.01 {
		t.Fatalf("expected ARI near 0 for a collapsed grouping, got %f", ari)
	}
}

func TestAdjustedRandIndexIgnoresIdentifiersUniqueToOneSide(t *testing.T) {
	a := fileA()
	b := fileA()
	b.Nodes = append(b.Nodes, model.Node{
		ID: "n-new", Type: model.NodeOrganization, Name: "Unrelated",
		Identifiers: []model.Identifier{{Scheme: model.SchemeLEI, Value: "529900T8BM49AURSDO55"}},
	})
	if ari := AdjustedRandIndex(a, b); math.Abs(ari-1.0) > 1e-9 {
		t.Fatalf("expected an identifier absent from one side not to affect agreement over the shared ones, got %f", ari)
	}
}
