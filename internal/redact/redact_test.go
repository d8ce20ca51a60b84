package redact

import (
	"testing"

	"github.com/rawblock/omtsf-engine/pkg/model"
)

const testSalt = "00112233445566778899aabbccddeeff00112233445566778899aabbccddeeff"

func TestBoundaryHashTV1(t *testing.T) {
	ids := []model.Identifier{
		{Scheme: model.SchemeLEI, Value: "5493006MHB84DD0ZWV18"},
		{Scheme: model.SchemeDUNS, Value: "081466849"},
		{Scheme: model.SchemeVAT, Value: "123456789", Authority: "DE", Sensitivity: model.SensitivityRestricted},
	}
	got, err := boundaryHashValue(ids, model.NodeOrganization, testSalt)
	if err != nil {
		t.Fatalf("boundaryHashValue: %v", err)
	}
	want := "e8798687b081da98b7cd1c4e5e2423bd3214fbab0f1f476a2dcdbf67c2e21141"
	if got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestBoundaryHashTV3PercentEncoding(t *testing.T) {
	ids := []model.Identifier{
		{Scheme: model.SchemeNatReg, Authority: "RA000548", Value: "HRB:86891", Sensitivity: model.SensitivityPublic},
	}
	got, err := boundaryHashValue(ids, model.NodeOrganization, testSalt)
	if err != nil {
		t.Fatalf("boundaryHashValue: %v", err)
	}
	want := "7b33571d3bba150f4dfd9609c38b4f9acc9a3a8dbfa3121418a35264562ca5d9"
	if got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestBoundaryHashEmptyFallsBackToCSPRNG(t *testing.T) {
	ids := []model.Identifier{
		{Scheme: model.SchemeVAT, Value: "123456789", Authority: "DE"}, // restricted by scheme default
	}
	v1, err := boundaryHashValue(ids, model.NodeOrganization, testSalt)
	if err != nil {
		t.Fatalf("boundaryHashValue: %v", err)
	}
	v2, err := boundaryHashValue(ids, model.NodeOrganization, testSalt)
	if err != nil {
		t.Fatalf("boundaryHashValue: %v", err)
	}
	if len(v1) != 64 || len(v2) != 64 {
		t.Fatalf("expected 64 hex chars, got %d and %d", len(v1), len(v2))
	}
	if v1 == v2 {
		t.Errorf("expected fresh CSPRNG fallback to vary across calls, got identical values")
	}
}

func personBeneficialOwnershipFile() *model.File {
	return &model.File{
		OmtsfVersion: "1.0",
		SnapshotDate: "2026-01-01",
		FileSalt:     testSalt,
		Nodes: []model.Node{
			{ID: "p-1", Type: model.NodePerson, Name: "Jane Doe",
				Identifiers: []model.Identifier{{Scheme: model.SchemeInternal, Value: "emp-1"}}},
			{ID: "org-1", Type: model.NodeOrganization, Name: "Acme Corp",
				Identifiers: []model.Identifier{
					{Scheme: model.SchemeLEI, Value: "5493006MHB84DD0ZWV18"},
					{Scheme: model.SchemeVAT, Value: "123456789", Authority: "DE"},
				}},
		},
		Edges: []model.Edge{
			{ID: "e-1", Type: model.EdgeBeneficialOwnership, Source: "p-1", Target: "org-1",
				Properties: model.EdgeProperties{Percentage: floatPtr(40)}},
		},
	}
}

func floatPtr(f float64) *float64 { return &f }

func TestRedactToPublicDropsPersonAndBeneficialOwnership(t *testing.T) {
	out, err := Redact(personBeneficialOwnershipFile(), model.ScopePublic, nil)
	if err != nil {
		t.Fatalf("redact: %v", err)
	}
	for _, n := range out.Nodes {
		if n.Type == model.NodePerson {
			t.Errorf("expected no person node in public output, found %q", n.ID)
		}
	}
	for _, e := range out.Edges {
		if e.Type == model.EdgeBeneficialOwnership {
			t.Errorf("expected no beneficial_ownership edge in public output, found %q", e.ID)
		}
	}
	var org *model.Node
	for i := range out.Nodes {
		if out.Nodes[i].ID == "org-1" {
			org = &out.Nodes[i]
		}
	}
	if org == nil {
		t.Fatalf("expected org-1 to survive redaction to public")
	}
	if org.Type != model.NodeOrganization {
		t.Errorf("expected org-1 to remain type organization, got %q", org.Type)
	}
	for _, id := range org.Identifiers {
		if id.EffectiveSensitivity(org.Type) != model.SensitivityPublic {
			t.Errorf("expected only public-sensitivity identifiers on org-1, found %s:%s", id.Scheme, id.Value)
		}
	}
}

func TestRedactRejectsScopeRelaxation(t *testing.T) {
	f := personBeneficialOwnershipFile()
	f.DisclosureScope = model.ScopePublic
	_, err := Redact(f, model.ScopeInternal, nil)
	if err == nil {
		t.Fatalf("expected scope relaxation to be rejected")
	}
	if _, ok := err.(*ScopeRelaxationError); !ok {
		t.Errorf("expected *ScopeRelaxationError, got %T: %v", err, err)
	}
}

func TestRedactAllowlistPromotesUnlistedNodesToBoundaryRef(t *testing.T) {
	f := &model.File{
		OmtsfVersion: "1.0",
		SnapshotDate: "2026-01-01",
		FileSalt:     testSalt,
		Nodes: []model.Node{
			{ID: "org-1", Type: model.NodeOrganization,
				Identifiers: []model.Identifier{{Scheme: model.SchemeLEI, Value: "5493006MHB84DD0ZWV18"}}},
			{ID: "org-2", Type: model.NodeOrganization,
				Identifiers: []model.Identifier{{Scheme: model.SchemeDUNS, Value: "081466849"}}},
		},
		Edges: []model.Edge{
			{ID: "e-1", Type: model.EdgeOwnership, Source: "org-1", Target: "org-2"},
		},
	}

	out, err := Redact(f, model.ScopeInternal, map[string]bool{"org-1": true})
	if err != nil {
		t.Fatalf("redact: %v", err)
	}
	var org1, org2 *model.Node
	for i := range out.Nodes {
		switch out.Nodes[i].ID {
		case "org-1":
			org1 = &out.Nodes[i]
		case "org-2":
			org2 = &out.Nodes[i]
		}
	}
	if org1 == nil || org1.Type != model.NodeOrganization {
		t.Fatalf("expected org-1 retained verbatim (in allowlist), got %+v", org1)
	}
	if org2 == nil || org2.Type != model.NodeBoundaryRef {
		t.Fatalf("expected org-2 replaced with boundary_ref (absent from allowlist), got %+v", org2)
	}
	// an ownership edge between a retained node and a replaced node still
	// carries connectivity value, so it survives with stripped properties.
	if len(out.Edges) != 1 {
		t.Fatalf("expected the ownership edge to survive endpoint replacement, got %d edges", len(out.Edges))
	}
}

func TestRedactDropsEdgeBetweenTwoReplacedNodes(t *testing.T) {
	f := &model.File{
		OmtsfVersion: "1.0",
		SnapshotDate: "2026-01-01",
		FileSalt:     testSalt,
		Nodes: []model.Node{
			{ID: "org-1", Type: model.NodeOrganization},
			{ID: "org-2", Type: model.NodeOrganization},
		},
		Edges: []model.Edge{
			{ID: "e-1", Type: model.EdgeOwnership, Source: "org-1", Target: "org-2"},
		},
	}
	out, err := Redact(f, model.ScopeInternal, map[string]bool{})
	if err != nil {
		t.Fatalf("redact: %v", err)
	}
	if len(out.Edges) != 0 {
		t.Fatalf("expected edge between two opaque boundary refs to be omitted, got %d", len(out.Edges))
	}
}

func TestRedactDropsDanglingEdge(t *testing.T) {
	f := &model.File{
		OmtsfVersion: "1.0",
		SnapshotDate: "2026-01-01",
		FileSalt:     testSalt,
		Nodes: []model.Node{
			{ID: "org-1", Type: model.NodeOrganization},
		},
		Edges: []model.Edge{
			{ID: "e-1", Type: model.EdgeOwnership, Source: "org-1", Target: "missing"},
		},
	}
	out, err := Redact(f, model.ScopeInternal, nil)
	if err != nil {
		t.Fatalf("redact: %v", err)
	}
	if len(out.Edges) != 0 {
		t.Fatalf("expected dangling edge to be dropped, got %d", len(out.Edges))
	}
}

func TestRedactStripsEdgePropertiesByScope(t *testing.T) {
	f := &model.File{
		OmtsfVersion: "1.0",
		SnapshotDate: "2026-01-01",
		FileSalt:     testSalt,
		Nodes: []model.Node{
			{ID: "org-1", Type: model.NodeOrganization},
			{ID: "org-2", Type: model.NodeOrganization},
		},
		Edges: []model.Edge{
			{ID: "e-1", Type: model.EdgeOwnership, Source: "org-1", Target: "org-2",
				Properties: model.EdgeProperties{
					ContractRef: "CR-1",
					Percentage:  floatPtr(100),
				}},
		},
	}
	out, err := Redact(f, model.ScopePublic, nil)
	if err != nil {
		t.Fatalf("redact: %v", err)
	}
	if len(out.Edges) != 1 {
		t.Fatalf("expected 1 edge, got %d", len(out.Edges))
	}
	e := out.Edges[0]
	if e.Properties.ContractRef != "" {
		t.Errorf("expected contract_ref (restricted) stripped at public scope, got %q", e.Properties.ContractRef)
	}
	if e.Properties.Percentage == nil || *e.Properties.Percentage != 100 {
		t.Errorf("expected percentage (public on ownership) to survive, got %v", e.Properties.Percentage)
	}
}
