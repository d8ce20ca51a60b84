package validate

import (
	"context"
	"testing"

	"github.com/rawblock/omtsf-engine/pkg/model"
)

func ptr(s string) *string { return &s }

func baseFile() *model.File {
	return &model.File{
		OmtsfVersion: "1.0",
		SnapshotDate: "2026-01-15",
		FileSalt:     "a1b2c3d4e5f60718293a4b5c6d7e8f90a1b2c3d4e5f60718293a4b5c6d7e8f9",
		Nodes: []model.Node{
			{ID: "n-1", Type: model.NodeOrganization, Name: "Acme Corp"},
			{ID: "n-2", Type: model.NodeOrganization, Name: "Acme Subsidiary"},
		},
		Edges: []model.Edge{
			{ID: "e-1", Type: model.EdgeOwnership, Source: "n-1", Target: "n-2"},
		},
	}
}

func hasRule(diags []Diagnostic, id RuleID) bool {
	for _, d := range diags {
		if d.RuleID == id {
			return true
		}
	}
	return false
}

func TestValidateCleanFileIsConformant(t *testing.T) {
	f := baseFile()
	result := Validate(context.Background(), f, DefaultConfig())
	if !result.IsConformant() {
		t.Fatalf("expected conformant result, got diagnostics: %+v", result.Diagnostics)
	}
}

func TestValidateDuplicateNodeID(t *testing.T) {
	f := baseFile()
	f.Nodes = append(f.Nodes, model.Node{ID: "n-1", Type: model.NodeFacility})

	result := Validate(context.Background(), f, DefaultConfig())
	if result.IsConformant() {
		t.Fatalf("expected non-conformant result for duplicate node id")
	}
	if !hasRule(result.Diagnostics, RuleGDM01) {
		t.Errorf("expected L1-GDM-01 diagnostic, got %+v", result.Diagnostics)
	}
}

func TestValidateDanglingEdgeEndpoint(t *testing.T) {
	f := baseFile()
	f.Edges[0].Target = "n-missing"

	result := Validate(context.Background(), f, DefaultConfig())
	if !hasRule(result.Diagnostics, RuleGDM03) {
		t.Errorf("expected L1-GDM-03 diagnostic, got %+v", result.Diagnostics)
	}
}

func TestValidatePermittedEndpointsRejectsWrongTypes(t *testing.T) {
	f := baseFile()
	f.Nodes[1].Type = model.NodeGood // ownership organization->good is not permitted

	result := Validate(context.Background(), f, DefaultConfig())
	if !hasRule(result.Diagnostics, RuleGDM06) {
		t.Errorf("expected L1-GDM-06 diagnostic, got %+v", result.Diagnostics)
	}
}

func TestValidatePermittedEndpointsAcceptsBoundaryRefWildcard(t *testing.T) {
	f := baseFile()
	f.Nodes[1].Type = model.NodeBoundaryRef
	f.Nodes[1].Identifiers = []model.Identifier{{Scheme: model.SchemeOpaque, Value: "abc"}}

	result := Validate(context.Background(), f, DefaultConfig())
	if hasRule(result.Diagnostics, RuleGDM06) {
		t.Errorf("expected boundary_ref target to satisfy the permitted-types table, got %+v", result.Diagnostics)
	}
}

func TestValidateOwnershipPercentageOutOfRange(t *testing.T) {
	f := baseFile()
	bad := 150.0
	f.Edges[0].Properties.Percentage = &bad

	result := Validate(context.Background(), f, DefaultConfig())
	if !hasRule(result.Diagnostics, RuleEDG01) {
		t.Errorf("expected L1-EDG-01 diagnostic, got %+v", result.Diagnostics)
	}
}

func TestValidateLEICheckDigitSeparatedFromFormat(t *testing.T) {
	f := baseFile()
	f.Nodes[0].Identifiers = []model.Identifier{
		{Scheme: model.SchemeLEI, Value: "5493006MHB84DD0ZWV19"}, // right shape, wrong check digit
	}

	result := Validate(context.Background(), f, DefaultConfig())
	if hasRule(result.Diagnostics, RuleEID04) {
		t.Errorf("did not expect L1-EID-04 (format) diagnostic for a well-shaped LEI")
	}
	if !hasRule(result.Diagnostics, RuleEID05) {
		t.Errorf("expected L1-EID-05 (checksum) diagnostic, got %+v", result.Diagnostics)
	}
}

func TestValidateBoundaryRefRequiresSingleOpaqueIdentifier(t *testing.T) {
	f := baseFile()
	f.Nodes = append(f.Nodes, model.Node{
		ID:   "n-3",
		Type: model.NodeBoundaryRef,
		Identifiers: []model.Identifier{
			{Scheme: model.SchemeOpaque, Value: "deadbeef"},
			{Scheme: model.SchemeOpaque, Value: "feedface"},
		},
	})

	result := Validate(context.Background(), f, DefaultConfig())
	if !hasRule(result.Diagnostics, RuleSDI01) {
		t.Errorf("expected L1-SDI-01 diagnostic for boundary_ref with two identifiers, got %+v", result.Diagnostics)
	}
}

func TestValidatePublicScopeForbidsPersonNodes(t *testing.T) {
	f := baseFile()
	f.DisclosureScope = model.ScopePublic
	f.Nodes = append(f.Nodes, model.Node{ID: "n-3", Type: model.NodePerson, Name: "Jane Doe"})

	result := Validate(context.Background(), f, DefaultConfig())
	if !hasRule(result.Diagnostics, RuleSDI02) {
		t.Errorf("expected L1-SDI-02 diagnostic for person node in public scope, got %+v", result.Diagnostics)
	}
}

func TestValidateL2WarnsOnOrganizationWithNoExternalIdentifier(t *testing.T) {
	f := baseFile()

	result := Validate(context.Background(), f, DefaultConfig())
	if !hasRule(result.Diagnostics, RuleCOQ01) {
		t.Errorf("expected L2-COQ-01 diagnostic, got %+v", result.Diagnostics)
	}
	for _, d := range result.Diagnostics {
		if d.RuleID == RuleCOQ01 && d.Severity != model.SeverityWarning {
			t.Errorf("expected L2-COQ-01 to be warning severity, got %v", d.Severity)
		}
	}
}

func TestValidateL2SkippedWhenRunL2False(t *testing.T) {
	f := baseFile()
	cfg := Config{RunL2: false, RunL3: false}

	result := Validate(context.Background(), f, cfg)
	if hasRule(result.Diagnostics, RuleCOQ01) {
		t.Errorf("did not expect L2 diagnostics when RunL2=false")
	}
}

type stubExternalDataSource struct {
	statuses map[string]LEIRecord
}

func (s stubExternalDataSource) LEIStatus(_ context.Context, lei string) (LEIRecord, error) {
	if rec, ok := s.statuses[lei]; ok {
		return rec, nil
	}
	return LEIRecord{Found: false}, nil
}

func (s stubExternalDataSource) NatRegLookup(_ context.Context, authority, value string) (NatRegRecord, error) {
	return NatRegRecord{Found: false}, nil
}

func TestValidateL3GLEIFAnnulledEscalatesToError(t *testing.T) {
	f := baseFile()
	f.Nodes[0].Identifiers = []model.Identifier{
		{Scheme: model.SchemeLEI, Value: "5493006MHB84DD0ZWV18"},
	}
	eds := stubExternalDataSource{statuses: map[string]LEIRecord{
		"5493006MHB84DD0ZWV18": {Found: true, Status: "ANNULLED"},
	}}

	result := Validate(context.Background(), f, Config{RunL2: true, RunL3: true, ExternalData: eds})
	found := false
	for _, d := range result.Diagnostics {
		if d.RuleID == RuleXRF01 && d.Severity == model.SeverityError {
			found = true
		}
	}
	if !found {
		t.Errorf("expected ANNULLED GLEIF status to produce an error-severity L3 diagnostic, got %+v", result.Diagnostics)
	}
	if result.IsConformant() {
		t.Errorf("expected non-conformant result when GLEIF reports ANNULLED")
	}
}

func TestValidateL3OwnershipPercentageSumExceeds100(t *testing.T) {
	f := baseFile()
	f.Nodes = append(f.Nodes, model.Node{ID: "n-3", Type: model.NodeOrganization})
	pa, pb := 60.0, 60.0
	f.Edges = []model.Edge{
		{ID: "e-1", Type: model.EdgeOwnership, Source: "n-1", Target: "n-2", Properties: model.EdgeProperties{Percentage: &pa}},
		{ID: "e-2", Type: model.EdgeOwnership, Source: "n-3", Target: "n-2", Properties: model.EdgeProperties{Percentage: &pb}},
	}

	result := Validate(context.Background(), f, Config{RunL2: false, RunL3: true})
	if !hasRule(result.Diagnostics, RuleXRF02) {
		t.Errorf("expected L3-XRF-02 diagnostic for overlapping ownership exceeding 100%%, got %+v", result.Diagnostics)
	}
}

func TestValidateL3OwnershipPercentageSumOKWhenNonOverlapping(t *testing.T) {
	f := baseFile()
	f.Nodes = append(f.Nodes, model.Node{ID: "n-3", Type: model.NodeOrganization})
	pa, pb := 60.0, 60.0
	f.Edges = []model.Edge{
		{ID: "e-1", Type: model.EdgeOwnership, Source: "n-1", Target: "n-2",
			Properties: model.EdgeProperties{Percentage: &pa, ValidFrom: ptr("2020-01-01"), ValidTo: ptr("2021-01-01")}},
		{ID: "e-2", Type: model.EdgeOwnership, Source: "n-3", Target: "n-2",
			Properties: model.EdgeProperties{Percentage: &pb, ValidFrom: ptr("2021-02-01")}},
	}

	result := Validate(context.Background(), f, Config{RunL2: false, RunL3: true})
	if hasRule(result.Diagnostics, RuleXRF02) {
		t.Errorf("did not expect L3-XRF-02 diagnostic for non-overlapping ownership windows, got %+v", result.Diagnostics)
	}
}

func TestValidateL3LegalParentageCycleDetected(t *testing.T) {
	f := baseFile()
	f.Nodes = append(f.Nodes, model.Node{ID: "n-3", Type: model.NodeOrganization})
	f.Edges = []model.Edge{
		{ID: "e-1", Type: model.EdgeLegalParentage, Source: "n-1", Target: "n-2"},
		{ID: "e-2", Type: model.EdgeLegalParentage, Source: "n-2", Target: "n-3"},
		{ID: "e-3", Type: model.EdgeLegalParentage, Source: "n-3", Target: "n-1"},
	}

	result := Validate(context.Background(), f, Config{RunL2: false, RunL3: true})
	if !hasRule(result.Diagnostics, RuleXRF03) {
		t.Errorf("expected L3-XRF-03 cycle diagnostic, got %+v", result.Diagnostics)
	}
}
