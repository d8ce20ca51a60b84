package model

import (
	"encoding/json"
	"testing"
)

func TestNodeRoundTripPreservesUnknownFields(t *testing.T) {
	raw := []byte(`{
		"id": "n-1",
		"type": "organization",
		"name": "Acme Corp",
		"risk_tier": "amber",
		"custom_ref": {"system": "erp-7", "code": "A119"}
	}`)

	var n Node
	if err := json.Unmarshal(raw, &n); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if n.Extra == nil {
		t.Fatalf("expected unknown fields to land in Extra, got nil")
	}
	if n.Extra["risk_tier"] != "amber" {
		t.Errorf("expected risk_tier=amber in Extra, got %v", n.Extra["risk_tier"])
	}

	out, err := json.Marshal(n)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var roundTripped map[string]any
	if err := json.Unmarshal(out, &roundTripped); err != nil {
		t.Fatalf("unmarshal round-tripped bytes: %v", err)
	}
	if roundTripped["risk_tier"] != "amber" {
		t.Errorf("risk_tier did not survive round-trip, got %v", roundTripped["risk_tier"])
	}
	custom, ok := roundTripped["custom_ref"].(map[string]any)
	if !ok {
		t.Fatalf("custom_ref did not survive round-trip as an object, got %T", roundTripped["custom_ref"])
	}
	if custom["code"] != "A119" {
		t.Errorf("expected custom_ref.code=A119, got %v", custom["code"])
	}
}

func TestNodeRoundTripNoExtraFieldsStaysClean(t *testing.T) {
	n := Node{ID: "n-1", Type: "organization", Name: "Acme Corp"}

	out, err := json.Marshal(n)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(out, &obj); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, present := obj["extra"]; present {
		t.Errorf("expected no stray \"extra\" key when Extra is nil, got one")
	}
}

func TestIdentifierExtraCarriesEntityStatus(t *testing.T) {
	raw := []byte(`{"scheme": "lei", "value": "5493006MHB84DD0ZWV18", "entity_status": "ANNULLED"}`)

	var id Identifier
	if err := json.Unmarshal(raw, &id); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if got := id.EntityStatus(); got != "ANNULLED" {
		t.Errorf("expected entity_status=ANNULLED, got %q", got)
	}
}

func TestEdgePropertiesRoundTripDomainAndExtraFields(t *testing.T) {
	raw := []byte(`{
		"id": "e-1",
		"type": "ownership",
		"source": "n-1",
		"target": "n-2",
		"properties": {"percentage": 51.0, "direct": true, "internal_note": "q3 review"}
	}`)

	var e Edge
	if err := json.Unmarshal(raw, &e); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if e.Properties.Percentage == nil || *e.Properties.Percentage != 51.0 {
		t.Errorf("expected percentage=51.0, got %v", e.Properties.Percentage)
	}
	if e.Properties.Extra["internal_note"] != "q3 review" {
		t.Errorf("expected internal_note to land in properties extra, got %v", e.Properties.Extra["internal_note"])
	}

	out, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var roundTripped map[string]json.RawMessage
	if err := json.Unmarshal(out, &roundTripped); err != nil {
		t.Fatalf("unmarshal round-tripped bytes: %v", err)
	}
	var props map[string]any
	if err := json.Unmarshal(roundTripped["properties"], &props); err != nil {
		t.Fatalf("unmarshal properties: %v", err)
	}
	if props["internal_note"] != "q3 review" {
		t.Errorf("internal_note did not survive round-trip, got %v", props["internal_note"])
	}
}

func TestFileRoundTripPreservesTopLevelExtra(t *testing.T) {
	salt := "a1b2c3d4e5f60718293a4b5c6d7e8f90a1b2c3d4e5f60718293a4b5c6d7e8f90"
	raw := []byte(`{
		"omtsf_version": "1.0",
		"snapshot_date": "2026-01-15",
		"file_salt": "` + salt + `",
		"nodes": [],
		"edges": [],
		"producer_build": "acme-exporter-4.2.1"
	}`)

	var f File
	if err := json.Unmarshal(raw, &f); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if f.Extra["producer_build"] != "acme-exporter-4.2.1" {
		t.Errorf("expected producer_build in Extra, got %v", f.Extra["producer_build"])
	}

	out, err := json.Marshal(f)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var roundTripped map[string]any
	if err := json.Unmarshal(out, &roundTripped); err != nil {
		t.Fatalf("unmarshal round-tripped bytes: %v", err)
	}
	if roundTripped["producer_build"] != "acme-exporter-4.2.1" {
		t.Errorf("producer_build did not survive round-trip, got %v", roundTripped["producer_build"])
	}
	if roundTripped["file_salt"] != salt {
		t.Errorf("expected file_salt to round-trip unchanged, got %v", roundTripped["file_salt"])
	}
}
