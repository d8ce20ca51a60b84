package csprng

import "testing"

func TestHexSaltLengthAndShape(t *testing.T) {
	s, err := HexSalt(32)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s) != 64 {
		t.Fatalf("expected 64 hex characters, got %d: %q", len(s), s)
	}
	for _, r := range s {
		if !((r >= '0' && r <= '9') || (r >= 'a' && r <= 'f')) {
			t.Fatalf("non-hex character in salt: %q", s)
		}
	}
}

func TestHexSaltVariesAcrossCalls(t *testing.T) {
	a, _ := HexSalt(32)
	b, _ := HexSalt(32)
	if a == b {
		t.Fatalf("expected two independent CSPRNG draws to differ")
	}
}
