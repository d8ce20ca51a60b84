package idcodec

import "testing"

func TestValidLEI(t *testing.T) {
	if !ValidLEI("5493006MHB84DD0ZWV18") {
		t.Errorf("expected 5493006MHB84DD0ZWV18 to validate")
	}
	if ValidLEI("5493006MHB84DD0ZWV19") {
		t.Errorf("expected 5493006MHB84DD0ZWV19 to fail the check digit")
	}
	if ValidLEI("5493006MHB84DD0ZWV1") {
		t.Errorf("expected short LEI to fail format check")
	}
}

func TestLEIFormatAndChecksumSeparately(t *testing.T) {
	if !LEIFormatValid("5493006MHB84DD0ZWV19") {
		t.Errorf("expected well-shaped LEI to pass format check even with a bad check digit")
	}
	if LEIChecksumValid("5493006MHB84DD0ZWV19") {
		t.Errorf("expected 5493006MHB84DD0ZWV19 to fail the checksum")
	}
	if LEIFormatValid("5493006MHB84DD0ZWV1") {
		t.Errorf("expected short LEI to fail format check")
	}
}

func TestValidGLN(t *testing.T) {
	if !ValidGLN("5060012340001") {
		t.Errorf("expected 5060012340001 to validate")
	}
	if ValidGLN("5060012340002") {
		t.Errorf("expected 5060012340002 to fail the check digit")
	}
	if !ValidGLN("0000000000000") {
		t.Errorf("expected all-zero GLN to validate")
	}
}

func TestValidDUNSFormat(t *testing.T) {
	if !ValidDUNSFormat("081466849") {
		t.Errorf("expected 081466849 to pass format check")
	}
	if ValidDUNSFormat("08146684") {
		t.Errorf("expected 8-digit DUNS to fail format check")
	}
	if ValidDUNSFormat("08146684A") {
		t.Errorf("expected non-numeric DUNS to fail format check")
	}
}

func TestCanonicalPercentEncoding(t *testing.T) {
	got := Canonical("nat-reg", "RA000548", "HRB:86891")
	want := "nat-reg:RA000548:HRB%3A86891"
	if got != want {
		t.Errorf("Canonical() = %q, want %q", got, want)
	}
}

func TestCanonicalNoAuthority(t *testing.T) {
	got := Canonical("lei", "", "5493006MHB84DD0ZWV18")
	want := "lei:5493006MHB84DD0ZWV18"
	if got != want {
		t.Errorf("Canonical() = %q, want %q", got, want)
	}
}

func TestMatchKeyFoldsAuthorityCase(t *testing.T) {
	a := MatchKey("vat", "DE", "DE123456789")
	b := MatchKey("vat", "de", "DE123456789")
	if a != b {
		t.Errorf("MatchKey should fold authority case: %q != %q", a, b)
	}
}
