package idcodec

// LEIFormatValid reports whether s is shaped like an LEI: exactly 20
// characters, the first 18 drawn from [A-Z0-9] and the last 2 numeric.
// It says nothing about the check digit — see LEIChecksumValid.
func LEIFormatValid(s string) bool {
	if len(s) != 20 {
		return false
	}
	for i := 0; i < 18; i++ {
		c := s[i]
		if !isDigit(c) && !(c >= 'A' && c <= 'Z') {
			return false
		}
	}
	for i := 18; i < 20; i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return true
}

// LEIChecksumValid validates a correctly-shaped LEI against ISO 7064 MOD
// 97-10. Each character converts to a 1- or 2-digit numeric value (0-9 →
// itself, A-Z → 10-35); the running remainder mod 97 is built by
// multiplying the accumulator by 10 or 100 depending on whether the next
// value is one or two digits, then adding it. A valid LEI has a final
// remainder of 1. Callers should check LEIFormatValid first — this
// function does not re-validate shape: it folds whatever characters it
// is given, of any length, into the remainder.
func LEIChecksumValid(s string) bool {
	rem := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		var val int
		if isDigit(c) {
			val = int(c - '0')
		} else {
			val = int(c-'A') + 10
		}
		if val < 10 {
			rem = (rem*10 + val) % 97
		} else {
			rem = (rem*100 + val) % 97
		}
	}
	return rem == 1
}

// ValidLEI reports whether s is both correctly shaped and checksum-valid.
func ValidLEI(s string) bool {
	return LEIFormatValid(s) && LEIChecksumValid(s)
}

// GLNFormatValid reports whether s is 13 ASCII digits.
func GLNFormatValid(s string) bool {
	if len(s) != 13 {
		return false
	}
	for i := 0; i < 13; i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return true
}

// GLNChecksumValid validates a correctly-shaped GLN against the GS1
// mod-10 check digit: weights alternate 3, 1 starting from the digit
// immediately preceding the check digit and working left; the check
// digit is (10 - (weighted sum mod 10)) mod 10. Callers should check
// GLNFormatValid first — this function will panic on short input.
func GLNChecksumValid(s string) bool {
	sum := 0
	weight := 3
	for i := 11; i >= 0; i-- {
		d := int(s[i] - '0')
		sum += d * weight
		if weight == 3 {
			weight = 1
		} else {
			weight = 3
		}
	}
	check := (10 - (sum % 10)) % 10
	return check == int(s[12]-'0')
}

// ValidGLN reports whether s is both correctly shaped and checksum-valid.
func ValidGLN(s string) bool {
	return GLNFormatValid(s) && GLNChecksumValid(s)
}

// ValidDUNSFormat checks the format-only DUNS rule: exactly 9 ASCII
// digits. DUNS carries no public check-digit algorithm.
func ValidDUNSFormat(s string) bool {
	if len(s) != 9 {
		return false
	}
	for i := 0; i < 9; i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return true
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
