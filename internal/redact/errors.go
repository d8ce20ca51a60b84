package redact

import (
	"fmt"
	"strings"

	"github.com/rawblock/omtsf-engine/internal/validate"
)

// ScopeRelaxationError is returned when a redaction request would widen
// disclosure rather than narrow it.
type ScopeRelaxationError struct {
	From string
	To   string
}

func (e *ScopeRelaxationError) Error() string {
	return fmt.Sprintf("redact: target scope %q is less restrictive than input scope %q", e.To, e.From)
}

// InvalidOutputError wraps the L1 diagnostics produced when the engine's
// own redacted output fails validation. Seeing this indicates a bug in
// the redaction pipeline, not a problem with the caller's input.
type InvalidOutputError struct {
	Diagnostics []validate.Diagnostic
}

func (e *InvalidOutputError) Error() string {
	var b strings.Builder
	b.WriteString("redact: output failed validation: ")
	for i, d := range e.Diagnostics {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(string(d.RuleID))
		b.WriteString(": ")
		b.WriteString(d.Message)
	}
	return b.String()
}
