package merge

import (
	"fmt"

	"github.com/rawblock/omtsf-engine/internal/validate"
)

// PostMergeValidationError is returned when the engine's own merged
// output fails L1 validation. This always indicates a bug in the merge
// pipeline, never bad input — input files are validated by the caller
// before merge runs, and merge preserves structural validity by
// construction.
type PostMergeValidationError struct {
	Diagnostics []validate.Diagnostic
}

func (e *PostMergeValidationError) Error() string {
	return fmt.Sprintf("merge: post-merge validation failed with %d error diagnostic(s)", len(e.Diagnostics))
}
