package merge

import "fmt"

// Warning is a non-fatal finding surfaced alongside a merge result.
// Warnings never abort a merge; they are informational flags a caller
// may choose to surface to an operator.
type Warning struct {
	Kind                  string
	RepresentativeOrdinal int
	Size                  int
	Limit                 int
}

// OversizedMergeGroup builds the step-4 safety-check warning for a node
// equivalence class larger than the configured group size limit.
func OversizedMergeGroup(representativeOrdinal, size, limit int) Warning {
	return Warning{Kind: "OversizedMergeGroup", RepresentativeOrdinal: representativeOrdinal, Size: size, Limit: limit}
}

func (w Warning) String() string {
	switch w.Kind {
	case "OversizedMergeGroup":
		return fmt.Sprintf("OversizedMergeGroup{representative_ordinal=%d, size=%d, limit=%d}", w.RepresentativeOrdinal, w.Size, w.Limit)
	default:
		return w.Kind
	}
}
