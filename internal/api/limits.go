package api

import "github.com/rawblock/omtsf-engine/pkg/model"

// Advisory upper bounds the engine documents for a single file, and the
// 10x hard limit this shell pre-checks untrusted request bodies against
// before handing them to the engine, per the resource policy's guidance
// to fail fast rather than let an oversized payload run to completion.
const (
	advisoryMaxNodes = 1_000_000
	advisoryMaxEdges = 5_000_000
	hardLimitFactor  = 10
)

// oversizedFile reports whether f exceeds the hard input limit, and a
// human-readable reason if so.
func oversizedFile(f *model.File) (string, bool) {
	if len(f.Nodes) > advisoryMaxNodes*hardLimitFactor {
		return "node count exceeds hard limit", true
	}
	if len(f.Edges) > advisoryMaxEdges*hardLimitFactor {
		return "edge count exceeds hard limit", true
	}
	return "", false
}
