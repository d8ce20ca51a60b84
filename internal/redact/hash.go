package redact

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/rawblock/omtsf-engine/pkg/csprng"
	"github.com/rawblock/omtsf-engine/pkg/model"
)

// boundaryHashValue computes the opaque identifier value for a node
// being replaced by a boundary reference: the sorted, newline-joined
// canonical forms of its public-sensitivity identifiers, salted with the
// file's own file_salt and hashed with SHA-256. A node with no
// public-sensitivity identifiers gets a fresh CSPRNG value instead,
// since there is nothing stable to derive a hash from.
func boundaryHashValue(ids []model.Identifier, containingNodeType, fileSaltHex string) (string, error) {
	var canonical []string
	for _, id := range ids {
		if id.EffectiveSensitivity(containingNodeType) == model.SensitivityPublic {
			canonical = append(canonical, id.Canonical())
		}
	}
	sort.Strings(canonical)

	if len(canonical) == 0 {
		v, err := csprng.HexSalt(32)
		if err != nil {
			return "", fmt.Errorf("redact: boundary hash fallback: %w", err)
		}
		return v, nil
	}

	salt, err := hex.DecodeString(fileSaltHex)
	if err != nil {
		return "", fmt.Errorf("redact: decode file_salt: %w", err)
	}

	joined := []byte(strings.Join(canonical, "\n"))
	payload := append(joined, salt...)
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}
