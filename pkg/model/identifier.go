package model

import (
	"encoding/json"
	"strings"

	"github.com/rawblock/omtsf-engine/pkg/idcodec"
)

// Identifier is a scheme-qualified external reference attached to a node
// or an edge property.
type Identifier struct {
	Scheme             string         `json:"scheme"`
	Value              string         `json:"value"`
	Authority          string         `json:"authority,omitempty"`
	ValidFrom          *string        `json:"valid_from,omitempty"`
	ValidTo            *string        `json:"valid_to,omitempty"`
	Sensitivity        string         `json:"sensitivity,omitempty"`
	VerificationStatus string         `json:"verification_status,omitempty"`
	VerificationDate   *string        `json:"verification_date,omitempty"`
	Extra              map[string]any `json:"-"`
}

var identifierKnownFields = []string{
	"scheme", "value", "authority", "valid_from", "valid_to",
	"sensitivity", "verification_status", "verification_date",
}

type identifierAlias Identifier

// Canonical returns the identifier's canonical string form: value is
// trimmed before encoding, authority case is preserved.
func (id Identifier) Canonical() string {
	return idcodec.Canonical(id.Scheme, id.Authority, id.Value)
}

// MatchKey returns the normalized bucketing key used by merge/diff
// candidate indexing (see idcodec.MatchKey).
func (id Identifier) MatchKey() string {
	return idcodec.MatchKey(id.Scheme, id.Authority, id.Value)
}

// IsExtensionScheme reports whether the identifier's scheme is a
// reverse-domain extension, exempt from format/identity-predicate checks.
func (id Identifier) IsExtensionScheme() bool {
	return IsExtensionType(id.Scheme)
}

// TrimmedValue returns Value with leading/trailing whitespace removed,
// the form used for all value comparisons.
func (id Identifier) TrimmedValue() string {
	return strings.TrimSpace(id.Value)
}

// EntityStatus reads the forward-compatible extra["entity_status"] field
// used by the merge engine to exclude ANNULLED LEIs from the identifier
// index.
func (id Identifier) EntityStatus() string {
	if id.Extra == nil {
		return ""
	}
	if v, ok := id.Extra["entity_status"].(string); ok {
		return v
	}
	return ""
}

func (id Identifier) MarshalJSON() ([]byte, error) {
	known, err := json.Marshal(identifierAlias(id))
	if err != nil {
		return nil, err
	}
	return mergeExtra(known, id.Extra)
}

func (id *Identifier) UnmarshalJSON(data []byte) error {
	var alias identifierAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	*id = Identifier(alias)

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	extra, err := splitExtra(raw, identifierKnownFields...)
	if err != nil {
		return err
	}
	id.Extra = extra
	return nil
}
