package model

import "encoding/json"

// splitExtra removes the known keys from a raw decoded object and returns
// whatever remains as a plain map[string]any, ready to stash on a type's
// Extra field. Returns nil (not an empty map) when nothing is left over,
// so that round-tripping a file with no unknown fields doesn't grow an
// empty "extra" object on re-encode.
func splitExtra(raw map[string]json.RawMessage, known ...string) (map[string]any, error) {
	for _, k := range known {
		delete(raw, k)
	}
	if len(raw) == 0 {
		return nil, nil
	}
	extra := make(map[string]any, len(raw))
	for k, v := range raw {
		var val any
		if err := json.Unmarshal(v, &val); err != nil {
			return nil, err
		}
		extra[k] = val
	}
	return extra, nil
}

// mergeExtra folds the JSON object produced from a type's known fields
// together with its extra map into one object. Encoding/json serializes
// map keys in sorted order, which is what gives merge/redact/diff their
// byte-deterministic output — field position was never semantically
// significant.
func mergeExtra(known []byte, extra map[string]any) ([]byte, error) {
	if len(extra) == 0 {
		return known, nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(known, &obj); err != nil {
		return nil, err
	}
	for k, v := range extra {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		obj[k] = b
	}
	return json.Marshal(obj)
}
