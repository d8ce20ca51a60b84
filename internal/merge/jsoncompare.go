package merge

import "encoding/json"

// jsonText renders v as its canonical JSON text, used both for
// conflict-value deduplication/sort keys and for scalar equality
// comparisons. encoding/json sorts map keys, so this is stable across
// equivalent Go values built in different field orders.
func jsonText(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		// Every value reaching here came from a successfully unmarshaled
		// File, so re-marshaling cannot fail.
		panic("merge: unmarshalable conflict value: " + err.Error())
	}
	return string(b)
}

// jsonEqual reports whether a and b marshal to identical JSON text.
func jsonEqual(a, b any) bool {
	return jsonText(a) == jsonText(b)
}
