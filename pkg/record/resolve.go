// ABOUTME: Namespace-priority lookup over loosely typed records
// ABOUTME: Picks the first present field among competing dialect names, case-insensitively

package record

import "strings"

// Resolve returns the value of the first candidate key present in v.
//
// Keys are compared case-insensitively and candidates are tried in the order
// given, so the caller's list decides precedence, not the order in which the
// keys appear in the record. Anything other than a map resolves to absent.
func Resolve(v Value, candidates []string) (Value, bool) {
	return NewIndex(v).Resolve(candidates...)
}

// Index answers repeated case-insensitive lookups against one map
type Index struct {
	m     *Map
	folds map[string]string
}

// NewIndex folds the keys of v once. Non-map values produce an empty index.
func NewIndex(v Value) *Index {
	m, ok := v.Map()
	if !ok {
		return &Index{}
	}
	folds := make(map[string]string, m.Len())
	for _, k := range m.keys {
		folds[strings.ToLower(k)] = k
	}
	return &Index{m: m, folds: folds}
}

// Resolve returns the value of the first candidate present in the index
func (ix *Index) Resolve(candidates ...string) (Value, bool) {
	if ix.m == nil {
		return Value{}, false
	}
	for _, c := range candidates {
		if actual, ok := ix.folds[strings.ToLower(c)]; ok {
			return ix.m.values[actual], true
		}
	}
	return Value{}, false
}

// Get is Resolve for a single key
func (ix *Index) Get(key string) (Value, bool) {
	return ix.Resolve(key)
}
