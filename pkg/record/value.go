// ABOUTME: Loosely typed record values used when walking untyped feed documents
// ABOUTME: Models JSON-like data as a sum type with insertion-ordered maps

package record

import "strconv"

// Kind identifies which variant a Value holds
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindList
	KindMap
)

// String returns the kind name
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "boolean"
	case KindList:
		return "array"
	case KindMap:
		return "object"
	default:
		return "null"
	}
}

// Value is one node of an untyped document tree.
// The zero Value is null.
type Value struct {
	kind Kind
	str  string
	num  float64
	b    bool
	list []Value
	m    *Map
}

// Null returns the null value
func Null() Value { return Value{} }

// String wraps a string
func String(s string) Value { return Value{kind: KindString, str: s} }

// Number wraps a number
func Number(n float64) Value { return Value{kind: KindNumber, num: n} }

// Bool wraps a boolean
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// List wraps an ordered list of values
func List(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{kind: KindList, list: items}
}

// Object wraps a map
func Object(m *Map) Value {
	if m == nil {
		m = NewMap()
	}
	return Value{kind: KindMap, m: m}
}

// Kind returns the variant held by v
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is null
func (v Value) IsNull() bool { return v.kind == KindNull }

// Str returns the string payload
func (v Value) Str() (string, bool) { return v.str, v.kind == KindString }

// Num returns the numeric payload
func (v Value) Num() (float64, bool) { return v.num, v.kind == KindNumber }

// Boolean returns the boolean payload
func (v Value) Boolean() (bool, bool) { return v.b, v.kind == KindBool }

// Items returns the list payload
func (v Value) Items() ([]Value, bool) { return v.list, v.kind == KindList }

// Map returns the map payload
func (v Value) Map() (*Map, bool) { return v.m, v.kind == KindMap }

// Text renders scalars as strings. Lists, maps and null report false.
func (v Value) Text() (string, bool) {
	switch v.kind {
	case KindString:
		return v.str, true
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64), true
	case KindBool:
		return strconv.FormatBool(v.b), true
	}
	return "", false
}

// Map is a string-keyed map that remembers insertion order
type Map struct {
	keys   []string
	values map[string]Value
}

// NewMap creates an empty map
func NewMap() *Map {
	return &Map{values: make(map[string]Value)}
}

// Set stores value under key, keeping the original position of existing keys
func (m *Map) Set(key string, value Value) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Get returns the value stored under the exact key
func (m *Map) Get(key string) (Value, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Has reports whether key is present
func (m *Map) Has(key string) bool {
	_, ok := m.values[key]
	return ok
}

// Keys returns keys in insertion order
func (m *Map) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Len returns the number of entries
func (m *Map) Len() int { return len(m.keys) }

// Range calls fn for every entry in insertion order until fn returns false
func (m *Map) Range(fn func(key string, value Value) bool) {
	for _, k := range m.keys {
		if !fn(k, m.values[k]) {
			return
		}
	}
}
