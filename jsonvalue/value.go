// Package jsonvalue holds the JSON-tree representation Yuzu mutates,
// patches, and ships over the wire. Values are kept as this sum type
// rather than the caller's nominal Go struct so that the tracker,
// applier, and registry never need reflection over user types; the
// user's shape is marshaled in and out only at the API boundary.
package jsonvalue

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Value is a JSON-representable value: nil, bool, float64, string,
// []Value, map[string]Value, or Absent. Absent has no JSON encoding of
// its own; it marshals to null and is Yuzu's stand-in for "no value at
// this path" (see spec §3, Patch).
type Value struct {
	kind kind
	b    bool
	n    float64
	s    string
	a    []Value
	m    map[string]Value
}

type kind uint8

const (
	kindNull kind = iota
	kindAbsent
	kindBool
	kindNumber
	kindString
	kindArray
	kindObject
)

// Absent is the sentinel patch value for "removed" (spec §3).
var Absent = Value{kind: kindAbsent}

// Null is the JSON null value.
var Null = Value{kind: kindNull}

func Bool(b bool) Value      { return Value{kind: kindBool, b: b} }
func Number(n float64) Value { return Value{kind: kindNumber, n: n} }
func String(s string) Value  { return Value{kind: kindString, s: s} }

func Array(items ...Value) Value {
	out := make([]Value, len(items))
	copy(out, items)
	return Value{kind: kindArray, a: out}
}

func Object(fields map[string]Value) Value {
	out := make(map[string]Value, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return Value{kind: kindObject, m: out}
}

func (v Value) IsAbsent() bool  { return v.kind == kindAbsent }
func (v Value) IsNull() bool    { return v.kind == kindNull }
func (v Value) IsObject() bool  { return v.kind == kindObject }
func (v Value) IsArray() bool   { return v.kind == kindArray }
func (v Value) IsString() bool  { return v.kind == kindString }
func (v Value) IsNumber() bool  { return v.kind == kindNumber }
func (v Value) IsBool() bool    { return v.kind == kindBool }

func (v Value) Bool() bool      { return v.b }
func (v Value) Number() float64 { return v.n }
func (v Value) String() string {
	if v.kind == kindString {
		return v.s
	}
	b, _ := json.Marshal(v)
	return string(b)
}

// Array items is a defensive copy; callers may not mutate the result in
// place and expect it reflected back into the tree.
func (v Value) ArrayItems() []Value {
	out := make([]Value, len(v.a))
	copy(out, v.a)
	return out
}

// ObjectFields is a defensive copy, see ArrayItems.
func (v Value) ObjectFields() map[string]Value {
	out := make(map[string]Value, len(v.m))
	for k, val := range v.m {
		out[k] = val
	}
	return out
}

// Len reports the number of elements for arrays and objects, 0 otherwise.
func (v Value) Len() int {
	switch v.kind {
	case kindArray:
		return len(v.a)
	case kindObject:
		return len(v.m)
	}
	return 0
}

// From converts an arbitrary Go value (as produced by a JSON
// Unmarshal-compatible type, or already json.Marshal-able) into a Value
// tree. A round trip through encoding/json is used so that struct tags,
// custom Marshalers, etc. are honored exactly as the wire protocol would
// honor them (spec §3: "no undefined survives JSON transport but is
// accepted in-process").
func From(v any) (Value, error) {
	if vv, ok := v.(Value); ok {
		return vv, nil
	}
	buf, err := json.Marshal(v)
	if err != nil {
		return Value{}, fmt.Errorf("jsonvalue: marshal: %w", err)
	}
	var raw any
	if err := json.Unmarshal(buf, &raw); err != nil {
		return Value{}, fmt.Errorf("jsonvalue: unmarshal: %w", err)
	}
	return fromAny(raw), nil
}

func fromAny(raw any) Value {
	switch t := raw.(type) {
	case nil:
		return Null
	case bool:
		return Bool(t)
	case float64:
		return Number(t)
	case string:
		return String(t)
	case []any:
		items := make([]Value, len(t))
		for i, e := range t {
			items[i] = fromAny(e)
		}
		return Value{kind: kindArray, a: items}
	case map[string]any:
		fields := make(map[string]Value, len(t))
		for k, e := range t {
			fields[k] = fromAny(e)
		}
		return Value{kind: kindObject, m: fields}
	default:
		// Already a Value, or something json.Marshal produced we don't
		// expect from Unmarshal into any; treat defensively as null.
		return Null
	}
}

// To decodes the Value tree into dst, the same way json.Unmarshal would
// decode the equivalent wire bytes.
func (v Value) To(dst any) error {
	buf, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(buf, dst)
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case kindAbsent, kindNull:
		return []byte("null"), nil
	case kindBool:
		if v.b {
			return []byte("true"), nil
		}
		return []byte("false"), nil
	case kindNumber:
		return json.Marshal(v.n)
	case kindString:
		return json.Marshal(v.s)
	case kindArray:
		return json.Marshal(v.a)
	case kindObject:
		return json.Marshal(v.m)
	default:
		return []byte("null"), nil
	}
}

func (v *Value) UnmarshalJSON(buf []byte) error {
	var raw any
	if err := json.Unmarshal(buf, &raw); err != nil {
		return err
	}
	*v = fromAny(raw)
	return nil
}

// Clone deep-copies v. Arrays and objects are value types at the Go
// level already (the element slices/maps are always rebuilt by Set,
// see tree.go), but Clone is exposed for callers who keep a
// Value across a mutation boundary and need an isolated snapshot (e.g.
// server.Options' initial state, or a test's "before" fixture).
func (v Value) Clone() Value {
	switch v.kind {
	case kindArray:
		out := make([]Value, len(v.a))
		for i, e := range v.a {
			out[i] = e.Clone()
		}
		return Value{kind: kindArray, a: out}
	case kindObject:
		out := make(map[string]Value, len(v.m))
		for k, e := range v.m {
			out[k] = e.Clone()
		}
		return Value{kind: kindObject, m: out}
	default:
		return v
	}
}

// Equal reports deep structural equality, treating Absent and Null as
// distinct (per spec §8's "known exception" about lossy JSON transport,
// callers that need the lossy equivalence should normalize Absent to
// Null first via NormalizeAbsent).
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case kindBool:
		return a.b == b.b
	case kindNumber:
		return a.n == b.n
	case kindString:
		return a.s == b.s
	case kindArray:
		if len(a.a) != len(b.a) {
			return false
		}
		for i := range a.a {
			if !Equal(a.a[i], b.a[i]) {
				return false
			}
		}
		return true
	case kindObject:
		if len(a.m) != len(b.m) {
			return false
		}
		for k, av := range a.m {
			bv, ok := b.m[k]
			if !ok || !Equal(av, bv) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// NormalizeAbsent converts Absent to Null, matching what a round trip
// through the wire JSON encoding produces.
func NormalizeAbsent(v Value) Value {
	if v.IsAbsent() {
		return Null
	}
	return v
}

// SortedKeys returns an object's keys in sorted order, used only where
// deterministic iteration matters (tests, debug formatting).
func (v Value) SortedKeys() []string {
	keys := make([]string, 0, len(v.m))
	for k := range v.m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
