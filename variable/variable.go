// Package variable implements the universal RPC value used across the
// wire codec, the RPC codec, and the local method table: a tagged union
// that can hold void, a boolean, a 32- or 64-bit integer, a float, a
// string, a base64 string, a binary blob, an ordered array, or an
// ordered-by-insertion struct (map).
//
// Variable is a value type. Where the protocol needs a value to be
// shared (array/struct elements, nested containers) a *Variable is used
// as the element type, the same way the wire format treats every
// parameter as its own self-describing sub-value.
package variable

import "fmt"

// Type is the wire discriminator for a Variable's payload.
type Type int32

const (
	TypeVoid Type = iota
	TypeInteger
	TypeInteger64
	TypeBoolean
	TypeString
	TypeBase64
	TypeFloat
	TypeBinary
	TypeArray
	TypeStruct
)

func (t Type) String() string {
	switch t {
	case TypeVoid:
		return "void"
	case TypeInteger:
		return "i32"
	case TypeInteger64:
		return "i64"
	case TypeBoolean:
		return "bool"
	case TypeString:
		return "string"
	case TypeBase64:
		return "base64"
	case TypeFloat:
		return "float"
	case TypeBinary:
		return "binary"
	case TypeArray:
		return "array"
	case TypeStruct:
		return "struct"
	default:
		return "unknown"
	}
}

// StructElement is one ordered (key, value) pair of a Struct-typed
// Variable. Iteration order follows insertion order; lookup by key is
// still supported so callers don't have to scan for faultCode/faultString.
type StructElement struct {
	Key   string
	Value *Variable
}

// Variable is the tagged-union RPC value. Exactly one of the payload
// fields is semantically meaningful per Type; Integer also populates
// Integer64 (and vice versa, truncated) so arithmetic code can read
// whichever width it wants without a type switch.
type Variable struct {
	Type Type

	Integer   int32
	Integer64 int64
	Boolean   bool
	Float     float64
	String    string // also holds Base64-typed payloads
	Binary    []byte
	Array     []*Variable
	Struct    []StructElement

	// IsError marks this Variable as an RPC fault: a struct containing
	// at least faultCode/faultString. rpc.DecodeResponse also sets it on
	// a non-struct result decoded from an error-flagged response frame.
	IsError bool
}

// Void returns the void Variable.
func Void() *Variable { return &Variable{Type: TypeVoid} }

// Int returns an i32 Variable.
func Int(v int32) *Variable {
	return &Variable{Type: TypeInteger, Integer: v, Integer64: int64(v)}
}

// Int64 returns an i64 Variable.
func Int64(v int64) *Variable {
	return &Variable{Type: TypeInteger64, Integer64: v, Integer: int32(v)}
}

// Bool returns a bool Variable.
func Bool(v bool) *Variable {
	return &Variable{Type: TypeBoolean, Boolean: v}
}

// Str returns a string Variable.
func Str(v string) *Variable {
	return &Variable{Type: TypeString, String: v}
}

// Base64 returns a base64-typed Variable. The payload is carried
// verbatim in String; it is the caller's responsibility to have already
// base64-encoded it, matching the wire format's treatment of base64 as
// "a string that happens to be base64".
func Base64(v string) *Variable {
	return &Variable{Type: TypeBase64, String: v}
}

// Float returns a float Variable.
func Float(v float64) *Variable {
	return &Variable{Type: TypeFloat, Float: v}
}

// Bin returns a binary Variable.
func Bin(v []byte) *Variable {
	return &Variable{Type: TypeBinary, Binary: v}
}

// Arr returns an array Variable.
func Arr(v ...*Variable) *Variable {
	return &Variable{Type: TypeArray, Array: v}
}

// Struc returns a struct Variable built from the given elements, in
// the order given.
func Struc(elements ...StructElement) *Variable {
	return &Variable{Type: TypeStruct, Struct: elements}
}

// Get returns the value for key in a Struct-typed Variable, or nil if
// absent or not a struct.
func (v *Variable) Get(key string) *Variable {
	if v == nil || v.Type != TypeStruct {
		return nil
	}
	for _, e := range v.Struct {
		if e.Key == key {
			return e.Value
		}
	}
	return nil
}

// Set inserts or replaces key in a Struct-typed Variable, preserving
// the position of an existing key and appending new keys at the end.
func (v *Variable) Set(key string, value *Variable) {
	for i, e := range v.Struct {
		if e.Key == key {
			v.Struct[i].Value = value
			return
		}
	}
	v.Struct = append(v.Struct, StructElement{Key: key, Value: value})
}

// AsFloat exposes an integer-typed Variable's value as a float64 for
// arithmetic use, per the data model's convenience-conversion invariant.
func (v *Variable) AsFloat() float64 {
	switch v.Type {
	case TypeInteger:
		return float64(v.Integer)
	case TypeInteger64:
		return float64(v.Integer64)
	case TypeFloat:
		return v.Float
	default:
		return 0
	}
}

// DebugString renders a short human-readable form for log lines. It is
// not the wire format and not meant to be parsed back.
func (v *Variable) DebugString() string { return fmt.Sprintf("%s(%v)", v.Type, v.debugPayload()) }

func (v *Variable) debugPayload() any {
	switch v.Type {
	case TypeInteger:
		return v.Integer
	case TypeInteger64:
		return v.Integer64
	case TypeBoolean:
		return v.Boolean
	case TypeFloat:
		return v.Float
	case TypeString, TypeBase64:
		return v.String
	case TypeBinary:
		return len(v.Binary)
	case TypeArray:
		return len(v.Array)
	case TypeStruct:
		return len(v.Struct)
	default:
		return nil
	}
}
