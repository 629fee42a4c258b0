// Package jsoncodec is a peripheral JSON view of a variable.Variable,
// used only for debug-log dumps and the typed-method adapter's
// Args/Reply marshaling — never for the wire protocol itself, which is
// always the binary codec (see the codec and rpc packages).
//
// This mirrors the teacher library's own split between a binary wire
// codec and a JSON codec kept around purely for human-facing and
// tooling use (codec.JSONCodec alongside codec.BinaryCodec).
package jsoncodec

import (
	"encoding/json"

	"binrpc/variable"
)

// Marshal renders v as JSON for debug output. Struct fields are emitted
// in key-sorted order (encoding/json's map handling), not insertion
// order. Binary payloads are base64-encoded by encoding/json's default
// []byte handling.
func Marshal(v *variable.Variable) ([]byte, error) {
	return json.Marshal(toAny(v))
}

func toAny(v *variable.Variable) any {
	if v == nil {
		return nil
	}
	switch v.Type {
	case variable.TypeVoid:
		return nil
	case variable.TypeInteger:
		return v.Integer
	case variable.TypeInteger64:
		return v.Integer64
	case variable.TypeBoolean:
		return v.Boolean
	case variable.TypeFloat:
		return v.Float
	case variable.TypeString, variable.TypeBase64:
		return v.String
	case variable.TypeBinary:
		return v.Binary
	case variable.TypeArray:
		out := make([]any, len(v.Array))
		for i, e := range v.Array {
			out[i] = toAny(e)
		}
		return out
	case variable.TypeStruct:
		// encoding/json's map type loses insertion order; a debug dump
		// doesn't need it preserved, unlike the wire codec.
		out := make(map[string]any, len(v.Struct))
		for _, e := range v.Struct {
			out[e.Key] = toAny(e.Value)
		}
		return out
	default:
		return nil
	}
}

// Unmarshal decodes arbitrary JSON into a Variable tree, used by the
// typed-method adapter to bridge a statically-typed Go struct into the
// dynamic Variable world: marshal the struct to JSON, then Unmarshal
// here, then hand the Variable to RPC-encode for the wire.
func Unmarshal(data []byte) (*variable.Variable, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return fromAny(v), nil
}

func fromAny(v any) *variable.Variable {
	switch t := v.(type) {
	case nil:
		return variable.Void()
	case bool:
		return variable.Bool(t)
	case float64:
		if t == float64(int64(t)) {
			return variable.Int64(int64(t))
		}
		return variable.Float(t)
	case string:
		return variable.Str(t)
	case []any:
		arr := make([]*variable.Variable, len(t))
		for i, e := range t {
			arr[i] = fromAny(e)
		}
		return variable.Arr(arr...)
	case map[string]any:
		elems := make([]variable.StructElement, 0, len(t))
		for k, e := range t {
			elems = append(elems, variable.StructElement{Key: k, Value: fromAny(e)})
		}
		return variable.Struc(elems...)
	default:
		return variable.Void()
	}
}
