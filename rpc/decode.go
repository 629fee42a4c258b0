package rpc

import (
	"strings"

	"binrpc/codec"
	"binrpc/variable"
)

// DecodeParameter reads one type-coded wire value starting at position.
// Malformed or truncated input decodes to zero-valued fields (it never
// panics) by relying on codec's underflow-safe Decode* primitives, the
// same permissive-decode stance the wire codec takes throughout.
func DecodeParameter(data []byte, position *int) *variable.Variable {
	wireType := codec.DecodeInt32(data, position)
	switch int(wireType) {
	case wireString, wireBase64:
		s := codec.DecodeString(data, position)
		if wireType == wireBase64 {
			return variable.Base64(s)
		}
		return variable.Str(s)
	case wireInteger:
		return variable.Int(codec.DecodeInt32(data, position))
	case wireInteger64:
		return variable.Int64(codec.DecodeInt64(data, position))
	case wireFloat:
		return variable.Float(codec.DecodeFloat(data, position))
	case wireBoolean:
		return variable.Bool(codec.DecodeBool(data, position))
	case wireBinary:
		return variable.Bin(codec.DecodeBinary(data, position))
	case wireArray:
		return decodeArray(data, position)
	case wireStruct:
		return decodeStruct(data, position)
	default:
		return variable.Void()
	}
}

// remainingElements bounds a declared element count by what the buffer
// could possibly still hold (each element needs at least 4 bytes for
// its type code), so a maliciously large count can't spin the decoder
// through billions of no-op iterations on a short buffer.
func remainingElements(data []byte, position int, declared int32) int {
	if declared <= 0 {
		return 0
	}
	maxPossible := (len(data) - position) / 4
	if int(declared) > maxPossible {
		return maxPossible
	}
	return int(declared)
}

func decodeArray(data []byte, position *int) *variable.Variable {
	count := codec.DecodeInt32(data, position)
	n := remainingElements(data, *position, count)
	elems := make([]*variable.Variable, 0, n)
	for i := 0; i < n; i++ {
		elems = append(elems, DecodeParameter(data, position))
	}
	v := variable.Arr(elems...)
	return v
}

func decodeStruct(data []byte, position *int) *variable.Variable {
	count := codec.DecodeInt32(data, position)
	n := remainingElements(data, *position, count)
	elems := make([]variable.StructElement, 0, n)
	for i := 0; i < n; i++ {
		key := codec.DecodeString(data, position)
		elems = append(elems, variable.StructElement{Key: key, Value: DecodeParameter(data, position)})
	}
	v := variable.Struc(elems...)
	if variable.IsFaultStruct(v) {
		v.IsError = true
	}
	return v
}

// DecodeHeader extracts the optional header block, if present. It
// returns a zero-value Header when the frame carries none.
func DecodeHeader(frame []byte) Header {
	var h Header
	if len(frame) < 12 || frame[3]&0x40 == 0 {
		return h
	}
	position := 4
	headerSize := codec.DecodeInt32(frame, &position)
	if headerSize < 4 {
		return h
	}
	count := codec.DecodeInt32(frame, &position)
	n := remainingElements(frame, position, count)
	for i := 0; i < n; i++ {
		field := strings.ToLower(codec.DecodeString(frame, &position))
		value := codec.DecodeString(frame, &position)
		if field == "authorization" {
			h.Authorization = value
		}
	}
	return h
}

// DecodeRequest reads the method name and parameter array from a
// complete request frame. A declared top-level parameter count above
// 100 yields an empty parameter list rather than an error — a
// deliberately defensive, silent cap (see Testable Properties).
func DecodeRequest(frame []byte) (method string, params []*variable.Variable) {
	position := 4
	headerSize := int32(0)
	if len(frame) > 3 && frame[3]&0x40 != 0 {
		headerSize = codec.DecodeInt32(frame, &position) + 4
	}
	position = 8 + int(headerSize)
	method = codec.DecodeString(frame, &position)
	count := codec.DecodeInt32(frame, &position)
	if count > maxTopLevelParameters {
		return method, nil
	}
	n := remainingElements(frame, position, count)
	params = make([]*variable.Variable, 0, n)
	for i := 0; i < n; i++ {
		params = append(params, DecodeParameter(frame, &position))
	}
	return method, params
}

// DecodeResponse reads the single result Variable from a complete
// response frame, applying the error-response fault-struct defaulting
// rules when byte 3 carries the 0xFF error flag.
func DecodeResponse(frame []byte) *variable.Variable {
	position := 8
	result := DecodeParameter(frame, &position)
	if len(frame) < 4 {
		return result // void response for an empty packet
	}
	if frame[3] == byte(FlagErrorResponse) {
		result.IsError = true
		// Default fault fields are inserted only into a struct-typed
		// result, never by replacing the value, so a 3-element
		// [callerID, packetID, result] envelope with the 0xFF flag set
		// (the result errored, not the envelope) keeps its shape; only
		// a genuinely struct-typed error response gets defaulted
		// faultCode/faultString.
		if result.Type == variable.TypeStruct {
			if result.Get("faultCode") == nil {
				result.Set("faultCode", variable.Int(-1))
			}
			if result.Get("faultString") == nil {
				result.Set("faultString", variable.Str("undefined"))
			}
		}
	}
	return result
}
