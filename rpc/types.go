// Package rpc implements the request/response wire codec layered on
// top of the framing package: method name + parameter array for
// requests, a single result Variable for responses, and the type-coded
// parameter encoding shared by both.
package rpc

import "binrpc/variable"

// Type codes for a wire parameter, exactly as laid out on the wire —
// not contiguous, and not to be confused with variable.Type.
const (
	wireVoid      = 0x00
	wireInteger   = 0x01
	wireBoolean   = 0x02
	wireString    = 0x03
	wireFloat     = 0x04
	wireBase64    = 0x11
	wireBinary    = 0xD0
	wireInteger64 = 0xD1
	wireArray     = 0x100
	wireStruct    = 0x101
)

// maxTopLevelParameters is the top-level parameter-count cap (§4.3):
// exceeding it produces an empty parameter list rather than an error,
// matching the reference decoder's defensive-but-silent behavior.
const maxTopLevelParameters = 100

// ResponseFlag distinguishes a plain response from an error response at
// byte 3 of the frame.
type ResponseFlag byte

const (
	FlagPlainResponse ResponseFlag = 0x01
	FlagErrorResponse ResponseFlag = 0xFF
)

// Header carries the optional name/value metadata block. Only
// "authorization" is currently meaningful; EncodeRequestWithHeader
// writes any fields given, but DecodeHeader parses and discards every
// other field.
type Header struct {
	Authorization string
}

func wireTypeOf(v *variable.Variable) int {
	switch v.Type {
	case variable.TypeVoid:
		return wireVoid
	case variable.TypeInteger:
		return wireInteger
	case variable.TypeInteger64:
		return wireInteger64
	case variable.TypeBoolean:
		return wireBoolean
	case variable.TypeString:
		return wireString
	case variable.TypeBase64:
		return wireBase64
	case variable.TypeFloat:
		return wireFloat
	case variable.TypeBinary:
		return wireBinary
	case variable.TypeArray:
		return wireArray
	case variable.TypeStruct:
		return wireStruct
	default:
		return wireVoid
	}
}
