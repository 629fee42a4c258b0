package rpc

import (
	"binrpc/codec"
	"binrpc/variable"
)

// EncodeParameter appends the type-coded wire encoding of v to buf.
func EncodeParameter(buf []byte, v *variable.Variable) []byte {
	if v == nil {
		v = variable.Void()
	}
	buf = codec.EncodeInt32(buf, int32(wireTypeOf(v)))
	switch v.Type {
	case variable.TypeVoid:
		// no payload
	case variable.TypeInteger:
		buf = codec.EncodeInt32(buf, v.Integer)
	case variable.TypeInteger64:
		buf = codec.EncodeInt64(buf, v.Integer64)
	case variable.TypeBoolean:
		buf = codec.EncodeBool(buf, v.Boolean)
	case variable.TypeString, variable.TypeBase64:
		buf = codec.EncodeString(buf, v.String)
	case variable.TypeFloat:
		buf = codec.EncodeFloat(buf, v.Float)
	case variable.TypeBinary:
		buf = codec.EncodeBinary(buf, v.Binary)
	case variable.TypeArray:
		buf = codec.EncodeInt32(buf, int32(len(v.Array)))
		for _, elem := range v.Array {
			buf = EncodeParameter(buf, elem)
		}
	case variable.TypeStruct:
		buf = codec.EncodeInt32(buf, int32(len(v.Struct)))
		for _, elem := range v.Struct {
			buf = codec.EncodeString(buf, elem.Key)
			buf = EncodeParameter(buf, elem.Value)
		}
	}
	return buf
}

func encodeHeaderBlock(fields map[string]string) []byte {
	var buf []byte
	buf = codec.EncodeInt32(buf, int32(len(fields)))
	for name, value := range fields {
		buf = codec.EncodeString(buf, name)
		buf = codec.EncodeString(buf, value)
	}
	return buf
}

func buildHeaderlessFrame(flags byte, payload []byte) []byte {
	buf := make([]byte, 0, 8+len(payload))
	buf = append(buf, 'B', 'i', 'n', flags)
	buf = codec.EncodeInt32(buf, int32(len(payload)))
	return append(buf, payload...)
}

func buildHeaderedFrame(flags byte, header []byte, payload []byte) []byte {
	buf := make([]byte, 0, 8+len(header)+4+len(payload))
	buf = append(buf, 'B', 'i', 'n', flags|0x40)
	buf = codec.EncodeInt32(buf, int32(len(header)))
	buf = append(buf, header...)
	buf = codec.EncodeInt32(buf, int32(len(payload)))
	return append(buf, payload...)
}

func encodeRequestPayload(method string, params []*variable.Variable) []byte {
	var buf []byte
	buf = codec.EncodeString(buf, method)
	buf = codec.EncodeInt32(buf, int32(len(params)))
	for _, p := range params {
		buf = EncodeParameter(buf, p)
	}
	return buf
}

// EncodeRequest builds a complete request frame with no header block.
func EncodeRequest(method string, params []*variable.Variable) []byte {
	return buildHeaderlessFrame(0x00, encodeRequestPayload(method, params))
}

// EncodeRequestWithHeader builds a complete request frame carrying the
// given name/value header fields (e.g. "authorization").
func EncodeRequestWithHeader(method string, params []*variable.Variable, fields map[string]string) []byte {
	return buildHeaderedFrame(0x00, encodeHeaderBlock(fields), encodeRequestPayload(method, params))
}

// EncodeResponse builds a complete response frame. isError selects the
// 0xFF error-response flag over the plain 0x01 response flag.
func EncodeResponse(result *variable.Variable, isError bool) []byte {
	flags := byte(FlagPlainResponse)
	if isError {
		flags = byte(FlagErrorResponse)
	}
	return buildHeaderlessFrame(flags, EncodeParameter(nil, result))
}
