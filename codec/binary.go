// Package codec implements the primitive binary encoding used on the
// wire: big-endian integers regardless of host byte order,
// length-prefixed strings and binary blobs, and a mantissa+exponent
// float format that is deliberately not IEEE-754.
//
// Every Decode* function refuses to read past the end of the supplied
// buffer: on underflow it returns a zero/empty result and leaves the
// position advanced only by what was actually consumed, mirroring the
// reference decoder rather than returning an error — callers that need
// to detect truncation compare the position advanced against what they
// expected.
package codec

import (
	"encoding/binary"
	"math"
)

// EncodeInt32 appends a big-endian signed 32-bit integer to buf.
func EncodeInt32(buf []byte, v int32) []byte {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], uint32(v))
	return append(buf, tmp[:]...)
}

// EncodeInt64 appends a big-endian signed 64-bit integer to buf.
func EncodeInt64(buf []byte, v int64) []byte {
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], uint64(v))
	return append(buf, tmp[:]...)
}

// EncodeByte appends a single byte to buf.
func EncodeByte(buf []byte, v byte) []byte {
	return append(buf, v)
}

// EncodeBool appends a single byte (0 or 1) to buf.
func EncodeBool(buf []byte, v bool) []byte {
	if v {
		return append(buf, 1)
	}
	return append(buf, 0)
}

// EncodeString appends a 4-byte big-endian length prefix followed by the
// raw UTF-8 bytes of s. An empty string encodes as length 0 with no
// following bytes.
func EncodeString(buf []byte, s string) []byte {
	buf = EncodeInt32(buf, int32(len(s)))
	return append(buf, s...)
}

// EncodeBinary appends a 4-byte big-endian length prefix followed by the
// raw bytes of b.
func EncodeBinary(buf []byte, b []byte) []byte {
	buf = EncodeInt32(buf, int32(len(b)))
	return append(buf, b...)
}

// EncodeFloat appends the 8-byte mantissa+exponent encoding of f:
// mantissa and exponent are each big-endian signed 32-bit integers such
// that f == (mantissa / 2^30) * 2^exponent, with the mantissa normalized
// so |mantissa/2^30| is in [0.5, 1) for non-zero values and the sign
// carried by the mantissa. This is the wire format and is intentionally
// not IEEE-754 — do not "fix" it.
func EncodeFloat(buf []byte, f float64) []byte {
	temp := math.Abs(f)
	var exponent int32
	if temp != 0 && temp < 0.5 {
		for temp < 0.5 {
			temp *= 2
			exponent--
		}
	} else {
		for temp >= 1 {
			temp /= 2
			exponent++
		}
	}
	if f < 0 {
		temp = -temp
	}
	mantissa := int32(math.Round(temp * 0x40000000))
	buf = EncodeInt32(buf, mantissa)
	buf = EncodeInt32(buf, exponent)
	return buf
}

// DecodeInt32 reads a big-endian signed 32-bit integer at position.
// On underflow it returns 0 and leaves position unchanged.
func DecodeInt32(data []byte, position *int) int32 {
	if *position+4 > len(data) {
		return 0
	}
	v := int32(binary.BigEndian.Uint32(data[*position : *position+4]))
	*position += 4
	return v
}

// DecodeInt64 reads a big-endian signed 64-bit integer at position.
// On underflow it returns 0 and leaves position unchanged.
func DecodeInt64(data []byte, position *int) int64 {
	if *position+8 > len(data) {
		return 0
	}
	v := int64(binary.BigEndian.Uint64(data[*position : *position+8]))
	*position += 8
	return v
}

// DecodeByte reads a single byte at position. On underflow it returns 0
// and leaves position unchanged.
func DecodeByte(data []byte, position *int) byte {
	if *position+1 > len(data) {
		return 0
	}
	v := data[*position]
	*position++
	return v
}

// DecodeBool reads a single byte at position as a boolean. On underflow
// it returns false and leaves position unchanged.
func DecodeBool(data []byte, position *int) bool {
	if *position+1 > len(data) {
		return false
	}
	v := data[*position] != 0
	*position++
	return v
}

// DecodeString reads a length-prefixed UTF-8 string at position. The
// length prefix is always consumed (via DecodeInt32); if the declared
// length doesn't fit in the remaining buffer, or is zero, an empty
// string is returned and position is not advanced past the prefix.
func DecodeString(data []byte, position *int) string {
	length := int(DecodeInt32(data, position))
	if length <= 0 || *position+length > len(data) {
		return ""
	}
	v := string(data[*position : *position+length])
	*position += length
	return v
}

// DecodeBinary reads a length-prefixed byte blob at position, with the
// same truncation behavior as DecodeString.
func DecodeBinary(data []byte, position *int) []byte {
	length := int(DecodeInt32(data, position))
	if length <= 0 || *position+length > len(data) {
		return nil
	}
	v := make([]byte, length)
	copy(v, data[*position:*position+length])
	*position += length
	return v
}

// DecodeFloat reads the 8-byte mantissa+exponent encoding at position
// and recovers a float64, rounded to 9 significant decimal digits to
// hide quantization noise from the lossy wire format. On underflow it
// returns 0 and leaves position unchanged.
func DecodeFloat(data []byte, position *int) float64 {
	if *position+8 > len(data) {
		return 0
	}
	mantissa := DecodeInt32(data, position)
	exponent := DecodeInt32(data, position)
	value := float64(mantissa) / 0x40000000
	value *= math.Pow(2, float64(exponent))
	if value != 0 {
		abs := math.Abs(value)
		digits := math.Round(math.Floor(math.Log10(abs) + 1))
		factor := math.Pow(10, 9-digits)
		rounded := math.Floor(abs*factor+0.5) / factor
		if value < 0 {
			rounded = -rounded
		}
		value = rounded
	}
	return value
}
