package variable

import "fmt"

// FaultError is the Go error view over an error-typed Variable: a
// Struct-typed Variable with IsError set and at least faultCode/
// faultString fields. Every fault the RPC codec or correlation layer
// produces is available both ways — as the Variable that goes out over
// the wire (or came in off it) and as a FaultError a caller can
// errors.As into.
type FaultError struct {
	FaultCode   int32
	FaultString string
}

func (e *FaultError) Error() string {
	return fmt.Sprintf("rpc fault %d: %s", e.FaultCode, e.FaultString)
}

// NewFault builds an error-typed struct Variable carrying faultCode and
// faultString, matching the data model invariant that an error-typed
// Variable must be a struct with at least those two fields.
func NewFault(code int32, message string) *Variable {
	return &Variable{
		Type:    TypeStruct,
		IsError: true,
		Struct: []StructElement{
			{Key: "faultCode", Value: Int(code)},
			{Key: "faultString", Value: Str(message)},
		},
	}
}

// Fault converts an error-typed Variable to a *FaultError, defaulting
// faultCode to -1 and faultString to "undefined" if either is missing,
// matching the reference decoder's treatment of an incomplete error
// response (RpcDecoder::decodeResponse).
func (v *Variable) Fault() *FaultError {
	if v == nil || !v.IsError {
		return nil
	}
	fe := &FaultError{FaultCode: -1, FaultString: "undefined"}
	if code := v.Get("faultCode"); code != nil {
		fe.FaultCode = code.Integer
	}
	if str := v.Get("faultString"); str != nil {
		fe.FaultString = str.String
	}
	return fe
}

// IsFaultStruct reports whether a Struct-typed Variable's shape matches
// the reference decoder's implicit-error-struct rule: exactly two
// fields, named faultCode and faultString.
func IsFaultStruct(v *Variable) bool {
	if v.Type != TypeStruct || len(v.Struct) != 2 {
		return false
	}
	hasCode, hasString := false, false
	for _, e := range v.Struct {
		switch e.Key {
		case "faultCode":
			hasCode = true
		case "faultString":
			hasString = true
		}
	}
	return hasCode && hasString
}
