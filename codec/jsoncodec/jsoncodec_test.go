package jsoncodec

import (
	"testing"

	"binrpc/variable"
)

func TestMarshalStruct(t *testing.T) {
	v := variable.Struc(
		variable.StructElement{Key: "name", Value: variable.Str("dev0")},
		variable.StructElement{Key: "count", Value: variable.Int(3)},
	)
	data, err := Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) == 0 {
		t.Fatal("expected non-empty JSON")
	}
}

func TestUnmarshalRoundTripShape(t *testing.T) {
	data := []byte(`{"a":1,"b":[true,"x"]}`)
	v, err := Unmarshal(data)
	if err != nil {
		t.Fatal(err)
	}
	if v.Type != variable.TypeStruct {
		t.Fatalf("got type %v, want struct", v.Type)
	}
	b := v.Get("b")
	if b == nil || b.Type != variable.TypeArray || len(b.Array) != 2 {
		t.Fatalf("got %+v, want 2-element array", b)
	}
}
