package variable

import "testing"

func TestStructGetSetPreservesOrder(t *testing.T) {
	s := Struc(
		StructElement{Key: "a", Value: Int(1)},
		StructElement{Key: "b", Value: Int(2)},
	)
	s.Set("a", Int(10))
	s.Set("c", Int(3))

	want := []string{"a", "b", "c"}
	if len(s.Struct) != len(want) {
		t.Fatalf("got %d keys, want %d", len(s.Struct), len(want))
	}
	for i, k := range want {
		if s.Struct[i].Key != k {
			t.Errorf("position %d: got key %q, want %q", i, s.Struct[i].Key, k)
		}
	}
	if got := s.Get("a").Integer; got != 10 {
		t.Errorf("Get(a) = %d, want 10", got)
	}
}

func TestIsFaultStruct(t *testing.T) {
	fault := NewFault(-32601, "method not found")
	if !IsFaultStruct(fault) {
		t.Error("NewFault should produce a recognizable fault struct")
	}
	ok := Struc(StructElement{Key: "faultCode", Value: Int(1)})
	if IsFaultStruct(ok) {
		t.Error("a one-field struct must not be classified as a fault")
	}
}

func TestFaultDefaulting(t *testing.T) {
	v := &Variable{Type: TypeStruct, IsError: true}
	fe := v.Fault()
	if fe.FaultCode != -1 || fe.FaultString != "undefined" {
		t.Errorf("got %+v, want defaulted -1/undefined", fe)
	}
}

func TestAsFloat(t *testing.T) {
	if Int(7).AsFloat() != 7 {
		t.Error("int32 AsFloat mismatch")
	}
	if Int64(9).AsFloat() != 9 {
		t.Error("int64 AsFloat mismatch")
	}
}
