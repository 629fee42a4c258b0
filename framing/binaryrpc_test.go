package framing

import (
	"encoding/binary"
	"testing"
)

func buildHeaderlessFrame(payload []byte, response bool) []byte {
	buf := make([]byte, 0, 8+len(payload))
	buf = append(buf, 'B', 'i', 'n')
	flags := byte(0)
	if response {
		flags |= 0x01
	}
	buf = append(buf, flags)
	var size [4]byte
	binary.BigEndian.PutUint32(size[:], uint32(len(payload)))
	buf = append(buf, size[:]...)
	buf = append(buf, payload...)
	return buf
}

func buildHeaderedFrame(header, payload []byte) []byte {
	buf := make([]byte, 0)
	buf = append(buf, 'B', 'i', 'n')
	buf = append(buf, 0x40)
	var hsz [4]byte
	binary.BigEndian.PutUint32(hsz[:], uint32(len(header)))
	buf = append(buf, hsz[:]...)
	buf = append(buf, header...)
	var psz [4]byte
	binary.BigEndian.PutUint32(psz[:], uint32(len(payload)))
	buf = append(buf, psz[:]...)
	buf = append(buf, payload...)
	return buf
}

func TestProcessWholeHeaderlessFrame(t *testing.T) {
	frame := buildHeaderlessFrame([]byte("hello"), false)
	f := New()
	n, err := f.Process(frame)
	if err != nil {
		t.Fatal(err)
	}
	if n != len(frame) {
		t.Fatalf("consumed %d, want %d", n, len(frame))
	}
	if !f.Finished() {
		t.Fatal("expected finished")
	}
	if f.Type() != TypeRequest {
		t.Fatalf("got type %v, want request", f.Type())
	}
}

func TestProcessResponseFlag(t *testing.T) {
	frame := buildHeaderlessFrame([]byte("ok"), true)
	f := New()
	if _, err := f.Process(frame); err != nil {
		t.Fatal(err)
	}
	if f.Type() != TypeResponse {
		t.Fatalf("got type %v, want response", f.Type())
	}
}

func TestProcessHeaderedFrame(t *testing.T) {
	frame := buildHeaderedFrame([]byte(`{"auth":"tok"}`), []byte("payload-bytes"))
	f := New()
	n, err := f.Process(frame)
	if err != nil {
		t.Fatal(err)
	}
	if n != len(frame) || !f.Finished() {
		t.Fatalf("did not fully consume headered frame: n=%d finished=%v", n, f.Finished())
	}
}

// TestPartitionInvariance feeds the same frame split at every possible
// byte boundary and checks that the sequence of completed frames is
// identical regardless of how the stream was chunked.
func TestPartitionInvariance(t *testing.T) {
	frame := buildHeaderedFrame([]byte("some-header"), []byte("some rather longer payload body"))

	whole := New()
	if _, err := whole.Process(frame); err != nil {
		t.Fatal(err)
	}
	want := append([]byte(nil), whole.Data()...)

	for split := 1; split < len(frame); split++ {
		f := New()
		n1, err := f.Process(frame[:split])
		if err != nil {
			t.Fatalf("split=%d: %v", split, err)
		}
		if f.Finished() {
			// first chunk alone completed the frame (possible only if split == len(frame), excluded by loop bound)
			t.Fatalf("split=%d: finished too early", split)
		}
		rest := frame[n1:]
		n2, err := f.Process(rest)
		if err != nil {
			t.Fatalf("split=%d: %v", split, err)
		}
		_ = n2
		if !f.Finished() {
			t.Fatalf("split=%d: never finished", split)
		}
		if string(f.Data()) != string(want) {
			t.Fatalf("split=%d: got different frame bytes", split)
		}
	}
}

func TestProcessByteAtATime(t *testing.T) {
	frame := buildHeaderedFrame([]byte("h"), []byte("payload"))
	f := New()
	consumed := 0
	for i, b := range frame {
		n, err := f.Process([]byte{b})
		if err != nil {
			t.Fatalf("byte %d: %v", i, err)
		}
		consumed += n
		if i < len(frame)-1 && f.Finished() {
			t.Fatalf("byte %d: finished too early", i)
		}
	}
	if !f.Finished() {
		t.Fatal("expected finished after last byte")
	}
	if consumed != len(frame) {
		t.Fatalf("consumed %d total, want %d", consumed, len(frame))
	}
}

func TestBadMagicRejected(t *testing.T) {
	frame := buildHeaderlessFrame([]byte("x"), false)
	frame[0] = 'X'
	f := New()
	if _, err := f.Process(frame); err == nil {
		t.Fatal("expected error for bad magic")
	}
}

func TestZeroLengthHeaderlessFrameRejected(t *testing.T) {
	frame := buildHeaderlessFrame(nil, false)
	f := New()
	if _, err := f.Process(frame); err == nil {
		t.Fatal("expected error for zero-length headerless frame")
	}
}

func TestOversizeHeaderRejected(t *testing.T) {
	buf := []byte{'B', 'i', 'n', 0x40, 0, 0, 0, 0}
	binary.BigEndian.PutUint32(buf[4:8], MaxHeaderSize+1)
	f := New()
	if _, err := f.Process(buf); err == nil {
		t.Fatal("expected error for oversize header")
	}
}

func TestResetAllowsReuse(t *testing.T) {
	frame1 := buildHeaderlessFrame([]byte("one"), false)
	frame2 := buildHeaderlessFrame([]byte("two"), false)
	f := New()
	if _, err := f.Process(frame1); err != nil {
		t.Fatal(err)
	}
	if string(f.Data()[8:]) != "one" {
		t.Fatalf("got %q, want one", f.Data()[8:])
	}
	f.Reset()
	if _, err := f.Process(frame2); err != nil {
		t.Fatal(err)
	}
	if string(f.Data()[8:]) != "two" {
		t.Fatalf("got %q, want two", f.Data()[8:])
	}
}
