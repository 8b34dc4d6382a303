package encoding

import (
	"bytes"
	"errors"
	"testing"
)

func TestFixed32(t *testing.T) {
	tests := []struct {
		value uint32
		want  []byte
	}{
		{0, []byte{0, 0, 0, 0}},
		{0xD10B10C5, []byte{0xC5, 0x10, 0x0B, 0xD1}},
		{0xFFFFFFFF, []byte{0xFF, 0xFF, 0xFF, 0xFF}},
	}

	for _, tt := range tests {
		buf := make([]byte, 4)
		EncodeFixed32(buf, tt.value)
		if !bytes.Equal(buf, tt.want) {
			t.Errorf("EncodeFixed32(%#x) = %v, want %v", tt.value, buf, tt.want)
		}
		if got := DecodeFixed32(tt.want); got != tt.value {
			t.Errorf("DecodeFixed32(%v) = %#x, want %#x", tt.want, got, tt.value)
		}
	}
}

func TestFixed64(t *testing.T) {
	buf := make([]byte, 8)
	for _, v := range []uint64{0, 1, 1 << 32, 0xFFFFFFFFFFFFFFFF} {
		EncodeFixed64(buf, v)
		if got := DecodeFixed64(buf); got != v {
			t.Errorf("round trip %#x = %#x", v, got)
		}
	}
	EncodeFixed64(buf, 0x0102030405060708)
	if buf[0] != 0x08 || buf[7] != 0x01 {
		t.Errorf("EncodeFixed64 not little-endian: %v", buf)
	}
}

func TestWriterSlice(t *testing.T) {
	buf := make([]byte, 9)
	w := NewWriter(buf)
	w.PutFixed32(0xCAFEBABE)
	w.PutUint8(7)
	w.PutFixed32(42)
	if err := w.Err(); err != nil {
		t.Fatalf("Err() = %v", err)
	}
	if w.Len() != 9 {
		t.Fatalf("Len() = %d, want 9", w.Len())
	}

	s := NewSlice(buf)
	if v, ok := s.GetFixed32(); !ok || v != 0xCAFEBABE {
		t.Errorf("GetFixed32 = %#x, %v", v, ok)
	}
	if v, ok := s.GetUint8(); !ok || v != 7 {
		t.Errorf("GetUint8 = %d, %v", v, ok)
	}
	if v, ok := s.GetFixed32(); !ok || v != 42 {
		t.Errorf("GetFixed32 = %d, %v", v, ok)
	}
	if s.Remaining() != 0 {
		t.Errorf("Remaining() = %d", s.Remaining())
	}
	if _, ok := s.GetUint8(); ok {
		t.Error("GetUint8 past end succeeded")
	}
}

func TestWriter_Overflow(t *testing.T) {
	w := NewWriter(make([]byte, 3))
	w.PutUint8(1)
	w.PutFixed32(2)
	w.PutUint8(3)
	if !errors.Is(w.Err(), ErrBufferTooSmall) {
		t.Errorf("Err() = %v, want ErrBufferTooSmall", w.Err())
	}
	if w.Len() != 1 {
		t.Errorf("Len() = %d, want 1", w.Len())
	}
}

func TestSlice_Truncated(t *testing.T) {
	s := NewSlice([]byte{1, 2, 3})
	if _, ok := s.GetFixed32(); ok {
		t.Error("GetFixed32 on 3 bytes succeeded")
	}
	if s.Remaining() != 3 {
		t.Errorf("failed read consumed input: Remaining() = %d", s.Remaining())
	}
}
