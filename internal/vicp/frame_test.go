package vicp

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func TestMarshalParseHeader(t *testing.T) {
	h := Header{Op: OpData | OpEOI, Version: Version, Seq: 42, Length: 0x01020304}
	buf := MarshalHeader(h)

	if len(buf) != HeaderSize {
		t.Fatalf("header length = %d, want %d", len(buf), HeaderSize)
	}
	if buf[3] != 0 {
		t.Errorf("reserved byte = 0x%02X, want 0x00", buf[3])
	}
	if got := binary.BigEndian.Uint32(buf[4:8]); got != 0x01020304 {
		t.Errorf("payload length on wire = 0x%08X, want 0x01020304", got)
	}

	parsed, err := ParseHeader(buf)
	if err != nil {
		t.Fatalf("ParseHeader failed: %v", err)
	}
	if parsed != h {
		t.Errorf("round trip = %+v, want %+v", parsed, h)
	}
}

func TestParseHeader_TooShort(t *testing.T) {
	if _, err := ParseHeader(make([]byte, HeaderSize-1)); err == nil {
		t.Fatal("expected error for 7-byte header, got nil")
	}
}

func TestHeaderFlags(t *testing.T) {
	h := Header{Op: OpSRQ}
	if h.Data() {
		t.Error("SRQ frame reported Data() = true")
	}
	if h.EOI() {
		t.Error("SRQ frame reported EOI() = true")
	}

	h = Header{Op: OpData | OpRemote | OpEOI}
	if !h.Data() || !h.EOI() {
		t.Errorf("Data()=%v EOI()=%v, want true/true", h.Data(), h.EOI())
	}
}

func TestSeqCounter_StartsAtOneWrapsAt255(t *testing.T) {
	var c SeqCounter
	if got := c.Next(); got != 1 {
		t.Fatalf("first sequence number = %d, want 1", got)
	}
	// Run the counter past a full cycle; zero must never appear.
	last := byte(1)
	for i := 0; i < 300; i++ {
		got := c.Next()
		if got == 0 {
			t.Fatal("sequence number 0 issued")
		}
		if last == 255 && got != 1 {
			t.Fatalf("wrap after 255 gave %d, want 1", got)
		}
		last = got
	}
}

func TestEncodeCommand(t *testing.T) {
	var seq SeqCounter
	frame := EncodeCommand(&seq, "*IDN?")

	if len(frame) != HeaderSize+5 {
		t.Fatalf("frame length = %d, want %d", len(frame), HeaderSize+5)
	}
	wantOp := OpData | OpRemote | OpEOI
	if frame[0] != wantOp {
		t.Errorf("op byte = 0x%02X, want 0x%02X", frame[0], wantOp)
	}
	if frame[1] != Version {
		t.Errorf("version = 0x%02X, want 0x%02X", frame[1], Version)
	}
	if frame[2] != 1 {
		t.Errorf("sequence = %d, want 1", frame[2])
	}
	if got := binary.BigEndian.Uint32(frame[4:8]); got != 5 {
		t.Errorf("payload length = %d, want 5", got)
	}
	if !bytes.Equal(frame[HeaderSize:], []byte("*IDN?")) {
		t.Errorf("payload = %q, want %q", frame[HeaderSize:], "*IDN?")
	}

	// Second command advances the per-connection counter.
	frame2 := EncodeCommand(&seq, "SCREEN_DUMP")
	if frame2[2] != 2 {
		t.Errorf("second sequence = %d, want 2", frame2[2])
	}
}
