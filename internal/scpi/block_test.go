package scpi

import (
	"bytes"
	"testing"
)

func TestStripBlockHeader(t *testing.T) {
	payload := bytes.Repeat([]byte{0xAB}, 120)
	block := append([]byte("#3120"), payload...)

	got := StripBlockHeader(block)
	if !bytes.Equal(got, payload) {
		t.Fatalf("got %d bytes, want the 120-byte payload", len(got))
	}
}

func TestStripBlockHeader_TrailingBytesDropped(t *testing.T) {
	// Instruments often append a newline after the block.
	block := append([]byte("#15hello"), '\n')
	got := StripBlockHeader(block)
	if string(got) != "hello" {
		t.Errorf("got %q, want %q", got, "hello")
	}
}

func TestStripBlockHeader_PassThrough(t *testing.T) {
	cases := [][]byte{
		nil,
		{},
		[]byte("BM\x00\x01raw bitmap with no envelope"),
		[]byte("#"),              // marker alone
		[]byte("#0"),             // zero digit count
		[]byte("#912"),           // digit count exceeds remaining bytes
		[]byte("#2a5payload"),    // non-digit in length field
		[]byte("#3999too short"), // declared length exceeds payload
	}
	for _, in := range cases {
		got := StripBlockHeader(in)
		if !bytes.Equal(got, in) {
			t.Errorf("StripBlockHeader(%q) = %q, want input unchanged", in, got)
		}
	}
}
