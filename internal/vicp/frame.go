// Package vicp implements framing for the LeCroy Visual Instrument
// Control Protocol, a binary transport that carries SCPI commands and
// bulk image data over a raw TCP socket (port 1861).
package vicp

import (
	"encoding/binary"
	"errors"
)

// Header is the fixed 8-byte frame header preceding every payload.
type Header struct {
	Op      byte
	Version byte
	Seq     byte
	Length  uint32
}

// Data reports whether the frame payload carries instrument data.
func (h Header) Data() bool { return h.Op&OpData != 0 }

// EOI reports whether this is the last frame of a message.
func (h Header) EOI() bool { return h.Op&OpEOI != 0 }

// MarshalHeader encodes h into an 8-byte wire header.
func MarshalHeader(h Header) []byte {
	buf := make([]byte, HeaderSize)
	buf[0] = h.Op
	buf[1] = h.Version
	buf[2] = h.Seq
	binary.BigEndian.PutUint32(buf[4:8], h.Length)
	return buf
}

// ParseHeader decodes an 8-byte wire header.
func ParseHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, errors.New("vicp: header too short")
	}
	return Header{
		Op:      data[0],
		Version: data[1],
		Seq:     data[2],
		Length:  binary.BigEndian.Uint32(data[4:8]),
	}, nil
}

// SeqCounter issues per-connection frame sequence numbers. Numbers run
// [1,255] and wrap back to 1; zero is never issued. The zero value is
// ready to use. Not safe for concurrent use — a counter belongs to
// exactly one connection.
type SeqCounter struct {
	n byte
}

// Next returns the next sequence number.
func (c *SeqCounter) Next() byte {
	c.n = c.n%255 + 1
	return c.n
}

// EncodeCommand frames an ASCII command for sending: an 8-byte header
// with DATA|REMOTE|EOI set, followed by the command bytes.
func EncodeCommand(seq *SeqCounter, cmd string) []byte {
	payload := []byte(cmd)
	hdr := MarshalHeader(Header{
		Op:      OpData | OpRemote | OpEOI,
		Version: Version,
		Seq:     seq.Next(),
		Length:  uint32(len(payload)),
	})
	return append(hdr, payload...)
}
