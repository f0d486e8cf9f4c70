package vicp

import (
	"errors"
	"net"
	"time"
)

// ErrNoFrames is returned when the per-read timeout elapses before a
// single complete frame has arrived. A timeout after at least one frame
// is a normal stream boundary, not an error: scopes routinely end an
// image transfer without setting EOI on the final frame.
var ErrNoFrames = errors.New("vicp: no frames received before timeout")

// ReadPayload reads frames from conn until a frame carries the EOI flag,
// the remote closes the connection, or a read deadline expires. Payloads
// of DATA frames are concatenated in arrival order; non-DATA frames
// (SRQ and other control traffic) are consumed and discarded.
//
// A connection closed before any complete header yields an empty result.
// A timeout with zero complete frames yields ErrNoFrames.
func ReadPayload(conn net.Conn, perRead time.Duration) ([]byte, error) {
	var image []byte
	frames := 0

	for {
		hdrBuf := make([]byte, HeaderSize)
		if err := readExact(conn, hdrBuf, perRead); err != nil {
			return endOfStream(image, frames, err)
		}
		hdr, err := ParseHeader(hdrBuf)
		if err != nil {
			return image, err
		}

		if hdr.Length > 0 {
			payload := make([]byte, hdr.Length)
			if err := readExact(conn, payload, perRead); err != nil {
				return endOfStream(image, frames, err)
			}
			if hdr.Data() {
				image = append(image, payload...)
			}
		}
		frames++

		if hdr.EOI() {
			return image, nil
		}
	}
}

// readExact fills buf completely, retrying short reads, with the
// deadline re-armed before each read.
func readExact(conn net.Conn, buf []byte, perRead time.Duration) error {
	got := 0
	for got < len(buf) {
		conn.SetReadDeadline(time.Now().Add(perRead))
		n, err := conn.Read(buf[got:])
		got += n
		if err != nil {
			return err
		}
	}
	return nil
}

// endOfStream maps a read failure onto the accept-partial policy.
func endOfStream(image []byte, frames int, err error) ([]byte, error) {
	var netErr net.Error
	timeout := errors.As(err, &netErr) && netErr.Timeout()

	if timeout && frames == 0 {
		return nil, ErrNoFrames
	}
	// Remote close or timeout after data: whatever accumulated so far is
	// the complete result.
	return image, nil
}
