// Package visa defines the boundary to the instrument-session layer:
// VISA-style resource addressing, a ResourceManager/Session contract,
// and a socket-backed manager for TCPIP ::SOCKET resources. Protocol
// negotiation for ::INSTR resources (VXI-11, HiSLIP, USB-TMC) is the
// job of whatever ResourceManager implementation the host wires in.
package visa

import (
	"context"
	"time"
)

// Session is one open connection to an instrument.
type Session interface {
	// Query writes a command and returns the text response with the
	// line terminator stripped.
	Query(cmd string) (string, error)
	// Write sends a command without waiting for a response.
	Write(cmd string) error
	// ReadRaw reads response bytes until the instrument stops sending
	// or the session timeout elapses.
	ReadRaw() ([]byte, error)
	// SetReadTermination enables or disables text line termination.
	// Binary transfers require it disabled.
	SetReadTermination(enabled bool) error
	Close() error
}

// ResourceManager opens sessions and enumerates attached instruments.
type ResourceManager interface {
	Open(ctx context.Context, resource string, timeout time.Duration) (Session, error)
	// Find returns resource strings matching a VISA glob pattern such
	// as "USB?*::INSTR". Order must be stable across calls.
	Find(pattern string) ([]string, error)
}
