// Package transport provides a uniform send/receive contract over the
// two ways of talking to an instrument: a structured VISA-style session
// and a raw VICP socket.
package transport

import "fmt"

// Transport is one open connection to an instrument. Close is
// idempotent and safe to call on a transport whose open failed.
type Transport interface {
	// Identify queries *IDN? and returns the raw identity string.
	Identify() (string, error)
	// Send issues one command without reading a response.
	Send(cmd string) error
	// ReceiveRaw reads a binary response to completion.
	ReceiveRaw() ([]byte, error)
	Close() error
}

// ConnectError means a candidate endpoint could not be opened. The
// caller recovers by trying the next candidate.
type ConnectError struct {
	Endpoint string
	Err      error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("connect %s: %v", e.Endpoint, e.Err)
}

func (e *ConnectError) Unwrap() error { return e.Err }

// QueryError means the identity query failed. The caller recovers by
// treating the vendor as unknown.
type QueryError struct {
	Endpoint string
	Err      error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("identity query on %s: %v", e.Endpoint, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }
