package visa

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"
)

// SocketManager is a ResourceManager that speaks newline-terminated
// SCPI over TCPIP ::SOCKET resources. It cannot negotiate VXI-11 or
// HiSLIP, so ::INSTR resources are rejected at Open; callers fall
// through to their next candidate, which is the intended behavior when
// no system VISA backend is installed.
type SocketManager struct{}

// NewSocketManager returns a socket-only ResourceManager.
func NewSocketManager() *SocketManager { return &SocketManager{} }

// Open dials the endpoint of a ::SOCKET resource.
func (m *SocketManager) Open(ctx context.Context, resource string, timeout time.Duration) (Session, error) {
	host, port, ok := SocketEndpoint(resource)
	if !ok {
		return nil, fmt.Errorf("socket manager: unsupported resource %q", resource)
	}
	d := net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, "tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", resource, err)
	}
	return &socketSession{conn: conn, timeout: timeout, term: true}, nil
}

// Find never enumerates anything: USB-TMC and LAN instrument listing
// require a system VISA backend.
func (m *SocketManager) Find(pattern string) ([]string, error) {
	return nil, nil
}

// socketSession is a Session over a plain TCP connection.
type socketSession struct {
	conn    net.Conn
	timeout time.Duration
	term    bool

	closeOnce sync.Once
	closeErr  error
}

func (s *socketSession) Write(cmd string) error {
	s.conn.SetWriteDeadline(time.Now().Add(s.timeout))
	if _, err := s.conn.Write([]byte(cmd + "\n")); err != nil {
		return fmt.Errorf("write %q: %w", cmd, err)
	}
	return nil
}

func (s *socketSession) Query(cmd string) (string, error) {
	if err := s.Write(cmd); err != nil {
		return "", err
	}
	line, err := s.readLine()
	if err != nil {
		return "", fmt.Errorf("query %q: %w", cmd, err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// readLine reads up to and including the first newline.
func (s *socketSession) readLine() (string, error) {
	var buf bytes.Buffer
	chunk := make([]byte, 256)
	for {
		s.conn.SetReadDeadline(time.Now().Add(s.timeout))
		n, err := s.conn.Read(chunk)
		buf.Write(chunk[:n])
		if bytes.IndexByte(chunk[:n], '\n') >= 0 {
			return buf.String(), nil
		}
		if err != nil {
			if buf.Len() > 0 {
				return buf.String(), nil
			}
			return "", err
		}
	}
}

// ReadRaw accumulates bytes until the remote stops sending for one
// timeout interval or closes the connection. With no length prefix on
// raw sockets, the quiet period is the only end-of-data signal.
func (s *socketSession) ReadRaw() ([]byte, error) {
	var buf bytes.Buffer
	chunk := make([]byte, 4096)
	for {
		s.conn.SetReadDeadline(time.Now().Add(s.timeout))
		n, err := s.conn.Read(chunk)
		buf.Write(chunk[:n])
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() && buf.Len() > 0 {
				return buf.Bytes(), nil
			}
			if buf.Len() > 0 {
				return buf.Bytes(), nil
			}
			return nil, err
		}
	}
}

func (s *socketSession) SetReadTermination(enabled bool) error {
	s.term = enabled
	return nil
}

func (s *socketSession) Close() error {
	s.closeOnce.Do(func() { s.closeErr = s.conn.Close() })
	return s.closeErr
}
