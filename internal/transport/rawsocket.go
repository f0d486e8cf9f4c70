package transport

import (
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ebiym/scopesnap/internal/vicp"
)

// RawSocket is a Transport over a plain TCP connection using VICP
// framing for both commands and responses.
type RawSocket struct {
	endpoint string
	conn     net.Conn
	seq      vicp.SeqCounter
	timeout  time.Duration

	closeOnce sync.Once
	closeErr  error
}

// identifySettle gives the scope time to queue the *IDN? response
// before the first read.
const identifySettle = 200 * time.Millisecond

// OpenRawSocket dials host:port for VICP-framed traffic.
func OpenRawSocket(host string, port int, timeout time.Duration) (*RawSocket, error) {
	endpoint := net.JoinHostPort(host, strconv.Itoa(port))
	conn, err := net.DialTimeout("tcp", endpoint, timeout)
	if err != nil {
		return nil, &ConnectError{Endpoint: endpoint, Err: err}
	}
	return &RawSocket{endpoint: endpoint, conn: conn, timeout: timeout}, nil
}

// NewRawSocket wraps an existing connection; tests use this with
// net.Pipe ends.
func NewRawSocket(conn net.Conn, timeout time.Duration) *RawSocket {
	return &RawSocket{endpoint: conn.RemoteAddr().String(), conn: conn, timeout: timeout}
}

// Endpoint returns the dialed host:port.
func (t *RawSocket) Endpoint() string { return t.endpoint }

func (t *RawSocket) Identify() (string, error) {
	if err := t.Send("*IDN?"); err != nil {
		return "", &QueryError{Endpoint: t.endpoint, Err: err}
	}
	time.Sleep(identifySettle)
	raw, err := vicp.ReadPayload(t.conn, t.timeout)
	if err != nil {
		return "", &QueryError{Endpoint: t.endpoint, Err: err}
	}
	return strings.TrimSpace(string(raw)), nil
}

func (t *RawSocket) Send(cmd string) error {
	t.conn.SetWriteDeadline(time.Now().Add(t.timeout))
	_, err := t.conn.Write(vicp.EncodeCommand(&t.seq, cmd))
	return err
}

func (t *RawSocket) ReceiveRaw() ([]byte, error) {
	return vicp.ReadPayload(t.conn, t.timeout)
}

func (t *RawSocket) Close() error {
	t.closeOnce.Do(func() {
		if t.conn != nil {
			t.closeErr = t.conn.Close()
		}
	})
	return t.closeErr
}
