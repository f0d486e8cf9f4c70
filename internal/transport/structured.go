package transport

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/ebiym/scopesnap/internal/visa"
)

// StructuredSession adapts a visa.Session to the Transport contract.
type StructuredSession struct {
	resource string
	sess     visa.Session

	closeOnce sync.Once
	closeErr  error
}

// OpenStructured opens a structured session for resource, retrying the
// alternate INSTR/INST suffix spelling if the nominal one is rejected.
func OpenStructured(ctx context.Context, rm visa.ResourceManager, resource string, timeout time.Duration) (*StructuredSession, error) {
	var lastErr error
	for _, variant := range visa.SuffixVariants(resource) {
		sess, err := rm.Open(ctx, variant, timeout)
		if err != nil {
			lastErr = err
			continue
		}
		if variant != resource {
			slog.Debug("opened with adjusted suffix", "resource", variant)
		}
		return &StructuredSession{resource: variant, sess: sess}, nil
	}
	return nil, &ConnectError{Endpoint: resource, Err: lastErr}
}

// Resource returns the resource string the session was opened with.
func (t *StructuredSession) Resource() string { return t.resource }

func (t *StructuredSession) Identify() (string, error) {
	idn, err := t.sess.Query("*IDN?")
	if err != nil {
		return "", &QueryError{Endpoint: t.resource, Err: err}
	}
	return strings.TrimSpace(idn), nil
}

func (t *StructuredSession) Send(cmd string) error {
	return t.sess.Write(cmd)
}

// ReceiveRaw disables text termination before the binary read; image
// payloads contain bytes that would otherwise truncate the transfer.
func (t *StructuredSession) ReceiveRaw() ([]byte, error) {
	if err := t.sess.SetReadTermination(false); err != nil {
		return nil, err
	}
	return t.sess.ReadRaw()
}

func (t *StructuredSession) Close() error {
	t.closeOnce.Do(func() {
		if t.sess != nil {
			t.closeErr = t.sess.Close()
		}
	})
	return t.closeErr
}
