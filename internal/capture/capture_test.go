package capture

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ebiym/scopesnap/internal/scpi"
	"github.com/ebiym/scopesnap/internal/transport"
)

// fakeTransport scripts one connection: a fixed identity and a queue of
// raw responses, one per ReceiveRaw call.
type fakeTransport struct {
	identity  string
	idErr     error
	responses [][]byte
	sent      []string
	closed    bool
}

func (f *fakeTransport) Identify() (string, error) { return f.identity, f.idErr }

func (f *fakeTransport) Send(cmd string) error {
	f.sent = append(f.sent, cmd)
	return nil
}

func (f *fakeTransport) ReceiveRaw() ([]byte, error) {
	if len(f.responses) == 0 {
		return nil, errors.New("no data")
	}
	r := f.responses[0]
	f.responses = f.responses[1:]
	return r, nil
}

func (f *fakeTransport) Close() error {
	f.closed = true
	return nil
}

// fakeDialer hands out scripted transports keyed by candidate string and
// records the dial order.
type fakeDialer struct {
	transports map[string]*fakeTransport
	order      []string
}

func (d *fakeDialer) dial(_ context.Context, c Candidate, _ time.Duration) (transport.Transport, error) {
	d.order = append(d.order, c.String())
	if tr, ok := d.transports[c.String()]; ok {
		return tr, nil
	}
	return nil, &transport.ConnectError{Endpoint: c.String(), Err: errors.New("connection refused")}
}

// memorySink captures the persisted image instead of touching disk.
type memorySink struct {
	image    []byte
	template string
}

func (s *memorySink) Save(image []byte, template string) (string, error) {
	s.image = append([]byte(nil), image...)
	s.template = template
	return "/tmp/out.png", nil
}

func newTestOrchestrator(d *fakeDialer, sink Sink) *Orchestrator {
	return New(Options{
		Dial:     d.dial,
		Sink:     sink,
		NoSettle: true,
	})
}

func TestRun_LeCroyDowngradeToRawVICP(t *testing.T) {
	// The structured session identifies a LeCroy but cannot deliver a
	// plausible image; the orchestrator must retry raw VICP on port 1861
	// before any remaining candidate.
	structured := &fakeTransport{
		identity:  "LECROY,WR8254M,LCRY0001,8.6.0",
		responses: [][]byte{bytes.Repeat([]byte{0x01}, 40)},
	}
	raw := &fakeTransport{
		identity:  "LECROY,WR8254M,LCRY0001,8.6.0",
		responses: [][]byte{bytes.Repeat([]byte{0x02}, 200)},
	}
	d := &fakeDialer{transports: map[string]*fakeTransport{
		"TCPIP::10.0.0.5::inst0::INSTR": structured,
		"vicp://10.0.0.5:1861":          raw,
	}}
	sink := &memorySink{}

	res, err := newTestOrchestrator(d, sink).Run(context.Background(), Request{
		Target:         NetworkTarget{Host: "10.0.0.5"},
		OutputTemplate: "shot.png",
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	wantOrder := []string{"TCPIP::10.0.0.5::inst0::INSTR", "vicp://10.0.0.5:1861"}
	if len(d.order) != 2 || d.order[0] != wantOrder[0] || d.order[1] != wantOrder[1] {
		t.Errorf("dial order = %v, want %v", d.order, wantOrder)
	}
	if res.Candidate.Kind != CandidateRawSocket || res.Candidate.Port != 1861 {
		t.Errorf("winning candidate = %v, want raw socket on 1861", res.Candidate)
	}
	if res.Vendor != scpi.VendorLeCroy {
		t.Errorf("vendor = %s, want LECROY", res.Vendor)
	}
	if res.Bytes != 200 || len(sink.image) != 200 {
		t.Errorf("persisted %d bytes (result says %d), want 200", len(sink.image), res.Bytes)
	}
	if !structured.closed || !raw.closed {
		t.Errorf("transport closed: structured=%v raw=%v, want both true", structured.closed, raw.closed)
	}
}

func TestRun_IdentityFailureFallsBackToUnknownOrder(t *testing.T) {
	// With no identity the unknown fallback tries every vendor sequence
	// in priority order; here the fourth (LeCroy) finally delivers.
	tr := &fakeTransport{
		idErr: errors.New("query timed out"),
		responses: [][]byte{
			bytes.Repeat([]byte{0x00}, 10), // keysight
			bytes.Repeat([]byte{0x00}, 10), // rigol
			bytes.Repeat([]byte{0x00}, 10), // rigol legacy
			bytes.Repeat([]byte{0x7F}, 150),
		},
	}
	d := &fakeDialer{transports: map[string]*fakeTransport{
		"TCPIP::10.0.0.9::inst0::INSTR": tr,
	}}
	sink := &memorySink{}

	res, err := newTestOrchestrator(d, sink).Run(context.Background(), Request{
		Target:         DeviceTarget{Resource: "TCPIP::10.0.0.9::inst0::INSTR"},
		OutputTemplate: "shot.png",
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if res.Vendor != scpi.VendorUnknown {
		t.Errorf("vendor = %s, want UNKNOWN", res.Vendor)
	}
	if res.Identity != "" {
		t.Errorf("identity = %q, want empty", res.Identity)
	}
	if len(tr.sent) == 0 || tr.sent[0] != ":DISP:DATA PNG,INKS,COL" {
		t.Fatalf("first command = %v, want the Keysight sequence first", tr.sent)
	}
	if !sentContains(tr.sent, "SCREEN_DUMP") {
		t.Errorf("LeCroy sequence never reached; sent = %v", tr.sent)
	}
	if sentContains(tr.sent, "HARDcopy START") {
		t.Errorf("Tektronix sequence ran after success; sent = %v", tr.sent)
	}
}

func TestRun_StripsBlockEnvelopeBeforeSave(t *testing.T) {
	payload := bytes.Repeat([]byte{0x50}, 120)
	tr := &fakeTransport{
		identity:  "KEYSIGHT TECHNOLOGIES,MSO-X 3104T,MY551,07.50",
		responses: [][]byte{append([]byte("#3120"), payload...)},
	}
	d := &fakeDialer{transports: map[string]*fakeTransport{
		"TCPIP::10.0.0.7::inst0::INSTR": tr,
	}}
	sink := &memorySink{}

	res, err := newTestOrchestrator(d, sink).Run(context.Background(), Request{
		Target:         DeviceTarget{Resource: "TCPIP::10.0.0.7::inst0::INSTR"},
		OutputTemplate: "shot.png",
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if res.Bytes != 120 {
		t.Errorf("result bytes = %d, want 120", res.Bytes)
	}
	if !bytes.Equal(sink.image, payload) {
		t.Errorf("sink received %d bytes with envelope intact", len(sink.image))
	}
}

func TestRun_ExhaustionReturnsCaptureFailed(t *testing.T) {
	d := &fakeDialer{} // every dial refused
	sink := &memorySink{}

	_, err := newTestOrchestrator(d, sink).Run(context.Background(), Request{
		Target:         NetworkTarget{Host: "10.0.0.5"},
		OutputTemplate: "shot.png",
	})
	var cf *CaptureFailedError
	if !errors.As(err, &cf) {
		t.Fatalf("error = %v, want *CaptureFailedError", err)
	}
	if len(cf.Attempts) != 3 {
		t.Errorf("attempts = %d, want 3 (inst0, hislip0, raw socket)", len(cf.Attempts))
	}
	if cf.Target != "10.0.0.5" {
		t.Errorf("target = %q, want 10.0.0.5", cf.Target)
	}
}

func TestRun_InsufficientDataExhaustsCandidate(t *testing.T) {
	tr := &fakeTransport{
		identity: "RIGOL TECHNOLOGIES,DS1054Z,DS1ZA1,00.04.04",
		responses: [][]byte{
			bytes.Repeat([]byte{0x00}, 50), // parameterized query
			bytes.Repeat([]byte{0x00}, 50), // legacy query
		},
	}
	d := &fakeDialer{transports: map[string]*fakeTransport{
		"USB0::0x1AB1::0x04CE::SN1::INSTR": tr,
	}}
	sink := &memorySink{}

	_, err := newTestOrchestrator(d, sink).Run(context.Background(), Request{
		Target:         DeviceTarget{Resource: "USB0::0x1AB1::0x04CE::SN1::INSTR"},
		OutputTemplate: "shot.png",
	})
	var cf *CaptureFailedError
	if !errors.As(err, &cf) {
		t.Fatalf("error = %v, want *CaptureFailedError", err)
	}
	if len(cf.Attempts) != 1 {
		t.Errorf("attempts = %d, want 1", len(cf.Attempts))
	}
	if !tr.closed {
		t.Error("transport left open after failed attempt")
	}
	if sink.image != nil {
		t.Error("undersized image reached the sink")
	}
}

func TestRun_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := &fakeDialer{}
	_, err := newTestOrchestrator(d, &memorySink{}).Run(ctx, Request{
		Target:         NetworkTarget{Host: "10.0.0.5"},
		OutputTemplate: "shot.png",
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if len(d.order) != 0 {
		t.Errorf("dialed %v after cancellation", d.order)
	}
}

func sentContains(sent []string, cmd string) bool {
	for _, s := range sent {
		if s == cmd {
			return true
		}
	}
	return false
}
