// Package capture drives one screen capture end to end: resolve
// addressing candidates, open a transport, identify the scope, run the
// vendor command sequence, validate the received image, and hand it to
// the persistence sink — retrying across candidates on the way down.
package capture

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ebiym/scopesnap/internal/scpi"
	"github.com/ebiym/scopesnap/internal/transport"
	"github.com/ebiym/scopesnap/internal/visa"
)

// DefaultMinImageBytes is the minimum plausible screen image size.
// Anything smaller is an error banner or a truncated transfer, not a
// screenshot. Heuristic inherited from field use; override via Options.
const DefaultMinImageBytes = 100

// DefaultTimeout bounds every socket read and open.
const DefaultTimeout = 15 * time.Second

// Request describes one capture invocation.
type Request struct {
	Target         Target
	Color          scpi.ColorMode
	Timeout        time.Duration
	OutputTemplate string // path template; timestamp inserted before the extension
}

// Sink persists a finished image. The image bytes arrive with the
// protocol envelope already stripped.
type Sink interface {
	Save(image []byte, template string) (path string, err error)
}

// Dialer opens a transport for a candidate. Tests substitute fakes.
type Dialer func(ctx context.Context, c Candidate, timeout time.Duration) (transport.Transport, error)

// Options wires the orchestrator's collaborators.
type Options struct {
	Manager       visa.ResourceManager // nil: socket-only manager
	Dial          Dialer               // nil: open via Manager / raw TCP
	Sink          Sink                 // required
	MinImageBytes int                  // 0: DefaultMinImageBytes
	NoSettle      bool                 // skip settle delays (tests only)
}

// Result describes a successful capture.
type Result struct {
	Path      string
	Bytes     int
	Identity  string
	Vendor    scpi.Vendor
	Candidate Candidate
}

// Orchestrator performs captures. One instance may be reused, but each
// Run owns its transports exclusively and tears them down on every exit
// path, so at most one connection to the instrument is open at a time.
type Orchestrator struct {
	opts Options
}

// New builds an Orchestrator, filling in defaults.
func New(opts Options) *Orchestrator {
	if opts.Manager == nil {
		opts.Manager = visa.NewSocketManager()
	}
	if opts.MinImageBytes == 0 {
		opts.MinImageBytes = DefaultMinImageBytes
	}
	if opts.Dial == nil {
		rm := opts.Manager
		opts.Dial = func(ctx context.Context, c Candidate, timeout time.Duration) (transport.Transport, error) {
			switch c.Kind {
			case CandidateRawSocket:
				return transport.OpenRawSocket(c.Host, c.Port, timeout)
			default:
				return transport.OpenStructured(ctx, rm, c.Resource, timeout)
			}
		}
	}
	return &Orchestrator{opts: opts}
}

// Run executes one capture. On success the image is persisted through
// the sink and its resolved path returned. On exhaustion of every
// candidate (including the forced LeCroy downgrade) the error is a
// *CaptureFailedError.
func (o *Orchestrator) Run(ctx context.Context, req Request) (*Result, error) {
	if req.Timeout <= 0 {
		req.Timeout = DefaultTimeout
	}

	queue, err := Candidates(req.Target, o.opts.Manager)
	if err != nil {
		return nil, &CaptureFailedError{Target: req.Target.Describe(), Attempts: []string{err.Error()}}
	}

	var attempts []string
	downgraded := false

	for i := 0; i < len(queue); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cand := queue[i]
		slog.Info("trying candidate", "candidate", cand.String())

		image, vendor, identity, attemptErr := o.attempt(ctx, cand, req)
		if attemptErr == nil {
			image = scpi.StripBlockHeader(image)
			path, saveErr := o.opts.Sink.Save(image, req.OutputTemplate)
			if saveErr != nil {
				return nil, fmt.Errorf("persist image: %w", saveErr)
			}
			slog.Info("capture complete", "path", path, "bytes", len(image), "vendor", vendor.String())
			return &Result{
				Path:      path,
				Bytes:     len(image),
				Identity:  identity,
				Vendor:    vendor,
				Candidate: cand,
			}, nil
		}

		attempts = append(attempts, fmt.Sprintf("%s: %v", cand.String(), attemptErr))
		slog.Warn("candidate failed", "candidate", cand.String(), "err", attemptErr)

		// LeCroy's binary image is architecturally unreachable over the
		// structured LAN sub-protocols: force one raw VICP retry on the
		// same host before falling through to the remaining candidates.
		if !downgraded && vendor == scpi.VendorLeCroy && cand.Kind == CandidateStructured {
			if host, ok := structuredHost(cand); ok {
				downgraded = true
				dg := downgradeCandidate(host)
				slog.Info("forcing raw VICP downgrade", "candidate", dg.String())
				queue = append(queue[:i+1], append([]Candidate{dg}, queue[i+1:]...)...)
			}
		}
	}

	return nil, &CaptureFailedError{Target: req.Target.Describe(), Attempts: attempts}
}

// attempt runs the full state sequence for one candidate: connect,
// identify, configure/trigger, receive, validate. The transport is
// closed before returning, success or failure.
func (o *Orchestrator) attempt(ctx context.Context, cand Candidate, req Request) (image []byte, vendor scpi.Vendor, identity string, err error) {
	tr, err := o.opts.Dial(ctx, cand, req.Timeout)
	if err != nil {
		return nil, scpi.VendorUnknown, "", err
	}
	defer tr.Close()

	// A failed or empty identity never aborts the attempt; the unknown
	// fallback list still has a chance of producing an image.
	identity, idErr := tr.Identify()
	if idErr != nil || identity == "" {
		slog.Warn("identity query failed, proceeding as unknown vendor", "candidate", cand.String(), "err", idErr)
		vendor = scpi.VendorUnknown
	} else {
		vendor = scpi.DetectVendor(identity)
		slog.Info("instrument identified", "idn", identity, "vendor", vendor.String())
	}

	var lastErr error
	for _, seq := range scpi.CommandSets(vendor, req.Color) {
		if err := ctx.Err(); err != nil {
			return nil, vendor, identity, err
		}
		data, seqErr := o.runSequence(ctx, tr, seq)
		if seqErr != nil {
			lastErr = seqErr
			slog.Debug("sequence failed", "sequence", seq.Name, "err", seqErr)
			continue
		}
		if len(data) >= o.opts.MinImageBytes {
			return data, vendor, identity, nil
		}
		lastErr = &InsufficientDataError{Got: len(data), Min: o.opts.MinImageBytes}
		slog.Debug("sequence returned too little data", "sequence", seq.Name, "bytes", len(data))
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no command sequence produced data")
	}
	return nil, vendor, identity, lastErr
}

// runSequence sends each step, honoring its settle delay, then reads
// the binary response.
func (o *Orchestrator) runSequence(ctx context.Context, tr transport.Transport, seq scpi.Sequence) ([]byte, error) {
	for _, step := range seq.Steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := tr.Send(step.Command); err != nil {
			return nil, fmt.Errorf("send %q: %w", step.Command, err)
		}
		if err := o.settle(ctx, step.Settle); err != nil {
			return nil, err
		}
	}
	return tr.ReceiveRaw()
}

// settle waits out a rendering delay, abortable through the context.
func (o *Orchestrator) settle(ctx context.Context, d time.Duration) error {
	if o.opts.NoSettle || d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// structuredHost extracts the host of a structured network candidate.
func structuredHost(c Candidate) (string, bool) {
	return visa.HostFromResource(c.Resource)
}
