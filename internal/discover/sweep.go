package discover

import (
	"context"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ebiym/scopesnap/internal/vicp"
	"github.com/ebiym/scopesnap/internal/visa"
)

// SweepOptions tunes a subnet sweep.
type SweepOptions struct {
	Ports          []int         // nil: DefaultSweepPorts
	Workers        int           // 0: DefaultSweepWorkers
	ConnectTimeout time.Duration // 0: 500ms
	IDNTimeout     time.Duration // 0: 3s
}

// DefaultSweepPorts are probed on each host, in order: raw SCPI, VICP,
// then the instrument web interface.
var DefaultSweepPorts = []int{visa.RawSCPIPort, vicp.DefaultPort, 80}

// DefaultSweepWorkers bounds the concurrent TCP probes.
const DefaultSweepWorkers = 64

func (o *SweepOptions) fill() {
	if len(o.Ports) == 0 {
		o.Ports = DefaultSweepPorts
	}
	if o.Workers <= 0 {
		o.Workers = DefaultSweepWorkers
	}
	if o.ConnectTimeout <= 0 {
		o.ConnectTimeout = 500 * time.Millisecond
	}
	if o.IDNTimeout <= 0 {
		o.IDNTimeout = 3 * time.Second
	}
}

// Sweep probes every host of a subnet concurrently and returns the
// hosts that answered *IDN?. An open port without an identity response
// is not an instrument and is not reported.
func Sweep(ctx context.Context, cidr string, opts SweepOptions) ([]Instrument, error) {
	opts.fill()
	hosts, err := HostsIn(cidr)
	if err != nil {
		return nil, err
	}
	slog.Info("sweeping subnet", "cidr", cidr, "hosts", len(hosts), "workers", opts.Workers)

	hostCh := make(chan string)
	resultCh := make(chan Instrument, opts.Workers)

	var wg sync.WaitGroup
	for i := 0; i < opts.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for host := range hostCh {
				if inst, ok := probeHost(host, opts); ok {
					resultCh <- inst
				}
			}
		}()
	}

	go func() {
		defer close(hostCh)
		for _, h := range hosts {
			select {
			case <-ctx.Done():
				return
			case hostCh <- h:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	var results []Instrument
	for inst := range resultCh {
		slog.Info("instrument found", "address", inst.Address, "port", inst.Port, "vendor", inst.Vendor, "idn", inst.IDN)
		results = append(results, inst)
	}
	return results, ctx.Err()
}

// probeHost checks the sweep ports in order and reports the first one
// that yields an identity.
func probeHost(host string, opts SweepOptions) (Instrument, bool) {
	for _, port := range opts.Ports {
		if !tcpProbe(host, port, opts.ConnectTimeout) {
			continue
		}
		var idn string
		switch port {
		case visa.RawSCPIPort:
			idn = rawIDN(host, port, opts.IDNTimeout)
		case vicp.DefaultPort:
			idn = vicpIDN(host, port, opts.IDNTimeout)
		}
		if idn == "" {
			continue // open port, but not a SCPI instrument
		}
		return Instrument{
			Kind:     "ethernet",
			Address:  host,
			Port:     port,
			IDN:      idn,
			Vendor:   VendorLabel(idn),
			Resource: visa.InstrumentResource(host, visa.SubprotoVXI11),
		}, true
	}
	return Instrument{}, false
}

func tcpProbe(host string, port int, timeout time.Duration) bool {
	conn, err := net.DialTimeout("tcp", net.JoinHostPort(host, strconv.Itoa(port)), timeout)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// rawIDN queries *IDN? over plain SCPI-over-TCP.
func rawIDN(host string, port int, timeout time.Duration) string {
	conn, err := net.DialTimeout("tcp", net.JoinHostPort(host, strconv.Itoa(port)), timeout)
	if err != nil {
		return ""
	}
	defer conn.Close()

	conn.SetWriteDeadline(time.Now().Add(timeout))
	if _, err := conn.Write([]byte("*IDN?\n")); err != nil {
		return ""
	}

	var buf []byte
	chunk := make([]byte, 512)
	for {
		conn.SetReadDeadline(time.Now().Add(timeout))
		n, err := conn.Read(chunk)
		buf = append(buf, chunk[:n]...)
		if strings.Contains(string(chunk[:n]), "\n") || err != nil {
			break
		}
	}
	return strings.TrimSpace(string(buf))
}

// vicpIDN queries *IDN? through VICP framing on the LeCroy port.
func vicpIDN(host string, port int, timeout time.Duration) string {
	conn, err := net.DialTimeout("tcp", net.JoinHostPort(host, strconv.Itoa(port)), timeout)
	if err != nil {
		return ""
	}
	defer conn.Close()

	var seq vicp.SeqCounter
	conn.SetWriteDeadline(time.Now().Add(timeout))
	if _, err := conn.Write(vicp.EncodeCommand(&seq, "*IDN?")); err != nil {
		return ""
	}
	payload, err := vicp.ReadPayload(conn, timeout)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(payload))
}
