package discover

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/grandcat/zeroconf"

	"github.com/ebiym/scopesnap/internal/visa"
)

// mDNS service types LXI-class instruments advertise.
var mdnsServices = []string{"_scpi-raw._tcp", "_lxi._tcp"}

// BrowseMDNS collects LXI/SCPI mDNS advertisements for up to timeout.
// Instruments found this way have a known socket port, so the suggested
// resource is the ::SOCKET form.
func BrowseMDNS(ctx context.Context, timeout time.Duration) ([]Instrument, error) {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}

	var results []Instrument
	for _, service := range mdnsServices {
		entries, err := browseService(ctx, service, timeout)
		if err != nil {
			slog.Debug("mDNS browse failed", "service", service, "err", err)
			continue
		}
		results = append(results, entries...)
	}
	return Dedupe(results), nil
}

func browseService(ctx context.Context, service string, timeout time.Duration) ([]Instrument, error) {
	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("mDNS resolver: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry, 16)
	if err := resolver.Browse(ctx, service, "local.", entries); err != nil {
		return nil, fmt.Errorf("browse %s: %w", service, err)
	}

	var results []Instrument
	for entry := range entries {
		if len(entry.AddrIPv4) == 0 {
			continue
		}
		addr := entry.AddrIPv4[0].String()
		slog.Info("mDNS instrument advertisement", "service", service, "name", entry.Instance, "address", addr, "port", entry.Port)
		results = append(results, Instrument{
			Kind:     "mdns",
			Address:  addr,
			Port:     entry.Port,
			IDN:      entry.Instance,
			Vendor:   VendorLabel(entry.Instance),
			Resource: visa.SocketResource(addr, entry.Port),
		})
	}
	return results, nil
}
