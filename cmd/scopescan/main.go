// Command scopescan discovers SCPI-capable instruments on the local
// network (TCP sweep + mDNS) and on USB, and reports them as a table
// or CSV.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ebiym/scopesnap/internal/discover"
	"github.com/ebiym/scopesnap/internal/report"
	"github.com/ebiym/scopesnap/internal/visa"
)

func main() {
	var (
		subnet   = flag.String("subnet", "", "CIDR to sweep, e.g. 192.168.1.0/24; empty = auto-detect local subnets")
		csvPath  = flag.String("csv", "", "save results to a CSV file")
		noEth    = flag.Bool("no-ethernet", false, "skip the TCP subnet sweep")
		noMDNS   = flag.Bool("no-mdns", false, "skip mDNS browsing")
		noUSB    = flag.Bool("no-usb", false, "skip USB enumeration")
		workers  = flag.Int("workers", discover.DefaultSweepWorkers, "parallel TCP probes")
		timeout  = flag.Int("idn-timeout", 3, "*IDN? read timeout in seconds")
		logLevel = flag.String("log-level", "info", "log level: debug, info, warn, error")
	)
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(*logLevel),
	})))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	idnTimeout := time.Duration(*timeout) * time.Second
	var results []discover.Instrument

	if !*noEth {
		subnets := resolveSubnets(*subnet)
		for _, sn := range subnets {
			found, err := discover.Sweep(ctx, sn.CIDR, discover.SweepOptions{
				Workers:    *workers,
				IDNTimeout: idnTimeout,
			})
			if err != nil {
				slog.Warn("subnet sweep failed", "subnet", sn.CIDR, "err", err)
				continue
			}
			results = append(results, found...)
		}
	}

	if !*noMDNS {
		found, err := discover.BrowseMDNS(ctx, idnTimeout)
		if err != nil {
			slog.Warn("mDNS browse failed", "err", err)
		} else {
			results = append(results, found...)
		}
	}

	if !*noUSB {
		results = append(results, discover.ScanUSB(ctx, visa.NewSocketManager(), idnTimeout)...)
	}

	results = discover.Dedupe(results)
	report.PrintTable(os.Stdout, results)

	if *csvPath != "" && len(results) > 0 {
		if err := report.WriteCSV(*csvPath, results); err != nil {
			slog.Error("CSV export failed", "path", *csvPath, "err", err)
			os.Exit(1)
		}
		slog.Info("CSV saved", "path", *csvPath)
	}
}

func resolveSubnets(manual string) []discover.Subnet {
	if manual != "" {
		return []discover.Subnet{{Label: "(manual)", CIDR: manual}}
	}
	subnets, err := discover.LocalSubnets()
	if err != nil {
		slog.Error("cannot detect local subnets; pass -subnet explicitly", "err", err)
		os.Exit(1)
	}
	for _, sn := range subnets {
		slog.Info("interface to scan", "label", sn.Label, "cidr", sn.CIDR)
	}
	return subnets
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
