// Command scopesnap captures the screen of a bench oscilloscope over
// LAN or USB and saves it as PNG, BMP, or a one-page PDF.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ebiym/scopesnap/internal/capture"
	"github.com/ebiym/scopesnap/internal/config"
	"github.com/ebiym/scopesnap/internal/persist"
	"github.com/ebiym/scopesnap/internal/scpi"
	"github.com/ebiym/scopesnap/internal/visa"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to TOML config file")
		connection = flag.String("connection", "", "connection type: ethernet or usb")
		host       = flag.String("host", "", "scope IP address (ethernet)")
		port       = flag.Int("port", 0, "raw socket port, 0 = auto (1861 VICP / 5025 SCPI)")
		resource   = flag.String("resource", "", "explicit VISA resource (usb), empty = auto-detect")
		output     = flag.String("out", "", "output path template (.png, .bmp or .pdf)")
		color      = flag.String("color", "", "screenshot background: WHITE or BLACK")
		timeout    = flag.Int("timeout", 0, "response timeout in seconds")
		logLevel   = flag.String("log-level", "", "log level: debug, info, warn, error")
	)
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		cfg = loaded
	}
	mergeFlags(cfg, *connection, *host, *port, *resource, *output, *color, *timeout, *logLevel)

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	})))

	target, err := buildTarget(cfg)
	if err != nil {
		slog.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	orch := capture.New(capture.Options{
		Manager:       visa.NewSocketManager(),
		Sink:          persist.Saver{},
		MinImageBytes: cfg.MinBytes,
	})

	result, err := orch.Run(ctx, capture.Request{
		Target:         target,
		Color:          scpi.ParseColorMode(cfg.Color),
		Timeout:        time.Duration(cfg.TimeoutSeconds) * time.Second,
		OutputTemplate: cfg.Output,
	})
	if err != nil {
		var failed *capture.CaptureFailedError
		if errors.As(err, &failed) {
			slog.Error("screenshot could not be captured", "target", failed.Target)
			for _, a := range failed.Attempts {
				slog.Error("attempt", "detail", a)
			}
		} else {
			slog.Error("capture aborted", "err", err)
		}
		os.Exit(1)
	}

	slog.Info("done",
		"path", result.Path,
		"bytes", result.Bytes,
		"vendor", result.Vendor.String(),
		"via", result.Candidate.String(),
	)
}

func mergeFlags(cfg *config.Config, connection, host string, port int, resource, output, color string, timeout int, logLevel string) {
	if connection != "" {
		cfg.Connection = connection
	}
	if host != "" {
		cfg.Host = host
	}
	if port != 0 {
		cfg.Port = port
	}
	if resource != "" {
		cfg.Resource = resource
	}
	if output != "" {
		cfg.Output = output
	}
	if color != "" {
		cfg.Color = color
	}
	if timeout != 0 {
		cfg.TimeoutSeconds = timeout
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
}

func buildTarget(cfg *config.Config) (capture.Target, error) {
	switch strings.ToLower(cfg.Connection) {
	case "ethernet":
		if cfg.Host == "" {
			return nil, fmt.Errorf("ethernet connection requires -host")
		}
		return capture.NetworkTarget{Host: cfg.Host, Port: cfg.Port}, nil
	case "usb":
		return capture.DeviceTarget{
			Resource:     cfg.Resource,
			AutoDiscover: cfg.Resource == "",
		}, nil
	default:
		return nil, fmt.Errorf("unknown connection type %q (want ethernet or usb)", cfg.Connection)
	}
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
