package discover

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/ebiym/scopesnap/internal/visa"
)

// usbPatterns mirror the capture resolver's auto-discovery order.
var usbPatterns = []string{"USB?*::INSTR", "USB?*::INST", "USB?*"}

// ScanUSB enumerates USB-TMC instruments through the instrument-session
// layer and queries each for its identity. Devices that do not answer
// *IDN? are skipped.
func ScanUSB(ctx context.Context, rm visa.ResourceManager, timeout time.Duration) []Instrument {
	var resources []string
	for _, pattern := range usbPatterns {
		found, err := rm.Find(pattern)
		if err != nil {
			slog.Debug("USB enumeration failed", "pattern", pattern, "err", err)
			continue
		}
		for _, r := range found {
			if !slices.Contains(resources, r) {
				resources = append(resources, r)
			}
		}
		if len(resources) > 0 {
			break // stop at the first pattern that yields results
		}
	}
	if len(resources) == 0 {
		slog.Info("no USB-TMC instruments detected")
		return nil
	}

	var results []Instrument
	for _, res := range resources {
		sess, err := rm.Open(ctx, res, timeout)
		if err != nil {
			slog.Debug("USB open failed", "resource", res, "err", err)
			continue
		}
		idn, err := sess.Query("*IDN?")
		sess.Close()
		if err != nil || strings.TrimSpace(idn) == "" {
			slog.Debug("USB instrument gave no identity", "resource", res, "err", err)
			continue
		}
		idn = strings.TrimSpace(idn)
		slog.Info("USB instrument found", "resource", res, "idn", idn)
		results = append(results, Instrument{
			Kind:     "usb",
			Address:  res,
			IDN:      idn,
			Vendor:   VendorLabel(idn),
			Resource: res,
		})
	}
	return results
}
