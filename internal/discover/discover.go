// Package discover finds SCPI-capable instruments: TCP sweeps over
// local subnets, mDNS browsing for LXI-style advertisements, and VISA
// USB enumeration.
package discover

import "strings"

// Instrument is one discovered device.
type Instrument struct {
	Kind     string // "ethernet", "usb", "mdns"
	Address  string // IP or VISA resource
	Port     int    // 0 for USB
	IDN      string // raw *IDN? response
	Vendor   string // human-readable vendor label
	Resource string // suggested VISA resource string
}

// VendorLabel maps an *IDN? response to a display label. Broader than
// the capture dispatcher's vendor set: the scanner reports instruments
// the capture path does not drive.
func VendorLabel(idn string) string {
	u := strings.ToUpper(idn)
	switch {
	case strings.Contains(u, "LECROY") || strings.Contains(u, "TELEDYNE"):
		return "LeCroy / Teledyne"
	case strings.Contains(u, "TEKTRONIX"):
		return "Tektronix"
	case strings.Contains(u, "KEYSIGHT") || strings.Contains(u, "AGILENT"):
		return "Keysight / Agilent"
	case strings.Contains(u, "RIGOL"):
		return "Rigol"
	case strings.Contains(u, "SIGLENT"):
		return "Siglent"
	case strings.Contains(u, "ROHDE"):
		return "Rohde & Schwarz"
	case strings.Contains(u, "NATIONAL"):
		return "National Instruments"
	case idn != "":
		return "Unknown"
	default:
		return ""
	}
}

// Dedupe drops entries whose address was already seen, preserving
// order. Overlapping adapters must not report an instrument twice.
func Dedupe(results []Instrument) []Instrument {
	seen := make(map[string]bool, len(results))
	out := results[:0]
	for _, r := range results {
		if seen[r.Address] {
			continue
		}
		seen[r.Address] = true
		out = append(out, r)
	}
	return out
}
