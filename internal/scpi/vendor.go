// Package scpi holds the vendor-specific knowledge of the capture
// path: identity parsing, hardcopy command sequences, and the
// IEEE-488.2 block envelope.
package scpi

import "strings"

// Vendor is the closed set of scope families the tool knows how to
// drive. Detection is a substring match on the *IDN? response and is
// re-done for every opened connection — a different transport may well
// reach a different device.
type Vendor int

const (
	VendorUnknown Vendor = iota
	VendorLeCroy
	VendorTektronix
	VendorKeysight
	VendorRigolSiglent
)

func (v Vendor) String() string {
	switch v {
	case VendorLeCroy:
		return "LECROY"
	case VendorTektronix:
		return "TEKTRONIX"
	case VendorKeysight:
		return "KEYSIGHT"
	case VendorRigolSiglent:
		return "RIGOL_SIGLENT"
	default:
		return "UNKNOWN"
	}
}

// DetectVendor maps a raw *IDN? response to a vendor tag.
// The response format is <manufacturer>,<model>,<serial>,<firmware>.
func DetectVendor(idn string) Vendor {
	u := strings.ToUpper(idn)
	switch {
	case strings.Contains(u, "LECROY") || strings.Contains(u, "TELEDYNE"):
		return VendorLeCroy
	case strings.Contains(u, "TEKTRONIX") || strings.Contains(u, "TEK"):
		return VendorTektronix
	case strings.Contains(u, "KEYSIGHT") || strings.Contains(u, "AGILENT") || strings.Contains(u, "HEWLETT"):
		return VendorKeysight
	case strings.Contains(u, "RIGOL") || strings.Contains(u, "SIGLENT"):
		return VendorRigolSiglent
	default:
		return VendorUnknown
	}
}
