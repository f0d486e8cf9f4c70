package visa

import (
	"fmt"
	"path"
	"strconv"
	"strings"
)

// RawSCPIPort is the conventional port for plain SCPI over TCP, and the
// default when a network target names no port.
const RawSCPIPort = 5025

// LAN discovery sub-protocol tags used in TCPIP ::INSTR resources.
const (
	SubprotoVXI11  = "inst0"   // VXI-11
	SubprotoHiSLIP = "hislip0" // HiSLIP, newer scopes
)

// InstrumentResource builds a TCPIP ::INSTR resource for a LAN
// discovery sub-protocol, e.g. "TCPIP::10.0.0.5::inst0::INSTR".
func InstrumentResource(host, subproto string) string {
	return fmt.Sprintf("TCPIP::%s::%s::INSTR", host, subproto)
}

// SocketResource builds a raw-socket resource,
// e.g. "TCPIP::10.0.0.5::5025::SOCKET".
func SocketResource(host string, port int) string {
	return fmt.Sprintf("TCPIP::%s::%d::SOCKET", host, port)
}

// SuffixVariants returns the resource plus its alternate suffix
// spelling for the same physical instrument class. Standard VISA uses
// ::INSTR while the LeCroy IVI driver registers ::INST; either may be
// the one the backend accepts, so both must be tried.
func SuffixVariants(resource string) []string {
	switch {
	case strings.HasSuffix(resource, "::INSTR"):
		return []string{resource, strings.TrimSuffix(resource, "INSTR") + "INST"}
	case strings.HasSuffix(resource, "::INST"):
		return []string{resource, resource + "R"}
	default:
		return []string{resource}
	}
}

// HostFromResource extracts the host field of a TCPIP resource.
func HostFromResource(resource string) (string, bool) {
	parts := strings.Split(resource, "::")
	if len(parts) < 2 || !strings.HasPrefix(strings.ToUpper(parts[0]), "TCPIP") {
		return "", false
	}
	return parts[1], true
}

// SocketEndpoint parses a "TCPIP::host::port::SOCKET" resource.
func SocketEndpoint(resource string) (host string, port int, ok bool) {
	parts := strings.Split(resource, "::")
	if len(parts) != 4 || !strings.EqualFold(parts[3], "SOCKET") {
		return "", 0, false
	}
	if !strings.HasPrefix(strings.ToUpper(parts[0]), "TCPIP") {
		return "", 0, false
	}
	p, err := strconv.Atoi(parts[2])
	if err != nil || p <= 0 || p > 65535 {
		return "", 0, false
	}
	return parts[1], p, true
}

// MatchPattern reports whether a resource string matches a VISA glob
// pattern ("?" one character, "*" any run of characters).
func MatchPattern(pattern, resource string) bool {
	ok, err := path.Match(pattern, resource)
	return err == nil && ok
}
