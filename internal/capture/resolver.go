package capture

import (
	"fmt"

	"github.com/ebiym/scopesnap/internal/vicp"
	"github.com/ebiym/scopesnap/internal/visa"
)

// Target is a logical endpoint to capture from, fixed for the duration
// of one capture.
type Target interface {
	// Describe returns a short human-readable form for logs.
	Describe() string
}

// NetworkTarget reaches a scope by LAN address. Port is an optional
// hint for the raw-socket fallback; zero means the default SCPI port.
type NetworkTarget struct {
	Host string
	Port int
}

func (t NetworkTarget) Describe() string {
	if t.Port != 0 {
		return fmt.Sprintf("%s:%d", t.Host, t.Port)
	}
	return t.Host
}

// DeviceTarget reaches an instrument by explicit VISA resource, or by
// enumerating attached instruments when AutoDiscover is set.
type DeviceTarget struct {
	Resource     string
	AutoDiscover bool
}

func (t DeviceTarget) Describe() string {
	if t.AutoDiscover {
		return "first discovered instrument"
	}
	return t.Resource
}

// CandidateKind tags the two concrete ways of reaching a target.
type CandidateKind int

const (
	// CandidateStructured is a VISA-style resource opened through the
	// instrument-session layer.
	CandidateStructured CandidateKind = iota
	// CandidateRawSocket is a direct TCP connection speaking VICP.
	CandidateRawSocket
)

// Candidate is one concrete, triable way to reach a target. Earlier
// candidates are strictly preferred but any may fail independently.
type Candidate struct {
	Kind     CandidateKind
	Resource string // structured resource string
	Host     string // raw socket endpoint
	Port     int
}

func (c Candidate) String() string {
	if c.Kind == CandidateRawSocket {
		return fmt.Sprintf("vicp://%s:%d", c.Host, c.Port)
	}
	return c.Resource
}

// usbPatterns are tried in priority order during auto-discovery;
// enumeration stops at the first pattern yielding any match. Standard
// VISA registers USB instruments with ::INSTR, the LeCroy IVI driver
// with ::INST.
var usbPatterns = []string{"USB?*::INSTR", "USB?*::INST", "USB?*"}

// Candidates builds the ordered addressing candidates for a target.
// Ordering encodes protocol preference and is deterministic for a given
// target. The resolver is pure address-space logic: it never inspects
// instrument identity.
func Candidates(target Target, rm visa.ResourceManager) ([]Candidate, error) {
	switch t := target.(type) {
	case NetworkTarget:
		port := t.Port
		if port == 0 {
			port = visa.RawSCPIPort
		}
		return []Candidate{
			{Kind: CandidateStructured, Resource: visa.InstrumentResource(t.Host, visa.SubprotoVXI11)},
			{Kind: CandidateStructured, Resource: visa.InstrumentResource(t.Host, visa.SubprotoHiSLIP)},
			{Kind: CandidateRawSocket, Host: t.Host, Port: port},
		}, nil

	case DeviceTarget:
		if !t.AutoDiscover {
			if t.Resource == "" {
				return nil, fmt.Errorf("device target has no resource")
			}
			return []Candidate{{Kind: CandidateStructured, Resource: t.Resource}}, nil
		}
		for _, pattern := range usbPatterns {
			found, err := rm.Find(pattern)
			if err != nil {
				continue
			}
			if len(found) > 0 {
				return []Candidate{{Kind: CandidateStructured, Resource: found[0]}}, nil
			}
		}
		return nil, fmt.Errorf("no instruments discovered")

	default:
		return nil, fmt.Errorf("unsupported target type %T", target)
	}
}

// downgradeCandidate is the forced raw-socket fallback for LeCroy
// scopes reached over a structured network session: their binary image
// is only reachable over VICP on port 1861.
func downgradeCandidate(host string) Candidate {
	return Candidate{Kind: CandidateRawSocket, Host: host, Port: vicp.DefaultPort}
}
