package discover

import (
	"fmt"
	"net"
)

// Subnet is one scannable IPv4 network, labelled with its interface.
type Subnet struct {
	Label string
	CIDR  string
}

// LocalSubnets enumerates the IPv4 networks of every up, non-loopback
// interface. When interface enumeration yields nothing it falls back to
// the default-route UDP trick: dialing a UDP socket lets the OS routing
// table pick the outbound address without sending a packet.
func LocalSubnets() ([]Subnet, error) {
	var subnets []Subnet
	seen := make(map[string]bool)

	ifaces, err := net.Interfaces()
	if err == nil {
		for _, iface := range ifaces {
			if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
				continue
			}
			addrs, err := iface.Addrs()
			if err != nil {
				continue
			}
			for _, addr := range addrs {
				ipnet, ok := addr.(*net.IPNet)
				if !ok || ipnet.IP.To4() == nil {
					continue
				}
				cidr := ipnet.String()
				if seen[cidr] {
					continue
				}
				seen[cidr] = true
				subnets = append(subnets, Subnet{Label: iface.Name, CIDR: cidr})
			}
		}
	}
	if len(subnets) > 0 {
		return subnets, nil
	}

	ip, err := defaultRouteIP()
	if err != nil {
		return nil, fmt.Errorf("detect local subnet: %w", err)
	}
	return []Subnet{{Label: ip, CIDR: fmt.Sprintf("%s/24", ip)}}, nil
}

func defaultRouteIP() (string, error) {
	conn, err := net.Dial("udp4", "224.0.0.1:80")
	if err != nil {
		return "", err
	}
	defer conn.Close()
	return conn.LocalAddr().(*net.UDPAddr).IP.String(), nil
}

// maxSweepHosts caps a single sweep; a mistyped /8 must not turn into a
// multi-hour scan.
const maxSweepHosts = 65534

// HostsIn expands a CIDR into its usable host addresses.
func HostsIn(cidr string) ([]string, error) {
	_, ipnet, err := net.ParseCIDR(cidr)
	if err != nil {
		return nil, fmt.Errorf("parse CIDR %q: %w", cidr, err)
	}
	ones, bits := ipnet.Mask.Size()
	if bits != 32 {
		return nil, fmt.Errorf("only IPv4 networks are scannable, got %q", cidr)
	}
	total := 1 << (bits - ones)
	if total-2 > maxSweepHosts {
		return nil, fmt.Errorf("network %q too large to sweep (%d hosts)", cidr, total-2)
	}

	var hosts []string
	base := ipnet.IP.Mask(ipnet.Mask).To4()
	for i := 1; i < total-1; i++ {
		ip := make(net.IP, 4)
		copy(ip, base)
		v := uint32(ip[0])<<24 | uint32(ip[1])<<16 | uint32(ip[2])<<8 | uint32(ip[3])
		v += uint32(i)
		ip[0], ip[1], ip[2], ip[3] = byte(v>>24), byte(v>>16), byte(v>>8), byte(v)
		hosts = append(hosts, ip.String())
	}
	// A /31 or /32 has no usable hosts by the convention above; scan the
	// address itself.
	if len(hosts) == 0 {
		hosts = append(hosts, ipnet.IP.String())
	}
	return hosts, nil
}
