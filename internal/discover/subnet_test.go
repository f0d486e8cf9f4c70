package discover

import "testing"

func TestHostsIn_Slash30(t *testing.T) {
	hosts, err := HostsIn("192.168.1.0/30")
	if err != nil {
		t.Fatalf("HostsIn failed: %v", err)
	}
	want := []string{"192.168.1.1", "192.168.1.2"}
	if len(hosts) != 2 || hosts[0] != want[0] || hosts[1] != want[1] {
		t.Errorf("hosts = %v, want %v", hosts, want)
	}
}

func TestHostsIn_Slash24(t *testing.T) {
	hosts, err := HostsIn("10.0.0.0/24")
	if err != nil {
		t.Fatalf("HostsIn failed: %v", err)
	}
	if len(hosts) != 254 {
		t.Fatalf("got %d hosts, want 254", len(hosts))
	}
	if hosts[0] != "10.0.0.1" || hosts[253] != "10.0.0.254" {
		t.Errorf("range = %s .. %s, want 10.0.0.1 .. 10.0.0.254", hosts[0], hosts[253])
	}
}

func TestHostsIn_HostBitsSet(t *testing.T) {
	// The scan covers the network the address sits in, not the address.
	hosts, err := HostsIn("10.0.0.57/30")
	if err != nil {
		t.Fatalf("HostsIn failed: %v", err)
	}
	if len(hosts) != 2 || hosts[0] != "10.0.0.57" {
		t.Errorf("hosts = %v, want [10.0.0.57 10.0.0.58]", hosts)
	}
}

func TestHostsIn_SingleAddress(t *testing.T) {
	hosts, err := HostsIn("10.0.0.5/32")
	if err != nil {
		t.Fatalf("HostsIn failed: %v", err)
	}
	if len(hosts) != 1 || hosts[0] != "10.0.0.5" {
		t.Errorf("hosts = %v, want [10.0.0.5]", hosts)
	}
}

func TestHostsIn_Rejects(t *testing.T) {
	for _, cidr := range []string{"not-a-cidr", "10.0.0.0/8", "fe80::/64"} {
		if _, err := HostsIn(cidr); err == nil {
			t.Errorf("HostsIn(%q) succeeded, want error", cidr)
		}
	}
}

func TestVendorLabel(t *testing.T) {
	cases := []struct {
		idn  string
		want string
	}{
		{"LECROY,WR8254M,LCRY0001,8.6.0", "LeCroy / Teledyne"},
		{"TEKTRONIX,MSO64,C010001,FV:1.28", "Tektronix"},
		{"Keysight Technologies,MSO-X 3104T,MY551,07.50", "Keysight / Agilent"},
		{"RIGOL TECHNOLOGIES,DS1054Z,DS1ZA1,00.04.04", "Rigol"},
		{"Siglent Technologies,SDS1104X-E,SDS1001,8.2.6", "Siglent"},
		{"Rohde&Schwarz,RTB2004,1333.1005K04,02.300", "Rohde & Schwarz"},
		{"ACME,Widget,1,1", "Unknown"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := VendorLabel(tc.idn); got != tc.want {
			t.Errorf("VendorLabel(%q) = %q, want %q", tc.idn, got, tc.want)
		}
	}
}

func TestDedupe(t *testing.T) {
	in := []Instrument{
		{Kind: "ethernet", Address: "10.0.0.5", Port: 5025},
		{Kind: "mdns", Address: "10.0.0.5", Port: 5025},
		{Kind: "ethernet", Address: "10.0.0.6", Port: 1861},
		{Kind: "usb", Address: "USB0::0x0699::0x0401::SN1::INSTR"},
	}
	out := Dedupe(in)
	if len(out) != 3 {
		t.Fatalf("got %d instruments, want 3", len(out))
	}
	if out[0].Kind != "ethernet" || out[0].Address != "10.0.0.5" {
		t.Errorf("first entry = %+v, want the first-seen 10.0.0.5", out[0])
	}
	if out[1].Address != "10.0.0.6" || out[2].Kind != "usb" {
		t.Errorf("order not preserved: %+v", out)
	}
}
