package discovery

import (
	"net"
	"testing"
	"time"

	"github.com/grandcat/zeroconf"
)

func newEntry(instance, host string, port int, v4 []net.IP, v6 []net.IP, txt []string) *zeroconf.ServiceEntry {
	entry := zeroconf.NewServiceEntry(instance, ServiceType, ServiceDomain)
	entry.HostName = host
	entry.Port = port
	entry.AddrIPv4 = v4
	entry.AddrIPv6 = v6
	entry.Text = txt
	return entry
}

func TestParseServiceEntry(t *testing.T) {
	tests := []struct {
		name     string
		entry    *zeroconf.ServiceEntry
		wantNil  bool
		wantIP   string
		wantPort int
	}{
		{
			name:     "godotserve instance with IPv4",
			entry:    newEntry("godotserve", "studio.local.", 8443, []net.IP{net.ParseIP("192.168.1.20")}, nil, []string{ServerTag, "version=dev"}),
			wantIP:   "192.168.1.20",
			wantPort: 8443,
		},
		{
			name:     "IPv6 fallback",
			entry:    newEntry("godotserve", "studio.local.", 9443, nil, []net.IP{net.ParseIP("fe80::1")}, []string{ServerTag}),
			wantIP:   "fe80::1",
			wantPort: 9443,
		},
		{
			name:    "other https service",
			entry:   newEntry("printer", "printer.local.", 443, []net.IP{net.ParseIP("192.168.1.30")}, nil, []string{"path=/"}),
			wantNil: true,
		},
		{
			name:    "no address",
			entry:   newEntry("godotserve", "studio.local.", 8443, nil, nil, []string{ServerTag}),
			wantNil: true,
		},
		{
			name:    "no port",
			entry:   newEntry("godotserve", "studio.local.", 0, []net.IP{net.ParseIP("192.168.1.20")}, nil, []string{ServerTag}),
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			instance := parseServiceEntry(tt.entry)

			if tt.wantNil {
				if instance != nil {
					t.Errorf("expected nil, got %v", instance)
				}
				return
			}

			if instance == nil {
				t.Fatal("expected instance, got nil")
			}
			if instance.IP != tt.wantIP {
				t.Errorf("IP = %q, want %q", instance.IP, tt.wantIP)
			}
			if instance.Port != tt.wantPort {
				t.Errorf("Port = %d, want %d", instance.Port, tt.wantPort)
			}
			if instance.GetMetadata("server") != "godotserve" {
				t.Errorf("server metadata = %q", instance.GetMetadata("server"))
			}
		})
	}
}

func TestInstanceURL(t *testing.T) {
	tests := []struct {
		ip   string
		port int
		want string
	}{
		{"192.168.1.20", 8443, "https://192.168.1.20:8443/"},
		{"fe80::1", 8443, "https://[fe80::1]:8443/"},
	}
	for _, tt := range tests {
		i := &Instance{IP: tt.ip, Port: tt.port}
		if got := i.URL(); got != tt.want {
			t.Errorf("URL() = %q, want %q", got, tt.want)
		}
	}
}

func TestInstanceGetMetadataNilMap(t *testing.T) {
	i := &Instance{}
	if got := i.GetMetadata("version"); got != "" {
		t.Errorf("GetMetadata on nil map = %q", got)
	}
}

func TestNewScanner(t *testing.T) {
	s := NewScanner()
	if s.Timeout != DefaultScanTimeout {
		t.Errorf("Timeout = %v, want %v", s.Timeout, DefaultScanTimeout)
	}
	if DefaultScanTimeout < time.Second {
		t.Error("scan timeout too short for mDNS responses")
	}
}
