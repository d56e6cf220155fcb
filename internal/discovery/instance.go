package discovery

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// Instance is a godotserve server found on the local network.
type Instance struct {
	// Name is the mDNS instance name (e.g., "godotserve on studio")
	Name string

	// Hostname is the mDNS hostname (e.g., "studio.local.")
	Hostname string

	// IP is the first advertised address, IPv4 preferred
	IP string

	// Port is the HTTPS port
	Port int

	// Metadata contains the TXT record data ("server", "version", "path")
	Metadata map[string]string

	// DiscoveredAt is when the instance was seen
	DiscoveredAt time.Time
}

// String returns a human-readable string representation of the instance
func (i *Instance) String() string {
	return fmt.Sprintf("%s (%s) at %s", i.Name, i.Hostname, i.URL())
}

// URL returns the HTTPS base URL of the instance
func (i *Instance) URL() string {
	return "https://" + net.JoinHostPort(i.IP, strconv.Itoa(i.Port)) + "/"
}

// GetMetadata retrieves a metadata value by key, or returns empty string if not found
func (i *Instance) GetMetadata(key string) string {
	if i.Metadata == nil {
		return ""
	}
	return i.Metadata[key]
}
