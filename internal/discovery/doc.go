// Package discovery publishes and finds godotserve instances over mDNS.
//
// With --mdns the server registers itself as an "_https._tcp" service whose
// TXT record carries "server=godotserve", so phones and other machines on the
// LAN can find the development build without typing an address. The
// "godotserve discover" command browses for those registrations.
//
// # Usage Example
//
//	adv, err := discovery.Advertise("godotserve", 8443, version.Version)
//	if err != nil {
//	    return err
//	}
//	defer adv.Shutdown()
//
//	instances, err := discovery.NewScanner().Scan(ctx)
package discovery
