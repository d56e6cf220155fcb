package server

import (
	"crypto/tls"

	"github.com/muurk/godotserve/internal/certs"
)

// NewTLSConfig builds the server TLS configuration from loaded material.
// Client certificates are never requested and only HTTP/1.1 is offered.
func NewTLSConfig(material *certs.Material) *tls.Config {
	return &tls.Config{
		Certificates: []tls.Certificate{material.TLSCertificate()},
		MinVersion:   tls.VersionTLS12,
		ClientAuth:   tls.NoClientCert,
		NextProtos:   []string{"http/1.1"},
	}
}

// GetTLSInfo returns human-readable TLS configuration information
func GetTLSInfo(config *tls.Config) map[string]interface{} {
	info := map[string]interface{}{
		"min_version": tls.VersionName(config.MinVersion),
		"alpn":        config.NextProtos,
		"num_certs":   len(config.Certificates),
		"client_auth": config.ClientAuth.String(),
	}
	if len(config.Certificates) > 0 {
		cert := config.Certificates[0]
		info["chain_length"] = len(cert.Certificate)
		if cert.Leaf != nil {
			info["subject"] = cert.Leaf.Subject.String()
			info["dns_names"] = cert.Leaf.DNSNames
			info["not_after"] = cert.Leaf.NotAfter
		}
	}
	return info
}
