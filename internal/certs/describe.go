package certs

import (
	"bytes"
	"crypto/sha256"
	"crypto/x509"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// Info summarizes the leaf certificate of a chain.
type Info struct {
	Subject     string
	Issuer      string
	DNSNames    []string
	IPAddresses []string
	NotBefore   time.Time
	NotAfter    time.Time
	SelfSigned  bool
	Fingerprint string // SHA-256, colon separated
	ChainLength int
	KeyFormat   string
}

// Expired reports whether the certificate is outside its validity window at t.
func (i *Info) Expired(t time.Time) bool {
	return t.Before(i.NotBefore) || t.After(i.NotAfter)
}

// Describe loads the material at the given paths and summarizes its leaf.
func Describe(certPath, keyPath string) (*Info, error) {
	material, err := Load(certPath, keyPath)
	if err != nil {
		return nil, err
	}

	leaf, err := x509.ParseCertificate(material.Chain[0])
	if err != nil {
		return nil, &Error{Op: OpParseCert, Path: certPath, Err: err}
	}

	ips := make([]string, 0, len(leaf.IPAddresses))
	for _, ip := range leaf.IPAddresses {
		ips = append(ips, ip.String())
	}

	return &Info{
		Subject:     leaf.Subject.String(),
		Issuer:      leaf.Issuer.String(),
		DNSNames:    leaf.DNSNames,
		IPAddresses: ips,
		NotBefore:   leaf.NotBefore,
		NotAfter:    leaf.NotAfter,
		SelfSigned:  IsSelfSigned(leaf),
		Fingerprint: fingerprint(leaf.Raw),
		ChainLength: len(material.Chain),
		KeyFormat:   material.KeyFormat,
	}, nil
}

// IsSelfSigned reports whether cert is issued by itself and its signature
// verifies with its own key. Unlike CheckSignatureFrom it does not require
// the certificate to be a CA.
func IsSelfSigned(cert *x509.Certificate) bool {
	return bytes.Equal(cert.RawIssuer, cert.RawSubject) &&
		cert.CheckSignature(cert.SignatureAlgorithm, cert.RawTBSCertificate, cert.Signature) == nil
}

func fingerprint(der []byte) string {
	sum := sha256.Sum256(der)
	encoded := strings.ToUpper(hex.EncodeToString(sum[:]))
	parts := make([]string, 0, len(sum))
	for i := 0; i < len(encoded); i += 2 {
		parts = append(parts, encoded[i:i+2])
	}
	return strings.Join(parts, ":")
}

// Details flattens the summary into display rows.
func (i *Info) Details() map[string]string {
	return map[string]string{
		"Subject":     i.Subject,
		"Issuer":      i.Issuer,
		"DNS names":   strings.Join(i.DNSNames, ", "),
		"IPs":         strings.Join(i.IPAddresses, ", "),
		"Valid from":  i.NotBefore.Format(time.RFC3339),
		"Valid until": i.NotAfter.Format(time.RFC3339),
		"Self-signed": fmt.Sprintf("%t", i.SelfSigned),
		"Chain":       fmt.Sprintf("%d certificate(s)", i.ChainLength),
		"Key format":  i.KeyFormat,
		"SHA-256":     i.Fingerprint,
	}
}
