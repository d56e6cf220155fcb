package certs

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"path/filepath"
	"testing"
	"time"
)

// issue creates a certificate for template signed by parent/parentKey, or
// self-signed when parent is nil.
func issue(t *testing.T, template, parent *x509.Certificate, parentKey *ecdsa.PrivateKey) (*x509.Certificate, *ecdsa.PrivateKey) {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	if parent == nil {
		parent, parentKey = template, key
	}
	der, err := x509.CreateCertificate(rand.Reader, template, parent, &key.PublicKey, parentKey)
	if err != nil {
		t.Fatal(err)
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		t.Fatal(err)
	}
	return cert, key
}

func TestIsSelfSigned(t *testing.T) {
	now := time.Now()
	caTemplate := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: "dev root"},
		NotBefore:             now,
		NotAfter:              now.Add(time.Hour),
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageDigitalSignature,
		BasicConstraintsValid: true,
		IsCA:                  true,
	}
	leafTemplate := &x509.Certificate{
		SerialNumber: big.NewInt(2),
		Subject:      pkix.Name{CommonName: "localhost"},
		NotBefore:    now,
		NotAfter:     now.Add(time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
		DNSNames:     []string{"localhost"},
	}

	ca, caKey := issue(t, caTemplate, nil, nil)
	signedLeaf, _ := issue(t, leafTemplate, ca, caKey)
	selfLeaf, _ := issue(t, leafTemplate, nil, nil)

	tests := []struct {
		name string
		cert *x509.Certificate
		want bool
	}{
		{"self-signed leaf without CA rights", selfLeaf, true},
		{"self-signed CA", ca, true},
		{"leaf issued by a CA", signedLeaf, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsSelfSigned(tt.cert); got != tt.want {
				t.Errorf("IsSelfSigned() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDescribeGeneratedIsSelfSigned(t *testing.T) {
	dir := t.TempDir()
	certPath := filepath.Join(dir, "cert.pem")
	keyPath := filepath.Join(dir, "key.pem")
	if _, err := Ensure(certPath, keyPath); err != nil {
		t.Fatal(err)
	}

	info, err := Describe(certPath, keyPath)
	if err != nil {
		t.Fatalf("Describe failed: %v", err)
	}
	if !info.SelfSigned {
		t.Errorf("SelfSigned = false for generated certificate (subject %q, issuer %q)", info.Subject, info.Issuer)
	}
	if info.Details()["Self-signed"] != "true" {
		t.Errorf("Details()[Self-signed] = %q, want true", info.Details()["Self-signed"])
	}
}
