package certs

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/muurk/godotserve/internal/logging"
	"go.uber.org/zap"
)

// ValidFor is the lifetime of a generated certificate.
const ValidFor = 10 * 365 * 24 * time.Hour

// DNSNames and IPAddresses are the subject alternative names of a generated
// certificate. Nothing else is ever included.
var (
	DNSNames    = []string{"localhost"}
	IPAddresses = []net.IP{net.ParseIP("127.0.0.1")}
)

// Pair is a freshly generated certificate and key, PEM-encoded.
type Pair struct {
	CertPEM []byte
	KeyPEM  []byte
}

// Ensure makes sure a certificate and key exist at the given paths.
// When both files already exist it does nothing, so valid material is never
// overwritten. Otherwise a new self-signed pair is generated and written,
// creating parent directories as needed.
func Ensure(certPath, keyPath string) (generated bool, err error) {
	if fileExists(certPath) && fileExists(keyPath) {
		logging.Debug("Using existing certificate",
			zap.String("cert", certPath),
			zap.String("key", keyPath),
		)
		return false, nil
	}

	logging.Info("Generating self-signed certificate",
		zap.String("cert", certPath),
		zap.String("key", keyPath),
		zap.Strings("dns_names", DNSNames),
	)

	pair, err := GenerateSelfSigned()
	if err != nil {
		return false, err
	}

	if err := pair.Write(certPath, keyPath); err != nil {
		return false, err
	}

	logging.Info("Certificate generated", zap.String("cert", certPath))
	return true, nil
}

// GenerateSelfSigned creates a self-signed ECDSA P-256 certificate for
// localhost and 127.0.0.1. The key is PKCS8-encoded.
func GenerateSelfSigned() (*Pair, error) {
	privateKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, &Error{Op: OpGenerate, Err: fmt.Errorf("generate key: %w", err)}
	}

	serialNumber, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return nil, &Error{Op: OpGenerate, Err: fmt.Errorf("generate serial: %w", err)}
	}

	notBefore := time.Now().Add(-time.Hour)
	template := x509.Certificate{
		SerialNumber: serialNumber,
		Subject: pkix.Name{
			Organization: []string{"godotserve"},
			CommonName:   "godotserve self signed cert",
		},
		NotBefore: notBefore,
		NotAfter:  notBefore.Add(ValidFor),

		KeyUsage:    x509.KeyUsageDigitalSignature,
		ExtKeyUsage: []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},

		DNSNames:    DNSNames,
		IPAddresses: IPAddresses,

		BasicConstraintsValid: true,
	}

	certDER, err := x509.CreateCertificate(rand.Reader, &template, &template, &privateKey.PublicKey, privateKey)
	if err != nil {
		return nil, &Error{Op: OpGenerate, Err: fmt.Errorf("create certificate: %w", err)}
	}

	keyDER, err := x509.MarshalPKCS8PrivateKey(privateKey)
	if err != nil {
		return nil, &Error{Op: OpGenerate, Err: fmt.Errorf("marshal key: %w", err)}
	}

	return &Pair{
		CertPEM: pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: certDER}),
		KeyPEM:  pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: keyDER}),
	}, nil
}

// Write stores the pair, replacing any existing files. The key is written
// with owner-only permissions.
func (p *Pair) Write(certPath, keyPath string) error {
	if err := writeFile(certPath, p.CertPEM, 0644); err != nil {
		return err
	}
	return writeFile(keyPath, p.KeyPEM, 0600)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func writeFile(path string, data []byte, perm os.FileMode) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return &Error{Op: OpGenerate, Path: path, Err: err}
		}
	}
	if err := os.WriteFile(path, data, perm); err != nil {
		return &Error{Op: OpGenerate, Path: path, Err: err}
	}
	return nil
}
