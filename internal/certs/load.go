package certs

import (
	"bytes"
	"crypto"
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
)

// Material is a parsed certificate chain and private key.
type Material struct {
	// Chain holds DER certificates in file order; the first is expected to be the leaf.
	Chain [][]byte
	// Key is the parsed private key
	Key crypto.PrivateKey
	// KeyFormat records which encoding matched: "pkcs8", "rsa" or "ec"
	KeyFormat string
}

// TLSCertificate converts the material into a certificate usable by crypto/tls.
func (m *Material) TLSCertificate() tls.Certificate {
	cert := tls.Certificate{
		Certificate: m.Chain,
		PrivateKey:  m.Key,
	}
	if len(m.Chain) > 0 {
		if leaf, err := x509.ParseCertificate(m.Chain[0]); err == nil {
			cert.Leaf = leaf
		}
	}
	return cert
}

// keyFormat is one attempt in the ordered key parse.
type keyFormat struct {
	name      string
	blockType string
	parse     func([]byte) (crypto.PrivateKey, error)
}

var keyFormats = []keyFormat{
	{"pkcs8", "PRIVATE KEY", func(der []byte) (crypto.PrivateKey, error) { return x509.ParsePKCS8PrivateKey(der) }},
	{"rsa", "RSA PRIVATE KEY", func(der []byte) (crypto.PrivateKey, error) { return x509.ParsePKCS1PrivateKey(der) }},
	{"ec", "EC PRIVATE KEY", func(der []byte) (crypto.PrivateKey, error) { return x509.ParseECPrivateKey(der) }},
}

// Load reads a PEM certificate chain and a PEM private key from disk.
func Load(certPath, keyPath string) (*Material, error) {
	certData, err := os.ReadFile(certPath)
	if err != nil {
		return nil, &Error{Op: OpParseCert, Path: certPath, Err: err}
	}
	chain := ParseCertificates(certData)
	if len(chain) == 0 {
		return nil, &Error{Op: OpParseCert, Path: certPath, Err: ErrNoCertificates}
	}

	keyData, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, &Error{Op: OpParseKey, Path: keyPath, Err: err}
	}
	key, format, err := ParsePrivateKey(keyData)
	if err != nil {
		return nil, &Error{Op: OpParseKey, Path: keyPath, Err: err}
	}

	return &Material{Chain: chain, Key: key, KeyFormat: format}, nil
}

// ParseCertificates returns the DER bytes of every CERTIFICATE block in data,
// preserving order. Other block types are skipped.
func ParseCertificates(data []byte) [][]byte {
	var chain [][]byte
	rest := data
	for {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			break
		}
		if block.Type == "CERTIFICATE" {
			chain = append(chain, block.Bytes)
		}
	}
	return chain
}

// ParsePrivateKey tries PKCS8, then RSA, then EC. Every attempt scans data from
// the beginning, and the first key that parses wins.
func ParsePrivateKey(data []byte) (crypto.PrivateKey, string, error) {
	for _, format := range keyFormats {
		if key := firstKey(data, format); key != nil {
			return key, format.name, nil
		}
	}
	return nil, "", ErrNoPrivateKey
}

func firstKey(data []byte, format keyFormat) crypto.PrivateKey {
	rest := data
	for {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			return nil
		}
		if block.Type != format.blockType {
			continue
		}
		if key, err := format.parse(block.Bytes); err == nil {
			return key
		}
	}
}

// Validate reports whether key matches the public key of the leaf certificate.
func (m *Material) Validate() error {
	if _, err := tls.X509KeyPair(m.pemChain(), m.pemKey()); err != nil {
		return fmt.Errorf("certificate and key do not match: %w", err)
	}
	return nil
}

func (m *Material) pemChain() []byte {
	var b bytes.Buffer
	for _, der := range m.Chain {
		_ = pem.Encode(&b, &pem.Block{Type: "CERTIFICATE", Bytes: der})
	}
	return b.Bytes()
}

func (m *Material) pemKey() []byte {
	der, err := x509.MarshalPKCS8PrivateKey(m.Key)
	if err != nil {
		return nil
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})
}
