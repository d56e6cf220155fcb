package certs

import (
	"bytes"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestEnsureGeneratesPair(t *testing.T) {
	dir := t.TempDir()
	certPath := filepath.Join(dir, "nested", "tls", "cert.pem")
	keyPath := filepath.Join(dir, "other", "key.pem")

	generated, err := Ensure(certPath, keyPath)
	if err != nil {
		t.Fatalf("Ensure failed: %v", err)
	}
	if !generated {
		t.Error("expected generated = true on first run")
	}

	certPEM, err := os.ReadFile(certPath)
	if err != nil {
		t.Fatalf("reading cert: %v", err)
	}
	block, _ := pem.Decode(certPEM)
	if block == nil || block.Type != "CERTIFICATE" {
		t.Fatal("expected a CERTIFICATE PEM block")
	}
	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		t.Fatalf("parsing cert: %v", err)
	}

	if len(cert.DNSNames) != 1 || cert.DNSNames[0] != "localhost" {
		t.Errorf("DNSNames = %v, want [localhost]", cert.DNSNames)
	}
	if len(cert.IPAddresses) != 1 || cert.IPAddresses[0].String() != "127.0.0.1" {
		t.Errorf("IPAddresses = %v, want [127.0.0.1]", cert.IPAddresses)
	}
	if cert.IsCA {
		t.Error("generated certificate should not be a CA")
	}
	if !IsSelfSigned(cert) {
		t.Error("expected self-signed certificate")
	}

	info, err := os.Stat(keyPath)
	if err != nil {
		t.Fatalf("stat key: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("key permissions = %o, want 600", info.Mode().Perm())
	}

	material, err := Load(certPath, keyPath)
	if err != nil {
		t.Fatalf("Load of generated material failed: %v", err)
	}
	if material.KeyFormat != "pkcs8" {
		t.Errorf("KeyFormat = %q, want pkcs8", material.KeyFormat)
	}
	if err := material.Validate(); err != nil {
		t.Errorf("generated key does not match certificate: %v", err)
	}
}

func TestEnsureIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	certPath := filepath.Join(dir, "cert.pem")
	keyPath := filepath.Join(dir, "key.pem")

	if _, err := Ensure(certPath, keyPath); err != nil {
		t.Fatalf("first Ensure failed: %v", err)
	}
	certBefore, _ := os.ReadFile(certPath)
	keyBefore, _ := os.ReadFile(keyPath)

	generated, err := Ensure(certPath, keyPath)
	if err != nil {
		t.Fatalf("second Ensure failed: %v", err)
	}
	if generated {
		t.Error("expected generated = false when files exist")
	}

	certAfter, _ := os.ReadFile(certPath)
	keyAfter, _ := os.ReadFile(keyPath)
	if !bytes.Equal(certBefore, certAfter) {
		t.Error("certificate was rewritten on second Ensure")
	}
	if !bytes.Equal(keyBefore, keyAfter) {
		t.Error("key was rewritten on second Ensure")
	}
}

func TestEnsureRegeneratesWhenOneFileMissing(t *testing.T) {
	dir := t.TempDir()
	certPath := filepath.Join(dir, "cert.pem")
	keyPath := filepath.Join(dir, "key.pem")

	if _, err := Ensure(certPath, keyPath); err != nil {
		t.Fatalf("Ensure failed: %v", err)
	}
	if err := os.Remove(keyPath); err != nil {
		t.Fatalf("removing key: %v", err)
	}

	generated, err := Ensure(certPath, keyPath)
	if err != nil {
		t.Fatalf("Ensure failed: %v", err)
	}
	if !generated {
		t.Error("expected regeneration when key is missing")
	}
	if _, err := Load(certPath, keyPath); err != nil {
		t.Errorf("regenerated material does not load: %v", err)
	}
}

func TestEnsureWriteFailure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := Ensure(filepath.Join(blocker, "cert.pem"), filepath.Join(dir, "key.pem"))
	if err == nil {
		t.Fatal("expected error when parent is a regular file")
	}

	var certErr *Error
	if !errors.As(err, &certErr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if certErr.Op != OpGenerate {
		t.Errorf("Op = %q, want %q", certErr.Op, OpGenerate)
	}
}
