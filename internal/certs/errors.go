package certs

import (
	"errors"
	"fmt"
)

// Operations reported by Error.
const (
	OpGenerate  = "generate"
	OpParseCert = "parse_cert"
	OpParseKey  = "parse_key"
)

// Error describes a failure to provision or load TLS material.
type Error struct {
	// Op is one of OpGenerate, OpParseCert or OpParseKey
	Op string
	// Path is the file involved, if any
	Path string
	// Err is the underlying error
	Err error
}

func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("certificate %s failed for %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("certificate %s failed: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ErrNoPrivateKey is returned when none of the supported key encodings parse.
var ErrNoPrivateKey = errors.New("could not parse private key")

// ErrNoCertificates is returned when a certificate file holds no CERTIFICATE blocks.
var ErrNoCertificates = errors.New("no certificates found")
