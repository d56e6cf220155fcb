package server

import (
	"errors"
	"fmt"

	"github.com/muurk/godotserve/internal/certs"
)

// StartupKind classifies the conditions that stop the server from starting.
type StartupKind int

const (
	KindCertificateGeneration StartupKind = iota + 1
	KindCertificateParse
	KindKeyParse
	KindBind
)

func (k StartupKind) String() string {
	switch k {
	case KindCertificateGeneration:
		return "certificate generation"
	case KindCertificateParse:
		return "certificate parse"
	case KindKeyParse:
		return "key parse"
	case KindBind:
		return "bind"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// StartupError is returned by New and Listen. Any StartupError is fatal.
type StartupError struct {
	Kind StartupKind
	Err  error
}

func (e *StartupError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Kind, e.Err)
}

func (e *StartupError) Unwrap() error {
	return e.Err
}

// KindOf returns the startup kind of err, or 0 if err is not a StartupError.
func KindOf(err error) StartupKind {
	var startupErr *StartupError
	if errors.As(err, &startupErr) {
		return startupErr.Kind
	}
	return 0
}

// fromCertError maps a certificate failure onto its startup kind.
func fromCertError(err error) *StartupError {
	kind := KindCertificateParse
	var certErr *certs.Error
	if errors.As(err, &certErr) {
		switch certErr.Op {
		case certs.OpGenerate:
			kind = KindCertificateGeneration
		case certs.OpParseKey:
			kind = KindKeyParse
		}
	}
	return &StartupError{Kind: kind, Err: err}
}
