// Package certs provisions and loads the TLS material used by the server.
//
// Ensure generates a self-signed certificate for localhost and 127.0.0.1 the
// first time the server runs and leaves existing files alone afterwards. Load
// parses the certificate chain in file order and accepts a private key in
// PKCS8, PKCS#1 (RSA) or SEC1 (EC) encoding, tried in that order.
//
// Failures are reported as *Error values whose Op names the step that failed.
package certs
