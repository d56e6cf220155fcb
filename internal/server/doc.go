// Package server implements the HTTPS file server for Godot web exports.
//
// The server accepts raw TCP connections and performs the TLS handshake for
// each one in its own goroutine. A failed handshake is logged and the
// connection dropped; the accept loop keeps running. Connections that complete
// the handshake are handed to an http.Server which serves HTTP/1.1 with
// keep-alive.
//
// # Responses
//
// Every response carries the cross-origin isolation headers browsers require
// for SharedArrayBuffer and WebAssembly threads:
//
//	Cross-Origin-Opener-Policy: same-origin
//	Cross-Origin-Embedder-Policy: require-corp
//
// Content-Type is derived from the file extension. Non-HTML responses are
// marked cacheable for a day; HTML responses carry no Cache-Control header.
// HTML pages are rewritten by package inject before they are sent. Missing
// files produce a 404 with the body "404 Not Found".
//
// # Usage Example
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	srv, err := server.New(cfg)
//	if err != nil {
//	    log.Fatal(err) // server.KindOf(err) tells which startup step failed
//	}
//
//	if err := srv.Listen(); err != nil {
//	    log.Fatal(err)
//	}
//
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
//	defer stop()
//	if err := srv.Serve(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// # Graceful Shutdown
//
// When the context passed to Serve is done the listener is closed. Pending
// handshakes finish and in-flight requests get up to ten seconds to complete.
package server
