package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/muurk/godotserve/internal/certs"
	"github.com/muurk/godotserve/internal/config"
	"github.com/muurk/godotserve/internal/discovery"
	"github.com/muurk/godotserve/internal/livereload"
	"github.com/muurk/godotserve/internal/logging"
	"github.com/muurk/godotserve/internal/version"
	"go.uber.org/zap"
)

// shutdownTimeout bounds how long Serve waits for in-flight requests after ctx is done.
const shutdownTimeout = 10 * time.Second

// Server accepts TLS connections and serves files over HTTP/1.1.
// Everything built by New is read-only afterwards and shared by all connections.
type Server struct {
	config    *config.Config
	tlsConfig *tls.Config
	handler   http.Handler
	reload    *livereload.Hub

	listener     net.Listener
	certCreated  bool
	activeConns  atomic.Int64
	handshakesWG sync.WaitGroup
}

// New provisions the certificate if needed, loads it and prepares the
// request handler. Errors are *StartupError values.
func New(cfg *config.Config) (*Server, error) {
	created, err := certs.Ensure(cfg.TLS.CertPath, cfg.TLS.KeyPath)
	if err != nil {
		return nil, fromCertError(err)
	}

	material, err := certs.Load(cfg.TLS.CertPath, cfg.TLS.KeyPath)
	if err != nil {
		return nil, fromCertError(err)
	}

	// A mismatched pair only fails at handshake time, so startup continues.
	if err := material.Validate(); err != nil {
		logging.Warn("TLS material is inconsistent", zap.String("cert", cfg.TLS.CertPath), zap.Error(err))
	}

	tlsConfig := NewTLSConfig(material)
	logging.Debug("TLS configuration", zap.Any("tls_info", GetTLSInfo(tlsConfig)))

	opts := HandlerOptions{
		Root:            cfg.Site.Root,
		DefaultDocument: cfg.Site.DefaultDocument,
		InjectAudio:     cfg.Site.InjectAudio,
	}

	s := &Server{
		config:      cfg,
		tlsConfig:   tlsConfig,
		certCreated: created,
	}
	if cfg.Site.LiveReload {
		s.reload = livereload.NewHub()
		opts.HeadSnippet = livereload.ClientScript
	}
	s.handler = s.routes(NewHandler(opts))

	return s, nil
}

// CertificateCreated reports whether New generated a new certificate.
func (s *Server) CertificateCreated() bool {
	return s.certCreated
}

// routes reserves the live reload endpoint when enabled; every other path goes to files.
func (s *Server) routes(files http.Handler) http.Handler {
	if s.reload == nil {
		return files
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == livereload.Path {
			s.reload.ServeHTTP(w, r)
			return
		}
		files.ServeHTTP(w, r)
	})
}

// Listen binds the configured address.
func (s *Server) Listen() error {
	listener, err := net.Listen("tcp", s.config.Addr())
	if err != nil {
		return &StartupError{Kind: KindBind, Err: err}
	}
	s.listener = listener

	logging.Info("Server listening for connections",
		zap.String("addr", listener.Addr().String()),
	)
	return nil
}

// Addr returns the bound address, or nil before Listen.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Serve accepts connections until ctx is done. Each connection is handshaken
// in its own goroutine; failures there are logged and never stop the loop.
func (s *Server) Serve(ctx context.Context) error {
	if s.listener == nil {
		return fmt.Errorf("server: Serve called before Listen")
	}

	queue := newConnQueue(s.listener.Addr())
	httpServer := &http.Server{
		Handler:      s.handler,
		ErrorLog:     zap.NewStdLog(logging.GetLogger()),
		TLSNextProto: map[string]func(*http.Server, *tls.Conn, http.Handler){},
		ConnState:    s.trackConn,
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- httpServer.Serve(queue)
	}()

	var background sync.WaitGroup
	if s.reload != nil {
		background.Add(1)
		go func() {
			defer background.Done()
			err := livereload.Watch(ctx, s.config.Site.Root, livereload.DefaultDebounce, func(path string) {
				sent := s.reload.Broadcast()
				logging.Info("Reloading browsers",
					zap.String("changed", path),
					zap.Int("clients", sent),
				)
			})
			if err != nil {
				logging.Warn("Live reload disabled", zap.Error(err))
			}
		}()
	}

	if s.config.Discovery.MDNS {
		port := s.listener.Addr().(*net.TCPAddr).Port
		adv, err := discovery.Advertise(s.config.Discovery.InstanceName, port, version.Version)
		if err != nil {
			logging.Warn("mDNS advertisement failed", zap.Error(err))
		} else {
			defer adv.Shutdown()
		}
	}

	go func() {
		<-ctx.Done()
		_ = s.listener.Close()
	}()

	s.acceptConnections(ctx, queue)

	logging.Info("Shutting down server...")
	s.handshakesWG.Wait()
	_ = queue.Close()
	if s.reload != nil {
		s.reload.Close()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logging.Warn("Shutdown timeout, forcing close", zap.Error(err))
		_ = httpServer.Close()
	}
	background.Wait()
	logging.Sync()

	if err := <-serveErr; err != nil && !errors.Is(err, http.ErrServerClosed) && !errors.Is(err, net.ErrClosed) {
		return err
	}
	return nil
}

// acceptConnections runs until the listener is closed.
func (s *Server) acceptConnections(ctx context.Context, queue *connQueue) {
	var backoff time.Duration
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return
			}
			if backoff == 0 {
				backoff = 5 * time.Millisecond
			} else if backoff < time.Second {
				backoff *= 2
			}
			logging.Error("Failed to accept connection", zap.Error(err), zap.Duration("retry_in", backoff))
			time.Sleep(backoff)
			continue
		}
		backoff = 0

		s.handshakesWG.Add(1)
		go func() {
			defer s.handshakesWG.Done()
			s.handshake(ctx, conn, queue)
		}()
	}
}

// handshake completes TLS on conn and passes it to the HTTP server.
func (s *Server) handshake(ctx context.Context, conn net.Conn, queue *connQueue) {
	remoteAddr := conn.RemoteAddr().String()
	logging.LogConnection(remoteAddr, "connection_accepted")

	if timeout := s.config.Listen.HandshakeTimeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(timeout)*time.Second)
		defer cancel()
	}

	tlsConn := tls.Server(conn, s.tlsConfig)
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		logging.Error("TLS handshake failed",
			zap.String("remote_addr", remoteAddr),
			zap.Error(err),
		)
		_ = conn.Close()
		return
	}
	logging.LogTLSHandshake(remoteAddr, tlsConn.ConnectionState())

	if !queue.push(tlsConn) {
		_ = tlsConn.Close()
	}
}

func (s *Server) trackConn(conn net.Conn, state http.ConnState) {
	switch state {
	case http.StateNew:
		s.activeConns.Add(1)
	case http.StateClosed, http.StateHijacked:
		s.activeConns.Add(-1)
		logging.LogConnection(conn.RemoteAddr().String(), "connection_closed")
	}
}

// ActiveConnections returns the number of connections currently held by the HTTP server.
func (s *Server) ActiveConnections() int {
	return int(s.activeConns.Load())
}
