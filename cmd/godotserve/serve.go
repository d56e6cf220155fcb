package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/muurk/godotserve/internal/config"
	"github.com/muurk/godotserve/internal/logging"
	"github.com/muurk/godotserve/internal/server"
	"github.com/muurk/godotserve/internal/ui"
)

// Serve command flags
var (
	serveRoot       string
	serveHost       string
	servePort       int
	serveCert       string
	serveKey        string
	serveNoInject   bool
	serveLiveReload bool
	serveMDNS       bool
	serveHandshake  int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTPS server",
	Long: `Serve a Godot web export over HTTPS.

On first run a self-signed certificate for localhost and 127.0.0.1 is written
to cert.pem and key.pem. Later runs reuse it until the files are deleted.

Every response carries Cross-Origin-Opener-Policy and Cross-Origin-Embedder-Policy
so the page is cross-origin isolated. HTML pages get an audio bootstrap script;
open the page with ?audio=legacy to skip the AudioWorklet path.`,
	Example: `  # Serve the current directory on https://localhost:8443
  godotserve serve

  # Serve an export directory on another port
  godotserve serve --root build/web --port 9443

  # Reload the browser whenever the export changes
  godotserve serve --root build/web --live-reload

  # Use an existing certificate
  godotserve serve --cert /etc/ssl/dev.pem --key /etc/ssl/dev-key.pem`,
	RunE: runServe,
}

func init() {
	flags := serveCmd.Flags()
	flags.StringVar(&serveRoot, "root", config.DefaultRoot, "Directory to serve")
	flags.StringVar(&serveHost, "host", "", "Interface to listen on (empty = all interfaces)")
	flags.IntVar(&servePort, "port", config.DefaultPort, "Port to listen on")
	flags.StringVar(&serveCert, "cert", config.DefaultCertPath, "TLS certificate file (generated if missing)")
	flags.StringVar(&serveKey, "key", config.DefaultKeyPath, "TLS private key file (generated if missing)")
	flags.BoolVar(&serveNoInject, "no-inject", false, "Do not insert the audio script into HTML pages")
	flags.BoolVar(&serveLiveReload, "live-reload", false, "Reload connected browsers when files change")
	flags.BoolVar(&serveMDNS, "mdns", false, "Advertise the server on the local network via mDNS")
	flags.IntVar(&serveHandshake, "handshake-timeout", 0, "TLS handshake timeout in seconds (0 = none)")
}

// applyServeFlags overrides config values with flags the user actually set.
func applyServeFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("root") {
		cfg.Site.Root = serveRoot
	}
	if flags.Changed("host") {
		cfg.Listen.Host = serveHost
	}
	if flags.Changed("port") {
		cfg.Listen.Port = servePort
	}
	if flags.Changed("cert") {
		cfg.TLS.CertPath = serveCert
	}
	if flags.Changed("key") {
		cfg.TLS.KeyPath = serveKey
	}
	if flags.Changed("no-inject") {
		cfg.Site.InjectAudio = !serveNoInject
	}
	if flags.Changed("live-reload") {
		cfg.Site.LiveReload = serveLiveReload
	}
	if flags.Changed("mdns") {
		cfg.Discovery.MDNS = serveMDNS
	}
	if flags.Changed("handshake-timeout") {
		cfg.Listen.HandshakeTimeout = serveHandshake
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyServeFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	defer logging.Sync()

	printer := ui.NewPrinter(cmd.OutOrStdout())

	srv, err := server.New(cfg)
	if err != nil {
		printer.PrintError("Server could not start", err, troubleshooting(err, cfg))
		return err
	}

	if err := srv.Listen(); err != nil {
		printer.PrintError("Server could not start", err, troubleshooting(err, cfg))
		return err
	}

	port := srv.Addr().(*net.TCPAddr).Port
	printer.PrintBanner(ui.BannerInfo{
		URL:                browserURL(cfg.Listen.Host, port),
		Root:               cfg.Site.Root,
		CertPath:           cfg.TLS.CertPath,
		CertificateCreated: srv.CertificateCreated(),
		InjectAudio:        cfg.Site.InjectAudio,
		LiveReload:         cfg.Site.LiveReload,
		MDNS:               cfg.Discovery.MDNS,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.Serve(ctx)
}

// browserURL is the address to open in a browser. Wildcard and loopback
// hosts map to localhost, which the generated certificate covers.
func browserURL(host string, port int) string {
	switch host {
	case "", "0.0.0.0", "::", "127.0.0.1", "::1":
		host = "localhost"
	}
	return "https://" + net.JoinHostPort(host, strconv.Itoa(port))
}

// troubleshooting returns hints for a startup failure.
func troubleshooting(err error, cfg *config.Config) []string {
	switch server.KindOf(err) {
	case server.KindCertificateGeneration:
		return []string{
			"Check that the directories of " + cfg.TLS.CertPath + " and " + cfg.TLS.KeyPath + " are writable",
			"Point --cert and --key at a writable location",
		}
	case server.KindCertificateParse:
		return []string{
			cfg.TLS.CertPath + " must contain at least one PEM CERTIFICATE block",
			"Delete " + cfg.TLS.CertPath + " and " + cfg.TLS.KeyPath + " to generate a new self-signed pair",
		}
	case server.KindKeyParse:
		return []string{
			cfg.TLS.KeyPath + " must be a PEM PKCS8, RSA or EC private key",
			"Delete " + cfg.TLS.CertPath + " and " + cfg.TLS.KeyPath + " to generate a new self-signed pair",
		}
	case server.KindBind:
		return []string{
			fmt.Sprintf("Another process may already use port %d", cfg.Listen.Port),
			"Choose another port with --port",
			"Ports below 1024 need elevated privileges on most systems",
		}
	default:
		return nil
	}
}
