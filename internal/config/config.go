package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

const (
	// FileName is looked up in the working directory when no path is given.
	FileName = "godotserve.yaml"

	DefaultPort             = 8443
	DefaultCertPath         = "cert.pem"
	DefaultKeyPath          = "key.pem"
	DefaultRoot             = "."
	DefaultDocument         = "index.html"
	DefaultMDNSInstanceName = "godotserve"

	currentVersion = 1
)

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Version: currentVersion,
		Listen: Listen{
			Port: DefaultPort,
		},
		TLS: TLS{
			CertPath: DefaultCertPath,
			KeyPath:  DefaultKeyPath,
		},
		Site: Site{
			Root:            DefaultRoot,
			DefaultDocument: DefaultDocument,
			InjectAudio:     true,
		},
		Discovery: Discovery{
			InstanceName: DefaultMDNSInstanceName,
		},
	}
}

// Load reads the configuration at path on top of Default. An empty path means
// FileName in the working directory, which may be absent. An explicit path
// must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = FileName
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks field ranges.
func (c *Config) Validate() error {
	if c.Version != currentVersion {
		return fmt.Errorf("unsupported config version: %d (expected %d)", c.Version, currentVersion)
	}
	if c.Listen.Port < 0 || c.Listen.Port > 65535 {
		return fmt.Errorf("listen.port out of range: %d", c.Listen.Port)
	}
	if c.Listen.HandshakeTimeout < 0 {
		return fmt.Errorf("listen.handshake_timeout must not be negative")
	}
	if c.TLS.CertPath == "" || c.TLS.KeyPath == "" {
		return fmt.Errorf("tls.cert and tls.key must both be set")
	}
	if c.Site.Root == "" {
		return fmt.Errorf("site.root must be set")
	}
	if c.Site.DefaultDocument == "" {
		return fmt.Errorf("site.default_document must be set")
	}
	return nil
}

// Addr is the host:port the server binds.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Listen.Host, strconv.Itoa(c.Listen.Port))
}

// Marshal renders the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	header := []byte("# godotserve configuration\n# Every field is optional; omitted fields use the built-in defaults.\n\n")
	return append(header, data...), nil
}

// WriteDefault writes the default configuration to path, refusing to replace
// an existing file.
func WriteDefault(path string) error {
	if path == "" {
		path = FileName
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}

	data, err := Default().Marshal()
	if err != nil {
		return err
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temporary config file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to save config file: %w", err)
	}
	return nil
}
