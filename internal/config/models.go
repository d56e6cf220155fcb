package config

// Config is the complete server configuration. Every field is optional in the
// YAML file; missing fields keep the values from Default.
type Config struct {
	Version int `yaml:"version"`

	Listen    Listen    `yaml:"listen"`
	TLS       TLS       `yaml:"tls"`
	Site      Site      `yaml:"site"`
	Logging   Logging   `yaml:"logging"`
	Discovery Discovery `yaml:"discovery"`
}

// Listen controls the TCP listener.
type Listen struct {
	Host string `yaml:"host"` // Empty = all interfaces
	Port int    `yaml:"port"`
	// HandshakeTimeout in seconds; 0 disables the timeout
	HandshakeTimeout int `yaml:"handshake_timeout"`
}

// TLS points at the certificate pair, generated on first run if missing.
type TLS struct {
	CertPath string `yaml:"cert"`
	KeyPath  string `yaml:"key"`
}

// Site describes what is served.
type Site struct {
	Root            string `yaml:"root"`             // Directory request paths are resolved against
	DefaultDocument string `yaml:"default_document"` // Served for "/"
	InjectAudio     bool   `yaml:"inject_audio"`     // Insert the audio script into HTML pages
	LiveReload      bool   `yaml:"live_reload"`      // Reload browsers when files under Root change
}

// Logging selects the log level.
type Logging struct {
	Level string `yaml:"level"`
}

// Discovery controls mDNS advertisement of the server.
type Discovery struct {
	MDNS         bool   `yaml:"mdns"`
	InstanceName string `yaml:"instance_name"`
}
