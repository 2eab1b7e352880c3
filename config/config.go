// Package config holds server configuration with optional TOML file loading.
package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

// Transport backend names accepted in configuration.
const (
	TransportNet     = "net"
	TransportUring   = "uring"
	TransportUringV2 = "uring2"
)

// Duration wraps time.Duration so it can be written as "30s" in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler for TOML decoding
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

// Config is the full server configuration. Precedence is defaults, then a
// TOML file, then flags, then the positional socket-path argument.
type Config struct {
	// SocketPath is where the Unix domain socket is bound
	SocketPath string `toml:"socket_path"`

	// Root is the static file directory served by the resolver
	Root string `toml:"root"`

	// Transport selects the I/O backend: net, uring or uring2
	Transport string `toml:"transport"`

	// MaxRequestBytes bounds the accumulated request head; requests whose
	// head exceeds it are rejected, not truncated
	MaxRequestBytes int `toml:"max_request_bytes"`

	// IdleTimeout bounds how long a kept-alive connection may sit idle
	// between requests. Zero disables the timeout entirely; only the net
	// transport honors a nonzero value.
	IdleTimeout Duration `toml:"idle_timeout"`

	// LogLevel is a zerolog level name (debug, info, warn, error)
	LogLevel string `toml:"log_level"`
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		SocketPath:      "/tmp/httpd.sock",
		Root:            "static",
		Transport:       TransportNet,
		MaxRequestBytes: 8192,
		LogLevel:        "info",
	}
}

// Load decodes the TOML file at path over the defaults. Keys absent from
// the file keep their default values.
func Load(path string) (Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("loading config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks fields whose bad values would only surface at runtime
func (c Config) Validate() error {
	switch c.Transport {
	case TransportNet, TransportUring, TransportUringV2:
	default:
		return fmt.Errorf("unknown transport %q", c.Transport)
	}
	if c.MaxRequestBytes <= 0 {
		return fmt.Errorf("max_request_bytes must be positive, got %d", c.MaxRequestBytes)
	}
	if c.SocketPath == "" {
		return fmt.Errorf("socket_path must not be empty")
	}
	return nil
}
