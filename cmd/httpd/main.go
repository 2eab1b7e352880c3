// Command httpd serves static files over HTTP on a Unix domain socket.
//
// The socket path may be given as the first positional argument, keeping
// compatibility with `httpd /tmp/site.sock`; flags and a TOML config file
// cover the rest.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"

	"github.com/nczempin/httpd-go-uring/config"
	"github.com/nczempin/httpd-go-uring/resolver"
	"github.com/nczempin/httpd-go-uring/server"
	"github.com/nczempin/httpd-go-uring/transport"
)

func main() {
	configPath := flag.String("config", "", "path to a TOML config file")
	socketPath := flag.String("socket", "", "unix socket path")
	root := flag.String("root", "", "static file directory")
	transportName := flag.String("transport", "", "I/O backend: net, uring or uring2")
	maxRequestBytes := flag.Int("max-request-bytes", 0, "maximum request head size")
	idleTimeout := flag.Duration("idle-timeout", 0, "close kept-alive connections idle this long (0 disables)")
	logLevel := flag.String("log-level", "", "log level: debug, info, warn, error")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		cfg = loaded
	}

	if *socketPath != "" {
		cfg.SocketPath = *socketPath
	}
	if *root != "" {
		cfg.Root = *root
	}
	if *transportName != "" {
		cfg.Transport = *transportName
	}
	if *maxRequestBytes > 0 {
		cfg.MaxRequestBytes = *maxRequestBytes
	}
	if *idleTimeout > 0 {
		cfg.IdleTimeout = config.Duration{Duration: *idleTimeout}
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if flag.NArg() > 0 {
		cfg.SocketPath = flag.Arg(0)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(level).
		With().Timestamp().Logger()

	// Bind failure is fatal; there is no fallback socket.
	listener, err := listen(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("socket", cfg.SocketPath).Msg("failed to bind socket")
	}

	color.Green("serving %s/ on %s (%s transport)", cfg.Root, cfg.SocketPath, cfg.Transport)

	srv := server.New(listener, resolver.New(cfg.Root), server.Options{
		MaxRequestBytes: cfg.MaxRequestBytes,
		IdleTimeout:     cfg.IdleTimeout.Duration,
		Logger:          log,
	})

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info().Str("signal", sig.String()).Msg("shutting down")
		listener.Close()
	}()

	if err := srv.Serve(); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}

func listen(cfg config.Config) (transport.Listener, error) {
	switch cfg.Transport {
	case config.TransportUring:
		return transport.ListenUring(cfg.SocketPath)
	case config.TransportUringV2:
		return transport.ListenUringV2(cfg.SocketPath)
	default:
		return transport.ListenUnix(cfg.SocketPath)
	}
}
