// Package server runs the accept loop and per-connection request handling.
package server

import (
	"bytes"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nczempin/httpd-go-uring/errors"
	"github.com/nczempin/httpd-go-uring/protocol"
	"github.com/nczempin/httpd-go-uring/resolver"
	"github.com/nczempin/httpd-go-uring/transport"
)

const (
	readChunkSize          = 1024
	defaultMaxRequestBytes = 8192
)

var headerTerminator = []byte("\r\n\r\n")

// Options tunes per-connection behavior.
type Options struct {
	// MaxRequestBytes bounds the accumulated request head. A head that
	// grows past it is rejected explicitly rather than truncated.
	MaxRequestBytes int

	// IdleTimeout bounds how long a connection may sit idle waiting for a
	// request. Zero disables it.
	IdleTimeout time.Duration

	// Logger is the base logger; each connection derives a sublogger
	// carrying its conn_id.
	Logger zerolog.Logger
}

// Server accepts connections from a Listener and serves static files
// resolved against a Resolver. Connections share no mutable state.
type Server struct {
	listener        transport.Listener
	resolver        *resolver.Resolver
	log             zerolog.Logger
	maxRequestBytes int
	idleTimeout     time.Duration
}

// New creates a Server around an already-bound listener.
func New(listener transport.Listener, res *resolver.Resolver, opts Options) *Server {
	maxRequestBytes := opts.MaxRequestBytes
	if maxRequestBytes <= 0 {
		maxRequestBytes = defaultMaxRequestBytes
	}

	return &Server{
		listener:        listener,
		resolver:        res,
		log:             opts.Logger,
		maxRequestBytes: maxRequestBytes,
		idleTimeout:     opts.IdleTimeout,
	}
}

// Serve runs the accept loop, dispatching each connection to its own
// goroutine. It returns nil once the listener is closed; transient accept
// failures are logged and the loop continues.
func (s *Server) Serve() error {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if transport.IsClosed(err) {
				return nil
			}
			s.log.Error().Err(err).Msg("accept failed")
			continue
		}

		go s.handleConnection(conn)
	}
}

// handleConnection owns one accepted connection: read a request head, parse,
// resolve, respond, then loop while the keep-alive decision holds.
func (s *Server) handleConnection(conn transport.Conn) {
	defer conn.Close()

	log := s.log.With().Str("conn_id", uuid.NewString()).Logger()
	log.Debug().Msg("connection accepted")

	for {
		raw, err := s.readRequestHead(conn)
		if err != nil {
			s.logReadFailure(log, err)
			return
		}

		req, err := protocol.ParseRequest(raw)
		if err != nil {
			// Unparseable requests are dropped without a response; only
			// the operator hears about them.
			log.Warn().Err(err).Msg("rejecting request")
			return
		}

		keepAlive := req.KeepAlive()

		var resp *protocol.Response
		fullPath, err := s.resolver.Resolve(req.Path)
		if err != nil {
			if errors.IsPathTraversal(err) {
				log.Warn().Str("path", req.Path).Msg("rejected path traversal")
			}
			resp = protocol.NewNotFoundResponse()
		} else {
			resp = protocol.NewFileResponse(fullPath)
		}
		resp.SetConnection(keepAlive)

		if err := s.writeResponse(conn, resp, log); err != nil {
			return
		}

		log.Debug().
			Str("method", req.Method).
			Str("path", "/"+req.Path).
			Str("status", resp.Status()).
			Int("bytes", len(resp.Body)).
			Msg("served request")

		if !keepAlive {
			return
		}
	}
}

// readRequestHead accumulates reads until the blank line ending the request
// head is seen, bounded by maxRequestBytes.
func (s *Server) readRequestHead(conn transport.Conn) ([]byte, error) {
	deadlineConn, hasDeadline := conn.(transport.DeadlineConn)

	var head []byte
	chunk := make([]byte, readChunkSize)

	for {
		if hasDeadline && s.idleTimeout > 0 {
			deadlineConn.SetReadDeadline(time.Now().Add(s.idleTimeout))
		}

		n, err := conn.Read(chunk)
		if err != nil {
			return nil, err
		}
		head = append(head, chunk[:n]...)

		if bytes.Contains(head, headerTerminator) {
			return head, nil
		}

		if len(head) >= s.maxRequestBytes {
			return nil, errors.NewProtocolError(
				errors.ProtocolErrorRequestTooLarge,
				fmt.Sprintf("request head exceeds %d bytes", s.maxRequestBytes),
			)
		}
	}
}

// writeResponse performs the three ordered writes. A failed status-line or
// header write aborts the connection; a failed body write still counts as a
// sent response.
func (s *Server) writeResponse(conn transport.Conn, resp *protocol.Response, log zerolog.Logger) error {
	if _, err := conn.Write([]byte(resp.StatusLine)); err != nil {
		log.Error().Err(err).Msg("failed to write status line")
		return err
	}

	if _, err := conn.Write([]byte(resp.Headers)); err != nil {
		log.Error().Err(err).Msg("failed to write headers")
		return err
	}

	if _, err := conn.Write(resp.Body); err != nil {
		log.Warn().Err(err).Msg("failed to write body")
	}
	return nil
}

func (s *Server) logReadFailure(log zerolog.Logger, err error) {
	switch {
	case errors.IsConnectionClosed(err):
		log.Debug().Msg("peer closed connection")
	case transport.IsTimeout(err):
		log.Debug().Msg("idle timeout")
	case errors.IsRequestTooLarge(err):
		log.Warn().Err(err).Msg("rejecting oversized request")
	default:
		log.Error().Err(err).Msg("read failed")
	}
}
