package transport

import (
	stderrors "errors"
	"io"
	"net"
	"os"
	"syscall"
	"time"

	"github.com/nczempin/httpd-go-uring/errors"
)

// UnixListener implements Listener using the net package.
type UnixListener struct {
	listener net.Listener
	path     string
}

// ListenUnix binds a Unix domain socket at path, removing any stale socket
// file left behind by a previous run.
func ListenUnix(path string) (*UnixListener, error) {
	if _, err := os.Stat(path); err == nil {
		os.Remove(path)
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, errors.NewTransportError(
			errors.TransportErrorSocketBindFailure,
			"failed to bind unix socket at "+path,
			err,
		)
	}

	return &UnixListener{listener: listener, path: path}, nil
}

// Accept blocks until a connection arrives and wraps it in a UnixConn
func (l *UnixListener) Accept() (Conn, error) {
	conn, err := l.listener.Accept()
	if err != nil {
		return nil, errors.NewTransportError(
			errors.TransportErrorAcceptFailure,
			"accept failed",
			err,
		)
	}
	return &UnixConn{conn: conn}, nil
}

// Close closes the listening socket and removes the socket file
func (l *UnixListener) Close() error {
	err := l.listener.Close()
	os.Remove(l.path)
	if err != nil {
		return errors.NewTransportError(
			errors.TransportErrorSocketCloseFailure,
			"failed to close listener",
			err,
		)
	}
	return nil
}

// Path returns the filesystem path of the socket
func (l *UnixListener) Path() string {
	return l.path
}

// UnixConn implements Conn over an accepted net.Conn
type UnixConn struct {
	conn net.Conn
}

// Read receives data from the connection
func (c *UnixConn) Read(buf []byte) (int, error) {
	n, err := c.conn.Read(buf)
	if err != nil {
		if stderrors.Is(err, io.EOF) || (n == 0 && len(buf) > 0 && !IsTimeout(err)) {
			return n, errors.NewTransportError(
				errors.TransportErrorConnectionClosed,
				"connection closed by peer",
				err,
			)
		}
		return n, errors.NewTransportError(
			errors.TransportErrorSocketReadFailure,
			"read failed",
			err,
		)
	}
	return n, nil
}

// Write sends data over the connection
func (c *UnixConn) Write(buf []byte) (int, error) {
	n, err := c.conn.Write(buf)
	if err != nil {
		if stderrors.Is(err, syscall.EPIPE) || stderrors.Is(err, syscall.ECONNRESET) {
			return n, errors.NewTransportError(
				errors.TransportErrorConnectionClosed,
				"connection closed during write",
				err,
			)
		}
		return n, errors.NewTransportError(
			errors.TransportErrorSocketWriteFailure,
			"write failed",
			err,
		)
	}
	return n, nil
}

// SetReadDeadline bounds the next Read; used for the idle timeout
func (c *UnixConn) SetReadDeadline(t time.Time) error {
	return c.conn.SetReadDeadline(t)
}

// Close closes the connection
func (c *UnixConn) Close() error {
	return c.conn.Close()
}
