package transport

import (
	"os"
	"syscall"

	"github.com/iceber/iouring-go"
	"golang.org/x/sys/unix"

	"github.com/nczempin/httpd-go-uring/errors"
)

const (
	acceptBacklog   = 128
	uringQueueDepth = 32
)

// rawUnixListener owns the listening socket fd shared by the io_uring
// backends. Accepts are plain blocking syscalls; only per-connection I/O
// goes through io_uring.
type rawUnixListener struct {
	fd   int
	path string
}

func listenRawUnix(path string) (*rawUnixListener, error) {
	if _, err := os.Stat(path); err == nil {
		os.Remove(path)
	}

	fd, err := unix.Socket(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		return nil, errors.NewTransportError(
			errors.TransportErrorSocketCreateFailure,
			"failed to create socket",
			err,
		)
	}

	if err := unix.Bind(fd, &unix.SockaddrUnix{Name: path}); err != nil {
		unix.Close(fd)
		return nil, errors.NewTransportError(
			errors.TransportErrorSocketBindFailure,
			"failed to bind unix socket at "+path,
			err,
		)
	}

	if err := unix.Listen(fd, acceptBacklog); err != nil {
		unix.Close(fd)
		return nil, errors.NewTransportError(
			errors.TransportErrorSocketBindFailure,
			"failed to listen on unix socket",
			err,
		)
	}

	return &rawUnixListener{fd: fd, path: path}, nil
}

func (l *rawUnixListener) acceptFd() (int, error) {
	nfd, _, err := unix.Accept(l.fd)
	if err != nil {
		return -1, errors.NewTransportError(
			errors.TransportErrorAcceptFailure,
			"accept failed",
			err,
		)
	}
	return nfd, nil
}

// Close closes the listening socket and removes the socket file
func (l *rawUnixListener) Close() error {
	err := unix.Close(l.fd)
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
func (l *rawUnixListener) Path() string {
	return l.path
}

// UringListener implements Listener, wrapping each accepted fd in a
// UringConn backed by iceber/iouring-go.
type UringListener struct {
	*rawUnixListener
}

// ListenUring binds a Unix domain socket at path for the io_uring backend
func ListenUring(path string) (*UringListener, error) {
	raw, err := listenRawUnix(path)
	if err != nil {
		return nil, err
	}
	return &UringListener{rawUnixListener: raw}, nil
}

// Accept blocks until a connection arrives
func (l *UringListener) Accept() (Conn, error) {
	fd, err := l.acceptFd()
	if err != nil {
		return nil, err
	}

	conn, err := newUringConn(fd)
	if err != nil {
		unix.Close(fd)
		return nil, err
	}
	return conn, nil
}

// UringConn implements Conn over an accepted fd using io_uring for
// per-connection reads and writes. Each connection gets its own ring.
type UringConn struct {
	iour   *iouring.IOURing
	fd     int
	closed bool
}

func newUringConn(fd int) (*UringConn, error) {
	iour, err := iouring.New(uringQueueDepth)
	if err != nil {
		return nil, errors.NewTransportError(
			errors.TransportErrorIoUringInit,
			"failed to initialize io_uring",
			err,
		)
	}

	return &UringConn{
		iour: iour,
		fd:   fd,
	}, nil
}

// Read receives data from the connection using io_uring
func (c *UringConn) Read(buf []byte) (int, error) {
	if c.closed {
		return 0, errors.NewTransportError(
			errors.TransportErrorConnectionClosed,
			"connection closed",
			nil,
		)
	}

	ch := make(chan iouring.Result, 1)
	prepReq := iouring.Recv(c.fd, buf, 0)
	req, err := c.iour.SubmitRequest(prepReq, ch)
	if err != nil {
		return 0, errors.NewTransportError(
			errors.TransportErrorIoUringSubmit,
			"failed to submit read request",
			err,
		)
	}

	// Recv installs no result resolver, so the raw CQE result is the only
	// way to get the byte count; a negative result is a negated errno.
	<-ch
	n, err := req.GetRes()
	if err != nil {
		return 0, errors.NewTransportError(
			errors.TransportErrorSocketReadFailure,
			"read failed",
			err,
		)
	}
	if n < 0 {
		return 0, errors.NewTransportError(
			errors.TransportErrorSocketReadFailure,
			"read failed",
			syscall.Errno(-n),
		)
	}

	if n == 0 && len(buf) > 0 {
		return 0, errors.NewTransportError(
			errors.TransportErrorConnectionClosed,
			"connection closed by peer",
			nil,
		)
	}

	return n, nil
}

// Write sends data over the connection using io_uring
func (c *UringConn) Write(buf []byte) (int, error) {
	if c.closed {
		return 0, errors.NewTransportError(
			errors.TransportErrorConnectionClosed,
			"connection closed",
			nil,
		)
	}

	totalWritten := 0
	for totalWritten < len(buf) {
		ch := make(chan iouring.Result, 1)
		prepReq := iouring.Send(c.fd, buf[totalWritten:], 0)
		req, err := c.iour.SubmitRequest(prepReq, ch)
		if err != nil {
			return totalWritten, errors.NewTransportError(
				errors.TransportErrorIoUringSubmit,
				"failed to submit write request",
				err,
			)
		}

		<-ch
		n, err := req.GetRes()
		if err != nil {
			return totalWritten, errors.NewTransportError(
				errors.TransportErrorSocketWriteFailure,
				"write failed",
				err,
			)
		}
		if n < 0 {
			return totalWritten, errors.NewTransportError(
				errors.TransportErrorSocketWriteFailure,
				"write failed",
				syscall.Errno(-n),
			)
		}

		if n == 0 {
			return totalWritten, errors.NewTransportError(
				errors.TransportErrorConnectionClosed,
				"connection closed during write",
				nil,
			)
		}

		totalWritten += n
	}

	return totalWritten, nil
}

// Close closes the connection and releases its ring
func (c *UringConn) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true

	err := unix.Close(c.fd)
	c.fd = -1
	if c.iour != nil {
		c.iour.Close()
		c.iour = nil
	}

	if err != nil {
		return errors.NewTransportError(
			errors.TransportErrorConnectionClosed,
			"failed to close socket",
			err,
		)
	}
	return nil
}
