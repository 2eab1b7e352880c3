// Package transport provides Unix domain socket listeners and connections
// for the server, with a portable net-based backend and two io_uring
// backends.
package transport

import (
	stderrors "errors"
	"net"
	"time"

	"golang.org/x/sys/unix"
)

// Conn is a single accepted connection. It is owned exclusively by one
// connection handler for its entire lifetime.
type Conn interface {
	// Read receives data from the connection
	// Returns the number of bytes read
	Read(buf []byte) (int, error)

	// Write sends data over the connection
	// Returns the number of bytes written
	Write(buf []byte) (int, error)

	// Close closes the connection
	Close() error
}

// DeadlineConn is implemented by connections that support read deadlines.
// The io_uring backends do not.
type DeadlineConn interface {
	Conn
	SetReadDeadline(t time.Time) error
}

// Listener accepts connections on a Unix domain socket.
type Listener interface {
	// Accept blocks until a connection arrives
	Accept() (Conn, error)

	// Close closes the listening socket and removes the socket file
	Close() error

	// Path returns the filesystem path of the socket
	Path() string
}

// IsClosed reports whether err resulted from the listener or connection
// being closed locally (during shutdown).
func IsClosed(err error) bool {
	return stderrors.Is(err, net.ErrClosed) || stderrors.Is(err, unix.EBADF)
}

// IsTimeout reports whether err is a read deadline expiry.
func IsTimeout(err error) bool {
	var netErr net.Error
	return stderrors.As(err, &netErr) && netErr.Timeout()
}
