package transport

import (
	"os"

	"github.com/godzie44/go-uring/uring"
	sysunix "golang.org/x/sys/unix"

	"github.com/nczempin/httpd-go-uring/errors"
)

// UringListenerV2 implements Listener using the godzie44/go-uring binding.
// Kept alongside UringListener so the two io_uring libraries can be
// compared under the same workload.
type UringListenerV2 struct {
	*rawUnixListener
}

// ListenUringV2 binds a Unix domain socket at path for the v2 backend
func ListenUringV2(path string) (*UringListenerV2, error) {
	raw, err := listenRawUnix(path)
	if err != nil {
		return nil, err
	}
	return &UringListenerV2{rawUnixListener: raw}, nil
}

// Accept blocks until a connection arrives
func (l *UringListenerV2) Accept() (Conn, error) {
	fd, err := l.acceptFd()
	if err != nil {
		return nil, err
	}

	conn, err := newUringConnV2(fd)
	if err != nil {
		sysunix.Close(fd)
		return nil, err
	}
	return conn, nil
}

// UringConnV2 implements Conn over an accepted fd using godzie44/go-uring
type UringConnV2 struct {
	ring   *uring.Ring
	fd     int
	file   *os.File
	closed bool
}

func newUringConnV2(fd int) (*UringConnV2, error) {
	ring, err := uring.New(uringQueueDepth)
	if err != nil {
		return nil, errors.NewTransportError(
			errors.TransportErrorIoUringInit,
			"failed to initialize io_uring",
			err,
		)
	}

	return &UringConnV2{
		ring: ring,
		fd:   fd,
		file: os.NewFile(uintptr(fd), "socket"),
	}, nil
}

// Read receives data from the connection using io_uring
func (c *UringConnV2) Read(buf []byte) (int, error) {
	if c.closed {
		return 0, errors.NewTransportError(
			errors.TransportErrorConnectionClosed,
			"connection closed",
			nil,
		)
	}

	sqe := uring.Read(c.file.Fd(), buf, 0)
	if err := c.ring.QueueSQE(sqe, 0, 0); err != nil {
		return 0, errors.NewTransportError(
			errors.TransportErrorIoUringSubmit,
			"failed to queue read request",
			err,
		)
	}

	if _, err := c.ring.Submit(); err != nil {
		return 0, errors.NewTransportError(
			errors.TransportErrorIoUringSubmit,
			"failed to submit read request",
			err,
		)
	}

	cqe, err := c.ring.WaitCQEvents(1)
	if err != nil {
		return 0, errors.NewTransportError(
			errors.TransportErrorSocketReadFailure,
			"failed to wait for read completion",
			err,
		)
	}

	if err := cqe.Error(); err != nil {
		c.ring.SeenCQE(cqe)
		return 0, errors.NewTransportError(
			errors.TransportErrorSocketReadFailure,
			"read operation failed",
			err,
		)
	}

	n := int(cqe.Res)
	c.ring.SeenCQE(cqe)

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
func (c *UringConnV2) Write(buf []byte) (int, error) {
	if c.closed {
		return 0, errors.NewTransportError(
			errors.TransportErrorConnectionClosed,
			"connection closed",
			nil,
		)
	}

	totalWritten := 0
	for totalWritten < len(buf) {
		sqe := uring.Write(c.file.Fd(), buf[totalWritten:], uint64(totalWritten))
		if err := c.ring.QueueSQE(sqe, 0, 0); err != nil {
			return totalWritten, errors.NewTransportError(
				errors.TransportErrorIoUringSubmit,
				"failed to queue write request",
				err,
			)
		}

		if _, err := c.ring.Submit(); err != nil {
			return totalWritten, errors.NewTransportError(
				errors.TransportErrorIoUringSubmit,
				"failed to submit write request",
				err,
			)
		}

		cqe, err := c.ring.WaitCQEvents(1)
		if err != nil {
			return totalWritten, errors.NewTransportError(
				errors.TransportErrorSocketWriteFailure,
				"failed to wait for write completion",
				err,
			)
		}

		if err := cqe.Error(); err != nil {
			c.ring.SeenCQE(cqe)
			return totalWritten, errors.NewTransportError(
				errors.TransportErrorSocketWriteFailure,
				"write operation failed",
				err,
			)
		}

		n := int(cqe.Res)
		c.ring.SeenCQE(cqe)

		if n <= 0 {
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
func (c *UringConnV2) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true

	err := c.file.Close()
	c.fd = -1
	if c.ring != nil {
		c.ring.Close()
		c.ring = nil
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
