package transport

import (
	"fmt"
	"net"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nczempin/httpd-go-uring/errors"
)

var unixTestCounter uint64

// testSocketPath generates a unique socket path per test
func testSocketPath(t *testing.T) string {
	t.Helper()
	count := atomic.AddUint64(&unixTestCounter, 1)
	return fmt.Sprintf("/tmp/httpd_test_%d_%d.sock", os.Getpid(), count)
}

func TestListenUnix_CreatesSocket(t *testing.T) {
	path := testSocketPath(t)

	listener, err := ListenUnix(path)
	if err != nil {
		t.Fatalf("ListenUnix failed: %v", err)
	}
	defer listener.Close()

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Socket file not created: %v", err)
	}
	if info.Mode()&os.ModeSocket == 0 {
		t.Errorf("Expected socket file, got mode %v", info.Mode())
	}

	if listener.Path() != path {
		t.Errorf("Path() = %q, want %q", listener.Path(), path)
	}
}

func TestListenUnix_RemovesStaleSocket(t *testing.T) {
	path := testSocketPath(t)

	// Leave a stale socket behind, as a crashed previous run would
	stale, err := net.Listen("unix", path)
	if err != nil {
		t.Fatalf("Failed to create stale listener: %v", err)
	}
	stale.(*net.UnixListener).SetUnlinkOnClose(false)
	stale.Close()

	listener, err := ListenUnix(path)
	if err != nil {
		t.Fatalf("ListenUnix over stale socket failed: %v", err)
	}
	listener.Close()
}

func TestListenUnix_BindFailure(t *testing.T) {
	_, err := ListenUnix("/nonexistent-dir/httpd.sock")
	if err == nil {
		t.Fatal("Expected bind failure")
	}

	httpErr, ok := err.(*errors.HttpError)
	if !ok || httpErr.TransportErr != errors.TransportErrorSocketBindFailure {
		t.Errorf("Expected bind failure error, got %v", err)
	}
}

func TestUnixConn_ReadWrite(t *testing.T) {
	path := testSocketPath(t)

	listener, err := ListenUnix(path)
	if err != nil {
		t.Fatalf("ListenUnix failed: %v", err)
	}
	defer listener.Close()

	received := make(chan string, 1)
	go func() {
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		buf := make([]byte, 1024)
		n, err := conn.Read(buf)
		if err != nil {
			return
		}
		received <- string(buf[:n])
		conn.Write([]byte("pong"))
	}()

	client, err := net.Dial("unix", path)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer client.Close()

	if _, err := client.Write([]byte("ping")); err != nil {
		t.Fatalf("Client write failed: %v", err)
	}

	select {
	case msg := <-received:
		if msg != "ping" {
			t.Errorf("Server received %q, want ping", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("Timeout waiting for server read")
	}

	client.SetReadDeadline(time.Now().Add(time.Second))
	buf := make([]byte, 1024)
	n, err := client.Read(buf)
	if err != nil {
		t.Fatalf("Client read failed: %v", err)
	}
	if string(buf[:n]) != "pong" {
		t.Errorf("Client received %q, want pong", buf[:n])
	}
}

func TestUnixConn_PeerCloseIsConnectionClosed(t *testing.T) {
	path := testSocketPath(t)

	listener, err := ListenUnix(path)
	if err != nil {
		t.Fatalf("ListenUnix failed: %v", err)
	}
	defer listener.Close()

	readErr := make(chan error, 1)
	go func() {
		conn, err := listener.Accept()
		if err != nil {
			readErr <- err
			return
		}
		defer conn.Close()

		buf := make([]byte, 1024)
		_, err = conn.Read(buf)
		readErr <- err
	}()

	client, err := net.Dial("unix", path)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	client.Close()

	select {
	case err := <-readErr:
		if !errors.IsConnectionClosed(err) {
			t.Errorf("Expected connection closed error, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Timeout waiting for read error")
	}
}

func TestUnixListener_DoubleCloseIsCloseFailure(t *testing.T) {
	listener, err := ListenUnix(testSocketPath(t))
	if err != nil {
		t.Fatalf("ListenUnix failed: %v", err)
	}

	if err := listener.Close(); err != nil {
		t.Fatalf("First close failed: %v", err)
	}

	err = listener.Close()
	if err == nil {
		t.Fatal("Expected error on second close")
	}

	httpErr, ok := err.(*errors.HttpError)
	if !ok || httpErr.TransportErr != errors.TransportErrorSocketCloseFailure {
		t.Errorf("Expected close failure error, got %v", err)
	}
}

func TestUnixListener_CloseRemovesSocketFile(t *testing.T) {
	path := testSocketPath(t)

	listener, err := ListenUnix(path)
	if err != nil {
		t.Fatalf("ListenUnix failed: %v", err)
	}

	acceptErr := make(chan error, 1)
	go func() {
		_, err := listener.Accept()
		acceptErr <- err
	}()

	time.Sleep(50 * time.Millisecond)
	if err := listener.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("Socket file still present after Close")
	}

	select {
	case err := <-acceptErr:
		if !IsClosed(err) {
			t.Errorf("Expected closed-listener error from Accept, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Timeout waiting for Accept to return")
	}
}
