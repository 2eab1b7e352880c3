package protocol

import (
	"testing"

	"github.com/nczempin/httpd-go-uring/errors"
)

func TestParseRequest_Simple(t *testing.T) {
	req, err := ParseRequest([]byte("GET /index.html HTTP/1.1\r\nHost: localhost\r\n\r\n"))
	if err != nil {
		t.Fatalf("ParseRequest failed: %v", err)
	}

	if req.Method != "GET" {
		t.Errorf("Method = %q, want GET", req.Method)
	}
	if req.Path != "index.html" {
		t.Errorf("Path = %q, want index.html (leading slash stripped)", req.Path)
	}
	if req.Version != "HTTP/1.1" {
		t.Errorf("Version = %q, want HTTP/1.1", req.Version)
	}
	if req.Header("Host") != "localhost" {
		t.Errorf("Host header = %q, want localhost", req.Header("Host"))
	}
}

func TestParseRequest_RootPath(t *testing.T) {
	req, err := ParseRequest([]byte("GET / HTTP/1.0\r\n\r\n"))
	if err != nil {
		t.Fatalf("ParseRequest failed: %v", err)
	}
	if req.Path != "" {
		t.Errorf("Path = %q, want empty", req.Path)
	}
}

func TestParseRequest_Empty(t *testing.T) {
	_, err := ParseRequest(nil)
	if err == nil {
		t.Fatal("Expected error for empty request")
	}

	httpErr, ok := err.(*errors.HttpError)
	if !ok || httpErr.ProtocolErr != errors.ProtocolErrorMalformedRequest {
		t.Errorf("Expected malformed request error, got %v", err)
	}
}

func TestParseRequest_UnsupportedVersion(t *testing.T) {
	inputs := []string{
		"GET / HTTP/2\r\n\r\n",
		"GET / HTTP/0.9\r\n\r\n",
		"GET /\r\n\r\n",   // version token missing entirely
		"garbage\r\n\r\n", // single token line
		"\r\n\r\n",        // blank request line
	}

	for _, input := range inputs {
		_, err := ParseRequest([]byte(input))
		if err == nil {
			t.Errorf("ParseRequest(%q) should fail", input)
			continue
		}
		httpErr, ok := err.(*errors.HttpError)
		if !ok || httpErr.ProtocolErr != errors.ProtocolErrorUnsupportedVersion {
			t.Errorf("ParseRequest(%q) = %v, want unsupported version", input, err)
		}
	}
}

func TestParseRequest_UnsupportedMethod(t *testing.T) {
	for _, method := range []string{"POST", "HEAD", "DELETE", "get"} {
		_, err := ParseRequest([]byte(method + " / HTTP/1.1\r\n\r\n"))
		if err == nil {
			t.Errorf("ParseRequest with method %q should fail", method)
			continue
		}
		httpErr, ok := err.(*errors.HttpError)
		if !ok || httpErr.ProtocolErr != errors.ProtocolErrorUnsupportedMethod {
			t.Errorf("method %q: got %v, want unsupported method", method, err)
		}
	}
}

func TestParseRequest_InvalidUTF8(t *testing.T) {
	// Invalid bytes are replaced, not rejected; the request line still parses
	raw := []byte("GET /caf\xff.html HTTP/1.1\r\n\r\n")
	req, err := ParseRequest(raw)
	if err != nil {
		t.Fatalf("ParseRequest failed: %v", err)
	}
	if req.Path != "caf�.html" {
		t.Errorf("Path = %q, want lossily decoded path", req.Path)
	}
}

func TestParseRequest_HeaderCaseInsensitive(t *testing.T) {
	req, err := ParseRequest([]byte("GET / HTTP/1.1\r\nconnection: Keep-Alive\r\n\r\n"))
	if err != nil {
		t.Fatalf("ParseRequest failed: %v", err)
	}
	if req.Header("Connection") != "Keep-Alive" {
		t.Errorf("Connection header = %q", req.Header("Connection"))
	}
}

func TestKeepAlive(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		keepAlive bool
	}{
		{"http11 no header", "GET / HTTP/1.1\r\n\r\n", true},
		{"http11 close", "GET / HTTP/1.1\r\nConnection: close\r\n\r\n", false},
		{"http11 keep-alive", "GET / HTTP/1.1\r\nConnection: keep-alive\r\n\r\n", true},
		{"http10 no header", "GET / HTTP/1.0\r\n\r\n", false},
		{"http10 keep-alive", "GET / HTTP/1.0\r\nConnection: keep-alive\r\n\r\n", true},
		{"http10 mixed case", "GET / HTTP/1.0\r\nConnection: Keep-Alive\r\n\r\n", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := ParseRequest([]byte(tt.raw))
			if err != nil {
				t.Fatalf("ParseRequest failed: %v", err)
			}
			if got := req.KeepAlive(); got != tt.keepAlive {
				t.Errorf("KeepAlive() = %v, want %v", got, tt.keepAlive)
			}
		})
	}
}
