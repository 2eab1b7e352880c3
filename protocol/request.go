// Package protocol implements HTTP/1.x request parsing and response framing
// for the static file server.
package protocol

import (
	"strings"

	"github.com/nczempin/httpd-go-uring/errors"
)

// Header represents an HTTP header key-value pair
type Header struct {
	Key   string
	Value string
}

// Request represents a parsed HTTP request
type Request struct {
	Method  string
	Path    string // URL path with the leading '/' stripped
	Version string
	Headers []Header
}

// Header returns the value of the first header matching key
// (case-insensitive), or "" if absent.
func (r *Request) Header(key string) string {
	for _, h := range r.Headers {
		if strings.EqualFold(h.Key, key) {
			return h.Value
		}
	}
	return ""
}

// KeepAlive reports whether the connection should stay open after the
// response: either the request declares Connection: keep-alive, or it is
// HTTP/1.1 and does not declare Connection: close.
func (r *Request) KeepAlive() bool {
	connection := strings.ToLower(r.Header("Connection"))
	if connection == "keep-alive" {
		return true
	}
	return r.Version == "HTTP/1.1" && connection != "close"
}

// ParseRequest parses the raw bytes of a request head. The buffer is decoded
// as UTF-8 with invalid sequences replaced, then the first line is
// tokenized into method, path and version. Only GET with HTTP/1.0 or
// HTTP/1.1 is accepted. Header lines after the request line are retained;
// the server only ever interprets Connection.
func ParseRequest(raw []byte) (*Request, error) {
	decoded := strings.ToValidUTF8(string(raw), "�")
	if decoded == "" {
		return nil, errors.NewProtocolError(
			errors.ProtocolErrorMalformedRequest,
			"no request line",
		)
	}

	lines := strings.Split(decoded, "\n")

	// Missing tokens default rather than fail: the version check below
	// rejects short request lines anyway.
	method, path, version := "", "/", ""
	fields := strings.Fields(lines[0])
	if len(fields) > 0 {
		method = fields[0]
	}
	if len(fields) > 1 {
		path = fields[1]
	}
	if len(fields) > 2 {
		version = fields[2]
	}

	if version != "HTTP/1.0" && version != "HTTP/1.1" {
		return nil, errors.NewProtocolError(
			errors.ProtocolErrorUnsupportedVersion,
			"unsupported HTTP version: "+version,
		)
	}

	if method != "GET" {
		return nil, errors.NewProtocolError(
			errors.ProtocolErrorUnsupportedMethod,
			"unsupported HTTP method: "+method,
		)
	}

	req := &Request{
		Method:  method,
		Path:    strings.TrimPrefix(path, "/"),
		Version: version,
	}

	for _, line := range lines[1:] {
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			break
		}

		parts := strings.SplitN(line, ":", 2)
		if len(parts) == 2 {
			req.Headers = append(req.Headers, Header{
				Key:   parts[0],
				Value: strings.TrimSpace(parts[1]),
			})
		}
	}

	return req, nil
}
