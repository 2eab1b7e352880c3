package protocol

import (
	"fmt"
	"os"

	"github.com/nczempin/httpd-go-uring/mimetype"
)

const notFoundBody = "<h1>404 Not Found</h1>"

// Response represents an HTTP response in its wire form: status line,
// header block (terminated by the blank line) and body. The header block
// always carries Content-Length matching the body and Content-Type.
type Response struct {
	StatusLine string
	Headers    string
	Body       []byte
}

// NewFileResponse reads the file at fullPath and frames a 200 response with
// its contents. A read failure after the resolver confirmed existence
// (permissions, a race with deletion) degrades to the 404 response rather
// than surfacing an I/O error to the client.
func NewFileResponse(fullPath string) *Response {
	contents, err := os.ReadFile(fullPath)
	if err != nil {
		return NewNotFoundResponse()
	}

	return &Response{
		StatusLine: "HTTP/1.1 200 OK\r\n",
		Headers: fmt.Sprintf(
			"Content-Length: %d\r\nContent-Type: %s\r\n\r\n",
			len(contents),
			mimetype.ForPath(fullPath),
		),
		Body: contents,
	}
}

// NewNotFoundResponse frames the fixed 404 response.
func NewNotFoundResponse() *Response {
	return &Response{
		StatusLine: "HTTP/1.1 404 Not Found\r\n",
		Headers: fmt.Sprintf(
			"Content-Length: %d\r\nContent-Type: text/html\r\n\r\n",
			len(notFoundBody),
		),
		Body: []byte(notFoundBody),
	}
}

// SetConnection prepends the Connection header reflecting the server's
// keep-alive decision, so the client can observe it.
func (r *Response) SetConnection(keepAlive bool) {
	connection := "Connection: close\r\n"
	if keepAlive {
		connection = "Connection: keep-alive\r\n"
	}
	r.Headers = connection + r.Headers
}

// Status returns the reason portion of the status line ("200 OK",
// "404 Not Found") for logging.
func (r *Response) Status() string {
	status := r.StatusLine
	if len(status) > len("HTTP/1.1 ") {
		status = status[len("HTTP/1.1 "):]
	}
	for len(status) > 0 && (status[len(status)-1] == '\r' || status[len(status)-1] == '\n') {
		status = status[:len(status)-1]
	}
	return status
}
