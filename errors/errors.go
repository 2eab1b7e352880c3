package errors

import "fmt"

// ErrorType represents the category of error
type ErrorType int

const (
	ErrorNone ErrorType = iota
	ErrorTransport
	ErrorProtocol
	ErrorResolve
	ErrorInvalidArgument
)

// TransportError represents transport-layer specific errors
type TransportError int

const (
	TransportErrorNone TransportError = iota
	TransportErrorSocketCreateFailure
	TransportErrorSocketBindFailure
	TransportErrorAcceptFailure
	TransportErrorSocketCloseFailure
	TransportErrorSocketReadFailure
	TransportErrorSocketWriteFailure
	TransportErrorConnectionClosed
	TransportErrorIoUringInit
	TransportErrorIoUringSubmit
)

// ProtocolError represents request-parsing specific errors
type ProtocolError int

const (
	ProtocolErrorNone ProtocolError = iota
	ProtocolErrorMalformedRequest
	ProtocolErrorUnsupportedVersion
	ProtocolErrorUnsupportedMethod
	ProtocolErrorRequestTooLarge
)

// ResolveError represents path-resolution specific errors
type ResolveError int

const (
	ResolveErrorNone ResolveError = iota
	ResolveErrorPathTraversal
	ResolveErrorNotFound
)

// HttpError is the main error type for the HTTP server
type HttpError struct {
	Type          ErrorType
	TransportErr  TransportError
	ProtocolErr   ProtocolError
	ResolveErr    ResolveError
	Message       string
	UnderlyingErr error
}

// Error implements the error interface
func (e *HttpError) Error() string {
	if e == nil {
		return "no error"
	}

	var typeStr string
	switch e.Type {
	case ErrorTransport:
		typeStr = fmt.Sprintf("Transport error (%d)", e.TransportErr)
	case ErrorProtocol:
		typeStr = fmt.Sprintf("Protocol error (%d)", e.ProtocolErr)
	case ErrorResolve:
		typeStr = fmt.Sprintf("Resolve error (%d)", e.ResolveErr)
	case ErrorInvalidArgument:
		typeStr = "Invalid argument"
	default:
		typeStr = "Unknown error"
	}

	if e.Message != "" {
		typeStr = fmt.Sprintf("%s: %s", typeStr, e.Message)
	}

	if e.UnderlyingErr != nil {
		return fmt.Sprintf("%s (caused by: %v)", typeStr, e.UnderlyingErr)
	}

	return typeStr
}

// Unwrap returns the underlying error for error chain support
func (e *HttpError) Unwrap() error {
	return e.UnderlyingErr
}

// NewTransportError creates a new transport error
func NewTransportError(err TransportError, message string, underlying error) *HttpError {
	return &HttpError{
		Type:          ErrorTransport,
		TransportErr:  err,
		Message:       message,
		UnderlyingErr: underlying,
	}
}

// NewProtocolError creates a new protocol error
func NewProtocolError(err ProtocolError, message string) *HttpError {
	return &HttpError{
		Type:        ErrorProtocol,
		ProtocolErr: err,
		Message:     message,
	}
}

// NewResolveError creates a new resolve error
func NewResolveError(err ResolveError, message string) *HttpError {
	return &HttpError{
		Type:       ErrorResolve,
		ResolveErr: err,
		Message:    message,
	}
}

// NewInvalidArgumentError creates a new invalid argument error
func NewInvalidArgumentError(message string) *HttpError {
	return &HttpError{
		Type:    ErrorInvalidArgument,
		Message: message,
	}
}

// IsConnectionClosed reports whether err is a transport error caused by the
// peer closing the connection.
func IsConnectionClosed(err error) bool {
	httpErr, ok := err.(*HttpError)
	return ok && httpErr.Type == ErrorTransport &&
		httpErr.TransportErr == TransportErrorConnectionClosed
}

// IsRequestTooLarge reports whether err is a protocol error for a request
// head that exceeded the configured bound.
func IsRequestTooLarge(err error) bool {
	httpErr, ok := err.(*HttpError)
	return ok && httpErr.Type == ErrorProtocol &&
		httpErr.ProtocolErr == ProtocolErrorRequestTooLarge
}

// IsNotFound reports whether err is a resolve error for a path with no
// existing candidate file.
func IsNotFound(err error) bool {
	httpErr, ok := err.(*HttpError)
	return ok && httpErr.Type == ErrorResolve &&
		httpErr.ResolveErr == ResolveErrorNotFound
}

// IsPathTraversal reports whether err is a resolve error for a rejected
// ".." path segment.
func IsPathTraversal(err error) bool {
	httpErr, ok := err.(*HttpError)
	return ok && httpErr.Type == ErrorResolve &&
		httpErr.ResolveErr == ResolveErrorPathTraversal
}
