package duckclient

import (
	"fmt"
	"io"
	"net"

	"github.com/pkg/errors"
)

// Errors returned by the client, its pumps and transports.
var (
	// ErrConnectionClosed is returned when operating on a stopped client or transport.
	ErrConnectionClosed = errors.New("connection closed")
	// ErrFrameTooLarge is returned when a frame exceeds the configured maximum size.
	ErrFrameTooLarge = errors.New("frame too large")
	// ErrInvalidCodec is returned when a nil codec is configured.
	ErrInvalidCodec = errors.New("invalid codec")
	// ErrInvalidFraming is returned for an unsupported framing mode.
	ErrInvalidFraming = errors.New("invalid framing")
	// ErrSessionEnded is returned by the transmit pump after it sent a Deconnection.
	ErrSessionEnded = errors.New("session ended")
)

// ProtocolError reports a frame that could not be decoded. It is always
// recoverable: the offending frame is dropped and processing continues.
type ProtocolError struct {
	// Payload is the raw frame.
	Payload []byte
	// Field is the index of the field that failed, the tag being field 0.
	Field int
	Err   error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("protocol: field %d of %q: %v", e.Field, e.Payload, e.Err)
}

func (e *ProtocolError) Unwrap() error { return e.Err }

// Cause supports errors.Cause from github.com/pkg/errors.
func (e *ProtocolError) Cause() error { return e.Err }

func protocolError(payload []byte, field int, err error) *ProtocolError {
	return &ProtocolError{Payload: payload, Field: field, Err: err}
}

// ConnectionError reports a socket-level failure: refused, reset, closed
// by the peer, or a resolution failure. It is fatal to the pump that saw it.
type ConnectionError struct {
	// Op is the failing operation: "dial", "read", "write" or "close".
	Op   string
	Addr net.Addr
	Err  error
}

func (e *ConnectionError) Error() string {
	if e.Addr == nil {
		return fmt.Sprintf("connection: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("connection: %s %s: %v", e.Op, e.Addr, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// Cause supports errors.Cause from github.com/pkg/errors.
func (e *ConnectionError) Cause() error { return e.Err }

// Closed reports whether the connection was closed cleanly, either by the
// peer or locally, rather than failing.
func (e *ConnectionError) Closed() bool {
	return errors.Is(e.Err, io.EOF) || errors.Is(e.Err, net.ErrClosed) ||
		errors.Is(e.Err, ErrConnectionClosed)
}

func connectionError(op string, addr net.Addr, err error) *ConnectionError {
	var ce *ConnectionError
	if errors.As(err, &ce) {
		return ce
	}
	return &ConnectionError{Op: op, Addr: addr, Err: err}
}

// IsConnectionError reports whether err is, or wraps, a *ConnectionError.
func IsConnectionError(err error) bool {
	var ce *ConnectionError
	return errors.As(err, &ce)
}

// IsProtocolError reports whether err is, or wraps, a *ProtocolError.
func IsProtocolError(err error) bool {
	var pe *ProtocolError
	return errors.As(err, &pe)
}
