package duckclient

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"io"
	"net"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
)

// Transport moves whole frames over a connection. One goroutine may read
// while another writes; Close may be called from any goroutine and makes
// pending and future reads and writes fail with a *ConnectionError.
type Transport interface {
	ReadFrame() ([]byte, error)
	WriteFrame([]byte) error
	Close() error
	RemoteAddr() net.Addr
}

// Framing selects how frames are delimited on a byte stream.
type Framing int

const (
	// RawFraming treats a single socket read of up to the maximum frame size
	// as one frame, and writes each frame with a single write. It matches
	// peers that do not delimit messages at all. Trailing NUL bytes of a
	// read are padding and are dropped.
	//
	// Known failure mode: the stream has no message boundaries, so two frames
	// written back to back may be read as one, and a frame larger than the
	// read buffer is split in two. Either case surfaces as a malformed or
	// unknown frame on the receiving side. Use LengthPrefixedFraming when
	// both ends can be changed.
	RawFraming Framing = iota

	// LengthPrefixedFraming prefixes each frame with its length as a 4-byte
	// big-endian unsigned integer.
	LengthPrefixedFraming
)

func (f Framing) String() string {
	switch f {
	case RawFraming:
		return "raw"
	case LengthPrefixedFraming:
		return "length-prefixed"
	default:
		return "invalid"
	}
}

// ParseFraming maps "raw" and "length" to a Framing.
func ParseFraming(s string) (Framing, error) {
	switch s {
	case "", "raw":
		return RawFraming, nil
	case "length", "length-prefixed":
		return LengthPrefixedFraming, nil
	default:
		return 0, errors.Wrapf(ErrInvalidFraming, "%q", s)
	}
}

const lengthHeaderSize = 4

// streamTransport frames messages over a net.Conn.
type streamTransport struct {
	conn   net.Conn
	reader *bufio.Reader
	opts   options

	buf    []byte
	closed atomic.Bool
}

// NewTransport wraps conn in a Transport using the framing, maximum frame
// size and timeouts taken from opt.
func NewTransport(conn net.Conn, opt ...Option) (Transport, error) {
	opts, err := buildOptions(opt)
	if err != nil {
		return nil, err
	}
	return newStreamTransport(conn, opts), nil
}

func newStreamTransport(conn net.Conn, opts options) *streamTransport {
	t := &streamTransport{conn: conn, opts: opts}
	if opts.framing == LengthPrefixedFraming {
		t.reader = bufio.NewReader(conn)
	} else {
		t.buf = make([]byte, opts.maxFrameSize)
	}
	return t
}

// ReadFrame blocks until a frame arrives. A read of zero bytes means the
// peer closed the stream and is reported as a *ConnectionError.
func (t *streamTransport) ReadFrame() ([]byte, error) {
	if t.opts.readTimeout > 0 {
		_ = t.conn.SetReadDeadline(time.Now().Add(t.opts.readTimeout))
	}

	if t.opts.framing == LengthPrefixedFraming {
		return t.readLengthPrefixed()
	}

	n, err := t.conn.Read(t.buf)
	if n > 0 {
		// Peers without framing send zero-filled fixed buffers.
		return bytes.Clone(bytes.TrimRight(t.buf[:n], "\x00")), nil
	}
	if err == nil {
		err = io.EOF
	}
	return nil, connectionError("read", t.RemoteAddr(), err)
}

func (t *streamTransport) readLengthPrefixed() ([]byte, error) {
	var header [lengthHeaderSize]byte
	if _, err := io.ReadFull(t.reader, header[:]); err != nil {
		return nil, connectionError("read", t.RemoteAddr(), err)
	}

	size := binary.BigEndian.Uint32(header[:])
	if size > uint32(t.opts.maxFrameSize) {
		return nil, connectionError("read", t.RemoteAddr(),
			errors.Wrapf(ErrFrameTooLarge, "%d bytes", size))
	}

	frame := make([]byte, size)
	if _, err := io.ReadFull(t.reader, frame); err != nil {
		return nil, connectionError("read", t.RemoteAddr(), err)
	}
	return frame, nil
}

// WriteFrame writes frame with a single write. Frames above the maximum
// size are rejected with ErrFrameTooLarge without touching the socket.
func (t *streamTransport) WriteFrame(frame []byte) error {
	if len(frame) > t.opts.maxFrameSize {
		return errors.Wrapf(ErrFrameTooLarge, "%d bytes", len(frame))
	}
	if t.closed.Load() {
		return connectionError("write", t.RemoteAddr(), ErrConnectionClosed)
	}

	data := frame
	if t.opts.framing == LengthPrefixedFraming {
		data = make([]byte, lengthHeaderSize+len(frame))
		binary.BigEndian.PutUint32(data, uint32(len(frame)))
		copy(data[lengthHeaderSize:], frame)
	}

	if t.opts.writeTimeout > 0 {
		_ = t.conn.SetWriteDeadline(time.Now().Add(t.opts.writeTimeout))
	}
	if _, err := t.conn.Write(data); err != nil {
		return connectionError("write", t.RemoteAddr(), err)
	}
	return nil
}

// Close closes the connection. Safe to call multiple times.
func (t *streamTransport) Close() error {
	if t.closed.Swap(true) {
		return nil
	}
	return t.conn.Close()
}

func (t *streamTransport) RemoteAddr() net.Addr {
	return t.conn.RemoteAddr()
}
