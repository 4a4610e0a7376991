package duckclient

import (
	"context"
	"net"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
)

// closeGrace bounds the close handshake sent before the socket is dropped.
const closeGrace = time.Second

// wsTransport carries one frame per WebSocket text message, so framing is
// exact regardless of the Framing option.
type wsTransport struct {
	conn   *websocket.Conn
	opts   options
	closed atomic.Bool
}

// NewWebSocketTransport wraps an established WebSocket connection.
func NewWebSocketTransport(conn *websocket.Conn, opt ...Option) (Transport, error) {
	opts, err := buildOptions(opt)
	if err != nil {
		return nil, err
	}
	return newWebSocketTransport(conn, opts), nil
}

func newWebSocketTransport(conn *websocket.Conn, opts options) *wsTransport {
	conn.SetReadLimit(int64(opts.maxFrameSize))
	return &wsTransport{conn: conn, opts: opts}
}

// DialWebSocket connects to a ws:// or wss:// URL, sends the handshake and
// starts the pumps.
func DialWebSocket(ctx context.Context, url string, opt ...Option) (*Client, error) {
	opts, err := buildOptions(opt)
	if err != nil {
		return nil, err
	}

	dialer := websocket.Dialer{HandshakeTimeout: opts.dialTimeout}
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, connectionError("dial", nil, errors.Wrapf(err, "dial %s", url))
	}

	return start(newWebSocketTransport(conn, opts), opts)
}

func (t *wsTransport) ReadFrame() ([]byte, error) {
	if t.opts.readTimeout > 0 {
		_ = t.conn.SetReadDeadline(time.Now().Add(t.opts.readTimeout))
	}

	_, data, err := t.conn.ReadMessage()
	if err != nil {
		return nil, connectionError("read", t.RemoteAddr(), err)
	}
	return data, nil
}

func (t *wsTransport) WriteFrame(frame []byte) error {
	if len(frame) > t.opts.maxFrameSize {
		return errors.Wrapf(ErrFrameTooLarge, "%d bytes", len(frame))
	}
	if t.closed.Load() {
		return connectionError("write", t.RemoteAddr(), ErrConnectionClosed)
	}

	if t.opts.writeTimeout > 0 {
		_ = t.conn.SetWriteDeadline(time.Now().Add(t.opts.writeTimeout))
	}
	if err := t.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		return connectionError("write", t.RemoteAddr(), err)
	}
	return nil
}

// Close sends a normal closure and drops the connection. Safe to call
// multiple times.
func (t *wsTransport) Close() error {
	if t.closed.Swap(true) {
		return nil
	}
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = t.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeGrace))
	return t.conn.Close()
}

func (t *wsTransport) RemoteAddr() net.Addr {
	return t.conn.RemoteAddr()
}
