// Package duckclient is the network client of a small 3D hunting game.
// It keeps the local game state in sync with a remote server over a
// stream connection: a receive pump decodes inbound frames onto an
// inbound queue, a transmit pump encodes messages from an outbound queue,
// and the game loop polls both queues once per frame without ever
// blocking on the network.
package duckclient

import (
	"context"
	"net"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Client is one session with a game server. It owns the transport, the
// inbound and outbound queues and the two pumps.
//
// The Connection handshake is written before either pump starts, so the
// server always sees it ahead of any gameplay message.
type Client struct {
	id        string
	transport Transport
	logger    Logger

	inbound     *Queue
	outbound    *Queue
	receiver    *Receiver
	transmitter *Transmitter

	cancel   context.CancelFunc
	stopped  atomic.Bool
	stopOnce sync.Once
	done     chan struct{}
	err      error // written once before done is closed
}

// Dial connects to host:port over TCP, sends the handshake and starts the
// pumps. ctx bounds resolution, connect and the handshake only; the
// session lives until Stop or a connection failure.
func Dial(ctx context.Context, host string, port int, opt ...Option) (*Client, error) {
	opts, err := buildOptions(opt)
	if err != nil {
		return nil, err
	}

	addr := net.JoinHostPort(host, strconv.Itoa(port))
	dialer := net.Dialer{Timeout: opts.dialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, connectionError("dial", nil, errors.Wrapf(err, "dial %s", addr))
	}
	if tcp, ok := conn.(*net.TCPConn); ok {
		_ = tcp.SetNoDelay(true)
	}

	return start(newStreamTransport(conn, opts), opts)
}

// NewClient starts a session over an already connected transport: it
// writes the handshake and starts the pumps. The client takes ownership
// of transport.
func NewClient(transport Transport, opt ...Option) (*Client, error) {
	opts, err := buildOptions(opt)
	if err != nil {
		return nil, err
	}
	return start(transport, opts)
}

func start(transport Transport, opts options) (*Client, error) {
	id := uuid.NewString()
	logger := withFields(opts.logger, "session", id)

	c := &Client{
		id:        id,
		transport: transport,
		logger:    logger,
		inbound:   NewQueue(),
		outbound:  NewQueue(),
		done:      make(chan struct{}),
	}
	c.receiver = NewReceiver(transport, opts.codec, c.inbound, logger)
	c.transmitter = NewTransmitter(transport, opts.codec, c.outbound, logger, opts.idleDelay)

	if err := c.handshake(opts.codec); err != nil {
		_ = transport.Close()
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel

	group, child := errgroup.WithContext(ctx)
	group.Go(func() error {
		return c.receiver.Run(child)
	})
	group.Go(func() error {
		return c.transmitter.Run(child)
	})

	// The receive pump only wakes up when the transport fails, so once
	// either pump is done the transport is closed to release the other.
	go func() {
		<-child.Done()
		_ = c.transport.Close()
	}()

	go c.wait(group)

	c.logger.Info("session started", "addr", transport.RemoteAddr())
	return c, nil
}

func (c *Client) handshake(codec Codec) error {
	frame, err := codec.Encode(Connection{})
	if err != nil {
		return errors.Wrap(err, "encode handshake")
	}
	if err := c.transport.WriteFrame(frame); err != nil {
		return connectionError("write", c.transport.RemoteAddr(), errors.Wrap(err, "handshake"))
	}
	c.logger.Debug("handshake sent")
	return nil
}

func (c *Client) wait(group *errgroup.Group) {
	err := group.Wait()
	_ = c.transport.Close()

	if errors.Is(err, context.Canceled) || errors.Is(err, ErrSessionEnded) {
		err = nil
	}

	if err != nil {
		c.logger.Info("session closed with error", "error", err)
	} else {
		c.logger.Info("session closed")
	}

	c.err = err
	close(c.done)
}

// Stop closes the transport, which drives both pumps to a stop, and
// returns once both have returned. Safe to call multiple times.
func (c *Client) Stop() error {
	c.stopOnce.Do(func() {
		c.stopped.Store(true)
		c.cancel()
		_ = c.transport.Close()
	})
	<-c.done
	return nil
}

// Shutdown queues a Deconnection, waits for the transmit pump to flush it
// or for ctx to be done, then stops the client.
func (c *Client) Shutdown(ctx context.Context) error {
	if err := c.Send(Deconnection{}); err != nil {
		return c.Stop()
	}

	select {
	case <-c.done:
	case <-ctx.Done():
		_ = c.Stop()
		return ctx.Err()
	}
	return c.Stop()
}

// Send queues m for the transmit pump. It never blocks. After the session
// has ended it returns ErrConnectionClosed.
func (c *Client) Send(m Message) error {
	if c.stopped.Load() {
		return ErrConnectionClosed
	}
	select {
	case <-c.done:
		return ErrConnectionClosed
	default:
	}
	c.outbound.Push(m)
	return nil
}

// Inbound returns the queue of decoded messages from the server.
func (c *Client) Inbound() *Queue {
	return c.inbound
}

// Outbound returns the queue drained by the transmit pump.
func (c *Client) Outbound() *Queue {
	return c.outbound
}

// Done is closed once both pumps have stopped.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Err returns the *ConnectionError that ended the session, or nil while
// the session runs or when it was stopped locally. There is no automatic
// reconnect; owners decide what to do with it.
func (c *Client) Err() error {
	select {
	case <-c.done:
		return c.err
	default:
		return nil
	}
}

// SessionID returns the identifier used to tag this session's logs.
func (c *Client) SessionID() string {
	return c.id
}

// RemoteAddr returns the server address.
func (c *Client) RemoteAddr() net.Addr {
	return c.transport.RemoteAddr()
}

// ReceiverState returns the state of the receive pump.
func (c *Client) ReceiverState() PumpState {
	return c.receiver.State()
}

// TransmitterState returns the state of the transmit pump.
func (c *Client) TransmitterState() PumpState {
	return c.transmitter.State()
}
