package duckclient

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
)

// Handler serves one connected game client. The peer is closed when
// HandlePeer returns.
type Handler interface {
	HandlePeer(ctx context.Context, peer *Peer)
}

// HandlerFunc adapts a function to a Handler.
type HandlerFunc func(ctx context.Context, peer *Peer)

// HandlePeer calls f(ctx, peer).
func (f HandlerFunc) HandlePeer(ctx context.Context, peer *Peer) {
	f(ctx, peer)
}

// Peer is the server's end of a client session. Send and Receive may be
// used from different goroutines.
type Peer struct {
	transport Transport
	codec     Codec
}

// NewPeer wraps a transport with the codec taken from opt.
func NewPeer(transport Transport, opt ...Option) (*Peer, error) {
	opts, err := buildOptions(opt)
	if err != nil {
		return nil, err
	}
	return &Peer{transport: transport, codec: opts.codec}, nil
}

// Send encodes m and writes it as one frame.
func (p *Peer) Send(m Message) error {
	frame, err := p.codec.Encode(m)
	if err != nil {
		return err
	}
	return p.transport.WriteFrame(frame)
}

// Receive reads and decodes the next frame. A *ProtocolError only
// concerns that frame; a *ConnectionError ends the session.
func (p *Peer) Receive() (Message, error) {
	frame, err := p.transport.ReadFrame()
	if err != nil {
		return nil, err
	}
	return p.codec.Decode(frame)
}

// Close closes the underlying transport.
func (p *Peer) Close() error {
	return p.transport.Close()
}

// Addr returns the client's address.
func (p *Peer) Addr() net.Addr {
	return p.transport.RemoteAddr()
}

// Server accepts game clients over TCP and hands each one to a Handler.
type Server struct {
	listener        *net.TCPListener
	logger          Logger
	shutdownTimeout time.Duration
	peerOpts        options

	mu          sync.Mutex
	shutdown    bool
	shutdownNow chan struct{} // signals immediate shutdown, bypassing timeout
	peers       sync.WaitGroup
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// ServerLoggerOption sets the logger for the server.
func ServerLoggerOption(logger Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

// ServerShutdownTimeoutOption sets how long Serve keeps accepting after
// its context is canceled. Close bypasses the remaining time.
func ServerShutdownTimeoutOption(timeout time.Duration) ServerOption {
	return func(s *Server) {
		s.shutdownTimeout = timeout
	}
}

// ServerPeerOptions sets the framing, codec and timeouts used for every
// accepted peer. They must match the clients' options.
func ServerPeerOptions(opt ...Option) ServerOption {
	return func(s *Server) {
		for _, o := range opt {
			o(&s.peerOpts)
		}
	}
}

// New creates a server bound to addr.
func New(addr *net.TCPAddr, opts ...ServerOption) (*Server, error) {
	s := &Server{
		logger:      slog.Default(),
		shutdownNow: make(chan struct{}),
		peerOpts:    options{codec: TextCodec{}, writeTimeout: defaultWriteTimeout},
	}

	for _, opt := range opts {
		opt(s)
	}

	if err := checkOptions(&s.peerOpts); err != nil {
		return nil, err
	}

	listener, err := net.ListenTCP(addr.Network(), addr)
	if err != nil {
		return nil, err
	}
	s.listener = listener

	return s, nil
}

// Serve accepts clients until ctx is canceled or Close is called, and
// returns once every handler has returned.
func (s *Server) Serve(ctx context.Context, handler Handler) error {
	s.logger.Info("server started", "addr", s.listener.Addr(), "framing", s.peerOpts.framing)

	go func() {
		<-ctx.Done()

		if s.shutdownTimeout > 0 {
			s.logger.Info("graceful shutdown initiated", "timeout", s.shutdownTimeout)
			select {
			case <-time.After(s.shutdownTimeout):
			case <-s.shutdownNow:
				s.logger.Debug("shutdown timeout bypassed via Close()")
			}
		}

		s.mu.Lock()
		s.shutdown = true
		s.mu.Unlock()
		// Unblock Accept.
		_ = s.listener.SetDeadline(time.Now())
	}()

	defer s.peers.Wait()

	for {
		conn, err := s.listener.AcceptTCP()
		if err != nil {
			s.mu.Lock()
			isShutdown := s.shutdown
			s.mu.Unlock()

			if isShutdown {
				s.logger.Info("server stopped", "addr", s.listener.Addr())
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return net.ErrClosed
			}

			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				continue
			}
			s.logger.Error("accept error", "error", err)
			return err
		}

		s.logger.Debug("accepted connection", "remote_addr", conn.RemoteAddr())
		_ = conn.SetNoDelay(true)

		peer := &Peer{transport: newStreamTransport(conn, s.peerOpts), codec: s.peerOpts.codec}
		s.peers.Add(1)
		go func() {
			defer s.peers.Done()
			s.servePeer(ctx, peer, handler)
		}()
	}
}

func (s *Server) servePeer(ctx context.Context, peer *Peer, handler Handler) {
	defer peer.Close()

	// Closing the peer is the only way to unblock a handler stuck in Receive.
	stop := context.AfterFunc(ctx, func() { _ = peer.Close() })
	defer stop()

	handler.HandlePeer(ctx, peer)
	s.logger.Debug("peer done", "remote_addr", peer.Addr())
}

// Close stops accepting clients immediately. Handlers already running are
// only stopped through Serve's context, and Serve waits for them.
func (s *Server) Close() error {
	s.mu.Lock()
	s.shutdown = true
	s.mu.Unlock()

	select {
	case s.shutdownNow <- struct{}{}:
	default:
	}

	return s.listener.Close()
}

// Addr returns the listener's network address.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// WebSocketHandler serves game clients connecting over WebSocket. opt must
// match the clients' codec and maximum frame size.
func WebSocketHandler(handler Handler, opt ...Option) http.Handler {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		opts, err := buildOptions(opt)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			opts.logger.Warn("websocket upgrade failed", "remote_addr", r.RemoteAddr, "error", err)
			return
		}

		peer := &Peer{transport: newWebSocketTransport(conn, opts), codec: opts.codec}
		defer peer.Close()

		stop := context.AfterFunc(r.Context(), func() { _ = peer.Close() })
		defer stop()

		handler.HandlePeer(r.Context(), peer)
	})
}
