// Command server is a demo game server: it hides a few ducks around each
// client that connects and declares the client the winner once it has
// found them all.
package main

import (
	"context"
	"math/rand"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/Zereker/duckclient"
	"github.com/Zereker/duckclient/internal/config"
	"github.com/Zereker/duckclient/internal/logging"
)

const (
	ducksPerPlayer = 3
	huntRadius     = 20
	// rawSpacing keeps consecutive frames in separate reads under raw framing.
	rawSpacing = 50 * time.Millisecond
)

var sounds = []string{"quack.wav", "quack2.wav", duckclient.DefaultDuckSound}

type hunt struct {
	logger   duckclient.Logger
	spacing  time.Duration
	playerID atomic.Int64
	duckID   atomic.Int64
}

func (h *hunt) HandlePeer(ctx context.Context, peer *duckclient.Peer) {
	player := int(h.playerID.Add(1))
	hidden := make(map[int]bool)
	h.logger.Info("player joined", "player", player, "addr", peer.Addr())

	for {
		m, err := peer.Receive()
		if err != nil {
			if duckclient.IsProtocolError(err) {
				h.logger.Warn("discarding malformed frame", "player", player, "error", err)
				continue
			}
			h.logger.Info("player left", "player", player, "error", err)
			return
		}

		switch v := m.(type) {
		case duckclient.Connection:
			if err := h.hide(ctx, peer, hidden); err != nil {
				h.logger.Warn("spawn failed", "player", player, "error", err)
				return
			}
		case duckclient.Found:
			if !hidden[v.ID] {
				continue
			}
			delete(hidden, v.ID)
			h.logger.Info("duck found", "player", player, "duck", v.ID, "remaining", len(hidden))
			if len(hidden) == 0 {
				if err := peer.Send(duckclient.Win{ID: player}); err != nil {
					return
				}
			}
		case duckclient.Deconnection:
			h.logger.Info("player said goodbye", "player", player)
			return
		default:
			h.logger.Debug("ignoring message", "player", player, "type", m.Type())
		}
	}
}

func (h *hunt) hide(ctx context.Context, peer *duckclient.Peer, hidden map[int]bool) error {
	for i := 0; i < ducksPerPlayer; i++ {
		d := duckclient.NewDuck(int(h.duckID.Add(1)))
		d.X = float32(rand.Intn(2*huntRadius) - huntRadius)
		d.Z = float32(rand.Intn(2*huntRadius) - huntRadius)
		d.AY = float32(rand.Intn(360))
		d.Sound = sounds[rand.Intn(len(sounds))]

		if err := peer.Send(d); err != nil {
			return err
		}
		hidden[d.ID] = true

		if h.spacing > 0 {
			select {
			case <-time.After(h.spacing):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := logging.New(os.Stderr, cfg.LogFormat, cfg.LogLevel)
	if err != nil {
		panic(err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	h := &hunt{logger: logger}
	if cfg.Framing == duckclient.RawFraming && cfg.Transport == "tcp" {
		h.spacing = rawSpacing
	}

	if cfg.Transport == "ws" {
		mux := http.NewServeMux()
		mux.Handle(cfg.WSPath, duckclient.WebSocketHandler(h, duckclient.LoggerOption(logger)))
		srv := &http.Server{Addr: cfg.Addr(), Handler: mux}
		go func() {
			<-ctx.Done()
			_ = srv.Close()
		}()
		logger.Info("serving websocket", "addr", cfg.Addr(), "path", cfg.WSPath)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
		}
		return
	}

	addr, err := net.ResolveTCPAddr("tcp", cfg.Addr())
	if err != nil {
		panic(err)
	}

	server, err := duckclient.New(addr,
		duckclient.ServerLoggerOption(logger),
		duckclient.ServerPeerOptions(duckclient.FramingOption(cfg.Framing)),
	)
	if err != nil {
		logger.Error("failed to create server", "error", err)
		return
	}

	if err := server.Serve(ctx, h); err != nil && err != context.Canceled {
		logger.Error("server error", "error", err)
	}
}
