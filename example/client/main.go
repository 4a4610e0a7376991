// Command client is a headless game client. It walks its viewpoint from
// duck to duck at a fixed frame rate until the server declares a winner.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Zereker/duckclient"
	"github.com/Zereker/duckclient/game"
	"github.com/Zereker/duckclient/internal/config"
	"github.com/Zereker/duckclient/internal/logging"
)

const (
	frameRate = 60
	walkSpeed = 6.0 // units per second
)

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

	opts := []duckclient.Option{
		duckclient.LoggerOption(logger),
		duckclient.FramingOption(cfg.Framing),
	}

	var client *duckclient.Client
	if cfg.Transport == "ws" {
		client, err = duckclient.DialWebSocket(ctx, cfg.WebSocketURL(), opts...)
	} else {
		client, err = duckclient.Dial(ctx, cfg.Host, cfg.Port, opts...)
	}
	if err != nil {
		logger.Error("connect failed", "addr", cfg.Addr(), "error", err)
		os.Exit(1)
	}

	scene := game.NewScene(client.Inbound(), client.Outbound(),
		game.LoggerOption(logger),
		game.HandshakeSentOption(),
		game.HooksOption(game.Hooks{
			PlaySound: func(id int, sound string) {
				logger.Debug("playing sound", "duck", id, "sound", sound)
			},
			OnWin: func(player int) {
				logger.Info("winner announced", "player", player)
			},
		}),
	)
	scene.Start()

	run(ctx, client, scene)

	shutdownCtx, stop := context.WithTimeout(context.Background(), 2*time.Second)
	defer stop()
	if err := client.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown", "error", err)
	}
	if err := client.Err(); err != nil {
		logger.Error("session failed", "error", err)
		os.Exit(1)
	}
}

// run is the frame loop. It never blocks on the network.
func run(ctx context.Context, client *duckclient.Client, scene *game.Scene) {
	ticker := time.NewTicker(time.Second / frameRate)
	defer ticker.Stop()

	var eye game.Vec3
	step := float32(walkSpeed) / frameRate

	for {
		select {
		case <-ctx.Done():
			return
		case <-client.Done():
			return
		case <-ticker.C:
		}

		scene.Update(eye)
		if _, ok := scene.Winner(); ok {
			return
		}
		eye = walk(eye, scene.Entities(), step)
	}
}

// walk moves eye one step toward the closest entity not found yet.
func walk(eye game.Vec3, entities []game.Entity, step float32) game.Vec3 {
	var (
		target game.Vec3
		best   float32 = -1
	)
	for _, e := range entities {
		if e.Found {
			continue
		}
		if d := e.Position.Sub(eye).Len(); best < 0 || d < best {
			best, target = d, e.Position
		}
	}
	if best <= 0 {
		return eye
	}

	dir := target.Sub(eye)
	if best <= step {
		return target
	}
	k := step / best
	return game.Vec3{X: eye.X + dir.X*k, Y: eye.Y + dir.Y*k, Z: eye.Z + dir.Z*k}
}
