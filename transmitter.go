package duckclient

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

// Transmitter is the transmit pump: it drains the outbound queue, encodes
// each message and writes it to the transport, in push order.
//
// When the queue is empty it waits for a push, bounded by the idle delay,
// instead of spinning. It stops on the first *ConnectionError, and after
// it has written a Deconnection.
type Transmitter struct {
	transport Transport
	codec     Codec
	outbound  *Queue
	logger    Logger
	idleDelay time.Duration

	state pumpState
}

// NewTransmitter creates a transmit pump. A nil codec selects TextCodec, a
// nil logger the default slog logger, and a non-positive idleDelay the
// package default.
func NewTransmitter(transport Transport, codec Codec, outbound *Queue, logger Logger, idleDelay time.Duration) *Transmitter {
	if codec == nil {
		codec = TextCodec{}
	}
	if logger == nil {
		logger = defaultLogger()
	}
	if idleDelay <= 0 {
		idleDelay = defaultIdleDelay
	}
	return &Transmitter{
		transport: transport,
		codec:     codec,
		outbound:  outbound,
		logger:    logger,
		idleDelay: idleDelay,
	}
}

// State returns the current pump state.
func (t *Transmitter) State() PumpState {
	return t.state.load()
}

// Run drains the outbound queue until ctx is done, the transport fails or
// a Deconnection has been sent (ErrSessionEnded).
func (t *Transmitter) Run(ctx context.Context) error {
	t.state.store(StateRunning)
	defer t.state.store(StateStopped)

	idle := time.NewTimer(t.idleDelay)
	defer idle.Stop()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		message, ok := t.outbound.TryPop()
		if !ok {
			idle.Reset(t.idleDelay)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-t.outbound.Ready():
			case <-idle.C:
			}
			continue
		}

		if err := t.send(message); err != nil {
			if IsConnectionError(err) {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				t.logger.Info("transmit pump stopped with error", "addr", t.transport.RemoteAddr(), "error", err)
				return err
			}
			t.logger.Warn("dropping outbound message", "type", message.Type(), "error", err)
			continue
		}

		if _, ok := message.(Deconnection); ok {
			t.logger.Debug("transmit pump stopped after deconnection", "addr", t.transport.RemoteAddr())
			return ErrSessionEnded
		}
	}
}

// send writes message if it is one of the cases that have a wire form.
// The switch only guards the boundary; encoding is left to the codec.
func (t *Transmitter) send(message Message) error {
	switch m := message.(type) {
	case Connection, Deconnection, Found, Duck, Win:
	case Unknown:
		return errors.Errorf("refusing to send unknown message with tag %d", m.Tag)
	default:
		return errors.Errorf("unsupported message %T", message)
	}

	frame, err := t.codec.Encode(message)
	if err != nil {
		return errors.Wrap(err, "encode")
	}

	if err := t.transport.WriteFrame(frame); err != nil {
		return err
	}
	t.logger.Debug("frame sent", "type", message.Type())
	return nil
}
