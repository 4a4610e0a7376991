package duckclient

import (
	"context"
)

// Receiver is the receive pump: it reads frames from a transport, decodes
// them and pushes the results onto the inbound queue, in arrival order.
//
// Malformed and unknown frames are logged and dropped. The pump stops on
// the first *ConnectionError.
type Receiver struct {
	transport Transport
	codec     Codec
	inbound   *Queue
	logger    Logger

	state pumpState
}

// NewReceiver creates a receive pump. A nil codec selects TextCodec and a
// nil logger the default slog logger.
func NewReceiver(transport Transport, codec Codec, inbound *Queue, logger Logger) *Receiver {
	if codec == nil {
		codec = TextCodec{}
	}
	if logger == nil {
		logger = defaultLogger()
	}
	return &Receiver{
		transport: transport,
		codec:     codec,
		inbound:   inbound,
		logger:    logger,
	}
}

// State returns the current pump state.
func (r *Receiver) State() PumpState {
	return r.state.load()
}

// Run reads until the transport fails. It only ever blocks inside
// ReadFrame, so callers stop it by closing the transport; ctx is consulted
// to tell a local stop from a failure.
func (r *Receiver) Run(ctx context.Context) error {
	r.state.store(StateRunning)
	defer r.state.store(StateStopped)

	for {
		frame, err := r.transport.ReadFrame()
		if err != nil {
			if ctx.Err() != nil {
				r.logger.Debug("receive pump stopped", "addr", r.transport.RemoteAddr())
				return ctx.Err()
			}
			r.logger.Info("receive pump stopped with error", "addr", r.transport.RemoteAddr(), "error", err)
			return connectionError("read", r.transport.RemoteAddr(), err)
		}

		r.dispatch(frame)
	}
}

func (r *Receiver) dispatch(frame []byte) {
	typ := PeekType(frame)
	if typ == TypeUnknown {
		r.logger.Warn("discarding frame with unknown type", "frame", string(frame))
		return
	}

	message, err := r.codec.Decode(frame)
	if err != nil {
		r.logger.Warn("discarding malformed frame", "type", typ, "error", err)
		return
	}
	if message.Type() != typ {
		r.logger.Warn("discarding frame with mismatched type", "type", typ, "decoded", message.Type())
		return
	}

	r.logger.Debug("frame received", "type", typ)
	r.inbound.Push(message)
}
