package duckclient

import (
	"time"
)

// Default configuration values.
const (
	// DefaultMaxFrameSize bounds a single frame. It is also the read buffer
	// size under RawFraming.
	DefaultMaxFrameSize = 4096
	// defaultIdleDelay bounds how long the transmit pump sleeps on an empty queue.
	defaultIdleDelay = 10 * time.Millisecond
	// defaultWriteTimeout is the write deadline applied to each frame.
	defaultWriteTimeout = 10 * time.Second
	// defaultDialTimeout bounds address resolution plus connect.
	defaultDialTimeout = 10 * time.Second
)

// options holds the configuration for a client, a transport or a server peer.
type options struct {
	codec  Codec
	logger Logger

	framing      Framing
	maxFrameSize int

	idleDelay    time.Duration // transmit pump sleep when the outbound queue is empty
	readTimeout  time.Duration // 0 disables the read deadline
	writeTimeout time.Duration
	dialTimeout  time.Duration
}

// Option is a function that configures options.
type Option func(*options)

// buildOptions applies opt over the defaults and validates the result.
func buildOptions(opt []Option) (options, error) {
	opts := options{
		codec:        TextCodec{},
		writeTimeout: defaultWriteTimeout,
	}
	for _, o := range opt {
		o(&opts)
	}
	return opts, checkOptions(&opts)
}

// checkOptions validates and sets default values for options.
func checkOptions(opts *options) error {
	if opts.codec == nil {
		return ErrInvalidCodec
	}

	if opts.framing != RawFraming && opts.framing != LengthPrefixedFraming {
		return ErrInvalidFraming
	}

	if opts.maxFrameSize <= 0 {
		opts.maxFrameSize = DefaultMaxFrameSize
	}

	if opts.idleDelay <= 0 {
		opts.idleDelay = defaultIdleDelay
	}

	if opts.readTimeout < 0 {
		opts.readTimeout = 0
	}

	if opts.writeTimeout < 0 {
		opts.writeTimeout = 0
	}

	if opts.dialTimeout <= 0 {
		opts.dialTimeout = defaultDialTimeout
	}

	if opts.logger == nil {
		opts.logger = defaultLogger()
	}

	return nil
}

// CodecOption sets the message codec. TextCodec is used when not set.
func CodecOption(codec Codec) Option {
	return func(o *options) {
		o.codec = codec
	}
}

// FramingOption selects how frames are delimited on the stream.
// Both ends of a connection must agree.
func FramingOption(framing Framing) Option {
	return func(o *options) {
		o.framing = framing
	}
}

// MaxFrameSizeOption sets the maximum size of a single frame.
func MaxFrameSizeOption(size int) Option {
	return func(o *options) {
		o.maxFrameSize = size
	}
}

// IdleDelayOption sets how long the transmit pump waits on an empty
// outbound queue before polling it again. A push wakes it earlier.
func IdleDelayOption(d time.Duration) Option {
	return func(o *options) {
		o.idleDelay = d
	}
}

// ReadTimeoutOption sets a read deadline per frame. When it expires the
// receive pump stops with a *ConnectionError. Zero, the default, waits forever.
func ReadTimeoutOption(d time.Duration) Option {
	return func(o *options) {
		o.readTimeout = d
	}
}

// WriteTimeoutOption sets the write deadline per frame. Zero disables it.
func WriteTimeoutOption(d time.Duration) Option {
	return func(o *options) {
		o.writeTimeout = d
	}
}

// DialTimeoutOption bounds name resolution and connect.
func DialTimeoutOption(d time.Duration) Option {
	return func(o *options) {
		o.dialTimeout = d
	}
}

// LoggerOption sets the logger.
// If not set, the default slog logger will be used.
func LoggerOption(logger Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}
