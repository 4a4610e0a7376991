package duckclient

import (
	"testing"
	"time"
)

func TestCodecOption(t *testing.T) {
	codec := TextCodec{}
	var opts options
	CodecOption(codec)(&opts)

	if opts.codec != codec {
		t.Error("codec not set correctly")
	}
}

func TestFramingOption(t *testing.T) {
	var opts options
	FramingOption(LengthPrefixedFraming)(&opts)

	if opts.framing != LengthPrefixedFraming {
		t.Errorf("framing = %v, want %v", opts.framing, LengthPrefixedFraming)
	}
}

func TestMaxFrameSizeOption(t *testing.T) {
	var opts options
	MaxFrameSizeOption(8192)(&opts)

	if opts.maxFrameSize != 8192 {
		t.Errorf("maxFrameSize = %d, want 8192", opts.maxFrameSize)
	}
}

func TestTimeoutOptions(t *testing.T) {
	var opts options
	IdleDelayOption(time.Millisecond)(&opts)
	ReadTimeoutOption(time.Minute)(&opts)
	WriteTimeoutOption(time.Second)(&opts)
	DialTimeoutOption(3 * time.Second)(&opts)

	if opts.idleDelay != time.Millisecond {
		t.Errorf("idleDelay = %v, want 1ms", opts.idleDelay)
	}
	if opts.readTimeout != time.Minute {
		t.Errorf("readTimeout = %v, want 1m", opts.readTimeout)
	}
	if opts.writeTimeout != time.Second {
		t.Errorf("writeTimeout = %v, want 1s", opts.writeTimeout)
	}
	if opts.dialTimeout != 3*time.Second {
		t.Errorf("dialTimeout = %v, want 3s", opts.dialTimeout)
	}
}

func TestLoggerOption(t *testing.T) {
	logger := &mockLogger{}
	var opts options
	LoggerOption(logger)(&opts)

	if opts.logger != logger {
		t.Error("logger not set correctly")
	}
}

func TestBuildOptions_Defaults(t *testing.T) {
	opts, err := buildOptions(nil)
	if err != nil {
		t.Fatalf("buildOptions failed: %v", err)
	}

	if _, ok := opts.codec.(TextCodec); !ok {
		t.Errorf("codec = %T, want TextCodec", opts.codec)
	}
	if opts.framing != RawFraming {
		t.Errorf("framing = %v, want raw", opts.framing)
	}
	if opts.maxFrameSize != DefaultMaxFrameSize {
		t.Errorf("maxFrameSize = %d, want %d", opts.maxFrameSize, DefaultMaxFrameSize)
	}
	if opts.idleDelay != defaultIdleDelay {
		t.Errorf("idleDelay = %v, want %v", opts.idleDelay, defaultIdleDelay)
	}
	if opts.readTimeout != 0 {
		t.Errorf("readTimeout = %v, want 0", opts.readTimeout)
	}
	if opts.writeTimeout != defaultWriteTimeout {
		t.Errorf("writeTimeout = %v, want %v", opts.writeTimeout, defaultWriteTimeout)
	}
	if opts.dialTimeout != defaultDialTimeout {
		t.Errorf("dialTimeout = %v, want %v", opts.dialTimeout, defaultDialTimeout)
	}
	if opts.logger == nil {
		t.Error("logger should have default value")
	}
}

func TestCheckOptions_NegativeTimeoutsDisable(t *testing.T) {
	opts := options{codec: TextCodec{}, readTimeout: -1, writeTimeout: -1}
	if err := checkOptions(&opts); err != nil {
		t.Fatalf("checkOptions failed: %v", err)
	}
	if opts.readTimeout != 0 || opts.writeTimeout != 0 {
		t.Errorf("timeouts = %v/%v, want 0/0", opts.readTimeout, opts.writeTimeout)
	}
}

func TestCheckOptions_Invalid(t *testing.T) {
	if err := checkOptions(&options{}); err != ErrInvalidCodec {
		t.Errorf("expected ErrInvalidCodec, got %v", err)
	}
	if err := checkOptions(&options{codec: TextCodec{}, framing: 3}); err != ErrInvalidFraming {
		t.Errorf("expected ErrInvalidFraming, got %v", err)
	}
}
