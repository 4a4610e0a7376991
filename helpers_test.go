package duckclient

import (
	"net"
	"sync"
	"testing"
	"time"
)

// createTestTCPPair creates a connected pair of TCP connections for testing
func createTestTCPPair(t *testing.T) (*net.TCPConn, *net.TCPConn) {
	t.Helper()

	listener, err := net.ListenTCP("tcp", &net.TCPAddr{IP: net.ParseIP("127.0.0.1"), Port: 0})
	if err != nil {
		t.Fatalf("failed to create listener: %v", err)
	}
	defer listener.Close()

	clientChan := make(chan *net.TCPConn, 1)
	errChan := make(chan error, 1)
	go func() {
		conn, err := net.DialTCP("tcp", nil, listener.Addr().(*net.TCPAddr))
		if err != nil {
			errChan <- err
			return
		}
		clientChan <- conn
	}()

	serverConn, err := listener.AcceptTCP()
	if err != nil {
		t.Fatalf("failed to accept: %v", err)
	}

	select {
	case clientConn := <-clientChan:
		return serverConn, clientConn
	case err := <-errChan:
		serverConn.Close()
		t.Fatalf("client dial failed: %v", err)
		return nil, nil
	case <-time.After(5 * time.Second):
		serverConn.Close()
		t.Fatal("timeout waiting for client connection")
		return nil, nil
	}
}

// mockTransport feeds frames from a channel and records written frames.
type mockTransport struct {
	frames  chan []byte
	written chan []byte

	mu       sync.Mutex
	writeErr error
	reads    int

	closeOnce sync.Once
	closed    chan struct{}
}

func newMockTransport() *mockTransport {
	return &mockTransport{
		frames:  make(chan []byte, 64),
		written: make(chan []byte, 64),
		closed:  make(chan struct{}),
	}
}

var mockAddr = &net.TCPAddr{IP: net.ParseIP("127.0.0.1"), Port: 4242}

func (m *mockTransport) ReadFrame() ([]byte, error) {
	select {
	case f, ok := <-m.frames:
		if !ok {
			return nil, &ConnectionError{Op: "read", Addr: mockAddr, Err: net.ErrClosed}
		}
		m.mu.Lock()
		m.reads++
		m.mu.Unlock()
		return f, nil
	case <-m.closed:
		return nil, &ConnectionError{Op: "read", Addr: mockAddr, Err: ErrConnectionClosed}
	}
}

func (m *mockTransport) WriteFrame(frame []byte) error {
	select {
	case <-m.closed:
		return &ConnectionError{Op: "write", Addr: mockAddr, Err: ErrConnectionClosed}
	default:
	}

	m.mu.Lock()
	err := m.writeErr
	m.mu.Unlock()
	if err != nil {
		return err
	}

	m.written <- append([]byte(nil), frame...)
	return nil
}

func (m *mockTransport) Close() error {
	m.closeOnce.Do(func() { close(m.closed) })
	return nil
}

func (m *mockTransport) RemoteAddr() net.Addr {
	return mockAddr
}

func (m *mockTransport) setWriteErr(err error) {
	m.mu.Lock()
	m.writeErr = err
	m.mu.Unlock()
}

func (m *mockTransport) readCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reads
}

// nextWritten waits for the next frame written to m.
func (m *mockTransport) nextWritten(t *testing.T) []byte {
	t.Helper()
	select {
	case f := <-m.written:
		return f
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for written frame")
		return nil
	}
}

// discardLogger drops every record.
type discardLogger struct{}

func (discardLogger) Debug(string, ...any) {}
func (discardLogger) Info(string, ...any)  {}
func (discardLogger) Warn(string, ...any)  {}
func (discardLogger) Error(string, ...any) {}

// waitFor polls cond until it holds or the timeout expires.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before timeout")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
