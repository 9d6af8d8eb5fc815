package rtde

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"
)

// Transport is the byte-stream collaborator the engine talks through.
// Implementations carry no protocol knowledge; the engine does all framing.
type Transport interface {
	// Open establishes the connection. The context bounds the dial.
	Open(ctx context.Context, addr string) error
	// Send writes the whole buffer.
	Send(p []byte) error
	// Receive reads up to len(p) bytes, blocking until the deadline.
	// A zero deadline blocks indefinitely.
	Receive(p []byte, deadline time.Time) (int, error)
	// Close releases the connection. Safe to call repeatedly.
	Close() error
}

// TCPTransport is the stock Transport over a TCP connection.
// Nagle's algorithm is disabled; the stream carries latency-sensitive
// real-time packets.
type TCPTransport struct {
	conn net.Conn
}

// NewTCPTransport returns an unopened TCP transport.
func NewTCPTransport() *TCPTransport {
	return &TCPTransport{}
}

func (t *TCPTransport) Open(ctx context.Context, addr string) error {
	if t.conn != nil {
		return fmt.Errorf("%w: transport already open", ErrConnection)
	}
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		if isTimeout(err) {
			return fmt.Errorf("%w: dial %s: %v", ErrTimeout, addr, err)
		}
		return fmt.Errorf("%w: dial %s: %v", ErrConnection, addr, err)
	}
	if tc, ok := conn.(*net.TCPConn); ok {
		tc.SetNoDelay(true)
	}
	t.conn = conn
	return nil
}

func (t *TCPTransport) Send(p []byte) error {
	if t.conn == nil {
		return fmt.Errorf("%w: transport not open", ErrConnection)
	}
	if _, err := t.conn.Write(p); err != nil {
		return fmt.Errorf("%w: send: %v", ErrConnection, err)
	}
	return nil
}

func (t *TCPTransport) Receive(p []byte, deadline time.Time) (int, error) {
	if t.conn == nil {
		return 0, fmt.Errorf("%w: transport not open", ErrConnection)
	}
	if err := t.conn.SetReadDeadline(deadline); err != nil {
		return 0, fmt.Errorf("%w: set deadline: %v", ErrConnection, err)
	}
	n, err := t.conn.Read(p)
	if err != nil {
		switch {
		case isTimeout(err):
			return n, fmt.Errorf("%w: receive: %v", ErrTimeout, err)
		case errors.Is(err, io.EOF):
			return n, fmt.Errorf("%w: connection closed by peer", ErrConnection)
		default:
			return n, fmt.Errorf("%w: receive: %v", ErrConnection, err)
		}
	}
	return n, nil
}

func (t *TCPTransport) Close() error {
	if t.conn == nil {
		return nil
	}
	err := t.conn.Close()
	t.conn = nil
	if err != nil {
		return fmt.Errorf("%w: close: %v", ErrConnection, err)
	}
	return nil
}

func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
