package rtde

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"golang.org/x/net/nettest"
)

// acceptOne returns a loopback listener and a channel delivering the first
// accepted connection.
func acceptOne(t *testing.T) (net.Listener, <-chan net.Conn) {
	t.Helper()
	ln, err := nettest.NewLocalListener("tcp")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	ch := make(chan net.Conn, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		ch <- conn
	}()
	return ln, ch
}

func TestTCPTransportSendReceive(t *testing.T) {
	ln, accepted := acceptOne(t)

	tr := NewTCPTransport()
	if err := tr.Open(context.Background(), ln.Addr().String()); err != nil {
		t.Fatalf("open: %v", err)
	}
	defer tr.Close()
	peer := <-accepted
	defer peer.Close()

	pkt, err := EncodePacket(CmdStart, nil)
	if err != nil {
		t.Fatalf("EncodePacket: %v", err)
	}
	if err := tr.Send(pkt); err != nil {
		t.Fatalf("send: %v", err)
	}

	got := make([]byte, len(pkt))
	if _, err := peer.Read(got); err != nil {
		t.Fatalf("peer read: %v", err)
	}
	hdr, err := DecodePacketHeader(got)
	if err != nil {
		t.Fatalf("DecodePacketHeader: %v", err)
	}
	if hdr.Command != CmdStart || hdr.TotalSize != HeaderSize {
		t.Errorf("header = %+v", hdr)
	}

	if _, err := peer.Write([]byte{CmdStart, 0x00, 0x04, 0x01}); err != nil {
		t.Fatalf("peer write: %v", err)
	}
	buf := make([]byte, 16)
	n, err := tr.Receive(buf, time.Now().Add(time.Second))
	if err != nil {
		t.Fatalf("receive: %v", err)
	}
	if n != 4 || buf[3] != 0x01 {
		t.Errorf("received %d bytes: %v", n, buf[:n])
	}
}

func TestTCPTransportReceiveDeadline(t *testing.T) {
	ln, accepted := acceptOne(t)

	tr := NewTCPTransport()
	if err := tr.Open(context.Background(), ln.Addr().String()); err != nil {
		t.Fatalf("open: %v", err)
	}
	defer tr.Close()
	peer := <-accepted
	defer peer.Close()

	buf := make([]byte, 16)
	_, err := tr.Receive(buf, time.Now().Add(20*time.Millisecond))
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("err = %v, want ErrTimeout", err)
	}
}

func TestTCPTransportPeerClose(t *testing.T) {
	ln, accepted := acceptOne(t)

	tr := NewTCPTransport()
	if err := tr.Open(context.Background(), ln.Addr().String()); err != nil {
		t.Fatalf("open: %v", err)
	}
	defer tr.Close()
	peer := <-accepted
	peer.Close()

	buf := make([]byte, 16)
	_, err := tr.Receive(buf, time.Now().Add(time.Second))
	if !errors.Is(err, ErrConnection) {
		t.Errorf("err = %v, want ErrConnection", err)
	}
}

func TestTCPTransportDialFailure(t *testing.T) {
	ln, _ := acceptOne(t)
	addr := ln.Addr().String()
	ln.Close()

	tr := NewTCPTransport()
	err := tr.Open(context.Background(), addr)
	if !errors.Is(err, ErrConnection) && !errors.Is(err, ErrTimeout) {
		t.Errorf("err = %v, want ErrConnection or ErrTimeout", err)
	}
}

func TestTCPTransportLifecycle(t *testing.T) {
	tr := NewTCPTransport()
	if err := tr.Send([]byte{0x01}); !errors.Is(err, ErrConnection) {
		t.Errorf("send while closed: %v", err)
	}
	if _, err := tr.Receive(make([]byte, 1), time.Time{}); !errors.Is(err, ErrConnection) {
		t.Errorf("receive while closed: %v", err)
	}
	if err := tr.Close(); err != nil {
		t.Errorf("close unopened: %v", err)
	}

	ln, accepted := acceptOne(t)
	if err := tr.Open(context.Background(), ln.Addr().String()); err != nil {
		t.Fatalf("open: %v", err)
	}
	(<-accepted).Close()

	if err := tr.Open(context.Background(), ln.Addr().String()); !errors.Is(err, ErrConnection) {
		t.Errorf("double open: %v", err)
	}
	if err := tr.Close(); err != nil {
		t.Errorf("close: %v", err)
	}
	if err := tr.Close(); err != nil {
		t.Errorf("second close: %v", err)
	}
}
