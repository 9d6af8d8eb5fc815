package rtde

import (
	"bytes"
	"errors"
	"testing"
)

func TestEncodePacketFraming(t *testing.T) {
	payloads := [][]byte{
		nil,
		{},
		{0x01},
		bytes.Repeat([]byte{0xAB}, 300),
	}

	for _, payload := range payloads {
		pkt, err := EncodePacket(CmdDataPackage, payload)
		if err != nil {
			t.Fatalf("EncodePacket(%d bytes): %v", len(payload), err)
		}
		if len(pkt) != HeaderSize+len(payload) {
			t.Fatalf("packet length = %d, want %d", len(pkt), HeaderSize+len(payload))
		}

		hdr, err := DecodePacketHeader(pkt)
		if err != nil {
			t.Fatalf("DecodePacketHeader: %v", err)
		}
		if hdr.Command != CmdDataPackage {
			t.Errorf("command = 0x%02X, want 0x%02X", hdr.Command, CmdDataPackage)
		}
		if hdr.TotalSize != HeaderSize+len(payload) {
			t.Errorf("declared size = %d, want %d", hdr.TotalSize, HeaderSize+len(payload))
		}
		if !bytes.Equal(pkt[HeaderSize:], payload) {
			t.Errorf("payload corrupted in framing")
		}
	}
}

func TestEncodePacketTooLarge(t *testing.T) {
	_, err := EncodePacket(CmdDataPackage, make([]byte, maxPacketSize))
	if !errors.Is(err, ErrSerialization) {
		t.Fatalf("err = %v, want ErrSerialization", err)
	}
}

func TestDecodePacketHeaderErrors(t *testing.T) {
	tests := []struct {
		name string
		buf  []byte
	}{
		{"empty", nil},
		{"short", []byte{CmdStart, 0x00}},
		{"declared length below header", []byte{CmdStart, 0x00, 0x02}},
		{"declared length zero", []byte{CmdStart, 0x00, 0x00}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodePacketHeader(tt.buf); !errors.Is(err, ErrProtocol) {
				t.Errorf("err = %v, want ErrProtocol", err)
			}
		})
	}
}
