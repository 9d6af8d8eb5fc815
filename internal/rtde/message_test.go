package rtde

import (
	"errors"
	"testing"
)

func TestDecodeControllerVersion(t *testing.T) {
	payload := []byte{
		0, 0, 0, 5, // major
		0, 0, 0, 12, // minor
		0, 0, 1, 0, // bugfix
		0, 0, 0, 7, // build
	}
	v, err := decodeControllerVersion(payload)
	if err != nil {
		t.Fatalf("decodeControllerVersion: %v", err)
	}
	want := ControllerVersion{Major: 5, Minor: 12, Bugfix: 256, Build: 7}
	if v != want {
		t.Errorf("version = %+v, want %+v", v, want)
	}
	if v.String() != "5.12.256.7" {
		t.Errorf("String() = %q", v.String())
	}
}

func TestDecodeControllerVersionWrongSize(t *testing.T) {
	if _, err := decodeControllerVersion(make([]byte, 15)); !errors.Is(err, ErrProtocol) {
		t.Errorf("err = %v, want ErrProtocol", err)
	}
}

func TestControllerVersionOrdering(t *testing.T) {
	tests := []struct {
		v      ControllerVersion
		oldSty bool
	}{
		{ControllerVersion{Major: 3, Minor: 2, Bugfix: 19170}, true},
		{ControllerVersion{Major: 3, Minor: 1, Bugfix: 99999}, true},
		{ControllerVersion{Major: 2, Minor: 9, Bugfix: 0}, true},
		{ControllerVersion{Major: 3, Minor: 2, Bugfix: 19171}, false},
		{ControllerVersion{Major: 5, Minor: 0, Bugfix: 0}, false},
	}
	for _, tt := range tests {
		if got := tt.v.before(minimumControllerVersion); got != tt.oldSty {
			t.Errorf("%s before minimum = %v, want %v", tt.v, got, tt.oldSty)
		}
	}
}

func TestTextMessageRoundTrip(t *testing.T) {
	in := TextMessage{Level: MessageWarning, Message: "protective stop", Source: "controller"}

	payload, err := encodeTextMessage(in)
	if err != nil {
		t.Fatalf("encodeTextMessage: %v", err)
	}
	out, err := decodeTextMessage(payload)
	if err != nil {
		t.Fatalf("decodeTextMessage: %v", err)
	}
	if out != in {
		t.Errorf("round trip = %+v, want %+v", out, in)
	}
}

func TestDecodeTextMessageTruncated(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
	}{
		{"empty", nil},
		{"message cut short", []byte{5, 'a', 'b'}},
		{"missing level", []byte{1, 'a', 1, 'b'}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := decodeTextMessage(tt.payload); !errors.Is(err, ErrProtocol) {
				t.Errorf("err = %v, want ErrProtocol", err)
			}
		})
	}
}

func TestDecodeAccepted(t *testing.T) {
	if ok, err := decodeAccepted([]byte{1}); err != nil || !ok {
		t.Errorf("accepted(1) = (%v, %v)", ok, err)
	}
	if ok, err := decodeAccepted([]byte{0}); err != nil || ok {
		t.Errorf("accepted(0) = (%v, %v)", ok, err)
	}
	if _, err := decodeAccepted([]byte{1, 2}); !errors.Is(err, ErrProtocol) {
		t.Errorf("oversized flag: err = %v, want ErrProtocol", err)
	}
}

func TestDecodeSetupReply(t *testing.T) {
	reply, err := decodeSetupReply(append([]byte{3}, "DOUBLE,UINT32"...))
	if err != nil {
		t.Fatalf("decodeSetupReply: %v", err)
	}
	if reply.id != 3 {
		t.Errorf("id = %d, want 3", reply.id)
	}
	if len(reply.types) != 2 || reply.types[0] != "DOUBLE" || reply.types[1] != "UINT32" {
		t.Errorf("types = %v", reply.types)
	}
	if got := reply.rejected(); got != nil {
		t.Errorf("rejected = %v, want none", got)
	}
}

func TestSetupReplyRejectionMarkers(t *testing.T) {
	reply, err := decodeSetupReply(append([]byte{1}, "DOUBLE,IN_USE,NOT_FOUND"...))
	if err != nil {
		t.Fatalf("decodeSetupReply: %v", err)
	}
	got := reply.rejected()
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("rejected = %v, want [1 2]", got)
	}
}
