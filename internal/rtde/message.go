package rtde

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// ControllerVersion is the controller's reported software version.
// Informational only, not required for operation.
type ControllerVersion struct {
	Major  uint32
	Minor  uint32
	Bugfix uint32
	Build  uint32
}

func (v ControllerVersion) String() string {
	return fmt.Sprintf("%d.%d.%d.%d", v.Major, v.Minor, v.Bugfix, v.Build)
}

// minimumControllerVersion is the oldest controller release known to speak
// protocol version 2 correctly. Older controllers get a logged warning.
var minimumControllerVersion = ControllerVersion{Major: 3, Minor: 2, Bugfix: 19171}

func (v ControllerVersion) before(o ControllerVersion) bool {
	if v.Major != o.Major {
		return v.Major < o.Major
	}
	if v.Minor != o.Minor {
		return v.Minor < o.Minor
	}
	return v.Bugfix < o.Bugfix
}

func decodeControllerVersion(payload []byte) (ControllerVersion, error) {
	if len(payload) != 16 {
		return ControllerVersion{}, fmt.Errorf("%w: controller version payload is %d bytes, want 16", ErrProtocol, len(payload))
	}
	return ControllerVersion{
		Major:  binary.BigEndian.Uint32(payload[0:4]),
		Minor:  binary.BigEndian.Uint32(payload[4:8]),
		Bugfix: binary.BigEndian.Uint32(payload[8:12]),
		Build:  binary.BigEndian.Uint32(payload[12:16]),
	}, nil
}

// Text message severity levels.
const (
	MessageException = uint8(0)
	MessageError     = uint8(1)
	MessageWarning   = uint8(2)
	MessageInfo      = uint8(3)
)

// TextMessage is an ancillary log line exchanged over the session.
type TextMessage struct {
	Level   uint8
	Message string
	Source  string
}

func decodeTextMessage(payload []byte) (TextMessage, error) {
	if len(payload) < 1 {
		return TextMessage{}, fmt.Errorf("%w: empty text message payload", ErrProtocol)
	}
	off := 0
	msgLen := int(payload[off])
	off++
	if len(payload) < off+msgLen+1 {
		return TextMessage{}, fmt.Errorf("%w: truncated text message", ErrProtocol)
	}
	msg := string(payload[off : off+msgLen])
	off += msgLen

	srcLen := int(payload[off])
	off++
	if len(payload) < off+srcLen+1 {
		return TextMessage{}, fmt.Errorf("%w: truncated text message source", ErrProtocol)
	}
	src := string(payload[off : off+srcLen])
	off += srcLen

	return TextMessage{Level: payload[off], Message: msg, Source: src}, nil
}

func encodeTextMessage(m TextMessage) ([]byte, error) {
	if len(m.Message) > 0xFF || len(m.Source) > 0xFF {
		return nil, fmt.Errorf("%w: text message fields exceed length prefix", ErrSerialization)
	}
	buf := make([]byte, 0, 3+len(m.Message)+len(m.Source))
	buf = append(buf, byte(len(m.Message)))
	buf = append(buf, m.Message...)
	buf = append(buf, byte(len(m.Source)))
	buf = append(buf, m.Source...)
	return append(buf, m.Level), nil
}

// decodeAccepted reads the single-byte accept/refuse flag the controller
// answers to version, start and pause requests with.
func decodeAccepted(payload []byte) (bool, error) {
	if len(payload) != 1 {
		return false, fmt.Errorf("%w: accept flag payload is %d bytes, want 1", ErrProtocol, len(payload))
	}
	return payload[0] != 0, nil
}

// setupReply is the controller's answer to a recipe setup request: the
// assigned recipe id plus the controller-resolved type name per field.
type setupReply struct {
	id    uint8
	types []string
}

// Markers the controller substitutes for a field it refuses to register.
var rejectionMarkers = map[string]struct{}{
	"IN_USE":    {},
	"NOT_FOUND": {},
}

func decodeSetupReply(payload []byte) (setupReply, error) {
	if len(payload) < 2 {
		return setupReply{}, fmt.Errorf("%w: setup reply payload is %d bytes", ErrProtocol, len(payload))
	}
	return setupReply{
		id:    payload[0],
		types: strings.Split(string(payload[1:]), ","),
	}, nil
}

// rejected returns the positions the controller refused.
func (r setupReply) rejected() []int {
	var out []int
	for i, t := range r.types {
		if _, bad := rejectionMarkers[t]; bad {
			out = append(out, i)
		}
	}
	return out
}
