package rtde

import (
	"encoding/binary"
	"fmt"
)

// Command bytes. The controller uses the ASCII mnemonics shown.
const (
	CmdRequestProtocolVersion byte = 0x56 // 'V'
	CmdGetControllerVersion   byte = 0x76 // 'v'
	CmdTextMessage            byte = 0x4D // 'M'
	CmdDataPackage            byte = 0x55 // 'U'
	CmdSetupOutputs           byte = 0x4F // 'O'
	CmdSetupInputs            byte = 0x49 // 'I'
	CmdStart                  byte = 0x53 // 'S'
	CmdPause                  byte = 0x50 // 'P'
)

// HeaderSize is the fixed packet header width: command byte + length word.
const HeaderSize = 3

// maxPacketSize is the largest total length the 2-byte length word can carry.
const maxPacketSize = 0xFFFF

// PacketHeader is the decoded fixed header of one wire packet.
type PacketHeader struct {
	Command   byte
	TotalSize int // header + payload
}

// EncodePacket frames a payload: command byte, big-endian total length
// including the header, then the payload. Pure function, no session state.
func EncodePacket(cmd byte, payload []byte) ([]byte, error) {
	total := HeaderSize + len(payload)
	if total > maxPacketSize {
		return nil, fmt.Errorf("%w: packet of %d bytes exceeds length field", ErrSerialization, total)
	}

	buf := make([]byte, 0, total)
	buf = append(buf, cmd)
	var l [2]byte
	binary.BigEndian.PutUint16(l[:], uint16(total))
	buf = append(buf, l[:]...)
	return append(buf, payload...), nil
}

// DecodePacketHeader reads the fixed header from the front of buf.
// A declared length smaller than the header itself is a malformed frame.
func DecodePacketHeader(buf []byte) (PacketHeader, error) {
	if len(buf) < HeaderSize {
		return PacketHeader{}, fmt.Errorf("%w: %d bytes is short of the %d-byte header", ErrProtocol, len(buf), HeaderSize)
	}
	hdr := PacketHeader{
		Command:   buf[0],
		TotalSize: int(binary.BigEndian.Uint16(buf[1:3])),
	}
	if hdr.TotalSize < HeaderSize {
		return PacketHeader{}, fmt.Errorf("%w: declared packet length %d below header size", ErrProtocol, hdr.TotalSize)
	}
	return hdr, nil
}

func commandName(cmd byte) string {
	switch cmd {
	case CmdRequestProtocolVersion:
		return "REQUEST_PROTOCOL_VERSION"
	case CmdGetControllerVersion:
		return "GET_CONTROLLER_VERSION"
	case CmdTextMessage:
		return "TEXT_MESSAGE"
	case CmdDataPackage:
		return "DATA_PACKAGE"
	case CmdSetupOutputs:
		return "SETUP_OUTPUTS"
	case CmdSetupInputs:
		return "SETUP_INPUTS"
	case CmdStart:
		return "START"
	case CmdPause:
		return "PAUSE"
	default:
		return fmt.Sprintf("UNKNOWN(0x%02X)", cmd)
	}
}
