package bgapi

import (
	"github.com/pkg/errors"

	"github.com/myolinux/bled112"
)

// Header identifies one BGAPI frame: whether it is an event or a
// response, how many payload bytes follow, and which logical message
// within the class it carries.
type Header struct {
	IsEvent   bool
	Length    uint16
	ClassID   uint8
	CommandID uint8
}

// Is reports whether the header carries the given message.
func (h Header) Is(classID, commandID uint8) bool {
	return h.ClassID == classID && h.CommandID == commandID
}

// Marshal builds a command frame: header followed by the payload
// verbatim. The protocol is little-endian with fixed-width fields, so no
// transformation or escaping is applied.
func Marshal(classID, commandID uint8, payload []byte) ([]byte, error) {
	if len(payload) > MaxPayload {
		return nil, errors.Wrapf(bled112.ErrFrame, "payload length %v exceeds %v", len(payload), MaxPayload)
	}

	b := make([]byte, headerLength+len(payload))
	b[0] = uint8(len(payload)>>8) & lengthHighBits
	b[1] = uint8(len(payload))
	b[2] = classID
	b[3] = commandID
	copy(b[headerLength:], payload)
	return b, nil
}

// ParseHeader decodes the 4 header bytes of an incoming frame. A header
// with non-zero technology type bits cannot belong to this protocol and
// is rejected as malformed.
func ParseHeader(b []byte) (Header, error) {
	if len(b) != headerLength {
		return Header{}, errors.Wrapf(bled112.ErrFrame, "header is %v bytes, want %v", len(b), headerLength)
	}
	if b[0]&techTypeBits != 0 {
		return Header{}, errors.Wrapf(bled112.ErrFrame, "unknown technology type in header byte 0x%02x", b[0])
	}

	return Header{
		IsEvent:   b[0]&msgTypeEvent != 0,
		Length:    uint16(b[0]&lengthHighBits)<<8 | uint16(b[1]),
		ClassID:   b[2],
		CommandID: b[3],
	}, nil
}
