package bgapi

import (
	"encoding/binary"

	"github.com/myolinux/bled112"
)

// Typed views over raw event payloads. Each type is a thin []byte wrapper
// with accessors for the fixed little-endian layout of its message;
// callers check Valid before trusting the getters.

// ScanResponse is the gap scan_response event.
type ScanResponse []byte

func (e ScanResponse) Valid() bool {
	return len(e) >= 11 && len(e) == 11+int(e[10])
}
func (e ScanResponse) RSSI() int8        { return int8(e[0]) }
func (e ScanResponse) PacketType() uint8 { return e[1] }
func (e ScanResponse) Sender() bled112.Address {
	var a bled112.Address
	copy(a[:], e[2:8])
	return a
}
func (e ScanResponse) AddressType() uint8 { return e[8] }
func (e ScanResponse) Bond() uint8        { return e[9] }

// Data returns the advertisement payload. The slice aliases the event;
// callers that keep it must copy.
func (e ScanResponse) Data() []byte { return e[11:] }

// ConnectionStatus is the connection status event.
type ConnectionStatus []byte

func (e ConnectionStatus) Valid() bool       { return len(e) == 16 }
func (e ConnectionStatus) Connection() uint8 { return e[0] }
func (e ConnectionStatus) Flags() uint8      { return e[1] }
func (e ConnectionStatus) Address() bled112.Address {
	var a bled112.Address
	copy(a[:], e[2:8])
	return a
}
func (e ConnectionStatus) Connected() bool {
	return e.Flags()&ConnStatusConnected != 0
}

// Disconnected is the connection disconnected event.
type Disconnected []byte

func (e Disconnected) Valid() bool       { return len(e) == 3 }
func (e Disconnected) Connection() uint8 { return e[0] }
func (e Disconnected) Reason() uint16    { return binary.LittleEndian.Uint16(e[1:3]) }

// FindInformationFound is the attclient find_information_found event,
// one (handle, UUID) pair of the information discovery procedure.
type FindInformationFound []byte

func (e FindInformationFound) Valid() bool {
	return len(e) >= 4 && len(e) == 4+int(e[3])
}
func (e FindInformationFound) Connection() uint8 { return e[0] }
func (e FindInformationFound) ChrHandle() uint16 { return binary.LittleEndian.Uint16(e[1:3]) }

// UUID returns the attribute UUID in wire order (LSB first).
func (e FindInformationFound) UUID() []byte { return e[4:] }

// AttributeValue is the attclient attribute_value event: one notification
// or read completion for an attribute.
type AttributeValue []byte

func (e AttributeValue) Valid() bool {
	return len(e) >= 5 && len(e) == 5+int(e[4])
}
func (e AttributeValue) Connection() uint8 { return e[0] }
func (e AttributeValue) AttHandle() uint16 { return binary.LittleEndian.Uint16(e[1:3]) }
func (e AttributeValue) AttType() uint8    { return e[3] }

// Value returns the attribute payload. The slice aliases the event.
func (e AttributeValue) Value() []byte { return e[5:] }

// ProcedureCompleted is the attclient procedure_completed event ending a
// write or discovery procedure.
type ProcedureCompleted []byte

func (e ProcedureCompleted) Valid() bool       { return len(e) == 5 }
func (e ProcedureCompleted) Connection() uint8 { return e[0] }
func (e ProcedureCompleted) Result() uint16    { return binary.LittleEndian.Uint16(e[1:3]) }
func (e ProcedureCompleted) ChrHandle() uint16 { return binary.LittleEndian.Uint16(e[3:5]) }
