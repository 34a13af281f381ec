package bgapi

// BGAPI protocol catalog for the pieces of the BLE stack this module
// drives. Values follow the "Bluetooth Smart Software API Reference
// Manual for BLE Version 1.7"; the layout description for each message
// lives with its accessor type in evt.go and resp.go.

// Header byte 0: bit 7 distinguishes events from responses, bits 6-3 are
// the technology type (zero for Bluetooth Smart) and bits 2-0 carry the
// high bits of the 11-bit payload length.
const (
	msgTypeEvent   = 0x80
	techTypeBits   = 0x78
	lengthHighBits = 0x07

	headerLength = 4

	// MaxPayload is the largest payload length the 11-bit header field
	// can declare. Anything above it cannot be a valid frame.
	MaxPayload = 0x07FF
)

// Protocol classes.
const (
	ClassConnection uint8 = 0x03
	ClassAttClient  uint8 = 0x04
	ClassGAP        uint8 = 0x06
)

// Connection class commands. Responses reuse the command id.
const (
	CmdConnectionDisconnect uint8 = 0x00
	CmdConnectionGetStatus  uint8 = 0x07
)

// Connection class events.
const (
	EvtConnectionStatus       uint8 = 0x00
	EvtConnectionDisconnected uint8 = 0x04
)

// Attribute client class commands.
const (
	CmdAttClientReadByGroupType uint8 = 0x01
	CmdAttClientFindInformation uint8 = 0x03
	CmdAttClientReadByHandle    uint8 = 0x04
	CmdAttClientAttributeWrite  uint8 = 0x05
)

// Attribute client class events.
const (
	EvtAttClientProcedureCompleted   uint8 = 0x01
	EvtAttClientGroupFound           uint8 = 0x02
	EvtAttClientFindInformationFound uint8 = 0x04
	EvtAttClientAttributeValue       uint8 = 0x05
)

// GAP class commands.
const (
	CmdGAPSetMode       uint8 = 0x01
	CmdGAPDiscover      uint8 = 0x02
	CmdGAPConnectDirect uint8 = 0x03
	CmdGAPEndProcedure  uint8 = 0x04
)

// GAP class events.
const (
	EvtGAPScanResponse uint8 = 0x00
	EvtGAPModeChanged  uint8 = 0x01
)

// GAP discover modes.
const (
	GAPDiscoverLimited     uint8 = 0x00
	GAPDiscoverGeneric     uint8 = 0x01
	GAPDiscoverObservation uint8 = 0x02
)

// GAP address types.
const (
	GAPAddressTypePublic uint8 = 0x00
	GAPAddressTypeRandom uint8 = 0x01
)

// Connection status flags reported by the connection status event.
const (
	ConnStatusConnected        uint8 = 0x01
	ConnStatusEncrypted        uint8 = 0x02
	ConnStatusCompleted        uint8 = 0x04
	ConnStatusParametersChange uint8 = 0x08
)
