package bgapi

import "encoding/binary"

// Typed views over raw response payloads, same convention as evt.go.

// Result is the response shape shared by gap discover and gap
// end_procedure: a single 16-bit result code, zero on success.
type Result []byte

func (r Result) Valid() bool    { return len(r) == 2 }
func (r Result) Result() uint16 { return binary.LittleEndian.Uint16(r[0:2]) }

// ConnectDirect is the gap connect_direct response.
type ConnectDirect []byte

func (r ConnectDirect) Valid() bool       { return len(r) == 3 }
func (r ConnectDirect) Result() uint16    { return binary.LittleEndian.Uint16(r[0:2]) }
func (r ConnectDirect) Connection() uint8 { return r[2] }

// ConnectionResult is the response shape shared by connection disconnect
// and the attclient commands: the connection handle echoed back plus a
// 16-bit result code.
type ConnectionResult []byte

func (r ConnectionResult) Valid() bool       { return len(r) == 3 }
func (r ConnectionResult) Connection() uint8 { return r[0] }
func (r ConnectionResult) Result() uint16    { return binary.LittleEndian.Uint16(r[1:3]) }

// GetStatus is the connection get_status response; the status itself
// arrives as a connection status event right after.
type GetStatus []byte

func (r GetStatus) Valid() bool       { return len(r) == 1 }
func (r GetStatus) Connection() uint8 { return r[0] }
