package bgapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/myolinux/bled112"
)

func TestScanResponse(t *testing.T) {
	e := ScanResponse{
		0xc4,                               // rssi -60
		0x00,                               // packet type
		0x66, 0x4d, 0xd4, 0xe2, 0x23, 0x01, // sender
		0x00,             // address type
		0xff,             // bond
		0x03,             // data length
		0x02, 0x01, 0x06, // data
	}
	require.True(t, e.Valid())
	assert.Equal(t, int8(-60), e.RSSI())
	assert.Equal(t, bled112.Address{0x66, 0x4d, 0xd4, 0xe2, 0x23, 0x01}, e.Sender())
	assert.Equal(t, []byte{0x02, 0x01, 0x06}, e.Data())

	// embedded length must match the bytes that follow
	assert.False(t, ScanResponse(e[:len(e)-1]).Valid())
	assert.False(t, ScanResponse(nil).Valid())
}

func TestConnectionStatus(t *testing.T) {
	e := ConnectionStatus{
		0x01,                               // connection
		0x05,                               // flags: connected|completed
		0x66, 0x4d, 0xd4, 0xe2, 0x23, 0x01, // address
		0x00,       // address type
		0x06, 0x00, // conn interval
		0x40, 0x00, // timeout
		0x00, 0x00, // latency
		0x00, // bonding
	}
	require.True(t, e.Valid())
	assert.Equal(t, uint8(1), e.Connection())
	assert.True(t, e.Connected())
	assert.Equal(t, "01:23:e2:d4:4d:66", e.Address().String())

	e[1] = 0x00
	assert.False(t, e.Connected())
}

func TestDisconnected(t *testing.T) {
	e := Disconnected{0x00, 0x08, 0x02}
	require.True(t, e.Valid())
	assert.Equal(t, uint8(0), e.Connection())
	assert.Equal(t, uint16(0x0208), e.Reason())
}

func TestFindInformationFound(t *testing.T) {
	e := FindInformationFound{0x01, 0x17, 0x00, 0x02, 0x01, 0x2a}
	require.True(t, e.Valid())
	assert.Equal(t, uint16(0x0017), e.ChrHandle())
	assert.Equal(t, []byte{0x01, 0x2a}, e.UUID())

	assert.False(t, FindInformationFound{0x01, 0x17, 0x00, 0x05, 0x01}.Valid())
}

func TestAttributeValue(t *testing.T) {
	e := AttributeValue{0x01, 0x2b, 0x00, 0x01, 0x02, 0xaa, 0xbb}
	require.True(t, e.Valid())
	assert.Equal(t, uint16(0x002b), e.AttHandle())
	assert.Equal(t, []byte{0xaa, 0xbb}, e.Value())

	assert.False(t, AttributeValue{0x01, 0x2b, 0x00, 0x01, 0x03, 0xaa, 0xbb}.Valid())
}

func TestProcedureCompleted(t *testing.T) {
	e := ProcedureCompleted{0x01, 0x82, 0x00, 0x19, 0x00}
	require.True(t, e.Valid())
	assert.Equal(t, uint16(0x0082), e.Result())
	assert.Equal(t, uint16(0x0019), e.ChrHandle())
}

func TestResponses(t *testing.T) {
	r := Result{0x81, 0x01}
	require.True(t, r.Valid())
	assert.Equal(t, uint16(0x0181), r.Result())

	cd := ConnectDirect{0x00, 0x00, 0x02}
	require.True(t, cd.Valid())
	assert.Equal(t, uint16(0), cd.Result())
	assert.Equal(t, uint8(2), cd.Connection())

	cr := ConnectionResult{0x01, 0x86, 0x01}
	require.True(t, cr.Valid())
	assert.Equal(t, uint8(1), cr.Connection())
	assert.Equal(t, uint16(0x0186), cr.Result())
}
