package bled112

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAddress(t *testing.T) {
	a, err := ParseAddress("01:23:e2:d4:4d:66")
	require.NoError(t, err)

	// leftmost group is the most significant byte, stored last
	assert.Equal(t, Address{0x66, 0x4d, 0xd4, 0xe2, 0x23, 0x01}, a)
	assert.Equal(t, "01:23:e2:d4:4d:66", a.String())
}

func TestParseAddressUppercase(t *testing.T) {
	a, err := ParseAddress("AA:BB:CC:DD:EE:FF")
	require.NoError(t, err)
	assert.Equal(t, "aa:bb:cc:dd:ee:ff", a.String())
}

func TestParseAddressErrors(t *testing.T) {
	for _, s := range []string{
		"",
		"01:23:e2:d4:4d",
		"01:23:e2:d4:4d:66:77",
		"01-23-e2-d4-4d-66",
		"zz:23:e2:d4:4d:66",
		"123:23:e2:d4:4d:66",
	} {
		_, err := ParseAddress(s)
		assert.Error(t, err, "input %q", s)
	}
}

func TestAddressBytesCopies(t *testing.T) {
	a := Address{1, 2, 3, 4, 5, 6}
	b := a.Bytes()
	b[0] = 0xff
	assert.Equal(t, uint8(1), a[0])
}

func TestUUIDString(t *testing.T) {
	// 16-bit UUID 0x2a00 in wire order
	assert.Equal(t, "2a00", UUIDString([]byte{0x00, 0x2a}))

	// the Myo control service UUID, wire order reversed for display
	wire := []byte{
		0xd5, 0x06, 0x00, 0x01,
		0xa9, 0x04, 0xde, 0xb9,
		0x47, 0x48, 0x2c, 0x7f,
		0x4a, 0x12, 0x48, 0x42,
	}
	assert.Equal(t, "4248124a7f2c4847b9de04a9010006d5", UUIDString(wire))
}
