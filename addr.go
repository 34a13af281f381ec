package bled112

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// Address is a 6-byte Bluetooth device address as it appears on the wire,
// i.e. least significant byte first. It is a plain value; copy it freely.
type Address [6]byte

// ParseAddress parses the colon-separated form used by bluetoothctl,
// e.g. "01:23:e2:d4:4d:66". The leftmost group is the most significant
// byte and is stored last.
func ParseAddress(s string) (Address, error) {
	var a Address

	parts := strings.Split(strings.ToLower(s), ":")
	if len(parts) != len(a) {
		return Address{}, fmt.Errorf("invalid address %q: expected 6 groups, got %d", s, len(parts))
	}

	for i, p := range parts {
		b, err := hex.DecodeString(p)
		if err != nil || len(b) != 1 {
			return Address{}, fmt.Errorf("invalid address %q: bad group %q", s, p)
		}
		a[len(a)-1-i] = b[0]
	}

	return a, nil
}

func (a Address) String() string {
	return fmt.Sprintf("%02x:%02x:%02x:%02x:%02x:%02x", a[5], a[4], a[3], a[2], a[1], a[0])
}

// Bytes returns the address in wire order.
func (a Address) Bytes() []byte {
	out := make([]byte, len(a))
	copy(out, a[:])
	return out
}
