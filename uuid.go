package bled112

import "encoding/hex"

// UUIDString renders UUID bytes received in wire order (least significant
// byte first) as lowercase hex in display order. Works for 2, 4 and 16
// byte UUIDs alike.
func UUIDString(b []byte) string {
	r := make([]byte, len(b))
	for i, v := range b {
		r[len(b)-1-i] = v
	}
	return hex.EncodeToString(r)
}
