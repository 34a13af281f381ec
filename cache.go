package bled112

// Characteristics maps a characteristic UUID, rendered as lowercase hex in
// display order (most significant byte first), to its attribute handle.
// It is built once per find-information pass and read-only afterwards.
type Characteristics map[string]uint16

// CharacteristicsCache persists characteristic maps per device address so
// that a caller can skip the discovery procedure on reconnect.
type CharacteristicsCache interface {
	Store(Address, Characteristics, bool) error
	Load(Address) (Characteristics, error)
	Clear() error
}
