package myo

import (
	"bytes"
	"encoding/binary"

	"github.com/pkg/errors"
)

// Raw sample values are fixed-point; divide by the matching scale to get
// engineering units.
const (
	OrientationScale   float32 = 16384.0
	AccelerometerScale float32 = 2048.0 // units of g, range ±16
	GyroscopeScale     float32 = 16.0   // units of deg/s, range ±2000
)

// EmgSample is one reading of the eight EMG sensors.
type EmgSample [8]int8

// OrientationSample is a unit quaternion in w, x, y, z order, multiplied
// by OrientationScale.
type OrientationSample [4]int16

// AccelerometerSample holds x, y, z acceleration.
type AccelerometerSample [3]int16

// GyroscopeSample holds x, y, z angular velocity.
type GyroscopeSample [3]int16

// Info mirrors the device info attribute layout.
type Info struct {
	SerialNumber          [6]uint8
	UnlockPose            uint16
	ActiveClassifierType  uint8
	ActiveClassifierIndex uint8
	HasCustomClassifier   uint8
	StreamIndicating      uint8
	SKU                   uint8
	Reserved              [7]uint8
}

// Version mirrors the firmware version attribute layout.
type Version struct {
	Major       uint16
	Minor       uint16
	Patch       uint16
	HardwareRev uint16
}

// An EMG notification packs two consecutive samples; an IMU notification
// packs one quaternion plus accelerometer and gyroscope readings.
type emgData struct {
	Sample1 [8]int8
	Sample2 [8]int8
}

type imuData struct {
	Orientation   [4]int16
	Accelerometer [3]int16
	Gyroscope     [3]int16
}

func decodeInto(value []byte, out interface{}) error {
	r := bytes.NewReader(value)
	if err := binary.Read(r, binary.LittleEndian, out); err != nil {
		return errors.Wrapf(err, "decode %v byte payload", len(value))
	}
	return nil
}
