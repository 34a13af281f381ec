package myo

// ServiceUUID identifies the Myo control service. A Myo advertisement
// carries it at the end of the vendor-specific data, which is how the
// device is recognized while scanning.
var ServiceUUID = []byte{
	0x42, 0x48, 0x12, 0x4a,
	0x7f, 0x2c, 0x48, 0x47,
	0xb9, 0xde, 0x04, 0xa9,
	0x01, 0x00, 0x06, 0xd5,
}

// Attribute handles of the Myo GATT database. The firmware interface is
// stable enough that hardcoding them beats a discovery pass; the
// descriptor handles have no unique UUID anyway and can only be told
// apart by position.
const (
	handleInfo            uint16 = 0x00
	handleDeviceName      uint16 = 0x03
	handleFirmwareVersion uint16 = 0x17
	handleCommand         uint16 = 0x19

	handleIMUData           uint16 = 0x1c
	handleIMUDataDescriptor uint16 = 0x1d

	handleEmgData0 uint16 = 0x2b
	handleEmgData1 uint16 = 0x2e
	handleEmgData2 uint16 = 0x31
	handleEmgData3 uint16 = 0x34

	handleEmgData0Descriptor uint16 = 0x2c
	handleEmgData1Descriptor uint16 = 0x2f
	handleEmgData2Descriptor uint16 = 0x32
	handleEmgData3Descriptor uint16 = 0x35
)

// eventDescriptors are the client characteristic configuration
// descriptors that gate the sample notifications.
var eventDescriptors = []uint16{
	handleIMUDataDescriptor,
	handleEmgData0Descriptor,
	handleEmgData1Descriptor,
	handleEmgData2Descriptor,
	handleEmgData3Descriptor,
}

var (
	notificationsEnable  = []byte{0x01, 0x00}
	notificationsDisable = []byte{0x00, 0x00}
)

// Command ids written to the command characteristic.
const (
	cmdSetMode      uint8 = 0x01
	cmdVibrate      uint8 = 0x03
	cmdDeepSleep    uint8 = 0x04
	cmdVibrate2     uint8 = 0x07
	cmdSetSleepMode uint8 = 0x09
	cmdUnlock       uint8 = 0x0a
	cmdUserAction   uint8 = 0x0b
)

// EmgMode selects the EMG data stream.
type EmgMode uint8

const (
	EmgNone     EmgMode = 0x00 // do not send EMG data
	EmgFiltered EmgMode = 0x02 // send filtered EMG data
	EmgRaw      EmgMode = 0x03 // send raw (unfiltered) EMG data
)

// ImuMode selects the IMU data stream.
type ImuMode uint8

const (
	ImuNone   ImuMode = 0x00 // do not send IMU data or events
	ImuData   ImuMode = 0x01 // send IMU data streams
	ImuEvents ImuMode = 0x02 // send motion events detected by the IMU
	ImuAll    ImuMode = 0x03 // send both data streams and motion events
	ImuRaw    ImuMode = 0x04 // send raw IMU data streams
)

// ClassifierMode toggles the onboard gesture classifier.
type ClassifierMode uint8

const (
	ClassifierDisabled ClassifierMode = 0x00
	ClassifierEnabled  ClassifierMode = 0x01
)

// SleepMode controls the inactivity behaviour.
type SleepMode uint8

const (
	SleepNormal SleepMode = 0x00 // sleep after a period of inactivity
	NeverSleep  SleepMode = 0x01
)

// Vibration selects the duration of a vibration command.
type Vibration uint8

const (
	VibrationNone   Vibration = 0x00
	VibrationShort  Vibration = 0x01
	VibrationMedium Vibration = 0x02
	VibrationLong   Vibration = 0x03
)

// UnlockType controls the lock state of the classifier.
type UnlockType uint8

const (
	UnlockLock  UnlockType = 0x00 // re-lock immediately
	UnlockTimed UnlockType = 0x01 // unlock until inactivity
	UnlockHold  UnlockType = 0x02 // unlock until told otherwise
)
