// Package myo is the Myo armband session on top of the gatt package:
// device commands become attribute writes on the command characteristic,
// sensor notifications become typed EMG and IMU samples.
package myo

import (
	"bytes"

	"github.com/myolinux/bled112"
	"github.com/myolinux/bled112/gatt"
)

// EmgHandler receives EMG samples; they arrive at 200 Hz, two samples per
// notification.
type EmgHandler func(EmgSample)

// ImuHandler receives IMU samples at 50 Hz, as reported by the device;
// scale with OrientationScale and friends to get engineering units.
type ImuHandler func(OrientationSample, AccelerometerSample, GyroscopeSample)

// Client drives one Myo armband. It shares the blocking, caller-paced
// model of the layers below.
type Client struct {
	gc  *gatt.Client
	log bled112.Logger

	onEmg EmgHandler
	onImu ImuHandler
}

func NewClient(gc *gatt.Client) *Client {
	return &Client{
		gc:  gc,
		log: bled112.GetLogger().ChildLogger(map[string]interface{}{"pkg": "myo"}),
	}
}

// IsMyo reports whether an advertisement payload belongs to a Myo: the
// control service UUID trails the vendor-specific data.
func IsMyo(data []byte) bool {
	return len(data) >= len(ServiceUUID) && bytes.Equal(data[len(data)-len(ServiceUUID):], ServiceUUID)
}

// Discover scans for Myo devices, dropping every other advertisement.
// All dongle connection slots are released first so a stale connection
// from an earlier run cannot keep the device from advertising.
func (c *Client) Discover(h gatt.DiscoveryHandler) error {
	if err := c.gc.DisconnectAll(); err != nil {
		return err
	}
	return c.gc.Discover(func(rssi int8, addr bled112.Address, data []byte) bool {
		if !IsMyo(data) {
			return true
		}
		return h(rssi, addr, data)
	})
}

// Connect connects to the device and enables the sample notifications.
func (c *Client) Connect(addr bled112.Address) error {
	if err := c.gc.Connect(addr); err != nil {
		return err
	}
	return c.setNotifications(notificationsEnable)
}

// ConnectString connects to an address in colon-separated form.
func (c *Client) ConnectString(s string) error {
	addr, err := bled112.ParseAddress(s)
	if err != nil {
		return err
	}
	return c.Connect(addr)
}

// ConnectAny connects to the first Myo that shows up while scanning.
func (c *Client) ConnectAny() (bled112.Address, error) {
	var found *bled112.Address
	err := c.Discover(func(rssi int8, addr bled112.Address, data []byte) bool {
		a := addr
		found = &a
		return false
	})
	if err != nil {
		return bled112.Address{}, err
	}
	if found == nil {
		return bled112.Address{}, bled112.ErrNotFound
	}
	return *found, c.Connect(*found)
}

// Connected reports whether the device session is established.
func (c *Client) Connected() bool {
	return c.gc.Connected()
}

// Address returns the address of the connected device.
func (c *Client) Address() (bled112.Address, error) {
	return c.gc.Address()
}

// Info reads the device info attribute.
func (c *Client) Info() (Info, error) {
	var info Info
	value, err := c.gc.ReadAttribute(handleInfo)
	if err != nil {
		return Info{}, err
	}
	if err := decodeInto(value, &info); err != nil {
		return Info{}, err
	}
	return info, nil
}

// FirmwareVersion reads the firmware version attribute.
func (c *Client) FirmwareVersion() (Version, error) {
	var v Version
	value, err := c.gc.ReadAttribute(handleFirmwareVersion)
	if err != nil {
		return Version{}, err
	}
	if err := decodeInto(value, &v); err != nil {
		return Version{}, err
	}
	return v, nil
}

// DeviceName reads the GAP device name.
func (c *Client) DeviceName() (string, error) {
	value, err := c.gc.ReadAttribute(handleDeviceName)
	if err != nil {
		return "", err
	}
	return string(value), nil
}

// SetMode selects the EMG, IMU and classifier streams.
func (c *Client) SetMode(emg EmgMode, imu ImuMode, classifier ClassifierMode) error {
	return c.command(cmdSetMode, uint8(emg), uint8(imu), uint8(classifier))
}

// Vibrate issues one vibration.
func (c *Client) Vibrate(v Vibration) error {
	return c.command(cmdVibrate, uint8(v))
}

// VibrationStep is one segment of an extended vibration pattern.
type VibrationStep struct {
	Duration uint16 // milliseconds
	Strength uint8  // 0 is off, 255 is full
}

// Vibrate2 plays a pattern of up to six vibration steps.
func (c *Client) Vibrate2(steps [6]VibrationStep) error {
	args := make([]uint8, 0, 18)
	for _, s := range steps {
		args = append(args, uint8(s.Duration), uint8(s.Duration>>8), s.Strength)
	}
	return c.command(cmdVibrate2, args...)
}

// SetSleepMode controls whether the device sleeps when inactive.
func (c *Client) SetSleepMode(mode SleepMode) error {
	return c.command(cmdSetSleepMode, uint8(mode))
}

// DeepSleep puts the device into deep sleep; only a charger wakes it.
func (c *Client) DeepSleep() error {
	return c.command(cmdDeepSleep)
}

// Unlock changes the lock state of the classifier.
func (c *Client) Unlock(t UnlockType) error {
	return c.command(cmdUnlock, uint8(t))
}

// UserAction confirms a recognized gesture to the user.
func (c *Client) UserAction() error {
	return c.command(cmdUserAction, 0x00)
}

// OnEmg registers the EMG sample handler.
func (c *Client) OnEmg(h EmgHandler) {
	c.onEmg = h
}

// OnImu registers the IMU sample handler.
func (c *Client) OnImu(h ImuHandler) {
	c.onImu = h
}

// Listen waits for one notification and dispatches it to the matching
// sample handler. Call it in a loop; it returns ErrDisconnected for good
// once the link has dropped.
func (c *Client) Listen() error {
	return c.gc.Listen(c.dispatch)
}

// Disconnect disables the sample notifications, then drops the link. The
// device disconnects on its own once data has flowed and the program goes
// away, but doing it explicitly avoids a window where it cannot be
// reached again.
func (c *Client) Disconnect() error {
	if err := c.setNotifications(notificationsDisable); err != nil {
		return err
	}
	return c.gc.Disconnect()
}

func (c *Client) setNotifications(value []byte) error {
	for _, descriptor := range eventDescriptors {
		if err := c.gc.WriteAttribute(descriptor, value); err != nil {
			return err
		}
	}
	return nil
}

// command writes one device command to the command characteristic: a
// 2-byte header (command id, payload size) followed by the arguments.
func (c *Client) command(cmd uint8, args ...uint8) error {
	payload := make([]byte, 0, 2+len(args))
	payload = append(payload, cmd, uint8(len(args)))
	payload = append(payload, args...)
	return c.gc.WriteAttribute(handleCommand, payload)
}

func (c *Client) dispatch(attribute uint16, value []byte) {
	switch attribute {
	case handleEmgData0, handleEmgData1, handleEmgData2, handleEmgData3:
		if c.onEmg == nil {
			return
		}
		var d emgData
		if err := decodeInto(value, &d); err != nil {
			c.log.Warnf("bad EMG notification: %v", err)
			return
		}
		c.onEmg(EmgSample(d.Sample1))
		c.onEmg(EmgSample(d.Sample2))

	case handleIMUData:
		if c.onImu == nil {
			return
		}
		var d imuData
		if err := decodeInto(value, &d); err != nil {
			c.log.Warnf("bad IMU notification: %v", err)
			return
		}
		c.onImu(OrientationSample(d.Orientation), AccelerometerSample(d.Accelerometer), GyroscopeSample(d.Gyroscope))

	default:
		c.log.Debugf("notification for unhandled attribute 0x%02x", attribute)
	}
}
