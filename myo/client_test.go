package myo

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/myolinux/bled112"
	"github.com/myolinux/bled112/bgapi"
	"github.com/myolinux/bled112/gatt"
)

type fakeConn struct {
	rd bytes.Buffer
	wr bytes.Buffer
}

func (f *fakeConn) feed(frames ...[]byte) {
	for _, fr := range frames {
		f.rd.Write(fr)
	}
}

func (f *fakeConn) Read(p []byte) (int, error) {
	if f.rd.Len() == 0 {
		return 0, io.EOF
	}
	return f.rd.Read(p)
}

func (f *fakeConn) Write(p []byte) (int, error) {
	return f.wr.Write(p)
}

func (f *fakeConn) Close() error { return nil }

func resp(classID, cmdID uint8, payload ...byte) []byte {
	b, err := bgapi.Marshal(classID, cmdID, payload)
	if err != nil {
		panic(err)
	}
	return b
}

func evt(classID, cmdID uint8, payload ...byte) []byte {
	b := resp(classID, cmdID, payload...)
	b[0] |= 0x80
	return b
}

var testAddr = bled112.Address{0x66, 0x4d, 0xd4, 0xe2, 0x23, 0x01}

func connectFrames(conn uint8, addr bled112.Address) [][]byte {
	status := func(slot uint8, flags uint8, a bled112.Address) []byte {
		p := []byte{slot, flags}
		p = append(p, a.Bytes()...)
		return append(p, 0x00, 0x06, 0x00, 0x40, 0x00, 0x00, 0x00, 0x00)
	}

	var ff [][]byte
	for i := uint8(0); i < 3; i++ {
		ff = append(ff,
			resp(bgapi.ClassConnection, bgapi.CmdConnectionGetStatus, i),
			evt(bgapi.ClassConnection, bgapi.EvtConnectionStatus, status(i, 0x00, bled112.Address{})...),
		)
	}
	return append(ff,
		resp(bgapi.ClassGAP, bgapi.CmdGAPConnectDirect, 0x00, 0x00, conn),
		evt(bgapi.ClassConnection, bgapi.EvtConnectionStatus, status(conn, 0x05, addr)...),
	)
}

// writeOK scripts one successful attribute write exchange.
func writeOK(conn uint8, handle uint16) [][]byte {
	return [][]byte{
		resp(bgapi.ClassAttClient, bgapi.CmdAttClientAttributeWrite, conn, 0x00, 0x00),
		evt(bgapi.ClassAttClient, bgapi.EvtAttClientProcedureCompleted, conn, 0x00, 0x00, uint8(handle), uint8(handle>>8)),
	}
}

func writeFrame(conn uint8, handle uint16, value ...byte) []byte {
	p := []byte{conn, uint8(handle), uint8(handle >> 8), uint8(len(value))}
	return resp(bgapi.ClassAttClient, bgapi.CmdAttClientAttributeWrite, append(p, value...)...)
}

func attrValue(conn uint8, handle uint16, value []byte) []byte {
	p := []byte{conn, uint8(handle), uint8(handle >> 8), 0x01, uint8(len(value))}
	return evt(bgapi.ClassAttClient, bgapi.EvtAttClientAttributeValue, append(p, value...)...)
}

func connectedMyo(t *testing.T) (*Client, *fakeConn) {
	t.Helper()

	fc := &fakeConn{}
	fc.feed(connectFrames(1, testAddr)...)
	for _, descriptor := range eventDescriptors {
		fc.feed(writeOK(1, descriptor)...)
	}

	m := NewClient(gatt.NewClient(bgapi.NewClient(fc)))
	require.NoError(t, m.Connect(testAddr))
	require.True(t, m.Connected())
	fc.wr.Reset()
	return m, fc
}

func TestIsMyo(t *testing.T) {
	adv := append([]byte{0x02, 0x01, 0x06, 0x11, 0x06}, ServiceUUID...)
	assert.True(t, IsMyo(adv))
	assert.True(t, IsMyo(ServiceUUID))

	assert.False(t, IsMyo(nil))
	assert.False(t, IsMyo(ServiceUUID[:8]))
	assert.False(t, IsMyo(append(append([]byte{}, ServiceUUID...), 0x00)))
}

func TestConnectEnablesNotifications(t *testing.T) {
	fc := &fakeConn{}
	fc.feed(connectFrames(1, testAddr)...)
	for _, descriptor := range eventDescriptors {
		fc.feed(writeOK(1, descriptor)...)
	}

	m := NewClient(gatt.NewClient(bgapi.NewClient(fc)))
	require.NoError(t, m.Connect(testAddr))

	var want []byte
	for _, descriptor := range eventDescriptors {
		want = append(want, writeFrame(1, descriptor, 0x01, 0x00)...)
	}
	assert.True(t, bytes.HasSuffix(fc.wr.Bytes(), want))
}

func TestSetMode(t *testing.T) {
	m, fc := connectedMyo(t)
	fc.feed(writeOK(1, handleCommand)...)

	require.NoError(t, m.SetMode(EmgRaw, ImuData, ClassifierDisabled))

	want := writeFrame(1, handleCommand,
		0x01, // set mode
		0x03, // payload size
		0x03, // emg raw
		0x01, // imu data
		0x00, // classifier disabled
	)
	assert.Equal(t, want, fc.wr.Bytes())
}

func TestVibrate(t *testing.T) {
	m, fc := connectedMyo(t)
	fc.feed(writeOK(1, handleCommand)...)

	require.NoError(t, m.Vibrate(VibrationMedium))
	assert.Equal(t, writeFrame(1, handleCommand, 0x03, 0x01, 0x02), fc.wr.Bytes())
}

func TestVibrate2(t *testing.T) {
	m, fc := connectedMyo(t)
	fc.feed(writeOK(1, handleCommand)...)

	var steps [6]VibrationStep
	steps[0] = VibrationStep{Duration: 0x0102, Strength: 0xff}

	require.NoError(t, m.Vibrate2(steps))

	value := []byte{0x07, 18, 0x02, 0x01, 0xff}
	value = append(value, make([]byte, 15)...)
	assert.Equal(t, writeFrame(1, handleCommand, value...), fc.wr.Bytes())
}

func TestInfo(t *testing.T) {
	m, fc := connectedMyo(t)

	payload := []byte{
		0x01, 0x02, 0x03, 0x04, 0x05, 0x06, // serial number
		0x05, 0x00, // unlock pose
		0x01, // active classifier type
		0x00, // active classifier index
		0x01, // has custom classifier
		0x00, // stream indicating
		0x02, // sku
		0, 0, 0, 0, 0, 0, 0,
	}
	fc.feed(
		resp(bgapi.ClassAttClient, bgapi.CmdAttClientReadByHandle, 0x01, 0x00, 0x00),
		attrValue(1, handleInfo, payload),
	)

	info, err := m.Info()
	require.NoError(t, err)
	assert.Equal(t, [6]uint8{1, 2, 3, 4, 5, 6}, info.SerialNumber)
	assert.Equal(t, uint16(5), info.UnlockPose)
	assert.Equal(t, uint8(1), info.ActiveClassifierType)
	assert.Equal(t, uint8(1), info.HasCustomClassifier)
	assert.Equal(t, uint8(2), info.SKU)
}

func TestFirmwareVersion(t *testing.T) {
	m, fc := connectedMyo(t)
	fc.feed(
		resp(bgapi.ClassAttClient, bgapi.CmdAttClientReadByHandle, 0x01, 0x00, 0x00),
		attrValue(1, handleFirmwareVersion, []byte{0x01, 0x00, 0x05, 0x00, 0x06, 0x07, 0x02, 0x00}),
	)

	v, err := m.FirmwareVersion()
	require.NoError(t, err)
	assert.Equal(t, Version{Major: 1, Minor: 5, Patch: 0x0706, HardwareRev: 2}, v)
}

func TestDeviceName(t *testing.T) {
	m, fc := connectedMyo(t)
	fc.feed(
		resp(bgapi.ClassAttClient, bgapi.CmdAttClientReadByHandle, 0x01, 0x00, 0x00),
		attrValue(1, handleDeviceName, []byte("Myo")),
	)

	name, err := m.DeviceName()
	require.NoError(t, err)
	assert.Equal(t, "Myo", name)
}

func TestListenDispatchesEmgPairs(t *testing.T) {
	m, fc := connectedMyo(t)

	payload := []byte{
		1, 2, 3, 4, 5, 6, 7, 8, // first sample
		0xff, 2, 3, 4, 5, 6, 7, 8, // second sample, first channel -1
	}
	fc.feed(attrValue(1, handleEmgData2, payload))

	var samples []EmgSample
	m.OnEmg(func(s EmgSample) { samples = append(samples, s) })

	require.NoError(t, m.Listen())
	require.Len(t, samples, 2)
	assert.Equal(t, EmgSample{1, 2, 3, 4, 5, 6, 7, 8}, samples[0])
	assert.Equal(t, EmgSample{-1, 2, 3, 4, 5, 6, 7, 8}, samples[1])
}

func TestListenDispatchesImu(t *testing.T) {
	m, fc := connectedMyo(t)

	payload := []byte{
		0x00, 0x40, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // orientation w=16384
		0x00, 0x08, 0x00, 0x00, 0x00, 0x00, // accelerometer x=2048
		0xf0, 0xff, 0x00, 0x00, 0x00, 0x00, // gyroscope x=-16
	}
	fc.feed(attrValue(1, handleIMUData, payload))

	var gotO OrientationSample
	var gotA AccelerometerSample
	var gotG GyroscopeSample
	m.OnImu(func(o OrientationSample, a AccelerometerSample, g GyroscopeSample) {
		gotO, gotA, gotG = o, a, g
	})

	require.NoError(t, m.Listen())
	assert.Equal(t, OrientationSample{16384, 0, 0, 0}, gotO)
	assert.Equal(t, AccelerometerSample{2048, 0, 0}, gotA)
	assert.Equal(t, GyroscopeSample{-16, 0, 0}, gotG)
}

func TestListenReportsLostLink(t *testing.T) {
	m, fc := connectedMyo(t)
	fc.feed(evt(bgapi.ClassConnection, bgapi.EvtConnectionDisconnected, 0x01, 0x08, 0x02))

	err := m.Listen()
	require.Error(t, err)
	assert.ErrorIs(t, err, bled112.ErrDisconnected)
	assert.False(t, m.Connected())
}

func TestDiscoverFiltersNonMyo(t *testing.T) {
	scan := func(rssi int8, addr bled112.Address, data []byte) []byte {
		p := []byte{uint8(rssi), 0x00}
		p = append(p, addr.Bytes()...)
		p = append(p, 0x00, 0xff, uint8(len(data)))
		return evt(bgapi.ClassGAP, bgapi.EvtGAPScanResponse, append(p, data...)...)
	}

	fc := &fakeConn{}
	// Discover releases all slots first
	for i := uint8(0); i < 3; i++ {
		fc.feed(resp(bgapi.ClassConnection, bgapi.CmdConnectionDisconnect, i, 0x86, 0x01))
	}
	fc.feed(
		resp(bgapi.ClassGAP, bgapi.CmdGAPDiscover, 0x00, 0x00),
		scan(-70, bled112.Address{9, 9, 9, 9, 9, 9}, []byte{0x02, 0x01, 0x06}),
		scan(-60, testAddr, append([]byte{0x11, 0x06}, ServiceUUID...)),
		resp(bgapi.ClassGAP, bgapi.CmdGAPEndProcedure, 0x00, 0x00),
	)

	m := NewClient(gatt.NewClient(bgapi.NewClient(fc)))

	var seen []bled112.Address
	err := m.Discover(func(rssi int8, addr bled112.Address, data []byte) bool {
		seen = append(seen, addr)
		return false
	})
	require.NoError(t, err)
	require.Equal(t, []bled112.Address{testAddr}, seen)
}
