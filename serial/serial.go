// Package serial opens the character device behind a BLED112 dongle and
// exposes it as a plain duplex byte channel. It knows nothing about
// framing; that belongs to the bgapi package.
package serial

import (
	"io"

	"github.com/jacobsa/go-serial/serial"
	"github.com/pkg/errors"

	"github.com/myolinux/bled112"
)

// Options configures the character device. The BLED112 enumerates as a
// CDC-ACM device; the baud rate setting is accepted but has no effect on
// the USB link, 115200 is the documented value.
type Options struct {
	PortName          string
	BaudRate          uint
	RTSCTSFlowControl bool
}

// DefaultOptions returns the settings the dongle ships with.
func DefaultOptions() Options {
	return Options{
		BaudRate:          115200,
		RTSCTSFlowControl: true,
	}
}

type transport struct {
	port io.ReadWriteCloser
	log  bled112.Logger
}

// Open opens the device and returns the transport. The returned
// ReadWriteCloser blocks on reads until data arrives; Close may be called
// from another goroutine to force a blocked exchange to fail.
func Open(opts Options) (io.ReadWriteCloser, error) {
	port, err := serial.Open(serial.OpenOptions{
		PortName:          opts.PortName,
		BaudRate:          opts.BaudRate,
		DataBits:          8,
		StopBits:          1,
		ParityMode:        serial.PARITY_NONE,
		RTSCTSFlowControl: opts.RTSCTSFlowControl,
		MinimumReadSize:   1,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "can't open %v", opts.PortName)
	}

	t := &transport{
		port: port,
		log:  bled112.GetLogger().ChildLogger(map[string]interface{}{"pkg": "serial"}),
	}
	t.log.Debugf("opened %v @ %v", opts.PortName, opts.BaudRate)

	return t, nil
}

func (t *transport) Read(p []byte) (int, error) {
	n, err := t.port.Read(p)
	if err != nil {
		return n, errors.Wrap(err, "serial read")
	}
	t.log.Debugf("read [% 0x]", p[:n])
	return n, nil
}

func (t *transport) Write(p []byte) (int, error) {
	n, err := t.port.Write(p)
	if err != nil {
		return n, errors.Wrap(err, "serial write")
	}
	if n != len(p) {
		return n, errors.Errorf("serial write: short write %v of %v", n, len(p))
	}
	t.log.Debugf("write [% 0x]", p)
	return n, nil
}

func (t *transport) Close() error {
	return errors.Wrap(t.port.Close(), "serial close")
}
