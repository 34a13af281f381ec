package bgapi

import (
	"io"

	"github.com/pkg/errors"

	"github.com/myolinux/bled112"
)

// EventSink receives every event frame decoded while a command exchange
// is in flight. Returning a non-nil error aborts the exchange with that
// error; this is how a disconnection observed mid-command escapes.
type EventSink func(Header, []byte) error

// Client correlates commands with their responses on a single BGAPI byte
// stream. The dongle offers no request id, so at most one command may be
// outstanding at a time; Send upholds that by construction because it
// blocks until its own response arrives.
//
// Client is not safe for concurrent use. The caller owns the pacing.
type Client struct {
	rwc  io.ReadWriteCloser
	sink EventSink
	log  bled112.Logger
}

func NewClient(rwc io.ReadWriteCloser) *Client {
	return &Client{
		rwc: rwc,
		log: bled112.GetLogger().ChildLogger(map[string]interface{}{"pkg": "bgapi"}),
	}
}

// SetEventSink registers the sink that takes delivery of event frames
// arriving while Send waits for a response.
func (c *Client) SetEventSink(sink EventSink) {
	c.sink = sink
}

// Send writes one command and blocks until its response arrives. Event
// frames interleaved on the stream are handed to the sink in receive
// order and never dropped. A response whose class or command id differs
// from the outstanding command means the single-outstanding-command
// invariant was broken somewhere and is fatal to the exchange.
func (c *Client) Send(classID, commandID uint8, payload []byte) ([]byte, error) {
	frame, err := Marshal(classID, commandID, payload)
	if err != nil {
		return nil, err
	}
	if _, err := c.rwc.Write(frame); err != nil {
		return nil, errors.Wrapf(err, "send command %d/%d", classID, commandID)
	}

	for {
		hdr, body, err := c.readFrame()
		if err != nil {
			return nil, err
		}

		if hdr.IsEvent {
			if c.sink != nil {
				if err := c.sink(hdr, body); err != nil {
					return nil, err
				}
			} else {
				c.log.Warnf("no sink, event %d/%d lost", hdr.ClassID, hdr.CommandID)
			}
			continue
		}

		if !hdr.Is(classID, commandID) {
			return nil, errors.Wrapf(bled112.ErrFrame,
				"response %d/%d does not match outstanding command %d/%d",
				hdr.ClassID, hdr.CommandID, classID, commandID)
		}
		return body, nil
	}
}

// PollEvent performs exactly one blocking frame read and returns the
// event it carried. An unsolicited response frame, with no command
// outstanding, is a protocol violation.
func (c *Client) PollEvent() (Header, []byte, error) {
	hdr, body, err := c.readFrame()
	if err != nil {
		return Header{}, nil, err
	}
	if !hdr.IsEvent {
		return Header{}, nil, errors.Wrapf(bled112.ErrFrame,
			"unsolicited response %d/%d with no command outstanding", hdr.ClassID, hdr.CommandID)
	}
	return hdr, body, nil
}

// Close closes the underlying transport. A goroutine blocked in Send or
// PollEvent fails with the transport's read error.
func (c *Client) Close() error {
	return c.rwc.Close()
}

func (c *Client) readFrame() (Header, []byte, error) {
	hb := make([]byte, headerLength)
	if _, err := io.ReadFull(c.rwc, hb); err != nil {
		return Header{}, nil, errors.Wrap(err, "read frame header")
	}

	hdr, err := ParseHeader(hb)
	if err != nil {
		return Header{}, nil, err
	}

	body := make([]byte, hdr.Length)
	if _, err := io.ReadFull(c.rwc, body); err != nil {
		return Header{}, nil, errors.Wrapf(err, "read %v payload bytes declared by header", hdr.Length)
	}

	c.log.Debugf("frame event=%v class=%#02x cmd=%#02x [% 0x]", hdr.IsEvent, hdr.ClassID, hdr.CommandID, body)
	return hdr, body, nil
}
