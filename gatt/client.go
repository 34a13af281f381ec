// Package gatt maps attribute-oriented operations onto the BGAPI
// connection, attclient and gap classes: device discovery, connection
// lifecycle, characteristic enumeration, attribute reads and writes, and
// notification delivery.
package gatt

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/myolinux/bled112"
	"github.com/myolinux/bled112/bgapi"
)

// DiscoveryHandler is called for every advertisement seen while
// discovering. Return true to keep scanning, false to stop.
type DiscoveryHandler func(rssi int8, addr bled112.Address, data []byte) bool

// NotificationHandler receives one attribute-value notification.
type NotificationHandler func(attribute uint16, value []byte)

// Event is one notification not yet consumed by Listen.
type Event struct {
	Attribute uint16
	Value     []byte
}

// State of the session. Discovering only exists for the duration of a
// Discover call.
type State int

const (
	StateIdle State = iota
	StateDiscovering
	StateConnected
)

// ScanPolicy bounds a discovery pass. MaxEvents is the number of
// advertisements examined before Discover gives up with ErrNotFound;
// zero scans until the handler stops it.
type ScanPolicy struct {
	MaxEvents int
}

// The dongle multiplexes up to three connections.
const maxConnections = 3

// Connection parameters for gap connect_direct: interval min/max in
// 1.25ms units, supervision timeout in 10ms units, slave latency.
const (
	connIntervalMin = 6
	connIntervalMax = 6
	connTimeout     = 64
	connLatency     = 0
)

type pendingFrame struct {
	hdr  bgapi.Header
	body []byte
}

// Client is the GATT session. It owns the connection state and the event
// queue; nothing else mutates either. Not safe for concurrent use: every
// operation blocks the caller until its protocol exchange completes.
type Client struct {
	bg   *bgapi.Client
	log  bled112.Logger
	scan ScanPolicy

	state State
	addr  bled112.Address
	conn  uint8
	lost  bool

	// pending holds event frames received but not yet examined, queue the
	// attribute-value notifications already classified for Listen. Both
	// strictly FIFO; an event that is not yet wanted is queued, never
	// dropped.
	pending []pendingFrame
	queue   []Event

	chars bled112.Characteristics
}

// Option configures a Client.
type Option func(*Client)

// WithScanPolicy overrides the default unbounded discovery policy.
func WithScanPolicy(p ScanPolicy) Option {
	return func(c *Client) { c.scan = p }
}

// NewClient wraps a BGAPI session. The client registers itself as the
// session's event sink; events arriving while a command is in flight are
// buffered here in receive order.
func NewClient(bg *bgapi.Client, opts ...Option) *Client {
	c := &Client{
		bg:  bg,
		log: bled112.GetLogger().ChildLogger(map[string]interface{}{"pkg": "gatt"}),
	}
	for _, o := range opts {
		o(c)
	}
	bg.SetEventSink(c.onEvent)
	return c
}

// Connected reports whether a connection is established.
func (c *Client) Connected() bool {
	return c.state == StateConnected
}

// Address returns the address of the connected device.
func (c *Client) Address() (bled112.Address, error) {
	if c.state != StateConnected {
		return bled112.Address{}, bled112.ErrNotConnected
	}
	return c.addr, nil
}

// Discover runs a generic GAP discovery pass, feeding every advertisement
// to the handler until it returns false or the scan policy is exhausted.
// The procedure is always ended before returning.
func (c *Client) Discover(h DiscoveryHandler) error {
	if c.state != StateIdle {
		return errors.New("gatt: discovery requires an idle session")
	}
	c.state = StateDiscovering
	defer func() {
		if c.state == StateDiscovering {
			c.state = StateIdle
		}
	}()

	body, err := c.bg.Send(bgapi.ClassGAP, bgapi.CmdGAPDiscover, []byte{bgapi.GAPDiscoverGeneric})
	if err != nil {
		return err
	}
	if err := checkResult("gap discover", body); err != nil {
		return err
	}

	seen := 0
	for {
		hdr, body, err := c.nextEvent()
		if err != nil {
			return err
		}

		if !hdr.Is(bgapi.ClassGAP, bgapi.EvtGAPScanResponse) {
			if err := c.stash(hdr, body); err != nil {
				return err
			}
			continue
		}

		e := bgapi.ScanResponse(body)
		if !e.Valid() {
			return errors.Wrapf(bled112.ErrFrame, "scan response of %v bytes", len(body))
		}

		seen++
		data := make([]byte, len(e.Data()))
		copy(data, e.Data())
		if !h(e.RSSI(), e.Sender(), data) {
			break
		}

		if c.scan.MaxEvents > 0 && seen >= c.scan.MaxEvents {
			if err := c.endProcedure(); err != nil {
				return err
			}
			return errors.Wrapf(bled112.ErrNotFound, "gave up after %v advertisements", seen)
		}
	}

	return c.endProcedure()
}

// Connect establishes a connection to the given address. A dongle slot
// that already holds the device is reused instead of dialing again.
// Unrelated notifications observed while waiting are queued for Listen.
func (c *Client) Connect(addr bled112.Address) error {
	if c.state != StateIdle {
		return errors.New("gatt: connect requires an idle session")
	}

	for i := uint8(0); i < maxConnections; i++ {
		body, err := c.bg.Send(bgapi.ClassConnection, bgapi.CmdConnectionGetStatus, []byte{i})
		if err != nil {
			return err
		}
		if !bgapi.GetStatus(body).Valid() {
			return errors.Wrapf(bled112.ErrFrame, "get status response of %v bytes", len(body))
		}
		evb, err := c.waitEvent(bgapi.ClassConnection, bgapi.EvtConnectionStatus)
		if err != nil {
			return err
		}
		st := bgapi.ConnectionStatus(evb)
		if !st.Valid() {
			return errors.Wrapf(bled112.ErrFrame, "connection status of %v bytes", len(evb))
		}
		if st.Connected() && st.Address() == addr {
			c.establish(addr, i)
			return nil
		}
	}

	cmd := make([]byte, 15)
	copy(cmd, addr.Bytes())
	cmd[6] = bgapi.GAPAddressTypePublic
	binary.LittleEndian.PutUint16(cmd[7:], connIntervalMin)
	binary.LittleEndian.PutUint16(cmd[9:], connIntervalMax)
	binary.LittleEndian.PutUint16(cmd[11:], connTimeout)
	binary.LittleEndian.PutUint16(cmd[13:], connLatency)

	body, err := c.bg.Send(bgapi.ClassGAP, bgapi.CmdGAPConnectDirect, cmd)
	if err != nil {
		return err
	}
	r := bgapi.ConnectDirect(body)
	if !r.Valid() {
		return errors.Wrapf(bled112.ErrFrame, "connect direct response of %v bytes", len(body))
	}
	if r.Result() != 0 {
		return &bled112.StatusError{Op: "gap connect direct", Code: r.Result()}
	}

	if _, err := c.waitEvent(bgapi.ClassConnection, bgapi.EvtConnectionStatus); err != nil {
		return err
	}
	c.establish(addr, r.Connection())
	return nil
}

// ConnectString connects to the colon-separated address form, e.g.
// "01:23:e2:d4:4d:66".
func (c *Client) ConnectString(s string) error {
	addr, err := bled112.ParseAddress(s)
	if err != nil {
		return err
	}
	return c.Connect(addr)
}

// ConnectAny discovers and connects to the first device seen. It is a
// composition of Discover and Connect, nothing more.
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

// Characteristics enumerates all (UUID, handle) pairs of the connected
// device. The device reports them over any number of find-information
// events; the procedure-completed event terminates the pass.
func (c *Client) Characteristics() (bled112.Characteristics, error) {
	if err := c.requireConnected(); err != nil {
		return nil, err
	}

	cmd := make([]byte, 5)
	cmd[0] = c.conn
	binary.LittleEndian.PutUint16(cmd[1:], 0x0001)
	binary.LittleEndian.PutUint16(cmd[3:], 0xFFFF)

	body, err := c.bg.Send(bgapi.ClassAttClient, bgapi.CmdAttClientFindInformation, cmd)
	if err != nil {
		return nil, err
	}
	if err := checkConnResult("attclient find information", body); err != nil {
		return nil, err
	}

	chars := bled112.Characteristics{}
	for {
		hdr, body, err := c.nextEvent()
		if err != nil {
			return nil, err
		}

		switch {
		case hdr.Is(bgapi.ClassAttClient, bgapi.EvtAttClientFindInformationFound):
			e := bgapi.FindInformationFound(body)
			if !e.Valid() {
				return nil, errors.Wrapf(bled112.ErrFrame, "find information found of %v bytes", len(body))
			}
			chars[bled112.UUIDString(e.UUID())] = e.ChrHandle()

		case hdr.Is(bgapi.ClassAttClient, bgapi.EvtAttClientProcedureCompleted):
			e := bgapi.ProcedureCompleted(body)
			if e.Valid() && e.Result() != 0 {
				return nil, &bled112.StatusError{Op: "attclient find information", Code: e.Result()}
			}
			c.chars = chars
			return chars, nil

		default:
			if err := c.stash(hdr, body); err != nil {
				return nil, err
			}
		}
	}
}

// ReadAttribute reads the value of the attribute with the given handle.
// Notifications for other handles arriving first are queued for Listen.
func (c *Client) ReadAttribute(handle uint16) ([]byte, error) {
	if err := c.requireConnected(); err != nil {
		return nil, err
	}

	cmd := make([]byte, 3)
	cmd[0] = c.conn
	binary.LittleEndian.PutUint16(cmd[1:], handle)

	body, err := c.bg.Send(bgapi.ClassAttClient, bgapi.CmdAttClientReadByHandle, cmd)
	if err != nil {
		return nil, err
	}
	if err := checkConnResult("attclient read by handle", body); err != nil {
		return nil, err
	}

	for {
		hdr, body, err := c.nextEvent()
		if err != nil {
			return nil, err
		}

		if !hdr.Is(bgapi.ClassAttClient, bgapi.EvtAttClientAttributeValue) {
			if err := c.stash(hdr, body); err != nil {
				return nil, err
			}
			continue
		}

		e := bgapi.AttributeValue(body)
		if !e.Valid() {
			return nil, errors.Wrapf(bled112.ErrFrame, "attribute value of %v bytes", len(body))
		}
		if e.AttHandle() != handle {
			c.enqueue(e)
			continue
		}

		value := make([]byte, len(e.Value()))
		copy(value, e.Value())
		return value, nil
	}
}

// WriteAttribute writes the value to the attribute with the given handle
// and confirms completion. Both the immediate response and the
// procedure-completed event carry a status; a non-zero code in either
// fails the write.
func (c *Client) WriteAttribute(handle uint16, value []byte) error {
	if err := c.requireConnected(); err != nil {
		return err
	}
	if len(value) > 0xFF {
		return errors.Errorf("gatt: attribute value of %v bytes does not fit a write", len(value))
	}

	cmd := make([]byte, 4+len(value))
	cmd[0] = c.conn
	binary.LittleEndian.PutUint16(cmd[1:], handle)
	cmd[3] = uint8(len(value))
	copy(cmd[4:], value)

	body, err := c.bg.Send(bgapi.ClassAttClient, bgapi.CmdAttClientAttributeWrite, cmd)
	if err != nil {
		return err
	}
	if err := checkConnResult("attclient attribute write", body); err != nil {
		return err
	}

	evb, err := c.waitEvent(bgapi.ClassAttClient, bgapi.EvtAttClientProcedureCompleted)
	if err != nil {
		return err
	}
	e := bgapi.ProcedureCompleted(evb)
	if !e.Valid() {
		return errors.Wrapf(bled112.ErrFrame, "procedure completed of %v bytes", len(evb))
	}
	if e.Result() != 0 {
		return &bled112.StatusError{Op: "attclient attribute write", Code: e.Result()}
	}
	return nil
}

// Listen delivers at most one notification to the handler: the head of
// the event queue when one is waiting, otherwise whatever a single
// blocking read produces. Call it in a loop; once the link has dropped,
// every call returns ErrDisconnected so the loop naturally ends.
func (c *Client) Listen(h NotificationHandler) error {
	if err := c.requireConnected(); err != nil {
		return err
	}

	if len(c.queue) > 0 {
		e := c.queue[0]
		c.queue = c.queue[1:]
		h(e.Attribute, e.Value)
		return nil
	}

	hdr, body, err := c.nextEvent()
	if err != nil {
		return err
	}
	if hdr.Is(bgapi.ClassAttClient, bgapi.EvtAttClientAttributeValue) {
		e := bgapi.AttributeValue(body)
		if !e.Valid() {
			return errors.Wrapf(bled112.ErrFrame, "attribute value of %v bytes", len(body))
		}
		value := make([]byte, len(e.Value()))
		copy(value, e.Value())
		h(e.AttHandle(), value)
		return nil
	}
	return c.stash(hdr, body)
}

// Disconnect drops the current connection. Best-effort: the session is
// idle afterwards whether or not the dongle confirms.
func (c *Client) Disconnect() error {
	if err := c.requireConnected(); err != nil {
		return err
	}
	return c.disconnect(c.conn)
}

// DisconnectAll drops every connection slot the dongle has, including
// ones some earlier process left behind.
func (c *Client) DisconnectAll() error {
	for i := uint8(0); i < maxConnections; i++ {
		if err := c.disconnect(i); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) disconnect(conn uint8) error {
	wasOurs := c.state == StateConnected && c.conn == conn
	if wasOurs {
		defer c.reset(false)
	}

	body, err := c.bg.Send(bgapi.ClassConnection, bgapi.CmdConnectionDisconnect, []byte{conn})
	if err != nil {
		if errors.Is(err, bled112.ErrDisconnected) {
			// the confirmation raced the response; done either way
			return nil
		}
		return err
	}
	r := bgapi.ConnectionResult(body)
	if !r.Valid() {
		return errors.Wrapf(bled112.ErrFrame, "disconnect response of %v bytes", len(body))
	}
	if r.Result() != 0 {
		// slot was not connected; no confirmation will follow
		if wasOurs {
			return &bled112.StatusError{Op: "connection disconnect", Code: r.Result()}
		}
		return nil
	}

	if wasOurs {
		if _, err := c.waitEvent(bgapi.ClassConnection, bgapi.EvtConnectionDisconnected); err != nil &&
			!errors.Is(err, bled112.ErrDisconnected) {
			return err
		}
	}
	return nil
}

func (c *Client) establish(addr bled112.Address, conn uint8) {
	c.addr = addr
	c.conn = conn
	c.state = StateConnected
	c.lost = false
}

func (c *Client) requireConnected() error {
	if c.state == StateConnected {
		return nil
	}
	if c.lost {
		return errors.Wrap(bled112.ErrDisconnected, "link was lost")
	}
	return bled112.ErrNotConnected
}

// reset tears the session down to idle: connection state, characteristic
// map and both queues.
func (c *Client) reset(lost bool) {
	c.state = StateIdle
	c.lost = lost
	c.addr = bled112.Address{}
	c.conn = 0
	c.chars = nil
	c.pending = nil
	c.queue = nil
}

// onEvent is the BGAPI event sink, invoked for events interleaved with a
// command's response. A disconnection aborts the exchange immediately;
// everything else is buffered in receive order.
func (c *Client) onEvent(hdr bgapi.Header, body []byte) error {
	if hdr.Is(bgapi.ClassConnection, bgapi.EvtConnectionDisconnected) {
		if err := c.onDisconnected(body); err != nil {
			return err
		}
		return nil
	}
	c.pending = append(c.pending, pendingFrame{hdr: hdr, body: body})
	return nil
}

// nextEvent returns the oldest unexamined event, reading a fresh frame
// from the transport only when none is pending.
func (c *Client) nextEvent() (bgapi.Header, []byte, error) {
	if len(c.pending) > 0 {
		f := c.pending[0]
		c.pending = c.pending[1:]
		return f.hdr, f.body, nil
	}
	return c.bg.PollEvent()
}

// stash disposes of an event no operation is waiting for: notifications
// join the Listen queue, a disconnection tears the session down, anything
// else is irrelevant to a GATT client and logged away.
func (c *Client) stash(hdr bgapi.Header, body []byte) error {
	switch {
	case hdr.Is(bgapi.ClassAttClient, bgapi.EvtAttClientAttributeValue):
		e := bgapi.AttributeValue(body)
		if !e.Valid() {
			return errors.Wrapf(bled112.ErrFrame, "attribute value of %v bytes", len(body))
		}
		c.enqueue(e)

	case hdr.Is(bgapi.ClassConnection, bgapi.EvtConnectionDisconnected):
		return c.onDisconnected(body)

	default:
		c.log.Debugf("ignoring event %#02x/%#02x", hdr.ClassID, hdr.CommandID)
	}
	return nil
}

func (c *Client) enqueue(e bgapi.AttributeValue) {
	value := make([]byte, len(e.Value()))
	copy(value, e.Value())
	c.queue = append(c.queue, Event{Attribute: e.AttHandle(), Value: value})
}

// onDisconnected handles a disconnection event. Only the loss of our own
// connection tears the session down; slots held by other owners just go
// away quietly.
func (c *Client) onDisconnected(body []byte) error {
	e := bgapi.Disconnected(body)
	if !e.Valid() {
		return errors.Wrapf(bled112.ErrFrame, "disconnected event of %v bytes", len(body))
	}
	if c.state != StateConnected || e.Connection() != c.conn {
		c.log.Debugf("connection %v (not ours) dropped, reason 0x%04x", e.Connection(), e.Reason())
		return nil
	}
	reason := e.Reason()
	c.reset(true)
	return errors.Wrapf(bled112.ErrDisconnected, "link dropped, reason 0x%04x", reason)
}

func (c *Client) endProcedure() error {
	body, err := c.bg.Send(bgapi.ClassGAP, bgapi.CmdGAPEndProcedure, nil)
	if err != nil {
		return err
	}
	return checkResult("gap end procedure", body)
}

func checkResult(op string, body []byte) error {
	r := bgapi.Result(body)
	if !r.Valid() {
		return errors.Wrapf(bled112.ErrFrame, "%s response of %v bytes", op, len(body))
	}
	if r.Result() != 0 {
		return &bled112.StatusError{Op: op, Code: r.Result()}
	}
	return nil
}

func checkConnResult(op string, body []byte) error {
	r := bgapi.ConnectionResult(body)
	if !r.Valid() {
		return errors.Wrapf(bled112.ErrFrame, "%s response of %v bytes", op, len(body))
	}
	if r.Result() != 0 {
		return &bled112.StatusError{Op: op, Code: r.Result()}
	}
	return nil
}

// waitEvent reads events until the wanted one arrives, never dropping
// what comes in between.
func (c *Client) waitEvent(classID, commandID uint8) ([]byte, error) {
	for {
		hdr, body, err := c.nextEvent()
		if err != nil {
			return nil, err
		}
		if hdr.Is(classID, commandID) {
			return body, nil
		}
		if err := c.stash(hdr, body); err != nil {
			return nil, err
		}
	}
}
