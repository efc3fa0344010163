package client

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/aarondl/opt/omit"
	"go.uber.org/zap"

	"github.com/luma/racedirector/protocol"
	"github.com/luma/racedirector/storage"
)

// MaxDatagramSize is the largest datagram ListenStep can receive.
const MaxDatagramSize = 64 * 1024

var (
	ErrNotRegistered = errors.New("Not registered with the broadcasting server")
	ErrTransport     = errors.New("Transport failure")
)

type State int32

const (
	StateIdle State = iota
	StateAwaitingRegistration
	StateRegistered
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateAwaitingRegistration:
		return "AwaitingRegistration"
	case StateRegistered:
		return "Registered"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

type Option func(*Conn)

// WithClock replaces the clock used to rate limit entry list requests.
func WithClock(now func() time.Time) Option {
	return func(c *Conn) {
		c.now = now
	}
}

// Conn is a session with a broadcasting server.
//
// ListenStep must only ever be called from one goroutine, that goroutine owns
// the entry cache. The commands (SetFocus, RequestHUDPage, ...) may be called
// from any goroutine, including while ListenStep is blocked in a receive.
type Conn struct {
	config Config
	conn   net.PacketConn
	dest   net.Addr

	stateMu      sync.RWMutex
	state        State
	registration protocol.RegistrationResult

	// Everything below is owned by the goroutine calling ListenStep
	cache                *storage.EntryCache
	lastEntryListRequest time.Time
	readBuf              []byte

	now func() time.Time
	log *zap.Logger
}

// New creates a session on an already bound socket. Nothing is sent until
// RequestConnection is called.
func New(config Config, conn net.PacketConn, log *zap.Logger, opts ...Option) (*Conn, error) {
	config = config.withDefaults()

	dest, err := net.ResolveUDPAddr("udp", config.Destination)
	if err != nil {
		return nil, fmt.Errorf("Failed to resolve destination '%s': %w", config.Destination, err)
	}

	c := &Conn{
		config:       config,
		conn:         conn,
		dest:         dest,
		state:        StateIdle,
		registration: protocol.DefaultRegistrationResult(),
		cache:        storage.NewEntryCache(),
		readBuf:      make([]byte, MaxDatagramSize),
		now:          time.Now,
		log:          log,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

func (c *Conn) State() State {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()

	return c.state
}

// Registration returns the result of the last registration handshake.
func (c *Conn) Registration() protocol.RegistrationResult {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()

	return c.registration
}

// Entries returns a copy of the cached entry list. Only call it from the
// goroutine that calls ListenStep.
func (c *Conn) Entries() []protocol.CarEntry {
	return c.cache.Snapshot()
}

// RequestConnection sends the registration handshake. Without it there is no
// session, so a failure to send is returned to the caller.
func (c *Conn) RequestConnection() error {
	msg := protocol.Register{
		Version:            c.config.ProtocolVersion,
		DisplayName:        c.config.DisplayName,
		ConnectionPassword: c.config.ConnectionPassword,
		UpdateInterval:     c.config.UpdateInterval,
		CommandPassword:    c.config.CommandPassword,
	}

	if err := c.send(msg); err != nil {
		return err
	}

	c.stateMu.Lock()
	c.state = StateAwaitingRegistration
	c.registration = protocol.DefaultRegistrationResult()
	c.stateMu.Unlock()

	c.log.Info("Requested connection",
		zap.String("destination", c.dest.String()),
		zap.String("displayName", c.config.DisplayName),
		zap.Duration("updateInterval", c.config.UpdateInterval))

	return nil
}

// Disconnect unregisters from the server. It is best effort, a failure to
// send is only logged.
func (c *Conn) Disconnect() {
	c.stateMu.Lock()
	state := c.state
	connectionID := c.registration.ConnectionID
	c.state = StateIdle
	c.registration = protocol.DefaultRegistrationResult()
	c.stateMu.Unlock()

	if state != StateRegistered {
		c.log.Debug("Not registered, nothing to disconnect", zap.Stringer("state", state))
		return
	}

	if err := c.send(protocol.Unregister{ConnectionID: connectionID}); err != nil {
		c.log.Warn("Failed to unregister", zap.Int32("connectionID", connectionID), zap.Error(err))
		return
	}

	c.log.Info("Disconnected", zap.Int32("connectionID", connectionID))
}

// ListenStep blocks until a datagram arrives and decodes it.
//
// Every datagram yields a result, protocol.NoResult when there is nothing to
// report. A receive failure is returned wrapping ErrTransport and is fatal, a
// datagram that cannot be decoded is returned wrapping
// protocol.ErrMalformedMessage and only fails this call.
func (c *Conn) ListenStep() (protocol.Inbound, error) {
	n, from, err := c.conn.ReadFrom(c.readBuf)
	if err != nil {
		return nil, fmt.Errorf("Failed to receive datagram: %w: %w", ErrTransport, err)
	}

	datagram := c.readBuf[:n]

	if c.config.Trace {
		c.log.Debug("Received datagram",
			zap.Stringer("from", from),
			zap.Binary("datagram", datagram))
	}

	return c.dispatch(datagram)
}

func (c *Conn) dispatch(datagram []byte) (protocol.Inbound, error) {
	r := protocol.NewReader(datagram)

	msgType, err := protocol.ReadInboundType(r)
	if err != nil {
		return protocol.NoResult{Reason: "empty datagram"}, nil
	}

	var result protocol.Inbound

	switch msgType {
	case protocol.InboundRegistrationResult:
		result, err = c.handleRegistrationResult(r)

	case protocol.InboundRealtimeUpdate:
		result, err = protocol.ReadRealtimeSessionUpdate(r)

	case protocol.InboundRealtimeCarUpdate:
		result, err = c.handleRealtimeCarUpdate(r)

	case protocol.InboundEntryList:
		result, err = c.handleEntryList(r)

	case protocol.InboundTrackData:
		result, err = c.handleTrackData(r)

	case protocol.InboundEntryListCar:
		result, err = c.handleEntryListCar(r)

	case protocol.InboundBroadcastingEvent:
		result, err = protocol.ReadBroadcastingEvent(r, c.cache)

	default:
		c.log.Debug("Ignoring unknown message type", zap.Stringer("type", msgType))
		return protocol.NoResult{Type: msgType, Reason: "unknown message type"}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("Failed to decode %s: %w", msgType, err)
	}

	return result, nil
}

func (c *Conn) handleRegistrationResult(r *protocol.Reader) (protocol.Inbound, error) {
	result, err := protocol.ReadRegistrationResult(r)
	if err != nil {
		return nil, err
	}

	c.stateMu.Lock()
	if c.state != StateAwaitingRegistration {
		state := c.state
		c.stateMu.Unlock()

		c.log.Warn("Ignoring unrequested registration result",
			zap.Int32("connectionID", result.ConnectionID),
			zap.Stringer("state", state))

		return protocol.NoResult{
			Type:   protocol.InboundRegistrationResult,
			Reason: "registration not requested",
		}, nil
	}

	c.registration = result
	if result.Succeeded() {
		c.state = StateRegistered
	} else {
		c.state = StateIdle
	}
	c.stateMu.Unlock()

	if !result.Succeeded() {
		c.log.Error("Registration refused",
			zap.Int32("connectionID", result.ConnectionID),
			zap.String("reason", result.ErrMsg))
		return result, nil
	}

	c.log.Info("Registered",
		zap.Int32("connectionID", result.ConnectionID),
		zap.Bool("readOnly", result.ReadOnly()))

	if result.ReadOnly() {
		c.log.Warn("Registration is read only, commands will be ignored by the server")
	}

	c.requestTrackData(result.ConnectionID)
	c.requestEntryList(result.ConnectionID)

	return result, nil
}

// handleRealtimeCarUpdate only decodes updates for cars whose roster matches
// the cache. Anything else means the cache is stale, so the entry list is
// requested again, at most once per resync interval.
func (c *Conn) handleRealtimeCarUpdate(r *protocol.Reader) (protocol.Inbound, error) {
	header, err := protocol.ReadRealtimeCarHeader(r)
	if err != nil {
		return nil, err
	}

	driverCount, known := c.cache.DriverCount(header.CarIndex)
	if !known || driverCount != int(header.DriverCount) {
		c.resyncEntryList(header, driverCount, known)

		return protocol.NoResult{
			Type:   protocol.InboundRealtimeCarUpdate,
			Reason: "car not in entry list",
		}, nil
	}

	return protocol.ReadRealtimeCarUpdate(r, header)
}

func (c *Conn) resyncEntryList(header protocol.RealtimeCarHeader, cachedDrivers int, known bool) {
	registration := c.Registration()
	if c.State() != StateRegistered {
		return
	}

	now := c.now()
	if now.Sub(c.lastEntryListRequest) <= c.config.ResyncInterval {
		return
	}

	c.log.Info("Car update does not match the entry list, requesting a new one",
		zap.Uint16("carIndex", header.CarIndex),
		zap.Uint16("driverIndex", header.DriverIndex),
		zap.Uint8("driverCount", header.DriverCount),
		zap.Int("cachedDriverCount", cachedDrivers),
		zap.Bool("known", known))

	c.requestEntryList(registration.ConnectionID)
}

func (c *Conn) handleEntryList(r *protocol.Reader) (protocol.Inbound, error) {
	list, err := protocol.ReadEntryList(r)
	if err != nil {
		return nil, err
	}

	connectionID := c.Registration().ConnectionID
	if list.ConnectionID == connectionID {
		c.cache.Reset(list.CarIndices())
	} else {
		c.log.Warn("Entry list for another connection, emptying cache",
			zap.Int32("connectionID", list.ConnectionID),
			zap.Int32("activeConnectionID", connectionID))
		c.cache.Reset(nil)
	}

	return protocol.EntryList{
		ConnectionID: list.ConnectionID,
		Cars:         c.cache.Snapshot(),
	}, nil
}

func (c *Conn) handleTrackData(r *protocol.Reader) (protocol.Inbound, error) {
	connectionID, err := protocol.ReadTrackDataConnectionID(r)
	if err != nil {
		return nil, err
	}

	if active := c.Registration().ConnectionID; connectionID != active {
		c.log.Warn("Track data for another connection",
			zap.Int32("connectionID", connectionID),
			zap.Int32("activeConnectionID", active))
		return protocol.DefaultTrackData(), nil
	}

	return protocol.ReadTrackData(r, connectionID)
}

func (c *Conn) handleEntryListCar(r *protocol.Reader) (protocol.Inbound, error) {
	details, err := protocol.ReadEntryListCar(r)
	if err != nil {
		return nil, err
	}

	if !c.cache.Patch(details.CarEntry) {
		c.log.Warn("Entry list update for unknown car, dropping it",
			zap.Uint16("carIndex", details.CarIndex),
			zap.Int("cachedCars", c.cache.Len()))
		return protocol.EntryListCar{CarEntry: protocol.DefaultCarEntry()}, nil
	}

	return protocol.EntryListCar{CarEntry: c.cache.Get(details.CarIndex)}, nil
}

func (c *Conn) requestEntryList(connectionID int32) {
	c.lastEntryListRequest = c.now()

	if err := c.send(protocol.RequestEntryList{ConnectionID: connectionID}); err != nil {
		c.log.Warn("Failed to request entry list", zap.Error(err))
	}
}

func (c *Conn) requestTrackData(connectionID int32) {
	if err := c.send(protocol.RequestTrackData{ConnectionID: connectionID}); err != nil {
		c.log.Warn("Failed to request track data", zap.Error(err))
	}
}

// SetCamera switches the broadcast camera, keeping the focused car.
func (c *Conn) SetCamera(cameraSet, camera string) error {
	return c.SetFocus(omit.Val[uint16]{}, cameraSet, camera)
}

// SetFocus focuses a car and/or a camera. An unset car index keeps the
// current car, an empty camera set or camera keeps the current camera.
func (c *Conn) SetFocus(carIndex omit.Val[uint16], cameraSet, camera string) error {
	return c.command(func(connectionID int32) protocol.Outbound {
		return protocol.ChangeFocus{
			ConnectionID: connectionID,
			CarIndex:     carIndex,
			Camera:       protocol.NewCameraSelection(cameraSet, camera),
		}
	})
}

// RequestInstantReplay replays duration of session time from start, starting
// with the given car and camera in focus.
func (c *Conn) RequestInstantReplay(start, duration time.Duration, focusedCarIndex int32, cameraSet, camera string) error {
	return c.command(func(connectionID int32) protocol.Outbound {
		return protocol.InstantReplayRequest{
			ConnectionID:           connectionID,
			StartSessionTimeMS:     float32(start.Milliseconds()),
			DurationMS:             float32(duration.Milliseconds()),
			InitialFocusedCarIndex: focusedCarIndex,
			InitialCameraSet:       cameraSet,
			InitialCamera:          camera,
		}
	})
}

func (c *Conn) RequestHUDPage(page string) error {
	return c.command(func(connectionID int32) protocol.Outbound {
		return protocol.ChangeHUDPage{ConnectionID: connectionID, Page: page}
	})
}

// command sends a director command. Commands are fire-and-forget, the server
// never acknowledges them.
func (c *Conn) command(build func(connectionID int32) protocol.Outbound) error {
	c.stateMu.RLock()
	state := c.state
	connectionID := c.registration.ConnectionID
	c.stateMu.RUnlock()

	if state != StateRegistered {
		return fmt.Errorf("Cannot send command in state %s: %w", state, ErrNotRegistered)
	}

	msg := build(connectionID)
	if err := c.send(msg); err != nil {
		c.log.Warn("Failed to send command", zap.Stringer("type", msg.OutboundType()), zap.Error(err))
		return err
	}

	return nil
}

func (c *Conn) send(msg protocol.Outbound) error {
	b, err := msg.MarshalBinary()
	if err != nil {
		return fmt.Errorf("Failed to encode %s: %w", msg.OutboundType(), err)
	}

	if _, err := c.conn.WriteTo(b, c.dest); err != nil {
		return fmt.Errorf("Failed to send %s: %w: %w", msg.OutboundType(), ErrTransport, err)
	}

	if c.config.Trace {
		c.log.Debug("Sent datagram",
			zap.Stringer("type", msg.OutboundType()),
			zap.Binary("datagram", b))
	}

	return nil
}
