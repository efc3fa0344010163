// Package director keeps the latest state of a broadcasting session and turns
// it into director actions: a leaderboard, replay shortcuts and HTTP control
// routes.
package director

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/aarondl/opt/omit"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/luma/racedirector/protocol"
	"github.com/luma/racedirector/storage"
)

// MaxEvents is how many broadcasting events are kept.
const MaxEvents = 50

// Store keys the session state is published under.
const (
	KeyRegistration = "registration"
	KeySession      = "session"
	KeyTrack        = "track"
	KeyEntries      = "entries"
	KeyCars         = "cars"
	KeyEvents       = "events"
)

var ErrNoSession = errors.New("No session update received yet")

// Commander sends director commands to the broadcasting server, see
// client.Conn.
type Commander interface {
	SetCamera(cameraSet, camera string) error
	SetFocus(carIndex omit.Val[uint16], cameraSet, camera string) error
	RequestInstantReplay(start, duration time.Duration, focusedCarIndex int32, cameraSet, camera string) error
	RequestHUDPage(page string) error
}

// Director is a transport.Handler. Handle is called from the receive loop,
// everything else may be called from any goroutine.
type Director struct {
	mu           sync.RWMutex
	registration protocol.RegistrationResult
	session      protocol.RealtimeSessionUpdate
	hasSession   bool
	track        protocol.TrackData
	order        []uint16
	entries      map[uint16]protocol.CarEntry
	cars         map[uint16]protocol.RealtimeCarUpdate
	events       []protocol.BroadcastingEvent

	commander Commander
	store     storage.Store

	log *zap.Logger
}

func New(commander Commander, store storage.Store, log *zap.Logger) *Director {
	return &Director{
		registration: protocol.DefaultRegistrationResult(),
		track:        protocol.DefaultTrackData(),
		order:        make([]uint16, 0),
		entries:      make(map[uint16]protocol.CarEntry),
		cars:         make(map[uint16]protocol.RealtimeCarUpdate),
		events:       make([]protocol.BroadcastingEvent, 0, MaxEvents),
		commander:    commander,
		store:        store,
		log:          log,
	}
}

func (d *Director) Handle(result protocol.Inbound) {
	switch r := result.(type) {
	case protocol.RegistrationResult:
		d.mu.Lock()
		d.registration = r
		d.mu.Unlock()

		d.publish(KeyRegistration, r)

	case protocol.RealtimeSessionUpdate:
		d.mu.Lock()
		d.session = r
		d.hasSession = true
		d.mu.Unlock()

		d.publish(KeySession, r)

	case protocol.RealtimeCarUpdate:
		d.mu.Lock()
		d.cars[r.CarIndex] = r
		cars := d.carsLocked()
		d.mu.Unlock()

		d.publish(KeyCars, cars)

	case protocol.EntryList:
		d.mu.Lock()
		d.order = lo.Map(r.Cars, func(car protocol.CarEntry, _ int) uint16 {
			return car.CarIndex
		})
		d.entries = lo.SliceToMap(r.Cars, func(car protocol.CarEntry) (uint16, protocol.CarEntry) {
			return car.CarIndex, car
		})
		d.cars = lo.PickByKeys(d.cars, d.order)
		entries := d.entriesLocked()
		cars := d.carsLocked()
		d.mu.Unlock()

		d.publish(KeyEntries, entries)
		d.publish(KeyCars, cars)

	case protocol.EntryListCar:
		if r.IsUnknown() {
			return
		}

		d.mu.Lock()
		_, known := d.entries[r.CarIndex]
		if known {
			d.entries[r.CarIndex] = r.CarEntry
		}
		entries := d.entriesLocked()
		d.mu.Unlock()

		if known {
			d.publish(KeyEntries, entries)
		}

	case protocol.TrackData:
		if r.ConnectionID == protocol.UnregisteredConnectionID {
			return
		}

		d.mu.Lock()
		d.track = r
		d.mu.Unlock()

		d.publish(KeyTrack, r)

	case protocol.BroadcastingEvent:
		d.mu.Lock()
		d.events = append(d.events, r)
		if len(d.events) > MaxEvents {
			d.events = append(d.events[:0:0], d.events[len(d.events)-MaxEvents:]...)
		}
		events := append([]protocol.BroadcastingEvent(nil), d.events...)
		d.mu.Unlock()

		d.log.Info("Broadcasting event",
			zap.Stringer("type", r.Type),
			zap.String("message", r.Message),
			zap.Int32("carID", r.CarID))

		d.publish(KeyEvents, events)

	case protocol.NoResult:
		// nothing to keep
	}
}

func (d *Director) Registration() protocol.RegistrationResult {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.registration
}

// Session returns the latest session update, and false if there is none yet.
func (d *Director) Session() (protocol.RealtimeSessionUpdate, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.session, d.hasSession
}

func (d *Director) Track() protocol.TrackData {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.track
}

// Events returns the most recent broadcasting events, oldest first.
func (d *Director) Events() []protocol.BroadcastingEvent {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return append([]protocol.BroadcastingEvent(nil), d.events...)
}

// ReplayLast replays the last window of session time, starting on the car
// and camera currently in focus.
func (d *Director) ReplayLast(window time.Duration) error {
	session, ok := d.Session()
	if !ok {
		return ErrNoSession
	}

	start := session.SessionTime - window
	if start < 0 {
		window += start
		start = 0
	}

	d.log.Info("Requesting instant replay",
		zap.Duration("start", start),
		zap.Duration("duration", window),
		zap.Int32("carIndex", session.FocusedCarIndex))

	return d.commander.RequestInstantReplay(
		start,
		window,
		session.FocusedCarIndex,
		session.ActiveCameraSet,
		session.ActiveCamera,
	)
}

func (d *Director) entriesLocked() []protocol.CarEntry {
	return lo.Map(d.order, func(idx uint16, _ int) protocol.CarEntry {
		return d.entries[idx].Clone()
	})
}

func (d *Director) carsLocked() map[uint16]protocol.RealtimeCarUpdate {
	return lo.Assign(d.cars)
}

// publish writes value to the store. Store failures are logged, the session
// state in memory stays authoritative.
func (d *Director) publish(key string, value interface{}) {
	if d.store == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := d.store.Set(ctx, []byte(key), value); err != nil {
		d.log.Warn("Failed to publish state", zap.String("key", key), zap.Error(err))
	}
}
