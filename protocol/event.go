package protocol

import "math"

// EntryLookup resolves a car index against the live entry list.
type EntryLookup interface {
	Lookup(carIndex uint16) (CarEntry, bool)
}

// BroadcastingEvent is a discrete notification from the session. Car is
// resolved from the entry list when the event is decoded.
type BroadcastingEvent struct {
	Type    BroadcastingEventType `json:"type"`
	Message string                `json:"message"`
	TimeMS  int32                 `json:"timeMs"`
	CarID   int32                 `json:"carId"`
	Car     CarEntry              `json:"car"`
}

func (BroadcastingEvent) InboundType() InboundType {
	return InboundBroadcastingEvent
}

// ReadBroadcastingEvent reads the event and resolves its car with entries.
// A car that isn't known resolves to DefaultCarEntry.
func ReadBroadcastingEvent(r *Reader, entries EntryLookup) (BroadcastingEvent, error) {
	event := BroadcastingEvent{
		Type:    BroadcastingEventType(r.Uint8()),
		Message: r.String(),
		TimeMS:  r.Int32(),
		CarID:   r.Int32(),
	}

	if err := r.Err(); err != nil {
		return BroadcastingEvent{}, err
	}

	event.Car = DefaultCarEntry()
	if entries != nil && event.CarID >= 0 && event.CarID < math.MaxUint16 {
		if car, ok := entries.Lookup(uint16(event.CarID)); ok {
			event.Car = car
		}
	}

	return event, nil
}
