package protocol

import (
	"encoding/json"
	"time"
)

// RealtimeSessionUpdate is the per tick state of the session. Nothing of it
// is retained between ticks.
type RealtimeSessionUpdate struct {
	EventIndex      uint16        `json:"eventIndex"`
	SessionIndex    uint16        `json:"sessionIndex"`
	SessionType     SessionType   `json:"sessionType"`
	Phase           SessionPhase  `json:"phase"`
	SessionTime     time.Duration `json:"-"`
	SessionEndTime  time.Duration `json:"-"`
	FocusedCarIndex int32         `json:"focusedCarIndex"`
	ActiveCameraSet string        `json:"activeCameraSet"`
	ActiveCamera    string        `json:"activeCamera"`
	CurrentHUDPage  string        `json:"currentHudPage"`

	IsReplayPlaying bool `json:"isReplayPlaying"`
	// Only meaningful while a replay is playing, in milliseconds
	ReplaySessionTime   float32 `json:"replaySessionTimeMs"`
	ReplayRemainingTime float32 `json:"replayRemainingTimeMs"`

	TimeOfDay   time.Duration `json:"-"`
	AmbientTemp uint8         `json:"ambientTemp"`
	TrackTemp   uint8         `json:"trackTemp"`
	Clouds      float32       `json:"clouds"`
	RainLevel   float32       `json:"rainLevel"`
	Wetness     float32       `json:"wetness"`

	BestSessionLap LapInfo `json:"bestSessionLap"`
}

func (RealtimeSessionUpdate) InboundType() InboundType {
	return InboundRealtimeUpdate
}

// MarshalJSON writes the session clock in milliseconds, the unit laps use.
func (u RealtimeSessionUpdate) MarshalJSON() ([]byte, error) {
	type fields RealtimeSessionUpdate

	return json.Marshal(struct {
		fields
		SessionTimeMS          int64 `json:"sessionTimeMs"`
		SessionEndTimeMS       int64 `json:"sessionEndTimeMs"`
		SessionRemainingTimeMS int64 `json:"sessionRemainingTimeMs"`
		TimeOfDayMS            int64 `json:"timeOfDayMs"`
	}{
		fields:                 fields(u),
		SessionTimeMS:          u.SessionTime.Milliseconds(),
		SessionEndTimeMS:       u.SessionEndTime.Milliseconds(),
		SessionRemainingTimeMS: u.SessionRemainingTime().Milliseconds(),
		TimeOfDayMS:            u.TimeOfDay.Milliseconds(),
	})
}

// SessionRemainingTime is the time left until the session ends, never negative.
func (u RealtimeSessionUpdate) SessionRemainingTime() time.Duration {
	if u.SessionEndTime <= u.SessionTime {
		return 0
	}

	return u.SessionEndTime - u.SessionTime
}

func ReadRealtimeSessionUpdate(r *Reader) (RealtimeSessionUpdate, error) {
	u := RealtimeSessionUpdate{
		EventIndex:      r.Uint16(),
		SessionIndex:    r.Uint16(),
		SessionType:     SessionType(r.Uint8()),
		Phase:           SessionPhase(r.Uint8()),
		SessionTime:     millis(r.Float32()),
		SessionEndTime:  millis(r.Float32()),
		FocusedCarIndex: r.Int32(),
		ActiveCameraSet: r.String(),
		ActiveCamera:    r.String(),
		CurrentHUDPage:  r.String(),
	}

	if r.Bool() {
		u.IsReplayPlaying = true
		u.ReplaySessionTime = r.Float32()
		u.ReplayRemainingTime = r.Float32()
	}

	u.TimeOfDay = millis(r.Float32())
	u.AmbientTemp = r.Uint8()
	u.TrackTemp = r.Uint8()
	u.Clouds = tenths(r.Uint8())
	u.RainLevel = tenths(r.Uint8())
	u.Wetness = tenths(r.Uint8())

	lap, err := ReadLapInfo(r)
	if err != nil {
		return RealtimeSessionUpdate{}, err
	}

	u.BestSessionLap = lap

	return u, nil
}

// RealtimeCarHeader leads every realtime car update. DriverCount has to
// match the cached roster before the rest of the update is worth decoding.
type RealtimeCarHeader struct {
	CarIndex    uint16
	DriverIndex uint16
	DriverCount uint8
}

func ReadRealtimeCarHeader(r *Reader) (RealtimeCarHeader, error) {
	h := RealtimeCarHeader{
		CarIndex:    r.Uint16(),
		DriverIndex: r.Uint16(),
		DriverCount: r.Uint8(),
	}

	return h, r.Err()
}

// RealtimeCarUpdate is the per tick state of one car.
type RealtimeCarUpdate struct {
	CarIndex       uint16      `json:"carIndex"`
	DriverIndex    uint16      `json:"driverIndex"`
	DriverCount    uint8       `json:"driverCount"`
	Gear           int32       `json:"gear"`
	WorldPosX      float32     `json:"worldPosX"`
	WorldPosY      float32     `json:"worldPosY"`
	Yaw            float32     `json:"yaw"`
	Location       CarLocation `json:"location"`
	Kmh            uint16      `json:"kmh"`
	Position       uint16      `json:"position"`
	CupPosition    uint16      `json:"cupPosition"`
	TrackPosition  uint16      `json:"trackPosition"`
	SplinePosition float32     `json:"splinePosition"`
	Laps           uint16      `json:"laps"`
	DeltaMS        int32       `json:"delta"`
	BestSessionLap LapInfo     `json:"bestSessionLap"`
	LastLap        LapInfo     `json:"lastLap"`
	CurrentLap     LapInfo     `json:"currentLap"`
}

func (RealtimeCarUpdate) InboundType() InboundType {
	return InboundRealtimeCarUpdate
}

// ReadRealtimeCarUpdate reads the remainder of a realtime car update, after
// its header.
func ReadRealtimeCarUpdate(r *Reader, h RealtimeCarHeader) (RealtimeCarUpdate, error) {
	u := RealtimeCarUpdate{
		CarIndex:    h.CarIndex,
		DriverIndex: h.DriverIndex,
		DriverCount: h.DriverCount,

		// The server sends reverse as 0 and neutral as 1
		Gear:           int32(r.Uint8()) - 1,
		WorldPosX:      r.Float32(),
		WorldPosY:      r.Float32(),
		Yaw:            r.Float32(),
		Location:       CarLocation(r.Uint8()),
		Kmh:            r.Uint16(),
		Position:       r.Uint16(),
		CupPosition:    r.Uint16(),
		TrackPosition:  r.Uint16(),
		SplinePosition: r.Float32(),
		Laps:           r.Uint16(),
		DeltaMS:        r.Int32(),
	}

	var err error
	if u.BestSessionLap, err = ReadLapInfo(r); err != nil {
		return RealtimeCarUpdate{}, err
	}

	if u.LastLap, err = ReadLapInfo(r); err != nil {
		return RealtimeCarUpdate{}, err
	}

	if u.CurrentLap, err = ReadLapInfo(r); err != nil {
		return RealtimeCarUpdate{}, err
	}

	return u, nil
}

func millis(ms float32) time.Duration {
	return time.Duration(float64(ms) * float64(time.Millisecond))
}

func tenths(b uint8) float32 {
	return float32(b) / 10
}
