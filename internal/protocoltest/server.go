// Package protocoltest encodes the server side of the broadcasting protocol,
// for building inbound datagrams in tests.
package protocoltest

import (
	"github.com/luma/racedirector/protocol"
)

func mustBytes(w *protocol.Writer) []byte {
	b, err := w.Bytes()
	if err != nil {
		panic(err)
	}

	return b
}

func RegistrationResult(connectionID int32, success, readOnly uint8, errMsg string) []byte {
	return mustBytes(protocol.NewWriter().
		Uint8(uint8(protocol.InboundRegistrationResult)).
		Int32(connectionID).
		Uint8(success).
		Uint8(readOnly).
		Raw([]byte(errMsg)))
}

func EntryList(connectionID int32, carIndices ...uint16) []byte {
	w := protocol.NewWriter().
		Uint8(uint8(protocol.InboundEntryList)).
		Int32(connectionID).
		Uint16(uint16(len(carIndices)))

	for _, idx := range carIndices {
		w.Uint16(idx)
	}

	return mustBytes(w)
}

func EntryListCar(car protocol.CarEntry) []byte {
	w := protocol.NewWriter().
		Uint8(uint8(protocol.InboundEntryListCar)).
		Uint16(car.CarIndex).
		Uint8(car.ModelType).
		String(car.TeamName).
		Int32(car.RaceNumber).
		Uint8(car.CupCategory).
		Uint8(uint8(car.CurrentDriverIndex)).
		Uint16(uint16(car.Nationality)).
		Uint8(uint8(len(car.Drivers)))

	for _, d := range car.Drivers {
		w.String(d.FirstName).
			String(d.LastName).
			String(d.ShortName).
			Uint8(uint8(d.Category)).
			Uint16(uint16(d.Nationality))
	}

	return mustBytes(w)
}

func TrackData(connectionID int32, track protocol.TrackData) []byte {
	w := protocol.NewWriter().
		Uint8(uint8(protocol.InboundTrackData)).
		Int32(connectionID).
		String(track.TrackName).
		Int32(track.TrackID).
		Int32(track.TrackMeters).
		Uint8(uint8(len(track.CameraSets)))

	for _, set := range track.CameraSets {
		w.String(set.Name).Uint8(uint8(len(set.Cameras)))
		for _, cam := range set.Cameras {
			w.String(cam)
		}
	}

	w.Uint8(uint8(len(track.HUDPages)))
	for _, page := range track.HUDPages {
		w.String(page)
	}

	return mustBytes(w)
}

// WriteLapInfo appends a lap. Kind is written back as the outlap and inlap flags.
func WriteLapInfo(w *protocol.Writer, lap protocol.LapInfo) *protocol.Writer {
	w.Int32(lap.LapTimeMS).
		Uint16(lap.CarIndex).
		Uint16(lap.DriverIndex).
		Uint8(uint8(len(lap.Splits)))

	for _, split := range lap.Splits {
		w.Int32(split)
	}

	return w.
		Bool(lap.IsInvalid).
		Bool(lap.IsValidForBest).
		Bool(lap.Kind == protocol.LapOutlap).
		Bool(lap.Kind == protocol.LapInlap)
}

// RealtimeSessionUpdate encodes u. Durations are written as float
// milliseconds and the weather values as tenths.
func RealtimeSessionUpdate(u protocol.RealtimeSessionUpdate) []byte {
	w := protocol.NewWriter().
		Uint8(uint8(protocol.InboundRealtimeUpdate)).
		Uint16(u.EventIndex).
		Uint16(u.SessionIndex).
		Uint8(uint8(u.SessionType)).
		Uint8(uint8(u.Phase)).
		Float32(float32(u.SessionTime.Milliseconds())).
		Float32(float32(u.SessionEndTime.Milliseconds())).
		Int32(u.FocusedCarIndex).
		String(u.ActiveCameraSet).
		String(u.ActiveCamera).
		String(u.CurrentHUDPage).
		Bool(u.IsReplayPlaying)

	if u.IsReplayPlaying {
		w.Float32(u.ReplaySessionTime).Float32(u.ReplayRemainingTime)
	}

	w.Float32(float32(u.TimeOfDay.Milliseconds())).
		Uint8(u.AmbientTemp).
		Uint8(u.TrackTemp).
		Uint8(uint8(u.Clouds*10 + 0.5)).
		Uint8(uint8(u.RainLevel*10 + 0.5)).
		Uint8(uint8(u.Wetness*10 + 0.5))

	return mustBytes(WriteLapInfo(w, u.BestSessionLap))
}

// RealtimeCarUpdate encodes u, header included.
func RealtimeCarUpdate(u protocol.RealtimeCarUpdate) []byte {
	w := protocol.NewWriter().
		Uint8(uint8(protocol.InboundRealtimeCarUpdate)).
		Uint16(u.CarIndex).
		Uint16(u.DriverIndex).
		Uint8(u.DriverCount).
		Uint8(uint8(u.Gear + 1)).
		Float32(u.WorldPosX).
		Float32(u.WorldPosY).
		Float32(u.Yaw).
		Uint8(uint8(u.Location)).
		Uint16(u.Kmh).
		Uint16(u.Position).
		Uint16(u.CupPosition).
		Uint16(u.TrackPosition).
		Float32(u.SplinePosition).
		Uint16(u.Laps).
		Int32(u.DeltaMS)

	WriteLapInfo(w, u.BestSessionLap)
	WriteLapInfo(w, u.LastLap)
	WriteLapInfo(w, u.CurrentLap)

	return mustBytes(w)
}

func BroadcastingEvent(eventType protocol.BroadcastingEventType, msg string, timeMS, carID int32) []byte {
	return mustBytes(protocol.NewWriter().
		Uint8(uint8(protocol.InboundBroadcastingEvent)).
		Uint8(uint8(eventType)).
		String(msg).
		Int32(timeMS).
		Int32(carID))
}
