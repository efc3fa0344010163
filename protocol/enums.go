package protocol

import "fmt"

// Every enum below keeps the raw wire value, so an unrecognised value
// survives decoding untouched and Known reports false for it.

type SessionType uint8

const (
	SessionPractice        SessionType = 0
	SessionQualifying      SessionType = 4
	SessionSuperpole       SessionType = 9
	SessionRace            SessionType = 10
	SessionHotlap          SessionType = 11
	SessionHotstint        SessionType = 12
	SessionHotlapSuperpole SessionType = 13
	SessionReplay          SessionType = 14
)

var sessionTypeNames = map[SessionType]string{
	SessionPractice:        "Practice",
	SessionQualifying:      "Qualifying",
	SessionSuperpole:       "Superpole",
	SessionRace:            "Race",
	SessionHotlap:          "Hotlap",
	SessionHotstint:        "Hotstint",
	SessionHotlapSuperpole: "HotlapSuperpole",
	SessionReplay:          "Replay",
}

func (s SessionType) Known() bool {
	_, ok := sessionTypeNames[s]
	return ok
}

func (s SessionType) String() string {
	if name, ok := sessionTypeNames[s]; ok {
		return name
	}

	return fmt.Sprintf("Unknown(%d)", uint8(s))
}

type SessionPhase uint8

const (
	PhaseNone SessionPhase = iota
	PhaseStarting
	PhasePreFormation
	PhaseFormationLap
	PhasePreSession
	PhaseSession
	PhaseSessionOver
	PhasePostSession
	PhaseResultUI
)

var sessionPhaseNames = [...]string{
	"None", "Starting", "PreFormation", "FormationLap", "PreSession",
	"Session", "SessionOver", "PostSession", "ResultUI",
}

func (p SessionPhase) Known() bool {
	return int(p) < len(sessionPhaseNames)
}

func (p SessionPhase) String() string {
	if p.Known() {
		return sessionPhaseNames[p]
	}

	return fmt.Sprintf("Unknown(%d)", uint8(p))
}

type CarLocation uint8

const (
	LocationNone CarLocation = iota
	LocationTrack
	LocationPitlane
	LocationPitEntry
	LocationPitExit
)

var carLocationNames = [...]string{"None", "Track", "Pitlane", "PitEntry", "PitExit"}

func (l CarLocation) Known() bool {
	return int(l) < len(carLocationNames)
}

func (l CarLocation) String() string {
	if l.Known() {
		return carLocationNames[l]
	}

	return fmt.Sprintf("Unknown(%d)", uint8(l))
}

type DriverCategory uint8

const (
	DriverBronze DriverCategory = iota
	DriverSilver
	DriverGold
	DriverPlatinum

	// DriverCategoryUnknown is what a default DriverEntry carries.
	DriverCategoryUnknown DriverCategory = 255
)

var driverCategoryNames = [...]string{"Bronze", "Silver", "Gold", "Platinum"}

func (c DriverCategory) Known() bool {
	return int(c) < len(driverCategoryNames)
}

func (c DriverCategory) String() string {
	if c.Known() {
		return driverCategoryNames[c]
	}

	return fmt.Sprintf("Unknown(%d)", uint8(c))
}

type BroadcastingEventType uint8

const (
	EventNone BroadcastingEventType = iota
	EventGreenFlag
	EventSessionOver
	EventPenaltyCommMsg
	EventAccident
	EventLapCompleted
	EventBestSessionLap
	EventBestPersonalLap
)

var broadcastingEventNames = [...]string{
	"None", "GreenFlag", "SessionOver", "PenaltyCommMsg", "Accident",
	"LapCompleted", "BestSessionLap", "BestPersonalLap",
}

func (e BroadcastingEventType) Known() bool {
	return int(e) < len(broadcastingEventNames)
}

func (e BroadcastingEventType) String() string {
	if e.Known() {
		return broadcastingEventNames[e]
	}

	return fmt.Sprintf("Unknown(%d)", uint8(e))
}

// LapKind is not on the wire as such, it is resolved from the outlap and
// inlap flags of a lap.
type LapKind uint8

const (
	LapUnknown LapKind = iota
	LapOutlap
	LapRegular
	LapInlap
)

// ResolveLapKind gives outlap precedence over inlap. Neither flag set is a
// regular lap.
func ResolveLapKind(isOutlap, isInlap bool) LapKind {
	switch {
	case isOutlap:
		return LapOutlap
	case isInlap:
		return LapInlap
	default:
		return LapRegular
	}
}

func (k LapKind) String() string {
	switch k {
	case LapOutlap:
		return "Outlap"
	case LapRegular:
		return "Regular"
	case LapInlap:
		return "Inlap"
	default:
		return "Unknown"
	}
}
