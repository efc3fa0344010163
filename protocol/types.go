package protocol

import "fmt"

type InboundType uint8

const (
	InboundRegistrationResult InboundType = 1
	InboundRealtimeUpdate     InboundType = 2
	InboundRealtimeCarUpdate  InboundType = 3
	InboundEntryList          InboundType = 4
	InboundTrackData          InboundType = 5
	InboundEntryListCar       InboundType = 6
	InboundBroadcastingEvent  InboundType = 7
)

func (t InboundType) Known() bool {
	return t >= InboundRegistrationResult && t <= InboundBroadcastingEvent
}

func (t InboundType) String() string {
	switch t {
	case InboundRegistrationResult:
		return "RegistrationResult"
	case InboundRealtimeUpdate:
		return "RealtimeUpdate"
	case InboundRealtimeCarUpdate:
		return "RealtimeCarUpdate"
	case InboundEntryList:
		return "EntryList"
	case InboundTrackData:
		return "TrackData"
	case InboundEntryListCar:
		return "EntryListCar"
	case InboundBroadcastingEvent:
		return "BroadcastingEvent"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(t))
	}
}

type OutboundType uint8

const (
	OutboundRegisterCommandApplication   OutboundType = 1
	OutboundUnregisterCommandApplication OutboundType = 9
	OutboundRequestEntryList             OutboundType = 10
	OutboundRequestTrackData             OutboundType = 11
	OutboundChangeHUDPage                OutboundType = 49
	OutboundChangeFocus                  OutboundType = 50
	OutboundInstantReplayRequest         OutboundType = 51
)

func (t OutboundType) String() string {
	switch t {
	case OutboundRegisterCommandApplication:
		return "RegisterCommandApplication"
	case OutboundUnregisterCommandApplication:
		return "UnregisterCommandApplication"
	case OutboundRequestEntryList:
		return "RequestEntryList"
	case OutboundRequestTrackData:
		return "RequestTrackData"
	case OutboundChangeHUDPage:
		return "ChangeHUDPage"
	case OutboundChangeFocus:
		return "ChangeFocus"
	case OutboundInstantReplayRequest:
		return "InstantReplayRequest"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(t))
	}
}

// Inbound is implemented by every typed result of decoding a datagram from
// the server, including NoResult.
type Inbound interface {
	InboundType() InboundType
}

// NoResult is returned for datagrams that carry nothing for the caller:
// unrecognised message types, or updates that could not be reconciled with
// the entry cache.
type NoResult struct {
	Type   InboundType
	Reason string
}

func (n NoResult) InboundType() InboundType {
	return n.Type
}

// ReadInboundType reads the leading message type of a datagram.
func ReadInboundType(r *Reader) (InboundType, error) {
	t := InboundType(r.Uint8())
	return t, r.Err()
}

var _ Inbound = NoResult{}
var _ Inbound = RegistrationResult{}
var _ Inbound = RealtimeSessionUpdate{}
var _ Inbound = RealtimeCarUpdate{}
var _ Inbound = EntryList{}
var _ Inbound = TrackData{}
var _ Inbound = EntryListCar{}
var _ Inbound = BroadcastingEvent{}
