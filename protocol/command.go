package protocol

import (
	"encoding"
	"time"

	"github.com/aarondl/opt/omit"
)

// Outbound is implemented by every message a client sends to the server.
type Outbound interface {
	encoding.BinaryMarshaler
	OutboundType() OutboundType
}

// Register is the registration handshake. The update interval is sent in
// whole milliseconds.
type Register struct {
	Version            uint8
	DisplayName        string
	ConnectionPassword string
	UpdateInterval     time.Duration
	CommandPassword    string
}

func (Register) OutboundType() OutboundType {
	return OutboundRegisterCommandApplication
}

func (m Register) MarshalBinary() ([]byte, error) {
	return NewWriter().
		Uint8(uint8(m.OutboundType())).
		Uint8(m.Version).
		String(m.DisplayName).
		String(m.ConnectionPassword).
		Int32(int32(m.UpdateInterval.Milliseconds())).
		String(m.CommandPassword).
		Bytes()
}

type Unregister struct {
	ConnectionID int32
}

func (Unregister) OutboundType() OutboundType {
	return OutboundUnregisterCommandApplication
}

func (m Unregister) MarshalBinary() ([]byte, error) {
	return marshalConnectionOnly(m.OutboundType(), m.ConnectionID)
}

type RequestEntryList struct {
	ConnectionID int32
}

func (RequestEntryList) OutboundType() OutboundType {
	return OutboundRequestEntryList
}

func (m RequestEntryList) MarshalBinary() ([]byte, error) {
	return marshalConnectionOnly(m.OutboundType(), m.ConnectionID)
}

type RequestTrackData struct {
	ConnectionID int32
}

func (RequestTrackData) OutboundType() OutboundType {
	return OutboundRequestTrackData
}

func (m RequestTrackData) MarshalBinary() ([]byte, error) {
	return marshalConnectionOnly(m.OutboundType(), m.ConnectionID)
}

type ChangeHUDPage struct {
	ConnectionID int32
	Page         string
}

func (ChangeHUDPage) OutboundType() OutboundType {
	return OutboundChangeHUDPage
}

func (m ChangeHUDPage) MarshalBinary() ([]byte, error) {
	return NewWriter().
		Uint8(uint8(m.OutboundType())).
		Int32(m.ConnectionID).
		String(m.Page).
		Bytes()
}

// CameraSelection names a camera within a camera set.
type CameraSelection struct {
	Set    string
	Camera string
}

// NewCameraSelection returns an unset selection unless both the set and
// the camera are named.
func NewCameraSelection(set, camera string) omit.Val[CameraSelection] {
	if set == "" || camera == "" {
		return omit.Val[CameraSelection]{}
	}

	return omit.From(CameraSelection{Set: set, Camera: camera})
}

// ChangeFocus moves the broadcast focus to a car, a camera, or both. Each
// part is preceded by a presence flag on the wire.
type ChangeFocus struct {
	ConnectionID int32
	CarIndex     omit.Val[uint16]
	Camera       omit.Val[CameraSelection]
}

func (ChangeFocus) OutboundType() OutboundType {
	return OutboundChangeFocus
}

func (m ChangeFocus) MarshalBinary() ([]byte, error) {
	w := NewWriter().
		Uint8(uint8(m.OutboundType())).
		Int32(m.ConnectionID)

	if car, ok := m.CarIndex.Get(); ok {
		w.Bool(true).Uint16(car)
	} else {
		w.Bool(false)
	}

	if cam, ok := m.Camera.Get(); ok {
		w.Bool(true).String(cam.Set).String(cam.Camera)
	} else {
		w.Bool(false)
	}

	return w.Bytes()
}

// InstantReplayRequest asks the server to replay a window of session time.
// Times are in milliseconds.
type InstantReplayRequest struct {
	ConnectionID           int32
	StartSessionTimeMS     float32
	DurationMS             float32
	InitialFocusedCarIndex int32
	InitialCameraSet       string
	InitialCamera          string
}

func (InstantReplayRequest) OutboundType() OutboundType {
	return OutboundInstantReplayRequest
}

func (m InstantReplayRequest) MarshalBinary() ([]byte, error) {
	return NewWriter().
		Uint8(uint8(m.OutboundType())).
		Int32(m.ConnectionID).
		Float32(m.StartSessionTimeMS).
		Float32(m.DurationMS).
		Int32(m.InitialFocusedCarIndex).
		String(m.InitialCameraSet).
		String(m.InitialCamera).
		Bytes()
}

func marshalConnectionOnly(t OutboundType, connectionID int32) ([]byte, error) {
	return NewWriter().
		Uint8(uint8(t)).
		Int32(connectionID).
		Bytes()
}

var _ Outbound = Register{}
var _ Outbound = Unregister{}
var _ Outbound = RequestEntryList{}
var _ Outbound = RequestTrackData{}
var _ Outbound = ChangeHUDPage{}
var _ Outbound = ChangeFocus{}
var _ Outbound = InstantReplayRequest{}
