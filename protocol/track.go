package protocol

type CameraSet struct {
	Name    string   `json:"name"`
	Cameras []string `json:"cameras"`
}

// TrackData is the static metadata of the session's track, its broadcast
// cameras and HUD pages. Camera sets and HUD pages keep server order.
type TrackData struct {
	ConnectionID int32       `json:"connectionId"`
	TrackName    string      `json:"trackName"`
	TrackID      int32       `json:"trackId"`
	TrackMeters  int32       `json:"trackMeters"`
	CameraSets   []CameraSet `json:"cameraSets"`
	HUDPages     []string    `json:"hudPages"`
}

// DefaultTrackData is the empty track data returned for responses that
// belong to another connection.
func DefaultTrackData() TrackData {
	return TrackData{
		ConnectionID: UnregisteredConnectionID,
		TrackID:      -1,
		TrackMeters:  -1,
		CameraSets:   []CameraSet{},
		HUDPages:     []string{},
	}
}

func (TrackData) InboundType() InboundType {
	return InboundTrackData
}

// Cameras returns the cameras of the named camera set.
func (t TrackData) Cameras(cameraSet string) ([]string, bool) {
	for _, set := range t.CameraSets {
		if set.Name == cameraSet {
			return set.Cameras, true
		}
	}

	return nil, false
}

// ReadTrackDataConnectionID reads the connection ID that starts every track
// data response. The body is only worth reading if it is ours.
func ReadTrackDataConnectionID(r *Reader) (int32, error) {
	id := r.Int32()
	return id, r.Err()
}

// ReadTrackData reads the track data body that follows the connection ID.
func ReadTrackData(r *Reader, connectionID int32) (TrackData, error) {
	track := TrackData{
		ConnectionID: connectionID,
		TrackName:    r.String(),
		TrackID:      r.Int32(),
		TrackMeters:  r.Int32(),
	}

	setCount := int(r.Uint8())
	track.CameraSets = make([]CameraSet, 0, setCount)
	for i := 0; i < setCount && r.Err() == nil; i++ {
		set := CameraSet{Name: r.String()}

		cameraCount := int(r.Uint8())
		set.Cameras = make([]string, 0, cameraCount)
		for j := 0; j < cameraCount && r.Err() == nil; j++ {
			set.Cameras = append(set.Cameras, r.String())
		}

		track.CameraSets = append(track.CameraSets, set)
	}

	pageCount := int(r.Uint8())
	track.HUDPages = make([]string, 0, pageCount)
	for i := 0; i < pageCount && r.Err() == nil; i++ {
		track.HUDPages = append(track.HUDPages, r.String())
	}

	if err := r.Err(); err != nil {
		return TrackData{}, err
	}

	return track, nil
}
