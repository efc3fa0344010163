package protocol

// LapInfo is embedded by value in car and session updates.
type LapInfo struct {
	LapTimeMS      int32   `json:"lapTimeMs"`
	CarIndex       uint16  `json:"carIndex"`
	DriverIndex    uint16  `json:"driverIndex"`
	Splits         []int32 `json:"splits"`
	IsInvalid      bool    `json:"isInvalid"`
	IsValidForBest bool    `json:"isValidForBest"`
	Kind           LapKind `json:"kind"`
}

// ReadLapInfo reads a lap: lap time, car and driver index, a u8 count of
// split times, the splits and then the invalid, valid-for-best, outlap and
// inlap flags.
func ReadLapInfo(r *Reader) (LapInfo, error) {
	lap := LapInfo{
		LapTimeMS:   r.Int32(),
		CarIndex:    r.Uint16(),
		DriverIndex: r.Uint16(),
	}

	splitCount := int(r.Uint8())
	lap.Splits = make([]int32, 0, splitCount)
	for i := 0; i < splitCount && r.Err() == nil; i++ {
		lap.Splits = append(lap.Splits, r.Int32())
	}

	lap.IsInvalid = r.Bool()
	lap.IsValidForBest = r.Bool()

	isOutlap := r.Bool()
	isInlap := r.Bool()
	lap.Kind = ResolveLapKind(isOutlap, isInlap)

	if err := r.Err(); err != nil {
		return LapInfo{}, err
	}

	return lap, nil
}
