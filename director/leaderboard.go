package director

import (
	"cmp"
	"slices"

	"github.com/samber/lo"

	"github.com/luma/racedirector/protocol"
)

// Standing is one row of the leaderboard.
type Standing struct {
	Position      uint16               `json:"position"`
	CupPosition   uint16               `json:"cupPosition"`
	TrackPosition uint16               `json:"trackPosition"`
	CarIndex      uint16               `json:"carIndex"`
	RaceNumber    int32                `json:"raceNumber"`
	TeamName      string               `json:"teamName"`
	Driver        string               `json:"driver"`
	Location      protocol.CarLocation `json:"location"`
	Laps          uint16               `json:"laps"`
	DeltaMS       int32                `json:"delta"`
	LastLapMS     int32                `json:"lastLap"`
	BestLapMS     int32                `json:"bestLap"`
}

// Leaderboard lists every car of the entry list by race position. Cars
// without a position yet come last, in entry list order.
func (d *Director) Leaderboard() []Standing {
	d.mu.RLock()
	standings := lo.Map(d.order, func(idx uint16, _ int) Standing {
		return makeStanding(d.entries[idx], d.cars[idx])
	})
	d.mu.RUnlock()

	slices.SortStableFunc(standings, func(a, b Standing) int {
		return cmp.Compare(sortPosition(a), sortPosition(b))
	})

	return standings
}

func sortPosition(s Standing) int {
	if s.Position == 0 {
		return int(^uint16(0)) + 1
	}

	return int(s.Position)
}

func makeStanding(entry protocol.CarEntry, update protocol.RealtimeCarUpdate) Standing {
	return Standing{
		Position:      update.Position,
		CupPosition:   update.CupPosition,
		TrackPosition: update.TrackPosition,
		CarIndex:      entry.CarIndex,
		RaceNumber:    entry.RaceNumber,
		TeamName:      entry.TeamName,
		Driver:        driverName(entry.CurrentDriver()),
		Location:      update.Location,
		Laps:          update.Laps,
		DeltaMS:       update.DeltaMS,
		LastLapMS:     update.LastLap.LapTimeMS,
		BestLapMS:     update.BestSessionLap.LapTimeMS,
	}
}

func driverName(driver protocol.DriverEntry) string {
	switch {
	case driver.FirstName != "" && driver.LastName != "":
		return driver.FirstName + " " + driver.LastName
	case driver.LastName != "":
		return driver.LastName
	default:
		return driver.ShortName
	}
}
