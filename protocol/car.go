package protocol

import "math"

// UnknownCarIndex is the car index of DefaultCarEntry.
const UnknownCarIndex uint16 = math.MaxUint16

type DriverEntry struct {
	FirstName   string         `json:"firstName"`
	LastName    string         `json:"lastName"`
	ShortName   string         `json:"shortName"`
	Category    DriverCategory `json:"category"`
	Nationality Nationality    `json:"nationality"`
}

func DefaultDriverEntry() DriverEntry {
	return DriverEntry{
		Category:    DriverCategoryUnknown,
		Nationality: NationalityUnknown,
	}
}

func ReadDriverEntry(r *Reader) (DriverEntry, error) {
	d := DriverEntry{
		FirstName:   r.String(),
		LastName:    r.String(),
		ShortName:   r.String(),
		Category:    DriverCategory(r.Uint8()),
		Nationality: Nationality(r.Uint16()),
	}

	if err := r.Err(); err != nil {
		return DriverEntry{}, err
	}

	return d, nil
}

// CarEntry is a car of the entry list, together with its drivers.
type CarEntry struct {
	CarIndex           uint16        `json:"carIndex"`
	ModelType          uint8         `json:"modelType"`
	TeamName           string        `json:"teamName"`
	RaceNumber         int32         `json:"raceNumber"`
	CupCategory        uint8         `json:"cupCategory"`
	CurrentDriverIndex int32         `json:"currentDriverIndex"`
	Nationality        Nationality   `json:"nationality"`
	Drivers            []DriverEntry `json:"drivers"`
}

// DefaultCarEntry is the value every cache miss yields. Consumers treat a
// CarIndex of UnknownCarIndex as "unknown car".
func DefaultCarEntry() CarEntry {
	return CarEntry{
		CarIndex:           UnknownCarIndex,
		ModelType:          math.MaxUint8,
		RaceNumber:         -1,
		CupCategory:        math.MaxUint8,
		CurrentDriverIndex: -1,
		Nationality:        NationalityUnknown,
		Drivers:            []DriverEntry{},
	}
}

// NewCarEntry is the placeholder created for every car of an entry list,
// before its details arrive.
func NewCarEntry(carIndex uint16) CarEntry {
	entry := DefaultCarEntry()
	entry.CarIndex = carIndex
	return entry
}

func (c CarEntry) IsUnknown() bool {
	return c.CarIndex == UnknownCarIndex
}

// Clone returns a copy of the entry that shares no memory with c.
func (c CarEntry) Clone() CarEntry {
	c.Drivers = append([]DriverEntry{}, c.Drivers...)
	return c
}

// CurrentDriver returns the driver currently in the car, or a default
// DriverEntry if the index does not point into the roster.
func (c CarEntry) CurrentDriver() DriverEntry {
	if c.CurrentDriverIndex < 0 || int(c.CurrentDriverIndex) >= len(c.Drivers) {
		return DefaultDriverEntry()
	}

	return c.Drivers[c.CurrentDriverIndex]
}

// EntryList is the authoritative set of cars in the session. The server only
// sends car indices, Cars holds the placeholders built from them.
type EntryList struct {
	ConnectionID int32      `json:"connectionId"`
	Cars         []CarEntry `json:"cars"`
}

func (EntryList) InboundType() InboundType {
	return InboundEntryList
}

// ReadEntryList reads the connection ID, a u16 count and that many car indices.
func ReadEntryList(r *Reader) (EntryList, error) {
	list := EntryList{ConnectionID: r.Int32()}

	count := int(r.Uint16())

	// Don't trust the count to size the allocation
	list.Cars = make([]CarEntry, 0, min(count, r.Len()/2))
	for i := 0; i < count && r.Err() == nil; i++ {
		list.Cars = append(list.Cars, NewCarEntry(r.Uint16()))
	}

	if err := r.Err(); err != nil {
		return EntryList{}, err
	}

	return list, nil
}

// CarIndices returns the car indices of the list, in order.
func (e EntryList) CarIndices() []uint16 {
	indices := make([]uint16, 0, len(e.Cars))
	for _, car := range e.Cars {
		indices = append(indices, car.CarIndex)
	}

	return indices
}

// EntryListCar is the detail update of a single car of the entry list.
type EntryListCar struct {
	CarEntry
}

func (EntryListCar) InboundType() InboundType {
	return InboundEntryListCar
}

// ReadEntryListCar reads the details of a car and its drivers.
func ReadEntryListCar(r *Reader) (EntryListCar, error) {
	car := CarEntry{
		CarIndex:           r.Uint16(),
		ModelType:          r.Uint8(),
		TeamName:           r.String(),
		RaceNumber:         r.Int32(),
		CupCategory:        r.Uint8(),
		CurrentDriverIndex: int32(r.Uint8()),
		Nationality:        Nationality(r.Uint16()),
	}

	driverCount := int(r.Uint8())
	car.Drivers = make([]DriverEntry, 0, driverCount)
	for i := 0; i < driverCount && r.Err() == nil; i++ {
		driver, err := ReadDriverEntry(r)
		if err != nil {
			return EntryListCar{}, err
		}

		car.Drivers = append(car.Drivers, driver)
	}

	if err := r.Err(); err != nil {
		return EntryListCar{}, err
	}

	return EntryListCar{CarEntry: car}, nil
}
