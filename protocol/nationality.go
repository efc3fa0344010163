package protocol

import (
	"fmt"
	"math"
)

// Nationality is the u16 nationality code used for cars and drivers.
type Nationality uint16

const (
	NationalityAny Nationality = 0

	// NationalityUnknown is what default car and driver entries carry.
	NationalityUnknown Nationality = math.MaxUint16
)

var nationalityNames = [...]string{
	"Any", "Italy", "Germany", "France", "Spain", "GreatBritain", "Hungary",
	"Belgium", "Switzerland", "Austria", "Russia", "Thailand", "Netherlands",
	"Poland", "Argentina", "Monaco", "Ireland", "Brazil", "SouthAfrica",
	"PuertoRico", "Slovakia", "Oman", "Greece", "SaudiArabia", "Norway",
	"Turkey", "SouthKorea", "Lebanon", "Armenia", "Mexico", "Sweden",
	"Finland", "Denmark", "Croatia", "Canada", "China", "Portugal",
	"Singapore", "Indonesia", "USA", "NewZealand", "Australia", "SanMarino",
	"UAE", "Luxembourg", "Kuwait", "HongKong", "Colombia", "Japan",
	"Andorra", "Azerbaijan", "Bulgaria", "Cuba", "CzechRepublic", "Estonia",
	"Georgia", "India", "Israel", "Jamaica", "Latvia", "Lithuania", "Macau",
	"Malaysia", "Nepal", "NewCaledonia", "Nigeria", "NorthernIreland",
	"PapuaNewGuinea", "Philippines", "Qatar", "Romania", "Scotland",
	"Serbia", "Slovenia", "Taiwan", "Ukraine", "Venezuela", "Wales", "Iran",
	"Bahrain", "Zimbabwe", "ChineseTaipei", "Chile", "Uruguay", "Madagascar",
}

func (n Nationality) Known() bool {
	return int(n) < len(nationalityNames)
}

func (n Nationality) String() string {
	if n.Known() {
		return nationalityNames[n]
	}

	return fmt.Sprintf("Unknown(%d)", uint16(n))
}
