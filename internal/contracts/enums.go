package contracts

import (
	"fmt"
	"strings"
)

// DwellingType is the construction style of an insured home
type DwellingType string

const (
	DwellingStandalone DwellingType = "STANDALONE"
	DwellingBungalow   DwellingType = "BUNGALOW"
	DwellingBilevel    DwellingType = "BILEVEL"
	DwellingTrilevel   DwellingType = "TRILEVEL"
	DwellingDuplex     DwellingType = "DUPLEX"
	DwellingTownhouse  DwellingType = "TOWNHOUSE"
	DwellingCondo      DwellingType = "CONDO"
)

// DwellingTypes lists every accepted dwelling type
var DwellingTypes = []DwellingType{
	DwellingStandalone, DwellingBungalow, DwellingBilevel, DwellingTrilevel,
	DwellingDuplex, DwellingTownhouse, DwellingCondo,
}

// HeatingType is the primary heating source of an insured home
type HeatingType string

const (
	HeatingElectric HeatingType = "ELECTRIC"
	HeatingGas      HeatingType = "GAS"
	HeatingOil      HeatingType = "OIL"
	HeatingWood     HeatingType = "WOOD"
)

// HeatingTypes lists every accepted heating type
var HeatingTypes = []HeatingType{HeatingElectric, HeatingGas, HeatingOil, HeatingWood}

// Location is the settlement density around an insured home
type Location string

const (
	LocationUrban      Location = "URBAN"
	LocationRural      Location = "RURAL"
	LocationDenseUrban Location = "DENSE_URBAN"
)

// Locations lists every accepted location
var Locations = []Location{LocationUrban, LocationRural, LocationDenseUrban}

// ParseDwellingType validates s against the closed enumeration
func ParseDwellingType(s string) (DwellingType, error) {
	return parseEnum(s, DwellingTypes, "dwelling type")
}

// ParseHeatingType validates s against the closed enumeration
func ParseHeatingType(s string) (HeatingType, error) {
	return parseEnum(s, HeatingTypes, "heating type")
}

// ParseLocation validates s against the closed enumeration
func ParseLocation(s string) (Location, error) {
	return parseEnum(s, Locations, "location")
}

func parseEnum[T ~string](s string, allowed []T, kind string) (T, error) {
	v := T(strings.ToUpper(strings.TrimSpace(s)))
	for _, a := range allowed {
		if a == v {
			return v, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("%w: %s %q", ErrInvalidEnum, kind, s)
}
