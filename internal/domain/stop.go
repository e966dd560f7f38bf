package domain

import "strings"

// Box types the food bank packs.
const (
	BoxBasic = "BASIC"
	BoxGF    = "GF"
	BoxLA    = "LA"
	BoxVegan = "VEGAN"
)

// IsBoxType reports whether s names a known box type, ignoring case.
func IsBoxType(s string) bool {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case BoxBasic, BoxGF, BoxLA, BoxVegan:
		return true
	}
	return false
}

// Represents one row of the chunked input sheet.
// A ChunkedStop is a single delivery already assigned by hand to a driver label
// such as "Jane" or "02.14 Jane #2". Rows are never mutated after they are read.
type ChunkedStop struct {
	DriverLabel  string
	StopNo       int
	Name         string
	Address      string
	Phone        string
	Email        string
	Notes        string
	OrderCount   int
	BoxType      string
	Neighborhood string
}
