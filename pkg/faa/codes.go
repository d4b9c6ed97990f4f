package faa

import (
	"strconv"
	"strings"
)

// UnknownLabel is returned for codes outside the published tables.
const UnknownLabel = "Unknown"

var aircraftTypes = map[string]string{
	"1": "Glider",
	"2": "Balloon",
	"3": "Blimp/Dirigible",
	"4": "Fixed Wing Single-Engine",
	"5": "Fixed Wing Multi-Engine",
	"6": "Rotorcraft",
	"7": "Weight-Shift-Control",
	"8": "Powered Parachute",
	"9": "Gyroplane",
	"H": "Hybrid Lift",
	"O": "Other",
}

var engineTypes = map[string]string{
	"0":  "None",
	"1":  "Reciprocating",
	"2":  "Turbo-Prop",
	"3":  "Turbo-Shaft",
	"4":  "Turbo-Jet",
	"5":  "Turbo-Fan",
	"6":  "Ramjet",
	"7":  "2-Cycle",
	"8":  "4-Cycle",
	"9":  "Unknown",
	"10": "Electric",
	"11": "Rotary",
}

// AircraftTypeLabel maps a TYPE AIRCRAFT code to its description.
func AircraftTypeLabel(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if res, ok := aircraftTypes[code]; ok {
		return res
	}
	return UnknownLabel
}

// EngineTypeLabel maps a TYPE ENGINE code to its description. The MASTER
// file pads this code to two digits, so "01" and "1" are the same code.
func EngineTypeLabel(code string) string {
	code = strings.TrimSpace(code)
	if i, err := strconv.Atoi(code); err == nil && i >= 0 {
		code = strconv.Itoa(i)
	}
	if res, ok := engineTypes[code]; ok {
		return res
	}
	return UnknownLabel
}
