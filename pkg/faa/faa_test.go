package faa_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taillookup/taillookup/pkg/faa"
)

func TestLayouts(t *testing.T) {
	master, acftref, err := faa.Layouts()
	require.NoError(t, err)

	assert.Equal(t, "MASTER", master.Name)
	assert.True(t, master.HasHeader)
	assert.Equal(t, 611, master.Width())
	assert.True(t, master.Has("n_number"))
	assert.True(t, master.Has("model_code"))

	assert.Equal(t, "ACFTREF", acftref.Name)
	assert.Equal(t, 156, acftref.Width())
	assert.True(t, acftref.Has("no_seats"))
}

func TestNewRegistration(t *testing.T) {
	master, _, err := faa.Layouts()
	require.NoError(t, err)

	line := master.Format(map[string]string{
		"n_number":        "172SP",
		"serial_number":   "172S8001",
		"model_code":      "2072738",
		"year_mfr":        "2001",
		"type_aircraft":   "4",
		"type_engine":     "1",
		"name":            "JOHN DOE",
		"other_names_1":   "JANE DOE",
		"other_names_3":   "JIM DOE",
		"mode_s_code_hex": "A0B1C2",
	}, ',')
	reg := faa.NewRegistration(master.Parse(line))

	assert.Equal(t, "172SP", reg.NNumber)
	require.NotNil(t, reg.ModelCode)
	assert.Equal(t, "2072738", *reg.ModelCode)
	require.NotNil(t, reg.YearMfr)
	assert.Equal(t, 2001, *reg.YearMfr)
	require.NotNil(t, reg.OtherNames)
	assert.Equal(t, "JANE DOE; JIM DOE", *reg.OtherNames)
	require.NotNil(t, reg.ModeSCodeHex)
	assert.Equal(t, "A0B1C2", *reg.ModeSCodeHex)
	assert.Nil(t, reg.City)
	assert.Nil(t, reg.EngineCount)
	assert.Nil(t, reg.SeatCount)
}

func TestNewRegistrationBlankValues(t *testing.T) {
	master, _, err := faa.Layouts()
	require.NoError(t, err)

	tests := []struct {
		msg     string
		values  map[string]string
		nNumber string
	}{
		{"blank tail", map[string]string{"serial_number": "1"}, ""},
		{"prefixed tail", map[string]string{"n_number": "N-12"}, "12"},
		{"short line", nil, ""},
		{"negative year", map[string]string{"n_number": "1", "year_mfr": "-001"}, "1"},
		{"zero year", map[string]string{"n_number": "1", "year_mfr": "0000"}, "1"},
	}

	for _, v := range tests {
		reg := faa.NewRegistration(master.Parse(master.Format(v.values, ',')))
		assert.Equal(t, v.nNumber, reg.NNumber, v.msg)
		assert.Nil(t, reg.YearMfr, v.msg)
	}
}

func TestNewAircraftModel(t *testing.T) {
	_, acftref, err := faa.Layouts()
	require.NoError(t, err)

	line := acftref.Format(map[string]string{
		"code":          "2072738",
		"mfr":           "CESSNA",
		"model":         "172S",
		"type_aircraft": "4",
		"type_engine":   "1",
		"no_eng":        "1",
		"no_seats":      "004",
		"speed":         "   ",
	}, ',')
	m := faa.NewAircraftModel(acftref.Parse(line))

	assert.Equal(t, "2072738", m.Code)
	require.NotNil(t, m.Manufacturer)
	assert.Equal(t, "CESSNA", *m.Manufacturer)
	require.NotNil(t, m.SeatCount)
	assert.Equal(t, 4, *m.SeatCount)
	require.NotNil(t, m.EngineCount)
	assert.Equal(t, 1, *m.EngineCount)
	assert.Nil(t, m.Speed)
	assert.Nil(t, m.Series)
}

func TestAircraftTypeLabel(t *testing.T) {
	tests := []struct {
		code, label string
	}{
		{"1", "Glider"},
		{"4", "Fixed Wing Single-Engine"},
		{"6", "Rotorcraft"},
		{"9", "Gyroplane"},
		{"H", "Hybrid Lift"},
		{"h", "Hybrid Lift"},
		{"O", "Other"},
		{" 5 ", "Fixed Wing Multi-Engine"},
		{"", faa.UnknownLabel},
		{"Z", faa.UnknownLabel},
		{"10", faa.UnknownLabel},
	}

	for _, v := range tests {
		assert.Equal(t, v.label, faa.AircraftTypeLabel(v.code), v.code)
	}
}

func TestEngineTypeLabel(t *testing.T) {
	tests := []struct {
		code, label string
	}{
		{"0", "None"},
		{"1", "Reciprocating"},
		{"01", "Reciprocating"},
		{" 5", "Turbo-Fan"},
		{"9", "Unknown"},
		{"10", "Electric"},
		{"11", "Rotary"},
		{"12", faa.UnknownLabel},
		{"-1", faa.UnknownLabel},
		{"X", faa.UnknownLabel},
		{"", faa.UnknownLabel},
	}

	for _, v := range tests {
		assert.Equal(t, v.label, faa.EngineTypeLabel(v.code), v.code)
	}
}
