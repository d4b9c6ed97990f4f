// Package faa describes the FAA releasable aircraft registry: the record
// layouts of MASTER and ACFTREF files, the entities built from them, and
// the code tables used to label aircraft and engine types.
package faa

import (
	"bytes"
	_ "embed"
	"strings"
	"sync"

	"github.com/taillookup/taillookup/pkg/fixedwidth"
	"github.com/taillookup/taillookup/pkg/tailnum"
)

//go:embed layouts/master.yaml
var masterYAML []byte

//go:embed layouts/acftref.yaml
var acftrefYAML []byte

var (
	layoutsOnce sync.Once
	master      *fixedwidth.Schema
	acftref     *fixedwidth.Schema
	layoutsErr  error
)

// Layouts returns the built-in MASTER and ACFTREF schemas.
func Layouts() (*fixedwidth.Schema, *fixedwidth.Schema, error) {
	layoutsOnce.Do(func() {
		master, layoutsErr = fixedwidth.LoadSchema(bytes.NewReader(masterYAML))
		if layoutsErr != nil {
			return
		}
		acftref, layoutsErr = fixedwidth.LoadSchema(bytes.NewReader(acftrefYAML))
	})
	return master, acftref, layoutsErr
}

// Registration is one aircraft from the MASTER file.
type Registration struct {
	// NNumber is the normalized tail number without the "N" prefix.
	NNumber         string
	SerialNumber    *string
	ModelCode       *string
	EngineModelCode *string
	YearMfr         *int
	TypeRegistrant  *string
	Name            *string
	Street          *string
	Street2         *string
	City            *string
	State           *string
	ZipCode         *string
	Region          *string
	County          *string
	Country         *string
	LastActionDate  *string
	CertIssueDate   *string
	Certification   *string
	TypeAircraft    *string
	TypeEngine      *string
	StatusCode      *string
	ModeSCode       *string
	ModeSCodeHex    *string
	FractOwner      *string
	AirWorthDate    *string
	// OtherNames joins up to five co-owner names with "; ".
	OtherNames     *string
	ExpirationDate *string
	UniqueID       *string
	KitMfr         *string
	KitModel       *string
	// EngineCount and SeatCount are read only when a layout provides
	// no_eng and no_seats columns.
	EngineCount *int
	SeatCount   *int
}

// AircraftModel is one manufacturer/model entry from the ACFTREF file.
type AircraftModel struct {
	Code         string
	Manufacturer *string
	Model        *string
	// Series is not published as a separate column and stays nil for
	// the built-in layout.
	Series       *string
	TypeAircraft *string
	TypeEngine   *string
	Category     *string
	BuilderCert  *string
	EngineCount  *int
	SeatCount    *int
	Weight       *string
	Speed        *int
	TCDataSheet  *string
	TCDataHolder *string
}

// NewRegistration converts a parsed MASTER line. The tail number is
// normalized and may be empty; deciding what to do with such rows is up
// to the caller.
func NewRegistration(r fixedwidth.Record) Registration {
	tail, _ := r.String("n_number")
	return Registration{
		NNumber:         tailnum.Normalize(tail),
		SerialNumber:    r.StringPtr("serial_number"),
		ModelCode:       r.StringPtr("model_code"),
		EngineModelCode: r.StringPtr("engine_model_code"),
		YearMfr:         positive(r.IntPtr("year_mfr")),
		TypeRegistrant:  r.StringPtr("type_registrant"),
		Name:            r.StringPtr("name"),
		Street:          r.StringPtr("street"),
		Street2:         r.StringPtr("street2"),
		City:            r.StringPtr("city"),
		State:           r.StringPtr("state"),
		ZipCode:         r.StringPtr("zip_code"),
		Region:          r.StringPtr("region"),
		County:          r.StringPtr("county"),
		Country:         r.StringPtr("country"),
		LastActionDate:  r.StringPtr("last_action_date"),
		CertIssueDate:   r.StringPtr("cert_issue_date"),
		Certification:   r.StringPtr("certification"),
		TypeAircraft:    r.StringPtr("type_aircraft"),
		TypeEngine:      r.StringPtr("type_engine"),
		StatusCode:      r.StringPtr("status_code"),
		ModeSCode:       r.StringPtr("mode_s_code"),
		ModeSCodeHex:    r.StringPtr("mode_s_code_hex"),
		FractOwner:      r.StringPtr("fract_owner"),
		AirWorthDate:    r.StringPtr("air_worth_date"),
		OtherNames:      otherNames(r),
		ExpirationDate:  r.StringPtr("expiration_date"),
		UniqueID:        r.StringPtr("unique_id"),
		KitMfr:          r.StringPtr("kit_mfr"),
		KitModel:        r.StringPtr("kit_model"),
		EngineCount:     nonNegative(r.IntPtr("no_eng")),
		SeatCount:       nonNegative(r.IntPtr("no_seats")),
	}
}

// NewAircraftModel converts a parsed ACFTREF line.
func NewAircraftModel(r fixedwidth.Record) AircraftModel {
	code, _ := r.String("code")
	return AircraftModel{
		Code:         code,
		Manufacturer: r.StringPtr("mfr"),
		Model:        r.StringPtr("model"),
		Series:       r.StringPtr("series"),
		TypeAircraft: r.StringPtr("type_aircraft"),
		TypeEngine:   r.StringPtr("type_engine"),
		Category:     r.StringPtr("ac_category"),
		BuilderCert:  r.StringPtr("builder_cert"),
		EngineCount:  nonNegative(r.IntPtr("no_eng")),
		SeatCount:    nonNegative(r.IntPtr("no_seats")),
		Weight:       r.StringPtr("ac_weight"),
		Speed:        r.IntPtr("speed"),
		TCDataSheet:  r.StringPtr("tc_data_sheet"),
		TCDataHolder: r.StringPtr("tc_data_holder"),
	}
}

func otherNames(r fixedwidth.Record) *string {
	var names []string
	for _, k := range []string{
		"other_names_1", "other_names_2", "other_names_3",
		"other_names_4", "other_names_5",
	} {
		if s, ok := r.String(k); ok {
			names = append(names, s)
		}
	}
	if len(names) == 0 {
		return nil
	}
	res := strings.Join(names, "; ")
	return &res
}

func nonNegative(i *int) *int {
	if i == nil || *i < 0 {
		return nil
	}
	return i
}

func positive(i *int) *int {
	if i == nil || *i <= 0 {
		return nil
	}
	return i
}
