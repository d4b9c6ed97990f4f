package iopg

// Table names. New snapshots are written to tables with the nextSuffix
// and renamed on publish.
const (
	tableModels        = "aircraft_models"
	tableRegistrations = "registrations"
	tableMetadata      = "metadata"
	nextSuffix         = "_next"
	indexModelCode     = "idx_registrations_model_code"
)

// aircraftModel is the GORM model for the aircraft_models table.
type aircraftModel struct {
	Code         string  `gorm:"column:code;type:text;primaryKey"`
	Manufacturer *string `gorm:"column:manufacturer;type:text"`
	Model        *string `gorm:"column:model;type:text"`
	Series       *string `gorm:"column:series;type:text"`
	TypeAircraft *string `gorm:"column:type_aircraft;type:text"`
	TypeEngine   *string `gorm:"column:type_engine;type:text"`
	Category     *string `gorm:"column:category;type:text"`
	BuilderCert  *string `gorm:"column:builder_cert;type:text"`
	EngineCount  *int    `gorm:"column:engine_count;type:integer"`
	SeatCount    *int    `gorm:"column:seat_count;type:integer"`
	Weight       *string `gorm:"column:weight;type:text"`
	Speed        *int    `gorm:"column:speed;type:integer"`
	TCDataSheet  *string `gorm:"column:tc_data_sheet;type:text"`
	TCDataHolder *string `gorm:"column:tc_data_holder;type:text"`
}

var modelColumns = []string{
	"code", "manufacturer", "model", "series", "type_aircraft",
	"type_engine", "category", "builder_cert", "engine_count",
	"seat_count", "weight", "speed", "tc_data_sheet", "tc_data_holder",
}

// registration is the GORM model for the registrations table.
type registration struct {
	NNumber         string  `gorm:"column:n_number;type:text;primaryKey"`
	SerialNumber    *string `gorm:"column:serial_number;type:text"`
	ModelCode       *string `gorm:"column:model_code;type:text"`
	EngineModelCode *string `gorm:"column:engine_model_code;type:text"`
	YearMfr         *int    `gorm:"column:year_mfr;type:integer"`
	TypeRegistrant  *string `gorm:"column:type_registrant;type:text"`
	Name            *string `gorm:"column:name;type:text"`
	Street          *string `gorm:"column:street;type:text"`
	Street2         *string `gorm:"column:street2;type:text"`
	City            *string `gorm:"column:city;type:text"`
	State           *string `gorm:"column:state;type:text"`
	ZipCode         *string `gorm:"column:zip_code;type:text"`
	Region          *string `gorm:"column:region;type:text"`
	County          *string `gorm:"column:county;type:text"`
	Country         *string `gorm:"column:country;type:text"`
	LastActionDate  *string `gorm:"column:last_action_date;type:text"`
	CertIssueDate   *string `gorm:"column:cert_issue_date;type:text"`
	Certification   *string `gorm:"column:certification;type:text"`
	TypeAircraft    *string `gorm:"column:type_aircraft;type:text"`
	TypeEngine      *string `gorm:"column:type_engine;type:text"`
	StatusCode      *string `gorm:"column:status_code;type:text"`
	ModeSCode       *string `gorm:"column:mode_s_code;type:text"`
	ModeSCodeHex    *string `gorm:"column:mode_s_code_hex;type:text"`
	FractOwner      *string `gorm:"column:fract_owner;type:text"`
	AirWorthDate    *string `gorm:"column:air_worth_date;type:text"`
	OtherNames      *string `gorm:"column:other_names;type:text"`
	ExpirationDate  *string `gorm:"column:expiration_date;type:text"`
	UniqueID        *string `gorm:"column:unique_id;type:text"`
	KitMfr          *string `gorm:"column:kit_mfr;type:text"`
	KitModel        *string `gorm:"column:kit_model;type:text"`
	EngineCount     *int    `gorm:"column:engine_count;type:integer"`
	SeatCount       *int    `gorm:"column:seat_count;type:integer"`
}

var registrationColumns = []string{
	"n_number", "serial_number", "model_code", "engine_model_code",
	"year_mfr", "type_registrant", "name", "street", "street2", "city",
	"state", "zip_code", "region", "county", "country",
	"last_action_date", "cert_issue_date", "certification",
	"type_aircraft", "type_engine", "status_code", "mode_s_code",
	"mode_s_code_hex", "fract_owner", "air_worth_date", "other_names",
	"expiration_date", "unique_id", "kit_mfr", "kit_model",
	"engine_count", "seat_count",
}

// metadatum is the GORM model for the metadata table.
type metadatum struct {
	Key   string `gorm:"column:key;type:text;primaryKey"`
	Value string `gorm:"column:value;type:text;not null"`
}

// tables pairs each table with its GORM model.
var tables = []struct {
	name  string
	model any
}{
	{tableModels, &aircraftModel{}},
	{tableRegistrations, &registration{}},
	{tableMetadata, &metadatum{}},
}

const selectAircraft = `
SELECT r.n_number, r.model_code, r.type_aircraft, r.type_engine,
	r.year_mfr, m.manufacturer, m.model, m.series,
	COALESCE(m.engine_count, r.engine_count),
	COALESCE(m.seat_count, r.seat_count)
FROM registrations r
LEFT JOIN aircraft_models m ON m.code = r.model_code`
