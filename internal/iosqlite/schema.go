package iosqlite

const driverName = "sqlite"

const schemaDDL = `
CREATE TABLE aircraft_models (
	code TEXT PRIMARY KEY,
	manufacturer TEXT,
	model TEXT,
	series TEXT,
	type_aircraft TEXT,
	type_engine TEXT,
	category TEXT,
	builder_cert TEXT,
	engine_count INTEGER,
	seat_count INTEGER,
	weight TEXT,
	speed INTEGER,
	tc_data_sheet TEXT,
	tc_data_holder TEXT
) WITHOUT ROWID;

CREATE TABLE registrations (
	n_number TEXT PRIMARY KEY,
	serial_number TEXT,
	model_code TEXT,
	engine_model_code TEXT,
	year_mfr INTEGER,
	type_registrant TEXT,
	name TEXT,
	street TEXT,
	street2 TEXT,
	city TEXT,
	state TEXT,
	zip_code TEXT,
	region TEXT,
	county TEXT,
	country TEXT,
	last_action_date TEXT,
	cert_issue_date TEXT,
	certification TEXT,
	type_aircraft TEXT,
	type_engine TEXT,
	status_code TEXT,
	mode_s_code TEXT,
	mode_s_code_hex TEXT,
	fract_owner TEXT,
	air_worth_date TEXT,
	other_names TEXT,
	expiration_date TEXT,
	unique_id TEXT,
	kit_mfr TEXT,
	kit_model TEXT,
	engine_count INTEGER,
	seat_count INTEGER
) WITHOUT ROWID;

CREATE TABLE metadata (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
) WITHOUT ROWID;
`

const insertModelSQL = `
INSERT OR REPLACE INTO aircraft_models (
	code, manufacturer, model, series, type_aircraft, type_engine,
	category, builder_cert, engine_count, seat_count, weight, speed,
	tc_data_sheet, tc_data_holder
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

const insertRegistrationSQL = `
INSERT INTO registrations (
	n_number, serial_number, model_code, engine_model_code, year_mfr,
	type_registrant, name, street, street2, city, state, zip_code,
	region, county, country, last_action_date, cert_issue_date,
	certification, type_aircraft, type_engine, status_code, mode_s_code,
	mode_s_code_hex, fract_owner, air_worth_date, other_names,
	expiration_date, unique_id, kit_mfr, kit_model, engine_count,
	seat_count
) VALUES (
	?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?,
	?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?
)`

var indexes = []string{
	"CREATE INDEX idx_registrations_model_code ON registrations (model_code)",
	"ANALYZE",
}

// selectAircraft joins registrations with models. Reference counts win
// over the ones reported in the registration.
const selectAircraft = `
SELECT r.n_number, r.model_code, r.type_aircraft, r.type_engine,
	r.year_mfr, m.manufacturer, m.model, m.series,
	COALESCE(m.engine_count, r.engine_count),
	COALESCE(m.seat_count, r.seat_count)
FROM registrations r
LEFT JOIN aircraft_models m ON m.code = r.model_code`
