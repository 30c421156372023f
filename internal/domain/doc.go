// Package domain models sensor readings and tank level records.
//
// # Sensor readings
//
// Readings arrive on the source topic as flat JSON, one message per state
// change of a sensor entity:
//
//	{"entity_id":"sensor.tank_height","state":"17.25","unit_of_measurement":"in","last_updated":"2024-11-02T06:15:00Z"}
//
// The state is text. "unavailable", "unknown" and the empty string mean the
// sensor has no value; anything else must parse as a float or the reading is
// treated as not numeric. last_updated is optional and falls back to the
// message timestamp.
//
// # Tanks
//
// A tank is a horizontal cylinder with either flat ends or 2:1 ellipsoidal
// heads. One entity supplies the liquid height measured from the tank bottom
// and an optional second entity supplies the liquid temperature. Lengths use
// whatever unit the tank file uses; volume is in gallons.
//
// # Level records
//
// [ComputeLevel] turns the latest entity states for one tank into a
// [LevelEvent]. When the height is missing, unavailable or not numeric, or the
// geometry is invalid, the record is published with available=false and a
// reason code:
//
//	source_not_found      no reading has been seen for the height entity
//	source_unavailable    the height entity reported unavailable/unknown
//	source_not_numeric    the height state could not be parsed
//	invalid_geometry      the fill percentage has no value for this tank
//
// Temperature problems never make a tank unavailable. The percentage is
// published uncompensated and compensation_skipped names the cause.
package domain
