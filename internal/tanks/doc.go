// Package tanks loads the configured tank instances from a YAML file.
//
// Example file:
//
//	tanks:
//	  - id: backyard
//	    name: Backyard propane
//	    source_entity: sensor.propane_height
//	    temperature_entity: sensor.propane_temperature
//	    capacity: 500
//	  - id: shop
//	    source_entity: sensor.shop_tank_height
//	    capacity: custom
//	    end_cap: flat
//	    diameter: 24
//	    total_length: 60
//	    volume: 117.5
//
// The standard capacities (250, 330, 500 and 1000 gallons) supply diameter,
// total length and volume, and any values written next to them are ignored.
// A custom tank must give all three. capacity defaults to 500 and end_cap to
// ellipsoidal_2_1.
package tanks
