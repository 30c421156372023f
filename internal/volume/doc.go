// Package volume converts a measured liquid height into the fill percentage of
// a horizontal cylindrical tank and corrects that percentage for thermal
// expansion of the stored liquid.
//
// # Geometry
//
// The cylindrical section is a stack of identical circular cross-sections. The
// wetted area of a disc of radius r filled to height h is the circular segment
//
//	A(h) = r²·acos((r−h)/r) − (r−h)·√(2rh − h²)
//
// and the cylinder fill fraction is A(h) / (π·r²).
//
// Each 2:1 ellipsoidal head is half an ellipsoid with semi-axes r, r and a,
// where a = r/2 (one quarter of the diameter). Slicing horizontally at
// w = z − r gives a half-ellipse of area ½·π·a·r·(1 − w²/r²); integrating from
// the bottom of the tank to the fill height gives
//
//	V(h) = ½·π·r·a·(y − y³/(3r²) + ⅔·r),  y = h − r
//
// which equals π·a·h²·(3r − h)/(6r). Both heads together hold
// 2·⅔·π·r²·a when full.
//
// # Thermal compensation
//
// A percentage measured at temperature T is rescaled to the reference
// temperature with a linear volumetric expansion model:
//
//	corrected = measured / (1 + β·(T − T_ref))
//
// The reference is 60 °F (15 °C). β defaults to 0.0019 per °F, the calibrated
// value for propane; the Celsius coefficient is β·9/5.
//
// All functions are pure and safe for concurrent use. Invalid geometry is
// reported through a boolean "ok" result rather than an error or panic.
package volume
