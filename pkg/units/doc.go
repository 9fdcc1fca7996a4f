// Package units normalizes the physical quantities found in harness documents.
//
// Two dimensions are supported: conductor gauge and cable length.
//
// # Gauge
//
// Gauges are expressed either as a cross-section in mm² or as an AWG number.
// [Registry.ConvertGauge] converts between the two systems using the standard
// correspondence table (0.09 mm² ↔ 28 AWG … 50 mm² ↔ 1 AWG). Values that are
// not tabulated are rejected under [MatchExact] and snapped to the closest
// tabulated value under [MatchNearest]. Values outside the table fail in both
// modes.
//
//	reg := units.NewRegistry(units.MatchExact)
//	awg, err := reg.ConvertGauge(units.Quantity{Value: 0.25, Unit: units.MM2})
//	// awg == 24 AWG
//
// # Length
//
// Lengths are normalized to meters by [Normalize]; [ConvertLength] converts
// between any two length units with exact rational factors.
//
// All failures are reported as UNIT_ERROR (see package errors).
package units
