package telemetry

import "math"

// DefaultScaleHeight is the barometric scale height in meters.
const DefaultScaleHeight = 8500.0

// Deriver computes derived quantities with a fixed scale height.
type Deriver struct {
	ScaleHeight float64
}

// NewDeriver returns a Deriver; a non-positive scale height falls back to
// DefaultScaleHeight.
func NewDeriver(scaleHeight float64) Deriver {
	if scaleHeight <= 0 || math.IsNaN(scaleHeight) {
		scaleHeight = DefaultScaleHeight
	}
	return Deriver{ScaleHeight: scaleHeight}
}

// Altitude returns -H * ln(airPressure / referencePressure).
// ok is false when either pressure is not strictly positive (or NaN), which
// callers render as "not displayable". A reference of 0 means altitude is
// disabled.
func (d Deriver) Altitude(airPressure, referencePressure float64) (altitude float64, ok bool) {
	if !(referencePressure > 0) || !(airPressure > 0) {
		return 0, false
	}
	if math.IsInf(referencePressure, 0) || math.IsInf(airPressure, 0) {
		return 0, false
	}
	return -d.ScaleHeight * math.Log(airPressure/referencePressure), true
}

// DeriveAltitude is Altitude with DefaultScaleHeight.
func DeriveAltitude(airPressure, referencePressure float64) (float64, bool) {
	return Deriver{ScaleHeight: DefaultScaleHeight}.Altitude(airPressure, referencePressure)
}
