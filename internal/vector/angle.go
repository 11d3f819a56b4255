package vector

import "math"

// WrapDegrees normalizes an angle to (-180, 180].
func WrapDegrees(deg float64) float64 {
	d := math.Mod(deg, 360)
	if d <= -180 {
		d += 360
	} else if d > 180 {
		d -= 360
	}
	return d
}

// AngleDiff returns the signed smallest difference a-b in degrees.
func AngleDiff(a, b float64) float64 {
	return WrapDegrees(a - b)
}

func Radians(deg float64) float64 {
	return deg * math.Pi / 180
}

func Degrees(rad float64) float64 {
	return rad * 180 / math.Pi
}
