package shape

import (
	"math"

	"github.com/danmakucore/server/internal/vector"
)

// Directive tells the spawn sink where one danmaku starts and where it heads.
type Directive struct {
	Position   vector.Vector3
	Direction  vector.Vector3
	Size       float64 // ring spread forwarded to the shot, 0 for planar shapes
	SpeedScale float64
}

// Shape lays out one volley. The bool reports whether the shape wants to be
// drawn again on a later tick; every shape here is single-volley.
type Shape interface {
	DrawForTick(origin, angle vector.Vector3, tick int) (bool, []Directive)
}

// facing returns a usable forward vector for angle.
func facing(angle vector.Vector3) vector.Vector3 {
	f := angle.Normalize()
	if f == vector.Zero {
		return vector.Forward
	}
	return f
}

// turn rotates forward by deg degrees of yaw inside the plane spanned by
// forward and its horizontal side vector.
func turn(forward, side vector.Vector3, deg float64) vector.Vector3 {
	r := vector.Radians(vector.WrapDegrees(deg))
	return forward.Multiply(math.Cos(r)).Add(side.Multiply(math.Sin(r))).Normalize()
}

// spread returns the yaw offset of projectile i when amount projectiles are
// spread evenly over wide degrees centred on base.
func spread(amount int, wide, base float64, i int) float64 {
	if amount == 1 {
		return base
	}
	step := wide / float64(amount)
	return base - wide/2 + step*(float64(i)+0.5)
}
