package vector

import "math"

// Quat is a unit rotation quaternion.
type Quat struct {
	X, Y, Z, W float64
}

var Identity = Quat{W: 1}

// FromAxisAngle rotates by deg degrees around axis (right-hand rule).
func FromAxisAngle(axis Vector3, deg float64) Quat {
	a := axis.Normalize()
	half := Radians(WrapDegrees(deg)) / 2
	s := math.Sin(half)
	return Quat{X: a.X * s, Y: a.Y * s, Z: a.Z * s, W: math.Cos(half)}
}

// FromEuler composes roll, then pitch, then yaw using the host convention,
// so FromEuler(yaw, pitch, 0).Rotate(Forward) == FromSpherical(yaw, pitch).
func FromEuler(yaw, pitch, roll float64) Quat {
	qy := FromAxisAngle(Up, -yaw)
	qp := FromAxisAngle(Vector3{1, 0, 0}, pitch)
	qr := FromAxisAngle(Forward, roll)
	return qy.Multiply(qp).Multiply(qr)
}

// Multiply returns q*o: o is applied first, then q.
func (q Quat) Multiply(o Quat) Quat {
	return Quat{
		X: q.W*o.X + q.X*o.W + q.Y*o.Z - q.Z*o.Y,
		Y: q.W*o.Y - q.X*o.Z + q.Y*o.W + q.Z*o.X,
		Z: q.W*o.Z + q.X*o.Y - q.Y*o.X + q.Z*o.W,
		W: q.W*o.W - q.X*o.X - q.Y*o.Y - q.Z*o.Z,
	}
}

func (q Quat) Conjugate() Quat {
	return Quat{X: -q.X, Y: -q.Y, Z: -q.Z, W: q.W}
}

// Rotate applies the rotation to v.
func (q Quat) Rotate(v Vector3) Vector3 {
	u := Vector3{q.X, q.Y, q.Z}
	t := u.Cross(v).Multiply(2)
	return v.Add(t.Multiply(q.W)).Add(u.Cross(t))
}
