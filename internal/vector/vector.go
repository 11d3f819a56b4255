package vector

import "math"

// Vector3 is an immutable float64 3D vector in world space.
// Axis convention follows the host: yaw 0 faces +Z, yaw 90 faces -X,
// positive pitch looks down.
type Vector3 struct {
	X, Y, Z float64
}

var (
	Zero    = Vector3{}
	Up      = Vector3{0, 1, 0}
	Down    = Vector3{0, -1, 0}
	Forward = Vector3{0, 0, 1}
)

func New(x, y, z float64) Vector3 {
	return Vector3{X: x, Y: y, Z: z}
}

// FromSpherical builds a unit direction from yaw and pitch in degrees.
func FromSpherical(yaw, pitch float64) Vector3 {
	y := Radians(WrapDegrees(yaw))
	p := Radians(WrapDegrees(pitch))
	cp := math.Cos(p)
	return Vector3{
		X: -math.Sin(y) * cp,
		Y: -math.Sin(p),
		Z: math.Cos(y) * cp,
	}
}

func (v Vector3) Add(o Vector3) Vector3 {
	return Vector3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

func (v Vector3) Sub(o Vector3) Vector3 {
	return Vector3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

func (v Vector3) Multiply(s float64) Vector3 {
	return Vector3{v.X * s, v.Y * s, v.Z * s}
}

func (v Vector3) Negate() Vector3 {
	return Vector3{-v.X, -v.Y, -v.Z}
}

func (v Vector3) Dot(o Vector3) float64 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

func (v Vector3) Cross(o Vector3) Vector3 {
	return Vector3{
		X: v.Y*o.Z - v.Z*o.Y,
		Y: v.Z*o.X - v.X*o.Z,
		Z: v.X*o.Y - v.Y*o.X,
	}
}

func (v Vector3) LengthSquared() float64 {
	return v.Dot(v)
}

func (v Vector3) Length() float64 {
	return math.Sqrt(v.LengthSquared())
}

// Normalize returns the unit vector, or Zero for a zero-length input.
func (v Vector3) Normalize() Vector3 {
	l := v.Length()
	if l == 0 {
		return Zero
	}
	inv := 1.0 / l
	return Vector3{v.X * inv, v.Y * inv, v.Z * inv}
}

func (v Vector3) DistanceSquared(o Vector3) float64 {
	return v.Sub(o).LengthSquared()
}

func (v Vector3) Distance(o Vector3) float64 {
	return math.Sqrt(v.DistanceSquared(o))
}

// Yaw returns the heading of v in degrees, wrapped to (-180, 180].
func (v Vector3) Yaw() float64 {
	if v.X == 0 && v.Z == 0 {
		return 0
	}
	return WrapDegrees(Degrees(math.Atan2(-v.X, v.Z)))
}

// Pitch returns the elevation of v in degrees. Positive is downwards.
func (v Vector3) Pitch() float64 {
	l := v.Length()
	if l == 0 {
		return 0
	}
	return Degrees(-math.Asin(clamp(v.Y/l, -1, 1)))
}

// Rotate applies q to v.
func (v Vector3) Rotate(q Quat) Vector3 {
	return q.Rotate(v)
}

// Offset moves v along dir by distance.
func (v Vector3) Offset(dir Vector3, distance float64) Vector3 {
	return v.Add(dir.Multiply(distance))
}

// Side returns the horizontal unit vector 90 degrees of yaw to the right of v.
func (v Vector3) Side() Vector3 {
	return FromSpherical(v.Yaw()+90, 0)
}

func (v Vector3) ApproxEqual(o Vector3, eps float64) bool {
	return math.Abs(v.X-o.X) <= eps && math.Abs(v.Y-o.Y) <= eps && math.Abs(v.Z-o.Z) <= eps
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
