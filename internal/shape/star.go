package shape

import (
	"math"

	"github.com/danmakucore/server/internal/vector"
)

// starInset is the inner vertex radius relative to the outer one (1/phi^2).
const starInset = 0.381966

// Star traces a star outline with Points arms in the plane facing the
// target. Amount projectiles are laid on every edge. AngleZ tilts the arms
// away from the facing axis: 0 fires everything straight ahead, 90 fires a
// flat radial star. SpeedScale keeps the outline intact while it expands.
type Star struct {
	Amount    int
	Points    int
	AngleZ    float64
	BaseAngle float64
	Distance  float64
}

func (s *Star) DrawForTick(origin, angle vector.Vector3, _ int) (bool, []Directive) {
	if s.Amount <= 0 {
		return false, nil
	}
	points := s.Points
	if points < 3 {
		points = 5
	}
	forward := facing(angle)
	side := forward.Side()
	up := side.Cross(forward).Normalize()
	z := vector.Radians(vector.WrapDegrees(s.AngleZ))

	verts := make([][2]float64, 2*points)
	for k := range verts {
		a := vector.Radians(s.BaseAngle + 180*float64(k)/float64(points))
		r := 1.0
		if k%2 == 1 {
			r = starInset
		}
		verts[k] = [2]float64{r * math.Cos(a), r * math.Sin(a)}
	}

	out := make([]Directive, 0, 2*points*s.Amount)
	for k := range verts {
		from, to := verts[k], verts[(k+1)%len(verts)]
		for j := 0; j < s.Amount; j++ {
			t := float64(j) / float64(s.Amount)
			px := from[0] + (to[0]-from[0])*t
			py := from[1] + (to[1]-from[1])*t
			raw := forward.Multiply(math.Cos(z)).
				Add(side.Multiply(px * math.Sin(z))).
				Add(up.Multiply(py * math.Sin(z)))
			dir := raw.Normalize()
			if dir == vector.Zero {
				dir = forward
			}
			out = append(out, Directive{
				Position:   origin.Offset(dir, s.Distance),
				Direction:  dir,
				SpeedScale: raw.Length(),
			})
		}
	}
	return false, out
}
