package shape

import "github.com/danmakucore/server/internal/vector"

// WideShot fans Amount projectiles evenly across WideAngle degrees,
// centred on BaseAngle relative to the facing direction.
type WideShot struct {
	Amount    int
	WideAngle float64
	BaseAngle float64
	Distance  float64
}

func (s *WideShot) DrawForTick(origin, angle vector.Vector3, _ int) (bool, []Directive) {
	if s.Amount <= 0 {
		return false, nil
	}
	forward := facing(angle)
	side := forward.Side()
	out := make([]Directive, 0, s.Amount)
	for i := 0; i < s.Amount; i++ {
		dir := turn(forward, side, spread(s.Amount, s.WideAngle, s.BaseAngle, i))
		out = append(out, Directive{
			Position:   origin.Offset(dir, s.Distance),
			Direction:  dir,
			SpeedScale: 1,
		})
	}
	return false, out
}
