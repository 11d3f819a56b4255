package shape

import (
	"math/rand"

	"github.com/danmakucore/server/internal/vector"
)

// Ring places Amount projectiles on a cone of half-angle Size around the
// facing direction, laid out around the axis the way Circle lays out yaw.
// Size is also forwarded on every directive.
type Ring struct {
	Amount    int
	Size      float64
	BaseAngle float64
	Distance  float64
}

func (r *Ring) DrawForTick(origin, angle vector.Vector3, _ int) (bool, []Directive) {
	if r.Amount <= 0 {
		return false, nil
	}
	r.BaseAngle = stagger(r.Amount, r.BaseAngle)
	forward := facing(angle)
	tilted := vector.FromAxisAngle(forward.Side(), r.Size).Rotate(forward)
	centre := circleCentre(r.Amount, r.BaseAngle)

	out := make([]Directive, 0, r.Amount)
	for i := 0; i < r.Amount; i++ {
		roll := spread(r.Amount, 360, centre, i)
		dir := vector.FromAxisAngle(forward, roll).Rotate(tilted).Normalize()
		out = append(out, Directive{
			Position:   origin.Offset(dir, r.Distance),
			Direction:  dir,
			Size:       r.Size,
			SpeedScale: 1,
		})
	}
	return false, out
}

// RandomRing scatters Amount projectiles at random roll angles and random
// tilts up to Size around the facing direction. Rand must be set for
// reproducible output; nil falls back to the global math/rand source.
type RandomRing struct {
	Amount   int
	Size     float64
	Distance float64
	Rand     vector.Source
}

type globalSource struct{}

func (globalSource) Float64() float64 { return rand.Float64() }

func (r *RandomRing) DrawForTick(origin, angle vector.Vector3, _ int) (bool, []Directive) {
	if r.Amount <= 0 {
		return false, nil
	}
	rng := r.Rand
	if rng == nil {
		rng = globalSource{}
	}
	forward := facing(angle)
	side := forward.Side()

	out := make([]Directive, 0, r.Amount)
	for i := 0; i < r.Amount; i++ {
		tilt := rng.Float64() * r.Size
		roll := rng.Float64() * 360
		dir := vector.FromAxisAngle(forward, roll).
			Rotate(vector.FromAxisAngle(side, tilt).Rotate(forward)).
			Normalize()
		out = append(out, Directive{
			Position:   origin.Offset(dir, r.Distance),
			Direction:  dir,
			Size:       r.Size,
			SpeedScale: 1,
		})
	}
	return false, out
}
