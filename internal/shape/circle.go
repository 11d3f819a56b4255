package shape

import "github.com/danmakucore/server/internal/vector"

// Circle covers the full circle with a 360 degree WideShot, one shot every
// 360/Amount degrees starting at BaseAngle. For an even Amount every draw
// first advances BaseAngle by 360/(2*Amount), so no shot fires along the
// facing and repeated draws on the same Circle rotate.
type Circle struct {
	Amount    int
	BaseAngle float64
	Distance  float64
}

func (c *Circle) DrawForTick(origin, angle vector.Vector3, tick int) (bool, []Directive) {
	if c.Amount <= 0 {
		return false, nil
	}
	c.BaseAngle = stagger(c.Amount, c.BaseAngle)
	w := WideShot{
		Amount:    c.Amount,
		WideAngle: 360,
		BaseAngle: circleCentre(c.Amount, c.BaseAngle),
		Distance:  c.Distance,
	}
	return w.DrawForTick(origin, angle, tick)
}

// circleCentre is the fan centre that puts shot i of a 360 degree spread
// at base + i*360/amount.
func circleCentre(amount int, base float64) float64 {
	return base + 180 - 180/float64(amount)
}

// stagger shifts even counts by half a slot so no shot sits on the facing.
func stagger(amount int, base float64) float64 {
	if amount%2 == 0 {
		return base + 360/float64(amount*2)
	}
	return base
}
