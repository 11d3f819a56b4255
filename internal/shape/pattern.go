package shape

import (
	"fmt"

	"github.com/danmakucore/server/internal/vector"
)

// Kind names a shape in yaml, Lua and persisted phase data.
type Kind string

const (
	KindWide       Kind = "wide"
	KindCircle     Kind = "circle"
	KindRing       Kind = "ring"
	KindRandomRing Kind = "random_ring"
	KindStar       Kind = "star"
)

// Pattern is the declarative form of a shape.
type Pattern struct {
	Kind      Kind    `yaml:"kind"`
	Amount    int     `yaml:"amount"`
	WideAngle float64 `yaml:"wide_angle"`
	BaseAngle float64 `yaml:"base_angle"`
	Distance  float64 `yaml:"distance"`
	Size      float64 `yaml:"size"`
	AngleZ    float64 `yaml:"angle_z"`
	Points    int     `yaml:"points"`
}

// Build returns a fresh shape for p. rng feeds random shapes only.
func Build(p Pattern, rng vector.Source) (Shape, error) {
	switch p.Kind {
	case KindWide:
		return &WideShot{Amount: p.Amount, WideAngle: p.WideAngle, BaseAngle: p.BaseAngle, Distance: p.Distance}, nil
	case KindCircle:
		return &Circle{Amount: p.Amount, BaseAngle: p.BaseAngle, Distance: p.Distance}, nil
	case KindRing:
		return &Ring{Amount: p.Amount, Size: p.Size, BaseAngle: p.BaseAngle, Distance: p.Distance}, nil
	case KindRandomRing:
		return &RandomRing{Amount: p.Amount, Size: p.Size, Distance: p.Distance, Rand: rng}, nil
	case KindStar:
		return &Star{Amount: p.Amount, Points: p.Points, AngleZ: p.AngleZ, BaseAngle: p.BaseAngle, Distance: p.Distance}, nil
	default:
		return nil, fmt.Errorf("unknown shape kind %q", p.Kind)
	}
}
