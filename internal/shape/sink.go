package shape

import (
	"github.com/danmakucore/server/internal/core/ecs"
	"github.com/danmakucore/server/internal/danmaku"
	"github.com/danmakucore/server/internal/vector"
)

// Sink creates danmaku entities. The world state implements it; the shape
// code never owns what it spawns.
type Sink interface {
	Spawn(d Directive, t danmaku.Template, level danmaku.Level) ecs.EntityID
}

// Fire draws s for tick and spawns every directive through sink.
func Fire(sink Sink, s Shape, t danmaku.Template, origin, angle vector.Vector3, level danmaku.Level, tick int) (bool, []ecs.EntityID) {
	again, dirs := s.DrawForTick(origin, angle, tick)
	ids := make([]ecs.EntityID, 0, len(dirs))
	for _, d := range dirs {
		ids = append(ids, sink.Spawn(d, t, level))
	}
	return again, ids
}

func CreateWideShot(sink Sink, t danmaku.Template, origin, angle vector.Vector3, level danmaku.Level, amount int, wideAngle, baseAngle, distance float64) []ecs.EntityID {
	_, ids := Fire(sink, &WideShot{Amount: amount, WideAngle: wideAngle, BaseAngle: baseAngle, Distance: distance}, t, origin, angle, level, 0)
	return ids
}

func CreateCircleShot(sink Sink, t danmaku.Template, origin, angle vector.Vector3, level danmaku.Level, amount int, baseAngle, distance float64) []ecs.EntityID {
	_, ids := Fire(sink, &Circle{Amount: amount, BaseAngle: baseAngle, Distance: distance}, t, origin, angle, level, 0)
	return ids
}

func CreateRingShot(sink Sink, t danmaku.Template, origin, angle vector.Vector3, level danmaku.Level, amount int, size, baseAngle, distance float64) []ecs.EntityID {
	_, ids := Fire(sink, &Ring{Amount: amount, Size: size, BaseAngle: baseAngle, Distance: distance}, t, origin, angle, level, 0)
	return ids
}

func CreateRandomRingShot(sink Sink, t danmaku.Template, origin, angle vector.Vector3, level danmaku.Level, amount int, size, distance float64, rng vector.Source) []ecs.EntityID {
	_, ids := Fire(sink, &RandomRing{Amount: amount, Size: size, Distance: distance, Rand: rng}, t, origin, angle, level, 0)
	return ids
}

func CreateStarShot(sink Sink, t danmaku.Template, origin, angle vector.Vector3, level danmaku.Level, amount int, angleZ, baseAngle, distance float64) []ecs.EntityID {
	_, ids := Fire(sink, &Star{Amount: amount, AngleZ: angleZ, BaseAngle: baseAngle, Distance: distance}, t, origin, angle, level, 0)
	return ids
}
