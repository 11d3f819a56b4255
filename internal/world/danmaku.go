package world

import (
	"github.com/danmakucore/server/internal/core/ecs"
	"github.com/danmakucore/server/internal/danmaku"
	"github.com/danmakucore/server/internal/shape"
	"github.com/danmakucore/server/internal/spellcard"
	"github.com/danmakucore/server/internal/vector"
)

// Side says whom a danmaku can hurt.
type Side int

const (
	SideEnemy  Side = iota // fired by mobs, hurts players
	SidePlayer             // fired by players, hurts mobs
)

// Danmaku is a single live projectile.
type Danmaku struct {
	id    ecs.EntityID
	Owner ecs.EntityID
	Side  Side

	Pos   vector.Vector3
	Dir   vector.Vector3
	Speed float64
	Size  float64 // ring spread handed over by the shape

	Shot  danmaku.ShotData
	Level danmaku.Level
	Age   int
}

func (d *Danmaku) ID() ecs.EntityID         { return d.id }
func (d *Danmaku) Position() vector.Vector3 { return d.Pos }

// Radius is the hit radius of the shot.
func (d *Danmaku) Radius() float64 {
	return d.Shot.AverageSize() / 2
}

// Step advances the danmaku one tick. It reports false once the shot has
// outlived its end time.
func (d *Danmaku) Step() bool {
	d.Age++
	if d.Shot.End > 0 && d.Age >= d.Shot.End {
		return false
	}
	if d.Age > d.Shot.Delay {
		d.Pos = d.Pos.Add(d.Dir.Multiply(d.Speed))
	}
	return true
}

// Damage is what a hit by this shot deals before any scripting adjusts it.
func (d *Danmaku) Damage() float64 {
	return d.Shot.Damage * d.Level.Multiplier()
}

type sink struct {
	s     *State
	owner ecs.EntityID
	side  Side
}

func (k sink) Spawn(dir shape.Directive, t danmaku.Template, level danmaku.Level) ecs.EntityID {
	scale := dir.SpeedScale
	if scale == 0 {
		scale = 1
	}
	d := &Danmaku{
		Owner: k.owner,
		Side:  k.side,
		Pos:   dir.Position,
		Dir:   dir.Direction.Normalize(),
		Speed: t.Speed * scale,
		Size:  dir.Size,
		Shot:  t.Shot,
		Level: level,
	}
	return k.s.AddDanmaku(d)
}

// SinkFor returns a spawn sink whose danmaku belong to owner.
func (s *State) SinkFor(owner ecs.EntityID, side Side) shape.Sink {
	return sink{s: s, owner: owner, side: side}
}

// AddDanmaku registers d and returns its new id.
func (s *State) AddDanmaku(d *Danmaku) ecs.EntityID {
	d.id = s.ecs.Spawn(ecs.KindDanmaku)
	s.danmaku.Put(d.id, d)
	return d.id
}

// EachDanmaku iterates all live danmaku.
func (s *State) EachDanmaku(fn func(*Danmaku)) {
	s.danmaku.Each(func(_ ecs.EntityID, d *Danmaku) { fn(d) })
}

func (s *State) DanmakuCount() int { return s.danmaku.Len() }

// RemoveDanmaku drops d from queries now and frees its id at cleanup.
func (s *State) RemoveDanmaku(id ecs.EntityID) {
	if _, ok := s.danmaku.Take(id); ok {
		s.ecs.Release(id)
	}
}

// sideOf is the side an actor's shots are on.
func (s *State) sideOf(id ecs.EntityID) Side {
	if s.players.Has(id) {
		return SidePlayer
	}
	return SideEnemy
}

// ClearDanmaku removes danmaku hostile to user within radius of it.
func (s *State) ClearDanmaku(user spellcard.Actor, radius float64) int {
	own := s.sideOf(user.ID())
	center := user.Position()
	var doomed []ecs.EntityID
	s.danmaku.Each(func(id ecs.EntityID, d *Danmaku) {
		if d.Side != own && d.Pos.DistanceSquared(center) <= radius*radius {
			doomed = append(doomed, id)
		}
	})
	for _, id := range doomed {
		s.RemoveDanmaku(id)
	}
	return len(doomed)
}
