package world

import (
	"math"

	"github.com/danmakucore/server/internal/core/ecs"
	"github.com/danmakucore/server/internal/playerdata"
	"github.com/danmakucore/server/internal/vector"
)

const (
	// fallingDrift is the per-tick speed of untargeted falling data.
	fallingDrift = 0.25
	// pickupRadius is how close a player must get to collect.
	pickupRadius = 1.0
)

// FallingData is a resource pickup. With a target it homes in one block
// per tick, otherwise it drifts along Angle.
type FallingData struct {
	id     ecs.EntityID
	Kind   playerdata.PickupKind
	Amount float32
	Pos    vector.Vector3
	Angle  vector.Vector3
	Target ecs.EntityID
	TTL    int // ticks left, 0 means no limit
}

func (f *FallingData) ID() ecs.EntityID         { return f.id }
func (f *FallingData) Position() vector.Vector3 { return f.Pos }

// AddFallingData spawns a pickup. A zero amount uses the kind's default.
func (s *State) AddFallingData(f *FallingData) ecs.EntityID {
	if f.Amount == 0 {
		f.Amount = f.Kind.DefaultAmount()
	}
	f.id = s.ecs.Spawn(ecs.KindPickup)
	s.falling.Put(f.id, f)
	return f.id
}

func (s *State) FallingDataCount() int { return s.falling.Len() }

// RemoveFallingData drops the pickup now and frees its id at cleanup.
func (s *State) RemoveFallingData(id ecs.EntityID) {
	if _, ok := s.falling.Take(id); ok {
		s.ecs.Release(id)
	}
}

// TickFallingData moves every pickup and lets the first player it touches
// collect it. Pickups that hit the floor or expire are removed. It returns
// how many were collected.
func (s *State) TickFallingData() int {
	collected := 0
	var doomed []ecs.EntityID
	s.falling.Each(func(id ecs.EntityID, f *FallingData) {
		var motion vector.Vector3
		if t, ok := s.players.Get(f.Target); ok && t.Alive() {
			motion = vector.AngleToEntity(f, t)
		} else {
			motion = f.Angle.Multiply(fallingDrift)
		}
		next := f.Pos.Add(motion)
		if next.Y < s.FloorY {
			doomed = append(doomed, id)
			return
		}
		f.Pos = next
		if f.TTL > 0 {
			f.TTL--
			if f.TTL == 0 {
				doomed = append(doomed, id)
				return
			}
		}
		if p, ok := s.nearestPlayer(f.Pos, pickupRadius); ok {
			if playerdata.Collect(p, s.channel, f.Kind, f.Amount) {
				collected++
				doomed = append(doomed, id)
			}
		}
	})
	for _, id := range doomed {
		s.RemoveFallingData(id)
	}
	return collected
}

// ScatterPickups throws n pickups of kind from pos in random directions.
func (s *State) ScatterPickups(kind playerdata.PickupKind, n int, pos vector.Vector3, ttl int) {
	for i := 0; i < n; i++ {
		angle := vector.RandomVector(s.rng)
		angle.Y = math.Abs(angle.Y)
		s.AddFallingData(&FallingData{
			Kind:  kind,
			Pos:   pos,
			Angle: angle,
			TTL:   ttl,
		})
	}
}
