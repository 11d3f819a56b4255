package spellcard

import (
	"math/rand"
	"testing"

	"github.com/danmakucore/server/internal/core/ecs"
	"github.com/danmakucore/server/internal/danmaku"
	"github.com/danmakucore/server/internal/shape"
	"github.com/danmakucore/server/internal/vector"
)

type actor struct {
	id       ecs.EntityID
	pos      vector.Vector3
	look     vector.Vector3
	dead     bool
	creative bool
}

func (a *actor) ID() ecs.EntityID         { return a.id }
func (a *actor) Position() vector.Vector3 { return a.pos }
func (a *actor) Look() vector.Vector3     { return a.look }
func (a *actor) Alive() bool              { return !a.dead }
func (a *actor) Creative() bool           { return a.creative }

type fakeWorld struct {
	spawned   []shape.Directive
	carriers  []*Carrier
	announced []ecs.EntityID
	cleared   int
	bombs     map[ecs.EntityID]int
	target    Actor
	busy      bool
}

func (w *fakeWorld) Spawn(d shape.Directive, _ danmaku.Template, _ danmaku.Level) ecs.EntityID {
	w.spawned = append(w.spawned, d)
	return ecs.EntityID(len(w.spawned))
}
func (w *fakeWorld) Rand() vector.Source { return rand.New(rand.NewSource(1)) }
func (w *fakeWorld) AddCarrier(c *Carrier) ecs.EntityID {
	w.carriers = append(w.carriers, c)
	return ecs.EntityID(100 + len(w.carriers))
}
func (w *fakeWorld) HasCarrier(ecs.EntityID, vector.Vector3, float64) bool { return w.busy }
func (w *fakeWorld) LookedAtTarget(Actor, float64) (Actor, bool) {
	return w.target, w.target != nil
}
func (w *fakeWorld) ClearDanmaku(Actor, float64) int { w.cleared++; return 0 }
func (w *fakeWorld) Announce(to ecs.EntityID, _ *Spellcard) {
	w.announced = append(w.announced, to)
}
func (w *fakeWorld) Bombs(p ecs.EntityID) int         { return w.bombs[p] }
func (w *fakeWorld) SpendBombs(p ecs.EntityID, n int) { w.bombs[p] -= n }

type veto struct{ Static }

func (veto) OnDeclare(Actor, Actor, bool) bool { return false }

func circleCard() *Spellcard {
	return &Spellcard{
		Name:    "test:circle",
		Level:   2,
		EndTime: 10,
		Behavior: Static{Interval: 5, Volleys: []Volley{{
			Pattern:  shape.Pattern{Kind: shape.KindCircle, Amount: 4},
			Template: danmaku.DefaultTemplate,
		}}},
	}
}

func TestDeclareFirstAttack(t *testing.T) {
	w := &fakeWorld{bombs: map[ecs.EntityID]int{}}
	user := &actor{id: 1, look: vector.Forward}
	target := &actor{id: 2, pos: vector.New(0, 0, 10)}

	c, ok := Declare(w, user, target, circleCard(), true)
	if !ok || c == nil {
		t.Fatal("declaration failed")
	}
	if c.ID != 101 || c.Level != danmaku.LevelNormal {
		t.Fatalf("carrier = %+v", c)
	}
	if w.cleared != 1 {
		t.Fatalf("cleared %d times, want 1", w.cleared)
	}
	if len(w.announced) != 2 || w.announced[1] != 2 {
		t.Fatalf("announced = %v", w.announced)
	}

	w2 := &fakeWorld{bombs: map[ecs.EntityID]int{}}
	if _, ok := Declare(w2, user, target, circleCard(), false); !ok {
		t.Fatal("repeat declaration failed")
	}
	if w2.cleared != 0 || len(w2.announced) != 1 {
		t.Fatal("repeat declaration should not clear or announce to target")
	}
}

func TestDeclareVetoAndNil(t *testing.T) {
	w := &fakeWorld{bombs: map[ecs.EntityID]int{}}
	user := &actor{id: 1}
	if _, ok := Declare(w, user, nil, nil, true); ok {
		t.Fatal("nil card declared")
	}
	card := circleCard()
	card.Behavior = veto{}
	if _, ok := Declare(w, user, nil, card, true); ok {
		t.Fatal("vetoed card declared")
	}
	if len(w.carriers) != 0 {
		t.Fatal("carrier spawned on failure")
	}
}

func TestDeclarePlayer(t *testing.T) {
	target := &actor{id: 9}
	tests := []struct {
		name      string
		bombs     int
		creative  bool
		busy      bool
		target    Actor
		ok        bool
		wantBombs int
	}{
		{"pays bombs", 3, false, false, target, true, 1},
		{"too few bombs", 1, false, false, target, false, 1},
		{"creative is free", 0, true, false, target, true, 0},
		{"already running", 5, false, true, target, false, 5},
		{"nothing looked at", 5, false, false, nil, false, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := &fakeWorld{bombs: map[ecs.EntityID]int{1: tt.bombs}, busy: tt.busy, target: tt.target}
			p := &actor{id: 1, creative: tt.creative}
			_, ok := DeclarePlayer(w, p, circleCard(), true)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if w.bombs[1] != tt.wantBombs {
				t.Fatalf("bombs = %d, want %d", w.bombs[1], tt.wantBombs)
			}
		})
	}
}

func TestCarrierTick(t *testing.T) {
	w := &fakeWorld{bombs: map[ecs.EntityID]int{}}
	user := &actor{id: 1, look: vector.Forward}
	target := &actor{id: 2, pos: vector.New(10, 0, 0)}
	card := circleCard()
	card.RemoveTime = 15
	c := NewCarrier(user, target, card, rand.New(rand.NewSource(3)))

	ticks, total := 0, 0
	for {
		alive, fired := c.Tick(w)
		total += fired
		ticks++
		if !alive {
			break
		}
	}
	if ticks != 15 {
		t.Fatalf("carrier lived %d ticks, want 15", ticks)
	}
	// ages 0 and 5 fire four danmaku each, nothing after EndTime
	if total != 8 {
		t.Fatalf("fired %d, want 8", total)
	}
	if got := c.Aim(); !got.ApproxEqual(vector.New(1, 0, 0), 1e-9) {
		t.Fatalf("aim = %v", got)
	}
}

func TestCarrierStopsWhenUserDies(t *testing.T) {
	user := &actor{id: 1, dead: true}
	c := NewCarrier(user, nil, circleCard(), nil)
	if alive, _ := c.Tick(&fakeWorld{}); alive {
		t.Fatal("carrier outlived its user")
	}
}
