package scripting

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/danmakucore/server/internal/core/ecs"
	"github.com/danmakucore/server/internal/danmaku"
	"github.com/danmakucore/server/internal/shape"
	"github.com/danmakucore/server/internal/spellcard"
	"github.com/danmakucore/server/internal/vector"
)

type actor struct {
	id  ecs.EntityID
	pos vector.Vector3
}

func (a *actor) ID() ecs.EntityID         { return a.id }
func (a *actor) Position() vector.Vector3 { return a.pos }
func (a *actor) Look() vector.Vector3     { return vector.Forward }
func (a *actor) Alive() bool              { return true }

const sealScript = `
register_spellcard("test:seal", {
  on_declare = function(ctx)
    return ctx.target ~= nil
  end,
  on_update = function(ctx)
    if ctx.age % 10 ~= 0 then
      return {}
    end
    return {
      { kind = "circle", amount = 8, distance = 0.5, template = "orb" },
      { kind = "wide", amount = 3, wide_angle = 30, template = "missing", yaw = 90, pitch = 0 },
    }
  end,
})
`

const brokenScript = `
register_spellcard("test:broken", {
  on_update = function(ctx) error("boom") end,
})
`

const damageScript = `
function calc_danmaku_damage(ctx)
  if ctx.target_player then
    return ctx.damage * 2
  end
  return ctx.damage + ctx.attacker_power
end
`

func writeScripts(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func newEngine(t *testing.T, files map[string]string) *Engine {
	t.Helper()
	orb := danmaku.Template{Name: "orb", Shot: danmaku.DefaultShot, Speed: 0.8}
	lookup := func(name string) danmaku.Template {
		if name == orb.Name {
			return orb
		}
		return danmaku.DefaultTemplate
	}
	e, err := NewEngine(writeScripts(t, files), lookup, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(e.Close)
	return e
}

func TestLuaBehaviour(t *testing.T) {
	e := newEngine(t, map[string]string{"spellcard/seal.lua": sealScript})
	b, ok := e.Behavior("test:seal")
	if !ok {
		t.Fatal("behaviour not registered")
	}
	user := &actor{id: 1}
	target := &actor{id: 2, pos: vector.New(0, 0, 10)}

	if b.OnDeclare(user, nil, true) {
		t.Fatal("declaration without target should be vetoed")
	}
	if !b.OnDeclare(user, target, true) {
		t.Fatal("declaration with target refused")
	}

	card := &spellcard.Spellcard{Name: "test:seal", EndTime: 30, Behavior: b}
	c := spellcard.NewCarrier(user, target, card, nil)
	vs := b.OnUpdate(c)
	if len(vs) != 2 {
		t.Fatalf("got %d volleys, want 2", len(vs))
	}
	if vs[0].Pattern.Kind != shape.KindCircle || vs[0].Pattern.Amount != 8 || vs[0].Template.Name != "orb" {
		t.Fatalf("first volley = %+v", vs[0])
	}
	if vs[0].Angle != vector.Zero {
		t.Fatal("volley without angles should aim")
	}
	if vs[1].Template.Name != danmaku.DefaultTemplate.Name {
		t.Fatalf("unknown template resolved to %q", vs[1].Template.Name)
	}
	if !vs[1].Angle.ApproxEqual(vector.FromSpherical(90, 0), 1e-9) {
		t.Fatalf("explicit angle = %+v", vs[1].Angle)
	}

	c.Age = 3
	if vs := b.OnUpdate(c); len(vs) != 0 {
		t.Fatalf("off-beat tick fired %d volleys", len(vs))
	}
}

func TestLuaErrorsAreContained(t *testing.T) {
	e := newEngine(t, map[string]string{"spellcard/broken.lua": brokenScript})
	b, ok := e.Behavior("test:broken")
	if !ok {
		t.Fatal("behaviour not registered")
	}
	card := &spellcard.Spellcard{Name: "test:broken", EndTime: 5, Behavior: b}
	c := spellcard.NewCarrier(&actor{id: 1}, nil, card, nil)
	if vs := b.OnUpdate(c); vs != nil {
		t.Fatalf("failing script returned %v", vs)
	}
	if !b.OnDeclare(&actor{id: 1}, nil, false) {
		t.Fatal("missing on_declare should allow")
	}
}

func TestRegisterNeedsUpdate(t *testing.T) {
	dir := writeScripts(t, map[string]string{
		"spellcard/bad.lua": `register_spellcard("test:bad", {})`,
	})
	if _, err := NewEngine(dir, nil, nil); err == nil {
		t.Fatal("spellcard without on_update accepted")
	}
}

func TestDamageFormula(t *testing.T) {
	plain := newEngine(t, nil)
	ctx := DamageContext{Damage: 3, Level: danmaku.LevelHard, AttackerPower: 2}
	if got := plain.CalcDanmakuDamage(ctx); got != 3 {
		t.Fatalf("default damage = %v", got)
	}

	e := newEngine(t, map[string]string{"combat/damage.lua": damageScript})
	if got := e.CalcDanmakuDamage(ctx); got != 5 {
		t.Fatalf("mob damage = %v, want 5", got)
	}
	ctx.TargetPlayer = true
	if got := e.CalcDanmakuDamage(ctx); got != 6 {
		t.Fatalf("player damage = %v, want 6", got)
	}
}
