package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/danmakucore/server/internal/shape"
	"github.com/danmakucore/server/internal/spellcard"
	"github.com/danmakucore/server/internal/vector"
)

// Behavior returns the Lua behaviour registered for a spellcard.
func (e *Engine) Behavior(name string) (spellcard.Behavior, bool) {
	tbl, ok := e.behaviors[name]
	if !ok {
		return nil, false
	}
	return &luaBehavior{e: e, name: name, tbl: tbl}, true
}

// luaBehavior adapts a registered Lua table to spellcard.Behavior.
type luaBehavior struct {
	e    *Engine
	name string
	tbl  *lua.LTable
}

func (b *luaBehavior) OnDeclare(user, target spellcard.Actor, first bool) bool {
	fn, ok := b.tbl.RawGetString("on_declare").(*lua.LFunction)
	if !ok {
		return true
	}
	vm := b.e.vm
	t := vm.NewTable()
	t.RawSetString("user", b.e.actorTable(user))
	if target != nil {
		t.RawSetString("target", b.e.actorTable(target))
	}
	t.RawSetString("first", lua.LBool(first))

	if err := vm.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, t); err != nil {
		b.e.log.Error("lua on_declare error", zap.String("card", b.name), zap.Error(err))
		return false
	}
	result := vm.Get(-1)
	vm.Pop(1)
	// Only an explicit false vetoes.
	return result != lua.LFalse
}

func (b *luaBehavior) OnUpdate(c *spellcard.Carrier) []spellcard.Volley {
	fn := b.tbl.RawGetString("on_update")
	vm := b.e.vm

	t := vm.NewTable()
	t.RawSetString("age", lua.LNumber(c.Age))
	t.RawSetString("end_time", lua.LNumber(c.Card.EndTime))
	t.RawSetString("level", lua.LString(c.Level.String()))
	t.RawSetString("level_mult", lua.LNumber(c.Level.Multiplier()))
	t.RawSetString("user", b.e.actorTable(c.User))
	if c.Target != nil && c.Target.Alive() {
		t.RawSetString("target", b.e.actorTable(c.Target))
	}

	if err := vm.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, t); err != nil {
		b.e.log.Error("lua on_update error", zap.String("card", b.name), zap.Error(err))
		return nil
	}
	result := vm.Get(-1)
	vm.Pop(1)

	rt, ok := result.(*lua.LTable)
	if !ok {
		return nil
	}
	var volleys []spellcard.Volley
	rt.ForEach(func(_, v lua.LValue) {
		vt, ok := v.(*lua.LTable)
		if !ok {
			return
		}
		volleys = append(volleys, b.e.volley(vt))
	})
	b.e.log.Debug("lua volleys", zap.String("card", b.name), zap.Int("age", c.Age), zap.Int("count", len(volleys)))
	return volleys
}

func (e *Engine) actorTable(a spellcard.Actor) *lua.LTable {
	t := e.vm.NewTable()
	pos, look := a.Position(), a.Look()
	t.RawSetString("id", lua.LNumber(a.ID()))
	t.RawSetString("x", lua.LNumber(pos.X))
	t.RawSetString("y", lua.LNumber(pos.Y))
	t.RawSetString("z", lua.LNumber(pos.Z))
	t.RawSetString("yaw", lua.LNumber(look.Yaw()))
	t.RawSetString("pitch", lua.LNumber(look.Pitch()))
	return t
}

// volley reads one returned volley table. yaw and pitch, when both set,
// fix the direction; otherwise the carrier aims.
func (e *Engine) volley(t *lua.LTable) spellcard.Volley {
	num := func(key string) float64 { return float64(lua.LVAsNumber(t.RawGetString(key))) }
	v := spellcard.Volley{
		Pattern: shape.Pattern{
			Kind:      shape.Kind(lua.LVAsString(t.RawGetString("kind"))),
			Amount:    int(num("amount")),
			WideAngle: num("wide_angle"),
			BaseAngle: num("base_angle"),
			Distance:  num("distance"),
			Size:      num("size"),
			AngleZ:    num("angle_z"),
			Points:    int(num("points")),
		},
		Template: e.templates(lua.LVAsString(t.RawGetString("template"))),
	}
	yaw, hasYaw := t.RawGetString("yaw").(lua.LNumber)
	pitch, hasPitch := t.RawGetString("pitch").(lua.LNumber)
	if hasYaw && hasPitch {
		v.Angle = vector.FromSpherical(float64(yaw), float64(pitch))
	}
	return v
}
