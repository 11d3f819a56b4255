package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/danmakucore/server/internal/danmaku"
)

// TemplateLookup resolves danmaku template names used by scripts.
type TemplateLookup func(name string) danmaku.Template

// Engine wraps a single gopher-lua VM for spellcard behaviours and the
// damage formula.
// Single-goroutine access only (game loop).
type Engine struct {
	vm        *lua.LState
	log       *zap.Logger
	templates TemplateLookup
	behaviors map[string]*lua.LTable
}

// scriptDirs are loaded in this order; missing ones are skipped.
var scriptDirs = []string{"core", "spellcard", "combat"}

// NewEngine creates a Lua engine and loads all scripts from the given directory.
func NewEngine(scriptsDir string, templates TemplateLookup, log *zap.Logger) (*Engine, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if templates == nil {
		templates = func(string) danmaku.Template { return danmaku.DefaultTemplate }
	}
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})

	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{
		vm:        vm,
		log:       log,
		templates: templates,
		behaviors: make(map[string]*lua.LTable),
	}
	vm.SetGlobal("register_spellcard", vm.NewFunction(e.luaRegisterSpellcard))

	levels := vm.NewTable()
	for l := danmaku.LevelEasy; l <= danmaku.LevelExtra; l++ {
		levels.RawSetString(l.String(), lua.LNumber(l))
	}
	vm.SetGlobal("LEVEL", levels)

	for _, sub := range scriptDirs {
		p := filepath.Join(scriptsDir, sub)
		if err := e.loadDir(p); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load %s scripts: %w", sub, err)
		}
	}

	return e, nil
}

// Close releases the VM.
func (e *Engine) Close() {
	e.vm.Close()
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// luaRegisterSpellcard implements register_spellcard(name, behaviour).
// behaviour is a table with an on_update and an optional on_declare.
func (e *Engine) luaRegisterSpellcard(L *lua.LState) int {
	name := L.CheckString(1)
	tbl := L.CheckTable(2)
	if _, ok := tbl.RawGetString("on_update").(*lua.LFunction); !ok {
		L.ArgError(2, "on_update function required")
		return 0
	}
	if _, dup := e.behaviors[name]; dup {
		e.log.Warn("lua 符卡重複註冊，覆蓋舊定義", zap.String("card", name))
	}
	e.behaviors[name] = tbl
	return 0
}

// Scripted returns the names of all spellcards with a Lua behaviour.
func (e *Engine) Scripted() []string {
	names := make([]string, 0, len(e.behaviors))
	for n := range e.behaviors {
		names = append(names, n)
	}
	return names
}

// DamageContext holds pre-packed data for a danmaku hit.
type DamageContext struct {
	Damage        float64 // shot damage after the level multiplier
	Level         danmaku.Level
	AttackerPower float32 // power of a player attacker, 0 for mobs
	TargetHealth  float64
	TargetPlayer  bool
}

// CalcDanmakuDamage calls the Lua calc_danmaku_damage function. Without
// one, or when it fails, the shot's own damage is used.
func (e *Engine) CalcDanmakuDamage(ctx DamageContext) float64 {
	fn := e.vm.GetGlobal("calc_danmaku_damage")
	if fn == lua.LNil {
		return ctx.Damage
	}

	t := e.vm.NewTable()
	t.RawSetString("damage", lua.LNumber(ctx.Damage))
	t.RawSetString("level", lua.LString(ctx.Level.String()))
	t.RawSetString("attacker_power", lua.LNumber(ctx.AttackerPower))
	t.RawSetString("target_health", lua.LNumber(ctx.TargetHealth))
	t.RawSetString("target_player", lua.LBool(ctx.TargetPlayer))

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, t); err != nil {
		e.log.Error("lua calc_danmaku_damage error", zap.Error(err))
		return ctx.Damage
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)

	n, ok := result.(lua.LNumber)
	if !ok {
		e.log.Error("lua calc_danmaku_damage returned non-number")
		return ctx.Damage
	}
	if float64(n) < 0 {
		return 0
	}
	return float64(n)
}
