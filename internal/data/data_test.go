package data

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/danmakucore/server/internal/danmaku"
	"github.com/danmakucore/server/internal/playerdata"
	"github.com/danmakucore/server/internal/shape"
	"github.com/danmakucore/server/internal/spellcard"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const templatesYAML = `
templates:
  - name: amulet
    speed: 0.6
    shot:
      form: pointed_laser
      color: 0xFF00FF
      damage: 3
      size_x: 0.3
      size_y: 0.3
      size_z: 0.6
      end: 60
  - name: plain
`

const spellcardsYAML = `
spellcards:
  - name: touhou:fantasy_seal
    level: 2
    end_time: 100
    touhou: reimu
  - name: touhou:demarcation
    level: 1
    end_time: 60
    remove_time: 80
    interval: 20
    volleys:
      - pattern: {kind: circle, amount: 12, distance: 0.5}
        template: amulet
      - pattern: {kind: wide, amount: 3, wide_angle: 20}
        template: nope
        yaw: 0
        pitch: 10
`

const bossesYAML = `
bosses:
  - name: rumia
    health: 150
    position: {x: 0, y: 64, z: 20}
    phases:
      - type: danmakucore:shape
        pattern: {kind: ring, amount: 6, size: 15}
        template: amulet
        interval: 15
        repeats: 3
      - type: danmakucore:spellcard
        spellcard: touhou:demarcation
    drops:
      - kind: big_power
        count: 1
      - kind: score_blue
        count: 5
`

type scripted struct{ spellcard.Static }

func TestTemplates(t *testing.T) {
	tt, err := LoadTemplateTable(writeFile(t, "templates.yaml", templatesYAML))
	if err != nil {
		t.Fatal(err)
	}
	if tt.Count() != 2 {
		t.Fatalf("count = %d", tt.Count())
	}
	a := tt.Get("amulet")
	if a.Speed != 0.6 || a.Shot.Form != "pointed_laser" || a.Shot.Color != 0xFF00FF || a.Shot.End != 60 {
		t.Fatalf("amulet = %+v", a)
	}
	p := tt.Get("plain")
	if p.Shot != danmaku.DefaultShot || p.Speed != danmaku.DefaultTemplate.Speed {
		t.Fatalf("plain did not take defaults: %+v", p)
	}
	if tt.Get("missing").Name != danmaku.DefaultTemplate.Name {
		t.Fatal("unknown template should fall back")
	}
}

func TestSpellcardsBuild(t *testing.T) {
	tt, err := LoadTemplateTable(writeFile(t, "templates.yaml", templatesYAML))
	if err != nil {
		t.Fatal(err)
	}
	st, err := LoadSpellcardTable(writeFile(t, "spellcards.yaml", spellcardsYAML))
	if err != nil {
		t.Fatal(err)
	}
	lua := func(name string) (spellcard.Behavior, bool) {
		if name == "touhou:fantasy_seal" {
			return scripted{}, true
		}
		return nil, false
	}
	reg, err := st.Build(lua, tt)
	if err != nil {
		t.Fatal(err)
	}
	if reg.Len() != 2 {
		t.Fatalf("registered %d cards", reg.Len())
	}
	seal, _ := reg.Get("touhou:fantasy_seal")
	if _, ok := seal.Behavior.(scripted); !ok || seal.Touhou != "reimu" || seal.Level != 2 {
		t.Fatalf("seal = %+v", seal)
	}
	if id := reg.ID(seal); id != 0 {
		t.Fatalf("seal id = %d, want file order", id)
	}

	dem, _ := reg.Get("touhou:demarcation")
	s, ok := dem.Behavior.(spellcard.Static)
	if !ok || s.Interval != 20 || len(s.Volleys) != 2 {
		t.Fatalf("demarcation behaviour = %#v", dem.Behavior)
	}
	if s.Volleys[0].Pattern.Kind != shape.KindCircle || s.Volleys[0].Template.Name != "amulet" {
		t.Fatalf("first volley = %+v", s.Volleys[0])
	}
	if s.Volleys[1].Template.Name != danmaku.DefaultTemplate.Name || s.Volleys[1].Angle.Pitch() == 0 {
		t.Fatalf("second volley = %+v", s.Volleys[1])
	}
}

func TestSpellcardValidation(t *testing.T) {
	if _, err := LoadSpellcardTable(writeFile(t, "bad.yaml", "spellcards:\n  - name: x\n")); err == nil {
		t.Fatal("card without end_time accepted")
	}
	if _, err := LoadSpellcardTable(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("missing file accepted")
	}
}

func TestBosses(t *testing.T) {
	bt, err := LoadBossTable(writeFile(t, "bosses.yaml", bossesYAML))
	if err != nil {
		t.Fatal(err)
	}
	b := bt.Get("rumia")
	if b == nil || bt.Count() != 1 {
		t.Fatal("rumia not loaded")
	}
	if b.Position.Vector().Z != 20 || len(b.Phases) != 2 {
		t.Fatalf("rumia = %+v", b)
	}
	if b.Phases[0].Pattern.Kind != shape.KindRing || b.Phases[0].Repeats != 3 {
		t.Fatalf("shape phase = %+v", b.Phases[0])
	}
	if b.Drops[0].PickupKind() != playerdata.BigPower || b.Drops[1].PickupKind() != playerdata.ScoreBlue {
		t.Fatalf("drops = %+v", b.Drops)
	}

	bad := "bosses:\n  - name: x\n    health: 5\n    drops:\n      - kind: gold\n"
	if _, err := LoadBossTable(writeFile(t, "bad.yaml", bad)); err == nil {
		t.Fatal("unknown drop kind accepted")
	}
}
