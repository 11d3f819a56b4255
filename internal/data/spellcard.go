package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/danmakucore/server/internal/danmaku"
	"github.com/danmakucore/server/internal/registry"
	"github.com/danmakucore/server/internal/shape"
	"github.com/danmakucore/server/internal/spellcard"
	"github.com/danmakucore/server/internal/vector"
)

// VolleyDef is one fixed volley of a data-only spellcard.
type VolleyDef struct {
	Pattern  shape.Pattern `yaml:"pattern"`
	Template string        `yaml:"template"`
	Yaw      *float64      `yaml:"yaw"`   // with pitch, a fixed direction
	Pitch    *float64      `yaml:"pitch"` // otherwise the carrier aims
}

// SpellcardDef is a spellcard entry. Cards with a Lua behaviour of the
// same name use it; the others fire Volleys every Interval ticks.
type SpellcardDef struct {
	Name       string      `yaml:"name"`
	Level      int         `yaml:"level"` // bomb cost
	EndTime    int         `yaml:"end_time"`
	RemoveTime int         `yaml:"remove_time"`
	Touhou     string      `yaml:"touhou"`
	Interval   int         `yaml:"interval"`
	Volleys    []VolleyDef `yaml:"volleys"`
}

type spellcardFile struct {
	Spellcards []SpellcardDef `yaml:"spellcards"`
}

// SpellcardTable holds spellcard definitions in file order, which is also
// their numeric registry id order.
type SpellcardTable struct {
	defs []SpellcardDef
}

func (t *SpellcardTable) Defs() []SpellcardDef { return t.defs }

// Count returns the number of spellcards.
func (t *SpellcardTable) Count() int { return len(t.defs) }

// LoadSpellcardTable loads spellcard definitions from a YAML file.
func LoadSpellcardTable(path string) (*SpellcardTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read spellcard_list: %w", err)
	}
	var f spellcardFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse spellcard_list: %w", err)
	}
	for i, d := range f.Spellcards {
		if d.Name == "" {
			return nil, fmt.Errorf("spellcard_list: entry %d has no name", i)
		}
		if d.EndTime <= 0 {
			return nil, fmt.Errorf("spellcard_list: %s: end_time must be positive", d.Name)
		}
	}
	return &SpellcardTable{defs: f.Spellcards}, nil
}

// BehaviorLookup finds a scripted behaviour by spellcard name.
type BehaviorLookup func(name string) (spellcard.Behavior, bool)

// Build turns the definitions into a spellcard registry. scripted may be
// nil when no scripts are loaded.
func (t *SpellcardTable) Build(scripted BehaviorLookup, templates *TemplateTable) (*registry.Registry[*spellcard.Spellcard], error) {
	reg := registry.New[*spellcard.Spellcard]("spellcard")
	for _, d := range t.defs {
		card := &spellcard.Spellcard{
			Name:       d.Name,
			Level:      d.Level,
			EndTime:    d.EndTime,
			RemoveTime: d.RemoveTime,
			Touhou:     d.Touhou,
		}
		if b, ok := lookup(scripted, d.Name); ok {
			card.Behavior = b
		} else {
			card.Behavior = d.static(templates)
		}
		if err := reg.Register(d.Name, card); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

func lookup(scripted BehaviorLookup, name string) (spellcard.Behavior, bool) {
	if scripted == nil {
		return nil, false
	}
	return scripted(name)
}

func (d SpellcardDef) static(templates *TemplateTable) spellcard.Static {
	s := spellcard.Static{Interval: d.Interval}
	for _, v := range d.Volleys {
		tmpl := danmaku.DefaultTemplate
		if templates != nil {
			tmpl = templates.Get(v.Template)
		}
		vol := spellcard.Volley{Pattern: v.Pattern, Template: tmpl}
		if v.Yaw != nil && v.Pitch != nil {
			vol.Angle = vector.FromSpherical(*v.Yaw, *v.Pitch)
		}
		s.Volleys = append(s.Volleys, vol)
	}
	return s
}
