package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/danmakucore/server/internal/playerdata"
	"github.com/danmakucore/server/internal/shape"
	"github.com/danmakucore/server/internal/vector"
)

// PhaseDef is one entry of a boss's phase list. Type is a registered phase
// type name; Spellcard applies to spellcard phases, the shape fields to
// shape phases.
type PhaseDef struct {
	Type      string        `yaml:"type"`
	Spellcard string        `yaml:"spellcard"`
	Pattern   shape.Pattern `yaml:"pattern"`
	Template  string        `yaml:"template"`
	Interval  int           `yaml:"interval"`
	Repeats   int           `yaml:"repeats"`
}

// DropDef is falling data scattered when the boss dies.
type DropDef struct {
	Kind  string `yaml:"kind"` // a playerdata pickup kind name
	Count int    `yaml:"count"`

	kind playerdata.PickupKind
}

func (d DropDef) PickupKind() playerdata.PickupKind { return d.kind }

type Position struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

func (p Position) Vector() vector.Vector3 { return vector.New(p.X, p.Y, p.Z) }

// BossDef describes a mob spawned at startup and respawned after death.
type BossDef struct {
	Name       string     `yaml:"name"`
	Health     float64    `yaml:"health"`
	SightRange float64    `yaml:"sight_range"`
	Position   Position   `yaml:"position"`
	Phases     []PhaseDef `yaml:"phases"`
	Drops      []DropDef  `yaml:"drops"`
}

type bossFile struct {
	Bosses []BossDef `yaml:"bosses"`
}

// BossTable holds all boss definitions indexed by name.
type BossTable struct {
	bosses map[string]*BossDef
	order  []string
}

// Get returns the boss definition, or nil if none defined.
func (t *BossTable) Get(name string) *BossDef {
	return t.bosses[name]
}

// All returns the definitions in file order.
func (t *BossTable) All() []*BossDef {
	out := make([]*BossDef, 0, len(t.order))
	for _, n := range t.order {
		out = append(out, t.bosses[n])
	}
	return out
}

// Count returns the number of bosses.
func (t *BossTable) Count() int {
	return len(t.bosses)
}

// LoadBossTable loads boss definitions from a YAML file.
func LoadBossTable(path string) (*BossTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read boss_list: %w", err)
	}
	var f bossFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse boss_list: %w", err)
	}
	t := &BossTable{bosses: make(map[string]*BossDef, len(f.Bosses))}
	for i := range f.Bosses {
		b := &f.Bosses[i]
		if b.Name == "" {
			return nil, fmt.Errorf("boss_list: entry %d has no name", i)
		}
		if _, dup := t.bosses[b.Name]; dup {
			return nil, fmt.Errorf("boss_list: duplicate boss %s", b.Name)
		}
		if b.Health <= 0 {
			return nil, fmt.Errorf("boss_list: %s: health must be positive", b.Name)
		}
		for j := range b.Drops {
			k, err := playerdata.ParsePickupKind(b.Drops[j].Kind)
			if err != nil {
				return nil, fmt.Errorf("boss_list: %s: %w", b.Name, err)
			}
			b.Drops[j].kind = k
		}
		t.bosses[b.Name] = b
		t.order = append(t.order, b.Name)
	}
	return t, nil
}
