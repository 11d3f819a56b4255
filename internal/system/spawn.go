package system

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/danmakucore/server/internal/core/event"
	coresys "github.com/danmakucore/server/internal/core/system"
	"github.com/danmakucore/server/internal/data"
	"github.com/danmakucore/server/internal/nbt"
	"github.com/danmakucore/server/internal/phase"
	"github.com/danmakucore/server/internal/world"
)

// PhaseLoader reads the saved phase state of a boss. A nil compound means
// nothing was saved.
type PhaseLoader interface {
	Load(ctx context.Context, boss string) (*nbt.Compound, error)
}

// SpawnSystem places the bosses of the boss table and brings them back a
// while after they die. Phase 2 (Update), ahead of PhaseSystem.
type SpawnSystem struct {
	world        *world.State
	types        *phase.Types
	bosses       *data.BossTable
	saved        PhaseLoader
	respawnTicks int
	pending      map[string]int // boss name -> ticks until respawn
	log          *zap.Logger
}

// NewSpawnSystem subscribes to MobRemoved to schedule respawns. saved may
// be nil.
func NewSpawnSystem(ws *world.State, types *phase.Types, bosses *data.BossTable, saved PhaseLoader, respawnTicks int, log *zap.Logger) *SpawnSystem {
	s := &SpawnSystem{
		world:        ws,
		types:        types,
		bosses:       bosses,
		saved:        saved,
		respawnTicks: respawnTicks,
		pending:      make(map[string]int),
		log:          log,
	}
	world.Subscribe(ws, func(e event.MobRemoved) {
		if bosses.Get(e.Name) != nil {
			s.pending[e.Name] = max(respawnTicks, 1)
		}
	})
	return s
}

func (s *SpawnSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *SpawnSystem) Update(_ time.Duration) {
	for name, left := range s.pending {
		left--
		if left > 0 {
			s.pending[name] = left
			continue
		}
		delete(s.pending, name)
		if def := s.bosses.Get(name); def != nil {
			s.Spawn(def)
		}
	}
}

// Respawning reports whether a boss is waiting to come back.
func (s *SpawnSystem) Respawning(name string) bool {
	_, ok := s.pending[name]
	return ok
}

// SpawnAll places every boss of the table. Called once at startup.
func (s *SpawnSystem) SpawnAll() int {
	n := 0
	for _, def := range s.bosses.All() {
		if s.Spawn(def) != nil {
			n++
		}
	}
	return n
}

// Spawn builds a boss mob with its phase list. A saved phase state resumes
// where the boss left off; otherwise the first phase starts.
func (s *SpawnSystem) Spawn(def *data.BossDef) *world.Mob {
	m := &world.Mob{
		Name:       def.Name,
		Pos:        def.Position.Vector(),
		Health:     def.Health,
		MaxHealth:  def.Health,
		SightRange: def.SightRange,
	}
	s.world.AddMob(m)
	mgr := s.world.NewMobManager(m, s.types)
	for _, pd := range def.Phases {
		if p := s.buildPhase(mgr, def.Name, pd); p != nil {
			mgr.Add(p)
		}
	}
	if mgr.Len() == 0 {
		mgr.Add(s.types.Fallback.Instantiate(mgr))
	}

	if state := s.load(def.Name); state != nil {
		mgr.Deserialize(state)
		s.log.Info("首領階段已還原", zap.String("boss", def.Name), zap.Int("phase", mgr.CurrentIndex()))
	} else {
		mgr.Start()
	}
	s.log.Info("首領已生成", zap.String("boss", def.Name), zap.Int("phases", mgr.Len()))
	return m
}

func (s *SpawnSystem) buildPhase(mgr *phase.Manager, boss string, pd data.PhaseDef) phase.Phase {
	switch pd.Type {
	case phase.NameSpellcard:
		if pd.Spellcard == "" {
			return s.types.Spellcard.Instantiate(mgr)
		}
		card, ok := s.types.Spellcards.Get(pd.Spellcard)
		if !ok {
			s.log.Warn("首領階段的符卡不存在", zap.String("boss", boss), zap.String("spellcard", pd.Spellcard))
			return nil
		}
		return s.types.Spellcard.WithCard(mgr, card)
	case phase.NameShape:
		return s.types.Shape.With(mgr, pd.Pattern, pd.Template, pd.Interval, pd.Repeats)
	}
	t, ok := s.types.Phases.Get(pd.Type)
	if !ok {
		s.log.Warn("未知的階段類型", zap.String("boss", boss), zap.String("type", pd.Type))
		return nil
	}
	return t.Instantiate(mgr)
}

func (s *SpawnSystem) load(boss string) *nbt.Compound {
	if s.saved == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	state, err := s.saved.Load(ctx, boss)
	if err != nil {
		s.log.Error("讀取首領階段失敗", zap.String("boss", boss), zap.Error(err))
		return nil
	}
	return state
}
