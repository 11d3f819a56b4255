package system

import (
	"context"
	stdnet "net"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/danmakucore/server/internal/core/ecs"
	"github.com/danmakucore/server/internal/core/event"
	"github.com/danmakucore/server/internal/danmaku"
	"github.com/danmakucore/server/internal/data"
	"github.com/danmakucore/server/internal/nbt"
	"github.com/danmakucore/server/internal/net"
	"github.com/danmakucore/server/internal/net/packet"
	"github.com/danmakucore/server/internal/persist"
	"github.com/danmakucore/server/internal/phase"
	"github.com/danmakucore/server/internal/playerdata"
	"github.com/danmakucore/server/internal/registry"
	"github.com/danmakucore/server/internal/shape"
	"github.com/danmakucore/server/internal/spellcard"
	"github.com/danmakucore/server/internal/vector"
	"github.com/danmakucore/server/internal/world"
)

var policy = playerdata.DeathPolicy{ResetBombs: true, DefaultBombs: 2, InvulnerableTicks: 50}

type ends struct{ added, removed []string }

func (e *ends) SpellcardInfo(to *world.Player, card *spellcard.Spellcard, add bool) {
	if add {
		e.added = append(e.added, to.Name+":"+card.Name)
	} else {
		e.removed = append(e.removed, to.Name+":"+card.Name)
	}
}

type fakePlayers struct{ batches [][]persist.PlayerRow }

func (f *fakePlayers) SaveBatch(_ context.Context, rows []persist.PlayerRow) error {
	f.batches = append(f.batches, rows)
	return nil
}

func (f *fakePlayers) SavePlayer(p *world.Player) {
	f.batches = append(f.batches, []persist.PlayerRow{playerRow(p)})
}

type fakePhases struct {
	saved   map[string]*nbt.Compound
	deleted []string
}

func (f *fakePhases) Save(_ context.Context, boss string, c *nbt.Compound) error {
	if f.saved == nil {
		f.saved = make(map[string]*nbt.Compound)
	}
	f.saved[boss] = c
	return nil
}

func (f *fakePhases) Delete(_ context.Context, boss string) error {
	f.deleted = append(f.deleted, boss)
	delete(f.saved, boss)
	return nil
}

func (f *fakePhases) Load(_ context.Context, boss string) (*nbt.Compound, error) {
	return f.saved[boss], nil
}

func ringCard() *spellcard.Spellcard {
	return &spellcard.Spellcard{
		Name:    "test:ring",
		Level:   1,
		EndTime: 20,
		Behavior: spellcard.Static{Interval: 10, Volleys: []spellcard.Volley{{
			Pattern:  shape.Pattern{Kind: shape.KindRing, Amount: 4, Size: 10},
			Template: danmaku.DefaultTemplate,
		}}},
	}
}

func newTypes(t *testing.T) *phase.Types {
	t.Helper()
	cards := registry.New[*spellcard.Spellcard]("spellcard")
	if err := cards.Register("test:ring", ringCard()); err != nil {
		t.Fatal(err)
	}
	types, err := phase.NewTypes(cards, nil)
	if err != nil {
		t.Fatal(err)
	}
	return types
}

func newWorld() (*world.State, *event.Bus) {
	bus := event.NewBus()
	return world.NewState(bus, 1, zap.NewNop()), bus
}

func addPlayer(ws *world.State, name string, pos vector.Vector3) *world.Player {
	p := &world.Player{
		UUID:      uuid.New(),
		Name:      name,
		SessionID: uint64(ws.PlayerCount() + 1),
		Pos:       pos,
		LookDir:   vector.Forward,
		Health:    20,
		MaxHealth: 20,
		Data:      playerdata.New(playerdata.DefaultLimits()),
	}
	ws.AddPlayer(p)
	return p
}

func enemyShot(ws *world.State, pos vector.Vector3) ecs.EntityID {
	return ws.AddDanmaku(&world.Danmaku{
		Side:  world.SideEnemy,
		Pos:   pos,
		Dir:   vector.Forward,
		Shot:  danmaku.DefaultShot,
		Level: danmaku.LevelNormal,
	})
}

func loadBosses(t *testing.T, body string) *data.BossTable {
	t.Helper()
	path := filepath.Join(t.TempDir(), "boss_list.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	tbl, err := data.LoadBossTable(path)
	if err != nil {
		t.Fatal(err)
	}
	return tbl
}

const bossYAML = `
bosses:
  - name: rumia
    health: 10
    position: {x: 0, y: 0, z: 8}
    phases:
      - type: danmakucore:spellcard
        spellcard: test:ring
      - type: danmakucore:shape
        pattern: {kind: circle, amount: 6}
        template: default
        interval: 5
    drops:
      - kind: power
        count: 3
`

func TestLethalHitCostsALife(t *testing.T) {
	ws, bus := newWorld()
	p := addPlayer(ws, "reimu", vector.Zero)
	p.Health = 1
	p.Data.SetPower(2)
	enemyShot(ws, vector.Zero)

	NewDanmakuSystem(ws, nil, policy, 60, zap.NewNop()).Update(0)

	if p.Dead || p.Health != p.MaxHealth || p.HurtResist != 50 {
		t.Fatalf("player not revived: dead=%v health=%v resist=%d", p.Dead, p.Health, p.HurtResist)
	}
	if p.Data.Lives() != 2 || p.Data.Bombs() != 2 {
		t.Fatalf("lives=%d bombs=%d", p.Data.Lives(), p.Data.Bombs())
	}
	if ws.DanmakuCount() != 0 {
		t.Fatal("shot survived its hit")
	}
	if event.Pending[event.LifeLost](bus) != 1 {
		t.Fatal("life loss not reported")
	}
}

func TestInvulnerablePlayerIsNotHit(t *testing.T) {
	ws, _ := newWorld()
	p := addPlayer(ws, "reimu", vector.Zero)
	p.HurtResist = 5
	enemyShot(ws, vector.Zero)

	NewDanmakuSystem(ws, nil, policy, 60, zap.NewNop()).Update(0)

	if p.Health != 20 || ws.DanmakuCount() != 1 {
		t.Fatal("hit landed through invulnerability")
	}
}

func TestDeathWithoutLivesRespawnsFresh(t *testing.T) {
	ws, _ := newWorld()
	p := addPlayer(ws, "marisa", vector.New(3, 0, 3))
	p.Data.SetLives(0)
	p.Data.SetScore(500)
	p.Health = 1
	p.GiveCard("test:ring", 2)
	enemyShot(ws, p.Pos)

	NewDanmakuSystem(ws, nil, policy, 3, zap.NewNop()).Update(0)
	if !p.Dead || p.Respawn != 3 {
		t.Fatalf("dead=%v respawn=%d", p.Dead, p.Respawn)
	}

	regen := NewRegenSystem(ws, playerdata.DefaultLimits(), vector.Zero, 50, zap.NewNop())
	for i := 0; i < 3; i++ {
		regen.Update(0)
	}
	clone := ws.GetBySession(p.SessionID)
	if clone == nil || clone == p || clone.ID() == p.ID() {
		t.Fatal("player was not cloned")
	}
	if clone.Dead || clone.Health != 20 || clone.Pos != vector.Zero {
		t.Fatalf("clone state: dead=%v health=%v pos=%+v", clone.Dead, clone.Health, clone.Pos)
	}
	if clone.Data.Snapshot() != (playerdata.Snapshot{Lives: 3, Bombs: 2}) {
		t.Fatalf("death clone inherited data: %+v", clone.Data.Snapshot())
	}
	if !clone.HasCard("test:ring") {
		t.Fatal("held cards lost on respawn")
	}
}

func TestPlayerShotHurtsMob(t *testing.T) {
	ws, _ := newWorld()
	p := addPlayer(ws, "sakuya", vector.Zero)
	m := &world.Mob{Name: "cirno", Pos: vector.New(0, 0, 5), Health: 10, MaxHealth: 10}
	ws.AddMob(m)
	ws.AddDanmaku(&world.Danmaku{
		Owner: p.ID(),
		Side:  world.SidePlayer,
		Pos:   m.Pos,
		Shot:  danmaku.DefaultShot,
		Level: danmaku.LevelHard,
	})

	NewDanmakuSystem(ws, nil, policy, 60, zap.NewNop()).Update(0)

	if m.Health != 7 || m.LastAttacker != p.ID() {
		t.Fatalf("health=%v attacker=%v", m.Health, m.LastAttacker)
	}
	if p.Health != 20 {
		t.Fatal("own shot hurt the player")
	}
}

func TestMobDeathDropsLootAndRespawns(t *testing.T) {
	ws, bus := newWorld()
	types := newTypes(t)
	bosses := loadBosses(t, bossYAML)
	killer := addPlayer(ws, "youmu", vector.New(0, 0, 2))

	events := NewEventSystem(bus)
	spawn := NewSpawnSystem(ws, types, bosses, nil, 2, zap.NewNop())
	mobs := NewPhaseSystem(ws, bosses, 100, zap.NewNop())

	if spawn.SpawnAll() != 1 || ws.MobCount() != 1 {
		t.Fatal("boss not spawned")
	}
	var boss *world.Mob
	ws.EachMob(func(m *world.Mob) { boss = m })
	if boss.Phases.Len() != 2 || !boss.Phases.Current().Active() {
		t.Fatal("phases not built")
	}

	// The spellcard phase made the boss resist hits on init.
	boss.HurtResist = 0
	if !boss.Hurt(100, killer.ID()) {
		t.Fatal("hit did not kill")
	}
	mobs.Update(0)

	if ws.MobCount() != 0 {
		t.Fatal("dead boss still in world")
	}
	if !killer.HasCard("test:ring") {
		t.Fatal("spellcard loot not given to the killer")
	}
	if ws.FallingDataCount() != 3 {
		t.Fatalf("falling data = %d, want 3", ws.FallingDataCount())
	}

	events.Update(0)
	if !spawn.Respawning("rumia") {
		t.Fatal("respawn not scheduled")
	}
	spawn.Update(0)
	spawn.Update(0)
	if ws.MobCount() != 1 || spawn.Respawning("rumia") {
		t.Fatal("boss did not respawn")
	}
}

func TestMobTargetsNearestVisiblePlayer(t *testing.T) {
	ws, _ := newWorld()
	near := addPlayer(ws, "near", vector.New(0, 0, 4))
	addPlayer(ws, "far", vector.New(0, 0, 20))
	addPlayer(ws, "blind", vector.New(0, 0, 100))
	m := &world.Mob{Name: "chen", Health: 5, MaxHealth: 5, SightRange: 30}
	ws.AddMob(m)

	NewPhaseSystem(ws, nil, 0, zap.NewNop()).Update(0)

	if m.Target != near.ID() {
		t.Fatalf("target = %v, want %v", m.Target, near.ID())
	}
	if !m.LookDir.ApproxEqual(vector.New(0, 0, 1), 1e-9) {
		t.Fatalf("look = %+v", m.LookDir)
	}
}

func TestSpawnResumesSavedPhase(t *testing.T) {
	ws, _ := newWorld()
	types := newTypes(t)
	bosses := loadBosses(t, bossYAML)
	store := &fakePhases{}

	spawn := NewSpawnSystem(ws, types, bosses, store, 10, zap.NewNop())
	first := spawn.Spawn(bosses.Get("rumia"))
	if err := first.Phases.Next(); err != nil {
		t.Fatal(err)
	}
	_ = store.Save(context.Background(), "rumia", first.Phases.Serialize())
	ws.RemoveMob(first.ID())

	again := spawn.Spawn(bosses.Get("rumia"))
	if again.Phases.CurrentIndex() != 1 {
		t.Fatalf("resumed at phase %d, want 1", again.Phases.CurrentIndex())
	}
	if _, ok := again.Phases.Current().(*phase.ShapePhase); !ok {
		t.Fatal("resumed phase has the wrong type")
	}
}

func TestCarrierEndsAndAnnounces(t *testing.T) {
	ws, _ := newWorld()
	an := &ends{}
	ws.SetAnnouncer(an)
	p := addPlayer(ws, "sanae", vector.Zero)
	target := addPlayer(ws, "suwako", vector.New(0, 0, 6))

	c, ok := ws.DeclareForPlayer(p, ringCard(), true)
	if !ok {
		t.Fatal("declaration refused")
	}
	if c.Target == nil || c.Target.ID() != target.ID() {
		t.Fatal("looked-at player not targeted")
	}

	sys := NewCarrierSystem(ws)
	fired := 0
	for i := 0; i < 20; i++ {
		sys.Update(0)
		fired += sys.Fired()
	}
	if ws.CarrierCount() != 0 {
		t.Fatal("carrier outlived its card")
	}
	if fired != 8 || ws.DanmakuCount() != 8 {
		t.Fatalf("fired %d, live %d, want 8", fired, ws.DanmakuCount())
	}
	ws.EachDanmaku(func(d *world.Danmaku) {
		if d.Side != world.SidePlayer || d.Owner != p.ID() {
			t.Fatal("player carrier fired enemy danmaku")
		}
	})
	if len(an.removed) != 2 {
		t.Fatalf("end announced to %v", an.removed)
	}
}

func TestCarrierDroppedWhenUserLeaves(t *testing.T) {
	ws, _ := newWorld()
	p := addPlayer(ws, "aya", vector.Zero)
	if _, ok := ws.DeclareForPlayer(p, ringCard(), true); !ok {
		t.Fatal("declaration refused")
	}
	ws.RemovePlayer(p.SessionID)

	NewCarrierSystem(ws).Update(0)
	if ws.CarrierCount() != 0 || ws.DanmakuCount() != 0 {
		t.Fatal("orphaned carrier kept firing")
	}
}

func TestPersistenceSavesDirtyPlayersAndBosses(t *testing.T) {
	ws, bus := newWorld()
	types := newTypes(t)
	bosses := loadBosses(t, bossYAML)
	players := &fakePlayers{}
	phases := &fakePhases{}

	events := NewEventSystem(bus)
	persistence := NewPersistenceSystem(ws, players, phases, 2, zap.NewNop())
	NewSpawnSystem(ws, types, bosses, nil, 10, zap.NewNop()).SpawnAll()

	dirty := addPlayer(ws, "reimu", vector.Zero)
	addPlayer(ws, "idle", vector.Zero)
	dirty.Data.AddScore(40)
	event.Emit(bus, event.PlayerDataChanged{EntityID: dirty.ID(), Snapshot: dirty.Data.Snapshot()})
	events.Update(0)
	if !dirty.Dirty {
		t.Fatal("data change did not mark the player")
	}

	persistence.Update(0)
	if len(players.batches) != 0 {
		t.Fatal("saved before the interval")
	}
	persistence.Update(0)
	if len(players.batches) != 1 || len(players.batches[0]) != 1 {
		t.Fatalf("batches = %v", players.batches)
	}
	row := players.batches[0][0]
	if row.UUID != dirty.UUID || row.Score != 40 || dirty.Dirty {
		t.Fatalf("row = %+v dirty=%v", row, dirty.Dirty)
	}
	if phases.saved["rumia"] == nil {
		t.Fatal("boss phases not saved")
	}

	event.Emit(bus, event.MobRemoved{Name: "rumia"})
	events.Update(0)
	if len(phases.deleted) != 1 || phases.saved["rumia"] != nil {
		t.Fatal("defeated boss kept its saved phase")
	}

	persistence.SaveAll()
	if len(players.batches) != 2 || len(players.batches[1]) != 2 {
		t.Fatal("shutdown save skipped players")
	}
}

func TestLifeLostScattersPower(t *testing.T) {
	ws, bus := newWorld()
	events := NewEventSystem(bus)
	NewPickupSystem(ws, 100)

	event.Emit(bus, event.LifeLost{Pos: vector.New(0, 10, 0), Power: 1.5})
	event.Emit(bus, event.LifeLost{Pos: vector.New(0, 10, 0)})
	events.Update(0)

	if ws.FallingDataCount() != lifeLostDrops {
		t.Fatalf("falling data = %d, want %d", ws.FallingDataCount(), lifeLostDrops)
	}
}

func TestInputDisconnectSavesPlayer(t *testing.T) {
	ws, bus := newWorld()
	store := net.NewSessionStore()
	a, b := stdnet.Pipe()
	t.Cleanup(func() { a.Close(); b.Close() })
	sess := net.NewSession(a, 7, net.SessionOptions{InQueueSize: 4, OutQueueSize: 4}, zap.NewNop())
	store.Add(sess)

	ws.AddPlayer(&world.Player{UUID: uuid.New(), Name: "koishi", SessionID: sess.ID, Session: sess, MaxHealth: 20, Health: 20})

	saver := &fakePlayers{}
	input := NewInputSystem(nil, packet.NewRegistry[*net.Session](zap.NewNop()), store, 8, ws, saver, zap.NewNop())

	input.Update(0)
	if ws.PlayerCount() != 1 || store.Len() != 1 {
		t.Fatal("open session dropped")
	}

	sess.Close()
	input.Update(0)
	if ws.PlayerCount() != 0 || store.Len() != 0 {
		t.Fatal("closed session not cleaned up")
	}
	if len(saver.batches) != 1 || saver.batches[0][0].Name != "koishi" {
		t.Fatal("leaving player not saved")
	}
	if event.Pending[event.PlayerDisconnected](bus) != 1 {
		t.Fatal("disconnect not reported")
	}
}

func TestCleanupFreesRemovedEntities(t *testing.T) {
	ws, _ := newWorld()
	id := enemyShot(ws, vector.Zero)
	ws.RemoveDanmaku(id)
	if !ws.ECS().Alive(id) {
		t.Fatal("id freed before cleanup")
	}
	c := NewCleanupSystem(ws)
	c.Update(0)
	if ws.ECS().Alive(id) {
		t.Fatal("id still alive after cleanup")
	}
	if c.Freed() != 1 {
		t.Fatalf("freed = %d, want 1", c.Freed())
	}
}

func TestSystemsRunOnWorldWithoutBus(t *testing.T) {
	ws := world.NewState(nil, 1, zap.NewNop())
	bosses := loadBosses(t, bossYAML)
	NewPickupSystem(ws, 100)
	NewPersistenceSystem(ws, &fakePlayers{}, &fakePhases{}, 10, zap.NewNop())
	NewSpawnSystem(ws, newTypes(t), bosses, nil, 5, zap.NewNop())

	p := addPlayer(ws, "reimu", vector.Zero)
	p.Health = 1
	enemyShot(ws, vector.Zero)
	NewDanmakuSystem(ws, nil, policy, 60, zap.NewNop()).Update(0)
	if p.Data.Lives() != 2 {
		t.Fatalf("lives = %d, want 2", p.Data.Lives())
	}
}
