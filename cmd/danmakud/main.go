package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/danmakucore/server/internal/config"
	"github.com/danmakucore/server/internal/core/event"
	coresys "github.com/danmakucore/server/internal/core/system"
	"github.com/danmakucore/server/internal/danmaku"
	"github.com/danmakucore/server/internal/data"
	"github.com/danmakucore/server/internal/handler"
	gonet "github.com/danmakucore/server/internal/net"
	"github.com/danmakucore/server/internal/net/packet"
	"github.com/danmakucore/server/internal/persist"
	"github.com/danmakucore/server/internal/phase"
	"github.com/danmakucore/server/internal/scripting"
	"github.com/danmakucore/server/internal/system"
	"github.com/danmakucore/server/internal/vector"
	"github.com/danmakucore/server/internal/world"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(serverName string, serverID int) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m             danmakud  v0.1.0              \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m        彈幕核心 · Go 遊戲伺服器           \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1m伺服器:\033[0m %s \033[90m(編號: %d)\033[0m\n\n", serverName, serverID)
}

// displayWidth counts CJK runes as two columns.
func displayWidth(s string) int {
	w := 0
	for _, r := range s {
		if r > 0x7F {
			w += 2
		} else {
			w++
		}
	}
	return w
}

func printSection(title string) {
	lineLen := max(46-displayWidth(title)-1, 3)
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := max(42-displayWidth(label)-len(numStr), 3)
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main server logic ─────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfg, err := config.Load(config.Path())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner(cfg.Server.Name, cfg.Server.ID)

	if err := packet.SetCharset(cfg.Network.Charset); err != nil {
		return fmt.Errorf("network: %w", err)
	}
	level, err := danmaku.ParseLevel(cfg.Gameplay.DanmakuLevel)
	if err != nil {
		return fmt.Errorf("gameplay: %w", err)
	}

	// 3. Connect to PostgreSQL and run migrations. An empty DSN runs the
	// server without saving anything.
	printSection("資料庫")
	var (
		playerRepo *persist.PlayerRepo
		phaseRepo  *persist.PhaseRepo
	)
	dbCtx, dbCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer dbCancel()
	db, err := persist.NewDB(dbCtx, cfg.Database, log)
	switch {
	case errors.Is(err, persist.ErrNoDSN):
		printOK("未設定資料庫，不保存進度")
	case err != nil:
		return fmt.Errorf("database: %w", err)
	default:
		defer db.Close()
		defer db.LogStats()
		printOK("PostgreSQL 連線成功")

		version, err := persist.RunMigrations(dbCtx, db.Pool)
		if err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		printOK(fmt.Sprintf("資料庫遷移完成 (版本 %d)", version))

		playerRepo = persist.NewPlayerRepo(db)
		phaseRepo = persist.NewPhaseRepo(db)
		logLeaderboard(dbCtx, playerRepo, log)
	}
	fmt.Println()

	// 4. Load data tables and scripts
	printSection("資料載入")
	dataDir := cfg.Data.Dir

	templates, err := data.LoadTemplateTable(filepath.Join(dataDir, "danmaku_templates.yaml"))
	if err != nil {
		return fmt.Errorf("load danmaku templates: %w", err)
	}
	printStat("彈幕模板", templates.Count())

	cardDefs, err := data.LoadSpellcardTable(filepath.Join(dataDir, "spellcard_list.yaml"))
	if err != nil {
		return fmt.Errorf("load spellcards: %w", err)
	}

	bosses, err := data.LoadBossTable(filepath.Join(dataDir, "boss_list.yaml"))
	if err != nil {
		return fmt.Errorf("load bosses: %w", err)
	}
	printStat("首領定義", bosses.Count())

	lua, err := scripting.NewEngine(cfg.Scripting.Dir, templates.Get, log)
	if err != nil {
		return fmt.Errorf("scripting: %w", err)
	}
	defer lua.Close()
	printStat("腳本符卡", len(lua.Scripted()))

	cards, err := cardDefs.Build(lua.Behavior, templates)
	if err != nil {
		return fmt.Errorf("build spellcards: %w", err)
	}
	printStat("符卡", cards.Len())

	types, err := phase.NewTypes(cards, templates.Registry())
	if err != nil {
		return fmt.Errorf("phase types: %w", err)
	}
	printStat("階段類型", types.Phases.Len())
	fmt.Println()

	// 5. World state
	bus := event.NewBus()
	worldState := world.NewState(bus, time.Now().UnixNano(), log)
	worldState.Level = level
	worldState.SetChannel(handler.NewSyncChannel(worldState, bus, log))
	worldState.SetAnnouncer(handler.Announcer{})

	// 6. Packet handlers
	deps := &handler.Deps{
		Config:  cfg,
		Log:     log,
		World:   worldState,
		Bus:     bus,
		Types:   types,
		Limits:  cfg.Gameplay.Limits(),
		Players: playerRepo,
	}
	pktReg := packet.NewRegistry[*gonet.Session](log)
	handler.RegisterAll(pktReg, deps)

	// 7. Network server
	netServer, err := gonet.NewServer(cfg.Network.BindAddress, gonet.ServerOptions{
		Session: gonet.SessionOptions{
			InQueueSize:      cfg.Network.InQueueSize,
			OutQueueSize:     cfg.Network.OutQueueSize,
			PacketsPerSecond: cfg.Network.PacketsPerSecond,
			ReadTimeout:      cfg.Network.ReadTimeout,
			WriteTimeout:     cfg.Network.WriteTimeout,
		},
		MaxPerIP: cfg.Network.MaxConnsPerIP,
	}, log)
	if err != nil {
		return fmt.Errorf("net server: %w", err)
	}
	go netServer.AcceptLoop()

	// 8. Systems, registered in run order within each phase
	var (
		playerStore system.PlayerStore
		phaseStore  system.PhaseStore
		phaseLoader system.PhaseLoader
	)
	if playerRepo != nil {
		playerStore = playerRepo
		phaseStore = phaseRepo
		phaseLoader = phaseRepo
	}
	tickRate := cfg.Network.TickRate
	ticksPer := func(d time.Duration) int { return int(d / tickRate) }
	gp := cfg.Gameplay

	persistSys := system.NewPersistenceSystem(worldState, playerStore, phaseStore, cfg.Persistence.AutosaveTicks, log)
	spawnSys := system.NewSpawnSystem(worldState, types, bosses, phaseLoader, ticksPer(time.Duration(gp.BossRespawnSeconds)*time.Second), log)
	sessions := gonet.NewSessionStore()

	var saver system.PlayerSaver
	if playerRepo != nil {
		saver = persistSys
	}

	runner := coresys.NewRunner()
	runner.Register(system.NewInputSystem(netServer, pktReg, sessions, cfg.Network.MaxPacketsPerTick, worldState, saver, log))
	runner.Register(system.NewEventSystem(bus))
	runner.Register(spawnSys)
	runner.Register(system.NewPhaseSystem(worldState, bosses, gp.FallingDataTTL, log))
	runner.Register(system.NewCarrierSystem(worldState))
	runner.Register(system.NewDanmakuSystem(worldState, lua, gp.DeathPolicy(), ticksPer(3*time.Second), log))
	runner.Register(system.NewPickupSystem(worldState, gp.FallingDataTTL))
	runner.Register(system.NewRegenSystem(worldState, gp.Limits(), vector.Zero, int(tickRate/time.Millisecond), log))
	runner.Register(system.NewOutputSystem(sessions))
	runner.Register(persistSys)
	runner.Register(system.NewCleanupSystem(worldState))

	// 9. Bosses
	printSection("首領")
	printStat("已生成", spawnSys.SpawnAll())
	fmt.Println()

	// 10. Game loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(tickRate)
	defer ticker.Stop()

	printSection("伺服器就緒")
	printReady(fmt.Sprintf("監聽位址 %s", netServer.Addr().String()))
	printReady(fmt.Sprintf("遊戲迴圈啟動 (tick: %s, 系統: %d)", tickRate, runner.Len()))
	fmt.Println()

	for {
		select {
		case <-ticker.C:
			if took := runner.Tick(tickRate); took > tickRate {
				slowest, spent := runner.Slowest()
				log.Warn("tick 超時",
					zap.Duration("took", took),
					zap.Stringer("slowest", slowest),
					zap.Duration("phase_took", spent))
			}
		case sig := <-shutdownCh:
			log.Info("收到關閉信號", zap.String("signal", sig.String()))
			persistSys.SaveAll()
			netServer.Shutdown()
			log.Info("伺服器已停止")
			return nil
		}
	}
}

func logLeaderboard(ctx context.Context, repo *persist.PlayerRepo, log *zap.Logger) {
	top, err := repo.TopScores(ctx, 3)
	if err != nil {
		log.Warn("讀取排行榜失敗", zap.Error(err))
		return
	}
	for i, row := range top {
		log.Info("排行榜", zap.Int("rank", i+1), zap.String("name", row.Name), zap.Int64("score", row.Score))
	}
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
