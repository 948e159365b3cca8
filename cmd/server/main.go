package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/erasmund/depthkeep/internal/catalog"
	"github.com/erasmund/depthkeep/internal/config"
	"github.com/erasmund/depthkeep/internal/core/event"
	coresys "github.com/erasmund/depthkeep/internal/core/system"
	gonet "github.com/erasmund/depthkeep/internal/net"
	"github.com/erasmund/depthkeep/internal/net/packet"
	"github.com/erasmund/depthkeep/internal/persist"
	"github.com/erasmund/depthkeep/internal/scripting"
	"github.com/erasmund/depthkeep/internal/tick"
	"github.com/erasmund/depthkeep/internal/world"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
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
	fmt.Println("\033[36;1m  │\033[0m               depthkeep  v0.1.0            \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mserver:\033[0m %s \033[90m(id: %d)\033[0m\n\n", serverName, serverID)
}

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := 42 - len(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
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
	cfgPath := "config/server.toml"
	if p := os.Getenv("DEPTHKEEP_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
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

	// 3. Connect to PostgreSQL and run migrations
	printSection("database")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := persist.NewDB(ctx, cfg.Database, log)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer db.Close()
	printOK("postgresql connected")

	if err := persist.RunMigrations(ctx, db.Pool); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	printOK("migrations applied")
	fmt.Println()

	// 4. Create repositories
	accountRepo := persist.NewAccountRepo(db)
	charRepo := persist.NewCharacterRepo(db)
	itemRepo := persist.NewItemRepo(db)

	// 4a. Report the highest persisted item obj_id so an operator can tell
	// at a glance whether this boot's entity pool range overlaps anything
	// already on disk (spec §4.1 "entity pool", SPEC_FULL.md open question
	// on item-id reuse across restarts: acceptable for now since persisted
	// items are rehydrated directly from their stored obj_id rather than
	// drawn from Items.Alloc, so a restart never actually contends with a
	// freshly allocated id — see DESIGN.md).
	maxObjID, err := itemRepo.MaxObjID(ctx)
	if err != nil {
		return fmt.Errorf("query max obj_id: %w", err)
	}

	// 5. Load the static data catalog and scripting collaborator
	printSection("data")

	cat, err := catalog.Load(cfg.Data.FeaturesPath, catalog.DataPaths{
		Races: cfg.Data.RacesPath,
		Items: cfg.Data.ItemsPath,
		Drops: cfg.Data.DropsPath,
	})
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	printStat("races", len(cat.Races.All()))
	printStat("known item obj_ids", int(maxObjID))

	luaEngine, err := scripting.NewEngine(cfg.Data.ScriptsDir, log)
	if err != nil {
		log.Warn("scripting engine unavailable, falling back to built-in combat defaults", zap.Error(err))
		luaEngine = nil
	} else {
		printOK("lua scripts loaded")
	}
	fmt.Println()

	// 6. Create the world
	w := world.NewWorld(cat, cfg, log)
	if luaEngine != nil {
		w.SetEngine(luaEngine)
		defer luaEngine.Close()
	}

	// 7. Create network server and packet registry
	netServer, err := gonet.NewServer(cfg.Network.BindAddress, cfg.Network.InQueueSize, cfg.Network.OutQueueSize, log)
	if err != nil {
		return fmt.Errorf("net server: %w", err)
	}
	go netServer.AcceptLoop()

	pktReg := packet.NewRegistry(log)
	deps := newSessionDeps(w, accountRepo, charRepo, itemRepo, log)
	registerHandlers(pktReg, deps)

	// 8. Event bus and tick systems
	eventBus := event.NewBus()
	runner := coresys.NewRunner()
	runner.Register(tick.NewEventDispatchSystem(eventBus))
	runner.Register(tick.NewPlayerEnergySystem(w))
	runner.Register(tick.NewMonsterAISystem(w, log))
	runner.Register(tick.NewStatusSystem(w))
	runner.Register(tick.NewVisibilitySystem(w, eventBus, log))
	runner.Register(tick.NewHousekeepingSystem(w))

	event.Subscribe(eventBus, func(ev event.Disturbance) {
		log.Debug("event: Disturbance",
			zap.Int32("viewer", ev.ViewerID),
			zap.Uint32("target", ev.TargetIndex),
			zap.Uint8("kind", ev.Kind),
		)
	})

	// 9. Game loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.World.TickRate)
	defer ticker.Stop()

	printSection("server ready")
	printReady(fmt.Sprintf("listening on %s", netServer.Addr().String()))
	printReady(fmt.Sprintf("tick rate %s", cfg.World.TickRate))
	fmt.Println()

	for {
		select {
		case <-ticker.C:
			drainConnections(netServer, deps)
			drainDeadSessions(netServer, deps)
			drainInbound(deps, pktReg, cfg.Network.MaxPacketsPerTick)
			runner.Tick(cfg.World.TickRate)
			if w.ShuttingDown() {
				saveAllPlayers(deps)
				netServer.Shutdown()
				log.Info("server stopped")
				return nil
			}
		case sig := <-shutdownCh:
			log.Info("shutdown signal received", zap.String("signal", sig.String()))
			saveAllPlayers(deps)
			netServer.Shutdown()
			log.Info("server stopped")
			return nil
		}
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
