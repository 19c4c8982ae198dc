// Package main provides the game server binary: it loads content, restores
// the saved world, and serves the player command loop over TCP.
package main

import (
	"context"
	"flag"
	"log"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/fablemud/internal/config"
	"github.com/cory-johannsen/fablemud/internal/events"
	"github.com/cory-johannsen/fablemud/internal/game/actions"
	"github.com/cory-johannsen/fablemud/internal/game/catalog"
	"github.com/cory-johannsen/fablemud/internal/game/command"
	"github.com/cory-johannsen/fablemud/internal/game/container"
	"github.com/cory-johannsen/fablemud/internal/game/session"
	"github.com/cory-johannsen/fablemud/internal/game/spell"
	"github.com/cory-johannsen/fablemud/internal/game/world"
	"github.com/cory-johannsen/fablemud/internal/observability"
	"github.com/cory-johannsen/fablemud/internal/persistence"
	"github.com/cory-johannsen/fablemud/internal/server"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("starting game server",
		zap.String("addr", cfg.Server.Addr()),
		zap.String("game_id", cfg.Server.GameID),
	)

	// Load the item catalog.
	catStart := time.Now()
	cat := catalog.New(logger)
	itemCount, err := cat.LoadDir(cfg.Content.ItemsDir)
	if err != nil {
		logger.Fatal("loading item catalog", zap.Error(err))
	}
	logger.Info("item catalog loaded",
		zap.Int("items", itemCount),
		zap.Duration("elapsed", time.Since(catStart)),
	)

	// Load the world.
	worldStart := time.Now()
	locations, err := world.LoadDir(cfg.Content.WorldDir)
	if err != nil {
		logger.Fatal("loading world", zap.Error(err))
	}
	worldMgr, err := world.NewManager(locations)
	if err != nil {
		logger.Fatal("creating world manager", zap.Error(err))
	}
	logger.Info("world loaded",
		zap.Int("locations", len(locations)),
		zap.Duration("elapsed", time.Since(worldStart)),
	)

	// Load spell templates and rule scripts.
	spells := spell.NewRegistry()
	if cfg.Content.SpellsDir != "" {
		count, err := spells.LoadDir(cfg.Content.SpellsDir)
		if err != nil {
			logger.Fatal("loading spell templates", zap.Error(err))
		}
		logger.Info("spell templates loaded", zap.Int("count", count))
	}
	rules := spell.NewRuleEngine(logger)
	defer rules.Close()
	if cfg.Content.ScriptsDir != "" {
		if err := rules.LoadScripts(cfg.Content.ScriptsDir, cfg.Content.ScriptInstructionLimit); err != nil {
			logger.Fatal("loading rule scripts", zap.Error(err))
		}
		logger.Info("rule scripts loaded", zap.String("dir", cfg.Content.ScriptsDir))
	}

	// Create core managers.
	bus := events.NewBus(logger)
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	containers := container.NewSystem(logger, bus, rng)
	sessions := session.NewManager(worldMgr.StartLocation())
	facade := actions.NewFacade(logger, cat, sessions, containers, worldMgr, bus)

	// Persistence: restore the saved world or seed a fresh one.
	backend, err := persistence.NewFileBackend(logger, cfg.Persistence.SaveDir, cfg.Persistence.KeepCount)
	if err != nil {
		logger.Fatal("creating save backend", zap.Error(err))
	}
	persister := persistence.NewManager(logger, backend, cfg.Server.GameID, sessions, containers, worldMgr)
	persister.Bind(bus)

	restored, err := persister.Load(cat)
	if err != nil {
		logger.Fatal("loading world state", zap.Error(err))
	}
	if restored {
		logger.Info("world state restored", zap.String("game_id", cfg.Server.GameID))
	} else {
		seedStart := time.Now()
		seeded := 0
		for _, loc := range locations {
			seeded += len(containers.SeedLocation(loc, cat))
		}
		logger.Info("fresh world seeded",
			zap.Int("containers", seeded),
			zap.Duration("elapsed", time.Since(seedStart)),
		)
	}

	// Command pipeline.
	tagger := command.NewEntityTagger(facade.Catalog, worldMgr)
	executor := command.NewExecutor(facade)
	var router command.Router
	if cfg.LLM.Enabled {
		router = command.NewAnthropicRouter(logger, cfg.LLM.APIKey, cfg.LLM.Model, executor)
		logger.Info("llm command routing enabled", zap.String("model", cfg.LLM.Model))
	}
	processor := command.NewProcessor(logger, tagger, executor, router, cfg.LLM.Timeout)

	gameServer := server.NewGameServer(cfg.Server, processor, logger)

	// Wire lifecycle.
	lifecycle := server.NewLifecycle(logger)

	autoSaveCtx, cancelAutoSave := context.WithCancel(ctx)
	policy := persistence.AutoSavePolicy{
		Enabled:        cfg.Persistence.AutoSave,
		Interval:       cfg.Persistence.AutoSaveInterval,
		BackupInterval: cfg.Persistence.BackupInterval,
		DirtyThreshold: cfg.Persistence.DirtyThreshold,
	}
	autoSaveDone := make(chan struct{})
	lifecycle.Add("autosave", &server.FuncService{
		StartFn: func() error {
			defer close(autoSaveDone)
			persister.RunAutoSave(autoSaveCtx, policy)
			return nil
		},
		StopFn: func() {
			cancelAutoSave()
			<-autoSaveDone
			bus.Emit(events.SystemShutdown, "gameserver", map[string]any{
				"game_id": cfg.Server.GameID,
			})
		},
	})

	lifecycle.Add("tcp", &server.FuncService{
		StartFn: gameServer.ListenAndServe,
		StopFn:  gameServer.Stop,
	})

	logger.Info("game server initialized",
		zap.Duration("startup", time.Since(start)),
		zap.String("addr", cfg.Server.Addr()),
	)

	if err := lifecycle.Run(ctx); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
