// Package main provides the world state tool: offline save, load
// verification, listing, and backup of game worlds.
//
// Exit codes: 0 success, 1 save/load failure, 2 unknown game.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/fablemud/internal/config"
	"github.com/cory-johannsen/fablemud/internal/events"
	"github.com/cory-johannsen/fablemud/internal/game/catalog"
	"github.com/cory-johannsen/fablemud/internal/game/container"
	"github.com/cory-johannsen/fablemud/internal/game/session"
	"github.com/cory-johannsen/fablemud/internal/game/world"
	"github.com/cory-johannsen/fablemud/internal/observability"
	"github.com/cory-johannsen/fablemud/internal/persistence"
)

const (
	exitOK          = 0
	exitFailure     = 1
	exitUnknownGame = 2
)

func main() {
	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(exitFailure)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	backend, err := persistence.NewFileBackend(logger, cfg.Persistence.SaveDir, cfg.Persistence.KeepCount)
	if err != nil {
		logger.Error("creating save backend", zap.Error(err))
		os.Exit(exitFailure)
	}

	switch args[0] {
	case "list":
		os.Exit(runList(backend))
	case "save", "load", "backup":
		if len(args) < 2 {
			usage()
			os.Exit(exitFailure)
		}
		gameID := args[1]
		switch args[0] {
		case "save":
			os.Exit(runSave(logger, cfg, backend, gameID))
		case "load":
			os.Exit(runLoad(logger, cfg, backend, gameID))
		case "backup":
			os.Exit(runBackup(logger, backend, gameID))
		}
	default:
		usage()
		os.Exit(exitFailure)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: worldtool [-config path] <command>")
	fmt.Fprintln(os.Stderr, "commands:")
	fmt.Fprintln(os.Stderr, "  list             list saved games")
	fmt.Fprintln(os.Stderr, "  save <game>      reload and rewrite a game's save")
	fmt.Fprintln(os.Stderr, "  load <game>      load and verify a game's save")
	fmt.Fprintln(os.Stderr, "  backup <game>    back up a game's save")
}

func runList(backend persistence.Backend) int {
	ids, err := backend.List()
	if err != nil {
		fmt.Fprintf(os.Stderr, "listing games: %v\n", err)
		return exitFailure
	}
	for _, id := range ids {
		fmt.Println(id)
	}
	return exitOK
}

// loadWorld restores a game into fresh managers.
func loadWorld(logger *zap.Logger, cfg config.Config, backend persistence.Backend, gameID string) (*persistence.Manager, int) {
	cat := catalog.New(logger)
	if _, err := cat.LoadDir(cfg.Content.ItemsDir); err != nil {
		fmt.Fprintf(os.Stderr, "loading item catalog: %v\n", err)
		return nil, exitFailure
	}
	locations, err := world.LoadDir(cfg.Content.WorldDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading world: %v\n", err)
		return nil, exitFailure
	}
	worldMgr, err := world.NewManager(locations)
	if err != nil {
		fmt.Fprintf(os.Stderr, "creating world manager: %v\n", err)
		return nil, exitFailure
	}

	bus := events.NewBus(logger)
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	containers := container.NewSystem(logger, bus, rng)
	sessions := session.NewManager(worldMgr.StartLocation())

	persister := persistence.NewManager(logger, backend, gameID, sessions, containers, worldMgr)
	found, err := persister.Load(cat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading game %q: %v\n", gameID, err)
		return nil, exitFailure
	}
	if !found {
		fmt.Fprintf(os.Stderr, "unknown game %q\n", gameID)
		return nil, exitUnknownGame
	}
	return persister, exitOK
}

func runLoad(logger *zap.Logger, cfg config.Config, backend persistence.Backend, gameID string) int {
	if _, code := loadWorld(logger, cfg, backend, gameID); code != exitOK {
		return code
	}
	fmt.Printf("game %q loaded and validated\n", gameID)
	return exitOK
}

func runSave(logger *zap.Logger, cfg config.Config, backend persistence.Backend, gameID string) int {
	persister, code := loadWorld(logger, cfg, backend, gameID)
	if code != exitOK {
		return code
	}
	if err := persister.Save(false); err != nil {
		fmt.Fprintf(os.Stderr, "saving game %q: %v\n", gameID, err)
		return exitFailure
	}
	fmt.Printf("game %q saved\n", gameID)
	return exitOK
}

func runBackup(logger *zap.Logger, backend persistence.Backend, gameID string) int {
	if _, found, err := backend.Load(gameID); err != nil {
		fmt.Fprintf(os.Stderr, "reading game %q: %v\n", gameID, err)
		return exitFailure
	} else if !found {
		fmt.Fprintf(os.Stderr, "unknown game %q\n", gameID)
		return exitUnknownGame
	}
	if err := backend.Backup(gameID, time.Now().UTC()); err != nil {
		fmt.Fprintf(os.Stderr, "backing up game %q: %v\n", gameID, err)
		return exitFailure
	}
	fmt.Printf("game %q backed up\n", gameID)
	return exitOK
}
