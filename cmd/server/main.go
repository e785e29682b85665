package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tma02/duckyhost/internal/actorstate"
	"github.com/tma02/duckyhost/internal/command"
	"github.com/tma02/duckyhost/internal/config"
	"github.com/tma02/duckyhost/internal/hostserver"
	"github.com/tma02/duckyhost/internal/identity"
	"github.com/tma02/duckyhost/internal/packets"
	"github.com/tma02/duckyhost/internal/peersync"
	"github.com/tma02/duckyhost/internal/platform"
	"github.com/tma02/duckyhost/internal/runtime"
	"github.com/tma02/duckyhost/internal/spawn"
	"github.com/tma02/duckyhost/internal/tickloop"
	"github.com/tma02/duckyhost/internal/wire"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var (
		configPath    string
		spawnPointsFS string
		dev           bool
	)

	root := &cobra.Command{
		Use:   "duckyhost",
		Short: "Dedicated host server for a WEBFISHING-style lobby",
	}

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Create a lobby and run the tick loop until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), configPath, spawnPointsFS, dev)
		},
	}
	serve.Flags().StringVar(&configPath, "config", "ducky.yaml", "path to the lobby configuration file")
	serve.Flags().StringVar(&spawnPointsFS, "spawn-points", "data/spawn_points.json", "path to the spawn point resource file")
	serve.Flags().BoolVar(&dev, "dev", false, "use a human-readable development logger instead of the production JSON logger")

	root.AddCommand(serve)
	return root
}

func runServe(ctx context.Context, configPath, spawnPointsPath string, dev bool) error {
	logger, err := newLogger(dev)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer logger.Sync()

	runID := uuid.NewString()
	log := logger.Sugar().With("run_id", runID)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log.Infow("configuration loaded", "name", cfg.Name, "lobby_code", cfg.LobbyCode, "max_players", cfg.MaxPlayers)

	spawnPoints := spawn.LoadSpawnPoints(spawnPointsPath)

	// The platform SDK (lobby creation, identity, P2P transport) is an
	// external collaborator this module never implements; the fake
	// stands in for it until a real client is wired at the call site.
	host := identity.Identity(rand.Uint64())
	fake := platform.NewFake()

	queue := tickloop.NewOutboundQueue()
	hostState := hostserver.New(host, cfg, queue, log)
	actors := actorstate.NewManager(queue)
	spawner := spawn.NewManager(actors, host, spawnPoints, rand.New(rand.NewSource(time.Now().UnixNano())))
	peers := peersync.NewManager(queue, host)
	game := runtime.New(hostState, actors, spawner, peers)

	router := wire.NewRouter(log)
	commands := command.NewDefaultRegistry()
	handlers := packets.NewHandlers(host, commands, log)
	handlers.RegisterAll(router)

	loop := tickloop.New(game, router, fake, fake, platform.SystemClock{}, queue, log)
	if err := loop.Start(ctx, cfg.MaxPlayers); err != nil {
		return fmt.Errorf("start lobby: %w", err)
	}

	runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Infow("lobby server running", "tick_interval", tickloop.TickInterval)
	err = loop.Run(runCtx)
	if err != nil && runCtx.Err() != nil {
		log.Infow("shutting down", "reason", runCtx.Err())
		return nil
	}
	return err
}

func newLogger(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
