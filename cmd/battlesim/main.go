// Package main runs one encounter in the terminal. Both sides are driven by
// the battle AI; the frame loop, content, scripts and optional progress
// storage are wired from configuration.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/turnbattle/internal/config"
	"github.com/cory-johannsen/turnbattle/internal/game/ai"
	"github.com/cory-johannsen/turnbattle/internal/game/dice"
	"github.com/cory-johannsen/turnbattle/internal/observability"
	"github.com/cory-johannsen/turnbattle/internal/scripting"
	"github.com/cory-johannsen/turnbattle/internal/server"
	"github.com/cory-johannsen/turnbattle/internal/sim"
	"github.com/cory-johannsen/turnbattle/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	encounter := flag.String("encounter", "sewer_ambush", "encounter id to run")
	seed := flag.Int64("seed", 0, "dice seed (0 = cryptographic source)")
	color := flag.Bool("color", true, "emit ANSI colour")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	// Initialize logger
	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	// Load content
	content, err := sim.LoadContent(cfg.Content)
	if err != nil {
		logger.Fatal("loading content", zap.Error(err))
	}
	logger.Info("content loaded",
		zap.Int("skills", len(content.Actions.Skills())),
		zap.Int("items", len(content.Actions.Items())),
		zap.Int("persons", len(content.Templates)),
		zap.Strings("encounters", content.EncounterIDs()),
	)

	src := dice.NewCryptoSource()
	if *seed != 0 {
		src = dice.NewSeededSource(*seed)
	}

	// Load ailment scripts
	scripts := scripting.NewManager(dice.NewLoggedRoller(src, logger), logger)
	defer scripts.Close()
	if err := scripts.Load(cfg.Content.Scripts, cfg.Content.InstructionLimit); err != nil {
		logger.Fatal("loading scripts", zap.Error(err))
	}

	difficulty, err := ai.ParseDifficulty(cfg.AI.AllyDifficulty)
	if err != nil {
		logger.Fatal("parsing ally difficulty", zap.Error(err))
	}

	opts := sim.Options{
		Encounter:      *encounter,
		Battle:         cfg.BattleSettings(),
		Victory:        cfg.VictorySettings(),
		AllyDifficulty: difficulty,
		Source:         src,
		Hook:           scripts,
		Output:         os.Stdout,
		Color:          *color,
		Logger:         logger,
	}

	// Connect to PostgreSQL when progress is persisted
	var pool *postgres.Pool
	if cfg.Database.Enabled {
		dbStart := time.Now()
		pool, err = postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			logger.Fatal("connecting to database", zap.Error(err))
		}
		defer pool.Close()
		logger.Info("database connected",
			zap.String("host", cfg.Database.Host),
			zap.Int("port", cfg.Database.Port),
			zap.String("database", cfg.Database.Name),
			zap.Duration("elapsed", time.Since(dbStart)),
		)
		opts.Store = postgres.NewProgressRepository(pool.DB())
	}

	session, err := sim.NewSession(ctx, content, opts)
	if err != nil {
		logger.Fatal("starting session", zap.Error(err))
	}

	// Wire lifecycle
	loop := server.NewLoop(server.LoopConfig{
		Interval:  cfg.Loop.Interval(),
		MaxFrames: cfg.Loop.MaxFrames,
	}, session.Step, session.Interrupt, logger)

	lifecycle := server.NewLifecycle(logger)
	lifecycle.Add("battle", loop)

	logger.Info("simulator initialized",
		zap.String("encounter", *encounter),
		zap.Duration("interval", cfg.Loop.Interval()),
		zap.Duration("startup", time.Since(start)),
	)

	if err := lifecycle.Run(ctx); err != nil {
		logger.Fatal("battle loop error", zap.Error(err))
	}

	result := session.Result()
	logger.Info("session finished",
		zap.Stringer("outcome", result.Outcome),
		zap.Int("turns", result.Turns),
		zap.Int("frames", loop.Frames()),
		zap.Bool("interrupted", result.Interrupted),
		zap.Strings("sounds", session.Sounds()),
	)

	if err := session.Save(ctx); err != nil {
		logger.Fatal("saving progress", zap.Error(err))
	}
}
