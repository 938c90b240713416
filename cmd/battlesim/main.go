// Package main provides the battle simulator binary that runs one encounter from the
// content catalog to completion with every player prompt answered by the autopilot.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/evolution/internal/config"
	"github.com/cory-johannsen/evolution/internal/game/combat"
	"github.com/cory-johannsen/evolution/internal/game/content"
	"github.com/cory-johannsen/evolution/internal/observability"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/battlesim.yaml", "path to configuration file")
	encounter := flag.String("encounter", "troll_bridge", "encounter id to simulate")
	list := flag.Bool("list", false, "print the available encounters and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging, "battlesim")
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	catalog, err := content.Load(cfg.Content.Dir)
	if err != nil {
		logger.Fatal("loading content", zap.String("dir", cfg.Content.Dir), zap.Error(err))
	}

	if *list {
		for _, id := range catalog.Encounters() {
			fmt.Println(id)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sim := newSimulator(cfg, catalog, logger)
	result, err := sim.Run(ctx, *encounter)
	if err != nil {
		logger.Fatal("running encounter", zap.String("encounter", *encounter), zap.Error(err))
	}

	logger.Info("simulation finished",
		zap.String("encounter", *encounter),
		zap.Stringer("outcome", result.Outcome),
		zap.Bool("aborted", result.Aborted),
		zap.Duration("elapsed", time.Since(start)),
	)
	if result.Aborted || result.Outcome != combat.Victory {
		logger.Sync()
		os.Exit(1)
	}
}
