package main

import (
	"context"
	"flag"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"github.com/ryandielhenn/simonlink/internal/config"
	"github.com/ryandielhenn/simonlink/internal/telemetry"
	"github.com/ryandielhenn/simonlink/pkg/game"
	"github.com/ryandielhenn/simonlink/pkg/history"
	"github.com/ryandielhenn/simonlink/pkg/input"
	"github.com/ryandielhenn/simonlink/pkg/link"
	"github.com/ryandielhenn/simonlink/pkg/node"
	"github.com/ryandielhenn/simonlink/pkg/sequence"
)

var (
	version = "dev"
	gitSHA  = "unknown"
)

func main() {
	cfgPath := flag.String("config", "", "path to yaml config file")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		logger.Fatal("config", zap.Error(err))
	}
	telemetry.SetBuildInfo(version, gitSHA)

	// A dead link at startup is fatal; there is nothing to play without it.
	l, err := link.NewUDPLink(cfg.ListenAddr, cfg.PeerAddr, logger.Named("link"))
	if err != nil {
		logger.Fatal("link init failed", zap.Error(err))
	}
	defer l.Close()
	sender := link.NewReliableSender(l, logger.Named("retry"), cfg.SendRetries, cfg.RetryDelay())
	defer sender.Close()

	hist := history.NewLog(cfg.HistorySize)
	panel := newConsolePanel()
	mgr := game.NewManager(game.ManagerConfig{
		CountdownCycles: cfg.CountdownCycles,
		Blink:           cfg.Blink(),
		StartLead:       cfg.StartLead(),
		GameOverDwell:   cfg.GameOverDwell(),
	}, sequence.NewGenerator(nil), sender, panel, hist, logger.Named("manager"))

	deb := input.NewDebouncer(cfg.Debounce(), cfg.LongPress(), 4)
	src := input.NewStdinSource(deb, logger.Named("input"))

	n := node.New("manager", func() any { return mgr.Snapshot() }, hist, logger.Named("status"))
	go func() {
		if err := n.Serve(cfg.StatusAddr); err != nil {
			logger.Error("status server stopped", zap.Error(err))
		}
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	printUsage()
	go src.Run(ctx, os.Stdin)

	logger.Info("manager running",
		zap.String("listen", cfg.ListenAddr),
		zap.String("peer", cfg.PeerAddr),
	)
	mgr.Run(ctx, deb.Events(), l.Inbound())
}
