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
	"github.com/ryandielhenn/simonlink/pkg/input"
	"github.com/ryandielhenn/simonlink/pkg/link"
	"github.com/ryandielhenn/simonlink/pkg/node"
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

	l, err := link.NewUDPLink(cfg.ListenAddr, cfg.PeerAddr, logger.Named("link"))
	if err != nil {
		logger.Fatal("link init failed", zap.Error(err))
	}
	defer l.Close()
	sender := link.NewReliableSender(l, logger.Named("retry"), cfg.SendRetries, cfg.RetryDelay())
	defer sender.Close()

	lamps := newConsoleLamps()
	rem := game.NewRemote(game.RemoteConfig{
		FeedbackDwell: cfg.FeedbackDwell(),
		WonDwell:      cfg.WonDwell(),
		GuessTimeout:  cfg.GuessTimeout(),
	}, sender, lamps, logger.Named("remote"))

	deb := input.NewDebouncer(cfg.Debounce(), cfg.LongPress(), 4)
	src := input.NewStdinSource(deb, logger.Named("input"))

	n := node.New("remote", func() any { return rem.Snapshot() }, nil, logger.Named("status"))
	go func() {
		if err := n.Serve(cfg.StatusAddr); err != nil {
			logger.Error("status server stopped", zap.Error(err))
		}
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	printUsage()
	go src.Run(ctx, os.Stdin)

	logger.Info("remote running",
		zap.String("listen", cfg.ListenAddr),
		zap.String("peer", cfg.PeerAddr),
	)
	rem.Run(ctx, deb.Events(), l.Inbound())
}
