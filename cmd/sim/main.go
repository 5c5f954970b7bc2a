package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/ryandielhenn/simonlink/internal/telemetry"
	"github.com/ryandielhenn/simonlink/pkg/game"
	"github.com/ryandielhenn/simonlink/pkg/history"
	"github.com/ryandielhenn/simonlink/pkg/input"
	"github.com/ryandielhenn/simonlink/pkg/link"
	"github.com/ryandielhenn/simonlink/pkg/sequence"
)

// Loopback soak driver: both machines in one process over a lossy channel
// pair, with an auto-player standing in for the human. Useful for watching
// how the protocol behaves as the link degrades.
func main() {
	rounds := flag.Int("rounds", 20, "rounds to play")
	difficulty := flag.Int("difficulty", 3, "difficulty to play at (0-15)")
	loss := flag.Float64("loss", 0.05, "datagram loss rate per direction")
	missRate := flag.Float64("miss", 0.1, "probability of a deliberately wrong guess")
	seed := flag.Int64("seed", 1, "rng seed")
	verbose := flag.Bool("v", false, "log machine activity")
	flag.Parse()

	logger := zap.NewNop()
	if *verbose {
		logger, _ = zap.NewDevelopment()
	}
	rng := rand.New(rand.NewSource(*seed))

	won, stalled, cycles := 0, 0, 0
	h := newHarness(*loss, *seed, logger)
	h.setDifficulty(uint8(*difficulty))

	start := time.Now()
	for i := 0; i < *rounds; i++ {
		if h.playRound(rng, *missRate, 10*time.Second) {
			won++
			continue
		}
		// Lost terminal datagram with retries exhausted; the only recovery
		// is the same one the hardware has.
		stalled++
		cycles++
		h.powerCycle(*seed + int64(i) + 1)
		h.setDifficulty(uint8(*difficulty))
	}
	dur := time.Since(start)
	stats := h.hist.Stats()

	fmt.Printf("Played %d rounds in %s: %d won, %d stalled (%d power cycles)\n",
		*rounds, dur.Round(time.Millisecond), won, stalled, cycles)
	fmt.Printf("Guesses: %d total, %d misses\n", stats.Guesses, stats.Misses)
	dumpMetrics()
}

type harness struct {
	log    *zap.Logger
	loss   float64
	cancel context.CancelFunc
	mgr    *game.Manager
	rem    *game.Remote
	hist   *history.Log
	closer []interface{ Close() error }
}

func newHarness(loss float64, seed int64, logger *zap.Logger) *harness {
	h := &harness{log: logger, loss: loss, hist: history.NewLog(256)}
	h.start(seed)
	return h
}

func (h *harness) start(seed int64) {
	a, b := link.NewChannelPair(h.loss, seed)
	mgrSend := link.NewReliableSender(a, h.log.Named("mgr_retry"), 5, 5*time.Millisecond)
	remSend := link.NewReliableSender(b, h.log.Named("rem_retry"), 5, 5*time.Millisecond)
	h.closer = []interface{ Close() error }{mgrSend, remSend, a, b}

	h.mgr = game.NewManager(game.ManagerConfig{
		CountdownCycles: 1,
		Blink:           5 * time.Millisecond,
		StartLead:       5 * time.Millisecond,
		GameOverDwell:   20 * time.Millisecond,
	}, sequence.NewGenerator(rand.NewSource(seed)), mgrSend, nil, h.hist, h.log.Named("manager"))

	h.rem = game.NewRemote(game.RemoteConfig{
		FeedbackDwell: 10 * time.Millisecond,
		WonDwell:      20 * time.Millisecond,
		WonBlink:      10 * time.Millisecond,
		BreatheStep:   5 * time.Millisecond,
		GuessTimeout:  200 * time.Millisecond,
	}, remSend, nil, h.log.Named("remote"))

	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	go h.mgr.Run(ctx, nil, a.Inbound())
	go h.rem.Run(ctx, nil, b.Inbound())
}

// powerCycle is the operator yanking both plugs: fresh machines, fresh link.
func (h *harness) powerCycle(seed int64) {
	h.cancel()
	for _, c := range h.closer {
		c.Close()
	}
	h.start(seed)
}

// setDifficulty walks the mod-16 counter to the wanted level with short
// presses, the way a player would.
func (h *harness) setDifficulty(want uint8) {
	deadline := time.Now().Add(time.Second)
	for h.mgr.Snapshot().Difficulty != want && time.Now().Before(deadline) {
		h.mgr.HandlePress(input.PressEvent{Channel: 1}, time.Now())
	}
}

func (h *harness) playRound(rng *rand.Rand, missRate float64, deadline time.Duration) bool {
	until := time.Now().Add(deadline)
	h.mgr.HandlePress(input.PressEvent{Channel: 1, Long: true}, time.Now())

	for h.rem.State() != game.RemotePlaying {
		if time.Now().After(until) {
			return false
		}
		time.Sleep(time.Millisecond)
	}

	for h.mgr.State() != game.ManagerGameOver {
		if time.Now().After(until) {
			return false
		}
		if h.rem.State() != game.RemotePlaying {
			time.Sleep(time.Millisecond)
			continue
		}
		seq := h.mgr.CurrentSequence()
		cursor := h.mgr.Snapshot().Cursor
		if cursor >= len(seq) {
			time.Sleep(time.Millisecond)
			continue
		}
		symbol := int(seq[cursor])
		if rng.Float64() < missRate {
			symbol = symbol%sequence.Symbols + 1
		}
		h.rem.HandlePress(input.PressEvent{Channel: symbol}, time.Now())
		time.Sleep(time.Millisecond)
	}

	// let both sides settle back into idle/ready
	for h.mgr.State() != game.ManagerIdle {
		if time.Now().After(until) {
			return false
		}
		time.Sleep(time.Millisecond)
	}
	return true
}

func dumpMetrics() {
	mfs, err := telemetry.Registry.Gather()
	if err != nil {
		return
	}
	for _, mf := range mfs {
		for _, m := range mf.GetMetric() {
			if m.GetCounter() == nil {
				continue
			}
			labels := ""
			for _, l := range m.GetLabel() {
				labels += fmt.Sprintf(" %s=%s", l.GetName(), l.GetValue())
			}
			fmt.Printf("%s%s = %.0f\n", mf.GetName(), labels, m.GetCounter().GetValue())
		}
	}
}
