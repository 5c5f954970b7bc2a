package game

import (
	"context"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ryandielhenn/simonlink/internal/telemetry"
	"github.com/ryandielhenn/simonlink/pkg/input"
	"github.com/ryandielhenn/simonlink/pkg/wire"
)

// RemoteState is the player-side node's discrete state.
type RemoteState int

const (
	RemoteReady RemoteState = iota
	RemotePlaying
	RemoteGuessed
	RemoteCorrect
	RemoteWrong
	RemoteWon
)

func (s RemoteState) String() string {
	switch s {
	case RemoteReady:
		return "ready"
	case RemotePlaying:
		return "playing"
	case RemoteGuessed:
		return "guessed"
	case RemoteCorrect:
		return "correct"
	case RemoteWrong:
		return "wrong"
	case RemoteWon:
		return "won"
	default:
		return "unknown"
	}
}

type RemoteConfig struct {
	FeedbackDwell time.Duration // colored lamp hold after a verdict
	WonDwell      time.Duration // blink duration before returning to Ready
	WonBlink      time.Duration // half-period of the won blink
	BreatheStep   time.Duration // ambient animation update interval
	// GuessTimeout bounds the wait for a verdict; 0 means wait forever,
	// matching the original firmware. When it fires the remote re-arms
	// Playing so the player can press again.
	GuessTimeout time.Duration
}

func (c *RemoteConfig) withDefaults() {
	if c.FeedbackDwell <= 0 {
		c.FeedbackDwell = 2 * time.Second
	}
	if c.WonDwell <= 0 {
		c.WonDwell = 10 * time.Second
	}
	if c.WonBlink <= 0 {
		c.WonBlink = time.Second
	}
	if c.BreatheStep <= 0 {
		c.BreatheStep = 20 * time.Millisecond
	}
}

// Remote collects player input and mirrors the manager's verdicts on the
// lamps. Verdict commands are only accepted while a guess is outstanding;
// START is honored from any state, which guards against reordering artifacts
// from the link.
type Remote struct {
	cfg   RemoteConfig
	log   *zap.Logger
	send  Sender
	lamps FeedbackLamps

	mu        sync.Mutex
	state     RemoteState
	enteredAt time.Time

	epoch       time.Time // phase reference for the animations
	lastBreathe time.Time
}

func NewRemote(cfg RemoteConfig, send Sender, lamps FeedbackLamps, logger *zap.Logger) *Remote {
	cfg.withDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	if lamps == nil {
		lamps = NopLamps{}
	}
	return &Remote{
		cfg:   cfg,
		log:   logger,
		send:  send,
		lamps: lamps,
		state: RemoteReady,
		epoch: time.Now(),
	}
}

// HandleDatagram validates a raw inbound payload and feeds it to
// HandleCommand. Malformed datagrams vanish silently.
func (r *Remote) HandleDatagram(p []byte, now time.Time) {
	c, err := wire.ParseCommand(p)
	if err != nil {
		telemetry.DatagramsDiscarded.WithLabelValues("malformed").Inc()
		r.log.Debug("discarding datagram", zap.Error(err))
		return
	}
	r.HandleCommand(c, now)
}

func (r *Remote) HandleCommand(c wire.Command, now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c == wire.CmdStart {
		r.lamps.SetRed(0)
		r.lamps.SetGreen(0)
		r.setState(RemotePlaying, now)
		r.log.Info("game started")
		return
	}
	if c == wire.CmdConfirm {
		return
	}
	if r.state != RemoteGuessed {
		telemetry.DatagramsDiscarded.WithLabelValues("wrong_state").Inc()
		r.log.Debug("command outside guessed ignored", zap.Stringer("command", c))
		return
	}

	switch c {
	case wire.CmdCorrect:
		r.lamps.SetGreen(255)
		r.setState(RemoteCorrect, now)
		r.log.Info("right guess")
	case wire.CmdIncorrect:
		r.lamps.SetRed(255)
		r.setState(RemoteWrong, now)
		r.log.Info("wrong guess")
	case wire.CmdWon:
		r.setState(RemoteWon, now)
		r.log.Info("game won")
	}
}

// HandlePress sends the pressed channel as the guess and locks out further
// presses until the verdict lands. Presses outside Playing do nothing.
func (r *Remote) HandlePress(ev input.PressEvent, now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != RemotePlaying {
		return
	}
	if ev.Channel < int(wire.GuessMin) || ev.Channel > int(wire.GuessMax) {
		return
	}
	r.send.Send(byte(ev.Channel))
	r.setState(RemoteGuessed, now)
	r.log.Info("guess sent", zap.Int("channel", ev.Channel))
}

// Tick drives the animations and the dwell timers.
func (r *Remote) Tick(now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch r.state {
	case RemoteReady:
		r.breathe(now)
	case RemoteGuessed:
		if r.cfg.GuessTimeout > 0 && now.Sub(r.enteredAt) >= r.cfg.GuessTimeout {
			r.log.Warn("no verdict received, re-arming",
				zap.Duration("waited", now.Sub(r.enteredAt)))
			r.setState(RemotePlaying, now)
		}
	case RemoteCorrect:
		if now.Sub(r.enteredAt) >= r.cfg.FeedbackDwell {
			r.lamps.SetGreen(0)
			r.setState(RemotePlaying, now)
		}
	case RemoteWrong:
		if now.Sub(r.enteredAt) >= r.cfg.FeedbackDwell {
			r.lamps.SetRed(0)
			r.setState(RemotePlaying, now)
		}
	case RemoteWon:
		phase := now.Sub(r.epoch) % (2 * r.cfg.WonBlink)
		if phase < r.cfg.WonBlink {
			r.lamps.SetRed(255)
			r.lamps.SetGreen(255)
		} else {
			r.lamps.SetRed(0)
			r.lamps.SetGreen(0)
		}
		if now.Sub(r.enteredAt) >= r.cfg.WonDwell {
			r.lamps.SetRed(0)
			r.lamps.SetGreen(0)
			r.setState(RemoteReady, now)
			r.log.Info("waiting for a new game")
		}
	}
}

// Run owns all transitions, mirroring Manager.Run.
func (r *Remote) Run(ctx context.Context, presses <-chan input.PressEvent, inbound <-chan []byte) {
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-presses:
			r.HandlePress(ev, time.Now())
		case p := <-inbound:
			r.HandleDatagram(p, time.Now())
		case now := <-ticker.C:
			r.Tick(now)
		}
	}
}

// RemoteSnapshot is a read-only view for the status surface.
type RemoteSnapshot struct {
	State string `json:"state"`
}

func (r *Remote) Snapshot() RemoteSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return RemoteSnapshot{State: r.state.String()}
}

func (r *Remote) State() RemoteState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *Remote) setState(s RemoteState, now time.Time) {
	r.state = s
	r.enteredAt = now
}

// breathe drifts the two lamps in antiphase while idle.
func (r *Remote) breathe(now time.Time) {
	if now.Sub(r.lastBreathe) < r.cfg.BreatheStep {
		return
	}
	r.lastBreathe = now
	t := now.Sub(r.epoch).Seconds()
	r.lamps.SetRed(uint8(math.Sin(t)*127 + 128))
	r.lamps.SetGreen(uint8(math.Cos(t)*127 + 128))
}
