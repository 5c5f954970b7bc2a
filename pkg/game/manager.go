package game

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ryandielhenn/simonlink/internal/telemetry"
	"github.com/ryandielhenn/simonlink/pkg/history"
	"github.com/ryandielhenn/simonlink/pkg/input"
	"github.com/ryandielhenn/simonlink/pkg/sequence"
	"github.com/ryandielhenn/simonlink/pkg/wire"
)

// ManagerState is the authority node's discrete state.
type ManagerState int

const (
	ManagerIdle ManagerState = iota
	ManagerCountdown
	ManagerPlaying
	ManagerGameOver
)

func (s ManagerState) String() string {
	switch s {
	case ManagerIdle:
		return "idle"
	case ManagerCountdown:
		return "countdown"
	case ManagerPlaying:
		return "playing"
	case ManagerGameOver:
		return "game_over"
	default:
		return "unknown"
	}
}

type ManagerConfig struct {
	CountdownCycles int           // full on/off blink cycles before START
	Blink           time.Duration // half-cycle of the blink patterns
	StartLead       time.Duration // pause between the last blink and START
	GameOverDwell   time.Duration // celebratory blink duration
}

func (c *ManagerConfig) withDefaults() {
	if c.CountdownCycles <= 0 {
		c.CountdownCycles = 3
	}
	if c.Blink <= 0 {
		c.Blink = 500 * time.Millisecond
	}
	if c.StartLead <= 0 {
		c.StartLead = time.Second
	}
	if c.GameOverDwell <= 0 {
		c.GameOverDwell = 3 * time.Second
	}
}

// Manager owns the game authority: difficulty, the secret sequence, and the
// verdict for every guess. All state lives behind one mutex; transitions
// happen in the event handlers and Tick, never in link callbacks.
type Manager struct {
	cfg   ManagerConfig
	log   *zap.Logger
	gen   *sequence.Generator
	send  Sender
	panel DifficultyPanel
	hist  *history.Log

	mu         sync.Mutex
	state      ManagerState
	difficulty uint8
	locked     bool
	seq        sequence.Sequence
	cursor     int

	enteredAt time.Time
	blinkAt   time.Time
	blinkOn   bool
	flips     int

	roundStart   time.Time
	roundGuesses int
	roundMisses  int
}

func NewManager(cfg ManagerConfig, gen *sequence.Generator, send Sender, panel DifficultyPanel, hist *history.Log, logger *zap.Logger) *Manager {
	cfg.withDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	if panel == nil {
		panel = NopPanel{}
	}
	if gen == nil {
		gen = sequence.NewGenerator(nil)
	}
	m := &Manager{
		cfg:   cfg,
		log:   logger,
		gen:   gen,
		send:  send,
		panel: panel,
		hist:  hist,
		state: ManagerIdle,
	}
	m.panel.ShowDifficulty(m.difficulty)
	return m
}

// HandlePress consumes one classified press from the difficulty button.
// Only Idle reacts: short adjusts difficulty, long arms a round.
func (m *Manager) HandlePress(ev input.PressEvent, now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != ManagerIdle {
		return
	}
	if !ev.Long {
		if m.locked {
			return
		}
		m.difficulty = (m.difficulty + 1) % (sequence.MaxDifficulty + 1)
		m.panel.ShowDifficulty(m.difficulty)
		m.log.Info("difficulty changed", zap.Uint8("difficulty", m.difficulty))
		return
	}

	seq, err := m.gen.Generate(m.difficulty)
	if err != nil {
		m.log.Error("sequence generation failed", zap.Error(err))
		return
	}
	m.locked = true
	m.seq = seq
	m.cursor = 0
	m.enterCountdown(now)
	m.log.Info("round armed",
		zap.Uint8("difficulty", m.difficulty),
		zap.Int("sequence_len", len(seq)),
	)
}

// HandleDatagram validates a raw inbound payload and feeds it to HandleGuess.
// Malformed datagrams vanish silently, per the error taxonomy.
func (m *Manager) HandleDatagram(p []byte, now time.Time) {
	g, err := wire.ParseGuess(p)
	if err != nil {
		telemetry.DatagramsDiscarded.WithLabelValues("malformed").Inc()
		m.log.Debug("discarding datagram", zap.Error(err))
		return
	}
	m.HandleGuess(g, now)
}

// HandleGuess evaluates one guess. Outside Playing the guess is stale or
// duplicated and is dropped.
func (m *Manager) HandleGuess(g wire.Guess, now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != ManagerPlaying {
		telemetry.DatagramsDiscarded.WithLabelValues("wrong_state").Inc()
		m.log.Debug("guess outside playing ignored", zap.Uint8("guess", byte(g)))
		return
	}

	m.roundGuesses++
	outcome := sequence.Verify(m.seq, m.cursor, g)
	telemetry.GuessesTotal.WithLabelValues(outcome.String()).Inc()
	m.log.Info("guess evaluated",
		zap.Uint8("guess", byte(g)),
		zap.Int("cursor", m.cursor),
		zap.Stringer("outcome", outcome),
	)

	switch outcome {
	case sequence.Advance:
		m.cursor++
		m.send.Send(byte(wire.CmdCorrect))
	case sequence.Reset:
		m.cursor = 0
		m.roundMisses++
		m.send.Send(byte(wire.CmdIncorrect))
	case sequence.Win:
		m.cursor++
		m.send.Send(byte(wire.CmdWon))
		telemetry.RoundsWon.Inc()
		if m.hist != nil {
			m.hist.Add(history.Round{
				Difficulty: m.difficulty,
				Guesses:    m.roundGuesses,
				Misses:     m.roundMisses,
				Duration:   now.Sub(m.roundStart),
				FinishedAt: now,
			})
		}
		m.enterGameOver(now)
	}
}

// Tick advances the timer-driven states: countdown blinking, the pause
// before START, and the game-over dwell.
func (m *Manager) Tick(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.state {
	case ManagerCountdown:
		if m.flips < m.cfg.CountdownCycles*2-1 {
			if now.Sub(m.blinkAt) >= m.cfg.Blink {
				m.flip(now)
			}
			return
		}
		if now.Sub(m.blinkAt) >= m.cfg.StartLead {
			m.startPlaying(now)
		}
	case ManagerGameOver:
		if now.Sub(m.enteredAt) >= m.cfg.GameOverDwell {
			m.state = ManagerIdle
			m.locked = false
			m.panel.ShowDifficulty(m.difficulty)
			m.log.Info("back to idle")
			return
		}
		if now.Sub(m.blinkAt) >= m.cfg.Blink {
			m.flip(now)
		}
	}
}

// Run owns all transitions: one loop drains presses and datagrams and drives
// the timers. Link goroutines only ever enqueue.
func (m *Manager) Run(ctx context.Context, presses <-chan input.PressEvent, inbound <-chan []byte) {
	ticker := time.NewTicker(25 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-presses:
			m.HandlePress(ev, time.Now())
		case p := <-inbound:
			m.HandleDatagram(p, time.Now())
		case now := <-ticker.C:
			m.Tick(now)
		}
	}
}

// ManagerSnapshot is a read-only view for the status surface.
type ManagerSnapshot struct {
	State       string `json:"state"`
	Difficulty  uint8  `json:"difficulty"`
	Locked      bool   `json:"locked"`
	Cursor      int    `json:"cursor"`
	SequenceLen int    `json:"sequence_len"`
}

func (m *Manager) Snapshot() ManagerSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return ManagerSnapshot{
		State:       m.state.String(),
		Difficulty:  m.difficulty,
		Locked:      m.locked,
		Cursor:      m.cursor,
		SequenceLen: len(m.seq),
	}
}

// CurrentSequence returns a copy of the active sequence. The loopback
// simulator's auto-player peeks at it; nothing on the wire ever carries it.
func (m *Manager) CurrentSequence() sequence.Sequence {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(sequence.Sequence, len(m.seq))
	copy(out, m.seq)
	return out
}

func (m *Manager) State() ManagerState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Manager) enterCountdown(now time.Time) {
	m.state = ManagerCountdown
	m.enteredAt = now
	m.blinkAt = now
	m.blinkOn = true
	m.flips = 0
	m.panel.SetAll(true)
}

func (m *Manager) enterGameOver(now time.Time) {
	m.state = ManagerGameOver
	m.enteredAt = now
	m.blinkAt = now
	m.blinkOn = true
	m.flips = 0
	m.panel.SetAll(true)
	m.log.Info("round won", zap.Uint8("difficulty", m.difficulty))
}

func (m *Manager) startPlaying(now time.Time) {
	m.state = ManagerPlaying
	m.roundStart = now
	m.roundGuesses = 0
	m.roundMisses = 0
	m.panel.ShowDifficulty(m.difficulty)
	m.send.Send(byte(wire.CmdStart))
	telemetry.RoundsStarted.Inc()
	m.log.Info("round started", zap.Uint8("difficulty", m.difficulty))
}

func (m *Manager) flip(now time.Time) {
	m.blinkOn = !m.blinkOn
	m.flips++
	m.blinkAt = now
	m.panel.SetAll(m.blinkOn)
}
