package game

import (
	"sync"
	"testing"
	"time"

	"github.com/ryandielhenn/simonlink/pkg/input"
	"github.com/ryandielhenn/simonlink/pkg/wire"
)

type fakeLamps struct {
	mu    sync.Mutex
	red   uint8
	green uint8
}

func (f *fakeLamps) SetRed(level uint8) {
	f.mu.Lock()
	f.red = level
	f.mu.Unlock()
}

func (f *fakeLamps) SetGreen(level uint8) {
	f.mu.Lock()
	f.green = level
	f.mu.Unlock()
}

func (f *fakeLamps) levels() (uint8, uint8) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.red, f.green
}

func testRemoteConfig() RemoteConfig {
	return RemoteConfig{
		FeedbackDwell: 20 * time.Millisecond,
		WonDwell:      50 * time.Millisecond,
		WonBlink:      10 * time.Millisecond,
	}
}

func newTestRemote(sender *fakeSender, lamps *fakeLamps) *Remote {
	return NewRemote(testRemoteConfig(), sender, lamps, nil)
}

func press(channel int) input.PressEvent {
	return input.PressEvent{Channel: channel, Duration: 80 * time.Millisecond}
}

func TestStartHonoredFromAnyState(t *testing.T) {
	for _, from := range []RemoteState{RemoteReady, RemotePlaying, RemoteGuessed, RemoteCorrect, RemoteWrong, RemoteWon} {
		r := newTestRemote(&fakeSender{}, &fakeLamps{})
		r.state = from

		r.HandleCommand(wire.CmdStart, t0)
		if s := r.State(); s != RemotePlaying {
			t.Fatalf("START from %v -> %v, want playing", from, s)
		}
	}
}

func TestStartClearsLamps(t *testing.T) {
	lamps := &fakeLamps{}
	lamps.SetRed(200)
	lamps.SetGreen(200)
	r := newTestRemote(&fakeSender{}, lamps)

	r.HandleCommand(wire.CmdStart, t0)
	red, green := lamps.levels()
	if red != 0 || green != 0 {
		t.Fatalf("lamps = %d,%d after START, want 0,0", red, green)
	}
}

func TestPressSendsChannelAndLocks(t *testing.T) {
	sender := &fakeSender{}
	r := newTestRemote(sender, &fakeLamps{})

	r.HandleCommand(wire.CmdStart, t0)
	r.HandlePress(press(2), t0)

	if got := sender.bytes(); len(got) != 1 || got[0] != 0x02 {
		t.Fatalf("sent = %v, want [0x02]", got)
	}
	if s := r.State(); s != RemoteGuessed {
		t.Fatalf("state = %v, want guessed", s)
	}

	// second press is locked out until the verdict lands
	r.HandlePress(press(3), t0)
	if got := sender.bytes(); len(got) != 1 {
		t.Fatalf("locked press still sent: %v", got)
	}
}

func TestPressOutsidePlayingIgnored(t *testing.T) {
	sender := &fakeSender{}
	r := newTestRemote(sender, &fakeLamps{})

	r.HandlePress(press(1), t0) // still Ready
	if got := sender.bytes(); len(got) != 0 {
		t.Fatalf("ready press sent %v", got)
	}
	if s := r.State(); s != RemoteReady {
		t.Fatalf("state = %v, want ready", s)
	}
}

func TestPressOutOfRangeChannelIgnored(t *testing.T) {
	sender := &fakeSender{}
	r := newTestRemote(sender, &fakeLamps{})

	r.HandleCommand(wire.CmdStart, t0)
	r.HandlePress(press(0), t0)
	r.HandlePress(press(4), t0)

	if got := sender.bytes(); len(got) != 0 {
		t.Fatalf("out-of-range presses sent %v", got)
	}
	if s := r.State(); s != RemotePlaying {
		t.Fatalf("state = %v, want playing", s)
	}
}

func TestCorrectVerdictHoldsGreenThenReArms(t *testing.T) {
	lamps := &fakeLamps{}
	r := newTestRemote(&fakeSender{}, lamps)

	r.HandleCommand(wire.CmdStart, t0)
	r.HandlePress(press(1), t0)
	r.HandleCommand(wire.CmdCorrect, t0)

	if s := r.State(); s != RemoteCorrect {
		t.Fatalf("state = %v, want correct", s)
	}
	if _, green := lamps.levels(); green != 255 {
		t.Fatalf("green = %d, want 255", green)
	}

	r.Tick(t0.Add(10 * time.Millisecond)) // inside the dwell
	if s := r.State(); s != RemoteCorrect {
		t.Fatalf("state = %v before dwell expiry, want correct", s)
	}

	r.Tick(t0.Add(25 * time.Millisecond))
	if s := r.State(); s != RemotePlaying {
		t.Fatalf("state = %v after dwell, want playing", s)
	}
	if _, green := lamps.levels(); green != 0 {
		t.Fatalf("green = %d after dwell, want 0", green)
	}
}

func TestIncorrectVerdictHoldsRedThenReArms(t *testing.T) {
	lamps := &fakeLamps{}
	r := newTestRemote(&fakeSender{}, lamps)

	r.HandleCommand(wire.CmdStart, t0)
	r.HandlePress(press(3), t0)
	r.HandleCommand(wire.CmdIncorrect, t0)

	if s := r.State(); s != RemoteWrong {
		t.Fatalf("state = %v, want wrong", s)
	}
	if red, _ := lamps.levels(); red != 255 {
		t.Fatalf("red = %d, want 255", red)
	}

	r.Tick(t0.Add(25 * time.Millisecond))
	if s := r.State(); s != RemotePlaying {
		t.Fatalf("state = %v after dwell, want playing", s)
	}
	if red, _ := lamps.levels(); red != 0 {
		t.Fatalf("red = %d after dwell, want 0", red)
	}
}

func TestWonDwellsThenReturnsToReady(t *testing.T) {
	lamps := &fakeLamps{}
	r := newTestRemote(&fakeSender{}, lamps)

	r.HandleCommand(wire.CmdStart, t0)
	r.HandlePress(press(1), t0)
	r.HandleCommand(wire.CmdWon, t0)

	if s := r.State(); s != RemoteWon {
		t.Fatalf("state = %v, want won", s)
	}

	r.Tick(t0.Add(30 * time.Millisecond))
	if s := r.State(); s != RemoteWon {
		t.Fatalf("state = %v before dwell expiry, want won", s)
	}

	r.Tick(t0.Add(60 * time.Millisecond))
	if s := r.State(); s != RemoteReady {
		t.Fatalf("state = %v after dwell, want ready", s)
	}
	red, green := lamps.levels()
	if red != 0 || green != 0 {
		t.Fatalf("lamps = %d,%d after won dwell, want 0,0", red, green)
	}
}

func TestVerdictsOutsideGuessedIgnored(t *testing.T) {
	lamps := &fakeLamps{}
	r := newTestRemote(&fakeSender{}, lamps)

	// no guess is outstanding in Ready or Playing
	r.HandleCommand(wire.CmdCorrect, t0)
	if s := r.State(); s != RemoteReady {
		t.Fatalf("state = %v, want ready", s)
	}

	r.HandleCommand(wire.CmdStart, t0)
	r.HandleCommand(wire.CmdWon, t0)
	if s := r.State(); s != RemotePlaying {
		t.Fatalf("stale WON moved state to %v", s)
	}
	if _, green := lamps.levels(); green != 0 {
		t.Fatalf("stale verdict lit a lamp: green = %d", green)
	}
}

func TestConfirmIsNoOp(t *testing.T) {
	r := newTestRemote(&fakeSender{}, &fakeLamps{})
	r.HandleCommand(wire.CmdStart, t0)
	r.HandlePress(press(1), t0)

	r.HandleCommand(wire.CmdConfirm, t0)
	if s := r.State(); s != RemoteGuessed {
		t.Fatalf("CONFIRM moved state to %v", s)
	}
}

func TestGuessTimeoutReArmsPlaying(t *testing.T) {
	cfg := testRemoteConfig()
	cfg.GuessTimeout = 50 * time.Millisecond
	r := NewRemote(cfg, &fakeSender{}, &fakeLamps{}, nil)

	r.HandleCommand(wire.CmdStart, t0)
	r.HandlePress(press(2), t0)

	r.Tick(t0.Add(30 * time.Millisecond))
	if s := r.State(); s != RemoteGuessed {
		t.Fatalf("state = %v before timeout, want guessed", s)
	}

	r.Tick(t0.Add(60 * time.Millisecond))
	if s := r.State(); s != RemotePlaying {
		t.Fatalf("state = %v after timeout, want playing", s)
	}
}

func TestMalformedCommandDiscarded(t *testing.T) {
	r := newTestRemote(&fakeSender{}, &fakeLamps{})
	r.HandleCommand(wire.CmdStart, t0)
	r.HandlePress(press(1), t0)

	r.HandleDatagram([]byte{0x00}, t0)
	r.HandleDatagram([]byte{0x06}, t0)
	r.HandleDatagram([]byte{0x02, 0x02}, t0)

	if s := r.State(); s != RemoteGuessed {
		t.Fatalf("garbage moved state to %v", s)
	}
}
