package game

// Sender is the outbound half of the link, normally a link.ReliableSender.
type Sender interface {
	Send(b byte)
}

// DifficultyPanel is the manager's four-lamp binary difficulty display.
// SetAll drives the countdown and game-over blink patterns.
type DifficultyPanel interface {
	ShowDifficulty(level uint8)
	SetAll(on bool)
}

// FeedbackLamps is the remote's red/green pair; levels are PWM-style 0..255.
type FeedbackLamps interface {
	SetRed(level uint8)
	SetGreen(level uint8)
}

// NopPanel and NopLamps satisfy the display interfaces for headless runs.
type NopPanel struct{}

func (NopPanel) ShowDifficulty(uint8) {}
func (NopPanel) SetAll(bool)          {}

type NopLamps struct{}

func (NopLamps) SetRed(uint8)   {}
func (NopLamps) SetGreen(uint8) {}
