package input

import (
	"bufio"
	"context"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"
)

// StdinSource stands in for GPIO when running on a desk instead of a board.
// Each line synthesizes a full press-release edge pair through the
// debouncer, so the production input path is exercised end to end:
//
//	"1" | "2" | "3"  short press on that channel
//	""  (bare enter) short press on channel 1
//	"l"              long press on channel 1
type StdinSource struct {
	deb   *Debouncer
	log   *zap.Logger
	short time.Duration
	long  time.Duration
}

func NewStdinSource(deb *Debouncer, logger *zap.Logger) *StdinSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StdinSource{
		deb:   deb,
		log:   logger,
		short: 150 * time.Millisecond,
		long:  deb.longPress + 200*time.Millisecond,
	}
}

// Run reads lines until EOF or ctx cancellation.
func (s *StdinSource) Run(ctx context.Context, r io.Reader) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return
		default:
		}
		line := strings.TrimSpace(strings.ToLower(scanner.Text()))
		switch line {
		case "", "1":
			s.press(1, s.short)
		case "2":
			s.press(2, s.short)
		case "3":
			s.press(3, s.short)
		case "l":
			s.press(1, s.long)
		default:
			s.log.Info("unrecognized input line", zap.String("line", line))
		}
	}
}

func (s *StdinSource) press(channel int, hold time.Duration) {
	now := time.Now()
	s.deb.Edge(channel, true, now)
	s.deb.Edge(channel, false, now.Add(hold))
}
