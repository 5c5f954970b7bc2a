package link

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ryandielhenn/simonlink/internal/telemetry"
)

const (
	// DefaultMaxRetries is the number of retransmissions after the first
	// attempt fails; the datagram is abandoned once they are spent.
	DefaultMaxRetries = 5
	// DefaultRetryDelay spaces consecutive attempts.
	DefaultRetryDelay = 100 * time.Millisecond
)

// ReliableSender masks single-attempt unreliability on top of a Link. On a
// failed completion it retransmits the most recently sent byte, delayed on a
// timer so the completion-notification path is never blocked. Exhausting the
// budget is logged and counted, nothing more: the game proceeds
// optimistically and state-gated filtering absorbs the fallout.
type ReliableSender struct {
	link       Link
	log        *zap.Logger
	maxRetries int
	delay      time.Duration

	mu       sync.Mutex
	lastSent byte
	retries  int
	pending  bool

	closeOnce sync.Once
	done      chan struct{}
}

func NewReliableSender(l Link, logger *zap.Logger, maxRetries int, delay time.Duration) *ReliableSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	if delay <= 0 {
		delay = DefaultRetryDelay
	}
	s := &ReliableSender{
		link:       l,
		log:        logger,
		maxRetries: maxRetries,
		delay:      delay,
		done:       make(chan struct{}),
	}
	go s.consume()
	return s
}

// Send transmits one byte. The caller guarantees the previous send has
// resolved; a fresh Send resets the retry budget.
func (s *ReliableSender) Send(b byte) {
	s.mu.Lock()
	s.lastSent = b
	s.retries = 0
	s.pending = true
	s.mu.Unlock()
	s.link.Send(b)
}

func (s *ReliableSender) Close() error {
	s.closeOnce.Do(func() { close(s.done) })
	return nil
}

func (s *ReliableSender) consume() {
	for {
		select {
		case <-s.done:
			return
		case res, ok := <-s.link.Results():
			if !ok {
				return
			}
			s.handle(res)
		}
	}
}

func (s *ReliableSender) handle(res SendResult) {
	if res.Err == nil {
		telemetry.DatagramsSent.WithLabelValues("ok").Inc()
		s.mu.Lock()
		s.pending = false
		s.mu.Unlock()
		return
	}
	telemetry.DatagramsSent.WithLabelValues("fail").Inc()

	s.mu.Lock()
	if !s.pending {
		s.mu.Unlock()
		return
	}
	if s.retries >= s.maxRetries {
		s.pending = false
		attempts := s.retries + 1
		payload := s.lastSent
		s.mu.Unlock()
		telemetry.SendGiveUps.Inc()
		s.log.Warn("datagram abandoned after retries",
			zap.Uint8("payload", payload),
			zap.Int("attempts", attempts),
		)
		return
	}
	s.retries++
	attempt := s.retries
	payload := s.lastSent
	s.mu.Unlock()

	telemetry.SendRetries.Inc()
	s.log.Debug("retransmitting datagram",
		zap.Uint8("payload", payload),
		zap.Int("attempt", attempt),
	)
	time.AfterFunc(s.delay, func() {
		select {
		case <-s.done:
		default:
			s.link.Send(payload)
		}
	})
}
