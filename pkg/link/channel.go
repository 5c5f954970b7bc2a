package link

import (
	"math/rand"
	"sync"

	"github.com/ryandielhenn/simonlink/internal/telemetry"
)

// ChannelLink is the in-proc counterpart of UDPLink, for tests and the
// loopback simulator. A pair shares two buffered channels; unreliability is
// injected per link: forced completion failures and silent loss, where the
// send completes "ok" but the datagram never reaches the peer.
type ChannelLink struct {
	out     chan<- []byte
	in      chan []byte
	results chan SendResult

	mu       sync.Mutex
	rng      *rand.Rand
	lossRate float64
	failNext int

	closeOnce sync.Once
	closed    chan struct{}
}

// NewChannelPair wires two ChannelLinks back to back. lossRate applies to
// both directions; seed makes a lossy run reproducible.
func NewChannelPair(lossRate float64, seed int64) (*ChannelLink, *ChannelLink) {
	ab := make(chan []byte, 8)
	ba := make(chan []byte, 8)
	a := newChannelLink(ab, ba, lossRate, seed)
	b := newChannelLink(ba, ab, lossRate, seed+1)
	return a, b
}

func newChannelLink(out chan []byte, in chan []byte, lossRate float64, seed int64) *ChannelLink {
	return &ChannelLink{
		out:      out,
		in:       in,
		results:  make(chan SendResult, 8),
		rng:      rand.New(rand.NewSource(seed)),
		lossRate: lossRate,
		closed:   make(chan struct{}),
	}
}

// FailNext forces the next n sends to report a failed completion without
// delivering anything, mimicking a radio that got no MAC-level ack.
func (l *ChannelLink) FailNext(n int) {
	l.mu.Lock()
	l.failNext += n
	l.mu.Unlock()
}

func (l *ChannelLink) Send(b byte) {
	go func() {
		l.mu.Lock()
		if l.failNext > 0 {
			l.failNext--
			l.mu.Unlock()
			l.report(SendResult{Payload: b, Err: ErrSendFailed})
			return
		}
		lost := l.lossRate > 0 && l.rng.Float64() < l.lossRate
		l.mu.Unlock()

		if !lost {
			select {
			case l.out <- []byte{b}:
				telemetry.DatagramsReceived.Inc()
			case <-l.closed:
				return
			default:
				// peer buffer full, datagram evaporates like on air
			}
		}
		l.report(SendResult{Payload: b, Err: nil})
	}()
}

func (l *ChannelLink) Results() <-chan SendResult { return l.results }
func (l *ChannelLink) Inbound() <-chan []byte     { return l.in }

func (l *ChannelLink) Close() error {
	l.closeOnce.Do(func() { close(l.closed) })
	return nil
}

func (l *ChannelLink) report(r SendResult) {
	select {
	case l.results <- r:
	case <-l.closed:
	}
}
