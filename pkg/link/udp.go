package link

import (
	"fmt"
	"net"
	"sync"

	"go.uber.org/zap"

	"github.com/ryandielhenn/simonlink/internal/telemetry"
)

const maxDatagram = 16

// UDPLink carries single-byte datagrams to one statically configured peer.
// UDP gives the same guarantees the radio does: unicast, unordered,
// fire-and-forget. Datagrams from any other source address are dropped.
type UDPLink struct {
	conn    *net.UDPConn
	peer    *net.UDPAddr
	log     *zap.Logger
	results chan SendResult
	inbound chan []byte

	closeOnce sync.Once
	closed    chan struct{}
}

// NewUDPLink binds the local address and resolves the peer. A bind failure
// is fatal for the caller; there is no game-logic recovery from a dead radio.
func NewUDPLink(listenAddr, peerAddr string, logger *zap.Logger) (*UDPLink, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	laddr, err := net.ResolveUDPAddr("udp", listenAddr)
	if err != nil {
		return nil, fmt.Errorf("resolve listen addr %q: %w", listenAddr, err)
	}
	paddr, err := net.ResolveUDPAddr("udp", peerAddr)
	if err != nil {
		return nil, fmt.Errorf("resolve peer addr %q: %w", peerAddr, err)
	}
	conn, err := net.ListenUDP("udp", laddr)
	if err != nil {
		return nil, fmt.Errorf("bind %q: %w", listenAddr, err)
	}
	l := &UDPLink{
		conn:    conn,
		peer:    paddr,
		log:     logger,
		results: make(chan SendResult, 8),
		inbound: make(chan []byte, 8),
		closed:  make(chan struct{}),
	}
	go l.readLoop()
	return l, nil
}

func (l *UDPLink) Send(b byte) {
	go func() {
		_, err := l.conn.WriteToUDP([]byte{b}, l.peer)
		l.report(SendResult{Payload: b, Err: err})
	}()
}

func (l *UDPLink) Results() <-chan SendResult { return l.results }
func (l *UDPLink) Inbound() <-chan []byte     { return l.inbound }

func (l *UDPLink) Close() error {
	l.closeOnce.Do(func() {
		close(l.closed)
		l.conn.Close()
	})
	return nil
}

func (l *UDPLink) report(r SendResult) {
	select {
	case l.results <- r:
	case <-l.closed:
	}
}

func (l *UDPLink) readLoop() {
	buf := make([]byte, maxDatagram)
	for {
		n, from, err := l.conn.ReadFromUDP(buf)
		if err != nil {
			select {
			case <-l.closed:
				return
			default:
			}
			l.log.Warn("link read failed", zap.Error(err))
			continue
		}
		if !from.IP.Equal(l.peer.IP) || from.Port != l.peer.Port {
			telemetry.DatagramsDiscarded.WithLabelValues("unknown_peer").Inc()
			continue
		}
		telemetry.DatagramsReceived.Inc()
		payload := make([]byte, n)
		copy(payload, buf[:n])
		select {
		case l.inbound <- payload:
		case <-l.closed:
			return
		default:
			// receiver not draining; the radio would have dropped it too
			telemetry.DatagramsDiscarded.WithLabelValues("overflow").Inc()
		}
	}
}
