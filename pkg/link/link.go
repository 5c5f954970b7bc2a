package link

import "errors"

// Link is a best-effort unicast datagram transport between two fixed peers.
// Send queues a single datagram; its fate arrives later on Results. Inbound
// carries whatever the peer managed to deliver, in no guaranteed order.
// Callers serialize their own sends: the game machines never issue a new
// send before the previous round-trip resolved, so one result slot is enough.
type Link interface {
	Send(b byte)
	Results() <-chan SendResult
	Inbound() <-chan []byte
	Close() error
}

// SendResult is the asynchronous completion notification for one Send.
type SendResult struct {
	Payload byte
	Err     error
}

var (
	ErrSendFailed = errors.New("link: send failed")
	ErrClosed     = errors.New("link: closed")
)
