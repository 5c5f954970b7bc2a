package link

import (
	"sync"
	"testing"
	"time"
)

// stubLink records sends and lets the test script completion results.
type stubLink struct {
	mu      sync.Mutex
	sends   []byte
	results chan SendResult
	inbound chan []byte
}

func newStubLink() *stubLink {
	return &stubLink{
		results: make(chan SendResult, 8),
		inbound: make(chan []byte, 8),
	}
}

func (s *stubLink) Send(b byte) {
	s.mu.Lock()
	s.sends = append(s.sends, b)
	s.mu.Unlock()
}

func (s *stubLink) Results() <-chan SendResult { return s.results }
func (s *stubLink) Inbound() <-chan []byte     { return s.inbound }
func (s *stubLink) Close() error               { return nil }

func (s *stubLink) sendCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sends)
}

func waitSends(t *testing.T, s *stubLink, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for s.sendCount() < n {
		if time.Now().After(deadline) {
			t.Fatalf("send count = %d, want %d", s.sendCount(), n)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestReliableSender_SuccessNeedsNoRetry(t *testing.T) {
	l := newStubLink()
	s := NewReliableSender(l, nil, 5, time.Millisecond)
	defer s.Close()

	s.Send(0x01)
	waitSends(t, l, 1)
	l.results <- SendResult{Payload: 0x01, Err: nil}

	time.Sleep(20 * time.Millisecond)
	if got := l.sendCount(); got != 1 {
		t.Fatalf("send count = %d, want 1", got)
	}
}

func TestReliableSender_RetriesSameByteThenStops(t *testing.T) {
	l := newStubLink()
	s := NewReliableSender(l, nil, 5, time.Millisecond)
	defer s.Close()

	s.Send(0x04)
	waitSends(t, l, 1)
	l.results <- SendResult{Payload: 0x04, Err: ErrSendFailed}
	waitSends(t, l, 2)
	l.results <- SendResult{Payload: 0x04, Err: nil}

	time.Sleep(20 * time.Millisecond)
	if got := l.sendCount(); got != 2 {
		t.Fatalf("send count = %d, want 2", got)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.sends[1] != 0x04 {
		t.Fatalf("retry payload = 0x%02x, want 0x04", l.sends[1])
	}
}

// Exhausting the budget: the initial attempt plus five retries all fail, the
// sender gives up and never issues a sixth retry.
func TestReliableSender_GivesUpAfterRetryBudget(t *testing.T) {
	l := newStubLink()
	s := NewReliableSender(l, nil, 5, time.Millisecond)
	defer s.Close()

	s.Send(0x02)
	for attempt := 1; attempt <= 6; attempt++ {
		waitSends(t, l, attempt)
		l.results <- SendResult{Payload: 0x02, Err: ErrSendFailed}
	}

	time.Sleep(30 * time.Millisecond)
	if got := l.sendCount(); got != 6 {
		t.Fatalf("send count = %d, want 6 (initial + 5 retries)", got)
	}
}

func TestReliableSender_FreshSendResetsBudget(t *testing.T) {
	l := newStubLink()
	s := NewReliableSender(l, nil, 1, time.Millisecond)
	defer s.Close()

	s.Send(0x01)
	waitSends(t, l, 1)
	l.results <- SendResult{Payload: 0x01, Err: ErrSendFailed}
	waitSends(t, l, 2)
	l.results <- SendResult{Payload: 0x01, Err: ErrSendFailed} // budget spent

	time.Sleep(20 * time.Millisecond)
	s.Send(0x03)
	waitSends(t, l, 3)
	l.results <- SendResult{Payload: 0x03, Err: ErrSendFailed}
	waitSends(t, l, 4) // budget applies anew to the fresh byte

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.sends[3] != 0x03 {
		t.Fatalf("retry payload = 0x%02x, want 0x03", l.sends[3])
	}
}
