package history

import (
	"container/list"
	"sync"
	"time"
)

// Round records one finished round as the manager saw it.
type Round struct {
	Difficulty uint8         `json:"difficulty"`
	Guesses    int           `json:"guesses"`
	Misses     int           `json:"misses"`
	Duration   time.Duration `json:"duration"`
	FinishedAt time.Time     `json:"finished_at"`
}

// Log is a bounded in-memory record of recent rounds, newest first.
// Oldest entries are evicted once the capacity is reached.
type Log struct {
	mu  sync.Mutex
	ll  *list.List
	cap int

	rounds  int
	guesses int
	misses  int
}

func NewLog(capacity int) *Log {
	if capacity <= 0 {
		capacity = 64
	}
	return &Log{
		ll:  list.New(),
		cap: capacity,
	}
}

func (l *Log) Add(r Round) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ll.PushFront(r)
	for l.ll.Len() > l.cap {
		l.ll.Remove(l.ll.Back())
	}
	l.rounds++
	l.guesses += r.Guesses
	l.misses += r.Misses
}

func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ll.Len()
}

// Recent returns up to n rounds, newest first.
func (l *Log) Recent(n int) []Round {
	l.mu.Lock()
	defer l.mu.Unlock()
	if n <= 0 || n > l.ll.Len() {
		n = l.ll.Len()
	}
	out := make([]Round, 0, n)
	for el := l.ll.Front(); el != nil && len(out) < n; el = el.Next() {
		out = append(out, el.Value.(Round))
	}
	return out
}

// Summary aggregates over every round ever added, not just the retained ones.
type Summary struct {
	Rounds  int `json:"rounds"`
	Guesses int `json:"guesses"`
	Misses  int `json:"misses"`
}

func (l *Log) Stats() Summary {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Summary{Rounds: l.rounds, Guesses: l.guesses, Misses: l.misses}
}
