package history

import (
	"testing"
	"time"
)

func round(difficulty uint8, guesses, misses int) Round {
	return Round{
		Difficulty: difficulty,
		Guesses:    guesses,
		Misses:     misses,
		Duration:   time.Second,
		FinishedAt: time.Now(),
	}
}

func TestAddAndLen(t *testing.T) {
	l := NewLog(4)
	if l.Len() != 0 {
		t.Fatalf("fresh log len = %d, want 0", l.Len())
	}
	l.Add(round(3, 4, 0))
	l.Add(round(5, 8, 2))
	if l.Len() != 2 {
		t.Fatalf("len = %d, want 2", l.Len())
	}
}

func TestRecentNewestFirst(t *testing.T) {
	l := NewLog(8)
	for d := uint8(0); d < 5; d++ {
		l.Add(round(d, int(d)+1, 0))
	}

	got := l.Recent(3)
	if len(got) != 3 {
		t.Fatalf("Recent(3) len = %d, want 3", len(got))
	}
	for i, want := range []uint8{4, 3, 2} {
		if got[i].Difficulty != want {
			t.Fatalf("Recent(3)[%d].Difficulty = %d, want %d", i, got[i].Difficulty, want)
		}
	}

	// n larger than the log returns everything
	if all := l.Recent(100); len(all) != 5 {
		t.Fatalf("Recent(100) len = %d, want 5", len(all))
	}
}

func TestCapacityEvictsOldest(t *testing.T) {
	l := NewLog(3)
	for d := uint8(0); d < 6; d++ {
		l.Add(round(d, 1, 0))
	}
	if l.Len() != 3 {
		t.Fatalf("len = %d, want 3", l.Len())
	}
	got := l.Recent(3)
	for i, want := range []uint8{5, 4, 3} {
		if got[i].Difficulty != want {
			t.Fatalf("Recent(3)[%d].Difficulty = %d, want %d", i, got[i].Difficulty, want)
		}
	}
}

func TestStatsCountEvictedRounds(t *testing.T) {
	l := NewLog(2)
	for i := 0; i < 5; i++ {
		l.Add(round(1, 2, 1))
	}
	s := l.Stats()
	if s.Rounds != 5 {
		t.Fatalf("Rounds = %d, want 5", s.Rounds)
	}
	if s.Guesses != 10 {
		t.Fatalf("Guesses = %d, want 10", s.Guesses)
	}
	if s.Misses != 5 {
		t.Fatalf("Misses = %d, want 5", s.Misses)
	}
}

func TestZeroCapacityUsesDefault(t *testing.T) {
	l := NewLog(0)
	for i := 0; i < 64; i++ {
		l.Add(round(0, 1, 0))
	}
	if l.Len() != 64 {
		t.Fatalf("len = %d, want 64", l.Len())
	}
	l.Add(round(0, 1, 0))
	if l.Len() != 64 {
		t.Fatalf("len after overflow = %d, want 64", l.Len())
	}
}
