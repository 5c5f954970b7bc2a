package sequence

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/ryandielhenn/simonlink/pkg/wire"
)

const (
	// MaxDifficulty is the highest selectable difficulty; sequences hold
	// difficulty+1 symbols, so at most 16.
	MaxDifficulty = 15
	// Symbols is the number of distinct guessable symbols (channels 1..3).
	Symbols = 3
)

// Sequence is the target pattern for one round. Immutable once generated.
type Sequence []wire.Guess

// Outcome of verifying one guess against the sequence cursor.
type Outcome int

const (
	Advance Outcome = iota // match, more symbols remain
	Win                    // match on the final symbol
	Reset                  // mismatch, cursor returns to 0
)

func (o Outcome) String() string {
	switch o {
	case Advance:
		return "advance"
	case Win:
		return "win"
	case Reset:
		return "reset"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Generator produces fresh sequences. The source does not need to be strong,
// just free-running; tests inject a fixed seed.
type Generator struct {
	rng *rand.Rand
}

func NewGenerator(src rand.Source) *Generator {
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}
	return &Generator{rng: rand.New(src)}
}

// Generate returns difficulty+1 symbols drawn uniformly from 1..Symbols.
func (g *Generator) Generate(difficulty uint8) (Sequence, error) {
	if difficulty > MaxDifficulty {
		return nil, fmt.Errorf("difficulty %d out of range [0,%d]", difficulty, MaxDifficulty)
	}
	seq := make(Sequence, int(difficulty)+1)
	for i := range seq {
		seq[i] = wire.Guess(g.rng.Intn(Symbols) + 1)
	}
	return seq, nil
}

// Verify compares a guess against the symbol under the cursor. Pure: the
// caller owns all cursor mutation. A cursor outside [0,len) counts as a
// mismatch.
func Verify(seq Sequence, cursor int, guess wire.Guess) Outcome {
	if cursor < 0 || cursor >= len(seq) || guess != seq[cursor] {
		return Reset
	}
	if cursor+1 == len(seq) {
		return Win
	}
	return Advance
}
