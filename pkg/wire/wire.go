package wire

import "fmt"

// Definitions of the wire protocol between the two peers.
// Every datagram is exactly one payload byte; the two directions use
// disjoint code spaces, so a guess needs no opcode of its own.

// Command is a manager-to-remote verdict or control code.
type Command byte

const (
	CmdStart     Command = 0x01
	CmdCorrect   Command = 0x02
	CmdIncorrect Command = 0x03
	CmdWon       Command = 0x04
	CmdConfirm   Command = 0x05 // informational ack, remote may ignore it
)

// Guess is a remote-to-manager guessed channel, 1-indexed.
type Guess byte

const (
	GuessMin Guess = 1
	GuessMax Guess = 3
)

// DatagramSize is the only accepted payload length.
const DatagramSize = 1

var (
	ErrBadLength = fmt.Errorf("wire: datagram must be %d byte", DatagramSize)
	ErrBadOpcode = fmt.Errorf("wire: unknown command code")
	ErrBadGuess  = fmt.Errorf("wire: guess out of range")
)

// ParseCommand validates an inbound manager-to-remote datagram.
func ParseCommand(p []byte) (Command, error) {
	if len(p) != DatagramSize {
		return 0, ErrBadLength
	}
	c := Command(p[0])
	if c < CmdStart || c > CmdConfirm {
		return 0, ErrBadOpcode
	}
	return c, nil
}

// ParseGuess validates an inbound remote-to-manager datagram.
func ParseGuess(p []byte) (Guess, error) {
	if len(p) != DatagramSize {
		return 0, ErrBadLength
	}
	g := Guess(p[0])
	if g < GuessMin || g > GuessMax {
		return 0, ErrBadGuess
	}
	return g, nil
}

func (c Command) String() string {
	switch c {
	case CmdStart:
		return "START"
	case CmdCorrect:
		return "CORRECT"
	case CmdIncorrect:
		return "INCORRECT"
	case CmdWon:
		return "WON"
	case CmdConfirm:
		return "CONFIRM"
	default:
		return fmt.Sprintf("Command(0x%02x)", byte(c))
	}
}
