package panel

import (
	"errors"
	"fmt"
	"time"
)

// Directive words inside a raw command table.
const (
	sleepMsec uint16 = 0x1000
	endDef    uint16 = 0x2000
	defMask   uint16 = 0xFF00

	dataBit uint16 = 0x100
)

// Op is the kind of a sequence command.
type Op uint8

const (
	OpWrite Op = iota
	OpSleep
	OpEnd
)

func (o Op) String() string {
	switch o {
	case OpWrite:
		return "write"
	case OpSleep:
		return "sleep"
	case OpEnd:
		return "end"
	default:
		return fmt.Sprintf("op(%d)", uint8(o))
	}
}

// Command is one step of a panel command sequence.
type Command struct {
	Op    Op
	Value uint16        // OpWrite: 9-bit frame
	Delay time.Duration // OpSleep
}

// IsData reports whether a write carries a parameter byte rather than a
// command byte.
func (c Command) IsData() bool {
	return c.Op == OpWrite && c.Value&dataBit != 0
}

// Byte is the 8-bit payload of a write.
func (c Command) Byte() byte {
	return byte(c.Value)
}

func (c Command) String() string {
	switch c.Op {
	case OpWrite:
		if c.IsData() {
			return fmt.Sprintf("data %#02x", c.Byte())
		}
		return fmt.Sprintf("cmd %#02x", c.Byte())
	case OpSleep:
		return "sleep " + c.Delay.String()
	default:
		return c.Op.String()
	}
}

// Sequence is a decoded command table. It always ends with OpEnd.
type Sequence []Command

var (
	ErrNoEnd        = errors.New("panel: sequence has no end marker")
	ErrBadDirective = errors.New("panel: malformed sequence directive")
)

// Decode turns a raw word table into a Sequence. Words after the end
// marker are ignored.
func Decode(words []uint16) (Sequence, error) {
	var seq Sequence
	for i := 0; i < len(words); i++ {
		w := words[i]
		switch w & defMask {
		case sleepMsec:
			if i+1 >= len(words) {
				return nil, fmt.Errorf("%w: sleep at word %d has no duration", ErrBadDirective, i)
			}
			i++
			seq = append(seq, Command{Op: OpSleep, Delay: time.Duration(words[i]) * time.Millisecond})
		case endDef:
			return append(seq, Command{Op: OpEnd}), nil
		default:
			if w&defMask > dataBit {
				return nil, fmt.Errorf("%w: word %d = %#04x", ErrBadDirective, i, w)
			}
			seq = append(seq, Command{Op: OpWrite, Value: w})
		}
	}
	return nil, ErrNoEnd
}

// MustDecode is Decode for the compiled-in tables.
func MustDecode(words []uint16) Sequence {
	seq, err := Decode(words)
	if err != nil {
		panic(err)
	}
	return seq
}

// Writes returns only the write frames of s.
func (s Sequence) Writes() []uint16 {
	var out []uint16
	for _, c := range s {
		if c.Op == OpWrite {
			out = append(out, c.Value)
		}
	}
	return out
}

// Duration is the total time s spends in sleep directives.
func (s Sequence) Duration() time.Duration {
	var d time.Duration
	for _, c := range s {
		if c.Op == OpSleep {
			d += c.Delay
		}
	}
	return d
}
