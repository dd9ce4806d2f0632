package panel

import (
	"encoding/binary"
	"fmt"
	"io"
	"sync"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
)

// OpenSPI opens the SPI port and connects with the board info's clock,
// mode and word size. The returned closer releases the port.
func OpenSPI(port string, info SPIBoardInfo) (spi.Conn, io.Closer, error) {
	p, err := spireg.Open(port)
	if err != nil {
		return nil, nil, fmt.Errorf("panel: open spi port %q: %w", port, err)
	}
	c, err := p.Connect(info.MaxSpeed, info.Mode, info.BitsPerWord)
	if err != nil {
		_ = p.Close()
		return nil, nil, fmt.Errorf("panel: connect spi %s: %w", info.Modalias, err)
	}
	return c, p, nil
}

// Writer streams command sequences to the controller.
type Writer struct {
	conn  spi.Conn
	sleep func(time.Duration)
}

// NewWriter returns a Writer on conn; nil sleep means time.Sleep.
func NewWriter(conn spi.Conn, sleep func(time.Duration)) *Writer {
	if sleep == nil {
		sleep = time.Sleep
	}
	return &Writer{conn: conn, sleep: sleep}
}

// Run sends seq. Consecutive writes go out as one transfer; each frame
// is a 9-bit word in two little-endian bytes, the layout spidev uses for
// words wider than 8 bits.
func (w *Writer) Run(seq Sequence) error {
	buf := make([]byte, 0, 2*len(seq))
	flush := func() error {
		if len(buf) == 0 {
			return nil
		}
		err := w.conn.Tx(buf, nil)
		buf = buf[:0]
		return err
	}

	for i, c := range seq {
		switch c.Op {
		case OpWrite:
			buf = binary.LittleEndian.AppendUint16(buf, c.Value)
		case OpSleep:
			if err := flush(); err != nil {
				return fmt.Errorf("panel: spi write before step %d: %w", i, err)
			}
			w.sleep(c.Delay)
		case OpEnd:
			if err := flush(); err != nil {
				return fmt.Errorf("panel: spi write at end: %w", err)
			}
			return nil
		}
	}
	if err := flush(); err != nil {
		return fmt.Errorf("panel: spi write: %w", err)
	}
	return nil
}

// Command sends a single command byte.
func (w *Writer) Command(cmd byte) error {
	return w.Run(Sequence{{Op: OpWrite, Value: uint16(cmd)}, {Op: OpEnd}})
}

// SimConn is an spi.Conn that records every transfer. It stands in for
// the panel bus when no hardware is present.
type SimConn struct {
	mu  sync.Mutex
	txs [][]byte
}

func (s *SimConn) String() string {
	return "sim-spi"
}

// Duplex implements conn.Conn.
func (s *SimConn) Duplex() conn.Duplex {
	return conn.Half
}

// Tx records w. r, if any, is zero filled.
func (s *SimConn) Tx(w, r []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txs = append(s.txs, append([]byte(nil), w...))
	clear(r)
	return nil
}

// TxPackets records each packet as its own transfer.
func (s *SimConn) TxPackets(p []spi.Packet) error {
	for _, pk := range p {
		if err := s.Tx(pk.W, pk.R); err != nil {
			return err
		}
	}
	return nil
}

// Transfers returns a copy of every recorded transfer.
func (s *SimConn) Transfers() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]byte, len(s.txs))
	for i, t := range s.txs {
		out[i] = append([]byte(nil), t...)
	}
	return out
}

// Words decodes every recorded transfer back into 9-bit frames.
func (s *SimConn) Words() []uint16 {
	var out []uint16
	for _, t := range s.Transfers() {
		for i := 0; i+1 < len(t); i += 2 {
			out = append(out, binary.LittleEndian.Uint16(t[i:]))
		}
	}
	return out
}

// Reset drops the recorded transfers.
func (s *SimConn) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txs = nil
}
