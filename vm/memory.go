// Package vm executes optimized instruction trees against a tape memory.
//
// Memory owns the cell array, the data pointer, and a bounded output
// buffer; Interpreter walks the tree and applies each node's effect. Both
// are generic over the cell width: Brainfuck classically uses 8-bit cells,
// but 16/32/64-bit tapes with UTF-8 text I/O are supported as a
// construction-time choice. Nothing here is safe for concurrent use; a
// Memory belongs to exactly one run.
package vm

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"unicode/utf8"
)

// Cell is the set of supported tape cell widths. All arithmetic wraps at
// the cell's natural modulus.
type Cell interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64
}

const (
	// DefaultTapeLength is the classic 30000-cell tape.
	DefaultTapeLength = 30000

	// DefaultFlushThreshold is how many buffered output units force a
	// flush. Output is also flushed unconditionally at the end of a run.
	DefaultFlushThreshold = 64
)

// PointerRangeError reports a pointer move outside the tape. It is a
// defect in the source program, not a retryable condition; execution stops
// immediately and only output buffered before the failure has been
// written.
type PointerRangeError struct {
	Pointer int // where the move would have landed
	Length  int // tape length
}

func (e *PointerRangeError) Error() string {
	return fmt.Sprintf("pointer out of range: %d (tape length %d)", e.Pointer, e.Length)
}

// MemoryConfig configures a Memory. Zero values select the defaults:
// 30000 cells, flush threshold 64, stdin and stdout.
type MemoryConfig struct {
	TapeLength     int
	FlushThreshold int
	Input          io.Reader
	Output         io.Writer
}

// Memory is the tape: a fixed-size array of cells, a data pointer, and a
// bounded output buffer. Cells start at zero and the pointer at index 0.
type Memory[C Cell] struct {
	cells   []C
	ptr     int
	bits    int // cell width in bits
	in      *bufio.Reader
	out     io.Writer
	buf     []byte // encoded output pending flush
	pending int    // buffered output units
	flushAt int
}

// NewMemory creates a fresh tape for one run.
func NewMemory[C Cell](cfg MemoryConfig) *Memory[C] {
	if cfg.TapeLength <= 0 {
		cfg.TapeLength = DefaultTapeLength
	}
	if cfg.FlushThreshold <= 0 {
		cfg.FlushThreshold = DefaultFlushThreshold
	}
	if cfg.Input == nil {
		cfg.Input = os.Stdin
	}
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}
	return &Memory[C]{
		cells:   make([]C, cfg.TapeLength),
		bits:    cellBits[C](),
		in:      bufio.NewReader(cfg.Input),
		out:     cfg.Output,
		buf:     make([]byte, 0, cfg.FlushThreshold*utf8.UTFMax),
		flushAt: cfg.FlushThreshold,
	}
}

// cellBits computes the width of C in bits.
func cellBits[C Cell]() int {
	bits := 0
	for v := ^C(0); v != 0; v >>= 1 {
		bits++
	}
	return bits
}

// CellBits returns the cell width in bits.
func (m *Memory[C]) CellBits() int { return m.bits }

// Len returns the tape length.
func (m *Memory[C]) Len() int { return len(m.cells) }

// Pointer returns the current pointer index.
func (m *Memory[C]) Pointer() int { return m.ptr }

// Value returns the cell at the pointer.
func (m *Memory[C]) Value() C { return m.cells[m.ptr] }

// SetValue stores v into the cell at the pointer.
func (m *Memory[C]) SetValue(v C) { m.cells[m.ptr] = v }

// At returns the cell at an absolute index. Test helper.
func (m *Memory[C]) At(i int) C { return m.cells[i] }

// Add adds v to the cell at the pointer, wrapping.
func (m *Memory[C]) Add(v C) { m.cells[m.ptr] += v }

// Sub subtracts v from the cell at the pointer, wrapping.
func (m *Memory[C]) Sub(v C) { m.cells[m.ptr] -= v }

// MoveRight moves the pointer n cells right.
func (m *Memory[C]) MoveRight(n int) error {
	p := m.ptr + n
	if p >= len(m.cells) {
		return &PointerRangeError{Pointer: p, Length: len(m.cells)}
	}
	m.ptr = p
	return nil
}

// MoveLeft moves the pointer n cells left.
func (m *Memory[C]) MoveLeft(n int) error {
	p := m.ptr - n
	if p < 0 {
		return &PointerRangeError{Pointer: p, Length: len(m.cells)}
	}
	m.ptr = p
	return nil
}

// index resolves pointer+offset with bounds checking.
func (m *Memory[C]) index(offset int) (int, error) {
	i := m.ptr + offset
	if i < 0 || i >= len(m.cells) {
		return 0, &PointerRangeError{Pointer: i, Length: len(m.cells)}
	}
	return i, nil
}

// AddAt adds the signed delta to the cell at pointer+offset without moving
// the pointer.
func (m *Memory[C]) AddAt(offset, delta int) error {
	i, err := m.index(offset)
	if err != nil {
		return err
	}
	m.cells[i] += C(delta)
	return nil
}

// ZeroScatter reads the current cell; if it is nonzero, zeroes it and adds
// delta scaled by the prior value to the cell at pointer+offset.
func (m *Memory[C]) ZeroScatter(offset, delta int) error {
	v := m.cells[m.ptr]
	if v == 0 {
		return nil
	}
	i, err := m.index(offset)
	if err != nil {
		return err
	}
	m.cells[m.ptr] = 0
	m.cells[i] += C(delta) * v
	return nil
}

// Output appends the current cell to the output buffer, flushing when the
// buffer reaches its threshold. Byte cells are written raw; wider cells
// are encoded as UTF-8 codepoints, and a cell value that is not a valid
// codepoint (a surrogate, or beyond U+10FFFF) is an error, matching the
// validation Input applies in the other direction.
func (m *Memory[C]) Output() error {
	v := m.cells[m.ptr]
	if m.bits == 8 {
		m.buf = append(m.buf, byte(v))
	} else {
		if uint64(v) > uint64(utf8.MaxRune) || !utf8.ValidRune(rune(v)) {
			return fmt.Errorf("vm: cell value %#x is not a valid codepoint", uint64(v))
		}
		m.buf = utf8.AppendRune(m.buf, rune(v))
	}
	m.pending++
	if m.pending >= m.flushAt {
		return m.Flush()
	}
	return nil
}

// Flush writes any buffered output. Called automatically at the flush
// threshold; the interpreter calls it once more at the end of a run.
func (m *Memory[C]) Flush() error {
	if len(m.buf) == 0 {
		return nil
	}
	if _, err := m.out.Write(m.buf); err != nil {
		return fmt.Errorf("vm: flush output: %w", err)
	}
	m.buf = m.buf[:0]
	m.pending = 0
	return nil
}

// Input blocks for exactly one unit of input and stores it into the
// current cell: one raw byte for 8-bit cells, one decoded UTF-8 codepoint
// for wider cells. End of stream is an error; there is no EOF-as-zero
// behavior.
func (m *Memory[C]) Input() error {
	if m.bits == 8 {
		b, err := m.in.ReadByte()
		if err != nil {
			return fmt.Errorf("vm: read input: %w", err)
		}
		m.cells[m.ptr] = C(b)
		return nil
	}
	r, _, err := m.in.ReadRune()
	if err != nil {
		return fmt.Errorf("vm: read input: %w", err)
	}
	if m.bits < 32 && uint32(r) >= uint32(1)<<m.bits {
		return fmt.Errorf("vm: input codepoint %U does not fit in a %d-bit cell", r, m.bits)
	}
	m.cells[m.ptr] = C(r)
	return nil
}
