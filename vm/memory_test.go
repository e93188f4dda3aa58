package vm

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func newTestMemory[C Cell](tapeLen int) (*Memory[C], *bytes.Buffer) {
	var out bytes.Buffer
	m := NewMemory[C](MemoryConfig{
		TapeLength: tapeLen,
		Input:      strings.NewReader(""),
		Output:     &out,
	})
	return m, &out
}

func TestMemoryDefaults(t *testing.T) {
	m := NewMemory[uint8](MemoryConfig{Input: strings.NewReader(""), Output: &bytes.Buffer{}})
	if m.Len() != DefaultTapeLength {
		t.Errorf("Len() = %d, want %d", m.Len(), DefaultTapeLength)
	}
	if m.Pointer() != 0 {
		t.Errorf("Pointer() = %d, want 0", m.Pointer())
	}
	if m.Value() != 0 {
		t.Errorf("Value() = %d, want 0", m.Value())
	}
	if m.CellBits() != 8 {
		t.Errorf("CellBits() = %d, want 8", m.CellBits())
	}
}

func TestMemoryWrappingArithmetic(t *testing.T) {
	m, _ := newTestMemory[uint8](8)
	m.Add(200)
	m.Add(100)
	if got := m.Value(); got != 44 {
		t.Errorf("Value() after 200+100 = %d, want 44", got)
	}
	m.Sub(45)
	if got := m.Value(); got != 255 {
		t.Errorf("Value() after -45 = %d, want 255", got)
	}

	w, _ := newTestMemory[uint16](8)
	w.Sub(1)
	if got := w.Value(); got != 0xFFFF {
		t.Errorf("uint16 Value() after -1 = %d, want 65535", got)
	}
}

func TestMemoryMoveBounds(t *testing.T) {
	m, _ := newTestMemory[uint8](4)

	if err := m.MoveRight(3); err != nil {
		t.Fatalf("MoveRight(3): %v", err)
	}
	if m.Pointer() != 3 {
		t.Fatalf("Pointer() = %d, want 3", m.Pointer())
	}

	err := m.MoveRight(1)
	var prerr *PointerRangeError
	if !errors.As(err, &prerr) {
		t.Fatalf("MoveRight past end error = %v, want *PointerRangeError", err)
	}
	if prerr.Pointer != 4 || prerr.Length != 4 {
		t.Errorf("PointerRangeError = %+v, want Pointer 4, Length 4", prerr)
	}
	// A failed move leaves the pointer where it was.
	if m.Pointer() != 3 {
		t.Errorf("Pointer() after failed move = %d, want 3", m.Pointer())
	}

	if err := m.MoveLeft(3); err != nil {
		t.Fatalf("MoveLeft(3): %v", err)
	}
	if err := m.MoveLeft(1); !errors.As(err, &prerr) {
		t.Fatalf("MoveLeft under 0 error = %v, want *PointerRangeError", err)
	}
	if prerr.Pointer != -1 {
		t.Errorf("PointerRangeError.Pointer = %d, want -1", prerr.Pointer)
	}
}

func TestMemoryAddAt(t *testing.T) {
	m, _ := newTestMemory[uint8](8)
	if err := m.MoveRight(2); err != nil {
		t.Fatal(err)
	}
	if err := m.AddAt(3, 7); err != nil {
		t.Fatalf("AddAt(3, 7): %v", err)
	}
	if got := m.At(5); got != 7 {
		t.Errorf("At(5) = %d, want 7", got)
	}
	if err := m.AddAt(-2, -1); err != nil {
		t.Fatalf("AddAt(-2, -1): %v", err)
	}
	if got := m.At(0); got != 255 {
		t.Errorf("At(0) = %d, want 255", got)
	}
	if m.Pointer() != 2 {
		t.Errorf("Pointer() = %d, want 2 (AddAt must not move it)", m.Pointer())
	}

	if err := m.AddAt(-3, 1); err == nil {
		t.Error("AddAt(-3, 1) from index 2 succeeded, want range error")
	}
	if err := m.AddAt(6, 1); err == nil {
		t.Error("AddAt(6, 1) from index 2 on 8-cell tape succeeded, want range error")
	}
}

func TestMemoryZeroScatter(t *testing.T) {
	m, _ := newTestMemory[uint8](8)
	m.SetValue(5)
	if err := m.ZeroScatter(1, 3); err != nil {
		t.Fatalf("ZeroScatter: %v", err)
	}
	if got := m.Value(); got != 0 {
		t.Errorf("Value() = %d, want 0", got)
	}
	if got := m.At(1); got != 15 {
		t.Errorf("At(1) = %d, want 15", got)
	}

	// Zero gating value: no effect at all, not even a bounds check.
	if err := m.ZeroScatter(100, 1); err != nil {
		t.Errorf("ZeroScatter with zero cell: %v", err)
	}
}

func TestMemoryOutputBuffering(t *testing.T) {
	var out bytes.Buffer
	m := NewMemory[uint8](MemoryConfig{
		TapeLength:     8,
		FlushThreshold: 2,
		Input:          strings.NewReader(""),
		Output:         &out,
	})

	m.SetValue('a')
	if err := m.Output(); err != nil {
		t.Fatal(err)
	}
	if out.Len() != 0 {
		t.Errorf("flushed %d bytes before the threshold", out.Len())
	}
	if err := m.Output(); err != nil {
		t.Fatal(err)
	}
	if got := out.String(); got != "aa" {
		t.Errorf("output after threshold = %q, want %q", got, "aa")
	}

	m.SetValue('b')
	if err := m.Output(); err != nil {
		t.Fatal(err)
	}
	if err := m.Flush(); err != nil {
		t.Fatal(err)
	}
	if got := out.String(); got != "aab" {
		t.Errorf("output after final flush = %q, want %q", got, "aab")
	}
}

func TestMemoryInputOneByte(t *testing.T) {
	m := NewMemory[uint8](MemoryConfig{
		TapeLength: 8,
		Input:      strings.NewReader("AB"),
		Output:     &bytes.Buffer{},
	})
	if err := m.Input(); err != nil {
		t.Fatalf("Input: %v", err)
	}
	if got := m.Value(); got != 'A' {
		t.Errorf("Value() = %d, want %d", got, 'A')
	}
	if err := m.Input(); err != nil {
		t.Fatalf("Input: %v", err)
	}
	if got := m.Value(); got != 'B' {
		t.Errorf("Value() = %d, want %d", got, 'B')
	}
	// End of stream is an error, never a zero.
	if err := m.Input(); err == nil {
		t.Error("Input at EOF succeeded, want error")
	}
}

func TestMemoryWideCellTextIO(t *testing.T) {
	var out bytes.Buffer
	m := NewMemory[uint32](MemoryConfig{
		TapeLength: 8,
		Input:      strings.NewReader("é😀"),
		Output:     &out,
	})

	if err := m.Input(); err != nil {
		t.Fatalf("Input: %v", err)
	}
	if got := m.Value(); got != 0xE9 {
		t.Errorf("Value() = %#x, want 0xE9", got)
	}
	if err := m.Input(); err != nil {
		t.Fatalf("Input: %v", err)
	}
	if got := m.Value(); got != 0x1F600 {
		t.Errorf("Value() = %#x, want 0x1F600", got)
	}

	if err := m.Output(); err != nil {
		t.Fatal(err)
	}
	if err := m.Flush(); err != nil {
		t.Fatal(err)
	}
	if got := out.String(); got != "😀" {
		t.Errorf("output = %q, want %q", got, "😀")
	}
}

func TestMemoryWideCellRejectsInvalidOutput(t *testing.T) {
	// Output must refuse values that are not codepoints instead of
	// silently substituting U+FFFD.
	for _, v := range []uint32{0xD800, 0xDFFF, 0x110000} {
		m, out := newTestMemory[uint32](8)
		m.SetValue(v)
		if err := m.Output(); err == nil {
			t.Errorf("Output of %#x succeeded, want error", v)
		}
		if err := m.Flush(); err != nil {
			t.Fatal(err)
		}
		if out.Len() != 0 {
			t.Errorf("Output of %#x wrote %q, want nothing", v, out.String())
		}
	}

	m, _ := newTestMemory[uint64](8)
	m.SetValue(1 << 40)
	if err := m.Output(); err == nil {
		t.Error("Output of a 64-bit value beyond U+10FFFF succeeded, want error")
	}
}

func TestMemory16BitRejectsWideCodepoint(t *testing.T) {
	m := NewMemory[uint16](MemoryConfig{
		TapeLength: 8,
		Input:      strings.NewReader("😀"),
		Output:     &bytes.Buffer{},
	})
	if err := m.Input(); err == nil {
		t.Error("Input accepted a codepoint beyond 16 bits")
	}
}
