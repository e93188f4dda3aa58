package vm

import (
	"fmt"

	"tapemill/compiler"
)

// Interpreter walks an optimized instruction tree and applies each node's
// effect to its Memory. It has no state of its own beyond the call stack
// mirroring the tree's nesting; termination is solely a function of gating
// cells reaching zero.
type Interpreter[C Cell] struct {
	mem *Memory[C]
}

// NewInterpreter wraps a fresh Memory for one run. The tree and the memory
// are exclusively owned by the interpreter until Run returns.
func NewInterpreter[C Cell](mem *Memory[C]) *Interpreter[C] {
	return &Interpreter[C]{mem: mem}
}

// Memory returns the tape, for inspecting the end state after a run.
func (it *Interpreter[C]) Memory() *Memory[C] { return it.mem }

// Run executes the program and flushes whatever output remains buffered.
// On error the tape is left as it was at the failure point and no further
// output is flushed.
func (it *Interpreter[C]) Run(program []compiler.Node) error {
	if err := it.runSeq(program); err != nil {
		return err
	}
	return it.mem.Flush()
}

func (it *Interpreter[C]) runSeq(nodes []compiler.Node) error {
	for i := range nodes {
		if err := it.exec(&nodes[i]); err != nil {
			return err
		}
	}
	return nil
}

func (it *Interpreter[C]) exec(n *compiler.Node) error {
	switch n.Op {
	case compiler.OpInc:
		it.mem.Add(C(n.Count))
	case compiler.OpDec:
		it.mem.Sub(C(n.Count))
	case compiler.OpMoveLeft:
		return it.mem.MoveLeft(int(n.Count))
	case compiler.OpMoveRight:
		return it.mem.MoveRight(int(n.Count))
	case compiler.OpOutput:
		return it.mem.Output()
	case compiler.OpInput:
		return it.mem.Input()
	case compiler.OpLoop:
		if n.Kind == compiler.LoopMultiply {
			return it.runMultiply(n)
		}
		for it.mem.Value() != 0 {
			if err := it.runSeq(n.Body); err != nil {
				return err
			}
		}
	case compiler.OpMakeZero:
		it.mem.SetValue(0)
	case compiler.OpJumpOut:
		return it.runScan(n.Delta)
	case compiler.OpOffset:
		return it.mem.AddAt(n.Offset, n.Delta)
	case compiler.OpOffsetZero:
		return it.mem.ZeroScatter(n.Offset, n.Delta)
	default:
		return fmt.Errorf("vm: unknown instruction %v", n.Op)
	}
	return nil
}

// runMultiply applies a pointer-neutral loop body once, scaling every
// arithmetic delta by the gating cell's entry value. Moves are applied
// literally: the optimizer guarantees their signed sum is zero, so the
// pointer ends where it started.
func (it *Interpreter[C]) runMultiply(n *compiler.Node) error {
	k := it.mem.Value()
	if k == 0 {
		return nil
	}
	for i := range n.Body {
		b := &n.Body[i]
		switch b.Op {
		case compiler.OpInc:
			it.mem.Add(C(b.Count) * k)
		case compiler.OpDec:
			it.mem.Sub(C(b.Count) * k)
		case compiler.OpMoveLeft:
			if err := it.mem.MoveLeft(int(b.Count)); err != nil {
				return err
			}
		case compiler.OpMoveRight:
			if err := it.mem.MoveRight(int(b.Count)); err != nil {
				return err
			}
		default:
			return fmt.Errorf("vm: %v inside multiply loop", b.Op)
		}
	}
	return nil
}

// runScan repeats a single move until the current cell is zero: a bounded
// tape scan, not a fixed-count loop.
func (it *Interpreter[C]) runScan(stride int) error {
	for it.mem.Value() != 0 {
		var err error
		if stride < 0 {
			err = it.mem.MoveLeft(-stride)
		} else {
			err = it.mem.MoveRight(stride)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
