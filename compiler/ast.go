package compiler

import "fmt"

// ---------------------------------------------------------------------------
// Instruction tree
// ---------------------------------------------------------------------------

// Op tags the variant of an instruction Node. The set is closed: the
// optimizer knows every concrete shape at construction time, so execution
// dispatches by direct case analysis with no type inspection.
type Op byte

const (
	OpInc        Op = iota // add Count to the current cell
	OpDec                  // subtract Count from the current cell
	OpMoveLeft             // move the pointer Count cells left
	OpMoveRight            // move the pointer Count cells right
	OpInput                // read one unit into the current cell
	OpOutput               // append the current cell to the output buffer
	OpLoop                 // repeat Body while the gating cell is nonzero
	OpMakeZero             // set the current cell to zero
	OpJumpOut              // move by Delta until the current cell is zero
	OpOffset               // add Delta to the cell at pointer+Offset
	OpOffsetZero           // zero the cell, scatter Delta*value at pointer+Offset
)

var opNames = [...]string{
	OpInc:        "INC",
	OpDec:        "DEC",
	OpMoveLeft:   "MOVL",
	OpMoveRight:  "MOVR",
	OpInput:      "IN",
	OpOutput:     "OUT",
	OpLoop:       "LOOP",
	OpMakeZero:   "ZERO",
	OpJumpOut:    "SCAN",
	OpOffset:     "OFFS",
	OpOffsetZero: "ZSCAT",
}

func (op Op) String() string {
	if int(op) < len(opNames) {
		return opNames[op]
	}
	return fmt.Sprintf("Op(%d)", byte(op))
}

// LoopKind selects the execution strategy for an OpLoop node.
type LoopKind byte

const (
	// LoopGeneric re-evaluates the body while the gating cell is nonzero.
	LoopGeneric LoopKind = iota

	// LoopMultiply applies the body once, with every arithmetic delta
	// scaled by the gating cell's entry value. Only valid for bodies that
	// contain nothing but arithmetic and pointer-neutral movement.
	LoopMultiply
)

func (k LoopKind) String() string {
	if k == LoopMultiply {
		return "multiply"
	}
	return "generic"
}

// Node is one instruction in the optimized tree. Exactly one variant is
// active, selected by Op; the other fields are meaningful only where the
// field comments say so. Nodes are immutable once optimization completes.
type Node struct {
	Op Op `cbor:"op"`

	// Count is the run length for OpInc/OpDec/OpMoveLeft/OpMoveRight.
	Count uint32 `cbor:"count,omitempty"`

	// Offset is the cell distance for OpOffset/OpOffsetZero, signed
	// (negative is left of the pointer).
	Offset int `cbor:"offset,omitempty"`

	// Delta is the signed per-pass cell delta for OpOffset/OpOffsetZero,
	// and the signed pointer stride for OpJumpOut.
	Delta int `cbor:"delta,omitempty"`

	// Kind selects the strategy for OpLoop.
	Kind LoopKind `cbor:"kind,omitempty"`

	// Body is the ordered loop body for OpLoop. Never empty: an empty
	// bracket pair is a parse-time error.
	Body []Node `cbor:"body,omitempty"`
}

func (n Node) String() string {
	switch n.Op {
	case OpInc, OpDec, OpMoveLeft, OpMoveRight:
		return fmt.Sprintf("%s x%d", n.Op, n.Count)
	case OpLoop:
		return fmt.Sprintf("%s %s (%d nodes)", n.Op, n.Kind, len(n.Body))
	case OpJumpOut:
		return fmt.Sprintf("%s %+d", n.Op, n.Delta)
	case OpOffset, OpOffsetZero:
		return fmt.Sprintf("%s @%+d %+d", n.Op, n.Offset, n.Delta)
	}
	return n.Op.String()
}
