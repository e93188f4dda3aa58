package compiler

// ---------------------------------------------------------------------------
// Peephole optimizer
// ---------------------------------------------------------------------------
//
// Optimize runs once per closed bracket scope, innermost scopes first: by
// the time a scope closes, every nested loop in its body is already a
// single reduced node. The decision procedure, in order:
//
//  1. empty body            -> structural error
//  2. pointer-neutral body  -> multiply loop (arithmetic scaled once)
//  3. single-node body      -> MakeZero / JumpOut, or error for lone I/O
//  4. offset-fusion scan    -> Move(d) Arith(v) Move(-d) => OpOffset
//  5. Dec(1) + OpOffset     -> OpOffsetZero
//  6. fallback              -> generic loop

// Optimize reduces a closed loop body to a single node. closePos is the
// source offset of the closing bracket, used for error reporting.
func Optimize(body []Node, closePos int) (Node, error) {
	for {
		switch n := len(body); {
		case n == 0:
			return Node{}, &ParseError{Offset: closePos, Msg: "empty loop never terminates"}

		case n == 1:
			return optimizeSingle(body, closePos)

		case n == 2:
			if node, ok := fuseZeroScatter(body); ok {
				return node, nil
			}
			return Node{Op: OpLoop, Kind: LoopGeneric, Body: body}, nil

		default:
			if isMultiplyShape(body) {
				return Node{Op: OpLoop, Kind: LoopMultiply, Body: body}, nil
			}
			var changed bool
			body, changed = fuseOffsets(body)
			if !changed {
				return Node{Op: OpLoop, Kind: LoopGeneric, Body: body}, nil
			}
			// The body shrank; it may now match one of the small forms.
		}
	}
}

// optimizeSingle handles one-node bodies. An additive loop on the current
// cell always counts it down to zero, so it collapses to MakeZero
// regardless of step size; a lone move is a tape scan. A lone I/O node can
// never change the gating cell and is rejected as a structural error.
func optimizeSingle(body []Node, closePos int) (Node, error) {
	switch only := body[0]; only.Op {
	case OpInc, OpDec:
		return Node{Op: OpMakeZero}, nil
	case OpMoveLeft:
		return Node{Op: OpJumpOut, Delta: -int(only.Count)}, nil
	case OpMoveRight:
		return Node{Op: OpJumpOut, Delta: int(only.Count)}, nil
	case OpInput, OpOutput:
		return Node{}, &ParseError{Offset: closePos, Msg: "loop of I/O operations never terminates"}
	}
	// An already-reduced node (nested loop, MakeZero, scan, offset op)
	// stays as-is inside a generic loop.
	return Node{Op: OpLoop, Kind: LoopGeneric, Body: body}, nil
}

// isMultiplyShape reports whether the body contains only arithmetic and
// movement with a net pointer displacement of zero. Each pass of such a
// loop touches the same absolute cells with the same deltas, so running it
// k times equals scaling every delta by k and applying the body once.
// Termination is assumed, not verified: the shape is taken to imply a
// countdown toward zero.
func isMultiplyShape(body []Node) bool {
	offset := 0
	for _, n := range body {
		switch n.Op {
		case OpMoveLeft:
			offset -= int(n.Count)
		case OpMoveRight:
			offset += int(n.Count)
		case OpInc, OpDec:
		default:
			return false
		}
	}
	return offset == 0
}

// fuseOffsets slides a 3-node window over the body, replacing every
// Move(d,n) Arith(v) Move(-d,n) triple with a single OpOffset that applies
// the arithmetic at pointer+/-n without moving the pointer. The window
// advances one position whether or not it replaced, so triples that only
// become adjacent after an earlier replacement can be missed; the caller
// re-runs the scan until a pass changes nothing.
func fuseOffsets(body []Node) ([]Node, bool) {
	changed := false
	for i := 0; i+2 < len(body); i++ {
		offset, ok := strideOf(body[i], body[i+2])
		if !ok {
			continue
		}
		delta, ok := deltaOf(body[i+1])
		if !ok {
			continue
		}
		fused := Node{Op: OpOffset, Offset: offset, Delta: delta}
		body = append(body[:i], append([]Node{fused}, body[i+3:]...)...)
		changed = true
	}
	return body, changed
}

// strideOf matches a pair of opposite moves with equal magnitude and
// returns the signed offset of the cell they straddle.
func strideOf(a, b Node) (int, bool) {
	switch {
	case a.Op == OpMoveLeft && b.Op == OpMoveRight && a.Count == b.Count:
		return -int(a.Count), true
	case a.Op == OpMoveRight && b.Op == OpMoveLeft && a.Count == b.Count:
		return int(a.Count), true
	}
	return 0, false
}

// deltaOf returns the signed cell delta of an arithmetic node.
func deltaOf(n Node) (int, bool) {
	switch n.Op {
	case OpInc:
		return int(n.Count), true
	case OpDec:
		return -int(n.Count), true
	}
	return 0, false
}

// fuseZeroScatter recognizes the two-node idiom "consume the current cell
// while scattering its value, scaled, into one neighbor": a unit decrement
// paired with an offset op, in either order.
func fuseZeroScatter(body []Node) (Node, bool) {
	a, b := body[0], body[1]
	if a.Op == OpDec && a.Count == 1 && b.Op == OpOffset {
		return Node{Op: OpOffsetZero, Offset: b.Offset, Delta: b.Delta}, true
	}
	if a.Op == OpOffset && b.Op == OpDec && b.Count == 1 {
		return Node{Op: OpOffsetZero, Offset: a.Offset, Delta: a.Delta}, true
	}
	return Node{}, false
}
