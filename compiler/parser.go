package compiler

import "fmt"

// ---------------------------------------------------------------------------
// Structural builder: opcode stream -> instruction tree
// ---------------------------------------------------------------------------

// ParseError describes a structural defect in the source program: an
// unmatched bracket or a loop that can never terminate. No execution is
// attempted once a ParseError is reported.
type ParseError struct {
	Offset int // byte offset into the source, -1 when no single position applies
	Msg    string
}

func (e *ParseError) Error() string {
	if e.Offset < 0 {
		return e.Msg
	}
	return fmt.Sprintf("%s at offset %d", e.Msg, e.Offset)
}

// Parse tokenizes source and builds the optimized instruction tree. Each
// bracket scope is run through the peephole optimizer as it closes, so
// nested loops are already reduced by the time their enclosing scope is
// considered.
func Parse(source string) ([]Node, error) {
	return build(Tokenize(source))
}

// build consumes the opcode stream left to right. The current scope's
// instructions accumulate in current; entering a bracket pushes the outer
// accumulator onto an explicit stack rather than recursing.
func build(ops []Opcode) ([]Node, error) {
	var stack [][]Node
	var current []Node

	for i, op := range ops {
		switch op {
		case OpcodeIncrement:
			current = fold(current, OpInc)
		case OpcodeDecrement:
			current = fold(current, OpDec)
		case OpcodeMoveLeft:
			current = fold(current, OpMoveLeft)
		case OpcodeMoveRight:
			current = fold(current, OpMoveRight)
		case OpcodeOutput:
			current = append(current, Node{Op: OpOutput})
		case OpcodeInput:
			current = append(current, Node{Op: OpInput})
		case OpcodeScopeOpen:
			stack = append(stack, current)
			current = nil
		case OpcodeScopeClose:
			if len(stack) == 0 {
				return nil, &ParseError{Offset: i, Msg: "unmatched closing bracket"}
			}
			body := current
			current = stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			node, err := Optimize(body, i)
			if err != nil {
				return nil, err
			}
			current = append(current, node)
		case OpcodeIgnore:
			// comment byte, contributes nothing
		}
	}

	if len(stack) > 0 {
		return nil, &ParseError{Offset: -1, Msg: "unmatched opening bracket"}
	}
	return current, nil
}

// fold appends a unit-count node of the given op, or bumps the count of the
// previous node when it has the same op. The check is strictly local:
// "+>+" does not fold across the intervening move.
func fold(nodes []Node, op Op) []Node {
	if n := len(nodes); n > 0 && nodes[n-1].Op == op {
		nodes[n-1].Count++
		return nodes
	}
	return append(nodes, Node{Op: op, Count: 1})
}
