package compiler

import "fmt"

// ---------------------------------------------------------------------------
// Opcodes: the lexical alphabet of Brainfuck
// ---------------------------------------------------------------------------

// Opcode is the lexer's output alphabet. Every source byte maps to exactly
// one opcode; the mapping is total and pure.
type Opcode byte

const (
	OpcodeIgnore     Opcode = iota // any byte that is not a command
	OpcodeIncrement                // +
	OpcodeDecrement                // -
	OpcodeMoveLeft                 // <
	OpcodeMoveRight                // >
	OpcodeOutput                   // .
	OpcodeInput                    // ,
	OpcodeScopeOpen                // [
	OpcodeScopeClose               // ]
)

var opcodeNames = map[Opcode]string{
	OpcodeIgnore:     "IGNORE",
	OpcodeIncrement:  "+",
	OpcodeDecrement:  "-",
	OpcodeMoveLeft:   "<",
	OpcodeMoveRight:  ">",
	OpcodeOutput:     ".",
	OpcodeInput:      ",",
	OpcodeScopeOpen:  "[",
	OpcodeScopeClose: "]",
}

func (op Opcode) String() string {
	if name, ok := opcodeNames[op]; ok {
		return name
	}
	return fmt.Sprintf("Opcode(%d)", byte(op))
}

// OpcodeFor maps one source byte to its opcode.
func OpcodeFor(ch byte) Opcode {
	switch ch {
	case '+':
		return OpcodeIncrement
	case '-':
		return OpcodeDecrement
	case '<':
		return OpcodeMoveLeft
	case '>':
		return OpcodeMoveRight
	case '.':
		return OpcodeOutput
	case ',':
		return OpcodeInput
	case '[':
		return OpcodeScopeOpen
	case ']':
		return OpcodeScopeClose
	}
	return OpcodeIgnore
}

// Tokenize maps the full source text to opcodes in input order. Ignored
// bytes still occupy a slot so that opcode indexes equal source byte
// offsets, which keeps error positions meaningful.
func Tokenize(source string) []Opcode {
	ops := make([]Opcode, len(source))
	for i := 0; i < len(source); i++ {
		ops[i] = OpcodeFor(source[i])
	}
	return ops
}
