// Package compiler turns Brainfuck source text into an optimized
// instruction tree.
//
// The pipeline has three stages:
//
//  1. The lexer (token.go) maps every source byte to an Opcode. Bytes that
//     are not one of the eight command characters become OpcodeIgnore and
//     carry no meaning beyond occupying a source position.
//
//  2. The structural builder (parser.go) consumes the opcode stream with an
//     explicit scope stack, folding runs of identical arithmetic and
//     movement opcodes into counted nodes as it goes. Bracket mismatches
//     and degenerate loops are reported as ParseError values; nothing is
//     ever executed after a structural error.
//
//  3. The peephole optimizer (optimizer.go) runs once per closed bracket
//     scope, innermost first, rewriting idiomatic loop shapes into
//     specialized nodes: MakeZero for [-], JumpOut for [<]/[>], multiply
//     loops for pointer-neutral arithmetic bodies, and offset operations
//     for <v>-style triples.
//
// The result is a []Node tree that the vm package walks. Trees are
// immutable once Parse returns. Optimized trees can be serialized to a
// compact CBOR image (wire.go) and rendered as a human-readable listing
// (disasm.go).
package compiler
